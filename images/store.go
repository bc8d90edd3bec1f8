// Package images holds the decoded slideshow images, keyed by file base name.
package images

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

// Image is a decoded raster image: tightly packed 8-bit pixels,
// 3 channels for RGB or 4 for RGBA.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// Valid reports whether the image is safe to upload as a texture.
func (im Image) Valid() bool {
	return len(im.Pix) > 0 && im.Width > 0 && im.Height > 0
}

// LoadOptions control a directory load.
type LoadOptions struct {
	MaxImages     int  // maximum number of images to load (0 = no limit)
	MaxResolution int  // downscale images whose longest side exceeds this (0 = keep original size)
	Verbose       bool // log each image as it is loaded
}

// Store maps image names to decoded images. It is built once by Load and
// treated as read-only while a playback loop is consuming it.
type Store struct {
	images map[string]Image
	names  []string
}

func NewStore() *Store {
	return &Store{images: make(map[string]Image)}
}

// Load scans dir (non-recursively) for .png files, decodes them in name
// order and inserts them under their base name. A file that fails to decode
// is logged and skipped, as is a file whose base name is already loaded, so
// the returned count always matches Count. A missing or non-directory path
// is an error and leaves the store untouched.
func (s *Store) Load(dir string, opts LoadOptions) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to stat image directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("image path %q is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read image directory %q: %w", dir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".png") {
			candidates = append(candidates, entry.Name())
		}
	}

	// Sort by base name so the load order matches Names() order.
	sort.Slice(candidates, func(i, j int) bool {
		return NumericLess(baseName(candidates[i]), baseName(candidates[j]))
	})

	if opts.MaxImages > 0 && len(candidates) > opts.MaxImages {
		candidates = candidates[:opts.MaxImages]
	}

	s.images = make(map[string]Image, len(candidates))
	s.names = s.names[:0]

	loaded := 0
	for _, name := range candidates {
		base := baseName(name)
		if _, exists := s.images[base]; exists {
			log.Printf("Skipping %s: name %q already loaded", name, base)
			continue
		}
		path := filepath.Join(dir, name)
		img, err := decodeFile(path, opts.MaxResolution)
		if err != nil {
			log.Printf("Failed to load image %s: %v", path, err)
			continue
		}
		s.names = append(s.names, base)
		s.images[base] = img
		loaded++
		if opts.Verbose {
			log.Printf("Loaded image: %s (%dx%d, %d channels)", base, img.Width, img.Height, img.Channels)
		}
	}

	return loaded, nil
}

// Get looks up an image by name.
func (s *Store) Get(name string) (Image, bool) {
	img, ok := s.images[name]
	return img, ok
}

// Names returns the image names in numeric-aware sorted order. The returned
// slice is shared with the store and must not be modified.
func (s *Store) Names() []string {
	return s.names
}

// Count returns the number of loaded images.
func (s *Store) Count() int {
	return len(s.images)
}

// Clear releases all held images so the store can be reloaded.
func (s *Store) Clear() {
	s.images = make(map[string]Image)
	s.names = nil
}

func baseName(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}

// decodeFile decodes a single PNG into tightly packed pixel bytes. Fully
// opaque images are stored as 3-channel RGB, everything else as RGBA.
func decodeFile(path string, maxResolution int) (Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to open: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode: %w", err)
	}

	rgba := toNRGBA(src)
	if maxResolution > 0 {
		rgba = downscale(rgba, maxResolution)
	}

	bounds := rgba.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if rgba.Opaque() {
		pix := make([]byte, w*h*3)
		for y := 0; y < h; y++ {
			row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
			for x := 0; x < w; x++ {
				copy(pix[(y*w+x)*3:], row[x*4:x*4+3])
			}
		}
		return Image{Width: w, Height: h, Channels: 3, Pix: pix}, nil
	}

	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		copy(pix[y*w*4:], rgba.Pix[y*rgba.Stride:y*rgba.Stride+w*4])
	}
	return Image{Width: w, Height: h, Channels: 4, Pix: pix}, nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, bounds.Min, xdraw.Src)
	return dst
}

// downscale shrinks img proportionally so its longest side is at most
// maxResolution, with CatmullRom resampling. Images already within the
// limit are returned unchanged.
func downscale(img *image.NRGBA, maxResolution int) *image.NRGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxResolution {
		return img
	}

	factor := float64(maxResolution) / float64(longest)
	nw := int(float64(w) * factor)
	nh := int(float64(h) * factor)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

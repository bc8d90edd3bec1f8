package renderer

import (
	"fmt"
	"log"
	"time"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/rpattison/glslide/encoder"
	"github.com/rpattison/glslide/options"
)

// OffscreenRenderer is an FBO-backed render target for record mode.
type OffscreenRenderer struct {
	fbo       uint32
	textureID uint32
	width     int
	height    int
}

func NewOffscreenRenderer(width, height int) (*OffscreenRenderer, error) {
	or := &OffscreenRenderer{
		width:  width,
		height: height,
	}

	gl.GenFramebuffers(1, &or.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, or.fbo)
	gl.GenTextures(1, &or.textureID)
	gl.BindTexture(gl.TEXTURE_2D, or.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, or.textureID, 0)

	if gl.CheckFramebufferStatus(gl.FRAMEBUFFER) != gl.FRAMEBUFFER_COMPLETE {
		return nil, fmt.Errorf("offscreen fbo is not complete")
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return or, nil
}

func (or *OffscreenRenderer) Destroy() {
	gl.DeleteFramebuffers(1, &or.fbo)
	gl.DeleteTextures(1, &or.textureID)
}

// ReadPixels reads the rendered RGBA frame back from the FBO. The rows come
// back bottom-up; the encoder flips them on the ffmpeg side.
func (or *OffscreenRenderer) ReadPixels() []byte {
	pixels := make([]byte, or.width*or.height*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, or.fbo)
	gl.ReadPixels(0, 0, int32(or.width), int32(or.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return pixels
}

// RunOffscreen renders the slideshow for the configured duration into an
// H.264 file. It runs single-threaded on the calling thread with the
// context current, driving the playback controller with simulated
// timestamps so pacing is exact regardless of render speed.
func (r *Renderer) RunOffscreen(opts *options.SlideOptions) error {
	or, err := NewOffscreenRenderer(r.width, r.height)
	if err != nil {
		return fmt.Errorf("failed to create offscreen renderer: %w", err)
	}
	defer or.Destroy()

	enc := encoder.NewEncoder(opts)
	if err := enc.Start(); err != nil {
		return fmt.Errorf("failed to start encoder: %w", err)
	}

	totalFrames := int(*opts.Duration * float64(*opts.FPS))
	timeStep := time.Second / time.Duration(*opts.FPS)
	base := time.Unix(0, 0)

	log.Printf("Recording %d frames to %s", totalFrames, *opts.OutputFile)

	for i := 0; i < totalFrames; i++ {
		if r.control.Tick(base.Add(time.Duration(i) * timeStep)) {
			r.uploadCurrent()
		}

		gl.BindFramebuffer(gl.FRAMEBUFFER, or.fbo)
		gl.Viewport(0, 0, int32(or.width), int32(or.height))
		gl.ClearColor(0.0, 0.0, 0.0, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT)

		program := r.programs[r.effect]
		gl.UseProgram(program)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, r.texture)
		gl.Uniform1i(gl.GetUniformLocation(program, gl.Str("u_texture\x00")), 0)
		gl.BindVertexArray(r.quadVAO)
		gl.DrawArrays(gl.TRIANGLES, 0, 6)
		gl.BindVertexArray(0)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		gl.UseProgram(0)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

		if !enc.Send(&encoder.Frame{Pixels: or.ReadPixels(), PTS: int64(i)}) {
			break
		}
	}

	return enc.Close()
}

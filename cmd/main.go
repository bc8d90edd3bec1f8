package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"time"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rpattison/glslide/glfwcontext"
	"github.com/rpattison/glslide/images"
	"github.com/rpattison/glslide/options"
	"github.com/rpattison/glslide/renderer"
	"github.com/rpattison/glslide/shader"
)

// Main thread event-loop pacing while the render goroutine does the work.
const eventPollInterval = 10 * time.Millisecond

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := &options.SlideOptions{
		Dir:           flag.String("dir", "photo", "Directory of PNG images to play"),
		MaxImages:     flag.Int("max", 0, "Maximum number of images to load (0 = no limit)"),
		MaxResolution: flag.Int("max-resolution", 0, "Downscale images whose longest side exceeds this (0 = keep original size)"),
		Width:         flag.Int("width", 800, "Window width"),
		Height:        flag.Int("height", 600, "Window height"),
		Effect:        flag.String("effect", shader.EffectNone, "Initial post-processing effect (none, gray, vivid)"),
		Record:        flag.Bool("record", false, "Render the slideshow to a video file instead of a window"),
		Duration:      flag.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:           flag.Int("fps", 30, "Frames per second for recording"),
		OutputFile:    flag.String("output", "slideshow.mp4", "Output file name for recording"),
		FFMPEGPath:    flag.String("ffmpeg", "", "Path to ffmpeg executable"),
		Quiet:         flag.Bool("quiet", false, "Suppress per-image load logging"),
	}
	var help = flag.Bool("help", false, "Show help message")
	flag.Parse()

	if *help {
		fmt.Println("GPU Slideshow Viewer/Recorder")
		flag.PrintDefaults()
		return
	}

	if !shader.ValidEffect(*opts.Effect) {
		log.Fatalf("Unknown effect %q (have: %v)", *opts.Effect, shader.Effects())
	}

	log.Printf("Looking for photos in: %s", *opts.Dir)
	store := images.NewStore()
	count, err := store.Load(*opts.Dir, images.LoadOptions{
		MaxImages:     *opts.MaxImages,
		MaxResolution: *opts.MaxResolution,
		Verbose:       !*opts.Quiet,
	})
	if err != nil {
		log.Fatalf("Error loading images: %v", err)
	}
	if count == 0 {
		log.Printf("No images found in %s", *opts.Dir)
		return
	}
	log.Printf("Loaded %d PNG images from %s", count, *opts.Dir)

	if err := glfwcontext.InitGraphics(); err != nil {
		log.Fatalf("Failed to initialize graphics: %v", err)
	}
	defer glfwcontext.TerminateGraphics()

	ctx, err := glfwcontext.New(*opts.Width, *opts.Height, "glslide", !*opts.Record)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}

	r, err := renderer.NewRenderer(*opts.Width, *opts.Height, store, *opts.Effect, ctx)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Shutdown()

	if err := r.InitScene(); err != nil {
		log.Fatalf("Failed to initialize scene: %v", err)
	}

	if *opts.Record {
		log.Println("Starting offscreen record loop...")
		if err := r.RunOffscreen(opts); err != nil {
			log.Fatalf("Offscreen rendering failed: %v", err)
		}
		log.Printf("Successfully rendered to %s", *opts.OutputFile)
		return
	}

	runInteractive(r, ctx)
}

// runInteractive hands the GL context to the render goroutine and keeps the
// main thread on event dispatch until the window closes.
func runInteractive(r *renderer.Renderer, ctx *glfwcontext.Context) {
	control := r.Controller()

	ctx.RegisterKeyCallback(glfw.KeySpace, func() {
		if control.TogglePause() {
			log.Println("Playback paused")
		} else {
			log.Println("Playback resumed")
		}
	})
	ctx.RegisterKeyCallback(glfw.KeyRight, func() {
		control.StepForward()
	})
	ctx.RegisterKeyCallback(glfw.KeyLeft, func() {
		control.StepBackward()
	})
	ctx.RegisterKeyCallback(glfw.KeyE, func() {
		control.CycleEffect()
	})

	// The render goroutine takes the context from here on.
	ctx.DetachCurrent()
	r.Start()

	for !ctx.ShouldClose() {
		ctx.PollEvents()
		time.Sleep(eventPollInterval)
	}

	log.Println("Stopping renderer...")
	r.Stop()
}

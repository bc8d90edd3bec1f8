package renderer

import (
	"fmt"
	"log"
	"runtime"
	"strings"
	"sync"
	"time"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/rpattison/glslide/graphics"
	"github.com/rpattison/glslide/images"
	"github.com/rpattison/glslide/playback"
	"github.com/rpattison/glslide/shader"
)

var glInitOnce sync.Once

// How long Stop waits for the render goroutine to unbind and exit.
const stopGracePeriod = 500 * time.Millisecond

// Sleep per tick: short while playing to approximate the frame interval,
// longer while paused to reduce CPU use.
const (
	playingTickSleep = 1 * time.Millisecond
	pausedTickSleep  = 10 * time.Millisecond
)

// Renderer owns the GL resources and the playback loop. GL calls happen on
// the thread that holds the context: the main thread during InitScene, the
// render goroutine once Start has handed the context over.
type Renderer struct {
	context graphics.Context
	store   *images.Store
	control *playback.Controller

	quadVAO  uint32
	quadVBO  uint32
	texture  uint32
	programs map[string]uint32
	effect   string

	width  int
	height int
	done   chan struct{}
}

var quadVertices = []float32{
	-1.0, 1.0, -1.0, -1.0, 1.0, -1.0,
	-1.0, 1.0, 1.0, -1.0, 1.0, 1.0,
}

// NewRenderer binds the renderer to an already-created GL context and
// initializes the OpenGL function pointers on the calling thread.
func NewRenderer(width, height int, store *images.Store, effect string, ctx graphics.Context) (*Renderer, error) {
	r := &Renderer{
		context:  ctx,
		store:    store,
		control:  playback.NewController(store.Names(), playback.FrameInterval),
		programs: make(map[string]uint32),
		effect:   effect,
		width:    width,
		height:   height,
	}

	r.context.MakeCurrent()
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}

	return r, nil
}

// Controller exposes the playback controls for key bindings.
func (r *Renderer) Controller() *playback.Controller {
	return r.control
}

// InitScene builds the quad geometry, one shader program per effect and the
// streaming texture, then uploads the first image. Runs on the main thread
// with the context current.
func (r *Renderer) InitScene() error {
	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	for _, effect := range shader.Effects() {
		program, err := newProgram(shader.GenerateVertexShader(), shader.FragmentShader(effect))
		if err != nil {
			return fmt.Errorf("failed to create %s shader program: %w", effect, err)
		}
		r.programs[effect] = program
	}

	gl.GenTextures(1, &r.texture)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	r.uploadCurrent()
	return nil
}

// Start hands the context to a new render goroutine and begins playback.
// The caller must have detached the context from the current thread first.
func (r *Renderer) Start() {
	if r.control.Running() {
		return
	}
	r.control.Start()
	r.done = make(chan struct{})
	go r.renderLoop()
	log.Println("Renderer started")
	log.Println("Controls: Space = Pause/Resume, Left/Right = Step, E = Cycle Effect, Esc = Quit")
}

// Stop requests the render goroutine to exit and waits a bounded grace
// period rather than joining indefinitely.
func (r *Renderer) Stop() {
	if !r.control.Running() {
		return
	}
	r.control.Stop()
	select {
	case <-r.done:
	case <-time.After(stopGracePeriod):
		log.Println("Render loop did not stop within grace period")
	}
	log.Println("Renderer stopped")
}

// renderLoop is the playback loop: one tick decides whether the slide
// changes, and every tick presents exactly once so the screen always
// reflects the latest index.
func (r *Renderer) renderLoop() {
	runtime.LockOSThread()
	r.context.MakeCurrent()
	defer func() {
		r.context.DetachCurrent()
		close(r.done)
	}()

	for r.control.Running() {
		if r.control.ConsumeEffectRequest() {
			r.effect = shader.NextEffect(r.effect)
			log.Printf("Post-processing effect: %s", r.effect)
		}

		if r.control.Tick(time.Now()) {
			r.uploadCurrent()
		}

		r.drawFrame()
		r.context.SwapBuffers()

		if r.control.IsPaused() {
			time.Sleep(pausedTickSleep)
		} else {
			time.Sleep(playingTickSleep)
		}
	}
}

// uploadCurrent re-uploads the selected image to the streaming texture.
// Missing or invalid images are logged and skipped; the previous texture
// contents keep being presented.
func (r *Renderer) uploadCurrent() {
	name, ok := r.control.Current()
	if !ok {
		return
	}
	img, ok := r.store.Get(name)
	if !ok || !img.Valid() {
		log.Printf("Invalid image data for: %s", name)
		return
	}

	gl.BindTexture(gl.TEXTURE_2D, r.texture)
	var format uint32 = gl.RGBA
	if img.Channels == 3 {
		format = gl.RGB
		// RGB rows are not 4-byte aligned.
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, int32(format), int32(img.Width), int32(img.Height), 0,
		format, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	if img.Channels == 3 {
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// drawFrame draws the textured quad through the active effect program.
func (r *Renderer) drawFrame() {
	fbWidth, fbHeight := r.context.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
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
}

// Shutdown releases all GL resources and the window. The render goroutine
// has detached by now, so the calling thread takes the context back.
func (r *Renderer) Shutdown() {
	r.context.MakeCurrent()
	for _, program := range r.programs {
		gl.DeleteProgram(program)
	}
	gl.DeleteTextures(1, &r.texture)
	gl.DeleteVertexArrays(1, &r.quadVAO)
	gl.DeleteBuffers(1, &r.quadVBO)
	r.context.Shutdown()
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		return 0, fmt.Errorf("failed to link program: %v", logText)
	}

	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}

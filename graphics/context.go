package graphics

// Context defines the interface for an OpenGL context. SwapBuffers and
// MakeCurrent/DetachCurrent belong to the render goroutine; PollEvents and
// ShouldClose belong to the main thread.
type Context interface {
	MakeCurrent()
	DetachCurrent()
	Shutdown()
	ShouldClose() bool
	SwapBuffers()
	PollEvents()
	GetFramebufferSize() (int, int)
}

package graphics

// Context defines the interface for the window that owns the OpenGL context.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	// EndFrame presents the back buffer and processes pending window events.
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
	// SetResizeCallback registers f to receive framebuffer size changes in pixels.
	SetResizeCallback(f func(width, height int))
}

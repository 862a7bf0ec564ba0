package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNotInitialized is returned by operations on a window that was closed or never created.
var ErrNotInitialized = errors.New("window is not initialized")

// GraphicsAPI selects which client API the window is created for.
type GraphicsAPI int

const (
	// GraphicsAPIOpenGL creates an OpenGL 4.1 core context and makes it current on the calling
	// thread. Buffers are swapped after every update callback.
	GraphicsAPIOpenGL GraphicsAPI = iota
	// GraphicsAPIWebGPU creates no client context; use SurfaceDescriptor to build a wgpu surface.
	GraphicsAPIWebGPU
)

// Window provides platform windowing and input event handling for the viewer.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration, before the swap.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.Key*)
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetDragCallback sets the callback for cursor movement while the left button is held.
	//
	// Parameters:
	//   - callback: function receiving the cursor delta in screen pixels
	SetDragCallback(callback func(dx, dy float32))

	// SetDropCallback sets the callback for files dropped onto the window.
	//
	// Parameters:
	//   - callback: function receiving the dropped paths
	SetDropCallback(callback func(paths []string))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor for windows created with GraphicsAPIWebGPU.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil for OpenGL windows
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// GraphicsAPI returns the client API the window was created for.
	//
	// Returns:
	//   - GraphicsAPI: the client API
	GraphicsAPI() GraphicsAPI

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: ErrNotInitialized if the window was already closed
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// viewerWindow is the implementation of the Window interface.
type viewerWindow struct {
	title string

	api   GraphicsAPI
	vsync bool

	// Size limits applied to interactive resizing.
	maxWidth, maxHeight int
	minWidth, minHeight int

	// width and height track the framebuffer, which differs from the window size on high-DPI displays.
	width, height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onUpdate func()
	onResize func(width, height int)
	onScroll func(delta float32)
	onKey    func(keyCode uint32)
	onDrag   func(dx, dy float32)
	onDrop   func(paths []string)
}

var _ Window = &viewerWindow{}

// NewWindow creates and shows a window. Defaults are applied first, then each option in order.
// Must be called from the main goroutine; the calling thread is locked to it.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the window
//   - error: error if the platform window or its context cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &viewerWindow{
		title:     "oxy-gl",
		api:       GraphicsAPIOpenGL,
		vsync:     true,
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  320,
		minHeight: 240,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *viewerWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *viewerWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *viewerWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *viewerWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKey = callback
}

func (w *viewerWindow) SetDragCallback(callback func(dx, dy float32)) {
	w.onDrag = callback
}

func (w *viewerWindow) SetDropCallback(callback func(paths []string)) {
	w.onDrop = callback
}

func (w *viewerWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.api != GraphicsAPIWebGPU {
		return nil
	}
	return platformGetSurfaceDescriptor(w)
}

func (w *viewerWindow) GraphicsAPI() GraphicsAPI {
	return w.api
}

func (w *viewerWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *viewerWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *viewerWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}
		platformPresent(w)

		runtime.Gosched()
	}
}

func (w *viewerWindow) Width() int {
	return w.width
}

func (w *viewerWindow) Height() int {
	return w.height
}

// clampSize limits a requested size to the configured bounds. Zero bounds are ignored.
func (w *viewerWindow) clampSize(width, height int) (int, int) {
	if w.minWidth > 0 {
		width = max(width, w.minWidth)
	}
	if w.maxWidth > 0 {
		width = min(width, w.maxWidth)
	}
	if w.minHeight > 0 {
		height = max(height, w.minHeight)
	}
	if w.maxHeight > 0 {
		height = min(height, w.maxHeight)
	}
	return width, height
}

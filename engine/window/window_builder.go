package window

// WindowBuilderOption is a functional option for configuring a window.
// Use the With* functions to create options.
type WindowBuilderOption func(w *viewerWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *viewerWindow) {
		w.title = title
	}
}

// WithSize sets the initial window size.
//
// Parameters:
//   - width: initial width in pixels
//   - height: initial height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *viewerWindow) {
		w.width = width
		w.height = height
	}
}

// WithMinSize sets the smallest size the window can be resized to. Zero disables the limit.
//
// Parameters:
//   - width: minimum width in pixels
//   - height: minimum height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *viewerWindow) {
		w.minWidth = width
		w.minHeight = height
	}
}

// WithMaxSize sets the largest size the window can be resized to. Zero disables the limit.
//
// Parameters:
//   - width: maximum width in pixels
//   - height: maximum height in pixels
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(w *viewerWindow) {
		w.maxWidth = width
		w.maxHeight = height
	}
}

// WithGraphicsAPI selects the client API. Defaults to GraphicsAPIOpenGL.
//
// Parameters:
//   - api: the client API
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithGraphicsAPI(api GraphicsAPI) WindowBuilderOption {
	return func(w *viewerWindow) {
		w.api = api
	}
}

// WithVSync sets whether OpenGL buffer swaps wait for vertical sync. Enabled by default.
//
// Parameters:
//   - enabled: true to sync swaps to the display
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithVSync(enabled bool) WindowBuilderOption {
	return func(w *viewerWindow) {
		w.vsync = enabled
	}
}

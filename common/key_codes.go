package common

// Key codes delivered to window key callbacks. Printable keys use their ASCII value, matching GLFW.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32  // Spacebar (ASCII)
	KeyMinus = 45  // - key (ASCII)
	KeyEqual = 61  // = key (ASCII)
	KeyN     = 78  // N key (ASCII)
	KeyO     = 79  // O key (ASCII)
	KeyR     = 82  // R key (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)
)

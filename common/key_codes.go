package common

// Key codes used by the viewer's orbit controls.
// Values match GLFW key codes (ASCII for printable keys).
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87
	KeyA     = 65
	KeyS     = 83
	KeyD     = 68
	KeyQ     = 81
	KeyE     = 69
	KeyL     = 76 // toggle bound locking
	KeyP     = 80 // toggle profiling
	KeySpace = 32
	KeyEsc   = 256

	KeyRight = 262
	KeyLeft  = 263
	KeyDown  = 264
	KeyUp    = 265
)

package window

import (
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/services"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is a desktop display: a services.Display that also exposes the
// WebGPU surface descriptor and input callbacks. NewWindow, ProcessMessages and
// Close must run on the main OS thread.
type Window interface {
	services.Display

	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyCallback sets the function called for key presses and repeats.
	// Key codes are GLFW codes, see common.KeyW and friends.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyCallback(callback func(key int))

	// SetScrollCallback sets the callback for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical scroll delta (positive = up)
	SetScrollCallback(callback func(delta float32))

	// SetDragCallback sets the callback for cursor movement while the left or
	// middle button is held.
	//
	// Parameters:
	//   - callback: function receiving the cursor delta in pixels and whether the middle button is held
	SetDragCallback(callback func(dx, dy float32, middle bool))

	// SurfaceDescriptor returns a platform surface descriptor for WebGPU.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil once the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// ProcessMessages polls window events until the window closes or stop is closed.
	//
	// Parameters:
	//   - stop: closing it ends the loop; nil never stops it
	ProcessMessages(stop <-chan struct{})

	// Close destroys the window. Calling Close more than once is safe.
	//
	// Returns:
	//   - error: if the window was never created
	Close() error
}

type engineWindow struct {
	mu *sync.Mutex

	title     string
	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int
	width     int
	height    int

	internalWindow *glfwWindow

	onUpdate func()
	onResize func(width, height int)
	onKey    func(key int)
	onScroll func(delta float32)
	onDrag   func(dx, dy float32, middle bool)
}

var _ Window = &engineWindow{}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		mu:        &sync.Mutex{},
		title:     "oxy-scenegraph",
		minWidth:  320,
		minHeight: 200,
		maxWidth:  3840,
		maxHeight: 2160,
		width:     1280,
		height:    720,
	}
	for _, option := range options {
		option(w)
	}
	return w
}

// NewWindow creates and shows a GLFW window.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: if GLFW or the window could not be initialised
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) Name() string { return "window" }

// Init is a no-op: the window is created by NewWindow on the main thread.
func (w *engineWindow) Init() error { return nil }

// Shutdown asks the window to close. It may run on any goroutine, so the
// window itself is destroyed by Close on the main thread.
func (w *engineWindow) Shutdown() error {
	platformRequestClose(w)
	return nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) { w.onUpdate = callback }

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }

func (w *engineWindow) SetKeyCallback(callback func(key int)) { w.onKey = callback }

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) { w.onScroll = callback }

func (w *engineWindow) SetDragCallback(callback func(dx, dy float32, middle bool)) {
	w.onDrag = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages(stop <-chan struct{}) {
	for w.IsRunning() {
		select {
		case <-stop:
			return
		default:
		}
		if !platformProcessMessages(w) {
			return
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

func (w *engineWindow) setSize(width, height int) {
	w.mu.Lock()
	w.width, w.height = width, height
	w.mu.Unlock()
}

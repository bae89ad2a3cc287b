package renderer

import (
	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/camera"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/geometry"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/light"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// DrawCall is one renderable submitted to a pass. Exactly one of Geometry and
// Light is set, depending on the renderable's variant.
type DrawCall struct {
	Frame      frame.Frame
	Pass       *RenderPass
	Renderable scene.Renderable
	Geometry   geometry.Geometry
	Light      light.Light
	World      common.Transform
}

// DrawBackend is the GPU abstraction the render stage drives. Every method is
// called from the GPU goroutine only, bracketed as
// BeginFrame (BeginPass Draw* EndPass)* EndFrame.
type DrawBackend interface {
	// BeginFrame starts recording frame fr.
	//
	// Parameters:
	//   - fr: the frame being rendered
	//
	// Returns:
	//   - error: if the frame cannot be started (e.g. the surface is lost)
	BeginFrame(fr frame.Frame) error

	// BeginPass starts a pass onto p.Target, clearing as p.Clear requests.
	//
	// Parameters:
	//   - p: the pass
	//   - cam: the camera snapshot of the frame
	//
	// Returns:
	//   - error: if the pass cannot be started
	BeginPass(p *RenderPass, cam camera.Camera) error

	// Draw records one draw.
	//
	// Parameters:
	//   - dc: the draw call
	//
	// Returns:
	//   - error: if the draw cannot be recorded
	Draw(dc DrawCall) error

	// EndPass ends the current pass.
	EndPass() error

	// EndFrame submits and presents the frame.
	EndFrame() error

	// Release frees every backend resource. The backend is unusable afterwards.
	Release()
}

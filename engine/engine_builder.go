package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/camera"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/services"
)

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithRoot sets the scene root.
//
// Parameters:
//   - root: the root node
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRoot(root *scene.Node) EngineBuilderOption {
	return func(e *engine) {
		e.root = root
	}
}

// WithCamera sets the camera frames are culled and rendered with.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(cam camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = cam
	}
}

// WithRenderPath sets the render path. The engine calls Setup.
//
// Parameters:
//   - path: the render path
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderPath(path renderer.RenderPath) EngineBuilderOption {
	return func(e *engine) {
		e.path = path
	}
}

// WithBackend sets the draw backend. The engine releases it on shutdown.
//
// Parameters:
//   - backend: the backend
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackend(backend renderer.DrawBackend) EngineBuilderOption {
	return func(e *engine) {
		e.backend = backend
	}
}

// WithFrames sets how many frames may be in flight, in [1, frame.MaxFrames].
// One frame serialises the stages.
//
// Parameters:
//   - n: ring size
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrames(n int) EngineBuilderOption {
	return func(e *engine) {
		e.frames = n
	}
}

// WithCullWorkers sets the cull worker count. Values below 1 use one worker
// per CPU, less one.
//
// Parameters:
//   - n: worker count
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCullWorkers(n int) EngineBuilderOption {
	return func(e *engine) {
		e.cullWorkers = n
	}
}

// WithPlaneStateScope selects the cull plane-state scope. Per-subtree scope is
// the default; false accumulates plane state over each traversal, which can
// queue renderables outside the frustum.
//
// Parameters:
//   - perSubtree: true to save and restore the plane state around each child
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPlaneStateScope(perSubtree bool) EngineBuilderOption {
	return func(e *engine) {
		e.perSubtree = perSubtree
	}
}

// WithProfiling enables or disables profiler output.
//
// Parameters:
//   - enabled: if true, the profiler logs once per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfiler replaces the default profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate caps how many frames per second Run produces. Values <= 0
// leave production uncapped. The default is 60.
//
// Parameters:
//   - fps: target frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.tickRate = 0
			return
		}
		e.tickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithServices sets the service registry. The engine initialises it before
// the first frame and shuts it down last.
//
// Parameters:
//   - registry: the registry
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithServices(registry *services.Registry) EngineBuilderOption {
	return func(e *engine) {
		e.registry = registry
	}
}

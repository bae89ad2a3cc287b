package renderer

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"
)

// RenderContext is the render stage's state: it sorts a frame's queue and walks
// its passes, issuing draws through the backend. It must be used from the GPU
// goroutine only.
type RenderContext struct {
	backend DrawBackend
	sort    bool
}

// NewRenderContext creates a RenderContext drawing through backend.
//
// Parameters:
//   - backend: the draw backend
//   - options: functional options to configure the context
//
// Returns:
//   - *RenderContext: the context
func NewRenderContext(backend DrawBackend, options ...RenderContextBuilderOption) *RenderContext {
	if backend == nil {
		panic("renderer: NewRenderContext requires a non-nil DrawBackend")
	}
	rc := &RenderContext{backend: backend, sort: true}
	for _, option := range options {
		option(rc)
	}
	return rc
}

// Backend returns the draw backend.
func (rc *RenderContext) Backend() DrawBackend { return rc.backend }

// Render draws fs: every enabled pass in order, and for each of the pass's
// queues every queued renderable whose pass mask accepts the pass. Buckets are
// sorted by their sort mode against the camera location first. Once a backend
// call fails no further passes or draws are issued, but started passes and the
// frame are still ended.
//
// Parameters:
//   - fs: the frame to draw
//
// Returns:
//   - error: the first backend error
func (rc *RenderContext) Render(fs *FrameState) (err error) {
	start := time.Now()
	defer func() { fs.Stats.RenderTime = time.Since(start) }()

	slot := fs.Frame.Slot
	if rc.sort && fs.Camera != nil {
		fs.Queue.Sort(slot, fs.Camera.Location())
	}

	if err := rc.backend.BeginFrame(fs.Frame); err != nil {
		return fmt.Errorf("renderer: begin frame %s: %w", fs.Frame, err)
	}
	defer func() {
		if endErr := rc.backend.EndFrame(); endErr != nil && err == nil {
			err = fmt.Errorf("renderer: end frame %s: %w", fs.Frame, endErr)
		}
	}()

	for _, p := range fs.Passes {
		if !p.Enabled {
			continue
		}
		if err := rc.renderPass(fs, p); err != nil {
			return err
		}
	}
	return nil
}

func (rc *RenderContext) renderPass(fs *FrameState, p *RenderPass) (err error) {
	if err := rc.backend.BeginPass(p, fs.Camera); err != nil {
		return fmt.Errorf("renderer: begin pass %s: %w", p.Name, err)
	}
	defer func() {
		if endErr := rc.backend.EndPass(); endErr != nil && err == nil {
			err = fmt.Errorf("renderer: end pass %s: %w", p.Name, endErr)
		}
	}()

	slot := fs.Frame.Slot
	for _, id := range p.Queues {
		for _, r := range fs.Queue.Bucket(id) {
			if !p.Draws(r) {
				continue
			}
			dc := DrawCall{Frame: fs.Frame, Pass: p, Renderable: r, World: r.World(slot)}
			switch v := r.(type) {
			case *scene.Batch:
				dc.Geometry = v.Target()
			case *scene.LightBatch:
				dc.Light = v.Light()
			}
			if err := rc.backend.Draw(dc); err != nil {
				return fmt.Errorf("renderer: draw %q in pass %s: %w", r.Name(), p.Name, err)
			}
			fs.Stats.Drawn++
		}
	}
	return nil
}

// RenderContextBuilderOption is a function that configures a RenderContext during construction.
type RenderContextBuilderOption func(*RenderContext)

// WithSorting enables or disables bucket sorting before drawing. Enabled by default.
func WithSorting(enabled bool) RenderContextBuilderOption {
	return func(rc *RenderContext) {
		rc.sort = enabled
	}
}

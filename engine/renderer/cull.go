package renderer

import (
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/camera"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"
)

// CullContext is one cull thread's state: a scratch frame.Context, a private
// camera copy whose plane state the traversal mutates, the queue being filled
// and the counters of the current traversal. It must not be shared between
// goroutines.
type CullContext struct {
	scratch    *frame.Context
	cam        camera.Camera
	queue      *RenderQueue
	fr         frame.Frame
	perSubtree bool
	stats      Stats
}

// NewCullContext creates a CullContext with its own scratch context. The plane
// state is scoped per subtree unless WithPlaneStatePerSubtree(false) is given.
//
// Parameters:
//   - options: functional options to configure the context
//
// Returns:
//   - *CullContext: the context
func NewCullContext(options ...CullContextBuilderOption) *CullContext {
	c := &CullContext{scratch: frame.AllocateContext(), perSubtree: true}
	for _, option := range options {
		option(c)
	}
	return c
}

// Begin starts a traversal for fs: the camera is copied, its plane state
// cleared, and visible renderables will be added to fs.Queue.
//
// Parameters:
//   - fs: the frame being culled
//   - cam: the camera snapshot for the frame
func (c *CullContext) Begin(fs *FrameState, cam camera.Camera) {
	c.begin(fs.Frame, fs.Queue, cam, 0)
}

func (c *CullContext) begin(fr frame.Frame, q *RenderQueue, cam camera.Camera, planeState uint32) {
	c.scratch.SelectFrame(fr.Slot)
	c.fr = fr
	c.queue = q
	c.cam = cam.Clone()
	c.cam.SetPlaneState(planeState)
	c.stats = Stats{}
}

// Camera returns the traversal's private camera copy.
func (c *CullContext) Camera() camera.Camera { return c.cam }

// Scratch returns the context's scratch state, bound to the frame being culled.
func (c *CullContext) Scratch() *frame.Context { return c.scratch }

// Stats returns the counters of the current traversal.
func (c *CullContext) Stats() Stats { return c.stats }

// PlaneStatePerSubtree reports whether the plane state is restored around each child.
func (c *CullContext) PlaneStatePerSubtree() bool { return c.perSubtree }

// Cull walks the subtree at root and queues every visible renderable in
// depth-first child order.
//
// A node whose slot was not produced for the frame being culled, or whose hint
// is CullAlways, is skipped with its subtree. A CullNever node is accepted with
// its subtree without frustum tests. Otherwise the node's world bound is tested
// and an Outside result skips the subtree. Renderables whose DoCull returns
// false are never queued.
//
// Parameters:
//   - root: the subtree to traverse
func (c *CullContext) Cull(root *scene.Node) {
	if c.cam == nil {
		panic("renderer: CullContext.Cull called before Begin")
	}
	c.cullNode(root, false)
}

func (c *CullContext) cullNode(n *scene.Node, accepted bool) {
	state, ok := c.visit(n, accepted)
	if !ok {
		return
	}
	accepted = accepted || n.CullHint() == scene.CullNever
	for _, child := range n.Children() {
		if c.perSubtree {
			c.cam.SetPlaneState(state)
		}
		c.cullNode(child, accepted)
	}
	if c.perSubtree {
		c.cam.SetPlaneState(state)
	}
}

// visit tests n itself and queues its renderables. It returns the plane state
// after the node test and whether the children should be visited.
func (c *CullContext) visit(n *scene.Node, accepted bool) (uint32, bool) {
	c.stats.Visited++
	if !n.Current(c.fr) || n.CullHint() == scene.CullAlways {
		c.stats.Culled++
		return 0, false
	}
	accepted = accepted || n.CullHint() == scene.CullNever
	slot := c.fr.Slot

	if !accepted {
		c.stats.Tested++
		if c.cam.Contains(n.WorldBound(slot)) == camera.Outside {
			c.stats.Culled++
			return 0, false
		}
	}
	state := c.cam.PlaneState()

	for _, r := range n.Batches() {
		if c.perSubtree {
			c.cam.SetPlaneState(state)
		}
		if !r.DoCull(slot) {
			c.stats.Excluded++
			continue
		}
		if !accepted {
			c.stats.Tested++
			if c.cam.Contains(r.WorldBound(slot)) == camera.Outside {
				c.stats.Culled++
				continue
			}
		}
		if c.queue.Add(r) {
			c.stats.Queued++
		}
	}
	return state, true
}

// CullContextBuilderOption is a function that configures a CullContext during construction.
type CullContextBuilderOption func(*CullContext)

// WithPlaneStatePerSubtree sets the plane-state scope. With true, the default,
// the state is restored before each child and renderable, so a sibling's result
// never affects another sibling. With false the bits accumulate over the whole
// traversal: fewer plane tests, but once a sibling is inside a plane every later
// sibling skips that plane and can be queued while outside the frustum.
//
// Parameters:
//   - perSubtree: false to accumulate plane state over the traversal
//
// Returns:
//   - CullContextBuilderOption: a function that applies the option
func WithPlaneStatePerSubtree(perSubtree bool) CullContextBuilderOption {
	return func(c *CullContext) {
		c.perSubtree = perSubtree
	}
}

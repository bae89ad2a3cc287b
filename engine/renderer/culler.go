package renderer

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"
)

// Culler runs the cull stage for one frame. With more than one worker it tests
// the root serially, splits the root's children into contiguous chunks, culls
// each chunk on the worker pool with its own CullContext and partial queue, and
// merges the partial queues in chunk order. With per-subtree plane state the
// result equals a serial traversal.
//
// A Culler is driven by a single cull-stage goroutine.
type Culler struct {
	workers    int
	perSubtree bool

	main     *CullContext
	contexts []*CullContext
	partials []*RenderQueue
	pool     worker.DynamicWorkerPool
}

// NewCuller creates a Culler. The worker pool is created only when more than one
// worker is configured.
//
// Parameters:
//   - options: functional options to configure the culler
//
// Returns:
//   - *Culler: the culler
func NewCuller(options ...CullerBuilderOption) *Culler {
	c := &Culler{workers: 1, perSubtree: true}
	for _, option := range options {
		option(c)
	}
	c.main = NewCullContext(WithPlaneStatePerSubtree(c.perSubtree))
	if c.workers > 1 {
		c.contexts = make([]*CullContext, c.workers)
		for i := range c.contexts {
			c.contexts[i] = NewCullContext(WithPlaneStatePerSubtree(c.perSubtree))
		}
		c.partials = make([]*RenderQueue, c.workers)
		c.pool = worker.NewDynamicWorkerPool(c.workers, 256, 1*time.Second)
	}
	return c
}

// Workers returns the configured worker count.
func (c *Culler) Workers() int { return c.workers }

// Cull fills fs.Queue with the visible renderables under root using fs.Camera,
// and adds the traversal counters to fs.Stats.
//
// Parameters:
//   - fs: the frame being culled; its queue should be empty
//   - root: the scene root
func (c *Culler) Cull(fs *FrameState, root *scene.Node) {
	start := time.Now()
	defer func() { fs.Stats.CullTime = time.Since(start) }()

	c.main.Begin(fs, fs.Camera)
	children := root.Children()
	if c.workers <= 1 || len(children) < 2 {
		c.main.Cull(root)
		fs.Stats.Add(c.main.Stats())
		return
	}

	state, ok := c.main.visit(root, false)
	fs.Stats.Add(c.main.Stats())
	if !ok {
		return
	}
	accepted := root.CullHint() == scene.CullNever

	chunks := min(c.workers, len(children))
	per := (len(children) + chunks - 1) / chunks

	var wg sync.WaitGroup
	var mu sync.Mutex
	var panicked any
	used := 0
	for i := 0; i < chunks; i++ {
		lo := i * per
		if lo >= len(children) {
			break
		}
		hi := min(lo+per, len(children))
		used++

		if c.partials[i] == nil {
			c.partials[i] = fs.Queue.CloneLayout()
		}
		part := c.partials[i]
		part.Clear()
		cc := c.contexts[i]
		cc.begin(fs.Frame, part, c.main.Camera(), state)
		chunk := children[lo:hi]

		wg.Add(1)
		c.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						mu.Lock()
						panicked = r
						mu.Unlock()
					}
				}()
				for _, child := range chunk {
					if cc.perSubtree {
						cc.cam.SetPlaneState(state)
					}
					cc.cullNode(child, accepted)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	if panicked != nil {
		panic(fmt.Sprintf("renderer: cull worker: %v", panicked))
	}
	for i := 0; i < used; i++ {
		fs.Queue.Merge(c.partials[i])
		fs.Stats.Add(c.contexts[i].Stats())
	}
}

// CullerBuilderOption is a function that configures a Culler during construction.
type CullerBuilderOption func(*Culler)

// WithCullWorkers sets the number of parallel cull workers. Values below 1
// select runtime.NumCPU()-1, with a minimum of 1.
//
// Parameters:
//   - n: worker count
//
// Returns:
//   - CullerBuilderOption: a function that applies the option
func WithCullWorkers(n int) CullerBuilderOption {
	return func(c *Culler) {
		if n < 1 {
			n = max(runtime.NumCPU()-1, 1)
		}
		c.workers = n
	}
}

// WithCullPlaneStatePerSubtree sets the plane-state scope of every CullContext
// of the culler. Per-subtree scope is the default; see WithPlaneStatePerSubtree.
func WithCullPlaneStatePerSubtree(perSubtree bool) CullerBuilderOption {
	return func(c *Culler) {
		c.perSubtree = perSubtree
	}
}

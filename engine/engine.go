// Package engine drives the multi-frame pipeline: an update stage produces a
// frame's world state, a cull stage fills its render queue and a render stage
// draws it, with up to frame.MaxFrames frames in flight at once.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/camera"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/profiler"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/services"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrStopped is returned by Step and Run once the engine has shut down.
	ErrStopped = errors.New("engine: stopped")

	// ErrRunning is returned by Step and Run while Run is active.
	ErrRunning = errors.New("engine: already running")
)

// Resizer is implemented by backends whose surface follows the display size.
type Resizer interface {
	Resize(width, height int) error
}

// Engine owns the scene graph, the frame ring and the three pipeline stages.
type Engine interface {
	// Root returns the scene root. Topology changes while the engine runs must
	// go through Modify.
	Root() *scene.Node

	// Camera returns the live camera. Each frame renders a snapshot of it.
	Camera() camera.Camera

	// Backend returns the draw backend.
	Backend() renderer.DrawBackend

	// Services returns the service registry.
	Services() *services.Registry

	// Step runs one frame synchronously through update, cull and render.
	//
	// Parameters:
	//   - ctx: cancels the wait for a free slot
	//
	// Returns:
	//   - error: a stage failure, ErrRunning during Run, or ErrStopped after shutdown
	Step(ctx context.Context) error

	// Run pipelines frames until ctx is cancelled, Quit is called or a stage
	// fails, then drains in-flight frames and shuts the engine down.
	//
	// Parameters:
	//   - ctx: cancelling it stops the engine
	//
	// Returns:
	//   - error: the first stage or shutdown failure; nil on a requested stop
	Run(ctx context.Context) error

	// Modify queues fn to run on the update stage with exclusive access to the
	// graph, before the next frame's transforms are computed.
	//
	// Parameters:
	//   - fn: receives the root node
	Modify(fn func(root *scene.Node))

	// SetUpdateCallback sets the function called by the update stage before
	// controllers run. It may change local transforms but not topology.
	//
	// Parameters:
	//   - callback: receives the frame being produced and the seconds since the previous one
	SetUpdateCallback(callback func(fr frame.Frame, dt float32))

	// Resize updates the camera aspect and, when the backend is a Resizer,
	// reconfigures its surface on the GPU thread.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	Resize(width, height int)

	// EnableProfiler enables periodic profiler output.
	EnableProfiler()

	// DisableProfiler disables profiler output.
	DisableProfiler()

	// FramesRendered returns the number of frames the render stage completed.
	FramesRendered() uint64

	// LastStats returns the counters of the most recently rendered frame.
	LastStats() renderer.Stats

	// Quit asks Run to stop. Safe to call more than once and from any goroutine.
	Quit()

	// Close stops the engine if it is running, waits for Run to return and
	// releases every resource. Safe to call more than once.
	//
	// Returns:
	//   - error: the shutdown error, if any
	Close() error
}

type engine struct {
	root     *scene.Node
	camera   camera.Camera
	path     renderer.RenderPath
	backend  renderer.DrawBackend
	registry *services.Registry

	frames      int
	cullWorkers int
	perSubtree  bool
	tickRate    time.Duration

	ring    *frame.Ring
	states  [frame.MaxFrames]*renderer.FrameState
	culler  *renderer.Culler
	context *renderer.RenderContext
	gpu     *renderer.GPUQueue

	graphMu *sync.RWMutex
	editMu  *sync.Mutex
	edits   []func(root *scene.Node)

	callbackMu     *sync.Mutex
	updateCallback func(fr frame.Frame, dt float32)

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	statsMu   *sync.Mutex
	lastStats renderer.Stats
	rendered  atomic.Uint64
	lastFrame time.Time

	startOnce sync.Once
	startErr  error

	running  atomic.Bool
	inRun    atomic.Bool
	stopped  atomic.Bool
	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}

	shutdownOnce sync.Once
	shutdownErr  error
}

var _ Engine = &engine{}

// NewEngine creates an Engine. Unset collaborators get defaults: an empty root
// node, a default camera, a ForwardPath and a headless RecordingBackend.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the engine, ready for Step or Run
//   - error: if the ring size is invalid or the render path fails Setup
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		frames:      frame.MaxFrames,
		cullWorkers: 1,
		tickRate:    time.Second / 60,
		perSubtree:  true,
		graphMu:     &sync.RWMutex{},
		editMu:      &sync.Mutex{},
		callbackMu:  &sync.Mutex{},
		statsMu:     &sync.Mutex{},
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, option := range options {
		option(e)
	}

	if e.frames < 1 || e.frames > frame.MaxFrames {
		return nil, fmt.Errorf("engine: frames %d out of range [1,%d]", e.frames, frame.MaxFrames)
	}
	e.root = common.Coalesce(e.root, scene.NewNode("root"))
	if e.camera == nil {
		e.camera = camera.NewCamera()
	}
	if e.path == nil {
		e.path = renderer.NewForwardPath()
	}
	if e.backend == nil {
		e.backend = renderer.NewRecordingBackend(renderer.WithCallLog(false))
	}
	if e.registry == nil {
		e.registry = services.NewRegistry()
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}
	if err := e.path.Setup(); err != nil {
		return nil, fmt.Errorf("engine: render path setup: %w", err)
	}

	e.ring = frame.NewRing(e.frames)
	e.states = renderer.NewFrameStates(e.path)
	e.culler = renderer.NewCuller(
		renderer.WithCullWorkers(e.cullWorkers),
		renderer.WithCullPlaneStatePerSubtree(e.perSubtree),
	)
	e.context = renderer.NewRenderContext(e.backend)
	e.gpu = renderer.NewGPUQueue(e.frames)
	return e, nil
}

func (e *engine) Root() *scene.Node                { return e.root }
func (e *engine) Camera() camera.Camera            { return e.camera }
func (e *engine) Backend() renderer.DrawBackend    { return e.backend }
func (e *engine) Services() *services.Registry     { return e.registry }
func (e *engine) FramesRendered() uint64           { return e.rendered.Load() }
func (e *engine) EnableProfiler()                  { e.profilingEnabled.Store(true) }
func (e *engine) DisableProfiler()                 { e.profilingEnabled.Store(false) }
func (e *engine) Quit()                            { e.quitOnce.Do(func() { close(e.quit) }) }
func (e *engine) Modify(fn func(root *scene.Node)) { e.queueEdit(fn) }

func (e *engine) queueEdit(fn func(root *scene.Node)) {
	if fn == nil {
		return
	}
	e.editMu.Lock()
	e.edits = append(e.edits, fn)
	e.editMu.Unlock()
}

func (e *engine) SetUpdateCallback(callback func(fr frame.Frame, dt float32)) {
	e.callbackMu.Lock()
	e.updateCallback = callback
	e.callbackMu.Unlock()
}

func (e *engine) LastStats() renderer.Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.lastStats
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.camera.SetAspect(float32(width) / float32(height))
	if r, ok := e.backend.(Resizer); ok {
		e.gpu.Post(func() {
			if err := r.Resize(width, height); err != nil {
				common.Logger().Warn("backend resize failed", "width", width, "height", height, "err", err)
			}
		})
	}
}

// start initialises the services once, before the first frame.
func (e *engine) start() error {
	e.startOnce.Do(func() {
		if err := e.registry.Init(); err != nil {
			e.startErr = fmt.Errorf("engine: %w", err)
		}
	})
	return e.startErr
}

func (e *engine) Step(ctx context.Context) error {
	if e.stopped.Load() {
		return ErrStopped
	}
	if !e.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer e.running.Store(false)
	if err := e.start(); err != nil {
		return err
	}

	fr, err := e.ring.Acquire(ctx)
	if err != nil {
		return err
	}
	defer e.ring.Release(fr)

	fs := e.prepare(fr)
	if err := e.protect("update", fs, e.update); err != nil {
		return err
	}
	if err := e.protect("cull", fs, e.cull); err != nil {
		return err
	}
	return e.protect("render", fs, e.render)
}

func (e *engine) Run(ctx context.Context) error {
	if e.stopped.Load() {
		return ErrStopped
	}
	if !e.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	e.inRun.Store(true)
	defer close(e.done)
	if err := e.start(); err != nil {
		e.running.Store(false)
		return errors.Join(err, e.shutdown())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-e.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	common.Logger().Info("engine started", "frames", e.frames, "cullWorkers", e.culler.Workers())

	// Downstream stages drain until the producer closes its channel, so a
	// failure there cancels production directly.
	toCull := make(chan *renderer.FrameState, e.frames)
	toRender := make(chan *renderer.FrameState, e.frames)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.produce(gctx, toCull) })
	g.Go(func() error {
		defer close(toRender)
		var failed error
		for fs := range toCull {
			if failed != nil {
				e.ring.Release(fs.Frame)
				continue
			}
			if err := e.protect("cull", fs, e.cull); err != nil {
				e.ring.Release(fs.Frame)
				failed = err
				cancel()
				continue
			}
			toRender <- fs
		}
		return failed
	})
	g.Go(func() error {
		var failed error
		for fs := range toRender {
			if failed == nil {
				if failed = e.protect("render", fs, e.render); failed != nil {
					cancel()
				}
			}
			e.ring.Release(fs.Frame)
		}
		return failed
	})

	runErr := g.Wait()
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	if runErr != nil {
		common.Logger().Error("engine stopped on error", "err", runErr)
	}
	e.running.Store(false)
	return errors.Join(runErr, e.shutdown())
}

// produce is the update stage: it acquires slots, blocking while every slot is
// in flight, and hands produced frames to the cull stage.
func (e *engine) produce(ctx context.Context, toCull chan<- *renderer.FrameState) error {
	defer close(toCull)

	var ticker *time.Ticker
	if e.tickRate > 0 {
		ticker = time.NewTicker(e.tickRate)
		defer ticker.Stop()
	}
	for {
		fr, err := e.ring.Acquire(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, frame.ErrRingClosed) {
				return nil
			}
			return err
		}
		fs := e.prepare(fr)
		if err := e.protect("update", fs, e.update); err != nil {
			e.ring.Release(fr)
			return err
		}
		toCull <- fs

		if ticker != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	}
}

// protect runs stage fn for fs, turning a panic into an error.
func (e *engine) protect(stage string, fs *renderer.FrameState, fn func(*renderer.FrameState) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Warn("stage panicked", "stage", stage, "frame", fs.Frame.Number, "slot", int(fs.Frame.Slot), "err", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("engine: %s stage panicked on %s: %v", stage, fs.Frame, r)
		}
	}()
	return fn(fs)
}

func (e *engine) prepare(fr frame.Frame) *renderer.FrameState {
	now := time.Now()
	var dt float32
	if !e.lastFrame.IsZero() {
		dt = float32(now.Sub(e.lastFrame).Seconds())
	}
	e.lastFrame = now

	fs := e.states[fr.Slot]
	fs.Reset(fr, dt)
	return fs
}

func (e *engine) update(fs *renderer.FrameState) error {
	start := time.Now()
	e.path.PreFrame(fs)
	e.path.PreUpdate(fs)

	e.editMu.Lock()
	edits := e.edits
	e.edits = nil
	e.editMu.Unlock()
	if len(edits) > 0 {
		e.graphMu.Lock()
		for _, fn := range edits {
			fn(e.root)
		}
		e.graphMu.Unlock()
	}

	e.callbackMu.Lock()
	callback := e.updateCallback
	e.callbackMu.Unlock()
	if callback != nil {
		callback(fs.Frame, fs.DeltaTime)
	}

	e.graphMu.RLock()
	e.root.UpdateGeometricState(fs.Frame, fs.DeltaTime)
	e.graphMu.RUnlock()

	e.camera.Update()
	fs.Camera = e.camera.Clone()
	fs.Stats.UpdateTime = time.Since(start)
	return nil
}

func (e *engine) cull(fs *renderer.FrameState) error {
	e.path.PreCull(fs)
	e.graphMu.RLock()
	e.culler.Cull(fs, e.root)
	e.graphMu.RUnlock()
	e.path.PostCull(fs)
	return nil
}

// render runs the render stage for fs on the GPU queue and waits for it. Draws
// read renderable parents and targets, so the graph stays read-locked until the
// frame is submitted.
func (e *engine) render(fs *renderer.FrameState) error {
	e.graphMu.RLock()
	defer e.graphMu.RUnlock()
	return e.gpu.Do(func() error { return e.renderFrame(fs) })
}

func (e *engine) renderFrame(fs *renderer.FrameState) error {
	e.path.PreMaterial(fs)
	e.path.PreRender(fs)
	if err := e.context.Render(fs); err != nil {
		return err
	}
	e.path.PostRender(fs)
	e.path.AfterRender(fs)

	e.rendered.Add(1)
	e.statsMu.Lock()
	e.lastStats = fs.Stats
	e.statsMu.Unlock()
	if e.profilingEnabled.Load() {
		e.profiler.Tick(fs.Stats, e.ring.InFlight())
	}
	return nil
}

func (e *engine) Close() error {
	e.Quit()
	if e.inRun.Load() {
		select {
		case <-e.done:
		case <-time.After(10 * time.Second):
			return errors.New("engine: timed out waiting for Run to stop")
		}
	}
	return e.shutdown()
}

// shutdown stops the engine for good: the ring is closed and drained, the
// Cleanup hook runs, the backend is released on the GPU thread, the GPU queue
// is closed and the services are shut down.
func (e *engine) shutdown() error {
	e.shutdownOnce.Do(func() {
		e.stopped.Store(true)
		e.ring.Close()

		drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		var errs []error
		if err := e.ring.Drain(drainCtx); err != nil {
			errs = append(errs, fmt.Errorf("engine: drain: %w", err))
		}

		e.path.Cleanup()
		if err := e.gpu.Do(func() error {
			e.backend.Release()
			return nil
		}); err != nil {
			errs = append(errs, fmt.Errorf("engine: release backend: %w", err))
		}
		e.gpu.Close()

		if err := e.registry.Shutdown(); err != nil {
			errs = append(errs, err)
		}
		e.shutdownErr = errors.Join(errs...)
		common.Logger().Info("engine stopped", "frames", e.rendered.Load())
	})
	return e.shutdownErr
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/camera"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/geometry"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/services"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 5 * time.Second

func boxNode(name string, pos mgl32.Vec3) *scene.Node {
	return scene.NewNode(name,
		scene.WithTranslation(pos),
		scene.WithBatches(scene.NewBatch(name, geometry.NewBoxMesh(name, mgl32.Vec3{1, 1, 1}))),
	)
}

func testScene() *scene.Node {
	return scene.NewNode("root", scene.WithChildren(
		boxNode("a", mgl32.Vec3{0, 0, -10}),
		boxNode("b", mgl32.Vec3{3, 0, -20}),
		boxNode("behind", mgl32.Vec3{0, 0, 10}),
	))
}

func testCamera() camera.Camera {
	return camera.NewCamera(
		camera.WithLookAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}),
		camera.WithPerspective(90, 1, 1, 100),
	)
}

// newTestEngine builds an engine over testScene. A nil backend gets a fresh
// RecordingBackend.
func newTestEngine(t *testing.T, b *renderer.RecordingBackend, options ...EngineBuilderOption) (*engine, *renderer.RecordingBackend) {
	t.Helper()
	if b == nil {
		b = renderer.NewRecordingBackend()
	}
	base := []EngineBuilderOption{WithRoot(testScene()), WithCamera(testCamera()), WithTickRate(0), WithBackend(b)}
	eng, err := NewEngine(append(base, options...)...)
	require.NoError(t, err)
	return eng.(*engine), b
}

func runAsync(e Engine) <-chan error {
	errc := make(chan error, 1)
	go func() { errc <- e.Run(context.Background()) }()
	return errc
}

func TestStepRendersVisibleBoxes(t *testing.T) {
	e, b := newTestEngine(t, nil)
	require.NoError(t, e.Step(context.Background()))

	assert.Equal(t, []string{"a", "b"}, b.Draws(1))
	assert.Equal(t, uint64(1), e.FramesRendered())
	stats := e.LastStats()
	assert.Equal(t, 2, stats.Queued)
	assert.Equal(t, 2, stats.Drawn)
	assert.Zero(t, e.ring.InFlight())

	require.NoError(t, e.Close())
	assert.True(t, b.Released())
	assert.ErrorIs(t, e.Step(context.Background()), ErrStopped)
	assert.ErrorIs(t, e.Run(context.Background()), ErrStopped)
}

func TestStepHookOrder(t *testing.T) {
	var mu sync.Mutex
	var got []string
	rec := func(name string) func(*renderer.FrameState) {
		return func(*renderer.FrameState) {
			mu.Lock()
			got = append(got, name)
			mu.Unlock()
		}
	}
	path := renderer.NewForwardPath(renderer.WithHooks(renderer.HookSet{
		OnPreFrame:    rec("PreFrame"),
		OnPreUpdate:   rec("PreUpdate"),
		OnPreCull:     rec("PreCull"),
		OnPostCull:    rec("PostCull"),
		OnPreMaterial: rec("PreMaterial"),
		OnPreRender:   rec("PreRender"),
		OnPostRender:  rec("PostRender"),
		OnAfterRender: rec("AfterRender"),
		OnCleanup:     func() { rec("Cleanup")(nil) },
	}))
	e, _ := newTestEngine(t, nil, WithRenderPath(path))

	require.NoError(t, e.Step(context.Background()))
	require.NoError(t, e.Close())
	assert.Equal(t, []string{
		"PreFrame", "PreUpdate", "PreCull", "PostCull",
		"PreMaterial", "PreRender", "PostRender", "AfterRender", "Cleanup",
	}, got)
}

func TestModifyAppliesBeforeTransforms(t *testing.T) {
	e, b := newTestEngine(t, nil)
	e.Modify(func(root *scene.Node) {
		root.AttachChild(boxNode("added", mgl32.Vec3{0, 0, -5}))
	})
	require.NoError(t, e.Step(context.Background()))
	assert.Equal(t, []string{"added", "a", "b"}, b.Draws(1))
	require.NoError(t, e.Close())
}

func TestUpdateCallbackSeesEveryFrame(t *testing.T) {
	e, _ := newTestEngine(t, nil, WithFrames(2))
	var frames []frame.Frame
	e.SetUpdateCallback(func(fr frame.Frame, dt float32) {
		frames = append(frames, fr)
	})
	for i := 0; i < 4; i++ {
		require.NoError(t, e.Step(context.Background()))
	}
	require.NoError(t, e.Close())

	require.Len(t, frames, 4)
	for i, fr := range frames {
		assert.Equal(t, uint64(i+1), fr.Number)
		assert.Less(t, int(fr.Slot), 2)
	}
}

func TestRunBlocksWhenAllSlotsInFlight(t *testing.T) {
	gate := make(chan struct{})
	b := renderer.NewRecordingBackend(renderer.WithBeginFrameHook(func(frame.Frame) error {
		<-gate
		return nil
	}))
	e, _ := newTestEngine(t, b)
	var produced atomic.Int32
	e.SetUpdateCallback(func(frame.Frame, float32) { produced.Add(1) })

	errc := runAsync(e)
	require.Eventually(t, func() bool { return produced.Load() == frame.MaxFrames }, waitFor, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(frame.MaxFrames), produced.Load(), "producer must block while every slot is in flight")
	assert.Equal(t, frame.MaxFrames, e.ring.InFlight())
	assert.Zero(t, e.FramesRendered())

	close(gate)
	require.Eventually(t, func() bool { return e.FramesRendered() >= 10 }, waitFor, time.Millisecond)
	e.Quit()

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not return after Quit")
	}
	assert.Equal(t, uint64(produced.Load()), e.FramesRendered(), "every produced frame is rendered before shutdown")
	assert.Zero(t, e.ring.InFlight())
	assert.True(t, b.Released())
}

func TestQuitDrainsInFlightFrames(t *testing.T) {
	gate := make(chan struct{})
	b := renderer.NewRecordingBackend(renderer.WithBeginFrameHook(func(frame.Frame) error {
		<-gate
		return nil
	}))
	e, _ := newTestEngine(t, b, WithFrames(2))
	var produced atomic.Int32
	e.SetUpdateCallback(func(frame.Frame, float32) { produced.Add(1) })

	errc := runAsync(e)
	require.Eventually(t, func() bool { return produced.Load() == 2 }, waitFor, time.Millisecond)
	e.Quit()

	select {
	case <-errc:
		t.Fatal("Run returned before in-flight frames finished")
	case <-time.After(50 * time.Millisecond):
	}
	assert.False(t, b.Released(), "backend must outlive in-flight frames")

	close(gate)
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, uint64(2), e.FramesRendered())
	assert.True(t, b.Released())
	assert.Equal(t, 2, b.FrameCount())
}

func TestRunStopsOnBackendError(t *testing.T) {
	boom := errors.New("device lost")
	var n atomic.Int32
	b := renderer.NewRecordingBackend(renderer.WithBeginFrameHook(func(frame.Frame) error {
		if n.Add(1) == 3 {
			return boom
		}
		return nil
	}))
	e, _ := newTestEngine(t, b)

	select {
	case err := <-runAsync(e):
		require.ErrorIs(t, err, boom)
	case <-time.After(waitFor):
		t.Fatal("Run did not stop")
	}
	assert.Equal(t, uint64(2), e.FramesRendered())
	assert.Zero(t, e.ring.InFlight())
	assert.True(t, b.Released())
}

func TestRunRecoversStagePanic(t *testing.T) {
	e, b := newTestEngine(t, nil)
	e.SetUpdateCallback(func(fr frame.Frame, _ float32) {
		if fr.Number == 4 {
			panic("bad controller")
		}
	})

	select {
	case err := <-runAsync(e):
		require.Error(t, err)
		assert.Contains(t, err.Error(), "update stage panicked")
		assert.Contains(t, err.Error(), "bad controller")
	case <-time.After(waitFor):
		t.Fatal("Run did not stop")
	}
	assert.Equal(t, uint64(3), e.FramesRendered())
	assert.True(t, b.Released())
}

func TestRunCancelledByContext(t *testing.T) {
	e, _ := newTestEngine(t, nil, WithTickRate(1000))
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- e.Run(ctx) }()

	require.Eventually(t, func() bool { return e.FramesRendered() > 0 }, waitFor, time.Millisecond)
	assert.ErrorIs(t, e.Step(context.Background()), ErrRunning)
	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run ignored cancellation")
	}
	require.NoError(t, e.Close())
}

type orderService struct {
	name string
	log  *[]string
	mu   *sync.Mutex
}

func (s orderService) Name() string { return s.name }
func (s orderService) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.log = append(*s.log, "init "+s.name)
	return nil
}
func (s orderService) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.log = append(*s.log, "shutdown "+s.name)
	return nil
}

func TestServicesLifecycle(t *testing.T) {
	var log []string
	mu := &sync.Mutex{}
	reg := services.NewRegistry(orderService{"audio", &log, mu}, orderService{"input", &log, mu})
	e, b := newTestEngine(t, nil, WithServices(reg))

	require.NoError(t, e.Step(context.Background()))
	require.NoError(t, e.Step(context.Background()))
	require.NoError(t, e.Close())
	assert.Equal(t, []string{"init audio", "init input", "shutdown input", "shutdown audio"}, log)
	assert.True(t, b.Released())
}

func TestParallelCullEngineMatchesSerial(t *testing.T) {
	grid := func() *scene.Node {
		root := scene.NewNode("root")
		for i := 0; i < 6; i++ {
			group := scene.NewNode(fmt.Sprintf("g%d", i))
			for j := 0; j < 5; j++ {
				group.AttachChild(boxNode(fmt.Sprintf("b%d_%d", i, j), mgl32.Vec3{float32(i-3) * 8, 0, float32(-j*12) + 4}))
			}
			root.AttachChild(group)
		}
		return root
	}
	draws := func(workers int) []string {
		e, b := newTestEngine(t, nil, WithRoot(grid()), WithCullWorkers(workers))
		require.NoError(t, e.Step(context.Background()))
		require.NoError(t, e.Close())
		return b.Draws(1)
	}
	serial := draws(1)
	require.NotEmpty(t, serial)
	assert.Equal(t, serial, draws(4))
}

func TestResizeUpdatesAspect(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.Resize(1600, 800)
	assert.InDelta(t, 2.0, e.Camera().Aspect(), 1e-6)
	e.Resize(0, 10)
	assert.InDelta(t, 2.0, e.Camera().Aspect(), 1e-6)
	require.NoError(t, e.Close())
}

func TestNewEngineValidates(t *testing.T) {
	_, err := NewEngine(WithFrames(0))
	assert.Error(t, err)
	_, err = NewEngine(WithFrames(frame.MaxFrames + 1))
	assert.Error(t, err)
	_, err = NewEngine(WithRenderPath(renderer.NewForwardPath(renderer.WithShadows(true, -4))))
	assert.Error(t, err)
}

func TestModifyDuringRunMovesBatchSafely(t *testing.T) {
	left, right := mgl32.Vec3{-2, 0, -10}, mgl32.Vec3{2, 0, -10}
	mover := scene.NewBatch("mover", geometry.NewBoxMesh("mover", mgl32.Vec3{1, 1, 1}))
	root := scene.NewNode("root", scene.WithChildren(
		scene.NewNode("left", scene.WithTranslation(left), scene.WithBatches(mover)),
		scene.NewNode("right", scene.WithTranslation(right)),
	))

	var mu sync.Mutex
	var drawn []mgl32.Vec3
	b := renderer.NewRecordingBackend(renderer.WithDrawHook(func(dc renderer.DrawCall) error {
		if dc.Renderable == mover {
			mu.Lock()
			drawn = append(drawn, dc.World.Translation)
			mu.Unlock()
		}
		return nil
	}))
	e, _ := newTestEngine(t, b, WithRoot(root))
	e.SetUpdateCallback(func(frame.Frame, float32) {
		e.Modify(func(root *scene.Node) {
			dst := root.Find("left")
			if mover.Parent() == dst {
				dst = root.Find("right")
			}
			dst.AttachBatch(mover)
		})
	})

	errc := runAsync(e)
	require.Eventually(t, func() bool { return e.FramesRendered() >= 100 }, waitFor, time.Millisecond)
	e.Quit()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not return after Quit")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, drawn)
	for _, pos := range drawn {
		want := left
		if pos.X() > 0 {
			want = right
		}
		for i := range want {
			assert.InDelta(t, want[i], pos[i], 1e-4, "mover drawn at %v", pos)
		}
	}
}

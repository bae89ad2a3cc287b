// Command sceneview renders a grid of spinning boxes lit by a directional lamp
// and a bobbing point light. It runs in a GLFW window on WebGPU, or headless
// against a recording backend for a fixed number of frames.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/Carmen-Shannon/oxy-scenegraph/config"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/action"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/camera"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/geometry"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/light"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/renderer"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/renderer/wgpubackend"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/services"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

const gridSize = 12

func init() {
	// GLFW must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	headless := flag.Bool("headless", false, "render without a window using a recording backend")
	frames := flag.Int("frames", 600, "frames to render in headless mode")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fatal(err)
		}
	}

	var err error
	if *headless {
		err = runHeadless(cfg, *frames)
	} else {
		err = runWindowed(cfg)
	}
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	common.Logger().Error("sceneview failed", "err", err)
	os.Exit(1)
}

// runHeadless steps the engine synchronously and prints what it drew.
func runHeadless(cfg config.Config, frames int) error {
	root, _, err := buildScene()
	if err != nil {
		return err
	}
	backend := renderer.NewRecordingBackend(renderer.WithCallLog(false))
	ctrl := newController()
	cam := newCamera(ctrl, float32(cfg.Window.Width)/float32(cfg.Window.Height))

	options := append(cfg.EngineOptions(),
		engine.WithRoot(root),
		engine.WithCamera(cam),
		engine.WithBackend(backend),
		engine.WithServices(services.NewRegistry(services.NopAudio{})),
	)
	eng, err := engine.NewEngine(options...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng.SetUpdateCallback(func(_ frame.Frame, dt float32) {
		ctrl.Orbit(0.5*dt, 0)
	})

	start := time.Now()
	var total renderer.Stats
	for i := 0; i < frames; i++ {
		if err := eng.Step(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			return errors.Join(err, eng.Close())
		}
		total.Add(eng.LastStats())
	}
	elapsed := time.Since(start)
	if err := eng.Close(); err != nil {
		return err
	}

	n := eng.FramesRendered()
	fmt.Printf("rendered %d frames in %s (%.0f fps)\n", n, elapsed.Round(time.Millisecond), float64(n)/elapsed.Seconds())
	fmt.Printf("visited %d  culled %d  excluded %d  drawn %d  backend frames %d  draws %d\n",
		total.Visited, total.Culled, total.Excluded, total.Drawn, backend.FrameCount(), backend.DrawCount())
	return nil
}

// runWindowed runs the engine pipeline on background goroutines while the main
// thread pumps window events.
func runWindowed(cfg config.Config) error {
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer func() { _ = win.Close() }()

	backend, err := wgpubackend.New(win.SurfaceDescriptor(), win.Width(), win.Height(),
		wgpubackend.WithPresentMode(cfg.PresentMode()),
		wgpubackend.WithMSAA(cfg.MSAA()),
		wgpubackend.WithSoftwareAdapter(cfg.Backend.SoftwareAdapter),
	)
	if err != nil {
		return err
	}

	root, grid, err := buildScene()
	if err != nil {
		backend.Release()
		return err
	}
	ctrl := newController()
	cam := newCamera(ctrl, float32(win.Width())/float32(win.Height()))

	registry := services.NewRegistry(win, services.NopAudio{})
	options := append(cfg.EngineOptions(),
		engine.WithRoot(root),
		engine.WithCamera(cam),
		engine.WithBackend(backend),
		engine.WithServices(registry),
	)
	eng, err := engine.NewEngine(options...)
	if err != nil {
		backend.Release()
		return err
	}
	wireInput(win, eng, ctrl, grid)

	fmt.Println("sceneview: arrows/drag orbit, W/S/scroll zoom, A/D/Q/E pan, middle-drag pan")
	fmt.Println("           L toggles grid bound locking, P toggles profiling, Esc quits")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errc := make(chan error, 1)
	stopped := make(chan struct{})
	go func() {
		errc <- eng.Run(ctx)
		close(stopped)
	}()

	win.ProcessMessages(stopped)
	eng.Quit()
	return <-errc
}

func wireInput(win window.Window, eng engine.Engine, ctrl camera.Controller, grid *scene.Node) {
	var profiling, locked atomic.Bool
	win.SetKeyCallback(func(key int) {
		switch key {
		case common.KeyP:
			if profiling.CompareAndSwap(false, true) {
				eng.EnableProfiler()
			} else {
				profiling.Store(false)
				eng.DisableProfiler()
			}
		case common.KeyL:
			lock := !locked.Load()
			locked.Store(lock)
			eng.Modify(func(*scene.Node) { grid.LockBounds(lock) })
		default:
			ctrl.HandleKey(key)
		}
	})
	win.SetScrollCallback(func(delta float32) { ctrl.Zoom(delta) })
	win.SetDragCallback(func(dx, dy float32, middle bool) {
		if middle {
			ctrl.Pan(-dx*0.05, dy*0.05)
			return
		}
		ctrl.Orbit(-dx*0.005, dy*0.005)
	})
	win.SetResizeCallback(eng.Resize)
}

func newController() camera.Controller {
	return camera.NewOrbitController(
		camera.WithTarget(mgl32.Vec3{0, 0, 0}),
		camera.WithRadius(40),
		camera.WithRadiusLimits(5, 200),
		camera.WithAngles(0.6, 0.5),
	)
}

func newCamera(ctrl camera.Controller, aspect float32) camera.Camera {
	return camera.NewCamera(
		camera.WithPerspective(45, aspect, 0.1, 500),
		camera.WithController(ctrl),
	)
}

// buildScene returns the root and the grid node whose bounds the L key locks.
func buildScene() (*scene.Node, *scene.Node, error) {
	box := geometry.NewBoxMesh("box", mgl32.Vec3{1, 1, 1}, geometry.WithColor(mgl32.Vec4{0.8, 0.55, 0.3, 1}))
	glass := geometry.NewBoxMesh("glass", mgl32.Vec3{1.5, 1.5, 1.5}, geometry.WithColor(mgl32.Vec4{0.3, 0.6, 0.9, 0.4}))

	grid := scene.NewNode("grid")
	spacing := float32(3)
	offset := spacing * float32(gridSize-1) / 2
	for i := 0; i < gridSize; i++ {
		row := scene.NewNode(fmt.Sprintf("row%d", i), scene.WithTranslation(mgl32.Vec3{0, 0, float32(i)*spacing - offset}))
		for j := 0; j < gridSize; j++ {
			name := fmt.Sprintf("box%d_%d", i, j)
			var batch *scene.Batch
			if (i+j)%7 == 0 {
				batch = scene.NewBatch(name, glass, scene.WithQueueMask(renderer.QueueMask(renderer.QueueTransparent)))
			} else {
				batch = scene.NewBatch(name, box)
			}
			axis := mgl32.Vec3{float32(i%2) + 0.2, 1, float32(j%3) * 0.5}.Normalize()
			row.AttachChild(scene.NewNode(name,
				scene.WithTranslation(mgl32.Vec3{float32(j)*spacing - offset, 0, 0}),
				scene.WithBatches(batch),
				scene.WithController(scene.NewRotationController(axis, 0.5+float32(j%4)*0.25)),
			))
		}
		grid.AttachChild(row)
	}

	sun := light.NewLight(light.LightTypeDirectional,
		light.WithDirection(mgl32.Vec3{-0.4, -1, -0.3}),
		light.WithIntensity(0.9),
	)
	lamp := light.NewLight(light.LightTypePoint,
		light.WithColor(mgl32.Vec3{1, 0.8, 0.5}),
		light.WithIntensity(4),
		light.WithRange(25),
	)
	lampNode := scene.NewNode("lamp", scene.WithBatches(scene.NewLightBatch("lamp", lamp)))

	bob, err := bobAction()
	if err != nil {
		return nil, nil, err
	}
	mover := scene.NewNode("lamp-mover",
		scene.WithChildren(lampNode),
		scene.WithController(action.NewPlayer(bob, action.WithJoints(lampNode))),
	)

	root := scene.NewNode("root", scene.WithChildren(
		grid,
		mover,
		scene.NewNode("sun", scene.WithBatches(scene.NewLightBatch("sun", sun)), scene.WithCullHint(scene.CullNever)),
	))
	return root, grid, nil
}

// bobAction moves one joint around a square above the grid, four seconds per lap.
func bobAction() (*action.Action, error) {
	corners := []mgl32.Vec3{{-10, 6, -10}, {10, 8, -10}, {10, 6, 10}, {-10, 8, 10}}
	frames := make([][]action.JointPose, 0, len(corners)+1)
	for _, c := range append(corners, corners[0]) {
		frames = append(frames, []action.JointPose{{Translation: c, Rotation: mgl32.QuatIdent()}})
	}
	return action.NewAction("bob", 1, 1, frames)
}

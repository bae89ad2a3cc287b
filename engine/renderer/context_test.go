package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/light"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func litScene() *scene.Node {
	lamp := scene.NewLightBatch("lamp", light.NewLight(light.LightTypePoint, light.WithRange(5)))
	glass := box("glass", scene.WithQueueMask(QueueTransparent.Bit()))
	hud := box("hud", scene.WithQueueMask(QueueOpaque.Bit()), scene.WithPassMask(PassOrtho.Bit()))
	root := scene.NewNode("root", scene.WithChildren(
		at("far", mgl32.Vec3{0, 0, -40}, box("far")),
		at("near", mgl32.Vec3{0, 0, -5}, box("near"), lamp),
		at("glass", mgl32.Vec3{0, 0, -8}, glass),
		at("hud", mgl32.Vec3{0, 0, -6}, hud),
	))
	root.UpdateGeometricState(testFrame, 0)
	return root
}

func TestRenderDrawsPassesInOrder(t *testing.T) {
	fs := frameState(t, NewForwardPath())
	NewCuller(WithCullWorkers(1)).Cull(fs, litScene())

	b := NewRecordingBackend()
	require.NoError(t, NewRenderContext(b).Render(fs))

	assert.Equal(t, []string{"near", "far", "lamp", "glass"}, b.Draws(testFrame.Number))
	assert.Equal(t, 4, fs.Stats.Drawn)
	assert.Equal(t, 1, b.FrameCount())

	var ops []Op
	var passes []PassID
	for _, c := range b.Calls() {
		ops = append(ops, c.Op)
		if c.Op == OpBeginPass {
			passes = append(passes, c.Pass)
		}
	}
	assert.Equal(t, OpBeginFrame, ops[0])
	assert.Equal(t, OpEndFrame, ops[len(ops)-1])
	assert.Equal(t, []PassID{PassOpaque, PassLight, PassTransparent, PassOrtho, PassPost}, passes)
}

func TestRenderHonoursPassMaskAndDisabledPasses(t *testing.T) {
	fs := frameState(t, NewForwardPath())
	NewCuller(WithCullWorkers(1)).Cull(fs, litScene())
	fs.Pass(PassLight).Enabled = false
	fs.Pass(PassOrtho).Queues = []QueueID{QueueOpaque}

	b := NewRecordingBackend()
	require.NoError(t, NewRenderContext(b, WithSorting(false)).Render(fs))

	var ortho []string
	for _, c := range b.Calls() {
		if c.Op == OpDraw && c.Pass == PassOrtho {
			ortho = append(ortho, c.Name)
		}
		assert.NotEqual(t, PassLight, c.Pass, "disabled pass must not run")
	}
	assert.Equal(t, []string{"far", "near", "hud"}, ortho)
	assert.NotContains(t, b.Draws(testFrame.Number)[:2], "hud", "hud only draws in the ortho pass")
}

func TestRenderStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	fs := frameState(t, NewForwardPath())
	NewCuller(WithCullWorkers(1)).Cull(fs, litScene())

	b := NewRecordingBackend(WithDrawHook(func(dc DrawCall) error {
		if dc.Renderable.Name() == "far" {
			return boom
		}
		return nil
	}))
	err := NewRenderContext(b).Render(fs)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"far"`)

	calls := b.Calls()
	assert.Equal(t, []string{"near"}, b.Draws(testFrame.Number))
	assert.Equal(t, OpEndPass, calls[len(calls)-2].Op)
	assert.Equal(t, OpEndFrame, calls[len(calls)-1].Op)
}

func TestRenderBeginFrameErrorSkipsFrame(t *testing.T) {
	boom := errors.New("lost surface")
	fs := frameState(t, NewForwardPath())
	b := NewRecordingBackend(WithBeginFrameHook(func(frame.Frame) error { return boom }))

	require.ErrorIs(t, NewRenderContext(b).Render(fs), boom)
	assert.Empty(t, b.Calls())
	assert.Zero(t, b.FrameCount())
}

func TestNewRenderContextRequiresBackend(t *testing.T) {
	assert.Panics(t, func() { NewRenderContext(nil) })
}

package action

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoFrames moves joint 0 from x=0 to x=10 and turns it 90 degrees around Y.
func twoFrames(t *testing.T) *Action {
	t.Helper()
	a, err := NewAction("walk", 2, 1, [][]JointPose{
		{{Translation: mgl32.Vec3{0, 0, 0}, Rotation: mgl32.QuatIdent()}},
		{{Translation: mgl32.Vec3{10, 0, 0}, Rotation: mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})}},
	})
	require.NoError(t, err)
	return a
}

func TestNewActionValidatesShape(t *testing.T) {
	_, err := NewAction("bad", 30, 2, [][]JointPose{{{}}})
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = NewAction("bad", 0, 1, [][]JointPose{{{}}})
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = NewAction("bad", 30, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidAction)

	a, err := NewAction("idle", 30, 1, [][]JointPose{{{}}})
	require.NoError(t, err)
	assert.Equal(t, mgl32.QuatIdent(), a.Pose(0, 0).Rotation, "zero rotation becomes identity")
}

func TestSampleInterpolates(t *testing.T) {
	a := twoFrames(t)
	assert.Equal(t, float32(1), a.Duration())

	mid := a.Sample(0.25, 0)
	assert.InDelta(t, 5, mid.Translation.X(), 1e-5)
	want := mgl32.QuatRotate(mgl32.DegToRad(45), mgl32.Vec3{0, 1, 0})
	assert.InDelta(t, want.W, mid.Rotation.W, 1e-5)
	assert.InDeltaSlice(t, want.V[:], mid.Rotation.V[:], 1e-5)

	assert.Equal(t, a.Pose(1, 0), a.Sample(0.5, 0))
}

func TestSampleWraps(t *testing.T) {
	a := twoFrames(t)
	assert.InDelta(t, 5, a.Sample(1.25, 0).Translation.X(), 1e-5)
	assert.InDelta(t, 5, a.Sample(0.75, 0).Translation.X(), 1e-5, "last frame blends back into the first")
	assert.InDelta(t, 5, a.Sample(-0.25, 0).Translation.X(), 1e-5)
}

func TestPlayerPosesBoundJoints(t *testing.T) {
	a := twoFrames(t)
	joint := scene.NewNode("joint")
	root := scene.NewNode("root", scene.WithChildren(joint))
	p := NewPlayer(a, WithJoints(joint))
	root.AddController(p)

	fr := frame.Frame{Slot: 0, Number: 1}
	root.UpdateGeometricState(fr, 0.25)

	assert.InDelta(t, 5, joint.Local().Translation.X(), 1e-5)
	assert.InDelta(t, 5, joint.World(0).Translation.X(), 1e-5, "pose is visible in the same frame")
}

func TestPlayerStopsWithoutLoop(t *testing.T) {
	a := twoFrames(t)
	joint := scene.NewNode("joint")
	p := NewPlayer(a, WithLoop(false), WithSpeed(2), WithJoints(joint))

	p.Update(nil, 1)
	assert.False(t, p.Playing())
	assert.Equal(t, float32(0.5), p.Time())
	assert.Equal(t, mgl32.Vec3{10, 0, 0}, joint.Local().Translation)

	p.Update(nil, 1)
	assert.Equal(t, float32(0.5), p.Time(), "a stopped player does not advance")
}

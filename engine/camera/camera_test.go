package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/bounding"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecNear(t *testing.T, want, have mgl32.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], have[:], 1e-4, msgAndArgs...)
}

func newTestCamera() Camera {
	return NewCamera(
		WithLookAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}),
		WithPerspective(90, 1, 1, 100),
	)
}

func TestContainsInsideSetsEveryPlaneBit(t *testing.T) {
	cam := newTestCamera()
	assert.Equal(t, Inside, cam.Contains(bounding.NewSphere(mgl32.Vec3{0, 0, -10}, 1)))
	assert.Equal(t, allPlanes, cam.PlaneState())
}

func TestContainsOutsideCachesCheckPlane(t *testing.T) {
	cam := newTestCamera()
	s := bounding.NewSphere(mgl32.Vec3{0, 0, 10}, 1)
	assert.Equal(t, Outside, cam.Contains(s))
	assert.Equal(t, common.FrustumNear, s.CheckPlane())
}

func TestContainsIntersectsFarPlane(t *testing.T) {
	cam := newTestCamera()
	assert.Equal(t, Intersects, cam.Contains(bounding.NewSphere(mgl32.Vec3{0, 0, -100}, 5)))
	assert.Zero(t, cam.PlaneState()&(1<<common.FrustumFar))
	assert.NotZero(t, cam.PlaneState()&(1<<common.FrustumNear))
}

func TestContainsNilBound(t *testing.T) {
	assert.Equal(t, Intersects, newTestCamera().Contains(nil))
}

func TestContainsTestsCheckPlaneFirst(t *testing.T) {
	cam := newTestCamera()
	s := bounding.NewSphere(mgl32.Vec3{0, 0, 10}, 1)
	s.SetCheckPlane(common.FrustumNear)

	assert.Equal(t, Outside, cam.Contains(s))
	assert.Zero(t, cam.PlaneState(), "no other plane is visited once the check plane rejects")
}

func TestContainsIgnoresInvalidCheckPlane(t *testing.T) {
	cam := newTestCamera()
	s := bounding.NewSphere(mgl32.Vec3{0, 0, -10}, 1)
	s.SetCheckPlane(42)
	assert.Equal(t, Inside, cam.Contains(s))
}

func TestContainsSkipsPlanesInPlaneState(t *testing.T) {
	cam := newTestCamera()
	cam.SetPlaneState(allPlanes)
	assert.Equal(t, Inside, cam.Contains(bounding.NewSphere(mgl32.Vec3{0, 0, 10}, 1)))

	cam.SetPlaneState(0xFFFF)
	assert.Equal(t, allPlanes, cam.PlaneState(), "bits beyond the six planes are dropped")
}

func TestParallelProjection(t *testing.T) {
	cam := NewCamera(
		WithLookAt(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}),
		WithParallel(-10, 10, -10, 10, 0.1, 50),
	)
	require.True(t, cam.IsParallel())

	s := bounding.NewSphere(mgl32.Vec3{15, 0, -5}, 1)
	assert.Equal(t, Outside, cam.Contains(s))
	assert.Equal(t, common.FrustumRight, s.CheckPlane())

	cam.SetPlaneState(0)
	assert.Equal(t, Inside, cam.Contains(bounding.NewBox(mgl32.Vec3{5, 5, -5}, mgl32.Vec3{1, 1, 1})))
}

func TestCloneHasIndependentPlaneState(t *testing.T) {
	cam := newTestCamera()
	cp := cam.Clone()
	cp.Contains(bounding.NewSphere(mgl32.Vec3{0, 0, -10}, 1))

	assert.Equal(t, allPlanes, cp.PlaneState())
	assert.Zero(t, cam.PlaneState())
	assert.Equal(t, cam.ViewProjection(), cp.ViewProjection())
}

func TestControllerDrivesCamera(t *testing.T) {
	ctrl := NewOrbitController(WithRadius(10), WithAngles(0, 0))
	assertVecNear(t, mgl32.Vec3{0, 0, 10}, ctrl.Position())

	cam := NewCamera(WithController(ctrl))
	assertVecNear(t, mgl32.Vec3{0, 0, 10}, cam.Location())
	assertVecNear(t, mgl32.Vec3{0, 0, -1}, cam.Direction())

	require.True(t, ctrl.HandleKey(common.KeyW))
	cam.Update()
	assert.InDelta(t, 9, cam.Location().Z(), 1e-4)
	assert.False(t, ctrl.HandleKey(common.KeySpace))
}

func TestControllerClampsElevation(t *testing.T) {
	ctrl := NewOrbitController()
	ctrl.Orbit(0, 10)
	assert.Less(t, ctrl.Elevation(), float32(1.5708))
}

func TestGPUCameraUniform(t *testing.T) {
	u := NewGPUCameraUniform(newTestCamera())
	assert.Equal(t, 80, u.Size())
	assert.Len(t, u.Marshal(), 80)
}

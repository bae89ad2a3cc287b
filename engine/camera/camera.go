// Package camera provides the view/projection camera and the frustum test used by
// the cull stage. A Camera is not safe for concurrent culling: each cull thread
// works on its own Clone so plane-state bits and check-plane hints stay private.
package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/bounding"
	"github.com/go-gl/mathgl/mgl32"
)

// FrustumIntersect is the result of testing a bound against the view frustum.
type FrustumIntersect int

const (
	// Outside means the bound lies entirely outside at least one plane.
	Outside FrustumIntersect = iota
	// Intersects means the bound straddles at least one plane, or has no extent to test.
	Intersects
	// Inside means the bound lies entirely inside every plane tested.
	Inside
)

func (fi FrustumIntersect) String() string {
	switch fi {
	case Inside:
		return "inside"
	case Intersects:
		return "intersects"
	default:
		return "outside"
	}
}

// allPlanes has one bit set per frustum plane.
const allPlanes uint32 = 1<<common.FrustumPlanes - 1

type cameraImpl struct {
	mu *sync.Mutex

	location  mgl32.Vec3
	direction mgl32.Vec3
	up        mgl32.Vec3

	parallel bool
	fov      float32 // degrees
	aspect   float32
	near     float32
	far      float32
	// parallel frustum extents
	left, right, bottom, top float32

	view           mgl32.Mat4
	projection     mgl32.Mat4
	viewProjection mgl32.Mat4
	frustum        common.Frustum

	planeState uint32
	controller Controller
}

// Camera holds the view and projection settings, the six world-space frustum
// planes derived from them and the plane-state bitmask used while culling.
type Camera interface {
	// Location returns the world-space eye position.
	//
	// Returns:
	//   - mgl32.Vec3: eye position
	Location() mgl32.Vec3

	// Direction returns the normalized world-space view direction.
	//
	// Returns:
	//   - mgl32.Vec3: view direction
	Direction() mgl32.Vec3

	// Up returns the up vector used to build the view matrix.
	Up() mgl32.Vec3

	// LookAt places the camera explicitly. It has no effect on the next Update
	// while a Controller is attached.
	//
	// Parameters:
	//   - location: eye position
	//   - target: point to look at
	//   - up: world up vector
	LookAt(location, target, up mgl32.Vec3)

	// SetPerspective switches to a perspective projection.
	//
	// Parameters:
	//   - fovDeg: vertical field of view in degrees
	//   - aspect: width / height
	//   - near: near plane distance
	//   - far: far plane distance
	SetPerspective(fovDeg, aspect, near, far float32)

	// SetParallel switches to an orthographic projection.
	//
	// Parameters:
	//   - left, right, bottom, top: view-space extents
	//   - near, far: clip distances
	SetParallel(left, right, bottom, top, near, far float32)

	// IsParallel reports whether the camera uses an orthographic projection.
	IsParallel() bool

	// Aspect returns the perspective aspect ratio.
	Aspect() float32

	// SetAspect updates the perspective aspect ratio, typically after a resize.
	SetAspect(aspect float32)

	// Controller returns the attached Controller, or nil.
	Controller() Controller

	// SetController attaches a Controller that drives location and direction on Update.
	SetController(ctrl Controller)

	// Update recomputes the view, projection and view-projection matrices and the
	// six world-space frustum planes.
	Update()

	// View returns the view matrix.
	View() mgl32.Mat4

	// Projection returns the projection matrix (OpenGL clip depth).
	Projection() mgl32.Mat4

	// ViewProjection returns Projection * View.
	ViewProjection() mgl32.Mat4

	// Frustum returns a copy of the world-space frustum planes computed by the last Update.
	Frustum() common.Frustum

	// Contains tests a world bound against the frustum.
	//
	// The bound's check plane, when valid, is tested first, then the planes from
	// FrustumPlanes-1 down to 0. Planes whose bit is set in the plane state are
	// skipped. A plane the bound lies fully outside is cached as the bound's check
	// plane and Outside is returned at once. A plane the bound lies fully inside
	// has its bit set in the plane state. A nil bound yields Intersects.
	//
	// Parameters:
	//   - bound: world-space volume, or nil
	//
	// Returns:
	//   - FrustumIntersect: Inside, Intersects or Outside
	Contains(bound bounding.Volume) FrustumIntersect

	// PlaneState returns the bitmask of planes known to contain the current subtree.
	PlaneState() uint32

	// SetPlaneState replaces the plane-state bitmask.
	SetPlaneState(state uint32)

	// Clone returns an independent copy sharing no mutable state. The controller
	// reference is shared.
	Clone() Camera
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective Camera at the origin looking down -Z, with
// any provided options applied and its matrices computed.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:        &sync.Mutex{},
		direction: mgl32.Vec3{0, 0, -1},
		up:        mgl32.Vec3{0, 1, 0},
		fov:       45,
		aspect:    1,
		near:      0.1,
		far:       1000,
		left:      -1, right: 1, bottom: -1, top: 1,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Location() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

func (c *cameraImpl) Direction() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.direction
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) LookAt(location, target, up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookAt(location, target, up)
}

func (c *cameraImpl) lookAt(location, target, up mgl32.Vec3) {
	c.location = location
	if d := target.Sub(location); d.Len() > 0 {
		c.direction = d.Normalize()
	}
	if up.Len() > 0 {
		c.up = up.Normalize()
	}
}

func (c *cameraImpl) SetPerspective(fovDeg, aspect, near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parallel = false
	c.fov, c.aspect, c.near, c.far = fovDeg, aspect, near, far
}

func (c *cameraImpl) SetParallel(left, right, bottom, top, near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parallel = true
	c.left, c.right, c.bottom, c.top = left, right, bottom, top
	c.near, c.far = near, far
}

func (c *cameraImpl) IsParallel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parallel
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) Controller() Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl Controller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frustum
}

// Contains, PlaneState and SetPlaneState run on the cull thread's private clone
// and take no lock.

func (c *cameraImpl) Contains(bound bounding.Volume) FrustumIntersect {
	if bound == nil {
		return Intersects
	}

	result := Inside
	check := bound.CheckPlane()
	if check >= 0 && check < common.FrustumPlanes && c.planeState&(1<<check) == 0 {
		switch bound.WhichSide(&c.frustum.Planes[check]) {
		case common.SideNegative:
			return Outside
		case common.SidePositive:
			c.planeState |= 1 << check
		default:
			result = Intersects
		}
	}

	for plane := common.FrustumPlanes - 1; plane >= 0; plane-- {
		if plane == check {
			continue
		}
		bit := uint32(1) << plane
		if c.planeState&bit != 0 {
			continue
		}
		switch bound.WhichSide(&c.frustum.Planes[plane]) {
		case common.SideNegative:
			bound.SetCheckPlane(plane)
			return Outside
		case common.SidePositive:
			c.planeState |= bit
		default:
			result = Intersects
		}
	}
	return result
}

func (c *cameraImpl) PlaneState() uint32 {
	return c.planeState
}

func (c *cameraImpl) SetPlaneState(state uint32) {
	c.planeState = state & allPlanes
}

func (c *cameraImpl) Clone() Camera {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *c
	cp.mu = &sync.Mutex{}
	return &cp
}

// updateMatrices recalculates the view, projection and view-projection matrices and
// the frustum planes. It reads position and target from the controller when one is
// attached. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	if c.controller != nil {
		c.lookAt(c.controller.Position(), c.controller.Target(), c.up)
	}

	c.view = mgl32.LookAtV(c.location, c.location.Add(c.direction), c.up)
	if c.parallel {
		c.projection = mgl32.Ortho(c.left, c.right, c.bottom, c.top, c.near, c.far)
	} else {
		c.projection = mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect, c.near, c.far)
	}
	c.viewProjection = c.projection.Mul4(c.view)
	c.frustum = common.ExtractFrustumFromMatrix(c.viewProjection)
}

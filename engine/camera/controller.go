package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Controller owns the camera's positional state. The Camera reads Position and
// Target from it on every Update.
//
// The orbit controls use spherical coordinates (radius, azimuth, elevation)
// relative to the target. Panning shifts position and target by the same
// offset, preserving the orbit relationship.
type Controller interface {
	// Position returns the world-space eye position.
	//
	// Returns:
	//   - mgl32.Vec3: eye position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: pivot position
	Target() mgl32.Vec3

	// SetTarget sets the pivot point and recomputes position.
	SetTarget(target mgl32.Vec3)

	// Orbit rotates around the target.
	//
	// Parameters:
	//   - dAzimuth: horizontal change in radians
	//   - dElevation: vertical change in radians, clamped to the elevation limits
	Orbit(dAzimuth, dElevation float32)

	// Zoom changes the orbit radius. Positive delta moves closer to the target.
	Zoom(delta float32)

	// Pan translates position and target along the camera's local right and up axes.
	Pan(right, up float32)

	// Radius returns the distance from target.
	Radius() float32

	// Azimuth returns the horizontal angle around the Y axis in radians.
	Azimuth() float32

	// Elevation returns the vertical angle from the horizontal plane in radians.
	Elevation() float32

	// HandleKey applies one step of the keyboard bindings: arrows orbit, W/S zoom,
	// A/D/Q/E pan. It reports whether the key was consumed.
	//
	// Parameters:
	//   - key: GLFW key code
	//
	// Returns:
	//   - bool: true if the key moved the camera
	HandleKey(key int) bool
}

type orbitController struct {
	mu *sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32
	panSpeed   float32
}

var _ Controller = &orbitController{}

// NewOrbitController creates an orbit Controller with sensible defaults.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewOrbitController(options ...ControllerBuilderOption) Controller {
	oc := &orbitController{
		mu:           &sync.Mutex{},
		radius:       30,
		elevation:    math32.Pi / 6,
		minRadius:    1,
		maxRadius:    2000,
		minElevation: -math32.Pi/2 + 0.1,
		maxElevation: math32.Pi/2 - 0.1,
		orbitSpeed:   0.03,
		zoomSpeed:    1,
		panSpeed:     0.5,
	}
	for _, option := range options {
		option(oc)
	}
	oc.radius = common.Clamp(oc.radius, oc.minRadius, oc.maxRadius)
	oc.elevation = common.Clamp(oc.elevation, oc.minElevation, oc.maxElevation)
	oc.updatePosition()
	return oc
}

// updatePosition recomputes the position from spherical coordinates. Caller must hold the mutex.
func (oc *orbitController) updatePosition() {
	cosElev, sinElev := math32.Cos(oc.elevation), math32.Sin(oc.elevation)
	cosAzim, sinAzim := math32.Cos(oc.azimuth), math32.Sin(oc.azimuth)
	oc.position = oc.target.Add(mgl32.Vec3{
		oc.radius * cosElev * sinAzim,
		oc.radius * sinElev,
		oc.radius * cosElev * cosAzim,
	})
}

func (oc *orbitController) Position() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.position
}

func (oc *orbitController) Target() mgl32.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target
}

func (oc *orbitController) SetTarget(target mgl32.Vec3) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.target = target
	oc.updatePosition()
}

func (oc *orbitController) Orbit(dAzimuth, dElevation float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth += dAzimuth
	oc.elevation = common.Clamp(oc.elevation+dElevation, oc.minElevation, oc.maxElevation)
	oc.updatePosition()
}

func (oc *orbitController) Zoom(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius = common.Clamp(oc.radius-delta*oc.zoomSpeed, oc.minRadius, oc.maxRadius)
	oc.updatePosition()
}

func (oc *orbitController) Pan(right, up float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	back := oc.position.Sub(oc.target)
	if back.Len() < 1e-8 {
		return
	}
	back = back.Normalize()
	r := mgl32.Vec3{0, 1, 0}.Cross(back)
	if r.Len() < 1e-8 {
		return
	}
	r = r.Normalize()
	u := back.Cross(r)
	offset := r.Mul(right * oc.panSpeed).Add(u.Mul(up * oc.panSpeed))
	oc.target = oc.target.Add(offset)
	oc.position = oc.position.Add(offset)
}

func (oc *orbitController) Radius() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.radius
}

func (oc *orbitController) Azimuth() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.azimuth
}

func (oc *orbitController) Elevation() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.elevation
}

func (oc *orbitController) HandleKey(key int) bool {
	switch key {
	case common.KeyLeft:
		oc.Orbit(-oc.orbitSpeed, 0)
	case common.KeyRight:
		oc.Orbit(oc.orbitSpeed, 0)
	case common.KeyUp:
		oc.Orbit(0, oc.orbitSpeed)
	case common.KeyDown:
		oc.Orbit(0, -oc.orbitSpeed)
	case common.KeyW:
		oc.Zoom(1)
	case common.KeyS:
		oc.Zoom(-1)
	case common.KeyA:
		oc.Pan(-1, 0)
	case common.KeyD:
		oc.Pan(1, 0)
	case common.KeyQ:
		oc.Pan(0, -1)
	case common.KeyE:
		oc.Pan(0, 1)
	default:
		return false
	}
	return true
}

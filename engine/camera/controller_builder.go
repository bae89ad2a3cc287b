package camera

import "github.com/go-gl/mathgl/mgl32"

// ControllerBuilderOption is a function that configures an orbit controller during construction.
type ControllerBuilderOption func(*orbitController)

// WithTarget sets the initial pivot point.
//
// Parameters:
//   - target: world-space pivot
//
// Returns:
//   - ControllerBuilderOption: a function that sets the target
func WithTarget(target mgl32.Vec3) ControllerBuilderOption {
	return func(oc *orbitController) {
		oc.target = target
	}
}

// WithRadius sets the initial orbit radius. It is clamped to the radius limits.
//
// Parameters:
//   - radius: distance from target
//
// Returns:
//   - ControllerBuilderOption: a function that sets the radius
func WithRadius(radius float32) ControllerBuilderOption {
	return func(oc *orbitController) {
		oc.radius = radius
	}
}

// WithRadiusLimits sets the minimum and maximum orbit radius.
func WithRadiusLimits(minRadius, maxRadius float32) ControllerBuilderOption {
	return func(oc *orbitController) {
		oc.minRadius, oc.maxRadius = minRadius, maxRadius
	}
}

// WithAngles sets the initial azimuth and elevation in radians.
//
// Parameters:
//   - azimuth: horizontal angle around Y
//   - elevation: vertical angle from the horizontal plane
//
// Returns:
//   - ControllerBuilderOption: a function that sets the angles
func WithAngles(azimuth, elevation float32) ControllerBuilderOption {
	return func(oc *orbitController) {
		oc.azimuth, oc.elevation = azimuth, elevation
	}
}

// WithSpeeds sets the keyboard orbit step (radians), zoom multiplier and pan multiplier.
func WithSpeeds(orbit, zoom, pan float32) ControllerBuilderOption {
	return func(oc *orbitController) {
		oc.orbitSpeed, oc.zoomSpeed, oc.panSpeed = orbit, zoom, pan
	}
}

package camera

import "github.com/go-gl/mathgl/mgl32"

type CameraBuilderOption func(*cameraImpl)

// WithLookAt places the camera at location looking at target.
//
// Parameters:
//   - location: eye position
//   - target: point to look at
//   - up: world up vector
//
// Returns:
//   - CameraBuilderOption: a function that places the camera
func WithLookAt(location, target, up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.lookAt(location, target, up)
	}
}

// WithPerspective sets a perspective projection.
//
// Parameters:
//   - fovDeg: vertical field of view in degrees
//   - aspect: width / height
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the projection
func WithPerspective(fovDeg, aspect, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.parallel = false
		c.fov, c.aspect, c.near, c.far = fovDeg, aspect, near, far
	}
}

// WithParallel sets an orthographic projection.
//
// Parameters:
//   - left, right, bottom, top: view-space extents
//   - near, far: clip distances
//
// Returns:
//   - CameraBuilderOption: a function that sets the projection
func WithParallel(left, right, bottom, top, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.parallel = true
		c.left, c.right, c.bottom, c.top = left, right, bottom, top
		c.near, c.far = near, far
	}
}

// WithController attaches a controller to the camera.
// After all options are applied, the camera recomputes its matrices from the controller's state.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl Controller) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}

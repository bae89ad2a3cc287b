package scene

import "github.com/go-gl/mathgl/mgl32"

// Controller animates a node during the update stage. Update runs before world
// transforms are combined, so changes to the local transform take effect in the
// same frame.
type Controller interface {
	// Update advances the controller.
	//
	// Parameters:
	//   - n: the node the controller is registered on
	//   - dt: elapsed seconds since the previous frame
	Update(n *Node, dt float32)
}

// ControllerFunc adapts a function to the Controller interface.
type ControllerFunc func(n *Node, dt float32)

func (f ControllerFunc) Update(n *Node, dt float32) { f(n, dt) }

// RotationController spins a node around a local axis at a constant rate.
type RotationController struct {
	Axis    mgl32.Vec3
	Speed   float32 // radians per second
	Enabled bool
}

// NewRotationController returns an enabled RotationController.
//
// Parameters:
//   - axis: rotation axis; normalized
//   - speed: radians per second
//
// Returns:
//   - *RotationController: the controller
func NewRotationController(axis mgl32.Vec3, speed float32) *RotationController {
	if axis.Len() == 0 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return &RotationController{Axis: axis.Normalize(), Speed: speed, Enabled: true}
}

func (rc *RotationController) Update(n *Node, dt float32) {
	if !rc.Enabled || rc.Speed == 0 {
		return
	}
	q := mgl32.QuatRotate(rc.Speed*dt, rc.Axis).Mul(n.local.Rotation)
	n.local.Rotation = q.Normalize()
}

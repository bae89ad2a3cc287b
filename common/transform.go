package common

import "github.com/go-gl/mathgl/mgl32"

// Transform is a decomposed translation, rotation and scale.
// Applying a Transform to a point scales, then rotates, then translates it.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// IdentityTransform returns the transform that leaves every point unchanged.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Combine stores parent ∘ local into t, so that t.Apply(p) == parent.Apply(local.Apply(p))
// whenever scales are uniform. t may alias neither parent nor local.
//
// Parameters:
//   - parent: the outer (parent world) transform
//   - local: the inner (child local) transform
func (t *Transform) Combine(parent, local *Transform) {
	t.Scale = mgl32.Vec3{
		parent.Scale[0] * local.Scale[0],
		parent.Scale[1] * local.Scale[1],
		parent.Scale[2] * local.Scale[2],
	}
	t.Rotation = parent.Rotation.Mul(local.Rotation)
	t.Translation = parent.Apply(local.Translation)
}

// Apply transforms point by t.
func (t *Transform) Apply(point mgl32.Vec3) mgl32.Vec3 {
	scaled := mgl32.Vec3{point[0] * t.Scale[0], point[1] * t.Scale[1], point[2] * t.Scale[2]}
	return t.Rotation.Rotate(scaled).Add(t.Translation)
}

// Matrix returns the 4x4 model matrix T * R * S.
func (t *Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2]).
		Mul4(t.Rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// Inverse returns the transform undoing t. Exact for uniform scale.
func (t *Transform) Inverse() Transform {
	inv := Transform{
		Rotation: t.Rotation.Inverse(),
		Scale:    mgl32.Vec3{safeInv(t.Scale[0]), safeInv(t.Scale[1]), safeInv(t.Scale[2])},
	}
	r := inv.Rotation.Rotate(t.Translation.Mul(-1))
	inv.Translation = mgl32.Vec3{r[0] * inv.Scale[0], r[1] * inv.Scale[1], r[2] * inv.Scale[2]}
	return inv
}

func safeInv(v float32) float32 {
	if v == 0 {
		return 0
	}
	return 1 / v
}

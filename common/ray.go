package common

import "github.com/go-gl/mathgl/mgl32"

// Ray is a half-line starting at Origin. Direction is expected to be unit length.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// NewRay builds a ray with a normalized direction.
func NewRay(origin, direction mgl32.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// PointAt returns Origin + t*Direction.
func (r Ray) PointAt(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Transformed returns the ray mapped through t. The direction is renormalized.
func (r Ray) Transformed(t *Transform) Ray {
	origin := t.Apply(r.Origin)
	tip := t.Apply(r.Origin.Add(r.Direction))
	return NewRay(origin, tip.Sub(origin))
}

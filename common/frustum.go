package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Side reports on which side of a Plane a point or volume lies.
type Side int

const (
	// SideNone means the point lies on the plane, or the volume straddles it.
	SideNone Side = iota
	// SidePositive is the half-space the normal points into (inside, for frustum planes).
	SidePositive
	// SideNegative is the half-space opposite the normal.
	SideNegative
)

func (s Side) String() string {
	switch s {
	case SidePositive:
		return "positive"
	case SideNegative:
		return "negative"
	default:
		return "none"
	}
}

// Plane represents a plane in 3D space using the equation: n·p + d = 0
// where n is the unit normal and d is the signed distance term.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// NewPlaneFromPoint builds the plane with the given normal passing through point.
// The normal is normalized.
//
// Parameters:
//   - normal: plane normal (any length but zero)
//   - point: a point on the plane
//
// Returns:
//   - Plane: the plane
func NewPlaneFromPoint(normal, point mgl32.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Distance: -n.Dot(point)}
}

// PseudoDistance returns the signed distance from the plane to p.
// Positive values are on the normal's side.
func (p *Plane) PseudoDistance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

// WhichSide classifies a point against the plane.
func (p *Plane) WhichSide(point mgl32.Vec3) Side {
	d := p.PseudoDistance(point)
	switch {
	case d < 0:
		return SideNegative
	case d > 0:
		return SidePositive
	default:
		return SideNone
	}
}

// FrustumPlanes is the number of planes bounding a view frustum.
const FrustumPlanes = 6

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [FrustumPlanes]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// The matrix is Projection * View in OpenGL clip conventions (z in [-w, w]), which is
// what mgl32.Perspective and mgl32.Ortho produce.
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the combined view-projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	var f Frustum

	row0 := viewProj.Row(0)
	row1 := viewProj.Row(1)
	row2 := viewProj.Row(2)
	row3 := viewProj.Row(3)

	f.Planes[FrustumLeft] = planeFromRow(row3.Add(row0))
	f.Planes[FrustumRight] = planeFromRow(row3.Sub(row0))
	f.Planes[FrustumBottom] = planeFromRow(row3.Add(row1))
	f.Planes[FrustumTop] = planeFromRow(row3.Sub(row1))
	f.Planes[FrustumNear] = planeFromRow(row3.Add(row2))
	f.Planes[FrustumFar] = planeFromRow(row3.Sub(row2))

	return f
}

// planeFromRow builds a normalized plane from a clip-space row combination (a, b, c, d).
func planeFromRow(r mgl32.Vec4) Plane {
	p := Plane{Normal: mgl32.Vec3{r[0], r[1], r[2]}, Distance: r[3]}
	length := math32.Sqrt(p.Normal.Dot(p.Normal))
	if length > 0 {
		inv := 1 / length
		p.Normal = p.Normal.Mul(inv)
		p.Distance *= inv
	}
	return p
}

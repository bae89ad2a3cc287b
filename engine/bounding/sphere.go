package bounding

import (
	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sphere is a bounding sphere.
type Sphere struct {
	planeCache
	center mgl32.Vec3
	radius float32
}

var _ Volume = &Sphere{}

// NewSphere creates a sphere. A negative radius is made positive.
func NewSphere(center mgl32.Vec3, radius float32) *Sphere {
	return &Sphere{
		planeCache: planeCache{checkPlane: NoCheckPlane},
		center:     center,
		radius:     math32.Abs(radius),
	}
}

// NewSphereFromPoints creates a sphere centred on the points' bounding box that encloses all of them.
func NewSphereFromPoints(points []mgl32.Vec3) *Sphere {
	box := NewBoxFromPoints(points)
	s := NewSphere(box.center, 0)
	for _, p := range points {
		s.radius = math32.Max(s.radius, p.Sub(s.center).Len())
	}
	s.radius += s.radius * 1e-5
	return s
}

// Radius returns the sphere radius.
func (s *Sphere) Radius() float32 { return s.radius }

// Set replaces centre and radius.
func (s *Sphere) Set(center mgl32.Vec3, radius float32) {
	s.center = center
	s.radius = math32.Abs(radius)
}

func (s *Sphere) Type() Type { return TypeSphere }

func (s *Sphere) Center() mgl32.Vec3 { return s.center }

func (s *Sphere) WhichSide(p *common.Plane) common.Side {
	d := p.PseudoDistance(s.center)
	switch {
	case d < -s.radius:
		return common.SideNegative
	case d > s.radius:
		return common.SidePositive
	default:
		return common.SideNone
	}
}

func (s *Sphere) Clone(dest Volume) Volume {
	out, ok := dest.(*Sphere)
	if !ok || out == nil {
		out = &Sphere{}
	}
	*out = *s
	return out
}

func (s *Sphere) Transform(rot mgl32.Quat, trans, scale mgl32.Vec3, dest Volume) Volume {
	out, ok := dest.(*Sphere)
	if !ok || out == nil {
		out = &Sphere{planeCache: s.planeCache}
	}
	scaled := mgl32.Vec3{s.center[0] * scale[0], s.center[1] * scale[1], s.center[2] * scale[2]}
	maxScale := math32.Max(math32.Abs(scale[0]), math32.Max(math32.Abs(scale[1]), math32.Abs(scale[2])))

	out.center = rot.Rotate(scaled).Add(trans)
	out.radius = s.radius * maxScale
	return out
}

func (s *Sphere) MergeInto(other Volume, dest Volume) Volume {
	if other == nil {
		return s.Clone(dest)
	}
	oc, oRad := other.Center(), float32(0)
	switch o := other.(type) {
	case *Sphere:
		oRad = o.radius
	case *Box:
		oRad = o.extent.Len()
	}

	center, radius := s.center, s.radius
	diff := oc.Sub(center)
	dist := diff.Len()
	switch {
	case dist+oRad <= radius:
		// other already inside
	case dist+radius <= oRad:
		center, radius = oc, oRad
	default:
		newRadius := (dist + radius + oRad) * 0.5
		if dist > epsilon {
			center = center.Add(diff.Mul((newRadius - radius) / dist))
		}
		radius = newRadius
	}

	out, ok := dest.(*Sphere)
	if !ok || out == nil {
		out = &Sphere{planeCache: s.planeCache}
	}
	out.center = center
	out.radius = radius
	return out
}

func (s *Sphere) Contains(point mgl32.Vec3) bool {
	return point.Sub(s.center).LenSqr() <= s.radius*s.radius
}

func (s *Sphere) IntersectsRay(ray common.Ray) bool {
	toCenter := s.center.Sub(ray.Origin)
	t := math32.Max(0, toCenter.Dot(ray.Direction))
	closest := ray.PointAt(t)
	return closest.Sub(s.center).LenSqr() <= s.radius*s.radius
}

func (s *Sphere) DistanceSquaredTo(point mgl32.Vec3) float32 {
	d := point.Sub(s.center).Len() - s.radius
	if d <= 0 {
		return 0
	}
	return d * d
}

package bounding

import (
	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Box is an axis-aligned bounding box stored as centre and half extents.
type Box struct {
	planeCache
	center mgl32.Vec3
	extent mgl32.Vec3
}

var _ Volume = &Box{}

// NewBox creates a box from its centre and half extents. Negative extents are made positive.
func NewBox(center, extent mgl32.Vec3) *Box {
	b := &Box{planeCache: planeCache{checkPlane: NoCheckPlane}}
	b.Set(center, extent)
	return b
}

// NewBoxFromPoints creates the smallest axis-aligned box enclosing points.
// An empty input yields a zero-size box at the origin.
func NewBoxFromPoints(points []mgl32.Vec3) *Box {
	b := NewBox(mgl32.Vec3{}, mgl32.Vec3{})
	b.FitPoints(points)
	return b
}

// NewBoxFromMinMax creates a box from its minimum and maximum corners.
func NewBoxFromMinMax(lo, hi mgl32.Vec3) *Box {
	return NewBox(lo.Add(hi).Mul(0.5), hi.Sub(lo).Mul(0.5))
}

// Set replaces the box's centre and half extents.
func (b *Box) Set(center, extent mgl32.Vec3) {
	b.center = center
	b.extent = mgl32.Vec3{math32.Abs(extent[0]), math32.Abs(extent[1]), math32.Abs(extent[2])}
}

// FitPoints resizes the box to enclose points.
func (b *Box) FitPoints(points []mgl32.Vec3) {
	if len(points) == 0 {
		b.Set(mgl32.Vec3{}, mgl32.Vec3{})
		return
	}
	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		lo, hi = minVec(lo, p), maxVec(hi, p)
	}
	b.Set(lo.Add(hi).Mul(0.5), hi.Sub(lo).Mul(0.5))
}

func (b *Box) Type() Type { return TypeBox }

func (b *Box) Center() mgl32.Vec3 { return b.center }

// Extent returns the half extents along each axis.
func (b *Box) Extent() mgl32.Vec3 { return b.extent }

// Min returns the minimum corner.
func (b *Box) Min() mgl32.Vec3 { return b.center.Sub(b.extent) }

// Max returns the maximum corner.
func (b *Box) Max() mgl32.Vec3 { return b.center.Add(b.extent) }

func (b *Box) WhichSide(p *common.Plane) common.Side {
	radius := math32.Abs(p.Normal[0])*b.extent[0] +
		math32.Abs(p.Normal[1])*b.extent[1] +
		math32.Abs(p.Normal[2])*b.extent[2]
	d := p.PseudoDistance(b.center)
	switch {
	case d < -radius:
		return common.SideNegative
	case d > radius:
		return common.SidePositive
	default:
		return common.SideNone
	}
}

func (b *Box) Clone(dest Volume) Volume {
	out, ok := dest.(*Box)
	if !ok || out == nil {
		out = &Box{}
	}
	*out = *b
	return out
}

func (b *Box) Transform(rot mgl32.Quat, trans, scale mgl32.Vec3, dest Volume) Volume {
	out, ok := dest.(*Box)
	if !ok || out == nil {
		out = &Box{planeCache: b.planeCache}
	}

	scaled := mgl32.Vec3{b.center[0] * scale[0], b.center[1] * scale[1], b.center[2] * scale[2]}
	center := rot.Rotate(scaled).Add(trans)

	e := mgl32.Vec3{
		b.extent[0] * math32.Abs(scale[0]),
		b.extent[1] * math32.Abs(scale[1]),
		b.extent[2] * math32.Abs(scale[2]),
	}
	m := rot.Normalize().Mat4().Mat3()
	var extent mgl32.Vec3
	for row := 0; row < 3; row++ {
		extent[row] = math32.Abs(m.At(row, 0))*e[0] +
			math32.Abs(m.At(row, 1))*e[1] +
			math32.Abs(m.At(row, 2))*e[2]
	}

	out.center = center
	out.extent = extent
	return out
}

func (b *Box) MergeInto(other Volume, dest Volume) Volume {
	if other == nil {
		return b.Clone(dest)
	}
	oc, oe := extentsOf(other)
	lo := minVec(b.Min(), oc.Sub(oe))
	hi := maxVec(b.Max(), oc.Add(oe))

	out, ok := dest.(*Box)
	if !ok || out == nil {
		out = &Box{planeCache: b.planeCache}
	}
	out.center = lo.Add(hi).Mul(0.5)
	out.extent = hi.Sub(lo).Mul(0.5)
	return out
}

func (b *Box) Contains(point mgl32.Vec3) bool {
	d := point.Sub(b.center)
	return math32.Abs(d[0]) <= b.extent[0] &&
		math32.Abs(d[1]) <= b.extent[1] &&
		math32.Abs(d[2]) <= b.extent[2]
}

func (b *Box) IntersectsRay(ray common.Ray) bool {
	_, _, ok := b.rayInterval(ray)
	return ok
}

// rayInterval returns the parametric interval [tmin, tmax] where ray is inside the box.
func (b *Box) rayInterval(ray common.Ray) (float32, float32, bool) {
	tmin, tmax := float32(0), float32(math32.MaxFloat32)
	lo, hi := b.Min(), b.Max()
	for i := 0; i < 3; i++ {
		o, d := ray.Origin[i], ray.Direction[i]
		if math32.Abs(d) < epsilon {
			if o < lo[i] || o > hi[i] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / d
		t1, t2 := (lo[i]-o)*inv, (hi[i]-o)*inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math32.Max(tmin, t1)
		tmax = math32.Min(tmax, t2)
		if tmin > tmax {
			return 0, 0, false
		}
	}
	return tmin, tmax, true
}

func (b *Box) DistanceSquaredTo(point mgl32.Vec3) float32 {
	var sum float32
	for i := 0; i < 3; i++ {
		d := math32.Abs(point[i]-b.center[i]) - b.extent[i]
		if d > 0 {
			sum += d * d
		}
	}
	return sum
}

func minVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Min(a[0], b[0]), math32.Min(a[1], b[1]), math32.Min(a[2], b[2])}
}

func maxVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Max(a[0], b[0]), math32.Max(a[1], b[1]), math32.Max(a[2], b[2])}
}

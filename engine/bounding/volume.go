// Package bounding implements the bounding volumes and ray intersection used by
// culling and picking. Volumes are cloned and transformed into caller-supplied
// destinations so per-frame slots can be reused without allocating.
package bounding

import (
	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Type identifies a Volume variant.
type Type int

const (
	// TypeBox is an axis-aligned box.
	TypeBox Type = iota
	// TypeSphere is a sphere.
	TypeSphere
)

// NoCheckPlane marks a volume with no cached rejecting plane.
const NoCheckPlane = -1

// Volume is the shape-agnostic bound used by culling, picking and bound propagation.
//
// Methods taking a dest Volume reuse dest when it is non-nil and of the receiver's
// variant, and allocate otherwise. dest may be the receiver itself.
type Volume interface {
	// Type returns the variant of the volume.
	//
	// Returns:
	//   - Type: TypeBox or TypeSphere
	Type() Type

	// Center returns the centre of the volume.
	//
	// Returns:
	//   - mgl32.Vec3: the centre point
	Center() mgl32.Vec3

	// WhichSide classifies the whole volume against a plane.
	//
	// Parameters:
	//   - p: the plane to test against
	//
	// Returns:
	//   - common.Side: SidePositive or SideNegative when fully on one side, SideNone when straddling
	WhichSide(p *common.Plane) common.Side

	// Clone copies the volume into dest.
	//
	// Parameters:
	//   - dest: destination to reuse, or nil
	//
	// Returns:
	//   - Volume: dest when reusable, otherwise a new volume
	Clone(dest Volume) Volume

	// Transform scales, rotates and translates the volume into dest.
	//
	// Parameters:
	//   - rot: rotation applied after scale
	//   - trans: translation applied last
	//   - scale: per-axis scale
	//   - dest: destination to reuse, or nil
	//
	// Returns:
	//   - Volume: the transformed volume
	Transform(rot mgl32.Quat, trans, scale mgl32.Vec3, dest Volume) Volume

	// MergeInto stores the union of the receiver and other into dest.
	// A nil other copies the receiver.
	//
	// Parameters:
	//   - other: volume to merge with, or nil
	//   - dest: destination to reuse, or nil
	//
	// Returns:
	//   - Volume: a volume enclosing both inputs
	MergeInto(other Volume, dest Volume) Volume

	// Contains reports whether point lies inside or on the volume.
	Contains(point mgl32.Vec3) bool

	// IntersectsRay reports whether the ray touches the volume at t >= 0.
	IntersectsRay(ray common.Ray) bool

	// DistanceSquaredTo returns the squared distance from point to the volume surface, 0 inside.
	DistanceSquaredTo(point mgl32.Vec3) float32

	// CheckPlane returns the cached index of the last frustum plane that rejected the volume,
	// or NoCheckPlane. Callers must validate the index before use.
	CheckPlane() int

	// SetCheckPlane stores the index of the frustum plane that rejected the volume.
	SetCheckPlane(plane int)
}

// planeCache holds the mutable check-plane hint shared by every variant.
type planeCache struct {
	checkPlane int
}

func (c *planeCache) CheckPlane() int {
	return c.checkPlane
}

func (c *planeCache) SetCheckPlane(plane int) {
	c.checkPlane = plane
}

// TransformBy transforms v by a decomposed transform into dest.
//
// Parameters:
//   - v: the source volume, or nil
//   - t: the transform
//   - dest: destination to reuse, or nil
//
// Returns:
//   - Volume: the transformed volume, or nil when v is nil
func TransformBy(v Volume, t *common.Transform, dest Volume) Volume {
	if v == nil {
		return nil
	}
	return v.Transform(t.Rotation, t.Translation, t.Scale, dest)
}

// Merge folds src into acc, reusing dest. A nil acc clones src into dest.
//
// Returns:
//   - Volume: the merged volume, or nil when both inputs are nil
func Merge(acc, src, dest Volume) Volume {
	switch {
	case src == nil && acc == nil:
		return nil
	case acc == nil:
		return src.Clone(dest)
	default:
		return acc.MergeInto(src, dest)
	}
}

// extentsOf returns the centre and half extents of the axis-aligned box enclosing v.
func extentsOf(v Volume) (mgl32.Vec3, mgl32.Vec3) {
	switch b := v.(type) {
	case *Box:
		return b.center, b.extent
	case *Sphere:
		return b.center, mgl32.Vec3{b.radius, b.radius, b.radius}
	default:
		return v.Center(), mgl32.Vec3{}
	}
}

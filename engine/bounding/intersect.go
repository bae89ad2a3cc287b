package bounding

import (
	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-6

// TriangleSource exposes triangles by index in model space.
type TriangleSource interface {
	TriangleCount() int
	TriangleVertices(i int) (a, b, c mgl32.Vec3)
}

// IntersectTriangle tests ray against triangle (a, b, c) from either side
// (Möller-Trumbore).
//
// Returns:
//   - float32: distance along the ray to the hit, >= 0
//   - bool: false when the ray misses or runs parallel to the triangle
func IntersectTriangle(ray common.Ray, a, b, c mgl32.Vec3) (float32, bool) {
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	p := ray.Direction.Cross(edge2)
	det := edge1.Dot(p)
	if math32.Abs(det) < epsilon {
		return 0, false
	}
	inv := 1 / det
	s := ray.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(edge1)
	v := ray.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := edge2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}

// PickTriangles intersects a world-space ray with every candidate triangle of src placed by world.
// Each triangle's vertices are transformed into ctx.Triangle before testing. ctx's hit buffer is
// reset first, then holds every hit of this query. The nearest hit is chosen by squared distance
// from the ray origin.
//
// When tree is non-nil only triangles in leaves the ray reaches are tested.
//
// Parameters:
//   - ctx: the calling worker's scratch context
//   - ray: world-space ray
//   - src: model-space triangles
//   - world: model-to-world transform
//   - tree: optional collision tree built over src
//
// Returns:
//   - frame.Hit: the nearest hit
//   - bool: false when nothing was hit
func PickTriangles(ctx *frame.Context, ray common.Ray, src TriangleSource, world *common.Transform, tree *CollisionTree) (frame.Hit, bool) {
	ctx.ResetHits()
	p := picker{ctx: ctx, ray: ray, src: src, world: world, best: -1}
	if tree == nil {
		for i := 0; i < src.TriangleCount(); i++ {
			p.test(i)
		}
	} else {
		ctx.Transform = world.Inverse()
		tree.Visit(ray.Transformed(&ctx.Transform), p.test)
	}
	if p.best < 0 {
		return frame.Hit{}, false
	}
	return p.nearest, true
}

type picker struct {
	ctx     *frame.Context
	ray     common.Ray
	src     TriangleSource
	world   *common.Transform
	nearest frame.Hit
	best    int
}

func (p *picker) test(tri int) {
	a, b, c := p.src.TriangleVertices(tri)
	w := &p.ctx.Triangle
	w[0] = p.world.Apply(a)
	w[1] = p.world.Apply(b)
	w[2] = p.world.Apply(c)

	t, ok := IntersectTriangle(p.ray, w[0], w[1], w[2])
	if !ok {
		return
	}
	point := p.ray.PointAt(t)
	h := frame.Hit{
		Point:      point,
		Distance:   t,
		DistanceSq: point.Sub(p.ray.Origin).LenSqr(),
		Triangle:   tri,
	}
	p.ctx.AddHit(h)
	if p.best < 0 || h.DistanceSq < p.nearest.DistanceSq {
		p.nearest = h
		p.best = tri
	}
}

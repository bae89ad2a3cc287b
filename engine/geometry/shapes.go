package geometry

import "github.com/go-gl/mathgl/mgl32"

// NewBoxMesh returns an axis-aligned box centred on the origin.
// All outward faces wind counter-clockwise.
//
// Parameters:
//   - name: the mesh name
//   - extent: half extents along each axis
//   - options: additional mesh options
//
// Returns:
//   - Geometry: 8 vertices, 12 triangles
func NewBoxMesh(name string, extent mgl32.Vec3, options ...MeshBuilderOption) Geometry {
	x, y, z := extent[0], extent[1], extent[2]
	positions := []mgl32.Vec3{
		{-x, -y, -z}, {x, -y, -z},
		{x, y, -z}, {-x, y, -z},
		{-x, -y, z}, {x, -y, z},
		{x, y, z}, {-x, y, z},
	}
	indices := []uint32{
		4, 5, 6, 4, 6, 7, // front  (+Z)
		1, 0, 3, 1, 3, 2, // back   (-Z)
		5, 1, 2, 5, 2, 6, // right  (+X)
		0, 4, 7, 0, 7, 3, // left   (-X)
		3, 7, 6, 3, 6, 2, // top    (+Y)
		0, 1, 5, 0, 5, 4, // bottom (-Y)
	}
	return NewMesh(append([]MeshBuilderOption{WithName(name), WithPositions(positions), WithIndices(indices)}, options...)...)
}

// NewQuadMesh returns a width x height quad in the XY plane facing +Z, centred on the origin.
func NewQuadMesh(name string, width, height float32, options ...MeshBuilderOption) Geometry {
	w, h := width/2, height/2
	positions := []mgl32.Vec3{{-w, -h, 0}, {w, -h, 0}, {w, h, 0}, {-w, h, 0}}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return NewMesh(append([]MeshBuilderOption{WithName(name), WithPositions(positions), WithIndices(indices)}, options...)...)
}

// NewTriangleMesh returns a single triangle.
func NewTriangleMesh(name string, a, b, c mgl32.Vec3, options ...MeshBuilderOption) Geometry {
	return NewMesh(append([]MeshBuilderOption{
		WithName(name),
		WithPositions([]mgl32.Vec3{a, b, c}),
		WithIndices([]uint32{0, 1, 2}),
	}, options...)...)
}

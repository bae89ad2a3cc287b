package geometry

import (
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/bounding"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshBuilderOption is a functional option for configuring a mesh via NewMesh.
type MeshBuilderOption func(*mesh)

// WithName sets the mesh identifier.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - MeshBuilderOption: a function that applies the name option to a mesh
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithPositions sets the vertex positions.
//
// Parameters:
//   - positions: model-space vertex positions
//
// Returns:
//   - MeshBuilderOption: a function that applies the positions option to a mesh
func WithPositions(positions []mgl32.Vec3) MeshBuilderOption {
	return func(m *mesh) {
		m.positions = positions
	}
}

// WithIndices sets the triangle index list.
//
// Parameters:
//   - indices: three vertex indices per triangle
//
// Returns:
//   - MeshBuilderOption: a function that applies the indices option to a mesh
func WithIndices(indices []uint32) MeshBuilderOption {
	return func(m *mesh) {
		m.indices = indices
	}
}

// WithColor sets the flat colour used when drawing the mesh.
//
// Parameters:
//   - color: RGBA in [0, 1]
//
// Returns:
//   - MeshBuilderOption: a function that applies the color option to a mesh
func WithColor(color mgl32.Vec4) MeshBuilderOption {
	return func(m *mesh) {
		m.color = color
	}
}

// WithBoundType selects the model bound variant. Defaults to bounding.TypeBox.
//
// Parameters:
//   - t: bounding.TypeBox or bounding.TypeSphere
//
// Returns:
//   - MeshBuilderOption: a function that applies the bound type option to a mesh
func WithBoundType(t bounding.Type) MeshBuilderOption {
	return func(m *mesh) {
		m.boundType = t
	}
}

// WithCollisionTree builds a picking hierarchy with the given leaf size.
// A leaf size <= 0 disables the tree.
//
// Parameters:
//   - leafSize: maximum triangles per leaf
//
// Returns:
//   - MeshBuilderOption: a function that applies the collision tree option to a mesh
func WithCollisionTree(leafSize int) MeshBuilderOption {
	return func(m *mesh) {
		m.leafSize = leafSize
	}
}

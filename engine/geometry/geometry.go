package geometry

import (
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/bounding"
	"github.com/go-gl/mathgl/mgl32"
)

// mesh is the implementation of the Geometry interface.
type mesh struct {
	name      string
	positions []mgl32.Vec3
	indices   []uint32
	color     mgl32.Vec4
	boundType bounding.Type
	leafSize  int

	bound   bounding.Volume
	tree    *bounding.CollisionTree
	version atomic.Uint64
}

// Geometry is the triangle data a Batch draws and picks against.
//
// Geometry is shared-read by every pipeline stage. Replace its data only from a
// topology edit (engine.Modify) so no stage observes a half-written mesh.
type Geometry interface {
	bounding.TriangleSource

	// Name returns the geometry identifier.
	//
	// Returns:
	//   - string: the name
	Name() string

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// Vertex returns the model-space position of vertex i.
	//
	// Parameters:
	//   - i: vertex index in [0, VertexCount())
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Vertex(i int) mgl32.Vec3

	// Triangle returns the vertex indices of triangle i.
	//
	// Parameters:
	//   - i: triangle index in [0, TriangleCount())
	//
	// Returns:
	//   - a, b, c: vertex indices
	Triangle(i int) (a, b, c int)

	// Positions returns the vertex positions. The slice must not be modified.
	Positions() []mgl32.Vec3

	// Indices returns the triangle index list. The slice must not be modified.
	Indices() []uint32

	// Color returns the flat RGBA colour used by the draw backend.
	Color() mgl32.Vec4

	// ModelBound returns the model-space bound enclosing every vertex.
	// Renderables clone and transform it into their per-slot world bound.
	//
	// Returns:
	//   - bounding.Volume: the model bound, or nil for an empty mesh
	ModelBound() bounding.Volume

	// CollisionTree returns the picking hierarchy, or nil when none was requested.
	CollisionTree() *bounding.CollisionTree

	// Version increases every time the vertex or index data changes.
	// Draw backends use it to invalidate uploaded buffers.
	Version() uint64

	// SetData replaces positions and indices and rebuilds the bound and collision tree.
	//
	// Parameters:
	//   - positions: vertex positions
	//   - indices: triangle list, three indices per triangle
	//
	// Returns:
	//   - error: if an index is out of range or the list is not a multiple of three
	SetData(positions []mgl32.Vec3, indices []uint32) error
}

var _ Geometry = &mesh{}

// NewMesh creates a Geometry configured with the given options.
// Invalid index data panics, mirroring other constructors that receive programmer errors.
//
// Parameters:
//   - options: functional options to configure the mesh
//
// Returns:
//   - Geometry: the new mesh
func NewMesh(options ...MeshBuilderOption) Geometry {
	m := &mesh{
		name:      "mesh",
		color:     mgl32.Vec4{1, 1, 1, 1},
		boundType: bounding.TypeBox,
	}
	for _, option := range options {
		option(m)
	}
	if err := m.SetData(m.positions, m.indices); err != nil {
		panic(fmt.Sprintf("geometry: NewMesh %q: %v", m.name, err))
	}
	return m
}

func (m *mesh) Name() string { return m.name }

func (m *mesh) VertexCount() int { return len(m.positions) }

func (m *mesh) Vertex(i int) mgl32.Vec3 { return m.positions[i] }

func (m *mesh) TriangleCount() int { return len(m.indices) / 3 }

func (m *mesh) Triangle(i int) (a, b, c int) {
	return int(m.indices[3*i]), int(m.indices[3*i+1]), int(m.indices[3*i+2])
}

func (m *mesh) TriangleVertices(i int) (a, b, c mgl32.Vec3) {
	return m.positions[m.indices[3*i]], m.positions[m.indices[3*i+1]], m.positions[m.indices[3*i+2]]
}

func (m *mesh) Positions() []mgl32.Vec3 { return m.positions }

func (m *mesh) Indices() []uint32 { return m.indices }

func (m *mesh) Color() mgl32.Vec4 { return m.color }

func (m *mesh) ModelBound() bounding.Volume { return m.bound }

func (m *mesh) CollisionTree() *bounding.CollisionTree { return m.tree }

func (m *mesh) Version() uint64 { return m.version.Load() }

func (m *mesh) SetData(positions []mgl32.Vec3, indices []uint32) error {
	if len(indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= len(positions) {
			return fmt.Errorf("index %d at %d out of range for %d vertices", idx, i, len(positions))
		}
	}
	m.positions = positions
	m.indices = indices
	m.bound = nil
	if len(positions) > 0 {
		switch m.boundType {
		case bounding.TypeSphere:
			m.bound = bounding.NewSphereFromPoints(positions)
		default:
			m.bound = bounding.NewBoxFromPoints(positions)
		}
	}
	m.tree = nil
	if m.leafSize > 0 {
		m.tree = bounding.NewCollisionTree(m, m.leafSize)
	}
	m.version.Add(1)
	return nil
}

package geometry

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/bounding"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxMesh(t *testing.T) {
	g := NewBoxMesh("crate", mgl32.Vec3{1, 2, 3}, WithCollisionTree(2), WithColor(mgl32.Vec4{1, 0, 0, 1}))
	assert.Equal(t, "crate", g.Name())
	assert.Equal(t, 8, g.VertexCount())
	assert.Equal(t, 12, g.TriangleCount())
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, g.Color())

	box, ok := g.ModelBound().(*bounding.Box)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, box.Extent())
	require.NotNil(t, g.CollisionTree())
	assert.Equal(t, 12, g.CollisionTree().Len())

	a, b, c := g.Triangle(0)
	va, vb, vc := g.TriangleVertices(0)
	assert.Equal(t, g.Vertex(a), va)
	assert.Equal(t, g.Vertex(b), vb)
	assert.Equal(t, g.Vertex(c), vc)
}

func TestSphereBound(t *testing.T) {
	g := NewQuadMesh("quad", 2, 2, WithBoundType(bounding.TypeSphere))
	s, ok := g.ModelBound().(*bounding.Sphere)
	require.True(t, ok)
	assert.InDelta(t, 1.41421, s.Radius(), 1e-3)
	assert.Nil(t, g.CollisionTree())
}

func TestSetDataValidates(t *testing.T) {
	g := NewTriangleMesh("tri", mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0})
	v := g.Version()

	assert.Error(t, g.SetData([]mgl32.Vec3{{}}, []uint32{0, 1}))
	assert.Error(t, g.SetData([]mgl32.Vec3{{}}, []uint32{0, 0, 3}))
	assert.Equal(t, v, g.Version(), "failed update keeps data")
	assert.Equal(t, 1, g.TriangleCount())

	require.NoError(t, g.SetData(nil, nil))
	assert.Greater(t, g.Version(), v)
	assert.Nil(t, g.ModelBound())
	assert.Equal(t, 0, g.TriangleCount())
}

func TestNewMeshPanicsOnBadIndices(t *testing.T) {
	assert.Panics(t, func() {
		NewMesh(WithPositions([]mgl32.Vec3{{}}), WithIndices([]uint32{0, 1, 2}))
	})
}

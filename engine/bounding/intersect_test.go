package bounding

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangles is a TriangleSource over a flat vertex list, three vertices per triangle.
type triangles []mgl32.Vec3

func (t triangles) TriangleCount() int { return len(t) / 3 }

func (t triangles) TriangleVertices(i int) (mgl32.Vec3, mgl32.Vec3, mgl32.Vec3) {
	return t[3*i], t[3*i+1], t[3*i+2]
}

var unitTriangle = [3]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

func centroid(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return a.Add(b).Add(c).Mul(1.0 / 3.0)
}

func TestIntersectTriangleThroughCentroid(t *testing.T) {
	c := centroid(unitTriangle[0], unitTriangle[1], unitTriangle[2])
	ray := common.NewRay(mgl32.Vec3{c[0], c[1], 5}, mgl32.Vec3{0, 0, -1})

	dist, ok := IntersectTriangle(ray, unitTriangle[0], unitTriangle[1], unitTriangle[2])
	require.True(t, ok)
	assert.InDelta(t, 5, dist, 1e-5)
	assertVecNear(t, mgl32.Vec3{c[0], c[1], 0}, ray.PointAt(dist))

	// origin on the triangle plane: hit at distance 0
	onPlane := common.NewRay(mgl32.Vec3{c[0], c[1], 0}, mgl32.Vec3{0, 0, -1})
	dist, ok = IntersectTriangle(onPlane, unitTriangle[0], unitTriangle[1], unitTriangle[2])
	require.True(t, ok)
	assert.InDelta(t, 0, dist, 1e-6)
}

func TestIntersectTriangleMisses(t *testing.T) {
	outside := common.NewRay(mgl32.Vec3{2, 2, 5}, mgl32.Vec3{0, 0, -1})
	_, ok := IntersectTriangle(outside, unitTriangle[0], unitTriangle[1], unitTriangle[2])
	assert.False(t, ok)

	parallel := common.NewRay(mgl32.Vec3{0.2, 0.2, 1}, mgl32.Vec3{1, 0, 0})
	_, ok = IntersectTriangle(parallel, unitTriangle[0], unitTriangle[1], unitTriangle[2])
	assert.False(t, ok)

	away := common.NewRay(mgl32.Vec3{0.2, 0.2, 1}, mgl32.Vec3{0, 0, 1})
	_, ok = IntersectTriangle(away, unitTriangle[0], unitTriangle[1], unitTriangle[2])
	assert.False(t, ok)
}

func TestPickTrianglesSingleHit(t *testing.T) {
	src := triangles{unitTriangle[0], unitTriangle[1], unitTriangle[2]}
	c := centroid(unitTriangle[0], unitTriangle[1], unitTriangle[2])
	ray := common.NewRay(mgl32.Vec3{c[0], c[1], 3}, mgl32.Vec3{0, 0, -1})
	world := common.IdentityTransform()

	ctx := frame.AllocateContext()
	hit, ok := PickTriangles(ctx, ray, src, &world, nil)
	require.True(t, ok)
	assert.Len(t, ctx.Hits(), 1)
	assert.Equal(t, 0, hit.Triangle)
	assert.InDelta(t, 9, hit.DistanceSq, 1e-4)
}

func TestPickTrianglesNearestWins(t *testing.T) {
	shift := func(z float32) [3]mgl32.Vec3 {
		return [3]mgl32.Vec3{
			unitTriangle[0].Add(mgl32.Vec3{0, 0, z}),
			unitTriangle[1].Add(mgl32.Vec3{0, 0, z}),
			unitTriangle[2].Add(mgl32.Vec3{0, 0, z}),
		}
	}
	far, near, mid := shift(-2), shift(0), shift(-1)
	src := triangles{far[0], far[1], far[2], near[0], near[1], near[2], mid[0], mid[1], mid[2]}

	c := centroid(unitTriangle[0], unitTriangle[1], unitTriangle[2])
	ray := common.NewRay(mgl32.Vec3{c[0], c[1], 4}, mgl32.Vec3{0, 0, -1})
	world := common.IdentityTransform()

	for _, tree := range []*CollisionTree{nil, NewCollisionTree(src, 1)} {
		ctx := frame.AllocateContext()
		hit, ok := PickTriangles(ctx, ray, src, &world, tree)
		require.True(t, ok)
		assert.Equal(t, 1, hit.Triangle)
		assert.Len(t, ctx.Hits(), 3)
		nearest, _ := ctx.NearestHit()
		assert.Equal(t, hit, nearest)
	}
}

func TestPickTrianglesResetsHitsPerQuery(t *testing.T) {
	src := triangles{unitTriangle[0], unitTriangle[1], unitTriangle[2]}
	c := centroid(unitTriangle[0], unitTriangle[1], unitTriangle[2])
	ray := common.NewRay(mgl32.Vec3{c[0], c[1], 3}, mgl32.Vec3{0, 0, -1})
	world := common.IdentityTransform()

	ctx := frame.AllocateContext()
	for i := 0; i < 100; i++ {
		_, ok := PickTriangles(ctx, ray, src, &world, nil)
		require.True(t, ok)
		require.Len(t, ctx.Hits(), 1)
	}

	miss := common.NewRay(mgl32.Vec3{5, 5, 3}, mgl32.Vec3{0, 0, -1})
	_, ok := PickTriangles(ctx, miss, src, &world, nil)
	assert.False(t, ok)
	assert.Empty(t, ctx.Hits())
}

func TestPickTrianglesAppliesWorldTransform(t *testing.T) {
	src := triangles{unitTriangle[0], unitTriangle[1], unitTriangle[2]}
	world := common.IdentityTransform()
	world.Translation = mgl32.Vec3{10, 0, 0}
	world.Scale = mgl32.Vec3{2, 2, 2}

	ray := common.NewRay(mgl32.Vec3{10.5, 0.5, 1}, mgl32.Vec3{0, 0, -1})
	ctx := frame.AllocateContext()
	hit, ok := PickTriangles(ctx, ray, src, &world, NewCollisionTree(src, 0))
	require.True(t, ok)
	assertVecNear(t, mgl32.Vec3{10.5, 0.5, 0}, hit.Point)

	miss := common.NewRay(mgl32.Vec3{0.2, 0.2, 1}, mgl32.Vec3{0, 0, -1})
	_, ok = PickTriangles(ctx, miss, src, &world, nil)
	assert.False(t, ok)
}

func TestCollisionTreeCandidates(t *testing.T) {
	var src triangles
	for i := 0; i < 32; i++ {
		x := float32(i * 3)
		src = append(src, mgl32.Vec3{x, 0, 0}, mgl32.Vec3{x + 1, 0, 0}, mgl32.Vec3{x, 1, 0})
	}
	tree := NewCollisionTree(src, 2)
	assert.Equal(t, 32, tree.Len())
	require.NotNil(t, tree.Bound())
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, tree.Bound().Min())

	var visited []int
	tree.Visit(common.NewRay(mgl32.Vec3{30.2, 0.2, 5}, mgl32.Vec3{0, 0, -1}), func(tri int) {
		visited = append(visited, tri)
	})
	assert.Contains(t, visited, 10)
	assert.Less(t, len(visited), 8, "tree should prune distant leaves")

	empty := NewCollisionTree(triangles{}, 4)
	assert.Nil(t, empty.Bound())
	empty.Visit(common.NewRay(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}), func(int) { t.Fatal("visited empty tree") })
}

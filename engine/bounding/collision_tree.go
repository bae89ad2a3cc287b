package bounding

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultLeafSize is the triangle count at which tree construction stops splitting.
const DefaultLeafSize = 8

// maxTreeDepth bounds the traversal stack. Median splits halve the triangle count
// per level, so any mesh addressable by int32 fits.
const maxTreeDepth = 64

// CollisionTree is a bounding-volume hierarchy of axis-aligned boxes over a
// TriangleSource, used to narrow ray picking to nearby triangles.
// A built tree is read-only and may be shared between goroutines.
type CollisionTree struct {
	nodes []treeNode
	tris  []int32
}

type treeNode struct {
	bound       Box
	left, right int32
	start, end  int32
}

func (n *treeNode) leaf() bool { return n.left < 0 }

// NewCollisionTree builds a tree over every triangle of src.
//
// Parameters:
//   - src: model-space triangles
//   - leafSize: maximum triangles per leaf; values < 1 use DefaultLeafSize
//
// Returns:
//   - *CollisionTree: the built tree
func NewCollisionTree(src TriangleSource, leafSize int) *CollisionTree {
	if leafSize < 1 {
		leafSize = DefaultLeafSize
	}
	n := src.TriangleCount()
	t := &CollisionTree{tris: make([]int32, n)}
	centroids := make([]mgl32.Vec3, n)
	for i := 0; i < n; i++ {
		t.tris[i] = int32(i)
		a, b, c := src.TriangleVertices(i)
		centroids[i] = a.Add(b).Add(c).Mul(1.0 / 3.0)
	}
	if n > 0 {
		t.build(src, centroids, 0, int32(n), leafSize)
	}
	return t
}

func (t *CollisionTree) build(src TriangleSource, centroids []mgl32.Vec3, start, end int32, leafSize int) int32 {
	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, treeNode{left: -1, right: -1, start: start, end: end})

	points := make([]mgl32.Vec3, 0, 3*(end-start))
	for _, tri := range t.tris[start:end] {
		a, b, c := src.TriangleVertices(int(tri))
		points = append(points, a, b, c)
	}
	bound := NewBoxFromPoints(points)
	t.nodes[idx].bound = *bound

	if int(end-start) <= leafSize {
		return idx
	}

	centroidBox := NewBox(mgl32.Vec3{}, mgl32.Vec3{})
	cs := make([]mgl32.Vec3, 0, end-start)
	for _, tri := range t.tris[start:end] {
		cs = append(cs, centroids[tri])
	}
	centroidBox.FitPoints(cs)
	axis := longestAxis(centroidBox.extent)

	slices.SortFunc(t.tris[start:end], func(a, b int32) int {
		ca, cb := centroids[a][axis], centroids[b][axis]
		switch {
		case ca < cb:
			return -1
		case ca > cb:
			return 1
		default:
			return int(a - b)
		}
	})
	mid := start + (end-start)/2

	left := t.build(src, centroids, start, mid, leafSize)
	right := t.build(src, centroids, mid, end, leafSize)
	t.nodes[idx].left = left
	t.nodes[idx].right = right
	return idx
}

func longestAxis(e mgl32.Vec3) int {
	axis := 0
	if e[1] > e[axis] {
		axis = 1
	}
	if e[2] > e[axis] {
		axis = 2
	}
	return axis
}

// Len returns the number of triangles indexed by the tree.
func (t *CollisionTree) Len() int {
	return len(t.tris)
}

// Bound returns the root box, or nil for an empty tree.
func (t *CollisionTree) Bound() *Box {
	if len(t.nodes) == 0 {
		return nil
	}
	return &t.nodes[0].bound
}

// Visit calls visit for every triangle stored in a leaf whose box the model-space ray hits.
// Traversal does not allocate.
//
// Parameters:
//   - ray: ray in the tree's model space
//   - visit: called with each candidate triangle index
func (t *CollisionTree) Visit(ray common.Ray, visit func(tri int)) {
	if len(t.nodes) == 0 {
		return
	}
	var stack [maxTreeDepth]int32
	top := 0
	stack[top] = 0
	top++
	for top > 0 {
		top--
		n := &t.nodes[stack[top]]
		if !n.bound.intersectsRayPadded(ray) {
			continue
		}
		if n.leaf() {
			for _, tri := range t.tris[n.start:n.end] {
				visit(int(tri))
			}
			continue
		}
		stack[top] = n.right
		top++
		stack[top] = n.left
		top++
	}
}

// intersectsRayPadded widens flat boxes slightly so rays grazing a planar leaf are not lost to rounding.
func (b *Box) intersectsRayPadded(ray common.Ray) bool {
	padded := Box{center: b.center, extent: b.extent.Add(mgl32.Vec3{epsilon, epsilon, epsilon})}
	return padded.IntersectsRay(ray)
}

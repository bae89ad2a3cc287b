package scene

import (
	"cmp"
	"slices"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/bounding"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
)

// PickResult is the nearest intersection of a ray with one Batch.
type PickResult struct {
	Batch *Batch
	Hit   frame.Hit
}

// Pick casts a world-space ray into the subtree using the state of slot f and
// appends one result per batch hit, sorted nearest first. Subtrees and batches
// whose world bound the ray misses are skipped. Call after slot f was produced.
//
// Parameters:
//   - ctx: scratch context owned by the calling goroutine
//   - ray: world-space ray
//   - f: frame slot to read
//   - results: slice to append to; may be nil
//
// Returns:
//   - []PickResult: results with the new hits appended and sorted by distance
func (n *Node) Pick(ctx *frame.Context, ray common.Ray, f frame.Slot, results []PickResult) []PickResult {
	frame.Check(f)
	start := len(results)
	results = n.pick(ctx, ray, f, results)
	slices.SortStableFunc(results[start:], func(a, b PickResult) int {
		return cmp.Compare(a.Hit.DistanceSq, b.Hit.DistanceSq)
	})
	return results
}

func (n *Node) pick(ctx *frame.Context, ray common.Ray, f frame.Slot, results []PickResult) []PickResult {
	if n.cullHint == CullAlways {
		return results
	}
	if b := n.WorldBound(f); b != nil && !b.IntersectsRay(ray) {
		return results
	}
	for _, r := range n.batches {
		batch, ok := r.(*Batch)
		if !ok || batch.target == nil {
			continue
		}
		if b := batch.WorldBound(f); b != nil && !b.IntersectsRay(ray) {
			continue
		}
		g := batch.target
		if hit, ok := bounding.PickTriangles(ctx, ray, g, &n.world[f], g.CollisionTree()); ok {
			results = append(results, PickResult{Batch: batch, Hit: hit})
		}
	}
	for _, c := range n.children {
		results = c.pick(ctx, ray, f, results)
	}
	return results
}

package renderer

import (
	"cmp"
	"math/bits"
	"slices"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// SortMode orders a bucket before it is drawn.
type SortMode int

const (
	// SortNone keeps insertion order.
	SortNone SortMode = iota
	// SortFrontToBack draws the nearest renderables first.
	SortFrontToBack
	// SortBackToFront draws the farthest renderables first.
	SortBackToFront
)

type bucket struct {
	id    QueueID
	mode  SortMode
	items []scene.Renderable
}

// RenderQueue is one frame slot's set of visible renderables, bucketed by queue
// id in insertion order. It is written by the cull stage and read by the render
// stage of the same slot and is not safe for concurrent use.
type RenderQueue struct {
	buckets [MaxIDs]*bucket
	order   []QueueID
	filter  scene.Mask
}

// NewRenderQueue creates a queue with the standard buckets registered: opaque
// sorted front to back, transparent sorted back to front, light, ortho and
// shadow in insertion order. Options may add buckets or change sort modes.
//
// Parameters:
//   - options: functional options to configure the queue
//
// Returns:
//   - *RenderQueue: the queue
func NewRenderQueue(options ...QueueBuilderOption) *RenderQueue {
	q := &RenderQueue{}
	q.AddBucket(QueueOpaque, SortFrontToBack)
	q.AddBucket(QueueTransparent, SortBackToFront)
	q.AddBucket(QueueLight, SortNone)
	q.AddBucket(QueueOrtho, SortNone)
	q.AddBucket(QueueShadow, SortNone)
	for _, option := range options {
		option(q)
	}
	return q
}

// AddBucket registers the bucket for id, or updates its sort mode when it already exists.
//
// Parameters:
//   - id: queue id
//   - mode: sort mode applied before drawing
func (q *RenderQueue) AddBucket(id QueueID, mode SortMode) {
	if id >= MaxIDs {
		panic("renderer: queue id out of range")
	}
	if b := q.buckets[id]; b != nil {
		b.mode = mode
		return
	}
	q.buckets[id] = &bucket{id: id, mode: mode, items: make([]scene.Renderable, 0, 64)}
	q.order = append(q.order, id)
	q.filter |= id.Bit()
}

// HasBucket reports whether id is registered.
func (q *RenderQueue) HasBucket(id QueueID) bool {
	return id < MaxIDs && q.buckets[id] != nil
}

// Buckets returns the registered queue ids in registration order.
func (q *RenderQueue) Buckets() []QueueID { return q.order }

// Add appends r to every registered bucket whose bit is set in r.QueueMask().
//
// Parameters:
//   - r: the renderable to queue
//
// Returns:
//   - bool: false when no registered bucket matched
func (q *RenderQueue) Add(r scene.Renderable) bool {
	m := uint64(r.QueueMask() & q.filter)
	if m == 0 {
		return false
	}
	for m != 0 {
		id := bits.TrailingZeros64(m)
		m &= m - 1
		b := q.buckets[id]
		b.items = append(b.items, r)
	}
	return true
}

// Bucket returns the renderables queued under id, or nil for an unregistered id.
// The slice is owned by the queue and valid until the next Clear.
func (q *RenderQueue) Bucket(id QueueID) []scene.Renderable {
	if id >= MaxIDs || q.buckets[id] == nil {
		return nil
	}
	return q.buckets[id].items
}

// SortMode returns the sort mode of bucket id.
func (q *RenderQueue) SortMode(id QueueID) SortMode {
	if id >= MaxIDs || q.buckets[id] == nil {
		return SortNone
	}
	return q.buckets[id].mode
}

// Len returns the total number of entries across buckets.
func (q *RenderQueue) Len() int {
	n := 0
	for _, id := range q.order {
		n += len(q.buckets[id].items)
	}
	return n
}

// Clear empties every bucket, keeping capacity.
func (q *RenderQueue) Clear() {
	for _, id := range q.order {
		b := q.buckets[id]
		clear(b.items)
		b.items = b.items[:0]
	}
}

// Merge appends other's entries to the matching buckets of q, bucket by bucket.
// Buckets q does not have are ignored.
func (q *RenderQueue) Merge(other *RenderQueue) {
	for _, id := range other.order {
		if dst := q.buckets[id]; dst != nil {
			dst.items = append(dst.items, other.buckets[id].items...)
		}
	}
}

// CloneLayout returns an empty queue with the same buckets and sort modes.
func (q *RenderQueue) CloneLayout() *RenderQueue {
	c := &RenderQueue{}
	for _, id := range q.order {
		c.AddBucket(id, q.buckets[id].mode)
	}
	return c
}

// Sort applies each bucket's sort mode using the distance from eye to the
// renderables' slot-f bounds. The sort is stable, so equal distances keep
// insertion order.
//
// Parameters:
//   - f: frame slot whose bounds are read
//   - eye: camera location
func (q *RenderQueue) Sort(f frame.Slot, eye mgl32.Vec3) {
	for _, id := range q.order {
		b := q.buckets[id]
		if b.mode == SortNone || len(b.items) < 2 {
			continue
		}
		sign := 1
		if b.mode == SortBackToFront {
			sign = -1
		}
		slices.SortStableFunc(b.items, func(x, y scene.Renderable) int {
			return sign * cmp.Compare(distanceSq(x, f, eye), distanceSq(y, f, eye))
		})
	}
}

func distanceSq(r scene.Renderable, f frame.Slot, eye mgl32.Vec3) float32 {
	if b := r.WorldBound(f); b != nil {
		return b.Center().Sub(eye).LenSqr()
	}
	w := r.World(f)
	return w.Translation.Sub(eye).LenSqr()
}

// QueueBuilderOption is a function that configures a RenderQueue during construction.
type QueueBuilderOption func(*RenderQueue)

// WithBucket registers (or re-modes) a bucket.
//
// Parameters:
//   - id: queue id, usually from GenQueueID
//   - mode: sort mode
//
// Returns:
//   - QueueBuilderOption: a function that registers the bucket
func WithBucket(id QueueID, mode SortMode) QueueBuilderOption {
	return func(q *RenderQueue) {
		q.AddBucket(id, mode)
	}
}

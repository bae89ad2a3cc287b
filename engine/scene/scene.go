// Package scene implements the spatial hierarchy shared by the update, cull and
// render stages. Every per-frame value (world transform, world bound, stamp) is
// stored in an array indexed by frame.Slot, so stages working on different frames
// never touch the same element.
//
// Topology edits (AttachChild, DetachChild, AttachBatch, DetachBatch) and local
// transform changes belong to the update stage. Cull and render only read the
// slot they were handed.
package scene

// Mask is a bitmask of queue or pass ids. Bit i corresponds to id i.
type Mask uint64

// MaskAll selects every id.
const MaskAll = ^Mask(0)

// Default masks for new renderables. Bit positions match the standard queue ids
// of the renderer package (opaque = 0, light = 2).
const (
	DefaultBatchQueueMask Mask = 1 << 0
	DefaultLightQueueMask Mask = 1 << 2
)

// Has reports whether any bit of other is set in m.
func (m Mask) Has(other Mask) bool {
	return m&other != 0
}

// CullHint overrides the frustum test for a subtree.
type CullHint int

const (
	// CullDynamic tests the subtree against the frustum.
	CullDynamic CullHint = iota
	// CullAlways skips the subtree.
	CullAlways
	// CullNever accepts the subtree without testing.
	CullNever
)

func (h CullHint) String() string {
	switch h {
	case CullAlways:
		return "always"
	case CullNever:
		return "never"
	default:
		return "dynamic"
	}
}

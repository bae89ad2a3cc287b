package scene

import (
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/bounding"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/geometry"
)

// Batch is a renderable that draws a geometry with its parent's world transform.
type Batch struct {
	renderable
	target geometry.Geometry
}

var _ Renderable = &Batch{}

// NewBatch creates a detached Batch in the opaque queue, drawable by every pass.
//
// Parameters:
//   - name: batch name
//   - target: geometry to draw, or nil
//   - options: functional options to configure the batch
//
// Returns:
//   - *Batch: the new batch
func NewBatch(name string, target geometry.Geometry, options ...BatchBuilderOption) *Batch {
	b := &Batch{
		renderable: renderable{name: name, queueMask: DefaultBatchQueueMask, passMask: MaskAll},
		target:     target,
	}
	for _, option := range options {
		option(&b.renderable)
	}
	return b
}

// Target returns the geometry, or nil.
func (b *Batch) Target() geometry.Geometry { return b.target }

// SetTarget replaces the geometry. Call from the update stage.
func (b *Batch) SetTarget(g geometry.Geometry) { b.target = g }

func (b *Batch) UpdateWorldBound(f frame.Slot) bounding.Volume {
	return b.updateWorldBound(f, b.modelBound())
}

func (b *Batch) DoCull(f frame.Slot) bool {
	if b.target == nil {
		return false
	}
	b.refresh(f, b.modelBound())
	return true
}

func (b *Batch) modelBound() bounding.Volume {
	if b.target == nil {
		return nil
	}
	return b.target.ModelBound()
}

func (b *Batch) hasTarget() bool { return b.target != nil }

func (b *Batch) refreshBound(f frame.Slot) bounding.Volume {
	return b.refresh(f, b.modelBound())
}

// BatchBuilderOption configures the masks of a Batch or LightBatch during construction.
type BatchBuilderOption func(*renderable)

// WithQueueMask sets the queues the renderable is added to.
//
// Parameters:
//   - m: queue mask, usually built from renderer.QueueID.Bit
//
// Returns:
//   - BatchBuilderOption: a function that applies the mask
func WithQueueMask(m Mask) BatchBuilderOption {
	return func(r *renderable) {
		r.queueMask = m
	}
}

// WithPassMask sets the passes allowed to draw the renderable.
//
// Parameters:
//   - m: pass mask, usually built from renderer.PassID.Bit
//
// Returns:
//   - BatchBuilderOption: a function that applies the mask
func WithPassMask(m Mask) BatchBuilderOption {
	return func(r *renderable) {
		r.passMask = m
	}
}

package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/bounding"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
)

// Renderable is a leaf of the scene graph attached to exactly one Node. The set
// of variants is closed: *Batch draws a geometry, *LightBatch carries a light.
type Renderable interface {
	// Name returns the renderable's name.
	Name() string

	// Parent returns the node the renderable is attached to, or nil when detached.
	Parent() *Node

	// QueueMask returns the queues the renderable is added to.
	QueueMask() Mask

	// PassMask returns the passes allowed to draw the renderable.
	PassMask() Mask

	// SetQueueMask replaces the queue mask.
	SetQueueMask(m Mask)

	// SetPassMask replaces the pass mask.
	SetPassMask(m Mask)

	// World returns the parent's world transform for slot f.
	//
	// Parameters:
	//   - f: frame slot
	//
	// Returns:
	//   - common.Transform: world transform applied to the renderable
	World(f frame.Slot) common.Transform

	// WorldBound returns the bound last computed for slot f, or nil.
	WorldBound(f frame.Slot) bounding.Volume

	// UpdateWorldBound clones the model bound, transforms it by the parent's
	// world transform for slot f and stores it in the renderable's slot. It
	// panics when the renderable is detached.
	//
	// Parameters:
	//   - f: frame slot
	//
	// Returns:
	//   - bounding.Volume: the new world bound, or nil when the model bound is nil
	UpdateWorldBound(f frame.Slot) bounding.Volume

	// DoCull reports whether the renderable takes part in slot f. It returns
	// false when there is nothing to draw; otherwise the world bound is
	// refreshed (unless locked and cached) and it returns true.
	//
	// Parameters:
	//   - f: frame slot
	//
	// Returns:
	//   - bool: true if the renderable may be queued
	DoCull(f frame.Slot) bool

	modelBound() bounding.Volume
	hasTarget() bool
	setParent(n *Node)
	refreshBound(f frame.Slot) bounding.Volume
}

// renderable holds the state shared by every Renderable variant.
type renderable struct {
	name      string
	parent    *Node
	queueMask Mask
	passMask  Mask

	worldBound [frame.MaxFrames]bounding.Volume
	boundStamp [frame.MaxFrames]uint64
	hasBound   [frame.MaxFrames]bool
}

func (r *renderable) Name() string           { return r.name }
func (r *renderable) Parent() *Node          { return r.parent }
func (r *renderable) QueueMask() Mask        { return r.queueMask }
func (r *renderable) PassMask() Mask         { return r.passMask }
func (r *renderable) SetQueueMask(m Mask)    { r.queueMask = m }
func (r *renderable) SetPassMask(m Mask)     { r.passMask = m }
func (r *renderable) setParent(n *Node)      { r.parent = n }

func (r *renderable) World(f frame.Slot) common.Transform {
	if r.parent == nil {
		return common.IdentityTransform()
	}
	return r.parent.World(f)
}

func (r *renderable) WorldBound(f frame.Slot) bounding.Volume {
	frame.Check(f)
	if !r.hasBound[f] {
		return nil
	}
	return r.worldBound[f]
}

// updateWorldBound stores model transformed by the parent's slot-f world transform.
func (r *renderable) updateWorldBound(f frame.Slot, model bounding.Volume) bounding.Volume {
	frame.Check(f)
	if r.parent == nil {
		panic(fmt.Sprintf("scene: UpdateWorldBound on detached renderable %q", r.name))
	}
	r.boundStamp[f] = r.parent.stamp[f]
	if model == nil {
		r.hasBound[f] = false
		return nil
	}
	r.worldBound[f] = bounding.TransformBy(model, &r.parent.world[f], r.worldBound[f])
	r.hasBound[f] = true
	return r.worldBound[f]
}

// refresh recomputes the slot-f bound unless it is locked and cached, or already
// computed from the parent's current transform.
func (r *renderable) refresh(f frame.Slot, model bounding.Volume) bounding.Volume {
	if r.parent == nil {
		panic(fmt.Sprintf("scene: renderable %q is not attached", r.name))
	}
	cached := r.hasBound[f]
	if cached && r.parent.locked {
		return r.worldBound[f]
	}
	if cached && r.boundStamp[f] == r.parent.stamp[f] && r.boundStamp[f] != 0 {
		return r.worldBound[f]
	}
	return r.updateWorldBound(f, model)
}

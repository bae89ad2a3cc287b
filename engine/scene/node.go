package scene

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/bounding"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/go-gl/mathgl/mgl32"
)

// Node is a spatial element of the scene graph. It owns its children and its
// renderables; the parent pointer is a non-owning back-reference.
type Node struct {
	name     string
	parent   *Node
	children []*Node
	batches  []Renderable

	local common.Transform

	world      [frame.MaxFrames]common.Transform
	worldBound [frame.MaxFrames]bounding.Volume
	unbounded  [frame.MaxFrames]bool
	stamp      [frame.MaxFrames]uint64

	locked      bool
	cullHint    CullHint
	controllers []Controller
}

// NewNode creates a detached Node with an identity local transform.
//
// Parameters:
//   - name: node name used in logs and lookups
//   - options: functional options to configure the node
//
// Returns:
//   - *Node: the new node
func NewNode(name string, options ...NodeBuilderOption) *Node {
	n := &Node{
		name:  name,
		local: common.IdentityTransform(),
	}
	for i := range n.world {
		n.world[i] = common.IdentityTransform()
	}
	for _, option := range options {
		option(n)
	}
	return n
}

// Name returns the node's name, used by Find and in logs.
func (n *Node) Name() string { return n.name }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child list. The slice is owned by the node and must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Batches returns the renderables attached to this node. The slice must not be modified.
func (n *Node) Batches() []Renderable { return n.batches }

// AttachChild makes child a child of n, detaching it from its previous parent.
// It panics when child is nil, n itself, or an ancestor of n.
//
// Parameters:
//   - child: the node to attach
func (n *Node) AttachChild(child *Node) {
	if child == nil {
		panic("scene: AttachChild requires a non-nil child")
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			panic(fmt.Sprintf("scene: attaching %q under %q would create a cycle", child.name, n.name))
		}
	}
	if child.parent != nil {
		child.parent.DetachChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

// DetachChild removes child from n.
//
// Returns:
//   - bool: false if child was not a child of n
func (n *Node) DetachChild(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	return true
}

// AttachBatch attaches r to n, moving it from its previous parent.
//
// Parameters:
//   - r: a *Batch or *LightBatch
func (n *Node) AttachBatch(r Renderable) {
	if r == nil {
		panic("scene: AttachBatch requires a non-nil renderable")
	}
	if p := r.Parent(); p != nil {
		p.DetachBatch(r)
	}
	r.setParent(n)
	n.batches = append(n.batches, r)
}

// DetachBatch removes r from n.
//
// Returns:
//   - bool: false if r was not attached to n
func (n *Node) DetachBatch(r Renderable) bool {
	i := slices.Index(n.batches, r)
	if i < 0 {
		return false
	}
	n.batches = slices.Delete(n.batches, i, i+1)
	r.setParent(nil)
	return true
}

// Local returns the local transform relative to the parent.
func (n *Node) Local() common.Transform { return n.local }

// SetLocal replaces the local transform.
func (n *Node) SetLocal(t common.Transform) { n.local = t }

// SetTranslation sets the local translation. It takes effect on the next update.
//
// Parameters:
//   - v: translation relative to the parent
func (n *Node) SetTranslation(v mgl32.Vec3) { n.local.Translation = v }

// SetRotation sets the local rotation. It takes effect on the next update.
//
// Parameters:
//   - q: rotation relative to the parent; expected to be unit length
func (n *Node) SetRotation(q mgl32.Quat) { n.local.Rotation = q }

// SetScale sets the local per-axis scale. It takes effect on the next update.
//
// Parameters:
//   - v: scale relative to the parent
func (n *Node) SetScale(v mgl32.Vec3) { n.local.Scale = v }

// World returns the world transform computed for slot f.
func (n *Node) World(f frame.Slot) common.Transform {
	frame.Check(f)
	return n.world[f]
}

// WorldBound returns the world bound merged for slot f, or nil when the subtree
// is empty or contains an unbounded renderable.
func (n *Node) WorldBound(f frame.Slot) bounding.Volume {
	frame.Check(f)
	if n.unbounded[f] {
		return nil
	}
	return n.worldBound[f]
}

// Stamp returns the frame number that last updated slot f.
func (n *Node) Stamp(f frame.Slot) uint64 {
	frame.Check(f)
	return n.stamp[f]
}

// Current reports whether slot fr.Slot holds the state produced for fr.
func (n *Node) Current(fr frame.Frame) bool {
	frame.Check(fr.Slot)
	return n.stamp[fr.Slot] == fr.Number
}

// Locked reports whether world bounds under this node are frozen once cached.
func (n *Node) Locked() bool { return n.locked }

// LockBounds freezes (or releases) world bounds for the whole subtree. A locked
// node or renderable keeps its cached bound for a slot instead of recomputing it.
//
// Parameters:
//   - locked: true to lock
func (n *Node) LockBounds(locked bool) {
	n.locked = locked
	for _, c := range n.children {
		c.LockBounds(locked)
	}
}

// CullHint returns how the culler treats this subtree.
func (n *Node) CullHint() CullHint { return n.cullHint }

// SetCullHint sets how the culler and Pick treat this subtree.
//
// Parameters:
//   - h: the new hint
func (n *Node) SetCullHint(h CullHint) { n.cullHint = h }

// AddController appends a controller run by UpdateGeometricState before transforms are combined.
func (n *Node) AddController(c Controller) {
	if c != nil {
		n.controllers = append(n.controllers, c)
	}
}

// RemoveController removes c.
//
// Returns:
//   - bool: false if c was not registered
func (n *Node) RemoveController(c Controller) bool {
	i := slices.Index(n.controllers, c)
	if i < 0 {
		return false
	}
	n.controllers = slices.Delete(n.controllers, i, i+1)
	return true
}

// Controllers returns the registered controllers.
func (n *Node) Controllers() []Controller { return n.controllers }

// UpdateWorldTransform combines the local transform with the parent's world
// transform for slot f. A root uses its local transform as is. It does not
// recurse; UpdateGeometricState walks the tree.
//
// Parameters:
//   - f: the slot to write
func (n *Node) UpdateWorldTransform(f frame.Slot) {
	frame.Check(f)
	if n.parent == nil {
		n.world[f] = n.local
		return
	}
	n.world[f].Combine(&n.parent.world[f], &n.local)
}

// UpdateWorldBound merges the world bounds of the node's renderables and the
// bounds already computed for its children into the node's slot-f bound, reusing
// the stored volume. A locked node with a cached bound is left untouched.
//
// Parameters:
//   - f: the slot to write
//
// Returns:
//   - bounding.Volume: the merged bound, or nil (see WorldBound)
func (n *Node) UpdateWorldBound(f frame.Slot) bounding.Volume {
	frame.Check(f)
	if n.locked && n.worldBound[f] != nil {
		return n.WorldBound(f)
	}

	dest := n.worldBound[f]
	var acc bounding.Volume
	unbounded := false

	for _, r := range n.batches {
		if !r.hasTarget() {
			continue
		}
		b := r.refreshBound(f)
		if b == nil {
			unbounded = true
			continue
		}
		acc = bounding.Merge(acc, b, dest)
		dest = acc
	}
	for _, c := range n.children {
		if c.unbounded[f] {
			unbounded = true
		}
		b := c.worldBound[f]
		if b == nil {
			continue
		}
		acc = bounding.Merge(acc, b, dest)
		dest = acc
	}

	n.worldBound[f] = acc
	n.unbounded[f] = unbounded
	return n.WorldBound(f)
}

// UpdateGeometricState produces slot fr.Slot for frame fr: controllers run over the
// subtree, world transforms are combined top-down, then bounds are merged
// bottom-up and every node is stamped with fr.Number. Each node is visited once
// per pass.
//
// Parameters:
//   - fr: the frame being produced
//   - dt: elapsed seconds since the previous frame
func (n *Node) UpdateGeometricState(fr frame.Frame, dt float32) {
	frame.Check(fr.Slot)
	n.runControllers(dt)
	n.updateTransforms(fr)
	n.updateBounds(fr.Slot)
}

func (n *Node) runControllers(dt float32) {
	for _, c := range n.controllers {
		c.Update(n, dt)
	}
	for _, c := range n.children {
		c.runControllers(dt)
	}
}

func (n *Node) updateTransforms(fr frame.Frame) {
	n.UpdateWorldTransform(fr.Slot)
	n.stamp[fr.Slot] = fr.Number
	for _, c := range n.children {
		c.updateTransforms(fr)
	}
}

func (n *Node) updateBounds(f frame.Slot) {
	for _, c := range n.children {
		c.updateBounds(f)
	}
	n.UpdateWorldBound(f)
}

// Walk visits n and its descendants depth-first in child order. Returning false
// from visit skips the node's subtree.
func (n *Node) Walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(visit)
	}
}

// Find returns the first node named name in the subtree, or nil.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

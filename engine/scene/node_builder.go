package scene

import "github.com/go-gl/mathgl/mgl32"

// NodeBuilderOption is a function that configures a Node during construction.
type NodeBuilderOption func(*Node)

// WithTranslation sets the initial local translation.
//
// Parameters:
//   - v: translation relative to the parent
//
// Returns:
//   - NodeBuilderOption: a function that applies the translation
func WithTranslation(v mgl32.Vec3) NodeBuilderOption {
	return func(n *Node) {
		n.local.Translation = v
	}
}

// WithRotation sets the initial local rotation.
//
// Parameters:
//   - q: rotation relative to the parent
//
// Returns:
//   - NodeBuilderOption: a function that applies the rotation
func WithRotation(q mgl32.Quat) NodeBuilderOption {
	return func(n *Node) {
		n.local.Rotation = q
	}
}

// WithScale sets the initial local scale.
//
// Parameters:
//   - v: per-axis scale
//
// Returns:
//   - NodeBuilderOption: a function that applies the scale
func WithScale(v mgl32.Vec3) NodeBuilderOption {
	return func(n *Node) {
		n.local.Scale = v
	}
}

// WithCullHint sets the node's cull hint.
func WithCullHint(h CullHint) NodeBuilderOption {
	return func(n *Node) {
		n.cullHint = h
	}
}

// WithChildren attaches children in order.
func WithChildren(children ...*Node) NodeBuilderOption {
	return func(n *Node) {
		for _, c := range children {
			n.AttachChild(c)
		}
	}
}

// WithBatches attaches renderables in order.
func WithBatches(batches ...Renderable) NodeBuilderOption {
	return func(n *Node) {
		for _, r := range batches {
			n.AttachBatch(r)
		}
	}
}

// WithController registers a controller on the node.
func WithController(c Controller) NodeBuilderOption {
	return func(n *Node) {
		n.AddController(c)
	}
}

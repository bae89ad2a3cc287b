package action

import "github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"

// PlayerBuilderOption is a function that configures a Player during construction.
type PlayerBuilderOption func(*Player)

// WithLoop sets whether playback wraps around the action's duration.
//
// Parameters:
//   - loop: true to loop
//
// Returns:
//   - PlayerBuilderOption: a function that applies the loop option to a Player
func WithLoop(loop bool) PlayerBuilderOption {
	return func(p *Player) {
		p.loop = loop
	}
}

// WithSpeed sets the playback speed multiplier.
//
// Parameters:
//   - speed: the speed multiplier (1.0 = normal, 0.5 = half speed)
//
// Returns:
//   - PlayerBuilderOption: a function that applies the speed option to a Player
func WithSpeed(speed float32) PlayerBuilderOption {
	return func(p *Player) {
		p.speed = speed
	}
}

// WithJoints binds nodes to joints in index order. Extra nodes are ignored.
//
// Parameters:
//   - nodes: one node per joint, nil to leave a joint unbound
//
// Returns:
//   - PlayerBuilderOption: a function that applies the bindings to a Player
func WithJoints(nodes ...*scene.Node) PlayerBuilderOption {
	return func(p *Player) {
		copy(p.bindings, nodes)
	}
}

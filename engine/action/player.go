package action

import (
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"
)

// Player advances an Action and writes the sampled poses into the local
// transforms of the nodes bound to each joint. Register it as a controller on
// any node updated before the joints, usually the skeleton root.
type Player struct {
	action   *Action
	bindings []*scene.Node
	time     float32
	speed    float32
	loop     bool
	playing  bool
}

var _ scene.Controller = &Player{}

// NewPlayer creates a looping Player at normal speed, playing from time zero.
//
// Parameters:
//   - a: the action to play
//   - options: functional options to configure the player
//
// Returns:
//   - *Player: the player
func NewPlayer(a *Action, options ...PlayerBuilderOption) *Player {
	if a == nil {
		panic("action: NewPlayer requires a non-nil Action")
	}
	p := &Player{
		action:   a,
		bindings: make([]*scene.Node, a.JointCount()),
		speed:    1,
		loop:     true,
		playing:  true,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Bind attaches node to joint. A nil node unbinds it. Out-of-range joints panic.
func (p *Player) Bind(joint int, node *scene.Node) {
	p.bindings[joint] = node
}

func (p *Player) Action() *Action { return p.action }
func (p *Player) Time() float32   { return p.time }
func (p *Player) Playing() bool   { return p.playing }

// Play resumes playback from the current time.
func (p *Player) Play() { p.playing = true }

// Stop pauses playback; the last written poses stay in place.
func (p *Player) Stop() { p.playing = false }

// Seek sets the playback time in seconds.
func (p *Player) Seek(t float32) { p.time = t }

// SetSpeed sets the playback speed multiplier (1 = normal).
func (p *Player) SetSpeed(speed float32) { p.speed = speed }

// Update advances time by dt and poses every bound joint. A non-looping player
// stops on the last frame.
func (p *Player) Update(_ *scene.Node, dt float32) {
	if !p.playing {
		return
	}
	p.time += dt * p.speed
	if !p.loop {
		last := float32(p.action.FrameCount()-1) / p.action.FrameRate()
		if p.time >= last {
			p.time = last
			p.playing = false
		}
	}
	for joint, n := range p.bindings {
		if n == nil {
			continue
		}
		pose := p.action.Sample(p.time, joint)
		n.SetTranslation(pose.Translation)
		n.SetRotation(pose.Rotation)
	}
}

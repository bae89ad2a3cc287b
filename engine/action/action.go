// Package action holds joint animation data and a player that applies it to
// scene nodes during the update stage. An Action is read-only once built and may
// be shared by any number of players.
package action

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidAction is wrapped by NewAction when the frame data is malformed.
var ErrInvalidAction = errors.New("action: invalid frame data")

// JointPose is the local translation and rotation of one joint in one frame.
type JointPose struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
}

// Action is a sequence of poses keyed by joint index, sampled at a fixed frame rate.
type Action struct {
	name      string
	frameRate float32
	joints    int
	frames    [][]JointPose
}

// NewAction validates and wraps frame data. Every frame must hold exactly joints poses.
// Rotations are normalized; the input slices are not retained.
//
// Parameters:
//   - name: action name
//   - frameRate: frames per second, > 0
//   - joints: number of joints, > 0
//   - frames: per frame, one pose per joint
//
// Returns:
//   - *Action: the action
//   - error: wrapping ErrInvalidAction when the shape is wrong
func NewAction(name string, frameRate float32, joints int, frames [][]JointPose) (*Action, error) {
	if frameRate <= 0 {
		return nil, fmt.Errorf("%w: %q frame rate %v", ErrInvalidAction, name, frameRate)
	}
	if joints <= 0 {
		return nil, fmt.Errorf("%w: %q has %d joints", ErrInvalidAction, name, joints)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: %q has no frames", ErrInvalidAction, name)
	}
	a := &Action{name: name, frameRate: frameRate, joints: joints, frames: make([][]JointPose, len(frames))}
	for i, poses := range frames {
		if len(poses) != joints {
			return nil, fmt.Errorf("%w: %q frame %d has %d poses, want %d", ErrInvalidAction, name, i, len(poses), joints)
		}
		cp := make([]JointPose, joints)
		for j, p := range poses {
			if p.Rotation.Len() == 0 {
				p.Rotation = mgl32.QuatIdent()
			}
			cp[j] = JointPose{Translation: p.Translation, Rotation: p.Rotation.Normalize()}
		}
		a.frames[i] = cp
	}
	return a, nil
}

func (a *Action) Name() string       { return a.name }
func (a *Action) FrameRate() float32 { return a.frameRate }
func (a *Action) JointCount() int    { return a.joints }
func (a *Action) FrameCount() int    { return len(a.frames) }

// Duration returns the length of one loop in seconds. The last frame blends back
// into the first, so every frame occupies 1/FrameRate seconds.
func (a *Action) Duration() float32 {
	return float32(len(a.frames)) / a.frameRate
}

// Pose returns the stored pose of joint in frame. Out-of-range indices panic.
func (a *Action) Pose(frame, joint int) JointPose {
	return a.frames[frame][joint]
}

// Sample interpolates the pose of joint at time t seconds. Translation is
// linearly interpolated and rotation spherically interpolated between the two
// neighbouring frames; t wraps around Duration, negative t included.
//
// Parameters:
//   - t: time in seconds
//   - joint: joint index
//
// Returns:
//   - JointPose: the interpolated pose
func (a *Action) Sample(t float32, joint int) JointPose {
	n := len(a.frames)
	pos := math32.Mod(t*a.frameRate, float32(n))
	if pos < 0 {
		pos += float32(n)
	}
	i := int(pos)
	if i >= n {
		i = n - 1
	}
	alpha := pos - float32(i)
	from := a.frames[i][joint]
	if alpha == 0 || n == 1 {
		return from
	}
	to := a.frames[(i+1)%n][joint]
	return JointPose{
		Translation: from.Translation.Add(to.Translation.Sub(from.Translation).Mul(alpha)),
		Rotation:    mgl32.QuatSlerp(from.Rotation, to.Rotation, alpha),
	}
}

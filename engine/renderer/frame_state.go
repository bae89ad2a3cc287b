package renderer

import (
	"time"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/camera"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
)

// Stats counts what one frame did in the cull and render stages.
type Stats struct {
	Visited  int // nodes reached
	Tested   int // frustum tests performed
	Culled   int // nodes and renderables rejected
	Excluded int // renderables with nothing to draw
	Queued   int // renderables added to the queue
	Drawn    int // draw calls issued

	UpdateTime time.Duration
	CullTime   time.Duration
	RenderTime time.Duration
}

// Add accumulates other's counters into s. Durations are not summed.
func (s *Stats) Add(other Stats) {
	s.Visited += other.Visited
	s.Tested += other.Tested
	s.Culled += other.Culled
	s.Excluded += other.Excluded
	s.Queued += other.Queued
	s.Drawn += other.Drawn
}

// FrameState is everything one frame slot carries through the pipeline. The
// stage that currently owns the slot is its only writer.
type FrameState struct {
	Frame     frame.Frame
	DeltaTime float32
	Queue     *RenderQueue
	Passes    []*RenderPass
	Camera    camera.Camera
	Stats     Stats
}

// Reset prepares the state for a new frame on the same slot. The queue is
// cleared and every pass is re-enabled.
func (fs *FrameState) Reset(fr frame.Frame, dt float32) {
	fs.Frame = fr
	fs.DeltaTime = dt
	fs.Queue.Clear()
	fs.Stats = Stats{}
	for _, p := range fs.Passes {
		p.Enabled = true
	}
}

// Pass returns the pass with id, or nil.
func (fs *FrameState) Pass(id PassID) *RenderPass {
	for _, p := range fs.Passes {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// NewFrameStates builds one FrameState per slot, each with its own queue and
// pass list from path. Buckets are registered for every queue a pass draws.
//
// Parameters:
//   - path: a RenderPath that has been Setup
//   - options: options for each slot's RenderQueue
//
// Returns:
//   - [frame.MaxFrames]*FrameState: states indexed by slot
func NewFrameStates(path RenderPath, options ...QueueBuilderOption) [frame.MaxFrames]*FrameState {
	var states [frame.MaxFrames]*FrameState
	for i := range states {
		fs := &FrameState{
			Frame: frame.Frame{Slot: frame.Slot(i)},
			Queue: NewRenderQueue(options...),
		}
		fs.Passes = path.CreateDefaultPasses(fs)
		for _, p := range fs.Passes {
			for _, id := range p.Queues {
				if !fs.Queue.HasBucket(id) {
					fs.Queue.AddBucket(id, SortNone)
				}
			}
		}
		states[i] = fs
	}
	return states
}

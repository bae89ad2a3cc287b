package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/camera"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
)

// Op names a recorded backend call.
type Op string

const (
	OpBeginFrame Op = "BeginFrame"
	OpBeginPass  Op = "BeginPass"
	OpDraw       Op = "Draw"
	OpEndPass    Op = "EndPass"
	OpEndFrame   Op = "EndFrame"
	OpRelease    Op = "Release"
)

// Call is one recorded backend call.
type Call struct {
	Op    Op
	Frame frame.Frame
	Pass  PassID
	Name  string // renderable name for OpDraw, pass name for OpBeginPass
}

// RecordingBackend is a DrawBackend that records calls instead of drawing. It
// backs headless runs and tests. Safe for concurrent inspection.
type RecordingBackend struct {
	mu       *sync.Mutex
	calls    []Call
	current  frame.Frame
	pass     PassID
	frames   int
	draws    int
	released bool
	keep     bool

	onBeginFrame func(fr frame.Frame) error
	onDraw       func(dc DrawCall) error
}

var _ DrawBackend = &RecordingBackend{}

// NewRecordingBackend creates a RecordingBackend that keeps every call.
//
// Parameters:
//   - options: functional options to configure the backend
//
// Returns:
//   - *RecordingBackend: the backend
func NewRecordingBackend(options ...RecordingBackendOption) *RecordingBackend {
	b := &RecordingBackend{mu: &sync.Mutex{}, keep: true}
	for _, option := range options {
		option(b)
	}
	return b
}

func (b *RecordingBackend) record(c Call) {
	if b.keep {
		b.calls = append(b.calls, c)
	}
}

func (b *RecordingBackend) BeginFrame(fr frame.Frame) error {
	if b.onBeginFrame != nil {
		if err := b.onBeginFrame(fr); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = fr
	b.record(Call{Op: OpBeginFrame, Frame: fr})
	return nil
}

func (b *RecordingBackend) BeginPass(p *RenderPass, _ camera.Camera) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pass = p.ID
	b.record(Call{Op: OpBeginPass, Frame: b.current, Pass: p.ID, Name: p.Name})
	return nil
}

func (b *RecordingBackend) Draw(dc DrawCall) error {
	if b.onDraw != nil {
		if err := b.onDraw(dc); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draws++
	b.record(Call{Op: OpDraw, Frame: dc.Frame, Pass: b.pass, Name: dc.Renderable.Name()})
	return nil
}

func (b *RecordingBackend) EndPass() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(Call{Op: OpEndPass, Frame: b.current, Pass: b.pass})
	return nil
}

func (b *RecordingBackend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames++
	b.record(Call{Op: OpEndFrame, Frame: b.current})
	return nil
}

func (b *RecordingBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
	b.record(Call{Op: OpRelease})
}

// Calls returns a copy of the recorded calls.
func (b *RecordingBackend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Draws returns the names of the renderables drawn in frame number n, in order.
func (b *RecordingBackend) Draws(n uint64) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var names []string
	for _, c := range b.calls {
		if c.Op == OpDraw && c.Frame.Number == n {
			names = append(names, c.Name)
		}
	}
	return names
}

// FrameCount returns the number of frames ended.
func (b *RecordingBackend) FrameCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

// DrawCount returns the number of draws recorded.
func (b *RecordingBackend) DrawCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draws
}

// Released reports whether Release was called.
func (b *RecordingBackend) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

// RecordingBackendOption is a function that configures a RecordingBackend during construction.
type RecordingBackendOption func(*RecordingBackend)

// WithCallLog sets whether individual calls are kept. Counters are always kept.
// Long headless runs turn the log off.
func WithCallLog(keep bool) RecordingBackendOption {
	return func(b *RecordingBackend) {
		b.keep = keep
	}
}

// WithBeginFrameHook runs fn at the start of every BeginFrame. A non-nil error
// fails the frame. fn may block.
func WithBeginFrameHook(fn func(fr frame.Frame) error) RecordingBackendOption {
	return func(b *RecordingBackend) {
		b.onBeginFrame = fn
	}
}

// WithDrawHook runs fn before every draw is recorded. A non-nil error fails the draw.
func WithDrawHook(fn func(dc DrawCall) error) RecordingBackendOption {
	return func(b *RecordingBackend) {
		b.onDraw = fn
	}
}

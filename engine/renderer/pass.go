package renderer

import (
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// ClearFlags selects which attachments a pass clears when it begins.
type ClearFlags uint8

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
	ClearStencil

	ClearNone ClearFlags = 0
	ClearAll             = ClearColor | ClearDepth | ClearStencil
)

// Has reports whether every flag in f is set.
func (c ClearFlags) Has(f ClearFlags) bool { return c&f == f }

// FrameBuffer describes a render target. The root frame buffer is the window
// surface; a zero size follows the surface size.
type FrameBuffer struct {
	Name      string
	Width     int
	Height    int
	Offscreen bool
}

// RenderPass draws the renderables of its queues that accept the pass.
// Passes are per frame slot, so a hook may toggle Enabled for one frame
// without affecting frames in other stages.
type RenderPass struct {
	ID         PassID
	Name       string
	Queues     []QueueID
	Target     *FrameBuffer
	Clear      ClearFlags
	ClearValue mgl32.Vec4
	Enabled    bool
}

// Draws reports whether r's pass mask selects this pass.
func (p *RenderPass) Draws(r scene.Renderable) bool {
	return r.PassMask().Has(p.ID.Bit())
}

// Clone returns a copy with its own queue list.
func (p *RenderPass) Clone() *RenderPass {
	cp := *p
	cp.Queues = append([]QueueID(nil), p.Queues...)
	return &cp
}

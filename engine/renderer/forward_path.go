package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// ForwardPath renders opaque, light, transparent, ortho and post passes in that
// order onto the root frame buffer, optionally preceded by a shadow pass into an
// offscreen depth target. Hooks come from its HookSet.
type ForwardPath struct {
	HookSet

	shadows     bool
	shadowSize  int
	clearColor  mgl32.Vec4
	root        *FrameBuffer
	shadowMap   *FrameBuffer
	templates   []*RenderPass
	extraPasses []*RenderPass
}

var _ RenderPath = &ForwardPath{}

// NewForwardPath creates a ForwardPath. Call Setup before use.
//
// Parameters:
//   - options: functional options to configure the path
//
// Returns:
//   - *ForwardPath: the path
func NewForwardPath(options ...ForwardPathBuilderOption) *ForwardPath {
	fp := &ForwardPath{
		shadowSize: light.ShadowMapResolution,
		clearColor: mgl32.Vec4{0.05, 0.05, 0.08, 1},
		root:       &FrameBuffer{Name: "root"},
	}
	for _, option := range options {
		option(fp)
	}
	return fp
}

func (fp *ForwardPath) Setup() error {
	if fp.shadows && fp.shadowSize <= 0 {
		return fmt.Errorf("renderer: forward path shadow map size %d must be positive", fp.shadowSize)
	}
	fp.templates = fp.templates[:0]
	if fp.shadows {
		fp.shadowMap = &FrameBuffer{Name: "shadow", Width: fp.shadowSize, Height: fp.shadowSize, Offscreen: true}
		fp.templates = append(fp.templates, &RenderPass{
			ID: PassShadow, Name: "shadow", Queues: []QueueID{QueueShadow},
			Target: fp.shadowMap, Clear: ClearDepth, Enabled: true,
		})
	}
	fp.templates = append(fp.templates,
		&RenderPass{ID: PassOpaque, Name: "opaque", Queues: []QueueID{QueueOpaque}, Target: fp.root, Clear: ClearColor | ClearDepth, ClearValue: fp.clearColor, Enabled: true},
		&RenderPass{ID: PassLight, Name: "light", Queues: []QueueID{QueueLight}, Target: fp.root, Enabled: true},
		&RenderPass{ID: PassTransparent, Name: "transparent", Queues: []QueueID{QueueTransparent}, Target: fp.root, Enabled: true},
		&RenderPass{ID: PassOrtho, Name: "ortho", Queues: []QueueID{QueueOrtho}, Target: fp.root, Clear: ClearDepth, Enabled: true},
	)
	fp.templates = append(fp.templates, fp.extraPasses...)
	fp.templates = append(fp.templates, &RenderPass{ID: PassPost, Name: "post", Target: fp.root, Enabled: true})
	return nil
}

func (fp *ForwardPath) CreateDefaultPasses(fs *FrameState) []*RenderPass {
	passes := make([]*RenderPass, len(fp.templates))
	for i, p := range fp.templates {
		passes[i] = p.Clone()
	}
	return passes
}

func (fp *ForwardPath) RootFrameBuffer() *FrameBuffer { return fp.root }

func (fp *ForwardPath) Passes() []*RenderPass { return fp.templates }

// ShadowMap returns the shadow frame buffer, or nil when shadows are off.
func (fp *ForwardPath) ShadowMap() *FrameBuffer { return fp.shadowMap }

// ForwardPathBuilderOption is a function that configures a ForwardPath during construction.
type ForwardPathBuilderOption func(*ForwardPath)

// WithShadows enables the shadow pass with a square map of size texels per side.
// A size of 0 keeps light.ShadowMapResolution.
//
// Parameters:
//   - enabled: true to add the shadow pass
//   - size: shadow map resolution
//
// Returns:
//   - ForwardPathBuilderOption: a function that applies the option
func WithShadows(enabled bool, size int) ForwardPathBuilderOption {
	return func(fp *ForwardPath) {
		fp.shadows = enabled
		if size != 0 {
			fp.shadowSize = size
		}
	}
}

// WithClearColor sets the colour the opaque pass clears the root frame buffer to.
func WithClearColor(c mgl32.Vec4) ForwardPathBuilderOption {
	return func(fp *ForwardPath) {
		fp.clearColor = c
	}
}

// WithHooks installs frame hooks.
//
// Parameters:
//   - hooks: functions called at each hook point; nil fields are skipped
//
// Returns:
//   - ForwardPathBuilderOption: a function that applies the option
func WithHooks(hooks HookSet) ForwardPathBuilderOption {
	return func(fp *ForwardPath) {
		fp.HookSet = hooks
	}
}

// WithExtraPass inserts a user pass after the ortho pass and before post.
//
// Parameters:
//   - p: the pass template, usually with an id from GenPassID
//
// Returns:
//   - ForwardPathBuilderOption: a function that applies the option
func WithExtraPass(p *RenderPass) ForwardPathBuilderOption {
	return func(fp *ForwardPath) {
		if p.Target == nil {
			p.Target = fp.root
		}
		fp.extraPasses = append(fp.extraPasses, p)
	}
}

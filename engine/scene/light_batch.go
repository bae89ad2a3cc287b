package scene

import (
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/bounding"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/frame"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/light"
)

// LightBatch attaches a light to the graph. Its bound is the light's influence
// volume placed by the parent's world transform; directional lights have none
// and are never culled.
type LightBatch struct {
	renderable
	light light.Light
}

var _ Renderable = &LightBatch{}

// NewLightBatch creates a detached LightBatch in the light queue.
//
// Parameters:
//   - name: batch name
//   - l: the light, or nil
//   - options: functional options to configure the masks
//
// Returns:
//   - *LightBatch: the new light batch
func NewLightBatch(name string, l light.Light, options ...BatchBuilderOption) *LightBatch {
	lb := &LightBatch{
		renderable: renderable{name: name, queueMask: DefaultLightQueueMask, passMask: MaskAll},
		light:      l,
	}
	for _, option := range options {
		option(&lb.renderable)
	}
	return lb
}

// Light returns the light, or nil.
func (lb *LightBatch) Light() light.Light { return lb.light }

// SetLight replaces the light. Call from the update stage.
func (lb *LightBatch) SetLight(l light.Light) { lb.light = l }

func (lb *LightBatch) UpdateWorldBound(f frame.Slot) bounding.Volume {
	return lb.updateWorldBound(f, lb.modelBound())
}

// DoCull returns false for a nil or disabled light.
func (lb *LightBatch) DoCull(f frame.Slot) bool {
	if !lb.hasTarget() {
		return false
	}
	lb.refresh(f, lb.modelBound())
	return true
}

func (lb *LightBatch) modelBound() bounding.Volume {
	if lb.light == nil {
		return nil
	}
	return lb.light.Bound()
}

func (lb *LightBatch) hasTarget() bool {
	return lb.light != nil && lb.light.Enabled()
}

func (lb *LightBatch) refreshBound(f frame.Slot) bounding.Volume {
	return lb.refresh(f, lb.modelBound())
}

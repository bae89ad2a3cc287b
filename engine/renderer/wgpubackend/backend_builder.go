package wgpubackend

import (
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// BackendBuilderOption is a function that configures a Backend during construction.
type BackendBuilderOption func(*Backend)

// WithPresentMode selects vsync (Fifo) or uncapped (Immediate) presentation.
//
// Parameters:
//   - mode: the present mode
//
// Returns:
//   - BackendBuilderOption: a function that applies the present mode
func WithPresentMode(mode renderer.PresentMode) BackendBuilderOption {
	return func(b *Backend) {
		switch mode {
		case renderer.PresentModeUncapped:
			b.presentMode = wgpu.PresentModeImmediate
		default:
			b.presentMode = wgpu.PresentModeFifo
		}
	}
}

// WithMSAA sets the sample count of the colour and depth attachments.
//
// Parameters:
//   - count: renderer.MSAAOff or renderer.MSAA4x
//
// Returns:
//   - BackendBuilderOption: a function that applies the sample count
func WithMSAA(count renderer.MSAASampleCount) BackendBuilderOption {
	return func(b *Backend) {
		if count == renderer.MSAA4x {
			b.sampleCount = renderer.MSAA4x
		} else {
			b.sampleCount = renderer.MSAAOff
		}
	}
}

// WithSoftwareAdapter forces the fallback (CPU) adapter.
func WithSoftwareAdapter(enabled bool) BackendBuilderOption {
	return func(b *Backend) {
		b.fallback = enabled
	}
}

// WithMaxDraws sets how many geometry draws one frame may issue. Each draw
// reserves 256 bytes of uniform memory.
func WithMaxDraws(n int) BackendBuilderOption {
	return func(b *Backend) {
		if n > 0 {
			b.maxDraws = n
		}
	}
}

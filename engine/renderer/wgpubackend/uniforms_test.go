package wgpubackend

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/light"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func TestShaderDeclaresEntryPointsAndBindings(t *testing.T) {
	for _, want := range []string{"fn vs_main", "fn fs_main", "@group(0) @binding(0)", "@group(0) @binding(1)", "@group(1) @binding(0)", "array<Light, 8>"} {
		assert.True(t, strings.Contains(shaderSource, want), want)
	}
	assert.Equal(t, 8, MaxLights)
}

func TestPackDraw(t *testing.T) {
	buf := make([]byte, drawStride)
	model := mgl32.Translate3D(1, 2, 3)
	packDraw(buf, model, mgl32.Vec4{0.25, 0.5, 0.75, 1})

	assert.Equal(t, float32(1), f32(buf, 48))
	assert.Equal(t, float32(2), f32(buf, 52))
	assert.Equal(t, float32(3), f32(buf, 56))
	assert.Equal(t, float32(0.5), f32(buf, 68))
	assert.Equal(t, float32(1), f32(buf, 76))
	assert.Equal(t, make([]byte, drawStride-drawSize), buf[drawSize:])
}

func TestPackLightsClampsAndClears(t *testing.T) {
	lights := make([]light.GPULight, MaxLights+3)
	for i := range lights {
		lights[i].Intensity = float32(i + 1)
	}
	buf := make([]byte, lightsSize)
	packLights(buf, lights)
	assert.Equal(t, uint32(MaxLights), binary.LittleEndian.Uint32(buf))
	assert.Equal(t, float32(MaxLights), f32(buf, 16+(MaxLights-1)*lightSize+28))

	packLights(buf, lights[:1])
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf))
	assert.Zero(t, f32(buf, 16+lightSize+28), "stale lights are cleared")
}

func TestMeshBytes(t *testing.T) {
	v := vertexBytes([]mgl32.Vec3{{1, 2, 3}, {4, 5, 6}})
	require.Len(t, v, 24)
	assert.Equal(t, float32(6), f32(v, 20))

	i := indexBytes([]uint32{0, 1, 2})
	require.Len(t, i, 12)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(i[8:]))
}

func TestOptions(t *testing.T) {
	b := &Backend{}
	for _, option := range []BackendBuilderOption{
		WithPresentMode(renderer.PresentModeUncapped),
		WithMSAA(renderer.MSAA4x),
		WithSoftwareAdapter(true),
		WithMaxDraws(10),
		WithMaxDraws(-1),
	} {
		option(b)
	}
	assert.Equal(t, wgpu.PresentModeImmediate, b.presentMode)
	assert.Equal(t, renderer.MSAA4x, b.sampleCount)
	assert.True(t, b.fallback)
	assert.Equal(t, 10, b.maxDraws)

	WithMSAA(3)(b)
	assert.Equal(t, renderer.MSAAOff, b.sampleCount)
}

package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-scenegraph/engine/bounding"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVecNear(t *testing.T, want, have mgl32.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], have[:], 1e-4, msgAndArgs...)
}

func TestNewLightDefaults(t *testing.T) {
	l := NewLight(LightTypePoint, WithPosition(mgl32.Vec3{1, 2, 3}), WithRange(5))
	assert.True(t, l.Enabled())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, l.Color())

	s, ok := l.Bound().(*bounding.Sphere)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, s.Center())
	assert.Equal(t, float32(5), s.Radius())
}

func TestDirectionalLightHasNoBound(t *testing.T) {
	l := NewLight(LightTypeDirectional, WithDirection(mgl32.Vec3{0, 0, -2}))
	assert.Nil(t, l.Bound())
	assertVecNear(t, mgl32.Vec3{0, 0, -1}, l.Direction())

	l.SetDirection(mgl32.Vec3{})
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, l.Direction(), "zero direction falls back to down")
}

func TestShadowCasters(t *testing.T) {
	a := NewLight(LightTypeDirectional, WithCastsShadows(true))
	b := NewLight(LightTypePoint)
	c := NewLight(LightTypeSpot, WithCastsShadows(true), WithEnabled(false))
	assert.Equal(t, []Light{a}, ShadowCasters([]Light{a, b, nil, c}))
}

func TestGPULightMarshal(t *testing.T) {
	l := NewLight(LightTypeSpot, WithColor(mgl32.Vec3{0.5, 0.25, 1}), WithIntensity(2), WithCastsShadows(true))
	g := ToGPULight(l)
	assert.Equal(t, 64, g.Size())

	buf := g.Marshal()
	require.Len(t, buf, 64)
	assert.Equal(t, uint32(LightTypeSpot), binary.LittleEndian.Uint32(buf[12:16]))
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.LittleEndian.Uint32(buf[20:24])))
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(buf[28:32])))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[56:60]))

	l.SetEnabled(false)
	assert.Equal(t, float32(0), ToGPULight(l).Intensity)
	assert.Equal(t, GPULight{}, ToGPULight(nil))
}

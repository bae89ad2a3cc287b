package common

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]uint32(nil)))

	b := SliceToBytes([]mgl32.Vec3{{1, 2, 3}, {4, 5, 6}})
	require.Len(t, b, 24)
	assert.Equal(t, float32(5), math.Float32frombits(binary.LittleEndian.Uint32(b[16:])))
}

func TestStructToBytes(t *testing.T) {
	v := struct {
		A uint32
		B float32
	}{7, 0.5}
	b := StructToBytes(&v)
	require.Len(t, b, 8)
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(b))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(b[4:])))
}

func TestDepthRangeCorrection(t *testing.T) {
	m := DepthRangeCorrection()
	near := m.Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	far := m.Mul4x1(mgl32.Vec4{0, 0, 1, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-6)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-6)
}

package light

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPULight is the GPU-aligned representation of a single light source, laid out to match
// the Light struct of the draw backend's WGSL (64 bytes, std140/std430 aligned).
type GPULight struct {
	Position     [3]float32 // offset  0
	LightType    uint32     // offset 12: 0 = directional, 1 = point, 2 = spot
	Color        [3]float32 // offset 16
	Intensity    float32    // offset 28
	Direction    [3]float32 // offset 32
	LightRange   float32    // offset 44
	InnerCone    float32    // offset 48
	OuterCone    float32    // offset 52
	CastsShadows uint32     // offset 56
	_pad         uint32     // offset 60
}

// Size returns the size of the GPULight struct in bytes.
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight into a little-endian 64-byte buffer.
//
// Returns:
//   - []byte: buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, 64)
	put := func(off int, v float32) { binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v)) }
	put(0, g.Position[0])
	put(4, g.Position[1])
	put(8, g.Position[2])
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	put(16, g.Color[0])
	put(20, g.Color[1])
	put(24, g.Color[2])
	put(28, g.Intensity)
	put(32, g.Direction[0])
	put(36, g.Direction[1])
	put(40, g.Direction[2])
	put(44, g.LightRange)
	put(48, g.InnerCone)
	put(52, g.OuterCone)
	binary.LittleEndian.PutUint32(buf[56:60], g.CastsShadows)
	return buf
}

// ToGPULight converts a Light into its GPU representation. A nil or disabled light yields zero intensity.
//
// Parameters:
//   - l: the light to convert
//
// Returns:
//   - GPULight: the GPU-aligned light
func ToGPULight(l Light) GPULight {
	if l == nil {
		return GPULight{}
	}
	g := GPULight{
		Position:   l.Position(),
		LightType:  uint32(l.Type()),
		Color:      l.Color(),
		Intensity:  l.Intensity(),
		Direction:  l.Direction(),
		LightRange: l.Range(),
		InnerCone:  l.InnerCone(),
		OuterCone:  l.OuterCone(),
	}
	if !l.Enabled() {
		g.Intensity = 0
	}
	if l.CastsShadows() {
		g.CastsShadows = 1
	}
	return g
}

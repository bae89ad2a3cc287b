package wgpubackend

import (
	_ "embed"
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-scenegraph/common"
	"github.com/Carmen-Shannon/oxy-scenegraph/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

//go:embed shader.wgsl
var shaderSource string

const (
	// MaxLights is the number of lights the shader evaluates per frame.
	MaxLights = 8

	// drawStride is the per-draw uniform slot size. 256 is the largest
	// minUniformBufferOffsetAlignment WebGPU permits, so it is valid everywhere.
	drawStride = 256
	drawSize   = 80

	lightSize   = 64
	lightsSize  = 16 + MaxLights*lightSize
	defaultDraw = 4096
)

// drawUniform mirrors the shader's Draw block; it has no padding.
type drawUniform struct {
	Model mgl32.Mat4
	Color mgl32.Vec4
}

// packDraw writes the model matrix and base colour of one draw into dst.
func packDraw(dst []byte, model mgl32.Mat4, color mgl32.Vec4) {
	u := drawUniform{Model: model, Color: color}
	copy(dst[:drawSize], common.StructToBytes(&u))
}

// packLights encodes up to MaxLights lights into the Lights uniform block.
func packLights(dst []byte, lights []light.GPULight) {
	clear(dst)
	n := min(len(lights), MaxLights)
	binary.LittleEndian.PutUint32(dst[0:], uint32(n))
	for i := 0; i < n; i++ {
		copy(dst[16+i*lightSize:], lights[i].Marshal())
	}
}

// vertexBytes views positions as float32x3 vertex data. The queue copies it on write.
func vertexBytes(positions []mgl32.Vec3) []byte {
	return common.SliceToBytes(positions)
}

// indexBytes views indices as uint32 index data.
func indexBytes(indices []uint32) []byte {
	return common.SliceToBytes(indices)
}

package graphics

import (
	"encoding/binary"
	"math"

	"mini-voxel/internal/meshing"
)

// Attribute layout of a packed vertex: pos.xyz, normal.xyz, uv.xy as float32.
const (
	VertexSizeBytes = meshing.VertexStride * 4
	PositionOffset  = 0
	NormalOffset    = 3 * 4
	UVOffset        = 6 * 4
)

// PackVertices serializes vertices into the little-endian interleaved layout
// expected by the block shader. Index i of a mesh addresses bytes
// [i*VertexSizeBytes, (i+1)*VertexSizeBytes).
func PackVertices(vertices []meshing.Vertex) []byte {
	out := make([]byte, 0, len(vertices)*VertexSizeBytes)
	var scratch [meshing.VertexStride]float32
	for _, v := range vertices {
		floats := v.AppendFloats(scratch[:0])
		for _, f := range floats {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out
}

// UnpackVertices is the inverse of PackVertices.
func UnpackVertices(data []byte) []meshing.Vertex {
	n := len(data) / VertexSizeBytes
	out := make([]meshing.Vertex, n)
	read := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
	}
	for i := range out {
		base := i * VertexSizeBytes
		v := &out[i]
		for c := 0; c < 3; c++ {
			v.Position[c] = read(base + PositionOffset + c*4)
			v.Normal[c] = read(base + NormalOffset + c*4)
		}
		v.UV[0] = read(base + UVOffset)
		v.UV[1] = read(base + UVOffset + 4)
	}
	return out
}

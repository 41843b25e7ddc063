package meshing

import (
	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is number of float32 per vertex (pos.xyz + normal.xyz + uv)
const VertexStride = 8

// Epsilon is the tolerance used when comparing vertex attributes.
const Epsilon = 1e-5

// Vertex is one corner of a triangle as consumed by the block shader.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Equal reports whether every attribute of v and o matches within Epsilon.
func (v Vertex) Equal(o Vertex) bool {
	for i := 0; i < 3; i++ {
		if !near(v.Position[i], o.Position[i]) || !near(v.Normal[i], o.Normal[i]) {
			return false
		}
	}
	return near(v.UV[0], o.UV[0]) && near(v.UV[1], o.UV[1])
}

// near compares with an absolute tolerance.
func near(a, b float32) bool {
	return mgl32.Abs(a-b) <= Epsilon
}

// AppendFloats appends the interleaved attributes of v to dst.
func (v Vertex) AppendFloats(dst []float32) []float32 {
	return append(dst,
		v.Position[0], v.Position[1], v.Position[2],
		v.Normal[0], v.Normal[1], v.Normal[2],
		v.UV[0], v.UV[1],
	)
}

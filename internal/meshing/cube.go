package meshing

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Face indices, in the order shared by block types and blocks.
const (
	FaceNorth = iota // +Z
	FaceSouth        // -Z
	FaceEast         // +X
	FaceWest         // -X
	FaceTop          // +Y
	FaceBottom       // -Y
	FaceCount
)

// VerticesPerFace is the number of unindexed vertices emitted per face (2 triangles).
const VerticesPerFace = 6

var (
	// FaceNormals holds the outward unit normal of every face.
	FaceNormals = [FaceCount]mgl32.Vec3{
		{0, 0, 1},
		{0, 0, -1},
		{1, 0, 0},
		{-1, 0, 0},
		{0, 1, 0},
		{0, -1, 0},
	}

	// cornerSigns gives, per face, the corner offsets from the block center in
	// units of half extents: bottom-left, bottom-right, top-right, top-left as
	// seen from outside the face (counter-clockwise).
	cornerSigns = [FaceCount][4]mgl32.Vec3{
		// NORTH
		{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}},
		// SOUTH
		{{1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}},
		// EAST
		{{1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {1, 1, 1}},
		// WEST
		{{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}},
		// TOP
		{{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}},
		// BOTTOM
		{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}},
	}

	// quadOrder splits a quad into two triangles; corners 0 and 2 repeat.
	quadOrder = [VerticesPerFace]int{0, 1, 2, 2, 3, 0}
)

// FaceCorners returns the four corners of face around center with the given
// half extents, counter-clockwise seen from outside.
func FaceCorners(face int, center, half mgl32.Vec3) [4]mgl32.Vec3 {
	var out [4]mgl32.Vec3
	for i, s := range cornerSigns[face] {
		out[i] = mgl32.Vec3{
			center[0] + s[0]*half[0],
			center[1] + s[1]*half[1],
			center[2] + s[2]*half[2],
		}
	}
	return out
}

// OctantNormal returns the normal of a cube corner: the normalized sum of the
// three axis normals of the octant the corner lies in relative to center.
func OctantNormal(corner, center mgl32.Vec3) mgl32.Vec3 {
	var n mgl32.Vec3
	for i := 0; i < 3; i++ {
		switch d := corner[i] - center[i]; {
		case d > Epsilon:
			n[i] = 1
		case d < -Epsilon:
			n[i] = -1
		}
	}
	if n.Len() == 0 {
		return n
	}
	return n.Normalize()
}

// RotateUV maps the atlas rectangle uv (u0, v0, u1, v1) onto the four quad
// corners, rotated clockwise by rotation degrees.
func RotateUV(uv [4]float32, rotation int) [4]mgl32.Vec2 {
	base := [4]mgl32.Vec2{
		{uv[0], uv[3]}, // bottom-left
		{uv[2], uv[3]}, // bottom-right
		{uv[2], uv[1]}, // top-right
		{uv[0], uv[1]}, // top-left
	}
	steps := (rotation/90%4 + 4) % 4
	var out [4]mgl32.Vec2
	for i := range out {
		out[i] = base[(i+steps)%4]
	}
	return out
}

// FaceVertices generates the six unindexed vertices of one face.
func FaceVertices(face int, center, half mgl32.Vec3, uv [4]float32, rotation int) []Vertex {
	corners := FaceCorners(face, center, half)
	uvs := RotateUV(uv, rotation)

	out := make([]Vertex, VerticesPerFace)
	for i, c := range quadOrder {
		out[i] = Vertex{
			Position: corners[c],
			Normal:   OctantNormal(corners[c], center),
			UV:       uvs[c],
		}
	}
	return out
}

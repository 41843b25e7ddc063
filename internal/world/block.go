package world

import (
	"mini-voxel/internal/meshing"
	"mini-voxel/internal/registry"

	"github.com/go-gl/mathgl/mgl32"
)

// Face is one side of a placed block. Vertices is non-nil exactly when the
// face is visible; hidden faces hold no geometry.
type Face struct {
	Visible  bool
	Normal   mgl32.Vec3
	Vertices []meshing.Vertex
}

// Block is a placed instance of a block type. Origin is the minimum corner
// of the unit cell the block occupies.
type Block struct {
	Origin Coord
	Type   *registry.BlockType
	Faces  [meshing.FaceCount]Face
}

// NewBlock returns a block with every face hidden.
func NewBlock(origin Coord, t *registry.BlockType) Block {
	b := Block{Origin: origin, Type: t}
	for i := range b.Faces {
		b.Faces[i].Normal = meshing.FaceNormals[i]
	}
	return b
}

// Center is the middle of the block's cell.
func (b *Block) Center() mgl32.Vec3 {
	return b.Origin.Vec3().Add(mgl32.Vec3{0.5, 0.5, 0.5})
}

// Solid reports whether the block hides the faces of its neighbors.
func (b *Block) Solid() bool {
	return b.Type != nil && b.Type.Solid()
}

// setFaceVisible toggles a face, generating its vertices on the hidden to
// visible transition and dropping them on the way back. Returns whether the
// face changed.
func (b *Block) setFaceVisible(face int, visible bool) bool {
	f := &b.Faces[face]
	if f.Visible == visible {
		return false
	}
	f.Visible = visible
	if !visible {
		f.Vertices = nil
		return true
	}
	tex := b.Type.Face(face)
	half := b.Type.VisualSize().Mul(0.5)
	f.Vertices = meshing.FaceVertices(face, b.Center(), half, tex.UV, tex.Rotation)
	return true
}

// VisibleFaces counts the faces currently contributing geometry.
func (b *Block) VisibleFaces() int {
	n := 0
	for i := range b.Faces {
		if b.Faces[i].Visible {
			n++
		}
	}
	return n
}

// Clone copies the block including its vertex arrays.
func (b *Block) Clone() Block {
	out := *b
	for i := range out.Faces {
		if v := b.Faces[i].Vertices; v != nil {
			out.Faces[i].Vertices = append([]meshing.Vertex(nil), v...)
		}
	}
	return out
}

// resetFaces hides every face; used when a block is (re)inserted so its
// visibility is recomputed from scratch on the next rebuild.
func (b *Block) resetFaces() {
	for i := range b.Faces {
		b.Faces[i].Visible = false
		b.Faces[i].Vertices = nil
		b.Faces[i].Normal = meshing.FaceNormals[i]
	}
}

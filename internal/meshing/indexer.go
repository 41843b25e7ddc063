package meshing

import (
	"errors"
)

// ErrTooManyVertices is returned when a mesh would exceed its vertex budget.
var ErrTooManyVertices = errors.New("mesh vertex limit exceeded")

// DefaultMaxVertices bounds the unique vertices of one chunk mesh.
const DefaultMaxVertices = 1 << 24

// Mesh is an indexed triangle list: one index per emitted triangle corner
// and the unique vertex attributes they refer to.
type Mesh struct {
	Indices  []uint32
	Vertices []Vertex
}

// Empty reports whether the mesh has nothing to draw.
func (m Mesh) Empty() bool { return len(m.Indices) == 0 }

// Indexer deduplicates vertices into a Mesh.
//
// Every candidate is compared against all accepted vertices, so building a
// mesh of n vertices costs O(n²). This is the bottleneck of a chunk rebuild
// when chunks grow.
type Indexer struct {
	mesh        Mesh
	maxVertices int
}

// NewIndexer creates an indexer accepting at most maxVertices unique vertices.
// maxVertices <= 0 means DefaultMaxVertices.
func NewIndexer(maxVertices int, sizeHint int) *Indexer {
	if maxVertices <= 0 {
		maxVertices = DefaultMaxVertices
	}
	return &Indexer{
		mesh: Mesh{
			Indices:  make([]uint32, 0, sizeHint),
			Vertices: make([]Vertex, 0, sizeHint/2),
		},
		maxVertices: maxVertices,
	}
}

// Add emits v, reusing the index of an equal vertex when one was already accepted.
func (ix *Indexer) Add(v Vertex) error {
	for i, existing := range ix.mesh.Vertices {
		if existing.Equal(v) {
			ix.mesh.Indices = append(ix.mesh.Indices, uint32(i))
			return nil
		}
	}
	if len(ix.mesh.Vertices) >= ix.maxVertices {
		return ErrTooManyVertices
	}
	ix.mesh.Vertices = append(ix.mesh.Vertices, v)
	ix.mesh.Indices = append(ix.mesh.Indices, uint32(len(ix.mesh.Vertices)-1))
	return nil
}

// Mesh returns the indexed mesh built so far.
func (ix *Indexer) Mesh() Mesh {
	return ix.mesh
}

// BuildIndexed deduplicates an unindexed triangle list.
func BuildIndexed(verts []Vertex, maxVertices int) (Mesh, error) {
	ix := NewIndexer(maxVertices, len(verts))
	for _, v := range verts {
		if err := ix.Add(v); err != nil {
			return Mesh{}, err
		}
	}
	return ix.Mesh(), nil
}

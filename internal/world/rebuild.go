package world

import (
	"errors"
	"fmt"

	"mini-voxel/internal/meshing"
	"mini-voxel/internal/profiling"
)

// errStaleRebuild marks a rebuild abandoned because the chunk was modified
// while its neighbors were being resolved.
var errStaleRebuild = errors.New("chunk modified during rebuild")

type blockSnapshot struct {
	origin  Coord
	visible bool
	solid   bool
}

// rebuildChunk recomputes face visibility and the indexed mesh of c.
//
// The chunk lock is never held while neighbor chunks are read: the block
// list is snapshotted, neighbors are resolved lock-free from this chunk's
// point of view, and the result is applied only if no mutation happened in
// between. A mutation in between leaves the chunk NEED_UPDATE so the next
// scan picks it up again.
func (w *World) rebuildChunk(c *Chunk) {
	defer profiling.Track("world.rebuildChunk")()

	snap, rev, ok := c.beginUpdate()
	if !ok {
		return
	}

	local := make(map[Coord]bool, len(snap))
	for _, b := range snap {
		local[b.origin] = b.solid
	}

	visible := make([][meshing.FaceCount]bool, len(snap))
	for i, b := range snap {
		if !b.visible {
			continue
		}
		for face := 0; face < meshing.FaceCount; face++ {
			n := b.origin.Neighbor(face)
			var covered bool
			if c.Contains(n) {
				covered = local[n]
			} else {
				covered = w.solidAt(n)
			}
			visible[i][face] = !covered
		}
	}

	err := c.finishUpdate(rev, visible, w.opts.MaxMeshVertices)
	switch {
	case err == nil:
	case errors.Is(err, errStaleRebuild):
		// re-dirtied; a later scan rebuilds it
	default:
		w.logger.Printf("rebuild %v: %v", c, err)
	}
}

// solidAt reports whether a solid block occupies origin, waiting for the
// owning chunk's lock if needed.
func (w *World) solidAt(origin Coord) bool {
	c := w.store.Get(w.ChunkCoordOf(origin))
	if c == nil {
		return false
	}
	return c.solidAt(origin)
}

// beginUpdate moves a scheduled chunk to UPDATING and snapshots the data
// culling needs.
func (c *Chunk) beginUpdate() ([]blockSnapshot, uint64, bool) {
	c.content.Lock()
	defer c.content.Unlock()
	if c.state != StateSchedUpdate {
		return nil, 0, false
	}
	c.state = StateUpdating
	snap := make([]blockSnapshot, 0, c.blocks.Len())
	c.blocks.Each(func(b *Block) bool {
		snap = append(snap, blockSnapshot{
			origin:  b.Origin,
			visible: b.Type.Visible(),
			solid:   b.Solid(),
		})
		return true
	})
	return snap, c.revision, true
}

// finishUpdate applies the computed visibility, stages the vertices of every
// visible face and deduplicates them into the chunk mesh.
func (c *Chunk) finishUpdate(rev uint64, visible [][meshing.FaceCount]bool, maxVertices int) error {
	c.content.Lock()
	defer c.content.Unlock()

	if c.state != StateUpdating || c.revision != rev {
		return errStaleRebuild
	}
	blocks := c.blocks.Values()
	if len(blocks) != len(visible) {
		c.state = StateNeedUpdate
		return errStaleRebuild
	}

	prior := make([][meshing.FaceCount]Face, len(blocks))
	for i, b := range blocks {
		prior[i] = b.Faces
		for face := 0; face < meshing.FaceCount; face++ {
			b.setFaceVisible(face, visible[i][face])
		}
	}

	c.staging.Reset()
	for _, b := range blocks {
		for face := range b.Faces {
			if b.Faces[face].Visible {
				c.staging.Append(b.Faces[face].Vertices...)
			}
		}
	}

	ix := meshing.NewIndexer(maxVertices, c.staging.Len()*2/3)
	var err error
	c.staging.Each(func(_ int, v meshing.Vertex) bool {
		err = ix.Add(v)
		return err == nil
	})
	c.staging.Shrink(0)

	if err != nil {
		for i, b := range blocks {
			b.Faces = prior[i]
		}
		c.state = c.settled
		return fmt.Errorf("%w: %v: %v", ErrResourceExhausted, c, err)
	}
	c.mesh = ix.Mesh()
	c.state = StateNeedFlush
	return nil
}

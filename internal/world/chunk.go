package world

import (
	"fmt"
	"sync"

	"mini-voxel/internal/container"
	"mini-voxel/internal/graphics"
	"mini-voxel/internal/meshing"
)

// RenderState holds the GPU buffers published for a chunk.
type RenderState struct {
	Vertices   graphics.BufferHandle
	Indices    graphics.BufferHandle
	IndexCount int
}

func (r RenderState) empty() bool { return r.IndexCount == 0 }

// Chunk is a cubic region of the world owning the blocks whose origins fall
// inside it, together with the mesh built from their visible faces.
//
// content guards blocks, staging, mesh, state and revision. gpu guards
// render and is taken on the render thread only, so drawing never waits on
// a rebuild.
type Chunk struct {
	coord  ChunkCoord
	origin Coord
	size   int

	content  sync.RWMutex
	blocks   *container.LinkedList[*Block]
	index    map[Coord]*container.Node[*Block]
	staging  *container.SequenceBuffer[meshing.Vertex]
	mesh     meshing.Mesh
	state    ChunkState
	settled  ChunkState // state to fall back to when a rebuild is abandoned
	revision uint64

	gpu    sync.RWMutex
	render RenderState
}

func newChunk(coord ChunkCoord, size int) *Chunk {
	return &Chunk{
		coord:   coord,
		origin:  Coord{X: coord.X * size, Y: coord.Y * size, Z: coord.Z * size},
		size:    size,
		blocks:  container.NewLinkedList[*Block](),
		index:   make(map[Coord]*container.Node[*Block]),
		staging: container.NewSequenceBuffer[meshing.Vertex](0),
		state:   StateInited,
		settled: StateInited,
	}
}

func (c *Chunk) Coord() ChunkCoord { return c.coord }

// Origin is the minimum block origin covered by the chunk.
func (c *Chunk) Origin() Coord { return c.origin }

// Contains reports whether origin belongs to this chunk.
func (c *Chunk) Contains(origin Coord) bool {
	return chunkCoordOf(origin, c.size) == c.coord
}

func (c *Chunk) State() ChunkState {
	c.content.RLock()
	defer c.content.RUnlock()
	return c.state
}

func (c *Chunk) BlockCount() int {
	c.content.RLock()
	defer c.content.RUnlock()
	return c.blocks.Len()
}

// Mesh returns the last mesh built for the chunk.
func (c *Chunk) Mesh() meshing.Mesh {
	c.content.RLock()
	defer c.content.RUnlock()
	return c.mesh
}

// IndexCount is the number of indices in the published GPU buffers.
func (c *Chunk) IndexCount() int {
	c.gpu.RLock()
	defer c.gpu.RUnlock()
	return c.render.IndexCount
}

func (c *Chunk) String() string {
	return fmt.Sprintf("chunk%v", c.coord)
}

// appendBlock stores a copy of b without checking for duplicates.
func (c *Chunk) appendBlock(b Block) {
	c.content.Lock()
	defer c.content.Unlock()
	c.appendLocked(b)
	c.markDirtyLocked()
}

// insertBlock stores a copy of b unless a block with the same origin is
// already present.
func (c *Chunk) insertBlock(b Block) error {
	c.content.Lock()
	defer c.content.Unlock()
	if c.state == StateDeinited {
		return fmt.Errorf("%w: %v is deinited", ErrInvalidArgument, c)
	}
	if _, ok := c.index[b.Origin]; ok {
		return fmt.Errorf("%w: %v", ErrAlreadyExists, b.Origin)
	}
	c.appendLocked(b)
	c.markDirtyLocked()
	return nil
}

func (c *Chunk) appendLocked(b Block) {
	stored := b.Clone()
	stored.resetFaces()
	c.index[stored.Origin] = c.blocks.PushBack(&stored)
}

func (c *Chunk) removeBlock(origin Coord) error {
	c.content.Lock()
	defer c.content.Unlock()
	node, ok := c.index[origin]
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotFound, origin)
	}
	c.blocks.Remove(node)
	delete(c.index, origin)
	c.markDirtyLocked()
	return nil
}

// lookup returns a copy of the block at origin. With wait set it blocks on
// the content lock; otherwise it fails fast with ErrBusy while a writer holds
// it. An empty cell is ErrNotFound.
func (c *Chunk) lookup(origin Coord, wait bool) (Block, error) {
	if wait {
		c.content.RLock()
	} else if !c.content.TryRLock() {
		return Block{}, ErrBusy
	}
	defer c.content.RUnlock()
	node, ok := c.index[origin]
	if !ok {
		return Block{}, ErrNotFound
	}
	return node.Value.Clone(), nil
}

// solidAt is a non-copying variant of Block for culling.
func (c *Chunk) solidAt(origin Coord) bool {
	c.content.RLock()
	defer c.content.RUnlock()
	node, ok := c.index[origin]
	return ok && node.Value.Solid()
}

func (c *Chunk) markDirty() {
	c.content.Lock()
	defer c.content.Unlock()
	c.markDirtyLocked()
}

func (c *Chunk) markDirtyLocked() {
	c.revision++
	switch c.state {
	case StateSchedUpdate, StateDeinited:
		return
	}
	c.state = StateNeedUpdate
}

// claim moves a NEED_UPDATE chunk to SCHED_UPDATE. Only the caller that
// wins the transition may queue a rebuild.
func (c *Chunk) claim() bool {
	c.content.Lock()
	defer c.content.Unlock()
	if c.state != StateNeedUpdate {
		return false
	}
	c.state = StateSchedUpdate
	return true
}

// unclaim undoes claim when the rebuild could not be queued.
func (c *Chunk) unclaim() {
	c.content.Lock()
	defer c.content.Unlock()
	if c.state == StateSchedUpdate {
		c.state = StateNeedUpdate
	}
}

// deinit releases the chunk's GPU buffers and marks it DEINITED.
func (c *Chunk) deinit(backend graphics.Backend) {
	c.content.Lock()
	defer c.content.Unlock()
	c.gpu.Lock()
	old := c.render
	c.render = RenderState{}
	c.gpu.Unlock()
	if backend != nil {
		releaseRender(backend, old)
	}
	c.staging.Shrink(0)
	c.mesh = meshing.Mesh{}
	c.state = StateDeinited
}

func releaseRender(backend graphics.Backend, r RenderState) {
	if r.Vertices != 0 {
		backend.DeleteBuffer(r.Vertices)
	}
	if r.Indices != 0 {
		backend.DeleteBuffer(r.Indices)
	}
}

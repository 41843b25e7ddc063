package world

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"mini-voxel/internal/meshing"
	"mini-voxel/internal/util"
)

// Options configures a World.
type Options struct {
	// ChunkSize is the edge length of a cubic chunk in blocks.
	ChunkSize int
	// HeightMin and HeightMax bound the Y of every block origin, inclusive.
	HeightMin, HeightMax int
	// Workers is the number of rebuild goroutines; runtime.NumCPU when <= 0.
	Workers int
	// QueueSize bounds the number of queued rebuilds.
	QueueSize int
	// MaxMeshVertices caps the unique vertices of one chunk mesh.
	MaxMeshVertices int
	// ManualUpdates disables the coordinator goroutine. Rebuilds then only
	// happen when the caller invokes UpdateChunks.
	ManualUpdates bool
	Logger        *log.Logger
}

// DefaultOptions returns the options used when a field is left zero.
func DefaultOptions() Options {
	return Options{
		ChunkSize:       16,
		HeightMin:       -64,
		HeightMax:       255,
		QueueSize:       256,
		MaxMeshVertices: meshing.DefaultMaxVertices,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ChunkSize <= 0 {
		o.ChunkSize = d.ChunkSize
	}
	if o.HeightMin == 0 && o.HeightMax == 0 {
		o.HeightMin, o.HeightMax = d.HeightMin, d.HeightMax
	}
	if o.QueueSize <= 0 {
		o.QueueSize = d.QueueSize
	}
	if o.MaxMeshVertices <= 0 {
		o.MaxMeshVertices = d.MaxMeshVertices
	}
	if o.Logger == nil {
		o.Logger = log.New(os.Stderr, "[world] ", log.LstdFlags|log.Lmicroseconds)
	}
	return o
}

// World owns every chunk and drives their rebuilds. Mutations may come from
// any goroutine; FlushChunks, DrawChunks and Deinit belong to the render
// thread.
type World struct {
	opts   Options
	logger *log.Logger
	store  *ChunkStore
	pool   *meshing.WorkerPool

	// pending counts update triggers not yet consumed by the coordinator.
	pendingLock util.SpinLock
	pending     int

	wakeMu sync.Mutex
	wake   *sync.Cond

	closing atomic.Bool
	done    chan struct{}

	// life orders UpdateChunks against Deinit.
	life   sync.RWMutex
	closed bool

	// inflight counts rebuilds claimed but not finished.
	drainMu  sync.Mutex
	drain    *sync.Cond
	inflight int
}

// New creates an empty world and starts its rebuild workers.
func New(opts Options) (*World, error) {
	opts = opts.withDefaults()
	if opts.HeightMin > opts.HeightMax {
		return nil, fmt.Errorf("%w: height range [%d, %d]", ErrInvalidArgument, opts.HeightMin, opts.HeightMax)
	}

	w := &World{
		opts:   opts,
		logger: opts.Logger,
		store:  NewChunkStore(opts.ChunkSize),
		pool:   meshing.NewWorkerPool(opts.Workers, opts.QueueSize),
		done:   make(chan struct{}),
	}
	w.wake = sync.NewCond(&w.wakeMu)
	w.drain = sync.NewCond(&w.drainMu)

	if opts.ManualUpdates {
		close(w.done)
	} else {
		go w.coordinate()
	}
	w.logger.Printf("world ready: chunk size %d, height [%d, %d], %d workers",
		opts.ChunkSize, opts.HeightMin, opts.HeightMax, w.pool.Workers())
	return w, nil
}

func (w *World) Options() Options { return w.opts }

// ChunkCoordOf returns the coordinate of the chunk owning origin.
func (w *World) ChunkCoordOf(origin Coord) ChunkCoord {
	return chunkCoordOf(origin, w.opts.ChunkSize)
}

// Chunk returns the chunk at coord, or nil.
func (w *World) Chunk(coord ChunkCoord) *Chunk {
	return w.store.Get(coord)
}

// Chunks returns every chunk ordered by coordinate.
func (w *World) Chunks() []*Chunk {
	return w.store.All()
}

func (w *World) checkHeight(origin Coord) error {
	if origin.Y < w.opts.HeightMin || origin.Y > w.opts.HeightMax {
		return fmt.Errorf("%w: y=%d outside [%d, %d]", ErrOutOfBounds, origin.Y, w.opts.HeightMin, w.opts.HeightMax)
	}
	return nil
}

// AddBlock places a copy of b. Faces are recomputed by the next rebuild of
// the owning chunk; neighbors across chunk borders are re-dirtied too.
func (w *World) AddBlock(b Block, triggerUpdate bool) error {
	err := w.addBlock(b, triggerUpdate)
	if err != nil {
		w.logger.Printf("add block %v: %v", b.Origin, err)
	}
	return err
}

func (w *World) addBlock(b Block, triggerUpdate bool) error {
	if w.closing.Load() {
		return fmt.Errorf("%w: world is deinited", ErrInvalidArgument)
	}
	if b.Type == nil {
		return fmt.Errorf("%w: block without type", ErrInvalidArgument)
	}
	if err := w.checkHeight(b.Origin); err != nil {
		return err
	}
	c := w.store.GetOrCreate(w.ChunkCoordOf(b.Origin))
	if err := c.insertBlock(b); err != nil {
		return err
	}
	w.markAround(b.Origin, c)
	if triggerUpdate {
		w.UpdateTrigger()
	}
	return nil
}

// DelBlock removes the block at origin and triggers an update.
func (w *World) DelBlock(origin Coord) error {
	err := w.delBlock(origin)
	if err != nil {
		w.logger.Printf("del block %v: %v", origin, err)
	}
	return err
}

func (w *World) delBlock(origin Coord) error {
	if w.closing.Load() {
		return fmt.Errorf("%w: world is deinited", ErrInvalidArgument)
	}
	if err := w.checkHeight(origin); err != nil {
		return err
	}
	c := w.store.Get(w.ChunkCoordOf(origin))
	if c == nil {
		return fmt.Errorf("%w: %v", ErrNotFound, origin)
	}
	if err := c.removeBlock(origin); err != nil {
		return err
	}
	w.markAround(origin, c)
	w.UpdateTrigger()
	return nil
}

// markAround dirties the chunks owning the six face neighbors of origin.
// owner has already been dirtied by the mutation itself.
func (w *World) markAround(origin Coord, owner *Chunk) {
	seen := map[ChunkCoord]struct{}{owner.coord: {}}
	for face := 0; face < meshing.FaceCount; face++ {
		cc := w.ChunkCoordOf(origin.Neighbor(face))
		if _, ok := seen[cc]; ok {
			continue
		}
		seen[cc] = struct{}{}
		if c := w.store.Get(cc); c != nil {
			c.markDirty()
		}
	}
}

// GetBlock returns a copy of the block at origin. With wait unset it fails
// fast instead of waiting for a chunk that is being written.
func (w *World) GetBlock(origin Coord, wait bool) (Block, bool) {
	b, err := w.LookupBlock(origin, wait)
	return b, err == nil
}

// LookupBlock is GetBlock with the reason for a miss: ErrNotFound for an
// empty cell, ErrBusy when a try-mode read found the chunk locked.
func (w *World) LookupBlock(origin Coord, wait bool) (Block, error) {
	c := w.store.Get(w.ChunkCoordOf(origin))
	if c == nil {
		return Block{}, ErrNotFound
	}
	return c.lookup(origin, wait)
}

// UpdateTrigger asks the coordinator for one more scan.
func (w *World) UpdateTrigger() {
	w.pendingLock.Lock()
	w.pending++
	w.pendingLock.Unlock()

	w.wakeMu.Lock()
	w.wake.Signal()
	w.wakeMu.Unlock()
}

func (w *World) hasPending() bool {
	w.pendingLock.Lock()
	defer w.pendingLock.Unlock()
	return w.pending > 0
}

// coordinate sleeps until triggered, then consumes one trigger per scan.
func (w *World) coordinate() {
	defer close(w.done)
	for {
		w.wakeMu.Lock()
		for !w.hasPending() && !w.closing.Load() {
			w.wake.Wait()
		}
		w.wakeMu.Unlock()
		if w.closing.Load() {
			return
		}

		w.pendingLock.Lock()
		if w.pending > 0 {
			w.pending--
		}
		w.pendingLock.Unlock()

		w.UpdateChunks()
	}
}

// UpdateChunks scans every chunk once and queues a rebuild for each chunk
// needing one. Safe to call from several goroutines; a chunk is queued by
// at most one of them. Returns the number of rebuilds queued.
func (w *World) UpdateChunks() int {
	w.life.RLock()
	defer w.life.RUnlock()
	if w.closed {
		return 0
	}

	queued := 0
	for _, c := range w.store.All() {
		if !c.claim() {
			continue
		}
		w.taskStarted()
		job := func() {
			defer w.taskDone()
			w.rebuildChunk(c)
		}
		if err := w.pool.SubmitJobBlocking(context.Background(), job); err != nil {
			c.unclaim()
			w.taskDone()
			w.logger.Printf("queue rebuild %v: %v", c, err)
			continue
		}
		queued++
	}
	return queued
}

func (w *World) taskStarted() {
	w.drainMu.Lock()
	w.inflight++
	w.drainMu.Unlock()
}

func (w *World) taskDone() {
	w.drainMu.Lock()
	w.inflight--
	w.drain.Broadcast()
	w.drainMu.Unlock()
}

// WaitIdle blocks until no rebuild is queued or running.
func (w *World) WaitIdle() {
	w.drainMu.Lock()
	for w.inflight > 0 {
		w.drain.Wait()
	}
	w.drainMu.Unlock()
}

// QueuedRebuilds returns the number of rebuilds waiting for a worker.
func (w *World) QueuedRebuilds() int {
	return w.pool.QueueLength()
}

// Stats counts chunks per state.
func (w *World) Stats() map[ChunkState]int {
	out := make(map[ChunkState]int)
	for _, c := range w.store.All() {
		out[c.State()]++
	}
	return out
}

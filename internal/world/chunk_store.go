package world

import (
	"sort"
	"sync"
)

// ChunkStore manages the storage and retrieval of chunks.
type ChunkStore struct {
	size int

	mu     sync.RWMutex
	chunks map[ChunkCoord]*Chunk
}

// NewChunkStore creates a store for chunks of the given edge length.
func NewChunkStore(size int) *ChunkStore {
	return &ChunkStore{
		size:   size,
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// Get returns the chunk at coord, or nil.
func (cs *ChunkStore) Get(coord ChunkCoord) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[coord]
}

// GetOrCreate returns the chunk at coord, inserting an empty one if absent.
// Concurrent callers for the same coord all receive the same chunk.
func (cs *ChunkStore) GetOrCreate(coord ChunkCoord) *Chunk {
	if c := cs.Get(coord); c != nil {
		return c
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	// Double-check: another goroutine may have created it while we waited
	if existing, ok := cs.chunks[coord]; ok {
		return existing
	}
	c := newChunk(coord, cs.size)
	cs.chunks[coord] = c
	return c
}

// All returns a snapshot of every chunk ordered by coordinate.
func (cs *ChunkStore) All() []*Chunk {
	cs.mu.RLock()
	out := make([]*Chunk, 0, len(cs.chunks))
	for _, c := range cs.chunks {
		out = append(out, c)
	}
	cs.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].coord.less(out[j].coord) })
	return out
}

// Len returns the number of chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

package world

import (
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"mini-voxel/internal/graphics"
	"mini-voxel/internal/meshing"
	"mini-voxel/internal/registry"

	"github.com/go-gl/mathgl/mgl32"
)

var testRegistry = registry.Defaults()

type drawCall struct {
	vertices, indices graphics.BufferHandle
	count             int
}

// fakeBackend records buffer traffic in memory.
type fakeBackend struct {
	mu       sync.Mutex
	next     graphics.BufferHandle
	vertices map[graphics.BufferHandle][]meshing.Vertex
	indices  map[graphics.BufferHandle][]uint32
	draws    []drawCall
	failNext int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		vertices: make(map[graphics.BufferHandle][]meshing.Vertex),
		indices:  make(map[graphics.BufferHandle][]uint32),
	}
}

func (f *fakeBackend) CreateVertexBuffer(data []byte) (graphics.BufferHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext > 0 {
		f.failNext--
		return 0, fmt.Errorf("%w: out of memory", graphics.ErrGPUResource)
	}
	f.next++
	f.vertices[f.next] = graphics.UnpackVertices(data)
	return f.next, nil
}

func (f *fakeBackend) CreateIndexBuffer(indices []uint32) (graphics.BufferHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.indices[f.next] = append([]uint32(nil), indices...)
	return f.next, nil
}

func (f *fakeBackend) DeleteBuffer(h graphics.BufferHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.vertices, h)
	delete(f.indices, h)
}

func (f *fakeBackend) DrawIndexed(vertices, indices graphics.BufferHandle, count int, _ mgl32.Mat4) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draws = append(f.draws, drawCall{vertices: vertices, indices: indices, count: count})
}

func (f *fakeBackend) live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.vertices) + len(f.indices)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestWorld(t testing.TB, chunkSize int, manual bool) *World {
	t.Helper()
	w, err := New(Options{
		ChunkSize:     chunkSize,
		HeightMin:     -16,
		HeightMax:     64,
		Workers:       4,
		ManualUpdates: manual,
		Logger:        quietLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { w.Deinit(nil) })
	return w
}

func mustAdd(t testing.TB, w *World, name string, x, y, z int) {
	t.Helper()
	if err := w.AddBlock(NewBlock(Coord{X: x, Y: y, Z: z}, testRegistry.MustLookup(name)), false); err != nil {
		t.Fatalf("AddBlock %s at (%d,%d,%d): %v", name, x, y, z, err)
	}
}

// settle runs rebuild scans until no chunk needs one.
func settle(w *World) {
	for w.UpdateChunks() > 0 {
		w.WaitIdle()
	}
	w.WaitIdle()
}

// waitSettled polls a world driven by its coordinator until no chunk is
// dirty or rebuilding.
func waitSettled(t testing.TB, w *World) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		w.WaitIdle()
		busy := false
		for _, c := range w.Chunks() {
			switch c.State() {
			case StateNeedUpdate, StateSchedUpdate, StateUpdating:
				busy = true
			}
		}
		if !busy {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("world did not settle: %v", w.Stats())
}

// expectedFaces counts, by brute force, the visible faces of the blocks of
// chunk cc given the set of solid block origins.
func expectedFaces(w *World, solid map[Coord]bool, cc ChunkCoord) int {
	n := 0
	for origin := range solid {
		if w.ChunkCoordOf(origin) != cc {
			continue
		}
		for face := 0; face < meshing.FaceCount; face++ {
			if !solid[origin.Neighbor(face)] {
				n++
			}
		}
	}
	return n
}

// solidSet collects every block of the world by probing its chunks.
func solidSet(w *World) map[Coord]bool {
	out := make(map[Coord]bool)
	for _, c := range w.Chunks() {
		c.content.RLock()
		c.blocks.Each(func(b *Block) bool {
			out[b.Origin] = b.Solid()
			return true
		})
		c.content.RUnlock()
	}
	return out
}

func visibleFaces(c *Chunk) int {
	c.content.RLock()
	defer c.content.RUnlock()
	n := 0
	c.blocks.Each(func(b *Block) bool {
		n += b.VisibleFaces()
		return true
	})
	return n
}

package world

import (
	"errors"
	"sync"
	"testing"

	"mini-voxel/internal/meshing"
	"mini-voxel/internal/registry"

	"github.com/go-gl/mathgl/mgl32"
)

func TestChunkCoordOfNegative(t *testing.T) {
	w := newTestWorld(t, 16, true)
	cases := []struct {
		in   Coord
		want ChunkCoord
	}{
		{Coord{0, 0, 0}, ChunkCoord{0, 0, 0}},
		{Coord{15, 15, 15}, ChunkCoord{0, 0, 0}},
		{Coord{16, 0, -1}, ChunkCoord{1, 0, -1}},
		{Coord{-16, -17, -15}, ChunkCoord{-1, -2, -1}},
	}
	for _, tc := range cases {
		if got := w.ChunkCoordOf(tc.in); got != tc.want {
			t.Errorf("ChunkCoordOf(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestAddBlockErrors(t *testing.T) {
	w := newTestWorld(t, 16, true)
	mustAdd(t, w, registry.Stone, 1, 2, 3)

	err := w.AddBlock(NewBlock(Coord{1, 2, 3}, testRegistry.MustLookup(registry.Dirt)), true)
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate add: got %v, want ErrAlreadyExists", err)
	}
	if err := w.AddBlock(NewBlock(Coord{0, 65, 0}, testRegistry.MustLookup(registry.Dirt)), true); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("above HeightMax: got %v", err)
	}
	if err := w.AddBlock(NewBlock(Coord{0, -17, 0}, testRegistry.MustLookup(registry.Dirt)), true); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("below HeightMin: got %v", err)
	}
	if err := w.AddBlock(Block{Origin: Coord{5, 5, 5}}, true); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("nil type: got %v", err)
	}
	if err := w.DelBlock(Coord{9, 9, 9}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing: got %v", err)
	}
	if err := w.DelBlock(Coord{100, 0, 100}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete in missing chunk: got %v", err)
	}

	b, ok := w.GetBlock(Coord{1, 2, 3}, true)
	if !ok || b.Type.Name() != registry.Stone {
		t.Fatalf("GetBlock: %+v %v", b, ok)
	}
	if w.Chunk(ChunkCoord{}).BlockCount() != 1 {
		t.Fatalf("duplicate stored")
	}
}

func TestIsolatedBlockShowsAllFaces(t *testing.T) {
	w := newTestWorld(t, 16, true)
	mustAdd(t, w, registry.Stone, 0, 0, 0)
	settle(w)

	c := w.Chunk(ChunkCoord{})
	if s := c.State(); s != StateNeedFlush {
		t.Fatalf("state: %v", s)
	}
	m := c.Mesh()
	if len(m.Indices) != 36 {
		t.Fatalf("indices: got %d, want 36", len(m.Indices))
	}
	// corners shared by faces with equal uv collapse into one vertex
	if len(m.Vertices) < 8 || len(m.Vertices) > 24 {
		t.Fatalf("unique vertices: got %d", len(m.Vertices))
	}
	b, _ := w.GetBlock(Coord{}, true)
	for i, f := range b.Faces {
		if !f.Visible || len(f.Vertices) != 6 {
			t.Fatalf("face %d: visible=%v verts=%d", i, f.Visible, len(f.Vertices))
		}
	}
}

func TestAdjacentBlocksHideSharedFaces(t *testing.T) {
	w := newTestWorld(t, 16, true)
	mustAdd(t, w, registry.Stone, 0, 0, 0)
	mustAdd(t, w, registry.Stone, 1, 0, 0)
	settle(w)

	a, _ := w.GetBlock(Coord{0, 0, 0}, true)
	b, _ := w.GetBlock(Coord{1, 0, 0}, true)
	if a.Faces[meshing.FaceEast].Visible || a.Faces[meshing.FaceEast].Vertices != nil {
		t.Fatalf("east face of A should be hidden without vertices")
	}
	if b.Faces[meshing.FaceWest].Visible {
		t.Fatalf("west face of B should be hidden")
	}
	if a.VisibleFaces() != 5 || b.VisibleFaces() != 5 {
		t.Fatalf("visible faces: %d %d", a.VisibleFaces(), b.VisibleFaces())
	}
	if n := len(w.Chunk(ChunkCoord{}).Mesh().Indices); n != 10*6 {
		t.Fatalf("indices: got %d, want 60", n)
	}
}

func TestNonSolidNeighborDoesNotCull(t *testing.T) {
	w := newTestWorld(t, 16, true)
	mustAdd(t, w, registry.Stone, 0, 0, 0)
	mustAdd(t, w, registry.Glass, 0, 1, 0)
	settle(w)

	stone, _ := w.GetBlock(Coord{0, 0, 0}, true)
	glass, _ := w.GetBlock(Coord{0, 1, 0}, true)
	if !stone.Faces[meshing.FaceTop].Visible {
		t.Fatalf("stone top should be visible under glass")
	}
	if glass.Faces[meshing.FaceBottom].Visible {
		t.Fatalf("glass bottom should be hidden by stone")
	}
}

func TestDirtyPropagatesAcrossChunkBorder(t *testing.T) {
	w := newTestWorld(t, 4, true)
	mustAdd(t, w, registry.Stone, 3, 0, 0)
	mustAdd(t, w, registry.Stone, 4, 0, 0)
	mustAdd(t, w, registry.Stone, 8, 0, 0)
	settle(w)
	fb := newFakeBackend()
	w.FlushChunks(fb)

	left := w.Chunk(ChunkCoord{0, 0, 0})
	right := w.Chunk(ChunkCoord{1, 0, 0})
	far := w.Chunk(ChunkCoord{2, 0, 0})
	if visibleFaces(left) != 5 || visibleFaces(right) != 5 {
		t.Fatalf("border faces not culled: %d %d", visibleFaces(left), visibleFaces(right))
	}

	if err := w.DelBlock(Coord{4, 0, 0}); err != nil {
		t.Fatalf("DelBlock: %v", err)
	}
	if s := left.State(); s != StateNeedUpdate {
		t.Fatalf("neighbor chunk not dirtied: %v", s)
	}
	if s := right.State(); s != StateNeedUpdate {
		t.Fatalf("owning chunk not dirtied: %v", s)
	}
	if s := far.State(); s != StateFlushed {
		t.Fatalf("chunk two steps away was touched: %v", s)
	}
	settle(w)
	if visibleFaces(left) != 6 {
		t.Fatalf("left block should expose its east face, got %d faces", visibleFaces(left))
	}
	if !right.Mesh().Empty() {
		t.Fatalf("emptied chunk should have an empty mesh")
	}
}

func TestDirtyPropagationOnlyTouchesExistingChunks(t *testing.T) {
	w := newTestWorld(t, 4, true)
	mustAdd(t, w, registry.Stone, 0, 0, 0)
	if n := len(w.Chunks()); n != 1 {
		t.Fatalf("neighbor chunks should not be created, have %d", n)
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	w := newTestWorld(t, 8, true)
	for x := 0; x < 3; x++ {
		for z := 0; z < 3; z++ {
			mustAdd(t, w, registry.Grass, x, 0, z)
		}
	}
	mustAdd(t, w, registry.Dirt, 1, 1, 1)
	settle(w)
	c := w.Chunk(ChunkCoord{})
	first := c.Mesh()

	c.markDirty()
	settle(w)
	second := c.Mesh()

	if len(first.Indices) != len(second.Indices) || len(first.Vertices) != len(second.Vertices) {
		t.Fatalf("mesh size changed: %d/%d vs %d/%d",
			len(first.Indices), len(first.Vertices), len(second.Indices), len(second.Vertices))
	}
	for i := range first.Indices {
		if first.Indices[i] != second.Indices[i] {
			t.Fatalf("index %d differs", i)
		}
	}
	for i := range first.Vertices {
		if !first.Vertices[i].Equal(second.Vertices[i]) {
			t.Fatalf("vertex %d differs", i)
		}
	}
}

func TestTooManyVerticesRevertsState(t *testing.T) {
	w, err := New(Options{ChunkSize: 8, HeightMin: 0, HeightMax: 8, ManualUpdates: true, MaxMeshVertices: 10, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Deinit(nil)

	mustAdd(t, w, registry.Stone, 0, 0, 0)
	settle(w)
	c := w.Chunk(ChunkCoord{})
	if s := c.State(); s != StateInited {
		t.Fatalf("aborted rebuild should fall back to INITED, got %v", s)
	}
	if !c.Mesh().Empty() {
		t.Fatalf("aborted rebuild must not publish a mesh")
	}
	b, ok := w.GetBlock(Coord{}, true)
	if !ok {
		t.Fatal("block lost after aborted rebuild")
	}
	if n := b.VisibleFaces(); n != 0 {
		t.Fatalf("aborted rebuild left %d faces visible", n)
	}
	for face := range b.Faces {
		if b.Faces[face].Vertices != nil {
			t.Fatalf("aborted rebuild left vertices on face %d", face)
		}
	}
}

func TestFlushAndDraw(t *testing.T) {
	w := newTestWorld(t, 8, true)
	fb := newFakeBackend()
	mustAdd(t, w, registry.Stone, 0, 0, 0)
	mustAdd(t, w, registry.Stone, 8, 0, 0)

	// nothing built yet
	if n := w.DrawChunks(fb, mgl32.Ident4()); n != 0 {
		t.Fatalf("drew %d chunks before any flush", n)
	}
	settle(w)
	if n := w.FlushChunks(fb); n != 2 {
		t.Fatalf("flushed %d chunks, want 2", n)
	}
	if n := w.FlushChunks(fb); n != 0 {
		t.Fatalf("second flush should be a no-op, flushed %d", n)
	}
	for _, c := range w.Chunks() {
		if s := c.State(); s != StateFlushed {
			t.Fatalf("%v: state %v", c, s)
		}
		if c.IndexCount() != 36 {
			t.Fatalf("%v: index count %d", c, c.IndexCount())
		}
	}
	if n := w.DrawChunks(fb, mgl32.Ident4()); n != 2 {
		t.Fatalf("drew %d chunks, want 2", n)
	}

	// rebuilding replaces buffers and frees the old ones
	mustAdd(t, w, registry.Stone, 0, 1, 0)
	settle(w)
	w.FlushChunks(fb)
	if got := fb.live(); got != 4 {
		t.Fatalf("live buffers: got %d, want 4", got)
	}
}

func TestFlushFailureRetries(t *testing.T) {
	w := newTestWorld(t, 8, true)
	fb := newFakeBackend()
	fb.failNext = 1
	mustAdd(t, w, registry.Stone, 0, 0, 0)
	settle(w)

	c := w.Chunk(ChunkCoord{})
	if n := w.FlushChunks(fb); n != 0 {
		t.Fatalf("failed flush counted: %d", n)
	}
	if s := c.State(); s != StateNeedFlush {
		t.Fatalf("state after failed flush: %v", s)
	}
	if n := w.FlushChunks(fb); n != 1 {
		t.Fatalf("retry flushed %d", n)
	}
	if s := c.State(); s != StateFlushed {
		t.Fatalf("state after retry: %v", s)
	}
}

func TestFlushSkipsLockedChunk(t *testing.T) {
	w := newTestWorld(t, 8, true)
	fb := newFakeBackend()
	mustAdd(t, w, registry.Stone, 0, 0, 0)
	settle(w)

	c := w.Chunk(ChunkCoord{})
	c.content.Lock()
	n := w.FlushChunks(fb)
	c.content.Unlock()
	if n != 0 {
		t.Fatalf("flushed a locked chunk")
	}
	if n := w.FlushChunks(fb); n != 1 {
		t.Fatalf("flush after unlock: %d", n)
	}
}

func TestGetBlockTryMode(t *testing.T) {
	w := newTestWorld(t, 8, true)
	mustAdd(t, w, registry.Dirt, 2, 2, 2)
	c := w.Chunk(ChunkCoord{})

	c.content.Lock()
	_, ok := w.GetBlock(Coord{2, 2, 2}, false)
	_, busyErr := w.LookupBlock(Coord{3, 3, 3}, false)
	c.content.Unlock()
	if ok {
		t.Fatalf("try-mode read should fail while the chunk is written")
	}
	if !errors.Is(busyErr, ErrBusy) {
		t.Fatalf("locked chunk should report ErrBusy, got %v", busyErr)
	}

	if _, ok := w.GetBlock(Coord{2, 2, 2}, false); !ok {
		t.Fatalf("try-mode read should succeed when uncontended")
	}
	if _, err := w.LookupBlock(Coord{3, 3, 3}, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty cell: %v", err)
	}
	if _, err := w.LookupBlock(Coord{100, 0, 0}, false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing chunk: %v", err)
	}
}

func TestGetBlockReturnsCopy(t *testing.T) {
	w := newTestWorld(t, 8, true)
	mustAdd(t, w, registry.Stone, 0, 0, 0)
	settle(w)

	b, _ := w.GetBlock(Coord{}, true)
	b.Faces[meshing.FaceTop].Vertices[0].Position = mgl32.Vec3{99, 99, 99}
	again, _ := w.GetBlock(Coord{}, true)
	if again.Faces[meshing.FaceTop].Vertices[0].Position.X() == 99 {
		t.Fatalf("GetBlock leaked internal vertex storage")
	}
}

func TestCoordinatorRebuildsOnTrigger(t *testing.T) {
	w := newTestWorld(t, 8, false)
	if err := w.AddBlock(NewBlock(Coord{1, 1, 1}, testRegistry.MustLookup(registry.Stone)), true); err != nil {
		t.Fatal(err)
	}
	waitSettled(t, w)
	if s := w.Chunk(ChunkCoord{}).State(); s != StateNeedFlush {
		t.Fatalf("state: %v", s)
	}
}

func TestConcurrentMutationAndUpdates(t *testing.T) {
	w := newTestWorld(t, 4, false)
	stone := testRegistry.MustLookup(registry.Stone)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for x := 0; x < 12; x++ {
				for z := 0; z < 12; z++ {
					_ = w.AddBlock(NewBlock(Coord{x, g, z}, stone), x%3 == 0)
				}
			}
		}(g)
	}
	for g := 0; g < 3; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				w.UpdateChunks()
			}
		}()
	}
	wg.Wait()
	w.UpdateTrigger()
	waitSettled(t, w)

	solid := solidSet(w)
	if len(solid) != 4*12*12 {
		t.Fatalf("blocks: %d", len(solid))
	}
	for _, c := range w.Chunks() {
		want := expectedFaces(w, solid, c.Coord())
		if got := visibleFaces(c); got != want {
			t.Errorf("%v: %d visible faces, want %d", c, got, want)
		}
		if got := len(c.Mesh().Indices); got != want*6 {
			t.Errorf("%v: %d indices, want %d", c, got, want*6)
		}
	}
}

func TestDeinitQuiesces(t *testing.T) {
	w := newTestWorld(t, 4, false)
	fb := newFakeBackend()
	if _, err := DefaultPreset().Apply(w, testRegistry); err != nil {
		t.Fatal(err)
	}
	waitSettled(t, w)
	w.FlushChunks(fb)

	// queue more work and tear down while it runs
	mustAdd(t, w, registry.Stone, 0, 7, 0)
	w.UpdateTrigger()
	w.Deinit(fb)

	for _, c := range w.Chunks() {
		if s := c.State(); s != StateDeinited {
			t.Fatalf("%v: state %v after Deinit", c, s)
		}
	}
	if n := fb.live(); n != 0 {
		t.Fatalf("%d GPU buffers leaked", n)
	}
	if err := w.AddBlock(NewBlock(Coord{1, 9, 1}, testRegistry.MustLookup(registry.Stone)), true); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("add after Deinit: %v", err)
	}
	if n := w.UpdateChunks(); n != 0 {
		t.Fatalf("UpdateChunks after Deinit queued %d", n)
	}
	w.Deinit(fb)
}

func TestStats(t *testing.T) {
	w := newTestWorld(t, 4, true)
	mustAdd(t, w, registry.Stone, 0, 0, 0)
	mustAdd(t, w, registry.Stone, 10, 0, 0)
	stats := w.Stats()
	if stats[StateNeedUpdate] != 2 {
		t.Fatalf("stats: %v", stats)
	}
	if n := w.QueuedRebuilds(); n != 0 {
		t.Fatalf("nothing was queued yet, have %d", n)
	}
}

package world

import (
	"mini-voxel/internal/graphics"
	"mini-voxel/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// FlushChunks uploads every freshly built mesh and publishes its buffers.
// Chunks whose lock is contended are left for the next frame. Returns the
// number of chunks flushed.
func (w *World) FlushChunks(backend graphics.Backend) int {
	defer profiling.Track("world.FlushChunks")()

	flushed := 0
	for _, c := range w.store.All() {
		ok, err := c.flush(backend)
		if err != nil {
			w.logger.Printf("flush %v: %v", c, err)
			continue
		}
		if ok {
			flushed++
		}
	}
	return flushed
}

// DrawChunks issues one draw per drawable chunk with published geometry.
// Returns the number of draws.
func (w *World) DrawChunks(backend graphics.Backend, transform mgl32.Mat4) int {
	defer profiling.Track("world.DrawChunks")()

	drawn := 0
	for _, c := range w.store.All() {
		if c.draw(backend, transform) {
			drawn++
		}
	}
	return drawn
}

// Deinit stops the coordinator, waits for in-flight rebuilds, shuts the
// worker pool down and releases every chunk's GPU buffers. Calling it again
// is a no-op.
func (w *World) Deinit(backend graphics.Backend) {
	if w.closing.Swap(true) {
		return
	}
	w.wakeMu.Lock()
	w.wake.Broadcast()
	w.wakeMu.Unlock()
	<-w.done

	w.life.Lock()
	w.closed = true
	w.life.Unlock()

	w.WaitIdle()
	w.pool.Shutdown()

	chunks := w.store.All()
	for _, c := range chunks {
		c.deinit(backend)
	}
	w.logger.Printf("world deinited: %d chunks released", len(chunks))
}

func (c *Chunk) flush(backend graphics.Backend) (bool, error) {
	if !c.content.TryLock() {
		return false, nil
	}
	defer c.content.Unlock()
	if c.state != StateNeedFlush {
		return false, nil
	}
	c.state = StateFlushing

	var next RenderState
	if !c.mesh.Empty() {
		vb, err := backend.CreateVertexBuffer(graphics.PackVertices(c.mesh.Vertices))
		if err != nil {
			c.state = StateNeedFlush
			return false, err
		}
		ib, err := backend.CreateIndexBuffer(c.mesh.Indices)
		if err != nil {
			backend.DeleteBuffer(vb)
			c.state = StateNeedFlush
			return false, err
		}
		next = RenderState{Vertices: vb, Indices: ib, IndexCount: len(c.mesh.Indices)}
	}

	c.gpu.Lock()
	old := c.render
	c.render = next
	c.gpu.Unlock()
	releaseRender(backend, old)

	c.state = StateFlushed
	c.settled = StateFlushed
	return true, nil
}

func (c *Chunk) draw(backend graphics.Backend, transform mgl32.Mat4) bool {
	if !c.content.TryRLock() {
		return false
	}
	drawable := c.state.Drawable()
	c.content.RUnlock()
	if !drawable {
		return false
	}

	if !c.gpu.TryRLock() {
		return false
	}
	defer c.gpu.RUnlock()
	if c.render.empty() {
		return false
	}
	backend.DrawIndexed(c.render.Vertices, c.render.Indices, c.render.IndexCount, transform)
	return true
}

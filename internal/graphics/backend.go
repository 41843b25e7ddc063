package graphics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrGPUResource reports a failure to create a buffer, program or texture.
var ErrGPUResource = errors.New("gpu resource error")

// BufferHandle identifies a GPU buffer created by a Backend. Zero is "no buffer".
type BufferHandle uint32

// Backend is the graphics layer the world draws through. Every method must be
// called from the thread owning the graphics context.
type Backend interface {
	// CreateVertexBuffer uploads interleaved vertex data (see PackVertices).
	CreateVertexBuffer(data []byte) (BufferHandle, error)
	// CreateIndexBuffer uploads triangle indices.
	CreateIndexBuffer(indices []uint32) (BufferHandle, error)
	// DeleteBuffer releases a handle. Deleting zero is a no-op.
	DeleteBuffer(h BufferHandle)
	// DrawIndexed draws count indices of the index buffer against the vertex
	// buffer with the given model-view-projection transform.
	DrawIndexed(vertices, indices BufferHandle, count int, transform mgl32.Mat4)
}

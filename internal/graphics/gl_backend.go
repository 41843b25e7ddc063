package graphics

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// GLBackend implements Backend on an OpenGL 4.1 core context.
// Vertex buffers are wrapped in their own VAO so drawing needs one bind.
type GLBackend struct {
	shader  *Shader
	texture uint32
	vaos    map[BufferHandle]uint32
}

// NewGLBackend creates a backend drawing with shader and the given atlas texture.
func NewGLBackend(shader *Shader, texture uint32) *GLBackend {
	return &GLBackend{
		shader:  shader,
		texture: texture,
		vaos:    make(map[BufferHandle]uint32),
	}
}

func (b *GLBackend) CreateVertexBuffer(data []byte) (BufferHandle, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty vertex buffer", ErrGPUResource)
	}
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	if vao == 0 || vbo == 0 {
		return 0, fmt.Errorf("%w: could not allocate vertex buffer", ErrGPUResource)
	}
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data), gl.Ptr(data), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, VertexSizeBytes, gl.PtrOffset(PositionOffset))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, VertexSizeBytes, gl.PtrOffset(NormalOffset))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, VertexSizeBytes, gl.PtrOffset(UVOffset))

	gl.BindVertexArray(0)
	if err := glError("CreateVertexBuffer"); err != nil {
		gl.DeleteBuffers(1, &vbo)
		gl.DeleteVertexArrays(1, &vao)
		return 0, err
	}

	h := BufferHandle(vbo)
	b.vaos[h] = vao
	return h, nil
}

func (b *GLBackend) CreateIndexBuffer(indices []uint32) (BufferHandle, error) {
	if len(indices) == 0 {
		return 0, fmt.Errorf("%w: empty index buffer", ErrGPUResource)
	}
	var ebo uint32
	gl.GenBuffers(1, &ebo)
	if ebo == 0 {
		return 0, fmt.Errorf("%w: could not allocate index buffer", ErrGPUResource)
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	if err := glError("CreateIndexBuffer"); err != nil {
		gl.DeleteBuffers(1, &ebo)
		return 0, err
	}
	return BufferHandle(ebo), nil
}

func (b *GLBackend) DeleteBuffer(h BufferHandle) {
	if h == 0 {
		return
	}
	if vao, ok := b.vaos[h]; ok {
		gl.DeleteVertexArrays(1, &vao)
		delete(b.vaos, h)
	}
	id := uint32(h)
	gl.DeleteBuffers(1, &id)
}

func (b *GLBackend) DrawIndexed(vertices, indices BufferHandle, count int, transform mgl32.Mat4) {
	vao, ok := b.vaos[vertices]
	if !ok || indices == 0 || count == 0 {
		return
	}
	b.shader.Use()
	b.shader.SetMatrix4("transform", &transform[0])
	b.shader.SetInt("atlas", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, b.texture)

	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(indices))
	gl.DrawElements(gl.TRIANGLES, int32(count), gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

// Release deletes every buffer still owned by the backend.
func (b *GLBackend) Release() {
	for h := range b.vaos {
		b.DeleteBuffer(h)
	}
}

func glError(label string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%w: %s: gl error 0x%x", ErrGPUResource, label, code)
	}
	return nil
}

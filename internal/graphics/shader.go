package graphics

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

var (
	//go:embed shaders/block.vert
	blockVertexSource string
	//go:embed shaders/block.frag
	blockFragmentSource string
)

// ShaderSources is the GLSL text of one vertex+fragment program.
type ShaderSources struct {
	Vertex   string
	Fragment string
}

// BlockShaderSources returns the built-in chunk shader.
func BlockShaderSources() ShaderSources {
	return ShaderSources{Vertex: blockVertexSource, Fragment: blockFragmentSource}
}

// ReadShaderSources reads <name>.vert and <name>.frag from dir.
func ReadShaderSources(dir, name string) (ShaderSources, error) {
	var src ShaderSources
	for _, f := range []struct {
		ext string
		dst *string
	}{{".vert", &src.Vertex}, {".frag", &src.Fragment}} {
		raw, err := os.ReadFile(filepath.Join(dir, name+f.ext))
		if err != nil {
			return ShaderSources{}, fmt.Errorf("read shader: %w", err)
		}
		*f.dst = string(raw)
	}
	return src, nil
}

// Shader is a linked GL program. Uniform locations are looked up once and
// cached; use it from the GL thread only.
type Shader struct {
	ID       uint32
	uniforms map[string]int32
}

// NewShader compiles both stages and links them. Any failure is reported as
// ErrGPUResource carrying the driver's info log.
func NewShader(src ShaderSources) (*Shader, error) {
	stages := [...]struct {
		kind   uint32
		name   string
		source string
	}{
		{gl.VERTEX_SHADER, "vertex", src.Vertex},
		{gl.FRAGMENT_SHADER, "fragment", src.Fragment},
	}

	program := gl.CreateProgram()
	var ids []uint32
	defer func() {
		for _, id := range ids {
			gl.DeleteShader(id)
		}
	}()

	for _, st := range stages {
		id := gl.CreateShader(st.kind)
		ids = append(ids, id)
		csrc, free := gl.Strs(st.source + "\x00")
		gl.ShaderSource(id, 1, csrc, nil)
		free()
		gl.CompileShader(id)
		if msg, ok := statusLog(id, gl.COMPILE_STATUS, gl.GetShaderiv, gl.GetShaderInfoLog); !ok {
			gl.DeleteProgram(program)
			return nil, fmt.Errorf("%w: %s shader: %s", ErrGPUResource, st.name, msg)
		}
		gl.AttachShader(program, id)
	}

	gl.LinkProgram(program)
	if msg, ok := statusLog(program, gl.LINK_STATUS, gl.GetProgramiv, gl.GetProgramInfoLog); !ok {
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("%w: link: %s", ErrGPUResource, msg)
	}
	return &Shader{ID: program, uniforms: make(map[string]int32)}, nil
}

// statusLog queries a compile or link status and, on failure, the info log.
func statusLog(id, pname uint32,
	getiv func(uint32, uint32, *int32),
	getLog func(uint32, int32, *int32, *uint8),
) (string, bool) {
	var status int32
	getiv(id, pname, &status)
	if status != gl.FALSE {
		return "", true
	}
	var n int32
	getiv(id, gl.INFO_LOG_LENGTH, &n)
	buf := make([]byte, n+1)
	getLog(id, n, nil, &buf[0])
	return cleanInfoLog(buf), false
}

func cleanInfoLog(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return strings.TrimSpace(string(buf))
}

func (s *Shader) Use() {
	gl.UseProgram(s.ID)
}

// Delete releases the program.
func (s *Shader) Delete() {
	if s.ID != 0 {
		gl.DeleteProgram(s.ID)
		s.ID = 0
	}
}

func (s *Shader) location(name string) int32 {
	loc, ok := s.uniforms[name]
	if !ok {
		loc = gl.GetUniformLocation(s.ID, gl.Str(name+"\x00"))
		s.uniforms[name] = loc
	}
	return loc
}

func (s *Shader) SetInt(name string, value int32) {
	gl.Uniform1i(s.location(name), value)
}

func (s *Shader) SetMatrix4(name string, value *float32) {
	gl.UniformMatrix4fv(s.location(name), 1, false, value)
}

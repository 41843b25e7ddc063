package registry

import (
	"errors"
	"fmt"
	"sort"

	"mini-voxel/pkg/blockmodel"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrUnknownBlockType = errors.New("unknown block type")

// FaceTexture is the atlas mapping of one face of a block type.
type FaceTexture struct {
	UV       [4]float32 // u0, v0, u1, v1
	Rotation int        // clockwise degrees: 0, 90, 180 or 270
}

// BlockDefinition carries the properties used to build a BlockType.
type BlockDefinition struct {
	Name         string
	Size         mgl32.Vec3
	VisualSize   mgl32.Vec3
	Faces        [6]FaceTexture // north, south, east, west, top, bottom
	Visible      bool
	Solid        bool
	Destructible bool
	Shader       string
}

// BlockType is an immutable block template shared by every block of that type.
type BlockType struct {
	def BlockDefinition
}

// NewBlockType validates def and freezes it into a BlockType.
func NewBlockType(def BlockDefinition) (*BlockType, error) {
	if def.Name == "" {
		return nil, errors.New("block type without name")
	}
	for i, f := range def.Faces {
		switch f.Rotation {
		case 0, 90, 180, 270:
		default:
			return nil, fmt.Errorf("block type %s: face %d rotation %d not a multiple of 90", def.Name, i, f.Rotation)
		}
	}
	if def.Size == (mgl32.Vec3{}) {
		def.Size = mgl32.Vec3{1, 1, 1}
	}
	if def.VisualSize == (mgl32.Vec3{}) {
		def.VisualSize = def.Size
	}
	return &BlockType{def: def}, nil
}

func (t *BlockType) Name() string           { return t.def.Name }
func (t *BlockType) Size() mgl32.Vec3       { return t.def.Size }
func (t *BlockType) VisualSize() mgl32.Vec3 { return t.def.VisualSize }
func (t *BlockType) Visible() bool          { return t.def.Visible }
func (t *BlockType) Solid() bool            { return t.def.Solid }
func (t *BlockType) Destructible() bool     { return t.def.Destructible }
func (t *BlockType) Shader() string         { return t.def.Shader }

// Face returns the texture mapping of face i (0..5).
func (t *BlockType) Face(i int) FaceTexture {
	return t.def.Faces[i]
}

func (t *BlockType) String() string { return t.def.Name }

// Registry maps names to block types. It is read-only once built.
type Registry struct {
	types map[string]*BlockType
	names []string
}

// NewRegistry builds a registry from types. Duplicate names are rejected.
func NewRegistry(types ...*BlockType) (*Registry, error) {
	r := &Registry{types: make(map[string]*BlockType, len(types))}
	for _, t := range types {
		if _, dup := r.types[t.Name()]; dup {
			return nil, fmt.Errorf("duplicate block type %s", t.Name())
		}
		r.types[t.Name()] = t
		r.names = append(r.names, t.Name())
	}
	sort.Strings(r.names)
	return r, nil
}

// Lookup returns the block type registered under name.
func (r *Registry) Lookup(name string) (*BlockType, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlockType, name)
	}
	return t, nil
}

// MustLookup is Lookup for names known to exist; it panics otherwise.
func (r *Registry) MustLookup(name string) *BlockType {
	t, err := r.Lookup(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Registry) Len() int { return len(r.types) }

// LoadRegistry reads every definition in dir through the block model loader.
func LoadRegistry(dir string) (*Registry, error) {
	loader := blockmodel.NewLoader(dir)
	names, err := loader.Names()
	if err != nil {
		return nil, err
	}
	types := make([]*BlockType, 0, len(names))
	for _, name := range names {
		def, err := loader.Load(name)
		if err != nil {
			return nil, err
		}
		if def.Abstract {
			continue
		}
		bt, err := fromModel(name, def)
		if err != nil {
			return nil, err
		}
		types = append(types, bt)
	}
	return NewRegistry(types...)
}

func fromModel(name string, m *blockmodel.Definition) (*BlockType, error) {
	def := BlockDefinition{
		Name:         name,
		Visible:      blockmodel.BoolOr(m.Visible, true),
		Solid:        blockmodel.BoolOr(m.Solid, true),
		Destructible: blockmodel.BoolOr(m.Destructible, true),
		Shader:       m.Shader,
	}
	if m.Size != nil {
		def.Size = mgl32.Vec3(*m.Size)
	}
	if m.VisualSize != nil {
		def.VisualSize = mgl32.Vec3(*m.VisualSize)
	}
	for i, faceName := range blockmodel.FaceNames {
		def.Faces[i] = FaceTexture{UV: [4]float32{0, 0, 1, 1}}
		if f, ok := m.Faces[faceName]; ok {
			if f.UV != nil {
				def.Faces[i].UV = *f.UV
			}
			def.Faces[i].Rotation = f.Rotation
		}
	}
	return NewBlockType(def)
}

package blockmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const definitionSchemaSource = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": false,
	"definitions": {
		"vec3": { "type": "array", "items": { "type": "number", "minimum": 0 }, "minItems": 3, "maxItems": 3 },
		"rect": { "type": "array", "items": { "type": "number" }, "minItems": 4, "maxItems": 4 },
		"ref":  { "type": "string", "pattern": "^#[A-Za-z0-9_]+$" }
	},
	"properties": {
		"parent":       { "type": "string", "minLength": 1 },
		"abstract":     { "type": "boolean" },
		"solid":        { "type": "boolean" },
		"visible":      { "type": "boolean" },
		"destructible": { "type": "boolean" },
		"shader":       { "type": "string" },
		"size":         { "$ref": "#/definitions/vec3" },
		"visual_size":  { "$ref": "#/definitions/vec3" },
		"textures": {
			"type": "object",
			"additionalProperties": { "oneOf": [ { "$ref": "#/definitions/ref" }, { "$ref": "#/definitions/rect" } ] }
		},
		"faces": {
			"type": "object",
			"propertyNames": { "enum": ["north", "south", "east", "west", "up", "down"] },
			"additionalProperties": {
				"type": "object",
				"additionalProperties": false,
				"properties": {
					"uv":       { "$ref": "#/definitions/rect" },
					"texture":  { "$ref": "#/definitions/ref" },
					"rotation": { "enum": [0, 90, 180, 270] }
				}
			}
		}
	}
}`

var definitionSchema = jsonschema.MustCompileString("blockmodel.schema.json", definitionSchemaSource)

// Loader reads block type definitions from a directory of JSON files,
// resolving parents and texture references. Results are cached by name.
type Loader struct {
	dir   string
	cache map[string]*Definition
}

func NewLoader(dir string) *Loader {
	return &Loader{
		dir:   dir,
		cache: make(map[string]*Definition),
	}
}

// Names lists the definitions available in the loader directory, sorted.
func (l *Loader) Names() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("could not list block types: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) Load(name string) (*Definition, error) {
	return l.load(name, 0)
}

func (l *Loader) load(name string, depth int) (*Definition, error) {
	if depth > 8 {
		return nil, fmt.Errorf("parent chain too deep at '%s'", name)
	}
	if def, ok := l.cache[name]; ok {
		return def, nil
	}

	path := filepath.Join(l.dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read definition file: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("could not parse definition json '%s': %w", name, err)
	}
	if err := definitionSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("invalid definition '%s': %w", name, err)
	}

	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("could not unmarshal definition json '%s': %w", name, err)
	}

	if def.Parent != "" {
		parent, err := l.load(def.Parent, depth+1)
		if err != nil {
			return nil, fmt.Errorf("could not load parent '%s': %w", def.Parent, err)
		}
		def = *inherit(&def, parent)
	}

	// abstract definitions are templates whose references resolve in children
	if !def.Abstract {
		if err := resolveFaces(&def); err != nil {
			return nil, fmt.Errorf("definition '%s': %w", name, err)
		}
	}
	l.cache[name] = &def
	return &def, nil
}

// inherit fills the unset fields of child from a deep copy of parent.
// Parent faces keep their "#name" references so that the child's
// textures are the ones resolved.
func inherit(child, parent *Definition) *Definition {
	base := parent.clone()
	out := *child
	if out.Solid == nil {
		out.Solid = base.Solid
	}
	if out.Visible == nil {
		out.Visible = base.Visible
	}
	if out.Destructible == nil {
		out.Destructible = base.Destructible
	}
	if out.Shader == "" {
		out.Shader = base.Shader
	}
	if out.Size == nil {
		out.Size = base.Size
	}
	if out.VisualSize == nil {
		out.VisualSize = base.VisualSize
	}
	if out.Textures == nil {
		out.Textures = make(map[string]TextureRef)
	}
	for k, v := range base.Textures {
		if _, ok := out.Textures[k]; !ok {
			out.Textures[k] = v
		}
	}
	if len(out.Faces) == 0 {
		out.Faces = base.Faces
		for k, f := range out.Faces {
			if f.Texture != "" {
				// re-resolve against the child's textures
				f.UV = nil
				out.Faces[k] = f
			}
		}
	}
	return &out
}

func resolveFaces(def *Definition) error {
	for name, face := range def.Faces {
		if face.UV != nil || face.Texture == "" {
			continue
		}
		uv, err := ResolveTexture(face.Texture, def)
		if err != nil {
			return fmt.Errorf("face %s: %w", name, err)
		}
		face.UV = &uv
		def.Faces[name] = face
	}
	return nil
}

// ResolveTexture follows "#name" references through def.Textures until an
// atlas rectangle is reached.
func ResolveTexture(ref string, def *Definition) ([4]float32, error) {
	for i := 0; i < 10; i++ {
		key := strings.TrimPrefix(ref, "#")
		t, ok := def.Textures[key]
		if !ok {
			return [4]float32{}, fmt.Errorf("unknown texture '%s'", ref)
		}
		if t.UV != nil {
			return *t.UV, nil
		}
		ref = t.Ref
	}
	return [4]float32{}, fmt.Errorf("texture reference cycle at '%s'", ref)
}

package blockmodel

import (
	"encoding/json"
	"fmt"
)

// Face names used as keys of Definition.Faces.
const (
	FaceNorth = "north"
	FaceSouth = "south"
	FaceEast  = "east"
	FaceWest  = "west"
	FaceUp    = "up"
	FaceDown  = "down"
)

// FaceNames lists every face key in block face order.
var FaceNames = [6]string{FaceNorth, FaceSouth, FaceEast, FaceWest, FaceUp, FaceDown}

// Definition is the on-disk description of a block type.
// Pointer fields distinguish "unset, inherit from parent" from zero values.
type Definition struct {
	Parent       string                `json:"parent"`
	Abstract     bool                  `json:"abstract"`
	Solid        *bool                 `json:"solid"`
	Visible      *bool                 `json:"visible"`
	Destructible *bool                 `json:"destructible"`
	Shader       string                `json:"shader"`
	Size         *[3]float32           `json:"size"`
	VisualSize   *[3]float32           `json:"visual_size"`
	Textures     map[string]TextureRef `json:"textures"`
	Faces        map[string]Face       `json:"faces"`
}

// TextureRef is either an atlas rectangle [u0, v0, u1, v1] or a "#name"
// reference to another entry of the textures map.
type TextureRef struct {
	UV  *[4]float32
	Ref string
}

func (t *TextureRef) UnmarshalJSON(data []byte) error {
	// First, try a reference string
	var ref string
	if err := json.Unmarshal(data, &ref); err == nil {
		t.Ref = ref
		t.UV = nil
		return nil
	}

	var uv [4]float32
	if err := json.Unmarshal(data, &uv); err != nil {
		return fmt.Errorf("texture must be a \"#name\" reference or [u0,v0,u1,v1]: %w", err)
	}
	t.UV = &uv
	t.Ref = ""
	return nil
}

// Face describes the texture mapping of one block face.
type Face struct {
	// UV is the atlas rectangle [u0, v0, u1, v1]. Filled from Texture on load.
	UV       *[4]float32 `json:"uv"`
	Texture  string      `json:"texture"`
	Rotation int         `json:"rotation"`
}

func (d *Definition) clone() *Definition {
	out := *d
	out.Textures = make(map[string]TextureRef, len(d.Textures))
	for k, v := range d.Textures {
		out.Textures[k] = v
	}
	out.Faces = make(map[string]Face, len(d.Faces))
	for k, v := range d.Faces {
		if v.UV != nil {
			uv := *v.UV
			v.UV = &uv
		}
		out.Faces[k] = v
	}
	return &out
}

// BoolOr returns *b, or def when b is nil.
func BoolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

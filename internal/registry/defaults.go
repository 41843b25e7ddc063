package registry

// Built-in block type names.
const (
	Bedrock = "bedrock"
	Stone   = "stone"
	Dirt    = "dirt"
	Grass   = "grass"
	Glass   = "glass"
)

// atlasTiles is the number of tiles per row/column of the default atlas.
const atlasTiles = 4

func tile(col, row int) [4]float32 {
	s := float32(1) / atlasTiles
	return [4]float32{float32(col) * s, float32(row) * s, float32(col+1) * s, float32(row+1) * s}
}

func uniform(uv [4]float32) [6]FaceTexture {
	var f [6]FaceTexture
	for i := range f {
		f[i] = FaceTexture{UV: uv}
	}
	return f
}

// Defaults returns the built-in registry used when no definition
// directory is configured.
func Defaults() *Registry {
	grassFaces := uniform(tile(1, 0))
	grassFaces[4] = FaceTexture{UV: tile(0, 0)}
	grassFaces[5] = FaceTexture{UV: tile(2, 0)}
	// side tiles are drawn upside down in the atlas
	for i := 0; i < 4; i++ {
		grassFaces[i].Rotation = 180
	}

	defs := []BlockDefinition{
		{Name: Bedrock, Faces: uniform(tile(3, 0)), Visible: true, Solid: true, Destructible: false, Shader: "block"},
		{Name: Stone, Faces: uniform(tile(0, 1)), Visible: true, Solid: true, Destructible: true, Shader: "block"},
		{Name: Dirt, Faces: uniform(tile(2, 0)), Visible: true, Solid: true, Destructible: true, Shader: "block"},
		{Name: Grass, Faces: grassFaces, Visible: true, Solid: true, Destructible: true, Shader: "block"},
		{Name: Glass, Faces: uniform(tile(1, 1)), Visible: true, Solid: false, Destructible: true, Shader: "block"},
	}

	types := make([]*BlockType, 0, len(defs))
	for _, d := range defs {
		bt, err := NewBlockType(d)
		if err != nil {
			panic(err)
		}
		types = append(types, bt)
	}
	r, err := NewRegistry(types...)
	if err != nil {
		panic(err)
	}
	return r
}

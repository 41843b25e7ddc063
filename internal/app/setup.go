package app

import (
	"fmt"
	"log"
	"os"

	"mini-voxel/internal/config"
	"mini-voxel/internal/graphics"
	"mini-voxel/internal/registry"
	"mini-voxel/internal/world"
)

func newLogger(prefix string) *log.Logger {
	return log.New(os.Stderr, "["+prefix+"] ", log.LstdFlags|log.Lmicroseconds)
}

// PresetFromConfig converts the preset section of the config.
func PresetFromConfig(p config.Preset) world.FlatPreset {
	out := world.FlatPreset{
		SizeX:   p.SizeX,
		SizeZ:   p.SizeZ,
		OriginX: p.OriginX,
		OriginZ: p.OriginZ,
		Layers:  make([]world.Layer, 0, len(p.Layers)),
	}
	for _, l := range p.Layers {
		h := world.At(l.Height.Y)
		if l.Height.Auto {
			h = world.Auto
		}
		out.Layers = append(out.Layers, world.Layer{Height: h, Thickness: l.Thickness, Block: l.Block})
	}
	return out
}

// WorldOptions converts the world section of the config.
func WorldOptions(w config.World, logger *log.Logger) world.Options {
	opts := world.DefaultOptions()
	opts.ChunkSize = w.ChunkSize
	opts.HeightMin = w.HeightMin
	opts.HeightMax = w.HeightMax
	opts.Workers = w.Workers
	opts.Logger = logger
	return opts
}

// LoadRegistry returns the block types of dir, or the built-in set when dir
// is empty.
func LoadRegistry(dir string) (*registry.Registry, error) {
	if dir == "" {
		return registry.Defaults(), nil
	}
	reg, err := registry.LoadRegistry(dir)
	if err != nil {
		return nil, fmt.Errorf("load block types: %w", err)
	}
	return reg, nil
}

func loadShader(dir string) (*graphics.Shader, error) {
	src := graphics.BlockShaderSources()
	if dir != "" {
		var err error
		if src, err = graphics.ReadShaderSources(dir, "block"); err != nil {
			return nil, err
		}
	}
	return graphics.NewShader(src)
}

func loadAtlas(path string) (uint32, error) {
	if path == "" {
		atlas := graphics.DefaultAtlas(16)
		return graphics.UploadTexture(atlas.Rect.Dx(), atlas.Rect.Dy(), atlas.Pix)
	}
	tex, _, _, err := graphics.LoadTexture(path)
	return tex, err
}

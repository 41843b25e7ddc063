package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate and Load for unusable settings.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Window Window `yaml:"window"`
	World  World  `yaml:"world"`
	Assets Assets `yaml:"assets"`
	Render Render `yaml:"render"`
	Preset Preset `yaml:"preset"`
}

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

type World struct {
	ChunkSize int `yaml:"chunk_size"`
	HeightMin int `yaml:"height_min"`
	HeightMax int `yaml:"height_max"`
	Workers   int `yaml:"workers"`
}

// Assets points at optional files; empty paths select the built-in assets.
type Assets struct {
	BlockTypes string `yaml:"block_types"`
	Shaders    string `yaml:"shaders"`
	Atlas      string `yaml:"atlas"`
}

type Render struct {
	FPSLimit    int `yaml:"fps_limit"`
	SlowFrameMs int `yaml:"slow_frame_ms"`
}

type Preset struct {
	SizeX   int     `yaml:"size_x"`
	SizeZ   int     `yaml:"size_z"`
	OriginX int     `yaml:"origin_x"`
	OriginZ int     `yaml:"origin_z"`
	Layers  []Layer `yaml:"layers"`
}

type Layer struct {
	Height    Height `yaml:"height"`
	Thickness int    `yaml:"thickness"`
	Block     string `yaml:"block"`
}

// Height is a layer base: an integer Y, or "auto" to stack on the layer below.
type Height struct {
	Auto bool
	Y    int
}

func (h *Height) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: height must be an integer or auto", ErrInvalidConfig, node.Line)
	}
	if strings.EqualFold(node.Value, "auto") {
		*h = Height{Auto: true}
		return nil
	}
	y, err := strconv.Atoi(node.Value)
	if err != nil {
		return fmt.Errorf("%w: line %d: height %q must be an integer or auto", ErrInvalidConfig, node.Line, node.Value)
	}
	*h = Height{Y: y}
	return nil
}

func (h Height) MarshalYAML() (any, error) {
	if h.Auto {
		return "auto", nil
	}
	return h.Y, nil
}

// Default returns the settings used for every key a config file omits.
func Default() Config {
	return Config{
		Window: Window{Width: 1280, Height: 720, Title: "mini-voxel", VSync: true},
		World:  World{ChunkSize: 16, HeightMin: -64, HeightMax: 255},
		Render: Render{FPSLimit: 120, SlowFrameMs: 50},
		Preset: Preset{
			SizeX: 16,
			SizeZ: 16,
			Layers: []Layer{
				{Height: Height{Y: 0}, Thickness: 1, Block: "bedrock"},
				{Height: Height{Auto: true}, Thickness: 5, Block: "dirt"},
				{Height: Height{Auto: true}, Thickness: 1, Block: "grass"},
			},
		},
	}
}

// Load reads a YAML file over Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := Parse(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays YAML data onto cfg and validates it.
func Parse(raw []byte, cfg *Config) error {
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.World.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk_size %d", ErrInvalidConfig, c.World.ChunkSize)
	case c.World.HeightMin > c.World.HeightMax:
		return fmt.Errorf("%w: height_min %d above height_max %d", ErrInvalidConfig, c.World.HeightMin, c.World.HeightMax)
	case c.Render.FPSLimit < 0:
		return fmt.Errorf("%w: fps_limit %d", ErrInvalidConfig, c.Render.FPSLimit)
	case c.Preset.SizeX < 0 || c.Preset.SizeZ < 0:
		return fmt.Errorf("%w: preset size %dx%d", ErrInvalidConfig, c.Preset.SizeX, c.Preset.SizeZ)
	}
	for i, l := range c.Preset.Layers {
		if l.Thickness <= 0 {
			return fmt.Errorf("%w: layer %d thickness %d", ErrInvalidConfig, i, l.Thickness)
		}
		if l.Block == "" {
			return fmt.Errorf("%w: layer %d has no block", ErrInvalidConfig, i)
		}
	}
	return nil
}

package app

import (
	"io"
	"log"
	"testing"

	"mini-voxel/internal/config"
	"mini-voxel/internal/registry"
	"mini-voxel/internal/world"
)

func TestPresetFromConfig(t *testing.T) {
	p := PresetFromConfig(config.Default().Preset)
	want := world.DefaultPreset()
	if p.SizeX != want.SizeX || p.SizeZ != want.SizeZ || len(p.Layers) != len(want.Layers) {
		t.Fatalf("preset: %+v", p)
	}
	for i := range want.Layers {
		if p.Layers[i] != want.Layers[i] {
			t.Fatalf("layer %d: got %+v, want %+v", i, p.Layers[i], want.Layers[i])
		}
	}
}

// The default config builds the same terrain as the world's default preset.
func TestDefaultConfigBuildsWorld(t *testing.T) {
	cfg := config.Default()
	cfg.World.ChunkSize = 8
	opts := WorldOptions(cfg.World, log.New(io.Discard, "", 0))
	opts.ManualUpdates = true

	w, err := world.New(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Deinit(nil)

	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatal(err)
	}
	n, err := PresetFromConfig(cfg.Preset).Apply(w, reg)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if n != 16*16*7 {
		t.Fatalf("placed %d", n)
	}
	top, ok := w.TopBlock(0, 0)
	if !ok || top.Type.Name() != registry.Grass || top.Origin.Y != 6 {
		t.Fatalf("top block: %v %v", top.Origin, ok)
	}
}

func TestLoadRegistryMissingDir(t *testing.T) {
	if _, err := LoadRegistry(t.TempDir() + "/missing"); err == nil {
		t.Fatalf("expected error")
	}
}

// The shipped definition files describe the same block types as the
// built-in registry.
func TestShippedBlockTypesMatchDefaults(t *testing.T) {
	loaded, err := LoadRegistry("../../assets/blocktypes")
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	builtin := registry.Defaults()
	if got, want := loaded.Names(), builtin.Names(); len(got) != len(want) {
		t.Fatalf("names: got %v, want %v", got, want)
	}
	for _, name := range builtin.Names() {
		a, b := loaded.MustLookup(name), builtin.MustLookup(name)
		if a.Solid() != b.Solid() || a.Destructible() != b.Destructible() || a.Visible() != b.Visible() {
			t.Errorf("%s: flags differ", name)
		}
		for face := 0; face < 6; face++ {
			if a.Face(face) != b.Face(face) {
				t.Errorf("%s face %d: got %+v, want %+v", name, face, a.Face(face), b.Face(face))
			}
		}
	}
}

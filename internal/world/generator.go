package world

import (
	"fmt"

	"mini-voxel/internal/registry"
)

// LayerHeight is the base Y of a preset layer, or Auto to stack the layer
// directly on top of the previous one.
type LayerHeight struct {
	Auto bool
	Y    int
}

// At returns a fixed layer height.
func At(y int) LayerHeight { return LayerHeight{Y: y} }

// Auto stacks a layer on the previous one.
var Auto = LayerHeight{Auto: true}

// Layer is a horizontal slab of one block type.
type Layer struct {
	Height    LayerHeight
	Thickness int
	Block     string
}

// FlatPreset fills a SizeX by SizeZ column area starting at (OriginX, OriginZ)
// with stacked layers.
type FlatPreset struct {
	SizeX, SizeZ     int
	OriginX, OriginZ int
	Layers           []Layer
}

// DefaultPreset is a 16x16 area of bedrock, five layers of dirt and a grass
// surface at y=6.
func DefaultPreset() FlatPreset {
	return FlatPreset{
		SizeX: 16,
		SizeZ: 16,
		Layers: []Layer{
			{Height: At(0), Thickness: 1, Block: registry.Bedrock},
			{Height: Auto, Thickness: 5, Block: registry.Dirt},
			{Height: Auto, Thickness: 1, Block: registry.Grass},
		},
	}
}

// Top returns the Y of the highest block the preset places.
func (p FlatPreset) Top() int {
	top, next := 0, 0
	for _, l := range p.Layers {
		base := next
		if !l.Height.Auto {
			base = l.Height.Y
		}
		next = base + l.Thickness
		top = max(top, next-1)
	}
	return top
}

// Apply places every layer into w without triggering updates, then triggers
// once. Returns the number of blocks placed.
func (p FlatPreset) Apply(w *World, reg *registry.Registry) (int, error) {
	if p.SizeX <= 0 || p.SizeZ <= 0 {
		return 0, fmt.Errorf("%w: preset size %dx%d", ErrInvalidArgument, p.SizeX, p.SizeZ)
	}

	placed := 0
	next := 0
	for i, l := range p.Layers {
		if l.Thickness <= 0 {
			return placed, fmt.Errorf("%w: layer %d thickness %d", ErrInvalidArgument, i, l.Thickness)
		}
		bt, err := reg.Lookup(l.Block)
		if err != nil {
			return placed, fmt.Errorf("layer %d: %w", i, err)
		}
		base := next
		if !l.Height.Auto {
			base = l.Height.Y
		}
		for y := base; y < base+l.Thickness; y++ {
			for x := p.OriginX; x < p.OriginX+p.SizeX; x++ {
				for z := p.OriginZ; z < p.OriginZ+p.SizeZ; z++ {
					if err := w.AddBlock(NewBlock(Coord{X: x, Y: y, Z: z}, bt), false); err != nil {
						return placed, fmt.Errorf("layer %d: %w", i, err)
					}
					placed++
				}
			}
		}
		next = base + l.Thickness
	}
	w.UpdateTrigger()
	return placed, nil
}

// TopBlock returns the highest block in column (x, z).
func (w *World) TopBlock(x, z int) (Block, bool) {
	for y := w.opts.HeightMax; y >= w.opts.HeightMin; y-- {
		origin := Coord{X: x, Y: y, Z: z}
		if w.store.Get(w.ChunkCoordOf(origin)) == nil {
			// skip the rest of an absent chunk
			y = w.ChunkCoordOf(origin).Y * w.opts.ChunkSize
			continue
		}
		if b, ok := w.GetBlock(origin, true); ok {
			return b, true
		}
	}
	return Block{}, false
}

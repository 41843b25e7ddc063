package physics

import (
	"errors"
	"math"

	"mini-voxel/internal/profiling"
	"mini-voxel/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const stepSize = float32(0.02)

// BlockSource is the read side of a world used for picking.
type BlockSource interface {
	LookupBlock(origin world.Coord, wait bool) (world.Block, error)
}

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	Hit      bool
	Block    world.Block
	Adjacent world.Coord // last empty cell before the hit
	Distance float32
	// Busy is set when the ray reached a cell whose chunk was locked by a
	// writer; nothing beyond it was examined.
	Busy bool
}

// Raycast marches from start along direction and returns the first block
// whose cell contains a sample. Lookups never wait on a chunk lock; a cell
// in a chunk being written stops the ray with Busy set.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, src BlockSource) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	if direction.Len() == 0 {
		return RaycastResult{}
	}
	direction = direction.Normalize()
	steps := int(maxDist / stepSize)

	last := cellOf(start)
	for i := 0; i <= steps; i++ {
		dist := float32(i) * stepSize
		if dist < minDist {
			continue
		}
		cell := cellOf(start.Add(direction.Mul(dist)))
		if cell == last && i > 0 {
			continue
		}
		b, err := src.LookupBlock(cell, false)
		switch {
		case err == nil:
			return RaycastResult{Hit: true, Block: b, Adjacent: last, Distance: dist}
		case errors.Is(err, world.ErrBusy):
			return RaycastResult{Adjacent: last, Distance: dist, Busy: true}
		}
		last = cell
	}
	return RaycastResult{}
}

func cellOf(p mgl32.Vec3) world.Coord {
	return world.Coord{
		X: int(math.Floor(float64(p.X()))),
		Y: int(math.Floor(float64(p.Y()))),
		Z: int(math.Floor(float64(p.Z()))),
	}
}

package world

import (
	"errors"
	"fmt"

	"mini-voxel/internal/meshing"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrOutOfBounds       = errors.New("out of bounds")
	ErrAlreadyExists     = errors.New("block already exists")
	ErrNotFound          = errors.New("block not found")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrBusy              = errors.New("chunk busy")
)

// Coord is an integer block origin in world space.
type Coord struct {
	X, Y, Z int
}

func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

// Neighbor returns the origin of the block sharing the given face.
func (c Coord) Neighbor(face int) Coord {
	return c.Add(faceOffsets[face])
}

func (c Coord) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X), float32(c.Y), float32(c.Z)}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

var faceOffsets = [meshing.FaceCount]Coord{
	meshing.FaceNorth:  {Z: 1},
	meshing.FaceSouth:  {Z: -1},
	meshing.FaceEast:   {X: 1},
	meshing.FaceWest:   {X: -1},
	meshing.FaceTop:    {Y: 1},
	meshing.FaceBottom: {Y: -1},
}

// ChunkCoord indexes a chunk; chunk (x,y,z) covers block origins
// [x*N, (x+1)*N) on every axis for chunk size N.
type ChunkCoord struct {
	X, Y, Z int
}

func (c ChunkCoord) less(o ChunkCoord) bool {
	if c.Y != o.Y {
		return c.Y < o.Y
	}
	if c.Z != o.Z {
		return c.Z < o.Z
	}
	return c.X < o.X
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("[%d,%d,%d]", c.X, c.Y, c.Z)
}

// chunkCoordOf maps a block origin to its chunk for chunk size n.
func chunkCoordOf(origin Coord, n int) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(origin.X, n),
		Y: floorDiv(origin.Y, n),
		Z: floorDiv(origin.Z, n),
	}
}

// floorDiv performs floor division for negative numbers
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

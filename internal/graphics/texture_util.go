package graphics

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadRGBA decodes an image file (png, jpeg, bmp, tiff or webp) into tightly
// packed 8-bit RGBA pixels.
func LoadRGBA(path string) (width, height int, pixels []byte, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to open texture file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to decode image: %w", err)
	}

	rgba := toRGBA(img)
	return rgba.Rect.Dx(), rgba.Rect.Dy(), rgba.Pix, nil
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// DefaultAtlas renders a 4x4 tile atlas of flat colors matching the
// built-in block types, used when no atlas image is configured.
func DefaultAtlas(tileSize int) *image.RGBA {
	palette := [4][4]color.RGBA{
		{{96, 168, 48, 255}, {110, 140, 60, 255}, {134, 96, 67, 255}, {60, 60, 60, 255}},
		{{128, 128, 128, 255}, {200, 230, 240, 120}, {0, 0, 0, 255}, {0, 0, 0, 255}},
	}
	atlas := image.NewRGBA(image.Rect(0, 0, tileSize*4, tileSize*4))
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			c := palette[row][col]
			if c.A == 0 {
				c = color.RGBA{255, 0, 255, 255}
			}
			r := image.Rect(col*tileSize, row*tileSize, (col+1)*tileSize, (row+1)*tileSize)
			draw.Draw(atlas, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
			// darker 1px border so tiles stay distinguishable
			edge := color.RGBA{c.R / 2, c.G / 2, c.B / 2, c.A}
			for i := 0; i < tileSize; i++ {
				atlas.SetRGBA(r.Min.X+i, r.Min.Y, edge)
				atlas.SetRGBA(r.Min.X, r.Min.Y+i, edge)
			}
		}
	}
	return atlas
}

// UploadTexture creates a nearest-filtered 2D texture from RGBA pixels.
func UploadTexture(width, height int, pixels []byte) (uint32, error) {
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return 0, fmt.Errorf("%w: invalid texture %dx%d (%d bytes)", ErrGPUResource, width, height, len(pixels))
	}

	var texture uint32
	gl.GenTextures(1, &texture)
	if texture == 0 {
		return 0, fmt.Errorf("%w: could not allocate texture", ErrGPUResource)
	}
	gl.BindTexture(gl.TEXTURE_2D, texture)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(width),
		int32(height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(pixels),
	)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := glError("UploadTexture"); err != nil {
		gl.DeleteTextures(1, &texture)
		return 0, err
	}
	return texture, nil
}

// LoadTexture loads a 2D texture from a file
func LoadTexture(path string) (uint32, int, int, error) {
	w, h, pix, err := LoadRGBA(path)
	if err != nil {
		return 0, 0, 0, err
	}
	tex, err := UploadTexture(w, h, pix)
	if err != nil {
		return 0, 0, 0, err
	}
	return tex, w, h, nil
}

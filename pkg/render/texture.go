package render

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrEmptyImage is returned when an image decodes to zero pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

// Texture holds a 2D image for texture mapping. Coordinates outside [0,1]
// repeat.
type Texture struct {
	Width      int
	Height     int
	Pixels     []Color // Row-major pixel data
	FilterMode FilterMode
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// LoadTexture decodes an image file into a texture. PNG, JPEG, GIF, BMP,
// TIFF and WebP are recognised.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	tex := TextureFromImage(img)
	if tex.Width == 0 || tex.Height == 0 {
		return nil, fmt.Errorf("decode %s: %w", path, ErrEmptyImage)
	}
	return tex, nil
}

// TextureFromImage creates a texture from an image.Image.
func TextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := NewTexture(bounds.Dx(), bounds.Dy())

	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit values
			tex.Pixels[y*tex.Width+x] = Color{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			}
		}
	}
	return tex
}

// NewCheckerTexture creates a procedural checkerboard texture.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	tex := NewTexture(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				tex.Pixels[y*width+x] = c1
			} else {
				tex.Pixels[y*width+x] = c2
			}
		}
	}
	return tex
}

// GetPixel returns the pixel at (x, y) with wrap-around addressing.
func (t *Texture) GetPixel(x, y int) Color {
	if t.Width == 0 || t.Height == 0 {
		return Color{}
	}
	x %= t.Width
	if x < 0 {
		x += t.Width
	}
	y %= t.Height
	if y < 0 {
		y += t.Height
	}
	return t.Pixels[y*t.Width+x]
}

// Sample samples the texture at UV coordinates. V=0 is the bottom row.
func (t *Texture) Sample(u, v float64) Color {
	u -= math.Floor(u)
	v = 1 - (v - math.Floor(v))

	fx := u * float64(t.Width)
	fy := v * float64(t.Height)

	if t.FilterMode == FilterNearest {
		return t.GetPixel(int(fx), min(int(fy), t.Height-1))
	}

	fx -= 0.5
	fy -= 0.5
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	tx, ty := fx-float64(x0), fy-float64(y0)

	top := lerpColor(t.GetPixel(x0, y0), t.GetPixel(x0+1, y0), tx)
	bot := lerpColor(t.GetPixel(x0, y0+1), t.GetPixel(x0+1, y0+1), tx)
	return lerpColor(top, bot, ty)
}

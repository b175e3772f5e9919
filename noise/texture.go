// Package noise synthesizes the fractal noise texture sampled by the
// compositing pass.
package noise

import (
	"errors"
	"fmt"
	"image"
)

// Octaves is the number of noise layers packed into a texture, one per
// RGBA channel.
const Octaves = 4

// ErrInvalidParameter is returned for texture dimensions the generator cannot
// normalise.
var ErrInvalidParameter = errors.New("invalid noise parameter")

// Texture is a width x height grid of RGBA bytes. Channel o of each texel
// holds the remapped sum of octaves 0 through o.
type Texture struct {
	Width  int
	Height int
	Pix    []byte
}

// At returns the four channels of the texel at (col, row).
func (t *Texture) At(col, row int) [4]byte {
	i := (row*t.Width + col) * 4
	return [4]byte{t.Pix[i], t.Pix[i+1], t.Pix[i+2], t.Pix[i+3]}
}

// Image wraps the texture data in an image.RGBA without copying.
func (t *Texture) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    t.Pix,
		Stride: t.Width * 4,
		Rect:   image.Rect(0, 0, t.Width, t.Height),
	}
}

// Generate builds a fractal noise texture. Each octave doubles the frequency
// and multiplies the amplitude by persistence, starting from baseFrequency
// and persistence respectively. With periodic set, every octave tiles with a
// period equal to its frequency, so the texture wraps seamlessly when
// baseFrequency is a whole number.
func Generate(baseFrequency, persistence float32, width, height int, periodic bool) (*Texture, error) {
	if width <= 1 || height <= 1 {
		return nil, fmt.Errorf("%w: texture size %dx%d, both sides must be greater than 1", ErrInvalidParameter, width, height)
	}

	tex := &Texture{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*4),
	}

	xDiv := float32(width - 1)
	yDiv := float32(height - 1)

	for row := 0; row < height; row++ {
		y := float32(row) / yDiv
		for col := 0; col < width; col++ {
			x := float32(col) / xDiv
			base := (row*width + col) * 4

			var sum float32
			freq := baseFrequency
			amp := persistence
			for oct := 0; oct < Octaves; oct++ {
				var v float32
				if periodic {
					v = PeriodicPerlin(x*freq, y*freq, freq, freq)
				} else {
					v = Perlin(x*freq, y*freq)
				}
				sum += v * amp
				tex.Pix[base+oct] = toByte(sum)

				freq *= 2
				amp *= persistence
			}
		}
	}
	return tex, nil
}

// toByte remaps a noise sum from [-1, 1] to [0, 255], clamping anything
// outside that range.
func toByte(sum float32) byte {
	r := (sum + 1) / 2
	if r > 1 {
		r = 1
	}
	if r < 0 {
		r = 0
	}
	return byte(r * 255)
}

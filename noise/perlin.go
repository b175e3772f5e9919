package noise

import (
	"github.com/chewxy/math32"
)

// Perlin returns classic 2D gradient noise at (x, y). The result lies roughly
// in [-1, 1] and is exactly zero on integer lattice points.
func Perlin(x, y float32) float32 {
	return perlin(x, y, 0, 0, false)
}

// PeriodicPerlin returns 2D gradient noise that repeats with period px along x
// and py along y. Periods are expected to be positive whole numbers.
func PeriodicPerlin(x, y, px, py float32) float32 {
	return perlin(x, y, px, py, true)
}

func perlin(x, y, px, py float32, periodic bool) float32 {
	x0, y0 := math32.Floor(x), math32.Floor(y)
	x1, y1 := x0+1, y0+1
	fx0, fy0 := x-x0, y-y0
	fx1, fy1 := fx0-1, fy0-1

	if periodic {
		x0, x1 = mod(x0, px), mod(x1, px)
		y0, y1 = mod(y0, py), mod(y1, py)
	}
	x0, x1 = mod(x0, 289), mod(x1, 289)
	y0, y1 = mod(y0, 289), mod(y1, 289)

	n00 := corner(x0, y0, fx0, fy0)
	n10 := corner(x1, y0, fx1, fy0)
	n01 := corner(x0, y1, fx0, fy1)
	n11 := corner(x1, y1, fx1, fy1)

	u, v := fade(fx0), fade(fy0)
	nx0 := mix(n00, n10, u)
	nx1 := mix(n01, n11, u)
	return 2.3 * mix(nx0, nx1, v)
}

// corner computes the contribution of the lattice point (ix, iy) for a sample
// at offset (fx, fy) from it.
func corner(ix, iy, fx, fy float32) float32 {
	h := permute(permute(ix) + iy)

	gx := 2*fract(h/41) - 1
	gy := math32.Abs(gx) - 0.5
	gx -= math32.Floor(gx + 0.5)

	norm := taylorInvSqrt(gx*gx + gy*gy)
	return norm * (gx*fx + gy*fy)
}

func permute(v float32) float32 {
	return mod((v*34+1)*v, 289)
}

func taylorInvSqrt(r float32) float32 {
	return 1.79284291400159 - 0.85373472095314*r
}

func fade(t float32) float32 {
	return t * t * t * (t*(t*6-15) + 10)
}

func mix(a, b, t float32) float32 {
	return a*(1-t) + b*t
}

func fract(v float32) float32 {
	return v - math32.Floor(v)
}

// mod follows the GLSL definition, so negative inputs wrap into [0, m).
func mod(v, m float32) float32 {
	return v - m*math32.Floor(v/m)
}

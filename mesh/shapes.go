package mesh

import (
	"github.com/chewxy/math32"
)

// Plane returns a flat grid in the XZ plane centered on the origin, facing +Y.
func Plane(xsize, zsize float32, xdivs, zdivs int) *Data {
	d := &Data{}
	x2, z2 := xsize/2, zsize/2
	iFactor := zsize / float32(zdivs)
	jFactor := xsize / float32(xdivs)

	for i := 0; i <= zdivs; i++ {
		z := iFactor*float32(i) - z2
		for j := 0; j <= xdivs; j++ {
			x := jFactor*float32(j) - x2
			d.positions = append(d.positions, x, 0, z)
			d.normals = append(d.normals, 0, 1, 0)
			d.texCoords = append(d.texCoords, float32(j)/float32(xdivs), float32(i)/float32(zdivs))
		}
	}

	for i := 0; i < zdivs; i++ {
		row := uint32(i * (xdivs + 1))
		next := uint32((i + 1) * (xdivs + 1))
		for j := uint32(0); j < uint32(xdivs); j++ {
			d.indices = append(d.indices,
				row+j, next+j, next+j+1,
				row+j, next+j+1, row+j+1)
		}
	}
	d.triangles = len(d.indices) / 3
	return d
}

// Torus returns a torus around the Z axis. outer is the distance from the
// center to the tube center, inner the tube radius.
func Torus(outer, inner float32, sides, rings int) *Data {
	d := &Data{}
	ringFactor := 2 * math32.Pi / float32(rings)
	sideFactor := 2 * math32.Pi / float32(sides)

	for ring := 0; ring <= rings; ring++ {
		u := float32(ring) * ringFactor
		cu, su := math32.Cos(u), math32.Sin(u)
		for side := 0; side <= sides; side++ {
			v := float32(side) * sideFactor
			cv, sv := math32.Cos(v), math32.Sin(v)
			r := outer + inner*cv
			d.positions = append(d.positions, r*cu, r*su, inner*sv)
			d.normals = append(d.normals, cv*cu, cv*su, sv)
			d.texCoords = append(d.texCoords, u/(2*math32.Pi), v/(2*math32.Pi))
		}
	}

	for ring := 0; ring < rings; ring++ {
		start := uint32(ring * (sides + 1))
		next := uint32((ring + 1) * (sides + 1))
		for side := uint32(0); side < uint32(sides); side++ {
			d.indices = append(d.indices,
				start+side, next+side, next+side+1,
				start+side, next+side+1, start+side+1)
		}
	}
	d.triangles = len(d.indices) / 3
	return d
}

// teapotProfile is the silhouette of the teapot body and lid as
// (radius, height) pairs, bottom to top.
var teapotProfile = [][2]float32{
	{0, 0}, {1.0, 0}, {1.3, 0.15}, {1.45, 0.45}, {1.5, 0.9},
	{1.48, 1.35}, {1.42, 1.8}, {1.4, 2.25}, {1.3, 2.25}, {1.1, 2.35},
	{0.8, 2.5}, {0.4, 2.7}, {0.2, 2.85}, {0.25, 3.0}, {0.1, 3.15}, {0, 3.15},
}

// Teapot returns the teapot body and lid as a surface of revolution around
// the Z axis, base at z = 0. Spout and handle are not modelled.
func Teapot(slices int) *Data {
	return Lathe(teapotProfile, slices)
}

// Lathe revolves profile, a list of (radius, height) points, around the Z
// axis. Normals come from central differences along the profile.
func Lathe(profile [][2]float32, slices int) *Data {
	d := &Data{}
	step := 2 * math32.Pi / float32(slices)

	for i, p := range profile {
		prev := profile[max(i-1, 0)]
		next := profile[min(i+1, len(profile)-1)]
		dr, dz := next[0]-prev[0], next[1]-prev[1]
		nr, nz := dz, -dr
		if l := math32.Hypot(nr, nz); l > 0 {
			nr, nz = nr/l, nz/l
		}

		for j := 0; j <= slices; j++ {
			theta := float32(j) * step
			c, s := math32.Cos(theta), math32.Sin(theta)
			d.positions = append(d.positions, p[0]*c, p[0]*s, p[1])
			d.normals = append(d.normals, nr*c, nr*s, nz)
			d.texCoords = append(d.texCoords, float32(j)/float32(slices), float32(i)/float32(len(profile)-1))
		}
	}

	for i := 0; i+1 < len(profile); i++ {
		row := uint32(i * (slices + 1))
		next := uint32((i + 1) * (slices + 1))
		for j := uint32(0); j < uint32(slices); j++ {
			d.indices = append(d.indices,
				row+j, row+j+1, next+j+1,
				row+j, next+j+1, next+j)
		}
	}
	d.triangles = len(d.indices) / 3
	return d
}

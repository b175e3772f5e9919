// Package mesh generates the static meshes drawn by the renderer.
package mesh

// Mesh exposes contiguous vertex and index data. Positions and normals hold
// three floats per vertex, texture coordinates two, indices three per
// triangle. Normals, TexCoords and Indices may be empty.
type Mesh interface {
	VertexCount() int
	TriangleCount() int
	Positions() []float32
	Normals() []float32
	TexCoords() []float32
	Indices() []uint32
}

// Data is an immutable in-memory Mesh.
type Data struct {
	positions []float32
	normals   []float32
	texCoords []float32
	indices   []uint32
	triangles int
}

func (d *Data) VertexCount() int { return len(d.positions) / 3 }
func (d *Data) TriangleCount() int { return d.triangles }
func (d *Data) Positions() []float32 { return d.positions }
func (d *Data) Normals() []float32 { return d.normals }
func (d *Data) TexCoords() []float32 { return d.texCoords }
func (d *Data) Indices() []uint32 { return d.indices }

// Quad returns the two triangles covering normalized device space, with
// texture coordinates spanning [0,1]. It has no normals and no indices.
func Quad() *Data {
	return &Data{
		positions: []float32{
			-1, -1, 0, 1, -1, 0, 1, 1, 0,
			-1, -1, 0, 1, 1, 0, -1, 1, 0,
		},
		texCoords: []float32{
			0, 0, 1, 0, 1, 1,
			0, 0, 1, 1, 0, 1,
		},
		triangles: 2,
	}
}

package renderer

import (
	"fmt"

	"github.com/richinsley/nightvision/graphics"
	"github.com/richinsley/nightvision/mesh"
)

// GeometryBuffer holds the GPU copy of one mesh: a vertex array with one
// buffer per attribute stream plus an optional index buffer.
type GeometryBuffer struct {
	dev         graphics.Device
	name        string
	va          graphics.VertexArray
	slots       []graphics.Slot
	vertexCount int
	indexCount  int
}

// NewGeometryBuffer uploads the streams of m selected by slots. Positions
// must always be present; normals and texture coordinates are taken from the
// mesh when their slot is requested.
func NewGeometryBuffer(dev graphics.Device, name string, m mesh.Mesh, slots ...graphics.Slot) (*GeometryBuffer, error) {
	vc := m.VertexCount()
	if vc == 0 {
		return nil, fmt.Errorf("%w: mesh %s has no vertices", graphics.ErrInvalidParameter, name)
	}

	var attrs []graphics.Attribute
	for _, slot := range slots {
		var data []float32
		var comps int
		switch slot {
		case graphics.PositionSlot:
			data, comps = m.Positions(), 3
		case graphics.NormalSlot:
			data, comps = m.Normals(), 3
		case graphics.TexCoordSlot:
			data, comps = m.TexCoords(), 2
		default:
			return nil, fmt.Errorf("%w: mesh %s: unknown attribute slot %d", graphics.ErrInvalidParameter, name, slot)
		}
		if len(data) != vc*comps {
			return nil, fmt.Errorf("%w: mesh %s: slot %d has %d floats, want %d", graphics.ErrInvalidParameter, name, slot, len(data), vc*comps)
		}
		attrs = append(attrs, graphics.Attribute{Slot: slot, Components: comps, Data: data})
	}
	if len(attrs) == 0 || attrs[0].Slot != graphics.PositionSlot {
		return nil, fmt.Errorf("%w: mesh %s: position stream must come first", graphics.ErrInvalidParameter, name)
	}

	indices := m.Indices()
	if len(indices) > 0 {
		if len(indices) != 3*m.TriangleCount() {
			return nil, fmt.Errorf("%w: mesh %s: %d indices for %d triangles", graphics.ErrInvalidParameter, name, len(indices), m.TriangleCount())
		}
		for i, idx := range indices {
			if int(idx) >= vc {
				return nil, fmt.Errorf("%w: mesh %s: index %d at %d out of range (%d vertices)", graphics.ErrInvalidParameter, name, idx, i, vc)
			}
		}
	} else if vc != 3*m.TriangleCount() {
		return nil, fmt.Errorf("%w: mesh %s: %d vertices cannot form %d unindexed triangles", graphics.ErrInvalidParameter, name, vc, m.TriangleCount())
	}

	va, err := dev.CreateVertexArray(attrs, indices)
	if err != nil {
		return nil, fmt.Errorf("failed to upload mesh %s: %w", name, err)
	}

	return &GeometryBuffer{
		dev:         dev,
		name:        name,
		va:          va,
		slots:       slots,
		vertexCount: vc,
		indexCount:  len(indices),
	}, nil
}

func (g *GeometryBuffer) Name() string { return g.name }
func (g *GeometryBuffer) Slots() []graphics.Slot { return g.slots }
func (g *GeometryBuffer) VertexCount() int { return g.vertexCount }
func (g *GeometryBuffer) IndexCount() int { return g.indexCount }
func (g *GeometryBuffer) Indexed() bool { return g.indexCount > 0 }
func (g *GeometryBuffer) VertexArray() graphics.Handle { return g.va.VAO }

// Bind binds the vertex array and enables its attribute slots.
func (g *GeometryBuffer) Bind() {
	g.dev.BindVertexArray(g.va.VAO)
	for _, s := range g.slots {
		g.dev.EnableAttribute(s)
	}
}

// Draw issues one triangle draw over the whole mesh.
func (g *GeometryBuffer) Draw() {
	if g.Indexed() {
		g.dev.DrawElements(g.indexCount)
		return
	}
	g.dev.DrawArrays(0, g.vertexCount)
}

// Unbind disables the attribute slots enabled by Bind.
func (g *GeometryBuffer) Unbind() {
	for _, s := range g.slots {
		g.dev.DisableAttribute(s)
	}
	g.dev.BindVertexArray(0)
}

func (g *GeometryBuffer) Destroy() {
	g.dev.DeleteVertexArray(g.va)
	g.va = graphics.VertexArray{}
}

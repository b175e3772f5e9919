// Package renderer draws the night-vision scene: a lit pass into an
// offscreen target followed by a full-screen composite pass, both served by
// one shader program with per-pass fragment subroutines.
package renderer

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/nightvision/graphics"
	"github.com/richinsley/nightvision/mesh"
	"github.com/richinsley/nightvision/noise"
	"github.com/richinsley/nightvision/shader"
	"go.uber.org/zap"
)

// Presenter shows the finished default framebuffer.
type Presenter interface {
	Present()
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func()

func (f PresenterFunc) Present() { f() }

// NoiseConfig parameterises the noise texture baked at startup.
type NoiseConfig struct {
	Frequency   float32
	Persistence float32
	Size        int
	Periodic    bool
}

// PipelineConfig is everything NewPipeline needs besides the device.
type PipelineConfig struct {
	Width  int
	Height int
	Shader shader.Source
	Noise  NoiseConfig
}

// DefaultNoise matches the look the fragment shader was tuned for.
var DefaultNoise = NoiseConfig{Frequency: 200, Persistence: 0.5, Size: 512, Periodic: true}

type Pipeline struct {
	dev       graphics.Device
	presenter Presenter
	program   *Program
	objects   []drawable
	quad      *GeometryBuffer
	target    *OffscreenTarget
	noiseTex  graphics.Handle

	camera Camera
	state  FrameState
	width  int
	height int

	pendingWidth  int
	pendingHeight int
	sizeChanged   bool
}

// NewPipeline builds every GPU resource of the scene. Any failure is fatal
// and everything created so far is released.
func NewPipeline(dev graphics.Device, presenter Presenter, cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: viewport %dx%d", graphics.ErrInvalidParameter, cfg.Width, cfg.Height)
	}
	p := &Pipeline{
		dev:       dev,
		presenter: presenter,
		state:     NewFrameState(),
		width:     cfg.Width,
		height:    cfg.Height,
	}
	if err := p.init(cfg); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *Pipeline) init(cfg PipelineConfig) error {
	p.program = NewProgram(p.dev)
	if err := p.program.Compile(cfg.Shader.Vertex, cfg.Shader.Fragment); err != nil {
		return err
	}
	if err := p.program.Link(); err != nil {
		return err
	}

	solids := []struct {
		name    string
		mesh    mesh.Mesh
		model   mgl32.Mat4
		mat     Material
		divisor float32
	}{
		{"teapot", mesh.Teapot(32), teapotModel(), copperMaterial, 3.5},
		{"plane", mesh.Plane(50, 50, 1, 1), planeModel(), floorMaterial, 3.5},
		{"torus", mesh.Torus(0.7*1.5, 0.3*1.5, 50, 50), torusModel(), copperMaterial, 2.8},
	}
	for _, s := range solids {
		gb, err := NewGeometryBuffer(p.dev, s.name, s.mesh, graphics.PositionSlot, graphics.NormalSlot)
		if err != nil {
			return err
		}
		p.objects = append(p.objects, drawable{geometry: gb, model: s.model, material: s.mat, radiusDivisor: s.divisor})
	}

	var err error
	p.quad, err = NewGeometryBuffer(p.dev, "quad", mesh.Quad(), graphics.PositionSlot, graphics.TexCoordSlot)
	if err != nil {
		return err
	}

	p.target, err = NewOffscreenTarget(p.dev, p.width, p.height)
	if err != nil {
		return err
	}

	if err := p.bakeNoise(cfg.Noise); err != nil {
		return err
	}

	p.dev.FrontFaceCCW()
	p.dev.EnableDepthTest()
	p.dev.Viewport(p.width, p.height)
	p.camera.SetViewport(p.width, p.height)
	p.camera.View = ViewMatrix(p.state.Angle)
	return nil
}

func (p *Pipeline) bakeNoise(cfg NoiseConfig) error {
	start := time.Now()
	tex, err := noise.Generate(cfg.Frequency, cfg.Persistence, cfg.Size, cfg.Size, cfg.Periodic)
	if err != nil {
		return fmt.Errorf("%w: %w", graphics.ErrInvalidParameter, err)
	}
	p.noiseTex, err = p.dev.CreateTexture(graphics.TextureDesc{
		Width:  tex.Width,
		Height: tex.Height,
		Linear: true,
		Repeat: true,
	}, tex.Pix)
	if err != nil {
		return fmt.Errorf("%w: noise texture: %w", graphics.ErrFatalInit, err)
	}
	zap.S().Infof("Noise texture %dx%d generated in %v (freq %.1f, persistence %.2f, periodic %t)",
		tex.Width, tex.Height, time.Since(start).Round(time.Millisecond), cfg.Frequency, cfg.Persistence, cfg.Periodic)
	return nil
}

// Resize records a new viewport size and recomputes the projection. The
// offscreen target follows at the start of the next frame. Non-positive
// sizes, as reported for minimised windows, are ignored.
func (p *Pipeline) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	p.pendingWidth, p.pendingHeight = width, height
	p.sizeChanged = true
	p.camera.SetViewport(width, height)
}

// RenderFrame draws and presents one frame for the clock snapshot now, in
// seconds. An error leaves the frame incomplete and is fatal to the session.
func (p *Pipeline) RenderFrame(now float64) error {
	if p.sizeChanged {
		if err := p.target.Resize(p.pendingWidth, p.pendingHeight); err != nil {
			return fmt.Errorf("failed to resize offscreen target: %w", err)
		}
		p.width, p.height = p.pendingWidth, p.pendingHeight
		p.dev.Viewport(p.width, p.height)
		p.sizeChanged = false
	}

	p.state.Advance(now)
	p.camera.View = ViewMatrix(p.state.Angle)

	p.dev.ClearColor(black)
	p.dev.Clear(graphics.ClearColor | graphics.ClearDepth)

	if err := p.lightingPass(); err != nil {
		return fmt.Errorf("pass 1: %w", err)
	}
	if err := p.compositePass(); err != nil {
		return fmt.Errorf("pass 2: %w", err)
	}
	p.presenter.Present()
	return nil
}

func (p *Pipeline) lightingPass() error {
	if err := p.target.BindAsDrawTarget(p.width, p.height); err != nil {
		return err
	}
	p.dev.ClearColor(midGray)
	p.dev.Clear(graphics.ClearColor | graphics.ClearDepth)

	viewNormal := NormalMatrix(p.camera.View)
	for _, obj := range p.objects {
		obj.geometry.Bind()
		b, err := p.program.Bind(Pass1)
		if err != nil {
			obj.geometry.Unbind()
			return err
		}

		mv := p.camera.View.Mul4(obj.model)
		b.SetVec4("Light.Position", worldLight)
		b.SetVec3("Light.Intensity", lightIntensity)
		b.SetMat4("ModelViewMatrix", mv)
		b.SetMat3("NormalMatrix", NormalMatrix(mv))
		b.SetMat4("MVP", p.camera.Projection.Mul4(mv))
		b.SetVec4("Worldlight", worldLight)
		b.SetMat3("ViewNormalMatrix", viewNormal)

		b.SetVec3("Material.Kd", obj.material.Kd)
		b.SetVec3("Material.Ks", obj.material.Ks)
		b.SetVec3("Material.Ka", obj.material.Ka)
		b.SetFloat("Material.Shininess", obj.material.Shininess)

		b.SetFloat("Width", float32(p.width))
		b.SetFloat("Height", float32(p.height))
		b.SetFloat("Radius", float32(p.width)/obj.radiusDivisor)

		obj.geometry.Draw()
		obj.geometry.Unbind()
		b.Release()
	}
	return nil
}

func (p *Pipeline) compositePass() error {
	p.target.BindDefault()
	p.dev.Clear(graphics.ClearColor | graphics.ClearDepth)

	p.quad.Bind()
	b, err := p.program.Bind(Pass2)
	if err != nil {
		p.quad.Unbind()
		return err
	}

	b.SetFloat("EdgeThreshold", edgeThreshold)
	b.SetMat4("ModelViewMatrix", mgl32.Ident4())
	b.SetMat3("NormalMatrix", mgl32.Ident3())
	b.SetMat4("MVP", mgl32.Ident4())

	p.dev.BindTexture(renderTexUnit, p.target.ColorTexture())
	b.SetInt("RenderTex", renderTexUnit)
	p.dev.BindTexture(noiseTexUnit, p.noiseTex)
	b.SetInt("NoiseTex", noiseTexUnit)

	p.quad.Draw()

	p.dev.BindTexture(noiseTexUnit, 0)
	p.dev.BindTexture(renderTexUnit, 0)
	p.quad.Unbind()
	b.Release()
	return nil
}

// Size returns the viewport size the last frame was drawn at.
func (p *Pipeline) Size() (int, int) { return p.width, p.height }

func (p *Pipeline) Camera() Camera { return p.camera }

func (p *Pipeline) FrameState() FrameState { return p.state }

// Target exposes the offscreen target, mainly for inspection.
func (p *Pipeline) Target() *OffscreenTarget { return p.target }

// Destroy releases every GPU resource. It tolerates a partially built
// pipeline.
func (p *Pipeline) Destroy() {
	if p.program != nil {
		p.program.Destroy()
		p.program = nil
	}
	for _, obj := range p.objects {
		obj.geometry.Destroy()
	}
	p.objects = nil
	if p.quad != nil {
		p.quad.Destroy()
		p.quad = nil
	}
	if p.target != nil {
		p.target.Destroy()
		p.target = nil
	}
	if p.noiseTex != 0 {
		p.dev.DeleteTexture(p.noiseTex)
		p.noiseTex = 0
	}
}

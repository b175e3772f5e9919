package renderer

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/nightvision/graphics"
	"github.com/richinsley/nightvision/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNoise = NoiseConfig{Frequency: 2, Persistence: 0.5, Size: 8, Periodic: true}

func newTestPipeline(t *testing.T, dev *fakeDevice, width, height int) *Pipeline {
	t.Helper()
	p, err := NewPipeline(dev, PresenterFunc(func() { dev.logf("swap") }), PipelineConfig{
		Width:  width,
		Height: height,
		Shader: shader.Default(),
		Noise:  testNoise,
	})
	require.NoError(t, err)
	t.Cleanup(p.Destroy)
	return p
}

func TestRenderFrameSelectsPassesInOrder(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPipeline(t, dev, 320, 240)
	dev.log = nil

	require.NoError(t, p.RenderFrame(0))

	assert.Equal(t, []string{
		"select pass1", "select pass1", "select pass1", "select pass2", "swap",
	}, dev.entries("select", "swap"))
	assert.Empty(t, dev.misuse)
}

func TestRenderFrameDraws(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPipeline(t, dev, 320, 240)
	require.NoError(t, p.RenderFrame(0))
	require.Len(t, dev.draws, 4)

	target := p.Target()
	for i, d := range dev.draws[:3] {
		assert.Equal(t, "pass1", d.subroutine, "draw %d", i)
		assert.True(t, d.indexed, "draw %d", i)
		assert.Equal(t, []graphics.Slot{graphics.PositionSlot, graphics.NormalSlot}, d.slots, "draw %d", i)
		assert.Equal(t, p.objects[i].geometry.IndexCount(), d.count, "draw %d", i)
		assert.Equal(t, float32(320), d.uniforms["Width"])
		assert.Equal(t, float32(240), d.uniforms["Height"])
		assert.Equal(t, worldLight, d.uniforms["Light.Position"])
		assert.Equal(t, lightIntensity, d.uniforms["Light.Intensity"])
		assert.NotZero(t, d.fbo)
	}
	assert.InDelta(t, 320/3.5, dev.draws[0].uniforms["Radius"], 1e-3)
	assert.InDelta(t, 320/3.5, dev.draws[1].uniforms["Radius"], 1e-3)
	assert.InDelta(t, 320/2.8, dev.draws[2].uniforms["Radius"], 1e-3)
	assert.Equal(t, float32(100), dev.draws[0].uniforms["Material.Shininess"])
	assert.Equal(t, float32(180), dev.draws[1].uniforms["Material.Shininess"])

	cam := p.Camera()
	mv := cam.View.Mul4(teapotModel())
	assert.Equal(t, mv, dev.draws[0].uniforms["ModelViewMatrix"])
	assert.Equal(t, cam.Projection.Mul4(mv), dev.draws[0].uniforms["MVP"])
	assert.Equal(t, NormalMatrix(mv), dev.draws[0].uniforms["NormalMatrix"])
	assert.Equal(t, NormalMatrix(cam.View), dev.draws[0].uniforms["ViewNormalMatrix"])
	assert.Equal(t, worldLight, dev.draws[0].uniforms["Worldlight"])

	quad := dev.draws[3]
	assert.Equal(t, "pass2", quad.subroutine)
	assert.False(t, quad.indexed)
	assert.Equal(t, 6, quad.count)
	assert.Zero(t, quad.fbo)
	assert.Equal(t, []graphics.Slot{graphics.PositionSlot, graphics.TexCoordSlot}, quad.slots)
	assert.Equal(t, float32(edgeThreshold), quad.uniforms["EdgeThreshold"])
	assert.Equal(t, mgl32.Ident4(), quad.uniforms["MVP"])
	assert.Equal(t, mgl32.Ident4(), quad.uniforms["ModelViewMatrix"])
	assert.Equal(t, mgl32.Ident3(), quad.uniforms["NormalMatrix"])
	assert.Equal(t, int32(renderTexUnit), quad.uniforms["RenderTex"])
	assert.Equal(t, int32(noiseTexUnit), quad.uniforms["NoiseTex"])
	assert.NotEqual(t, target.ColorTexture(), graphics.Handle(0))

	// Attributes and program are released after the frame.
	assert.Empty(t, dev.enabled)
	assert.Zero(t, dev.program)
	assert.Zero(t, dev.units[renderTexUnit])
}

func TestRenderFrameFirstFrameDoesNotJump(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPipeline(t, dev, 320, 240)

	require.NoError(t, p.RenderFrame(12.5))
	assert.Equal(t, float32(initialAngle), p.FrameState().Angle)

	require.NoError(t, p.RenderFrame(14.5))
	assert.InDelta(t, initialAngle+0.5, p.FrameState().Angle, 1e-6)
	assert.EqualValues(t, 2, p.FrameState().Frame)
	assert.Equal(t, ViewMatrix(p.FrameState().Angle), p.Camera().View)
}

func TestResizeAppliesBeforeNextPass1(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPipeline(t, dev, 320, 240)
	require.NoError(t, p.RenderFrame(0))
	oldFBO := dev.draws[0].fbo

	p.Resize(640, 480)
	assert.InDelta(t, 640.0/480.0, p.Camera().AspectRatio(), 1e-5)

	dev.draws = nil
	dev.log = nil
	require.NoError(t, p.RenderFrame(0.016))

	require.Len(t, dev.draws, 4)
	for _, d := range dev.draws[:3] {
		assert.Equal(t, 640, d.width)
		assert.Equal(t, 480, d.height)
		assert.NotEqual(t, oldFBO, d.fbo)
	}
	assert.Equal(t, [2]int{640, 480}, dev.viewport)
	assert.Equal(t, "viewport 640x480", dev.entries("viewport", "draw")[0])
	_, stillAlive := dev.fbos[oldFBO]
	assert.False(t, stillAlive)

	w, h := p.Target().Size()
	assert.Equal(t, [2]int{640, 480}, [2]int{w, h})
	assert.InDelta(t, 640/2.8, dev.draws[2].uniforms["Radius"], 1e-3)
}

func TestResizeIgnoresEmptyViewport(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPipeline(t, dev, 320, 240)
	p.Resize(0, 0)
	require.NoError(t, p.RenderFrame(0))
	w, h := p.Size()
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
}

func TestNewPipelineFailuresReleaseResources(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(d *fakeDevice, cfg *PipelineConfig)
		target error
	}{
		{"vertex compile", func(d *fakeDevice, _ *PipelineConfig) { d.failCompile[graphics.VertexStage] = true }, graphics.ErrFatalInit},
		{"fragment compile", func(d *fakeDevice, _ *PipelineConfig) { d.failCompile[graphics.FragmentStage] = true }, graphics.ErrFatalInit},
		{"link", func(d *fakeDevice, _ *PipelineConfig) { d.failLink = true }, graphics.ErrFatalInit},
		{"missing pass2", func(d *fakeDevice, _ *PipelineConfig) { d.missingSubroutine = "pass2" }, graphics.ErrFatalInit},
		{"framebuffer", func(d *fakeDevice, _ *PipelineConfig) { d.failFramebuffer = true }, graphics.ErrFatalInit},
		{"noise size", func(_ *fakeDevice, cfg *PipelineConfig) { cfg.Noise.Size = 1 }, graphics.ErrInvalidParameter},
		{"viewport", func(_ *fakeDevice, cfg *PipelineConfig) { cfg.Width = 0 }, graphics.ErrInvalidParameter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dev := newFakeDevice()
			cfg := PipelineConfig{Width: 64, Height: 64, Shader: shader.Default(), Noise: testNoise}
			tc.setup(dev, &cfg)

			p, err := NewPipeline(dev, PresenterFunc(func() {}), cfg)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tc.target)
			assert.Zero(t, dev.live(), "leaked GPU objects")
		})
	}
}

func TestNewPipelineReportsCompileLog(t *testing.T) {
	dev := newFakeDevice()
	dev.failCompile[graphics.FragmentStage] = true
	_, err := NewPipeline(dev, PresenterFunc(func() {}), PipelineConfig{Width: 8, Height: 8, Shader: shader.Default(), Noise: testNoise})

	var ce *graphics.CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, graphics.FragmentStage, ce.Stage)
	assert.Contains(t, ce.Log, "syntax error")
}

func TestDestroyReleasesEverything(t *testing.T) {
	dev := newFakeDevice()
	p, err := NewPipeline(dev, PresenterFunc(func() {}), PipelineConfig{Width: 32, Height: 32, Shader: shader.Default(), Noise: testNoise})
	require.NoError(t, err)
	require.NotZero(t, dev.live())

	p.Destroy()
	assert.Zero(t, dev.live())
	p.Destroy()
}

func TestNoiseTextureUpload(t *testing.T) {
	dev := newFakeDevice()
	p := newTestPipeline(t, dev, 16, 16)

	desc, ok := dev.textures[p.noiseTex]
	require.True(t, ok)
	assert.Equal(t, graphics.TextureDesc{Width: 8, Height: 8, Linear: true, Repeat: true}, desc)

	require.NoError(t, p.RenderFrame(0))
	assert.NotEqual(t, p.noiseTex, p.Target().ColorTexture())
}

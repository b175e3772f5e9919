package renderer

import (
	"fmt"

	"github.com/richinsley/nightvision/graphics"
	"go.uber.org/zap"
)

// OffscreenTarget is the framebuffer pass 1 renders into: one RGBA8 colour
// texture and one depth renderbuffer, both the size of the viewport.
type OffscreenTarget struct {
	dev    graphics.Device
	fbo    graphics.Handle
	color  graphics.Handle
	depth  graphics.Handle
	width  int
	height int
}

func NewOffscreenTarget(dev graphics.Device, width, height int) (*OffscreenTarget, error) {
	t := &OffscreenTarget{dev: dev}
	if err := t.create(width, height); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *OffscreenTarget) create(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: offscreen target size %dx%d", graphics.ErrInvalidParameter, width, height)
	}

	color, err := t.dev.CreateTexture(graphics.TextureDesc{Width: width, Height: height}, nil)
	if err != nil {
		return fmt.Errorf("%w: offscreen colour texture: %w", graphics.ErrFatalInit, err)
	}
	depth, err := t.dev.CreateDepthBuffer(width, height)
	if err != nil {
		t.dev.DeleteTexture(color)
		return fmt.Errorf("%w: offscreen depth buffer: %w", graphics.ErrFatalInit, err)
	}
	fbo, err := t.dev.CreateFramebuffer(color, depth)
	if err != nil {
		t.dev.DeleteDepthBuffer(depth)
		t.dev.DeleteTexture(color)
		return fmt.Errorf("%w: offscreen framebuffer: %w", graphics.ErrFatalInit, err)
	}

	t.fbo, t.color, t.depth = fbo, color, depth
	t.width, t.height = width, height
	zap.S().Infof("Offscreen FBO %d: %dx%d", fbo, width, height)
	return nil
}

func (t *OffscreenTarget) release() {
	if t.fbo != 0 {
		t.dev.DeleteFramebuffer(t.fbo)
	}
	if t.depth != 0 {
		t.dev.DeleteDepthBuffer(t.depth)
	}
	if t.color != 0 {
		t.dev.DeleteTexture(t.color)
	}
	t.fbo, t.color, t.depth = 0, 0, 0
	t.width, t.height = 0, 0
}

// Resize recreates the attachments at the new size. It is a no-op when the
// size is unchanged.
func (t *OffscreenTarget) Resize(width, height int) error {
	if width == t.width && height == t.height && t.fbo != 0 {
		return nil
	}
	t.release()
	return t.create(width, height)
}

// BindAsDrawTarget binds the framebuffer for drawing. It refuses to bind
// when the attachments do not match the viewport the caller is about to
// draw with.
func (t *OffscreenTarget) BindAsDrawTarget(viewportWidth, viewportHeight int) error {
	if t.fbo == 0 {
		return fmt.Errorf("%w: offscreen target was destroyed", graphics.ErrStateMisuse)
	}
	if viewportWidth != t.width || viewportHeight != t.height {
		return fmt.Errorf("%w: offscreen target is %dx%d, viewport is %dx%d",
			graphics.ErrStateMisuse, t.width, t.height, viewportWidth, viewportHeight)
	}
	t.dev.BindFramebuffer(t.fbo)
	return nil
}

// BindDefault restores the default framebuffer.
func (t *OffscreenTarget) BindDefault() {
	t.dev.BindFramebuffer(0)
}

func (t *OffscreenTarget) ColorTexture() graphics.Handle { return t.color }
func (t *OffscreenTarget) Size() (int, int) { return t.width, t.height }

func (t *OffscreenTarget) Destroy() {
	t.release()
}

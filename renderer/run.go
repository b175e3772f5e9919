package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/richinsley/nightvision/graphics"
	"go.uber.org/zap"
)

// FrameSink receives presented frames as tightly packed RGBA rows, bottom
// row first.
type FrameSink interface {
	WriteFrame(pixels []byte) error
}

// Run renders into win at fps frames per second until the window is closed.
// A millisecond clock advances on its own goroutine; each frame reads one
// snapshot of it.
func (p *Pipeline) Run(win graphics.Context, fps int) error {
	if fps <= 0 {
		return fmt.Errorf("%w: fps %d", graphics.ErrInvalidParameter, fps)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var clock Clock
	go clock.Run(ctx, time.Millisecond)

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for !win.ShouldClose() {
		<-ticker.C
		if err := p.RenderFrame(clock.Seconds()); err != nil {
			return err
		}
	}
	zap.S().Infof("Window closed after %d frames", p.state.Frame)
	return nil
}

// Record renders frames with a fixed 1/fps timestep and hands each presented
// frame to sink before it reaches the regular presenter. onFrame, if set, is
// called after every frame.
func (p *Pipeline) Record(sink FrameSink, fps, frames int, onFrame func(frame int)) error {
	if fps <= 0 || frames < 0 {
		return fmt.Errorf("%w: fps %d, frames %d", graphics.ErrInvalidParameter, fps, frames)
	}

	next := p.presenter
	defer func() { p.presenter = next }()

	var buf []byte
	var writeErr error
	p.presenter = PresenterFunc(func() {
		w, h := p.Size()
		if len(buf) != w*h*4 {
			buf = make([]byte, w*h*4)
		}
		p.dev.ReadPixels(w, h, buf)
		writeErr = sink.WriteFrame(buf)
		next.Present()
	})

	timeStep := 1.0 / float64(fps)
	for i := 0; i < frames; i++ {
		if err := p.RenderFrame(float64(i) * timeStep); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if writeErr != nil {
			return fmt.Errorf("failed to write frame %d: %w", i, writeErr)
		}
		if onFrame != nil {
			onFrame(i)
		}
	}
	return nil
}

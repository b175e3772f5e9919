package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/nightvision/glcore"
	"github.com/richinsley/nightvision/glfwcontext"
	"github.com/richinsley/nightvision/noise"
	"github.com/richinsley/nightvision/options"
	"github.com/richinsley/nightvision/recorder"
	"github.com/richinsley/nightvision/renderer"
	"github.com/richinsley/nightvision/shader"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

func init() {
	runtime.LockOSThread()
}

// inertKeys are bound but do nothing yet.
var inertKeys = []glfw.Key{
	glfw.KeyP, glfw.KeyUp, glfw.KeyDown, glfw.KeyLeft, glfw.KeyRight,
	glfw.KeyDelete, glfw.KeyPageDown, glfw.KeyHome,
	glfw.KeyZ, glfw.KeyQ, glfw.KeyS, glfw.KeyD, glfw.KeyA, glfw.KeyE,
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

func dumpNoise(opts *options.Options) error {
	tex, err := noise.Generate(float32(opts.Noise.Frequency), float32(opts.Noise.Persistence),
		opts.Noise.Size, opts.Noise.Size, opts.Noise.Periodic)
	if err != nil {
		return err
	}
	f, err := os.Create(opts.DumpNoise)
	if err != nil {
		return err
	}
	if err := png.Encode(f, tex.Image()); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", opts.DumpNoise, err)
	}
	return f.Close()
}

func run(opts *options.Options) error {
	src, err := shader.Load(opts.VertexShader, opts.FragmentShader)
	if err != nil {
		return err
	}

	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	win, err := glfwcontext.New(opts, !opts.Record.Enabled)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Shutdown()
	win.MakeCurrent()

	dev, err := glcore.New()
	if err != nil {
		return err
	}

	width, height := win.GetFramebufferSize()
	pipeline, err := renderer.NewPipeline(dev, renderer.PresenterFunc(win.EndFrame), renderer.PipelineConfig{
		Width:  width,
		Height: height,
		Shader: src,
		Noise: renderer.NoiseConfig{
			Frequency:   float32(opts.Noise.Frequency),
			Persistence: float32(opts.Noise.Persistence),
			Size:        opts.Noise.Size,
			Periodic:    opts.Noise.Periodic,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create render pipeline: %w", err)
	}
	defer pipeline.Destroy()

	win.SetResizeCallback(pipeline.Resize)
	for _, key := range inertKeys {
		win.RegisterKeyCallback(key, func() {
			zap.S().Debugf("Key %d pressed", key)
		})
	}

	if !opts.Record.Enabled {
		zap.S().Info("Starting interactive render loop...")
		return pipeline.Run(win, opts.FPS)
	}

	zap.S().Info("Starting offscreen render loop...")
	rec, err := recorder.New(recorder.Options{
		Output:     opts.Record.OutputFile,
		Width:      width,
		Height:     height,
		FPS:        opts.FPS,
		Codec:      opts.Record.Codec,
		FFmpegPath: opts.Record.FFMPEGPath,
	})
	if err != nil {
		return err
	}

	frames := opts.RecordFrames()
	bar := progressbar.Default(int64(frames), "recording")
	recordErr := pipeline.Record(rec, opts.FPS, frames, func(int) {
		bar.Add(1)
	})
	bar.Finish()
	if closeErr := rec.Close(); recordErr == nil {
		recordErr = closeErr
	}
	if recordErr != nil {
		return recordErr
	}
	zap.S().Infof("Successfully rendered to %s", opts.Record.OutputFile)
	return nil
}

func main() {
	opts, err := options.Parse(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid options: %v\n", err)
		os.Exit(2)
	}
	if opts.Help {
		return
	}

	logger, err := newLogger(opts.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if opts.DumpNoise != "" {
		if err := dumpNoise(opts); err != nil {
			zap.S().Fatalf("Failed to dump noise texture: %v", err)
		}
		zap.S().Infof("Wrote noise texture to %s", opts.DumpNoise)
		return
	}

	if err := run(opts); err != nil {
		zap.S().Fatalf("Night vision renderer failed: %v", err)
	}
}

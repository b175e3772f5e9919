// Package recorder pipes rendered frames into an ffmpeg process.
package recorder

import (
	"fmt"
	"io"
	"runtime"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// Options describes the output video.
type Options struct {
	Output     string
	Width      int
	Height     int
	FPS        int
	Codec      string // "h264" or "hevc"
	FFmpegPath string
}

// Recorder feeds raw RGBA frames to ffmpeg over a pipe.
type Recorder struct {
	opts       Options
	pipeWriter *io.PipeWriter
	errc       chan error
	frames     int64
}

// New starts ffmpeg and returns a Recorder ready for frames.
func New(opts Options) (*Recorder, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, fmt.Errorf("invalid recording geometry %dx%d at %d fps", opts.Width, opts.Height, opts.FPS)
	}
	if opts.Output == "" {
		return nil, fmt.Errorf("no output file for recording")
	}

	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := getArgs(opts)

	ffmpegCmd := ffmpeg.Input("pipe:", inputArgs).
		Output(opts.Output, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if opts.FFmpegPath != "" {
		ffmpegCmd = ffmpegCmd.SetFfmpegPath(opts.FFmpegPath)
	}

	r := &Recorder{
		opts:       opts,
		pipeWriter: pipeWriter,
		errc:       make(chan error, 1),
	}
	go func() {
		err := ffmpegCmd.Run()
		pipeReader.CloseWithError(io.ErrClosedPipe)
		r.errc <- err
	}()
	zap.S().Infof("Recording %dx%d at %d fps to %s", opts.Width, opts.Height, opts.FPS, opts.Output)
	return r, nil
}

// getArgs builds the ffmpeg arguments. GL reads rows bottom-up, so the
// input is flipped on the way in.
func getArgs(opts Options) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"framerate": opts.FPS,
	}

	outputArgs = ffmpeg.KwArgs{
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
	}

	switch runtime.GOOS {
	case "darwin":
		if opts.Codec == "hevc" {
			outputArgs["c:v"] = "hevc_videotoolbox"
			outputArgs["tag:v"] = "hvc1"
		} else {
			outputArgs["c:v"] = "h264_videotoolbox"
		}
		outputArgs["b:v"] = "25M"
	default:
		if opts.Codec == "hevc" {
			outputArgs["c:v"] = "libx265"
		} else {
			outputArgs["c:v"] = "libx264"
		}
		outputArgs["crf"] = "18"
	}
	return inputArgs, outputArgs
}

// WriteFrame sends one bottom-up RGBA frame to ffmpeg.
func (r *Recorder) WriteFrame(pixels []byte) error {
	if want := r.opts.Width * r.opts.Height * 4; len(pixels) != want {
		return fmt.Errorf("frame has %d bytes, want %d for %dx%d", len(pixels), want, r.opts.Width, r.opts.Height)
	}
	if _, err := r.pipeWriter.Write(pixels); err != nil {
		return fmt.Errorf("failed to write frame %d to ffmpeg: %w", r.frames, err)
	}
	r.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (r *Recorder) Frames() int64 { return r.frames }

// Close ends the input stream and waits for ffmpeg to finish.
func (r *Recorder) Close() error {
	r.pipeWriter.Close()
	if err := <-r.errc; err != nil {
		return fmt.Errorf("ffmpeg exited with error: %w", err)
	}
	zap.S().Infof("Recorded %d frames to %s", r.frames, r.opts.Output)
	return nil
}

// Package options gathers the nightvision configuration from defaults, an
// optional YAML file and command-line flags, in that order of precedence.
package options

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type NoiseOptions struct {
	Frequency   float64 `yaml:"frequency"`
	Persistence float64 `yaml:"persistence"`
	Size        int     `yaml:"size"`
	Periodic    bool    `yaml:"periodic"`
}

type RecordOptions struct {
	Enabled    bool    `yaml:"enabled"`
	OutputFile string  `yaml:"output"`
	Duration   float64 `yaml:"duration"`
	Codec      string  `yaml:"codec"`
	FFMPEGPath string  `yaml:"ffmpeg"`
}

type Options struct {
	Width          int           `yaml:"width"`
	Height         int           `yaml:"height"`
	FPS            int           `yaml:"fps"`
	Title          string        `yaml:"title"`
	VertexShader   string        `yaml:"vertex_shader"`
	FragmentShader string        `yaml:"fragment_shader"`
	DumpNoise      string        `yaml:"dump_noise"`
	Debug          bool          `yaml:"debug"`
	Noise          NoiseOptions  `yaml:"noise"`
	Record         RecordOptions `yaml:"record"`

	ConfigFile string `yaml:"-"`
	Help       bool   `yaml:"-"`
}

// Default returns the stock settings: an 800x600 window at
// 60 fps and a 512x512 tileable noise texture.
func Default() *Options {
	return &Options{
		Width:  800,
		Height: 600,
		FPS:    60,
		Title:  "Night Vision",
		Noise: NoiseOptions{
			Frequency:   200,
			Persistence: 0.5,
			Size:        512,
			Periodic:    true,
		},
		Record: RecordOptions{
			OutputFile: "output.mp4",
			Duration:   10,
			Codec:      "h264",
		},
	}
}

// Parse builds Options from args (without the program name). A -config file
// is applied over the defaults before the remaining flags.
func Parse(args []string, output io.Writer) (*Options, error) {
	opts := Default()

	if path := configPath(args); path != "" {
		if err := opts.LoadFile(path); err != nil {
			return nil, err
		}
		opts.ConfigFile = path
	}

	fs := flag.NewFlagSet("nightvision", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.ConfigFile, "config", opts.ConfigFile, "YAML configuration file")
	fs.BoolVar(&opts.Help, "help", false, "Show help message")
	fs.IntVar(&opts.Width, "width", opts.Width, "Window width")
	fs.IntVar(&opts.Height, "height", opts.Height, "Window height")
	fs.IntVar(&opts.FPS, "fps", opts.FPS, "Frames per second")
	fs.StringVar(&opts.Title, "title", opts.Title, "Window title")
	fs.StringVar(&opts.VertexShader, "vertex", opts.VertexShader, "Vertex shader file (built-in if empty)")
	fs.StringVar(&opts.FragmentShader, "fragment", opts.FragmentShader, "Fragment shader file (built-in if empty)")
	fs.StringVar(&opts.DumpNoise, "dump-noise", opts.DumpNoise, "Write the noise texture to this PNG file and exit")
	fs.BoolVar(&opts.Debug, "debug", opts.Debug, "Enable debug logging")
	fs.Float64Var(&opts.Noise.Frequency, "noise-frequency", opts.Noise.Frequency, "Base frequency of the noise texture")
	fs.Float64Var(&opts.Noise.Persistence, "noise-persistence", opts.Noise.Persistence, "Amplitude decay per noise octave")
	fs.IntVar(&opts.Noise.Size, "noise-size", opts.Noise.Size, "Noise texture width and height")
	fs.BoolVar(&opts.Noise.Periodic, "noise-periodic", opts.Noise.Periodic, "Generate tileable noise")
	fs.BoolVar(&opts.Record.Enabled, "record", opts.Record.Enabled, "Render headless and record to a video file")
	fs.StringVar(&opts.Record.OutputFile, "output", opts.Record.OutputFile, "Output file name for recording")
	fs.Float64Var(&opts.Record.Duration, "duration", opts.Record.Duration, "Duration to record in seconds")
	fs.StringVar(&opts.Record.Codec, "codec", opts.Record.Codec, "Video codec (h264 or hevc)")
	fs.StringVar(&opts.Record.FFMPEGPath, "ffmpeg", opts.Record.FFMPEGPath, "Path to ffmpeg executable")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.Help {
		fmt.Fprintln(output, "Night vision renderer")
		fs.PrintDefaults()
		return opts, nil
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// LoadFile overlays the YAML file at path onto o.
func (o *Options) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports every out-of-range setting at once.
func (o *Options) Validate() error {
	var errs []error
	if o.Width <= 0 || o.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", o.Width, o.Height))
	}
	if o.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps %d must be positive", o.FPS))
	}
	if o.Noise.Size <= 1 {
		errs = append(errs, fmt.Errorf("noise size %d must be greater than 1", o.Noise.Size))
	}
	if o.Noise.Frequency <= 0 {
		errs = append(errs, fmt.Errorf("noise frequency %g must be positive", o.Noise.Frequency))
	}
	if o.Record.Enabled {
		if o.Record.Duration <= 0 {
			errs = append(errs, fmt.Errorf("record duration %g must be positive", o.Record.Duration))
		}
		switch o.Record.Codec {
		case "h264", "hevc":
		default:
			errs = append(errs, fmt.Errorf("unsupported codec %q", o.Record.Codec))
		}
	}
	return errors.Join(errs...)
}

// RecordFrames is the number of frames a recording of Duration seconds
// contains.
func (o *Options) RecordFrames() int {
	return int(o.Record.Duration * float64(o.FPS))
}

// configPath finds the -config value ahead of full flag parsing.
func configPath(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		name := strings.TrimLeft(a, "-")
		if len(name) == len(a) {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

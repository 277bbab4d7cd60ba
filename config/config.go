package config

import (
	"fmt"
	"os"

	"pixelshell/source"

	"gopkg.in/yaml.v3"
)

// Config is the factory and runner configuration.
type Config struct {
	AssetsDir   string       `yaml:"assets_dir"`  // project directories live here
	DistDir     string       `yaml:"dist_dir"`    // patched runners are written here
	Threshold   uint8        `yaml:"threshold"`   // gray level at or above which a pixel is on
	DefaultFPS  uint16       `yaml:"default_fps"` // used when ffprobe cannot tell
	Resolutions []string     `yaml:"resolutions"` // 720p, 1080p, 1440p, 2160p
	Jobs        int          `yaml:"jobs"`        // resolutions converted in parallel
	Compress    bool         `yaml:"compress"`    // write .bin.zst containers
	LogLevel    string       `yaml:"log_level"`
	FFmpeg      FFmpegConfig `yaml:"ffmpeg"`
	Player      PlayerConfig `yaml:"player"`
	Debug       DebugConfig  `yaml:"debug"`
}

// FFmpegConfig contains transcoder settings
type FFmpegConfig struct {
	Path      string `yaml:"path"`
	ProbePath string `yaml:"probe_path"`
	GPU       bool   `yaml:"gpu"`        // -hwaccel cuda
	Filters   string `yaml:"filters"`    // appended after scale and gray conversion
	ExtraArgs string `yaml:"extra_args"` // shell-quoted output options
}

// PlayerConfig contains runner settings
type PlayerConfig struct {
	Volume      float64 `yaml:"volume"` // 0..1
	TPS         int     `yaml:"tps"`    // window updates per second
	Overlay     bool    `yaml:"overlay"`
	Headless    bool    `yaml:"headless"`
	HeadlessHz  int     `yaml:"headless_hz"`
	MaxFailures int     `yaml:"max_failures"`
	Width       int     `yaml:"width"`  // 0 = monitor size
	Height      int     `yaml:"height"` // 0 = monitor size
}

// DebugConfig contains debug viewer settings
type DebugConfig struct {
	HUD     bool   `yaml:"hud"`
	Outline string `yaml:"outline"` // #rrggbb, empty for none
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AssetsDir:   "assets",
		DistDir:     "dist",
		Threshold:   127,
		DefaultFPS:  30,
		Resolutions: []string{"1080p"},
		Jobs:        1,
		LogLevel:    "info",
		FFmpeg: FFmpegConfig{
			Path:      "ffmpeg",
			ProbePath: "ffprobe",
			Filters:   source.DefaultFilters,
		},
		Player: PlayerConfig{
			Volume:      0.2,
			TPS:         60,
			Overlay:     true,
			HeadlessHz:  60,
			MaxFailures: 30,
		},
		Debug: DebugConfig{
			HUD:     true,
			Outline: "#ff3030",
		},
	}
}

// Load reads a YAML configuration file over the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

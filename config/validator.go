package config

import (
	"fmt"
	"image/color"

	"pixelshell/source"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
)

// Validate checks the configuration and fills in zero values that have a
// sensible default.
func Validate(cfg *Config) error {
	if cfg.DefaultFPS == 0 {
		return fmt.Errorf("default_fps must be > 0")
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = 1
	}
	if len(cfg.Resolutions) == 0 {
		return fmt.Errorf("resolutions must not be empty")
	}
	if _, err := cfg.ResolutionList(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if _, err := shlex.Split(cfg.FFmpeg.ExtraArgs); err != nil {
		return fmt.Errorf("ffmpeg.extra_args: %w", err)
	}

	if cfg.Player.Volume < 0 || cfg.Player.Volume > 1 {
		return fmt.Errorf("player.volume must be within 0..1, got %v", cfg.Player.Volume)
	}
	if cfg.Player.TPS <= 0 {
		cfg.Player.TPS = 60
	}
	if cfg.Player.HeadlessHz <= 0 {
		cfg.Player.HeadlessHz = 60
	}
	if cfg.Player.MaxFailures <= 0 {
		cfg.Player.MaxFailures = 30
	}
	if cfg.Player.Width < 0 || cfg.Player.Height < 0 {
		return fmt.Errorf("player size must not be negative")
	}

	if _, err := cfg.Debug.OutlineColor(); err != nil {
		return err
	}
	return nil
}

// Source returns the transcoder settings with extra_args split into words.
func (c FFmpegConfig) Source() (source.FFmpegConfig, error) {
	extra, err := shlex.Split(c.ExtraArgs)
	if err != nil {
		return source.FFmpegConfig{}, fmt.Errorf("ffmpeg.extra_args: %w", err)
	}
	return source.FFmpegConfig{
		Path:      c.Path,
		GPU:       c.GPU,
		Filters:   c.Filters,
		ExtraArgs: extra,
	}, nil
}

// OutlineColor parses the outline color. An empty value is the zero color.
func (d DebugConfig) OutlineColor() (color.RGBA, error) {
	if d.Outline == "" {
		return color.RGBA{}, nil
	}
	var r, g, b uint8
	if len(d.Outline) != 7 || d.Outline[0] != '#' {
		return color.RGBA{}, fmt.Errorf("debug.outline must be #rrggbb, got %q", d.Outline)
	}
	if _, err := fmt.Sscanf(d.Outline[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("debug.outline must be #rrggbb, got %q", d.Outline)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

// ApplyLogLevel sets the global logrus level.
func (c *Config) ApplyLogLevel() error {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	return nil
}

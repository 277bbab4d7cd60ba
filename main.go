// Command pixelshell plays the rectangle video appended to its own
// executable, or the files given with -video and -audio.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"pixelshell/app"
	"pixelshell/config"
	"pixelshell/hal"
	"pixelshell/internal/buildinfo"
	"pixelshell/payload"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		cfgPath  = flag.String("config", "", "YAML configuration file.")
		video    = flag.String("video", "", "Container to play instead of the embedded one.")
		audio    = flag.String("audio", "", "Sound track for -video.")
		width    = flag.Int("width", 0, "Native width of -video (0 = extent of the rects).")
		height   = flag.Int("height", 0, "Native height of -video.")
		headless = flag.Bool("headless", false, "Run without a window.")
		hz       = flag.Int("hz", 0, "Tick rate in headless mode (0 = config).")
		ticks    = flag.Uint64("ticks", 0, "Stop after N ticks in headless mode (0 = run to the end).")
		windowed = flag.Bool("windowed", false, "Open a normal window instead of the overlay.")
		version  = flag.Bool("version", false, "Print the version and exit.")
	)
	flag.Parse()

	if *version {
		fmt.Println(buildinfo.String("pixelshell"))
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatalf("config: %v", err)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if err := cfg.ApplyLogLevel(); err != nil {
		fatalf("log level: %v", err)
	}

	assets, err := loadAssets(*video, *audio, *width, *height)
	if err != nil {
		fatalf("%v", err)
	}

	log := logrus.WithFields(logrus.Fields{
		"component": "pixelshell",
		"version":   buildinfo.Short(),
	})
	appCfg := app.Config{
		Video:       assets.Video,
		Audio:       assets.Audio,
		Width:       int(assets.Width),
		Height:      int(assets.Height),
		Volume:      cfg.Player.Volume,
		MaxFailures: cfg.Player.MaxFailures,
	}
	newApp := func(h hal.HAL) func() error { return app.New(h, appCfg) }

	if *headless || cfg.Player.Headless {
		hcfg := hal.HeadlessConfig{
			Hz:     cfg.Player.HeadlessHz,
			Ticks:  *ticks,
			Width:  cfg.Player.Width,
			Height: cfg.Player.Height,
			Logger: log,
		}
		if *hz > 0 {
			hcfg.Hz = *hz
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, hcfg); err != nil && !errors.Is(err, context.Canceled) {
			fatalf("%v", err)
		}
		return
	}

	if err := hal.RunWindow(hal.WindowConfig{
		Title:   "Pixel Shell " + buildinfo.Short(),
		Width:   cfg.Player.Width,
		Height:  cfg.Player.Height,
		TPS:     cfg.Player.TPS,
		Overlay: cfg.Player.Overlay && !*windowed,
		Logger:  log,
	}, newApp); err != nil {
		fatalf("%v", err)
	}
}

// loadAssets reads -video/-audio when given, otherwise the payload appended
// to this executable.
func loadAssets(video, audio string, width, height int) (*payload.Assets, error) {
	if video == "" {
		a, err := payload.LoadSelf()
		if errors.Is(err, payload.ErrNotPatched) {
			return nil, errors.New("no embedded video: build this runner with psfactory or pass -video")
		}
		return a, err
	}

	a := &payload.Assets{Width: uint16(width), Height: uint16(height)}
	var err error
	if a.Video, err = os.ReadFile(video); err != nil {
		return nil, err
	}
	if audio != "" {
		if a.Audio, err = os.ReadFile(audio); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

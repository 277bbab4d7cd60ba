package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"pixelshell/app"
	"pixelshell/codec"
	"pixelshell/config"
	"pixelshell/factory"
	"pixelshell/hal"
	"pixelshell/internal/buildinfo"

	"github.com/sirupsen/logrus"
)

func runConvert(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	res := fs.String("res", "", "Comma-separated resolutions (default: config resolutions).")
	jobs := fs.Int("jobs", cfg.Jobs, "Resolutions converted in parallel.")
	gpu := fs.Bool("gpu", cfg.FFmpeg.GPU, "Decode with -hwaccel cuda.")
	compress := fs.Bool("compress", cfg.Compress, "Write zstd-compressed containers.")
	all := fs.Bool("all", false, "Convert every project in the assets dir.")
	_ = fs.Parse(args)

	if *res != "" {
		cfg.Resolutions = splitList(*res)
	}
	cfg.Jobs = *jobs
	cfg.FFmpeg.GPU = *gpu
	cfg.Compress = *compress
	if err := config.Validate(cfg); err != nil {
		return err
	}

	names, err := projectArgs(cfg, fs.Args(), *all)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conv, err := factory.NewConverter(cfg)
	if err != nil {
		return err
	}
	for _, name := range names {
		p, err := factory.OpenProject(cfg.AssetsDir, name)
		if err != nil {
			return err
		}
		results, err := conv.Convert(ctx, p)
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Printf("%s\t%s\t%d frames @ %d fps\t%d rects\t%s\n",
				name, r.Resolution.Name, r.Frames, r.FPS, r.Rects, r.Path)
		}
	}
	return nil
}

func runDebug(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("debug", flag.ExitOnError)
	resName := fs.String("res", cfg.Resolutions[0], "Resolution to view; also the window size.")
	file := fs.String("file", "", "Container to view instead of a project's.")
	headless := fs.Bool("headless", false, "Run without a window.")
	ticks := fs.Uint64("ticks", 0, "Stop after N frames in headless mode (0 = whole video).")
	hud := fs.Bool("hud", cfg.Debug.HUD, "Show the frame counter.")
	_ = fs.Parse(args)

	res, err := config.LookupResolution(*resName)
	if err != nil {
		return err
	}
	path := *file
	if path == "" {
		if fs.NArg() != 1 {
			return errors.New("need exactly one project or -file")
		}
		p, err := factory.OpenProject(cfg.AssetsDir, fs.Arg(0))
		if err != nil {
			return err
		}
		if path, err = p.Container(res); err != nil {
			return err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	data, err := codec.ReadContainer(f)
	f.Close()
	if err != nil {
		return err
	}
	s, err := codec.Validate(data)
	if err != nil {
		return err
	}
	outline, err := cfg.Debug.OutlineColor()
	if err != nil {
		return err
	}

	log := logrus.WithFields(logrus.Fields{
		"component": "debug",
		"file":      filepath.Base(path),
	})
	log.WithFields(logrus.Fields{
		"function": "runDebug",
		"fps":      s.FPS,
		"frames":   s.Frames,
		"duration": s.Duration().String(),
	}).Info("Viewing container")

	newApp := func(h hal.HAL) func() error {
		return app.NewViewer(h, app.ViewerConfig{Video: data, HUD: *hud, Outline: outline})
	}
	if *headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err := hal.RunHeadless(ctx, newApp, hal.HeadlessConfig{
			Hz:     int(s.FPS),
			Ticks:  *ticks,
			Width:  res.Width,
			Height: res.Height,
			Logger: log,
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return hal.RunWindow(hal.WindowConfig{
		Title:  fmt.Sprintf("psfactory %s - %s", buildinfo.Short(), filepath.Base(path)),
		Width:  res.Width,
		Height: res.Height,
		TPS:    int(s.FPS),
		Logger: log,
	}, newApp)
}

func runBuild(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	res := fs.String("res", "", "Comma-separated resolutions (default: config resolutions).")
	runner := fs.String("runner", defaultRunner(), "Runner executable to patch.")
	dist := fs.String("dist", cfg.DistDir, "Output directory.")
	all := fs.Bool("all", false, "Build every project in the assets dir.")
	_ = fs.Parse(args)

	if *res != "" {
		cfg.Resolutions = splitList(*res)
	}
	resolutions, err := cfg.ResolutionList()
	if err != nil {
		return err
	}
	names, err := projectArgs(cfg, fs.Args(), *all)
	if err != nil {
		return err
	}

	for _, name := range names {
		p, err := factory.OpenProject(cfg.AssetsDir, name)
		if err != nil {
			return err
		}
		for _, r := range resolutions {
			out, err := factory.Build(p, r, *runner, *dist, nil)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\t%s\n", name, r.Name, out.Path)
		}
	}
	return nil
}

func runInspect(args []string) error {
	if len(args) == 0 {
		return errors.New("need at least one container")
	}
	for i, path := range args {
		if i > 0 {
			fmt.Println()
		}
		s, err := factory.Inspect(path)
		if err != nil {
			return err
		}
		if err := factory.WriteSummary(os.Stdout, path, s); err != nil {
			return err
		}
	}
	return nil
}

func runList(cfg *config.Config) error {
	names, err := factory.ListProjects(cfg.AssetsDir)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROJECT\tVIDEO\tAUDIO\tCONTAINERS")
	for _, name := range names {
		p := factory.Project{Name: name, Dir: filepath.Join(cfg.AssetsDir, name)}
		video := "-"
		if v, err := p.Video(); err == nil {
			video = filepath.Base(v)
		}
		audio := "-"
		if a := p.Audio(); a != "" {
			audio = filepath.Base(a)
		}
		containers, err := p.Containers()
		if err != nil {
			return err
		}
		var modified string
		if len(containers) > 0 {
			if st, err := os.Stat(containers[len(containers)-1]); err == nil {
				modified = " (" + st.ModTime().Format(time.DateOnly) + ")"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d%s\n", name, video, audio, len(containers), modified)
	}
	return tw.Flush()
}

func projectArgs(cfg *config.Config, args []string, all bool) ([]string, error) {
	if all {
		return factory.ListProjects(cfg.AssetsDir)
	}
	if len(args) == 0 {
		return nil, errors.New("no project given (or use -all)")
	}
	return args, nil
}

// defaultRunner is the pixelshell executable next to psfactory.
func defaultRunner() string {
	name := "pixelshell"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	return filepath.Join(filepath.Dir(exe), name)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package factory

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"pixelshell/codec"
	"pixelshell/config"
	"pixelshell/source"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const progressEvery = 60

// Source yields gray frames until io.EOF. *source.Transcoder implements it.
type Source interface {
	Next() ([]byte, error)
	Close() error
}

// OpenFunc starts a raster source for input scaled to width x height.
type OpenFunc func(ctx context.Context, input string, width, height int) (Source, error)

// ProbeFunc detects the frame rate of input.
type ProbeFunc func(ctx context.Context, input string) (uint16, error)

// Result describes one written container.
type Result struct {
	Resolution config.Resolution
	Path       string
	FPS        uint16
	Frames     int
	Rects      int
	Elapsed    time.Duration
}

// Converter encodes a project video at several resolutions.
type Converter struct {
	cfg   *config.Config
	open  OpenFunc
	probe ProbeFunc
	log   *logrus.Entry
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithOpen replaces the ffmpeg source.
func WithOpen(open OpenFunc) ConverterOption {
	return func(c *Converter) { c.open = open }
}

// WithProbe replaces ffprobe.
func WithProbe(probe ProbeFunc) ConverterOption {
	return func(c *Converter) { c.probe = probe }
}

func WithLogger(log *logrus.Entry) ConverterOption {
	return func(c *Converter) { c.log = log }
}

// NewConverter returns a Converter that runs ffmpeg and ffprobe as
// configured in cfg.
func NewConverter(cfg *config.Config, opts ...ConverterOption) (*Converter, error) {
	ff, err := cfg.FFmpeg.Source()
	if err != nil {
		return nil, err
	}
	c := &Converter{cfg: cfg}
	c.log = logrus.WithField("component", "factory")
	c.open = func(ctx context.Context, input string, w, h int) (Source, error) {
		return source.StartFFmpeg(ctx, ff, input, w, h, c.log)
	}
	c.probe = func(ctx context.Context, input string) (uint16, error) {
		return source.ProbeFPS(ctx, cfg.FFmpeg.ProbePath, input)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Convert writes one container per configured resolution. Up to cfg.Jobs
// resolutions are encoded at the same time; the first failure cancels the
// rest.
func (c *Converter) Convert(ctx context.Context, p Project) ([]Result, error) {
	input, err := p.Video()
	if err != nil {
		return nil, err
	}
	resolutions, err := c.cfg.ResolutionList()
	if err != nil {
		return nil, err
	}

	fps, err := c.probe(ctx, input)
	if err != nil {
		fps = c.cfg.DefaultFPS
		c.log.WithFields(logrus.Fields{
			"function": "Convert",
			"input":    input,
			"fps":      fps,
			"error":    err.Error(),
		}).Warn("Frame rate detection failed, using default")
	}

	c.log.WithFields(logrus.Fields{
		"function":    "Convert",
		"project":     p.Name,
		"input":       input,
		"fps":         fps,
		"resolutions": len(resolutions),
		"jobs":        c.cfg.Jobs,
	}).Info("Converting project")

	results := make([]Result, len(resolutions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Jobs)
	for i, res := range resolutions {
		i, res := i, res
		g.Go(func() error {
			r, err := c.convertOne(gctx, input, p.ContainerPath(res, c.cfg.Compress), res, fps)
			if err != nil {
				return fmt.Errorf("factory: %s %s: %w", p.Name, res.Name, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Converter) convertOne(ctx context.Context, input, out string, res config.Resolution, fps uint16) (Result, error) {
	start := time.Now()
	log := c.log.WithFields(logrus.Fields{
		"function":   "convertOne",
		"resolution": res.Name,
	})
	log.WithFields(logrus.Fields{
		"width":  res.Width,
		"height": res.Height,
		"output": out,
	}).Info("Processing variant")

	src, err := c.open(ctx, input, res.Width, res.Height)
	if err != nil {
		return Result{}, err
	}
	defer src.Close()

	enc, err := codec.NewEncoder(res.Width, res.Height, c.cfg.Threshold)
	if err != nil {
		return Result{}, err
	}

	// A failed run must not leave a truncated container under the final name.
	tmp, err := os.CreateTemp(filepath.Dir(out), filepath.Base(out)+".*.tmp")
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(tmp.Name())

	var dst io.Writer = tmp
	var zw io.WriteCloser
	if c.cfg.Compress {
		zw, err = codec.NewCompressedWriter(tmp)
		if err != nil {
			tmp.Close()
			return Result{}, err
		}
		dst = zw
	}

	frames := &encodedFrames{ctx: ctx, src: src, enc: enc, onFrame: func(n int) {
		if n%progressEvery == 0 {
			log.WithField("frames", n).Debug("Progress")
		}
	}}
	n, err := codec.WriteStream(dst, fps, frames)
	if err == nil && zw != nil {
		err = zw.Close()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Result{}, err
	}
	if err := src.Close(); err != nil {
		return Result{}, err
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		return Result{}, err
	}

	r := Result{
		Resolution: res,
		Path:       out,
		FPS:        fps,
		Frames:     n,
		Rects:      frames.rects,
		Elapsed:    time.Since(start),
	}
	log.WithFields(logrus.Fields{
		"frames":  r.Frames,
		"rects":   r.Rects,
		"elapsed": r.Elapsed.Round(time.Millisecond).String(),
	}).Info("Variant done")
	return r, nil
}

// encodedFrames adapts a raster Source to codec.FrameSource.
type encodedFrames struct {
	ctx     context.Context
	src     Source
	enc     *codec.Encoder
	frames  int
	rects   int
	onFrame func(n int)
}

func (f *encodedFrames) NextFrame() ([]codec.Rect, error) {
	if err := f.ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := f.src.Next()
	if err != nil {
		return nil, err
	}
	rects, err := f.enc.Encode(raw)
	if err != nil {
		return nil, err
	}
	f.frames++
	f.rects += len(rects)
	if f.onFrame != nil {
		f.onFrame(f.frames)
	}
	return rects, nil
}

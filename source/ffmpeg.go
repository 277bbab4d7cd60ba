package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultFilters follow the scale and gray conversion. They blur away
// single-pixel noise and push every pixel to black or white.
const DefaultFilters = "gblur=sigma=1.0:steps=1,eq=contrast=1000:saturation=0"

// FFmpegConfig describes how to run the transcoder.
type FFmpegConfig struct {
	Path string
	// GPU enables CUDA hardware decoding.
	GPU bool
	// Filters are appended to "scale=W:H,format=gray".
	Filters string
	// ExtraArgs are output options inserted before the raw video output.
	ExtraArgs []string
}

// FFmpegArgs returns the ffmpeg command line that writes input as raw gray
// frames of width x height to stdout.
func FFmpegArgs(cfg FFmpegConfig, input string, width, height int) []string {
	vf := "scale=" + strconv.Itoa(width) + ":" + strconv.Itoa(height) + ",format=gray"
	if f := strings.Trim(cfg.Filters, ", "); f != "" {
		vf += "," + f
	}

	args := []string{"-hide_banner", "-nostdin", "-loglevel", "error"}
	if cfg.GPU {
		args = append(args, "-hwaccel", "cuda")
	}
	args = append(args, "-i", input, "-vf", vf)
	args = append(args, cfg.ExtraArgs...)
	return append(args, "-f", "rawvideo", "-pix_fmt", "gray", "-")
}

// Transcoder is a running ffmpeg process. Its frames are read with Next.
type Transcoder struct {
	*RawReader

	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
	log    *logrus.Entry

	once    sync.Once
	waitErr error
}

// StartFFmpeg spawns ffmpeg for input. Cancelling ctx kills the process.
func StartFFmpeg(ctx context.Context, cfg FFmpegConfig, input string, width, height int, log *logrus.Entry) (*Transcoder, error) {
	if cfg.Path == "" {
		cfg.Path = "ffmpeg"
	}
	if log == nil {
		log = logrus.WithField("component", "ffmpeg")
	}

	args := FFmpegArgs(cfg, input, width, height)
	cmd := exec.CommandContext(ctx, cfg.Path, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("source: ffmpeg stdout: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	raw, err := NewRawReader(stdout, width, height)
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("source: start %s: %w", cfg.Path, err)
	}

	log.WithFields(logrus.Fields{
		"function": "StartFFmpeg",
		"input":    input,
		"width":    width,
		"height":   height,
		"gpu":      cfg.GPU,
		"pid":      cmd.Process.Pid,
	}).Debug("Transcoder started")

	return &Transcoder{
		RawReader: raw,
		cmd:       cmd,
		stdout:    stdout,
		stderr:    stderr,
		log:       log,
	}, nil
}

// Wait waits for ffmpeg to exit after its output has been read to the end.
func (t *Transcoder) Wait() error {
	t.once.Do(func() {
		err := t.cmd.Wait()
		if err != nil {
			msg := strings.TrimSpace(t.stderr.String())
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) && msg != "" {
				err = fmt.Errorf("%w: %s", err, lastLine(msg))
			}
			t.waitErr = fmt.Errorf("source: ffmpeg: %w", err)
		}
	})
	return t.waitErr
}

// Close stops reading and reaps the process. It is safe to call after Wait.
func (t *Transcoder) Close() error {
	_ = t.stdout.Close()
	err := t.Wait()
	if err != nil {
		t.log.WithFields(logrus.Fields{
			"function": "Close",
			"error":    err.Error(),
		}).Debug("Transcoder exited with error")
	}
	return err
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

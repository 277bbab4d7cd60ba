package factory

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pixelshell/codec"
	"pixelshell/config"
	"pixelshell/payload"

	"github.com/sirupsen/logrus"
)

// BuildResult describes one patched runner.
type BuildResult struct {
	Path    string
	Footer  payload.Footer
	Summary codec.Summary
}

// Build appends the project's container for res and its sound track to a
// copy of the runner template and writes <distDir>/<project>_<res>[.exe].
//
// The container is validated first; a broken container is never shipped.
func Build(p Project, res config.Resolution, runnerPath, distDir string, log *logrus.Entry) (BuildResult, error) {
	if log == nil {
		log = logrus.WithField("component", "factory")
	}

	containerPath, err := p.Container(res)
	if err != nil {
		return BuildResult{}, err
	}
	video, err := os.ReadFile(containerPath)
	if err != nil {
		return BuildResult{}, err
	}
	raw, err := codec.Decompress(video)
	if err != nil {
		return BuildResult{}, err
	}
	summary, err := codec.Validate(raw)
	if err != nil {
		return BuildResult{}, fmt.Errorf("factory: %s: %w", containerPath, err)
	}

	var audio []byte
	if path := p.Audio(); path != "" {
		if audio, err = os.ReadFile(path); err != nil {
			return BuildResult{}, err
		}
	} else {
		log.WithFields(logrus.Fields{
			"function": "Build",
			"project":  p.Name,
		}).Warn("No sound track, the runner will use the wall clock")
	}

	runner, err := os.ReadFile(runnerPath)
	if err != nil {
		return BuildResult{}, fmt.Errorf("factory: runner template: %w", err)
	}

	if err := os.MkdirAll(distDir, 0o755); err != nil {
		return BuildResult{}, err
	}
	name := fmt.Sprintf("%s_%s", p.Name, res.Name)
	if strings.EqualFold(filepath.Ext(runnerPath), ".exe") {
		name += ".exe"
	}
	out := filepath.Join(distDir, name)

	var buf bytes.Buffer
	footer, err := payload.Build(&buf, runner, payload.Assets{
		Video:  video,
		Audio:  audio,
		Width:  uint16(res.Width),
		Height: uint16(res.Height),
	})
	if err != nil {
		return BuildResult{}, err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o755); err != nil {
		return BuildResult{}, err
	}

	log.WithFields(logrus.Fields{
		"function": "Build",
		"output":   out,
		"frames":   summary.Frames,
		"video":    len(video),
		"audio":    len(audio),
	}).Info("Runner patched")

	return BuildResult{Path: out, Footer: footer, Summary: summary}, nil
}

// Package factory turns project videos into containers and patched runners.
package factory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pixelshell/config"
)

var (
	ErrNoVideo     = errors.New("factory: no video file found")
	ErrNoContainer = errors.New("factory: no container found")
)

var (
	videoExts = []string{"mkv", "mp4", "avi", "mov", "webm"}
	audioExts = []string{"ogg", "wav", "mp3"}
)

// Project is one directory under the assets dir, named after its files:
// <assets>/<name>/<name>.mp4, <name>.ogg, <name>_1080p.bin, ...
type Project struct {
	Name string
	Dir  string
}

// OpenProject returns the project called name below assetsDir.
func OpenProject(assetsDir, name string) (Project, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return Project{}, fmt.Errorf("factory: invalid project name %q", name)
	}
	dir := filepath.Join(assetsDir, name)
	st, err := os.Stat(dir)
	if err != nil {
		return Project{}, fmt.Errorf("factory: project %s: %w", name, err)
	}
	if !st.IsDir() {
		return Project{}, fmt.Errorf("factory: project %s: not a directory", name)
	}
	return Project{Name: name, Dir: dir}, nil
}

// ListProjects returns the names of all project directories, sorted.
func ListProjects(assetsDir string) ([]string, error) {
	entries, err := os.ReadDir(assetsDir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Video returns the first existing <name>.<ext> for the known video types.
func (p Project) Video() (string, error) {
	if path, ok := p.find(videoExts); ok {
		return path, nil
	}
	return "", fmt.Errorf("%w in %s", ErrNoVideo, p.Dir)
}

// Audio returns the sound track, or "" if the project has none.
func (p Project) Audio() string {
	path, _ := p.find(audioExts)
	return path
}

// ContainerPath returns where the container for res is written.
func (p Project) ContainerPath(res config.Resolution, compressed bool) string {
	name := fmt.Sprintf("%s_%s.bin", p.Name, res.Name)
	if compressed {
		name += ".zst"
	}
	return filepath.Join(p.Dir, name)
}

// Container returns the existing container for res, preferring the raw one.
func (p Project) Container(res config.Resolution) (string, error) {
	for _, compressed := range []bool{false, true} {
		path := p.ContainerPath(res, compressed)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w for %s %s (run convert first)", ErrNoContainer, p.Name, res.Name)
}

// Containers lists the existing containers of the project.
func (p Project) Containers() ([]string, error) {
	var out []string
	for _, pattern := range []string{p.Name + "_*.bin", p.Name + "_*.bin.zst"} {
		m, err := filepath.Glob(filepath.Join(p.Dir, pattern))
		if err != nil {
			return nil, err
		}
		out = append(out, m...)
	}
	sort.Strings(out)
	return out, nil
}

func (p Project) find(exts []string) (string, bool) {
	for _, ext := range exts {
		path := filepath.Join(p.Dir, p.Name+"."+ext)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path, true
		}
	}
	return "", false
}

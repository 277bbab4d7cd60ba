package config

import (
	"fmt"
	"sort"
)

// Resolution is a 16:9 output size.
type Resolution struct {
	Name   string
	Width  int
	Height int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d)", r.Name, r.Width, r.Height)
}

var resolutionWidths = map[string]int{
	"720p":  1280,
	"1080p": 1920,
	"1440p": 2560,
	"2160p": 3840,
}

// LookupResolution returns the named resolution. Height is width*9/16.
func LookupResolution(name string) (Resolution, error) {
	w, ok := resolutionWidths[name]
	if !ok {
		return Resolution{}, fmt.Errorf("unknown resolution %q (known: %v)", name, ResolutionNames())
	}
	return Resolution{Name: name, Width: w, Height: w * 9 / 16}, nil
}

// ResolutionNames lists the known resolutions from smallest to largest.
func ResolutionNames() []string {
	names := make([]string, 0, len(resolutionWidths))
	for n := range resolutionWidths {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return resolutionWidths[names[i]] < resolutionWidths[names[j]]
	})
	return names
}

// ResolutionList resolves cfg.Resolutions, dropping duplicates.
func (c *Config) ResolutionList() ([]Resolution, error) {
	seen := make(map[string]bool, len(c.Resolutions))
	out := make([]Resolution, 0, len(c.Resolutions))
	for _, name := range c.Resolutions {
		if seen[name] {
			continue
		}
		seen[name] = true
		r, err := LookupResolution(name)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

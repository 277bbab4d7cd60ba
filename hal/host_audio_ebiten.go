//go:build cgo

package hal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

const audioSampleRate = 44100

// hostAudio plays sound tracks through Ebiten's audio package.
//
// The audio context can only be created once per process.
type hostAudio struct {
	mu  sync.Mutex
	ctx *audio.Context
}

func newHostAudio() *hostAudio {
	return &hostAudio{}
}

func (a *hostAudio) context() *audio.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctx == nil {
		a.ctx = audio.CurrentContext()
		if a.ctx == nil {
			a.ctx = audio.NewContext(audioSampleRate)
		}
	}
	return a.ctx
}

func (a *hostAudio) Play(data []byte, fps uint16, volume float64) (Clock, error) {
	if fps == 0 {
		return nil, errors.New("host audio: zero fps")
	}

	ctx := a.context()
	sr := ctx.SampleRate()
	src := bytes.NewReader(data)

	var stream io.Reader
	var err error
	switch f := sniffAudio(data); f {
	case audioVorbis:
		stream, err = vorbis.DecodeWithSampleRate(sr, src)
	case audioWAV:
		stream, err = wav.DecodeWithSampleRate(sr, src)
	case audioMP3:
		stream, err = mp3.DecodeWithSampleRate(sr, src)
	default:
		return nil, fmt.Errorf("host audio: %w", ErrUnknownAudio)
	}
	if err != nil {
		return nil, fmt.Errorf("host audio: decode: %w", err)
	}

	p, err := ctx.NewPlayer(stream)
	if err != nil {
		return nil, fmt.Errorf("host audio: player: %w", err)
	}
	p.SetVolume(volume)
	p.Play()

	return &audioClock{p: p, fps: fps, lastAt: time.Now()}, nil
}

// audioClock follows the player position while the sound plays and keeps
// counting wall time once it has ended.
type audioClock struct {
	mu      sync.Mutex
	p       *audio.Player
	fps     uint16
	lastPos time.Duration
	lastAt  time.Time
}

func (c *audioClock) Ticks() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.p.IsPlaying() {
		c.lastPos = c.p.Position()
		c.lastAt = now
		return durationTicks(c.lastPos, c.fps), nil
	}
	return durationTicks(c.lastPos+now.Sub(c.lastAt), c.fps), nil
}

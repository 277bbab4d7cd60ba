package hal

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

const (
	defaultWidth  = 1280
	defaultHeight = 720
)

type hostHAL struct {
	log *logrus.Entry
	fb  *hostFramebuffer
	in  *hostInput
	aud Audio
}

func newHost(width, height int, log *logrus.Entry, aud Audio) *hostHAL {
	if width <= 0 || height <= 0 {
		width, height = defaultWidth, defaultHeight
	}
	if log == nil {
		log = logrus.WithField("component", "hal")
	}
	if aud == nil {
		aud = nullAudio{}
	}
	return &hostHAL{
		log: log,
		fb:  newHostFramebuffer(width, height),
		in:  &hostInput{},
		aud: aud,
	}
}

func (h *hostHAL) Logger() *logrus.Entry    { return h.log }
func (h *hostHAL) Framebuffer() Framebuffer { return h.fb }
func (h *hostHAL) Input() Input             { return h.in }
func (h *hostHAL) Audio() Audio             { return h.aud }

type hostInput struct {
	quit atomic.Bool
}

func (in *hostInput) QuitRequested() bool { return in.quit.Load() }

func (in *hostInput) requestQuit() { in.quit.Store(true) }

// nullAudio is used where no sound device is available.
type nullAudio struct{}

func (nullAudio) Play([]byte, uint16, float64) (Clock, error) { return nil, ErrNotImplemented }

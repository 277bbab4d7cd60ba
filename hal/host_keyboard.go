//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var quitKeys = []ebiten.Key{ebiten.KeyEscape, ebiten.KeyQ}

// poll latches a quit request from the window close button or a quit key.
func (in *hostInput) poll() {
	if ebiten.IsWindowBeingClosed() {
		in.requestQuit()
		return
	}
	for _, k := range quitKeys {
		if inpututil.IsKeyJustPressed(k) {
			in.requestQuit()
			return
		}
	}
}

package app

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/sirupsen/logrus"
)

var ErrPanic = errors.New("app: panic")

// recoverPanic turns a panic inside Step into a failure shown on screen.
// The stack goes to the log one line per entry.
func (p *Player) recoverPanic(err *error) {
	v := recover()
	if v == nil {
		return
	}

	entry := p.log.WithFields(logrus.Fields{
		"function": "Step",
		"panic":    fmt.Sprint(v),
	})
	entry.Error("Panic")
	for _, line := range strings.Split(string(debug.Stack()), "\n") {
		if line == "" {
			continue
		}
		entry.Debug(line)
	}

	p.fail(fmt.Errorf("%w: %v", ErrPanic, v))
	*err = p.holdError()
}

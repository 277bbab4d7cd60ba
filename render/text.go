package render

import (
	"fmt"
	"image/color"
	"strings"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

var hudFont = &proggy.TinySZ8pt7b

const (
	fontHeight = 10
	fontOffset = 6
)

// DrawHUD writes one line of text in the top left corner on a dark band.
func DrawHUD(d *Display, text string, fg color.RGBA) {
	_, w := tinyfont.LineWidth(hudFont, text)
	_ = d.FillRectangle(0, 0, int16(w)+4, fontHeight+2, Black)
	tinyfont.WriteLine(d, hudFont, 2, fontOffset+2, text, fg)
}

// Console is a text terminal drawn over the framebuffer. On a display
// smaller than one character cell it discards everything.
type Console struct {
	d    *Display
	term *tinyterm.Terminal
}

func NewConsole(d *Display) *Console {
	_, cw := tinyfont.LineWidth(hudFont, "0")
	if w, h := d.Size(); h < fontHeight || w < int16(cw) {
		return &Console{d: d}
	}
	term := tinyterm.NewTerminal(d)
	term.Configure(&tinyterm.Config{
		Font:       hudFont,
		FontHeight: fontHeight,
		FontOffset: fontOffset,
	})
	return &Console{d: d, term: term}
}

func (c *Console) Write(p []byte) (int, error) {
	if c.term == nil {
		return len(p), nil
	}
	return c.term.Write(p)
}

func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c, format, args...)
}

// Show presents everything written so far.
func (c *Console) Show() error {
	return c.d.Display()
}

// ShowError clears the screen and prints err, one wrapped cause per line.
func (c *Console) ShowError(title string, err error) error {
	w, h := c.d.Size()
	_ = c.d.FillRectangle(0, 0, w, h, Black)
	c.Printf("%s\n", title)
	for _, line := range strings.Split(err.Error(), ": ") {
		c.Printf("  %s\n", line)
	}
	return c.Show()
}

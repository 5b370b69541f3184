package render

import (
	"bytes"
	"fmt"
	"io"
)

// TerminalRenderer turns a framebuffer into truecolor half-block cells.
// Each terminal row shows two framebuffer rows: ▀ with fg=top, bg=bottom.
type TerminalRenderer struct {
	out        io.Writer
	cols, rows int
	buf        bytes.Buffer
}

// NewTerminalRenderer creates a renderer for a cols×rows terminal.
func NewTerminalRenderer(out io.Writer, cols, rows int) *TerminalRenderer {
	return &TerminalRenderer{out: out, cols: cols, rows: rows}
}

// FramebufferSize returns the framebuffer size that fills the terminal.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.cols, t.rows * 2
}

// Render encodes fb into the pending output. Escape sequences are only
// emitted when a color changes along the row.
func (t *TerminalRenderer) Render(fb *Framebuffer) {
	t.buf.Reset()

	for row := 0; row < t.rows && row*2 < fb.Height; row++ {
		fmt.Fprintf(&t.buf, "\x1b[%d;1H", row+1)

		var lastFg, lastBg Color
		first := true
		for col := 0; col < t.cols && col < fb.Width; col++ {
			top := fb.GetPixel(col, row*2)
			bot := fb.GetPixel(col, row*2+1)

			if first || top != lastFg {
				fmt.Fprintf(&t.buf, "\x1b[38;2;%d;%d;%dm", top.R, top.G, top.B)
				lastFg = top
			}
			if first || bot != lastBg {
				fmt.Fprintf(&t.buf, "\x1b[48;2;%d;%d;%dm", bot.R, bot.G, bot.B)
				lastBg = bot
			}
			first = false
			t.buf.WriteString("▀")
		}
		t.buf.WriteString("\x1b[0m")
	}
}

// Flush writes the rendered frame.
func (t *TerminalRenderer) Flush() error {
	_, err := t.out.Write(t.buf.Bytes())
	return err
}

// Package gui is the terminal parameter panel: a lipgloss-styled list of
// toggles, a slider, colour swatches and file pickers driven by the
// keyboard.
package gui

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/objview/internal/param"
)

const (
	// Title heads the panel.
	Title = "OBJ loader"

	angleStep = 5.0
	hueStep   = 15.0
	// listHeight is how many selector entries show at once.
	listHeight = 8
)

// Params are the values the panel edits.
type Params struct {
	VR            *param.Bool
	Background    *param.Color
	UseTexture    *param.Bool
	AutoRotate    *param.Bool
	RotationAngle *param.Float
	Color         *param.Color
	ModelFile     *param.String
	ModelTexture  *param.String
}

type rowKind int

const (
	rowBool rowKind = iota
	rowFloat
	rowColor
	rowButton
)

type row struct {
	kind  rowKind
	label string

	b *param.Bool
	f *param.Float
	c *param.Color

	// Button rows open a selector that sets target.
	sel    *FileSelector
	target *param.String
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5F5F5")).Background(lipgloss.Color("#5A56E0")).Padding(0, 1)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#5A56E0")).Padding(0, 1)
	focusStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD75F"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	buttonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#87D7AF")).Padding(0, 1)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

// Panel is the parameter panel. It is driven from the input goroutine and
// drawn from the render goroutine; callers serialise access.
type Panel struct {
	params Params

	ModelSelector   *FileSelector
	TextureSelector *FileSelector
	// StartDir is where selectors open.
	StartDir string

	open  bool
	focus int
	err   error
}

// NewPanel creates a closed panel over params.
func NewPanel(params Params) *Panel {
	return &Panel{
		params:          params,
		ModelSelector:   &FileSelector{Filter: ExtFilter(".obj", ".gltf", ".glb")},
		TextureSelector: &FileSelector{Filter: ExtFilter(".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp")},
		StartDir:        ".",
	}
}

// Toggle opens or closes the panel. Closing cancels any open selector.
func (p *Panel) Toggle() {
	p.open = !p.open
	if !p.open {
		p.ModelSelector.Cancel()
		p.TextureSelector.Cancel()
	}
}

// IsOpen reports whether the panel is shown.
func (p *Panel) IsOpen() bool { return p.open }

// UsingInput reports whether keyboard input belongs to the panel, in which
// case navigation keys must not move the view.
func (p *Panel) UsingInput() bool { return p.open }

// rows lists what the panel shows right now. Color only appears while
// UseTexture is off.
func (p *Panel) rows() []row {
	rs := []row{
		{kind: rowBool, label: "VR", b: p.params.VR},
		{kind: rowColor, label: "background", c: p.params.Background},
		{kind: rowBool, label: "UseTexture", b: p.params.UseTexture},
		{kind: rowBool, label: "AutoRotate", b: p.params.AutoRotate},
		{kind: rowFloat, label: "RotationAngle", f: p.params.RotationAngle},
	}
	if !p.params.UseTexture.Get() {
		rs = append(rs, row{kind: rowColor, label: "Color", c: p.params.Color})
	}
	return append(rs,
		row{kind: rowButton, label: "Select Model", sel: p.ModelSelector, target: p.params.ModelFile},
		row{kind: rowButton, label: "Select Texture", sel: p.TextureSelector, target: p.params.ModelTexture},
	)
}

// Labels returns the visible row labels, top to bottom.
func (p *Panel) Labels() []string {
	rs := p.rows()
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.label
	}
	return out
}

// Focused returns the label of the focused row.
func (p *Panel) Focused() string {
	rs := p.rows()
	return rs[min(p.focus, len(rs)-1)].label
}

// activeSelector returns the open selector, if any.
func (p *Panel) activeSelector() (*FileSelector, *param.String) {
	switch {
	case p.ModelSelector.IsActive():
		return p.ModelSelector, p.params.ModelFile
	case p.TextureSelector.IsActive():
		return p.TextureSelector, p.params.ModelTexture
	}
	return nil, nil
}

// HandleKey applies a key ("up", "down", "left", "right", "enter",
// "escape") and reports whether the panel used it.
func (p *Panel) HandleKey(key string) bool {
	if !p.open {
		return false
	}
	p.err = nil

	if sel, target := p.activeSelector(); sel != nil {
		switch key {
		case "up":
			sel.Move(-1)
		case "down":
			sel.Move(1)
		case "escape", "left":
			sel.Cancel()
		case "enter":
			path, ok, err := sel.Enter()
			if err != nil {
				p.err = err
			} else if ok {
				target.Set(path)
			}
		default:
			return false
		}
		return true
	}

	rs := p.rows()
	p.focus = min(p.focus, len(rs)-1)
	r := rs[p.focus]

	switch key {
	case "up":
		p.focus = (p.focus - 1 + len(rs)) % len(rs)
	case "down":
		p.focus = (p.focus + 1) % len(rs)
	case "left":
		p.adjust(r, -1)
	case "right":
		p.adjust(r, 1)
	case "enter":
		p.activate(r)
	case "escape":
		p.Toggle()
	default:
		return false
	}
	return true
}

func (p *Panel) adjust(r row, dir float64) {
	switch r.kind {
	case rowBool:
		r.b.Toggle()
	case rowFloat:
		r.f.Set(r.f.Get() + dir*angleStep)
	case rowColor:
		r.c.Set(ShiftHue(r.c.Get(), dir*hueStep))
	}
}

func (p *Panel) activate(r row) {
	switch r.kind {
	case rowBool:
		r.b.Toggle()
	case rowColor:
		r.c.Reset()
	case rowButton:
		if r.sel.IsActive() {
			r.sel.Cancel()
			return
		}
		// Only one selector is open at a time.
		p.ModelSelector.Cancel()
		p.TextureSelector.Cancel()
		p.err = r.sel.Start(p.StartDir)
	}
}

// ShiftHue turns c around the colour wheel by deg. A grey has no hue, so
// it is first given full saturation.
func ShiftHue(c param.RGBA, deg float64) param.RGBA {
	h, s, v := c.Colorful().Hsv()
	if s == 0 {
		s = 1
		if v == 0 {
			v = 1
		}
	}
	h = math.Mod(h+deg+360, 360)
	return param.FromColorful(colorful.Hsv(h, s, v), c.A)
}

// View renders the panel.
func (p *Panel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(Title))
	b.WriteByte('\n')

	rs := p.rows()
	focus := min(p.focus, len(rs)-1)
	for i, r := range rs {
		cursor := "  "
		label := labelStyle.Render(fmt.Sprintf("%-14s", r.label))
		if i == focus {
			cursor = focusStyle.Render("▸ ")
			label = focusStyle.Render(fmt.Sprintf("%-14s", r.label))
		}
		b.WriteString("\n" + cursor + label + " " + p.value(r))
		if r.kind == rowButton && r.sel.IsActive() {
			b.WriteString(selectorView(r.sel))
		}
	}

	if p.err != nil {
		b.WriteString("\n" + errStyle.Render(p.err.Error()))
	}
	b.WriteString("\n" + dimStyle.Render("↑↓ move  ←→ adjust  ⏎ select  g close"))
	return boxStyle.Render(b.String())
}

func (p *Panel) value(r row) string {
	switch r.kind {
	case rowBool:
		if r.b.Get() {
			return "[✓]"
		}
		return "[ ]"
	case rowFloat:
		return slider(r.f.Get(), r.f.Min(), r.f.Max(), 12)
	case rowColor:
		c := r.c.Get()
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render("    ")
		return swatch + " " + dimStyle.Render(c.Hex())
	case rowButton:
		name := filepathBase(r.target.Get())
		return buttonStyle.Render("…") + " " + dimStyle.Render(name)
	}
	return ""
}

func slider(v, lo, hi float64, width int) string {
	frac := 0.0
	if hi > lo {
		frac = (v - lo) / (hi - lo)
	}
	if math.IsNaN(frac) {
		frac = 0
	}
	frac = min(max(frac, 0), 1)
	filled := min(max(int(math.Round(frac*float64(width))), 0), width)
	return "▕" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "▏" + fmt.Sprintf(" %5.1f", v)
}

func selectorView(s *FileSelector) string {
	var b strings.Builder
	b.WriteString("\n    " + dimStyle.Render(s.Dir()))
	entries := s.Entries()
	start := max(0, min(s.Cursor()-listHeight/2, len(entries)-listHeight))
	for i := start; i < len(entries) && i < start+listHeight; i++ {
		e := entries[i]
		name := e.Name
		if e.Dir {
			name += "/"
		}
		if i == s.Cursor() {
			b.WriteString("\n    " + focusStyle.Render("▸ "+name))
		} else {
			b.WriteString("\n      " + labelStyle.Render(name))
		}
	}
	return b.String()
}

func filepathBase(p string) string {
	if p == "" {
		return "none"
	}
	return filepath.Base(p)
}

// Draw writes the panel to w with its top-left corner at (row, col),
// 1-based, using cursor positioning so it overlays the frame.
func (p *Panel) Draw(w io.Writer, row, col int) error {
	if !p.open {
		return nil
	}
	var b strings.Builder
	for i, line := range strings.Split(p.View(), "\n") {
		fmt.Fprintf(&b, "\x1b[%d;%dH%s\x1b[0m", row+i, col, line)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

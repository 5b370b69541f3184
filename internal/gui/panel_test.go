package gui

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/objview/internal/param"
)

func testParams() Params {
	return Params{
		VR:            param.NewBool("VR", "", false),
		Background:    param.NewColor("background", "", param.RGBA{A: 1}),
		UseTexture:    param.NewBool("UseTexture", "", true),
		AutoRotate:    param.NewBool("AutoRotate", "", false),
		RotationAngle: param.NewFloat("RotationAngle", "", 0, 0, 360),
		Color:         param.NewColor("Color", "", param.White),
		ModelFile:     param.NewString("ModelFile", "", ""),
		ModelTexture:  param.NewString("ModelTexture", "", ""),
	}
}

func openPanel(t *testing.T) (*Panel, Params) {
	t.Helper()
	params := testParams()
	p := NewPanel(params)
	p.Toggle()
	require.True(t, p.IsOpen())
	return p, params
}

// focusOn moves down until label has focus.
func focusOn(t *testing.T, p *Panel, label string) {
	t.Helper()
	for range len(p.Labels()) {
		if p.Focused() == label {
			return
		}
		p.HandleKey("down")
	}
	t.Fatalf("no row %q in %v", label, p.Labels())
}

func TestColorRowFollowsUseTexture(t *testing.T) {
	p, params := openPanel(t)
	assert.NotContains(t, p.Labels(), "Color")

	params.UseTexture.Set(false)
	assert.Equal(t, []string{
		"VR", "background", "UseTexture", "AutoRotate", "RotationAngle", "Color", "Select Model", "Select Texture",
	}, p.Labels())
}

func TestClosedPanelIgnoresKeys(t *testing.T) {
	p := NewPanel(testParams())
	assert.False(t, p.UsingInput())
	assert.False(t, p.HandleKey("down"))
	assert.Empty(t, mustDraw(t, p))
}

func TestSliderSteps(t *testing.T) {
	p, params := openPanel(t)
	focusOn(t, p, "RotationAngle")

	p.HandleKey("right")
	p.HandleKey("right")
	assert.Equal(t, 10.0, params.RotationAngle.Get())

	for range 5 {
		p.HandleKey("left")
	}
	assert.Equal(t, 0.0, params.RotationAngle.Get(), "clamped at the minimum")
}

func TestSliderOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		v      float64
		filled int
	}{
		{"min", 0, 0},
		{"half", 180, 5},
		{"max", 360, 10},
		{"below", -50, 0},
		{"above", 720, 10},
		{"NaN", math.NaN(), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out string
			require.NotPanics(t, func() { out = slider(tc.v, 0, 360, 10) })
			assert.Equal(t, tc.filled, strings.Count(out, "█"))
			assert.Equal(t, 10-tc.filled, strings.Count(out, "░"))
		})
	}
}

func TestToggleRows(t *testing.T) {
	p, params := openPanel(t)
	focusOn(t, p, "AutoRotate")
	p.HandleKey("enter")
	assert.True(t, params.AutoRotate.Get())

	focusOn(t, p, "UseTexture")
	p.HandleKey("right")
	assert.False(t, params.UseTexture.Get())
	assert.Contains(t, p.Labels(), "Color")
}

func TestFocusWraps(t *testing.T) {
	p, _ := openPanel(t)
	assert.Equal(t, "VR", p.Focused())
	p.HandleKey("up")
	assert.Equal(t, "Select Texture", p.Focused())
}

func TestShiftHue(t *testing.T) {
	red := param.RGBA{R: 1, A: 0.5}
	got := ShiftHue(red, 120)
	assert.InDelta(t, 0, got.R, 1e-9)
	assert.InDelta(t, 1, got.G, 1e-9)
	assert.Equal(t, 0.5, got.A)

	// White has no hue; shifting saturates it.
	assert.NotEqual(t, param.White, ShiftHue(param.White, 15))
}

func TestSelectModelButton(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ducky.obj"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	p, params := openPanel(t)
	p.StartDir = dir
	focusOn(t, p, "Select Model")

	p.HandleKey("enter")
	require.True(t, p.ModelSelector.IsActive())
	assert.Contains(t, p.View(), "ducky.obj")
	assert.NotContains(t, p.View(), "notes.txt")

	// "..", then ducky.obj.
	p.HandleKey("down")
	p.HandleKey("enter")
	assert.False(t, p.ModelSelector.IsActive())
	assert.Equal(t, filepath.Join(dir, "ducky.obj"), params.ModelFile.Get())
}

func TestButtonTogglesSelector(t *testing.T) {
	p, _ := openPanel(t)
	p.StartDir = t.TempDir()
	focusOn(t, p, "Select Texture")

	p.HandleKey("enter")
	assert.True(t, p.TextureSelector.IsActive())
	p.HandleKey("escape")
	assert.False(t, p.TextureSelector.IsActive())
	assert.True(t, p.IsOpen(), "escape closes the selector first")

	p.HandleKey("enter")
	p.Toggle()
	assert.False(t, p.TextureSelector.IsActive(), "closing the panel cancels selectors")
}

func TestViewAndDraw(t *testing.T) {
	p, _ := openPanel(t)
	v := p.View()
	assert.Contains(t, v, Title)
	assert.Contains(t, v, "RotationAngle")

	out := mustDraw(t, p)
	assert.True(t, strings.HasPrefix(out, "\x1b[2;3H"))
}

func mustDraw(t *testing.T, p *Panel) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, p.Draw(&b, 2, 3))
	return b.String()
}

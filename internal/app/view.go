package app

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/taigrr/objview/pkg/math3d"
)

// RenderMode controls how meshes are drawn.
type RenderMode int

const (
	RenderModeShaded    RenderMode = iota // Lit, textured or coloured
	RenderModeWireframe                   // Edges only
)

// ViewState holds the local view settings. None of it is shared over the
// network.
type ViewState struct {
	RenderMode   RenderMode
	LightMode    bool        // Whether in light positioning mode
	LightDir     math3d.Vec3 // Current light direction
	PendingLight math3d.Vec3 // Light direction while positioning
	ShowHUD      bool
}

// NewViewState creates default view state
func NewViewState() *ViewState {
	return &ViewState{
		RenderMode: RenderModeShaded,
		LightDir:   math3d.V3(0.5, 1, 0.3).Normalize(),
		ShowHUD:    true,
	}
}

// Light returns the light to draw with: the pending one while positioning.
func (v *ViewState) Light() math3d.Vec3 {
	if v.LightMode {
		return v.PendingLight
	}
	return v.LightDir
}

// ScreenToLightDir converts a screen position to a light direction.
// Maps screen coords to a hemisphere above the object.
func (v *ViewState) ScreenToLightDir(screenX, screenY, width, height int) math3d.Vec3 {
	nx := (float64(screenX)/float64(width))*2 - 1
	ny := (float64(screenY)/float64(height))*2 - 1

	// Clamp to unit circle
	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}

	nz := math.Sqrt(1 - lenSq)
	return math3d.V3(nx, -ny, nz).Normalize()
}

// HUDInfo is what the HUD shows besides the view state.
type HUDInfo struct {
	ModelFile  string
	Triangles  int
	UseTexture bool
	AutoRotate bool
	Stereo     bool
	Primary    bool
	Selected   string
	Status     string
}

// HUD renders an overlay with model info and controls
type HUD struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD over the frame. The first and last terminal rows
// are always cleared so toggling the HUD off works.
func (h *HUD) Render(w io.Writer, width, height int, view *ViewState, info HUDInfo) error {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)

	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	var b strings.Builder
	b.WriteString(moveTo(1, 1) + clearLine)
	b.WriteString(moveTo(height, 1) + clearLine)

	switch {
	case view.LightMode:
		lightMsg := fmt.Sprintf("%s%s%s ◉ LIGHT MODE - Move mouse to position, click to set, Esc to cancel %s",
			bgBlack, bold, fgYellow, reset)
		lightCol := max((width-60)/2, 1)
		b.WriteString(moveTo(height, lightCol) + lightMsg)

	case view.ShowHUD:
		fmt.Fprintf(&b, "%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

		title := "no model"
		if info.ModelFile != "" {
			title = filepath.Base(info.ModelFile)
		}
		if info.Selected != "" {
			title += " › " + info.Selected
		}
		titleCol := max((width-len(title)-2)/2, 1)
		fmt.Fprintf(&b, "%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, title, reset)

		polys := fmt.Sprintf("%d polys", info.Triangles)
		fmt.Fprintf(&b, "%s%s%s%s %s %s", moveTo(1, max(width-len(polys)-2, 1)), bgBlack, fgCyan, bold, polys, reset)

		check := func(on bool) string {
			if on {
				return "[✓]"
			}
			return "[ ]"
		}
		role := "primary"
		if !info.Primary {
			role = "replica"
		}
		fmt.Fprintf(&b, "%s%s%s %s Texture  %s X-Ray  %s AutoRotate  %s VR  %s(%s)%s",
			moveTo(height, 1), bgBlack, fgWhite,
			check(info.UseTexture), check(view.RenderMode == RenderModeWireframe),
			check(info.AutoRotate), check(info.Stereo), dim, role, reset)

		hint := info.Status
		if hint == "" {
			hint = "g: panel  ?: HUD"
		}
		runes := []rune(hint)
		if maxLen := width / 2; len(runes) > maxLen && maxLen > 1 {
			runes = append(runes[:maxLen-1], '…')
			hint = string(runes)
		}
		hintCol := max(width-len(runes)-1, 1)
		fmt.Fprintf(&b, "%s%s%s%s %s%s", moveTo(height, hintCol), bgBlack, dim, fgYellow, hint, reset)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

package app

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/taigrr/objview/pkg/math3d"
	"github.com/taigrr/objview/pkg/render"
)

// eye is one render target with its camera.
type eye struct {
	fb     *render.Framebuffer
	camera *render.Camera
	g      *render.Graphics
}

func newEye(width, height int, x float64) eye {
	fb := render.NewFramebuffer(width, height)
	camera := render.NewCamera()
	camera.SetFOV(math.Pi / 3)
	camera.SetClipPlanes(0.1, 100)
	camera.SetAspectRatio(float64(width) / float64(height))
	camera.SetPosition(math3d.V3(x, 0, 0))
	return eye{fb: fb, camera: camera, g: render.NewGraphics(camera, fb)}
}

// frame holds the targets for one terminal size: a full-width view and a
// pair of half-width eyes for stereo.
type frame struct {
	mono        eye
	left, right eye
}

func newFrame(width, height int, eyeSep float64) *frame {
	half := max(width/2, 1)
	return &frame{
		mono:  newEye(width, height, 0),
		left:  newEye(half, height, -eyeSep/2),
		right: newEye(half, height, eyeSep/2),
	}
}

// Framebuffer is what gets shown.
func (f *frame) Framebuffer() *render.Framebuffer { return f.mono.fb }

// frameState is the view state one frame is drawn from, copied under the
// app lock.
type frameState struct {
	orbit      math3d.Mat4
	light      math3d.Vec3
	wireframe  bool
	pick       *cell
	screenshot bool
}

// snapshot copies the view state and takes any pending pick or screenshot.
// a.mu must be held.
func (a *App) snapshot() frameState {
	st := frameState{
		orbit:      a.rotation.Matrix(),
		light:      a.view.Light(),
		wireframe:  a.view.RenderMode == RenderModeWireframe,
		pick:       a.pendingPick,
		screenshot: a.pendingScreenshot,
	}
	a.pendingPick = nil
	a.pendingScreenshot = false
	return st
}

// drawFrame renders into f and returns the draw stats of the last view.
func (a *App) drawFrame(f *frame, st frameState) render.DrawStats {
	bg := a.Background.Get().RGBA8()
	stereo := a.VR.Get()

	var stats render.DrawStats
	if stereo {
		f.mono.fb.Clear(bg)
		a.drawScene(f.left.g, bg, st)
		stats = a.drawScene(f.right.g, bg, st)
		f.mono.fb.Blit(f.left.fb, 0, 0)
		f.mono.fb.Blit(f.right.fb, f.left.fb.Width, 0)
	} else {
		stats = a.drawScene(f.mono.g, bg, st)
	}

	if st.pick != nil {
		a.pick(f, *st.pick, stereo)
	}
	if st.screenshot {
		a.screenshot(f.mono.fb)
	}
	return stats
}

// drawScene clears g and draws the model inside the parent pose and the
// user's orbit, which turns about the model's resting point.
func (a *App) drawScene(g *render.Graphics, bg render.Color, st frameState) render.DrawStats {
	g.ResetStats()
	g.Clear(bg)
	g.LightDir = st.light
	g.Wireframe = st.wireframe

	g.PushMatrix()
	g.MultMatrix(a.Manager.Pickable.Transform())
	g.Translate(math3d.V3(0, 0, -4))
	g.MultMatrix(st.orbit)
	g.Translate(math3d.V3(0, 0, 4))
	a.Manager.DrawModel(g)
	g.PopMatrix()
	return g.Stats
}

// pick casts a ray through terminal cell c. Each cell shows two pixel rows;
// the top one is used.
func (a *App) pick(f *frame, c cell, stereo bool) {
	e, x := f.mono, c.x
	if stereo {
		e = f.left
		if x >= f.left.fb.Width {
			e, x = f.right, x-f.left.fb.Width
		}
	}
	ray := e.camera.ScreenRay(x, c.y*2, e.fb.Width, e.fb.Height)
	if idx, ok := a.Manager.Pick(ray); ok {
		a.log.Info().Int("mesh", idx).Msg("mesh selected")
	}
}

func (a *App) screenshot(fb *render.Framebuffer) {
	name := fmt.Sprintf("objview-%s.png", time.Now().Format("20060102-150405"))
	if err := fb.SavePNG(name); err != nil {
		a.log.Error().Err(err).Msg("screenshot failed")
		return
	}
	abs, _ := filepath.Abs(name)
	a.log.Info().Str("file", abs).Msg("screenshot saved")
}

// hudInfo gathers what the HUD shows. a.mu must be held.
func (a *App) hudInfo(stats render.DrawStats) HUDInfo {
	info := HUDInfo{
		ModelFile:  a.Manager.ModelFile.Get(),
		Triangles:  stats.Triangles,
		UseTexture: a.Manager.UseTexture.Get(),
		AutoRotate: a.Manager.AutoRotate.Get(),
		Stereo:     a.VR.Get(),
		Primary:    a.Primary(),
	}
	if idx := a.Manager.Selected(); idx >= 0 {
		if meshes := a.Manager.Meshes(); idx < len(meshes) {
			info.Selected = meshes[idx].Name
		}
	}
	if a.status != nil {
		info.Status = a.status.Last(5 * time.Second)
	}
	return info
}

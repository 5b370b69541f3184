package app

import (
	"math/rand/v2"

	"github.com/taigrr/objview/pkg/math3d"
)

// keyEvent is the part of a key event the handlers need.
type keyEvent interface {
	MatchString(...string) bool
}

// panelKeys are forwarded to the panel while it owns the keyboard.
var panelKeys = []string{"up", "down", "left", "right", "enter", "escape"}

// onKeyPress handles a key and reports whether the app should quit.
func (a *App) onKeyPress(k keyEvent) (quit bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case k.MatchString("ctrl+c"):
		return true
	case k.MatchString("g"):
		a.Panel.Toggle()
		return false
	}

	navActive := !a.Panel.UsingInput()
	if !navActive {
		for _, key := range panelKeys {
			if k.MatchString(key) {
				a.Panel.HandleKey(key)
				return false
			}
		}
	}

	switch {
	case k.MatchString("escape"):
		if !a.view.LightMode {
			return true
		}
		a.view.LightMode = false
	case k.MatchString("t"):
		a.Manager.UseTexture.Toggle()
	case k.MatchString("x"):
		if a.view.RenderMode == RenderModeWireframe {
			a.view.RenderMode = RenderModeShaded
		} else {
			a.view.RenderMode = RenderModeWireframe
		}
	case k.MatchString("l"):
		a.view.LightMode = true
		a.view.PendingLight = a.view.LightDir
	case k.MatchString("?"), k.MatchString("shift+/"):
		a.view.ShowHUD = !a.view.ShowHUD
	case k.MatchString("p"):
		a.pendingScreenshot = true
	case !navActive:
		// Navigation is off while the panel has the keyboard.
	case k.MatchString("r"):
		a.rotation.Reset()
		a.nav = math3d.Zero3()
	case k.MatchString("w", "up"):
		a.torque.pitch = -torqueStrength
	case k.MatchString("s", "down"):
		a.torque.pitch = torqueStrength
	case k.MatchString("a", "left"):
		a.torque.yaw = -torqueStrength
	case k.MatchString("d", "right"):
		a.torque.yaw = torqueStrength
	case k.MatchString("q"):
		a.torque.roll = -torqueStrength
	case k.MatchString("e"):
		a.torque.roll = torqueStrength
	case k.MatchString("space"):
		a.rotation.ApplyImpulse(
			(rand.Float64()-0.5)*1.5,
			(rand.Float64()-0.5)*1.5,
			(rand.Float64()-0.5)*1.5,
		)
	case k.MatchString("+", "="):
		a.zoom(-zoomStep)
	case k.MatchString("-", "_"):
		a.zoom(zoomStep)
	}
	return false
}

func (a *App) onKeyRelease(k keyEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case k.MatchString("w", "up", "s", "down"):
		a.torque.pitch = 0
	case k.MatchString("a", "left", "d", "right"):
		a.torque.yaw = 0
	case k.MatchString("q", "e"):
		a.torque.roll = 0
	}
}

// onMouseClick sets the light in light mode. Otherwise it starts a drag and
// picks the mesh under the pointer.
func (a *App) onMouseClick(x, y int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.view.LightMode {
		a.view.LightDir = a.view.PendingLight
		a.view.LightMode = false
		return
	}
	if a.Panel.UsingInput() {
		return
	}
	a.mouseDown = true
	a.lastMouseX, a.lastMouseY = x, y
	a.pendingPick = &cell{x, y}
}

func (a *App) onMouseRelease() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mouseDown = false
}

func (a *App) onMouseMotion(x, y int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.view.LightMode:
		a.view.PendingLight = a.view.ScreenToLightDir(x, y, a.width, a.height)
	case a.mouseDown:
		dx := x - a.lastMouseX
		dy := y - a.lastMouseY
		a.rotation.ApplyImpulse(float64(dy)*0.03, float64(dx)*0.03, 0)
		a.lastMouseX, a.lastMouseY = x, y
	}
}

func (a *App) onWheel(up bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.Panel.UsingInput() {
		return
	}
	if up {
		a.zoom(-zoomStep)
	} else {
		a.zoom(zoomStep)
	}
}

func (a *App) onResize(width, height int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.width, a.height = width, height
	a.resized = true
}

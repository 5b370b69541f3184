package render

import (
	"math"
	"testing"

	"github.com/taigrr/objview/pkg/math3d"
)

func newTestGraphics() *Graphics {
	camera := NewCamera()
	camera.SetPosition(math3d.V3(0, 0, 5))
	camera.SetAspectRatio(1)
	return NewGraphics(camera, NewFramebuffer(32, 32))
}

func TestMatrixStack(t *testing.T) {
	g := newTestGraphics()

	g.PushMatrix()
	g.Translate(math3d.V3(1, 2, 3))
	g.Scale(2)
	p := g.ModelMatrix().MulVec3(math3d.V3(1, 1, 1))
	if p != math3d.V3(3, 4, 5) {
		t.Errorf("translate*scale applied to (1,1,1) = %v, want (3,4,5)", p)
	}

	g.PopMatrix()
	if g.ModelMatrix() != math3d.Identity() {
		t.Error("PopMatrix should restore identity")
	}

	g.PopMatrix()
	if g.ModelMatrix() != math3d.Identity() {
		t.Error("popping the base entry should leave identity")
	}
}

func TestRotateDegrees(t *testing.T) {
	g := newTestGraphics()
	g.Rotate(90, math3d.V3(0, 1, 0))
	p := g.ModelMatrix().MulVec3(math3d.V3(1, 0, 0))
	if math.Abs(p.Z+1) > 1e-9 || math.Abs(p.X) > 1e-9 {
		t.Errorf("90° about Y moved +X to %v, want (0,0,-1)", p)
	}
}

func TestColorSource(t *testing.T) {
	g := newTestGraphics()
	mesh := quadMesh()
	tex := NewCheckerTexture(4, 4, 2, ColorWhite, ColorGray)

	g.BindTexture(tex)
	g.Texture()
	g.Draw(mesh)
	g.UnbindTexture()

	g.Color(RGB(10, 20, 30))
	g.Draw(mesh)

	// Asking for the texture with nothing bound falls back to the color.
	g.Texture()
	g.Draw(mesh)

	if g.Stats.Draws != 3 || g.Stats.Textured != 1 || g.Stats.Colored != 2 {
		t.Errorf("stats = %+v, want 3 draws, 1 textured, 2 colored", g.Stats)
	}
	if g.Stats.Triangles != 6 {
		t.Errorf("triangles = %d, want 6", g.Stats.Triangles)
	}

	g.ResetStats()
	if g.Stats != (DrawStats{}) {
		t.Error("ResetStats should zero the counters")
	}
}

func TestCameraScreenRayThroughCenter(t *testing.T) {
	camera := NewCamera()
	camera.SetPosition(math3d.V3(0, 0, 5))
	camera.SetAspectRatio(1)

	ray := camera.ScreenRay(50, 50, 101, 101)
	if math.Abs(ray.Dir.X) > 1e-6 || math.Abs(ray.Dir.Y) > 1e-6 || ray.Dir.Z > -0.99 {
		t.Errorf("center ray direction = %v, want (0,0,-1)", ray.Dir)
	}
	if _, hit := ray.IntersectBox(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1)); !hit {
		t.Error("center ray should hit a box at the origin")
	}
}

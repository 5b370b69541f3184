package viewer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/objview/pkg/math3d"
	"github.com/taigrr/objview/pkg/models"
	"github.com/taigrr/objview/pkg/render"
)

// quad builds a one-quad mesh centered at (cx, 0, 0) facing +Z.
func quad(name string, cx float64) *models.Mesh {
	m := models.NewMesh(name)
	n := math3d.V3(0, 0, 1)
	for _, p := range []math3d.Vec3{
		math3d.V3(cx-1, -1, 0), math3d.V3(cx+1, -1, 0), math3d.V3(cx+1, 1, 0), math3d.V3(cx-1, 1, 0),
	} {
		m.Vertices = append(m.Vertices, models.MeshVertex{Position: p, Normal: n})
	}
	m.Faces = []models.Face{{V: [3]int{0, 2, 1}}, {V: [3]int{0, 3, 2}}}
	m.CalculateBounds()
	return m
}

func sceneOf(meshes ...*models.Mesh) *models.Scene {
	s := models.NewScene("test")
	s.Meshes = meshes
	s.CalculateBounds()
	return s
}

// fakeFS serves scenes and textures by name; anything else fails.
type fakeFS struct {
	scenes   map[string]*models.Scene
	textures map[string]*render.Texture
}

var errNotFound = errors.New("not found")

func (f *fakeFS) importScene(path string) (*models.Scene, error) {
	if s, ok := f.scenes[path]; ok {
		return s, nil
	}
	return nil, errNotFound
}

func (f *fakeFS) loadTexture(path string) (*render.Texture, error) {
	if t, ok := f.textures[path]; ok {
		return t, nil
	}
	return nil, errNotFound
}

func newTestManager(t *testing.T, fs *fakeFS) (*Manager, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	m := New(
		WithLogger(zerolog.New(&logs)),
		WithImporter(fs.importScene),
		WithTextureLoader(fs.loadTexture),
	)
	return m, &logs
}

func newTestGraphics() *render.Graphics {
	cam := render.NewCamera()
	cam.SetAspectRatio(1)
	return render.NewGraphics(cam, render.NewFramebuffer(48, 48))
}

func TestInvalidPathKeepsMeshes(t *testing.T) {
	fs := &fakeFS{scenes: map[string]*models.Scene{"a.obj": sceneOf(quad("a", 0), quad("b", 3))}}
	m, logs := newTestManager(t, fs)
	g := newTestGraphics()

	m.ModelFile.Set("a.obj")
	m.DrawModel(g)
	before := m.Meshes()
	require.Len(t, before, 2)

	m.ModelFile.Set("missing.obj")
	m.DrawModel(g)

	after := m.Meshes()
	require.Len(t, after, 2)
	for i := range before {
		assert.Same(t, before[i], after[i])
	}
	assert.Contains(t, logs.String(), "error reading model")
	assert.Contains(t, logs.String(), "missing.obj")
}

func TestFitScale(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi math3d.Vec3
		want   float64
	}{
		{"unit cube", math3d.V3(0, 0, 0), math3d.V3(1, 1, 1), 2},
		{"x widest", math3d.V3(-2, 0, 0), math3d.V3(2, 1, 1), 0.5},
		{"z widest", math3d.V3(0, 0, -5), math3d.V3(1, 1, 5), 0.2},
		{"empty", math3d.Zero3(), math3d.Zero3(), 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, FitScale(tc.lo, tc.hi), 1e-12)
		})
	}
}

func TestUseTextureSwitchesColorSource(t *testing.T) {
	fs := &fakeFS{
		scenes:   map[string]*models.Scene{"a.obj": sceneOf(quad("a", 0))},
		textures: map[string]*render.Texture{"t.png": render.NewCheckerTexture(4, 4, 2, render.ColorWhite, render.ColorGray)},
	}
	m, _ := newTestManager(t, fs)
	g := newTestGraphics()

	m.ModelFile.Set("a.obj")
	m.ModelTexture.Set("t.png")
	m.DrawModel(g)
	assert.Equal(t, 1, g.Stats.Textured)
	vertsBefore := append([]models.MeshVertex(nil), m.Meshes()[0].Vertices...)

	g.ResetStats()
	m.UseTexture.Set(false)
	m.DrawModel(g)
	assert.Equal(t, 0, g.Stats.Textured)
	assert.Equal(t, 1, g.Stats.Colored)

	g.ResetStats()
	m.UseTexture.Set(true)
	m.DrawModel(g)
	assert.Equal(t, 1, g.Stats.Textured)

	assert.Equal(t, vertsBefore, m.Meshes()[0].Vertices)
}

func TestMeshCountMatchesScene(t *testing.T) {
	scene := sceneOf(quad("a", 0), quad("b", 3), quad("c", -3))
	fs := &fakeFS{scenes: map[string]*models.Scene{"abc.obj": scene}}
	m, _ := newTestManager(t, fs)

	m.LoadModel("abc.obj")
	m.DrawModel(newTestGraphics())

	assert.Len(t, m.Meshes(), scene.MeshCount())
	assert.Equal(t, scene.MeshCount(), m.Pickable.Len())
	lo, hi, center := m.Bounds()
	assert.Equal(t, math3d.V3(-4, -1, 0), lo)
	assert.Equal(t, math3d.V3(4, 1, 0), hi)
	assert.Equal(t, math3d.V3(0, 0, 0), center)
}

func TestFailedTextureKeepsOld(t *testing.T) {
	old := render.NewTexture(2, 2)
	fs := &fakeFS{textures: map[string]*render.Texture{"old.png": old}}
	m, logs := newTestManager(t, fs)
	g := newTestGraphics()

	m.ModelTexture.Set("old.png")
	m.DrawModel(g)
	require.Same(t, old, m.Texture())

	m.ModelTexture.Set("broken.png")
	m.DrawModel(g)
	assert.Same(t, old, m.Texture())
	assert.Contains(t, logs.String(), "failed to load image")
}

func TestEmbeddedTexture(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	img.Set(0, 0, color.RGBA{R: 9, A: 255})
	scene := sceneOf(quad("a", 0))
	scene.Texture = img
	fs := &fakeFS{scenes: map[string]*models.Scene{"a.glb": scene}}
	m, _ := newTestManager(t, fs)

	m.LoadModel("a.glb")
	m.DrawModel(newTestGraphics())

	tex := m.Texture()
	require.NotNil(t, tex)
	assert.Equal(t, 3, tex.Width)
	assert.Equal(t, uint8(9), tex.GetPixel(0, 0).R)
}

func TestNamedTextureWinsOverEmbedded(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	scene := sceneOf(quad("a", 0))
	scene.Texture = img
	named := render.NewTexture(2, 2)
	fs := &fakeFS{
		scenes:   map[string]*models.Scene{"a.glb": scene, "b.glb": scene},
		textures: map[string]*render.Texture{"brick.png": named},
	}
	m, _ := newTestManager(t, fs)
	g := newTestGraphics()

	m.ModelTexture.Set("brick.png")
	m.ModelFile.Set("a.glb")
	m.DrawModel(g)
	assert.Same(t, named, m.Texture())

	m.ModelFile.Set("b.glb")
	m.DrawModel(g)
	assert.Same(t, named, m.Texture(), "loading another model keeps the named texture")
	assert.Equal(t, "brick.png", m.ModelTexture.Get())
}

func TestDrawEmptyManager(t *testing.T) {
	m, _ := newTestManager(t, &fakeFS{})
	g := newTestGraphics()

	m.DrawModel(g)

	assert.Zero(t, g.Stats.Draws)
	assert.Equal(t, math3d.Identity(), g.ModelMatrix(), "matrix stack is balanced")
}

func TestPickSelectsHitMesh(t *testing.T) {
	fs := &fakeFS{scenes: map[string]*models.Scene{"a.obj": sceneOf(quad("left", -3), quad("middle", 0), quad("right", 3))}}
	m, _ := newTestManager(t, fs)
	g := newTestGraphics()

	m.LoadModel("a.obj")
	m.DrawModel(g)

	idx, ok := m.Pick(math3d.Ray{Origin: math3d.Zero3(), Dir: math3d.V3(0, 0, -1)})
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1, m.Selected())

	_, ok = m.Pick(math3d.Ray{Origin: math3d.Zero3(), Dir: math3d.V3(0, 1, 0)})
	assert.False(t, ok)
	assert.Equal(t, -1, m.Selected())
}

func TestRotationAngleRotatesModel(t *testing.T) {
	fs := &fakeFS{scenes: map[string]*models.Scene{"a.obj": sceneOf(quad("a", 0))}}
	m, _ := newTestManager(t, fs)
	g := newTestGraphics()
	m.LoadModel("a.obj")

	m.RotationAngle.Set(90)
	m.DrawModel(g)

	// Quarter turn about +Y: the quad's +X edge now points at -Z.
	p := m.drawn.MulVec3(math3d.V3(1, 0, 0))
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, -4-1, p.Z, 1e-9)
}

func TestParamsOrder(t *testing.T) {
	m := New()
	var addrs []string
	for _, p := range m.Params() {
		addrs = append(addrs, p.Address())
	}
	assert.Equal(t, []string{"/ModelFile", "/ModelTexture", "/Color", "/UseTexture", "/AutoRotate", "/RotationAngle"}, addrs)
	assert.True(t, m.UseTexture.Get())
}

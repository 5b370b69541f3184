// Package viewer owns the loaded model and texture and draws them fitted to
// the view. Loads are requested from any goroutine and carried out by the
// next DrawModel on the render goroutine.
package viewer

import (
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taigrr/objview/internal/param"
	"github.com/taigrr/objview/internal/pickable"
	"github.com/taigrr/objview/pkg/math3d"
	"github.com/taigrr/objview/pkg/models"
	"github.com/taigrr/objview/pkg/render"
)

// Importer reads a model file into a scene.
type Importer func(path string) (*models.Scene, error)

// TextureLoader decodes an image file into a texture.
type TextureLoader func(path string) (*render.Texture, error)

// highlight outlines the selected mesh.
var highlight = render.RGB(255, 220, 0)

// Manager holds the current scene, its meshes and texture, and the
// parameters that control how they are drawn.
type Manager struct {
	ModelFile     *param.String
	ModelTexture  *param.String
	UseTexture    *param.Bool
	Color         *param.Color
	AutoRotate    *param.Bool
	RotationAngle *param.Float

	// Pickable holds one box per mesh.
	Pickable *pickable.Parent

	log         zerolog.Logger
	importScene Importer
	loadTexture TextureLoader

	mu            sync.Mutex
	modelToLoad   string
	textureToLoad string

	scene                           *models.Scene
	sceneMin, sceneMax, sceneCenter math3d.Vec3
	meshes                          []*models.Mesh
	tex                             *render.Texture

	drawn    math3d.Mat4 // model to world, as of the last draw
	selected int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log.With().Str("component", "viewer").Logger() }
}

// WithImporter replaces models.Import.
func WithImporter(fn Importer) Option {
	return func(m *Manager) { m.importScene = fn }
}

// WithTextureLoader replaces render.LoadTexture.
func WithTextureLoader(fn TextureLoader) Option {
	return func(m *Manager) { m.loadTexture = fn }
}

// New creates a manager with nothing loaded.
func New(opts ...Option) *Manager {
	m := &Manager{
		ModelFile:     param.NewString("ModelFile", "", ""),
		ModelTexture:  param.NewString("ModelTexture", "", ""),
		UseTexture:    param.NewBool("UseTexture", "", true),
		Color:         param.NewColor("Color", "", param.White),
		AutoRotate:    param.NewBool("AutoRotate", "", false),
		RotationAngle: param.NewFloat("RotationAngle", "", 0, 0, 360),
		Pickable:      newParent(),
		log:           zerolog.Nop(),
		importScene:   models.Import,
		loadTexture:   render.LoadTexture,
		drawn:         math3d.Identity(),
		selected:      -1,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.ModelFile.RegisterChangeCallback(func(name string, _ any) {
		m.log.Info().Str("model", name).Msg("loading model")
		m.LoadModel(name)
	})
	m.ModelTexture.RegisterChangeCallback(func(name string, _ any) {
		m.LoadTexture(name)
	})
	return m
}

func newParent() *pickable.Parent {
	p := pickable.NewParent()
	p.ContainChildren = true
	return p
}

// Params returns the manager's parameters in the order they are published.
func (m *Manager) Params() []param.Parameter {
	return []param.Parameter{
		m.ModelFile, m.ModelTexture, m.Color, m.UseTexture, m.AutoRotate, m.RotationAngle,
	}
}

// LoadModel schedules name to be imported on the next draw.
func (m *Manager) LoadModel(name string) {
	m.mu.Lock()
	m.modelToLoad = name
	m.mu.Unlock()
}

// LoadTexture schedules name to be decoded on the next draw.
func (m *Manager) LoadTexture(name string) {
	m.mu.Lock()
	m.textureToLoad = name
	m.mu.Unlock()
}

// FitScale returns the scale that makes the largest extent of the box
// [lo, hi] two units long. An empty box scales by 1.
func FitScale(lo, hi math3d.Vec3) float64 {
	extent := hi.Sub(lo).MaxComponent()
	if extent <= 0 {
		return 1
	}
	return 2 / extent
}

// DrawModel loads whatever is pending, then draws every mesh fitted into a
// 2-unit box four units in front of the viewer, turned by RotationAngle.
func (m *Manager) DrawModel(g *render.Graphics) {
	m.mu.Lock()
	modelName, textureName := m.modelToLoad, m.textureToLoad
	m.modelToLoad, m.textureToLoad = "", ""
	m.mu.Unlock()

	if modelName != "" {
		m.importModel(modelName)
	}
	if textureName != "" {
		m.importTexture(textureName)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	g.DepthTesting(true)
	g.Lighting(true)

	g.PushMatrix()
	defer g.PopMatrix()

	g.Translate(math3d.V3(0, 0, -4))
	g.Rotate(m.RotationAngle.Get(), math3d.V3(0, 1, 0))
	g.Scale(FitScale(m.sceneMin, m.sceneMax))
	g.Translate(m.sceneCenter.Negate())
	m.drawn = g.ModelMatrix()

	useTexture := m.UseTexture.Get()
	if useTexture {
		g.BindTexture(m.tex)
		g.Texture()
	} else {
		g.Color(m.Color.Get().RGBA8())
	}
	for _, mesh := range m.meshes {
		g.Draw(mesh)
	}
	if useTexture {
		g.UnbindTexture()
	}

	if children := m.Pickable.Children(); m.selected >= 0 && m.selected < len(children) {
		box := children[m.selected]
		g.DrawBox(box.Min, box.Max, highlight)
	}
}

// importModel replaces the scene with the one at name. On failure the
// current scene stays.
func (m *Manager) importModel(name string) {
	scene, err := m.importScene(name)
	if err != nil {
		m.log.Error().Err(err).Str("model", name).Msg("error reading model")
		return
	}

	lo, hi := scene.GetBounds()
	meshes := make([]*models.Mesh, scene.MeshCount())
	for i := range meshes {
		meshes[i] = scene.Mesh(i)
	}

	// An embedded image only stands in while no texture file is named, so
	// ModelTexture always describes what is drawn.
	var embedded *render.Texture
	if scene.Texture != nil && m.ModelTexture.Get() == "" {
		embedded = render.TextureFromImage(scene.Texture)
	}

	m.mu.Lock()
	m.scene = scene
	m.sceneMin, m.sceneMax = lo, hi
	m.sceneCenter = lo.Add(hi).Scale(0.5)
	m.meshes = meshes
	m.Pickable.Clear()
	for _, mesh := range meshes {
		m.Pickable.AddChild(pickable.NewBoundingBox(mesh))
	}
	m.selected = -1
	if embedded != nil {
		m.tex = embedded
	}
	m.mu.Unlock()

	m.log.Info().Object("scene", scene).Msg("model loaded")
	if embedded != nil {
		m.log.Info().Int("width", embedded.Width).Int("height", embedded.Height).Msg("using embedded texture")
	}
}

// importTexture replaces the texture with the image at name. On failure
// the current texture stays.
func (m *Manager) importTexture(name string) {
	name = filepath.Clean(filepath.FromSlash(name))
	tex, err := m.loadTexture(name)
	if err != nil {
		m.log.Error().Err(err).Str("texture", name).Msg("failed to load image")
		return
	}

	m.mu.Lock()
	m.tex = tex
	m.mu.Unlock()
	m.log.Info().Int("width", tex.Width).Int("height", tex.Height).Msg("loaded image size")
}

// Pick casts a world-space ray at the meshes as last drawn and selects the
// nearest one hit. It returns the mesh index.
func (m *Manager) Pick(ray math3d.Ray) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	local := ray.Transform(m.drawn.Inverse())
	idx, _, ok := m.Pickable.Intersect(local)
	m.selected = idx
	if ok {
		m.log.Debug().Int("mesh", idx).Str("name", m.meshes[idx].Name).Msg("picked")
	}
	return idx, ok
}

// Selected returns the index of the selected mesh, or -1.
func (m *Manager) Selected() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// Meshes returns the current meshes.
func (m *Manager) Meshes() []*models.Mesh {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Mesh(nil), m.meshes...)
}

// Scene returns the current scene, or nil before the first load.
func (m *Manager) Scene() *models.Scene {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scene
}

// Texture returns the current texture, or nil.
func (m *Manager) Texture() *render.Texture {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tex
}

// Bounds returns the scene box and its center.
func (m *Manager) Bounds() (lo, hi, center math3d.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sceneMin, m.sceneMax, m.sceneCenter
}

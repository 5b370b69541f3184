package models

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/taigrr/objview/pkg/math3d"
)

var (
	// ErrUnsupportedFormat is returned by Import for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported model format")
	// ErrEmptyScene is returned when a file parses but holds no triangles.
	ErrEmptyScene = errors.New("scene has no meshes")
)

// Scene is an imported asset: an ordered list of meshes plus whatever
// texture the file embeds.
type Scene struct {
	Name   string
	Meshes []*Mesh

	// Texture is the first decodable embedded image, or nil.
	Texture image.Image

	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewScene creates an empty scene.
func NewScene(name string) *Scene {
	return &Scene{Name: name}
}

// Import loads the model at path, choosing the reader by file extension.
func Import(path string) (*Scene, error) {
	var (
		scene *Scene
		err   error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".obj":
		scene, err = LoadOBJ(path)
	case ".glb", ".gltf":
		scene, err = LoadGLTF(path)
	default:
		return nil, fmt.Errorf("%w: %q (use .obj, .gltf or .glb)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	if err := scene.finish(); err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return scene, nil
}

// finish drops empty meshes, fills in missing normals and computes bounds.
func (s *Scene) finish() error {
	meshes := s.Meshes[:0]
	for _, m := range s.Meshes {
		if m.TriangleCount() == 0 {
			continue
		}
		if !m.HasNormals() {
			m.CalculateSmoothNormals()
		}
		m.CalculateBounds()
		meshes = append(meshes, m)
	}
	s.Meshes = meshes

	if len(s.Meshes) == 0 {
		return ErrEmptyScene
	}
	s.CalculateBounds()
	return nil
}

// MeshCount returns the number of meshes.
func (s *Scene) MeshCount() int {
	return len(s.Meshes)
}

// Mesh copies mesh i out of the scene so callers can hold it past the
// scene's lifetime.
func (s *Scene) Mesh(i int) *Mesh {
	return s.Meshes[i].Clone()
}

// CalculateBounds computes the box around every mesh. Meshes must have
// their own bounds computed first.
func (s *Scene) CalculateBounds() {
	if len(s.Meshes) == 0 {
		s.BoundsMin, s.BoundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}
	s.BoundsMin, s.BoundsMax = s.Meshes[0].GetBounds()
	for _, m := range s.Meshes[1:] {
		lo, hi := m.GetBounds()
		s.BoundsMin = s.BoundsMin.Min(lo)
		s.BoundsMax = s.BoundsMax.Max(hi)
	}
}

// GetBounds returns the scene's bounding box.
func (s *Scene) GetBounds() (min, max math3d.Vec3) {
	return s.BoundsMin, s.BoundsMax
}

// VertexCount sums vertices over all meshes.
func (s *Scene) VertexCount() int {
	n := 0
	for _, m := range s.Meshes {
		n += m.VertexCount()
	}
	return n
}

// TriangleCount sums triangles over all meshes.
func (s *Scene) TriangleCount() int {
	n := 0
	for _, m := range s.Meshes {
		n += m.TriangleCount()
	}
	return n
}

// MarshalZerologObject writes a summary of the scene into a log event.
func (s *Scene) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", s.Name).
		Int("meshes", len(s.Meshes)).
		Int("vertices", s.VertexCount()).
		Int("triangles", s.TriangleCount()).
		Bool("embedded_texture", s.Texture != nil).
		Floats64("min", []float64{s.BoundsMin.X, s.BoundsMin.Y, s.BoundsMin.Z}).
		Floats64("max", []float64{s.BoundsMax.X, s.BoundsMax.Y, s.BoundsMax.Z})

	names := zerolog.Arr()
	for _, m := range s.Meshes {
		names.Str(m.Name)
	}
	e.Array("mesh_names", names)
}

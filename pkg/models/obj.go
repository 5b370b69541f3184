package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/objview/pkg/math3d"
)

// objIndex is one "v/vt/vn" corner of a face; zero-based, -1 when absent.
type objIndex struct {
	v, vt, vn int
}

// objReader accumulates the shared attribute pools and splits geometry
// into one mesh per object or group.
type objReader struct {
	positions []math3d.Vec3
	uvs       []math3d.Vec2
	normals   []math3d.Vec3

	scene   *Scene
	current *Mesh
	lookup  map[objIndex]int
}

// LoadOBJ reads a Wavefront OBJ file. Each "o" or "g" statement starts a
// new mesh; polygons are fan-triangulated.
func LoadOBJ(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	return ReadOBJ(f, filepath.Base(path))
}

// ReadOBJ parses OBJ data from r into a scene called name.
func ReadOBJ(r io.Reader, name string) (*Scene, error) {
	or := &objReader{scene: NewScene(name)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		ident, args := fields[0], fields[1:]
		if err := or.statement(ident, args); err != nil {
			return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	return or.scene, nil
}

func (or *objReader) statement(ident string, args []string) error {
	switch ident {
	case "v", "vn":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		p := math3d.V3(v[0], v[1], v[2])
		if ident == "v" {
			or.positions = append(or.positions, p)
		} else {
			or.normals = append(or.normals, p)
		}
	case "vt":
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		or.uvs = append(or.uvs, math3d.V2(v[0], v[1]))
	case "o", "g":
		name := strings.Join(args, " ")
		if name == "" {
			name = fmt.Sprintf("%s-%d", or.scene.Name, len(or.scene.Meshes))
		}
		or.begin(name)
	case "f":
		return or.face(args)
	default:
		// mtllib, usemtl, s, l, p: materials and non-triangle primitives are
		// not drawn.
	}
	return nil
}

func (or *objReader) begin(name string) {
	// Reuse an empty mesh so "o" followed by "g" doesn't leave a hole.
	if or.current != nil && len(or.current.Faces) == 0 {
		or.current.Name = name
		return
	}
	or.current = NewMesh(name)
	or.lookup = make(map[objIndex]int)
	or.scene.Meshes = append(or.scene.Meshes, or.current)
}

func (or *objReader) face(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face needs at least 3 vertices, got %d", len(args))
	}
	if or.current == nil {
		or.begin(or.scene.Name)
	}

	corners := make([]int, len(args))
	for i, arg := range args {
		idx, err := or.resolve(arg)
		if err != nil {
			return err
		}
		corners[i] = or.vertex(idx)
	}

	// Fan triangulation, reversing OBJ's counter-clockwise order.
	for i := 1; i+1 < len(corners); i++ {
		or.current.Faces = append(or.current.Faces, Face{
			V: [3]int{corners[0], corners[i+1], corners[i]},
		})
	}
	return nil
}

// resolve turns "v", "v/vt", "v//vn" or "v/vt/vn" into zero-based indices.
// Negative references count back from the end of each pool.
func (or *objReader) resolve(arg string) (objIndex, error) {
	parts := strings.Split(arg, "/")
	idx := objIndex{v: -1, vt: -1, vn: -1}

	ref := func(s string, n int) (int, error) {
		if s == "" {
			return -1, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("bad index %q: %w", s, err)
		}
		if i < 0 {
			i = n + i
		} else {
			i--
		}
		if i < 0 || i >= n {
			return 0, fmt.Errorf("index %s out of range (%d defined)", s, n)
		}
		return i, nil
	}

	var err error
	if idx.v, err = ref(parts[0], len(or.positions)); err != nil {
		return idx, err
	}
	if idx.v < 0 {
		return idx, fmt.Errorf("face corner %q has no position", arg)
	}
	if len(parts) > 1 {
		if idx.vt, err = ref(parts[1], len(or.uvs)); err != nil {
			return idx, err
		}
	}
	if len(parts) > 2 {
		if idx.vn, err = ref(parts[2], len(or.normals)); err != nil {
			return idx, err
		}
	}
	return idx, nil
}

// vertex returns the mesh-local vertex for idx, creating it on first use.
func (or *objReader) vertex(idx objIndex) int {
	if i, ok := or.lookup[idx]; ok {
		return i
	}

	v := MeshVertex{Position: or.positions[idx.v]}
	if idx.vt >= 0 {
		v.UV = or.uvs[idx.vt]
	}
	if idx.vn >= 0 {
		v.Normal = or.normals[idx.vn].Normalize()
	}

	i := len(or.current.Vertices)
	or.current.Vertices = append(or.current.Vertices, v)
	or.lookup[idx] = i
	return i
}

func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) < n {
		return nil, fmt.Errorf("expected %d components, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", args[i], err)
		}
		out[i] = f
	}
	return out, nil
}

package render

import (
	"math"

	"github.com/taigrr/objview/pkg/math3d"
)

// Ambient light level; the remaining 0.7 is diffuse.
const ambient = 0.3

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Normal   math3d.Vec3 // World normal (for lighting)
	UV       math3d.Vec2
	Color    Color
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// MeshRenderer is the read-only view of a mesh the rasterizer draws. It
// keeps render independent of the models package.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// Rasterizer draws depth-tested, Gouraud-shaded triangles into a framebuffer.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64

	DepthTest              bool // Compare against the Z-buffer
	Lighting               bool // Apply diffuse lighting; otherwise full bright
	DisableBackfaceCulling bool // Render both sides of triangles
}

// NewRasterizer creates a rasterizer with depth testing and lighting on.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	return &Rasterizer{
		camera:    camera,
		fb:        fb,
		zbuffer:   make([]float64, fb.Width*fb.Height),
		DepthTest: true,
		Lighting:  true,
	}
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int { return r.fb.Width }

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int { return r.fb.Height }

// ClearDepth resets the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	// Copy-doubling is faster than a plain loop.
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y      float64 // Screen coordinates
	Z         float64 // NDC depth
	InvW      float64 // 1/w for perspective-correct interpolation
	U, V      float64 // UV pre-divided by w
	Intensity float64
	Color     Color
}

// project maps a world-space vertex to the screen. ok is false when the
// vertex is at or behind the camera plane.
func (r *Rasterizer) project(v Vertex, viewProj math3d.Mat4, light math3d.Vec3) (screenVertex, bool) {
	clip := viewProj.MulVec4(math3d.V4FromV3(v.Position, 1))
	if clip.W <= 0 {
		return screenVertex{}, false
	}
	invW := 1 / clip.W

	intensity := 1.0
	if r.Lighting {
		intensity = ambient + (1-ambient)*math.Max(0, v.Normal.Dot(light))
	}

	return screenVertex{
		X:         (clip.X*invW + 1) * 0.5 * float64(r.Width()),
		Y:         (1 - clip.Y*invW) * 0.5 * float64(r.Height()), // Y flipped
		Z:         clip.Z * invW,
		InvW:      invW,
		U:         v.UV.X * invW,
		V:         v.UV.Y * invW,
		Intensity: intensity,
		Color:     v.Color,
	}, true
}

// DrawTriangle rasterizes a triangle with per-vertex lighting. When tex is
// non-nil it is sampled with perspective-correct UVs and tinted by the
// vertex colors; otherwise the lit vertex colors are interpolated.
func (r *Rasterizer) DrawTriangle(tri Triangle, tex *Texture, lightDir math3d.Vec3) {
	viewProj := r.camera.ViewProjectionMatrix()
	light := lightDir.Normalize()

	var sv [3]screenVertex
	for i := range 3 {
		var ok bool
		// Triangles crossing the camera plane are dropped rather than clipped;
		// the viewer keeps models well in front of the camera.
		if sv[i], ok = r.project(tri.V[i], viewProj, light); !ok {
			return
		}
	}

	// Screen-space winding: faces are stored clockwise, which after the Y
	// flip gives a positive area for front faces.
	area := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if area == 0 || (area < 0 && !r.DisableBackfaceCulling) {
		return
	}

	minX := max(0, int(math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := min(r.Width()-1, int(math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := max(0, int(math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := min(r.Height()-1, int(math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			bc := barycentric(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y, sv[2].X, sv[2].Y, float64(x)+0.5, float64(y)+0.5)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			idx := y*r.Width() + x
			if r.DepthTest {
				if z >= r.zbuffer[idx] {
					continue
				}
				r.zbuffer[idx] = z
			}

			intensity := bc.X*sv[0].Intensity + bc.Y*sv[1].Intensity + bc.Z*sv[2].Intensity
			base := interpolateColor3(sv[0].Color, sv[1].Color, sv[2].Color, bc)

			var c Color
			if tex != nil {
				invW := bc.X*sv[0].InvW + bc.Y*sv[1].InvW + bc.Z*sv[2].InvW
				u := (bc.X*sv[0].U + bc.Y*sv[1].U + bc.Z*sv[2].U) / invW
				v := (bc.X*sv[0].V + bc.Y*sv[1].V + bc.Z*sv[2].V) / invW
				c = MultiplyColor(ModulateColor(tex.Sample(u, v), base), intensity)
			} else {
				c = MultiplyColor(base, intensity)
			}
			c.A = 255
			r.fb.Pixels[idx] = c
		}
	}
}

// DrawMesh renders every face of mesh under transform. tex may be nil, in
// which case the mesh is filled with color.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, color Color, tex *Texture, lightDir math3d.Vec3) {
	// Normals go through the inverse transpose so non-uniform scale stays
	// correct; MulVec3Dir on the transposed inverse does that.
	normalMat := transpose(transform.Inverse())

	tint := color
	if tex != nil {
		tint = ColorWhite
	}

	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		var tri Triangle
		for k, vi := range face {
			p, n, uv := mesh.GetVertex(vi)
			tri.V[k] = Vertex{
				Position: transform.MulVec3(p),
				Normal:   normalMat.MulVec3Dir(n).Normalize(),
				UV:       uv,
				Color:    tint,
			}
		}
		r.DrawTriangle(tri, tex, lightDir)
	}
}

// DrawMeshWireframe renders the edges of every face.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, color Color) {
	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)
		var p [3]math3d.Vec3
		for k, vi := range face {
			pos, _, _ := mesh.GetVertex(vi)
			p[k] = transform.MulVec3(pos)
		}
		r.DrawLine3D(p[0], p[1], color)
		r.DrawLine3D(p[1], p[2], color)
		r.DrawLine3D(p[2], p[0], color)
	}
}

// DrawLine3D projects a world-space segment and draws it without depth
// testing. Segments with an end behind the camera are skipped.
func (r *Rasterizer) DrawLine3D(a, b math3d.Vec3, color Color) {
	viewProj := r.camera.ViewProjectionMatrix()
	ca := viewProj.MulVec4(math3d.V4FromV3(a, 1))
	cb := viewProj.MulVec4(math3d.V4FromV3(b, 1))
	if ca.W <= 0 || cb.W <= 0 {
		return
	}

	toScreen := func(c math3d.Vec4) (float64, float64) {
		return (c.X/c.W + 1) * 0.5 * float64(r.Width()),
			(1 - c.Y/c.W) * 0.5 * float64(r.Height())
	}
	x0, y0 := toScreen(ca)
	x1, y1 := toScreen(cb)
	r.fb.drawSegment(x0, y0, x1, y1, color)
}

// DrawBox outlines the box [lo, hi] under transform.
func (r *Rasterizer) DrawBox(lo, hi math3d.Vec3, transform math3d.Mat4, color Color) {
	var c [8]math3d.Vec3
	for i := range 8 {
		p := lo
		if i&1 != 0 {
			p.X = hi.X
		}
		if i&2 != 0 {
			p.Y = hi.Y
		}
		if i&4 != 0 {
			p.Z = hi.Z
		}
		c[i] = transform.MulVec3(p)
	}

	// Edges join corners that differ in exactly one bit.
	for i := range 8 {
		for _, bit := range []int{1, 2, 4} {
			if j := i | bit; j != i {
				r.DrawLine3D(c[i], c[j], color)
			}
		}
	}
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

// interpolateColor3 interpolates between 3 colors using barycentric coords.
func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	ch := func(a, b, c uint8) uint8 {
		f := float64(a)*bc.X + float64(b)*bc.Y + float64(c)*bc.Z + 0.5
		return uint8(math.Max(0, math.Min(255, f)))
	}
	return RGB(ch(c0.R, c1.R, c2.R), ch(c0.G, c1.G, c2.G), ch(c0.B, c1.B, c2.B))
}

func transpose(m math3d.Mat4) math3d.Mat4 {
	var t math3d.Mat4
	for row := range 4 {
		for col := range 4 {
			t[col+row*4] = m[row+col*4]
		}
	}
	return t
}

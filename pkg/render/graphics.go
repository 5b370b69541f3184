package render

import (
	"math"

	"github.com/taigrr/objview/pkg/math3d"
)

// DrawStats counts what a Graphics drew since the last ResetStats.
type DrawStats struct {
	Draws     int // Draw calls
	Textured  int // Draw calls colored from the bound texture
	Colored   int // Draw calls colored from the current color
	Triangles int
}

// Graphics is an immediate-mode drawing context in the style of OpenGL's
// fixed pipeline: a model matrix stack, a current color, an optional bound
// texture and global depth/lighting switches. It is not safe for
// concurrent use.
type Graphics struct {
	camera *Camera
	fb     *Framebuffer
	raster *Rasterizer

	stack []math3d.Mat4

	color      Color
	bound      *Texture
	useTexture bool

	// LightDir is the world-space direction towards the light.
	LightDir math3d.Vec3
	// Wireframe draws mesh edges instead of filled triangles.
	Wireframe bool

	Stats DrawStats
}

// NewGraphics creates a context drawing into fb as seen from camera.
func NewGraphics(camera *Camera, fb *Framebuffer) *Graphics {
	return &Graphics{
		camera:   camera,
		fb:       fb,
		raster:   NewRasterizer(camera, fb),
		stack:    []math3d.Mat4{math3d.Identity()},
		color:    ColorWhite,
		LightDir: math3d.V3(0.5, 1, 0.3).Normalize(),
	}
}

// Camera returns the camera the context projects through.
func (g *Graphics) Camera() *Camera { return g.camera }

// Framebuffer returns the render target.
func (g *Graphics) Framebuffer() *Framebuffer { return g.fb }

// Clear fills the target with c and resets depth.
func (g *Graphics) Clear(c Color) {
	g.fb.Clear(c)
	g.raster.ClearDepth()
}

// DepthTesting toggles the Z-buffer test.
func (g *Graphics) DepthTesting(on bool) { g.raster.DepthTest = on }

// Lighting toggles diffuse lighting.
func (g *Graphics) Lighting(on bool) { g.raster.Lighting = on }

// PushMatrix saves the current model matrix.
func (g *Graphics) PushMatrix() {
	g.stack = append(g.stack, g.ModelMatrix())
}

// PopMatrix restores the last pushed model matrix. Popping the base entry
// resets it to identity.
func (g *Graphics) PopMatrix() {
	if len(g.stack) == 1 {
		g.stack[0] = math3d.Identity()
		return
	}
	g.stack = g.stack[:len(g.stack)-1]
}

// ModelMatrix returns the current model matrix.
func (g *Graphics) ModelMatrix() math3d.Mat4 {
	return g.stack[len(g.stack)-1]
}

// MultMatrix post-multiplies the current model matrix by m.
func (g *Graphics) MultMatrix(m math3d.Mat4) {
	top := len(g.stack) - 1
	g.stack[top] = g.stack[top].Mul(m)
}

// Translate applies a translation.
func (g *Graphics) Translate(v math3d.Vec3) {
	g.MultMatrix(math3d.Translate(v))
}

// Rotate applies a rotation of degrees around axis.
func (g *Graphics) Rotate(degrees float64, axis math3d.Vec3) {
	g.MultMatrix(math3d.Rotate(axis, degrees*math.Pi/180))
}

// Scale applies a uniform scale.
func (g *Graphics) Scale(s float64) {
	g.MultMatrix(math3d.ScaleUniform(s))
}

// Color sets the current color and makes it the color source.
func (g *Graphics) Color(c Color) {
	g.color = c
	g.useTexture = false
}

// BindTexture makes t the bound texture.
func (g *Graphics) BindTexture(t *Texture) { g.bound = t }

// UnbindTexture clears the bound texture.
func (g *Graphics) UnbindTexture() {
	g.bound = nil
	g.useTexture = false
}

// Texture makes the bound texture the color source. With nothing bound the
// current color is used.
func (g *Graphics) Texture() { g.useTexture = true }

// Draw renders mesh under the current model matrix with the current color
// source.
func (g *Graphics) Draw(mesh MeshRenderer) {
	g.Stats.Draws++
	g.Stats.Triangles += mesh.TriangleCount()
	model := g.ModelMatrix()

	if g.Wireframe {
		g.Stats.Colored++
		g.raster.DrawMeshWireframe(mesh, model, g.color)
		return
	}

	var tex *Texture
	if g.useTexture && g.bound != nil {
		tex = g.bound
		g.Stats.Textured++
	} else {
		g.Stats.Colored++
	}
	g.raster.DrawMesh(mesh, model, g.color, tex, g.LightDir)
}

// DrawBox outlines the box [lo, hi] under the current model matrix.
func (g *Graphics) DrawBox(lo, hi math3d.Vec3, c Color) {
	g.raster.DrawBox(lo, hi, g.ModelMatrix(), c)
}

// ResetStats zeroes the draw counters.
func (g *Graphics) ResetStats() { g.Stats = DrawStats{} }

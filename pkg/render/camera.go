package render

import (
	"math"

	"github.com/taigrr/objview/pkg/math3d"
)

// Camera is a pinhole camera at Position looking down -Z. Orientation is
// applied to the scene instead, through the Graphics matrix stack.
type Camera struct {
	Position math3d.Vec3

	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64
	Far         float64

	viewProj math3d.Mat4
	dirty    bool
}

// NewCamera creates a camera at the origin with a 60° field of view.
func NewCamera() *Camera {
	return &Camera{
		FOV:         math.Pi / 3,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         100,
		dirty:       true,
	}
}

// SetPosition sets the camera position.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.dirty = true
}

// SetFOV sets the vertical field of view in radians.
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.dirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.dirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.dirty = true
}

// ViewMatrix moves the world opposite to the camera.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return math3d.Translate(c.Position.Negate())
}

// ProjectionMatrix returns the perspective projection.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
}

// ViewProjectionMatrix returns projection * view, cached until the camera
// changes.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.dirty {
		c.viewProj = c.ProjectionMatrix().Mul(c.ViewMatrix())
		c.dirty = false
	}
	return c.viewProj
}

// ScreenRay returns the world-space ray through the center of pixel (x, y)
// of a width×height target.
func (c *Camera) ScreenRay(x, y, width, height int) math3d.Ray {
	ndcX := (float64(x)+0.5)/float64(width)*2 - 1
	ndcY := 1 - (float64(y)+0.5)/float64(height)*2

	inv := c.ViewProjectionMatrix().Inverse()
	near := inv.MulVec3(math3d.V3(ndcX, ndcY, -1))
	far := inv.MulVec3(math3d.V3(ndcX, ndcY, 1))

	return math3d.Ray{Origin: near, Dir: far.Sub(near).Normalize()}
}

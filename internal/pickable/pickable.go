// Package pickable does ray picking against the meshes of a scene. Each mesh
// gets a bounding box; a parent groups them under a shared pose.
package pickable

import (
	"math"

	"github.com/taigrr/objview/internal/param"
	"github.com/taigrr/objview/pkg/math3d"
	"github.com/taigrr/objview/pkg/models"
)

// BoundingBox is the axis-aligned box of one mesh, in mesh coordinates.
type BoundingBox struct {
	Name     string
	Min, Max math3d.Vec3
}

// NewBoundingBox creates a box around mesh.
func NewBoundingBox(mesh *models.Mesh) *BoundingBox {
	b := &BoundingBox{}
	b.Set(mesh)
	return b
}

// Set fits the box to mesh.
func (b *BoundingBox) Set(mesh *models.Mesh) {
	b.Name = mesh.Name
	b.Min, b.Max = mesh.GetBounds()
}

// Center returns the middle of the box.
func (b *BoundingBox) Center() math3d.Vec3 { return b.Min.Add(b.Max).Scale(0.5) }

// Intersect returns the ray distance to the box.
func (b *BoundingBox) Intersect(ray math3d.Ray) (float64, bool) {
	return ray.IntersectBox(b.Min, b.Max)
}

// Parent groups boxes under a pose. The pose is a parameter so it can be
// shared over the network.
type Parent struct {
	Pose *param.Vec3
	// ContainChildren makes Bounds the union of the children's boxes.
	ContainChildren bool

	children []*BoundingBox
}

// NewParent creates an empty parent with its pose at the origin.
func NewParent() *Parent {
	return &Parent{Pose: param.NewVec3("pose", "", math3d.Zero3())}
}

// AddChild appends c.
func (p *Parent) AddChild(c *BoundingBox) { p.children = append(p.children, c) }

// Clear drops every child.
func (p *Parent) Clear() { p.children = nil }

// Children returns the children in insertion order.
func (p *Parent) Children() []*BoundingBox { return p.children }

// Len returns the number of children.
func (p *Parent) Len() int { return len(p.children) }

// Transform places the parent at its pose.
func (p *Parent) Transform() math3d.Mat4 { return math3d.Translate(p.Pose.Get()) }

// Intersect tests ray, given in child coordinates, against every child and
// returns the nearest hit.
func (p *Parent) Intersect(ray math3d.Ray) (index int, dist float64, ok bool) {
	index, dist = -1, math.Inf(1)
	for i, c := range p.children {
		if t, hit := c.Intersect(ray); hit && t < dist {
			index, dist = i, t
		}
	}
	return index, dist, index >= 0
}

// Bounds returns the union of the children's boxes when ContainChildren is
// set. ok is false when there is nothing to contain.
func (p *Parent) Bounds() (lo, hi math3d.Vec3, ok bool) {
	if !p.ContainChildren || len(p.children) == 0 {
		return lo, hi, false
	}
	lo, hi = p.children[0].Min, p.children[0].Max
	for _, c := range p.children[1:] {
		lo = lo.Min(c.Min)
		hi = hi.Max(c.Max)
	}
	return lo, hi, true
}

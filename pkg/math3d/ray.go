package math3d

import "math"

// Ray is a half-line starting at Origin heading along Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Transform maps the ray through m. Dir is not renormalized, so hit
// distances stay comparable between spaces.
func (r Ray) Transform(m Mat4) Ray {
	return Ray{Origin: m.MulVec3(r.Origin), Dir: m.MulVec3Dir(r.Dir)}
}

// IntersectBox runs the slab test against the box [min, max] and returns the
// entry distance. A ray starting inside the box hits at t = 0.
func (r Ray) IntersectBox(min, max Vec3) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)

	origin := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float64{r.Dir.X, r.Dir.Y, r.Dir.Z}
	lo := [3]float64{min.X, min.Y, min.Z}
	hi := [3]float64{max.X, max.Y, max.Z}

	for i := range 3 {
		if dir[i] == 0 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / dir[i]
		t2 := (hi[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}

	if tmax < 0 {
		return 0, false
	}
	return math.Max(tmin, 0), true
}

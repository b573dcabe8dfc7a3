package tracer

import (
	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/chewxy/math32"
)

// Ray is a half-line starting at Origin and extending along Direction.
// Direction does not need to be normalized; hit distances are expressed in units of Direction.
type Ray struct {
	Origin    common.Vec3
	Direction common.Vec3
}

// At returns the point Origin + Direction*t.
func (r Ray) At(t float32) common.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Sphere is an immutable sphere primitive with a flat color.
type Sphere struct {
	// Center is the sphere center in world space.
	Center common.Vec3
	// Radius must be >= 0.
	Radius float32
	// Color tints every ray that bounces off the sphere.
	Color common.Color
}

// Intersect tests the ray against the sphere and returns the distance to the nearest hit in front of
// the ray origin. If the origin lies inside (or on) the sphere the exit distance is returned instead.
// Spheres entirely behind the origin and rays with a zero-length direction never hit.
//
// Parameters:
//   - ray: the ray to test
//
// Returns:
//   - float32: the hit distance along the ray, in units of ray.Direction
//   - bool: true if the ray hits the sphere
func (s Sphere) Intersect(ray Ray) (float32, bool) {
	oc := ray.Origin.Sub(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	if a == 0 {
		return 0, false
	}
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	disc := halfB*halfB - a*c
	if disc < 0 {
		return 0, false
	}
	sq := math32.Sqrt(disc)

	// origin inside or on the surface: the far root is the exit point
	if c <= 0 {
		return (-halfB + sq) / a, true
	}

	t := (-halfB - sq) / a
	if t < 0 {
		return 0, false
	}
	return t, true
}

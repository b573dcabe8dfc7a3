package common

import "github.com/chewxy/math32"

// Vec3 is a 3-component float32 vector used for points and directions in world space.
type Vec3 [3]float32

// Color is a linear RGBA color with float32 components.
// The memory layout matches a single RGBA32Float texel so slices of Color can be uploaded directly.
type Color [4]float32

var (
	// Black is fully transparent black (0, 0, 0, 0).
	Black = Color{0, 0, 0, 0}

	// White is opaque white (1, 1, 1, 1).
	White = Color{1, 1, 1, 1}
)

// Add returns the component-wise sum v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Sub returns the component-wise difference v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Scale returns v multiplied by the scalar s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

// Length returns the euclidean length of v.
func (v Vec3) Length() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalize returns v scaled to unit length.
// A zero-length vector is returned unchanged.
//
// Returns:
//   - Vec3: the unit-length vector, or v itself when its length is zero
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Reflect mirrors the incident vector v about the normal n: v - 2(v·n)n.
// The normal is expected to be unit length.
//
// Parameters:
//   - n: the unit surface normal to reflect about
//
// Returns:
//   - Vec3: the reflected vector
func (v Vec3) Reflect(n Vec3) Vec3 {
	return v.Sub(n.Scale(2 * v.Dot(n)))
}

// Add returns the component-wise sum c + o.
func (c Color) Add(o Color) Color {
	return Color{c[0] + o[0], c[1] + o[1], c[2] + o[2], c[3] + o[3]}
}

// Mul returns the component-wise product c * o, used to tint a bounce color by a surface color.
func (c Color) Mul(o Color) Color {
	return Color{c[0] * o[0], c[1] * o[1], c[2] * o[2], c[3] * o[3]}
}

// Clamped returns c with every component clamped to [0, 1].
func (c Color) Clamped() Color {
	return Color{Clamp01(c[0]), Clamp01(c[1]), Clamp01(c[2]), Clamp01(c[3])}
}

package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer and texture uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Clamp01 clamps v to the [0, 1] range. NaN clamps to 0.
func Clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// LookAtBasis computes the orthonormal camera basis used by a right-handed LookAt view matrix.
// The returned back vector points from the target towards the eye, so the viewing direction is -back.
// If eye and target coincide, or up is parallel to the view direction, the degenerate axis falls back
// to an unnormalized zero-safe result in the same way the LookAt matrix does.
//
// Parameters:
//   - eye: camera position in world space
//   - target: point the camera looks at
//   - up: up vector defining camera orientation (typically 0,1,0)
//
// Returns:
//   - right: the camera's local +X axis
//   - camUp: the camera's local +Y axis
//   - back: the camera's local +Z axis
func LookAtBasis(eye, target, up Vec3) (right, camUp, back Vec3) {
	back = eye.Sub(target)
	if l := back.Length(); l > 0 {
		back = back.Scale(1 / l)
	}

	right = up.Cross(back)
	if l := right.Length(); l > 0 {
		right = right.Scale(1 / l)
	}

	camUp = back.Cross(right)
	return right, camUp, back
}

// Radians converts an angle in degrees to radians.
func Radians(degrees float32) float32 {
	return degrees * math32.Pi / 180
}

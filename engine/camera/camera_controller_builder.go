package camera

import "github.com/Carmen-Shannon/oxy-trace/common"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithPosition sets the initial world-space position.
//
// Parameters:
//   - p: the starting position
//
// Returns:
//   - CameraControllerOption: functional option to set the position
func WithPosition(p common.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.position = p
	}
}

// WithYaw sets the initial horizontal angle around the Y axis.
//
// Parameters:
//   - yaw: horizontal angle in radians (0 = +Z axis)
//
// Returns:
//   - CameraControllerOption: functional option to set the yaw
func WithYaw(yaw float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.yaw = yaw
	}
}

// WithPitch sets the initial vertical angle from the horizontal plane.
// The value is clamped to the pitch limit once all options are applied.
//
// Parameters:
//   - pitch: vertical angle in radians (0 = horizontal)
//
// Returns:
//   - CameraControllerOption: functional option to set the pitch
func WithPitch(pitch float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.pitch = pitch
	}
}

// WithPitchLimit sets the maximum absolute pitch.
//
// Parameters:
//   - limit: maximum vertical angle in radians, must be below π/2
//
// Returns:
//   - CameraControllerOption: functional option to set the pitch limit
func WithPitchLimit(limit float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if limit > 0 && limit < 1.5707963 {
			cc.pitchLimit = limit
		}
	}
}

// WithMoveSpeed sets the movement speed.
//
// Parameters:
//   - speed: world units per second
//
// Returns:
//   - CameraControllerOption: functional option to set move speed
func WithMoveSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.moveSpeed = speed
	}
}

// WithMouseSensitivity sets the mouse look sensitivity.
//
// Parameters:
//   - sensitivity: radians per pixel of cursor movement
//
// Returns:
//   - CameraControllerOption: functional option to set mouse sensitivity
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.mouseSensitivity = sensitivity
	}
}

// WithFastMultiplier sets the speed multiplier applied while the fast modifier is held.
//
// Parameters:
//   - multiplier: speed multiplier
//
// Returns:
//   - CameraControllerOption: functional option to set the fast multiplier
func WithFastMultiplier(multiplier float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.fastMultiplier = multiplier
	}
}

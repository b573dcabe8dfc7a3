package camera

import "github.com/Carmen-Shannon/oxy-trace/common"

// CameraController defines the fly camera control system.
// Controllers own positional state (position, yaw, pitch). Camera reads position and
// target from the controller and derives its ray basis.
//
// Yaw 0 and pitch 0 look down +Z. Positive pitch looks up.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - common.Vec3: world-space camera position
	Position() common.Vec3

	// SetPosition sets the camera's world-space position directly.
	//
	// Parameters:
	//   - p: world-space coordinates
	SetPosition(p common.Vec3)

	// Target returns the look-at point one unit in front of the camera.
	//
	// Returns:
	//   - common.Vec3: world-space target position
	Target() common.Vec3

	// Forward returns the unit viewing direction.
	//
	// Returns:
	//   - common.Vec3: the forward vector
	Forward() common.Vec3

	// Yaw returns the horizontal angle around the world Y axis.
	//
	// Returns:
	//   - float32: yaw in radians
	Yaw() float32

	// SetYaw sets the horizontal angle directly.
	//
	// Parameters:
	//   - yaw: new horizontal angle in radians
	SetYaw(yaw float32)

	// Pitch returns the vertical angle from the horizontal plane.
	//
	// Returns:
	//   - float32: pitch in radians
	Pitch() float32

	// SetPitch sets the vertical angle directly, clamped to the pitch limit.
	//
	// Parameters:
	//   - pitch: new vertical angle in radians
	SetPitch(pitch float32)

	// Move translates the camera. forward and right move along the view direction and its
	// horizontal right axis; up moves along world Y. Each axis is expected in [-1, 1] and is
	// scaled by MoveSpeed, dt, and FastMultiplier when fast is set.
	//
	// Parameters:
	//   - forward: forward/backward input axis
	//   - right: right/left input axis
	//   - up: up/down input axis
	//   - dt: frame delta time in seconds
	//   - fast: whether the fast modifier is held
	Move(forward, right, up, dt float32, fast bool)

	// Look rotates the camera by a mouse delta in pixels scaled by MouseSensitivity.
	// Moving the mouse right turns right and moving it down looks down.
	//
	// Parameters:
	//   - dx: horizontal cursor delta in pixels
	//   - dy: vertical cursor delta in pixels
	Look(dx, dy float32)

	// MoveSpeed returns the movement speed in world units per second.
	//
	// Returns:
	//   - float32: movement speed
	MoveSpeed() float32

	// MouseSensitivity returns the mouse look sensitivity in radians per pixel.
	//
	// Returns:
	//   - float32: radians per pixel of cursor movement
	MouseSensitivity() float32

	// FastMultiplier returns the speed multiplier applied while the fast modifier is held.
	//
	// Returns:
	//   - float32: speed multiplier
	FastMultiplier() float32
}

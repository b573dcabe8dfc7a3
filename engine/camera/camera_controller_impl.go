package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/chewxy/math32"
)

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position common.Vec3
	yaw      float32
	pitch    float32

	// pitchLimit keeps the view direction away from the world up axis.
	pitchLimit float32

	moveSpeed        float32
	mouseSensitivity float32
	fastMultiplier   float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new fly camera controller.
// Defaults: position (0, 0, -5) looking down +Z, 5 units/s, 0.001 rad/px, 5x fast multiplier.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:       &sync.Mutex{},
		position: common.Vec3{0, 0, -5},

		pitchLimit: math32.Pi/2 - 0.01,

		moveSpeed:        5.0,
		mouseSensitivity: 0.001,
		fastMultiplier:   5.0,
	}

	for _, option := range options {
		option(cc)
	}

	cc.pitch = cc.clampPitch(cc.pitch)
	return cc
}

// --- internal helpers ---

// forward returns the unit view direction from yaw and pitch.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) forward() common.Vec3 {
	cosPitch := math32.Cos(cc.pitch)
	return common.Vec3{
		cosPitch * math32.Sin(cc.yaw),
		math32.Sin(cc.pitch),
		cosPitch * math32.Cos(cc.yaw),
	}
}

// clampPitch limits pitch to [-pitchLimit, pitchLimit].
func (cc *cameraControllerImpl) clampPitch(pitch float32) float32 {
	if pitch > cc.pitchLimit {
		return cc.pitchLimit
	}
	if pitch < -cc.pitchLimit {
		return -cc.pitchLimit
	}
	return pitch
}

// --- CameraController implementation ---

func (cc *cameraControllerImpl) Position() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) SetPosition(p common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = p
}

func (cc *cameraControllerImpl) Target() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position.Add(cc.forward())
}

func (cc *cameraControllerImpl) Forward() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.forward()
}

func (cc *cameraControllerImpl) Yaw() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.yaw
}

func (cc *cameraControllerImpl) SetYaw(yaw float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.yaw = yaw
}

func (cc *cameraControllerImpl) Pitch() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.pitch
}

func (cc *cameraControllerImpl) SetPitch(pitch float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pitch = cc.clampPitch(pitch)
}

func (cc *cameraControllerImpl) Move(forward, right, up, dt float32, fast bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	step := cc.moveSpeed * dt
	if fast {
		step *= cc.fastMultiplier
	}

	fwd := cc.forward()
	// same right axis as the LookAt basis: up x back, with back = -forward
	rightAxis, _, _ := common.LookAtBasis(common.Vec3{}, fwd, common.Vec3{0, 1, 0})

	cc.position = cc.position.
		Add(fwd.Scale(forward * step)).
		Add(rightAxis.Scale(right * step)).
		Add(common.Vec3{0, up * step, 0})
}

func (cc *cameraControllerImpl) Look(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	// +yaw swings forward towards +X, which is the camera's left in a right-handed basis
	cc.yaw -= dx * cc.mouseSensitivity
	cc.pitch = cc.clampPitch(cc.pitch - dy*cc.mouseSensitivity)
}

func (cc *cameraControllerImpl) MoveSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.moveSpeed
}

func (cc *cameraControllerImpl) MouseSensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.mouseSensitivity
}

func (cc *cameraControllerImpl) FastMultiplier() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.fastMultiplier
}

package camera

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/tracer"
	"github.com/chewxy/math32"
)

// view is an immutable snapshot of everything RayThroughPixel needs.
// A new snapshot is published on every Update or setter call, so tracer workers never take the camera mutex.
type view struct {
	eye     common.Vec3
	right   common.Vec3
	up      common.Vec3
	forward common.Vec3

	// halfHeight is tan(fov/2): the half extent of the image plane at distance 1.
	halfHeight float32
	aspect     float32
}

type cameraImpl struct {
	mu *sync.Mutex

	up     common.Vec3
	fov    float32
	aspect float32

	controller CameraController
	view       atomic.Pointer[view]
}

// Camera defines the interface for the ray tracing camera.
// The camera holds perspective settings and derives a LookAt basis from an attached
// CameraController each frame via Update(). Primary rays are generated from that basis.
type Camera interface {
	tracer.RayGenerator

	// Up returns the camera's world up vector.
	//
	// Returns:
	//   - common.Vec3: the up vector
	Up() common.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Position returns the eye position of the last published view.
	//
	// Returns:
	//   - common.Vec3: world-space eye position
	Position() common.Vec3

	// Basis returns the orthonormal camera axes of the last published view.
	//
	// Returns:
	//   - right: the camera's local +X axis
	//   - up: the camera's local +Y axis
	//   - forward: the viewing direction
	Basis() (right, up, forward common.Vec3)

	// Controller returns the attached CameraController.
	// Returns nil if no controller is attached.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// Update reads position and target from the controller and publishes a new view.
	// Should be called once per frame before tracing.
	// If no controller is attached, this method does nothing.
	Update()

	// SetUp sets the camera's world up vector.
	//
	// Parameters:
	//   - up: the up vector
	SetUp(up common.Vec3)

	// SetFov sets the vertical field of view in radians.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height). Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetController attaches a CameraController to the camera and publishes a view from it.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with a π/4 vertical field of view and a square aspect ratio.
// Without a controller the camera sits at the origin looking down +Z.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		up:     common.Vec3{0, 1, 0},
		fov:    math32.Pi / 4,
		aspect: 1.0,
	}
	for _, option := range options {
		option(c)
	}
	c.publish()
	return c
}

func (c *cameraImpl) Up() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Position() common.Vec3 {
	return c.view.Load().eye
}

func (c *cameraImpl) Basis() (right, up, forward common.Vec3) {
	v := c.view.Load()
	return v.right, v.up, v.forward
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return
	}
	c.publish()
}

func (c *cameraImpl) SetUp(up common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
	c.publish()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.publish()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 || math32.IsNaN(aspect) || math32.IsInf(aspect, 0) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.publish()
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.publish()
}

// RayThroughPixel returns the primary ray from the eye through the center of pixel (x, y)
// of a width x height image. Row 0 is the top of the image. The direction is unit length.
// Safe to call from multiple goroutines.
//
// Parameters:
//   - x: pixel column
//   - y: pixel row
//   - width: image width in pixels
//   - height: image height in pixels
//
// Returns:
//   - tracer.Ray: the primary ray
func (c *cameraImpl) RayThroughPixel(x, y, width, height int) tracer.Ray {
	v := c.view.Load()

	sx := (2*(float32(x)+0.5)/float32(width) - 1) * v.halfHeight * v.aspect
	sy := (1 - 2*(float32(y)+0.5)/float32(height)) * v.halfHeight

	dir := v.forward.Add(v.right.Scale(sx)).Add(v.up.Scale(sy))
	return tracer.Ray{Origin: v.eye, Direction: dir.Normalize()}
}

// publish recomputes the LookAt basis and stores a new view snapshot.
// Without a controller the eye sits at the origin looking down +Z.
// Caller must hold the mutex (or own the camera exclusively during construction).
func (c *cameraImpl) publish() {
	eye := common.Vec3{}
	target := common.Vec3{0, 0, 1}
	if c.controller != nil {
		eye = c.controller.Position()
		target = c.controller.Target()
	}

	right, up, back := common.LookAtBasis(eye, target, c.up)
	c.view.Store(&view{
		eye:        eye,
		right:      right,
		up:         up,
		forward:    back.Scale(-1),
		halfHeight: math32.Tan(c.fov / 2),
		aspect:     c.aspect,
	})
}

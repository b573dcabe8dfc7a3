package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/common"
)

// FlyInput collects window input events and applies them to a CameraController once per frame.
// Key and mouse events arrive on the window thread while Apply runs on the frame goroutine.
//
// Bindings: W/S forward and back, D/A right and left, Space/X up and down, Shift for fast movement,
// and mouse look while the left button is held.
type FlyInput struct {
	mu *sync.Mutex

	keys map[uint32]bool

	looking       bool
	lastX, lastY  int32
	pendingDX     float32
	pendingDY     float32
	hasLastCursor bool
}

// NewFlyInput creates an empty input state with no keys held.
//
// Returns:
//   - *FlyInput: the new input state
func NewFlyInput() *FlyInput {
	return &FlyInput{
		mu:   &sync.Mutex{},
		keys: make(map[uint32]bool),
	}
}

// KeyDown records a key press.
//
// Parameters:
//   - keyCode: the virtual key code
func (in *FlyInput) KeyDown(keyCode uint32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.keys[keyCode] = true
}

// KeyUp records a key release.
//
// Parameters:
//   - keyCode: the virtual key code
func (in *FlyInput) KeyUp(keyCode uint32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.keys[keyCode] = false
}

// IsKeyDown reports whether the key is currently held.
//
// Parameters:
//   - keyCode: the virtual key code
//
// Returns:
//   - bool: true while the key is held
func (in *FlyInput) IsKeyDown(keyCode uint32) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.keys[keyCode]
}

// MouseDown starts mouse look when the left button is pressed.
//
// Parameters:
//   - button: the mouse button
//   - x, y: cursor position in window pixels
func (in *FlyInput) MouseDown(button int, x, y int32) {
	if button != common.MouseButtonLeft {
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.looking = true
	in.lastX, in.lastY = x, y
	in.hasLastCursor = true
}

// MouseUp stops mouse look when the left button is released.
//
// Parameters:
//   - button: the mouse button
//   - x, y: cursor position in window pixels
func (in *FlyInput) MouseUp(button int, _, _ int32) {
	if button != common.MouseButtonLeft {
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.looking = false
}

// MouseMove accumulates the cursor delta while mouse look is active.
//
// Parameters:
//   - x, y: cursor position in window pixels
func (in *FlyInput) MouseMove(x, y int32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.looking && in.hasLastCursor {
		in.pendingDX += float32(x - in.lastX)
		in.pendingDY += float32(y - in.lastY)
	}
	in.lastX, in.lastY = x, y
	in.hasLastCursor = true
}

// Apply moves and rotates ctrl from the held keys and the cursor delta accumulated since the last call.
//
// Parameters:
//   - ctrl: the controller to drive
//   - dt: frame delta time in seconds
func (in *FlyInput) Apply(ctrl CameraController, dt float32) {
	in.mu.Lock()
	forward := axis(in.keys[common.KeyW], in.keys[common.KeyS])
	right := axis(in.keys[common.KeyD], in.keys[common.KeyA])
	up := axis(in.keys[common.KeySpace], in.keys[common.KeyX])
	fast := in.keys[common.KeyLeftShift] || in.keys[common.KeyRightShift]
	dx, dy := in.pendingDX, in.pendingDY
	in.pendingDX, in.pendingDY = 0, 0
	in.mu.Unlock()

	if dx != 0 || dy != 0 {
		ctrl.Look(dx, dy)
	}
	if forward != 0 || right != 0 || up != 0 {
		ctrl.Move(forward, right, up, dt, fast)
	}
}

// axis maps a pair of opposing keys to -1, 0, or 1.
func axis(positive, negative bool) float32 {
	var v float32
	if positive {
		v++
	}
	if negative {
		v--
	}
	return v
}

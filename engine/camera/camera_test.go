package camera

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-5

func assertVecNear(t *testing.T, want, got common.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], eps, "component %d of %v", i, got)
	}
}

func TestNewCameraController_Defaults(t *testing.T) {
	cc := NewCameraController()

	assert.Equal(t, common.Vec3{0, 0, -5}, cc.Position())
	assert.Equal(t, float32(5), cc.MoveSpeed())
	assert.Equal(t, float32(0.001), cc.MouseSensitivity())
	assertVecNear(t, common.Vec3{0, 0, 1}, cc.Forward())
	assertVecNear(t, common.Vec3{0, 0, -4}, cc.Target())
}

func TestCameraController_PitchIsClamped(t *testing.T) {
	cc := NewCameraController(WithPitch(10))
	assert.Less(t, cc.Pitch(), math32.Pi/2)

	cc.SetPitch(-10)
	assert.Greater(t, cc.Pitch(), -math32.Pi/2)

	cc.SetPitch(0)
	cc.Look(0, -1e6)
	assert.Less(t, cc.Pitch(), math32.Pi/2)
	assert.Greater(t, cc.Pitch(), float32(0))
}

func TestCameraController_Move(t *testing.T) {
	cc := NewCameraController(WithPosition(common.Vec3{}))

	cc.Move(1, 0, 0, 0.5, false)
	assertVecNear(t, common.Vec3{0, 0, 2.5}, cc.Position())

	cc.Move(0, 0, 1, 1, false)
	assertVecNear(t, common.Vec3{0, 5, 2.5}, cc.Position())

	cc.Move(-1, 0, 0, 0.1, true)
	assertVecNear(t, common.Vec3{0, 5, 0}, cc.Position())
}

func TestCameraController_MoveRightMatchesCameraBasis(t *testing.T) {
	cc := NewCameraController(WithPosition(common.Vec3{}), WithYaw(0.7))
	cam := NewCamera(WithController(cc))
	right, _, _ := cam.Basis()

	cc.Move(0, 1, 0, 1, false)
	assertVecNear(t, right.Scale(5), cc.Position())
}

func TestCameraController_LookTurnsTowardsScreenRight(t *testing.T) {
	cc := NewCameraController()
	cam := NewCamera(WithController(cc))
	right, _, _ := cam.Basis()

	cc.Look(100, 0)
	fwd := cc.Forward()
	assert.Greater(t, fwd.Dot(right), float32(0))

	cc.SetYaw(0)
	cc.Look(0, 100)
	assert.Less(t, cc.Forward()[1], float32(0), "moving the mouse down looks down")
}

func TestNewCamera_DefaultsWithoutController(t *testing.T) {
	cam := NewCamera()

	assert.InDelta(t, math32.Pi/4, cam.Fov(), eps)
	assert.Equal(t, float32(1), cam.Aspect())
	assert.Nil(t, cam.Controller())
	assert.Equal(t, common.Vec3{}, cam.Position())

	right, up, fwd := cam.Basis()
	assertVecNear(t, common.Vec3{0, 0, 1}, fwd)
	assertVecNear(t, common.Vec3{0, 1, 0}, up)
	assertVecNear(t, common.Vec3{-1, 0, 0}, right)
}

func TestCamera_RayThroughCenterPixelIsForward(t *testing.T) {
	cc := NewCameraController()
	cam := NewCamera(WithController(cc), WithAspect(16.0/9.0))

	ray := cam.RayThroughPixel(1, 1, 3, 3)
	assertVecNear(t, common.Vec3{0, 0, -5}, ray.Origin)
	assertVecNear(t, common.Vec3{0, 0, 1}, ray.Direction)
}

func TestCamera_RayDirectionsAreUnitAndOriented(t *testing.T) {
	cam := NewCamera(WithAspect(2))
	right, up, _ := cam.Basis()

	topLeft := cam.RayThroughPixel(0, 0, 8, 4)
	bottomRight := cam.RayThroughPixel(7, 3, 8, 4)

	assert.InDelta(t, 1, topLeft.Direction.Length(), eps)
	assert.InDelta(t, 1, bottomRight.Direction.Length(), eps)

	assert.Greater(t, topLeft.Direction.Dot(up), float32(0))
	assert.Less(t, topLeft.Direction.Dot(right), float32(0))
	assert.Less(t, bottomRight.Direction.Dot(up), float32(0))
	assert.Greater(t, bottomRight.Direction.Dot(right), float32(0))
}

func TestCamera_EdgeRayMatchesFov(t *testing.T) {
	fov := math32.Pi / 2
	cam := NewCamera(WithFov(fov))

	// pixel centers of a 1000-row image approach the top edge of the image plane
	ray := cam.RayThroughPixel(500, 0, 1001, 1000)
	d := ray.Direction
	angle := math32.Atan2(d[1], d[2])
	assert.InDelta(t, fov/2, angle, 2e-3)
}

func TestCamera_UpdateFollowsController(t *testing.T) {
	cc := NewCameraController()
	cam := NewCamera(WithController(cc))

	cc.SetPosition(common.Vec3{1, 2, 3})
	assertVecNear(t, common.Vec3{0, 0, -5}, cam.Position())

	cam.Update()
	assertVecNear(t, common.Vec3{1, 2, 3}, cam.Position())
}

func TestCamera_SetAspectIgnoresInvalid(t *testing.T) {
	cam := NewCamera(WithAspect(1.5))
	cam.SetAspect(0)
	cam.SetAspect(-2)
	cam.SetAspect(math32.NaN())
	assert.Equal(t, float32(1.5), cam.Aspect())

	cam.SetAspect(2)
	assert.Equal(t, float32(2), cam.Aspect())
}

func TestCamera_ConcurrentRaysDuringUpdate(t *testing.T) {
	cc := NewCameraController()
	cam := NewCamera(WithController(cc))

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 1000 {
				r := cam.RayThroughPixel(i%10, i%7, 10, 7)
				assert.InDelta(t, 1, r.Direction.Length(), eps)
			}
		}()
	}
	for range 100 {
		cc.Look(1, 0)
		cam.Update()
	}
	wg.Wait()
}

func TestFlyInput_Apply(t *testing.T) {
	cc := NewCameraController(WithPosition(common.Vec3{}))
	in := NewFlyInput()

	in.KeyDown(common.KeyW)
	in.Apply(cc, 1)
	assertVecNear(t, common.Vec3{0, 0, 5}, cc.Position())

	in.KeyUp(common.KeyW)
	in.KeyDown(common.KeySpace)
	in.KeyDown(common.KeyLeftShift)
	in.Apply(cc, 0.1)
	assertVecNear(t, common.Vec3{0, 2.5, 5}, cc.Position())

	in.KeyDown(common.KeyX)
	in.Apply(cc, 1)
	assertVecNear(t, common.Vec3{0, 2.5, 5}, cc.Position())
}

func TestFlyInput_MouseLookOnlyWhileLeftButtonHeld(t *testing.T) {
	cc := NewCameraController()
	in := NewFlyInput()

	in.MouseMove(10, 10)
	in.MouseMove(200, 10)
	in.Apply(cc, 0)
	assert.Equal(t, float32(0), cc.Yaw())

	in.MouseDown(common.MouseButtonRight, 200, 10)
	in.MouseMove(300, 10)
	in.Apply(cc, 0)
	assert.Equal(t, float32(0), cc.Yaw())

	in.MouseDown(common.MouseButtonLeft, 300, 10)
	in.MouseMove(310, 10)
	in.MouseMove(320, 30)
	in.Apply(cc, 0)
	assert.InDelta(t, -0.02, cc.Yaw(), eps)
	assert.InDelta(t, -0.02, cc.Pitch(), eps)

	// accumulated delta is consumed
	in.Apply(cc, 0)
	assert.InDelta(t, -0.02, cc.Yaw(), eps)

	in.MouseUp(common.MouseButtonLeft, 320, 30)
	in.MouseMove(400, 30)
	in.Apply(cc, 0)
	assert.InDelta(t, -0.02, cc.Yaw(), eps)
}

func TestFlyInput_IsKeyDown(t *testing.T) {
	in := NewFlyInput()
	require.False(t, in.IsKeyDown(common.KeyEsc))
	in.KeyDown(common.KeyEsc)
	assert.True(t, in.IsKeyDown(common.KeyEsc))
	in.KeyUp(common.KeyEsc)
	assert.False(t, in.IsKeyDown(common.KeyEsc))
}

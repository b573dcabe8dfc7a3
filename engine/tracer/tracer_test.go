package tracer

import (
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bufferTarget is an in-memory PixelTarget.
type bufferTarget struct {
	w, h   int
	pixels []common.Color
}

func newBufferTarget(w, h int) *bufferTarget {
	return &bufferTarget{w: w, h: h, pixels: make([]common.Color, w*h)}
}

func (b *bufferTarget) Width() int  { return b.w }
func (b *bufferTarget) Height() int { return b.h }
func (b *bufferTarget) SetColor(x, y int, c common.Color) {
	b.pixels[y*b.w+x] = c
}

// pinholeCamera fans rays out from a fixed eye looking down +Z.
type pinholeCamera struct {
	eye common.Vec3
}

func (p pinholeCamera) RayThroughPixel(x, y, width, height int) Ray {
	u := (float32(x)+0.5)/float32(width)*2 - 1
	v := 1 - (float32(y)+0.5)/float32(height)*2
	return Ray{Origin: p.eye, Direction: common.Vec3{u, v, 1}.Normalize()}
}

var grey = common.Color{0.5, 0.5, 0.5, 1}

func unitSphereScene() Scene {
	return NewScene(WithSpheres(Sphere{Center: common.Vec3{0, 0, 0}, Radius: 1, Color: grey}))
}

func TestSphereIntersect(t *testing.T) {
	s := Sphere{Center: common.Vec3{0, 0, 0}, Radius: 1}

	tests := []struct {
		name   string
		ray    Ray
		want   float32
		wantOk bool
	}{
		{"head on", Ray{common.Vec3{0, 0, -5}, common.Vec3{0, 0, 1}}, 4, true},
		{"non unit direction", Ray{common.Vec3{0, 0, -5}, common.Vec3{0, 0, 2}}, 2, true},
		{"tangent", Ray{common.Vec3{1, 0, -5}, common.Vec3{0, 0, 1}}, 5, true},
		{"origin inside returns exit", Ray{common.Vec3{0, 0, 0}, common.Vec3{0, 0, 1}}, 1, true},
		{"sphere behind origin", Ray{common.Vec3{0, 0, 5}, common.Vec3{0, 0, 1}}, 0, false},
		{"miss", Ray{common.Vec3{0, 2, -5}, common.Vec3{0, 0, 1}}, 0, false},
		{"zero direction", Ray{common.Vec3{0, 0, -5}, common.Vec3{}}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Intersect(tt.ray)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindClosestHitPicksNearest(t *testing.T) {
	far := Sphere{Center: common.Vec3{0, 0, 0}, Radius: 1, Color: common.Color{1, 0, 0, 1}}
	near := Sphere{Center: common.Vec3{0, 0, -2}, Radius: 1, Color: common.Color{0, 1, 0, 1}}
	s := NewScene(WithSpheres(far, near))

	hit, dist, ok := s.FindClosestHit(Ray{common.Vec3{0, 0, -5}, common.Vec3{0, 0, 1}})
	require.True(t, ok)
	assert.Equal(t, near, hit)
	assert.Equal(t, float32(2), dist)
}

func TestFindClosestHitTieGoesToFirstAdded(t *testing.T) {
	first := Sphere{Center: common.Vec3{0, 0, 0}, Radius: 1, Color: common.Color{1, 0, 0, 1}}
	second := Sphere{Center: common.Vec3{0, 0, 0}, Radius: 1, Color: common.Color{0, 0, 1, 1}}
	s := NewScene()
	s.AddSphere(first)
	s.AddSphere(second)

	hit, dist, ok := s.FindClosestHit(Ray{common.Vec3{0, 0, -5}, common.Vec3{0, 0, 1}})
	require.True(t, ok)
	assert.Equal(t, first, hit)
	assert.Equal(t, float32(4), dist)
}

func TestFindClosestHitEmptyScene(t *testing.T) {
	_, _, ok := NewScene().FindClosestHit(Ray{common.Vec3{}, common.Vec3{0, 0, 1}})
	assert.False(t, ok)
}

func TestTraceRayMissIsWhite(t *testing.T) {
	tr := NewTracer(unitSphereScene(), WithWorkers(1))
	miss := Ray{common.Vec3{0, 5, -5}, common.Vec3{0, 0, 1}}
	for depth := 1; depth <= 6; depth++ {
		assert.Equal(t, common.White, tr.TraceRay(miss, depth))
	}
}

func TestTraceRayDepthZeroIsTransparentBlack(t *testing.T) {
	tr := NewTracer(unitSphereScene(), WithWorkers(1))
	assert.Equal(t, common.Black, tr.TraceRay(Ray{common.Vec3{0, 0, -5}, common.Vec3{0, 0, 1}}, 0))
	assert.Equal(t, common.Black, tr.TraceRay(Ray{common.Vec3{0, 5, -5}, common.Vec3{0, 0, 1}}, 0))
	assert.Equal(t, common.Black, tr.TraceRay(Ray{common.Vec3{0, 0, -5}, common.Vec3{0, 0, 1}}, -3))
}

func TestTraceRaySingleBounce(t *testing.T) {
	tr := NewTracer(unitSphereScene(), WithWorkers(1))
	got := tr.TraceRay(Ray{common.Vec3{0, 0, -5}, common.Vec3{0, 0, 1}}, 2)
	assert.Equal(t, grey, got)
}

func TestTraceRayDepthOneHitIsBlack(t *testing.T) {
	// the bounce runs out of depth, so the tint multiplies transparent black
	tr := NewTracer(unitSphereScene(), WithWorkers(1))
	got := tr.TraceRay(Ray{common.Vec3{0, 0, -5}, common.Vec3{0, 0, 1}}, 1)
	assert.Equal(t, common.Black, got)
}

func TestTraceRayEndToEndIsDeterministic(t *testing.T) {
	tr := NewTracer(unitSphereScene(), WithWorkers(1))
	ray := Ray{common.Vec3{0, 0, -5}, common.Vec3{0, 0, 1}}

	first := tr.TraceRay(ray, DefaultMaxDepth)
	assert.Equal(t, common.Color{0.5, 0.5, 0.5, 1}, first)
	for range 10 {
		assert.Equal(t, first, tr.TraceRay(ray, DefaultMaxDepth))
	}
}

func TestTraceRayTrappedBetweenMirrors(t *testing.T) {
	// two facing spheres with the ray trapped on the axis between them
	red := common.Color{1, 0.5, 0.5, 1}
	blue := common.Color{0.5, 0.5, 1, 1}
	s := NewScene(WithSpheres(
		Sphere{Center: common.Vec3{0, 0, 3}, Radius: 1, Color: red},
		Sphere{Center: common.Vec3{0, 0, -3}, Radius: 1, Color: blue},
	))
	tr := NewTracer(s, WithWorkers(1))

	// red, blue, red, then depth runs out
	got := tr.TraceRay(Ray{common.Vec3{0, 0, 0}, common.Vec3{0, 0, 1}}, 3)
	assert.Equal(t, common.Black, got)

	// on the axis the ray never escapes, however deep it goes
	got = tr.TraceRay(Ray{common.Vec3{0, 0, 0}, common.Vec3{0, 0, 1}}, 10)
	assert.Equal(t, common.Black, got)
}

func TestRenderParallelMatchesSequential(t *testing.T) {
	s := NewScene(WithRandomSpheres(5, 7), WithGroundSphere())
	cam := pinholeCamera{eye: common.Vec3{0, 0, -5}}

	seq := newBufferTarget(37, 23)
	require.NoError(t, NewTracer(s, WithWorkers(1)).RenderSequential(seq, cam))

	par := newBufferTarget(37, 23)
	tr := NewTracer(s, WithWorkers(4))
	require.NoError(t, tr.Render(par, cam))

	assert.Equal(t, seq.pixels, par.pixels)
	assert.Greater(t, int64(tr.LastRenderTime()), int64(0))
}

func TestRenderWritesEveryPixel(t *testing.T) {
	cam := pinholeCamera{eye: common.Vec3{0, 0, -5}}
	target := newBufferTarget(16, 9)
	for i := range target.pixels {
		target.pixels[i] = common.Color{-1, -1, -1, -1}
	}

	require.NoError(t, NewTracer(unitSphereScene(), WithWorkers(3)).Render(target, cam))
	for i, p := range target.pixels {
		assert.NotEqual(t, common.Color{-1, -1, -1, -1}, p, "pixel %d was not written", i)
	}

	// the center pixel hits the sphere and its bounce escapes to the sky
	assert.Equal(t, grey, target.pixels[4*16+8])
}

func TestRenderRejectsNilArguments(t *testing.T) {
	tr := NewTracer(unitSphereScene(), WithWorkers(2))
	assert.Error(t, tr.Render(nil, pinholeCamera{}))
	assert.Error(t, tr.Render(newBufferTarget(1, 1), nil))
	assert.Error(t, tr.RenderSequential(nil, pinholeCamera{}))
}

func TestTracerOptions(t *testing.T) {
	tr := NewTracer(NewScene(), WithMaxDepth(3), WithWorkers(0), WithEpsilon(-1))
	assert.Equal(t, 3, tr.MaxDepth())
	assert.Equal(t, 1, tr.Workers())
	assert.Equal(t, DefaultEpsilon, tr.(*tracer).epsilon)
}

func TestRandomSceneIsReproducible(t *testing.T) {
	a := NewScene(WithRandomSpheres(5, 42), WithGroundSphere())
	b := NewScene(WithRandomSpheres(5, 42), WithGroundSphere())
	assert.Equal(t, a.Spheres(), b.Spheres())
	assert.Equal(t, 6, a.Len())
	assert.Equal(t, GroundSphere, a.Spheres()[5])
}

func TestRandomSphereRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for range 200 {
		s := RandomSphere(rng)
		assert.True(t, s.Center[0] >= -5 && s.Center[0] <= 5)
		assert.True(t, s.Center[1] >= -5 && s.Center[1] <= 5)
		assert.True(t, s.Center[2] >= 0 && s.Center[2] <= 20)
		assert.True(t, s.Radius >= 0.1 && s.Radius <= 3)
		for c := range 3 {
			assert.True(t, s.Color[c] >= 0.1 && s.Color[c] <= 1)
		}
		assert.Equal(t, float32(1), s.Color[3])
	}
}

func TestSpheresReturnsCopy(t *testing.T) {
	s := unitSphereScene()
	spheres := s.Spheres()
	spheres[0].Radius = 100
	assert.Equal(t, float32(1), s.Spheres()[0].Radius)
}

package tracer

import (
	"math/rand"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/chewxy/math32"
)

// scene is the implementation of the Scene interface.
type scene struct {
	mu      *sync.RWMutex
	spheres []Sphere
}

// Scene holds a flat collection of sphere primitives and answers nearest-hit queries against it.
// Queries are safe to run from many goroutines at once; AddSphere takes the write lock.
type Scene interface {
	// AddSphere appends a sphere to the scene. Insertion order decides ties in FindClosestHit.
	//
	// Parameters:
	//   - s: the sphere to add
	AddSphere(s Sphere)

	// FindClosestHit scans every sphere and returns the one with the smallest hit distance along the ray.
	// When two spheres are hit at exactly the same distance the one added first wins.
	//
	// Parameters:
	//   - ray: the ray to test
	//
	// Returns:
	//   - Sphere: the closest sphere hit, or the zero Sphere if none
	//   - float32: the hit distance along the ray
	//   - bool: true if any sphere was hit
	FindClosestHit(ray Ray) (Sphere, float32, bool)

	// Spheres returns a copy of the scene's spheres in insertion order.
	//
	// Returns:
	//   - []Sphere: the spheres in the scene
	Spheres() []Sphere

	// Len returns the number of spheres in the scene.
	//
	// Returns:
	//   - int: the sphere count
	Len() int
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given options applied in order.
//
// Parameters:
//   - options: variadic list of SceneBuilderOption functions to populate the scene
//
// Returns:
//   - Scene: the populated scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:      &sync.RWMutex{},
		spheres: make([]Sphere, 0, 8),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) AddSphere(sp Sphere) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spheres = append(s.spheres, sp)
}

func (s *scene) FindClosestHit(ray Ray) (Sphere, float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var closest Sphere
	closestDist := math32.Inf(1)
	hit := false
	for _, sp := range s.spheres {
		dist, ok := sp.Intersect(ray)
		if !ok {
			continue
		}
		// strictly less: the earlier sphere keeps an exact tie
		if dist < closestDist {
			closest = sp
			closestDist = dist
			hit = true
		}
	}
	if !hit {
		return Sphere{}, 0, false
	}
	return closest, closestDist, true
}

func (s *scene) Spheres() []Sphere {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Sphere, len(s.spheres))
	copy(out, s.spheres)
	return out
}

func (s *scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.spheres)
}

// GroundSphere is the large green sphere the demo uses as a floor.
var GroundSphere = Sphere{
	Center: common.Vec3{0, -1000, 0},
	Radius: 995,
	Color:  common.Color{0.1, 1.0, 0.3, 1},
}

// RandomSphere builds a sphere with a center in x,y ∈ [-5, 5], z ∈ [0, 20], a radius in [0.1, 3]
// and opaque color components in [0.1, 1].
//
// Parameters:
//   - rng: the random source to draw from
//
// Returns:
//   - Sphere: the generated sphere
func RandomSphere(rng *rand.Rand) Sphere {
	return Sphere{
		Center: common.Vec3{
			randomRange(rng, -5, 5),
			randomRange(rng, -5, 5),
			randomRange(rng, 0, 20),
		},
		Radius: randomRange(rng, 0.1, 3),
		Color: common.Color{
			randomRange(rng, 0.1, 1),
			randomRange(rng, 0.1, 1),
			randomRange(rng, 0.1, 1),
			1,
		},
	}
}

func randomRange(rng *rand.Rand, lo, hi float32) float32 {
	return rng.Float32()*(hi-lo) + lo
}

package tracer

import "math/rand"

// SceneBuilderOption is a functional option used to populate a Scene during construction.
type SceneBuilderOption func(*scene)

// WithSpheres appends the given spheres to the scene in order.
//
// Parameters:
//   - spheres: the spheres to add
//
// Returns:
//   - SceneBuilderOption: a function that adds the spheres to the scene
func WithSpheres(spheres ...Sphere) SceneBuilderOption {
	return func(s *scene) {
		s.spheres = append(s.spheres, spheres...)
	}
}

// WithRandomSpheres appends count randomly placed spheres drawn from a source seeded with seed.
// The same seed always produces the same spheres.
//
// Parameters:
//   - count: number of spheres to generate
//   - seed: seed for the random source
//
// Returns:
//   - SceneBuilderOption: a function that adds the random spheres to the scene
func WithRandomSpheres(count int, seed int64) SceneBuilderOption {
	return func(s *scene) {
		rng := rand.New(rand.NewSource(seed))
		for range count {
			s.spheres = append(s.spheres, RandomSphere(rng))
		}
	}
}

// WithGroundSphere appends the large ground sphere to the scene.
//
// Returns:
//   - SceneBuilderOption: a function that adds the ground sphere to the scene
func WithGroundSphere() SceneBuilderOption {
	return func(s *scene) {
		s.spheres = append(s.spheres, GroundSphere)
	}
}

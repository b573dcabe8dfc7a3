package tracer

// TracerBuilderOption is a functional option used to configure a Tracer during construction.
type TracerBuilderOption func(*tracer)

// WithMaxDepth sets the recursion depth used for primary rays by Render.
// Values <= 0 make every pixel transparent black.
//
// Parameters:
//   - depth: the max recursion depth
//
// Returns:
//   - TracerBuilderOption: a function that sets the max depth on the tracer
func WithMaxDepth(depth int) TracerBuilderOption {
	return func(t *tracer) {
		t.maxDepth = depth
	}
}

// WithEpsilon sets the distance bounce rays are pushed off the surface along the normal.
// Non-positive values are ignored.
//
// Parameters:
//   - epsilon: the surface offset
//
// Returns:
//   - TracerBuilderOption: a function that sets the epsilon on the tracer
func WithEpsilon(epsilon float32) TracerBuilderOption {
	return func(t *tracer) {
		if epsilon > 0 {
			t.epsilon = epsilon
		}
	}
}

// WithWorkers sets the number of pool workers used by Render.
// A value of 1 (or less) renders on the calling goroutine without a pool.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - TracerBuilderOption: a function that sets the worker count on the tracer
func WithWorkers(n int) TracerBuilderOption {
	return func(t *tracer) {
		t.workers = max(n, 1)
	}
}

package cpu_texture

import "github.com/Carmen-Shannon/oxy-trace/common"

// CPUTextureBuilderOption is a functional option used to configure a CPUTexture during construction.
type CPUTextureBuilderOption func(*cpuTexture)

// WithLabel sets the debug label used for the GPU resources of the buffer.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - CPUTextureBuilderOption: a function that sets the label on the buffer
func WithLabel(label string) CPUTextureBuilderOption {
	return func(t *cpuTexture) {
		if label != "" {
			t.label = label
		}
	}
}

// WithInitialColor fills the buffer with c when it is created instead of transparent black.
// Resize always starts from transparent black.
//
// Parameters:
//   - c: the fill color
//
// Returns:
//   - CPUTextureBuilderOption: a function that sets the initial color on the buffer
func WithInitialColor(c common.Color) CPUTextureBuilderOption {
	return func(t *cpuTexture) {
		t.initial = c
	}
}

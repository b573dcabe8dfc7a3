package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultTestWindow() *engineWindow {
	return &engineWindow{maxWidth: 1600, maxHeight: 1200, minWidth: 600, minHeight: 200, width: 1280, height: 720}
}

func TestApplyOptions_SetsSizeAndLimits(t *testing.T) {
	w := defaultTestWindow()
	w.applyOptions(
		WithTitle("trace"),
		WithSize(800, 600),
		WithMinSize(320, 180),
		WithMaxSize(1920, 1080),
	)

	assert.Equal(t, "trace", w.title)
	assert.Equal(t, 800, w.width)
	assert.Equal(t, 600, w.height)
	assert.Equal(t, 320, w.minWidth)
	assert.Equal(t, 180, w.minHeight)
	assert.Equal(t, 1920, w.maxWidth)
	assert.Equal(t, 1080, w.maxHeight)
}

func TestApplyOptions_ClampsSizeIntoLimits(t *testing.T) {
	w := defaultTestWindow()
	w.applyOptions(WithSize(100, 5000), WithMinSize(320, 180))
	assert.Equal(t, 320, w.width)
	assert.Equal(t, 1200, w.height)

	// A minimum above the maximum wins.
	w = defaultTestWindow()
	w.applyOptions(WithMinSize(2000, 0), WithMaxSize(1000, 1000))
	assert.Equal(t, 2000, w.minWidth)
	assert.Equal(t, 1, w.minHeight)
	assert.Equal(t, 2000, w.maxWidth)
	assert.Equal(t, 2000, w.width)
	assert.Equal(t, 720, w.height)
}

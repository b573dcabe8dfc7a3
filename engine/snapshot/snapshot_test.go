package snapshot

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/HugoSmits86/nativewebp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	w, h   int
	pixels []common.Color
}

func (s stubSource) Width() int { return s.w }
func (s stubSource) Height() int { return s.h }
func (s stubSource) Pixels() []common.Color { return s.pixels }

func fixedClock() time.Time {
	return time.Unix(0, 1234)
}

func TestToNRGBA_ClampsAndRounds(t *testing.T) {
	pixels := []common.Color{
		{2, -1, 0.5, 1},
		{0, 0, 0, 0},
	}
	img, err := ToNRGBA(pixels, 2, 1, false)
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 128, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(1, 0))
}

func TestToNRGBA_OpaqueForcesAlpha(t *testing.T) {
	img, err := ToNRGBA([]common.Color{{0.2, 0.4, 0.6, 0}}, 1, 1, true)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), img.NRGBAAt(0, 0).A)
}

func TestToNRGBA_RowMajor(t *testing.T) {
	pixels := make([]common.Color, 6)
	pixels[1*3+2] = common.Color{1, 1, 1, 1}
	img, err := ToNRGBA(pixels, 3, 2, false)
	require.NoError(t, err)

	assert.Equal(t, uint8(255), img.NRGBAAt(2, 1).R)
	assert.Equal(t, uint8(0), img.NRGBAAt(1, 2).R)
}

func TestToNRGBA_SizeMismatch(t *testing.T) {
	_, err := ToNRGBA(make([]common.Color, 3), 2, 2, true)
	assert.Error(t, err)

	_, err = ToNRGBA(nil, 0, 0, true)
	assert.Error(t, err)
}

func TestUpscale_NearestNeighborBlocks(t *testing.T) {
	img, err := ToNRGBA([]common.Color{{1, 0, 0, 1}, {0, 0, 1, 1}}, 2, 1, true)
	require.NoError(t, err)

	up := Upscale(img, 3)
	assert.Equal(t, 6, up.Bounds().Dx())
	assert.Equal(t, 3, up.Bounds().Dy())
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, color.NRGBA{R: 255, A: 255}, up.NRGBAAt(x, y))
			assert.Equal(t, color.NRGBA{B: 255, A: 255}, up.NRGBAAt(x+3, y))
		}
	}

	assert.Same(t, img, Upscale(img, 1))
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	img, err := ToNRGBA([]common.Color{{}}, 1, 1, true)
	require.NoError(t, err)
	assert.ErrorIs(t, Encode(&bytes.Buffer{}, img, "gif"), ErrUnsupportedFormat)
}

func TestNewSnapshotter_RejectsUnknownFormat(t *testing.T) {
	_, err := NewSnapshotter(WithFormat("jpeg"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestNewSnapshotter_Defaults(t *testing.T) {
	s, err := NewSnapshotter(WithScale(0))
	require.NoError(t, err)
	assert.Equal(t, "snapshots", s.Dir())
	assert.Equal(t, FormatWebP, s.Format())
	assert.Equal(t, 1, s.Scale())
}

func TestCapture_PNG(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSnapshotter(WithDir(dir), WithFormat(FormatPNG), WithScale(2), WithClock(fixedClock))
	require.NoError(t, err)

	src := stubSource{w: 2, h: 1, pixels: []common.Color{{0, 1, 0, 1}, {1, 1, 1, 1}}}
	path, err := s.Capture(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "oxytrace-1234.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	r, g, b, a := img.At(1, 1).RGBA()
	assert.Equal(t, [4]uint32{0, 0xffff, 0, 0xffff}, [4]uint32{r, g, b, a})
}

func TestCapture_WebP(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s, err := NewSnapshotter(WithDir(dir), WithClock(fixedClock))
	require.NoError(t, err)

	src := stubSource{w: 3, h: 2, pixels: make([]common.Color, 6)}
	path, err := s.Capture(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "oxytrace-1234.webp"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, err := nativewebp.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Width)
	assert.Equal(t, 2, cfg.Height)
}

func TestCapture_SourceMismatchWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s, err := NewSnapshotter(WithDir(dir))
	require.NoError(t, err)

	_, err = s.Capture(stubSource{w: 4, h: 4, pixels: make([]common.Color, 2)})
	require.Error(t, err)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

package snapshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// Supported output encodings.
const (
	FormatWebP = "webp"
	FormatPNG  = "png"
)

// filePrefix starts the name of every exported file.
const filePrefix = "oxytrace"

// ErrUnsupportedFormat is returned when an encoding other than FormatWebP or FormatPNG is requested.
var ErrUnsupportedFormat = errors.New("snapshot: unsupported format")

// Source is anything that can hand out a row-major copy of float RGBA pixels.
// cpu_texture.CPUTexture satisfies it.
type Source interface {
	Width() int
	Height() int
	Pixels() []common.Color
}

// snapshotter is the implementation of the Snapshotter interface.
type snapshotter struct {
	mu *sync.Mutex

	dir    string
	format string
	scale  int
	opaque bool
	now    func() time.Time
}

// Snapshotter exports the pixel buffer as an image file.
type Snapshotter interface {
	// Capture converts the source pixels, upscales them and writes an image file.
	//
	// Parameters:
	//   - src: the pixel source, usually the CPU texture
	//
	// Returns:
	//   - string: the path of the written file
	//   - error: a conversion, encode or write error
	Capture(src Source) (string, error)

	// Dir returns the output directory.
	//
	// Returns:
	//   - string: the directory files are written to
	Dir() string

	// Format returns the output encoding.
	//
	// Returns:
	//   - string: FormatWebP or FormatPNG
	Format() string

	// Scale returns the integer upscale factor.
	//
	// Returns:
	//   - int: the factor, at least 1
	Scale() int
}

var _ Snapshotter = &snapshotter{}

// NewSnapshotter creates a Snapshotter writing lossless WebP files at 1x into "snapshots".
//
// Parameters:
//   - options: variadic list of SnapshotterBuilderOption functions to configure the exporter
//
// Returns:
//   - Snapshotter: the exporter
//   - error: ErrUnsupportedFormat for an unknown format
func NewSnapshotter(options ...SnapshotterBuilderOption) (Snapshotter, error) {
	s := &snapshotter{
		mu:     &sync.Mutex{},
		dir:    "snapshots",
		format: FormatWebP,
		scale:  1,
		opaque: true,
		now:    time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.format != FormatWebP && s.format != FormatPNG {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s.format)
	}
	return s, nil
}

func (s *snapshotter) Dir() string {
	return s.dir
}

func (s *snapshotter) Format() string {
	return s.format
}

func (s *snapshotter) Scale() int {
	return s.scale
}

func (s *snapshotter) Capture(src Source) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, err := ToNRGBA(src.Pixels(), src.Width(), src.Height(), s.opaque)
	if err != nil {
		return "", err
	}
	img = Upscale(img, s.scale)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("snapshot: create %s: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s-%d.%s", filePrefix, s.now().UnixNano(), s.format))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("snapshot: create %s: %w", path, err)
	}
	defer f.Close()

	if err := Encode(f, img, s.format); err != nil {
		return "", err
	}
	return path, nil
}

// ToNRGBA converts float RGBA pixels to an 8-bit image, clamping every channel to [0, 1].
//
// Parameters:
//   - pixels: row-major colors, width*height long
//   - width: image width in pixels
//   - height: image height in pixels
//   - opaque: force alpha to 255, matching what the window shows
//
// Returns:
//   - *image.NRGBA: the converted image
//   - error: when the pixel count does not match the size
func ToNRGBA(pixels []common.Color, width, height int, opaque bool) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height {
		return nil, fmt.Errorf("snapshot: %d pixels do not fill %dx%d", len(pixels), width, height)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := pixels[y*width+x].Clamped()
			o := img.PixOffset(x, y)
			img.Pix[o] = to8(c[0])
			img.Pix[o+1] = to8(c[1])
			img.Pix[o+2] = to8(c[2])
			if opaque {
				img.Pix[o+3] = 255
			} else {
				img.Pix[o+3] = to8(c[3])
			}
		}
	}
	return img, nil
}

// Upscale enlarges img by an integer factor with nearest-neighbor sampling so traced pixels stay square.
// Factors below 2 return img unchanged.
//
// Parameters:
//   - img: the source image
//   - factor: the integer scale factor
//
// Returns:
//   - *image.NRGBA: the scaled image
func Upscale(img *image.NRGBA, factor int) *image.NRGBA {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Encode writes img to w as lossless WebP or PNG.
//
// Parameters:
//   - w: the destination writer
//   - img: the image to encode
//   - format: FormatWebP or FormatPNG
//
// Returns:
//   - error: ErrUnsupportedFormat or a wrapped encoder error
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("snapshot: webp encode: %w", err)
		}
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("snapshot: png encode: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}

// to8 maps a clamped channel to 0..255 with rounding.
func to8(v float32) uint8 {
	return uint8(v*255 + 0.5)
}

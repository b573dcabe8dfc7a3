package cpu_texture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrInvalidDimensions is returned when a pixel buffer is created or resized with a non-positive width or height.
	ErrInvalidDimensions = errors.New("cpu texture: width and height must be positive")

	// ErrPixelOutOfBounds is wrapped by the panic raised when a pixel accessor is called outside the buffer.
	ErrPixelOutOfBounds = errors.New("cpu texture: pixel out of bounds")

	// ErrReleased is returned by operations on a CPUTexture whose GPU resources have been released.
	ErrReleased = errors.New("cpu texture: released")
)

// pixelFormat is the GPU format mirroring common.Color: four float32 channels per texel.
const pixelFormat = wgpu.TextureFormatRGBA32Float

// blitVertexCount is the number of vertices of the full-screen triangle.
const blitVertexCount = 3

// Uploader is the subset of the renderer a CPUTexture needs to mirror its pixels on the GPU.
// renderer.Renderer satisfies it.
type Uploader interface {
	RegisterPipelines(pipelines ...pipeline.Pipeline) error
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error
	WriteTexture(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error
	Draw(pipelineKey string, vertexCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error
}

// cpuTexture is the implementation of the CPUTexture interface.
type cpuTexture struct {
	// mu is read-locked by per-pixel accessors and write-locked by whole-buffer operations,
	// so concurrent SetColor calls on distinct pixels never block each other.
	mu *sync.RWMutex

	width, height int
	pixels        []common.Color

	label    string
	initial  common.Color
	gpu      Uploader
	provider bind_group_provider.BindGroupProvider
	pipeline pipeline.Pipeline
	layout   wgpu.BindGroupLayoutDescriptor

	textureBinding int
	samplerBinding int

	// gpuErr is set when a failed Resize could not restore the previous GPU texture either.
	// Present refuses to draw until a later Resize succeeds.
	gpuErr error

	released bool
}

// CPUTexture is a CPU-side float RGBA pixel buffer paired with a GPU texture of the same size.
// Pixels are written on the CPU (typically by a ray tracer), then Present uploads the whole buffer
// and draws it over the screen with a full-screen triangle and a point sampler.
type CPUTexture interface {
	// Width returns the buffer width in pixels.
	//
	// Returns:
	//   - int: the width
	Width() int

	// Height returns the buffer height in pixels.
	//
	// Returns:
	//   - int: the height
	Height() int

	// Resize reallocates the buffer at the new size, zeroes it, and recreates the GPU texture and bind group.
	// The blit pipeline and sampler are reused. When the GPU texture cannot be created the buffer keeps
	// its old size and contents.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: ErrInvalidDimensions for non-positive sizes, or a wrapped GPU error
	Resize(width, height int) error

	// Clear sets every pixel to c.
	//
	// Parameters:
	//   - c: the fill color
	Clear(c common.Color)

	// ClearFast sets every pixel to transparent black.
	ClearFast()

	// SetColor overwrites the pixel at (x, y). Safe to call concurrently for distinct pixels.
	// Panics with an error wrapping ErrPixelOutOfBounds if (x, y) is outside the buffer.
	//
	// Parameters:
	//   - x: column, 0 is the left edge
	//   - y: row, 0 is the top edge
	//   - c: the color to store
	SetColor(x, y int, c common.Color)

	// AddColor adds c component-wise to the pixel at (x, y) without clamping.
	// Panics with an error wrapping ErrPixelOutOfBounds if (x, y) is outside the buffer.
	//
	// Parameters:
	//   - x: column, 0 is the left edge
	//   - y: row, 0 is the top edge
	//   - c: the color to accumulate
	AddColor(x, y int, c common.Color)

	// Color returns the pixel at (x, y).
	// Panics with an error wrapping ErrPixelOutOfBounds if (x, y) is outside the buffer.
	//
	// Parameters:
	//   - x: column, 0 is the left edge
	//   - y: row, 0 is the top edge
	//
	// Returns:
	//   - common.Color: the stored color
	Color(x, y int) common.Color

	// Pixels returns a row-major copy of the buffer.
	//
	// Returns:
	//   - []common.Color: width*height colors, row 0 first
	Pixels() []common.Color

	// Present uploads the whole buffer into the GPU texture and draws it over the current render pass.
	// Must be called between the renderer's BeginFrame and EndFrame.
	//
	// Returns:
	//   - error: ErrReleased after Release, or a wrapped GPU error
	Present() error

	// Release frees the GPU texture, view, sampler, and bind group. The CPU buffer stays readable.
	Release()
}

var _ CPUTexture = &cpuTexture{}

// NewCPUTexture creates a zeroed width x height pixel buffer and its GPU mirror.
// The blit pipeline is registered with gpu under BlitPipelineKey if it is not already cached.
//
// Parameters:
//   - width: buffer width in pixels
//   - height: buffer height in pixels
//   - gpu: the renderer used to create and upload GPU resources
//   - options: variadic list of CPUTextureBuilderOption functions to configure the buffer
//
// Returns:
//   - CPUTexture: the new pixel buffer
//   - error: ErrInvalidDimensions for non-positive sizes, or a wrapped GPU error
func NewCPUTexture(width, height int, gpu Uploader, options ...CPUTextureBuilderOption) (CPUTexture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}
	if gpu == nil {
		return nil, errors.New("cpu texture: gpu uploader must not be nil")
	}

	t := &cpuTexture{
		mu:             &sync.RWMutex{},
		label:          "cpu_texture",
		gpu:            gpu,
		textureBinding: -1,
		samplerBinding: -1,
	}
	for _, opt := range options {
		opt(t)
	}

	vs := shader.NewShader(BlitPipelineKey+"_vertex", shader.ShaderTypeVertex, blitVertexSource)
	fs := shader.NewShader(BlitPipelineKey+"_fragment", shader.ShaderTypeFragment, blitFragmentSource)
	if err := t.resolveBindings(fs); err != nil {
		return nil, err
	}

	t.pipeline = pipeline.NewPipeline(BlitPipelineKey,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
	)
	if err := gpu.RegisterPipelines(t.pipeline); err != nil {
		return nil, fmt.Errorf("cpu texture: register blit pipeline: %w", err)
	}

	t.provider = bind_group_provider.NewBindGroupProvider(t.label)
	if err := gpu.InitSampler(t.provider, t.samplerBinding, common.PointSampler()); err != nil {
		return nil, fmt.Errorf("cpu texture: create sampler: %w", err)
	}

	if err := t.createTexture(width, height); err != nil {
		t.provider.Release()
		return nil, err
	}
	t.allocate(width, height)
	if t.initial != (common.Color{}) {
		for i := range t.pixels {
			t.pixels[i] = t.initial
		}
	}
	return t, nil
}

// resolveBindings finds the texture and sampler bindings of the pixel buffer from the fragment shader's
// provider annotations, and keeps the layout of their group for bind group creation.
func (t *cpuTexture) resolveBindings(fs shader.Shader) error {
	group := -1
	for _, d := range fs.Declarations() {
		if d.Args[0] != shader.AnnotationArgPixelBuffer {
			continue
		}
		if group >= 0 && *d.Group != group {
			return fmt.Errorf("cpu texture: pixel buffer bindings span groups %d and %d", group, *d.Group)
		}
		group = *d.Group
		switch d.Role() {
		case shader.AnnotationArgPixels:
			t.textureBinding = *d.Binding
		case shader.AnnotationArgPointSampler:
			t.samplerBinding = *d.Binding
		}
	}
	if group != 0 {
		return fmt.Errorf("cpu texture: pixel buffer must be declared in group 0, found group %d", group)
	}
	if t.textureBinding < 0 || t.samplerBinding < 0 {
		return errors.New("cpu texture: blit shader must declare pixels and point_sampler bindings")
	}
	t.layout = fs.BindGroupLayoutDescriptor(group)
	return nil
}

// allocate replaces the pixel slice with a zeroed width x height buffer.
func (t *cpuTexture) allocate(width, height int) {
	t.width, t.height = width, height
	t.pixels = make([]common.Color, width*height)
}

// createTexture creates a width x height GPU texture and rebuilds the bind group around it.
// The provider drops the previous texture and bind group as they are replaced.
func (t *cpuTexture) createTexture(width, height int) error {
	staging := common.TextureStagingData{
		Width:  uint32(width),
		Height: uint32(height),
		Format: pixelFormat,
	}
	if err := t.gpu.InitTextureView(t.provider, t.textureBinding, staging); err != nil {
		return fmt.Errorf("cpu texture: create %dx%d texture: %w", width, height, err)
	}
	if err := t.gpu.InitBindGroup(t.provider, t.layout); err != nil {
		return fmt.Errorf("cpu texture: create bind group: %w", err)
	}
	return nil
}

func (t *cpuTexture) Width() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.width
}

func (t *cpuTexture) Height() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.height
}

func (t *cpuTexture) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrReleased
	}

	// The CPU buffer is only swapped once the GPU side matches the new size.
	if err := t.createTexture(width, height); err != nil {
		if restoreErr := t.createTexture(t.width, t.height); restoreErr != nil {
			t.gpuErr = restoreErr
			return errors.Join(err, fmt.Errorf("cpu texture: restore %dx%d: %w", t.width, t.height, restoreErr))
		}
		t.gpuErr = nil
		return err
	}
	t.gpuErr = nil
	t.allocate(width, height)
	return nil
}

func (t *cpuTexture) Clear(c common.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.pixels {
		t.pixels[i] = c
	}
}

func (t *cpuTexture) ClearFast() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.pixels)
}

func (t *cpuTexture) SetColor(x, y int, c common.Color) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	t.pixels[t.index(x, y)] = c
}

func (t *cpuTexture) AddColor(x, y int, c common.Color) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i := t.index(x, y)
	t.pixels[i] = t.pixels[i].Add(c)
}

func (t *cpuTexture) Color(x, y int) common.Color {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pixels[t.index(x, y)]
}

func (t *cpuTexture) Pixels() []common.Color {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]common.Color, len(t.pixels))
	copy(out, t.pixels)
	return out
}

// index maps (x, y) to the row-major slice index. Callers must hold t.mu.
func (t *cpuTexture) index(x, y int) int {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		panic(fmt.Errorf("%w: (%d, %d) outside %dx%d", ErrPixelOutOfBounds, x, y, t.width, t.height))
	}
	return y*t.width + x
}

func (t *cpuTexture) Present() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrReleased
	}
	if t.gpuErr != nil {
		return fmt.Errorf("cpu texture: no GPU texture after failed resize: %w", t.gpuErr)
	}

	staging := common.TextureStagingData{
		Pixels: common.SliceToBytes(t.pixels),
		Width:  uint32(t.width),
		Height: uint32(t.height),
		Format: pixelFormat,
	}
	if err := t.gpu.WriteTexture(t.provider, t.textureBinding, staging); err != nil {
		return fmt.Errorf("cpu texture: upload: %w", err)
	}
	if err := t.gpu.Draw(t.pipeline.PipelineKey(), blitVertexCount, []bind_group_provider.BindGroupProvider{t.provider}); err != nil {
		return fmt.Errorf("cpu texture: draw: %w", err)
	}
	return nil
}

func (t *cpuTexture) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return
	}
	t.provider.Release()
	t.released = true
}

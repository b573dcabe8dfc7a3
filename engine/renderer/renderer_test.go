package renderer

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBackend is a GPU-free backend that records the calls the renderer forwards to it.
type recordingBackend struct {
	registered  []string
	registerErr error
	draws       []uint32
	released    bool
	surfaceW    int
	surfaceH    int
}

var _ RendererBackend = &recordingBackend{}

func (b *recordingBackend) SetPresentMode(PresentMode) {}
func (b *recordingBackend) SetClearColor(wgpu.Color) {}
func (b *recordingBackend) BeginFrame() error { return nil }
func (b *recordingBackend) EndFrame() {}
func (b *recordingBackend) Present() {}
func (b *recordingBackend) Release() { b.released = true }
func (b *recordingBackend) ConfigureSurface(w, h int) { b.surfaceW, b.surfaceH = w, h }

func (b *recordingBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	if b.registerErr != nil {
		return b.registerErr
	}
	b.registered = append(b.registered, p.PipelineKey())
	return nil
}

func (b *recordingBackend) InitBindGroup(bind_group_provider.BindGroupProvider, wgpu.BindGroupLayoutDescriptor) error {
	return nil
}

func (b *recordingBackend) InitTextureView(bind_group_provider.BindGroupProvider, int, common.TextureStagingData) error {
	return nil
}

func (b *recordingBackend) InitSampler(bind_group_provider.BindGroupProvider, int, common.SamplerStagingData) error {
	return nil
}

func (b *recordingBackend) WriteTexture(bind_group_provider.BindGroupProvider, int, common.TextureStagingData) error {
	return nil
}

func (b *recordingBackend) Draw(_ pipeline.Pipeline, vertexCount uint32, _ []bind_group_provider.BindGroupProvider) {
	b.draws = append(b.draws, vertexCount)
}

func newTestRenderer(b *recordingBackend) *renderer {
	return &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backend:       b,
	}
}

func TestRegisterPipelinesSkipsDuplicates(t *testing.T) {
	b := &recordingBackend{}
	r := newTestRenderer(b)

	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("blit"), pipeline.NewPipeline("blit")))
	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("blit")))

	assert.Equal(t, []string{"blit"}, b.registered)
	assert.NotNil(t, r.Pipeline("blit"))
	assert.Nil(t, r.Pipeline("missing"))
}

func TestRegisterPipelinesWrapsBackendError(t *testing.T) {
	boom := errors.New("boom")
	r := newTestRenderer(&recordingBackend{registerErr: boom})

	err := r.RegisterPipelines(pipeline.NewPipeline("blit"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "blit")
	assert.Nil(t, r.Pipeline("blit"))
}

func TestDrawRequiresRegisteredPipeline(t *testing.T) {
	b := &recordingBackend{}
	r := newTestRenderer(b)

	assert.Error(t, r.Draw("blit", 3, nil))
	assert.Empty(t, b.draws)

	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("blit")))
	require.NoError(t, r.Draw("blit", 3, nil))
	assert.Equal(t, []uint32{3}, b.draws)
}

func TestResizeAndRelease(t *testing.T) {
	b := &recordingBackend{}
	r := newTestRenderer(b)
	require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline("blit")))

	r.Resize(640, 480)
	assert.Equal(t, 640, b.surfaceW)
	assert.Equal(t, 480, b.surfaceH)

	r.Release()
	assert.True(t, b.released)
	assert.Nil(t, r.Pipeline("blit"))
}

package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("cpu_texture")

	assert.Equal(t, "cpu_texture", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.BindGroupLayout())
	assert.Nil(t, p.Texture(0))
	assert.Nil(t, p.TextureView(0))
	assert.Nil(t, p.Sampler(1))
	assert.Empty(t, p.TextureViews())
	assert.Empty(t, p.Samplers())
}

func TestReleaseWithoutGPUResources(t *testing.T) {
	p := NewBindGroupProvider("empty")
	p.SetTexture(0, nil, nil)
	p.SetSampler(1, nil)
	assert.Len(t, p.TextureViews(), 1)
	assert.Len(t, p.Samplers(), 1)

	p.ReleaseTexture(0)
	assert.Empty(t, p.TextureViews())
	assert.Len(t, p.Samplers(), 1)

	p.ReleaseTexture(5)
	p.ReleaseBindGroup()
	p.Release()
	assert.Empty(t, p.Samplers())
}

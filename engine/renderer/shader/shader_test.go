package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blitFragmentSource = `
//@oxy:provider 0 0 pixel_buffer pixels
@group(0) @binding(0) var pixels: texture_2d<f32>;
//@oxy:provider 0 1 pixel_buffer point_sampler
@group(0) @binding(1) var point_sampler: sampler;

/* block comment @group(3) @binding(3) var ignored: sampler; */

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
	return textureSample(pixels, point_sampler, uv);
}
`

const blitVertexSource = `
struct VertexOut {
	@builtin(position) position: vec4<f32>,
	@location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) id: u32) -> VertexOut {
	var out: VertexOut;
	return out;
}
`

func TestNewShaderAppliesBindingRoles(t *testing.T) {
	s := NewShader("blit_fragment", ShaderTypeFragment, blitFragmentSource)

	assert.Equal(t, "blit_fragment", s.Key())
	assert.Equal(t, "fs_main", s.EntryPoint())
	assert.Equal(t, ShaderTypeFragment, s.ShaderType())
	require.NotNil(t, s.Module())
	assert.Equal(t, blitFragmentSource, s.Module().WGSLDescriptor.Code)

	layouts := s.BindGroupLayoutDescriptors()
	require.Len(t, layouts, 1)

	entries := s.BindGroupLayoutDescriptor(0).Entries
	require.Len(t, entries, 2)

	assert.Equal(t, uint32(0), entries[0].Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, entries[0].Visibility)
	assert.Equal(t, wgpu.TextureSampleTypeUnfilterableFloat, entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, entries[0].Texture.ViewDimension)

	assert.Equal(t, uint32(1), entries[1].Binding)
	assert.Equal(t, wgpu.SamplerBindingTypeNonFiltering, entries[1].Sampler.Type)

	assert.Equal(t, "pixels", s.BindGroupVarName(0, 0))
	assert.Equal(t, "point_sampler", s.BindGroupVarName(0, 1))
	assert.Equal(t, "", s.BindGroupVarName(3, 3))

	decls := s.Declarations()
	require.Len(t, decls, 2)
	assert.Equal(t, AnnotationArgPixelBuffer, decls[0].Args[0])
	assert.Equal(t, AnnotationArgPixels, decls[0].Role())
	assert.Equal(t, AnnotationArgPointSampler, decls[1].Role())
}

func TestNewShaderWithoutRolesKeepsFilteringLayout(t *testing.T) {
	src := `
@group(0) @binding(0) var tex: texture_2d<f32>;
@group(0) @binding(1) var samp: sampler;
@group(1) @binding(0) var<uniform> params: BlitParams;
@group(1) @binding(1) var<storage, read_write> data: array<f32>;
@fragment fn main() {}
`
	s := NewShader("plain", ShaderTypeFragment, src)

	g0 := s.BindGroupLayoutDescriptor(0).Entries
	require.Len(t, g0, 2)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, g0[0].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, g0[1].Sampler.Type)

	g1 := s.BindGroupLayoutDescriptor(1).Entries
	require.Len(t, g1, 2)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, g1[0].Buffer.Type)
	assert.Equal(t, wgpu.BufferBindingTypeStorage, g1[1].Buffer.Type)
}

func TestNewShaderVertexEntryPoint(t *testing.T) {
	s := NewShader("blit_vertex", ShaderTypeVertex, blitVertexSource)
	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Empty(t, s.BindGroupLayoutDescriptors())
	assert.Empty(t, s.Declarations())
}

func TestNewShaderPanics(t *testing.T) {
	assert.Panics(t, func() { NewShader("empty", ShaderTypeVertex, "") })
	assert.Panics(t, func() {
		NewShader("dangling", ShaderTypeFragment, "//@oxy:provider 0 4 pixel_buffer pixels\n@fragment fn main() {}")
	})
}

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantNil bool
		wantErr bool
		role    AnnotationArg
	}{
		{name: "plain code", line: "let x = 1;", wantNil: true},
		{name: "plain comment", line: "// nothing to see", wantNil: true},
		{name: "prefix outside comment", line: "let s = @oxy:provider;", wantNil: true},
		{name: "provider with role", line: "  //@oxy:provider 0 1 pixel_buffer point_sampler", role: AnnotationArgPointSampler},
		{name: "provider without role", line: "//@oxy:provider 2 0 pixel_buffer"},
		{name: "empty annotation", line: "//@oxy:", wantErr: true},
		{name: "unknown type", line: "//@oxy:include camera", wantErr: true},
		{name: "too few args", line: "//@oxy:provider 0 pixel_buffer", wantErr: true},
		{name: "bad group", line: "//@oxy:provider a 0 pixel_buffer", wantErr: true},
		{name: "bad binding", line: "//@oxy:provider 0 b pixel_buffer", wantErr: true},
		{name: "unknown identity", line: "//@oxy:provider 0 0 camera", wantErr: true},
		{name: "unknown role", line: "//@oxy:provider 0 0 pixel_buffer shadow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := parseAnnotation(tt.line, 7)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "line 7")
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, a)
				return
			}
			require.NotNil(t, a)
			assert.Equal(t, AnnotationTypeProvider, a.Type)
			assert.Equal(t, 7, a.Line)
			assert.Equal(t, tt.role, a.Role())
		})
	}
}

func TestStripComments(t *testing.T) {
	src := "a /* outer /* inner */ still */ b // tail\nc"
	assert.Equal(t, "a  b \nc", stripComments(src))

	// Newlines inside block comments survive so line numbers stay stable.
	assert.Equal(t, "x \n y", stripComments("x /* one\n two */ y"))
	assert.Equal(t, "a / b", stripComments("a / b"))
}

func TestSplitTypeParams(t *testing.T) {
	base, params := splitTypeParams("texture_2d<f32>")
	assert.Equal(t, "texture_2d", base)
	assert.Equal(t, "f32", params)

	base, params = splitTypeParams("texture_depth_2d")
	assert.Equal(t, "texture_depth_2d", base)
	assert.Equal(t, "", params)
}

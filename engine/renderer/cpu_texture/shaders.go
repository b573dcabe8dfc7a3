package cpu_texture

import (
	_ "embed"
)

// BlitPipelineKey is the renderer cache key of the pipeline that draws the pixel buffer to the screen.
const BlitPipelineKey = "cpu_texture_blit"

// blitVertexSource generates a full-screen triangle from the vertex index.
//
//go:embed assets/blit_vertex.wgsl
var blitVertexSource string

// blitFragmentSource samples the pixel buffer texture with a point sampler.
//
//go:embed assets/blit_fragment.wgsl
var blitFragmentSource string

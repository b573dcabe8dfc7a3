// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "github.com/cogentcore/webgpu/wgpu"

// TextureStagingData holds pixel data for a texture binding pending GPU upload.
// This is primarily used in the BindGroupProvider to stage texture data before creating the GPU texture and bind group.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It may be nil to create an uninitialized texture.
	Pixels []byte
	// Width is the width of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Width uint32
	// Height is the height of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Height uint32
	// Format is the GPU texel format. Defaults to RGBA8UnormSrgb when left undefined.
	Format wgpu.TextureFormat
}

// BytesPerPixel returns the size of a single texel for the staging data's format.
//
// Returns:
//   - uint32: bytes per texel (16 for RGBA32Float, 8 for RGBA16Float, 4 otherwise)
func (t TextureStagingData) BytesPerPixel() uint32 {
	switch t.Format {
	case wgpu.TextureFormatRGBA32Float:
		return 16
	case wgpu.TextureFormatRGBA16Float:
		return 8
	default:
		return 4
	}
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// This is primarily used in the BindGroupProvider to stage sampler data before creating the GPU sampler and bind group.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// PointSampler returns sampler staging data for nearest-neighbour, clamp-to-edge sampling with no mip interpolation.
// This is the sampler used to blit an unfilterable float texture onto the screen with a blocky upscale.
//
// Returns:
//   - SamplerStagingData: the point sampler configuration
func PointSampler() SamplerStagingData {
	return SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeNearest,
		MinFilter:    wgpu.FilterModeNearest,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
		LodMaxClamp:  1,
	}
}

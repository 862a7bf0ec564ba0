package wgpubackend

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrUnsupportedFormat is returned for pixel uploads that have no RGBA8 equivalent.
var ErrUnsupportedFormat = errors.New("unsupported pixel format")

// expandRGBA converts GL pixel uploads to RGBA8, the narrowest color format every wgpu adapter can
// sample. WebGPU has no three-channel or 5-6-5 formats.
func expandRGBA(pixels []byte, width, height int, format, typ renderer.Enum) ([]byte, error) {
	n := width * height
	out := make([]byte, n*4)

	switch {
	case format == renderer.RGBA && typ == renderer.UnsignedByte:
		if len(pixels) < n*4 {
			return nil, fmt.Errorf("have %d bytes for %dx%d RGBA", len(pixels), width, height)
		}
		copy(out, pixels[:n*4])
	case format == renderer.RGB && typ == renderer.UnsignedByte:
		if len(pixels) < n*3 {
			return nil, fmt.Errorf("have %d bytes for %dx%d RGB", len(pixels), width, height)
		}
		for i := 0; i < n; i++ {
			out[i*4] = pixels[i*3]
			out[i*4+1] = pixels[i*3+1]
			out[i*4+2] = pixels[i*3+2]
			out[i*4+3] = 0xFF
		}
	case format == renderer.RGB && typ == renderer.UnsignedShort565:
		if len(pixels) < n*2 {
			return nil, fmt.Errorf("have %d bytes for %dx%d RGB565", len(pixels), width, height)
		}
		for i := 0; i < n; i++ {
			v := binary.NativeEndian.Uint16(pixels[i*2:])
			r, g, b := byte(v>>11&0x1F), byte(v>>5&0x3F), byte(v&0x1F)
			out[i*4] = r<<3 | r>>2
			out[i*4+1] = g<<2 | g>>4
			out[i*4+2] = b<<3 | b>>2
			out[i*4+3] = 0xFF
		}
	default:
		return nil, fmt.Errorf("format 0x%X type 0x%X: %w", uint32(format), uint32(typ), ErrUnsupportedFormat)
	}
	return out, nil
}

// samplerDescriptor maps GL texture parameters onto a sampler. Unset parameters take the GL defaults.
func samplerDescriptor(params map[renderer.Enum]int32) wgpu.SamplerDescriptor {
	return wgpu.SamplerDescriptor{
		AddressModeU:  addressMode(params, renderer.TextureWrapS),
		AddressModeV:  addressMode(params, renderer.TextureWrapT),
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     filterMode(params, renderer.TextureMagFilter),
		MinFilter:     filterMode(params, renderer.TextureMinFilter),
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

func addressMode(params map[renderer.Enum]int32, pname renderer.Enum) wgpu.AddressMode {
	switch renderer.Enum(params[pname]) {
	case renderer.ClampToEdge:
		return wgpu.AddressModeClampToEdge
	case renderer.MirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

func filterMode(params map[renderer.Enum]int32, pname renderer.Enum) wgpu.FilterMode {
	if renderer.Enum(params[pname]) == renderer.Nearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

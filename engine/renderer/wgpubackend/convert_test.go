package wgpubackend

import (
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandRGB(t *testing.T) {
	out, err := expandRGBA([]byte{1, 2, 3, 4, 5, 6}, 2, 1, renderer.RGB, renderer.UnsignedByte)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 255, 4, 5, 6, 255}, out)
}

func TestExpand565(t *testing.T) {
	px := make([]byte, 2)
	binary.NativeEndian.PutUint16(px, 0xF81F)
	out, err := expandRGBA(px, 1, 1, renderer.RGB, renderer.UnsignedShort565)
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 0, 255, 255}, out)
}

func TestExpandMatchesStaging(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	staged, err := renderer.StageRGB(img, renderer.UnsignedByte)
	require.NoError(t, err)

	out, err := expandRGBA(staged.Pixels, int(staged.Width), int(staged.Height), renderer.RGB, renderer.UnsignedByte)
	require.NoError(t, err)
	assert.Equal(t, []byte{200, 100, 50, 255}, out)
}

func TestExpandErrors(t *testing.T) {
	_, err := expandRGBA([]byte{1, 2}, 1, 1, renderer.RGB, renderer.UnsignedByte)
	assert.Error(t, err)
	_, err = expandRGBA(nil, 1, 1, renderer.RGB, renderer.Float)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSamplerDescriptor(t *testing.T) {
	desc := samplerDescriptor(map[renderer.Enum]int32{
		renderer.TextureWrapS:     int32(renderer.MirroredRepeat),
		renderer.TextureWrapT:     int32(renderer.ClampToEdge),
		renderer.TextureMinFilter: int32(renderer.Nearest),
	})
	assert.Equal(t, wgpu.AddressModeMirrorRepeat, desc.AddressModeU)
	assert.Equal(t, wgpu.AddressModeClampToEdge, desc.AddressModeV)
	assert.Equal(t, wgpu.FilterModeNearest, desc.MinFilter)
	assert.Equal(t, wgpu.FilterModeLinear, desc.MagFilter)

	defaults := samplerDescriptor(nil)
	assert.Equal(t, wgpu.AddressModeRepeat, defaults.AddressModeU)
}

func TestAlign4(t *testing.T) {
	assert.Len(t, align4([]byte{1, 2, 3, 4}), 4)
	padded := align4([]byte{1, 2, 3, 4, 5})
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 0, 0, 0}, padded)
	assert.Empty(t, align4(nil))
	assert.Equal(t, wgpu.BufferUsageIndex, bufferUsage(renderer.ElementArrayBuffer))
	assert.Equal(t, wgpu.BufferUsageVertex, bufferUsage(renderer.ArrayBuffer))
}

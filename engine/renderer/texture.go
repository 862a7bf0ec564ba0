package renderer

import (
	"errors"
	"fmt"
	"image"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"
)

// Common errors returned by the texture helpers.
var (
	ErrNilImage             = errors.New("nil image")
	ErrUnsupportedPixelType = errors.New("unsupported texture pixel type")
)

// textureOptions holds the sampling state applied by MakeTexture.
type textureOptions struct {
	minFilter  Enum
	magFilter  Enum
	wrapS      Enum
	wrapT      Enum
	powerOfTwo bool
}

// TextureBuilderOption is a functional option for configuring MakeTexture.
type TextureBuilderOption func(*textureOptions)

// WithFilters overrides the default LINEAR minification and magnification filters.
//
// Parameters:
//   - min: TEXTURE_MIN_FILTER value
//   - mag: TEXTURE_MAG_FILTER value
//
// Returns:
//   - TextureBuilderOption: a function that applies the filters
func WithFilters(min, mag Enum) TextureBuilderOption {
	return func(o *textureOptions) {
		o.minFilter = min
		o.magFilter = mag
	}
}

// WithWrap overrides the default MIRRORED_REPEAT (S) and CLAMP_TO_EDGE (T) wrap modes.
//
// Parameters:
//   - s: TEXTURE_WRAP_S value
//   - t: TEXTURE_WRAP_T value
//
// Returns:
//   - TextureBuilderOption: a function that applies the wrap modes
func WithWrap(s, t Enum) TextureBuilderOption {
	return func(o *textureOptions) {
		o.wrapS = s
		o.wrapT = t
	}
}

// WithPowerOfTwo resizes images whose sides are not powers of two before upload.
// WebGL 1 only allows repeating wrap modes on power-of-two textures.
//
// Parameters:
//   - enabled: true to resize
//
// Returns:
//   - TextureBuilderOption: a function that applies the option
func WithPowerOfTwo(enabled bool) TextureBuilderOption {
	return func(o *textureOptions) {
		o.powerOfTwo = enabled
	}
}

// MakeTexture creates a texture, binds it to target and uploads img as RGB.
// A zero target defaults to Texture2D and a zero pixelType to UnsignedByte. UnsignedShort565 packs
// pixels as 5-6-5 RGB. Sampling defaults to LINEAR filtering, MIRRORED_REPEAT on S and
// CLAMP_TO_EDGE on T.
//
// Parameters:
//   - ctx: the rendering context
//   - img: the source image
//   - target: texture target, 0 for Texture2D
//   - pixelType: UnsignedByte, UnsignedShort565, or 0 for UnsignedByte
//   - options: sampling and resize options
//
// Returns:
//   - common.Texture: the new texture, left bound to target
//   - error: ErrNilImage, or error wrapping ErrUnsupportedPixelType
func MakeTexture(ctx TextureContext, img image.Image, target, pixelType Enum, options ...TextureBuilderOption) (common.Texture, error) {
	if img == nil {
		return 0, ErrNilImage
	}
	o := textureOptions{
		minFilter: Linear,
		magFilter: Linear,
		wrapS:     MirroredRepeat,
		wrapT:     ClampToEdge,
	}
	for _, option := range options {
		option(&o)
	}

	target = common.Coalesce(target, Texture2D)
	pixelType = common.Coalesce(pixelType, UnsignedByte)

	if o.powerOfTwo {
		img = resizePowerOfTwo(img)
	}
	staging, err := StageRGB(img, pixelType)
	if err != nil {
		return 0, err
	}

	texture := ctx.CreateTexture()
	ctx.BindTexture(target, texture)
	ctx.TexImage2D(target, 0, RGB, staging.Width, staging.Height, RGB, pixelType, staging.Pixels)
	ctx.TexParameteri(target, TextureMinFilter, int32(o.minFilter))
	ctx.TexParameteri(target, TextureMagFilter, int32(o.magFilter))
	ctx.TexParameteri(target, TextureWrapS, int32(o.wrapS))
	ctx.TexParameteri(target, TextureWrapT, int32(o.wrapT))
	return texture, nil
}

// StageRGB converts img to tightly packed RGB pixels of the given GL pixel type. Alpha is dropped.
//
// Parameters:
//   - img: the source image
//   - pixelType: UnsignedByte (3 bytes per pixel) or UnsignedShort565 (2 bytes per pixel)
//
// Returns:
//   - common.TextureStagingData: the packed pixels and dimensions
//   - error: error wrapping ErrUnsupportedPixelType for any other type
func StageRGB(img image.Image, pixelType Enum) (common.TextureStagingData, error) {
	var bpp int
	switch pixelType {
	case UnsignedByte:
		bpp = 3
	case UnsignedShort565:
		bpp = 2
	default:
		return common.TextureStagingData{}, fmt.Errorf("0x%X: %w", uint32(pixelType), ErrUnsupportedPixelType)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	var out []byte
	if bpp == 3 {
		out = make([]byte, 0, w*h*3)
		for i := 0; i < len(rgba.Pix); i += 4 {
			out = append(out, rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2])
		}
	} else {
		// 565 texels are uploaded in host byte order.
		packed := make([]uint16, 0, w*h)
		for i := 0; i < len(rgba.Pix); i += 4 {
			r, g, b := rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2]
			packed = append(packed, uint16(r>>3)<<11|uint16(g>>2)<<5|uint16(b>>3))
		}
		out = common.SliceToBytes(packed)
	}

	return common.TextureStagingData{
		Pixels:        out,
		Width:         int32(w),
		Height:        int32(h),
		BytesPerPixel: bpp,
	}, nil
}

func resizePowerOfTwo(img image.Image) image.Image {
	b := img.Bounds()
	w, h := common.NextPowerOfTwo(b.Dx()), common.NextPowerOfTwo(b.Dy())
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return transform.Resize(img, w, h, transform.Linear)
}

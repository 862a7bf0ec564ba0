// package common contains common types that are used throughout this module. They are not interface-wrapped structs, just plain
// handles and structs shared by the loader, resolver and renderer packages.
package common

// Shader is an opaque shader object handle owned by a rendering context. The zero value is "no shader".
type Shader uint32

// Program is an opaque linked program handle owned by a rendering context. The zero value is "no program".
type Program uint32

// Buffer is an opaque GPU buffer handle owned by a rendering context. The zero value is "no buffer".
type Buffer uint32

// Texture is an opaque texture handle owned by a rendering context. The zero value is "no texture".
type Texture uint32

// TextureStagingData holds packed pixel data for a texture pending GPU upload.
// Produced by the renderer's image conversion and consumed by a TextureContext.
type TextureStagingData struct {
	// Pixels is the packed pixel data, row-major, tightly packed (no row padding).
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width int32
	// Height is the height of the texture in pixels.
	Height int32
	// BytesPerPixel is the size of one packed pixel (3 for RGB/UNSIGNED_BYTE, 2 for RGB/UNSIGNED_SHORT_5_6_5).
	BytesPerPixel int
}

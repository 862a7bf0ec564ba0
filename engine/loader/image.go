package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImage sniffs the payload type from its magic bytes and decodes it. PNG, JPEG, GIF, WebP,
// BMP and TIFF are supported.
//
// Parameters:
//   - data: the encoded image
//
// Returns:
//   - image.Image: the decoded image
//   - string: the sniffed MIME type
//   - error: error wrapping ErrNotImage if the payload is not a known image type, or the decoder error
func DecodeImage(data []byte) (image.Image, string, error) {
	kind, err := filetype.Image(data)
	if err != nil || kind == filetype.Unknown {
		return nil, "", fmt.Errorf("%d bytes: %w", len(data), ErrNotImage)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, kind.MIME.Value, fmt.Errorf("failed to decode %s: %w", kind.MIME.Value, err)
	}
	return img, kind.MIME.Value, nil
}

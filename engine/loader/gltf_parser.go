package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/qmuntal/gltf"
)

// GLB container constants.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
const (
	glbMagic     uint32 = 0x46546C67 // "glTF"
	glbVersion   uint32 = 2
	glbChunkJSON uint32 = 0x4E4F534A // "JSON"
	glbChunkBIN  uint32 = 0x004E4942 // "BIN\0"
)

type glbHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type glbChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32
}

// supportedVersions is the asset version range this loader understands.
var supportedVersions = func() *semver.Constraints {
	c, err := semver.NewConstraint(">= 2.0, < 3.0")
	if err != nil {
		panic(err)
	}
	return c
}()

var loaderVersion = semver.MustParse("2.0.0")

// isGLB reports whether data starts with the GLB magic.
func isGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == glbMagic
}

// decodeDocument parses a glTF JSON or GLB payload. A GLB binary chunk becomes the data of the
// first buffer when that buffer has no URI.
func decodeDocument(data []byte) (*gltf.Document, error) {
	jsonData := data
	var binData []byte
	if isGLB(data) {
		var err error
		jsonData, binData, err = parseGLB(data)
		if err != nil {
			return nil, err
		}
	}

	var doc gltf.Document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if err := checkVersion(doc.Asset); err != nil {
		return nil, err
	}

	if binData != nil {
		if len(doc.Buffers) == 0 || doc.Buffers[0].URI != "" {
			return nil, fmt.Errorf("GLB binary chunk has no buffer to fill: %w", ErrInvalidGLB)
		}
		if len(binData) < doc.Buffers[0].ByteLength {
			return nil, fmt.Errorf("buffer 0: %w", ErrBufferSizeMismatch)
		}
		doc.Buffers[0].Data = binData[:doc.Buffers[0].ByteLength]
	}
	return &doc, nil
}

// parseGLB splits a GLB container into its JSON and optional BIN chunks.
func parseGLB(data []byte) (jsonData, binData []byte, err error) {
	if len(data) < 12 {
		return nil, nil, fmt.Errorf("GLB file too small: %w", ErrInvalidGLB)
	}

	r := bytes.NewReader(data)

	var header glbHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, fmt.Errorf("failed to read GLB header: %w", err)
	}
	if header.Magic != glbMagic {
		return nil, nil, fmt.Errorf("bad magic 0x%08X: %w", header.Magic, ErrInvalidGLB)
	}
	if header.Version != glbVersion {
		return nil, nil, fmt.Errorf("container version %d: %w", header.Version, ErrUnsupportedVersion)
	}
	if header.Length < 12 || int(header.Length) > len(data) {
		return nil, nil, fmt.Errorf("declared length %d exceeds %d bytes: %w", header.Length, len(data), ErrInvalidGLB)
	}
	r = bytes.NewReader(data[12:header.Length])

	for {
		var chunkHeader glbChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunkHeader); err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, fmt.Errorf("failed to read chunk header: %w", err)
		}

		if int64(chunkHeader.ChunkLength) > int64(r.Len()) {
			return nil, nil, fmt.Errorf("chunk length %d exceeds %d remaining bytes: %w", chunkHeader.ChunkLength, r.Len(), ErrInvalidGLB)
		}
		chunkData := make([]byte, chunkHeader.ChunkLength)
		if _, err := io.ReadFull(r, chunkData); err != nil {
			return nil, nil, fmt.Errorf("failed to read chunk data: %w", err)
		}

		switch chunkHeader.ChunkType {
		case glbChunkJSON:
			if jsonData == nil {
				jsonData = chunkData
			}
		case glbChunkBIN:
			if binData == nil {
				binData = chunkData
			}
		}
	}

	if jsonData == nil {
		return nil, nil, fmt.Errorf("missing JSON chunk: %w", ErrInvalidGLB)
	}
	return jsonData, binData, nil
}

func checkVersion(asset gltf.Asset) error {
	v, err := semver.NewVersion(asset.Version)
	if err != nil {
		return fmt.Errorf("asset version %q: %w", asset.Version, ErrUnsupportedVersion)
	}
	if !supportedVersions.Check(v) {
		return fmt.Errorf("asset version %s: %w", v, ErrUnsupportedVersion)
	}
	if asset.MinVersion == "" {
		return nil
	}
	mv, err := semver.NewVersion(asset.MinVersion)
	if err != nil {
		return fmt.Errorf("asset minVersion %q: %w", asset.MinVersion, ErrUnsupportedVersion)
	}
	if mv.GreaterThan(loaderVersion) {
		return fmt.Errorf("asset requires %s: %w", mv, ErrUnsupportedVersion)
	}
	return nil
}

func isDataURI(uri string) bool {
	return strings.HasPrefix(uri, "data:")
}

// decodeDataURI decodes a base64 data URI.
// Format: data:[<mediatype>][;base64],<data>
func decodeDataURI(uri string) ([]byte, error) {
	commaIdx := strings.Index(uri, ",")
	if !isDataURI(uri) || commaIdx < 0 {
		return nil, ErrInvalidURI
	}

	header := uri[5:commaIdx]
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("unsupported data URI encoding %q: %w", header, ErrInvalidURI)
	}

	data, err := base64.StdEncoding.DecodeString(uri[commaIdx+1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", errors.Join(ErrInvalidURI, err))
	}
	return data, nil
}

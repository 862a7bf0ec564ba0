package renderer

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
)

// Enum is a GL enumerant. Values are shared by desktop OpenGL, OpenGL ES and WebGL.
type Enum uint32

// Shader types and status queries.
const (
	FragmentShader Enum = 0x8B30
	VertexShader   Enum = 0x8B31
	CompileStatus  Enum = 0x8B81
	LinkStatus     Enum = 0x8B82
)

// Buffer targets and usage.
const (
	ArrayBuffer        Enum = 0x8892
	ElementArrayBuffer Enum = 0x8893
	StaticDraw         Enum = 0x88E4
)

// Data types.
const (
	Byte             Enum = 0x1400
	UnsignedByte     Enum = 0x1401
	Short            Enum = 0x1402
	UnsignedShort    Enum = 0x1403
	UnsignedInt      Enum = 0x1405
	Float            Enum = 0x1406
	UnsignedShort565 Enum = 0x8363
)

// Texture targets, formats and parameters.
const (
	Texture2D        Enum = 0x0DE1
	RGB              Enum = 0x1907
	RGBA             Enum = 0x1908
	Nearest          Enum = 0x2600
	Linear           Enum = 0x2601
	TextureMagFilter Enum = 0x2800
	TextureMinFilter Enum = 0x2801
	TextureWrapS     Enum = 0x2802
	TextureWrapT     Enum = 0x2803
	Repeat           Enum = 0x2901
	ClampToEdge      Enum = 0x812F
	MirroredRepeat   Enum = 0x8370
)

// ShaderContext is the subset of a GL context used to build shaders and programs.
type ShaderContext interface {
	CreateShader(typ Enum) common.Shader
	ShaderSource(shader common.Shader, source string)
	CompileShader(shader common.Shader)
	// GetShaderParameter returns an integer shader parameter; CompileStatus is non-zero on success.
	GetShaderParameter(shader common.Shader, pname Enum) int
	GetShaderInfoLog(shader common.Shader) string
	DeleteShader(shader common.Shader)

	CreateProgram() common.Program
	AttachShader(program common.Program, shader common.Shader)
	LinkProgram(program common.Program)
	// GetProgramParameter returns an integer program parameter; LinkStatus is non-zero on success.
	GetProgramParameter(program common.Program, pname Enum) int
	GetProgramInfoLog(program common.Program) string
	DeleteProgram(program common.Program)
}

// BufferContext is the subset of a GL context used to allocate and fill GPU buffers.
type BufferContext interface {
	CreateBuffer() common.Buffer
	BindBuffer(target Enum, buffer common.Buffer)
	BufferData(target Enum, data []byte, usage Enum)
}

// AttribContext is the subset of a GL context used to wire vertex attributes to the bound ARRAY_BUFFER.
type AttribContext interface {
	// GetAttribLocation returns the attribute location, or -1 when the program has no such active attribute.
	GetAttribLocation(program common.Program, name string) int32
	VertexAttribPointer(index uint32, size int32, typ Enum, normalized bool, stride int32, offset int)
	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)
}

// TextureContext is the subset of a GL context used to create and configure textures.
type TextureContext interface {
	CreateTexture() common.Texture
	BindTexture(target Enum, texture common.Texture)
	// TexImage2D uploads tightly packed pixels (unpack alignment 1) to the bound texture.
	TexImage2D(target Enum, level int32, internalFormat Enum, width, height int32, format, typ Enum, pixels []byte)
	TexParameteri(target, pname Enum, param int32)
}

// Context is a complete rendering context as consumed by the helpers in this package.
// Implementations live in the glbackend (desktop OpenGL), webglbackend (browser WebGL) and, for
// BufferContext and TextureContext only, wgpubackend packages.
type Context interface {
	ShaderContext
	BufferContext
	AttribContext
	TextureContext
}

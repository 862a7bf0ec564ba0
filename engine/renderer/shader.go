package renderer

import (
	"errors"
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// Common errors returned by the shader helpers.
var (
	ErrShaderCompile = errors.New("shader compilation failed")
	ErrProgramLink   = errors.New("program link failed")
)

// CreateShader creates a shader of the given type, uploads source and compiles it.
// On a failed compile status the info log is logged, the shader is deleted from the context and the
// zero handle is returned with an error wrapping ErrShaderCompile.
//
// Parameters:
//   - ctx: the rendering context
//   - typ: VertexShader or FragmentShader
//   - source: GLSL source text
//
// Returns:
//   - common.Shader: the compiled shader, or 0 on failure
//   - error: error if compilation fails
func CreateShader(ctx ShaderContext, typ Enum, source string) (common.Shader, error) {
	shader := ctx.CreateShader(typ)
	ctx.ShaderSource(shader, source)
	ctx.CompileShader(shader)
	if ctx.GetShaderParameter(shader, CompileStatus) != 0 {
		return shader, nil
	}

	info := ctx.GetShaderInfoLog(shader)
	log.Printf("[Renderer] %s compile failed: %s", shaderTypeName(typ), info)
	ctx.DeleteShader(shader)
	return 0, fmt.Errorf("%s: %w: %s", shaderTypeName(typ), ErrShaderCompile, info)
}

// CreateProgram compiles a vertex and a fragment shader, attaches both to a new program and links it.
// A failed link is logged, the program deleted and the zero handle returned with an error wrapping
// ErrProgramLink. A shader that fails to compile stops the build before a program is created.
//
// Parameters:
//   - ctx: the rendering context
//   - vertexSource: GLSL vertex shader source
//   - fragmentSource: GLSL fragment shader source
//
// Returns:
//   - common.Program: the linked program, or 0 on failure
//   - error: error if either shader fails to compile or the program fails to link
func CreateProgram(ctx ShaderContext, vertexSource, fragmentSource string) (common.Program, error) {
	vs, err := CreateShader(ctx, VertexShader, vertexSource)
	if err != nil {
		return 0, err
	}
	fs, err := CreateShader(ctx, FragmentShader, fragmentSource)
	if err != nil {
		return 0, err
	}

	program := ctx.CreateProgram()
	ctx.AttachShader(program, vs)
	ctx.AttachShader(program, fs)
	ctx.LinkProgram(program)
	if ctx.GetProgramParameter(program, LinkStatus) != 0 {
		return program, nil
	}

	info := ctx.GetProgramInfoLog(program)
	log.Printf("[Renderer] program link failed: %s", info)
	ctx.DeleteProgram(program)
	return 0, fmt.Errorf("%w: %s", ErrProgramLink, info)
}

func shaderTypeName(typ Enum) string {
	switch typ {
	case VertexShader:
		return "vertex shader"
	case FragmentShader:
		return "fragment shader"
	default:
		return fmt.Sprintf("shader type 0x%X", uint32(typ))
	}
}

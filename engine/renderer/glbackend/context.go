//go:build !js

// Package glbackend implements renderer.Context on desktop OpenGL 4.1 core through go-gl.
package glbackend

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInit is returned when the OpenGL function pointers cannot be loaded.
var ErrInit = errors.New("failed to initialize OpenGL")

// Context is a renderer.DrawContext backed by the OpenGL context current on the calling thread.
// All methods must be called from that thread.
type Context struct {
	vao uint32
}

var (
	_ renderer.Context     = &Context{}
	_ renderer.DrawContext = &Context{}
)

// NewContext loads the OpenGL function pointers for the current context and binds a vertex array
// object, which the core profile requires before any attribute can be pointed.
//
// Returns:
//   - *Context: the context
//   - error: error wrapping ErrInit if no OpenGL 4.1 context is current
func NewContext() (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	log.Printf("[GL] %s, GLSL %s", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))

	c := &Context{}
	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.Enable(gl.DEPTH_TEST)
	return c, nil
}

// Release deletes the vertex array object created by NewContext.
func (c *Context) Release() {
	if c.vao != 0 {
		gl.DeleteVertexArrays(1, &c.vao)
		c.vao = 0
	}
}

// Viewport sets the viewport to the given framebuffer size.
func (c *Context) Viewport(width, height int32) {
	gl.Viewport(0, 0, width, height)
}

// Clear clears color and depth to the given color.
func (c *Context) Clear(color mgl32.Vec4) {
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (c *Context) CreateShader(typ renderer.Enum) common.Shader {
	return common.Shader(gl.CreateShader(uint32(typ)))
}

func (c *Context) ShaderSource(shader common.Shader, source string) {
	csources, free := gl.Strs(cstr(source))
	gl.ShaderSource(uint32(shader), 1, csources, nil)
	free()
}

func (c *Context) CompileShader(shader common.Shader) {
	gl.CompileShader(uint32(shader))
}

func (c *Context) GetShaderParameter(shader common.Shader, pname renderer.Enum) int {
	var v int32
	gl.GetShaderiv(uint32(shader), uint32(pname), &v)
	return int(v)
}

func (c *Context) GetShaderInfoLog(shader common.Shader) string {
	var n int32
	gl.GetShaderiv(uint32(shader), gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	buf := make([]byte, n)
	gl.GetShaderInfoLog(uint32(shader), n, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func (c *Context) DeleteShader(shader common.Shader) {
	gl.DeleteShader(uint32(shader))
}

func (c *Context) CreateProgram() common.Program {
	return common.Program(gl.CreateProgram())
}

func (c *Context) AttachShader(program common.Program, shader common.Shader) {
	gl.AttachShader(uint32(program), uint32(shader))
}

func (c *Context) LinkProgram(program common.Program) {
	gl.LinkProgram(uint32(program))
}

func (c *Context) GetProgramParameter(program common.Program, pname renderer.Enum) int {
	var v int32
	gl.GetProgramiv(uint32(program), uint32(pname), &v)
	return int(v)
}

func (c *Context) GetProgramInfoLog(program common.Program) string {
	var n int32
	gl.GetProgramiv(uint32(program), gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	buf := make([]byte, n)
	gl.GetProgramInfoLog(uint32(program), n, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func (c *Context) DeleteProgram(program common.Program) {
	gl.DeleteProgram(uint32(program))
}

func (c *Context) CreateBuffer() common.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	return common.Buffer(b)
}

func (c *Context) BindBuffer(target renderer.Enum, buffer common.Buffer) {
	gl.BindBuffer(uint32(target), uint32(buffer))
}

func (c *Context) BufferData(target renderer.Enum, data []byte, usage renderer.Enum) {
	if len(data) == 0 {
		gl.BufferData(uint32(target), 0, nil, uint32(usage))
		return
	}
	gl.BufferData(uint32(target), len(data), gl.Ptr(data), uint32(usage))
}

func (c *Context) GetAttribLocation(program common.Program, name string) int32 {
	return gl.GetAttribLocation(uint32(program), gl.Str(cstr(name)))
}

func (c *Context) VertexAttribPointer(index uint32, size int32, typ renderer.Enum, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, uint32(typ), normalized, stride, uintptr(offset))
}

func (c *Context) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (c *Context) DisableVertexAttribArray(index uint32) {
	gl.DisableVertexAttribArray(index)
}

func (c *Context) CreateTexture() common.Texture {
	var t uint32
	gl.GenTextures(1, &t)
	return common.Texture(t)
}

func (c *Context) BindTexture(target renderer.Enum, texture common.Texture) {
	gl.BindTexture(uint32(target), uint32(texture))
}

func (c *Context) TexImage2D(target renderer.Enum, level int32, internalFormat renderer.Enum, width, height int32, format, typ renderer.Enum, pixels []byte) {
	if len(pixels) == 0 {
		gl.TexImage2D(uint32(target), level, int32(internalFormat), width, height, 0, uint32(format), uint32(typ), nil)
		return
	}
	gl.TexImage2D(uint32(target), level, int32(internalFormat), width, height, 0, uint32(format), uint32(typ), gl.Ptr(pixels))
}

func (c *Context) TexParameteri(target, pname renderer.Enum, param int32) {
	gl.TexParameteri(uint32(target), uint32(pname), param)
}

func (c *Context) UseProgram(program common.Program) {
	gl.UseProgram(uint32(program))
}

func (c *Context) GetUniformLocation(program common.Program, name string) int32 {
	return gl.GetUniformLocation(uint32(program), gl.Str(cstr(name)))
}

func (c *Context) UniformMatrix4fv(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (c *Context) DrawArrays(mode renderer.Enum, first, count int32) {
	gl.DrawArrays(uint32(mode), first, count)
}

func (c *Context) DrawElements(mode renderer.Enum, count int32, typ renderer.Enum, offset int) {
	gl.DrawElementsWithOffset(uint32(mode), count, uint32(typ), uintptr(offset))
}

// cstr appends the NUL terminator go-gl requires on strings passed to C.
func cstr(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

//go:build js && wasm

// Package webglbackend implements renderer.Context on a browser WebGL rendering context.
package webglbackend

import (
	"errors"
	"syscall/js"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoContext is returned when the canvas cannot provide a WebGL context.
var ErrNoContext = errors.New("webgl context is not available")

// Context adapts a WebGLRenderingContext to renderer.DrawContext. WebGL hands out objects rather
// than integer names, so every created object is kept in a registry keyed by a generated handle.
type Context struct {
	gl   js.Value
	next uint32
	// uintIndices is set when UNSIGNED_INT element indices are usable.
	uintIndices bool

	objects  map[uint32]js.Value
	uniforms map[int32]js.Value
}

var (
	_ renderer.Context          = &Context{}
	_ renderer.DrawContext      = &Context{}
	_ renderer.IndexTypeContext = &Context{}
)

// NewContext gets a WebGL context from canvas, trying "webgl2", "webgl" and "experimental-webgl" in
// that order. WebGL 1 contexts get OES_element_index_uint when the browser offers it.
//
// Parameters:
//   - canvas: an HTMLCanvasElement
//
// Returns:
//   - *Context: the context
//   - error: ErrNoContext if the browser refuses all of them
func NewContext(canvas js.Value) (*Context, error) {
	for _, kind := range []string{"webgl2", "webgl", "experimental-webgl"} {
		gl := canvas.Call("getContext", kind)
		if gl.IsNull() || gl.IsUndefined() {
			continue
		}
		return Wrap(gl), nil
	}
	return nil, ErrNoContext
}

// Wrap adapts an existing WebGL context. On WebGL 1 it requests OES_element_index_uint.
func Wrap(gl js.Value) *Context {
	c := &Context{
		gl:       gl,
		objects:  make(map[uint32]js.Value),
		uniforms: make(map[int32]js.Value),
	}
	gl.Call("pixelStorei", gl.Get("UNPACK_ALIGNMENT"), 1)
	gl.Call("enable", gl.Get("DEPTH_TEST"))

	if ctor := js.Global().Get("WebGL2RenderingContext"); ctor.Type() == js.TypeFunction && gl.InstanceOf(ctor) {
		c.uintIndices = true
	} else {
		ext := gl.Call("getExtension", "OES_element_index_uint")
		c.uintIndices = !ext.IsNull() && !ext.IsUndefined()
	}
	return c
}

func (c *Context) register(v js.Value) uint32 {
	if v.IsNull() || v.IsUndefined() {
		return 0
	}
	c.next++
	c.objects[c.next] = v
	return c.next
}

func (c *Context) object(h uint32) js.Value {
	if v, ok := c.objects[h]; ok {
		return v
	}
	return js.Null()
}

func (c *Context) release(h uint32) js.Value {
	v := c.object(h)
	delete(c.objects, h)
	return v
}

// Viewport sets the viewport to the given drawing buffer size.
func (c *Context) Viewport(width, height int32) {
	c.gl.Call("viewport", 0, 0, width, height)
}

// Clear clears color and depth to the given color.
func (c *Context) Clear(color mgl32.Vec4) {
	c.gl.Call("clearColor", color[0], color[1], color[2], color[3])
	c.gl.Call("clear", c.gl.Get("COLOR_BUFFER_BIT").Int()|c.gl.Get("DEPTH_BUFFER_BIT").Int())
}

func (c *Context) CreateShader(typ renderer.Enum) common.Shader {
	return common.Shader(c.register(c.gl.Call("createShader", uint32(typ))))
}

func (c *Context) ShaderSource(shader common.Shader, source string) {
	c.gl.Call("shaderSource", c.object(uint32(shader)), source)
}

func (c *Context) CompileShader(shader common.Shader) {
	c.gl.Call("compileShader", c.object(uint32(shader)))
}

func (c *Context) GetShaderParameter(shader common.Shader, pname renderer.Enum) int {
	return jsInt(c.gl.Call("getShaderParameter", c.object(uint32(shader)), uint32(pname)))
}

func (c *Context) GetShaderInfoLog(shader common.Shader) string {
	return jsString(c.gl.Call("getShaderInfoLog", c.object(uint32(shader))))
}

func (c *Context) DeleteShader(shader common.Shader) {
	c.gl.Call("deleteShader", c.release(uint32(shader)))
}

func (c *Context) CreateProgram() common.Program {
	return common.Program(c.register(c.gl.Call("createProgram")))
}

func (c *Context) AttachShader(program common.Program, shader common.Shader) {
	c.gl.Call("attachShader", c.object(uint32(program)), c.object(uint32(shader)))
}

func (c *Context) LinkProgram(program common.Program) {
	c.gl.Call("linkProgram", c.object(uint32(program)))
}

func (c *Context) GetProgramParameter(program common.Program, pname renderer.Enum) int {
	return jsInt(c.gl.Call("getProgramParameter", c.object(uint32(program)), uint32(pname)))
}

func (c *Context) GetProgramInfoLog(program common.Program) string {
	return jsString(c.gl.Call("getProgramInfoLog", c.object(uint32(program))))
}

func (c *Context) DeleteProgram(program common.Program) {
	c.gl.Call("deleteProgram", c.release(uint32(program)))
}

func (c *Context) CreateBuffer() common.Buffer {
	return common.Buffer(c.register(c.gl.Call("createBuffer")))
}

func (c *Context) BindBuffer(target renderer.Enum, buffer common.Buffer) {
	c.gl.Call("bindBuffer", uint32(target), c.object(uint32(buffer)))
}

func (c *Context) BufferData(target renderer.Enum, data []byte, usage renderer.Enum) {
	c.gl.Call("bufferData", uint32(target), uint8Array(data), uint32(usage))
}

func (c *Context) GetAttribLocation(program common.Program, name string) int32 {
	return int32(c.gl.Call("getAttribLocation", c.object(uint32(program)), name).Int())
}

func (c *Context) VertexAttribPointer(index uint32, size int32, typ renderer.Enum, normalized bool, stride int32, offset int) {
	c.gl.Call("vertexAttribPointer", index, size, uint32(typ), normalized, stride, offset)
}

func (c *Context) EnableVertexAttribArray(index uint32) {
	c.gl.Call("enableVertexAttribArray", index)
}

func (c *Context) DisableVertexAttribArray(index uint32) {
	c.gl.Call("disableVertexAttribArray", index)
}

func (c *Context) CreateTexture() common.Texture {
	return common.Texture(c.register(c.gl.Call("createTexture")))
}

func (c *Context) BindTexture(target renderer.Enum, texture common.Texture) {
	c.gl.Call("bindTexture", uint32(target), c.object(uint32(texture)))
}

func (c *Context) TexImage2D(target renderer.Enum, level int32, internalFormat renderer.Enum, width, height int32, format, typ renderer.Enum, pixels []byte) {
	var data js.Value
	switch {
	case len(pixels) == 0:
		data = js.Null()
	case typ == renderer.UnsignedShort565:
		// WebGL requires a Uint16Array for packed pixel types.
		u8 := uint8Array(pixels)
		data = js.Global().Get("Uint16Array").New(u8.Get("buffer"), 0, len(pixels)/2)
	default:
		data = uint8Array(pixels)
	}
	c.gl.Call("texImage2D", uint32(target), level, uint32(internalFormat), width, height, 0, uint32(format), uint32(typ), data)
}

func (c *Context) TexParameteri(target, pname renderer.Enum, param int32) {
	c.gl.Call("texParameteri", uint32(target), uint32(pname), param)
}

func (c *Context) UseProgram(program common.Program) {
	c.gl.Call("useProgram", c.object(uint32(program)))
}

func (c *Context) GetUniformLocation(program common.Program, name string) int32 {
	loc := c.gl.Call("getUniformLocation", c.object(uint32(program)), name)
	if loc.IsNull() || loc.IsUndefined() {
		return -1
	}
	id := int32(len(c.uniforms))
	c.uniforms[id] = loc
	return id
}

func (c *Context) UniformMatrix4fv(location int32, m mgl32.Mat4) {
	loc, ok := c.uniforms[location]
	if !ok {
		return
	}
	values := make([]any, len(m))
	for i, v := range m {
		values[i] = v
	}
	c.gl.Call("uniformMatrix4fv", loc, false, js.ValueOf(values))
}

func (c *Context) DrawArrays(mode renderer.Enum, first, count int32) {
	c.gl.Call("drawArrays", uint32(mode), first, count)
}

// ElementIndexUint reports whether UnsignedInt indices can be drawn.
func (c *Context) ElementIndexUint() bool {
	return c.uintIndices
}

func (c *Context) DrawElements(mode renderer.Enum, count int32, typ renderer.Enum, offset int) {
	c.gl.Call("drawElements", uint32(mode), count, uint32(typ), offset)
}

func uint8Array(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

// jsInt reads a GL parameter that may come back as a boolean or a number.
func jsInt(v js.Value) int {
	switch v.Type() {
	case js.TypeBoolean:
		if v.Bool() {
			return 1
		}
		return 0
	case js.TypeNumber:
		return v.Int()
	default:
		return 0
	}
}

func jsString(v js.Value) string {
	if v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}

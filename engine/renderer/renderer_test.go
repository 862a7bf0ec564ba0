package renderer

import (
	"encoding/binary"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/resolver"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferUpload struct {
	target Enum
	buffer common.Buffer
	data   []byte
	usage  Enum
}

type attribPointer struct {
	index      uint32
	size       int32
	typ        Enum
	normalized bool
	stride     int32
	offset     int
}

type texUpload struct {
	target         Enum
	internalFormat Enum
	width, height  int32
	format, typ    Enum
	pixels         []byte
}

// fakeContext records every call. Shaders whose source contains "error" fail to compile; programs
// whose vertex source contains "nolink" fail to link.
type fakeContext struct {
	next uint32

	sources        map[common.Shader]string
	deletedShaders []common.Shader
	programs       map[common.Program][]common.Shader
	deletedProgs   []common.Program

	bound   map[Enum]common.Buffer
	uploads []bufferUpload

	attribs  map[string]int32
	pointers []attribPointer
	enabled  map[uint32]bool

	boundTexture common.Texture
	texImages    []texUpload
	texParams    map[Enum]int32

	program  common.Program
	uniforms []mgl32.Mat4
	draws    []drawCall
}

type drawCall struct {
	mode    Enum
	count   int32
	typ     Enum
	offset  int
	indexed bool
	buffer  common.Buffer
}

var (
	_ Context     = &fakeContext{}
	_ DrawContext = &fakeContext{}
)

func newFakeContext() *fakeContext {
	return &fakeContext{
		sources:   make(map[common.Shader]string),
		programs:  make(map[common.Program][]common.Shader),
		bound:     make(map[Enum]common.Buffer),
		attribs:   map[string]int32{"a_position": 0, "a_normal": 3},
		enabled:   make(map[uint32]bool),
		texParams: make(map[Enum]int32),
	}
}

func (f *fakeContext) handle() uint32 {
	f.next++
	return f.next
}

func (f *fakeContext) CreateShader(Enum) common.Shader { return common.Shader(f.handle()) }
func (f *fakeContext) ShaderSource(s common.Shader, src string) {
	f.sources[s] = src
}
func (f *fakeContext) CompileShader(common.Shader) {}
func (f *fakeContext) GetShaderParameter(s common.Shader, pname Enum) int {
	if pname == CompileStatus && !strings.Contains(f.sources[s], "error") {
		return 1
	}
	return 0
}
func (f *fakeContext) GetShaderInfoLog(common.Shader) string { return "ERROR: 0:1: syntax error" }
func (f *fakeContext) DeleteShader(s common.Shader) {
	f.deletedShaders = append(f.deletedShaders, s)
}
func (f *fakeContext) CreateProgram() common.Program { return common.Program(f.handle()) }
func (f *fakeContext) AttachShader(p common.Program, s common.Shader) {
	f.programs[p] = append(f.programs[p], s)
}
func (f *fakeContext) LinkProgram(common.Program) {}
func (f *fakeContext) GetProgramParameter(p common.Program, pname Enum) int {
	for _, s := range f.programs[p] {
		if strings.Contains(f.sources[s], "nolink") {
			return 0
		}
	}
	return 1
}
func (f *fakeContext) GetProgramInfoLog(common.Program) string { return "link error" }
func (f *fakeContext) DeleteProgram(p common.Program) {
	f.deletedProgs = append(f.deletedProgs, p)
}

func (f *fakeContext) CreateBuffer() common.Buffer { return common.Buffer(f.handle()) }
func (f *fakeContext) BindBuffer(target Enum, b common.Buffer) {
	f.bound[target] = b
}
func (f *fakeContext) BufferData(target Enum, data []byte, usage Enum) {
	f.uploads = append(f.uploads, bufferUpload{target: target, buffer: f.bound[target], data: data, usage: usage})
}

func (f *fakeContext) GetAttribLocation(_ common.Program, name string) int32 {
	if loc, ok := f.attribs[name]; ok {
		return loc
	}
	return -1
}
func (f *fakeContext) VertexAttribPointer(index uint32, size int32, typ Enum, normalized bool, stride int32, offset int) {
	f.pointers = append(f.pointers, attribPointer{index, size, typ, normalized, stride, offset})
}
func (f *fakeContext) EnableVertexAttribArray(index uint32)  { f.enabled[index] = true }
func (f *fakeContext) DisableVertexAttribArray(index uint32) { f.enabled[index] = false }

func (f *fakeContext) CreateTexture() common.Texture { return common.Texture(f.handle()) }
func (f *fakeContext) BindTexture(_ Enum, t common.Texture) {
	f.boundTexture = t
}
func (f *fakeContext) TexImage2D(target Enum, _ int32, internalFormat Enum, w, h int32, format, typ Enum, pixels []byte) {
	f.texImages = append(f.texImages, texUpload{target, internalFormat, w, h, format, typ, pixels})
}
func (f *fakeContext) TexParameteri(_ Enum, pname Enum, param int32) {
	f.texParams[pname] = param
}

func (f *fakeContext) UseProgram(p common.Program) { f.program = p }
func (f *fakeContext) GetUniformLocation(_ common.Program, name string) int32 {
	if name == "u_mvp" {
		return 5
	}
	return -1
}
func (f *fakeContext) UniformMatrix4fv(_ int32, m mgl32.Mat4) {
	f.uniforms = append(f.uniforms, m)
}
func (f *fakeContext) DrawArrays(mode Enum, _, count int32) {
	f.draws = append(f.draws, drawCall{mode: mode, count: count})
}
func (f *fakeContext) DrawElements(mode Enum, count int32, typ Enum, offset int) {
	f.draws = append(f.draws, drawCall{mode: mode, count: count, typ: typ, offset: offset, indexed: true, buffer: f.bound[ElementArrayBuffer]})
}

const (
	validVS = "attribute vec3 a_position; void main() { gl_Position = vec4(a_position, 1.0); }"
	validFS = "void main() { gl_FragColor = vec4(1.0); }"
)

func TestCreateShader(t *testing.T) {
	ctx := newFakeContext()
	s, err := CreateShader(ctx, VertexShader, validVS)
	require.NoError(t, err)
	assert.NotZero(t, s)
	assert.Empty(t, ctx.deletedShaders)
}

func TestCreateShaderCompileFailure(t *testing.T) {
	ctx := newFakeContext()
	s, err := CreateShader(ctx, FragmentShader, "syntax error here")
	require.ErrorIs(t, err, ErrShaderCompile)
	assert.Contains(t, err.Error(), "fragment shader")
	assert.Zero(t, s)
	assert.Equal(t, []common.Shader{1}, ctx.deletedShaders)
}

func TestCreateProgram(t *testing.T) {
	ctx := newFakeContext()
	p, err := CreateProgram(ctx, validVS, validFS)
	require.NoError(t, err)
	require.NotZero(t, p)
	assert.Len(t, ctx.programs[p], 2)
}

func TestCreateProgramInvalidShader(t *testing.T) {
	ctx := newFakeContext()
	p, err := CreateProgram(ctx, validVS, "error")
	require.ErrorIs(t, err, ErrShaderCompile)
	assert.Zero(t, p)
	assert.Len(t, ctx.deletedShaders, 1)
	assert.Empty(t, ctx.programs)
}

func TestCreateProgramLinkFailure(t *testing.T) {
	ctx := newFakeContext()
	p, err := CreateProgram(ctx, "// nolink", validFS)
	require.ErrorIs(t, err, ErrProgramLink)
	assert.Zero(t, p)
	assert.Len(t, ctx.deletedProgs, 1)
}

func TestMakeBufferDefaults(t *testing.T) {
	ctx := newFakeContext()
	data := []byte{1, 2, 3, 4}
	b := MakeBuffer(ctx, data, 0)

	require.Len(t, ctx.uploads, 1)
	up := ctx.uploads[0]
	assert.Equal(t, ArrayBuffer, up.target)
	assert.Equal(t, b, up.buffer)
	assert.Equal(t, StaticDraw, up.usage)
	assert.Equal(t, data, up.data)
	assert.Equal(t, b, ctx.bound[ArrayBuffer])
}

func TestMakeBufferElementTarget(t *testing.T) {
	ctx := newFakeContext()
	b := MakeBuffer(ctx, nil, ElementArrayBuffer)
	assert.Equal(t, b, ctx.bound[ElementArrayBuffer])
	assert.Empty(t, ctx.bound[ArrayBuffer])
}

// meshDoc has a POSITION accessor at offset 0 of view 0, a NORMAL accessor at offset 12 of the same
// interleaved view, and unsigned short indices in view 1 without a target hint.
func meshDoc() *gltf.Document {
	return &gltf.Document{
		Scenes: []*gltf.Scene{{Nodes: []int{0}}},
		Nodes:  []*gltf.Node{{Mesh: gltf.Index(0)}},
		Meshes: []*gltf.Mesh{{Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{gltf.POSITION: 0, gltf.NORMAL: 1},
			Indices:    gltf.Index(2),
		}}}},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 2, Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(0), ByteOffset: 12, ComponentType: gltf.ComponentByte, Normalized: true, Count: 2, Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(1), ComponentType: gltf.ComponentUshort, Count: 3, Type: gltf.AccessorScalar},
		},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 2, ByteLength: 48, ByteStride: 24},
			{Buffer: 0, ByteOffset: 50, ByteLength: 6},
		},
		Buffers: []*gltf.Buffer{{ByteLength: 56}},
	}
}

func seqBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestSliceBuffer(t *testing.T) {
	ctx := newFakeContext()
	s, err := resolver.NewResolver(meshDoc()).ResolveDefault()
	require.NoError(t, err)
	pos := s.Nodes[0].Mesh.Primitives[0].Attributes[gltf.POSITION]
	raw := seqBytes(56)

	require.NoError(t, SliceBuffer(ctx, pos, raw, 0))
	require.Len(t, ctx.uploads, 1)
	assert.Equal(t, raw[2:50], ctx.uploads[0].data)
	assert.Equal(t, ArrayBuffer, ctx.uploads[0].target)
	first := pos.BufferView.GLBuffer
	assert.NotZero(t, first)

	// The normal accessor shares the view, so it sees the same handle.
	normal := s.Nodes[0].Mesh.Primitives[0].Attributes[gltf.NORMAL]
	assert.Equal(t, first, normal.BufferView.GLBuffer)

	require.NoError(t, SliceBuffer(ctx, pos, raw, 0))
	assert.Len(t, ctx.uploads, 2)
	assert.NotEqual(t, first, pos.BufferView.GLBuffer)
}

func TestSliceBufferErrors(t *testing.T) {
	ctx := newFakeContext()
	s, err := resolver.NewResolver(meshDoc()).ResolveDefault()
	require.NoError(t, err)
	pos := s.Nodes[0].Mesh.Primitives[0].Attributes[gltf.POSITION]

	assert.ErrorIs(t, SliceBuffer(ctx, nil, nil, 0), ErrNilAccessor)
	assert.ErrorIs(t, SliceBuffer(ctx, pos, seqBytes(20), 0), ErrOutOfRange)
	assert.ErrorIs(t, SliceBuffer(ctx, &resolver.Accessor{Source: &gltf.Accessor{}}, nil, 0), ErrNoBufferView)
	assert.Empty(t, ctx.uploads)
	assert.Zero(t, pos.BufferView.GLBuffer)
}

func TestSliceScene(t *testing.T) {
	ctx := newFakeContext()
	s, err := resolver.NewResolver(meshDoc()).ResolveDefault()
	require.NoError(t, err)

	require.NoError(t, SliceScene(ctx, s, [][]byte{seqBytes(56)}))
	require.Len(t, ctx.uploads, 2)

	prim := s.Nodes[0].Mesh.Primitives[0]
	assert.NotZero(t, prim.Attributes[gltf.POSITION].BufferView.GLBuffer)
	assert.NotZero(t, prim.Indices.BufferView.GLBuffer)

	targets := map[common.Buffer]Enum{}
	for _, up := range ctx.uploads {
		targets[up.buffer] = up.target
	}
	assert.Equal(t, ArrayBuffer, targets[prim.Attributes[gltf.POSITION].BufferView.GLBuffer])
	assert.Equal(t, ElementArrayBuffer, targets[prim.Indices.BufferView.GLBuffer])
}

func TestSliceSceneMissingBuffer(t *testing.T) {
	ctx := newFakeContext()
	s, err := resolver.NewResolver(meshDoc()).ResolveDefault()
	require.NoError(t, err)
	assert.ErrorIs(t, SliceScene(ctx, s, nil), ErrOutOfRange)
}

func TestSliceSceneNil(t *testing.T) {
	ctx := newFakeContext()
	assert.ErrorIs(t, SliceScene(ctx, nil, [][]byte{seqBytes(56)}), ErrNilScene)
	assert.Empty(t, ctx.uploads)
}

func TestPointAttributes(t *testing.T) {
	ctx := newFakeContext()
	loc, err := PointAttributes(ctx, 1, "a_normal", 3, 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), loc)
	assert.Equal(t, []attribPointer{{index: 3, size: 3, typ: Float}}, ctx.pointers)
	assert.True(t, ctx.enabled[3])

	require.NoError(t, DisableAttributes(ctx, 1, "a_normal"))
	assert.False(t, ctx.enabled[3])
}

func TestPointAttributesMissing(t *testing.T) {
	ctx := newFakeContext()
	_, err := PointAttributes(ctx, 1, "a_missing", 3, Float, false)
	assert.ErrorIs(t, err, ErrAttributeNotFound)
	assert.ErrorIs(t, DisableAttributes(ctx, 1, "a_missing"), ErrAttributeNotFound)
	assert.Empty(t, ctx.pointers)
}

func TestPointAccessor(t *testing.T) {
	ctx := newFakeContext()
	s, err := resolver.NewResolver(meshDoc()).ResolveDefault()
	require.NoError(t, err)
	prim := s.Nodes[0].Mesh.Primitives[0]
	normal := prim.Attributes[gltf.NORMAL]

	_, err = PointAccessor(ctx, 1, "a_normal", normal)
	require.ErrorIs(t, err, ErrNoGLBuffer)

	require.NoError(t, SliceScene(ctx, s, [][]byte{seqBytes(56)}))
	loc, err := PointAccessor(ctx, 1, "a_normal", normal)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), loc)
	assert.Equal(t, normal.BufferView.GLBuffer, ctx.bound[ArrayBuffer])
	assert.Equal(t, attribPointer{index: 3, size: 3, typ: Byte, normalized: true, stride: 24, offset: 12}, ctx.pointers[len(ctx.pointers)-1])
}

func TestPointAccessorRejectsSparseAndMatrices(t *testing.T) {
	ctx := newFakeContext()
	bv := &resolver.BufferView{GLBuffer: 7}

	sparse := &resolver.Accessor{BufferView: bv, Source: &gltf.Accessor{Type: gltf.AccessorVec3, Sparse: &gltf.Sparse{Count: 1}}}
	_, err := PointAccessor(ctx, 1, "a_position", sparse)
	assert.ErrorIs(t, err, ErrUnsupportedSparse)

	mat := &resolver.Accessor{BufferView: bv, Source: &gltf.Accessor{Type: gltf.AccessorMat4, ComponentType: gltf.ComponentFloat}}
	_, err = PointAccessor(ctx, 1, "a_position", mat)
	assert.ErrorIs(t, err, ErrInvalidAccessorDef)
	assert.Empty(t, ctx.pointers)
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestMakeTextureDefaults(t *testing.T) {
	ctx := newFakeContext()
	img := solidImage(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	tex, err := MakeTexture(ctx, img, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, tex, ctx.boundTexture)

	require.Len(t, ctx.texImages, 1)
	up := ctx.texImages[0]
	assert.Equal(t, Texture2D, up.target)
	assert.Equal(t, RGB, up.internalFormat)
	assert.Equal(t, RGB, up.format)
	assert.Equal(t, UnsignedByte, up.typ)
	assert.Equal(t, int32(2), up.width)
	assert.Equal(t, int32(1), up.height)
	assert.Equal(t, []byte{10, 20, 30, 10, 20, 30}, up.pixels)

	assert.Equal(t, int32(Linear), ctx.texParams[TextureMinFilter])
	assert.Equal(t, int32(Linear), ctx.texParams[TextureMagFilter])
	assert.Equal(t, int32(MirroredRepeat), ctx.texParams[TextureWrapS])
	assert.Equal(t, int32(ClampToEdge), ctx.texParams[TextureWrapT])
}

func TestMakeTexture565(t *testing.T) {
	ctx := newFakeContext()
	img := solidImage(1, 1, color.RGBA{R: 255, G: 0, B: 255, A: 255})

	_, err := MakeTexture(ctx, img, Texture2D, UnsignedShort565)
	require.NoError(t, err)
	up := ctx.texImages[0]
	assert.Equal(t, UnsignedShort565, up.typ)
	require.Len(t, up.pixels, 2)
	assert.Equal(t, uint16(0xF81F), binary.NativeEndian.Uint16(up.pixels))
}

func TestMakeTextureOptions(t *testing.T) {
	ctx := newFakeContext()
	img := solidImage(3, 5, color.White)

	_, err := MakeTexture(ctx, img, 0, 0, WithPowerOfTwo(true), WithFilters(Nearest, Nearest), WithWrap(Repeat, Repeat))
	require.NoError(t, err)
	up := ctx.texImages[0]
	assert.Equal(t, int32(4), up.width)
	assert.Equal(t, int32(8), up.height)
	assert.Len(t, up.pixels, 4*8*3)
	assert.Equal(t, int32(Nearest), ctx.texParams[TextureMinFilter])
	assert.Equal(t, int32(Repeat), ctx.texParams[TextureWrapS])
}

func TestMakeTextureErrors(t *testing.T) {
	ctx := newFakeContext()
	_, err := MakeTexture(ctx, nil, 0, 0)
	assert.ErrorIs(t, err, ErrNilImage)

	_, err = MakeTexture(ctx, solidImage(1, 1, color.Black), 0, Float)
	assert.ErrorIs(t, err, ErrUnsupportedPixelType)
	assert.Empty(t, ctx.texImages)
}

func TestDrawScene(t *testing.T) {
	ctx := newFakeContext()
	doc := meshDoc()
	doc.Nodes[0].Translation = [3]float64{1, 2, 3}
	s, err := resolver.NewResolver(doc).ResolveDefault()
	require.NoError(t, err)
	require.NoError(t, SliceScene(ctx, s, [][]byte{seqBytes(56)}))

	opts := DrawOptions{PositionAttribute: "a_position", MVPUniform: "u_mvp"}
	require.NoError(t, DrawScene(ctx, 9, s, mgl32.Ident4(), opts))

	assert.Equal(t, common.Program(9), ctx.program)
	require.Len(t, ctx.uniforms, 1)
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), ctx.uniforms[0])

	indices := s.Nodes[0].Mesh.Primitives[0].Indices
	require.Len(t, ctx.draws, 1)
	assert.Equal(t, drawCall{mode: Triangles, count: 3, typ: UnsignedShort, indexed: true, buffer: indices.BufferView.GLBuffer}, ctx.draws[0])
	assert.False(t, ctx.enabled[0])
}

func TestDrawSceneArraysAndModes(t *testing.T) {
	ctx := newFakeContext()
	doc := meshDoc()
	doc.Meshes[0].Primitives[0].Indices = nil
	doc.Meshes[0].Primitives[0].Mode = gltf.PrimitiveLineStrip
	s, err := resolver.NewResolver(doc).ResolveDefault()
	require.NoError(t, err)
	require.NoError(t, SliceScene(ctx, s, [][]byte{seqBytes(56)}))

	require.NoError(t, DrawScene(ctx, 1, s, mgl32.Ident4(), DrawOptions{PositionAttribute: "a_position"}))
	assert.Empty(t, ctx.uniforms)
	assert.Equal(t, []drawCall{{mode: LineStrip, count: 2}}, ctx.draws)
}

// webgl1Context is a fakeContext without 32-bit index support.
type webgl1Context struct {
	*fakeContext
	uintIndices bool
}

func (c *webgl1Context) ElementIndexUint() bool { return c.uintIndices }

func TestDrawSceneUintIndices(t *testing.T) {
	doc := meshDoc()
	doc.Accessors[2].ComponentType = gltf.ComponentUint
	doc.Accessors[2].Count = 1
	s, err := resolver.NewResolver(doc).ResolveDefault()
	require.NoError(t, err)
	opts := DrawOptions{PositionAttribute: "a_position"}

	ctx := &webgl1Context{fakeContext: newFakeContext()}
	require.NoError(t, SliceScene(ctx, s, [][]byte{seqBytes(56)}))
	err = DrawScene(ctx, 1, s, mgl32.Ident4(), opts)
	assert.ErrorIs(t, err, ErrUnsupportedIndexType)
	assert.Empty(t, ctx.draws)

	ctx.uintIndices = true
	require.NoError(t, DrawScene(ctx, 1, s, mgl32.Ident4(), opts))
	require.Len(t, ctx.draws, 1)
	assert.Equal(t, UnsignedInt, ctx.draws[0].typ)

	plain := newFakeContext()
	require.NoError(t, SliceScene(plain, s, [][]byte{seqBytes(56)}))
	require.NoError(t, DrawScene(plain, 1, s, mgl32.Ident4(), opts))
	assert.Len(t, plain.draws, 1)
}

func TestDrawSceneNoPosition(t *testing.T) {
	ctx := newFakeContext()
	doc := meshDoc()
	delete(doc.Meshes[0].Primitives[0].Attributes, gltf.POSITION)
	s, err := resolver.NewResolver(doc).ResolveDefault()
	require.NoError(t, err)

	err = DrawScene(ctx, 1, s, mgl32.Ident4(), DrawOptions{PositionAttribute: "a_position"})
	assert.ErrorIs(t, err, ErrNoPosition)
	assert.Empty(t, ctx.draws)
}

package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/resolver"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// Primitive topologies.
const (
	Points        Enum = 0x0000
	Lines         Enum = 0x0001
	LineLoop      Enum = 0x0002
	LineStrip     Enum = 0x0003
	Triangles     Enum = 0x0004
	TriangleStrip Enum = 0x0005
	TriangleFan   Enum = 0x0006
)

var (
	// ErrNoPosition is returned for primitives DrawScene cannot place.
	ErrNoPosition = errors.New("primitive has no POSITION attribute")
	// ErrUnsupportedIndexType is returned for 32-bit indices on a context without support for them.
	ErrUnsupportedIndexType = errors.New("index type not supported by context")
)

// DrawContext is a VertexContext that can also issue draw calls.
type DrawContext interface {
	VertexContext
	UseProgram(program common.Program)
	// GetUniformLocation returns the uniform location, or -1 when the program has no such active uniform.
	GetUniformLocation(program common.Program, name string) int32
	UniformMatrix4fv(location int32, m mgl32.Mat4)
	DrawArrays(mode Enum, first, count int32)
	DrawElements(mode Enum, count int32, typ Enum, offset int)
}

// IndexTypeContext is implemented by contexts where UnsignedInt indices depend on an extension,
// such as WebGL 1 without OES_element_index_uint. Other contexts are assumed to accept them.
type IndexTypeContext interface {
	ElementIndexUint() bool
}

// DrawOptions names the shader inputs DrawScene feeds.
type DrawOptions struct {
	// PositionAttribute receives each primitive's POSITION accessor.
	PositionAttribute string
	// MVPUniform receives projection * world for each node. Skipped when the program lacks it.
	MVPUniform string
}

// DrawScene draws every primitive of every node in scene with program. Each primitive's POSITION
// accessor is pointed at opts.PositionAttribute; indexed primitives draw from their index buffer view,
// the rest draw POSITION.Count vertices. The scene must have been sliced first (see SliceScene).
//
// Parameters:
//   - ctx: the rendering context
//   - program: the linked program
//   - scene: the resolved, sliced scene
//   - projection: view-projection matrix applied on top of each node's world transform
//   - opts: attribute and uniform names
//
// Returns:
//   - error: error if a primitive cannot be drawn
func DrawScene(ctx DrawContext, program common.Program, scene *resolver.Scene, projection mgl32.Mat4, opts DrawOptions) error {
	ctx.UseProgram(program)
	mvp := int32(-1)
	if opts.MVPUniform != "" {
		mvp = ctx.GetUniformLocation(program, opts.MVPUniform)
	}

	return scene.Walk(func(n *resolver.Node, world mgl32.Mat4) error {
		if n.Mesh == nil {
			return nil
		}
		if mvp >= 0 {
			ctx.UniformMatrix4fv(mvp, projection.Mul4(world))
		}
		for i, p := range n.Mesh.Primitives {
			if err := drawPrimitive(ctx, program, p, opts.PositionAttribute); err != nil {
				return fmt.Errorf("mesh %d primitive %d: %w", n.Mesh.Index, i, err)
			}
		}
		return nil
	})
}

func drawPrimitive(ctx DrawContext, program common.Program, p *resolver.Primitive, attribute string) error {
	position := p.Attributes[gltf.POSITION]
	if position == nil {
		return ErrNoPosition
	}
	if p.Indices != nil && ComponentTypeEnum(p.Indices.Source.ComponentType) == UnsignedInt {
		if it, ok := ctx.(IndexTypeContext); ok && !it.ElementIndexUint() {
			return fmt.Errorf("indices accessor %d: %w", p.Indices.Index, ErrUnsupportedIndexType)
		}
	}
	if _, err := PointAccessor(ctx, program, attribute, position); err != nil {
		return err
	}
	mode := PrimitiveModeEnum(p.Mode)

	if p.Indices == nil {
		ctx.DrawArrays(mode, 0, int32(position.Source.Count))
		return DisableAttributes(ctx, program, attribute)
	}

	bv := p.Indices.BufferView
	if bv == nil {
		return fmt.Errorf("indices accessor %d: %w", p.Indices.Index, ErrNoBufferView)
	}
	if bv.GLBuffer == 0 {
		return fmt.Errorf("bufferView %d: %w", bv.Index, ErrNoGLBuffer)
	}
	ctx.BindBuffer(ElementArrayBuffer, bv.GLBuffer)
	ctx.DrawElements(mode, int32(p.Indices.Source.Count), ComponentTypeEnum(p.Indices.Source.ComponentType), p.Indices.Source.ByteOffset)
	return DisableAttributes(ctx, program, attribute)
}

// PrimitiveModeEnum maps a glTF primitive mode to its GL topology.
func PrimitiveModeEnum(mode gltf.PrimitiveMode) Enum {
	switch mode {
	case gltf.PrimitivePoints:
		return Points
	case gltf.PrimitiveLines:
		return Lines
	case gltf.PrimitiveLineLoop:
		return LineLoop
	case gltf.PrimitiveLineStrip:
		return LineStrip
	case gltf.PrimitiveTriangleStrip:
		return TriangleStrip
	case gltf.PrimitiveTriangleFan:
		return TriangleFan
	default:
		return Triangles
	}
}

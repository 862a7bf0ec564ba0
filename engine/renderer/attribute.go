package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/resolver"
	"github.com/qmuntal/gltf"
)

// Common errors returned by the attribute helpers.
var (
	ErrAttributeNotFound  = errors.New("attribute not found in program")
	ErrNoGLBuffer         = errors.New("buffer view has not been sliced")
	ErrUnsupportedSparse  = errors.New("sparse accessors cannot be bound directly")
	ErrInvalidAccessorDef = errors.New("accessor has no GL equivalent")
)

// VertexContext is what PointAccessor needs: buffer binding plus attribute wiring.
type VertexContext interface {
	BufferContext
	AttribContext
}

// PointAttributes looks up attribute in program and points it at the currently bound ARRAY_BUFFER
// with stride 0 and offset 0, then enables the attribute array.
// A zero typ defaults to Float; normalized defaults to false.
//
// Parameters:
//   - ctx: the rendering context
//   - program: the linked program
//   - attribute: the attribute name in the vertex shader
//   - size: number of components per vertex (1-4)
//   - typ: component data type, 0 for Float
//   - normalized: whether integer data is normalized to [0, 1] / [-1, 1]
//
// Returns:
//   - uint32: the attribute location
//   - error: error wrapping ErrAttributeNotFound if the program has no such active attribute
func PointAttributes(ctx AttribContext, program common.Program, attribute string, size int32, typ Enum, normalized bool) (uint32, error) {
	loc, err := attribLocation(ctx, program, attribute)
	if err != nil {
		return 0, err
	}
	ctx.VertexAttribPointer(loc, size, common.Coalesce(typ, Float), normalized, 0, 0)
	ctx.EnableVertexAttribArray(loc)
	return loc, nil
}

// DisableAttributes disables the attribute array of attribute in program.
//
// Parameters:
//   - ctx: the rendering context
//   - program: the linked program
//   - attribute: the attribute name in the vertex shader
//
// Returns:
//   - error: error wrapping ErrAttributeNotFound if the program has no such active attribute
func DisableAttributes(ctx AttribContext, program common.Program, attribute string) error {
	loc, err := attribLocation(ctx, program, attribute)
	if err != nil {
		return err
	}
	ctx.DisableVertexAttribArray(loc)
	return nil
}

// PointAccessor binds the GL buffer of accessor's buffer view and points attribute at it using the
// accessor's own layout: component count from its type, GL type from its component type, its
// normalized flag, the view's byte stride and the accessor's byte offset.
// The buffer view must have been sliced first (see SliceBuffer).
//
// Parameters:
//   - ctx: the rendering context
//   - program: the linked program
//   - attribute: the attribute name in the vertex shader
//   - accessor: the resolved accessor backing the attribute
//
// Returns:
//   - uint32: the attribute location
//   - error: error if the attribute is missing or the accessor cannot be bound
func PointAccessor(ctx VertexContext, program common.Program, attribute string, accessor *resolver.Accessor) (uint32, error) {
	if accessor == nil {
		return 0, ErrNilAccessor
	}
	if accessor.Source.Sparse != nil {
		return 0, fmt.Errorf("accessor %d: %w", accessor.Index, ErrUnsupportedSparse)
	}
	bv := accessor.BufferView
	if bv == nil {
		return 0, fmt.Errorf("accessor %d: %w", accessor.Index, ErrNoBufferView)
	}
	if bv.GLBuffer == 0 {
		return 0, fmt.Errorf("bufferView %d: %w", bv.Index, ErrNoGLBuffer)
	}

	size := AccessorComponents(accessor.Source.Type)
	typ := ComponentTypeEnum(accessor.Source.ComponentType)
	if size == 0 || size > 4 || typ == 0 {
		return 0, fmt.Errorf("accessor %d (type %v): %w", accessor.Index, accessor.Source.Type, ErrInvalidAccessorDef)
	}

	loc, err := attribLocation(ctx, program, attribute)
	if err != nil {
		return 0, err
	}
	ctx.BindBuffer(ArrayBuffer, bv.GLBuffer)
	ctx.VertexAttribPointer(loc, int32(size), typ, accessor.Source.Normalized, int32(bv.ByteStride), accessor.Source.ByteOffset)
	ctx.EnableVertexAttribArray(loc)
	return loc, nil
}

// ComponentTypeEnum maps a glTF component type to its GL data type, or 0 if there is none.
func ComponentTypeEnum(ct gltf.ComponentType) Enum {
	switch ct {
	case gltf.ComponentByte:
		return Byte
	case gltf.ComponentUbyte:
		return UnsignedByte
	case gltf.ComponentShort:
		return Short
	case gltf.ComponentUshort:
		return UnsignedShort
	case gltf.ComponentUint:
		return UnsignedInt
	case gltf.ComponentFloat:
		return Float
	default:
		return 0
	}
}

// AccessorComponents returns the number of components of an accessor element type.
func AccessorComponents(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4, gltf.AccessorMat2:
		return 4
	case gltf.AccessorMat3:
		return 9
	case gltf.AccessorMat4:
		return 16
	default:
		return 0
	}
}

func attribLocation(ctx AttribContext, program common.Program, attribute string) (uint32, error) {
	loc := ctx.GetAttribLocation(program, attribute)
	if loc < 0 {
		return 0, fmt.Errorf("%q: %w", attribute, ErrAttributeNotFound)
	}
	return uint32(loc), nil
}

package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/resolver"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// Common errors returned by the buffer helpers.
var (
	ErrNilAccessor  = errors.New("nil accessor")
	ErrNilScene     = errors.New("nil scene")
	ErrNoBufferView = errors.New("accessor has no buffer view")
	ErrOutOfRange   = errors.New("byte range out of buffer bounds")
)

// MakeBuffer creates a buffer, binds it to target and uploads data with STATIC_DRAW usage.
// A zero target defaults to ArrayBuffer.
//
// Parameters:
//   - ctx: the rendering context
//   - data: bytes to upload (may be nil for an empty buffer)
//   - target: ArrayBuffer, ElementArrayBuffer, or 0 for ArrayBuffer
//
// Returns:
//   - common.Buffer: the new buffer, left bound to target
func MakeBuffer(ctx BufferContext, data []byte, target Enum) common.Buffer {
	target = common.Coalesce(target, ArrayBuffer)
	buffer := ctx.CreateBuffer()
	ctx.BindBuffer(target, buffer)
	ctx.BufferData(target, data, StaticDraw)
	return buffer
}

// SliceBuffer uploads the byte range [ByteOffset, ByteOffset+ByteLength) of accessor's buffer view
// from buffer as a new GPU buffer and stores it on BufferView.GLBuffer. Slicing the same view again
// creates another GPU buffer and overwrites GLBuffer; the previous handle is not released.
//
// Parameters:
//   - ctx: the rendering context
//   - accessor: a resolved accessor with a buffer view
//   - buffer: the raw binary buffer the view refers to
//   - target: buffer target, 0 for ArrayBuffer
//
// Returns:
//   - error: ErrNilAccessor, ErrNoBufferView or ErrOutOfRange (wrapped)
func SliceBuffer(ctx BufferContext, accessor *resolver.Accessor, buffer []byte, target Enum) error {
	if accessor == nil {
		return ErrNilAccessor
	}
	bv := accessor.BufferView
	if bv == nil {
		return fmt.Errorf("accessor %d: %w", accessor.Index, ErrNoBufferView)
	}

	start := bv.ByteOffset
	end := start + bv.ByteLength
	if start < 0 || bv.ByteLength < 0 || end > len(buffer) {
		return fmt.Errorf("bufferView %d [%d, %d) of %d bytes: %w", bv.Index, start, end, len(buffer), ErrOutOfRange)
	}

	bv.GLBuffer = MakeBuffer(ctx, buffer[start:end], target)
	return nil
}

// SliceScene slices the buffer view of every accessor reachable from scene, once per distinct view.
// Views hinted as element array buffers, or read by a primitive's indices, go to ElementArrayBuffer;
// everything else goes to ArrayBuffer. Accessors without a buffer view are skipped.
//
// Parameters:
//   - ctx: the rendering context
//   - scene: the resolved scene
//   - buffers: raw buffer data, indexed like the document's buffers
//
// Returns:
//   - error: ErrNilScene, or error if a view names a missing buffer or its range is out of bounds
func SliceScene(ctx BufferContext, scene *resolver.Scene, buffers [][]byte) error {
	if scene == nil {
		return ErrNilScene
	}
	indexViews := make(map[*resolver.BufferView]bool)
	err := scene.Walk(func(n *resolver.Node, _ mgl32.Mat4) error {
		if n.Mesh == nil {
			return nil
		}
		for _, p := range n.Mesh.Primitives {
			if p.Indices != nil && p.Indices.BufferView != nil {
				indexViews[p.Indices.BufferView] = true
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	done := make(map[*resolver.BufferView]bool)
	for _, a := range scene.Accessors() {
		bv := a.BufferView
		if bv == nil || done[bv] {
			continue
		}
		if bv.Buffer < 0 || bv.Buffer >= len(buffers) {
			return fmt.Errorf("bufferView %d buffer %d (have %d): %w", bv.Index, bv.Buffer, len(buffers), ErrOutOfRange)
		}
		target := ArrayBuffer
		if bv.Target == gltf.TargetElementArrayBuffer || indexViews[bv] {
			target = ElementArrayBuffer
		}
		if err := SliceBuffer(ctx, a, buffers[bv.Buffer], target); err != nil {
			return err
		}
		done[bv] = true
	}
	return nil
}

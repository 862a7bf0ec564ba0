// resolver_types.go contains the resolved object graph produced by a Resolver.
// Every resolved type keeps the index it was resolved from and a pointer to the source glTF object,
// which is never modified. Cross references that are integer indices in glTF are direct pointers here.
package resolver

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/qmuntal/gltf"
)

// Scene is a glTF scene whose node list has been resolved into node objects.
type Scene struct {
	// Name is copied from the source scene.
	Name string

	// Source is the unresolved scene this was built from.
	Source *gltf.Scene

	// Nodes are the resolved root nodes, in the order of Source.Nodes.
	Nodes []*Node
}

// Node is a resolved glTF node.
type Node struct {
	// Index is the position of the node in the document's node list.
	Index int

	// Name is copied from the source node.
	Name string

	// Source is the document node. Its transform fields are read by LocalTransform.
	Source *gltf.Node

	// Mesh is the resolved mesh, or nil when the node carries no mesh.
	Mesh *Mesh

	// Children are the resolved child nodes. Empty when child resolution is disabled.
	Children []*Node
}

// Mesh is a resolved glTF mesh.
type Mesh struct {
	Index      int
	Name       string
	Source     *gltf.Mesh
	Primitives []*Primitive
}

// Primitive is a resolved mesh primitive. Attribute semantics, indices and morph targets point at
// Accessors; the material slot points at a Material.
type Primitive struct {
	// Source is the unresolved primitive.
	Source *gltf.Primitive

	// Attributes maps an attribute semantic (POSITION, NORMAL, TEXCOORD_0, ...) to its accessor.
	Attributes map[string]*Accessor

	// Indices is the index buffer accessor, or nil for non-indexed geometry.
	Indices *Accessor

	// Material is the resolved material, or nil when the primitive uses the default material.
	Material *Material

	// Mode is the topology, copied verbatim. It is a value, never an index.
	Mode gltf.PrimitiveMode

	// Targets are the morph targets, each mapping an attribute semantic to its displacement accessor.
	Targets []map[string]*Accessor
}

// Accessor is a resolved glTF accessor.
type Accessor struct {
	Index  int
	Name   string
	Source *gltf.Accessor

	// BufferView is the resolved buffer view, or nil when the accessor has none (all-zero data).
	BufferView *BufferView

	// SparseIndices and SparseValues are the resolved sparse storage views, nil for dense accessors.
	SparseIndices *BufferView
	SparseValues  *BufferView
}

// BufferView is a resolved glTF buffer view: a byte range inside one of the document's buffers.
type BufferView struct {
	Index  int
	Name   string
	Source *gltf.BufferView

	// Buffer is the index of the buffer this view slices.
	Buffer int

	// ByteOffset and ByteLength delimit the range [ByteOffset, ByteOffset+ByteLength) in the buffer.
	ByteOffset int
	ByteLength int

	// ByteStride is the vertex stride, 0 when tightly packed.
	ByteStride int

	// Target is the buffer binding hint from the document.
	Target gltf.Target

	// GLBuffer is the GPU buffer holding this view's bytes, set by the renderer's SliceBuffer.
	// It is overwritten on every slice of the same view.
	GLBuffer common.Buffer
}

// Material is a resolved glTF material.
type Material struct {
	Index  int
	Name   string
	Source *gltf.Material
}

// SortedSemantics returns the keys of m in lexical order.
func SortedSemantics(m map[string]*Accessor) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package resolver

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
)

// Common errors returned by the resolver.
var (
	ErrNilDocument    = errors.New("resolver: nil document")
	ErrNilScene       = errors.New("resolver: nil scene")
	ErrNoDefaultScene = errors.New("resolver: document has no scene to resolve")
	ErrOutOfRange     = errors.New("resolver: index out of range")
	ErrCycle          = errors.New("resolver: node hierarchy contains a cycle")
)

// resolver is the implementation of the Resolver interface.
type resolver struct {
	doc *gltf.Document

	children bool
	targets  bool

	// Per-index caches. A non-nil entry is the one shared instance for that index.
	scenes      map[*gltf.Scene]*Scene
	nodes       []*Node
	meshes      []*Mesh
	accessors   []*Accessor
	bufferViews []*BufferView
	materials   []*Material

	// visiting holds the node indices on the current resolution path.
	visiting map[int]bool
}

// Resolver turns glTF integer-index references into direct object links.
// It reads from one document and never mutates it; resolved objects are new values that point back
// at their source objects. Every index resolves to a single shared instance for the lifetime of the
// Resolver, so a BufferView reached through two primitives is the same *BufferView.
// A Resolver is not safe for concurrent use.
type Resolver interface {
	// Document returns the document references are resolved against.
	//
	// Returns:
	//   - *gltf.Document: the source document
	Document() *gltf.Document

	// ResolveScene resolves every node listed in scene, recursively through meshes, primitives,
	// accessors, buffer views and materials. Resolving the same scene again returns the cached result.
	//
	// Parameters:
	//   - scene: the unresolved scene; it does not need to belong to Document().Scenes
	//
	// Returns:
	//   - *Scene: the resolved scene
	//   - error: ErrOutOfRange (wrapped) for any invalid index, ErrCycle for cyclic node hierarchies
	ResolveScene(scene *gltf.Scene) (*Scene, error)

	// ResolveSceneIndex resolves Document().Scenes[index].
	//
	// Parameters:
	//   - index: the scene index
	//
	// Returns:
	//   - *Scene: the resolved scene
	//   - error: error if the index or any nested reference is invalid
	ResolveSceneIndex(index int) (*Scene, error)

	// ResolveDefault resolves the document's default scene, falling back to the first scene when
	// the document does not name one.
	//
	// Returns:
	//   - *Scene: the resolved scene
	//   - error: ErrNoDefaultScene if the document has no scenes
	ResolveDefault() (*Scene, error)

	// Node resolves Document().Nodes[index].
	Node(index int) (*Node, error)

	// Mesh resolves Document().Meshes[index].
	Mesh(index int) (*Mesh, error)

	// Accessor resolves Document().Accessors[index] together with its buffer view.
	Accessor(index int) (*Accessor, error)

	// BufferView resolves Document().BufferViews[index].
	BufferView(index int) (*BufferView, error)

	// Material resolves Document().Materials[index].
	Material(index int) (*Material, error)
}

var _ Resolver = &resolver{}

// NewResolver creates a Resolver for doc with the given options applied.
//
// Parameters:
//   - doc: the document to resolve references against
//   - options: a variadic list of ResolverBuilderOption functions
//
// Returns:
//   - Resolver: a new resolver with empty caches
func NewResolver(doc *gltf.Document, options ...ResolverBuilderOption) Resolver {
	r := &resolver{
		doc:      doc,
		children: true,
		targets:  true,
		scenes:   make(map[*gltf.Scene]*Scene),
		visiting: make(map[int]bool),
	}
	if doc != nil {
		r.nodes = make([]*Node, len(doc.Nodes))
		r.meshes = make([]*Mesh, len(doc.Meshes))
		r.accessors = make([]*Accessor, len(doc.Accessors))
		r.bufferViews = make([]*BufferView, len(doc.BufferViews))
		r.materials = make([]*Material, len(doc.Materials))
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Resolve resolves scene against doc with a fresh Resolver.
//
// Parameters:
//   - doc: the full document
//   - scene: the scene whose node list is resolved
//   - options: resolver options
//
// Returns:
//   - *Scene: the resolved scene
//   - error: error if any reference is invalid
func Resolve(doc *gltf.Document, scene *gltf.Scene, options ...ResolverBuilderOption) (*Scene, error) {
	return NewResolver(doc, options...).ResolveScene(scene)
}

func (r *resolver) Document() *gltf.Document {
	return r.doc
}

func (r *resolver) ResolveScene(scene *gltf.Scene) (*Scene, error) {
	if r.doc == nil {
		return nil, ErrNilDocument
	}
	if scene == nil {
		return nil, ErrNilScene
	}
	if s, ok := r.scenes[scene]; ok {
		return s, nil
	}

	s := &Scene{
		Name:   scene.Name,
		Source: scene,
		Nodes:  make([]*Node, 0, len(scene.Nodes)),
	}
	for _, idx := range scene.Nodes {
		n, err := r.Node(idx)
		if err != nil {
			return nil, fmt.Errorf("scene %q: %w", scene.Name, err)
		}
		s.Nodes = append(s.Nodes, n)
	}

	r.scenes[scene] = s
	return s, nil
}

func (r *resolver) ResolveSceneIndex(index int) (*Scene, error) {
	if r.doc == nil {
		return nil, ErrNilDocument
	}
	if err := checkIndex("scene", index, len(r.doc.Scenes)); err != nil {
		return nil, err
	}
	return r.ResolveScene(r.doc.Scenes[index])
}

func (r *resolver) ResolveDefault() (*Scene, error) {
	if r.doc == nil {
		return nil, ErrNilDocument
	}
	if len(r.doc.Scenes) == 0 {
		return nil, ErrNoDefaultScene
	}
	index := 0
	if r.doc.Scene != nil {
		index = *r.doc.Scene
	}
	return r.ResolveSceneIndex(index)
}

func (r *resolver) Node(index int) (*Node, error) {
	if err := checkIndex("node", index, len(r.nodes)); err != nil {
		return nil, err
	}
	if n := r.nodes[index]; n != nil {
		return n, nil
	}
	if r.visiting[index] {
		return nil, fmt.Errorf("node %d: %w", index, ErrCycle)
	}
	r.visiting[index] = true
	defer delete(r.visiting, index)

	src := r.doc.Nodes[index]
	n := &Node{
		Index:  index,
		Name:   src.Name,
		Source: src,
	}

	if src.Mesh != nil {
		m, err := r.Mesh(*src.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", index, err)
		}
		n.Mesh = m
	}

	if r.children {
		for _, c := range src.Children {
			child, err := r.Node(c)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", index, err)
			}
			n.Children = append(n.Children, child)
		}
	}

	r.nodes[index] = n
	return n, nil
}

func (r *resolver) Mesh(index int) (*Mesh, error) {
	if err := checkIndex("mesh", index, len(r.meshes)); err != nil {
		return nil, err
	}
	if m := r.meshes[index]; m != nil {
		return m, nil
	}

	src := r.doc.Meshes[index]
	m := &Mesh{
		Index:      index,
		Name:       src.Name,
		Source:     src,
		Primitives: make([]*Primitive, 0, len(src.Primitives)),
	}
	for i, p := range src.Primitives {
		prim, err := r.primitive(p)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", index, i, err)
		}
		m.Primitives = append(m.Primitives, prim)
	}

	r.meshes[index] = m
	return m, nil
}

// primitive resolves the index-valued slots of p. Attributes, indices and morph targets are accessor
// indices; material is a material index; mode, extensions and extras are values and copied as is.
func (r *resolver) primitive(p *gltf.Primitive) (*Primitive, error) {
	prim := &Primitive{
		Source:     p,
		Mode:       p.Mode,
		Attributes: make(map[string]*Accessor, len(p.Attributes)),
	}

	for semantic, idx := range p.Attributes {
		a, err := r.Accessor(idx)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", semantic, err)
		}
		prim.Attributes[semantic] = a
	}

	if p.Indices != nil {
		a, err := r.Accessor(*p.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		prim.Indices = a
	}

	if p.Material != nil {
		mat, err := r.Material(*p.Material)
		if err != nil {
			return nil, err
		}
		prim.Material = mat
	}

	if r.targets {
		for i, target := range p.Targets {
			resolved := make(map[string]*Accessor, len(target))
			for semantic, idx := range target {
				a, err := r.Accessor(idx)
				if err != nil {
					return nil, fmt.Errorf("target %d attribute %s: %w", i, semantic, err)
				}
				resolved[semantic] = a
			}
			prim.Targets = append(prim.Targets, resolved)
		}
	}

	return prim, nil
}

func (r *resolver) Accessor(index int) (*Accessor, error) {
	if err := checkIndex("accessor", index, len(r.accessors)); err != nil {
		return nil, err
	}
	if a := r.accessors[index]; a != nil {
		return a, nil
	}

	src := r.doc.Accessors[index]
	a := &Accessor{
		Index:  index,
		Name:   src.Name,
		Source: src,
	}

	if src.BufferView != nil {
		bv, err := r.BufferView(*src.BufferView)
		if err != nil {
			return nil, fmt.Errorf("accessor %d: %w", index, err)
		}
		a.BufferView = bv
	}

	if sp := src.Sparse; sp != nil {
		bv, err := r.BufferView(sp.Indices.BufferView)
		if err != nil {
			return nil, fmt.Errorf("accessor %d sparse indices: %w", index, err)
		}
		a.SparseIndices = bv
		bv, err = r.BufferView(sp.Values.BufferView)
		if err != nil {
			return nil, fmt.Errorf("accessor %d sparse values: %w", index, err)
		}
		a.SparseValues = bv
	}

	r.accessors[index] = a
	return a, nil
}

func (r *resolver) BufferView(index int) (*BufferView, error) {
	if err := checkIndex("bufferView", index, len(r.bufferViews)); err != nil {
		return nil, err
	}
	if bv := r.bufferViews[index]; bv != nil {
		return bv, nil
	}

	src := r.doc.BufferViews[index]
	bv := &BufferView{
		Index:      index,
		Name:       src.Name,
		Source:     src,
		Buffer:     src.Buffer,
		ByteOffset: src.ByteOffset,
		ByteLength: src.ByteLength,
		ByteStride: src.ByteStride,
		Target:     src.Target,
	}

	r.bufferViews[index] = bv
	return bv, nil
}

func (r *resolver) Material(index int) (*Material, error) {
	if err := checkIndex("material", index, len(r.materials)); err != nil {
		return nil, err
	}
	if m := r.materials[index]; m != nil {
		return m, nil
	}

	src := r.doc.Materials[index]
	m := &Material{
		Index:  index,
		Name:   src.Name,
		Source: src,
	}

	r.materials[index] = m
	return m, nil
}

func checkIndex(kind string, index, length int) error {
	if index < 0 || index >= length {
		return fmt.Errorf("%s %d (have %d): %w", kind, index, length, ErrOutOfRange)
	}
	return nil
}

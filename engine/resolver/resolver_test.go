package resolver

import (
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoPrimitiveDoc returns a document with one node, one mesh and two primitives that share the
// POSITION accessor and the material.
func twoPrimitiveDoc() *gltf.Document {
	return &gltf.Document{
		Scenes: []*gltf.Scene{{Name: "main", Nodes: []int{0}}},
		Nodes:  []*gltf.Node{{Name: "root", Mesh: gltf.Index(0)}},
		Meshes: []*gltf.Mesh{{
			Name: "box",
			Primitives: []*gltf.Primitive{
				{
					Attributes: map[string]int{gltf.POSITION: 0, gltf.NORMAL: 1},
					Indices:    gltf.Index(2),
					Material:   gltf.Index(0),
				},
				{
					Attributes: map[string]int{gltf.POSITION: 0},
					Material:   gltf.Index(0),
				},
			},
		}},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(0), ByteOffset: 36, ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(1), ComponentType: gltf.ComponentUshort, Count: 3, Type: gltf.AccessorScalar},
		},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 72, Target: gltf.TargetArrayBuffer},
			{Buffer: 0, ByteOffset: 72, ByteLength: 6, Target: gltf.TargetElementArrayBuffer},
		},
		Materials: []*gltf.Material{{Name: "red"}},
		Buffers:   []*gltf.Buffer{{ByteLength: 78}},
	}
}

func TestResolveSingleNodeScenario(t *testing.T) {
	doc := &gltf.Document{
		Nodes:       []*gltf.Node{{Mesh: gltf.Index(0)}},
		Meshes:      []*gltf.Mesh{{Primitives: []*gltf.Primitive{{Attributes: map[string]int{gltf.POSITION: 0}, Material: gltf.Index(0)}}}},
		Accessors:   []*gltf.Accessor{{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 1, Type: gltf.AccessorVec3}},
		BufferViews: []*gltf.BufferView{{ByteOffset: 4, ByteLength: 12}},
		Materials:   []*gltf.Material{{Name: "m"}},
	}
	scene := &gltf.Scene{Nodes: []int{0}}

	s, err := Resolve(doc, scene)
	require.NoError(t, err)
	require.Len(t, s.Nodes, 1)

	prim := s.Nodes[0].Mesh.Primitives[0]
	pos := prim.Attributes[gltf.POSITION]
	require.NotNil(t, pos)
	assert.Same(t, doc.Accessors[0], pos.Source)
	assert.Equal(t, 0, pos.Index)
	require.NotNil(t, prim.Material)
	assert.Same(t, doc.Materials[0], prim.Material.Source)

	require.NotNil(t, pos.BufferView)
	assert.Equal(t, 4, pos.BufferView.ByteOffset)
	assert.Equal(t, 12, pos.BufferView.ByteLength)
}

func TestResolveNodesAndMeshesAreObjects(t *testing.T) {
	doc := twoPrimitiveDoc()
	s, err := NewResolver(doc).ResolveDefault()
	require.NoError(t, err)

	assert.Equal(t, "main", s.Name)
	for _, n := range s.Nodes {
		require.NotNil(t, n)
		require.NotNil(t, n.Mesh)
		assert.Same(t, doc.Meshes[0], n.Mesh.Source)
		for _, p := range n.Mesh.Primitives {
			for sem, a := range p.Attributes {
				require.NotNil(t, a.BufferView, "attribute %s", sem)
				assert.Greater(t, a.BufferView.ByteLength, 0)
			}
		}
	}
}

func TestResolveSharesIdentity(t *testing.T) {
	doc := twoPrimitiveDoc()
	s, err := Resolve(doc, doc.Scenes[0])
	require.NoError(t, err)

	prims := s.Nodes[0].Mesh.Primitives
	require.Len(t, prims, 2)

	assert.Same(t, prims[0].Attributes[gltf.POSITION], prims[1].Attributes[gltf.POSITION])
	assert.Same(t, prims[0].Material, prims[1].Material)
	// POSITION and NORMAL read from the same buffer view.
	assert.Same(t, prims[0].Attributes[gltf.POSITION].BufferView, prims[0].Attributes[gltf.NORMAL].BufferView)

	prims[0].Attributes[gltf.POSITION].BufferView.GLBuffer = 42
	assert.EqualValues(t, 42, prims[1].Attributes[gltf.POSITION].BufferView.GLBuffer)
}

func TestResolveIndicesAndMode(t *testing.T) {
	doc := twoPrimitiveDoc()
	doc.Meshes[0].Primitives[0].Mode = gltf.PrimitiveLines

	s, err := Resolve(doc, doc.Scenes[0])
	require.NoError(t, err)

	p := s.Nodes[0].Mesh.Primitives[0]
	require.NotNil(t, p.Indices)
	assert.Same(t, doc.Accessors[2], p.Indices.Source)
	assert.Equal(t, gltf.TargetElementArrayBuffer, p.Indices.BufferView.Target)
	assert.Equal(t, gltf.PrimitiveLines, p.Mode)
	assert.Nil(t, s.Nodes[0].Mesh.Primitives[1].Indices)
}

func TestResolveDoesNotMutateDocument(t *testing.T) {
	doc := twoPrimitiveDoc()
	before, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = Resolve(doc, doc.Scenes[0])
	require.NoError(t, err)

	after, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestResolveSceneIsIdempotent(t *testing.T) {
	doc := twoPrimitiveDoc()
	r := NewResolver(doc)

	first, err := r.ResolveScene(doc.Scenes[0])
	require.NoError(t, err)
	second, err := r.ResolveScene(doc.Scenes[0])
	require.NoError(t, err)
	assert.Same(t, first, second)

	// A fresh resolver builds a fresh graph.
	other, err := Resolve(doc, doc.Scenes[0])
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestResolveOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc *gltf.Document)
	}{
		{"node", func(doc *gltf.Document) { doc.Scenes[0].Nodes = []int{5} }},
		{"negative node", func(doc *gltf.Document) { doc.Scenes[0].Nodes = []int{-1} }},
		{"mesh", func(doc *gltf.Document) { doc.Nodes[0].Mesh = gltf.Index(3) }},
		{"attribute", func(doc *gltf.Document) { doc.Meshes[0].Primitives[0].Attributes[gltf.TEXCOORD_0] = 9 }},
		{"indices", func(doc *gltf.Document) { doc.Meshes[0].Primitives[0].Indices = gltf.Index(9) }},
		{"material", func(doc *gltf.Document) { doc.Meshes[0].Primitives[1].Material = gltf.Index(2) }},
		{"bufferView", func(doc *gltf.Document) { doc.Accessors[1].BufferView = gltf.Index(7) }},
		{"child", func(doc *gltf.Document) { doc.Nodes[0].Children = []int{4} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := twoPrimitiveDoc()
			tt.mutate(doc)
			s, err := Resolve(doc, doc.Scenes[0])
			assert.Nil(t, s)
			assert.ErrorIs(t, err, ErrOutOfRange)
		})
	}
}

func TestResolveNilInputs(t *testing.T) {
	_, err := Resolve(nil, &gltf.Scene{})
	assert.ErrorIs(t, err, ErrNilDocument)

	_, err = Resolve(twoPrimitiveDoc(), nil)
	assert.ErrorIs(t, err, ErrNilScene)

	_, err = NewResolver(&gltf.Document{}).ResolveDefault()
	assert.ErrorIs(t, err, ErrNoDefaultScene)
}

func TestResolveNodeWithoutMesh(t *testing.T) {
	doc := &gltf.Document{Nodes: []*gltf.Node{{Name: "empty"}}}
	s, err := Resolve(doc, &gltf.Scene{Nodes: []int{0}})
	require.NoError(t, err)
	assert.Nil(t, s.Nodes[0].Mesh)
	assert.Equal(t, "empty", s.Nodes[0].Name)
}

func TestResolveChildrenAndCycles(t *testing.T) {
	doc := twoPrimitiveDoc()
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "child", Mesh: gltf.Index(0)})
	doc.Nodes[0].Children = []int{1}

	s, err := Resolve(doc, doc.Scenes[0])
	require.NoError(t, err)
	require.Len(t, s.Nodes[0].Children, 1)
	assert.Same(t, s.Nodes[0].Mesh, s.Nodes[0].Children[0].Mesh)

	s, err = Resolve(doc, doc.Scenes[0], WithChildren(false))
	require.NoError(t, err)
	assert.Empty(t, s.Nodes[0].Children)

	doc.Nodes[1].Children = []int{0}
	_, err = Resolve(doc, doc.Scenes[0])
	assert.ErrorIs(t, err, ErrCycle)
}

func TestResolveMorphTargetsAndSparse(t *testing.T) {
	doc := twoPrimitiveDoc()
	doc.Meshes[0].Primitives[1].Targets = []map[string]int{{gltf.POSITION: 1}}
	doc.Accessors[1].Sparse = &gltf.Sparse{
		Count:   1,
		Indices: gltf.SparseIndices{BufferView: 1, ComponentType: gltf.ComponentUshort},
		Values:  gltf.SparseValues{BufferView: 0},
	}

	s, err := Resolve(doc, doc.Scenes[0])
	require.NoError(t, err)
	p := s.Nodes[0].Mesh.Primitives[1]
	require.Len(t, p.Targets, 1)
	target := p.Targets[0][gltf.POSITION]
	assert.Same(t, s.Nodes[0].Mesh.Primitives[0].Attributes[gltf.NORMAL], target)
	assert.Equal(t, 1, target.SparseIndices.Index)
	assert.Equal(t, 0, target.SparseValues.Index)

	s, err = Resolve(doc, doc.Scenes[0], WithMorphTargets(false))
	require.NoError(t, err)
	assert.Empty(t, s.Nodes[0].Mesh.Primitives[1].Targets)
}

func TestSceneAccessorsAreDistinct(t *testing.T) {
	doc := twoPrimitiveDoc()
	s, err := Resolve(doc, doc.Scenes[0])
	require.NoError(t, err)

	accessors := s.Accessors()
	require.Len(t, accessors, 3)
	assert.Equal(t, []int{1, 0, 2}, []int{accessors[0].Index, accessors[1].Index, accessors[2].Index})
}

func TestLocalTransformAndWalk(t *testing.T) {
	doc := &gltf.Document{
		Nodes: []*gltf.Node{
			{Name: "parent", Translation: [3]float64{1, 2, 3}, Children: []int{1}},
			{Name: "child", Scale: [3]float64{2, 2, 2}},
		},
	}
	s, err := Resolve(doc, &gltf.Scene{Nodes: []int{0}})
	require.NoError(t, err)

	var names []string
	var worlds []mgl32.Mat4
	err = s.Walk(func(n *Node, world mgl32.Mat4) error {
		names = append(names, n.Name)
		worlds = append(worlds, world)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"parent", "child"}, names)

	p := worlds[1].Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.True(t, p.ApproxEqual(mgl32.Vec4{3, 4, 5, 1}), "got %v", p)

	count := 0
	err = s.Walk(func(n *Node, _ mgl32.Mat4) error {
		count++
		return SkipChildren
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLocalTransformMatrix(t *testing.T) {
	m := identity
	m[12], m[13], m[14] = 5, 6, 7
	n := &Node{Source: &gltf.Node{Matrix: m}}
	assert.Equal(t, mgl32.Translate3D(5, 6, 7), n.LocalTransform())

	n = &Node{Source: &gltf.Node{}}
	assert.Equal(t, mgl32.Ident4(), n.LocalTransform())
}

func TestSceneBounds(t *testing.T) {
	doc := twoPrimitiveDoc()
	doc.Nodes[0].Translation = [3]float64{10, 0, 0}
	doc.Accessors[0].Min = []float64{-1, -2, -3}
	doc.Accessors[0].Max = []float64{1, 2, 3}
	s, err := Resolve(doc, doc.Scenes[0])
	require.NoError(t, err)

	lo, hi, ok := s.Bounds()
	require.True(t, ok)
	assert.True(t, lo.ApproxEqual(mgl32.Vec3{9, -2, -3}), "got %v", lo)
	assert.True(t, hi.ApproxEqual(mgl32.Vec3{11, 2, 3}), "got %v", hi)

	doc.Accessors[0].Min = nil
	s, err = Resolve(doc, doc.Scenes[0])
	require.NoError(t, err)
	_, _, ok = s.Bounds()
	assert.False(t, ok)
}

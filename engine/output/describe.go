package output

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/resolver"
	"github.com/qmuntal/gltf"
)

// DescribeScene outlines a resolved scene: the scene at indent 0, then each node with its mesh,
// primitives and accessors one level deeper than its owner. Children follow their parent.
//
// Parameters:
//   - o: the outliner to write to
//   - scene: the resolved scene
//
// Returns:
//   - error: the joined sink errors
func DescribeScene(o Outliner, scene *resolver.Scene) error {
	d := &describer{o: o}
	d.line(0, "scene %q (%d nodes)", scene.Name, len(scene.Nodes))
	for _, n := range scene.Nodes {
		d.node(1, n)
	}
	return errors.Join(d.errs...)
}

type describer struct {
	o    Outliner
	errs []error
}

func (d *describer) line(indent int, format string, args ...any) {
	if err := d.o.Output(indent, fmt.Sprintf(format, args...)); err != nil {
		d.errs = append(d.errs, err)
	}
}

func (d *describer) node(indent int, n *resolver.Node) {
	d.line(indent, "node %d %q", n.Index, n.Name)
	if m := n.Mesh; m != nil {
		d.line(indent+1, "mesh %d %q (%d primitives)", m.Index, m.Name, len(m.Primitives))
		for i, p := range m.Primitives {
			d.primitive(indent+2, i, p)
		}
	}
	for _, c := range n.Children {
		d.node(indent+1, c)
	}
}

func (d *describer) primitive(indent, i int, p *resolver.Primitive) {
	d.line(indent, "primitive %d %s", i, modeName(p.Mode))
	for _, semantic := range resolver.SortedSemantics(p.Attributes) {
		d.accessor(indent+1, semantic, p.Attributes[semantic])
	}
	if p.Indices != nil {
		d.accessor(indent+1, "indices", p.Indices)
	}
	if p.Material != nil {
		d.line(indent+1, "material %d %q", p.Material.Index, p.Material.Name)
	}
	for t, target := range p.Targets {
		for _, semantic := range resolver.SortedSemantics(target) {
			d.accessor(indent+1, fmt.Sprintf("target %d %s", t, semantic), target[semantic])
		}
	}
}

func (d *describer) accessor(indent int, label string, a *resolver.Accessor) {
	src := a.Source
	desc := fmt.Sprintf("%s: accessor %d %s %s x%d", label, a.Index, typeName(src.Type), componentName(src.ComponentType), src.Count)
	if bv := a.BufferView; bv != nil {
		desc += fmt.Sprintf(" @ bufferView %d offset %d", bv.Index, bv.ByteOffset+src.ByteOffset)
		if bv.ByteStride > 0 {
			desc += fmt.Sprintf(" stride %d", bv.ByteStride)
		}
	}
	if src.Sparse != nil {
		desc += fmt.Sprintf(" sparse(%d)", src.Sparse.Count)
	}
	d.line(indent, "%s", desc)
}

func modeName(m gltf.PrimitiveMode) string {
	switch m {
	case gltf.PrimitivePoints:
		return "POINTS"
	case gltf.PrimitiveLines:
		return "LINES"
	case gltf.PrimitiveLineLoop:
		return "LINE_LOOP"
	case gltf.PrimitiveLineStrip:
		return "LINE_STRIP"
	case gltf.PrimitiveTriangleStrip:
		return "TRIANGLE_STRIP"
	case gltf.PrimitiveTriangleFan:
		return "TRIANGLE_FAN"
	default:
		return "TRIANGLES"
	}
}

func typeName(t gltf.AccessorType) string {
	switch t {
	case gltf.AccessorScalar:
		return "SCALAR"
	case gltf.AccessorVec2:
		return "VEC2"
	case gltf.AccessorVec3:
		return "VEC3"
	case gltf.AccessorVec4:
		return "VEC4"
	case gltf.AccessorMat2:
		return "MAT2"
	case gltf.AccessorMat3:
		return "MAT3"
	case gltf.AccessorMat4:
		return "MAT4"
	default:
		return "?"
	}
}

func componentName(c gltf.ComponentType) string {
	switch c {
	case gltf.ComponentByte:
		return "byte"
	case gltf.ComponentUbyte:
		return "ubyte"
	case gltf.ComponentShort:
		return "short"
	case gltf.ComponentUshort:
		return "ushort"
	case gltf.ComponentUint:
		return "uint"
	case gltf.ComponentFloat:
		return "float"
	default:
		return "?"
	}
}

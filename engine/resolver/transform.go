package resolver

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// SkipChildren can be returned from a WalkFunc to skip the children of the current node.
var SkipChildren = errors.New("skip children")

// WalkFunc is called by Scene.Walk for every node, with the node's world transform.
type WalkFunc func(n *Node, world mgl32.Mat4) error

var identity = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// LocalTransform returns the node's transform relative to its parent.
// A non-identity matrix wins; otherwise translation * rotation * scale, with glTF's defaults for
// omitted components.
func (n *Node) LocalTransform() mgl32.Mat4 {
	src := n.Source
	if src == nil {
		return mgl32.Ident4()
	}

	if src.Matrix != identity && src.Matrix != ([16]float64{}) {
		var m mgl32.Mat4
		for i, v := range src.Matrix {
			m[i] = float32(v)
		}
		return m
	}

	t := src.Translation
	r := src.Rotation
	s := src.Scale
	if r == ([4]float64{}) {
		r = [4]float64{0, 0, 0, 1}
	}
	if s == ([3]float64{}) {
		s = [3]float64{1, 1, 1}
	}

	q := mgl32.Quat{
		W: float32(r[3]),
		V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
	}.Normalize()

	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// Walk visits the scene's nodes depth-first, roots in order, passing each node's world transform.
// Returning SkipChildren skips the node's subtree; any other error stops the walk and is returned.
func (s *Scene) Walk(fn WalkFunc) error {
	for _, n := range s.Nodes {
		if err := walk(n, mgl32.Ident4(), fn); err != nil {
			return err
		}
	}
	return nil
}

func walk(n *Node, parent mgl32.Mat4, fn WalkFunc) error {
	world := parent.Mul4(n.LocalTransform())
	if err := fn(n, world); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	for _, c := range n.Children {
		if err := walk(c, world, fn); err != nil {
			return err
		}
	}
	return nil
}

// Accessors returns every distinct accessor reachable from the scene, in first-seen order.
// Shared accessors appear once.
func (s *Scene) Accessors() []*Accessor {
	seen := make(map[*Accessor]bool)
	var out []*Accessor
	add := func(a *Accessor) {
		if a == nil || seen[a] {
			return
		}
		seen[a] = true
		out = append(out, a)
	}

	_ = s.Walk(func(n *Node, _ mgl32.Mat4) error {
		if n.Mesh == nil {
			return nil
		}
		for _, p := range n.Mesh.Primitives {
			for _, sem := range SortedSemantics(p.Attributes) {
				add(p.Attributes[sem])
			}
			add(p.Indices)
			for _, t := range p.Targets {
				for _, sem := range SortedSemantics(t) {
					add(t[sem])
				}
			}
		}
		return nil
	})
	return out
}

// Bounds returns the world-space axis-aligned box enclosing every POSITION accessor of the scene,
// computed from the accessors' min and max. ok is false when no POSITION accessor declares both.
func (s *Scene) Bounds() (lo, hi mgl32.Vec3, ok bool) {
	_ = s.Walk(func(n *Node, world mgl32.Mat4) error {
		if n.Mesh == nil {
			return nil
		}
		for _, p := range n.Mesh.Primitives {
			pos := p.Attributes[gltf.POSITION]
			if pos == nil || pos.Source == nil || len(pos.Source.Min) < 3 || len(pos.Source.Max) < 3 {
				continue
			}
			mn, mx := pos.Source.Min, pos.Source.Max
			for i := 0; i < 8; i++ {
				corner := mgl32.Vec4{float32(mn[0]), float32(mn[1]), float32(mn[2]), 1}
				if i&1 != 0 {
					corner[0] = float32(mx[0])
				}
				if i&2 != 0 {
					corner[1] = float32(mx[1])
				}
				if i&4 != 0 {
					corner[2] = float32(mx[2])
				}
				c := world.Mul4x1(corner).Vec3()
				if !ok {
					lo, hi, ok = c, c, true
					continue
				}
				for k := 0; k < 3; k++ {
					lo[k] = min(lo[k], c[k])
					hi[k] = max(hi[k], c[k])
				}
			}
		}
		return nil
	})
	return lo, hi, ok
}

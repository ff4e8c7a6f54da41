// Package scene models the slice of a host scene graph the avatar core reads
// and mutates: a node hierarchy with bones and morph-target meshes, and the
// material variants attached to those meshes.
package scene

import (
	"sort"

	"avatar-morph/internal/mathutil"
)

// Node is one element of the rig hierarchy. Bones and meshes are both nodes.
type Node struct {
	Name     string
	Parent   *Node
	Children []*Node

	// Local transform
	Position mathutil.Vec3
	Rotation mathutil.Quat
	Scale    mathutil.Vec3

	// World transform, refreshed by UpdateWorldMatrix
	World mathutil.Mat4

	IsBone  bool
	Visible bool
	Mesh    *Mesh // nil for non-renderable nodes

	tags map[string]struct{}
}

// NewNode returns a visible node with an identity local transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mathutil.QuatIdentity(),
		Scale:    mathutil.One,
		World:    mathutil.Mat4Identity(),
		Visible:  true,
	}
}

// NewBone returns a bone node positioned relative to its future parent.
func NewBone(name string, pos mathutil.Vec3) *Node {
	n := NewNode(name)
	n.IsBone = true
	n.Position = pos
	return n
}

// NewMeshNode wraps a mesh in a renderable node.
func NewMeshNode(name string, mesh *Mesh) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	return n
}

// Add attaches children and returns n for chaining.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		c.Parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// Traverse visits n and all descendants depth-first, parents before children.
func (n *Node) Traverse(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// Find returns the first node in the subtree with the given name.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Traverse(func(c *Node) {
		if found == nil && c.Name == name {
			found = c
		}
	})
	return found
}

// UpdateWorldMatrix recomputes the world transform of n and every descendant
// from the parent's current world transform.
func (n *Node) UpdateWorldMatrix() {
	local := mathutil.Compose(n.Position, n.Rotation, n.Scale)
	if n.Parent != nil {
		n.World = mathutil.Mat4Mul(n.Parent.World, local)
	} else {
		n.World = local
	}
	for _, c := range n.Children {
		c.UpdateWorldMatrix()
	}
}

// Tag records a role tag on the node (bone group, import-time classification).
func (n *Node) Tag(tag string) {
	if n.tags == nil {
		n.tags = make(map[string]struct{})
	}
	n.tags[tag] = struct{}{}
}

// HasTag reports whether the node carries tag.
func (n *Node) HasTag(tag string) bool {
	_, ok := n.tags[tag]
	return ok
}

// Tags returns the node's tags sorted.
func (n *Node) Tags() []string {
	out := make([]string, 0, len(n.tags))
	for t := range n.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Meshes returns every node in the subtree carrying a mesh, in traversal order.
func (n *Node) Meshes() []*Node {
	var out []*Node
	n.Traverse(func(c *Node) {
		if c.Mesh != nil {
			out = append(out, c)
		}
	})
	return out
}

// Bones returns every bone node in the subtree, in traversal order.
func (n *Node) Bones() []*Node {
	var out []*Node
	n.Traverse(func(c *Node) {
		if c.IsBone {
			out = append(out, c)
		}
	})
	return out
}

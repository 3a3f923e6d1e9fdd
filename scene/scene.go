// Package scene is the hierarchical scene graph: groups carry transforms,
// leaves carry primitives, and either can carry lights.
//
// A graph is immutable once built.  Accumulated transforms are never stored on
// nodes; every query rebuilds them on the xfstack.Stack it was handed, so any
// number of goroutines may query one graph at once.
package scene

import (
	"whitted/aabox"
	"whitted/affinetransform"
	"whitted/camera"
	"whitted/contact"
	"whitted/geometry"
	"whitted/light"
	"whitted/material"
	"whitted/ray"
	"whitted/texture"
	"whitted/xfstack"
)

// Node is the capability set shared by every scene graph node.
type Node interface {
	Name() string
	Children() []Node

	// RayCast returns every contact between r and the primitives under this
	// node.  stack.Top() is the transform from this node's parent frame to
	// the frame r is expressed in.
	RayCast(stack xfstack.Stack, r ray.Ray) []contact.Contact

	// Lights returns the lights under this node, each paired with the
	// transform from its own frame to the frame of stack's base.
	Lights(stack xfstack.Stack) []light.Instance

	// Bounds returns the box containing this node's primitives in the frame
	// of stack.Top().
	Bounds(stack xfstack.Stack) aabox.AABox
}

// Group applies Transform to everything beneath it.
type Group struct {
	NodeName    string
	Transform   affinetransform.AffineTransform
	Members     []Node
	GroupLights []light.Light
}

func (g *Group) Name() string {
	return g.NodeName
}

func (g *Group) Children() []Node {
	return g.Members
}

func (g *Group) RayCast(stack xfstack.Stack, r ray.Ray) []contact.Contact {
	inner := stack.Push(g.Transform)

	var result []contact.Contact
	for _, child := range g.Members {
		result = append(result, child.RayCast(inner, r)...)
	}
	return result
}

func (g *Group) Lights(stack xfstack.Stack) []light.Instance {
	inner := stack.Push(g.Transform)

	result := instances(g.GroupLights, inner)
	for _, child := range g.Members {
		result = append(result, child.Lights(inner)...)
	}
	return result
}

func (g *Group) Bounds(stack xfstack.Stack) aabox.AABox {
	inner := stack.Push(g.Transform)

	result := aabox.AccumZeroAABox()
	for _, child := range g.Members {
		result = aabox.MinContainingAABox(result, child.Bounds(inner))
	}
	return result
}

// Leaf is a single primitive.
type Leaf struct {
	NodeName string
	Kind     geometry.Kind
	Material material.Material
	// Texture is nil for untextured leaves.
	Texture    texture.Sampler
	LeafLights []light.Light
}

func (l *Leaf) Name() string {
	return l.NodeName
}

func (l *Leaf) Children() []Node {
	return nil
}

func (l *Leaf) RayCast(stack xfstack.Stack, r ray.Ray) []contact.Contact {
	return geometry.Intersect(l.Kind, r, stack.Top(), l.Material, l.Texture)
}

func (l *Leaf) Lights(stack xfstack.Stack) []light.Instance {
	return instances(l.LeafLights, stack)
}

func (l *Leaf) Bounds(stack xfstack.Stack) aabox.AABox {
	g, ok := geometry.Lookup(l.Kind)
	if !ok {
		return aabox.AccumZeroAABox()
	}
	return g.GetAABox().Transform(stack.Top())
}

func instances(ls []light.Light, stack xfstack.Stack) []light.Instance {
	result := make([]light.Instance, 0, len(ls))
	for _, l := range ls {
		result = append(result, light.Instance{Light: l, LightToView: stack.Top()})
	}
	return result
}

// Scene is a complete renderable description.
type Scene struct {
	Root     Node
	Textures texture.Table
	// View is the camera stored with the scene, if any.
	View *camera.View
}

// RayCast intersects r with the whole graph.  The result is unsorted and
// includes contacts behind the ray origin.
func (s *Scene) RayCast(stack xfstack.Stack, r ray.Ray) []contact.Contact {
	if s.Root == nil {
		return nil
	}
	return s.Root.RayCast(stack, r)
}

// Lights collects every light in depth-first document order.
func (s *Scene) Lights(stack xfstack.Stack) []light.Instance {
	if s.Root == nil {
		return nil
	}
	return s.Root.Lights(stack)
}

func (s *Scene) Bounds(stack xfstack.Stack) aabox.AABox {
	if s.Root == nil {
		return aabox.AccumZeroAABox()
	}
	return s.Root.Bounds(stack)
}

// Walk visits every node depth-first, parents before children.  path is the
// slash-joined list of names from the root.
func Walk(n Node, visit func(path string, depth int, n Node)) {
	walk(n, "", 0, visit)
}

func walk(n Node, prefix string, depth int, visit func(string, int, Node)) {
	if n == nil {
		return
	}
	path := prefix + "/" + n.Name()
	visit(path, depth, n)
	for _, child := range n.Children() {
		walk(child, path, depth+1, visit)
	}
}

// Package xfstack is a persistent stack of accumulated transforms.
//
// A Stack is a value.  Push returns a new Stack sharing its tail with the
// receiver, so callers can hand the same Stack to concurrent traversals and
// every traversal sees only its own pushes.
package xfstack

import "whitted/affinetransform"

type node struct {
	xf    affinetransform.AffineTransform
	next  *node
	depth int
}

// Stack is the accumulated object-to-view transform of a traversal.  The zero
// value is an empty stack whose Top is the identity.
type Stack struct {
	head *node
}

// New returns a stack holding base.
func New(base affinetransform.AffineTransform) Stack {
	return Stack{}.PushRaw(base)
}

// Push returns a stack whose top is Compose(s.Top(), local).
func (s Stack) Push(local affinetransform.AffineTransform) Stack {
	return s.PushRaw(affinetransform.Compose(s.Top(), local))
}

// PushRaw returns a stack whose top is xf, ignoring the current top.
func (s Stack) PushRaw(xf affinetransform.AffineTransform) Stack {
	depth := 1
	if s.head != nil {
		depth = s.head.depth + 1
	}
	return Stack{head: &node{xf: xf, next: s.head, depth: depth}}
}

// Pop returns the stack without its top.  Popping an empty stack returns an
// empty stack.
func (s Stack) Pop() Stack {
	if s.head == nil {
		return s
	}
	return Stack{head: s.head.next}
}

func (s Stack) Top() affinetransform.AffineTransform {
	if s.head == nil {
		return affinetransform.Identity()
	}
	return s.head.xf
}

func (s Stack) Len() int {
	if s.head == nil {
		return 0
	}
	return s.head.depth
}

// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

import "math/big"

// View pairs a node with its manager and an optional labeling of the
// variables, so that a function can be handed around and queried without
// carrying the manager separately. Views are cheap to copy.
type View struct {
	b      *BDD
	root   Node
	labels []int
}

// View builds a view on the function denoted by n. When labels are given
// there must be one per variable; Label then translates the internal variable
// index to the caller's naming.
func (b *BDD) View(n Node, labels ...int) (*View, error) {
	if err := b.checkptr(n); err != nil {
		return nil, err
	}
	if len(labels) != 0 && len(labels) != int(b.varnum) {
		b.seterror("bad labeling (%d labels for %d variables)", len(labels), b.varnum)
		return nil, b.error
	}
	return &View{b: b, root: n, labels: labels}, nil
}

// Clone returns a copy of the view. The underlying node is shared; this is a
// value copy of the handle.
func (v *View) Clone() *View {
	w := *v
	return &w
}

// Node returns the root handle of the view.
func (v *View) Node() Node {
	return v.root
}

// Label translates variable i to the caller's labeling; it is the identity
// when the view carries no labels.
func (v *View) Label(i int) int {
	if len(v.labels) == 0 {
		return i
	}
	return v.labels[i]
}

// Satcount returns the number of satisfying assignments of the viewed
// function.
func (v *View) Satcount() *big.Int {
	return v.b.Satcount(v.root)
}

// Nodecount returns the number of decision nodes reachable from the view.
func (v *View) Nodecount() int {
	return v.b.Nodecount(v.root)
}

// Satisfiable reports whether the viewed function is satisfiable.
func (v *View) Satisfiable() bool {
	return v.b.Satisfiable(v.root)
}

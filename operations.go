// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

import (
	"fmt"
	"log"
	"math/big"
)

// True returns the Node for the constant true.
func (b *BDD) True() Node {
	return bddone
}

// False returns the Node for the constant false.
func (b *BDD) False() Node {
	return bddzero
}

// From returns a (constant) Node from a boolean value.
func (b *BDD) From(v bool) Node {
	if v {
		return bddone
	}
	return bddzero
}

// Ithvar returns a BDD representing the i'th variable on success. The
// requested variable must be in the range [0..Varnum).
func (b *BDD) Ithvar(i int) Node {
	if (i < 0) || (int32(i) >= b.varnum) {
		return b.seterror("Unknown variable used (%d) in call to Ithvar", i)
	}
	// we do not need to reference count variables
	return &b.varset[i][0]
}

// NIthvar returns a node representing the negation of the i'th variable on
// success. See *Ithvar* for further info.
func (b *BDD) NIthvar(i int) Node {
	if (i < 0) || (int32(i) >= b.varnum) {
		return b.seterror("Unknown variable used (%d) in call to NIthvar", i)
	}
	// we do not need to reference count variables
	return &b.varset[i][1]
}

// Low returns the false branch of a BDD or nil if there is an error.
func (b *BDD) Low(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("Wrong operand in call to Low (%d)", *n)
	}
	return b.retnode(b.low(*n))
}

// High returns the true branch of a BDD.
func (b *BDD) High(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("Wrong operand in call to High (%d)", *n)
	}
	return b.retnode(b.high(*n))
}

// Equal tests equivalence between nodes. With a shared canonical DAG, two
// nodes denote the same Boolean function exactly when their ids are equal.
func (b *BDD) Equal(n1, n2 Node) bool {
	if n1 == n2 {
		return true
	}
	if n1 == nil || n2 == nil {
		return false
	}
	return *n1 == *n2
}

// ************************************************************

// Not returns the negation (!n) of expression n. We negate a BDD by
// exchanging all references to the zero-terminal with references to the
// one-terminal and vice versa.
func (b *BDD) Not(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("Wrong operand in call to Not (%d)", *n)
	}
	b.initref()
	b.pushref(*n)
	res := b.not(*n)
	b.popref(1)
	return b.retnode(res)
}

func (b *BDD) not(n int) int {
	// the terminals are each other's negation
	if n < 2 {
		return n ^ 1
	}
	if res := b.notcache.lookup(n); res >= 0 {
		return res
	}
	low := b.pushref(b.not(b.low(n)))
	high := b.pushref(b.not(b.high(n)))
	res := b.makenode(b.vr(n), low, high)
	b.popref(2)
	return b.notcache.store(n, res)
}

// Ite, short for if-then-else operator, computes the BDD for the expression
// [(f & g) | (!f & h)] more efficiently than doing the three operations
// separately. It is the combinator from which every binary operation of the
// package derives.
func (b *BDD) Ite(f, g, h Node) Node {
	if b.checkptr(f) != nil {
		return b.seterror("Wrong operand in call to Ite (f: %d)", *f)
	}
	if b.checkptr(g) != nil {
		return b.seterror("Wrong operand in call to Ite (g: %d)", *g)
	}
	if b.checkptr(h) != nil {
		return b.seterror("Wrong operand in call to Ite (h: %d)", *h)
	}
	b.initref()
	b.pushref(*f)
	b.pushref(*g)
	b.pushref(*h)
	res := b.ite(*f, *g, *h)
	b.popref(3)
	return b.retnode(res)
}

// branch returns the two cofactors of node n with respect to the variable at
// level lv. An operand rooted deeper than lv is untouched by the split and is
// its own cofactor on both sides.
func (b *BDD) branch(n int, lv int32) (int, int) {
	if b.levelOf(n) != lv {
		return n, n
	}
	return b.low(n), b.high(n)
}

func (b *BDD) ite(f, g, h int) int {
	// terminal cases, first match wins
	if f == 1 {
		return g
	}
	if f == 0 {
		return h
	}
	if g == h {
		return g
	}
	if g == 1 && h == 0 {
		return f
	}
	if g == 0 && h == 1 {
		return b.not(f)
	}
	// a negative operand means an earlier allocation failure went through an
	// operation unchecked; the engine recovers from nothing
	if f < 0 || g < 0 || h < 0 {
		b.seterror("corrupted operand in ite")
		if _DEBUG {
			log.Panicf("panic in ite(%d,%d,%d)\n", f, g, h)
		}
		return -1
	}
	if res := b.itecache.lookup(f, g, h); res >= 0 {
		return res
	}
	// Shannon expansion on the topmost level among the three operands
	top := min3(b.levelOf(f), b.levelOf(g), b.levelOf(h))
	f0, f1 := b.branch(f, top)
	g0, g1 := b.branch(g, top)
	h0, h1 := b.branch(h, top)
	t := b.pushref(b.ite(f1, g1, h1))
	e := b.pushref(b.ite(f0, g0, h0))
	res := b.makenode(b.level2var[top], e, t)
	b.popref(2)
	return b.itecache.store(f, g, h, res)
}

// And returns the logical 'and' of a sequence of nodes, the result of
// ite(a, b, False) folded over the sequence.
func (b *BDD) And(n ...Node) Node {
	if len(n) == 0 {
		return bddone
	}
	if len(n) == 1 {
		return n[0]
	}
	return b.Ite(n[0], b.And(n[1:]...), bddzero)
}

// Or returns the logical 'or' of a sequence of nodes.
func (b *BDD) Or(n ...Node) Node {
	if len(n) == 0 {
		return bddzero
	}
	if len(n) == 1 {
		return n[0]
	}
	return b.Ite(n[0], bddone, b.Or(n[1:]...))
}

// Xor returns the exclusive or of two nodes.
func (b *BDD) Xor(n1, n2 Node) Node {
	return b.Ite(n1, b.Not(n2), n2)
}

// Imp returns the logical 'implication' between two BDDs.
func (b *BDD) Imp(n1, n2 Node) Node {
	return b.Ite(n1, n2, bddone)
}

// Equiv returns the logical 'bi-implication' between two BDDs.
func (b *BDD) Equiv(n1, n2 Node) Node {
	return b.Ite(n1, n2, b.Not(n2))
}

// Diff returns the set difference n1 \ n2, the result of ite(n2, False, n1).
func (b *BDD) Diff(n1, n2 Node) Node {
	return b.Ite(n2, bddzero, n1)
}

// ************************************************************

// Makeset returns a node corresponding to the conjunction (the cube) of all
// the variable in varset, in their positive form. It is such that
// scanset(Makeset(a)) == a. It returns False and sets the error condition in b
// if one of the variables is outside the scope of the BDD (see documentation
// for function *Ithvar*).
func (b *BDD) Makeset(varset []int) Node {
	res := bddone
	for _, v := range varset {
		x := b.Ithvar(v)
		if b.error != nil {
			return bddzero
		}
		tmp := b.And(res, x)
		if b.error != nil {
			return bddzero
		}
		res = tmp
	}
	return res
}

// Scanset returns the set of variables found when following the high branch
// of node n. This is the dual of function Makeset. The result may be nil if
// there is an error and it is sorted following the current level order.
func (b *BDD) Scanset(n Node) []int {
	if b.checkptr(n) != nil {
		return nil
	}
	if *n < 2 {
		return nil
	}
	res := []int{}
	for i := *n; i > 1; i = b.high(i) {
		res = append(res, int(b.vr(i)))
	}
	return res
}

// ************************************************************

// Restrict rewrites n by replacing every test of a variable pinned in the
// assignment with the selected child. The assignment maps a variable to true
// or false; variables absent from the map are left free.
func (b *BDD) Restrict(n Node, assignment map[int]bool) Node {
	if b.checkptr(n) != nil {
		return b.seterror("Wrong operand in call to Restrict (%d)", *n)
	}
	if len(assignment) == 0 {
		return n
	}
	b.rescache.newassignment()
	for v, val := range assignment {
		if v < 0 || int32(v) >= b.varnum {
			return b.seterror("Unknown variable (%d) in call to Restrict", v)
		}
		if val {
			b.rescache.pinned[v] = 1
		} else {
			b.rescache.pinned[v] = 0
		}
		if b.var2level[v] > b.rescache.last {
			b.rescache.last = b.var2level[v]
		}
	}
	b.initref()
	b.pushref(*n)
	res := b.restrict(*n)
	b.popref(1)
	return b.retnode(res)
}

func (b *BDD) restrict(n int) int {
	if n < 2 || b.levelOf(n) > b.rescache.last {
		return n
	}
	if res := b.rescache.lookup(n); res >= 0 {
		return res
	}
	v := b.vr(n)
	var res int
	switch b.rescache.pinned[v] {
	case 1:
		res = b.restrict(b.high(n))
	case 0:
		res = b.restrict(b.low(n))
	default:
		low := b.pushref(b.restrict(b.low(n)))
		high := b.pushref(b.restrict(b.high(n)))
		res = b.makenode(v, low, high)
		b.popref(2)
	}
	return b.rescache.store(n, res)
}

// ************************************************************

// Satcount computes the number of satisfying variable assignments, over the
// declared variable universe, for the function denoted by n. We return a
// result using arbitrary-precision arithmetic to avoid possible overflows.
// The result is zero (and we set the error flag of b) if there is an error.
//
// The count of a node is the sum of its children's counts, where each edge
// that skips k levels multiplies the child's count by 2^k for the variables
// left untested on the way; since the weights are powers of two, the whole
// computation is additions and shifts. The final shift accounts for the
// levels above the root, which covers in one stroke every declared variable
// outside the support of n.
func (b *BDD) Satcount(n Node) *big.Int {
	if b.checkptr(n) != nil {
		b.seterror("Wrong operand in call to Satcount (%d)", *n)
		return new(big.Int)
	}
	memo := make(map[int]*big.Int)
	return new(big.Int).Lsh(b.satrec(*n, memo), uint(b.levelOf(*n)))
}

func (b *BDD) satrec(n int, memo map[int]*big.Int) *big.Int {
	if n < 2 {
		// ⊥ has no model, ⊤ has exactly one over zero variables
		return big.NewInt(int64(n))
	}
	if res, ok := memo[n]; ok {
		return res
	}
	lv := b.levelOf(n)
	low, high := b.low(n), b.high(n)
	res := new(big.Int).Lsh(b.satrec(low, memo), uint(b.levelOf(low)-lv-1))
	res.Add(res, new(big.Int).Lsh(b.satrec(high, memo), uint(b.levelOf(high)-lv-1)))
	memo[n] = res
	return res
}

// Satisfiable reports whether the function denoted by n has at least one
// satisfying assignment.
func (b *BDD) Satisfiable(n Node) bool {
	if b.checkptr(n) != nil {
		b.seterror("Wrong operand in call to Satisfiable (%d)", *n)
		return false
	}
	return *n != 0
}

// Nodecount returns the number of distinct decision nodes reachable from n.
// The two terminals are not counted.
func (b *BDD) Nodecount(n Node) int {
	if b.checkptr(n) != nil {
		b.seterror("Wrong operand in call to Nodecount (%d)", *n)
		return 0
	}
	b.newvisit()
	return b.countreach(*n)
}

// ************************************************************

// Allsat iterates through all legal variable assignments for n and calls the
// function f on each of them. We pass an int slice of length varnum to f
// where each entry is either 0 if the variable is false, 1 if it is true, and
// -1 if it is a don't care. We stop and return an error if f returns an error
// at some point.
func (b *BDD) Allsat(f func([]int) error, n Node) error {
	if b.checkptr(n) != nil {
		return fmt.Errorf("wrong node in call to Allsat (%d)", *n)
	}
	prof := make([]int, b.varnum)
	for k := range prof {
		prof[k] = -1
	}
	// the function does not create new nodes, so we do not need to take care
	// of possible resizing
	return b.allsat(*n, prof, f)
}

func (b *BDD) allsat(n int, prof []int, f func([]int) error) error {
	if n == 0 {
		return nil
	}
	if n == 1 {
		return f(prof)
	}
	for val, child := range [2]int{b.low(n), b.high(n)} {
		if child == 0 {
			// no model down a ⊥ edge
			continue
		}
		prof[b.vr(n)] = val
		// every level skipped by the edge is a don't care, whatever an
		// earlier branch may have left there
		for lv := b.levelOf(n) + 1; lv < b.levelOf(child); lv++ {
			prof[b.level2var[lv]] = -1
		}
		if err := b.allsat(child, prof, f); err != nil {
			return err
		}
	}
	prof[b.vr(n)] = -1
	return nil
}

// Allnodes applies function f over all the nodes accessible from the nodes in
// the sequence n..., or all the active nodes if n is absent (len(n) == 0).
// The parameters to function f are the id, variable, and id's of the low and
// high successors of each node. The two constant nodes (True and False) have
// always the id 1 and 0, respectively. The order in which nodes are visited
// is not specified. We stop the computation and return an error if f returns
// an error at some point.
func (b *BDD) Allnodes(f func(id, v, low, high int) error, n ...Node) error {
	for _, v := range n {
		if err := b.checkptr(v); err != nil {
			return fmt.Errorf("wrong node in call to Allnodes; %s", err)
		}
	}
	// the function does not create new nodes, so we do not need to take care
	// of possible resizing.
	if len(n) == 0 {
		return b.allnodes(f)
	}
	return b.allnodesfrom(f, n)
}

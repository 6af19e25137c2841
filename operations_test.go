// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

import (
	"fmt"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

//********************************************************************************************

func TestMin3(t *testing.T) {
	var min3Tests = []struct {
		p, q, r  int32
		expected int32
	}{
		{3, 2, 3, 2},
		{4, 4, 4, 4},
		{2, 3, 3, 2},
		{3, 2, 2, 2},
		{3, 3, 2, 2},
		{1, 2, 3, 1},
	}
	for _, tt := range min3Tests {
		actual := min3(tt.p, tt.q, tt.r)
		if actual != tt.expected {
			t.Errorf("min3(%d, %d, %d): expected %d, actual %d", tt.p, tt.q, tt.r, tt.expected, actual)
		}
	}
}

//********************************************************************************************

func TestIteDefinition(t *testing.T) {
	bdd, err := New(4, Nodesize(5000), Cachesize(1000))
	require.NoError(t, err)
	n1 := bdd.Makeset([]int{0, 2, 3})
	n2 := bdd.Makeset([]int{0, 3})
	actual := bdd.Equiv(bdd.Ite(n1, n2, bdd.Not(n2)), bdd.Or(bdd.And(n1, n2), bdd.And(bdd.Not(n1), bdd.Not(n2))))
	if !bdd.Equal(actual, bdd.True()) {
		t.Errorf("ite(f,g,h) <=> (f & g) | (!f & h): expected true, actual false")
	}
	require.NoError(t, bdd.CheckInvariants())
}

//********************************************************************************************

// TestOperations follows the structure of the bddtest program in the BuDDy
// distribution. It uses function Allsat for checking that all assignments are
// detected.

func TestOperations(t *testing.T) {
	bdd, err := New(4, Nodesize(1000), Cachesize(1000))
	require.NoError(t, err)
	varnum := 4

	test1Check := func(x Node) error {
		allsatBDD := x
		allsatSumBDD := bdd.False()
		// Calculate whole set of asignments and remove all assignments
		// from original set
		bdd.Allsat(func(varset []int) error {
			x := bdd.True()
			for k, v := range varset {
				switch v {
				case 0:
					x = bdd.And(x, bdd.NIthvar(k))
				case 1:
					x = bdd.And(x, bdd.Ithvar(k))
				}
			}
			t.Logf("Checking bdd with %-4s assignments\n", bdd.Satcount(x))
			// Sum up all assignments
			allsatSumBDD = bdd.Or(allsatSumBDD, x)
			// Remove assignment from initial set
			allsatBDD = bdd.Diff(allsatBDD, x)
			return nil
		}, x)

		// Now the summed set should be equal to the original set and the
		// subtracted set should be empty
		if !bdd.Equal(allsatSumBDD, x) {
			return fmt.Errorf("AllSat sum is not the initial BDD")
		}

		if !bdd.Equal(allsatBDD, bdd.False()) {
			return fmt.Errorf("AllSat is not False")
		}
		return nil
	}

	a := bdd.Ithvar(0)
	b := bdd.Ithvar(1)
	c := bdd.Ithvar(2)
	d := bdd.Ithvar(3)
	na := bdd.NIthvar(0)
	nb := bdd.NIthvar(1)
	nc := bdd.NIthvar(2)
	nd := bdd.NIthvar(3)

	require.NoError(t, test1Check(bdd.True()))
	require.NoError(t, test1Check(bdd.False()))

	// a & b | !a & !b
	require.NoError(t, test1Check(bdd.Or(bdd.And(a, b), bdd.And(na, nb))))

	// a & b | c & d
	require.NoError(t, test1Check(bdd.Or(bdd.And(a, b), bdd.And(c, d))))

	// a & !b | a & !d | a & b & !c
	require.NoError(t, test1Check(bdd.Or(bdd.And(a, nb), bdd.And(a, nd), bdd.And(a, b, nc))))

	for i := 0; i < varnum; i++ {
		require.NoError(t, test1Check(bdd.Ithvar(i)))
		require.NoError(t, test1Check(bdd.NIthvar(i)))
	}

	set := bdd.True()
	for i := 0; i < 50; i++ {
		v := rand.Intn(varnum)
		if rand.Intn(2) == 0 {
			set = bdd.And(set, bdd.Ithvar(v))
		} else {
			set = bdd.And(set, bdd.NIthvar(v))
		}
		require.NoError(t, test1Check(set))
	}
	require.NoError(t, bdd.CheckInvariants())
}

//********************************************************************************************

// randomNode draws a random Boolean function over the variables of bdd by
// combining literals with random connectives.
func randomNode(t *rapid.T, bdd *BDD) Node {
	varnum := bdd.Varnum()
	depth := rapid.IntRange(1, 4).Draw(t, "depth")
	var gen func(d int) Node
	gen = func(d int) Node {
		if d == 0 {
			v := rapid.IntRange(0, varnum-1).Draw(t, "var")
			if rapid.Bool().Draw(t, "sign") {
				return bdd.Ithvar(v)
			}
			return bdd.NIthvar(v)
		}
		switch rapid.IntRange(0, 3).Draw(t, "op") {
		case 0:
			return bdd.And(gen(d-1), gen(d-1))
		case 1:
			return bdd.Or(gen(d-1), gen(d-1))
		case 2:
			return bdd.Xor(gen(d-1), gen(d-1))
		default:
			return bdd.Not(gen(d - 1))
		}
	}
	return gen(depth)
}

func TestBooleanLaws(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		varnum := rapid.IntRange(2, 5).Draw(t, "varnum")
		bdd, err := New(varnum, Nodesize(5000), Cachesize(1000))
		require.NoError(t, err)
		a := randomNode(t, bdd)
		b := randomNode(t, bdd)
		f := randomNode(t, bdd)

		assert.True(t, bdd.Equal(bdd.And(a, b), bdd.And(b, a)), "and is commutative")
		assert.True(t, bdd.Equal(bdd.Or(a, bdd.Not(a)), bdd.True()), "excluded middle")
		assert.True(t, bdd.Equal(bdd.And(a, bdd.Not(a)), bdd.False()), "non-contradiction")
		assert.True(t, bdd.Equal(bdd.Not(bdd.Not(a)), a), "double negation")
		assert.True(t, bdd.Equal(
			bdd.Ite(f, a, b),
			bdd.Or(bdd.And(f, a), bdd.And(bdd.Not(f), b))), "ite definition")
		require.NoError(t, bdd.CheckInvariants())
	})
}

//********************************************************************************************

func TestRestrict(t *testing.T) {
	bdd, err := New(3, Nodesize(1000))
	require.NoError(t, err)
	// f = (x0 & x1) | x2
	f := bdd.Or(bdd.And(bdd.Ithvar(0), bdd.Ithvar(1)), bdd.Ithvar(2))

	r := bdd.Restrict(f, map[int]bool{0: true})
	assert.True(t, bdd.Equal(r, bdd.Or(bdd.Ithvar(1), bdd.Ithvar(2))), "f[x0=1] = x1 | x2")

	r = bdd.Restrict(f, map[int]bool{0: false})
	assert.True(t, bdd.Equal(r, bdd.Ithvar(2)), "f[x0=0] = x2")

	r = bdd.Restrict(f, map[int]bool{0: true, 1: true})
	assert.True(t, bdd.Equal(r, bdd.True()), "f[x0=1,x1=1] = true")

	r = bdd.Restrict(f, map[int]bool{2: false, 1: false})
	assert.True(t, bdd.Equal(r, bdd.False()), "f[x1=0,x2=0] = false")

	// pinning a variable not in the support is a no-op on the function
	g := bdd.Ithvar(2)
	assert.True(t, bdd.Equal(bdd.Restrict(g, map[int]bool{0: true}), g))

	require.NoError(t, bdd.CheckInvariants())
}

func TestRestrictAgainstIte(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		varnum := rapid.IntRange(2, 5).Draw(t, "varnum")
		bdd, err := New(varnum, Nodesize(5000))
		require.NoError(t, err)
		f := randomNode(t, bdd)
		v := rapid.IntRange(0, varnum-1).Draw(t, "pinned")
		val := rapid.Bool().Draw(t, "value")
		r := bdd.Restrict(f, map[int]bool{v: val})
		// Shannon: f = ite(x, f[x=1], f[x=0])
		f1 := bdd.Restrict(f, map[int]bool{v: true})
		f0 := bdd.Restrict(f, map[int]bool{v: false})
		assert.True(t, bdd.Equal(f, bdd.Ite(bdd.Ithvar(v), f1, f0)))
		if val {
			assert.True(t, bdd.Equal(r, f1))
		} else {
			assert.True(t, bdd.Equal(r, f0))
		}
	})
}

//********************************************************************************************

// Seed scenarios over small CNF inputs.

func TestCNFSimple(t *testing.T) {
	// (x1 | x2) & (!x1 | x2) is x2 alone
	bdd, err := New(2, Nodesize(1000))
	require.NoError(t, err)
	n, err := bdd.FromCNF([][]int{{1, 2}, {-1, 2}})
	require.NoError(t, err)
	assert.Zero(t, big.NewInt(2).Cmp(bdd.Satcount(n)))
	assert.Equal(t, 1, bdd.Nodecount(n))
	assert.True(t, bdd.Equal(n, bdd.Ithvar(1)))
	require.NoError(t, bdd.CheckInvariants())
}

func TestCNFContradiction(t *testing.T) {
	bdd, err := New(1, Nodesize(1000))
	require.NoError(t, err)
	n, err := bdd.FromCNF([][]int{{1}, {-1}})
	require.NoError(t, err)
	assert.True(t, bdd.Equal(n, bdd.False()))
	assert.Zero(t, big.NewInt(0).Cmp(bdd.Satcount(n)))
	assert.False(t, bdd.Satisfiable(n))
}

func TestCNFEmpty(t *testing.T) {
	bdd, err := New(3, Nodesize(1000))
	require.NoError(t, err)
	n, err := bdd.FromCNF([][]int{})
	require.NoError(t, err)
	assert.True(t, bdd.Equal(n, bdd.True()))
	assert.Zero(t, big.NewInt(8).Cmp(bdd.Satcount(n)))
}

func TestMainRoot(t *testing.T) {
	bdd, err := New(2, Nodesize(1000))
	require.NoError(t, err)
	_, err = bdd.Main()
	assert.ErrorIs(t, err, ErrNoBDD)
	n, err := bdd.FromCNF([][]int{{1, 2}})
	require.NoError(t, err)
	m, err := bdd.Main()
	require.NoError(t, err)
	assert.True(t, bdd.Equal(n, m))
}

func TestInvalidHandle(t *testing.T) {
	bdd, err := New(2, Nodesize(1000))
	require.NoError(t, err)
	bogus := 500000
	bdd.Satcount(Node(&bogus))
	assert.True(t, bdd.Errored())
}

//********************************************************************************************

func TestView(t *testing.T) {
	bdd, err := New(2, Nodesize(1000))
	require.NoError(t, err)
	n, err := bdd.FromCNF([][]int{{1, 2}})
	require.NoError(t, err)
	v, err := bdd.View(n, 10, 20)
	require.NoError(t, err)
	assert.Zero(t, big.NewInt(3).Cmp(v.Satcount()))
	assert.True(t, v.Satisfiable())
	assert.Equal(t, 2, v.Nodecount())
	assert.Equal(t, 20, v.Label(1))
	w := v.Clone()
	assert.True(t, bdd.Equal(v.Node(), w.Node()))

	_, err = bdd.View(n, 10)
	assert.Error(t, err)
}

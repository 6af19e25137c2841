// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestXorRoundTrip(t *testing.T) {
	bdd, err := New(3, Nodesize(1000), Cachesize(1000))
	require.NoError(t, err)
	// x1 ^ x2 ^ x3
	n := bdd.Xor(bdd.Xor(bdd.Ithvar(0), bdd.Ithvar(1)), bdd.Ithvar(2))
	require.EqualValues(t, 4, bdd.Satcount(n).Int64())
	require.Equal(t, 5, bdd.Nodecount(n))

	s, err := bdd.Dump(n)
	require.NoError(t, err)

	reloaded, roots, err := DeserializeString(s)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.EqualValues(t, 4, reloaded.Satcount(roots[0]).Int64())
	assert.Equal(t, 5, reloaded.Nodecount(roots[0]))
	require.NoError(t, reloaded.CheckInvariants())
}

func TestRoundTripRandom(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		varnum := rapid.IntRange(1, 6).Draw(t, "varnum")
		clauses := randomCNF(t, varnum)
		bdd, err := New(varnum, Nodesize(5000))
		require.NoError(t, err)
		n, err := bdd.FromCNF(clauses)
		require.NoError(t, err)

		s, err := bdd.Dump(n)
		require.NoError(t, err)
		reloaded, roots, err := DeserializeString(s)
		require.NoError(t, err)
		require.Len(t, roots, 1)

		require.Zero(t, bdd.Satcount(n).Cmp(reloaded.Satcount(roots[0])))
		require.Equal(t, bdd.Nodecount(n), reloaded.Nodecount(roots[0]))
		require.Equal(t, bdd.Order(), reloaded.Order())
		require.NoError(t, reloaded.CheckInvariants())

		// serializing the reloaded BDD again is a fixpoint
		s2, err := reloaded.Dump(roots[0])
		require.NoError(t, err)
		require.Equal(t, s, s2)
	})
}

func TestSerializeEmbedsOrder(t *testing.T) {
	bdd, err := New(4, Nodesize(1000), Order([]int{3, 1, 0, 2}))
	require.NoError(t, err)
	n, err := bdd.FromCNF([][]int{{1, 4}, {-2, 3}})
	require.NoError(t, err)
	s, err := bdd.Dump(n)
	require.NoError(t, err)
	assert.Contains(t, s, "variable_order = 3 1 0 2")

	// a deserialized manager uses the embedded order, not the default
	reloaded, roots, err := DeserializeString(s)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 0, 2}, reloaded.Order())
	assert.Zero(t, bdd.Satcount(n).Cmp(reloaded.Satcount(roots[0])))
}

func TestSerializeMultipleRoots(t *testing.T) {
	bdd, err := New(3, Nodesize(1000))
	require.NoError(t, err)
	n1 := bdd.And(bdd.Ithvar(0), bdd.Ithvar(1))
	n2 := bdd.Or(bdd.Ithvar(1), bdd.Ithvar(2))
	s, err := bdd.Dump(n1, n2)
	require.NoError(t, err)
	reloaded, roots, err := DeserializeString(s)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Zero(t, bdd.Satcount(n1).Cmp(reloaded.Satcount(roots[0])))
	assert.Zero(t, bdd.Satcount(n2).Cmp(reloaded.Satcount(roots[1])))
}

func TestDeserializeErrors(t *testing.T) {
	var deserializeTests = []struct {
		name     string
		input    string
		expected ParseErrKind
	}{
		{
			"missing header",
			"root_count = 1\n",
			ErrMissingHeader,
		},
		{
			"empty input",
			"",
			ErrMissingHeader,
		},
		{
			"bad count",
			"variable_count = many\nvariable_order = 0\nroot_count = 0\nroots =\nnode_count = 0\n",
			ErrBadNumber,
		},
		{
			"bad order",
			"variable_count = 2\nvariable_order = 0 0\nroot_count = 0\nroots =\nnode_count = 0\n",
			ErrNonAscending,
		},
		{
			"forward reference",
			"variable_count = 2\nvariable_order = 0 1\nroot_count = 1\nroots = 2\nnode_count = 1\n2 0 3 1\n",
			ErrForwardRef,
		},
		{
			"unknown variable",
			"variable_count = 2\nvariable_order = 0 1\nroot_count = 1\nroots = 2\nnode_count = 1\n2 7 0 1\n",
			ErrBadNode,
		},
		{
			"duplicate id",
			"variable_count = 2\nvariable_order = 0 1\nroot_count = 1\nroots = 2\nnode_count = 2\n2 1 0 1\n2 0 0 1\n",
			ErrDuplicateHeader,
		},
		{
			"level order broken",
			"variable_count = 2\nvariable_order = 0 1\nroot_count = 1\nroots = 3\nnode_count = 2\n2 0 0 1\n3 1 2 1\n",
			ErrBadNode,
		},
		{
			"unknown root",
			"variable_count = 2\nvariable_order = 0 1\nroot_count = 1\nroots = 9\nnode_count = 1\n2 0 0 1\n",
			ErrBadRoot,
		},
	}
	for _, tt := range deserializeTests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Deserialize(strings.NewReader(tt.input))
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.expected, pe.Kind)
		})
	}
}

func TestImportDDDMP(t *testing.T) {
	input := `.ver DDDMP-2.0
.nvars 3
.nroots 1
.rootids 4
.permids 0 1 2
.nodes
2 2 0 1
3 1 2 1
4 0 3 2
.end
`
	bdd, roots, err := ImportDDDMP(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.NoError(t, bdd.CheckInvariants())
	assert.Equal(t, 3, bdd.Nodecount(roots[0]))
	assert.True(t, bdd.Satisfiable(roots[0]))

	_, _, err = ImportDDDMP(strings.NewReader(".nvars 2\n.nodes\n2 0 -3 1\n.end\n"))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrBadNode, pe.Kind)
}

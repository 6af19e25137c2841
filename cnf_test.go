// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFromCNFParallelMatchesSequential(t *testing.T) {
	varnum, clauses := pigeonhole(4, 3)
	bdd, err := New(varnum, Nodesize(20000), Cachesize(5000))
	require.NoError(t, err)
	seq, err := bdd.FromCNF(clauses)
	require.NoError(t, err)
	par, err := bdd.FromCNFParallel(clauses, 4)
	require.NoError(t, err)
	// canonicity: the same function built twice in the same manager is the
	// same node, whatever the construction schedule
	assert.True(t, bdd.Equal(seq, par))
	require.NoError(t, bdd.CheckInvariants())
}

func TestFromCNFParallelRandom(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		varnum := rapid.IntRange(1, 6).Draw(t, "varnum")
		clauses := randomCNF(t, varnum)
		workers := rapid.IntRange(1, 4).Draw(t, "workers")

		bdd, err := New(varnum, Nodesize(5000))
		require.NoError(t, err)
		seq, err := bdd.FromCNF(clauses)
		require.NoError(t, err)
		par, err := bdd.FromCNFParallel(clauses, workers)
		require.NoError(t, err)
		require.True(t, bdd.Equal(seq, par))
		require.NoError(t, bdd.CheckInvariants())
	})
}

func TestFromCNFTautologyClause(t *testing.T) {
	bdd, err := New(2, Nodesize(1000))
	require.NoError(t, err)
	// x1 | !x1 is dropped; x2 | x2 collapses to a single literal
	n, err := bdd.FromCNF([][]int{{1, -1}, {2, 2}})
	require.NoError(t, err)
	assert.True(t, bdd.Equal(n, bdd.Ithvar(1)))
}

func TestFromCNFBadLiterals(t *testing.T) {
	bdd, err := New(2, Nodesize(1000))
	require.NoError(t, err)
	_, err = bdd.FromCNF([][]int{{1, 0}})
	assert.Error(t, err)

	bdd, err = New(2, Nodesize(1000))
	require.NoError(t, err)
	_, err = bdd.FromCNF([][]int{{5}})
	assert.Error(t, err)

	bdd, err = New(2, Nodesize(1000))
	require.NoError(t, err)
	_, err = bdd.FromCNF([][]int{{}})
	assert.Error(t, err)
}

func TestFromCNFWithThresholdSchedule(t *testing.T) {
	varnum, clauses := pigeonhole(4, 3)
	bdd, err := New(varnum, Nodesize(20000), Reorder(ReorderAtThreshold(50)))
	require.NoError(t, err)
	n, err := bdd.FromCNF(clauses)
	require.NoError(t, err)
	assert.False(t, bdd.Satisfiable(n))
	require.NoError(t, bdd.CheckInvariants())
}

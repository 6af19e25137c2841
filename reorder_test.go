// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

import (
	"math/big"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// pigeonhole returns the CNF for fitting pigeons into holes: every pigeon
// goes somewhere, no two pigeons share a hole. Unsatisfiable whenever
// pigeons > holes.
func pigeonhole(pigeons, holes int) (int, [][]int) {
	varOf := func(p, h int) int { return p*holes + h + 1 }
	clauses := [][]int{}
	for p := 0; p < pigeons; p++ {
		clause := []int{}
		for h := 0; h < holes; h++ {
			clause = append(clause, varOf(p, h))
		}
		clauses = append(clauses, clause)
	}
	for h := 0; h < holes; h++ {
		for p := 0; p < pigeons; p++ {
			for q := p + 1; q < pigeons; q++ {
				clauses = append(clauses, []int{-varOf(p, h), -varOf(q, h)})
			}
		}
	}
	return pigeons * holes, clauses
}

// dump flattens the sub-DAG reachable from n into a deterministic list of
// quadruples, suitable for structural comparison.
func dump(t *testing.T, b *BDD, n Node) [][4]int {
	t.Helper()
	res := [][4]int{}
	err := b.Allnodes(func(id, v, low, high int) error {
		res = append(res, [4]int{id, v, low, high})
		return nil
	}, n)
	require.NoError(t, err)
	return res
}

//********************************************************************************************

func TestSwapTwiceIdentity(t *testing.T) {
	bdd, err := New(4, Nodesize(10000), Cachesize(1000))
	require.NoError(t, err)
	// a function whose top two levels interact, so that the first swap
	// actually rewrites nodes
	n, err := bdd.FromCNF([][]int{{1, 2}, {-1, 3}, {2, 4}, {-2, -3}})
	require.NoError(t, err)
	before := dump(t, bdd, n)
	id := *n

	require.NoError(t, bdd.Swap(0))
	require.NoError(t, bdd.CheckInvariants())
	require.NoError(t, bdd.Swap(0))
	require.NoError(t, bdd.CheckInvariants())

	// the handle must still point at the very same slot, and the reachable
	// sub-DAG must be pointer-wise identical
	assert.Equal(t, id, *n)
	after := dump(t, bdd, n)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("double swap changed the DAG (-before +after):\n%s", diff)
	}
}

func TestSwapPreservesSemantics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		varnum := rapid.IntRange(2, 6).Draw(t, "varnum")
		clauses := randomCNF(t, varnum)
		bdd, err := New(varnum, Nodesize(10000))
		require.NoError(t, err)
		n, err := bdd.FromCNF(clauses)
		require.NoError(t, err)
		before := bdd.Satcount(n)
		lvl := rapid.IntRange(0, varnum-2).Draw(t, "level")
		require.NoError(t, bdd.Swap(lvl))
		require.NoError(t, bdd.CheckInvariants())
		require.Zero(t, before.Cmp(bdd.Satcount(n)))
	})
}

//********************************************************************************************

func TestSiftPigeonhole(t *testing.T) {
	varnum, clauses := pigeonhole(3, 2)
	bdd, err := New(varnum, Nodesize(10000), Cachesize(1000))
	require.NoError(t, err)
	n, err := bdd.FromCNF(clauses)
	require.NoError(t, err)
	assert.False(t, bdd.Satisfiable(n))
	assert.Zero(t, big.NewInt(0).Cmp(bdd.Satcount(n)))

	before := bdd.Live()
	bdd.SetReorder(ReorderOnce())
	require.NoError(t, bdd.Reorder())
	require.NoError(t, bdd.CheckInvariants())
	assert.LessOrEqual(t, bdd.Live(), before)
	assert.Zero(t, big.NewInt(0).Cmp(bdd.Satcount(n)))
}

func TestSiftReducesInterleaved(t *testing.T) {
	// (x0 & x1) | (x2 & x3) | (x4 & x5), built under the interleaved order
	// x0 x2 x4 x1 x3 x5, which is the textbook worst case for this function.
	bdd, err := New(6, Nodesize(10000), Cachesize(1000), Order([]int{0, 2, 4, 1, 3, 5}))
	require.NoError(t, err)
	pair := func(i, j int) Node { return bdd.And(bdd.Ithvar(i), bdd.Ithvar(j)) }
	n := bdd.Or(pair(0, 1), pair(2, 3), pair(4, 5))
	count := bdd.Satcount(n)
	before := bdd.Nodecount(n)

	bdd.SetReorder(ReorderUntilConvergence())
	require.NoError(t, bdd.Reorder())
	require.NoError(t, bdd.CheckInvariants())

	after := bdd.Nodecount(n)
	assert.Less(t, after, before, "sifting should shrink the interleaved order")
	assert.Zero(t, count.Cmp(bdd.Satcount(n)))
}

func TestReorderPreservesSemantics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		varnum := rapid.IntRange(2, 6).Draw(t, "varnum")
		clauses := randomCNF(t, varnum)
		schedule := rapid.SampledFrom([]Schedule{
			ReorderOnce(),
			ReorderUntilConvergence(),
			ReorderAtThreshold(1),
			SiftingAtThreshold(1),
		}).Draw(t, "schedule")
		bdd, err := New(varnum, Nodesize(10000))
		require.NoError(t, err)
		n, err := bdd.FromCNF(clauses)
		require.NoError(t, err)
		before := bdd.Satcount(n)
		bdd.SetReorder(schedule)
		require.NoError(t, bdd.Reorder())
		require.NoError(t, bdd.CheckInvariants())
		require.Zero(t, before.Cmp(bdd.Satcount(n)))
	})
}

func TestReorderDeadline(t *testing.T) {
	varnum, clauses := pigeonhole(4, 3)
	bdd, err := New(varnum, Nodesize(10000))
	require.NoError(t, err)
	n, err := bdd.FromCNF(clauses)
	require.NoError(t, err)
	count := bdd.Satcount(n)

	bdd.SetReorder(TimeSizeLimit(0, time.Nanosecond))
	time.Sleep(time.Millisecond)
	err = bdd.Reorder()
	assert.ErrorIs(t, err, ErrDeadlineExceeded)
	// the order rolled back to the best seen; the function is unchanged
	require.NoError(t, bdd.CheckInvariants())
	assert.Zero(t, count.Cmp(bdd.Satcount(n)))
}

func TestScheduleShouldRun(t *testing.T) {
	var scheduleTests = []struct {
		s        Schedule
		live     int
		expected reorderAction
	}{
		{NoReorder(), 1000, actSkip},
		{ReorderOnce(), 0, actSweep},
		{ReorderUntilConvergence(), 0, actConverge},
		{ReorderAtThreshold(100), 50, actSkip},
		{ReorderAtThreshold(100), 150, actSweep},
		{SiftingAtThreshold(100), 150, actConverge},
		{TimeSizeLimit(100, time.Second), 50, actSkip},
		{TimeSizeLimit(100, time.Second), 150, actConverge},
	}
	for _, tt := range scheduleTests {
		if actual := tt.s.shouldRun(tt.live); actual != tt.expected {
			t.Errorf("shouldRun(%v, %d): expected %d, actual %d", tt.s, tt.live, tt.expected, actual)
		}
	}
}

func TestIthvarSurvivesReorder(t *testing.T) {
	bdd, err := New(4, Nodesize(10000))
	require.NoError(t, err)
	n, err := bdd.FromCNF([][]int{{1, -2, 3}, {2, 4}, {-1, -4}})
	require.NoError(t, err)
	_ = n
	bdd.SetReorder(ReorderOnce())
	require.NoError(t, bdd.Reorder())
	for i := 0; i < 4; i++ {
		x := bdd.Ithvar(i)
		require.Zero(t, big.NewInt(8).Cmp(bdd.Satcount(x)), "variable %d after reorder", i)
		assert.True(t, bdd.Equal(bdd.Not(x), bdd.NIthvar(i)))
	}
}

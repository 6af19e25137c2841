// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

import "fmt"

// CheckInvariants walks the whole node table and controls the structural
// invariants of the DAG: no redundant test (low == high), no duplicate
// triple, edges going to strictly deeper levels, and referential closure of
// every child. It returns nil when the table is sound. The walk is linear and
// meant for tests and debugging; operations rely on makenode to maintain
// these properties structurally.
func (b *BDD) CheckInvariants() error {
	if b.nodes[0].low != 0 || b.nodes[0].high != 0 || b.nodes[1].low != 1 || b.nodes[1].high != 1 {
		return fmt.Errorf("terminal nodes were overwritten")
	}
	type triple struct {
		v         int32
		low, high int
	}
	seen := make(map[triple]int)
	for n := 2; n < len(b.nodes); n++ {
		if b.nodes[n].low == -1 {
			continue
		}
		v := b.vr(n)
		low, high := b.low(n), b.high(n)
		if v < 0 || v >= b.varnum {
			return fmt.Errorf("node %d has variable %d outside the universe", n, v)
		}
		if low == high {
			return fmt.Errorf("node %d has a redundant test (low == high == %d)", n, low)
		}
		for _, child := range [2]int{low, high} {
			if child < 0 || child >= len(b.nodes) {
				return fmt.Errorf("node %d references %d outside the table", n, child)
			}
			if child > 1 && b.nodes[child].low == -1 {
				return fmt.Errorf("node %d references reclaimed node %d", n, child)
			}
			if b.levelOf(n) >= b.levelOf(child) {
				return fmt.Errorf("node %d at level %d references node %d at level %d", n, b.levelOf(n), child, b.levelOf(child))
			}
		}
		t := triple{v: v, low: low, high: high}
		if dup, ok := seen[t]; ok {
			return fmt.Errorf("nodes %d and %d share the triple (%d, %d, %d)", dup, n, v, low, high)
		}
		seen[t] = n
	}
	return nil
}

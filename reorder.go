// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

import (
	"log"
	"sort"
	"time"
)

// ScheduleKind enumerates the reordering policies.
type ScheduleKind int

const (
	// ScheduleNone disables dynamic reordering.
	ScheduleNone ScheduleKind = iota
	// ScheduleAlwaysOnce runs one sift sweep after construction.
	ScheduleAlwaysOnce
	// ScheduleAlwaysUntilConvergence sweeps until one full sweep yields no
	// improvement.
	ScheduleAlwaysUntilConvergence
	// ScheduleAtThreshold triggers one sweep when the live node count
	// exceeds the threshold.
	ScheduleAtThreshold
	// ScheduleSiftingAtThreshold is like ScheduleAtThreshold with an inner
	// convergence loop.
	ScheduleSiftingAtThreshold
	// ScheduleTimeSizeLimit starts when the live node count exceeds the node
	// threshold and stops when the time budget is exceeded.
	ScheduleTimeSizeLimit
)

// Schedule is a reordering policy: it decides when sift sweeps run and under
// which budget. Schedules are plain values; adding a new policy means
// extending the kind.
type Schedule struct {
	Kind      ScheduleKind
	Threshold int           // live-node trigger for the threshold kinds
	Budget    time.Duration // wall-time budget for ScheduleTimeSizeLimit
}

// NoReorder returns the schedule that disables dynamic reordering.
func NoReorder() Schedule {
	return Schedule{Kind: ScheduleNone}
}

// ReorderOnce returns the schedule running exactly one sweep on Reorder.
func ReorderOnce() Schedule {
	return Schedule{Kind: ScheduleAlwaysOnce}
}

// ReorderUntilConvergence returns the schedule sweeping until a full sweep
// brings no improvement.
func ReorderUntilConvergence() Schedule {
	return Schedule{Kind: ScheduleAlwaysUntilConvergence}
}

// ReorderAtThreshold returns the schedule triggering one sweep whenever the
// live node count exceeds threshold.
func ReorderAtThreshold(threshold int) Schedule {
	return Schedule{Kind: ScheduleAtThreshold, Threshold: threshold}
}

// SiftingAtThreshold is like ReorderAtThreshold with an inner convergence
// loop.
func SiftingAtThreshold(threshold int) Schedule {
	return Schedule{Kind: ScheduleSiftingAtThreshold, Threshold: threshold}
}

// TimeSizeLimit returns the schedule that starts sweeping when the live node
// count exceeds threshold and stops when the wall-time budget is spent.
func TimeSizeLimit(threshold int, budget time.Duration) Schedule {
	return Schedule{Kind: ScheduleTimeSizeLimit, Threshold: threshold, Budget: budget}
}

type reorderAction int

const (
	actSkip reorderAction = iota
	actSweep
	actConverge
)

// shouldRun dispatches on the schedule kind given the current live node
// count.
func (s Schedule) shouldRun(livenodes int) reorderAction {
	switch s.Kind {
	case ScheduleAlwaysOnce:
		return actSweep
	case ScheduleAlwaysUntilConvergence:
		return actConverge
	case ScheduleAtThreshold:
		if livenodes > s.Threshold {
			return actSweep
		}
	case ScheduleSiftingAtThreshold, ScheduleTimeSizeLimit:
		if livenodes > s.Threshold {
			return actConverge
		}
	}
	return actSkip
}

// SetReorder installs a reordering schedule on the manager. The schedule is
// consulted by Reorder and, for the threshold kinds, during construction.
func (b *BDD) SetReorder(s Schedule) {
	b.schedule = s
}

// Reorder runs the installed schedule. A time-bounded schedule returns
// ErrDeadlineExceeded when its budget runs out; the order is then the best
// seen before that. Reorder also fails with ErrNotQuiescent in Building mode,
// and returns the manager's error status when a swap cannot allocate nodes or
// an error was already recorded.
func (b *BDD) Reorder() error {
	if err := b.quiescentOnly("Reorder"); err != nil {
		return err
	}
	var deadline time.Time
	if b.schedule.Kind == ScheduleTimeSizeLimit && b.schedule.Budget > 0 {
		deadline = time.Now().Add(b.schedule.Budget)
	}
	switch b.schedule.shouldRun(b.livecount()) {
	case actSweep:
		_, err := b.sweep(deadline)
		return err
	case actConverge:
		for {
			improved, err := b.sweep(deadline)
			if err != nil {
				return err
			}
			if !improved {
				return nil
			}
		}
	}
	return nil
}

// maybeReorder is called during construction. It uses the allocated node
// count as a cheap proxy before paying for an exact live count.
func (b *BDD) maybeReorder() {
	switch b.schedule.Kind {
	case ScheduleAtThreshold, ScheduleSiftingAtThreshold, ScheduleTimeSizeLimit:
		if len(b.nodes)-b.freenum > b.schedule.Threshold {
			_ = b.Reorder()
		}
	}
}

// sweep sifts every variable once, in decreasing order of the live node count
// of its level, and reports whether the total live count improved.
func (b *BDD) sweep(deadline time.Time) (bool, error) {
	start, perlevel := b.livestats()
	if _LOGLEVEL > 0 {
		log.Printf("start sift sweep %d: %d live nodes\n", b.sweeps+1, start)
	}
	// We fix the list of variables up front since sifting one variable moves
	// the others around.
	type weight struct {
		v int32
		c int
	}
	vars := make([]weight, b.varnum)
	for i := range vars {
		vars[i] = weight{v: b.level2var[i], c: perlevel[i]}
	}
	sort.SliceStable(vars, func(i, j int) bool { return vars[i].c > vars[j].c })
	for k, w := range vars {
		if err := b.siftvar(w.v, deadline); err != nil {
			return false, err
		}
		b.reportProgress("sift", k+1, len(vars))
	}
	b.sweeps++
	end := b.livecount()
	if _LOGLEVEL > 0 {
		log.Printf("end sift sweep %d: %d live nodes\n", b.sweeps, end)
	}
	return end < start, nil
}

// siftvar moves variable v to the top of the order by adjacent swaps, then to
// the bottom, recording the live node count after each swap, and finally
// settles it at the best position observed. Ties keep the earliest discovery.
func (b *BDD) siftvar(v int32, deadline time.Time) error {
	best := b.livecount()
	bestpos := b.var2level[v]
	// up to the top
	for b.var2level[v] > 0 {
		if expired(deadline) {
			b.settle(v, bestpos)
			return ErrDeadlineExceeded
		}
		if err := b.swapAdjacent(b.var2level[v] - 1); err != nil {
			return err
		}
		if c := b.livecount(); c < best {
			best = c
			bestpos = b.var2level[v]
		}
	}
	// down to the bottom
	for b.var2level[v] < b.varnum-1 {
		if expired(deadline) {
			b.settle(v, bestpos)
			return ErrDeadlineExceeded
		}
		if err := b.swapAdjacent(b.var2level[v]); err != nil {
			return err
		}
		if c := b.livecount(); c < best {
			best = c
			bestpos = b.var2level[v]
		}
	}
	// back to the best observed position
	b.settle(v, bestpos)
	return b.error
}

// settle brings variable v back to position pos by adjacent swaps, without
// recording counts.
func (b *BDD) settle(v int32, pos int32) {
	for b.var2level[v] > pos {
		if err := b.swapAdjacent(b.var2level[v] - 1); err != nil {
			return
		}
	}
	for b.var2level[v] < pos {
		if err := b.swapAdjacent(b.var2level[v]); err != nil {
			return
		}
	}
}

func expired(deadline time.Time) bool {
	return !deadline.IsZero() && time.Now().After(deadline)
}

// Swap exchanges the two neighbouring levels i and i+1 in the order. It is
// exported for tests and power users; most callers go through Reorder.
func (b *BDD) Swap(i int) error {
	if err := b.quiescentOnly("Swap"); err != nil {
		return err
	}
	if i < 0 || int32(i) >= b.varnum-1 {
		b.seterror("bad level (%d) in call to Swap", i)
		return b.error
	}
	return b.swapAdjacent(int32(i))
}

// swapAdjacent exchanges levels i and i+1. Writing x for the variable at
// level i and y for the one below, every node (x, a, c) with a child testing
// y is rebuilt as (y, (x,a0,c0), (x,a1,c1)), pulling y above x. The
// rebuild mutates the node in place so that user-held handles keep their
// identity; nodes orphaned by the rewrite stay in the table until the next
// collection. The computed caches are cleared since their keys are
// position-dependent.
func (b *BDD) swapAdjacent(i int32) error {
	x := b.level2var[i]
	y := b.level2var[i+1]
	// Make sure interning cannot trigger a collection while the chains are
	// partially unhooked: two fresh nodes per rewritten one, at worst.
	if err := b.reserve(2*len(b.levels[i]) + 2); err != nil {
		return err
	}
	oldX := b.levels[i]
	oldY := b.levels[i+1]
	rewrite := make(map[int]bool, len(oldX))
	for _, n := range oldX {
		if b.vr(b.low(n)) == y || b.vr(b.high(n)) == y {
			rewrite[n] = true
		}
	}
	// unhook the nodes we are about to mutate so that a lookup cannot return
	// one of them while it holds a stale triple
	for n := range rewrite {
		b.unhook(n)
	}
	// exchange the two levels in the order; from here on makenode files new
	// x nodes under level i+1
	b.var2level[x], b.var2level[y] = i+1, i
	b.level2var[i], b.level2var[i+1] = y, x
	upper := make([]int, 0, len(oldY)+len(rewrite))
	upper = append(upper, oldY...)
	lower := make([]int, 0, len(oldX)-len(rewrite))
	for _, n := range oldX {
		if !rewrite[n] {
			lower = append(lower, n)
		}
	}
	b.levels[i] = upper
	b.levels[i+1] = lower
	for n := range rewrite {
		a, c := b.low(n), b.high(n)
		a0, a1 := a, a
		if b.vr(a) == y {
			a0, a1 = b.low(a), b.high(a)
		}
		c0, c1 := c, c
		if b.vr(c) == y {
			c0, c1 = b.low(c), b.high(c)
		}
		low := b.pushref(b.makenode(x, a0, c0))
		high := b.pushref(b.makenode(x, a1, c1))
		if low < 0 || high < 0 {
			b.popref(2)
			return b.error
		}
		b.nodes[n].vr = y
		b.nodes[n].low = low
		b.nodes[n].high = high
		b.popref(2)
		b.rehook(n)
		b.levels[i] = append(b.levels[i], n)
	}
	b.cachereset()
	return nil
}

// unhook removes node n from its collision chain.
func (b *BDD) unhook(n int) {
	slot := b.slotof(n)
	cur := b.nodes[slot].bucket
	if cur == n {
		b.nodes[slot].bucket = b.nodes[n].next
		return
	}
	for cur != 0 {
		if b.nodes[cur].next == n {
			b.nodes[cur].next = b.nodes[n].next
			return
		}
		cur = b.nodes[cur].next
	}
}

// rehook inserts node n in the chain matching its current triple.
func (b *BDD) rehook(n int) {
	slot := b.slotof(n)
	b.nodes[n].next = b.nodes[slot].bucket
	b.nodes[slot].bucket = n
}

// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

import (
	"log"
	"math"
	"runtime"
	"sync/atomic"
)

// New returns a new BDD manager for varnum variables. It is possible to set
// optional (configuration) parameters, such as the size of the initial node
// table (Nodesize), the size for caches (Cachesize), or the initial variable
// order (Order), using configs functions. The initial number of nodes is not
// critical since the table will be resized whenever there are too few nodes
// left after a garbage collection. We return a nil value if there is an error
// while creating the BDD.
func New(varnum int, options ...func(*configs)) (*BDD, error) {
	b := &BDD{}
	if (varnum < 1) || (varnum > int(_MAXVAR)) {
		b.seterror("bad number of variable (%d)", varnum)
		return nil, b.error
	}
	config := makeconfigs(varnum)
	for _, f := range options {
		f(config)
	}
	b.varnum = int32(varnum)
	if _LOGLEVEL > 0 {
		log.Printf("set varnum to %d\n", b.varnum)
	}
	if err := b.initorder(config.order); err != nil {
		return nil, err
	}
	b.varset = make([][2]int, varnum)
	b.levels = make([][]int, varnum)
	b.refstack = make([]int, 0, 2*varnum+4)
	b.initref()
	b.minfreenodes = config.minfreenodes
	b.maxnodesize = config.maxnodesize
	b.maxnodeincrease = config.maxnodeincrease
	b.cachesize = config.cachesize
	b.cacheratio = config.cacheratio
	b.schedule = config.schedule
	b.progress = config.progress
	size := nextprime(config.nodesize)
	b.nodes = make([]bddnode, size)
	b.visited = make([]int32, size)
	// every slot starts free; the free list is threaded through next
	for k := range b.nodes {
		b.nodes[k].low = -1
		b.nodes[k].next = k + 1
	}
	b.nodes[size-1].next = 0
	// the terminals live at 0 and 1, self-looped and pinned for ever
	for k := 0; k < 2; k++ {
		b.nodes[k] = bddnode{refcou: _MAXREFCOUNT, vr: int32(varnum), low: k, high: k}
	}
	b.freepos = 2
	b.freenum = size - 2
	b.gcstat.history = []gcpoint{}
	b.nodefinalizer = func(n *int) {
		if _DEBUG {
			atomic.AddUint64(&(b.gcstat.calledfinalizers), 1)
			if _LOGLEVEL > 2 {
				log.Printf("dec refcou %d\n", *n)
			}
		}
		// a count that reached the ceiling stays pinned
		if b.nodes[*n].refcou < _MAXREFCOUNT {
			b.nodes[*n].refcou--
		}
	}
	// We allocate the literal nodes level by level so that the level index
	// starts out in insertion order.
	for i := 0; i < varnum; i++ {
		v := b.level2var[i]
		v0 := b.makenode(v, 0, 1)
		if v0 < 0 {
			b.seterror("cannot allocate variable %d in New", v)
			return nil, b.error
		}
		b.nodes[v0].refcou = _MAXREFCOUNT
		b.pushref(v0)
		v1 := b.makenode(v, 1, 0)
		if v1 < 0 {
			b.seterror("cannot allocate variable %d in New", v)
			return nil, b.error
		}
		b.nodes[v1].refcou = _MAXREFCOUNT
		b.popref(1)
		b.varset[v] = [2]int{v0, v1}
	}
	b.cacheinit(config)
	return b, nil
}

// initorder installs the initial level maps. The extra entry at index varnum
// gives the (fixed) level of the two terminals.
func (b *BDD) initorder(order []int) error {
	varnum := int(b.varnum)
	b.var2level = make([]int32, varnum+1)
	b.level2var = make([]int32, varnum+1)
	if order == nil {
		for i := 0; i <= varnum; i++ {
			b.var2level[i] = int32(i)
			b.level2var[i] = int32(i)
		}
		return nil
	}
	if len(order) != varnum {
		b.seterror("bad variable order (%d entries for %d variables)", len(order), varnum)
		return b.error
	}
	seen := make([]bool, varnum)
	for i, v := range order {
		if v < 0 || v >= varnum || seen[v] {
			b.seterror("bad variable order (entry %d is %d)", i, v)
			return b.error
		}
		seen[v] = true
		b.level2var[i] = int32(v)
		b.var2level[v] = int32(i)
	}
	b.var2level[varnum] = int32(varnum)
	b.level2var[varnum] = int32(varnum)
	return nil
}

var (
	vzero = 0
	vone  = 1
)

// bddzero and bddone are the only two Node values for the terminals; they can
// be shared between managers since terminals always sit at slots 0 and 1.
var bddzero Node = &vzero
var bddone Node = &vone

// retnode wraps an internal id into a handle for the outside world. The
// handle takes a reference on the node and carries a finalizer, so that
// dropping it on the floor eventually releases the reference again.
func (b *BDD) retnode(n int) Node {
	switch {
	case n < 0 || n >= len(b.nodes):
		if _DEBUG {
			log.Panicf("b.retnode(%d) not valid\n", n)
		}
		return nil
	case n == 0:
		return bddzero
	case n == 1:
		return bddone
	}
	x := n
	if b.nodes[n].refcou < _MAXREFCOUNT {
		b.nodes[n].refcou++
		runtime.SetFinalizer(&x, b.nodefinalizer)
		if _DEBUG {
			atomic.AddUint64(&(b.setfinalizers), 1)
			if _LOGLEVEL > 2 {
				log.Printf("inc refcou %d\n", n)
			}
		}
	}
	return &x
}

// makenode is the only entry point for adding a decision node to the DAG, and
// the reason the §3-style invariants hold structurally: a redundant test
// never allocates, and a triple that already has a node is returned as is.
func (b *BDD) makenode(v int32, low, high int) int {
	// redundancy rule
	if low == high {
		return low
	}
	if low < 0 || high < 0 {
		return -1
	}
	if _DEBUG {
		b.uniqueAccess++
	}
	// sharing rule: walk the collision chain of the triple's bucket
	slot := b.bucketof(v, low, high)
	for id := b.nodes[slot].bucket; id != 0; id = b.nodes[id].next {
		if nd := &b.nodes[id]; nd.vr == v && nd.low == low && nd.high == high {
			if _DEBUG {
				b.uniqueHit++
			}
			return id
		}
		if _DEBUG {
			b.uniqueChain++
		}
	}
	if _DEBUG {
		b.uniqueMiss++
	}
	if b.freepos == 0 {
		if b.ensurespace() != nil {
			return -1
		}
		// the table may have been swept or moved, look the bucket up again
		slot = b.bucketof(v, low, high)
	}
	id := b.freepos
	b.freepos = b.nodes[id].next
	b.freenum--
	b.produced++
	nd := &b.nodes[id]
	nd.vr = v
	nd.low = low
	nd.high = high
	nd.next = b.nodes[slot].bucket
	b.nodes[slot].bucket = id
	// the level index records allocations in order
	lvl := b.var2level[v]
	b.levels[lvl] = append(b.levels[lvl], id)
	return id
}

// ensurespace runs when the free list is exhausted: reclaim unreachable
// nodes first, and grow the arena when the sweep did not free enough of it.
func (b *BDD) ensurespace() error {
	b.gbc()
	if (b.freenum*100)/len(b.nodes) <= b.minfreenodes {
		if err := b.noderesize(); err != nil {
			b.seterror("cannot grow node table; %s", err)
			return b.error
		}
	}
	if b.freepos == 0 {
		b.seterror("node table exhausted")
		return b.error
	}
	return nil
}

// reserve makes sure that at least need free slots are available, so that a
// sequence of makenode calls can run without triggering a collection. This is
// required while the hash chains are partially unhooked during a level swap.
func (b *BDD) reserve(need int) error {
	if b.freenum >= need {
		return nil
	}
	b.gbc()
	for b.freenum < need {
		if err := b.noderesize(); err != nil {
			b.seterror("cannot reserve %d nodes; %s", need, err)
			return b.error
		}
	}
	return nil
}

// grownsize picks the next size for the arena, doubling it under the
// configured caps and rounding down to a prime.
func (b *BDD) grownsize(oldsize int) (int, error) {
	if b.maxnodesize > 0 && oldsize >= b.maxnodesize {
		return 0, errMemory
	}
	size := oldsize
	if size > math.MaxInt32>>1 {
		size = math.MaxInt32 - 1
	} else {
		size *= 2
	}
	if b.maxnodeincrease > 0 && size > oldsize+b.maxnodeincrease {
		size = oldsize + b.maxnodeincrease
	}
	if b.maxnodesize > 0 && size > b.maxnodesize {
		size = b.maxnodesize
	}
	size = prevprime(size)
	if size <= oldsize {
		return 0, errMemory
	}
	return size, nil
}

func (b *BDD) noderesize() error {
	oldsize := len(b.nodes)
	size, err := b.grownsize(oldsize)
	if err != nil {
		return err
	}
	if _LOGLEVEL > 0 {
		log.Printf("resize: %d -> %d\n", oldsize, size)
	}
	nodes := make([]bddnode, size)
	copy(nodes, b.nodes)
	b.nodes = nodes
	visited := make([]int32, size)
	copy(visited, b.visited)
	b.visited = visited
	// every bucket moves when the modulus changes: rehash the whole arena and
	// thread the free list through the unused slots in the same pass
	for k := range b.nodes {
		b.nodes[k].bucket = 0
	}
	b.freepos = 0
	b.freenum = 0
	for n := size - 1; n > 1; n-- {
		if n >= oldsize {
			b.nodes[n].low = -1
		}
		if b.nodes[n].low == -1 {
			b.nodes[n].next = b.freepos
			b.freepos = n
			b.freenum++
		} else {
			slot := b.slotof(n)
			b.nodes[n].next = b.nodes[slot].bucket
			b.nodes[slot].bucket = n
		}
	}
	b.cacheresize(size)
	return nil
}

// GC explicitly starts garbage collection of unused nodes. Nodes are
// reclaimed when they are unreachable from any user-held handle; the
// operation caches are cleared.
func (b *BDD) GC() {
	b.gbc()
}

// gbc reclaims every node that is unreachable both from an externally
// referenced node and from the refstack of the operation in progress.
// Surviving nodes do not move, so ids stay stable across collections; the
// hash chains, the free list and the level index are rebuilt, and the
// operation caches are dropped since they may name reclaimed nodes.
func (b *BDD) gbc() {
	if _LOGLEVEL > 0 {
		log.Println("starting GC")
	}
	point := gcpoint{nodes: len(b.nodes), freenodes: b.freenum}
	if _DEBUG {
		point.setfinalizers = int(b.gcstat.setfinalizers)
		point.calledfinalizers = int(b.gcstat.calledfinalizers)
		b.gcstat.setfinalizers = 0
		b.gcstat.calledfinalizers = 0
	}
	b.gcstat.history = append(b.gcstat.history, point)
	// mark phase: transient nodes of the running operation, then everything
	// holding an external reference (variables included, they are pinned)
	b.newvisit()
	for _, r := range b.refstack {
		b.reach(r)
	}
	for k := range b.nodes {
		if b.nodes[k].refcou > 0 {
			b.reach(k)
		}
		b.nodes[k].bucket = 0
	}
	// sweep phase: void unreached slots and rehash the survivors
	b.freepos = 0
	b.freenum = 0
	for n := len(b.nodes) - 1; n > 1; n-- {
		if b.seen(n) && b.nodes[n].low != -1 {
			slot := b.slotof(n)
			b.nodes[n].next = b.nodes[slot].bucket
			b.nodes[slot].bucket = n
		} else {
			b.nodes[n].low = -1
			b.nodes[n].next = b.freepos
			b.freepos = n
			b.freenum++
		}
	}
	// the level index keeps only the survivors, in ascending id order
	for i := range b.levels {
		b.levels[i] = b.levels[i][:0]
	}
	for n := 2; n < len(b.nodes); n++ {
		if b.nodes[n].low != -1 {
			lvl := b.levelOf(n)
			b.levels[lvl] = append(b.levels[lvl], n)
		}
	}
	b.cachereset()
	if _LOGLEVEL > 0 {
		log.Printf("end GC; freenum: %d\n", b.freenum)
	}
}

// *************************************************************************
// Reachability. Traversals stamp the nodes they visit with the current
// generation number, so "unmarking" is a constant-time bump of the
// generation instead of a second pass over the arena.

func (b *BDD) newvisit() {
	b.visitgen++
	if b.visitgen == math.MaxInt32 {
		for k := range b.visited {
			b.visited[k] = 0
		}
		b.visitgen = 1
	}
}

func (b *BDD) seen(n int) bool {
	return b.visited[n] == b.visitgen
}

// reach stamps every decision node reachable from n.
func (b *BDD) reach(n int) {
	if n < 2 || b.seen(n) || b.nodes[n].low == -1 {
		return
	}
	b.visited[n] = b.visitgen
	b.reach(b.nodes[n].low)
	b.reach(b.nodes[n].high)
}

// countreach is reach, counting the stamped nodes along the way.
func (b *BDD) countreach(n int) int {
	if n < 2 || b.seen(n) || b.nodes[n].low == -1 {
		return 0
	}
	b.visited[n] = b.visitgen
	return 1 + b.countreach(b.nodes[n].low) + b.countreach(b.nodes[n].high)
}

// livestats returns the number of decision nodes reachable from an external
// reference, together with a per-level tally. Orphans waiting for the next
// collection are not counted; this is the metric watched by the reordering
// schedules.
func (b *BDD) livestats() (int, []int) {
	b.newvisit()
	for k := range b.nodes {
		if k > 1 && b.nodes[k].refcou > 0 {
			b.reach(k)
		}
	}
	count := 0
	perlevel := make([]int, b.varnum)
	for n := 2; n < len(b.nodes); n++ {
		if b.seen(n) && b.nodes[n].low != -1 {
			count++
			perlevel[b.levelOf(n)]++
		}
	}
	return count, perlevel
}

func (b *BDD) livecount() int {
	count, _ := b.livestats()
	return count
}

// Size returns the total number of allocated slots in the node table.
func (b *BDD) Size() int {
	return len(b.nodes)
}

// Live returns the number of decision nodes reachable from a user-held
// handle.
func (b *BDD) Live() int {
	return b.livecount()
}

// *************************************************************************

func (b *BDD) allnodesfrom(f func(id, v, low, high int) error, roots []Node) error {
	b.newvisit()
	for _, r := range roots {
		b.reach(*r)
	}
	for k := 2; k < len(b.nodes); k++ {
		if b.seen(k) {
			if err := f(k, int(b.nodes[k].vr), b.nodes[k].low, b.nodes[k].high); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *BDD) allnodes(f func(id, v, low, high int) error) error {
	for k, v := range b.nodes {
		if k > 1 && v.low != -1 {
			if err := f(k, int(v.vr), v.low, v.high); err != nil {
				return err
			}
		}
	}
	return nil
}

// *************************************************************************
// Prime sizing for the arena and the caches. Bucket indices come from a
// modulo over the mixer of hashing.go, so a prime size keeps its low bits
// from aliasing. Trial division is plenty here: sizes stay below 2³¹ and the
// functions only run on (re)allocation.

func isprime(n int) bool {
	if n < 4 {
		return n > 1
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for d := 5; d*d <= n; d += 6 {
		if n%d == 0 || n%(d+2) == 0 {
			return false
		}
	}
	return true
}

func nextprime(n int) int {
	for !isprime(n) {
		n++
	}
	return n
}

func prevprime(n int) int {
	for n > 2 && !isprime(n) {
		n--
	}
	return n
}

// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/c2h5oh/datasize"
)

// Operation caches. All three are direct-mapped tables whose entries carry a
// generation stamp: clearing a cache is a constant-time bump of its stamp,
// and a slot only hits when its stamp is current. This matters for
// reordering, which must drop the caches after every adjacent swap; a
// scan-based reset there would dominate sift time.

// Setup and shutdown

func (b *BDD) cacheinit(c *configs) {
	size := 10000
	if c.cachesize != 0 {
		size = c.cachesize
	}
	size = nextprime(size)
	b.itecache = &itecache{}
	b.itecache.init(size, c.cacheratio)
	b.notcache = &notcache{}
	b.notcache.init(size, c.cacheratio)
	b.rescache = &rescache{}
	b.rescache.init(size, c.cacheratio)
	b.rescache.pinned = make([]int8, b.varnum)
	for k := range b.rescache.pinned {
		b.rescache.pinned[k] = -1
	}
}

func (b *BDD) cachereset() {
	if b.itecache == nil {
		return
	}
	b.itecache.clear()
	b.notcache.clear()
	b.rescache.clear()
}

func (b *BDD) cacheresize(nodesize int) {
	if b.itecache == nil {
		return
	}
	b.itecache.resize(nodesize)
	b.notcache.resize(nodesize)
	b.rescache.resize(nodesize)
}

// The ite cache is keyed by the full operand triple. We do not normalize
// symmetric triples before the lookup; a miss on a commuted triple is
// recomputed and discarded.

type iteslot struct {
	stamp   int32
	f, g, h int
	res     int
}

type itecache struct {
	stamp int32
	ratio int
	hits  int
	miss  int
	slots []iteslot
}

func (c *itecache) init(size, ratio int) {
	c.slots = make([]iteslot, size)
	c.ratio = ratio
	c.stamp = 1
}

func (c *itecache) clear() {
	c.stamp++
	if c.stamp == math.MaxInt32 {
		c.slots = make([]iteslot, len(c.slots))
		c.stamp = 1
	}
}

func (c *itecache) resize(nodesize int) {
	if c.ratio > 0 {
		c.slots = make([]iteslot, nextprime((nodesize*c.ratio)/100))
	}
	c.clear()
}

func (c *itecache) lookup(f, g, h int) int {
	s := &c.slots[cacheslot(f, g, h, len(c.slots))]
	if s.stamp == c.stamp && s.f == f && s.g == g && s.h == h {
		if _DEBUG {
			c.hits++
		}
		return s.res
	}
	if _DEBUG {
		c.miss++
	}
	return -1
}

func (c *itecache) store(f, g, h, res int) int {
	s := &c.slots[cacheslot(f, g, h, len(c.slots))]
	*s = iteslot{stamp: c.stamp, f: f, g: g, h: h, res: res}
	return res
}

func (c itecache) String() string {
	return cachestats("ITE cache ", len(c.slots), int(unsafe.Sizeof(iteslot{})), c.hits, c.miss)
}

// The negation cache is keyed by a single operand.

type unaryslot struct {
	stamp int32
	n     int
	res   int
}

type notcache struct {
	stamp int32
	ratio int
	hits  int
	miss  int
	slots []unaryslot
}

func (c *notcache) init(size, ratio int) {
	c.slots = make([]unaryslot, size)
	c.ratio = ratio
	c.stamp = 1
}

func (c *notcache) clear() {
	c.stamp++
	if c.stamp == math.MaxInt32 {
		c.slots = make([]unaryslot, len(c.slots))
		c.stamp = 1
	}
}

func (c *notcache) resize(nodesize int) {
	if c.ratio > 0 {
		c.slots = make([]unaryslot, nextprime((nodesize*c.ratio)/100))
	}
	c.clear()
}

func (c *notcache) lookup(n int) int {
	s := &c.slots[n%len(c.slots)]
	if s.stamp == c.stamp && s.n == n {
		if _DEBUG {
			c.hits++
		}
		return s.res
	}
	if _DEBUG {
		c.miss++
	}
	return -1
}

func (c *notcache) store(n, res int) int {
	c.slots[n%len(c.slots)] = unaryslot{stamp: c.stamp, n: n, res: res}
	return res
}

func (c notcache) String() string {
	return cachestats("Not cache ", len(c.slots), int(unsafe.Sizeof(unaryslot{})), c.hits, c.miss)
}

// The restrict cache reuses its stamp as the identity of the current
// assignment: loading a new assignment bumps the stamp, which at once
// invalidates the entries of the previous one. The pinned slice records, for
// each variable, whether it is forced to 0, to 1, or left free (-1).

type rescache struct {
	stamp  int32
	ratio  int
	hits   int
	miss   int
	slots  []unaryslot
	pinned []int8 // Current assignment: 0, 1, or -1 when the variable is free
	last   int32  // Deepest pinned level for the current assignment
}

func (c *rescache) init(size, ratio int) {
	c.slots = make([]unaryslot, size)
	c.ratio = ratio
	c.stamp = 1
}

func (c *rescache) clear() {
	c.stamp++
	if c.stamp == math.MaxInt32 {
		c.slots = make([]unaryslot, len(c.slots))
		c.stamp = 1
	}
}

func (c *rescache) resize(nodesize int) {
	if c.ratio > 0 {
		c.slots = make([]unaryslot, nextprime((nodesize*c.ratio)/100))
	}
	c.clear()
}

func (c *rescache) newassignment() {
	c.clear()
	for k := range c.pinned {
		c.pinned[k] = -1
	}
	c.last = -1
}

func (c *rescache) lookup(n int) int {
	s := &c.slots[n%len(c.slots)]
	if s.stamp == c.stamp && s.n == n {
		if _DEBUG {
			c.hits++
		}
		return s.res
	}
	if _DEBUG {
		c.miss++
	}
	return -1
}

func (c *rescache) store(n, res int) int {
	c.slots[n%len(c.slots)] = unaryslot{stamp: c.stamp, n: n, res: res}
	return res
}

func (c rescache) String() string {
	return cachestats("Restrict  ", len(c.slots), int(unsafe.Sizeof(unaryslot{})), c.hits, c.miss)
}

func cachestats(name string, slots, slotsize, hits, miss int) string {
	res := fmt.Sprintf("== %s  %d (%s)\n", name, slots, (datasize.ByteSize(slots) * datasize.ByteSize(slotsize)).HumanReadable())
	res += fmt.Sprintf(" Operator Hits: %d (%.1f%%)\n", hits, (float64(hits)*100)/(float64(hits)+float64(miss)))
	res += fmt.Sprintf(" Operator Miss: %d\n", miss)
	return res
}

// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

// The unique table and the ite cache address their buckets with a
// multiplicative mixer over the three ids of a triple. Note that a node
// hashes on its variable, never on its level: a level swap relabels
// positions, not nodes, so the nodes untouched by a swap keep their buckets
// and only the rewritten ones are unhooked and rehashed. Hashing on levels
// would force a full rehash of the arena after every adjacent swap and defeat
// in-place reordering.

func mix3(a, b, c uint64) uint64 {
	h := a*0x9e3779b97f4a7c15 + b*0xbf58476d1ce4e5b9 + c*0x94d049bb133111eb
	h ^= h >> 31
	h *= 0xd6e8feb86659fd93
	h ^= h >> 32
	return h
}

// bucketof maps a node triple to a slot of the arena.
func (b *BDD) bucketof(v int32, low, high int) int {
	return int(mix3(uint64(v), uint64(low), uint64(high)) % uint64(len(b.nodes)))
}

// slotof recomputes the bucket of an allocated node from its stored triple.
func (b *BDD) slotof(n int) int {
	nd := &b.nodes[n]
	return b.bucketof(nd.vr, nd.low, nd.high)
}

// cacheslot addresses the ite cache with the same mixer; the single-operand
// caches index by the node id modulo their size. The caches are
// direct-mapped, so the slot is the whole placement policy.
func cacheslot(a, b, c, size int) int {
	return int(mix3(uint64(a), uint64(b), uint64(c)) % uint64(size))
}

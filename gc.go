// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

// gcstat stores status information about garbage collections. We use a stack
// (slice) of objects to record the sequence of GC during a computation.
type gcstat struct {
	setfinalizers    uint64    // Total number of external references to BDD nodes
	calledfinalizers uint64    // Number of external references that were freed
	history          []gcpoint // Snaphot of GC stats at each occurrence
}

type gcpoint struct {
	nodes            int // Total number of allocated nodes in the nodetable
	freenodes        int // Number of free nodes in the nodetable
	setfinalizers    int // Total number of external references to BDD nodes
	calledfinalizers int // Number of external references that were freed
}

// *************************************************************************

// AddRef takes an explicit external reference on node n, protecting it from
// garbage collection, and returns n so that calls can be chained. It never
// raises an error, even on a handle outside the range of the BDD. Counts
// saturate at a ceiling; a node that reaches it (terminals and literals
// start there) is pinned for the lifetime of the manager.
func (b *BDD) AddRef(n Node) Node {
	return b.adjref(n, 1)
}

// DelRef releases a reference taken with AddRef and returns n so that calls
// can be chained. Like AddRef it never raises an error, and it has no effect
// on a pinned node or on a count already at zero.
func (b *BDD) DelRef(n Node) Node {
	return b.adjref(n, -1)
}

func (b *BDD) adjref(n Node, delta int32) Node {
	if n == nil || *n < 2 || *n >= len(b.nodes) {
		return n
	}
	nd := &b.nodes[*n]
	if nd.low == -1 || nd.refcou >= _MAXREFCOUNT {
		// freed slot or pinned node
		return n
	}
	if nd.refcou+delta >= 0 {
		nd.refcou += delta
	}
	return n
}

// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

// Node is a reference to an element of a BDD. It represents the atomic unit of
// interactions and computations within a BDD.
type Node *int

// bddnode is one slot of the arena. A slot doubles as a hash-table cell: the
// bucket field heads the collision chain of the triples hashing here, and the
// next field either continues a chain or, while the slot is unused (low ==
// -1), threads the free list.
type bddnode struct {
	refcou int32 // Number of external references, saturating at _MAXREFCOUNT
	vr     int32 // Variable tested by the node; its level comes from var2level
	low    int   // False branch, or -1 when the slot is free
	high   int   // True branch
	bucket int   // Head of the collision chain for triples hashing to this slot
	next   int   // Chain continuation, or free-list link while the slot is unused
}

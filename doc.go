// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

/*
Package ordd implements Reduced Ordered Binary Decision Diagrams (ROBDD), a
canonical DAG representation for Boolean functions over a fixed set of
variables, together with dynamic variable reordering and a textual exchange
format.

Basics

Each BDD manager owns a fixed number of variables, declared when it is
initialized with New. A variable is an integer index in the interval
[0..Varnum); its position in the current order is called its level, with
level 0 the topmost. The two notions coincide only as long as no
reordering has taken place.

Most operations return a Node; that is a handle on a vertex of the shared
DAG. We use integers to address nodes, with the convention that 1
(respectively 0) is the address of the constant function True (respectively
False). Every Boolean operation goes through the memoized if-then-else
combinator, so a given function is always represented by exactly one node.

Construction and reordering

A manager is typically loaded from a CNF formula with FromCNF, or with
FromCNFParallel which conjoins disjoint clause subsets on worker managers
and merges them sequentially. Reordering is driven by a Schedule (see
SetReorder): sifting moves each variable through all levels by adjacent
swaps and settles it at the best position observed. Reordering rewrites
nodes in place, so Node handles held by the caller keep denoting the same
Boolean function.

Automatic memory management

The library is written in pure Go. Like rudd and MuDDy before it, we
piggyback on the garbage collection mechanism offered by the host
language: external references to BDD nodes made by user code are tracked
with finalizers, and unreachable nodes are reclaimed by a mark and sweep
pass over the node table when space runs out, or on an explicit call to GC.

To get access to better statistics about caches and garbage collection, as
well as to unlock logging of some operations, you can compile your
executable with the build tag `debug`. The ORDD_LOGLEVEL environment
variable selects the log verbosity at startup.
*/
package ordd

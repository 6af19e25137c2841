// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

import (
	"log"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// A clause is given in the DIMACS convention: a non-empty list of literals,
// where literal k > 0 stands for variable k-1 and literal -k for its
// negation.

// FromCNF builds the conjunction of the given clauses and attaches the result
// to the manager (see Main). Clauses are conjoined one at a time; with a
// threshold schedule installed, reordering can trigger between two
// conjunctions.
func (b *BDD) FromCNF(clauses [][]int) (Node, error) {
	if err := b.quiescentOnly("FromCNF"); err != nil {
		return nil, err
	}
	res := b.True()
	for k, clause := range clauses {
		c := b.clause(clause)
		if b.error != nil {
			return nil, b.error
		}
		res = b.And(res, c)
		if b.error != nil {
			return nil, b.error
		}
		b.maybeReorder()
		b.reportProgress("cnf", k+1, len(clauses))
	}
	b.main = res
	return res, nil
}

// clause returns the node for the disjunction of a list of literals. The BDD
// of a clause is a chain, so we can build it directly, deepest literal first,
// without going through the ite engine.
func (b *BDD) clause(clause []int) Node {
	if len(clause) == 0 {
		return b.seterror("empty clause in CNF input")
	}
	// polarity dedup; a clause with complementary literals is a tautology
	polarity := make(map[int]bool, len(clause))
	lits := make([]int, 0, len(clause))
	for _, l := range clause {
		if l == 0 {
			return b.seterror("literal 0 in CNF input")
		}
		v := l
		if v < 0 {
			v = -v
		}
		v--
		if v >= int(b.varnum) {
			return b.seterror("literal %d outside the declared universe", l)
		}
		pos := l > 0
		if old, seen := polarity[v]; seen {
			if old != pos {
				return bddone
			}
			continue
		}
		polarity[v] = pos
		lits = append(lits, v)
	}
	sort.Slice(lits, func(i, j int) bool {
		return b.var2level[lits[i]] > b.var2level[lits[j]]
	})
	b.initref()
	cur := 0
	for _, v := range lits {
		b.pushref(cur)
		if polarity[v] {
			cur = b.makenode(int32(v), cur, 1)
		} else {
			cur = b.makenode(int32(v), 1, cur)
		}
		b.popref(1)
		if cur < 0 {
			return nil
		}
	}
	return b.retnode(cur)
}

// FromCNFParallel builds the same conjunction as FromCNF but fans the clause
// list out to workers first. Each worker conjoins its chunk on a private
// manager sharing the variable universe and order; the results are then
// re-interned into b and conjoined sequentially, which is the synchronization
// point. While the workers run the manager is in Building mode and exclusive
// operations fail with ErrNotQuiescent.
func (b *BDD) FromCNFParallel(clauses [][]int, workers int) (Node, error) {
	if err := b.quiescentOnly("FromCNFParallel"); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(clauses) {
		workers = len(clauses)
	}
	if workers < 2 {
		return b.FromCNF(clauses)
	}
	if _LOGLEVEL > 0 {
		log.Printf("parallel construction with %d workers over %d clauses\n", workers, len(clauses))
	}
	type result struct {
		local *BDD
		root  Node
	}
	results := make([]result, workers)
	chunk := (len(clauses) + workers - 1) / workers
	b.mode = building
	g := new(errgroup.Group)
	for w := 0; w < workers; w++ {
		w := w
		lo, hi := w*chunk, (w+1)*chunk
		if hi > len(clauses) {
			hi = len(clauses)
		}
		g.Go(func() error {
			local, err := New(int(b.varnum), Order(b.Order()))
			if err != nil {
				return err
			}
			root, err := local.FromCNF(clauses[lo:hi])
			if err != nil {
				return err
			}
			results[w] = result{local: local, root: root}
			return nil
		})
	}
	err := g.Wait()
	b.mode = quiescent
	if err != nil {
		return nil, err
	}
	res := b.True()
	for w := range results {
		imported := b.importNode(results[w].local, *results[w].root)
		if b.error != nil {
			return nil, b.error
		}
		res = b.And(res, imported)
		if b.error != nil {
			return nil, b.error
		}
		b.reportProgress("merge", w+1, workers)
	}
	b.main = res
	return res, nil
}

// importNode re-interns the sub-DAG rooted at n in the source manager into b.
// Both managers must share the same variable universe. The copy is bottom-up
// through makenode, like the deserializer, so canonicity in b is preserved.
func (b *BDD) importNode(src *BDD, n int) Node {
	memo := make(map[int]int)
	b.initref()
	var cp func(int) int
	cp = func(m int) int {
		if m < 2 {
			return m
		}
		if r, ok := memo[m]; ok {
			return r
		}
		low := cp(src.low(m))
		if low < 0 {
			return -1
		}
		high := cp(src.high(m))
		if high < 0 {
			return -1
		}
		r := b.makenode(src.vr(m), low, high)
		if r >= 0 {
			// hold on to every copied node until the import completes
			b.pushref(r)
			memo[m] = r
		}
		return r
	}
	res := cp(n)
	if res < 0 {
		b.initref()
		return b.seterror("import failed")
	}
	out := b.retnode(res)
	b.initref()
	return out
}

// Main returns the root attached to this manager by the most recent
// construction (FromCNF, FromCNFParallel, SetMain, or a deserialization). It
// returns ErrNoBDD when no BDD was attached yet.
func (b *BDD) Main() (Node, error) {
	if b.main == nil {
		return nil, ErrNoBDD
	}
	return b.main, nil
}

// SetMain attaches n as the manager's main root.
func (b *BDD) SetMain(n Node) error {
	if err := b.checkptr(n); err != nil {
		return err
	}
	b.main = n
	return nil
}

// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// The native exchange format is text based and line oriented: a fixed-order
// header followed by one line per decision node, children first.
//
//	variable_count = N
//	variable_order = v_1 v_2 ... v_N
//	root_count = R
//	roots = id_1 ... id_R
//	node_count = M
//	id var low high
//	...
//
// Terminals keep the fixed ids 0 (false) and 1 (true); user ids start at 2.
// The writer emits nodes in post-order, so every referenced child appears
// before its parent; the reader rebuilds the DAG by interning nodes bottom-up,
// which makes the format robust to renumbering across processes.

var headerKeys = [5]string{"variable_count", "variable_order", "root_count", "roots", "node_count"}

// Serialize writes the sub-DAG reachable from the given roots, together with
// the current variable order, on w.
func (b *BDD) Serialize(w io.Writer, roots ...Node) error {
	if err := b.quiescentOnly("Serialize"); err != nil {
		return err
	}
	for _, n := range roots {
		if err := b.checkptr(n); err != nil {
			return err
		}
	}
	// Post-order numbering of the reachable nodes; terminals keep 0 and 1.
	ids := map[int]int{0: 0, 1: 1}
	list := []int{}
	var visit func(n int)
	visit = func(n int) {
		if _, ok := ids[n]; ok {
			return
		}
		if b.low(n) == b.high(n) {
			b.violated("reachable node %d carries a redundant test", n)
		}
		visit(b.low(n))
		visit(b.high(n))
		ids[n] = 2 + len(list)
		list = append(list, n)
	}
	for _, n := range roots {
		visit(*n)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "variable_count = %d\n", b.varnum)
	fmt.Fprintf(bw, "variable_order =")
	for i := int32(0); i < b.varnum; i++ {
		fmt.Fprintf(bw, " %d", b.level2var[i])
	}
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "root_count = %d\n", len(roots))
	fmt.Fprintf(bw, "roots =")
	for _, n := range roots {
		fmt.Fprintf(bw, " %d", ids[*n])
	}
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "node_count = %d\n", len(list))
	for k, n := range list {
		fmt.Fprintf(bw, "%d %d %d %d\n", ids[n], b.vr(n), ids[b.low(n)], ids[b.high(n)])
		if (k+1)%4096 == 0 {
			b.reportProgress("serialize", k+1, len(list))
		}
	}
	b.reportProgress("serialize", len(list), len(list))
	return errors.Wrap(bw.Flush(), "writing BDD")
}

// Dump returns the serialized form of the sub-DAG reachable from roots as a
// string.
func (b *BDD) Dump(roots ...Node) (string, error) {
	var sb strings.Builder
	if err := b.Serialize(&sb, roots...); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Deserialize reads a BDD in the native exchange format and returns a fresh
// manager holding it, together with the declared roots. The embedded variable
// order is installed on the manager.
func Deserialize(r io.Reader, options ...func(*configs)) (*BDD, []Node, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineno := 0
	next := func() (string, bool) {
		for sc.Scan() {
			lineno++
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return line, true
		}
		return "", false
	}
	// the five header keys come in a fixed order
	header := map[string][]string{}
	for _, key := range headerKeys {
		line, ok := next()
		if !ok {
			return nil, nil, parseErr(ErrMissingHeader, lineno, "expected key %q", key)
		}
		k, v, found := strings.Cut(line, "=")
		if !found {
			return nil, nil, parseErr(ErrMissingHeader, lineno, "expected key %q", key)
		}
		k = strings.TrimSpace(k)
		if k != key {
			if _, ok := header[k]; ok {
				return nil, nil, parseErr(ErrDuplicateHeader, lineno, "key %q", k)
			}
			for _, known := range headerKeys {
				if k == known {
					return nil, nil, parseErr(ErrMissingHeader, lineno, "expected key %q, found %q", key, k)
				}
			}
			return nil, nil, parseErr(ErrBadHeaderKey, lineno, "found %q, expected %q", k, key)
		}
		header[k] = strings.Fields(strings.TrimSpace(v))
	}
	varnum, err := headerInt(header, "variable_count", lineno)
	if err != nil {
		return nil, nil, err
	}
	order := make([]int, 0, varnum)
	for _, f := range header["variable_order"] {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, nil, parseErr(ErrBadNumber, lineno, "variable_order entry %q", f)
		}
		order = append(order, v)
	}
	if len(order) != varnum {
		return nil, nil, parseErr(ErrNonAscending, lineno, "%d entries for %d variables", len(order), varnum)
	}
	rootcount, err := headerInt(header, "root_count", lineno)
	if err != nil {
		return nil, nil, err
	}
	if len(header["roots"]) != rootcount {
		return nil, nil, parseErr(ErrBadRoot, lineno, "%d roots declared, %d listed", rootcount, len(header["roots"]))
	}
	nodecount, err := headerInt(header, "node_count", lineno)
	if err != nil {
		return nil, nil, err
	}
	b, err := New(varnum, append(options, Order(order))...)
	if err != nil {
		return nil, nil, parseErr(ErrNonAscending, lineno, "%s", err)
	}
	defined := map[int]int{0: 0, 1: 1}
	b.initref()
	for k := 0; k < nodecount; k++ {
		line, ok := next()
		if !ok {
			return nil, nil, parseErr(ErrBadNode, lineno, "expected %d node lines, got %d", nodecount, k)
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, nil, parseErr(ErrBadNode, lineno, "expected 4 fields, got %d", len(fields))
		}
		nums := make([]int, 4)
		for i, f := range fields {
			nums[i], err = strconv.Atoi(f)
			if err != nil {
				return nil, nil, parseErr(ErrBadNumber, lineno, "%q", f)
			}
		}
		id, v, low, high := nums[0], nums[1], nums[2], nums[3]
		if id < 2 {
			return nil, nil, parseErr(ErrBadNode, lineno, "id %d is reserved for a terminal", id)
		}
		if _, ok := defined[id]; ok {
			return nil, nil, parseErr(ErrDuplicateHeader, lineno, "node id %d", id)
		}
		if v < 0 || v >= varnum {
			return nil, nil, parseErr(ErrBadNode, lineno, "variable %d outside the declared alphabet", v)
		}
		nlow, ok := defined[low]
		if !ok {
			return nil, nil, parseErr(ErrForwardRef, lineno, "low child %d", low)
		}
		nhigh, ok := defined[high]
		if !ok {
			return nil, nil, parseErr(ErrForwardRef, lineno, "high child %d", high)
		}
		if b.var2level[v] >= b.levelOf(nlow) || b.var2level[v] >= b.levelOf(nhigh) {
			return nil, nil, parseErr(ErrBadNode, lineno, "node %d breaks the level order", id)
		}
		nd := b.makenode(int32(v), nlow, nhigh)
		if nd < 0 {
			return nil, nil, errors.Wrap(b.error, "rebuilding BDD")
		}
		// keep everything reconstructed so far safe from collection
		b.pushref(nd)
		defined[id] = nd
	}
	roots := make([]Node, 0, rootcount)
	for _, f := range header["roots"] {
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, nil, parseErr(ErrBadNumber, lineno, "root %q", f)
		}
		nd, ok := defined[id]
		if !ok {
			return nil, nil, parseErr(ErrBadRoot, lineno, "root %d names no node", id)
		}
		roots = append(roots, b.retnode(nd))
	}
	b.initref()
	if err := sc.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "reading BDD")
	}
	if len(roots) > 0 {
		b.main = roots[0]
	}
	return b, roots, nil
}

// DeserializeString is a convenience wrapper around Deserialize.
func DeserializeString(s string, options ...func(*configs)) (*BDD, []Node, error) {
	return Deserialize(strings.NewReader(s), options...)
}

func headerInt(header map[string][]string, key string, lineno int) (int, error) {
	fields := header[key]
	if len(fields) != 1 {
		return 0, parseErr(ErrBadNumber, lineno, "key %q wants a single value", key)
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil || v < 0 {
		return 0, parseErr(ErrBadNumber, lineno, "key %q: %q", key, fields[0])
	}
	return v, nil
}

// ************************************************************

// ImportDDDMP reads a BDD in the DDDMP-style text exchange format used by
// other decision-diagram packages. Only the plain text variant is supported:
// dot-prefixed header entries (.ver, .nvars, .nroots, .rootids, .permids),
// then a .nodes section of "id var low high" lines closed by .end.
// Complemented edges (negative child ids) are rejected.
func ImportDDDMP(r io.Reader, options ...func(*configs)) (*BDD, []Node, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineno := 0
	varnum := 0
	var order []int
	var rootids []int
	nroots := -1
	innodes := false
	type rawnode struct {
		id, v, low, high int
		line             int
	}
	var raw []rawnode
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ".") {
			fields := strings.Fields(line)
			switch fields[0] {
			case ".ver", ".mode", ".varinfo", ".nnodes", ".nsuppvars", ".suppvarnames", ".orderedvarnames", ".ids", ".add":
				// informative only
			case ".nvars":
				v, err := strconv.Atoi(fields[len(fields)-1])
				if err != nil || v < 1 {
					return nil, nil, parseErr(ErrBadNumber, lineno, "%s", line)
				}
				varnum = v
			case ".permids":
				for _, f := range fields[1:] {
					v, err := strconv.Atoi(f)
					if err != nil {
						return nil, nil, parseErr(ErrBadNumber, lineno, "%s", line)
					}
					order = append(order, v)
				}
			case ".nroots":
				// checked against .rootids below
				v, err := strconv.Atoi(fields[len(fields)-1])
				if err != nil || v < 0 {
					return nil, nil, parseErr(ErrBadNumber, lineno, "%s", line)
				}
				nroots = v
			case ".rootids":
				for _, f := range fields[1:] {
					v, err := strconv.Atoi(f)
					if err != nil {
						return nil, nil, parseErr(ErrBadNumber, lineno, "%s", line)
					}
					if v < 0 {
						return nil, nil, parseErr(ErrBadNode, lineno, "complemented root %d is not supported", v)
					}
					rootids = append(rootids, v)
				}
			case ".nodes":
				innodes = true
			case ".end":
				innodes = false
			default:
				return nil, nil, parseErr(ErrBadHeaderKey, lineno, "%s", fields[0])
			}
			continue
		}
		if !innodes {
			return nil, nil, parseErr(ErrMissingHeader, lineno, "node line outside a .nodes section")
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, nil, parseErr(ErrBadNode, lineno, "expected 4 fields, got %d", len(fields))
		}
		nums := make([]int, 4)
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, nil, parseErr(ErrBadNumber, lineno, "%q", f)
			}
			nums[i] = v
		}
		if nums[2] < 0 || nums[3] < 0 {
			return nil, nil, parseErr(ErrBadNode, lineno, "complemented edges are not supported")
		}
		raw = append(raw, rawnode{id: nums[0], v: nums[1], low: nums[2], high: nums[3], line: lineno})
	}
	if err := sc.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "reading DDDMP input")
	}
	if varnum == 0 {
		return nil, nil, parseErr(ErrMissingHeader, lineno, "missing .nvars")
	}
	if nroots >= 0 && nroots != len(rootids) {
		return nil, nil, parseErr(ErrBadRoot, lineno, "%d roots declared, %d listed", nroots, len(rootids))
	}
	if order != nil && len(order) != varnum {
		return nil, nil, parseErr(ErrNonAscending, lineno, ".permids has %d entries for %d variables", len(order), varnum)
	}
	opts := options
	if order != nil {
		// permids give, for each variable, its level
		l2v := make([]int, varnum)
		seen := make([]bool, varnum)
		for v, lvl := range order {
			if lvl < 0 || lvl >= varnum || seen[lvl] {
				return nil, nil, parseErr(ErrNonAscending, lineno, ".permids entry %d is %d", v, lvl)
			}
			seen[lvl] = true
			l2v[lvl] = v
		}
		opts = append(opts, Order(l2v))
	}
	b, err := New(varnum, opts...)
	if err != nil {
		return nil, nil, parseErr(ErrBadNumber, lineno, "%s", err)
	}
	defined := map[int]int{0: 0, 1: 1}
	b.initref()
	for _, rn := range raw {
		if rn.id < 2 {
			return nil, nil, parseErr(ErrBadNode, rn.line, "id %d is reserved for a terminal", rn.id)
		}
		if _, ok := defined[rn.id]; ok {
			return nil, nil, parseErr(ErrDuplicateHeader, rn.line, "node id %d", rn.id)
		}
		if rn.v < 0 || rn.v >= varnum {
			return nil, nil, parseErr(ErrBadNode, rn.line, "variable %d outside the declared alphabet", rn.v)
		}
		nlow, ok := defined[rn.low]
		if !ok {
			return nil, nil, parseErr(ErrForwardRef, rn.line, "low child %d", rn.low)
		}
		nhigh, ok := defined[rn.high]
		if !ok {
			return nil, nil, parseErr(ErrForwardRef, rn.line, "high child %d", rn.high)
		}
		nd := b.makenode(int32(rn.v), nlow, nhigh)
		if nd < 0 {
			return nil, nil, errors.Wrap(b.error, "rebuilding BDD")
		}
		b.pushref(nd)
		defined[rn.id] = nd
	}
	roots := make([]Node, 0, len(rootids))
	for _, id := range rootids {
		nd, ok := defined[id]
		if !ok {
			return nil, nil, parseErr(ErrBadRoot, lineno, "root %d names no node", id)
		}
		roots = append(roots, b.retnode(nd))
	}
	b.initref()
	if len(roots) > 0 {
		b.main = roots[0]
	}
	return b, roots, nil
}

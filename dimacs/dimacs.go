// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

// Package dimacs reads CNF formulas in the DIMACS text format and provides
// the FORCE static-ordering heuristic. The BDD manager consumes its validated
// output; it never parses text itself.
package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrKind enumerates the ways a DIMACS file can be malformed.
type ErrKind int

const (
	// ErrBadNumber is an unparsable or out of range numeric field.
	ErrBadNumber ErrKind = iota
	// ErrMissingHeader is a clause appearing before the problem line, or an
	// empty input.
	ErrMissingHeader
	// ErrDuplicateHeader is a second problem line.
	ErrDuplicateHeader
	// ErrBadHeaderKey is a problem line that does not declare a cnf problem.
	ErrBadHeaderKey
	// ErrBadClause is a clause without terminator, an out of range literal,
	// or a clause count that does not match the header.
	ErrBadClause
)

var errNames = [...]string{
	ErrBadNumber:       "invalid number",
	ErrMissingHeader:   "missing header",
	ErrDuplicateHeader: "duplicate header",
	ErrBadHeaderKey:    "bad header key",
	ErrBadClause:       "bad clause",
}

// ParseError reports a malformed DIMACS input together with the offending
// line.
type ParseError struct {
	Kind ErrKind
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, errNames[e.Kind], e.Msg)
}

func parseErr(kind ErrKind, line int, format string, a ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Line: line, Msg: fmt.Sprintf(format, a...)}
}

// Problem is a validated CNF formula: a variable count and a clause list in
// the DIMACS literal convention (literal k > 0 is variable k-1, -k its
// negation).
type Problem struct {
	Varnum  int
	Clauses [][]int
}

// Parse reads a DIMACS CNF file. Comment lines (c ...) are skipped; the
// problem line (p cnf V C) must come before the clauses; every clause is a
// list of non-zero literals closed by a 0, possibly spanning several lines.
func Parse(r io.Reader) (*Problem, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	lineno := 0
	var p *Problem
	declared := 0
	clause := []int{}
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "p") {
			if p != nil {
				return nil, parseErr(ErrDuplicateHeader, lineno, "%q", line)
			}
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[1] != "cnf" {
				return nil, parseErr(ErrBadHeaderKey, lineno, "%q", line)
			}
			varnum, err := strconv.Atoi(fields[2])
			if err != nil || varnum < 1 {
				return nil, parseErr(ErrBadNumber, lineno, "variable count %q", fields[2])
			}
			declared, err = strconv.Atoi(fields[3])
			if err != nil || declared < 0 {
				return nil, parseErr(ErrBadNumber, lineno, "clause count %q", fields[3])
			}
			p = &Problem{Varnum: varnum, Clauses: make([][]int, 0, declared)}
			continue
		}
		if p == nil {
			return nil, parseErr(ErrMissingHeader, lineno, "clause before the problem line")
		}
		for _, f := range strings.Fields(line) {
			lit, err := strconv.Atoi(f)
			if err != nil {
				return nil, parseErr(ErrBadNumber, lineno, "literal %q", f)
			}
			if lit == 0 {
				if len(clause) == 0 {
					return nil, parseErr(ErrBadClause, lineno, "empty clause")
				}
				p.Clauses = append(p.Clauses, clause)
				clause = []int{}
				continue
			}
			v := lit
			if v < 0 {
				v = -v
			}
			if v > p.Varnum {
				return nil, parseErr(ErrBadClause, lineno, "literal %d outside the declared universe", lit)
			}
			clause = append(clause, lit)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading DIMACS input")
	}
	if p == nil {
		return nil, parseErr(ErrMissingHeader, lineno, "no problem line")
	}
	if len(clause) != 0 {
		return nil, parseErr(ErrBadClause, lineno, "last clause has no terminating 0")
	}
	if len(p.Clauses) != declared {
		return nil, parseErr(ErrBadClause, lineno, "%d clauses declared, %d found", declared, len(p.Clauses))
	}
	return p, nil
}

// Copyright (c) 2026 Daniel Lazaro
//
// MIT License

package ordd

import (
	"errors"
	"fmt"
	"log"
)

// ErrInvalidHandle reports that a Node passed to an operation does not belong
// to this manager, or points to a reclaimed slot.
var ErrInvalidHandle = errors.New("node does not belong to this BDD")

// ErrNoBDD reports that a query was made on a manager before any BDD was
// attached to it (see FromCNF and SetMain).
var ErrNoBDD = errors.New("no BDD attached to this manager")

// ErrNotQuiescent reports that an exclusive operation (construction,
// reordering, level swap, serialization) was attempted while the manager was
// in Building mode. Queries such as Satcount or Nodecount do not check the
// mode.
var ErrNotQuiescent = errors.New("manager is not quiescent")

// ErrDeadlineExceeded reports that reordering stopped at its time budget. The
// current order is the best seen so far; this is a normal outcome, not a
// corruption.
var ErrDeadlineExceeded = errors.New("reordering deadline exceeded")

// ParseErrKind enumerates the ways an input file can be malformed.
type ParseErrKind int

const (
	// ErrBadNumber is an unparsable or out of range numeric field.
	ErrBadNumber ParseErrKind = iota
	// ErrMissingHeader is a header key absent or out of its fixed order.
	ErrMissingHeader
	// ErrDuplicateHeader is a header key or node id defined twice.
	ErrDuplicateHeader
	// ErrBadHeaderKey is an unknown key in the header section.
	ErrBadHeaderKey
	// ErrNonAscending is a variable order that is not a permutation of the
	// declared alphabet.
	ErrNonAscending
	// ErrBadNode is a body line whose variable is outside the declared
	// alphabet or whose children break the level order.
	ErrBadNode
	// ErrForwardRef is a node referencing an id not yet defined.
	ErrForwardRef
	// ErrBadRoot is a root id that resolves to no node.
	ErrBadRoot
)

var parseErrNames = [...]string{
	ErrBadNumber:       "invalid number",
	ErrMissingHeader:   "missing header",
	ErrDuplicateHeader: "duplicate definition",
	ErrBadHeaderKey:    "bad header key",
	ErrNonAscending:    "bad variable order",
	ErrBadNode:         "bad node",
	ErrForwardRef:      "forward reference",
	ErrBadRoot:         "bad root",
}

// ParseError is returned by Deserialize and ImportDDDMP on malformed input.
type ParseError struct {
	Kind ParseErrKind
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, parseErrNames[e.Kind], e.Msg)
}

func parseErr(kind ParseErrKind, line int, format string, a ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Line: line, Msg: fmt.Sprintf(format, a...)}
}

// ************************************************************

// Error returns the error status of the BDD. We return an empty string if
// there are no errors.
func (b *BDD) Error() string {
	if b.error == nil {
		return ""
	}
	return b.error.Error()
}

// Errored returns true if there was an error during a computation.
func (b *BDD) Errored() bool {
	return b.error != nil
}

func (b *BDD) seterror(format string, a ...interface{}) Node {
	if b.error != nil {
		format = format + "; " + b.Error()
		b.error = fmt.Errorf(format, a...)
		return nil
	}
	b.error = fmt.Errorf(format, a...)
	if _DEBUG {
		log.Println(b.error)
	}
	return nil
}

// violated reports an internal invariant violation. This implies corruption
// of the node table; it is fatal and non-recoverable.
func (b *BDD) violated(format string, a ...interface{}) {
	log.Panicf("invariant violation: "+format, a...)
}

// checkptr controls that a node is valid; that is a non nil pointer to an
// allocated slot of the arena.
func (b *BDD) checkptr(n Node) error {
	if n == nil {
		return ErrInvalidHandle
	}
	if *n < 0 || *n >= len(b.nodes) {
		return ErrInvalidHandle
	}
	if *n > 1 && b.nodes[*n].low == -1 {
		return ErrInvalidHandle
	}
	return nil
}

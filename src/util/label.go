// label.go provides a way of generating readable LLVM basic-block label
// names for control-flow lowering. The counter is owned per lowering
// session rather than process-global: a compiler that may lower several
// graphs concurrently cannot share one label counter across them.

package util

import (
	"fmt"
	"sync"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// LabelKind selects which prefix a generated label uses.
type LabelKind int

// Label kinds for control-flow constructs.
const (
	LabelWhileHead LabelKind = iota
	LabelWhileBody
	LabelWhileExit
	LabelIfThen
	LabelIfElse
	LabelIfEnd
	LabelForHead
	LabelForBody
	LabelForLatch
	LabelForExit
	LabelMatchArm
	LabelMatchEnd
	LabelMerge
	LabelPropagate
	LabelOk
	LabelErr
	labelKindCount
)

// labelPrefixes stores the string literal prefixes for labels of each kind.
var labelPrefixes = [labelKindCount]string{
	LabelWhileHead: "while.head",
	LabelWhileBody: "while.body",
	LabelWhileExit: "while.exit",
	LabelIfThen:    "if.then",
	LabelIfElse:    "if.else",
	LabelIfEnd:     "if.end",
	LabelForHead:   "for.head",
	LabelForBody:   "for.body",
	LabelForLatch:  "for.latch",
	LabelForExit:   "for.exit",
	LabelMatchArm:  "match.arm",
	LabelMatchEnd:  "match.end",
	LabelMerge:     "merge",
	LabelPropagate: "propagate",
	LabelOk:        "ok",
	LabelErr:       "err",
}

// Labeler generates unique, readable label names for one lowering session.
type Labeler struct {
	mu      sync.Mutex
	indices [labelKindCount]int
}

// NewLabeler returns a fresh label generator with every counter at zero.
func NewLabeler() *Labeler {
	return &Labeler{}
}

// New returns a new label name of the given kind, e.g. "if.then_000".
func (l *Labeler) New(kind LabelKind) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if kind < 0 || kind >= labelKindCount {
		return "# LABEL ERROR"
	}
	s := fmt.Sprintf("%s_%03d", labelPrefixes[kind], l.indices[kind])
	l.indices[kind]++
	return s
}

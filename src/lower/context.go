// Package lower translates an AST snapshot (SPEC §6.1, package astsnap) into
// one QTJIR graph per function/test declaration (SPEC §4.4), plus an
// Extern registry populated from any "use zig" foreign-module imports
// encountered along the way.
package lower

import (
	"fmt"

	"github.com/janus-lang/janus-sub005/src/astsnap"
	"github.com/janus-lang/janus-sub005/src/foreign"
	"github.com/janus-lang/janus-sub005/src/qtjir"
	"github.com/janus-lang/janus-sub005/src/registry"
	"github.com/janus-lang/janus-sub005/src/util"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// ScopeKind distinguishes the three scope shapes the lowerer pushes
// (SPEC §3.4).
type ScopeKind int

const (
	ScopeBlock ScopeKind = iota
	ScopeLoop
	ScopeFunction
)

// deferredCall is one LIFO-ordered action registered by a `defer` statement
// (SPEC §4.4.5): the callee's runtime name plus its already-lowered,
// captured-at-defer-time argument values.
type deferredCall struct {
	RuntimeName string
	Args        []uint32
}

// Scope is one layer of the lowering context's scope stack.
type Scope struct {
	Kind   ScopeKind
	Vars   map[string]uint32
	Defers []deferredCall
}

// errorVariant records one declared error type's ordinal variants, used to
// resolve `ErrorType.Variant` expressions (SPEC §4.4.4.3).
type errorVariant struct {
	Variants map[string]int64
}

// Context is the per-unit lowering scratch space (SPEC §3.4): the AST
// snapshot handle, the builder for the graph currently being populated,
// the AST-id -> graph-id memo table, the scope stack, loop-depth-keyed
// pending jump patches, and the three side sets marking slice/optional/
// error-union-typed graph values.
type Context struct {
	Snapshot  astsnap.Snapshot
	UnitID    int
	SourceDir string

	Builder *qtjir.Builder
	Labeler *util.Labeler

	Builtins *registry.Builtins
	Externs  *registry.Extern
	Parser   foreign.Parser

	NodeMap map[int]uint32

	scopes []*Scope

	LoopDepth       int
	BreakPatches    map[int][]uint32
	ContinuePatches map[int][]uint32

	sliceVals  map[uint32]bool
	optVals    map[uint32]bool
	errUnVals  map[uint32]bool

	errorDecls map[string]errorVariant
}

// ---------------------
// ----- functions -----
// ---------------------

// NewContext returns a Context ready to lower the graphs of one unit. The
// caller supplies shared, already-populated builtin and extern registries
// and a foreign-module parser for "use zig" ingestion.
func NewContext(snap astsnap.Snapshot, unitID int, sourceDir string, builtins *registry.Builtins, externs *registry.Extern, parser foreign.Parser) *Context {
	return &Context{
		Snapshot:        snap,
		UnitID:          unitID,
		SourceDir:       sourceDir,
		Labeler:         util.NewLabeler(),
		Builtins:        builtins,
		Externs:         externs,
		Parser:          parser,
		NodeMap:         make(map[int]uint32),
		BreakPatches:    make(map[int][]uint32),
		ContinuePatches: make(map[int][]uint32),
		sliceVals:       make(map[uint32]bool),
		optVals:         make(map[uint32]bool),
		errUnVals:       make(map[uint32]bool),
		errorDecls:      make(map[string]errorVariant),
	}
}

// resetForGraph rebinds the context to a freshly created graph/builder pair
// without losing the unit-wide extern/error-decl/builtin state, so one
// Context lowers every func_decl/test_decl of a unit in turn.
func (c *Context) resetForGraph(b *qtjir.Builder) {
	c.Builder = b
	c.NodeMap = make(map[int]uint32)
	c.scopes = nil
	c.LoopDepth = 0
	c.BreakPatches = make(map[int][]uint32)
	c.ContinuePatches = make(map[int][]uint32)
	c.sliceVals = make(map[uint32]bool)
	c.optVals = make(map[uint32]bool)
	c.errUnVals = make(map[uint32]bool)
}

// markSlice, markOptional and markErrorUnion record that graph id denotes a
// value of the respective domain type, so later expressions (index_expr,
// catch/try) can branch on the producer's shape instead of its opcode
// alone.
func (c *Context) markSlice(id uint32)      { c.sliceVals[id] = true }
func (c *Context) markOptional(id uint32)   { c.optVals[id] = true }
func (c *Context) markErrorUnion(id uint32) { c.errUnVals[id] = true }

func (c *Context) isSlice(id uint32) bool      { return c.sliceVals[id] }
func (c *Context) isErrorUnion(id uint32) bool { return c.errUnVals[id] }

// unit returns the snapshot's backing translation unit.
func (c *Context) unit() astsnap.Unit { return c.Snapshot.GetUnit(c.UnitID) }

// lexeme extracts a token's source text, preferring the token's own Text
// field (set directly by a producer that already knows the lexeme) and
// falling back to a zero-copy span extraction out of the unit's source
// buffer (SPEC §6.1).
func (c *Context) lexeme(tok astsnap.Token) string {
	if tok.Text != "" {
		return tok.Text
	}
	src := c.unit().Source
	if tok.Start < 0 || tok.End > len(src) || tok.Start > tok.End {
		return ""
	}
	return string(src[tok.Start:tok.End])
}

// node is a short alias for Snapshot.GetNode, used pervasively below.
func (c *Context) node(astID int) astsnap.ASTNode { return c.Snapshot.GetNode(astID) }

// children is a short alias for Snapshot.GetChildren.
func (c *Context) children(astID int) []int { return c.Snapshot.GetChildren(astID) }

// errf builds a consistently-formatted lowering error.
func errf(format string, args ...interface{}) error {
	return fmt.Errorf("lower: "+format, args...)
}

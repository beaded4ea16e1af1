// Package registry provides the Builtin and Extern registries described by
// SPEC §3.2 and §3.3: a static table mapping source-level callee names to
// runtime-call names, and a mutable-during-ingestion, read-only-thereafter
// map of externally declared function signatures.
package registry

import "fmt"

// ReturnKind classifies what a builtin call evaluates to, closing the
// enumeration per SPEC §9 "Sum types".
type ReturnKind int

const (
	ReturnVoid ReturnKind = iota
	ReturnInt
	ReturnFloat
	ReturnBool
	ReturnPtr
)

// BuiltinCategory buckets a builtin row by the kind of lowering it drives
// (SPEC §4.4.4.2): tensor/quantum/ssm rows switch tenancy and emit a typed
// opcode; assert rows lower to control flow; string-intrinsic rows fold at
// compile time; everything else emits a plain Call.
type BuiltinCategory int

const (
	CategoryRuntimeCall BuiltinCategory = iota
	CategoryTensor
	CategoryQuantum
	CategorySSM
	CategoryAssert
	CategoryStringDataIntrinsic
	CategoryStringLenIntrinsic
)

// BuiltinEntry is one row of the static builtin table.
type BuiltinEntry struct {
	SourceName  string
	RuntimeName string
	MinArgs     int
	MaxArgs     int // -1 means unbounded.
	ReturnKind  ReturnKind
	Category    BuiltinCategory
}

// builtinTable is the static, read-only-at-runtime table of builtin rows.
// It covers the runtime ABI symbols named in SPEC §6.4 plus the tensor,
// quantum, ssm, assert and string-intrinsic categories named in §4.4.4.2.
var builtinTable = []BuiltinEntry{
	{"print", "janus_print", 1, 1, ReturnVoid, CategoryRuntimeCall},
	{"println", "janus_println", 1, 1, ReturnVoid, CategoryRuntimeCall},
	{"print_int", "janus_print_int", 1, 1, ReturnVoid, CategoryRuntimeCall},
	{"print_float", "janus_print_float", 1, 1, ReturnVoid, CategoryRuntimeCall},
	{"panic", "janus_panic", 1, 1, ReturnVoid, CategoryRuntimeCall},

	{"string.create", "janus_string_create", 3, 3, ReturnPtr, CategoryRuntimeCall},
	{"string.concat", "janus_string_concat", 2, 2, ReturnPtr, CategoryRuntimeCall},
	{"string.concat_cstr", "janus_string_concat_cstr", 2, 2, ReturnPtr, CategoryRuntimeCall},
	{"string.len", "janus_string_len", 1, 1, ReturnInt, CategoryRuntimeCall},
	{"string.handle_len", "janus_string_handle_len", 1, 1, ReturnInt, CategoryRuntimeCall},
	{"string.eq", "janus_string_eq", 2, 2, ReturnBool, CategoryRuntimeCall},
	{"string.print", "janus_string_print", 1, 1, ReturnVoid, CategoryRuntimeCall},
	{"string.free", "janus_string_free", 2, 2, ReturnVoid, CategoryRuntimeCall},
	{"string.data", "", 1, 1, ReturnPtr, CategoryStringDataIntrinsic},
	{"string.length_of", "", 1, 1, ReturnInt, CategoryStringLenIntrinsic},

	{"file.read", "janus_readFile", 2, 2, ReturnPtr, CategoryRuntimeCall},
	{"file.write", "janus_writeFile", 3, 3, ReturnInt, CategoryRuntimeCall},

	{"vector.create", "janus_vector_create", 1, 1, ReturnPtr, CategoryRuntimeCall},
	{"vector.push", "janus_vector_push", 2, 2, ReturnInt, CategoryRuntimeCall},
	{"vector.get", "janus_vector_get", 2, 2, ReturnFloat, CategoryRuntimeCall},
	{"vector.len", "janus_vector_len", 1, 1, ReturnInt, CategoryRuntimeCall},
	{"vector.free", "janus_vector_free", 1, 1, ReturnVoid, CategoryRuntimeCall},

	{"allocator.default", "janus_default_allocator", 0, 0, ReturnPtr, CategoryRuntimeCall},
	{"cast.i32_to_i64", "janus_cast_i32_to_i64", 1, 1, ReturnInt, CategoryRuntimeCall},
	{"cast.i32_to_f64", "janus_cast_i32_to_f64", 1, 1, ReturnFloat, CategoryRuntimeCall},
	{"pow", "janus_pow", 2, 2, ReturnInt, CategoryRuntimeCall},

	{"assert", "", 1, 1, ReturnInt, CategoryAssert},

	{"tensor.matmul", "", 2, 2, ReturnPtr, CategoryTensor},
	{"tensor.conv", "", 2, 3, ReturnPtr, CategoryTensor},
	{"tensor.reduce", "", 1, 2, ReturnPtr, CategoryTensor},
	{"tensor.scalar_mul", "", 2, 2, ReturnPtr, CategoryTensor},
	{"tensor.contract", "", 2, 3, ReturnPtr, CategoryTensor},
	{"tensor.relu", "", 1, 1, ReturnPtr, CategoryTensor},
	{"tensor.softmax", "", 1, 1, ReturnPtr, CategoryTensor},

	{"ssm.scan", "", 2, 3, ReturnPtr, CategorySSM},
	{"ssm.selective_scan", "", 2, 4, ReturnPtr, CategorySSM},

	{"quantum.hadamard", "", 1, 1, ReturnVoid, CategoryQuantum},
	{"quantum.pauli_x", "", 1, 1, ReturnVoid, CategoryQuantum},
	{"quantum.pauli_y", "", 1, 1, ReturnVoid, CategoryQuantum},
	{"quantum.pauli_z", "", 1, 1, ReturnVoid, CategoryQuantum},
	{"quantum.rx", "", 2, 2, ReturnVoid, CategoryQuantum},
	{"quantum.ry", "", 2, 2, ReturnVoid, CategoryQuantum},
	{"quantum.rz", "", 2, 2, ReturnVoid, CategoryQuantum},
	{"quantum.cnot", "", 2, 2, ReturnVoid, CategoryQuantum},
	{"quantum.cz", "", 2, 2, ReturnVoid, CategoryQuantum},
	{"quantum.swap", "", 2, 2, ReturnVoid, CategoryQuantum},
	{"quantum.toffoli", "", 3, 3, ReturnVoid, CategoryQuantum},
	{"quantum.fredkin", "", 3, 3, ReturnVoid, CategoryQuantum},
	{"quantum.measure", "", 1, -1, ReturnInt, CategoryQuantum},
	{"hadamard", "", 1, 1, ReturnVoid, CategoryQuantum},
}

// Builtins is the read-only-at-runtime registry, keyed by SourceName, with
// a second index keyed by RuntimeName for call sites that only carry the
// lowered runtime symbol.
type Builtins struct {
	byName        map[string]BuiltinEntry
	byRuntimeName map[string]BuiltinEntry
}

// NewBuiltins returns a Builtins registry populated from the static table.
func NewBuiltins() *Builtins {
	m := make(map[string]BuiltinEntry, len(builtinTable))
	byRuntime := make(map[string]BuiltinEntry, len(builtinTable))
	for _, e := range builtinTable {
		m[e.SourceName] = e
		if e.RuntimeName != "" {
			byRuntime[e.RuntimeName] = e
		}
	}
	return &Builtins{byName: m, byRuntimeName: byRuntime}
}

// Lookup returns the builtin entry for name, if any.
func (b *Builtins) Lookup(name string) (BuiltinEntry, bool) {
	e, ok := b.byName[name]
	return e, ok
}

// LookupByRuntimeName returns the builtin entry whose RuntimeName equals
// name, if any. A lowered Call node's Data.Str holds the runtime symbol
// rather than the source-level callee name (SPEC §4.4.4.2), so emission
// recovers the entry's registered ReturnKind through this index instead of
// Lookup.
func (b *Builtins) LookupByRuntimeName(name string) (BuiltinEntry, bool) {
	e, ok := b.byRuntimeName[name]
	return e, ok
}

// CheckArity validates that n arguments is within [MinArgs, MaxArgs] for e,
// returning a SPEC §7 InvalidCall-shaped error if not.
func (e BuiltinEntry) CheckArity(n int) error {
	if n < e.MinArgs || (e.MaxArgs >= 0 && n > e.MaxArgs) {
		return fmt.Errorf("invalid call to %q: expected between %d and %d arguments, got %d", e.SourceName, e.MinArgs, e.MaxArgs, n)
	}
	return nil
}

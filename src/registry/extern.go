package registry

import "fmt"

// ExternType is the small closed vocabulary of LLVM type strings an
// extern-module signature may use (SPEC §3.2, §6.2).
type ExternType string

const (
	TypeI1     ExternType = "i1"
	TypeI32    ExternType = "i32"
	TypeI64    ExternType = "i64"
	TypeFloat  ExternType = "float"
	TypeDouble ExternType = "double"
	TypePtr    ExternType = "ptr"
	TypeVoid   ExternType = "void"
)

// ValidExternType reports whether t is one of the seven allowed type
// strings.
func ValidExternType(t ExternType) bool {
	switch t {
	case TypeI1, TypeI32, TypeI64, TypeFloat, TypeDouble, TypePtr, TypeVoid:
		return true
	default:
		return false
	}
}

// ExternFunction is one registered foreign-module function signature.
type ExternFunction struct {
	Name       string
	ParamTypes []ExternType
	ReturnType ExternType
	SourcePath string
}

// Extern is the registry of foreign-module function signatures, keyed by
// function name, plus the set of absolute source paths already ingested
// (SPEC §3.2, §4.4.8). Callers skip a path that Ingested reports before
// parsing it again.
type Extern struct {
	functions     map[string]ExternFunction
	ingestedPaths map[string]bool
}

// NewExtern returns an empty Extern registry.
func NewExtern() *Extern {
	return &Extern{
		functions:     make(map[string]ExternFunction),
		ingestedPaths: make(map[string]bool),
	}
}

// Ingested reports whether absPath has already been registered.
func (e *Extern) Ingested(absPath string) bool {
	return e.ingestedPaths[absPath]
}

// Register validates fn's types, adds it to the registry and marks its
// source path ingested. Every function of one module is registered under
// the same path; a name already present is replaced, so registering the
// same signature twice leaves the registry unchanged.
func (e *Extern) Register(fn ExternFunction) error {
	for _, t := range fn.ParamTypes {
		if !ValidExternType(t) {
			return fmt.Errorf("extern function %q: invalid parameter type %q", fn.Name, t)
		}
	}
	if !ValidExternType(fn.ReturnType) {
		return fmt.Errorf("extern function %q: invalid return type %q", fn.Name, fn.ReturnType)
	}
	e.functions[fn.Name] = fn
	e.ingestedPaths[fn.SourcePath] = true
	return nil
}

// MarkIngested records absPath as ingested without requiring a function to
// be registered (used when a module declares zero functions).
func (e *Extern) MarkIngested(absPath string) {
	e.ingestedPaths[absPath] = true
}

// Lookup returns the registered signature for name, if any.
func (e *Extern) Lookup(name string) (ExternFunction, bool) {
	fn, ok := e.functions[name]
	return fn, ok
}

// Len returns the number of registered functions, for idempotence tests.
func (e *Extern) Len() int { return len(e.functions) }

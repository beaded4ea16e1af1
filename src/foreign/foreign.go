// Package foreign defines the inbound foreign-module parser interface
// consumed by the extern-ingestion path of the lowerer (SPEC §6.2, §4.4.8).
// The real collaborator parses Zig source; that parser is out of scope for
// this module (SPEC §1). This package supplies the interface plus a
// minimal reference Parser reading a small declarative signature format,
// good enough to exercise ingestion in tests.
package foreign

import "github.com/janus-lang/janus-sub005/src/registry"

// Function is one foreign function signature discovered by a Parser.
type Function struct {
	Name       string
	ParamTypes []registry.ExternType
	ReturnType registry.ExternType
}

// Parser turns the contents of a foreign module into a list of function
// signatures (SPEC §6.2). Idempotency by absolute path is the caller's
// responsibility (registry.Extern.Ingested), not the parser's.
type Parser interface {
	Parse(sourcePath string, contents []byte) ([]Function, error)
}

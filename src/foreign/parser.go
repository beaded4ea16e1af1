package foreign

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/janus-lang/janus-sub005/src/registry"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// DeclParser is the reference Parser implementation. It reads a tiny
// declarative signature format, one function per line:
//
//	fn <name>(<type>, <type>, ...) -> <type>
//
// Blank lines and lines starting with "//" are ignored. Types are the
// seven strings registry.ValidExternType accepts. This is a stand-in for
// real Zig source parsing, which is out of scope (SPEC §1, §6.2).
type DeclParser struct{}

// NewDeclParser returns a reference foreign-module parser.
func NewDeclParser() DeclParser { return DeclParser{} }

// ---------------------
// ----- functions -----
// ---------------------

// Parse scans contents line by line, extracting one Function per "fn" line.
func (DeclParser) Parse(sourcePath string, contents []byte) ([]Function, error) {
	var fns []Function
	sc := bufio.NewScanner(bytes.NewReader(contents))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		fn, err := parseDeclLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", sourcePath, lineNo, err)
		}
		fns = append(fns, fn)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}
	return fns, nil
}

// parseDeclLine parses one "fn name(t1, t2) -> t" declaration.
func parseDeclLine(line string) (Function, error) {
	if !strings.HasPrefix(line, "fn ") {
		return Function{}, fmt.Errorf("expected line to start with %q, got %q", "fn ", line)
	}
	rest := strings.TrimSpace(line[len("fn "):])

	open := strings.IndexByte(rest, '(')
	close := strings.IndexByte(rest, ')')
	if open < 0 || close < 0 || close < open {
		return Function{}, fmt.Errorf("malformed parameter list in %q", line)
	}
	name := strings.TrimSpace(rest[:open])
	if name == "" {
		return Function{}, fmt.Errorf("missing function name in %q", line)
	}

	paramsStr := strings.TrimSpace(rest[open+1 : close])
	var params []registry.ExternType
	if paramsStr != "" {
		for _, p := range strings.Split(paramsStr, ",") {
			t := registry.ExternType(strings.TrimSpace(p))
			if !registry.ValidExternType(t) {
				return Function{}, fmt.Errorf("unknown parameter type %q", t)
			}
			params = append(params, t)
		}
	}

	tail := strings.TrimSpace(rest[close+1:])
	tail = strings.TrimPrefix(tail, "->")
	ret := registry.ExternType(strings.TrimSpace(tail))
	if !registry.ValidExternType(ret) {
		return Function{}, fmt.Errorf("unknown return type %q", ret)
	}

	return Function{Name: name, ParamTypes: params, ReturnType: ret}, nil
}

package lower

import (
	"github.com/janus-lang/janus-sub005/src/registry"
	"github.com/janus-lang/janus-sub005/src/util"
)

// extern.go implements `use zig "<relative-path>"` ingestion (SPEC §4.4.8):
// the first of lower_unit's two passes over a unit's top-level nodes.

// ingestUseZig resolves, reads and parses the foreign module named by a
// use_zig AST node, registering every discovered function signature into
// the shared Extern registry. I/O failures are reported as warnings, not
// fatal errors, matching "skip with a warning on I/O failure".
func (c *Context) ingestUseZig(astID int, warn func(string)) error {
	n := c.node(astID)
	kids := c.children(astID)
	if len(kids) == 0 {
		warn("use_zig node has no path literal child")
		return nil
	}
	pathTok := c.node(kids[0])
	raw := c.lexeme(c.Snapshot.GetToken(pathTok.FirstToken))
	path := unquote(raw)

	abs, contents, err := util.ReadForeignModuleSource(c.SourceDir, path)
	if err != nil {
		warn("use_zig: " + err.Error())
		return nil
	}
	if c.Externs.Ingested(abs) {
		return nil
	}

	fns, err := c.Parser.Parse(abs, contents)
	if err != nil {
		warn("use_zig: " + err.Error())
		c.Externs.MarkIngested(abs)
		return nil
	}
	if len(fns) == 0 {
		c.Externs.MarkIngested(abs)
		return nil
	}
	for _, fn := range fns {
		if err := c.Externs.Register(registry.ExternFunction{
			Name:       fn.Name,
			ParamTypes: fn.ParamTypes,
			ReturnType: fn.ReturnType,
			SourcePath: abs,
		}); err != nil {
			warn("use_zig: " + err.Error())
		}
	}
	_ = n
	return nil
}

// unquote strips a leading/trailing '"' pair from a raw string-literal
// lexeme, if present.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

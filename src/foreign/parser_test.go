package foreign_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/janus-lang/janus-sub005/src/foreign"
	"github.com/janus-lang/janus-sub005/src/registry"
)

func TestDeclParserParsesSignatures(t *testing.T) {
	p := foreign.NewDeclParser()
	src := []byte(`
// zig extern declarations
fn add(i32, i32) -> i32
fn log_message(ptr) -> void

fn noop() -> void
`)
	fns, err := p.Parse("mod.zig", src)
	require.NoError(t, err)
	require.Len(t, fns, 3)

	require.Equal(t, "add", fns[0].Name)
	require.Equal(t, []registry.ExternType{registry.TypeI32, registry.TypeI32}, fns[0].ParamTypes)
	require.Equal(t, registry.TypeI32, fns[0].ReturnType)

	require.Equal(t, "noop", fns[2].Name)
	require.Empty(t, fns[2].ParamTypes)
}

func TestDeclParserRejectsUnknownType(t *testing.T) {
	p := foreign.NewDeclParser()
	_, err := p.Parse("bad.zig", []byte("fn f(weird) -> i32\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad.zig:1")
}

func TestDeclParserRejectsMalformedLine(t *testing.T) {
	p := foreign.NewDeclParser()
	_, err := p.Parse("bad.zig", []byte("fn f i32\n"))
	require.Error(t, err)
}

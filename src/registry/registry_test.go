package registry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/janus-lang/janus-sub005/src/registry"
)

func TestBuiltinLookupAndArity(t *testing.T) {
	b := registry.NewBuiltins()
	e, ok := b.Lookup("print")
	require.True(t, ok)
	require.Equal(t, "janus_print", e.RuntimeName)
	require.NoError(t, e.CheckArity(1))
	require.Error(t, e.CheckArity(0))
	require.Error(t, e.CheckArity(2))
}

func TestBuiltinUnboundedMax(t *testing.T) {
	b := registry.NewBuiltins()
	e, ok := b.Lookup("quantum.measure")
	require.True(t, ok)
	require.NoError(t, e.CheckArity(1))
	require.NoError(t, e.CheckArity(50))
}

func TestExternRegistrationIsIdempotentPerPath(t *testing.T) {
	e := registry.NewExtern()
	fn := registry.ExternFunction{
		Name:       "zig_add",
		ParamTypes: []registry.ExternType{registry.TypeI32, registry.TypeI32},
		ReturnType: registry.TypeI32,
		SourcePath: "/abs/math.zig",
	}
	require.NoError(t, e.Register(fn))
	require.Equal(t, 1, e.Len())

	// Registering the same path again yields zero new signatures.
	require.NoError(t, e.Register(fn))
	require.Equal(t, 1, e.Len())
	require.True(t, e.Ingested("/abs/math.zig"))
}

func TestExternRejectsInvalidType(t *testing.T) {
	e := registry.NewExtern()
	err := e.Register(registry.ExternFunction{
		Name:       "bad",
		ParamTypes: []registry.ExternType{"i17"},
		ReturnType: registry.TypeVoid,
		SourcePath: "/abs/bad.zig",
	})
	require.Error(t, err)
}

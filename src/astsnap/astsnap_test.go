package astsnap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/janus-lang/janus-sub005/src/astsnap"
)

func TestBuilderRoundTripsUnitAndTokens(t *testing.T) {
	b := astsnap.NewBuilder()
	unitID := b.AddUnit("fn main() {}")
	tok := b.AddToken(astsnap.Token{Kind: astsnap.TokIdentifier, Text: "main", Start: 3, End: 7})

	snap := b.Build()
	require.Equal(t, []byte("fn main() {}"), snap.GetUnit(unitID).Source)
	require.Equal(t, "main", snap.GetToken(tok).Text)
}

func TestBuilderRoundTripsNodeChildren(t *testing.T) {
	b := astsnap.NewBuilder()
	lit := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindIntegerLit})
	ret := b.AddNode(astsnap.ASTNode{Kind: astsnap.KindReturnStmt}, lit)

	snap := b.Build()
	require.Equal(t, astsnap.KindReturnStmt, snap.GetNode(ret).Kind)
	require.Equal(t, []int{lit}, snap.GetChildren(ret))
}

func TestBuilderInternedStringRoundTrip(t *testing.T) {
	b := astsnap.NewBuilder()
	id := b.Intern("foo")
	snap := b.Build()
	require.Equal(t, "foo", snap.InternedString(id))
}

func TestBuilderInternedStringOutOfRangeIsEmpty(t *testing.T) {
	b := astsnap.NewBuilder()
	snap := b.Build()
	require.Equal(t, "", snap.InternedString(5))
}

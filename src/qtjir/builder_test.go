package qtjir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderMonotonicIDs(t *testing.T) {
	g := NewGraph("f")
	b := NewBuilder(g)

	a := b.CreateConstant(int64(1))
	c := b.CreateConstant(int64(2))
	require.Equal(t, uint32(0), a)
	require.Equal(t, uint32(1), c)
	require.Equal(t, 2, g.Len())
}

func TestCreateConstantOwnsStrings(t *testing.T) {
	g := NewGraph("f")
	b := NewBuilder(g)

	s := "hello"
	id := b.CreateConstant(s)
	// Mutate the source bytes; the graph's copy must be unaffected.
	bs := []byte(s)
	bs[0] = 'z'
	require.Equal(t, "hello", g.Node(id).Data.Str)
}

func TestTenancyInheritance(t *testing.T) {
	g := NewGraph("f")
	b := NewBuilder(g)

	prev := b.SetTenancy(NPUTensor)
	id := b.CreateConstant(int64(1))
	require.Equal(t, CPUSerial, prev)
	require.Equal(t, NPUTensor, g.Node(id).Tenancy)

	b.SetTenancy(prev)
	id2 := b.CreateConstant(int64(2))
	require.Equal(t, CPUSerial, g.Node(id2).Tenancy)
}

func TestBackpatchJumpAndBranch(t *testing.T) {
	g := NewGraph("f")
	b := NewBuilder(g)

	j := b.CreateJump(0)
	label := b.CreateLabel()
	b.PatchJumpTarget(j, label)
	require.Equal(t, label, g.Node(j).Inputs[0])

	br := b.CreateBranch(0, 0, 0)
	t1 := b.CreateLabel()
	t2 := b.CreateLabel()
	b.PatchBranchTargets(br, t1, t2)
	require.Equal(t, []uint32{0, t1, t2}, g.Node(br).Inputs)
}

func TestPhiIncomingAppendedAfterLatch(t *testing.T) {
	g := NewGraph("f")
	b := NewBuilder(g)

	start := b.CreateConstant(int64(0))
	phi := b.CreatePhi(start)
	require.Len(t, g.Node(phi).Inputs, 1)

	latchVal := b.CreateConstant(int64(1))
	b.AppendPhiIncoming(phi, latchVal)
	require.Equal(t, []uint32{start, latchVal}, g.Node(phi).Inputs)
}

func TestTensorMetadataCloneIsDeep(t *testing.T) {
	m := &TensorMetadata{Shape: []int{2, 3}, DType: DTypeF32}
	cp := m.Clone()
	cp.Shape[0] = 99
	require.Equal(t, 2, m.Shape[0])
}

func TestRemapDropsAndRenumbers(t *testing.T) {
	g := NewGraph("f")
	b := NewBuilder(g)

	a := b.CreateConstant(int64(1))
	dead := b.CreateConstant(int64(2))
	_ = dead
	c := b.CreateBinary(Add, a, a)
	ret := b.CreateReturn(c)

	keep := make([]bool, g.Len())
	keep[a] = true
	keep[c] = true
	keep[ret] = true
	g.Remap(keep)

	require.Equal(t, 3, g.Len())
	for i := range g.Nodes {
		require.Equal(t, uint32(i), g.Nodes[i].ID)
	}
	// The Add node's inputs must point at the renumbered Constant.
	var addNode *Node
	for i := range g.Nodes {
		if g.Nodes[i].Op == Add {
			addNode = &g.Nodes[i]
		}
	}
	require.NotNil(t, addNode)
	require.Equal(t, []uint32{0, 0}, addNode.Inputs)
}

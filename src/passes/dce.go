package passes

import "github.com/janus-lang/janus-sub005/src/qtjir"

// DeadCodeElimination marks liveness by reverse-DFS starting from every
// Return, every Call and every opcode isConcurrencySideEffect lists
// (stores, control flow, labels and concurrency operations), then
// physically removes unmarked nodes and renumbers the survivors, resolving
// SPEC §9's open question in favour of option (a): IDs are remapped so
// "node.id == index" keeps holding after removal (SPEC_FULL.md §D.2).
type DeadCodeElimination struct{}

func (DeadCodeElimination) Name() string { return "dce" }

func (DeadCodeElimination) Run(g *qtjir.Graph) bool {
	n := g.Len()
	if n == 0 {
		return false
	}
	live := make([]bool, n)

	var mark func(id uint32)
	mark = func(id uint32) {
		if !g.Valid(id) || live[id] {
			return
		}
		live[id] = true
		for _, in := range g.Node(id).Inputs {
			mark(in)
		}
	}

	for i := range g.Nodes {
		op := g.Nodes[i].Op
		if op == qtjir.Return || op == qtjir.Call || isConcurrencySideEffect(op) {
			mark(uint32(i))
		}
	}

	anyDead := false
	for _, alive := range live {
		if !alive {
			anyDead = true
			break
		}
	}
	if !anyDead {
		return false
	}
	g.Remap(live)
	return true
}

// isConcurrencySideEffect reports whether op has observable side effects
// even when its result is unused, so DCE never removes it.
func isConcurrencySideEffect(op qtjir.Opcode) bool {
	switch op {
	case qtjir.Store, qtjir.FieldStore, qtjir.Spawn, qtjir.NurseryBegin, qtjir.NurseryEnd,
		qtjir.ChannelSend, qtjir.ChannelClose, qtjir.AsyncCall, qtjir.Branch, qtjir.Jump, qtjir.Label:
		return true
	default:
		return false
	}
}

package transform

import "github.com/janus-lang/janus-sub005/src/qtjir"

// Pass is a single rewrite pass over a graph.
type Pass interface {
	Name() string
	Run(g *qtjir.Graph) bool // returns true if the graph changed.
}

// defaultMaxIterations bounds the pass manager's fixed-point loop. It is a
// design knob (SPEC §4.3), not an invariant: raising it never changes
// correctness, only how long the manager keeps looking for more work.
const defaultMaxIterations = 10

// Manager stores an ordered list of passes and drives them to a fixed
// point, repeating the full pass list until a round makes no change.
type Manager struct {
	Passes        []Pass
	MaxIterations int
}

// NewManager returns a Manager with the default iteration bound.
func NewManager(passes ...Pass) *Manager {
	return &Manager{Passes: passes, MaxIterations: defaultMaxIterations}
}

// Run repeats "for each pass: changed |= pass.Run(graph)" until no pass
// reports change or MaxIterations is reached, returning the total number of
// iterations actually performed.
func (m *Manager) Run(g *qtjir.Graph) int {
	max := m.MaxIterations
	if max <= 0 {
		max = defaultMaxIterations
	}
	ran := 0
	for ran < max {
		changed := false
		for _, p := range m.Passes {
			if p.Run(g) {
				changed = true
			}
		}
		ran++
		if !changed {
			break
		}
	}
	return ran
}

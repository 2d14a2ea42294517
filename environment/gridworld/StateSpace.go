package gridworld

import "github.com/intdogs/roombarl/environment"

// StateSpace enumerates every state of a grid together with the actions
// available in it. Every cell lists all nine actions; boundary validity
// is applied later when a policy is derived.
type StateSpace struct {
	spec  environment.Spec
	cells []environment.Position
}

// NewStateSpace returns the state space of the grid described by spec
func NewStateSpace(spec environment.Spec) *StateSpace {
	return &StateSpace{spec: spec, cells: spec.Cells()}
}

// Spec returns the grid geometry of the state space
func (s *StateSpace) Spec() environment.Spec {
	return s.spec
}

// Positions returns every cell. The returned slice must not be modified.
func (s *StateSpace) Positions() []environment.Position {
	return s.cells
}

// Actions returns the actions listed for pos
func (s *StateSpace) Actions(pos environment.Position) []Action {
	if !s.spec.Contains(pos) {
		return nil
	}
	return Actions[:]
}

// Len returns the number of states
func (s *StateSpace) Len() int {
	return len(s.cells)
}

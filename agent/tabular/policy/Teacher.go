package policy

import (
	"math/rand/v2"
	"slices"

	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/environment/pellet"
	"github.com/intdogs/roombarl/utils/floatutils"
)

// Teacher knows the actions that maximise expected pellet capture in
// every cell. It stands in for a human who knows where pellets appear.
type Teacher struct {
	best map[environment.Position][]gridworld.Action
}

// NewTeacher returns the Teacher of an ExpectedTable. Every action that
// ties for the maximum expected capture of a cell is optimal there.
func NewTeacher(table *pellet.ExpectedTable) *Teacher {
	spec := table.Spec()
	best := make(map[environment.Position][]gridworld.Action,
		spec.NumCells())

	for _, cell := range spec.Cells() {
		row, err := table.Row(cell)
		if err != nil {
			continue
		}
		_, indices := floatutils.MaxSlice(row)

		actions := make([]gridworld.Action, len(indices))
		for i, idx := range indices {
			actions[i] = gridworld.Action(idx)
		}
		best[cell] = actions
	}

	return &Teacher{best}
}

// BestActions returns the optimal actions at pos. Cells unknown to the
// Teacher only have NoMove.
func (t *Teacher) BestActions(pos environment.Position) []gridworld.Action {
	if actions, ok := t.best[pos]; ok {
		return slices.Clone(actions)
	}
	return []gridworld.Action{gridworld.NoMove}
}

// IsOptimal returns whether a is an optimal action at pos
func (t *Teacher) IsOptimal(pos environment.Position, a gridworld.Action) bool {
	return slices.Contains(t.BestActions(pos), a)
}

// ShouldDrag returns whether a teacher would step in to stop an agent
// taking a at pos: dragging must be allowed, a draw with probability
// teachEps must succeed, and a must be a non-optimal move.
func (t *Teacher) ShouldDrag(pos environment.Position, a gridworld.Action,
	allowed bool, teachEps float64, rng *rand.Rand) bool {
	if !allowed || rng.Float64() >= teachEps {
		return false
	}
	return a != gridworld.NoMove && !t.IsOptimal(pos, a)
}

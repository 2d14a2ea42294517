// Package policy implements policies derived from a tabular
// action-value function
package policy

import (
	"math"
	"math/rand/v2"

	"github.com/intdogs/roombarl/agent/tabular/qtable"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
)

// Policy maps each cell to the action taken there
type Policy map[environment.Position]gridworld.Action

// Action returns the action of the policy at pos
func (p Policy) Action(pos environment.Position) (gridworld.Action, bool) {
	a, ok := p[pos]
	return a, ok
}

// Derive returns the greedy policy of q over every state of space.
//
// Only actions that keep the agent on the grid are considered, and
// entries that were never written never compete. Ties for the maximum
// are accumulated as the actions are scanned in order and broken
// uniformly at random with rng, so two calls may disagree wherever
// there is a tie. A cell with no written entry gets Up.
func Derive(q *qtable.QTable, space *gridworld.StateSpace,
	rng *rand.Rand) Policy {
	spec := space.Spec()
	p := make(Policy, space.Len())
	for _, pos := range space.Positions() {
		p[pos] = GreedyAction(q, spec, pos, space.Actions(pos), rng)
	}
	return p
}

// GreedyAction returns the greedy action among actions at pos
func GreedyAction(q *qtable.QTable, spec environment.Spec,
	pos environment.Position, actions []gridworld.Action,
	rng *rand.Rand) gridworld.Action {
	best := math.Inf(-1)
	bestAction := gridworld.Up
	var ties []gridworld.Action

	for _, a := range actions {
		if !gridworld.Valid(spec, pos, a) {
			continue
		}
		v, ok := q.Get(pos, a)
		if !ok {
			continue
		}

		if v == best {
			ties = append(ties, a)
		} else if v > best {
			best = v
			bestAction = a
			ties = []gridworld.Action{a}
		}
	}

	if len(ties) > 1 {
		return ties[rng.IntN(len(ties))]
	}
	return bestAction
}

// Greedy is the greedy policy with respect to a QTable. The Learner and
// the Greedy policy of an agent share the same table so that updates
// are reflected in the actions chosen.
type Greedy struct {
	q     *qtable.QTable
	space *gridworld.StateSpace
	rng   *rand.Rand
}

// NewGreedy returns a new Greedy policy over q
func NewGreedy(q *qtable.QTable, space *gridworld.StateSpace,
	seed uint64) *Greedy {
	return &Greedy{q, space, rand.New(rand.NewPCG(seed, seed>>1))}
}

// Derive returns a freshly derived policy
func (g *Greedy) Derive() Policy {
	return Derive(g.q, g.space, g.rng)
}

// Spec returns the grid geometry of the policy
func (g *Greedy) Spec() environment.Spec {
	return g.space.Spec()
}

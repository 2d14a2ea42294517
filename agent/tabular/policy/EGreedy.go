package policy

import (
	"fmt"
	"math/rand/v2"

	"github.com/intdogs/roombarl/agent/random"
	"github.com/intdogs/roombarl/agent/tabular/qtable"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"gonum.org/v1/gonum/stat/distuv"
)

// EGreedy implements an ε-greedy policy over a QTable. With
// probability ε a uniformly random on-grid move is taken, otherwise the
// action of a freshly derived greedy policy.
type EGreedy struct {
	*Greedy
	epsilon float64
	explore distuv.Bernoulli
	rng     *rand.Rand
}

// NewEGreedy constructs a new EGreedy policy, where e=epsilon is the
// probability with which a random move is selected
func NewEGreedy(e float64, q *qtable.QTable, space *gridworld.StateSpace,
	seed uint64) (*EGreedy, error) {
	if e < 0 || e > 1 {
		return nil, fmt.Errorf("newEGreedy: epsilon %v not in [0, 1]", e)
	}

	src := rand.NewPCG(seed, seed^0x5851f42d4c957f2d)
	return &EGreedy{
		Greedy:  NewGreedy(q, space, seed),
		epsilon: e,
		explore: distuv.Bernoulli{P: e, Src: src},
		rng:     rand.New(src),
	}, nil
}

// Epsilon returns the exploration probability
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// SelectMove returns the displacement of the next move from pos
func (p *EGreedy) SelectMove(pos environment.Position) (dx, dy int) {
	spec := p.Spec()
	if p.explore.Rand() == 1 {
		return random.Move(spec, pos, p.rng)
	}

	a, ok := p.Derive().Action(pos)
	if !ok {
		return random.Move(spec, pos, p.rng)
	}
	return a.Displacement()
}

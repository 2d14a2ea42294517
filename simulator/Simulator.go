// Package simulator estimates how many pellets a policy collects by
// rolling it out against the expected pellet capture of each move.
package simulator

import (
	"fmt"
	"math/rand/v2"

	"github.com/intdogs/roombarl/agent/tabular/policy"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/environment/pellet"
	"gonum.org/v1/gonum/stat"
)

// Default rollout sizes
const (
	DefaultRollouts = 100
	DefaultHorizon  = 30
)

// Result is the expected value of one agent's policy
type Result struct {
	AgentID       int     `json:"agentid"`
	ExpectedValue float64 `json:"ExpectedQvalue"`
}

// Simulator rolls policies out over an ExpectedTable. It never changes
// the policies it evaluates.
type Simulator struct {
	table    *pellet.ExpectedTable
	starter  environment.Starter
	rng      *rand.Rand
	rollouts int
	horizon  int
}

// Option configures a Simulator
type Option func(*Simulator)

// WithRollouts sets the number of rollouts and the number of steps in
// each
func WithRollouts(rollouts, horizon int) Option {
	return func(s *Simulator) {
		s.rollouts, s.horizon = rollouts, horizon
	}
}

// New returns a Simulator whose rollouts start at uniformly random
// cells
func New(table *pellet.ExpectedTable, seed uint64, opts ...Option) *Simulator {
	s := &Simulator{
		table:    table,
		starter:  environment.NewUniformStarter(table.Spec(), seed+1),
		rng:      rand.New(rand.NewPCG(seed, seed<<1)),
		rollouts: DefaultRollouts,
		horizon:  DefaultHorizon,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate returns the expected number of pellets p collects summed
// over every rollout
func (s *Simulator) Simulate(p policy.Policy) (float64, error) {
	returns, err := s.Rollouts(p)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, r := range returns {
		total += r
	}
	return total, nil
}

// Summary returns the mean and standard deviation of the expected
// capture of a single rollout
func (s *Simulator) Summary(p policy.Policy) (mean, std float64, err error) {
	returns, err := s.Rollouts(p)
	if err != nil {
		return 0, 0, err
	}
	mean, std = stat.MeanStdDev(returns, nil)
	return mean, std, nil
}

// Rollouts returns the expected capture of each rollout.
//
// Where p chooses NoMove, or a move that would leave the grid, a
// uniformly random move that keeps the agent on the grid is taken
// instead. A policy with no action for a visited cell is an error.
func (s *Simulator) Rollouts(p policy.Policy) ([]float64, error) {
	spec := s.table.Spec()
	returns := make([]float64, s.rollouts)

	for i := range returns {
		pos := s.starter.Start()
		for step := 0; step < s.horizon; step++ {
			a, ok := p.Action(pos)
			if !ok {
				return nil, fmt.Errorf("rollouts: no action at %v", pos)
			}

			if a == gridworld.NoMove || !gridworld.Valid(spec, pos, a) {
				moves := gridworld.ValidMoves(spec, pos)
				if len(moves) == 0 {
					return nil, fmt.Errorf("rollouts: no move from %v", pos)
				}
				a = moves[s.rng.IntN(len(moves))]
			}

			v, err := s.table.Find(pos, a)
			if err != nil {
				return nil, fmt.Errorf("rollouts: %w", err)
			}
			returns[i] += v
			pos = pos.Add(a.Displacement())
		}
	}

	return returns, nil
}

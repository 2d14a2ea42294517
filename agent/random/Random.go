// Package random implements an agent that moves uniformly at random
package random

import (
	"fmt"
	"math/rand/v2"

	"github.com/intdogs/roombarl/agent"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/trajectory"
)

func init() {
	agent.Register(agent.Random, Config{})
}

// Random selects a uniformly random move that keeps the agent on the
// grid. It never learns.
type Random struct {
	id   int
	spec environment.Spec
	rng  *rand.Rand
}

// New returns a new Random agent
func New(id int, spec environment.Spec, seed uint64) *Random {
	return &Random{
		id:   id,
		spec: spec,
		rng:  rand.New(rand.NewPCG(seed, uint64(id))),
	}
}

// ID implements the agent.Agent interface
func (r *Random) ID() int {
	return r.id
}

// SelectMove implements the agent.Agent interface
func (r *Random) SelectMove(pos environment.Position, _ []environment.Point,
	_ *trajectory.GlobalState) (dx, dy int) {
	return Move(r.spec, pos, r.rng)
}

// Observe implements the agent.Agent interface. Trajectories are
// ignored.
func (r *Random) Observe(*trajectory.Trajectory) error {
	return nil
}

// Move returns the displacement of a uniformly random move from pos
// that lands on the grid. If no such move exists, pos is off the grid
// and Move returns the displacement that brings the agent back to the
// bottom-right corner of the grid.
func Move(spec environment.Spec, pos environment.Position,
	rng *rand.Rand) (dx, dy int) {
	moves := make([]gridworld.Action, 0, gridworld.NumActions-1)
	for _, a := range gridworld.Actions {
		if a == gridworld.NoMove {
			continue
		}
		if spec.Contains(pos.Add(a.Displacement())) {
			moves = append(moves, a)
		}
	}

	if len(moves) == 0 {
		return -(pos.X - spec.Width + spec.AgentWidth),
			-(pos.Y - spec.Height + spec.AgentHeight)
	}
	return moves[rng.IntN(len(moves))].Displacement()
}

// Config configures a Random agent
type Config struct{}

// CreateAgent implements the agent.Config interface
func (c Config) CreateAgent(id int, env agent.Env,
	seed uint64) (agent.Agent, error) {
	if err := env.Spec.Validate(); err != nil {
		return nil, fmt.Errorf("createAgent: %w", err)
	}
	return New(id, env.Spec, seed), nil
}

// ValidAgent implements the agent.Config interface
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*Random)
	return ok
}

// Validate implements the agent.Config interface
func (c Config) Validate() error {
	return nil
}

// Type implements the agent.Config interface
func (c Config) Type() agent.Type {
	return agent.Random
}

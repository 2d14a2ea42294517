// Package agent defines the interfaces of the agents that move on the
// grid and the typed configurations that create them.
package agent

import (
	"context"

	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/trajectory"
)

// Agent drives a single agent on the grid.
//
// The host asks the Agent for its next move with SelectMove and reports
// every move and drag that happened to the agent with Observe.
type Agent interface {
	// ID returns the index of the agent in global state snapshots
	ID() int

	// SelectMove returns the displacement of the agent's next move
	SelectMove(pos environment.Position, pellets []environment.Point,
		state *trajectory.GlobalState) (dx, dy int)

	// Observe records a trajectory of the agent
	Observe(t *trajectory.Trajectory) error
}

// Learner is an Agent that learns from the trajectories it observes.
//
// Observed trajectories are queued and learned from by Drain, which
// returns once the queue has been empty for a short grace period.
type Learner interface {
	Agent

	// Drain performs every pending update. Errors from individual
	// trajectories are joined and returned after the queue is drained.
	Drain(ctx context.Context) error

	// Learning returns whether a Drain is in progress
	Learning() bool
}

// Evaluator is an Agent whose behaviour can be scored against the
// pellet model
type Evaluator interface {
	Agent

	// SimulateActions returns the expected number of pellets collected
	// by the agent's current greedy policy
	SimulateActions() (float64, error)

	// BestActions returns the actions that are optimal at pos
	BestActions(pos environment.Position) []gridworld.Action

	// IsOptimalAction returns whether a is optimal at pos
	IsOptimalAction(pos environment.Position, a gridworld.Action) bool
}

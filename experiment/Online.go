package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/intdogs/roombarl/agent"
	"github.com/intdogs/roombarl/agent/tabular/policy"
	"github.com/intdogs/roombarl/agent/tabular/qlearning"
	"github.com/intdogs/roombarl/datalog"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/environment/pellet"
	"github.com/intdogs/roombarl/experiment/checkpointer"
	"github.com/intdogs/roombarl/experiment/tracker"
	"github.com/intdogs/roombarl/trajectory"
)

// Online is an Experiment that runs agents online on a GridWorld. A
// simulated teacher who knows the pellet model stops agents about to
// make a suboptimal move and drops them elsewhere.
type Online struct {
	world   *gridworld.GridWorld
	agents  []agent.Agent
	params  Parameters
	grid    *pellet.Grid
	teacher *policy.Teacher
	log     *datalog.Log
	rng     *rand.Rand

	dropMode         DropMode
	interventionStop int

	ender        environment.Ender
	currentSteps int

	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer
	logger        *slog.Logger
}

// stepper is a Learner that can perform its updates one at a time
type stepper interface {
	Step() (bool, error)
}

// NewOnline creates and returns a new online experiment running agents
// on world. Agent i moves agent i of the world. Every trajectory is
// recorded in log.
func NewOnline(c Config, world *gridworld.GridWorld, agents []agent.Agent,
	log *datalog.Log, seed uint64, opts ...Option) (*Online, error) {
	if len(agents) != world.NumAgents() {
		return nil, fmt.Errorf("newOnline: %d agents for %d agents on the "+
			"grid", len(agents), world.NumAgents())
	}
	if log.NumAgents() != len(agents) {
		return nil, fmt.Errorf("newOnline: log has %d agents, want %d",
			log.NumAgents(), len(agents))
	}
	for i, a := range agents {
		if a.ID() != i {
			return nil, fmt.Errorf("newOnline: agent %d has id %d", i, a.ID())
		}
	}
	o := buildOptions(opts)

	model, err := c.Parameters.Pellet().Model(world.Spec())
	if err != nil {
		return nil, fmt.Errorf("newOnline: %w", err)
	}
	grid := pellet.NewGrid(world.Spec(), model)

	var checks []checkpointer.Checkpointer
	if o.checkpointEvery > 0 {
		for _, a := range agents {
			s, ok := a.(checkpointer.Serializable)
			if !ok {
				continue
			}
			names := checkpointer.AgentFilenames(o.checkpointDir, a.ID(),
				o.checkpointExt)
			check, err := checkpointer.NewNStep(o.checkpointEvery, s, names)
			if err != nil {
				return nil, fmt.Errorf("newOnline: %w", err)
			}
			checks = append(checks, check)
		}
	}

	return &Online{
		world:            world,
		agents:           agents,
		params:           c.Parameters,
		grid:             grid,
		teacher:          policy.NewTeacher(pellet.NewExpectedTable(grid)),
		log:              log,
		rng:              rand.New(rand.NewPCG(seed, seed^0x5bd1e995)),
		dropMode:         c.DropMode,
		interventionStop: c.InterventionStop,
		ender:            environment.NewStepLimit(c.MaxSteps),
		trackers:         o.trackers,
		checkpointers:    checks,
		logger:           o.logger,
	}, nil
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// Agents returns the agents of the experiment
func (o *Online) Agents() []agent.Agent {
	return o.agents
}

// Log returns the log of every trajectory recorded so far
func (o *Online) Log() *datalog.Log {
	return o.log
}

// World returns the grid the agents move on
func (o *Online) World() *gridworld.GridWorld {
	return o.world
}

// Steps returns the number of steps run
func (o *Online) Steps() int {
	return o.currentSteps
}

// Step runs a single step: every agent moves or is stopped by the
// teacher, then every learner learns from what happened
func (o *Online) Step(ctx context.Context) (bool, error) {
	if o.ender.End(o.currentSteps) {
		return true, nil
	}
	o.currentSteps++
	o.world.Tick()

	var recorded []*trajectory.Trajectory
	for i, a := range o.agents {
		trajs, err := o.move(i, a)
		if err != nil {
			return false, fmt.Errorf("step %d: %w", o.currentSteps, err)
		}

		for _, t := range trajs {
			if err := a.Observe(t); err != nil {
				return false, fmt.Errorf("step %d: %w", o.currentSteps, err)
			}
			if err := o.log.Add(t); err != nil {
				return false, fmt.Errorf("step %d: %w", o.currentSteps, err)
			}
		}
		recorded = append(recorded, trajs...)
	}

	for _, a := range o.agents {
		if err := o.learn(ctx, a); err != nil {
			return false, fmt.Errorf("step %d: %w", o.currentSteps, err)
		}
	}

	if err := o.track(recorded); err != nil {
		return false, err
	}
	if err := o.checkpoint(); err != nil {
		return false, err
	}
	return o.ender.End(o.currentSteps), nil
}

// Run runs the entire experiment for all steps
func (o *Online) Run(ctx context.Context) error {
	for {
		ended, err := o.Step(ctx)
		if err != nil {
			return err
		}
		if ended {
			return nil
		}
	}
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	var errs []error
	for _, t := range o.trackers {
		errs = append(errs, t.Save())
	}
	return errors.Join(errs...)
}

// move asks agent i for its move and carries it out, unless the teacher
// intervenes
func (o *Online) move(i int, a agent.Agent) ([]*trajectory.Trajectory,
	error) {
	pos := o.world.Position(i)
	dx, dy := a.SelectMove(pos, o.world.Pellets(), o.world.State())
	to := pos.Add(dx, dy)
	if !o.world.Spec().Contains(to) {
		o.logger.Warn("agent chose a move off the grid", "agent", i,
			"pos", pos, "dx", dx, "dy", dy)
		to = pos
	}

	action := gridworld.InferActionBetween(pos, to)
	if o.teacher.ShouldDrag(pos, action, o.dragAllowed(i),
		o.params.TeachEps, o.rng) {
		drop := o.dropMode.Drop(o.grid, pos, o.rng)
		cancelled, drag, err := o.world.Intervene(i, to, drop)
		if err != nil {
			return nil, err
		}
		o.logger.Debug("teacher intervened", "agent", i, "from", pos,
			"try", to, "drop", drop)
		return []*trajectory.Trajectory{cancelled, drag}, nil
	}

	t, err := o.world.Move(i, to)
	if err != nil {
		return nil, err
	}
	return []*trajectory.Trajectory{t}, nil
}

func (o *Online) dragAllowed(i int) bool {
	if o.interventionStop > 0 && o.currentSteps > o.interventionStop {
		return false
	}
	return o.params.Draggable(i)
}

// learn performs every pending update of a learning agent. Errors from
// individual trajectories are logged and do not stop the experiment.
func (o *Online) learn(ctx context.Context, a agent.Agent) error {
	switch l := a.(type) {
	case stepper:
		for {
			stepped, err := l.Step()
			if !stepped {
				return nil
			}
			if qlearning.Fatal(err) {
				o.logger.Error("could not learn from trajectory",
					"agent", a.ID(), "err", err)
			}
		}

	case agent.Learner:
		if err := l.Drain(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.logger.Error("drain finished with errors", "agent", a.ID(),
				"err", err)
		}
	}
	return nil
}

// track sends the current step to every Tracker
func (o *Online) track(recorded []*trajectory.Trajectory) error {
	scores := make([]float64, o.world.NumAgents())
	for i := range scores {
		scores[i] = o.world.Score(i)
	}

	s := tracker.Step{
		Number:       o.currentSteps,
		Agents:       o.agents,
		Trajectories: recorded,
		Scores:       scores,
	}
	for _, t := range o.trackers {
		if err := t.Track(s); err != nil {
			return fmt.Errorf("track: %w", err)
		}
	}
	return nil
}

// checkpoint saves the current state of all agents that are due
func (o *Online) checkpoint() error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(o.currentSteps); err != nil {
			return err
		}
	}
	return nil
}

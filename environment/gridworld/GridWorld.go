package gridworld

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/trajectory"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultPelletSize is the side length of a pellet relative to a cell
const DefaultPelletSize = 0.25

// PelletSource samples the location of a new pellet
type PelletSource interface {
	Sample() environment.Point
}

// Config configures a GridWorld
type Config struct {
	Spec      environment.Spec
	NumAgents int

	// PelletFeedback is the feedback for each pellet collected by a move
	PelletFeedback float64

	// ExpectedPelletTime is the mean number of steps between pellet
	// spawns. Spawn times are exponentially distributed.
	ExpectedPelletTime float64

	PelletSize float64
}

// Validate returns an error if the Config is not usable
func (c Config) Validate() error {
	if err := c.Spec.Validate(); err != nil {
		return err
	}
	if c.NumAgents < 1 {
		return fmt.Errorf("validate: need at least one agent, got %d",
			c.NumAgents)
	}
	if c.ExpectedPelletTime <= 0 {
		return fmt.Errorf("validate: expected pellet time must be positive")
	}
	if c.PelletSize <= 0 || c.PelletSize > 1 {
		return fmt.Errorf("validate: pellet size must be in (0, 1]")
	}
	return nil
}

// GridWorld is an offline stand-in for the host: agents move on the
// grid, pellets spawn from a PelletSource, and every move or drag is
// reported as a trajectory.Trajectory with start and end snapshots.
//
// Time is measured in steps. One call to Tick advances the clock by a
// single step.
type GridWorld struct {
	cfg     Config
	starter environment.Starter
	source  PelletSource
	arrival distuv.Exponential

	agents  []environment.Position
	pellets []environment.Point
	scores  []float64
	total   int

	steps     int
	nextSpawn float64
	epoch     time.Time
}

// New creates a new GridWorld. Agents start at cells drawn from
// starter.
func New(cfg Config, starter environment.Starter, source PelletSource,
	seed uint64) (*GridWorld, error) {
	if cfg.PelletSize == 0 {
		cfg.PelletSize = DefaultPelletSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	g := &GridWorld{
		cfg:     cfg,
		starter: starter,
		source:  source,
		arrival: distuv.Exponential{
			Rate: 1 / cfg.ExpectedPelletTime,
			Src:  rand.NewPCG(seed, seed+7),
		},
		epoch: time.Unix(0, 0).UTC(),
	}
	g.Reset()
	return g, nil
}

// Reset places every agent at a new starting cell and clears pellets
// and scores
func (g *GridWorld) Reset() {
	g.agents = make([]environment.Position, g.cfg.NumAgents)
	for i := range g.agents {
		g.agents[i] = g.starter.Start()
	}
	g.pellets = g.pellets[:0]
	g.scores = make([]float64, g.cfg.NumAgents)
	g.total = 0
	g.steps = 0
	g.nextSpawn = g.spawnDelay()
}

// Spec returns the grid geometry
func (g *GridWorld) Spec() environment.Spec {
	return g.cfg.Spec
}

// NumAgents returns the number of agents on the grid
func (g *GridWorld) NumAgents() int {
	return len(g.agents)
}

// Position returns the cell of an agent
func (g *GridWorld) Position(agent int) environment.Position {
	return g.agents[agent]
}

// Pellets returns the locations of the uncollected pellets
func (g *GridWorld) Pellets() []environment.Point {
	return append([]environment.Point(nil), g.pellets...)
}

// Score returns the accumulated feedback of an agent
func (g *GridWorld) Score(agent int) float64 {
	return g.scores[agent]
}

// Steps returns the number of Ticks since the last Reset
func (g *GridWorld) Steps() int {
	return g.steps
}

// Now returns the simulated wall clock, one second per step
func (g *GridWorld) Now() time.Time {
	return g.epoch.Add(time.Duration(g.steps) * time.Second)
}

// State returns a snapshot of the grid
func (g *GridWorld) State() *trajectory.GlobalState {
	agents := make([]environment.Point, len(g.agents))
	for i, a := range g.agents {
		agents[i] = a.Point()
	}

	return &trajectory.GlobalState{
		AgentPos:      agents,
		PelletPos:     g.Pellets(),
		AgentSelfMove: make([]bool, len(g.agents)),
		AgentDrag:     -1,
		AgentScores:   append([]float64(nil), g.scores...),
		TotNumPellets: g.total,
	}
}

// Tick advances the clock by one step and spawns any pellets that are
// due
func (g *GridWorld) Tick() {
	g.steps++
	for g.nextSpawn <= float64(g.steps) {
		g.pellets = append(g.pellets, g.source.Sample())
		g.total++
		g.nextSpawn += g.spawnDelay()
	}
}

// Move moves an agent to an adjacent cell on its own and returns the
// completed trajectory. The feedback of the trajectory is the pellet
// feedback earned at the destination.
func (g *GridWorld) Move(agent int, to environment.Position) (
	*trajectory.Trajectory, error) {
	if err := g.checkMove(agent, to); err != nil {
		return nil, fmt.Errorf("move: %w", err)
	}

	traj := trajectory.New(agent, g.agents[agent], g.State(), g.Now())
	g.agents[agent] = to
	fb := g.collect(agent)

	traj.Feedback = trajectory.Ptr(fb)
	traj.GotPellet = fb > 0
	traj.Finish(to, g.State(), g.Now())
	return traj, nil
}

// Intervene simulates a human stopping an agent that was about to move
// to try and dropping it at drop instead. It returns the cancelled
// self-move and the drag trajectory. The drag's feedback is the pellet
// feedback earned at the drop cell.
func (g *GridWorld) Intervene(agent int, try, drop environment.Position) (
	cancelled, drag *trajectory.Trajectory, err error) {
	if err := g.checkMove(agent, try); err != nil {
		return nil, nil, fmt.Errorf("intervene: %w", err)
	}
	if !g.cfg.Spec.Contains(drop) {
		return nil, nil, fmt.Errorf("intervene: drop cell %v off grid", drop)
	}

	start := g.agents[agent]
	startState := g.State()
	cancelled = trajectory.New(agent, start, startState, g.Now())
	cancelled.Cancelled = true
	cancelled.Try = trajectory.Ptr(try)

	drag = trajectory.New(agent, start, startState, g.Now())
	drag.WasDrag = true

	g.agents[agent] = drop
	fb := g.collect(agent)

	drag.Feedback = trajectory.Ptr(fb)
	drag.GotPellet = fb > 0
	drag.Finish(drop, g.State(), g.Now())

	cancelled.CurState = drag.CurState
	cancelled.EndTime = trajectory.Ptr(g.Now())
	return cancelled, drag, nil
}

func (g *GridWorld) checkMove(agent int, to environment.Position) error {
	if agent < 0 || agent >= len(g.agents) {
		return fmt.Errorf("no agent %d", agent)
	}
	if !g.cfg.Spec.Contains(to) {
		return fmt.Errorf("cell %v off grid", to)
	}
	from := g.agents[agent]
	if abs(to.X-from.X) > 1 || abs(to.Y-from.Y) > 1 {
		return fmt.Errorf("cell %v not adjacent to %v", to, from)
	}
	return nil
}

// collect removes the pellets overlapping an agent and returns the
// feedback earned
func (g *GridWorld) collect(agent int) float64 {
	pos := g.agents[agent]
	aw := float64(g.cfg.Spec.AgentWidth)
	ah := float64(g.cfg.Spec.AgentHeight)
	size := g.cfg.PelletSize

	agentX := float64(pos.X) + aw/2
	agentY := float64(pos.Y) + ah/2

	kept := g.pellets[:0]
	collected := 0
	for _, p := range g.pellets {
		dx := math.Abs(agentX - (p.X + size/2))
		dy := math.Abs(agentY - (p.Y + size/2))
		if dx <= aw/2+size/2 && dy <= ah/2+size/2 {
			collected++
			continue
		}
		kept = append(kept, p)
	}
	g.pellets = kept

	fb := float64(collected) * g.cfg.PelletFeedback
	g.scores[agent] += fb
	return fb
}

// spawnDelay draws an exponential inter-arrival time
func (g *GridWorld) spawnDelay() float64 {
	return g.arrival.Rand()
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

package experiment

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/intdogs/roombarl/agent"
	"github.com/intdogs/roombarl/agent/random"
	"github.com/intdogs/roombarl/agent/tabular/qlearning"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/environment/pellet"
)

// ErrNoRound is returned when a round has no parameters
var ErrNoRound = errors.New("no parameters for round")

// Parameters are the settings of one round of a session. JSON keys
// follow the names the host fetches from /api/parameters.
type Parameters struct {
	NumAgents          int         `json:"NUM_AGENTS"`
	PelletPatchMean    [][]float64 `json:"PELLET_PATCH_MEAN2"`
	PelletPatchVar     [][]float64 `json:"PELLET_PATCH_VAR2"`
	ExpectedPelletTime float64     `json:"EXPECTED_PELLET_TIME"` // ms
	AgentEps           float64     `json:"AGENT_EPS"`
	TeachEps           float64     `json:"TEACH_EPS"`
	MoveTime           float64     `json:"MOVE_TIME"` // s
	WaitTime           float64     `json:"WAIT_TIME"` // s
	StepCost           float64     `json:"Q_STEP_COST"`
	HumIntFB           float64     `json:"HUM_INT_FB"`
	PelletFeedback     float64     `json:"PELLET_FEEDBACK"`
	InterpretType      int         `json:"INTERPRET_TYPE"`
	AgentTypes         []string    `json:"agentTypes"`
	PelletTiles        [][]float64 `json:"PELLET_TILES"`
	PelletMode         pellet.Mode `json:"PELLET_MODE"`

	// DragAllowed says whether agent i may be dragged. Agents past the
	// end of the list may.
	DragAllowed []bool `json:"dragAllowed,omitempty"`

	// Snapshot is the pretrained table used by QLearnAgent agents
	Snapshot string `json:"Q_SNAPSHOT,omitempty"`
}

// DefaultParameters returns the parameters used when a round sets none
func DefaultParameters() Parameters {
	q := qlearning.DefaultConfig()
	return Parameters{
		NumAgents:          1,
		PelletPatchMean:    pellet.DefaultMeans,
		PelletPatchVar:     pellet.DefaultVars,
		ExpectedPelletTime: 100,
		AgentEps:           q.Epsilon,
		TeachEps:           1,
		MoveTime:           gridworld.DefaultMoveTime.Seconds(),
		WaitTime:           0,
		StepCost:           q.StepCost,
		HumIntFB:           q.InterventionFeedback,
		PelletFeedback:     6,
		InterpretType:      int(q.Interpretation),
		AgentTypes: []string{
			string(agent.QLearning), string(agent.QLearning),
			string(agent.QLearning),
		},
		PelletTiles: pellet.DefaultTiles,
		PelletMode:  pellet.Tiles,
	}
}

// UnmarshalJSON implements the json.Unmarshaler interface. Keys missing
// from data keep their default value.
func (p *Parameters) UnmarshalJSON(data []byte) error {
	type plain Parameters
	params := plain(DefaultParameters())
	if err := json.Unmarshal(data, &params); err != nil {
		return err
	}
	*p = Parameters(params)
	return nil
}

// Validate returns an error if the parameters cannot run a round
func (p Parameters) Validate() error {
	if p.NumAgents < 1 {
		return fmt.Errorf("validate: NUM_AGENTS must be positive, got %d",
			p.NumAgents)
	}
	if p.ExpectedPelletTime <= 0 {
		return fmt.Errorf("validate: EXPECTED_PELLET_TIME must be positive")
	}
	if p.MoveTime+p.WaitTime <= 0 {
		return fmt.Errorf("validate: MOVE_TIME + WAIT_TIME must be positive")
	}
	if p.TeachEps < 0 || p.TeachEps > 1 {
		return fmt.Errorf("validate: TEACH_EPS %v not in [0, 1]", p.TeachEps)
	}
	if !qlearning.Interpretation(p.InterpretType).IsValid() {
		return fmt.Errorf("validate: unknown INTERPRET_TYPE %d",
			p.InterpretType)
	}
	for i := range p.NumAgents {
		if _, err := p.AgentType(i); err != nil {
			return fmt.Errorf("validate: %w", err)
		}
	}
	return nil
}

// ForUser returns the parameters with the interpretation mode assigned
// to a participant
func (p Parameters) ForUser(userID int) Parameters {
	p.InterpretType = int(qlearning.InterpretationForUser(userID))
	return p
}

// Draggable returns whether agent i may be dragged
func (p Parameters) Draggable(i int) bool {
	if i < 0 || i >= len(p.DragAllowed) {
		return true
	}
	return p.DragAllowed[i]
}

// Pellet returns the pellet placement regime of the round
func (p Parameters) Pellet() pellet.Config {
	return pellet.Config{
		Mode:  p.PelletMode,
		Means: p.PelletPatchMean,
		Vars:  p.PelletPatchVar,
		Tiles: p.PelletTiles,
	}
}

// PelletSteps returns the mean number of moves between pellet spawns
func (p Parameters) PelletSteps() float64 {
	return p.ExpectedPelletTime / ((p.MoveTime + p.WaitTime) * 1000)
}

// World returns the configuration of an offline GridWorld for the round
func (p Parameters) World(spec environment.Spec) gridworld.Config {
	return gridworld.Config{
		Spec:               spec,
		NumAgents:          p.NumAgents,
		PelletFeedback:     p.PelletFeedback,
		ExpectedPelletTime: p.PelletSteps(),
		PelletSize:         gridworld.DefaultPelletSize,
	}
}

// AgentType returns the type of agent i. Agents beyond the listed types
// learn from a constant table.
func (p Parameters) AgentType(i int) (agent.Type, error) {
	if i >= len(p.AgentTypes) {
		return agent.QLearning, nil
	}
	t := agent.Type(p.AgentTypes[i])
	if !agent.Registered(t) {
		return "", fmt.Errorf("agent %d: unregistered agent type %q", i, t)
	}
	return t, nil
}

// AgentConfig returns the configuration of agent i
func (p Parameters) AgentConfig(i int) (agent.TypedConfig, error) {
	t, err := p.AgentType(i)
	if err != nil {
		return agent.TypedConfig{}, fmt.Errorf("agentConfig: %w", err)
	}

	switch t {
	case agent.Random:
		return agent.NewTypedConfig(random.Config{}), nil

	case agent.QLearning, agent.PretrainedQLearning:
		c := qlearning.DefaultConfig()
		c.Epsilon = p.AgentEps
		c.StepCost = p.StepCost
		c.InterventionFeedback = p.HumIntFB
		c.Interpretation = qlearning.Interpretation(p.InterpretType)
		if t == agent.PretrainedQLearning {
			if p.Snapshot == "" {
				return agent.TypedConfig{}, fmt.Errorf("agentConfig: agent "+
					"%d: %v needs Q_SNAPSHOT", i, t)
			}
			c.Snapshot = p.Snapshot
		}
		return agent.NewTypedConfig(c), nil
	}

	return agent.TypedConfig{}, fmt.Errorf("agentConfig: agent %d: no "+
		"parameters for type %v", i, t)
}

// CreateAgents creates every agent of the round. Agent i is seeded
// with seed+i.
func (p Parameters) CreateAgents(spec environment.Spec, seed uint64,
	logger *slog.Logger) ([]agent.Agent, error) {
	env := agent.Env{Spec: spec, Pellet: p.Pellet()}

	agents := make([]agent.Agent, p.NumAgents)
	for i := range agents {
		typed, err := p.AgentConfig(i)
		if err != nil {
			return nil, fmt.Errorf("createAgents: %w", err)
		}

		if qc, ok := typed.Config.(qlearning.Config); ok {
			agents[i], err = qlearning.New(i, env, qc, seed+uint64(i),
				qlearning.WithLogger(logger))
		} else {
			agents[i], err = typed.CreateAgent(i, env, seed+uint64(i))
		}
		if err != nil {
			return nil, fmt.Errorf("createAgents: agent %d: %w", i, err)
		}
	}
	return agents, nil
}

// Rounds holds the parameters of every round of a session, keyed by
// round number starting at 1
type Rounds map[int]Parameters

// Round returns the parameters of round n
func (r Rounds) Round(n int) (Parameters, error) {
	p, ok := r[n]
	if !ok {
		return Parameters{}, fmt.Errorf("round %d: %w", n, ErrNoRound)
	}
	return p, nil
}

// LoadRounds reads a JSON list of rounds from path. The first element
// is round 1.
func LoadRounds(path string) (Rounds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loadRounds: %w", err)
	}

	var list []Parameters
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("loadRounds: %w", err)
	}

	rounds := make(Rounds, len(list))
	for i, p := range list {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("loadRounds: round %d: %w", i+1, err)
		}
		rounds[i+1] = p
	}
	return rounds, nil
}

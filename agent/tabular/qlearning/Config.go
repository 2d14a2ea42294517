package qlearning

import (
	"fmt"
	"time"

	"github.com/intdogs/roombarl/agent"
	"github.com/intdogs/roombarl/agent/tabular/qtable"
)

func init() {
	// Register the Config so that it can be typed using
	// agent.TypedConfig to help with serialization/deserialization.
	agent.Register(agent.QLearning, Config{})
	agent.Register(agent.PretrainedQLearning, Config{})
}

// Default hyperparameters
const (
	DefaultEpsilon              = 0.3
	DefaultLearningRate         = 0.1
	DefaultDiscount             = 0.9
	DefaultStepCost             = -1.0
	DefaultInterventionFeedback = -12.0
	DefaultQInit                = 1.0
	DefaultGraceDelay           = 250 * time.Millisecond
)

// stuckValue replaces the current value when no successor action has a
// finite value
const stuckValue = -2.0

// Config represents a configuration for the QLearning agent
type Config struct {
	Epsilon      float64 // epsilon for behaviour policy
	LearningRate float64
	Discount     float64

	// StepCost is charged per cell travelled
	StepCost float64

	// InterventionFeedback is the feedback used by interpretation modes
	// that score a human intervention
	InterventionFeedback float64

	// QInit fills the table when no Snapshot is given and stands in for
	// entries that were never written
	QInit float64

	Interpretation Interpretation

	// Snapshot is the path of a pretrained table to start from
	Snapshot string

	// GraceDelay is how long a drain waits for more trajectories before
	// going idle
	GraceDelay time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Epsilon:              DefaultEpsilon,
		LearningRate:         DefaultLearningRate,
		Discount:             DefaultDiscount,
		StepCost:             DefaultStepCost,
		InterventionFeedback: DefaultInterventionFeedback,
		QInit:                DefaultQInit,
		Interpretation:       Suggestion,
		GraceDelay:           DefaultGraceDelay,
	}
}

// CreateAgent creates the agent from the Config
func (c Config) CreateAgent(id int, env agent.Env,
	seed uint64) (agent.Agent, error) {
	return New(id, env, c, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*QLearning)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("validate: epsilon %v not in [0, 1]", c.Epsilon)
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("validate: learning rate %v not in (0, 1]",
			c.LearningRate)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount %v not in [0, 1]", c.Discount)
	}
	if !c.Interpretation.IsValid() {
		return fmt.Errorf("validate: unknown interpretation %v",
			c.Interpretation)
	}
	if c.GraceDelay < 0 {
		return fmt.Errorf("validate: negative grace delay")
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	if c.Snapshot != "" {
		return agent.PretrainedQLearning
	}
	return agent.QLearning
}

// Initializer returns the provider of the agent's starting table
func (c Config) Initializer() qtable.Initializer {
	if c.Snapshot != "" {
		return qtable.Snapshot(c.Snapshot)
	}
	return qtable.Constant(c.QInit)
}

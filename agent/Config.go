package agent

import (
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/pellet"
)

// Env is everything an agent is told about the world it is created in
type Env struct {
	Spec   environment.Spec
	Pellet pellet.Config
}

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes
	CreateAgent(id int, env Env, seed uint64) (Agent, error)

	// ValidAgent returns whether the argument agent is valid for the
	// Config
	ValidAgent(Agent) bool

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the type of agent the Config creates
	Type() Type
}

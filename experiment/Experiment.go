// Package experiment implements functionality for running agents on an
// offline grid with a simulated human teacher
package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/intdogs/roombarl/agent"
	"github.com/intdogs/roombarl/datalog"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/environment/pellet"
	"github.com/intdogs/roombarl/experiment/tracker"
	"github.com/intdogs/roombarl/utils/logging"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments send every step to their Trackers, which cache the data
// they need so that Save can write it to disk after the experiment has
// run. Step runs a single step for every agent and Run runs steps until
// the step limit is reached.
type Experiment interface {
	Run(ctx context.Context) error

	// Step returns whether the step limit has been reached
	Step(ctx context.Context) (bool, error)

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)

	Agents() []agent.Agent
	Log() *datalog.Log
}

type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment
type Config struct {
	Type
	MaxSteps   int
	Spec       environment.Spec
	Parameters Parameters

	// DropMode is where the simulated teacher drops agents
	DropMode DropMode

	// InterventionStop is the step after which the simulated teacher
	// stops intervening. Zero means never.
	InterventionStop int

	// WeightedStart draws starting cells in proportion to their pellet
	// probability instead of uniformly
	WeightedStart bool
}

// Validate returns an error if the Config cannot create an experiment
func (c Config) Validate() error {
	if c.Type != OnlineExp {
		return fmt.Errorf("validate: no such experiment type %q", c.Type)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("validate: max steps must be positive")
	}
	if err := c.Spec.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if !c.DropMode.IsValid() {
		return fmt.Errorf("validate: unknown drop mode %v", c.DropMode)
	}
	if err := c.Parameters.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// Option configures an experiment
type Option func(*options)

type options struct {
	logger          *slog.Logger
	trackers        []tracker.Tracker
	checkpointDir   string
	checkpointEvery int
	checkpointExt   string
}

// WithLogger sets the logger of the experiment and its agents
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTrackers registers trackers with the experiment
func WithTrackers(t ...tracker.Tracker) Option {
	return func(o *options) { o.trackers = append(o.trackers, t...) }
}

// WithCheckpoints saves the table of every learning agent in dir every
// n steps. The extension picks the format, see qtable.QTable.Save.
func WithCheckpoints(dir string, n int, extension string) Option {
	return func(o *options) {
		o.checkpointDir = dir
		o.checkpointEvery = n
		o.checkpointExt = extension
	}
}

// CreateExp creates the experiment described by the Config. Each agent
// is created from the round parameters. If log is nil, a new log is
// created.
func (c Config) CreateExp(seed uint64, log *datalog.Log,
	opts ...Option) (Experiment, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}
	o := buildOptions(opts)

	env := agent.Env{Spec: c.Spec, Pellet: c.Parameters.Pellet()}
	sampler, err := pellet.NewSampler(env.Pellet, c.Spec,
		gridworld.DefaultPelletSize, seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}
	starter, err := c.starter(env.Pellet, seed+1)
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}
	world, err := gridworld.New(c.Parameters.World(c.Spec), starter, sampler,
		seed+2)
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	agents, err := c.Parameters.CreateAgents(c.Spec, seed+10, o.logger)
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	if log == nil {
		log = datalog.New(len(agents))
	}

	online, err := NewOnline(c, world, agents, log, seed+3, opts...)
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}
	return online, nil
}

func (c Config) starter(cfg pellet.Config,
	seed uint64) (environment.Starter, error) {
	if !c.WeightedStart {
		return environment.NewUniformStarter(c.Spec, seed), nil
	}

	model, err := cfg.Model(c.Spec)
	if err != nil {
		return nil, err
	}
	weights := pellet.NewGrid(c.Spec, model).Weights()
	return environment.NewCategoricalStarter(c.Spec, weights, seed)
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logging.OrDefault(o.logger)
	return o
}

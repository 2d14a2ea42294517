package main

import (
	"math/rand/v2"

	"github.com/intdogs/roombarl/agent/tabular/policy"
	"github.com/intdogs/roombarl/agent/tabular/qtable"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/environment/pellet"
)

// loaded is a table snapshot together with the pellet model of the
// round it is evaluated on
type loaded struct {
	table  *qtable.QTable
	policy policy.Policy
	grid   *pellet.Grid
}

func loadSnapshot(path string) (loaded, error) {
	spec := defaultSpec()
	table, err := qtable.Load(path, spec)
	if err != nil {
		return loaded{}, err
	}

	params, err := parameters()
	if err != nil {
		return loaded{}, err
	}
	model, err := params.Pellet().Model(spec)
	if err != nil {
		return loaded{}, err
	}

	rng := rand.New(rand.NewPCG(seed, seed+1))
	return loaded{
		table:  table,
		policy: policy.Derive(table, gridworld.NewStateSpace(spec), rng),
		grid:   pellet.NewGrid(spec, model),
	}, nil
}

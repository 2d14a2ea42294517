package simulator

import (
	"math/rand/v2"
	"testing"

	"github.com/intdogs/roombarl/agent/tabular/policy"
	"github.com/intdogs/roombarl/agent/tabular/qtable"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/environment/pellet"
	"github.com/intdogs/roombarl/utils/floatutils"
)

func expectedTable(t *testing.T, cfg pellet.Config) *pellet.ExpectedTable {
	t.Helper()
	spec := environment.DefaultSpec()
	m, err := cfg.Model(spec)
	if err != nil {
		t.Fatal(err)
	}
	return pellet.NewExpectedTable(pellet.NewGrid(spec, m))
}

func greedyPolicy(v float64) policy.Policy {
	spec := environment.DefaultSpec()
	q, _ := qtable.Constant(v).Initialize(spec)
	return policy.Derive(q, gridworld.NewStateSpace(spec),
		rand.New(rand.NewPCG(1, 1)))
}

func TestSimulateFinite(t *testing.T) {
	s := New(expectedTable(t, pellet.DefaultConfig()), 7)

	v, err := s.Simulate(greedyPolicy(1))
	if err != nil {
		t.Fatal(err)
	}
	if !floatutils.Finite(v) || v < 0 {
		t.Errorf("Simulate: expected a finite non-negative value, got %v", v)
	}

	mean, std, err := s.Summary(greedyPolicy(1))
	if err != nil {
		t.Fatal(err)
	}
	if mean < 0 || std < 0 {
		t.Errorf("Summary: expected non-negative values, got (%v, %v)", mean,
			std)
	}
}

func TestSimulateNoPellets(t *testing.T) {
	cfg := pellet.Config{Mode: pellet.Tiles, Tiles: [][]float64{{100, 100}}}
	s := New(expectedTable(t, cfg), 7, WithRollouts(10, 5))

	v, err := s.Simulate(greedyPolicy(0))
	if err != nil {
		t.Fatal(err)
	}
	if v != 0 {
		t.Errorf("Simulate: expected 0 without pellets, got %v", v)
	}
}

func TestRolloutsSize(t *testing.T) {
	s := New(expectedTable(t, pellet.DefaultConfig()), 3, WithRollouts(12, 4))
	returns, err := s.Rollouts(greedyPolicy(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(returns) != 12 {
		t.Errorf("Rollouts: expected 12 returns, got %d", len(returns))
	}

	// A move per step can capture at most two cells worth of pellets
	for _, r := range returns {
		if r > 4*2 {
			t.Errorf("Rollouts: return %v exceeds the horizon", r)
		}
	}
}

func TestRolloutsMissingAction(t *testing.T) {
	s := New(expectedTable(t, pellet.DefaultConfig()), 3)
	if _, err := s.Rollouts(policy.Policy{}); err == nil {
		t.Error("Rollouts: expected an error for an empty policy")
	}
}

func BenchmarkSimulate(b *testing.B) {
	spec := environment.DefaultSpec()
	m, _ := pellet.DefaultConfig().Model(spec)
	s := New(pellet.NewExpectedTable(pellet.NewGrid(spec, m)), 1)
	p := greedyPolicy(1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Simulate(p)
	}
}

// fixedStart starts every rollout at the same cell
type fixedStart environment.Position

func (f fixedStart) Start() environment.Position {
	return environment.Position(f)
}

func TestRolloutsPartialTable(t *testing.T) {
	spec := environment.DefaultSpec()
	missing := environment.Position{X: 3, Y: 0}

	q := qtable.New(spec)
	for _, pos := range spec.Cells() {
		if pos == missing {
			continue
		}
		if err := q.Set(pos, gridworld.NoMove, 1); err != nil {
			t.Fatal(err)
		}
	}
	p := policy.Derive(q, gridworld.NewStateSpace(spec),
		rand.New(rand.NewPCG(1, 1)))
	if a, _ := p.Action(missing); a != gridworld.Up {
		t.Fatalf("Derive: expected Up at an unwritten cell, got %v", a)
	}

	s := New(expectedTable(t, pellet.DefaultConfig()), 5, WithRollouts(20, 10))
	s.starter = fixedStart(missing)
	returns, err := s.Rollouts(p)
	if err != nil {
		t.Fatalf("Rollouts: expected an off-grid action to be replaced, "+
			"got %v", err)
	}
	for _, r := range returns {
		if !floatutils.Finite(r) || r < 0 {
			t.Errorf("Rollouts: expected finite non-negative returns, got %v",
				r)
		}
	}
}

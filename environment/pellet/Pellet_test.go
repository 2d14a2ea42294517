package pellet

import (
	"errors"
	"math"
	"testing"

	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"gonum.org/v1/gonum/floats"
)

func TestTileModel(t *testing.T) {
	spec := environment.DefaultSpec()
	m, err := DefaultConfig().Model(spec)
	if err != nil {
		t.Fatal(err)
	}
	g := NewGrid(spec, m)

	want := 1 / float64(len(DefaultTiles))
	for _, tile := range DefaultTiles {
		got, err := g.Find(int(tile[0]), int(tile[1]))
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("Find(%v): expected %v, got %v", tile, want, got)
		}
	}

	if got := g.At(environment.Position{X: 0, Y: 0}); got != 0 {
		t.Errorf("At(0, 0): expected 0 for a non-tile, got %v", got)
	}
	if sum := floats.Sum(g.Weights()); math.Abs(sum-1) > 1e-12 {
		t.Errorf("Weights: expected a total of 1, got %v", sum)
	}
}

func TestGaussianMixture(t *testing.T) {
	spec := environment.Spec{Width: 30, Height: 30, AgentWidth: 1,
		AgentHeight: 1}
	m, err := NewGaussianMixture([][]float64{{15, 15}, {10, 20}},
		[][]float64{{2, 2}, {1, 3}})
	if err != nil {
		t.Fatal(err)
	}

	g := NewGrid(spec, m)
	sum := floats.Sum(g.Weights())
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("Weights: expected a total near 1, got %v", sum)
	}

	peak := g.At(environment.Position{X: 14, Y: 14})
	corner := g.At(environment.Position{X: 0, Y: 29})
	if peak <= corner {
		t.Errorf("CellProbability: mean cell %v should exceed corner %v",
			peak, corner)
	}

	if _, err := NewGaussianMixture([][]float64{{1, 1}},
		[][]float64{{0, 1}}); err == nil {
		t.Error("NewGaussianMixture: expected an error for zero variance")
	}
}

func TestUniformModel(t *testing.T) {
	spec := environment.DefaultSpec()
	g := NewGrid(spec, UniformModel{spec})
	for _, w := range g.Weights() {
		if w != 1.0/64 {
			t.Fatalf("Weights: expected 1/64, got %v", w)
		}
	}
}

func TestGridErrors(t *testing.T) {
	spec := environment.DefaultSpec()
	g := NewGrid(spec, UniformModel{spec})

	_, err := g.Find(8, 0)
	if !errors.Is(err, ErrCellNotFound) {
		t.Errorf("Find: expected ErrCellNotFound, got %v", err)
	}

	e := NewExpectedTable(g)
	_, err = e.Find(environment.Position{X: -1, Y: 0}, gridworld.Up)
	if !errors.Is(err, ErrActionNotFound) {
		t.Errorf("Find: expected ErrActionNotFound, got %v", err)
	}
	_, err = e.Find(environment.Position{}, gridworld.Action(12))
	if !errors.Is(err, ErrActionNotFound) {
		t.Errorf("Find: expected ErrActionNotFound, got %v", err)
	}
}

func TestExpectedTable(t *testing.T) {
	spec := environment.Spec{Width: 3, Height: 3, AgentWidth: 1,
		AgentHeight: 1}
	m, err := NewTileModel([][]float64{{1, 0}, {0, 1}, {1, 1}, {2, 2}})
	if err != nil {
		t.Fatal(err)
	}
	e := NewExpectedTable(NewGrid(spec, m))
	origin := environment.Position{X: 0, Y: 0}

	tests := []struct {
		a    gridworld.Action
		want float64
	}{
		{gridworld.Right, 0.25},
		{gridworld.Down, 0.25},
		// Destination plus half of each cell cut across
		{gridworld.DownRight, 0.25 + 0.125 + 0.125},
		{gridworld.Up, 0},
		{gridworld.NoMove, 0},
	}

	for _, test := range tests {
		got, err := e.Find(origin, test.a)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-test.want) > 1e-12 {
			t.Errorf("Find(%v): expected %v, got %v", test.a, test.want, got)
		}
	}

	row, err := e.Row(origin)
	if err != nil {
		t.Fatal(err)
	}
	if len(row) != gridworld.NumActions {
		t.Errorf("Row: expected %d values, got %d", gridworld.NumActions,
			len(row))
	}
}

func TestSamplerInBounds(t *testing.T) {
	spec := environment.DefaultSpec()
	size := gridworld.DefaultPelletSize

	for _, mode := range []Mode{Uniform, Gaussian, Tiles} {
		cfg := DefaultConfig()
		cfg.Mode = mode
		s, err := NewSampler(cfg, spec, size, 3)
		if err != nil {
			t.Fatalf("%v: %v", mode, err)
		}

		for i := 0; i < 2000; i++ {
			p := s.Sample()
			if p.X < 0 || p.Y < 0 || p.X > 8-size || p.Y > 8-size {
				t.Fatalf("%v: sample %v is off the grid", mode, p)
			}
			if mode == Tiles && m(t, cfg).CellProbability(p.Floor().X,
				p.Floor().Y) == 0 {
				t.Fatalf("Tiles: sample %v is not on a tile", p)
			}
		}
	}

	if _, err := NewSampler(Config{Mode: Mode(7)}, spec, size, 1); err == nil {
		t.Error("NewSampler: expected an error for an unknown mode")
	}
}

func m(t *testing.T, cfg Config) Model {
	t.Helper()
	model, err := cfg.Model(environment.DefaultSpec())
	if err != nil {
		t.Fatal(err)
	}
	return model
}

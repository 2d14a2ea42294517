package environment

import (
	"math"
	"testing"
)

func TestSpecIndex(t *testing.T) {
	spec := Spec{Width: 5, Height: 3, AgentWidth: 1, AgentHeight: 1}

	cells := spec.Cells()
	if len(cells) != spec.NumCells() {
		t.Fatalf("Cells: expected %d cells, got %d", spec.NumCells(),
			len(cells))
	}

	for i, cell := range cells {
		if got := spec.Index(cell); got != i {
			t.Errorf("Index(%v): expected %d, got %d", cell, i, got)
		}
		if got := spec.At(i); got != cell {
			t.Errorf("At(%d): expected %v, got %v", i, cell, got)
		}
	}
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		ok   bool
	}{
		{"default", DefaultSpec(), true},
		{"empty", Spec{0, 8, 1, 1}, false},
		{"no footprint", Spec{8, 8, 0, 1}, false},
	}

	for _, test := range tests {
		err := test.spec.Validate()
		if (err == nil) != test.ok {
			t.Errorf("%s: expected ok=%v, got error %v", test.name, test.ok,
				err)
		}
	}
}

func TestPointCell(t *testing.T) {
	tests := []struct {
		point Point
		cell  Position
		ok    bool
	}{
		{Point{3, 4}, Position{3, 4}, true},
		{Point{0, 0}, Position{0, 0}, true},
		{Point{3.5, 4}, Position{}, false},
		{Point{3, 4.25}, Position{}, false},
		{Point{math.Inf(1), 0}, Position{}, false},
	}

	for _, test := range tests {
		cell, ok := test.point.Cell()
		if ok != test.ok || cell != test.cell {
			t.Errorf("Cell(%v): expected (%v, %v), got (%v, %v)",
				test.point, test.cell, test.ok, cell, ok)
		}
	}

	if got := (Point{2.7, 0.2}).Floor(); got != (Position{2, 0}) {
		t.Errorf("Floor: expected (2, 0), got %v", got)
	}
}

func TestUniformStarter(t *testing.T) {
	spec := DefaultSpec()
	s := NewUniformStarter(spec, 13)

	seen := make(map[Position]bool)
	for i := 0; i < 5000; i++ {
		p := s.Start()
		if !spec.Contains(p) {
			t.Fatalf("Start: %v is off the grid", p)
		}
		seen[p] = true
	}

	if len(seen) != spec.NumCells() {
		t.Errorf("Start: expected every cell to be sampled, saw %d of %d",
			len(seen), spec.NumCells())
	}
}

func TestCategoricalStarter(t *testing.T) {
	spec := Spec{Width: 3, Height: 3, AgentWidth: 1, AgentHeight: 1}
	weights := make([]float64, spec.NumCells())
	weights[spec.Index(Position{1, 2})] = 3
	weights[spec.Index(Position{2, 0})] = 1

	s, err := NewCategoricalStarter(spec, weights, 7)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 1000; i++ {
		p := s.Start()
		if weights[spec.Index(p)] == 0 {
			t.Fatalf("Start: sampled zero-weight cell %v", p)
		}
	}
}

func TestCategoricalStarterErrors(t *testing.T) {
	spec := Spec{Width: 2, Height: 2, AgentWidth: 1, AgentHeight: 1}

	tests := map[string][]float64{
		"wrong length": {1, 1, 1},
		"negative":     {1, -1, 1, 1},
		"all zero":     {0, 0, 0, 0},
	}

	for name, weights := range tests {
		if _, err := NewCategoricalStarter(spec, weights, 1); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestStepLimit(t *testing.T) {
	e := NewStepLimit(3)
	for step, want := range []bool{false, false, false, true, true} {
		if got := e.End(step); got != want {
			t.Errorf("End(%d): expected %v, got %v", step, want, got)
		}
	}
}

package pellet

import (
	"errors"
	"fmt"

	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"gonum.org/v1/gonum/mat"
)

// ErrActionNotFound is returned when a (cell, action) pair outside of
// the table is looked up
var ErrActionNotFound = errors.New("action not found")

// ExpectedTable holds, for every cell and action, the expected number of
// pellets captured by taking the action from the cell.
//
// A cardinal move captures whatever is at its destination. A diagonal
// move also sweeps half of each of the two cells it cuts across. NoMove
// and moves off the grid capture nothing.
type ExpectedTable struct {
	spec   environment.Spec
	values *mat.Dense // cells x actions
}

// NewExpectedTable builds the table from a probability Grid
func NewExpectedTable(g *Grid) *ExpectedTable {
	spec := g.Spec()
	values := mat.NewDense(spec.NumCells(), gridworld.NumActions, nil)

	for _, cell := range spec.Cells() {
		row := spec.Index(cell)
		for _, a := range gridworld.Actions {
			values.Set(row, int(a), expected(g, cell, a))
		}
	}

	return &ExpectedTable{spec, values}
}

func expected(g *Grid, cell environment.Position, a gridworld.Action) float64 {
	if a == gridworld.NoMove {
		return 0
	}

	dx, dy := a.Displacement()
	dest := cell.Add(dx, dy)
	if !g.Spec().Contains(dest) {
		return 0
	}

	p := g.At(dest)
	if a.Diagonal() {
		p += g.At(cell.Add(dx, 0))/2 + g.At(cell.Add(0, dy))/2
	}
	return p
}

// Spec returns the grid geometry
func (e *ExpectedTable) Spec() environment.Spec {
	return e.spec
}

// Find returns the expected pellet capture of taking a from cell
func (e *ExpectedTable) Find(cell environment.Position,
	a gridworld.Action) (float64, error) {
	if !e.spec.Contains(cell) || !a.IsValid() {
		return 0, fmt.Errorf("find %v %v: %w", cell, a, ErrActionNotFound)
	}
	return e.values.At(e.spec.Index(cell), int(a)), nil
}

// Row returns the expected capture of every action at cell in action
// order
func (e *ExpectedTable) Row(cell environment.Position) ([]float64, error) {
	if !e.spec.Contains(cell) {
		return nil, fmt.Errorf("row %v: %w", cell, ErrActionNotFound)
	}
	return mat.Row(nil, e.spec.Index(cell), e.values), nil
}

package pellet

import (
	"errors"
	"fmt"

	"github.com/intdogs/roombarl/environment"
	"gonum.org/v1/gonum/mat"
)

// ErrCellNotFound is returned when a cell outside the grid is looked up
var ErrCellNotFound = errors.New("cell not found")

// Grid caches the pellet probability of every cell
type Grid struct {
	spec  environment.Spec
	probs *mat.Dense // Width x Height
}

// NewGrid computes the probability of every cell of spec under m
func NewGrid(spec environment.Spec, m Model) *Grid {
	probs := mat.NewDense(spec.Width, spec.Height, nil)
	for x := 0; x < spec.Width; x++ {
		for y := 0; y < spec.Height; y++ {
			probs.Set(x, y, m.CellProbability(x, y))
		}
	}
	return &Grid{spec, probs}
}

// Spec returns the grid geometry
func (g *Grid) Spec() environment.Spec {
	return g.spec
}

// Find returns the probability of cell (x, y)
func (g *Grid) Find(x, y int) (float64, error) {
	if !g.spec.Contains(environment.Position{X: x, Y: y}) {
		return 0, fmt.Errorf("find (%d, %d): %w", x, y, ErrCellNotFound)
	}
	return g.probs.At(x, y), nil
}

// At returns the probability of a cell, or 0 for cells off the grid
func (g *Grid) At(p environment.Position) float64 {
	v, err := g.Find(p.X, p.Y)
	if err != nil {
		return 0
	}
	return v
}

// Weights returns the probability of each cell in environment.Spec
// Index order
func (g *Grid) Weights() []float64 {
	w := make([]float64, 0, g.spec.NumCells())
	for _, c := range g.spec.Cells() {
		w = append(w, g.probs.At(c.X, c.Y))
	}
	return w
}

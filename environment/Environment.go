// Package environment outlines the grid geometry shared by the learning
// agents, the pellet models, and the offline gridworld.
package environment

import "fmt"

// Default grid geometry
const (
	DefaultWidth  = 8
	DefaultHeight = 8
)

// Spec describes the bounds of the grid and the footprint of an agent
// in cells.
type Spec struct {
	Width       int
	Height      int
	AgentWidth  int
	AgentHeight int
}

// DefaultSpec returns the 8x8 grid with single-cell agents
func DefaultSpec() Spec {
	return Spec{
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		AgentWidth:  1,
		AgentHeight: 1,
	}
}

// Validate returns an error if the Spec does not describe a usable grid
func (s Spec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("validate: grid must be non-empty, got %dx%d",
			s.Width, s.Height)
	}
	if s.AgentWidth < 1 || s.AgentHeight < 1 {
		return fmt.Errorf("validate: agent footprint must be at least 1x1, "+
			"got %dx%d", s.AgentWidth, s.AgentHeight)
	}
	return nil
}

// Contains returns whether p lies on the grid
func (s Spec) Contains(p Position) bool {
	return p.X >= 0 && p.X < s.Width && p.Y >= 0 && p.Y < s.Height
}

// NumCells returns the number of cells in the grid
func (s Spec) NumCells() int {
	return s.Width * s.Height
}

// Index returns the row-major index of p, with x varying slowest
func (s Spec) Index(p Position) int {
	return p.X*s.Height + p.Y
}

// At is the inverse of Index
func (s Spec) At(i int) Position {
	return Position{i / s.Height, i % s.Height}
}

// Cells returns every cell of the grid in Index order
func (s Spec) Cells() []Position {
	cells := make([]Position, 0, s.NumCells())
	for x := 0; x < s.Width; x++ {
		for y := 0; y < s.Height; y++ {
			cells = append(cells, Position{x, y})
		}
	}
	return cells
}

// Starter implements a distribution of starting cells
type Starter interface {
	Start() Position
}

// Ender determines when a run of an environment should stop
type Ender interface {
	End(step int) bool
}

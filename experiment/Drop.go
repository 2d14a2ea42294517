package experiment

import (
	"fmt"
	"math/rand/v2"

	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/pellet"
)

// DropMode is where a simulated human drops an agent it stopped
type DropMode int

const (
	// ReturnToStart drops the agent where its move began
	ReturnToStart DropMode = iota + 1

	// BestCell drops the agent on a most likely pellet cell near it
	BestCell

	// NearBestCell drops the agent next to a most likely pellet cell
	// near it, on a cell that is less likely than that cell
	NearBestCell

	// WorstCell drops the agent on a least likely pellet cell near it
	WorstCell
)

// dropRadius is the half width of the window searched for a drop cell
const dropRadius = 2

func (d DropMode) String() string {
	switch d {
	case ReturnToStart:
		return "ReturnToStart"
	case BestCell:
		return "BestCell"
	case NearBestCell:
		return "NearBestCell"
	case WorstCell:
		return "WorstCell"
	}
	return fmt.Sprintf("DropMode(%d)", int(d))
}

// IsValid returns whether d is a known drop mode
func (d DropMode) IsValid() bool {
	return d >= ReturnToStart && d <= WorstCell
}

// Drop returns the cell an agent that started its move at start is
// dropped on
func (d DropMode) Drop(grid *pellet.Grid, start environment.Position,
	rng *rand.Rand) environment.Position {
	if d == ReturnToStart || !d.IsValid() {
		return start
	}

	spec := grid.Spec()
	var window []environment.Position
	for y := max(0, start.Y-dropRadius); y <= min(spec.Height-1,
		start.Y+dropRadius); y++ {
		for x := max(0, start.X-dropRadius); x <= min(spec.Width-1,
			start.X+dropRadius); x++ {
			window = append(window, environment.Position{X: x, Y: y})
		}
	}
	if len(window) == 0 {
		return start
	}

	better := func(a, b float64) bool { return a > b }
	if d == WorstCell {
		better = func(a, b float64) bool { return a < b }
	}

	target := grid.At(window[0])
	var extreme []environment.Position
	for _, cell := range window {
		p := grid.At(cell)
		switch {
		case better(p, target):
			target = p
			extreme = append(extreme[:0], cell)
		case p == target:
			extreme = append(extreme, cell)
		}
	}
	chosen := extreme[rng.IntN(len(extreme))]

	if d != NearBestCell {
		return chosen
	}

	var near []environment.Position
	for x := max(0, chosen.X-1); x <= min(spec.Width-1, chosen.X+1); x++ {
		for y := max(0, chosen.Y-1); y <= min(spec.Height-1, chosen.Y+1); y++ {
			cell := environment.Position{X: x, Y: y}
			if cell != chosen && grid.At(cell) != target {
				near = append(near, cell)
			}
		}
	}
	if len(near) == 0 {
		return start
	}
	return near[rng.IntN(len(near))]
}

package environment

import (
	"fmt"
	"math"
)

// Position is a discrete grid cell. X grows to the right and Y grows
// downward, so the top-left cell is (0, 0).
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position displaced by (dx, dy). The result may lie
// outside of the grid.
func (p Position) Add(dx, dy int) Position {
	return Position{p.X + dx, p.Y + dy}
}

// Point returns the continuous coordinate of the cell's top-left corner
func (p Position) Point() Point {
	return Point{float64(p.X), float64(p.Y)}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Point is a continuous coordinate on the grid. Host snapshots report
// agent and pellet locations as points since agents may be captured
// mid-animation.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Cell returns the grid cell of the point if both coordinates are
// integral, which is the only case in which a point names a state.
func (p Point) Cell() (Position, bool) {
	if p.X != math.Trunc(p.X) || p.Y != math.Trunc(p.Y) {
		return Position{}, false
	}
	if math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return Position{}, false
	}
	return Position{int(p.X), int(p.Y)}, true
}

// Floor returns the cell containing the point
func (p Point) Floor() Position {
	return Position{int(math.Floor(p.X)), int(math.Floor(p.Y))}
}

// Dist returns the Euclidean distance between two points
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

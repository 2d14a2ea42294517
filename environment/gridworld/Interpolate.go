package gridworld

import (
	"math"
	"time"

	"github.com/intdogs/roombarl/environment"
)

// Default animation timing of a single move
const (
	DefaultMoveTime    = 2 * time.Second
	DefaultRefreshTime = 60 * time.Millisecond
)

// Interpolate returns the intermediate points a host should render when
// animating a move from one point to another over moveTime, refreshing
// every refresh. The last point is always the destination.
func Interpolate(from, to environment.Point, moveTime,
	refresh time.Duration) []environment.Point {
	pieces := int(math.Round(float64(moveTime) / float64(refresh)))
	if refresh <= 0 || pieces < 1 {
		return []environment.Point{to}
	}

	xOff := (to.X - from.X) / float64(pieces)
	yOff := (to.Y - from.Y) / float64(pieces)

	points := make([]environment.Point, 0, pieces)
	for i := 0; i < pieces-1; i++ {
		points = append(points, environment.Point{
			X: from.X + float64(i)*xOff,
			Y: from.Y + float64(i)*yOff,
		})
	}
	return append(points, to)
}

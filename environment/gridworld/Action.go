// Package gridworld implements the discrete movement model of agents on
// the pellet grid: the nine actions, boundary rules, and an offline
// multi-agent gridworld used for pretraining.
package gridworld

import (
	"fmt"
	"math"
	"strings"
)

// Action is a one-cell move. Values are stable and appear in Q-table
// snapshots, so the order below must not change.
type Action int

const (
	Up Action = iota
	Down
	Left
	Right
	UpLeft
	UpRight
	DownLeft
	DownRight
	NoMove
)

// NumActions is the size of the action set
const NumActions = 9

// Actions lists every action in value order
var Actions = [NumActions]Action{
	Up, Down, Left, Right, UpLeft, UpRight, DownLeft, DownRight, NoMove,
}

var actionNames = [NumActions]string{
	"UP", "DOWN", "LEFT", "RIGHT", "UPLEFT", "UPRIGHT", "DOWNLEFT",
	"DOWNRIGHT", "NOMOVE",
}

// displacements in grid coordinates, y grows downward
var displacements = [NumActions][2]int{
	{0, -1}, {0, 1}, {-1, 0}, {1, 0},
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
	{0, 0},
}

func (a Action) String() string {
	if !a.IsValid() {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction parses the name of an action, ignoring case
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if strings.EqualFold(s, name) {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("parseAction: unknown action %q", s)
}

// IsValid returns whether a is one of the nine actions
func (a Action) IsValid() bool {
	return a >= Up && a <= NoMove
}

// Displacement returns the (dx, dy) move of the action
func (a Action) Displacement() (dx, dy int) {
	d := displacements[a]
	return d[0], d[1]
}

// Diagonal returns whether the action moves along both axes
func (a Action) Diagonal() bool {
	return a >= UpLeft && a <= DownRight
}

// Cardinal returns whether the action moves along exactly one axis
func (a Action) Cardinal() bool {
	return a >= Up && a <= Right
}

// StepMultiplier scales the per-step cost of an action by the distance
// it travels.
func (a Action) StepMultiplier() float64 {
	switch {
	case a.Cardinal():
		return 1
	case a.Diagonal():
		return math.Sqrt2
	default:
		return 0
	}
}

package gridworld

import "github.com/intdogs/roombarl/environment"

// MinAxisDiff is the displacement along an axis that must be exceeded
// for a move to count as a move along that axis.
const MinAxisDiff = 0.0

// Valid returns whether taking a at pos keeps an agent on the grid.
// Diagonals are valid only when both of their axis moves are valid, and
// NoMove is always valid.
func Valid(spec environment.Spec, pos environment.Position, a Action) bool {
	up := pos.Y > 0
	down := pos.Y < spec.Height-1
	left := pos.X > 0
	right := pos.X < spec.Width-1

	switch a {
	case Up:
		return up
	case Down:
		return down
	case Left:
		return left
	case Right:
		return right
	case UpLeft:
		return up && left
	case UpRight:
		return up && right
	case DownLeft:
		return down && left
	case DownRight:
		return down && right
	case NoMove:
		return true
	}
	return false
}

// ValidActions returns the actions that are valid at pos in value order
func ValidActions(spec environment.Spec, pos environment.Position) []Action {
	valid := make([]Action, 0, NumActions)
	for _, a := range Actions {
		if Valid(spec, pos, a) {
			valid = append(valid, a)
		}
	}
	return valid
}

// ValidMoves is ValidActions without NoMove
func ValidMoves(spec environment.Spec, pos environment.Position) []Action {
	valid := ValidActions(spec, pos)
	return valid[:len(valid)-1]
}

// InferAction returns the action matching a displacement of (dx, dy)
func InferAction(dx, dy float64) Action {
	switch {
	case dx > MinAxisDiff:
		switch {
		case dy > MinAxisDiff:
			return DownRight
		case dy < -MinAxisDiff:
			return UpRight
		}
		return Right

	case dx < -MinAxisDiff:
		switch {
		case dy > MinAxisDiff:
			return DownLeft
		case dy < -MinAxisDiff:
			return UpLeft
		}
		return Left

	case dy > MinAxisDiff:
		return Down
	case dy < -MinAxisDiff:
		return Up
	}
	return NoMove
}

// InferActionBetween returns the action that moves from one cell to
// another
func InferActionBetween(from, to environment.Position) Action {
	return InferAction(float64(to.X-from.X), float64(to.Y-from.Y))
}

// SuccessorCandidates returns the actions considered when bootstrapping
// from the state at pos.
//
// Only one vertical direction is ever considered: upward moves when the
// agent is below the top band of the grid and downward moves otherwise.
// Horizontal moves are added independently.
func SuccessorCandidates(spec environment.Spec,
	pos environment.Position) []Action {
	candidates := make([]Action, 0, 5)
	leftOK := pos.X > spec.AgentWidth
	rightOK := pos.X < spec.Width-spec.AgentWidth

	if pos.Y > spec.AgentHeight {
		candidates = append(candidates, Up)
		if leftOK {
			candidates = append(candidates, UpLeft)
		}
		if rightOK {
			candidates = append(candidates, UpRight)
		}
	} else if pos.Y < spec.Height-spec.AgentHeight {
		candidates = append(candidates, Down)
		if leftOK {
			candidates = append(candidates, DownLeft)
		}
		if rightOK {
			candidates = append(candidates, DownRight)
		}
	}

	if leftOK {
		candidates = append(candidates, Left)
	}
	if rightOK {
		candidates = append(candidates, Right)
	}
	return candidates
}

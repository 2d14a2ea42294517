package qlearning

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/intdogs/roombarl/agent/tabular/qtable"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/trajectory"
	"github.com/intdogs/roombarl/utils/floatutils"
	"github.com/intdogs/roombarl/utils/logging"
)

var (
	// ErrMissingEndPosition is returned for a completed self-move that
	// has no end position. No update can be computed from it.
	ErrMissingEndPosition = errors.New("trajectory has no end position")

	// ErrSkipped is returned for a trajectory that lacks the fields its
	// update needs. Skipped trajectories are dropped without an update.
	ErrSkipped = errors.New("trajectory skipped")

	// ErrInterrupted is returned when a drag is read as an interruption
	// and no update is made
	ErrInterrupted = errors.New("trajectory interrupted")
)

// Fatal returns whether err aborts the processing of a trajectory, as
// opposed to the trajectory being skipped or interrupted by design
func Fatal(err error) bool {
	return err != nil && !errors.Is(err, ErrSkipped) &&
		!errors.Is(err, ErrInterrupted)
}

// Update describes a single write to the table
type Update struct {
	Pos        environment.Position
	Action     gridworld.Action
	Old        float64
	New        float64
	Feedback   float64
	MaxNext    float64
	Multiplier float64
}

// TdError returns the temporal difference error of the update
func (u Update) TdError(learningRate float64) float64 {
	return (u.New - u.Old) / learningRate
}

// QLearner implements the update target of Q-learning over a QTable.
// Each call to Learn performs at most one write.
type QLearner struct {
	q      *qtable.QTable
	spec   environment.Spec
	cfg    Config
	logger *slog.Logger
}

// NewQLearner creates a new QLearner that updates q
func NewQLearner(q *qtable.QTable, cfg Config,
	logger *slog.Logger) (*QLearner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("newQLearner: %w", err)
	}
	return &QLearner{q, q.Spec(), cfg, logging.OrDefault(logger)}, nil
}

// Learn performs one update from a self-move trajectory and, if the
// self-move was cancelled by a human, the drag that followed it.
func (l *QLearner) Learn(self, drag *trajectory.Trajectory) (Update, error) {
	if self == nil {
		return Update{}, fmt.Errorf("learn: %w: no trajectory", ErrSkipped)
	}

	if !self.Cancelled {
		if self.End == nil {
			return Update{}, fmt.Errorf("learn %v: %w", self.ID,
				ErrMissingEndPosition)
		}
		if self.Start == nil || self.StartState == nil ||
			self.CurState == nil {
			return Update{}, fmt.Errorf("learn %v: %w: incomplete self-move",
				self.ID, ErrSkipped)
		}
		fb := feedback(self.Feedback)
		return l.update(self, *self.Start, *self.End, nil, fb)
	}

	if drag == nil || drag.Feedback == nil || drag.End == nil ||
		self.Start == nil || self.StartState == nil || self.CurState == nil {
		return Update{}, fmt.Errorf("learn %v: %w: incomplete drag",
			self.ID, ErrSkipped)
	}

	start, drop := *self.Start, *drag.End
	end := drop
	var effective *environment.Position
	var fb float64

	// useTry substitutes the attempted position for the drop
	useTry := func() error {
		if self.Try == nil {
			return fmt.Errorf("learn %v: %w: no attempted position",
				self.ID, ErrSkipped)
		}
		end = *self.Try
		effective = self.Try
		return nil
	}
	interrupted := fmt.Errorf("learn %v: %w by %v", self.ID, ErrInterrupted,
		l.cfg.Interpretation)

	switch l.cfg.Interpretation {
	case Suggestion:
		if drop == start {
			return Update{}, interrupted
		}
		fb = *drag.Feedback

	case Reset:
		if err := useTry(); err != nil {
			return Update{}, err
		}
		fb = feedback(self.Feedback)

	case Interrupt:
		return Update{}, interrupted

	case Transition:
		if drop == start {
			if err := useTry(); err != nil {
				return Update{}, err
			}
			fb = l.cfg.InterventionFeedback
		} else {
			fb = -l.cfg.InterventionFeedback
		}

	case Disrupt:
		if drop == start {
			return Update{}, interrupted
		}
		fb = l.cfg.InterventionFeedback

	case Impede:
		if err := useTry(); err != nil {
			return Update{}, err
		}
		fb = l.cfg.InterventionFeedback
	}

	return l.update(self, start, end, effective, fb)
}

// update writes one TD update for the move from start to end. The
// state keys come from the agent's position in the trajectory's
// snapshots, with effective replacing the current state when given.
func (l *QLearner) update(t *trajectory.Trajectory, start,
	end environment.Position, effective *environment.Position,
	fb float64) (Update, error) {
	prevFeats, ok := t.StartState.Features(t.AgentID, l.spec)
	if !ok {
		return Update{}, fmt.Errorf("update %v: %w: agent %d not in start "+
			"state", t.ID, ErrSkipped, t.AgentID)
	}
	prev, ok := prevFeats.MyPos.Cell()
	if !ok || !l.spec.Contains(prev) {
		return Update{}, fmt.Errorf("update %v: %w: start state position "+
			"%v is not a cell", t.ID, ErrSkipped, prevFeats.MyPos)
	}

	var curKey environment.Point
	if effective != nil {
		curKey = effective.Point()
	} else {
		curFeats, ok := t.CurState.Features(t.AgentID, l.spec)
		if !ok {
			return Update{}, fmt.Errorf("update %v: %w: agent %d not in "+
				"current state", t.ID, ErrSkipped, t.AgentID)
		}
		curKey = curFeats.MyPos
	}
	cur, curIsCell := curKey.Cell()

	action := gridworld.InferActionBetween(start, end)
	current, present := l.q.Get(prev, action)

	maxNext := math.Inf(-1)
	multiplier := 1.0
	if curIsCell {
		for _, a := range gridworld.SuccessorCandidates(l.spec, end) {
			if v, ok := l.q.Get(cur, a); ok && v > maxNext {
				maxNext = v
				multiplier = a.StepMultiplier()
			}
		}
	}

	if !present {
		l.logger.Warn("no value for state-action pair, using initial value",
			"agent", t.AgentID, "pos", prev, "action", action,
			"qInit", l.cfg.QInit)
		current = l.cfg.QInit
		multiplier = 1
	}

	if !floatutils.Finite(maxNext) {
		l.logger.Warn("no successor action has a value",
			"agent", t.AgentID, "pos", curKey)
		current = stuckValue
		maxNext = 0
		multiplier = 1
	}

	target := fb + l.cfg.StepCost*multiplier + l.cfg.Discount*maxNext
	value := current + l.cfg.LearningRate*(target-current)
	if err := l.q.Set(prev, action, value); err != nil {
		return Update{}, fmt.Errorf("update %v: %w", t.ID, err)
	}
	if !floatutils.Finite(value) {
		l.logger.Warn("non-finite value written", "agent", t.AgentID,
			"pos", prev, "action", action, "value", value)
	}

	u := Update{
		Pos:        prev,
		Action:     action,
		Old:        current,
		New:        value,
		Feedback:   fb,
		MaxNext:    maxNext,
		Multiplier: multiplier,
	}
	l.logger.Debug("q-table update", "agent", t.AgentID, "pos", prev,
		"action", action, "value", value, "feedback", fb)
	return u, nil
}

func feedback(fb *float64) float64 {
	if fb == nil {
		return 0
	}
	return *fb
}

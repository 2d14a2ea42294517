package qlearning

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/intdogs/roombarl/agent/tabular/qtable"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/trajectory"
	"github.com/intdogs/roombarl/utils/logging"
)

var discard = logging.Discard()

func pos(x, y int) environment.Position {
	return environment.Position{X: x, Y: y}
}

func state(p environment.Point) *trajectory.GlobalState {
	return &trajectory.GlobalState{
		AgentPos:  []environment.Point{p},
		AgentDrag: -1,
	}
}

func selfMove(start, end environment.Position, fb float64) *trajectory.Trajectory {
	t := trajectory.New(0, start, state(start.Point()), time.Time{})
	t.Feedback = trajectory.Ptr(fb)
	t.Finish(end, state(end.Point()), time.Time{})
	return t
}

// intervention returns a cancelled self-move towards try and the drag
// that dropped the agent at drop
func intervention(start, try, drop environment.Position,
	fb float64) (cancelled, drag *trajectory.Trajectory) {
	cancelled = trajectory.New(0, start, state(start.Point()), time.Time{})
	cancelled.Cancelled = true
	cancelled.Try = trajectory.Ptr(try)
	cancelled.CurState = state(drop.Point())

	drag = trajectory.New(0, start, state(start.Point()), time.Time{})
	drag.WasDrag = true
	drag.Feedback = trajectory.Ptr(fb)
	drag.Finish(drop, state(drop.Point()), time.Time{})
	return cancelled, drag
}

func newLearner(t *testing.T, i Interpretation,
	q *qtable.QTable) *QLearner {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Interpretation = i
	l, err := NewQLearner(q, cfg, discard)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func filled(t *testing.T, v float64) *qtable.QTable {
	t.Helper()
	q, err := qtable.Constant(v).Initialize(environment.DefaultSpec())
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLearnSelfMove(t *testing.T) {
	q := filled(t, 1)
	l := newLearner(t, Suggestion, q)

	u, err := l.Learn(selfMove(pos(3, 3), pos(3, 2), 6), nil)
	if err != nil {
		t.Fatal(err)
	}

	// target = 6 - 1 + 0.9 * 1
	want := 1 + 0.1*(5.9-1)
	if u.Pos != pos(3, 3) || u.Action != gridworld.Up {
		t.Errorf("Learn: expected an update of (3, 3) UP, got %v %v", u.Pos,
			u.Action)
	}
	if got, _ := q.Get(pos(3, 3), gridworld.Up); !near(got, want) {
		t.Errorf("Learn: expected %v, got %v", want, got)
	}
	if !near(u.TdError(0.1), 4.9) {
		t.Errorf("TdError: expected 4.9, got %v", u.TdError(0.1))
	}
}

func TestLearnDiagonalSuccessor(t *testing.T) {
	q := filled(t, 1)
	_ = q.Set(pos(3, 2), gridworld.UpLeft, 3)
	l := newLearner(t, Suggestion, q)

	u, err := l.Learn(selfMove(pos(3, 3), pos(3, 2), 0), nil)
	if err != nil {
		t.Fatal(err)
	}
	if u.Multiplier != math.Sqrt2 || u.MaxNext != 3 {
		t.Errorf("Learn: expected max 3 with multiplier sqrt(2), got %v "+
			"with %v", u.MaxNext, u.Multiplier)
	}

	target := -math.Sqrt2 + 0.9*3
	if want := 1 + 0.1*(target-1); !near(u.New, want) {
		t.Errorf("Learn: expected %v, got %v", want, u.New)
	}
}

func TestLearnInitialValue(t *testing.T) {
	q := qtable.New(environment.DefaultSpec())
	_ = q.Set(pos(3, 2), gridworld.Up, 2)
	l := newLearner(t, Suggestion, q)

	u, err := l.Learn(selfMove(pos(3, 3), pos(3, 2), 0), nil)
	if err != nil {
		t.Fatal(err)
	}

	// The missing current value is read as the initial value of 1
	want := 1 + 0.1*((-1+0.9*2)-1)
	if !near(u.Old, 1) || !near(u.New, want) {
		t.Errorf("Learn: expected 1 -> %v, got %v -> %v", want, u.Old, u.New)
	}
	if got, ok := q.Get(pos(3, 3), gridworld.Up); !ok || !near(got, want) {
		t.Errorf("Get: expected %v to be written, got (%v, %v)", want, got, ok)
	}
}

func TestLearnStuck(t *testing.T) {
	q := qtable.New(environment.DefaultSpec())
	l := newLearner(t, Suggestion, q)

	u, err := l.Learn(selfMove(pos(3, 3), pos(4, 3), 0), nil)
	if err != nil {
		t.Fatal(err)
	}

	// No successor value: current is -2 and the bootstrap is dropped
	want := -2 + 0.1*(-1-(-2))
	if !near(u.New, want) || u.MaxNext != 0 || u.Multiplier != 1 {
		t.Errorf("Learn: expected %v with no bootstrap, got %+v", want, u)
	}
}

func TestLearnErrors(t *testing.T) {
	q := filled(t, 1)
	l := newLearner(t, Suggestion, q)

	attempted := selfMove(pos(3, 3), pos(3, 2), 0)
	attempted.End = nil
	if _, err := l.Learn(attempted, nil); !errors.Is(err,
		ErrMissingEndPosition) {
		t.Errorf("Learn: expected ErrMissingEndPosition, got %v", err)
	}

	midway := selfMove(pos(3, 3), pos(3, 2), 0)
	midway.StartState = state(environment.Point{X: 3.5, Y: 3})
	_, err := l.Learn(midway, nil)
	if !errors.Is(err, ErrSkipped) {
		t.Errorf("Learn: expected ErrSkipped, got %v", err)
	}
	if Fatal(err) {
		t.Error("Fatal: a skipped trajectory should not be fatal")
	}

	cancelled, _ := intervention(pos(3, 3), pos(3, 2), pos(5, 5), 0)
	if _, err := l.Learn(cancelled, nil); !errors.Is(err, ErrSkipped) {
		t.Errorf("Learn: expected ErrSkipped without a drag, got %v", err)
	}
	if _, err := l.Learn(nil, nil); !errors.Is(err, ErrSkipped) {
		t.Errorf("Learn: expected ErrSkipped for nil, got %v", err)
	}
}

func TestLearnNonIntegralCurrent(t *testing.T) {
	q := filled(t, 1)
	l := newLearner(t, Suggestion, q)

	traj := selfMove(pos(3, 3), pos(3, 2), 0)
	traj.CurState = state(environment.Point{X: 3, Y: 2.4})
	u, err := l.Learn(traj, nil)
	if err != nil {
		t.Fatal(err)
	}
	if u.Old != -2 || u.MaxNext != 0 {
		t.Errorf("Learn: expected the stuck update, got %+v", u)
	}
}

func TestInterpretations(t *testing.T) {
	const (
		dragFb = 6.0
		hum    = DefaultInterventionFeedback
	)
	start, try, away := pos(3, 3), pos(3, 2), pos(5, 5)

	tests := []struct {
		mode        Interpretation
		drop        environment.Position
		interrupted bool
		action      gridworld.Action
		fb          float64
	}{
		{Suggestion, start, true, 0, 0},
		{Suggestion, away, false, gridworld.DownRight, dragFb},
		{Reset, start, false, gridworld.Up, 0},
		{Reset, away, false, gridworld.Up, 0},
		{Interrupt, away, true, 0, 0},
		{Transition, start, false, gridworld.Up, hum},
		{Transition, away, false, gridworld.DownRight, -hum},
		{Disrupt, start, true, 0, 0},
		{Disrupt, away, false, gridworld.DownRight, hum},
		{Impede, start, false, gridworld.Up, hum},
		{Impede, away, false, gridworld.Up, hum},
	}

	for _, test := range tests {
		q := filled(t, 1)
		before := q.Clone()
		l := newLearner(t, test.mode, q)

		cancelled, drag := intervention(start, try, test.drop, dragFb)
		u, err := l.Learn(cancelled, drag)

		if test.interrupted {
			if !errors.Is(err, ErrInterrupted) {
				t.Errorf("%v drop %v: expected ErrInterrupted, got %v",
					test.mode, test.drop, err)
			}
			if v, _ := q.Get(start, gridworld.Up); v != 1 || q.Len() !=
				before.Len() {
				t.Errorf("%v drop %v: table changed", test.mode, test.drop)
			}
			continue
		}

		if err != nil {
			t.Errorf("%v drop %v: %v", test.mode, test.drop, err)
			continue
		}
		if u.Pos != start || u.Action != test.action {
			t.Errorf("%v drop %v: expected update of %v %v, got %v %v",
				test.mode, test.drop, start, test.action, u.Pos, u.Action)
		}
		if u.Feedback != test.fb {
			t.Errorf("%v drop %v: expected feedback %v, got %v", test.mode,
				test.drop, test.fb, u.Feedback)
		}

		want := 1 + 0.1*(test.fb-1+0.9*1-1)
		if !near(u.New, want) {
			t.Errorf("%v drop %v: expected %v, got %v", test.mode, test.drop,
				want, u.New)
		}
	}
}

func TestInterpretationForUser(t *testing.T) {
	tests := map[int]Interpretation{
		1: Suggestion, 2: Reset, 6: Impede, 7: Suggestion, 12: Impede,
	}
	for user, want := range tests {
		if got := InterpretationForUser(user); got != want {
			t.Errorf("InterpretationForUser(%d): expected %v, got %v", user,
				want, got)
		}
	}

	for i := Suggestion; i <= Impede; i++ {
		parsed, err := ParseInterpretation(i.String())
		if err != nil || parsed != i {
			t.Errorf("ParseInterpretation(%q): got %v (%v)", i.String(),
				parsed, err)
		}
	}
}

package datalog

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/trajectory"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func move(agent int, start, end environment.Position) *trajectory.Trajectory {
	state := &trajectory.GlobalState{
		AgentPos:      []environment.Point{start.Point(), {X: 6, Y: 6}},
		PelletPos:     []environment.Point{{X: 1.25, Y: 2.5}},
		AgentSelfMove: []bool{true, false},
		AgentDrag:     -1,
		AgentScores:   []float64{0, 6},
		TotNumPellets: 2,
	}
	t := trajectory.New(agent, start, state, epoch)
	t.Feedback = trajectory.Ptr(0.0)
	t.Finish(end, state.Clone(), epoch.Add(2*time.Second))
	return t
}

func fill(t *testing.T, l *Log) {
	t.Helper()
	a := environment.Position{X: 1, Y: 1}
	b := environment.Position{X: 2, Y: 1}

	attempted := move(0, a, b)
	attempted.End, attempted.EndTime = nil, nil

	cancelled := move(0, a, b)
	cancelled.End = nil
	cancelled.Cancelled = true
	cancelled.Try = trajectory.Ptr(b)

	drag := move(0, a, environment.Position{X: 4, Y: 4})
	drag.WasDrag = true
	drag.Feedback = trajectory.Ptr(6.0)
	drag.GotPellet = true

	for _, traj := range []*trajectory.Trajectory{
		move(0, a, b), attempted, cancelled, drag, move(1, b, a),
	} {
		if err := l.Add(traj); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLogQueries(t *testing.T) {
	l := New(2)
	fill(t, l)

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"Trajectories", len(l.Trajectories(0)), 4},
		{"NumFull", l.NumFull(0), 2},
		{"Attempted", len(l.Attempted(0)), 2},
		{"Dragged", len(l.Dragged(0)), 1},
		{"Cancelled", len(l.Cancelled(0)), 1},
		{"All", len(l.All()), 5},
		{"other agent", len(l.Trajectories(1)), 1},
		{"unknown agent", len(l.Trajectories(9)), 0},
	}
	for _, test := range tests {
		if test.got != test.want {
			t.Errorf("%s: expected %d, got %d", test.name, test.want, test.got)
		}
	}

	start, err := l.StartTime(0)
	if err != nil || !start.Equal(epoch) {
		t.Errorf("StartTime: expected %v, got (%v, %v)", epoch, start, err)
	}

	l.Reset()
	if _, err := l.StartTime(0); !errors.Is(err, ErrNoTrajectories) {
		t.Errorf("StartTime: expected ErrNoTrajectories, got %v", err)
	}
}

func TestLogAddErrors(t *testing.T) {
	l := New(1)
	if err := l.Add(nil); err == nil {
		t.Error("Add: expected an error for nil")
	}
	if err := l.Add(move(3, environment.Position{},
		environment.Position{X: 1})); err == nil {
		t.Error("Add: expected an error for an unknown agent")
	}
}

func TestLogSubscribe(t *testing.T) {
	l := New(1)
	var calls atomic.Int32
	unsubscribe := l.Subscribe(func() { calls.Add(1) })

	traj := move(0, environment.Position{}, environment.Position{X: 1})
	_ = l.Add(traj)
	_ = l.Add(traj)
	if n := calls.Load(); n != 2 {
		t.Errorf("Subscribe: expected one notification per Add, got %d", n)
	}

	// Failed adds do not notify
	_ = l.Add(nil)
	if n := calls.Load(); n != 2 {
		t.Errorf("Subscribe: notified on a failed Add")
	}

	unsubscribe()
	unsubscribe()
	_ = l.Add(traj)
	if n := calls.Load(); n != 2 {
		t.Errorf("Subscribe: notified after unsubscribing")
	}
}

func TestLogConcurrentAdd(t *testing.T) {
	l := New(4)
	var notified atomic.Int32
	l.Subscribe(func() {
		// Reading from a listener must not deadlock
		_ = l.NumAgents()
		notified.Add(1)
	})

	var wg sync.WaitGroup
	for agent := 0; agent < 4; agent++ {
		wg.Add(1)
		go func(agent int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = l.Add(move(agent, environment.Position{},
					environment.Position{X: 1}))
			}
		}(agent)
	}
	wg.Wait()

	if n := len(l.All()); n != 400 {
		t.Errorf("All: expected 400 trajectories, got %d", n)
	}
	if n := notified.Load(); n != 400 {
		t.Errorf("Subscribe: expected 400 notifications, got %d", n)
	}
}

// Package datalog implements the shared log of every trajectory
// recorded in a session
package datalog

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/intdogs/roombarl/trajectory"
)

// ErrNoTrajectories is returned by queries that need at least one
// recorded trajectory
var ErrNoTrajectories = errors.New("no trajectories recorded")

// Log stores the trajectories of each agent in the order they were
// added. Subscribers are notified once after every successful Add.
type Log struct {
	mu        sync.RWMutex
	data      [][]*trajectory.Trajectory
	listeners map[int]func()
	nextID    int
}

// New returns an empty Log for numAgents agents
func New(numAgents int) *Log {
	return &Log{
		data:      make([][]*trajectory.Trajectory, numAgents),
		listeners: make(map[int]func()),
	}
}

// NumAgents returns the number of agents in the log
func (l *Log) NumAgents() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.data)
}

// Add appends t to the trajectories of its agent and then notifies
// every subscriber
func (l *Log) Add(t *trajectory.Trajectory) error {
	if t == nil {
		return fmt.Errorf("add: nil trajectory")
	}

	l.mu.Lock()
	if t.AgentID < 0 || t.AgentID >= len(l.data) {
		l.mu.Unlock()
		return fmt.Errorf("add: no agent %d", t.AgentID)
	}
	l.data[t.AgentID] = append(l.data[t.AgentID], t)
	listeners := make([]func(), 0, len(l.listeners))
	for _, fn := range l.listeners {
		listeners = append(listeners, fn)
	}
	l.mu.Unlock()

	for _, notify := range listeners {
		notify()
	}
	return nil
}

// Subscribe registers fn to be called after every Add. The returned
// function removes the subscription.
func (l *Log) Subscribe(fn func()) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.listeners, id)
			l.mu.Unlock()
		})
	}
}

// Reset removes every trajectory. Subscriptions are kept.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.data {
		l.data[i] = nil
	}
}

// Trajectories returns the trajectories of an agent
func (l *Log) Trajectories(agent int) []*trajectory.Trajectory {
	return l.filter(agent, func(*trajectory.Trajectory) bool { return true })
}

// All returns the trajectories of every agent, agent by agent
func (l *Log) All() []*trajectory.Trajectory {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var all []*trajectory.Trajectory
	for _, trajs := range l.data {
		all = append(all, trajs...)
	}
	return all
}

// NumFull returns the number of trajectories of an agent that reached
// an end position
func (l *Log) NumFull(agent int) int {
	return len(l.Completed(agent))
}

// Completed returns the trajectories of an agent that reached an end
// position
func (l *Log) Completed(agent int) []*trajectory.Trajectory {
	return l.filter(agent, (*trajectory.Trajectory).Complete)
}

// Attempted returns the trajectories of an agent that never reached an
// end position
func (l *Log) Attempted(agent int) []*trajectory.Trajectory {
	return l.filter(agent, func(t *trajectory.Trajectory) bool {
		return !t.Complete()
	})
}

// Dragged returns the drags of an agent
func (l *Log) Dragged(agent int) []*trajectory.Trajectory {
	return l.filter(agent, func(t *trajectory.Trajectory) bool {
		return t.WasDrag
	})
}

// Cancelled returns the self-moves of an agent that a human cancelled
func (l *Log) Cancelled(agent int) []*trajectory.Trajectory {
	return l.filter(agent, func(t *trajectory.Trajectory) bool {
		return t.Cancelled
	})
}

// StartTime returns the start time of the first trajectory of an agent
func (l *Log) StartTime(agent int) (time.Time, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if agent < 0 || agent >= len(l.data) || len(l.data[agent]) == 0 {
		return time.Time{}, fmt.Errorf("startTime: agent %d: %w", agent,
			ErrNoTrajectories)
	}
	return l.data[agent][0].StartTime, nil
}

func (l *Log) filter(agent int,
	keep func(*trajectory.Trajectory) bool) []*trajectory.Trajectory {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if agent < 0 || agent >= len(l.data) {
		return nil
	}
	return slices.Collect(func(yield func(*trajectory.Trajectory) bool) {
		for _, t := range l.data[agent] {
			if keep(t) && !yield(t) {
				return
			}
		}
	})
}

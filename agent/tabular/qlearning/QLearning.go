// Package qlearning implements a tabular Q-learning agent that learns
// online from its own moves and from humans dragging it around the
// grid.
//
// Trajectories reported to the agent are queued, and a drain performs
// one update per queued self-move, pairing each cancelled self-move
// with the drag that cancelled it. How a drag is read is fixed per
// agent by its Interpretation.
package qlearning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/intdogs/roombarl/agent"
	"github.com/intdogs/roombarl/agent/tabular/policy"
	"github.com/intdogs/roombarl/agent/tabular/qtable"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/environment/pellet"
	"github.com/intdogs/roombarl/simulator"
	"github.com/intdogs/roombarl/trajectory"
	"github.com/intdogs/roombarl/utils/logging"
)

// QLearning implements the Q-Learning algorithm
type QLearning struct {
	id  int
	cfg Config

	space   *gridworld.StateSpace
	q       *qtable.QTable
	learner *QLearner

	// behaviour selects moves, target is the greedy policy evaluated
	behaviour *policy.EGreedy
	target    *policy.Greedy
	teacher   *policy.Teacher
	sim       *simulator.Simulator
	simMu     sync.Mutex

	// tableMu guards q and the policies reading it
	tableMu sync.RWMutex

	queueMu   sync.Mutex
	selfMoves []*trajectory.Trajectory
	drags     []*trajectory.Trajectory
	history   []*trajectory.Trajectory
	wake      chan struct{}

	drainMu  sync.Mutex
	learning atomic.Bool
	updates  atomic.Int64

	logger *slog.Logger
}

// Option configures a QLearning agent
type Option func(*options)

type options struct {
	logger *slog.Logger
	init   qtable.Initializer
}

// WithLogger sets the logger of the agent
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithInitializer overrides the starting table given by the Config
func WithInitializer(init qtable.Initializer) Option {
	return func(o *options) { o.init = init }
}

// New creates a new QLearning agent with the given id
func New(id int, env agent.Env, c Config, seed uint64,
	opts ...Option) (*QLearning, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	if err := env.Spec.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	o := options{init: c.Initializer()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := logging.OrDefault(o.logger).With("agent", id)

	q, err := o.init.Initialize(env.Spec)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	model, err := env.Pellet.Model(env.Spec)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	table := pellet.NewExpectedTable(pellet.NewGrid(env.Spec, model))

	space := gridworld.NewStateSpace(env.Spec)
	behaviour, err := policy.NewEGreedy(c.Epsilon, q, space, seed)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	learner, err := NewQLearner(q, c, logger)
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &QLearning{
		id:        id,
		cfg:       c,
		space:     space,
		q:         q,
		learner:   learner,
		behaviour: behaviour,
		target:    policy.NewGreedy(q, space, seed+1),
		teacher:   policy.NewTeacher(table),
		sim:       simulator.New(table, seed+2),
		wake:      make(chan struct{}, 1),
		logger:    logger,
	}, nil
}

// ID implements the agent.Agent interface
func (q *QLearning) ID() int {
	return q.id
}

// Config returns the configuration of the agent
func (q *QLearning) Config() Config {
	return q.cfg
}

// Interpretation returns how the agent reads human drags
func (q *QLearning) Interpretation() Interpretation {
	return q.cfg.Interpretation
}

// SelectMove implements the agent.Agent interface. The greedy policy
// is derived afresh on every call, so ties may break differently
// between calls.
func (q *QLearning) SelectMove(pos environment.Position,
	_ []environment.Point, _ *trajectory.GlobalState) (dx, dy int) {
	q.tableMu.Lock()
	defer q.tableMu.Unlock()
	return q.behaviour.SelectMove(pos)
}

// Policy returns a freshly derived greedy policy
func (q *QLearning) Policy() policy.Policy {
	q.tableMu.Lock()
	defer q.tableMu.Unlock()
	return q.target.Derive()
}

// QTable returns a copy of the agent's table
func (q *QLearning) QTable() *qtable.QTable {
	q.tableMu.RLock()
	defer q.tableMu.RUnlock()
	return q.q.Clone()
}

// Updates returns the number of writes made to the table
func (q *QLearning) Updates() int64 {
	return q.updates.Load()
}

// EnqueueOption modifies how a trajectory is queued
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	exclude bool
}

// ExcludeFromLearning records a trajectory in the agent's history
// without queueing it for learning
func ExcludeFromLearning() EnqueueOption {
	return func(o *enqueueOptions) { o.exclude = true }
}

// Observe implements the agent.Agent interface
func (q *QLearning) Observe(t *trajectory.Trajectory) error {
	return q.Enqueue(t)
}

// Enqueue records a trajectory and queues it for learning. Drags go to
// the drag queue and everything else to the self-move queue.
func (q *QLearning) Enqueue(t *trajectory.Trajectory,
	opts ...EnqueueOption) error {
	if t == nil {
		return fmt.Errorf("enqueue: nil trajectory")
	}
	if t.AgentID != q.id {
		return fmt.Errorf("enqueue: trajectory of agent %d given to agent %d",
			t.AgentID, q.id)
	}

	var o enqueueOptions
	for _, opt := range opts {
		opt(&o)
	}

	q.queueMu.Lock()
	q.history = append(q.history, t)
	switch {
	case t.WasDrag:
		q.drags = append(q.drags, t)
	case !o.exclude:
		q.selfMoves = append(q.selfMoves, t)
	}
	q.queueMu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Pending returns the lengths of the self-move and drag queues
func (q *QLearning) Pending() (selfMoves, drags int) {
	q.queueMu.Lock()
	defer q.queueMu.Unlock()
	return len(q.selfMoves), len(q.drags)
}

// History returns every trajectory the agent has observed
func (q *QLearning) History() []*trajectory.Trajectory {
	q.queueMu.Lock()
	defer q.queueMu.Unlock()
	return append([]*trajectory.Trajectory(nil), q.history...)
}

// pop removes the most recent self-move and, if there is one, the most
// recent drag
func (q *QLearning) pop() (self, drag *trajectory.Trajectory, ok bool) {
	q.queueMu.Lock()
	defer q.queueMu.Unlock()

	n := len(q.selfMoves)
	if n == 0 {
		return nil, nil, false
	}
	self = q.selfMoves[n-1]
	q.selfMoves[n-1] = nil
	q.selfMoves = q.selfMoves[:n-1]

	if m := len(q.drags); m > 0 {
		drag = q.drags[m-1]
		q.drags[m-1] = nil
		q.drags = q.drags[:m-1]
	}
	return self, drag, true
}

// Learning implements the agent.Learner interface
func (q *QLearning) Learning() bool {
	return q.learning.Load()
}

// Step performs a single update from the queues. It returns false if
// there was nothing to learn from.
func (q *QLearning) Step() (bool, error) {
	self, drag, ok := q.pop()
	if !ok {
		return false, nil
	}

	q.tableMu.Lock()
	_, err := q.learner.Learn(self, drag)
	q.tableMu.Unlock()

	if err == nil {
		q.updates.Add(1)
	}
	return true, err
}

// Drain implements the agent.Learner interface. Once the self-move
// queue is empty, Drain waits for the configured grace delay and
// resumes if a trajectory arrives in the meantime.
func (q *QLearning) Drain(ctx context.Context) error {
	q.drainMu.Lock()
	defer q.drainMu.Unlock()

	q.learning.Store(true)
	defer q.learning.Store(false)

	var errs []error
	for {
		for {
			if err := ctx.Err(); err != nil {
				return errors.Join(append(errs, err)...)
			}

			stepped, err := q.Step()
			if !stepped {
				break
			}
			if Fatal(err) {
				q.logger.Error("could not learn from trajectory", "err", err)
				errs = append(errs, err)
			} else if err != nil {
				q.logger.Debug("trajectory not learned from", "err", err)
			}
		}

		timer := time.NewTimer(q.cfg.GraceDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(append(errs, ctx.Err())...)

		case <-q.wake:
			timer.Stop()

		case <-timer.C:
			if n, _ := q.Pending(); n == 0 {
				return errors.Join(errs...)
			}
		}
	}
}

// Run drains the queues whenever a trajectory is enqueued, until ctx
// is cancelled
func (q *QLearning) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
			if err := q.Drain(ctx); err != nil && ctx.Err() == nil {
				q.logger.Warn("drain finished with errors", "err", err)
			}
		}
	}
}

// SimulateActions implements the agent.Evaluator interface
func (q *QLearning) SimulateActions() (float64, error) {
	p := q.Policy()

	q.simMu.Lock()
	defer q.simMu.Unlock()
	return q.sim.Simulate(p)
}

// BestActions implements the agent.Evaluator interface
func (q *QLearning) BestActions(pos environment.Position) []gridworld.Action {
	return q.teacher.BestActions(pos)
}

// IsOptimalAction implements the agent.Evaluator interface
func (q *QLearning) IsOptimalAction(pos environment.Position,
	a gridworld.Action) bool {
	return q.teacher.IsOptimal(pos, a)
}

// GobEncode implements the gob.GobEncoder interface. Only the table is
// encoded.
func (q *QLearning) GobEncode() ([]byte, error) {
	q.tableMu.RLock()
	defer q.tableMu.RUnlock()
	return q.q.GobEncode()
}

// GobDecode implements the gob.GobDecoder interface. The decoded table
// replaces the agent's table and must cover the same grid.
func (q *QLearning) GobDecode(data []byte) error {
	decoded := new(qtable.QTable)
	if err := decoded.GobDecode(data); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	q.tableMu.Lock()
	defer q.tableMu.Unlock()
	if decoded.Spec() != q.q.Spec() {
		return fmt.Errorf("gobDecode: table grid %+v does not match agent "+
			"grid %+v", decoded.Spec(), q.q.Spec())
	}
	*q.q = *decoded
	return nil
}

// Save writes the agent's table to filename
func (q *QLearning) Save(filename string) error {
	return q.QTable().Save(filename)
}

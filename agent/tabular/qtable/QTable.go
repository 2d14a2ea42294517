// Package qtable implements a tabular action-value function over grid
// cells and actions.
//
// A QTable distinguishes an entry that was never written from an entry
// holding zero. Callers learning from the table must treat the two
// differently.
package qtable

import (
	"errors"
	"fmt"

	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"gonum.org/v1/gonum/mat"
)

// ErrOutOfGrid is returned when an entry outside of the grid is written
var ErrOutOfGrid = errors.New("position outside of grid")

// Index is the composite key of a table entry
type Index struct {
	Pos    environment.Position `json:"myPos"`
	Action gridworld.Action     `json:"action"`
}

// QTable maps (cell, action) pairs to values
type QTable struct {
	spec    environment.Spec
	values  *mat.Dense // cells x actions
	present []bool

	// order holds packed indices in first-write order
	order []int

	// keys holds every written position once, with the most recently
	// written action for that position
	keys     []Index
	keyIndex map[environment.Position]int
}

// New returns an empty QTable over the grid described by spec
func New(spec environment.Spec) *QTable {
	return &QTable{
		spec:     spec,
		values:   mat.NewDense(spec.NumCells(), gridworld.NumActions, nil),
		present:  make([]bool, spec.NumCells()*gridworld.NumActions),
		keyIndex: make(map[environment.Position]int),
	}
}

// Spec returns the grid geometry of the table
func (q *QTable) Spec() environment.Spec {
	return q.spec
}

func (q *QTable) pack(pos environment.Position, a gridworld.Action) int {
	return q.spec.Index(pos)*gridworld.NumActions + int(a)
}

func (q *QTable) unpack(i int) Index {
	return Index{
		Pos:    q.spec.At(i / gridworld.NumActions),
		Action: gridworld.Action(i % gridworld.NumActions),
	}
}

// Get returns the value stored for (pos, a) and whether one was ever
// written
func (q *QTable) Get(pos environment.Position, a gridworld.Action) (float64,
	bool) {
	if !q.spec.Contains(pos) || !a.IsValid() {
		return 0, false
	}
	i := q.pack(pos, a)
	if !q.present[i] {
		return 0, false
	}
	return q.values.At(q.spec.Index(pos), int(a)), true
}

// Set stores v for (pos, a)
func (q *QTable) Set(pos environment.Position, a gridworld.Action,
	v float64) error {
	if !q.spec.Contains(pos) {
		return fmt.Errorf("set %v: %w", pos, ErrOutOfGrid)
	}
	if !a.IsValid() {
		return fmt.Errorf("set %v: invalid action %v", pos, a)
	}

	i := q.pack(pos, a)
	if !q.present[i] {
		q.present[i] = true
		q.order = append(q.order, i)
	}
	q.values.Set(q.spec.Index(pos), int(a), v)

	key := Index{pos, a}
	if k, ok := q.keyIndex[pos]; ok {
		q.keys[k] = key
	} else {
		q.keyIndex[pos] = len(q.keys)
		q.keys = append(q.keys, key)
	}
	return nil
}

// Keys returns every position with at least one written entry, each
// once, in the order positions were first written
func (q *QTable) Keys() []environment.Position {
	keys := make([]environment.Position, len(q.keys))
	for i, k := range q.keys {
		keys[i] = k.Pos
	}
	return keys
}

// Len returns the number of written entries
func (q *QTable) Len() int {
	return len(q.order)
}

// Fill writes v to every (cell, action) pair of the grid
func (q *QTable) Fill(v float64) {
	for _, pos := range q.spec.Cells() {
		for _, a := range gridworld.Actions {
			// Positions and actions come from the table's own grid
			_ = q.Set(pos, a, v)
		}
	}
}

// Clone returns a deep copy of the table
func (q *QTable) Clone() *QTable {
	c := &QTable{
		spec:     q.spec,
		values:   mat.DenseCopyOf(q.values),
		present:  append([]bool(nil), q.present...),
		order:    append([]int(nil), q.order...),
		keys:     append([]Index(nil), q.keys...),
		keyIndex: make(map[environment.Position]int, len(q.keyIndex)),
	}
	for k, v := range q.keyIndex {
		c.keyIndex[k] = v
	}
	return c
}

// Max returns the largest written value at pos and whether any exists
func (q *QTable) Max(pos environment.Position) (float64, bool) {
	var max float64
	found := false
	for _, a := range gridworld.Actions {
		v, ok := q.Get(pos, a)
		if ok && (!found || v > max) {
			max, found = v, true
		}
	}
	return max, found
}

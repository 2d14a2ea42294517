package qtable

import (
	"fmt"

	"github.com/intdogs/roombarl/environment"
)

// Initializer provides the table an agent starts learning from
type Initializer interface {
	Initialize(spec environment.Spec) (*QTable, error)
}

// Constant fills every (cell, action) pair with the same value
type Constant float64

// Initialize implements the Initializer interface
func (c Constant) Initialize(spec environment.Spec) (*QTable, error) {
	q := New(spec)
	q.Fill(float64(c))
	return q, nil
}

// Snapshot loads a pretrained table from a file written by
// QTable.Save. Pairs missing from the file stay unwritten.
type Snapshot string

// Initialize implements the Initializer interface
func (s Snapshot) Initialize(spec environment.Spec) (*QTable, error) {
	q, err := Load(string(s), spec)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	if q.Spec() != spec {
		return nil, fmt.Errorf("initialize: snapshot grid %dx%d does not "+
			"match %dx%d", q.Spec().Width, q.Spec().Height, spec.Width,
			spec.Height)
	}
	return q, nil
}

// Table provides a copy of an in-memory table
type Table struct {
	*QTable
}

// Initialize implements the Initializer interface
func (t Table) Initialize(spec environment.Spec) (*QTable, error) {
	if t.QTable == nil {
		return nil, fmt.Errorf("initialize: no table")
	}
	if t.Spec() != spec {
		return nil, fmt.Errorf("initialize: table grid does not match")
	}
	return t.Clone(), nil
}

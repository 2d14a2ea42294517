// Package checkpointer saves agents while an experiment runs
package checkpointer

import "encoding/gob"

// Serializable is an object that can be saved/serialized
type Serializable interface {
	gob.GobEncoder
	gob.GobDecoder
	Save(filename string) error
}

// Checkpointer checkpoints/saves serializable objects based on the
// number of steps an experiment has run
type Checkpointer interface {
	Checkpoint(step int) error
}

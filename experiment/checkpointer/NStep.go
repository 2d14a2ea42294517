package checkpointer

import "fmt"

// nStep implements checkpointing every N steps
type nStep struct {
	interval int
	object   Serializable

	// filename names the file of each checkpoint. FilenameEnumerator
	// numbers checkpoints consecutively and FileTimer stamps them with
	// the time they were taken.
	filename func() string
}

// NewNStep returns a checkpointer that saves object every n steps
func NewNStep(n int, object Serializable,
	filename func() string) (Checkpointer, error) {
	if n < 1 {
		return nil, fmt.Errorf("newNStep: interval must be positive, got %d",
			n)
	}
	return &nStep{
		interval: n,
		object:   object,
		filename: filename,
	}, nil
}

// Checkpoint saves the tracked object if step is a multiple of the
// interval. Step zero is never checkpointed.
func (n *nStep) Checkpoint(step int) error {
	if step == 0 || step%n.interval != 0 {
		return nil
	}
	if err := n.object.Save(n.filename()); err != nil {
		return fmt.Errorf("checkpoint: step %d: %w", step, err)
	}
	return nil
}

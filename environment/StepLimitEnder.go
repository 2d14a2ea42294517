package environment

// StepLimit implements the Ender interface to end runs after a fixed
// number of steps
type StepLimit struct {
	steps int
}

// NewStepLimit creates and returns a new step limit
func NewStepLimit(steps int) StepLimit {
	return StepLimit{steps}
}

// End returns whether step has reached the limit
func (s StepLimit) End(step int) bool {
	return step >= s.steps
}

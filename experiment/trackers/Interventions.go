package trackers

import (
	"fmt"

	"github.com/intdogs/roombarl/experiment/tracker"
	"github.com/intdogs/roombarl/trajectory"
)

// Interventions counts the drags and cancelled moves of each step.
// The saved data is an []InterventionCount, one per step with at least
// one intervention.
type Interventions struct {
	counts   []InterventionCount
	filename string
}

// InterventionCount is the number of interventions during a step
type InterventionCount struct {
	Step      int
	Drags     int
	Cancelled int
}

// NewInterventions returns a new Interventions Tracker which will save
// its data at the specified location filename
func NewInterventions(filename string) *Interventions {
	return &Interventions{filename: filename}
}

// Track counts the interventions among the step's trajectories
func (i *Interventions) Track(s tracker.Step) error {
	count := InterventionCount{Step: s.Number}
	for _, t := range s.Trajectories {
		switch t.Kind() {
		case trajectory.Drag:
			count.Drags++
		case trajectory.Cancelled:
			count.Cancelled++
		}
	}

	if count.Drags > 0 || count.Cancelled > 0 {
		i.counts = append(i.counts, count)
	}
	return nil
}

// Counts returns the tracked counts
func (i *Interventions) Counts() []InterventionCount {
	return i.counts
}

// Total returns the number of drags tracked
func (i *Interventions) Total() int {
	total := 0
	for _, c := range i.counts {
		total += c.Drags
	}
	return total
}

// Save saves the data tracked by the Interventions Tracker to disk
func (i *Interventions) Save() error {
	if err := tracker.Save(i.filename, i.counts); err != nil {
		return fmt.Errorf("save interventions: %w", err)
	}
	return nil
}

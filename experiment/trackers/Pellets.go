// Package trackers implements the Trackers used by experiments
package trackers

import (
	"fmt"
	"slices"

	"github.com/intdogs/roombarl/experiment/tracker"
)

// Pellets tracks and saves the accumulated pellet feedback of every
// agent after each step. The saved data is a [][]float64 indexed by
// step and then by agent.
//
// Note: if the Tracker is registered with a single agent through
// tracker.Register, each row holds that agent's score only.
type Pellets struct {
	lastStep int
	scores   [][]float64
	filename string
}

// NewPellets creates and returns a new *Pellets Tracker
func NewPellets(filename string) *Pellets {
	return &Pellets{lastStep: -1, filename: filename}
}

// Track caches the scores of a step. Steps must be tracked in order.
func (p *Pellets) Track(s tracker.Step) error {
	if p.lastStep >= 0 && s.Number != p.lastStep+1 {
		return fmt.Errorf("track: last two steps tracked are not "+
			"sequential: step %v --> step %v", p.lastStep, s.Number)
	}
	p.lastStep = s.Number
	p.scores = append(p.scores, slices.Clone(s.Scores))
	return nil
}

// Scores returns the tracked scores
func (p *Pellets) Scores() [][]float64 {
	return p.scores
}

// Save saves the data tracked by the Pellets Tracker to disk
func (p *Pellets) Save() error {
	if err := tracker.Save(p.filename, p.scores); err != nil {
		return fmt.Errorf("save pellets: %w", err)
	}
	return nil
}

// Package tracker implements Trackers, which track and save data in an
// experiment
package tracker

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/intdogs/roombarl/agent"
	"github.com/intdogs/roombarl/trajectory"
)

// Step is what a Tracker sees after every step of an experiment
type Step struct {
	Number int
	Agents []agent.Agent

	// Trajectories holds the trajectories recorded during the step
	Trajectories []*trajectory.Trajectory

	// Scores holds the accumulated feedback of every agent
	Scores []float64
}

// Interface Tracker keeps track of experiment data and saves the data
// after the experiment has finished
type Tracker interface {
	Track(s Step) error
	Save() error
}

// Save gob-encodes data to filename
func Save(filename string, data any) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not open save file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("could not encode data: %w", err)
	}
	return nil
}

// LoadData loads and returns the data saved by a Tracker
func LoadData[T any](filename string) (T, error) {
	var data T

	file, err := os.Open(filename)
	if err != nil {
		return data, fmt.Errorf("could not open data file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return data, fmt.Errorf("could not decode data: %w", err)
	}
	return data, nil
}

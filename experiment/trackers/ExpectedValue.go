package trackers

import (
	"fmt"
	"log/slog"

	"github.com/intdogs/roombarl/agent"
	"github.com/intdogs/roombarl/experiment/tracker"
	"github.com/intdogs/roombarl/simulator"
	"github.com/intdogs/roombarl/utils/logging"
)

// ExpectedValue simulates the greedy policy of every agent that can be
// evaluated, once every interval steps. The saved data is a
// []ExpectedValueRecord.
type ExpectedValue struct {
	interval int
	records  []ExpectedValueRecord
	filename string
	logger   *slog.Logger
}

// ExpectedValueRecord is the simulated value of one agent at one step
type ExpectedValueRecord struct {
	Step int
	simulator.Result
}

// NewExpectedValue returns an ExpectedValue tracker that simulates
// every interval steps
func NewExpectedValue(interval int, filename string,
	logger *slog.Logger) (*ExpectedValue, error) {
	if interval < 1 {
		return nil, fmt.Errorf("newExpectedValue: interval must be "+
			"positive, got %d", interval)
	}
	return &ExpectedValue{
		interval: interval,
		filename: filename,
		logger:   logging.OrDefault(logger),
	}, nil
}

// Track simulates each agent if the step is due
func (e *ExpectedValue) Track(s tracker.Step) error {
	if s.Number%e.interval != 0 {
		return nil
	}

	for _, a := range s.Agents {
		eval, ok := a.(agent.Evaluator)
		if !ok {
			continue
		}

		v, err := eval.SimulateActions()
		if err != nil {
			return fmt.Errorf("track: agent %d: %w", a.ID(), err)
		}
		e.records = append(e.records, ExpectedValueRecord{
			Step:   s.Number,
			Result: simulator.Result{AgentID: a.ID(), ExpectedValue: v},
		})
		e.logger.Debug("simulated policy", "step", s.Number,
			"agent", a.ID(), "expected", v)
	}
	return nil
}

// Records returns the tracked values
func (e *ExpectedValue) Records() []ExpectedValueRecord {
	return e.records
}

// Last returns the latest value tracked for an agent
func (e *ExpectedValue) Last(agentID int) (float64, bool) {
	for i := len(e.records) - 1; i >= 0; i-- {
		if e.records[i].AgentID == agentID {
			return e.records[i].ExpectedValue, true
		}
	}
	return 0, false
}

// Save saves the data tracked by the ExpectedValue Tracker to disk
func (e *ExpectedValue) Save() error {
	if err := tracker.Save(e.filename, e.records); err != nil {
		return fmt.Errorf("save expected values: %w", err)
	}
	return nil
}

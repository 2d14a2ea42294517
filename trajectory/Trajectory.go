// Package trajectory implements the records of agent moves and human
// drags that drive learning.
package trajectory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/intdogs/roombarl/environment"
)

// Kind denotes what produced a Trajectory
type Kind int

const (
	SelfMove Kind = iota
	Drag
	Cancelled
	Attempted
)

func (k Kind) String() string {
	switch k {
	case Drag:
		return "Drag"
	case Cancelled:
		return "Cancelled"
	case Attempted:
		return "Attempted"
	default:
		return "SelfMove"
	}
}

// Trajectory records one agent move or one human drag. Optional fields
// are pointers so that a missing value is distinguishable from a zero
// value. Field names on the wire match those the host emits.
type Trajectory struct {
	ID      uuid.UUID `json:"id"`
	AgentID int       `json:"agent_id"`

	Start *environment.Position `json:"agent_st_pos,omitempty"`
	End   *environment.Position `json:"agent_end_pos,omitempty"`

	// Try is the cell an agent was attempting to reach when a human
	// intervened
	Try *environment.Position `json:"agent_try_pos,omitempty"`

	WasDrag   bool     `json:"was_dragP"`
	Cancelled bool     `json:"cancelP,omitempty"`
	Feedback  *float64 `json:"feedback,omitempty"`
	GotPellet bool     `json:"got_pelletP,omitempty"`

	StartTime time.Time  `json:"st_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	StartState *GlobalState `json:"start_state,omitempty"`
	CurState   *GlobalState `json:"cur_state,omitempty"`
}

// New returns an empty Trajectory for an agent with a fresh ID
func New(agentID int, start environment.Position, startState *GlobalState,
	startTime time.Time) *Trajectory {
	return &Trajectory{
		ID:         uuid.New(),
		AgentID:    agentID,
		Start:      Ptr(start),
		StartTime:  startTime,
		StartState: startState,
	}
}

// Kind returns what produced the trajectory
func (t *Trajectory) Kind() Kind {
	switch {
	case t.WasDrag:
		return Drag
	case t.Cancelled:
		return Cancelled
	case t.End == nil:
		return Attempted
	default:
		return SelfMove
	}
}

// Complete returns whether the trajectory has reached its end position
func (t *Trajectory) Complete() bool {
	return t.End != nil
}

// Duration returns the time between start and end, or zero if the
// trajectory has no end time
func (t *Trajectory) Duration() time.Duration {
	if t.EndTime == nil {
		return 0
	}
	return t.EndTime.Sub(t.StartTime)
}

// Finish records the end of the trajectory
func (t *Trajectory) Finish(end environment.Position, curState *GlobalState,
	endTime time.Time) {
	t.End = Ptr(end)
	t.CurState = curState
	t.EndTime = Ptr(endTime)
}

func (t *Trajectory) String() string {
	str := "Trajectory | Agent: %d  |  Kind: %v  |  Start: %v  |  End: %v"
	return fmt.Sprintf(str, t.AgentID, t.Kind(), fmtPos(t.Start), fmtPos(t.End))
}

func fmtPos(p *environment.Position) string {
	if p == nil {
		return "-"
	}
	return p.String()
}

// Ptr returns a pointer to a copy of v
func Ptr[T any](v T) *T {
	return &v
}

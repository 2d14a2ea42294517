package qlearning

import (
	"fmt"
	"strings"
)

// Interpretation is how an agent reads a human dragging it away from a
// move it was about to make
type Interpretation int

const (
	// Suggestion learns from the drag's own feedback, unless the agent
	// was put back where it started
	Suggestion Interpretation = iota

	// Reset learns as if the attempted move had completed
	Reset

	// Interrupt never learns from a drag
	Interrupt

	// Transition penalises a put-back as a failed attempt and rewards a
	// drop elsewhere as a transition
	Transition

	// Disrupt rewards a drop elsewhere with the intervention feedback
	Disrupt

	// Impede learns from the attempted move with the intervention
	// feedback
	Impede
)

// NumInterpretations is the number of interpretation modes
const NumInterpretations = 6

var interpretationNames = [NumInterpretations]string{
	"SUGGESTION", "RESET", "INTERRUPT", "TRANSITION", "DISRUPT", "IMPEDE",
}

func (i Interpretation) String() string {
	if !i.IsValid() {
		return fmt.Sprintf("Interpretation(%d)", int(i))
	}
	return interpretationNames[i]
}

// IsValid returns whether i is a known mode
func (i Interpretation) IsValid() bool {
	return i >= Suggestion && i <= Impede
}

// ParseInterpretation parses the name of a mode, ignoring case
func ParseInterpretation(s string) (Interpretation, error) {
	for i, name := range interpretationNames {
		if strings.EqualFold(s, name) {
			return Interpretation(i), nil
		}
	}
	return 0, fmt.Errorf("parseInterpretation: unknown mode %q", s)
}

// InterpretationForUser returns the mode assigned to a participant.
// Participants are numbered from 1 and cycle through the modes.
func InterpretationForUser(userID int) Interpretation {
	i := (userID - 1) % NumInterpretations
	if i < 0 {
		i += NumInterpretations
	}
	return Interpretation(i)
}

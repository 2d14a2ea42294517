package trajectory

import (
	"math"

	"github.com/intdogs/roombarl/environment"
)

// GlobalState is a snapshot of the whole game taken by the host
type GlobalState struct {
	AgentPos      []environment.Point `json:"agent_pos"`
	PelletPos     []environment.Point `json:"pellet_pos"`
	AgentSelfMove []bool              `json:"agent_self_move"`

	// AgentDrag is the index of the agent being dragged or -1
	AgentDrag     int       `json:"agent_drag"`
	AgentScores   []float64 `json:"agent_scores"`
	TotNumPellets int       `json:"tot_num_pellets"`
}

// Clone returns a deep copy of the snapshot
func (g *GlobalState) Clone() *GlobalState {
	if g == nil {
		return nil
	}
	c := *g
	c.AgentPos = append([]environment.Point(nil), g.AgentPos...)
	c.PelletPos = append([]environment.Point(nil), g.PelletPos...)
	c.AgentSelfMove = append([]bool(nil), g.AgentSelfMove...)
	c.AgentScores = append([]float64(nil), g.AgentScores...)
	return &c
}

// Features is the per-agent view of a GlobalState
type Features struct {
	MyPos         environment.Point
	NearAgentPos  environment.Point
	AgentDist     float64
	NearPelletPos environment.Point
	PelletDist    float64
}

// Features extracts the view of agent id from the snapshot. The second
// return value is false if the snapshot has no position for the agent.
//
// When there is no other agent or no pellet, the corresponding position
// is (-1, -1) and the distance is the length of the grid diagonal.
func (g *GlobalState) Features(id int,
	spec environment.Spec) (Features, bool) {
	if g == nil || id < 0 || id >= len(g.AgentPos) {
		return Features{}, false
	}

	diag := math.Hypot(float64(spec.Width), float64(spec.Height))
	none := environment.Point{X: -1, Y: -1}
	f := Features{
		MyPos:         g.AgentPos[id],
		NearAgentPos:  none,
		AgentDist:     diag,
		NearPelletPos: none,
		PelletDist:    diag,
	}

	for i, p := range g.AgentPos {
		if i == id {
			continue
		}
		if d := f.MyPos.Dist(p); d < f.AgentDist {
			f.AgentDist, f.NearAgentPos = d, p
		}
	}
	for _, p := range g.PelletPos {
		if d := f.MyPos.Dist(p); d < f.PelletDist {
			f.PelletDist, f.NearPelletPos = d, p
		}
	}

	return f, true
}

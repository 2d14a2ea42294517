package trajectory

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/intdogs/roombarl/environment"
)

func TestKind(t *testing.T) {
	start := environment.Position{X: 1, Y: 1}
	now := time.Unix(10, 0)

	self := New(0, start, nil, now)
	if self.Kind() != Attempted || self.Complete() {
		t.Errorf("Kind: expected an attempted move, got %v", self.Kind())
	}
	self.Finish(start.Add(1, 0), nil, now.Add(2*time.Second))
	if self.Kind() != SelfMove || self.Duration() != 2*time.Second {
		t.Errorf("Kind: expected a 2s self move, got %v over %v",
			self.Kind(), self.Duration())
	}

	cancelled := New(0, start, nil, now)
	cancelled.Cancelled = true
	if cancelled.Kind() != Cancelled {
		t.Errorf("Kind: expected cancelled, got %v", cancelled.Kind())
	}

	drag := New(0, start, nil, now)
	drag.WasDrag = true
	if drag.Kind() != Drag {
		t.Errorf("Kind: expected drag, got %v", drag.Kind())
	}
}

func TestWireNames(t *testing.T) {
	traj := New(1, environment.Position{X: 2, Y: 3}, nil, time.Unix(0, 0))
	traj.Try = Ptr(environment.Position{X: 3, Y: 3})
	traj.Cancelled = true

	data, err := json.Marshal(traj)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"agent_id", "agent_st_pos", "agent_try_pos",
		"was_dragP", "cancelP", "st_time"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("MarshalJSON: missing %q in %s", key, data)
		}
	}
	if _, ok := raw["agent_end_pos"]; ok {
		t.Error("MarshalJSON: an unfinished move should have no end")
	}
}

func TestFeatures(t *testing.T) {
	spec := environment.DefaultSpec()
	s := &GlobalState{
		AgentPos:  []environment.Point{{X: 0, Y: 0}, {X: 3, Y: 4}},
		PelletPos: []environment.Point{{X: 6, Y: 8}, {X: 1, Y: 0}},
	}

	f, ok := s.Features(0, spec)
	if !ok {
		t.Fatal("Features: expected agent 0")
	}
	if f.AgentDist != 5 || f.NearAgentPos != (environment.Point{X: 3, Y: 4}) {
		t.Errorf("Features: unexpected nearest agent %v at %v",
			f.NearAgentPos, f.AgentDist)
	}
	if f.PelletDist != 1 {
		t.Errorf("Features: expected the nearest pellet at 1, got %v",
			f.PelletDist)
	}

	alone := &GlobalState{AgentPos: []environment.Point{{X: 2, Y: 2}}}
	f, _ = alone.Features(0, spec)
	if f.PelletDist != math.Hypot(8, 8) || f.NearPelletPos.X != -1 {
		t.Errorf("Features: expected no pellet, got %+v", f)
	}

	if _, ok := s.Features(5, spec); ok {
		t.Error("Features: expected no agent 5")
	}
}

func TestClone(t *testing.T) {
	s := &GlobalState{AgentPos: []environment.Point{{X: 1, Y: 1}}}
	c := s.Clone()
	c.AgentPos[0].X = 5
	if s.AgentPos[0].X != 1 {
		t.Error("Clone: changing the copy changed the original")
	}
	if (*GlobalState)(nil).Clone() != nil {
		t.Error("Clone: expected nil for nil")
	}
}

package tracker

// registeredTracker registers a single agent with some Tracker so that
// the Tracker only sees data from the registered agent. The Track and
// Save methods of the embedded Tracker are otherwise unmodified.
//
// This is useful to save the data of each agent in its own file with
// a Tracker that would otherwise track every agent together.
type registeredTracker struct {
	Tracker
	agentID int
}

// Register returns a copy of t that tracks the agent with id agentID
// only.
//
// Note: the underlying concrete type of the registered Tracker is
// lost when registering an agent with a Tracker.
func Register(t Tracker, agentID int) Tracker {
	return &registeredTracker{t, agentID}
}

// Track calls Track on the embedded Tracker with a Step holding only
// the registered agent's data
func (r *registeredTracker) Track(s Step) error {
	filtered := Step{Number: s.Number}

	for _, a := range s.Agents {
		if a.ID() == r.agentID {
			filtered.Agents = append(filtered.Agents, a)
		}
	}
	for _, t := range s.Trajectories {
		if t.AgentID == r.agentID {
			filtered.Trajectories = append(filtered.Trajectories, t)
		}
	}
	if r.agentID >= 0 && r.agentID < len(s.Scores) {
		filtered.Scores = []float64{s.Scores[r.agentID]}
	}

	return r.Tracker.Track(filtered)
}

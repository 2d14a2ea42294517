package server

import (
	"encoding/json"

	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/simulator"
	"github.com/intdogs/roombarl/trajectory"
)

// MessageType names what a websocket message carries
type MessageType string

const (
	// Host to server
	TypeTrajectory MessageType = "traj"
	TypeMove       MessageType = "move"
	TypeSimulate   MessageType = "simulate"
	TypeBest       MessageType = "best_actions"
	TypeSnapshot   MessageType = "snapshot"

	// Server to host
	TypeExpected MessageType = "expected"
	TypeLogged   MessageType = "logged"
	TypeRecorded MessageType = "recorded"
	TypeError    MessageType = "error"
)

// Message is the envelope of every websocket message. Which fields are
// set depends on Type.
type Message struct {
	Type    MessageType `json:"type"`
	AgentID int         `json:"agent_id"`

	// Move requests
	Pos     *environment.Position   `json:"pos,omitempty"`
	Pellets []environment.Point     `json:"pellets,omitempty"`
	State   *trajectory.GlobalState `json:"state,omitempty"`

	// Traj is a trajectory reported by the host. Exclude keeps it out of
	// learning while still recording it.
	Traj    *trajectory.Trajectory `json:"traj,omitempty"`
	Exclude bool                   `json:"exclude,omitempty"`

	// Move replies
	DX   int                 `json:"dx,omitempty"`
	DY   int                 `json:"dy,omitempty"`
	Path []environment.Point `json:"path,omitempty"`

	Actions []gridworld.Action `json:"actions,omitempty"`
	Results []simulator.Result `json:"results,omitempty"`
	QTable  json.RawMessage    `json:"qtable,omitempty"`
	Counts  []Counts           `json:"counts,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Counts summarises the log of one agent
type Counts struct {
	AgentID   int `json:"agent_id"`
	Full      int `json:"num_full"`
	Dragged   int `json:"dragged"`
	Cancelled int `json:"cancelled"`
	Attempted int `json:"attempted"`
}

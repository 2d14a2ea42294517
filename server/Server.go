// Package server connects agents to a host over HTTP and websockets.
//
// The host reports trajectories and asks for moves over a websocket at
// /ws. Round parameters and table snapshots are served over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/intdogs/roombarl/agent"
	"github.com/intdogs/roombarl/agent/tabular/qlearning"
	"github.com/intdogs/roombarl/agent/tabular/qtable"
	"github.com/intdogs/roombarl/datalog"
	"github.com/intdogs/roombarl/experiment"
	"github.com/intdogs/roombarl/simulator"
	"github.com/intdogs/roombarl/utils/logging"
)

// Server holds shared state for HTTP handlers
type Server struct {
	session uuid.UUID
	rounds  experiment.Rounds
	agents  []agent.Agent
	log     *datalog.Log

	upgrader websocket.Upgrader
	logger   *slog.Logger

	wg sync.WaitGroup
}

// tabler is an agent with a table to export
type tabler interface {
	QTable() *qtable.QTable
}

// runner is an agent that learns in the background until its context
// is cancelled
type runner interface {
	Run(ctx context.Context) error
}

// New creates a new Server for agents. Agent i must have id i.
func New(rounds experiment.Rounds, agents []agent.Agent, log *datalog.Log,
	logger *slog.Logger) (*Server, error) {
	if log.NumAgents() != len(agents) {
		return nil, fmt.Errorf("new: log has %d agents, want %d",
			log.NumAgents(), len(agents))
	}
	for i, a := range agents {
		if a.ID() != i {
			return nil, fmt.Errorf("new: agent %d has id %d", i, a.ID())
		}
	}

	session := uuid.New()
	return &Server{
		session: session,
		rounds:  rounds,
		agents:  agents,
		log:     log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logging.OrDefault(logger).With("session", session),
	}, nil
}

// Session returns the id of the server's session
func (s *Server) Session() uuid.UUID {
	return s.session
}

// Log returns the log of every trajectory reported to the server
func (s *Server) Log() *datalog.Log {
	return s.log
}

// Run starts the background learning of every agent that supports it
// and blocks until ctx is cancelled and every learner has stopped
func (s *Server) Run(ctx context.Context) {
	for _, a := range s.agents {
		r, ok := a.(runner)
		if !ok {
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("learner stopped", "agent", a.ID(), "err", err)
			}
		}()
	}
	<-ctx.Done()
	s.wg.Wait()
}

// RegisterRoutes sets up all routes on the given mux
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/parameters", s.handleParameters)
	mux.HandleFunc("/api/agents/", s.handleAgent)
	mux.HandleFunc("/api/expected", s.handleExpected)
	mux.HandleFunc("/api/log", s.handleLog)
	mux.HandleFunc("/ws", s.handleWebsocket)
}

// Handler returns a mux serving every route
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

func (s *Server) handleParameters(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	round := parseIntQuery(r, "round", 1)
	params, err := s.rounds.Round(round)
	if errors.Is(err, experiment.ErrNoRound) {
		http.NotFound(w, r)
		return
	}
	if user := parseIntQuery(r, "user", 0); user > 0 {
		params = params.ForUser(user)
	}
	writeJSON(w, params)
}

// handleAgent serves /api/agents/{id}/qtable
func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/agents/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "qtable" {
		http.NotFound(w, r)
		return
	}
	a, err := s.agent(parts[0])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	t, ok := a.(tabler)
	if !ok {
		http.Error(w, fmt.Sprintf("agent %d has no table", a.ID()),
			http.StatusNotFound)
		return
	}
	writeJSON(w, t.QTable())
}

func (s *Server) handleExpected(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, s.expected())
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, s.counts())
}

func (s *Server) agent(id string) (agent.Agent, error) {
	i, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("no agent %q", id)
	}
	return s.agentByID(i)
}

// expected simulates the policy of every agent that can be evaluated.
// Agents whose simulation fails are logged and left out.
func (s *Server) expected() []simulator.Result {
	results := []simulator.Result{}
	for _, a := range s.agents {
		eval, ok := a.(agent.Evaluator)
		if !ok {
			continue
		}
		v, err := eval.SimulateActions()
		if err != nil {
			s.logger.Warn("could not simulate agent", "agent", a.ID(),
				"err", err)
			continue
		}
		results = append(results, simulator.Result{AgentID: a.ID(),
			ExpectedValue: v})
	}
	return results
}

func (s *Server) counts() []Counts {
	counts := make([]Counts, len(s.agents))
	for i := range counts {
		counts[i] = Counts{
			AgentID:   i,
			Full:      s.log.NumFull(i),
			Dragged:   len(s.log.Dragged(i)),
			Cancelled: len(s.log.Cancelled(i)),
			Attempted: len(s.log.Attempted(i)),
		}
	}
	return counts
}

// record logs a trajectory and hands it to its agent
func (s *Server) record(m Message) error {
	t := m.Traj
	if t == nil {
		return fmt.Errorf("record: message has no trajectory")
	}
	if t.AgentID < 0 || t.AgentID >= len(s.agents) {
		return fmt.Errorf("record: no agent %d", t.AgentID)
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	a := s.agents[t.AgentID]
	var err error
	if q, ok := a.(*qlearning.QLearning); ok && m.Exclude {
		err = q.Enqueue(t, qlearning.ExcludeFromLearning())
	} else {
		err = a.Observe(t)
	}
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}

	if err := s.log.Add(t); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return nil
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	withCORS(w, r)
	if r.Method == http.MethodOptions {
		return false
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func withCORS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	_ = enc.Encode(v)
}

func parseIntQuery(r *http.Request, key string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	if n < 0 {
		return def
	}
	return n
}

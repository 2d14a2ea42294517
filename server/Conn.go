package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/intdogs/roombarl/agent"
	"github.com/intdogs/roombarl/environment/gridworld"
)

const (
	writeTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
)

// conn is one host connection. Writes are serialised since log
// notifications and replies are sent from different goroutines.
type conn struct {
	ws     *websocket.Conn
	mu     sync.Mutex
	logger *slog.Logger
}

func (c *conn) send(m Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(m)
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil,
		time.Now().Add(writeTimeout))
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer ws.Close()

	c := &conn{ws: ws, logger: s.logger.With("remote", r.RemoteAddr)}
	c.logger.Info("host connected")

	// Log writers never block on this connection. Pending notifications
	// coalesce into one counts message.
	logged := make(chan struct{}, 1)
	unsubscribe := s.log.Subscribe(func() {
		select {
		case logged <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-logged:
				m := Message{Type: TypeLogged, Counts: s.counts()}
				if err := c.send(m); err != nil {
					c.logger.Debug("could not send log counts", "err", err)
				}
			case <-ticker.C:
				if err := c.ping(); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				c.logger.Info("host disconnected")
			} else {
				c.logger.Warn("read failed", "err", err)
			}
			return
		}

		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			c.reply(Message{Type: TypeError, Error: err.Error()})
			continue
		}

		reply, err := s.handle(m)
		if err != nil {
			c.logger.Warn("could not handle message", "type", m.Type,
				"err", err)
			reply = Message{Type: TypeError, AgentID: m.AgentID,
				Error: err.Error()}
		}
		c.reply(reply)
	}
}

func (c *conn) reply(m Message) {
	if err := c.send(m); err != nil {
		c.logger.Debug("could not reply", "type", m.Type, "err", err)
	}
}

// handle answers one message from the host
func (s *Server) handle(m Message) (Message, error) {
	switch m.Type {
	case TypeTrajectory:
		if err := s.record(m); err != nil {
			return Message{}, err
		}
		return Message{Type: TypeRecorded, AgentID: m.Traj.AgentID}, nil

	case TypeMove:
		a, err := s.agentByID(m.AgentID)
		if err != nil {
			return Message{}, err
		}
		if m.Pos == nil {
			return Message{}, fmt.Errorf("move: no position")
		}
		dx, dy := a.SelectMove(*m.Pos, m.Pellets, m.State)
		path := gridworld.Interpolate(m.Pos.Point(), m.Pos.Add(dx, dy).Point(),
			gridworld.DefaultMoveTime, gridworld.DefaultRefreshTime)
		return Message{Type: TypeMove, AgentID: m.AgentID, DX: dx, DY: dy,
			Path: path}, nil

	case TypeSimulate:
		return Message{Type: TypeExpected, Results: s.expected()}, nil

	case TypeBest:
		a, err := s.agentByID(m.AgentID)
		if err != nil {
			return Message{}, err
		}
		eval, ok := a.(agent.Evaluator)
		if !ok || m.Pos == nil {
			return Message{}, fmt.Errorf("best actions: agent %d at %v "+
				"cannot be evaluated", m.AgentID, m.Pos)
		}
		return Message{Type: TypeBest, AgentID: m.AgentID,
			Actions: eval.BestActions(*m.Pos)}, nil

	case TypeSnapshot:
		a, err := s.agentByID(m.AgentID)
		if err != nil {
			return Message{}, err
		}
		t, ok := a.(tabler)
		if !ok {
			return Message{}, fmt.Errorf("snapshot: agent %d has no table",
				m.AgentID)
		}
		snap, err := json.Marshal(t.QTable())
		if err != nil {
			return Message{}, fmt.Errorf("snapshot: %w", err)
		}
		return Message{Type: TypeSnapshot, AgentID: m.AgentID, QTable: snap},
			nil
	}

	return Message{}, fmt.Errorf("unknown message type %q", m.Type)
}

func (s *Server) agentByID(id int) (agent.Agent, error) {
	if id < 0 || id >= len(s.agents) {
		return nil, fmt.Errorf("no agent %d", id)
	}
	return s.agents[id], nil
}

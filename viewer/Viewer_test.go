package viewer

import (
	"math/rand/v2"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/intdogs/roombarl/agent/tabular/policy"
	"github.com/intdogs/roombarl/agent/tabular/qtable"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/environment/pellet"
)

func newModel(t *testing.T) Model {
	t.Helper()
	spec := environment.DefaultSpec()
	q := qtable.New(spec)
	_ = q.Set(environment.Position{X: 0, Y: 0}, gridworld.Right, 2.5)
	_ = q.Set(environment.Position{X: 1, Y: 0}, gridworld.Down, -1)
	p := policy.Derive(q, gridworld.NewStateSpace(spec),
		rand.New(rand.NewPCG(1, 1)))

	m, err := pellet.DefaultConfig().Model(spec)
	if err != nil {
		t.Fatal(err)
	}
	teacher := policy.NewTeacher(pellet.NewExpectedTable(
		pellet.NewGrid(spec, m)))

	return New(q, p, WithTeacher(teacher), WithExpectedValue(1.25),
		WithTitle("agent 0"))
}

func press(m Model, key tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(key)
	return next.(Model), cmd
}

func TestUpdateMovesCursor(t *testing.T) {
	m := newModel(t)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	if got := m.Cursor(); got != (environment.Position{X: 2, Y: 1}) {
		t.Errorf("Update: expected cursor (2, 1), got %v", got)
	}

	// The cursor stays on the grid
	for i := 0; i < 5; i++ {
		m, _ = press(m, tea.KeyMsg{Type: tea.KeyUp})
	}
	if got := m.Cursor(); got.Y != 0 {
		t.Errorf("Update: expected cursor on the top row, got %v", got)
	}

	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("Update: expected q to quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Update: expected a quit message")
	}
}

func TestView(t *testing.T) {
	m := newModel(t)
	view := m.View()

	for _, want := range []string{"agent 0", "Expected pellets: 1.250",
		"[→]", "RIGHT", "2.500", "NOMOVE"} {
		if !strings.Contains(view, want) {
			t.Errorf("View: expected %q in\n%s", want, view)
		}
	}

	// Unwritten entries are shown as missing
	if !strings.Contains(view, "       -") {
		t.Errorf("View: expected missing entries to be marked")
	}
}

// Package viewer is a terminal inspector for a Q-table snapshot
package viewer

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/intdogs/roombarl/agent/tabular/policy"
	"github.com/intdogs/roombarl/agent/tabular/qtable"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
)

// arrows are the glyphs of each action, in action order
var arrows = [gridworld.NumActions]string{
	"↑", "↓", "←", "→", "↖", "↗", "↙", "↘", "·",
}

// Model is the bubbletea model of the inspector. The cursor moves over
// the grid and the values of the cell under it are listed.
type Model struct {
	table  *qtable.QTable
	policy policy.Policy
	best   func(environment.Position) []gridworld.Action

	cursor   environment.Position
	expected *float64
	title    string
}

// Option configures a Model
type Option func(*Model)

// WithTeacher marks the optimal actions of each cell
func WithTeacher(t *policy.Teacher) Option {
	return func(m *Model) { m.best = t.BestActions }
}

// WithExpectedValue shows the simulated value of the policy
func WithExpectedValue(v float64) Option {
	return func(m *Model) { m.expected = &v }
}

// WithTitle sets the heading of the inspector
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// New returns an inspector for table and the greedy policy derived
// from it
func New(table *qtable.QTable, p policy.Policy, opts ...Option) Model {
	m := Model{table: table, policy: p, title: "Q-table"}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Cursor returns the selected cell
func (m Model) Cursor() environment.Position {
	return m.cursor
}

// Init implements the tea.Model interface
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements the tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	next := m.cursor
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		next = next.Add(0, -1)
	case "down", "j":
		next = next.Add(0, 1)
	case "left", "h":
		next = next.Add(-1, 0)
	case "right", "l":
		next = next.Add(1, 0)
	}
	if m.table.Spec().Contains(next) {
		m.cursor = next
	}
	return m, nil
}

// View implements the tea.Model interface
func (m Model) View() string {
	var b strings.Builder
	spec := m.table.Spec()

	fmt.Fprintf(&b, "%s  (%d entries)\n", m.title, m.table.Len())
	if m.expected != nil {
		fmt.Fprintf(&b, "Expected pellets: %.3f\n", *m.expected)
	}
	b.WriteString("\n")

	for y := range spec.Height {
		for x := range spec.Width {
			pos := environment.Position{X: x, Y: y}
			glyph := " "
			if a, ok := m.policy.Action(pos); ok {
				glyph = arrows[a]
			}
			if pos == m.cursor {
				fmt.Fprintf(&b, "[%s]", glyph)
			} else {
				fmt.Fprintf(&b, " %s ", glyph)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nCell %v\n", m.cursor)
	var best []gridworld.Action
	if m.best != nil {
		best = m.best(m.cursor)
	}
	for _, a := range gridworld.Actions {
		fmt.Fprintf(&b, "  %-9v %s %s\n", a, m.value(a), mark(a, best))
	}

	b.WriteString("\nArrows move, q quits.\n")
	return b.String()
}

func (m Model) value(a gridworld.Action) string {
	v, ok := m.table.Get(m.cursor, a)
	switch {
	case !ok:
		return fmt.Sprintf("%8s", "-")
	case math.IsNaN(v):
		return fmt.Sprintf("%8s", "NaN")
	}
	return fmt.Sprintf("%8.3f", v)
}

func mark(a gridworld.Action, best []gridworld.Action) string {
	for _, b := range best {
		if a == b {
			return "*"
		}
	}
	return ""
}

// Run starts the inspector in the terminal and blocks until it quits
func Run(m Model) error {
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}

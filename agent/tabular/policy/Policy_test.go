package policy

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/intdogs/roombarl/agent/tabular/qtable"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/environment/pellet"
)

func TestDeriveStaysOnGrid(t *testing.T) {
	spec := environment.DefaultSpec()
	q, _ := qtable.Constant(1).Initialize(spec)
	space := gridworld.NewStateSpace(spec)
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 20; i++ {
		p := Derive(q, space, rng)
		if len(p) != spec.NumCells() {
			t.Fatalf("Derive: expected %d cells, got %d", spec.NumCells(),
				len(p))
		}
		for pos, a := range p {
			if !gridworld.Valid(spec, pos, a) {
				t.Fatalf("Derive: %v at %v leaves the grid", a, pos)
			}
		}
	}
}

func TestDeriveDefaultsToUp(t *testing.T) {
	spec := environment.DefaultSpec()
	q := qtable.New(spec)
	p := Derive(q, gridworld.NewStateSpace(spec), rand.New(rand.NewPCG(1, 1)))

	for _, pos := range spec.Cells() {
		if a, _ := p.Action(pos); a != gridworld.Up {
			t.Errorf("Derive: expected UP at %v in an empty table, got %v",
				pos, a)
		}
	}
}

func TestGreedyActionPicksMax(t *testing.T) {
	spec := environment.DefaultSpec()
	q := qtable.New(spec)
	pos := environment.Position{X: 3, Y: 3}
	_ = q.Set(pos, gridworld.Up, 1)
	_ = q.Set(pos, gridworld.DownLeft, 5)
	_ = q.Set(pos, gridworld.Right, 0)

	rng := rand.New(rand.NewPCG(3, 3))
	a := GreedyAction(q, spec, pos, gridworld.Actions[:], rng)
	if a != gridworld.DownLeft {
		t.Errorf("GreedyAction: expected DOWNLEFT, got %v", a)
	}

	// An off-grid maximum never wins
	corner := environment.Position{X: 0, Y: 0}
	_ = q.Set(corner, gridworld.Up, 100)
	_ = q.Set(corner, gridworld.Down, -1)
	a = GreedyAction(q, spec, corner, gridworld.Actions[:], rng)
	if a != gridworld.Down {
		t.Errorf("GreedyAction: expected DOWN, got %v", a)
	}
}

func TestGreedyActionTies(t *testing.T) {
	spec := environment.DefaultSpec()
	q, _ := qtable.Constant(0).Initialize(spec)
	corner := environment.Position{X: 0, Y: 0}
	rng := rand.New(rand.NewPCG(5, 5))

	counts := make(map[gridworld.Action]int)
	const n = 4000
	for i := 0; i < n; i++ {
		counts[GreedyAction(q, spec, corner, gridworld.Actions[:], rng)]++
	}

	want := []gridworld.Action{
		gridworld.Down, gridworld.Right, gridworld.DownRight, gridworld.NoMove,
	}
	if len(counts) != len(want) {
		t.Fatalf("GreedyAction: expected ties among %v, got %v", want, counts)
	}
	for _, a := range want {
		if c := counts[a]; c < n/4-200 || c > n/4+200 {
			t.Errorf("GreedyAction: %v chosen %d of %d times", a, c, n)
		}
	}
}

func TestEGreedy(t *testing.T) {
	spec := environment.DefaultSpec()
	q := qtable.New(spec)
	pos := environment.Position{X: 4, Y: 4}
	_ = q.Set(pos, gridworld.Left, 10)
	space := gridworld.NewStateSpace(spec)

	if _, err := NewEGreedy(1.5, q, space, 1); err == nil {
		t.Error("NewEGreedy: expected an error for epsilon above 1")
	}

	greedy, err := NewEGreedy(0, q, space, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		if dx, dy := greedy.SelectMove(pos); dx != -1 || dy != 0 {
			t.Fatalf("SelectMove: expected LEFT, got (%d, %d)", dx, dy)
		}
	}

	explore, err := NewEGreedy(1, q, space, 1)
	if err != nil {
		t.Fatal(err)
	}
	corner := environment.Position{X: 7, Y: 7}
	for i := 0; i < 200; i++ {
		dx, dy := explore.SelectMove(corner)
		if !spec.Contains(corner.Add(dx, dy)) {
			t.Fatalf("SelectMove: (%d, %d) leaves the grid", dx, dy)
		}
		if dx == 0 && dy == 0 {
			t.Fatalf("SelectMove: exploration should always move")
		}
	}
}

func newTeacher(t *testing.T) *Teacher {
	t.Helper()
	spec := environment.DefaultSpec()
	m, err := pellet.NewTileModel([][]float64{{2, 2}})
	if err != nil {
		t.Fatal(err)
	}
	return NewTeacher(pellet.NewExpectedTable(pellet.NewGrid(spec, m)))
}

func TestTeacher(t *testing.T) {
	teacher := newTeacher(t)

	// Moving onto the only tile is the only way to score
	pos := environment.Position{X: 1, Y: 2}
	if got := teacher.BestActions(pos); !slices.Equal(got,
		[]gridworld.Action{gridworld.Right}) {
		t.Errorf("BestActions(%v): expected [RIGHT], got %v", pos, got)
	}

	// Far from the tile every action ties at zero
	far := environment.Position{X: 6, Y: 6}
	if got := teacher.BestActions(far); len(got) != gridworld.NumActions {
		t.Errorf("BestActions(%v): expected every action, got %v", far, got)
	}

	off := environment.Position{X: -1, Y: 0}
	if got := teacher.BestActions(off); !slices.Equal(got,
		[]gridworld.Action{gridworld.NoMove}) {
		t.Errorf("BestActions(%v): expected [NOMOVE], got %v", off, got)
	}
}

func TestTeacherShouldDrag(t *testing.T) {
	teacher := newTeacher(t)
	rng := rand.New(rand.NewPCG(9, 9))
	pos := environment.Position{X: 1, Y: 2}

	tests := []struct {
		name    string
		a       gridworld.Action
		allowed bool
		eps     float64
		want    bool
	}{
		{"non-optimal", gridworld.Left, true, 1, true},
		{"optimal", gridworld.Right, true, 1, false},
		{"not allowed", gridworld.Left, false, 1, false},
		{"never", gridworld.Left, true, 0, false},
		{"no move", gridworld.NoMove, true, 1, false},
	}

	for _, test := range tests {
		got := teacher.ShouldDrag(pos, test.a, test.allowed, test.eps, rng)
		if got != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, got)
		}
	}
}

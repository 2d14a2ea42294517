package render

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/intdogs/roombarl/agent/tabular/policy"
	"github.com/intdogs/roombarl/agent/tabular/qtable"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/environment/pellet"
)

func TestRenderHeatmap(t *testing.T) {
	spec := environment.DefaultSpec()
	r, err := New(spec, 32)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := r.Size(); w != 256 || h != 256 {
		t.Fatalf("Size: expected 256x256, got %dx%d", w, h)
	}

	q := qtable.New(spec)
	_ = q.Set(environment.Position{X: 0, Y: 0}, gridworld.Down, 10)
	_ = q.Set(environment.Position{X: 1, Y: 0}, gridworld.Down, 0)

	img := r.Render(Scene{Table: q})
	if b := img.Bounds(); b.Dx() != 256 || b.Dy() != 256 {
		t.Fatalf("Render: unexpected bounds %v", b)
	}

	hot, _, _, _ := img.At(8, 8).RGBA()
	_, _, cold, _ := img.At(32+8, 8).RGBA()
	gr, gg, gb, _ := img.At(64+8, 8).RGBA()
	if hot < 0xf000 {
		t.Errorf("Render: expected the highest cell to be red, got %x", hot)
	}
	if cold < 0xf000 {
		t.Errorf("Render: expected the lowest cell to be blue, got %x", cold)
	}
	if gr != gg || gg != gb {
		t.Errorf("Render: expected an empty cell to be grey, got %x %x %x",
			gr, gg, gb)
	}
}

func TestSavePNG(t *testing.T) {
	spec := environment.DefaultSpec()
	r, err := New(spec, 0)
	if err != nil {
		t.Fatal(err)
	}

	q, _ := qtable.Constant(1).Initialize(spec)
	m, err := pellet.DefaultConfig().Model(spec)
	if err != nil {
		t.Fatal(err)
	}
	scene := Scene{
		Table:   q,
		Policy:  policy.Derive(q, gridworld.NewStateSpace(spec), rand.New(rand.NewPCG(1, 1))),
		Grid:    pellet.NewGrid(spec, m),
		Agents:  []environment.Position{{X: 1, Y: 1}, {X: 5, Y: 2}},
		Pellets: []environment.Point{{X: 3.2, Y: 4.5}},
	}

	path := filepath.Join(t.TempDir(), "scene.png")
	if err := r.SavePNG(path, scene); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("SavePNG: wrote an empty file")
	}

	if _, err := New(environment.Spec{}, 10); err == nil {
		t.Error("New: expected an error for an empty grid")
	}
}

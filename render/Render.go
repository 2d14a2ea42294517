// Package render draws agents' tables and policies on the grid
package render

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/intdogs/roombarl/agent/tabular/policy"
	"github.com/intdogs/roombarl/agent/tabular/qtable"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/environment/gridworld"
	"github.com/intdogs/roombarl/environment/pellet"
	"github.com/intdogs/roombarl/utils/floatutils"
)

// DefaultCellSize is the side of a cell in pixels
const DefaultCellSize = 64

// Scene is what to draw. Every layer is optional.
type Scene struct {
	// Table colours each cell by its largest value
	Table *qtable.QTable

	// Policy draws an arrow per cell
	Policy policy.Policy

	// Grid shades each cell by its pellet probability
	Grid *pellet.Grid

	Agents  []environment.Position
	Pellets []environment.Point
}

// Renderer draws Scenes on a grid
type Renderer struct {
	spec environment.Spec
	cell float64
}

// New returns a Renderer for spec drawing cells cellSize pixels wide
func New(spec environment.Spec, cellSize int) (*Renderer, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Renderer{spec: spec, cell: float64(cellSize)}, nil
}

// Size returns the width and height of rendered images in pixels
func (r *Renderer) Size() (w, h int) {
	return int(r.cell) * r.spec.Width, int(r.cell) * r.spec.Height
}

// Render draws a scene
func (r *Renderer) Render(s Scene) image.Image {
	return r.context(s).Image()
}

// SavePNG draws a scene and saves it to path
func (r *Renderer) SavePNG(path string, s Scene) error {
	if err := r.context(s).SavePNG(path); err != nil {
		return fmt.Errorf("savePNG: %w", err)
	}
	return nil
}

func (r *Renderer) context(s Scene) *gg.Context {
	w, h := r.Size()
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if s.Table != nil {
		r.heatmap(dc, s.Table)
	}
	if s.Grid != nil {
		r.probabilities(dc, s.Grid)
	}
	r.lines(dc)
	if s.Policy != nil {
		r.arrows(dc, s.Policy)
	}
	r.pellets(dc, s.Pellets)
	r.agents(dc, s.Agents)
	return dc
}

// heatmap colours each cell from blue (lowest) to red (highest) by the
// largest value in the cell. Cells without values are grey.
func (r *Renderer) heatmap(dc *gg.Context, q *qtable.QTable) {
	values := make(map[environment.Position]float64, r.spec.NumCells())
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, cell := range r.spec.Cells() {
		v, ok := q.Max(cell)
		if !ok || !floatutils.Finite(v) {
			continue
		}
		values[cell] = v
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	for _, cell := range r.spec.Cells() {
		v, ok := values[cell]
		if !ok {
			dc.SetRGB(0.8, 0.8, 0.8)
		} else {
			t := 0.5
			if hi > lo {
				t = (v - lo) / (hi - lo)
			}
			dc.SetRGB(t, 0.2, 1-t)
		}
		dc.DrawRectangle(r.x(cell.X), r.y(cell.Y), r.cell, r.cell)
		dc.Fill()
	}
}

// probabilities shades each cell green by its pellet probability
// relative to the most likely cell
func (r *Renderer) probabilities(dc *gg.Context, g *pellet.Grid) {
	best, _ := floatutils.MaxSlice(g.Weights())
	if best <= 0 {
		return
	}
	for _, cell := range r.spec.Cells() {
		dc.SetRGBA(0, 0.6, 0, 0.6*g.At(cell)/best)
		dc.DrawRectangle(r.x(cell.X), r.y(cell.Y), r.cell, r.cell)
		dc.Fill()
	}
}

func (r *Renderer) lines(dc *gg.Context) {
	w, h := r.Size()
	dc.SetRGB(0.3, 0.3, 0.3)
	dc.SetLineWidth(1)
	for x := 0; x <= r.spec.Width; x++ {
		dc.DrawLine(r.x(x), 0, r.x(x), float64(h))
	}
	for y := 0; y <= r.spec.Height; y++ {
		dc.DrawLine(0, r.y(y), float64(w), r.y(y))
	}
	dc.Stroke()
}

// arrows draws the policy's action in each cell. NoMove is a ring.
func (r *Renderer) arrows(dc *gg.Context, p policy.Policy) {
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(2)

	for _, cell := range r.spec.Cells() {
		a, ok := p.Action(cell)
		if !ok {
			continue
		}
		cx, cy := r.centre(cell)
		if a == gridworld.NoMove {
			dc.DrawCircle(cx, cy, r.cell/8)
			dc.Stroke()
			continue
		}

		dx, dy := a.Displacement()
		norm := math.Hypot(float64(dx), float64(dy))
		ux, uy := float64(dx)/norm, float64(dy)/norm
		length := 0.35 * r.cell
		tipX, tipY := cx+ux*length, cy+uy*length

		dc.DrawLine(cx-ux*length/2, cy-uy*length/2, tipX, tipY)
		dc.Stroke()

		head := r.cell / 8
		angle := math.Atan2(uy, ux)
		dc.MoveTo(tipX, tipY)
		dc.LineTo(tipX-head*math.Cos(angle-math.Pi/6),
			tipY-head*math.Sin(angle-math.Pi/6))
		dc.LineTo(tipX-head*math.Cos(angle+math.Pi/6),
			tipY-head*math.Sin(angle+math.Pi/6))
		dc.ClosePath()
		dc.Fill()
	}
}

func (r *Renderer) pellets(dc *gg.Context, pellets []environment.Point) {
	size := gridworld.DefaultPelletSize * r.cell
	dc.SetRGB(0.95, 0.75, 0)
	for _, p := range pellets {
		dc.DrawRectangle(p.X*r.cell, p.Y*r.cell, size, size)
		dc.Fill()
	}
}

func (r *Renderer) agents(dc *gg.Context, agents []environment.Position) {
	aw := float64(r.spec.AgentWidth) * r.cell
	for i, a := range agents {
		dc.SetRGB(0.1, 0.1, 0.1)
		dc.DrawCircle(r.x(a.X)+aw/2, r.y(a.Y)+aw/2, 0.4*aw)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(fmt.Sprint(i), r.x(a.X)+aw/2, r.y(a.Y)+aw/2,
			0.5, 0.5)
	}
}

func (r *Renderer) x(x int) float64 { return float64(x) * r.cell }
func (r *Renderer) y(y int) float64 { return float64(y) * r.cell }

func (r *Renderer) centre(p environment.Position) (float64, float64) {
	return r.x(p.X) + r.cell/2, r.y(p.Y) + r.cell/2
}

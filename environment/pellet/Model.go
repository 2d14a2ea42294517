// Package pellet implements the spatial model of where pellets appear:
// the per-cell pellet probability, the expected pellet capture of each
// (cell, action) pair, and a sampler of pellet locations.
package pellet

import (
	"fmt"
	"math"

	"github.com/intdogs/roombarl/environment"
	"gonum.org/v1/gonum/stat/distuv"
)

// Mode selects how pellets are placed
type Mode int

const (
	Uniform Mode = iota
	Gaussian
	Tiles
)

func (m Mode) String() string {
	switch m {
	case Uniform:
		return "Uniform"
	case Gaussian:
		return "Gaussian"
	case Tiles:
		return "Tiles"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Model gives the probability that a pellet occupies a cell
type Model interface {
	CellProbability(x, y int) float64
}

// Default placement parameters
var (
	DefaultMeans = [][]float64{{3, 3}, {3, 3}}
	DefaultVars  = [][]float64{{0.75, 0.75}, {0.75, 0.75}}
	DefaultTiles = [][]float64{
		{0, 1}, {7, 0}, {3, 1}, {1, 4}, {7, 4}, {2, 0}, {7, 7},
		{7, 3}, {4, 0}, {2, 7}, {4, 1}, {4, 3}, {4, 7},
	}
)

// Config describes a pellet placement regime
type Config struct {
	Mode  Mode
	Means [][]float64 // per component, per axis
	Vars  [][]float64 // per component, per axis
	Tiles [][]float64 // (x, y) of candidate tiles
}

// DefaultConfig returns the tile regime over DefaultTiles
func DefaultConfig() Config {
	return Config{
		Mode:  Tiles,
		Means: DefaultMeans,
		Vars:  DefaultVars,
		Tiles: DefaultTiles,
	}
}

// Model returns the probability model described by the Config
func (c Config) Model(spec environment.Spec) (Model, error) {
	switch c.Mode {
	case Uniform:
		return UniformModel{spec}, nil
	case Gaussian:
		return NewGaussianMixture(c.Means, c.Vars)
	case Tiles:
		return NewTileModel(c.Tiles)
	}
	return nil, fmt.Errorf("model: unknown pellet mode %v", c.Mode)
}

// UniformModel spreads pellets evenly over the grid
type UniformModel struct {
	Spec environment.Spec
}

// CellProbability implements the Model interface
func (u UniformModel) CellProbability(x, y int) float64 {
	if !u.Spec.Contains(environment.Position{X: x, Y: y}) {
		return 0
	}
	return 1 / float64(u.Spec.NumCells())
}

// TileModel draws pellets uniformly from a fixed list of tiles
type TileModel struct {
	tiles map[environment.Position]struct{}
	n     int
}

// NewTileModel returns a TileModel over tiles. Tile coordinates are
// floored to cells.
func NewTileModel(tiles [][]float64) (*TileModel, error) {
	if len(tiles) == 0 {
		return nil, fmt.Errorf("newTileModel: no tiles")
	}

	set := make(map[environment.Position]struct{}, len(tiles))
	for i, t := range tiles {
		if len(t) != 2 {
			return nil, fmt.Errorf("newTileModel: tile %d has %d coordinates",
				i, len(t))
		}
		p := environment.Point{X: t[0], Y: t[1]}.Floor()
		set[p] = struct{}{}
	}

	return &TileModel{set, len(tiles)}, nil
}

// CellProbability implements the Model interface
func (t *TileModel) CellProbability(x, y int) float64 {
	if _, ok := t.tiles[environment.Position{X: x, Y: y}]; ok {
		return 1 / float64(t.n)
	}
	return 0
}

// GaussianMixture is an equally weighted mixture of axis-aligned
// Gaussians
type GaussianMixture struct {
	components [][2]distuv.Normal
}

// NewGaussianMixture returns a mixture with one component per row of
// means and vars. Each row holds the x and y parameters.
func NewGaussianMixture(means, vars [][]float64) (*GaussianMixture, error) {
	if len(means) == 0 || len(means) != len(vars) {
		return nil, fmt.Errorf("newGaussianMixture: %d means for %d variances",
			len(means), len(vars))
	}

	components := make([][2]distuv.Normal, len(means))
	for i := range means {
		if len(means[i]) != 2 || len(vars[i]) != 2 {
			return nil, fmt.Errorf("newGaussianMixture: component %d is not 2D",
				i)
		}
		for axis := 0; axis < 2; axis++ {
			if vars[i][axis] <= 0 {
				return nil, fmt.Errorf("newGaussianMixture: component %d has "+
					"non-positive variance %v", i, vars[i][axis])
			}
			components[i][axis] = distuv.Normal{
				Mu:    means[i][axis],
				Sigma: math.Sqrt(vars[i][axis]),
			}
		}
	}

	return &GaussianMixture{components}, nil
}

// CellProbability implements the Model interface. The mass of the unit
// cell is the product of the per-axis CDF differences across the cell.
func (g *GaussianMixture) CellProbability(x, y int) float64 {
	weight := 1 / float64(len(g.components))
	var p float64
	for _, c := range g.components {
		px := c[0].CDF(float64(x)+1) - c[0].CDF(float64(x))
		py := c[1].CDF(float64(y)+1) - c[1].CDF(float64(y))
		p += weight * px * py
	}
	return p
}

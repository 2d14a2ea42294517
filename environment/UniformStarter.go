package environment

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// UniformStarter samples starting cells uniformly over the grid
type UniformStarter struct {
	spec Spec
	seed uint64
	rand *distmv.Uniform
}

// NewUniformStarter returns a UniformStarter over the cells described
// by spec
func NewUniformStarter(spec Spec, seed uint64) *UniformStarter {
	source := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	bounds := []r1.Interval{
		{Min: 0, Max: float64(spec.Width)},
		{Min: 0, Max: float64(spec.Height)},
	}

	return &UniformStarter{spec, seed, distmv.NewUniform(bounds, source)}
}

// Start returns a uniformly random cell
func (u *UniformStarter) Start() Position {
	sample := u.rand.Rand(nil)
	p := Point{sample[0], sample[1]}.Floor()

	// The upper bound of the interval is reachable in floating point
	if p.X >= u.spec.Width {
		p.X = u.spec.Width - 1
	}
	if p.Y >= u.spec.Height {
		p.Y = u.spec.Height - 1
	}
	return p
}

package pellet

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/utils/floatutils"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws pellet locations under a placement Config. Locations
// are the top-left corner of a pellet of side size and always lie
// within the grid.
type Sampler struct {
	cfg  Config
	spec environment.Spec
	size float64

	rng       *rand.Rand
	component distuv.Categorical
	normals   [][2]distuv.Normal
	tile      distuv.Categorical
}

// NewSampler returns a new Sampler. Gaussian components are scaled by
// the configured variances directly, so a variance acts as a spread in
// cells when sampling.
func NewSampler(cfg Config, spec environment.Spec, size float64,
	seed uint64) (*Sampler, error) {
	src := rand.NewPCG(seed, seed+3)
	s := &Sampler{
		cfg:  cfg,
		spec: spec,
		size: size,
		rng:  rand.New(src),
	}

	switch cfg.Mode {
	case Uniform:
	case Gaussian:
		if len(cfg.Means) == 0 || len(cfg.Means) != len(cfg.Vars) {
			return nil, fmt.Errorf("newSampler: %d means for %d variances",
				len(cfg.Means), len(cfg.Vars))
		}
		s.normals = make([][2]distuv.Normal, len(cfg.Means))
		for i := range cfg.Means {
			for axis := 0; axis < 2; axis++ {
				s.normals[i][axis] = distuv.Normal{
					Mu:    cfg.Means[i][axis],
					Sigma: cfg.Vars[i][axis],
					Src:   src,
				}
			}
		}
		s.component = distuv.NewCategorical(ones(len(cfg.Means)), src)
	case Tiles:
		if len(cfg.Tiles) == 0 {
			return nil, fmt.Errorf("newSampler: no tiles")
		}
		s.tile = distuv.NewCategorical(ones(len(cfg.Tiles)), src)
	default:
		return nil, fmt.Errorf("newSampler: unknown pellet mode %v", cfg.Mode)
	}

	return s, nil
}

// Sample implements the gridworld.PelletSource interface
func (s *Sampler) Sample() environment.Point {
	maxX := float64(s.spec.Width) - s.size
	maxY := float64(s.spec.Height) - s.size

	var x, y float64
	switch s.cfg.Mode {
	case Uniform:
		x = s.rng.Float64() * maxX
		y = s.rng.Float64() * maxY
	case Gaussian:
		c := s.normals[int(s.component.Rand())]
		x, y = c[0].Rand(), c[1].Rand()
	case Tiles:
		t := s.cfg.Tiles[int(s.tile.Rand())]
		x = math.Floor(t[0]) + s.rng.Float64()*(1-s.size)
		y = math.Floor(t[1]) + s.rng.Float64()*(1-s.size)
	}

	return environment.Point{
		X: floatutils.Clip(x, 0, maxX),
		Y: floatutils.Clip(y, 0, maxY),
	}
}

func ones(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

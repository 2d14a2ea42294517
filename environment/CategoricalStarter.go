package environment

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// CategoricalStarter samples starting cells from a categorical
// distribution over the grid. Cell i in Spec.Index order is sampled
// proportionally to weights[i].
type CategoricalStarter struct {
	spec Spec
	rand distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter. The weights
// need not be normalized but must not all be zero.
func NewCategoricalStarter(spec Spec, weights []float64,
	seed uint64) (*CategoricalStarter, error) {
	if len(weights) != spec.NumCells() {
		return nil, fmt.Errorf("newCategoricalStarter: expected %d weights, "+
			"got %d", spec.NumCells(), len(weights))
	}

	var total float64
	for _, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("newCategoricalStarter: negative weight %v", w)
		}
		total += w
	}
	if total == 0 {
		return nil, fmt.Errorf("newCategoricalStarter: all weights are zero")
	}

	source := rand.NewPCG(seed, seed+1)
	return &CategoricalStarter{spec, distuv.NewCategorical(weights, source)}, nil
}

// Start returns a starting cell
func (c *CategoricalStarter) Start() Position {
	return c.spec.At(int(c.rand.Rand()))
}

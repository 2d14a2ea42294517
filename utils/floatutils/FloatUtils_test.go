package floatutils

import (
	"math"
	"slices"
	"testing"
)

func TestMaxSlice(t *testing.T) {
	tests := []struct {
		values  []float64
		max     float64
		indices []int
	}{
		{[]float64{1}, 1, []int{0}},
		{[]float64{1, 3, 2, 3}, 3, []int{1, 3}},
		{[]float64{-1, -2, -1}, -1, []int{0, 2}},
	}

	for _, test := range tests {
		max, indices := MaxSlice(test.values)
		if max != test.max || !slices.Equal(indices, test.indices) {
			t.Errorf("MaxSlice(%v): expected %v at %v, got %v at %v",
				test.values, test.max, test.indices, max, indices)
		}
	}
}

func TestClipAndFinite(t *testing.T) {
	if Clip(9, 0, 7.5) != 7.5 || Clip(-1, 0, 7.5) != 0 || Clip(3, 0, 7.5) != 3 {
		t.Error("Clip: value not clamped to its interval")
	}
	if Max(1, 4, 2) != 4 {
		t.Error("Max: expected 4")
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if Finite(v) {
			t.Errorf("Finite(%v): expected false", v)
		}
	}
	if !Finite(0) {
		t.Error("Finite(0): expected true")
	}
}

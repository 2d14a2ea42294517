// Package floatutils provides utilities for working with floats
package floatutils

import "math"

// Clip clamps value to the closed interval [min, max]
func Clip(value, min, max float64) float64 {
	return math.Max(math.Min(value, max), min)
}

// MaxSlice returns the maximum of values together with the indices of
// every element equal to it, in ascending order. It panics on an empty
// slice.
func MaxSlice(values []float64) (max float64, indices []int) {
	max, indices = values[0], []int{0}

	for i := 1; i < len(values); i++ {
		switch v := values[i]; {
		case v > max:
			max = v
			indices = []int{i}
		case v == max:
			indices = append(indices, i)
		}
	}
	return
}

// Max returns the largest of its arguments
func Max(floats ...float64) float64 {
	max := floats[0]
	for _, val := range floats[1:] {
		max = math.Max(max, val)
	}
	return max
}

// Finite returns whether v is neither NaN nor infinite
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

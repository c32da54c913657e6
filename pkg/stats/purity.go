package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Purity functions measure how homogeneous a slice of target values is.
// Zero means perfectly pure; lower is better. Decision trees take one of
// these as an injected strategy, so any func([]float64) float64 with the
// same convention works.

// Gini computes the Gini impurity of a slice of class labels.
func Gini(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	res := 0.0
	for _, c := range counts {
		p := float64(c) / n
		res += p * (1 - p)
	}
	return res
}

// Entropy computes the Shannon entropy (base 2) of a slice of class labels.
func Entropy(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	res := 0.0
	for _, c := range counts {
		p := float64(c) / n
		res -= p * math.Log2(p)
	}
	return res
}

// StdDev is the regression impurity: the population standard deviation
// of the target values.
func StdDev(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	mean := floats.Sum(values) / n
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / n)
}

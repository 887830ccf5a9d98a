// Package vector implements the similarity math shared by the
// profile builders and the recommendation engine. Pure functions,
// no I/O.
package vector

import "math"

// Cosine returns the cosine similarity between a and b, in [-1, 1].
// Vectors must have equal length. A zero-magnitude input yields 0;
// that is a defined edge case, not an error.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	magA = math.Sqrt(magA)
	magB = math.Sqrt(magB)
	if magA == 0 || magB == 0 {
		return 0, nil
	}

	return dot / (magA * magB), nil
}

// Centroid returns the element-wise arithmetic mean of vs.
// All vectors must share the same length.
func Centroid(vs [][]float64) ([]float64, error) {
	if len(vs) == 0 {
		return nil, ErrEmptyInput
	}

	dim := len(vs[0])
	out := make([]float64, dim)
	for _, v := range vs {
		if len(v) != dim {
			return nil, ErrDimensionMismatch
		}
		for i, x := range v {
			out[i] += x
		}
	}

	n := float64(len(vs))
	for i := range out {
		out[i] /= n
	}

	return out, nil
}

package domain

import "math"

// CosineSimilarity returns dot(a,b)/(|a|*|b|). Mismatched lengths, empty
// vectors and zero norms all yield 0 so scoring degrades instead of failing.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		na += av * av
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// AverageVectors is the component-wise mean across chunk vectors. The result
// is deliberately not re-normalized so chunk count does not distort magnitude
// beyond the natural averaging.
func AverageVectors(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, v := range vectors {
		for i := 0; i < dim && i < len(v); i++ {
			sum[i] += float64(v[i])
		}
	}

	out := make([]float32, dim)
	n := float64(len(vectors))
	for i := range sum {
		out[i] = float32(sum[i] / n)
	}
	return out
}

package enrichment

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// lchoose returns ln C(n, k).
func lchoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(k + 1))
	c, _ := math.Lgamma(float64(n - k + 1))
	return a - b - c
}

// HypergeomSF returns P(X >= k) for X ~ Hypergeometric(N population,
// K successes, n draws).
func HypergeomSF(k, N, K, n int) float64 {
	if k <= 0 {
		return 1
	}
	hi := K
	if n < hi {
		hi = n
	}
	if k > hi {
		return 0
	}
	denom := lchoose(N, n)
	terms := make([]float64, 0, hi-k+1)
	for i := k; i <= hi; i++ {
		terms = append(terms, lchoose(K, i)+lchoose(N-K, n-i)-denom)
	}
	p := math.Exp(floats.LogSumExp(terms))
	if p > 1 {
		p = 1
	}
	return p
}

// AdjustBH returns Benjamini–Hochberg adjusted p-values in input order.
func AdjustBH(p []float64) []float64 {
	m := len(p)
	out := make([]float64, m)
	if m == 0 {
		return out
	}
	idx := make([]int, m)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return p[idx[a]] < p[idx[b]] })

	prev := 1.0
	for r := m - 1; r >= 0; r-- {
		i := idx[r]
		v := p[i] * float64(m) / float64(r+1)
		if v > prev {
			v = prev
		}
		prev = v
		out[i] = v
	}
	return out
}

// oddsRatio computes the 2×2 odds ratio with a Haldane correction when a
// cell is empty.
func oddsRatio(k, N, K, n int) float64 {
	a := float64(k)
	b := float64(n - k)
	c := float64(K - k)
	d := float64(N - K - n + k)
	if a == 0 || b == 0 || c == 0 || d == 0 {
		a, b, c, d = a+0.5, b+0.5, c+0.5, d+0.5
	}
	return (a * d) / (b * c)
}

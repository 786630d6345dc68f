package forest

import (
	"math/rand/v2"
	"sort"
)

// node is either a split (left/right set) or a leaf carrying the weighted
// class-1 fraction.
type node struct {
	feature     int
	threshold   float64
	left, right *node
	prob        float64
}

func (n *node) leaf() bool { return n.left == nil }

type tree struct {
	root        *node
	importances []float64 // unnormalized weighted impurity decrease per feature
}

func (t *tree) predict(x []float64) float64 {
	n := t.root
	for !n.leaf() {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.prob
}

type builder struct {
	X           [][]float64
	y           []int
	w           []float64 // per-sample weight (class weight × bootstrap count)
	maxFeatures int
	rng         *rand.Rand
	importances []float64
	features    []int
}

func gini(w0, w1 float64) float64 {
	t := w0 + w1
	if t == 0 {
		return 0
	}
	p0, p1 := w0/t, w1/t
	return 1 - p0*p0 - p1*p1
}

func (b *builder) counts(idx []int) (w0, w1 float64) {
	for _, i := range idx {
		if b.y[i] == 1 {
			w1 += b.w[i]
		} else {
			w0 += b.w[i]
		}
	}
	return w0, w1
}

func (b *builder) grow(idx []int) *node {
	w0, w1 := b.counts(idx)
	imp := gini(w0, w1)
	leaf := &node{prob: w1 / (w0 + w1)}
	if imp == 0 || len(idx) < 2 {
		return leaf
	}

	feature, threshold, ok := b.bestSplit(idx, w0, w1)
	if !ok {
		return leaf
	}
	var left, right []int
	for _, i := range idx {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l0, l1 := b.counts(left)
	r0, r1 := b.counts(right)
	b.importances[feature] += (w0+w1)*imp - (l0+l1)*gini(l0, l1) - (r0+r1)*gini(r0, r1)

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.grow(left),
		right:     b.grow(right),
	}
}

// bestSplit examines random features until maxFeatures non-constant ones
// have been tried, returning the split with the lowest weighted child
// impurity.
func (b *builder) bestSplit(idx []int, w0, w1 float64) (feature int, threshold float64, ok bool) {
	b.rng.Shuffle(len(b.features), func(i, j int) {
		b.features[i], b.features[j] = b.features[j], b.features[i]
	})

	best := -1.0
	tried := 0
	order := make([]int, len(idx))
	for _, f := range b.features {
		if tried >= b.maxFeatures {
			break
		}
		copy(order, idx)
		sort.Slice(order, func(i, j int) bool { return b.X[order[i]][f] < b.X[order[j]][f] })
		if b.X[order[0]][f] == b.X[order[len(order)-1]][f] {
			continue
		}
		tried++

		var l0, l1 float64
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			if b.y[i] == 1 {
				l1 += b.w[i]
			} else {
				l0 += b.w[i]
			}
			v, next := b.X[i][f], b.X[order[k+1]][f]
			if v == next {
				continue
			}
			r0, r1 := w0-l0, w1-l1
			score := (l0+l1)*gini(l0, l1) + (r0+r1)*gini(r0, r1)
			if !ok || score < best {
				best, feature, threshold, ok = score, f, (v+next)/2, true
			}
		}
	}
	return feature, threshold, ok
}

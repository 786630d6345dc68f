// Package forest implements a binary random forest classifier with Gini
// splits, bootstrap sampling and mean-decrease-impurity importances.
package forest

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/crimson-sun/pathobridge/internal/progress"
)

// Options configures training.
type Options struct {
	Trees       int
	MaxFeatures int  // features tried per split; 0 means √p
	Balanced    bool // weight classes inversely to their frequency
	Seed        uint64
	Progress    bool
}

// Forest is a trained ensemble.
type Forest struct {
	trees       []*tree
	nFeatures   int
	importances []float64
}

// Train fits a forest on rows of X with labels y in {0,1}.
func Train(X [][]float64, y []int, opt Options) (*Forest, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, fmt.Errorf("forest: %d rows, %d labels", len(X), len(y))
	}
	p := len(X[0])
	if p == 0 {
		return nil, errors.New("forest: no features")
	}
	for i, row := range X {
		if len(row) != p {
			return nil, fmt.Errorf("forest: row %d has %d features, want %d", i, len(row), p)
		}
		if y[i] != 0 && y[i] != 1 {
			return nil, fmt.Errorf("forest: label %d at row %d is not binary", y[i], i)
		}
	}
	if opt.Trees < 1 {
		return nil, errors.New("forest: tree count must be positive")
	}
	mtry := opt.MaxFeatures
	if mtry <= 0 {
		mtry = int(math.Sqrt(float64(p)))
	}
	mtry = max(1, min(mtry, p))

	classWeight := [2]float64{1, 1}
	if opt.Balanced {
		var n [2]int
		for _, c := range y {
			n[c]++
		}
		for c := range n {
			if n[c] > 0 {
				classWeight[c] = float64(len(y)) / (2 * float64(n[c]))
			}
		}
	}

	// Per-tree seeds are drawn up front so results do not depend on
	// scheduling.
	master := rand.New(rand.NewPCG(opt.Seed, opt.Seed))
	seeds := make([]uint64, opt.Trees)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}

	f := &Forest{trees: make([]*tree, opt.Trees), nFeatures: p}
	bar := progress.New(opt.Trees, opt.Progress)
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	var mu sync.Mutex
	for t := range f.trees {
		wg.Add(1)
		sem <- struct{}{}
		go func(t int) {
			defer wg.Done()
			defer func() { <-sem }()
			f.trees[t] = growTree(X, y, classWeight, mtry, seeds[t])
			mu.Lock()
			bar.Increment()
			mu.Unlock()
		}(t)
	}
	wg.Wait()
	bar.Finish()

	f.importances = make([]float64, p)
	for _, t := range f.trees {
		if s := floats.Sum(t.importances); s > 0 {
			floats.AddScaled(f.importances, 1/s, t.importances)
		}
	}
	if s := floats.Sum(f.importances); s > 0 {
		floats.Scale(1/s, f.importances)
	}
	return f, nil
}

func growTree(X [][]float64, y []int, classWeight [2]float64, mtry int, seed uint64) *tree {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	n := len(X)
	w := make([]float64, n)
	for range n {
		w[rng.IntN(n)]++
	}
	var idx []int
	for i := range w {
		if w[i] > 0 {
			w[i] *= classWeight[y[i]]
			idx = append(idx, i)
		}
	}

	b := &builder{
		X:           X,
		y:           y,
		w:           w,
		maxFeatures: mtry,
		rng:         rng,
		importances: make([]float64, len(X[0])),
		features:    make([]int, len(X[0])),
	}
	for i := range b.features {
		b.features[i] = i
	}
	return &tree{root: b.grow(idx), importances: b.importances}
}

// PredictProba returns the mean class-1 probability across trees.
func (f *Forest) PredictProba(x []float64) float64 {
	var s float64
	for _, t := range f.trees {
		s += t.predict(x)
	}
	return s / float64(len(f.trees))
}

// Predict returns 1 when the class-1 probability exceeds one half.
func (f *Forest) Predict(x []float64) int {
	if f.PredictProba(x) > 0.5 {
		return 1
	}
	return 0
}

// Importances returns the mean decrease in impurity per feature, summing to
// one unless no tree ever split.
func (f *Forest) Importances() []float64 {
	out := make([]float64, len(f.importances))
	copy(out, f.importances)
	return out
}

// Features returns the number of input features.
func (f *Forest) Features() int { return f.nFeatures }

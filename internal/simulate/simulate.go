// Package simulate generates the synthetic inputs used where no curated
// data source is wired in: molecular fingerprints and metabolite→gene
// interaction predictions.
package simulate

import (
	"math/rand/v2"
	"sort"

	"github.com/crimson-sun/pathobridge/internal/model"
)

// NewRand returns the seeded generator every simulation draws from.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Fingerprints returns n random binary vectors of the given length.
func Fingerprints(rng *rand.Rand, n, bits int) [][]float64 {
	X := make([][]float64, n)
	for i := range X {
		X[i] = make([]float64, bits)
		for j := range X[i] {
			X[i][j] = float64(rng.IntN(2))
		}
	}
	return X
}

// TrainingSpec shapes the synthetic training set.
type TrainingSpec struct {
	Rows       int
	Bits       int
	BiasedBits int     // leading bits redrawn for active rows
	BiasedProb float64 // probability each redrawn bit is 1
}

// TrainingSet draws fingerprints, then uniform labels, then redraws the
// leading bits of active rows so they are set with BiasedProb.
func TrainingSet(rng *rand.Rand, s TrainingSpec) ([][]float64, []int) {
	X := Fingerprints(rng, s.Rows, s.Bits)
	y := make([]int, s.Rows)
	for i := range y {
		y[i] = rng.IntN(2)
	}
	nb := min(s.BiasedBits, s.Bits)
	for i := range X {
		if y[i] != 1 {
			continue
		}
		for j := 0; j < nb; j++ {
			if rng.Float64() < s.BiasedProb {
				X[i][j] = 1
			} else {
				X[i][j] = 0
			}
		}
	}
	return X, y
}

// TargetPool returns the sorted union of the first top significant genes
// and the key genes.
func TargetPool(significant []string, top int, key []string) []string {
	seen := map[string]struct{}{}
	if top > len(significant) {
		top = len(significant)
	}
	for _, g := range significant[:top] {
		seen[g] = struct{}{}
	}
	for _, g := range key {
		seen[g] = struct{}{}
	}
	pool := make([]string, 0, len(seen))
	for g := range seen {
		pool = append(pool, g)
	}
	sort.Strings(pool)
	return pool
}

// InteractionSpec bounds the simulated predictions.
type InteractionSpec struct {
	MinTargets int
	MaxTargets int
	MinScore   float64
	MaxScore   float64
}

// Interactions assigns each metabolite between MinTargets and MaxTargets
// distinct genes from pool (never more than the pool holds), each with a
// score uniform in [MinScore, MaxScore).
func Interactions(rng *rand.Rand, metabolites, pool []string, s InteractionSpec) []model.Interaction {
	var out []model.Interaction
	if len(pool) == 0 {
		return out
	}
	for _, m := range metabolites {
		n := s.MinTargets + rng.IntN(s.MaxTargets-s.MinTargets+1)
		n = min(n, len(pool))
		for _, k := range rng.Perm(len(pool))[:n] {
			out = append(out, model.Interaction{
				Metabolite: m,
				TargetGene: pool[k],
				Score:      s.MinScore + rng.Float64()*(s.MaxScore-s.MinScore),
			})
		}
	}
	return out
}

// KeepTargets returns interactions whose target is in genes, in order.
func KeepTargets(in []model.Interaction, genes []string) []model.Interaction {
	keep := make(map[string]struct{}, len(genes))
	for _, g := range genes {
		keep[g] = struct{}{}
	}
	var out []model.Interaction
	for _, x := range in {
		if _, ok := keep[x.TargetGene]; ok {
			out = append(out, x)
		}
	}
	return out
}

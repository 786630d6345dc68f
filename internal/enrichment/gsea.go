package enrichment

import (
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/progress"
)

// RankedGene is one entry of a preranked list.
type RankedGene struct {
	Gene  string
	Score float64
}

// Prerank runs GSEA on a ranked gene list using a gene-set permutation null.
type Prerank struct {
	MinSize      int
	MaxSize      int
	Permutations int
	Seed         uint64
	Progress     bool
}

type setResult struct {
	term model.GSEATerm
	null []float64 // raw null ES values
}

// Run scores every set of lib whose overlap with ranked falls within
// [MinSize, MaxSize]. ranked must be sorted by score, descending. Results are
// sorted by FDR, then by |NES| descending; the first term carries its running
// enrichment curve.
func (p Prerank) Run(ranked []RankedGene, lib model.GeneSetLibrary) []model.GSEATerm {
	if len(ranked) == 0 {
		return nil
	}
	pos := make(map[string]int, len(ranked))
	weights := make([]float64, len(ranked))
	for i, r := range ranked {
		if _, dup := pos[r.Gene]; !dup {
			pos[r.Gene] = i
		}
		weights[i] = math.Abs(r.Score)
	}

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed))
	bar := progress.New(len(lib.Sets), p.Progress)
	defer bar.Finish()

	var results []setResult
	for _, s := range lib.Sets {
		bar.Increment()
		hits := hitPositions(s.Genes, pos)
		if len(hits) < p.MinSize || len(hits) > p.MaxSize || len(hits) == len(ranked) {
			continue
		}
		es, peak := enrichmentScore(weights, hits)
		null := make([]float64, p.Permutations)
		for i := range null {
			null[i], _ = enrichmentScore(weights, sampleHits(rng, len(ranked), len(hits)))
		}
		term := model.GSEATerm{
			Library: lib.Name,
			Term:    s.Term,
			ES:      es,
			Size:    len(hits),
			Hits:    hits,
			Lead:    leadingEdge(ranked, hits, es, peak),
		}
		term.NES, term.NomP = normalize(es, null)
		results = append(results, setResult{term: term, null: null})
	}

	assignFDR(results)

	terms := make([]model.GSEATerm, len(results))
	for i, r := range results {
		terms[i] = r.term
	}
	sort.SliceStable(terms, func(i, j int) bool {
		fi, fj := nanHigh(terms[i].FDR), nanHigh(terms[j].FDR)
		if fi != fj {
			return fi < fj
		}
		return math.Abs(terms[i].NES) > math.Abs(terms[j].NES)
	})
	if len(terms) > 0 {
		terms[0].Running = RunningSum(weights, terms[0].Hits)
	}
	return terms
}

func hitPositions(genes []string, pos map[string]int) []int {
	seen := make(map[int]struct{}, len(genes))
	var hits []int
	for _, g := range genes {
		if i, ok := pos[g]; ok {
			if _, dup := seen[i]; dup {
				continue
			}
			seen[i] = struct{}{}
			hits = append(hits, i)
		}
	}
	sort.Ints(hits)
	return hits
}

// sampleHits draws k distinct sorted positions from [0, n).
func sampleHits(rng *rand.Rand, n, k int) []int {
	if 2*k > n {
		out := rng.Perm(n)[:k]
		sort.Ints(out)
		return out
	}
	chosen := make(map[int]struct{}, k)
	out := make([]int, 0, k)
	for len(out) < k {
		i := rng.IntN(n)
		if _, dup := chosen[i]; dup {
			continue
		}
		chosen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// hitNorm returns the total hit weight, falling back to unit weights when
// every hit has a zero score.
func hitNorm(weights []float64, hits []int) (float64, bool) {
	var nr float64
	for _, h := range hits {
		nr += weights[h]
	}
	if nr == 0 {
		return float64(len(hits)), true
	}
	return nr, false
}

// enrichmentScore computes the weighted Kolmogorov–Smirnov statistic from
// sorted hit positions without walking the whole list. It returns the signed
// maximum deviation and the position where it occurs.
func enrichmentScore(weights []float64, hits []int) (float64, int) {
	n, k := len(weights), len(hits)
	if k == 0 || k == n {
		return 0, 0
	}
	nr, unit := hitNorm(weights, hits)
	missStep := 1 / float64(n-k)

	var cum, es float64
	peak := 0
	for i, h := range hits {
		misses := float64(h - i) // misses strictly before this hit
		// deviation just before the hit, after the preceding misses
		if before := cum/nr - misses*missStep; math.Abs(before) > math.Abs(es) {
			es, peak = before, h-1
		}
		if unit {
			cum++
		} else {
			cum += weights[h]
		}
		if after := cum/nr - misses*missStep; math.Abs(after) > math.Abs(es) {
			es, peak = after, h
		}
	}
	return es, peak
}

// RunningSum returns the full running enrichment score along the ranked list.
func RunningSum(weights []float64, hits []int) []float64 {
	n, k := len(weights), len(hits)
	out := make([]float64, n)
	if k == 0 || k == n {
		return out
	}
	nr, unit := hitNorm(weights, hits)
	isHit := make([]bool, n)
	for _, h := range hits {
		isHit[h] = true
	}
	missStep := 1 / float64(n-k)
	var v float64
	for i := 0; i < n; i++ {
		if isHit[i] {
			if unit {
				v += 1 / nr
			} else {
				v += weights[i] / nr
			}
		} else {
			v -= missStep
		}
		out[i] = v
	}
	return out
}

func leadingEdge(ranked []RankedGene, hits []int, es float64, peak int) []string {
	var lead []string
	for _, h := range hits {
		if (es >= 0 && h <= peak) || (es < 0 && h > peak) {
			lead = append(lead, ranked[h].Gene)
		}
	}
	return lead
}

// normalize divides ES by the mean of the same-signed null scores and returns
// NES with the nominal p-value. Without same-signed nulls both are NaN.
func normalize(es float64, null []float64) (nes, nomP float64) {
	var same []float64
	beyond := 0
	for _, v := range null {
		if (es >= 0 && v >= 0) || (es < 0 && v < 0) {
			same = append(same, v)
			if math.Abs(v) >= math.Abs(es) {
				beyond++
			}
		}
	}
	if len(same) == 0 {
		return math.NaN(), math.NaN()
	}
	mean := stat.Mean(same, nil)
	if mean == 0 {
		return math.NaN(), math.NaN()
	}
	return es / math.Abs(mean), float64(beyond) / float64(len(same))
}

// assignFDR estimates q-values by comparing each observed NES with the pooled
// normalized null of the same sign across all tested sets.
func assignFDR(results []setResult) {
	var posNull, negNull, posObs, negObs []float64
	for _, r := range results {
		var sp, sn float64
		var cp, cn int
		for _, v := range r.null {
			if v >= 0 {
				sp += v
				cp++
			} else {
				sn += v
				cn++
			}
		}
		for _, v := range r.null {
			if v >= 0 && cp > 0 && sp > 0 {
				posNull = append(posNull, v/(sp/float64(cp)))
			} else if v < 0 && cn > 0 {
				negNull = append(negNull, v/math.Abs(sn/float64(cn)))
			}
		}
		switch nes := r.term.NES; {
		case math.IsNaN(nes):
		case nes >= 0:
			posObs = append(posObs, nes)
		default:
			negObs = append(negObs, nes)
		}
	}

	for i := range results {
		nes := results[i].term.NES
		if math.IsNaN(nes) {
			results[i].term.FDR = math.NaN()
			continue
		}
		null, obs := posNull, posObs
		if nes < 0 {
			null, obs = negNull, negObs
		}
		if len(null) == 0 || len(obs) == 0 {
			results[i].term.FDR = math.NaN()
			continue
		}
		fNull := fractionBeyond(null, nes)
		fObs := fractionBeyond(obs, nes)
		q := 1.0
		if fObs > 0 {
			q = math.Min(1, fNull/fObs)
		}
		results[i].term.FDR = q
	}
}

func fractionBeyond(vals []float64, nes float64) float64 {
	var n int
	for _, v := range vals {
		if math.Abs(v) >= math.Abs(nes) {
			n++
		}
	}
	return float64(n) / float64(len(vals))
}

func nanHigh(v float64) float64 {
	if math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}

// GSEATable renders prerank results in the gseapy report layout.
func GSEATable(name string, terms []model.GSEATerm) model.Table {
	t := model.Table{
		Name: name,
		Columns: []model.Column{
			{Name: "Term", Kind: model.String},
			{Name: "es", Kind: model.Float},
			{Name: "nes", Kind: model.Float},
			{Name: "pval", Kind: model.Float},
			{Name: "fdr", Kind: model.Float},
			{Name: "matched_size", Kind: model.Int},
			{Name: "ledge_genes", Kind: model.String},
		},
	}
	for _, g := range terms {
		t.Rows = append(t.Rows, []any{
			g.Term, g.ES, g.NES, g.NomP, g.FDR, g.Size, strings.Join(g.Lead, ";"),
		})
	}
	return t
}

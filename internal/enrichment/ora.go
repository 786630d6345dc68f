package enrichment

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/crimson-sun/pathobridge/internal/model"
)

// OverRepresentation tests each set of lib for enrichment of query genes
// with a one-sided hypergeometric test. The universe is every gene in the
// library; query genes outside it are ignored. Terms without overlap are
// omitted. Results are sorted by p-value.
func OverRepresentation(query []string, lib model.GeneSetLibrary) []model.EnrichmentTerm {
	universe := lib.Universe()
	q := make(map[string]struct{}, len(query))
	for _, g := range query {
		if _, ok := universe[g]; ok {
			q[g] = struct{}{}
		}
	}
	N, n := len(universe), len(q)
	if n == 0 {
		return nil
	}

	var terms []model.EnrichmentTerm
	for _, s := range lib.Sets {
		var hits []string
		for _, g := range s.Genes {
			if _, ok := q[g]; ok {
				hits = append(hits, g)
			}
		}
		k, K := len(hits), len(s.Genes)
		if k == 0 {
			continue
		}
		p := HypergeomSF(k, N, K, n)
		or := oddsRatio(k, N, K, n)
		sort.Strings(hits)
		terms = append(terms, model.EnrichmentTerm{
			Library:       lib.Name,
			Term:          s.Term,
			Overlap:       k,
			TermSize:      K,
			PValue:        p,
			OddsRatio:     or,
			CombinedScore: or * -math.Log(math.Max(p, math.SmallestNonzeroFloat64)),
			Genes:         hits,
		})
	}

	ps := make([]float64, len(terms))
	for i, t := range terms {
		ps[i] = t.PValue
	}
	for i, adj := range AdjustBH(ps) {
		terms[i].AdjustedP = adj
	}
	sort.SliceStable(terms, func(i, j int) bool { return terms[i].PValue < terms[j].PValue })
	return terms
}

// Significant returns terms with adjusted p below cutoff.
func Significant(terms []model.EnrichmentTerm, cutoff float64) []model.EnrichmentTerm {
	var out []model.EnrichmentTerm
	for _, t := range terms {
		if t.AdjustedP < cutoff {
			out = append(out, t)
		}
	}
	return out
}

// EnrichmentTable renders ORA results in the Enrichr report layout.
func EnrichmentTable(name string, terms []model.EnrichmentTerm) model.Table {
	t := model.Table{
		Name: name,
		Columns: []model.Column{
			{Name: "Gene_set", Kind: model.String},
			{Name: "Term", Kind: model.String},
			{Name: "Overlap", Kind: model.String},
			{Name: "P-value", Kind: model.Float},
			{Name: "Adjusted P-value", Kind: model.Float},
			{Name: "Odds Ratio", Kind: model.Float},
			{Name: "Combined Score", Kind: model.Float},
			{Name: "Genes", Kind: model.String},
		},
	}
	for _, e := range terms {
		t.Rows = append(t.Rows, []any{
			e.Library,
			e.Term,
			fmt.Sprintf("%d/%d", e.Overlap, e.TermSize),
			e.PValue,
			e.AdjustedP,
			e.OddsRatio,
			e.CombinedScore,
			strings.Join(e.Genes, ";"),
		})
	}
	return t
}

package model

import "sort"

// MetaboliteSet is the set of metabolite names reconstructed for one strain.
type MetaboliteSet struct {
	Strain string
	Names  map[string]struct{}
}

// Has reports whether the strain carries the metabolite.
func (s MetaboliteSet) Has(name string) bool {
	_, ok := s.Names[name]
	return ok
}

// Sorted returns the metabolite names in ascending order.
func (s MetaboliteSet) Sorted() []string {
	out := make([]string, 0, len(s.Names))
	for n := range s.Names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// PresenceMatrix is a metabolite × strain binary matrix.
// Values[i][j] is 1 when Metabolites[i] occurs in Strains[j], otherwise 0.
type PresenceMatrix struct {
	Metabolites []string
	Strains     []string
	Values      [][]int
}

// Column returns the index of the named strain, or -1.
func (m PresenceMatrix) Column(strain string) int {
	for i, s := range m.Strains {
		if s == strain {
			return i
		}
	}
	return -1
}

// Row returns the index of the named metabolite, or -1.
func (m PresenceMatrix) Row(metabolite string) int {
	for i, s := range m.Metabolites {
		if s == metabolite {
			return i
		}
	}
	return -1
}

// Count returns how many of the given strains contain the metabolite at row i.
// Unknown strains are ignored.
func (m PresenceMatrix) Count(i int, strains []string) int {
	n := 0
	for _, s := range strains {
		if j := m.Column(s); j >= 0 {
			n += m.Values[i][j]
		}
	}
	return n
}

// Interaction links a metabolite to a host target gene with a confidence score.
type Interaction struct {
	Metabolite string  `csv:"Metabolite"`
	TargetGene string  `csv:"Target_Gene"`
	Score      float64 `csv:"Score"`
}

// Prediction is the immunomodulatory probability assigned to a metabolite.
type Prediction struct {
	Metabolite string  `csv:"Metabolite"`
	Score      float64 `csv:"Immunomodulatory_Score"`
}

// Ranking holds the normalized evidence metrics for one candidate metabolite.
type Ranking struct {
	Metabolite      string
	Specificity     float64
	TargetImpact    float64
	MLScore         float64
	DockingAffinity float64
	Composite       float64
}

// Metrics returns the four evidence metrics in table order.
func (r Ranking) Metrics() []float64 {
	return []float64{r.Specificity, r.TargetImpact, r.MLScore, r.DockingAffinity}
}

// MetricNames are the column headers matching Ranking.Metrics.
var MetricNames = []string{"Specificity", "Target_Impact", "ML_Score", "Docking_Affinity"}

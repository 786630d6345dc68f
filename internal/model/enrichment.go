package model

// GeneSet is a named collection of gene symbols, e.g. one KEGG pathway.
type GeneSet struct {
	Term  string
	Genes []string
}

// GeneSetLibrary is a named collection of gene sets such as "KEGG_2021_Human".
type GeneSetLibrary struct {
	Name string
	Sets []GeneSet
}

// Universe returns every distinct gene referenced by the library.
func (l GeneSetLibrary) Universe() map[string]struct{} {
	u := make(map[string]struct{})
	for _, s := range l.Sets {
		for _, g := range s.Genes {
			u[g] = struct{}{}
		}
	}
	return u
}

// EnrichmentTerm is one over-representation result.
type EnrichmentTerm struct {
	Library       string
	Term          string
	Overlap       int // query genes in the term
	TermSize      int
	PValue        float64
	AdjustedP     float64
	OddsRatio     float64
	CombinedScore float64
	Genes         []string
}

// GSEATerm is one preranked GSEA result.
type GSEATerm struct {
	Library string
	Term    string
	ES      float64
	NES     float64
	NomP    float64
	FDR     float64
	Size    int
	Lead    []string  // leading-edge genes
	Running []float64 // running enrichment score along the ranked list
	Hits    []int     // ranked-list positions of set members
}

package model

// Regulation is the direction label assigned to a gene from its DGE statistics.
type Regulation int

const (
	NotSignificant Regulation = iota
	Upregulated
	Downregulated
)

func (r Regulation) String() string {
	switch r {
	case Upregulated:
		return "Upregulated"
	case Downregulated:
		return "Downregulated"
	default:
		return "Not Significant"
	}
}

// Gene is one row of a differential expression result table.
type Gene struct {
	ID             string
	Log2FoldChange float64
	Padj           float64
	Regulation     Regulation
}

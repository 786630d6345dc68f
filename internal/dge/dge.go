// Package dge loads differential expression results and labels genes by
// significance and fold change.
package dge

import (
	"fmt"
	"math"
	"sort"

	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/table"
)

// Classifier assigns a regulation label from padj and log2 fold change.
type Classifier struct {
	PadjThreshold   float64
	Log2FCThreshold float64
}

// New creates a Classifier with the given thresholds.
func New(padj, log2fc float64) *Classifier {
	return &Classifier{PadjThreshold: padj, Log2FCThreshold: log2fc}
}

// Classify returns Upregulated or Downregulated only when both padj and
// |log2FC| strictly pass their thresholds.
func (c *Classifier) Classify(log2fc, padj float64) model.Regulation {
	if math.IsNaN(padj) || padj >= c.PadjThreshold {
		return model.NotSignificant
	}
	switch {
	case log2fc > c.Log2FCThreshold:
		return model.Upregulated
	case log2fc < -c.Log2FCThreshold:
		return model.Downregulated
	default:
		return model.NotSignificant
	}
}

// ClassifyAll labels every gene in place.
func (c *Classifier) ClassifyAll(genes []model.Gene) {
	for i := range genes {
		genes[i].Regulation = c.Classify(genes[i].Log2FoldChange, genes[i].Padj)
	}
}

// FromFrame extracts genes from a DGE frame. The first column is the gene
// identifier. Rows whose fold change or padj is NA keep NaN in that field;
// any other non-numeric value is an error.
func FromFrame(f *table.Frame) ([]model.Gene, error) {
	lfcCol, err := f.Col("log2FoldChange")
	if err != nil {
		return nil, fmt.Errorf("dge: %w", err)
	}
	padjCol, err := f.Col("padj")
	if err != nil {
		return nil, fmt.Errorf("dge: %w", err)
	}

	genes := make([]model.Gene, 0, len(f.Rows))
	for i := range f.Rows {
		lfc, err := f.Float(i, lfcCol)
		if err != nil {
			return nil, fmt.Errorf("dge: row %d: %w", i+1, err)
		}
		padj, err := f.Float(i, padjCol)
		if err != nil {
			return nil, fmt.Errorf("dge: row %d: %w", i+1, err)
		}
		genes = append(genes, model.Gene{
			ID:             f.Cell(i, 0),
			Log2FoldChange: lfc,
			Padj:           padj,
		})
	}
	return genes, nil
}

// Load reads a DGE table. When dropNA is set, rows with any NA cell are
// removed before extraction.
func Load(path string, dropNA bool) ([]model.Gene, error) {
	f, err := table.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if dropNA {
		f = f.DropNA()
	}
	return FromFrame(f)
}

// Filter returns the genes with the given regulation, in input order.
func Filter(genes []model.Gene, r model.Regulation) []model.Gene {
	var out []model.Gene
	for _, g := range genes {
		if g.Regulation == r {
			out = append(out, g)
		}
	}
	return out
}

// IDs returns the gene identifiers in input order.
func IDs(genes []model.Gene) []string {
	out := make([]string, len(genes))
	for i, g := range genes {
		out[i] = g.ID
	}
	return out
}

// Significant returns genes with padj below threshold, in input order.
// Genes with NA padj are excluded.
func Significant(genes []model.Gene, threshold float64) []model.Gene {
	var out []model.Gene
	for _, g := range genes {
		if !math.IsNaN(g.Padj) && g.Padj < threshold {
			out = append(out, g)
		}
	}
	return out
}

// TopByPadj returns up to n significant genes with the smallest padj.
// Ties keep input order.
func TopByPadj(genes []model.Gene, threshold float64, n int) []model.Gene {
	sig := Significant(genes, threshold)
	sort.SliceStable(sig, func(i, j int) bool { return sig[i].Padj < sig[j].Padj })
	if len(sig) > n {
		sig = sig[:n]
	}
	return sig
}

// Ranked returns genes sorted by log2 fold change descending, skipping NaN.
func Ranked(genes []model.Gene) []model.Gene {
	out := make([]model.Gene, 0, len(genes))
	for _, g := range genes {
		if !math.IsNaN(g.Log2FoldChange) {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Log2FoldChange > out[j].Log2FoldChange })
	return out
}

// NegLog10 returns -log10(p), clamping p == 0 to the smallest positive double.
func NegLog10(p float64) float64 {
	if p <= 0 {
		p = math.SmallestNonzeroFloat64
	}
	return -math.Log10(p)
}

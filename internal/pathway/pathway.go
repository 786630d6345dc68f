// Package pathway maps metabolites and genes onto named pathways.
package pathway

import (
	"fmt"
	"sort"

	"github.com/crimson-sun/pathobridge/internal/metabolite"
	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/table"
)

// Mapping assigns an entity name to a pathway name.
type Mapping map[string]string

// Lookup returns the pathway for name, or fallback when unmapped.
func (m Mapping) Lookup(name, fallback string) string {
	if p, ok := m[name]; ok {
		return p
	}
	return fallback
}

// Pathways returns the distinct pathway names, sorted.
func (m Mapping) Pathways() []string {
	seen := make(map[string]struct{}, len(m))
	for _, p := range m {
		seen[p] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// LoadMapping reads a two-column (entity, pathway) table. The header row is
// skipped; rows with an empty entity or pathway are ignored. Both names are
// normalized the way metabolite names are, so they compare equal to loaded
// metabolites whatever Unicode form the file uses.
func LoadMapping(path string) (Mapping, error) {
	f, err := table.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(f.Header) < 2 {
		return nil, fmt.Errorf("pathway: %s needs two columns", path)
	}
	m := make(Mapping, len(f.Rows))
	for i := range f.Rows {
		k, v := metabolite.Normalize(f.Cell(i, 0)), metabolite.Normalize(f.Cell(i, 1))
		if k == "" || v == "" {
			continue
		}
		m[k] = v
	}
	return m, nil
}

// Presence is a pathway × strain binary matrix.
type Presence struct {
	Pathways []string
	Strains  []string
	Values   [][]int
}

// StrainPresence marks a pathway present in a strain when any of the
// strain's metabolites maps to it. Pathway rows are sorted; strain columns
// follow the order of sets.
func StrainPresence(sets []model.MetaboliteSet, m Mapping) Presence {
	p := Presence{Pathways: m.Pathways()}
	row := make(map[string]int, len(p.Pathways))
	for i, name := range p.Pathways {
		row[name] = i
	}
	p.Values = make([][]int, len(p.Pathways))
	for i := range p.Values {
		p.Values[i] = make([]int, len(sets))
	}
	for j, s := range sets {
		p.Strains = append(p.Strains, s.Strain)
		for met := range s.Names {
			if pw, ok := m[met]; ok {
				p.Values[row[pw]][j] = 1
			}
		}
	}
	return p
}

// Table renders the matrix with a "Pathway" index column.
func (p Presence) Table(name string) model.Table {
	cols := []model.Column{{Name: "Pathway", Kind: model.String}}
	for _, s := range p.Strains {
		cols = append(cols, model.Column{Name: s, Kind: model.Int})
	}
	rows := make([][]any, len(p.Pathways))
	for i, pw := range p.Pathways {
		row := []any{pw}
		for _, v := range p.Values[i] {
			row = append(row, v)
		}
		rows[i] = row
	}
	return model.Table{Name: name, Columns: cols, Rows: rows}
}

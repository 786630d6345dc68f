// Package metabolite loads per-strain metabolite reconstructions and builds
// the presence/absence matrix shared by the downstream stages.
package metabolite

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/table"
)

// NameColumn is the reconstruction column holding metabolite names.
const NameColumn = "Name"

// Normalize returns the canonical form of a metabolite name: NFC and
// surrounding whitespace removed.
func Normalize(name string) string {
	return strings.TrimSpace(norm.NFC.String(name))
}

// StrainFile returns the reconstruction path for a strain.
func StrainFile(dir, strain string) string {
	return filepath.Join(dir, strain+"-all-Metabolites.tbl")
}

// LoadSet reads one reconstruction table into a MetaboliteSet.
func LoadSet(path, strain string) (model.MetaboliteSet, error) {
	f, err := table.ReadFile(path)
	if err != nil {
		return model.MetaboliteSet{}, err
	}
	col, err := f.Col(NameColumn)
	if err != nil {
		return model.MetaboliteSet{}, fmt.Errorf("metabolite: %w", err)
	}
	set := model.MetaboliteSet{Strain: strain, Names: make(map[string]struct{})}
	for i := range f.Rows {
		if name := Normalize(f.Cell(i, col)); name != "" {
			set.Names[name] = struct{}{}
		}
	}
	return set, nil
}

// LoadSets reads the reconstruction of every strain in order. A missing file
// is logged and yields an empty set; a gzipped sibling is used when present.
func LoadSets(dir string, strains []string) ([]model.MetaboliteSet, error) {
	sets := make([]model.MetaboliteSet, 0, len(strains))
	for _, s := range strains {
		path := StrainFile(dir, s)
		if !table.Exists(path) && table.Exists(path+".gz") {
			path += ".gz"
		}
		if !table.Exists(path) {
			slog.Warn("metabolite file not found", "strain", s, "path", path)
			sets = append(sets, model.MetaboliteSet{Strain: s, Names: map[string]struct{}{}})
			continue
		}
		set, err := LoadSet(path, s)
		if err != nil {
			return nil, err
		}
		slog.Info("loaded metabolites", "strain", s, "count", len(set.Names))
		sets = append(sets, set)
	}
	return sets, nil
}

// Presence builds the metabolite × strain matrix. Rows are sorted by name;
// columns follow the order of sets.
func Presence(sets []model.MetaboliteSet) model.PresenceMatrix {
	all := make(map[string]struct{})
	strains := make([]string, len(sets))
	for j, s := range sets {
		strains[j] = s.Strain
		for n := range s.Names {
			all[n] = struct{}{}
		}
	}
	names := make([]string, 0, len(all))
	for n := range all {
		names = append(names, n)
	}
	sort.Strings(names)

	values := make([][]int, len(names))
	for i, n := range names {
		values[i] = make([]int, len(sets))
		for j, s := range sets {
			if s.Has(n) {
				values[i][j] = 1
			}
		}
	}
	return model.PresenceMatrix{Metabolites: names, Strains: strains, Values: values}
}

// PresenceTable renders the matrix with an unnamed index column.
func PresenceTable(name string, m model.PresenceMatrix) model.Table {
	cols := []model.Column{{Name: "", Kind: model.String}}
	for _, s := range m.Strains {
		cols = append(cols, model.Column{Name: s, Kind: model.Int})
	}
	rows := make([][]any, len(m.Metabolites))
	for i, n := range m.Metabolites {
		row := make([]any, 0, len(cols))
		row = append(row, n)
		for _, v := range m.Values[i] {
			row = append(row, v)
		}
		rows[i] = row
	}
	return model.Table{Name: name, Columns: cols, Rows: rows}
}

// ReadPresence loads a presence/absence table written by PresenceTable.
// Cells other than 0 are treated as present.
func ReadPresence(path string) (model.PresenceMatrix, error) {
	f, err := table.ReadFile(path)
	if err != nil {
		return model.PresenceMatrix{}, err
	}
	if len(f.Header) < 2 {
		return model.PresenceMatrix{}, fmt.Errorf("metabolite: %s has no strain columns", path)
	}
	m := model.PresenceMatrix{Strains: append([]string(nil), f.Header[1:]...)}
	for i := range f.Rows {
		m.Metabolites = append(m.Metabolites, f.Cell(i, 0))
		row := make([]int, len(m.Strains))
		for j := range m.Strains {
			v, err := strconv.ParseFloat(strings.TrimSpace(f.Cell(i, j+1)), 64)
			if err == nil && v != 0 {
				row[j] = 1
			}
		}
		m.Values = append(m.Values, row)
	}
	return m, nil
}

// PathogenSpecific returns metabolites present in at least one pathogen
// strain and absent from the commensal strain, in matrix order.
func PathogenSpecific(m model.PresenceMatrix, pathogens []string, commensal string) []string {
	c := m.Column(commensal)
	var out []string
	for i, n := range m.Metabolites {
		if m.Count(i, pathogens) == 0 {
			continue
		}
		if c >= 0 && m.Values[i][c] != 0 {
			continue
		}
		out = append(out, n)
	}
	return out
}

// InAny returns metabolites present in at least one of the given strains.
func InAny(m model.PresenceMatrix, strains []string) []string {
	var out []string
	for i, n := range m.Metabolites {
		if m.Count(i, strains) > 0 {
			out = append(out, n)
		}
	}
	return out
}

// Intersection is one exclusive membership pattern of an UpSet plot.
type Intersection struct {
	Members []bool // indexed like the strain list
	Count   int
}

// Degree is the number of strains in the pattern.
func (x Intersection) Degree() int {
	d := 0
	for _, m := range x.Members {
		if m {
			d++
		}
	}
	return d
}

// Intersections counts every non-empty exclusive membership pattern, sorted
// by degree ascending, then count descending, then pattern order.
func Intersections(m model.PresenceMatrix) []Intersection {
	counts := make(map[string]*Intersection)
	var keys []string
	for i := range m.Metabolites {
		var b strings.Builder
		members := make([]bool, len(m.Strains))
		for j, v := range m.Values[i] {
			members[j] = v != 0
			if members[j] {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		k := b.String()
		if x, ok := counts[k]; ok {
			x.Count++
			continue
		}
		counts[k] = &Intersection{Members: members, Count: 1}
		keys = append(keys, k)
	}

	sort.Strings(keys)
	out := make([]Intersection, 0, len(keys))
	for _, k := range keys {
		if counts[k].Degree() > 0 {
			out = append(out, *counts[k])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Degree(), out[j].Degree()
		if di != dj {
			return di < dj
		}
		return out[i].Count > out[j].Count
	})
	return out
}

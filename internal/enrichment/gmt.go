package enrichment

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/crimson-sun/pathobridge/internal/model"
)

// ParseGMT reads a gene matrix transposed file: one set per line, term name,
// description (may be empty), then gene symbols, all tab separated.
// Enrichr-style "GENE,weight" entries keep only the symbol.
func ParseGMT(r io.Reader, name string) (model.GeneSetLibrary, error) {
	lib := model.GeneSetLibrary{Name: name}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r\n")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 2 {
			return lib, fmt.Errorf("enrichment: gmt %s line %d: too few fields", name, line)
		}
		set := model.GeneSet{Term: strings.TrimSpace(fields[0])}
		seen := make(map[string]struct{})
		for _, g := range fields[2:] {
			if i := strings.IndexByte(g, ','); i >= 0 {
				g = g[:i]
			}
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			set.Genes = append(set.Genes, g)
		}
		if set.Term == "" || len(set.Genes) == 0 {
			continue
		}
		lib.Sets = append(lib.Sets, set)
	}
	if err := sc.Err(); err != nil {
		return lib, fmt.Errorf("enrichment: gmt %s: %w", name, err)
	}
	return lib, nil
}

// WriteGMT writes a library in GMT format with empty descriptions.
func WriteGMT(w io.Writer, lib model.GeneSetLibrary) error {
	bw := bufio.NewWriter(w)
	for _, s := range lib.Sets {
		bw.WriteString(s.Term)
		bw.WriteString("\t")
		for _, g := range s.Genes {
			bw.WriteString("\t")
			bw.WriteString(g)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

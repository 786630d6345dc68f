// Package docking reads binding affinities from AutoDock Vina logs.
package docking

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shenwei356/xopen"
)

// LogName is the Vina log file inside each <Metabolite>_<Target> directory.
const LogName = "docking_log.txt"

// Conceptual holds affinities (|kcal/mol|) used when no log exists.
var Conceptual = map[string]float64{
	"ToxinA": 8.5,
}

// ParseLog returns the largest absolute affinity in the result table of a
// Vina log. ok is false when the log has no result rows.
func ParseLog(r io.Reader) (best float64, ok bool, err error) {
	sc := bufio.NewScanner(r)
	inTable := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "-----+") {
			inTable = true
			continue
		}
		if !inTable {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			if ok {
				break
			}
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			break
		}
		aff, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		if a := math.Abs(aff); !ok || a > best {
			best, ok = a, true
		}
	}
	if err := sc.Err(); err != nil {
		return 0, false, fmt.Errorf("docking: read log: %w", err)
	}
	return best, ok, nil
}

// ReadLog parses a log file, transparently decompressing it.
func ReadLog(path string) (float64, bool, error) {
	r, err := xopen.Ropen(path)
	if err != nil {
		return 0, false, fmt.Errorf("docking: open %s: %w", path, err)
	}
	defer r.Close()
	return ParseLog(r)
}

// Best returns the strongest affinity across every <metabolite>_<target>
// run directory under dir. Targets never contain an underscore, so the
// metabolite is everything before the last one.
func Best(dir, metabolite string) (float64, bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("docking: %w", err)
	}
	var best float64
	found := false
	for _, e := range entries {
		if !e.IsDir() || runMetabolite(e.Name()) != metabolite {
			continue
		}
		path := filepath.Join(dir, e.Name(), LogName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		aff, ok, err := ReadLog(path)
		if err != nil {
			return 0, false, err
		}
		if ok && (!found || aff > best) {
			best, found = aff, true
		}
	}
	return best, found, nil
}

// runMetabolite extracts the metabolite from a run directory name, or ""
// when the name has no target suffix.
func runMetabolite(dir string) string {
	i := strings.LastIndexByte(dir, '_')
	if i <= 0 || i == len(dir)-1 {
		return ""
	}
	return dir[:i]
}

// Affinity returns the docking evidence for a metabolite: parsed logs when
// present, otherwise the conceptual value, otherwise 0.
func Affinity(dir, metabolite string) (float64, error) {
	aff, ok, err := Best(dir, metabolite)
	if err != nil {
		return 0, err
	}
	if ok {
		slog.Debug("docking affinity from logs", "metabolite", metabolite, "affinity", aff)
		return aff, nil
	}
	return Conceptual[metabolite], nil
}

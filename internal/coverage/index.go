// Package coverage answers per-function coverage lookups and estimates
// coverage for untested functions from how well their callees are
// tested.
package coverage

import (
	"path/filepath"
	"sort"
)

// FuncCoverage holds the coverage of a single function as reported by
// a coverage tool.
type FuncCoverage struct {
	// File is the source file path as resolved by the collector.
	File string `json:"file"`

	// FuncName is the function name (e.g., "Save" or "(*Store).Save").
	FuncName string `json:"func_name"`

	// StartLine is the function declaration start line.
	StartLine int `json:"start_line"`

	// EndLine is the function body end line.
	EndLine int `json:"end_line"`

	// CoveredStmts is the number of statements or lines hit by tests.
	CoveredStmts int64 `json:"covered_stmts"`

	// TotalStmts is the number of instrumented statements or lines.
	TotalStmts int64 `json:"total_stmts"`

	// Percentage is the coverage percentage (0-100).
	Percentage float64 `json:"percentage"`
}

// DefaultLineTolerance is how far apart a parser line and a coverage
// tool line may be and still match.
const DefaultLineTolerance = 2

type lineKey struct {
	file string
	line int
}

type nameKey struct {
	file string
	name string
}

// Index is a read-only coverage lookup. The zero value and a nil
// *Index both report every function as unknown.
type Index struct {
	exact     map[lineKey]float64
	byName    map[nameKey]float64
	basename  map[lineKey]float64
	baseName  map[nameKey]float64
	lines     map[string][]lineEntry
	tolerance int
}

type lineEntry struct {
	line  int
	ratio float64
}

// NewIndex builds an index from per-function records. Percentages are
// clamped to [0,100] and stored as ratios.
func NewIndex(records []FuncCoverage) *Index {
	idx := &Index{
		exact:     make(map[lineKey]float64, len(records)),
		byName:    make(map[nameKey]float64, len(records)),
		basename:  make(map[lineKey]float64, len(records)),
		baseName:  make(map[nameKey]float64, len(records)),
		lines:     make(map[string][]lineEntry),
		tolerance: DefaultLineTolerance,
	}
	for _, r := range records {
		ratio := clampRatio(r.Percentage / 100)
		base := filepath.Base(r.File)
		idx.exact[lineKey{r.File, r.StartLine}] = ratio
		idx.basename[lineKey{base, r.StartLine}] = ratio
		if r.FuncName != "" {
			idx.byName[nameKey{r.File, r.FuncName}] = ratio
			idx.baseName[nameKey{base, r.FuncName}] = ratio
		}
		idx.lines[r.File] = append(idx.lines[r.File], lineEntry{r.StartLine, ratio})
	}
	for f := range idx.lines {
		entries := idx.lines[f]
		sort.Slice(entries, func(i, j int) bool { return entries[i].line < entries[j].line })
	}
	return idx
}

// WithTolerance returns a copy of the index using a different fuzzy
// line window. Negative values are treated as zero.
func (idx *Index) WithTolerance(lines int) *Index {
	if idx == nil {
		return nil
	}
	if lines < 0 {
		lines = 0
	}
	cp := *idx
	cp.tolerance = lines
	return &cp
}

// Len returns the number of indexed functions.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.exact)
}

// Lookup returns the direct coverage ratio for a function, trying in
// order: exact file and line, file and name, nearest line within the
// tolerance, then basename with line or name.
func (idx *Index) Lookup(file, name string, line int) (float64, bool) {
	if idx == nil {
		return 0, false
	}
	if r, ok := idx.exact[lineKey{file, line}]; ok {
		return r, true
	}
	if r, ok := idx.byName[nameKey{file, name}]; ok {
		return r, true
	}
	if r, ok := idx.nearest(file, line); ok {
		return r, true
	}
	base := filepath.Base(file)
	if r, ok := idx.basename[lineKey{base, line}]; ok {
		return r, true
	}
	if r, ok := idx.baseName[nameKey{base, name}]; ok {
		return r, true
	}
	return 0, false
}

// Direct returns the coverage ratio, treating unknown functions as
// untested.
func (idx *Index) Direct(file, name string, line int) float64 {
	r, _ := idx.Lookup(file, name, line)
	return r
}

func (idx *Index) nearest(file string, line int) (float64, bool) {
	entries := idx.lines[file]
	if len(entries) == 0 || idx.tolerance == 0 {
		return 0, false
	}
	best, bestDist := 0.0, idx.tolerance+1
	for _, e := range entries {
		d := e.line - line
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = e.ratio, d
		}
	}
	return best, bestDist <= idx.tolerance
}

func clampRatio(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

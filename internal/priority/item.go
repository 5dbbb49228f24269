// Package priority turns a snapshot into a ranked, filtered list of
// debt items. It wires the engine together: coverage propagation, role
// and debt classification, scoring, tiering, and the filter, sort, and
// limit pipeline.
package priority

import (
	"github.com/unbound-force/debtmap/internal/coverage"
	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/role"
	"github.com/unbound-force/debtmap/internal/score"
	"github.com/unbound-force/debtmap/internal/tier"
)

// Location pins a debt item to source.
type Location struct {
	File     string `json:"file"`
	Function string `json:"function,omitempty"`
	Line     int    `json:"line"`
}

// UnifiedDebtItem is a function-level debt item.
type UnifiedDebtItem struct {
	Location               Location                     `json:"location"`
	Debt                   debt.DebtType                `json:"-"`
	Score                  score.UnifiedScore           `json:"score"`
	Role                   role.FunctionRole            `json:"role"`
	UpstreamDependencies   int                          `json:"upstream_dependencies"`
	DownstreamDependencies int                          `json:"downstream_dependencies"`
	UpstreamCallers        []string                     `json:"upstream_callers"`
	DownstreamCallees      []string                     `json:"downstream_callees"`
	Recommendation         Recommendation               `json:"recommendation"`
	Coverage               *coverage.TransitiveCoverage `json:"coverage,omitempty"`
	Cyclomatic             int                          `json:"cyclomatic"`
	Cognitive              int                          `json:"cognitive"`
	Nesting                int                          `json:"nesting"`
	Length                 int                          `json:"length"`
	Criticality            float64                      `json:"criticality"`
	Tier                   tier.Tier                    `json:"tier"`
}

// FileDebtItem is a file-level debt item such as a god object.
type FileDebtItem struct {
	Location       Location           `json:"location"`
	Debt           debt.DebtType      `json:"-"`
	Score          score.UnifiedScore `json:"score"`
	Lines          int                `json:"lines"`
	Functions      int                `json:"functions"`
	Aggregated     int                `json:"aggregated_functions"`
	Recommendation Recommendation     `json:"recommendation"`
	Tier           tier.Tier          `json:"tier"`
}

// Item is either a function-level or a file-level debt item.
type Item struct {
	fn   *UnifiedDebtItem
	file *FileDebtItem
}

// FunctionItem wraps a function-level item.
func FunctionItem(u *UnifiedDebtItem) Item { return Item{fn: u} }

// FileItem wraps a file-level item.
func FileItem(f *FileDebtItem) Item { return Item{file: f} }

// AsFunction returns the function-level item, if that is what i holds.
func (i Item) AsFunction() (*UnifiedDebtItem, bool) { return i.fn, i.fn != nil }

// AsFile returns the file-level item, if that is what i holds.
func (i Item) AsFile() (*FileDebtItem, bool) { return i.file, i.file != nil }

// Score returns the final score.
func (i Item) Score() float64 {
	return i.Breakdown().FinalScore
}

// Breakdown returns the full score.
func (i Item) Breakdown() score.UnifiedScore {
	if i.fn != nil {
		return i.fn.Score
	}
	if i.file != nil {
		return i.file.Score
	}
	return score.UnifiedScore{}
}

// Location returns where the item points.
func (i Item) Location() Location {
	if i.fn != nil {
		return i.fn.Location
	}
	if i.file != nil {
		return i.file.Location
	}
	return Location{}
}

// File returns the source file.
func (i Item) File() string { return i.Location().File }

// Line returns the source line.
func (i Item) Line() int { return i.Location().Line }

// Debt returns the debt classification.
func (i Item) Debt() debt.DebtType {
	if i.fn != nil {
		return i.fn.Debt
	}
	if i.file != nil {
		return i.file.Debt
	}
	return nil
}

// Kind returns the discriminant of the debt classification.
func (i Item) Kind() debt.Kind {
	if d := i.Debt(); d != nil {
		return d.Kind()
	}
	return ""
}

// Tier returns the assigned tier.
func (i Item) Tier() tier.Tier {
	if i.fn != nil {
		return i.fn.Tier
	}
	if i.file != nil {
		return i.file.Tier
	}
	return tier.T4Maintenance
}

// Recommendation returns the suggested action.
func (i Item) Recommendation() Recommendation {
	if i.fn != nil {
		return i.fn.Recommendation
	}
	if i.file != nil {
		return i.file.Recommendation
	}
	return Recommendation{}
}

// Cyclomatic returns the function's cyclomatic complexity, or 0 for
// file-level items.
func (i Item) Cyclomatic() int {
	if i.fn != nil {
		return i.fn.Cyclomatic
	}
	return 0
}

// IsDuplicateOf reports whether a and b describe the same finding:
// the same debt kind at the same file and line. Evidence such as
// complexity values is not compared.
func IsDuplicateOf(a, b Item) bool {
	return a.File() == b.File() && a.Line() == b.Line() && a.Kind() == b.Kind()
}

type dupKey struct {
	file string
	line int
	kind debt.Kind
}

func keyOf(i Item) dupKey {
	return dupKey{file: i.File(), line: i.Line(), kind: i.Kind()}
}

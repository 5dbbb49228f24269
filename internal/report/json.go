// Package report renders debt analysis results as styled terminal
// text, versioned JSON, and GitHub-flavoured markdown.
package report

import (
	"encoding/json"
	"io"

	"github.com/unbound-force/debtmap/internal/coverage"
	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/priority"
	"github.com/unbound-force/debtmap/internal/role"
	"github.com/unbound-force/debtmap/internal/score"
	"github.com/unbound-force/debtmap/internal/tier"
)

// SchemaVersion is the version of the JSON document layout described
// by Schema.
const SchemaVersion = "1.0.0"

// JSONReport is the top-level JSON output structure.
type JSONReport struct {
	Version      string                        `json:"version"`
	ToolVersion  string                        `json:"tool_version"`
	Summary      JSONSummary                   `json:"summary"`
	Items        []JSONItem                    `json:"items"`
	Stats        JSONStats                     `json:"stats"`
	Categories   []JSONCategory                `json:"categories"`
	Dependencies []priority.CategoryDependency `json:"dependencies"`
}

// JSONSummary holds run-level totals.
type JSONSummary struct {
	FunctionsAnalyzed int     `json:"functions_analyzed"`
	FilesAnalyzed     int     `json:"files_analyzed"`
	HasCoverage       bool    `json:"has_coverage"`
	TotalDebtScore    float64 `json:"total_debt_score"`
	ItemsReported     int     `json:"items_reported"`

	// TierCounts counts every item that passed filtering, like
	// TotalDebtScore. ReportedTierCounts counts only Items.
	TierCounts         map[string]int `json:"tier_counts"`
	ReportedTierCounts map[string]int `json:"reported_tier_counts"`
}

// JSONItem is one reported debt item, function or file level.
type JSONItem struct {
	Type           string                  `json:"type"`
	Kind           debt.Kind               `json:"kind"`
	DisplayName    string                  `json:"display_name"`
	Category       debt.Category           `json:"category"`
	Tier           tier.Tier               `json:"tier"`
	Severity       tier.Severity           `json:"severity"`
	Location       priority.Location       `json:"location"`
	Score          score.UnifiedScore      `json:"score"`
	Debt           debt.DebtType           `json:"debt"`
	Recommendation priority.Recommendation `json:"recommendation"`
	Function       *JSONFunction           `json:"function,omitempty"`
	File           *JSONFile               `json:"file,omitempty"`
}

// JSONFunction carries the evidence of a function-level item.
type JSONFunction struct {
	Role                   role.FunctionRole            `json:"role"`
	Cyclomatic             int                          `json:"cyclomatic"`
	Cognitive              int                          `json:"cognitive"`
	Nesting                int                          `json:"nesting"`
	Length                 int                          `json:"length"`
	UpstreamDependencies   int                          `json:"upstream_dependencies"`
	DownstreamDependencies int                          `json:"downstream_dependencies"`
	UpstreamCallers        []string                     `json:"upstream_callers"`
	DownstreamCallees      []string                     `json:"downstream_callees"`
	Criticality            float64                      `json:"criticality"`
	Coverage               *coverage.TransitiveCoverage `json:"coverage,omitempty"`
}

// JSONFile carries the evidence of a file-level item.
type JSONFile struct {
	Lines      int `json:"lines"`
	Functions  int `json:"functions"`
	Aggregated int `json:"aggregated_functions"`
}

// JSONStats is the filter accounting plus derived rates.
type JSONStats struct {
	priority.FilterStatistics
	TotalFiltered  int     `json:"total_filtered"`
	AcceptanceRate float64 `json:"acceptance_rate"`
}

// JSONCategory is a category summary with its top item locations.
type JSONCategory struct {
	priority.CategorySummary
	Guidance string              `json:"guidance"`
	TopItems []priority.Location `json:"top_items"`
}

// NewJSONReport converts an analysis result into its JSON document.
func NewJSONReport(res priority.Result, version string) JSONReport {
	rpt := JSONReport{
		Version:     SchemaVersion,
		ToolVersion: version,
		Summary: JSONSummary{
			FunctionsAnalyzed: res.FunctionsAnalyzed,
			FilesAnalyzed:     res.FilesAnalyzed,
			HasCoverage:       res.HasCoverage,
			TotalDebtScore:    res.TotalDebtScore,
			ItemsReported:     len(res.Items),
			TierCounts:         make(map[string]int, len(tier.All)),
			ReportedTierCounts: make(map[string]int, len(tier.All)),
		},
		Items: make([]JSONItem, 0, len(res.Items)),
		Stats: JSONStats{
			FilterStatistics: res.Stats,
			TotalFiltered:    res.Stats.TotalFiltered(),
			AcceptanceRate:   res.Stats.AcceptanceRate(),
		},
		Categories:   make([]JSONCategory, 0, len(res.Summaries)),
		Dependencies: res.Dependencies,
	}
	if rpt.Dependencies == nil {
		rpt.Dependencies = []priority.CategoryDependency{}
	}

	reported := res.CountByTier()
	for _, t := range tier.All {
		rpt.Summary.TierCounts[t.String()] = res.TierCounts[t]
		rpt.Summary.ReportedTierCounts[t.String()] = reported[t]
	}
	for _, it := range res.Items {
		rpt.Items = append(rpt.Items, newJSONItem(it))
	}
	for _, s := range res.Summaries {
		c := JSONCategory{
			CategorySummary: s,
			Guidance:        s.Category.Guidance(),
			TopItems:        make([]priority.Location, 0, len(s.TopItems)),
		}
		for _, it := range s.TopItems {
			c.TopItems = append(c.TopItems, it.Location())
		}
		rpt.Categories = append(rpt.Categories, c)
	}
	return rpt
}

func newJSONItem(it priority.Item) JSONItem {
	out := JSONItem{
		Kind:           it.Kind(),
		DisplayName:    debt.DisplayName(it.Debt()),
		Category:       debt.CategoryOf(it.Debt()),
		Tier:           it.Tier(),
		Severity:       tier.SeverityOf(it.Score()),
		Location:       it.Location(),
		Score:          it.Breakdown(),
		Debt:           it.Debt(),
		Recommendation: it.Recommendation(),
	}
	if fn, ok := it.AsFunction(); ok {
		out.Type = "function"
		out.Function = &JSONFunction{
			Role:                   fn.Role,
			Cyclomatic:             fn.Cyclomatic,
			Cognitive:              fn.Cognitive,
			Nesting:                fn.Nesting,
			Length:                 fn.Length,
			UpstreamDependencies:   fn.UpstreamDependencies,
			DownstreamDependencies: fn.DownstreamDependencies,
			UpstreamCallers:        nonNil(fn.UpstreamCallers),
			DownstreamCallees:      nonNil(fn.DownstreamCallees),
			Criticality:            fn.Criticality,
			Coverage:               fn.Coverage,
		}
	} else if f, ok := it.AsFile(); ok {
		out.Type = "file"
		out.File = &JSONFile{Lines: f.Lines, Functions: f.Functions, Aggregated: f.Aggregated}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// WriteJSON writes the analysis result as formatted JSON to the writer.
func WriteJSON(w io.Writer, res priority.Result, version string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewJSONReport(res, version))
}

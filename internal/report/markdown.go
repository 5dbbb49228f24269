package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/priority"
	"github.com/unbound-force/debtmap/internal/tier"
)

// WriteMarkdown writes the analysis result as GitHub-flavoured
// markdown, suitable for a pull request comment.
func WriteMarkdown(w io.Writer, res priority.Result) error {
	var b strings.Builder

	b.WriteString("## Technical debt\n\n")
	fmt.Fprintf(&b, "%d function(s) in %d file(s) analyzed. ", res.FunctionsAnalyzed, res.FilesAnalyzed)
	fmt.Fprintf(&b, "%d item(s) reported, total debt score **%.1f**.", len(res.Items), res.TotalDebtScore)
	if !res.HasCoverage {
		b.WriteString(" No coverage data was loaded.")
	}
	b.WriteString("\n\n")

	counts := res.CountByTier()
	b.WriteString("| Tier | Items |\n|------|------:|\n")
	for _, t := range tier.All {
		fmt.Fprintf(&b, "| %s %s | %d |\n", t, t.Label(), counts[t])
	}
	b.WriteString("\n")

	if len(res.Items) == 0 {
		b.WriteString("_No debt items above the reporting threshold._\n")
	} else {
		b.WriteString("| # | Score | Tier | Debt | Location | Action |\n")
		b.WriteString("|--:|------:|------|------|----------|--------|\n")
		for i, it := range res.Items {
			loc := it.Location()
			where := fmt.Sprintf("`%s:%d`", loc.File, loc.Line)
			if loc.Function != "" {
				where += " " + mdEscape(loc.Function)
			}
			fmt.Fprintf(&b, "| %d | %.1f | %s | %s | %s | %s |\n",
				i+1, it.Score(), it.Tier(), debt.DisplayName(it.Debt()), where,
				mdEscape(it.Recommendation().PrimaryAction))
		}
	}

	if len(res.Summaries) > 0 {
		b.WriteString("\n### Categories\n\n")
		b.WriteString("| Category | Items | Total | Average | Effort |\n")
		b.WriteString("|----------|------:|------:|--------:|-------:|\n")
		for _, c := range res.Summaries {
			fmt.Fprintf(&b, "| %s | %d | %.1f | %.1f | ~%dh |\n",
				c.Category, c.ItemCount, c.TotalScore, c.AverageSeverity, c.EstimatedEffortHours)
		}
	}

	if len(res.Dependencies) > 0 {
		b.WriteString("\n### Dependencies\n\n")
		for _, d := range res.Dependencies {
			fmt.Fprintf(&b, "- **%s → %s** (%s): %s\n", d.Source, d.Target, d.Impact, d.Description)
		}
	}

	st := res.Stats
	fmt.Fprintf(&b, "\n<details><summary>Filtering</summary>\n\n"+
		"%d processed, %d kept (%.1f%%): %d below min score, %d hidden tier, %d below complexity, %d duplicate.\n\n"+
		"</details>\n",
		st.TotalItemsProcessed, st.ItemsAdded, st.AcceptanceRate(),
		st.FilteredByScore, st.FilteredByTier, st.FilteredByComplexity, st.FilteredAsDuplicate)

	_, err := io.WriteString(w, b.String())
	return err
}

// mdEscape keeps cell text from breaking a markdown table row.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/priority"
	"github.com/unbound-force/debtmap/internal/tier"
)

// Layout limits for an 80-column terminal. Locations longer than
// maxLocation keep their tail.
const (
	tableWidth  = 80
	textWidth   = 76
	maxLocation = 26
)

// TextOptions controls optional sections of the text report.
type TextOptions struct {
	// Verbose appends a score breakdown for each reported item.
	Verbose bool
}

// WriteText writes the analysis result as human-readable styled text
// to the writer. Output uses lipgloss for color and formatting when
// the output is a TTY; degrades gracefully for pipes and CI.
func WriteText(w io.Writer, res priority.Result) error {
	return WriteTextOptions(w, res, TextOptions{})
}

// WriteTextOptions writes the text report with the given options.
func WriteTextOptions(w io.Writer, res priority.Result, opts TextOptions) error {
	s := DefaultStyles()

	if len(res.Items) == 0 {
		fmt.Fprintln(w, s.Muted.Render("No debt items above the reporting threshold."))
	} else {
		fmt.Fprintln(w, RenderTable(res.Items, s))
	}

	if opts.Verbose {
		for _, it := range res.Items {
			fmt.Fprintln(w)
			fmt.Fprint(w, priority.Explain(it))
		}
	}

	writeStats(w, res, s)
	writeCategories(w, res.Summaries, s)
	writeDependencies(w, res.Dependencies, s)

	fmt.Fprintf(w, "\n%s\n", s.Header.Render(fmt.Sprintf(
		"%d function(s) analyzed, %d item(s) reported, total debt score %.1f",
		res.FunctionsAnalyzed, len(res.Items), res.TotalDebtScore)))
	return nil
}

// RenderTable renders ranked items as a bordered table.
func RenderTable(items []priority.Item, s Styles) string {
	rows := make([][]string, 0, len(items))
	for i, it := range items {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.1f", it.Score()),
			it.Tier().String(),
			debt.DisplayName(it.Debt()),
			roleCell(it),
			coverageCell(it),
			truncateLeft(locationCell(it), maxLocation),
		})
	}

	t := table.New().
		Width(tableWidth).
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			if row < 0 || row >= len(items) {
				return s.TableCell
			}
			switch col {
			case 1:
				return s.ScoreStyle(items[row].Score())
			case 2:
				return s.TierStyle(items[row].Tier()).PaddingRight(1)
			}
			return s.TableCell
		}).
		Headers("#", "SCORE", "TIER", "DEBT", "ROLE", "COV", "LOCATION").
		Rows(rows...)
	return t.String()
}

func roleCell(it priority.Item) string {
	if fn, ok := it.AsFunction(); ok {
		return string(fn.Role)
	}
	return "file"
}

func coverageCell(it priority.Item) string {
	fn, ok := it.AsFunction()
	if !ok || fn.Coverage == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", fn.Coverage.Effective()*100)
}

func locationCell(it priority.Item) string {
	loc := it.Location()
	return fmt.Sprintf("%s:%d", loc.File, loc.Line)
}

// truncateLeft shortens s to at most n runes, keeping the end.
func truncateLeft(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "..." + string(r[len(r)-(n-3):])
}

func writeStats(w io.Writer, res priority.Result, s Styles) {
	st := res.Stats
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.Header.Render("--- Summary ---"))
	fmt.Fprintf(w, "%s  %d\n", s.SummaryLabel.Render("Functions analyzed:"), res.FunctionsAnalyzed)
	fmt.Fprintf(w, "%s  %d\n", s.SummaryLabel.Render("Files analyzed:"), res.FilesAnalyzed)
	cov := "no data"
	if res.HasCoverage {
		cov = "loaded"
	}
	fmt.Fprintf(w, "%s  %s\n", s.SummaryLabel.Render("Coverage:"), cov)
	fmt.Fprintf(w, "%s  %d\n", s.SummaryLabel.Render("Items processed:"), st.TotalItemsProcessed)
	fmt.Fprintf(w, "%s  %d %s\n", s.SummaryLabel.Render("Items kept:"), st.ItemsAdded,
		s.Muted.Render(fmt.Sprintf("(%.1f%% acceptance)", st.AcceptanceRate())))
	fmt.Fprintf(w, "%s  %d\n", s.SummaryLabel.Render("Below min score:"), st.FilteredByScore)
	fmt.Fprintf(w, "%s  %d\n", s.SummaryLabel.Render("Hidden tier:"), st.FilteredByTier)
	fmt.Fprintf(w, "%s  %d\n", s.SummaryLabel.Render("Below complexity:"), st.FilteredByComplexity)
	fmt.Fprintf(w, "%s  %d\n", s.SummaryLabel.Render("Duplicates:"), st.FilteredAsDuplicate)

	counts := res.CountByTier()
	var parts []string
	for _, t := range tier.All {
		if c := counts[t]; c > 0 {
			parts = append(parts, s.TierStyle(t).Render(fmt.Sprintf("%s: %d", t, c)))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "%s  %s\n", s.SummaryLabel.Render("Tiers:"), strings.Join(parts, ", "))
	}
}

func writeCategories(w io.Writer, summaries []priority.CategorySummary, s Styles) {
	if len(summaries) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.Header.Render("--- Debt Categories ---"))
	for _, c := range summaries {
		fmt.Fprintf(w, "  %-12s %3d item(s)  total %6.1f  avg %5.1f  ~%dh\n",
			c.Category, c.ItemCount, c.TotalScore, c.AverageSeverity, c.EstimatedEffortHours)
		fmt.Fprintln(w, indent(s.Muted.Width(textWidth).Render(c.Category.Guidance())))
	}
}

func writeDependencies(w io.Writer, deps []priority.CategoryDependency, s Styles) {
	if len(deps) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.Header.Render("--- Dependencies ---"))
	for _, d := range deps {
		fmt.Fprintf(w, "  %s -> %s (%s)\n", d.Source, d.Target, d.Impact)
		fmt.Fprintln(w, indent(s.Muted.Width(textWidth).Render(d.Description)))
	}
}

func indent(block string) string {
	lines := strings.Split(block, "\n")
	for i, l := range lines {
		lines[i] = "  " + strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}

package priority

import (
	"fmt"
	"strings"

	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/tier"
)

// Explain returns a plain-text breakdown of how an item's score came
// about.
func Explain(it Item) string {
	var b strings.Builder
	loc := it.Location()
	s := it.Breakdown()

	fmt.Fprintf(&b, "%s at %s:%d", debt.DisplayName(it.Debt()), loc.File, loc.Line)
	if loc.Function != "" {
		fmt.Fprintf(&b, " (%s)", loc.Function)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  tier:      %s %s (weight %.1f)\n", it.Tier(), it.Tier().Label(), it.Tier().Weight())
	fmt.Fprintf(&b, "  category:  %s\n", debt.CategoryOf(it.Debt()))
	fmt.Fprintf(&b, "  severity:  %s\n", tier.SeverityOf(s.FinalScore))

	if s.IsZero() {
		b.WriteString("  score:     0 (trivial function that is already well tested)\n")
		return b.String()
	}

	if fn, ok := it.AsFunction(); ok {
		fmt.Fprintf(&b, "  role:      %s (x%.2f)\n", fn.Role, s.RoleMultiplier)
		fmt.Fprintf(&b, "  metrics:   cyclomatic %d, cognitive %d, nesting %d, length %d\n",
			fn.Cyclomatic, fn.Cognitive, fn.Nesting, fn.Length)
		if fn.Coverage != nil {
			fmt.Fprintf(&b, "  coverage:  direct %.0f%%, transitive %.0f%%", fn.Coverage.Direct*100, fn.Coverage.Transitive*100)
			if n := len(fn.Coverage.PropagatedFrom); n > 0 {
				fmt.Fprintf(&b, " via %d well-covered callee(s)", n)
			}
			b.WriteString("\n")
		} else {
			b.WriteString("  coverage:  no data\n")
		}
		fmt.Fprintf(&b, "  calls:     %d upstream, %d downstream, criticality %.2f\n",
			fn.UpstreamDependencies, fn.DownstreamDependencies, fn.Criticality)
		fmt.Fprintf(&b, "  factors:   coverage %.2f, complexity %.2f, dependency %.2f\n",
			s.CoverageFactor, s.ComplexityFactor, s.DependencyFactor)
	} else if f, ok := it.AsFile(); ok {
		fmt.Fprintf(&b, "  file:      %d lines, %d functions, %d aggregated\n", f.Lines, f.Functions, f.Aggregated)
	}

	fmt.Fprintf(&b, "  base:      %.2f\n", s.BaseScore)
	fmt.Fprintf(&b, "  scaled:    max(base, 1)^%.2f x boost %.3f\n", s.ExponentialFactor, s.RiskBoost)
	fmt.Fprintf(&b, "  final:     %.2f\n", s.FinalScore)

	rec := it.Recommendation()
	if rec.PrimaryAction != "" {
		fmt.Fprintf(&b, "  action:    %s\n", rec.PrimaryAction)
	}
	return b.String()
}

package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/unbound-force/debtmap/internal/tier"
)

// Styles defines the visual theme for terminal report output.
// Lipgloss automatically degrades to no-color when output is not a TTY.
type Styles struct {
	// Header is used for section headers (e.g. "--- Summary ---").
	Header lipgloss.Style

	// SubHeader is used for secondary information lines.
	SubHeader lipgloss.Style

	// TierT1 through TierT4 color-code recommendation tiers.
	TierT1 lipgloss.Style
	TierT2 lipgloss.Style
	TierT3 lipgloss.Style
	TierT4 lipgloss.Style

	// TableHeader styles the header row of tables.
	TableHeader lipgloss.Style

	// TableCell styles regular table cells.
	TableCell lipgloss.Style

	// ScoreCritical through ScoreLow color scores by severity band.
	ScoreCritical lipgloss.Style
	ScoreHigh     lipgloss.Style
	ScoreModerate lipgloss.Style
	ScoreLow      lipgloss.Style

	// SummaryLabel styles summary line labels.
	SummaryLabel lipgloss.Style

	// Pass styles PASS indicators.
	Pass lipgloss.Style

	// Fail styles FAIL indicators.
	Fail lipgloss.Style

	// Border is used for table borders.
	Border lipgloss.Style

	// Muted is used for de-emphasized text.
	Muted lipgloss.Style
}

// DefaultStyles returns the default color scheme for terminal reports.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		SubHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),

		TierT1: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		TierT2: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		TierT3: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		TierT4: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		TableHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		TableCell:   lipgloss.NewStyle().PaddingRight(1),

		ScoreCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).PaddingRight(1),
		ScoreHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("208")).PaddingRight(1),
		ScoreModerate: lipgloss.NewStyle().Foreground(lipgloss.Color("220")).PaddingRight(1),
		ScoreLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("40")).PaddingRight(1),

		SummaryLabel: lipgloss.NewStyle().Bold(true).Width(22),

		Pass: lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true),
		Fail: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),

		Border: lipgloss.NewStyle().Foreground(lipgloss.Color("63")),

		Muted: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// TierStyle returns the style for a tier.
func (s Styles) TierStyle(t tier.Tier) lipgloss.Style {
	switch t {
	case tier.T1CriticalArchitecture:
		return s.TierT1
	case tier.T2ComplexUntested:
		return s.TierT2
	case tier.T3TestingGaps:
		return s.TierT3
	case tier.T4Maintenance:
		return s.TierT4
	default:
		return s.Muted
	}
}

// ScoreStyle returns the style for a final score's severity band.
func (s Styles) ScoreStyle(score float64) lipgloss.Style {
	switch tier.SeverityOf(score) {
	case tier.Critical:
		return s.ScoreCritical
	case tier.High:
		return s.ScoreHigh
	case tier.Moderate:
		return s.ScoreModerate
	default:
		return s.ScoreLow
	}
}

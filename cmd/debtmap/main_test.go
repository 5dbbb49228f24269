package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/unbound-force/debtmap/internal/config"
	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/priority"
	"github.com/unbound-force/debtmap/internal/report"
	"github.com/unbound-force/debtmap/internal/role"
	"github.com/unbound-force/debtmap/internal/score"
	"github.com/unbound-force/debtmap/internal/tier"
)

// sampleDir returns the fixture module shared with the collector tests.
func sampleDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "internal", "collect", "testdata", "sample")
}

func sampleSource(t *testing.T) sourceParams {
	t.Helper()
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}
	dir := sampleDir()
	return sourceParams{
		patterns:     []string{"./..."},
		dir:          dir,
		coverProfile: filepath.Join(dir, "cover.out"),
	}
}

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func ciResult(critical int) priority.Result {
	return priority.Result{
		TierCounts:     map[tier.Tier]int{tier.T1CriticalArchitecture: critical, tier.T2ComplexUntested: 4},
		TotalDebtScore: 212.4,
	}
}

// ---------------------------------------------------------------------------
// runAnalyze tests
// ---------------------------------------------------------------------------

func TestRunAnalyze_InvalidFormat(t *testing.T) {
	err := runAnalyze(analyzeParams{format: "html", stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunAnalyze_ValidateRequiresJSON(t *testing.T) {
	err := runAnalyze(analyzeParams{format: "text", validate: true, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "--validate") {
		t.Errorf("expected --validate error, got %v", err)
	}
}

func TestRunAnalyze_TextFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := runAnalyze(analyzeParams{
		source: sampleSource(t),
		format: "text",
		stdout: &stdout,
		stderr: &stderr,
	})
	if err != nil {
		t.Fatalf("runAnalyze() returned error: %v", err)
	}

	output := stdout.String()
	for _, want := range []string{"--- Summary ---", "Coverage:", "function(s) analyzed"} {
		if !strings.Contains(output, want) {
			t.Errorf("text output missing %q:\n%s", want, output)
		}
	}
	if stderr.Len() != 0 {
		t.Errorf("no CI summary expected without --max-critical, got %q", stderr.String())
	}
}

func TestRunAnalyze_JSONFormatValidates(t *testing.T) {
	var stdout bytes.Buffer
	err := runAnalyze(analyzeParams{
		source:   sampleSource(t),
		format:   "json",
		validate: true,
		stdout:   &stdout,
		stderr:   &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("runAnalyze() returned error: %v", err)
	}

	var doc struct {
		Version string `json:"version"`
		Summary struct {
			FunctionsAnalyzed int  `json:"functions_analyzed"`
			HasCoverage       bool `json:"has_coverage"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc.Version != report.SchemaVersion {
		t.Errorf("version = %q, want %q", doc.Version, report.SchemaVersion)
	}
	if doc.Summary.FunctionsAnalyzed == 0 {
		t.Error("expected analyzed functions in summary")
	}
	if !doc.Summary.HasCoverage {
		t.Error("coverage profile was given but has_coverage is false")
	}
}

func TestRunAnalyze_MarkdownFormat(t *testing.T) {
	var stdout bytes.Buffer
	err := runAnalyze(analyzeParams{
		source: sampleSource(t),
		format: "markdown",
		stdout: &stdout,
		stderr: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("runAnalyze() returned error: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "## Technical debt") {
		t.Errorf("markdown output should start with a heading, got:\n%s", stdout.String())
	}
}

func TestRunAnalyze_TopLimitsItems(t *testing.T) {
	src := sampleSource(t)
	src.overrides = overrides{top: intPtr(1), minScore: floatPtr(0), showT4: boolPtr(true)}

	var stdout bytes.Buffer
	err := runAnalyze(analyzeParams{source: src, format: "json", stdout: &stdout, stderr: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("runAnalyze() returned error: %v", err)
	}

	var doc struct {
		Items []json.RawMessage `json:"items"`
		Stats struct {
			ItemsAdded int `json:"items_added"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(doc.Items) != 1 {
		t.Errorf("got %d items, want 1", len(doc.Items))
	}
	if doc.Stats.ItemsAdded < 1 {
		t.Errorf("items_added = %d, want at least 1", doc.Stats.ItemsAdded)
	}
}

func TestRunAnalyze_MissingConfig(t *testing.T) {
	src := sampleSource(t)
	src.configPath = filepath.Join(t.TempDir(), "missing.yaml")

	err := runAnalyze(analyzeParams{source: src, format: "text", stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestRunAnalyze_InvalidOverride(t *testing.T) {
	src := sampleSource(t)
	src.overrides = overrides{tierProfile: "reckless"}

	err := runAnalyze(analyzeParams{source: src, format: "text", stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("expected configuration error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// overrides tests
// ---------------------------------------------------------------------------

func TestOverrides_Apply(t *testing.T) {
	cfg := config.Default()
	overrides{
		top:               intPtr(7),
		minScore:          floatPtr(12.5),
		showT4:            boolPtr(true),
		tierProfile:       "strict",
		aggregationMethod: "sum",
		noAggregation:     true,
	}.apply(cfg)

	if cfg.Top != 7 {
		t.Errorf("Top = %d, want 7", cfg.Top)
	}
	if cfg.Filter.MinScore != 12.5 {
		t.Errorf("MinScore = %v, want 12.5", cfg.Filter.MinScore)
	}
	if !cfg.Filter.ShowT4 {
		t.Error("ShowT4 should be set")
	}
	if cfg.Tiers.Profile != "strict" {
		t.Errorf("Profile = %q, want strict", cfg.Tiers.Profile)
	}
	if cfg.Scoring.AggregationMethod != "sum" {
		t.Errorf("AggregationMethod = %q, want sum", cfg.Scoring.AggregationMethod)
	}
	if cfg.Scoring.Aggregation {
		t.Error("Aggregation should be disabled")
	}
}

func TestOverrides_EmptyKeepsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Top = 3
	cfg.Filter.MinScore = 8
	overrides{}.apply(cfg)

	if cfg.Top != 3 || cfg.Filter.MinScore != 8 {
		t.Errorf("empty overrides changed config: top=%d min=%v", cfg.Top, cfg.Filter.MinScore)
	}
}

func TestSourceFlags_OnlyChangedOverride(t *testing.T) {
	var src sourceFlags
	cmd := &cobra.Command{Use: "test"}
	src.register(cmd)
	if err := cmd.ParseFlags([]string{"--top", "4", "--tier-profile", "lenient"}); err != nil {
		t.Fatal(err)
	}

	p, err := src.params(cmd, []string{"./internal/..."})
	if err != nil {
		t.Fatalf("params() returned error: %v", err)
	}
	o := p.overrides
	if o.top == nil || *o.top != 4 {
		t.Errorf("top override = %v, want 4", o.top)
	}
	if o.minScore != nil || o.showT4 != nil {
		t.Error("flags left at their defaults must not override the config")
	}
	if o.tierProfile != "lenient" {
		t.Errorf("tierProfile = %q, want lenient", o.tierProfile)
	}
	if len(p.patterns) != 1 || p.patterns[0] != "./internal/..." {
		t.Errorf("patterns = %v", p.patterns)
	}
}

// ---------------------------------------------------------------------------
// CI threshold tests
// ---------------------------------------------------------------------------

func TestPrintCISummary(t *testing.T) {
	tests := []struct {
		name        string
		critical    int
		maxCritical int
		want        string
	}{
		{"disabled", 3, 0, ""},
		{"pass", 2, 2, "Critical (T1): 2/2 (PASS) | Total debt score: 212.4\n"},
		{"fail", 3, 2, "Critical (T1): 3/2 (FAIL) | Total debt score: 212.4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printCISummary(&buf, ciResult(tt.critical), tt.maxCritical, report.Styles{})
			if buf.String() != tt.want {
				t.Errorf("summary = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPrintCISummary_StylesStatus(t *testing.T) {
	styles := report.Styles{
		Pass: lipgloss.NewStyle().Transform(func(s string) string { return "<" + s + ">" }),
		Fail: lipgloss.NewStyle().Transform(func(s string) string { return "!" + s + "!" }),
	}

	var pass, fail bytes.Buffer
	printCISummary(&pass, ciResult(1), 2, styles)
	printCISummary(&fail, ciResult(3), 2, styles)

	if !strings.Contains(pass.String(), "(<PASS>)") {
		t.Errorf("pass status should use the Pass style, got %q", pass.String())
	}
	if !strings.Contains(fail.String(), "(!FAIL!)") {
		t.Errorf("fail status should use the Fail style, got %q", fail.String())
	}
}

func TestCheckCIThresholds(t *testing.T) {
	if err := checkCIThresholds(ciResult(5), 0); err != nil {
		t.Errorf("no limit should pass, got %v", err)
	}
	if err := checkCIThresholds(ciResult(2), 2); err != nil {
		t.Errorf("count at limit should pass, got %v", err)
	}
	err := checkCIThresholds(ciResult(3), 2)
	if err == nil {
		t.Fatal("expected error above limit")
	}
	if !strings.Contains(err.Error(), "3 critical (T1) item(s) exceed maximum 2") {
		t.Errorf("unexpected error: %v", err)
	}
}

// ---------------------------------------------------------------------------
// explain tests
// ---------------------------------------------------------------------------

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		file string
		line int
		fn   string
	}{
		{"internal/app/calc.go:42", "internal/app/calc.go", 42, ""},
		{"calc.go", "calc.go", 0, ""},
		{"(*Engine).Run", "", 0, "(*Engine).Run"},
		{"Process", "", 0, "Process"},
		{"weird:name", "", 0, "weird:name"},
	}
	for _, tt := range tests {
		file, line, fn := parseLocation(tt.in)
		if file != tt.file || line != tt.line || fn != tt.fn {
			t.Errorf("parseLocation(%q) = (%q, %d, %q), want (%q, %d, %q)",
				tt.in, file, line, fn, tt.file, tt.line, tt.fn)
		}
	}
}

func TestMatchesLocation(t *testing.T) {
	loc := priority.Location{File: "internal/app/calc.go", Function: "(*Engine).Run", Line: 42}
	tests := []struct {
		name string
		file string
		line int
		fn   string
		want bool
	}{
		{"full path", "internal/app/calc.go", 0, "", true},
		{"base name", "calc.go", 0, "", true},
		{"path and line", "calc.go", 42, "", true},
		{"wrong line", "calc.go", 41, "", false},
		{"partial base name", "lc.go", 0, "", false},
		{"function", "", 0, "(*Engine).Run", true},
		{"method name", "", 0, "Run", true},
		{"other function", "", 0, "Stop", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesLocation(loc, tt.file, tt.line, tt.fn); got != tt.want {
				t.Errorf("matchesLocation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunExplain_Top(t *testing.T) {
	src := sampleSource(t)
	src.overrides = overrides{minScore: floatPtr(0), showT4: boolPtr(true)}

	var stdout bytes.Buffer
	if err := runExplain(explainParams{source: src, count: 2, stdout: &stdout}); err != nil {
		t.Fatalf("runExplain() returned error: %v", err)
	}
	output := stdout.String()
	if !strings.Contains(output, "#1  score") {
		t.Errorf("expected first item header, got:\n%s", output)
	}
	if strings.Contains(output, "#3  score") {
		t.Errorf("count 2 should stop after two items, got:\n%s", output)
	}
	if !strings.Contains(output, "final:") {
		t.Errorf("expected score breakdown, got:\n%s", output)
	}
}

func TestRunExplain_UnknownLocation(t *testing.T) {
	src := sampleSource(t)

	err := runExplain(explainParams{source: src, location: "nowhere.go:1", stdout: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "no debt item") {
		t.Errorf("expected no-match error, got %v", err)
	}
}

func TestDebtFilter(t *testing.T) {
	items := twoItems().Items

	tests := []struct {
		name     string
		kind     string
		category string
		want     []bool
	}{
		{"kind", "TestingGap", "", []bool{true, false}},
		{"kind is case insensitive", "errorswallowing", "", []bool{false, true}},
		{"category alias", "", "quality", []bool{false, true}},
		{"kind and category", "TestingGap", "testing", []bool{true, false}},
		{"disjoint", "TestingGap", "performance", []bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := debtFilter(tt.kind, tt.category)
			if err != nil {
				t.Fatalf("debtFilter() returned error: %v", err)
			}
			for i, it := range items {
				if got := match(it); got != tt.want[i] {
					t.Errorf("item %d (%s) match = %v, want %v", i, it.Kind(), got, tt.want[i])
				}
			}
		})
	}

	if match, err := debtFilter("", ""); err != nil || match != nil {
		t.Errorf("no flags should give no filter, got %v, %v", match != nil, err)
	}
}

func TestRunExplain_UnknownKind(t *testing.T) {
	for _, p := range []explainParams{{kind: "Nope"}, {category: "security"}} {
		p.stdout = &bytes.Buffer{}
		err := runExplain(p)
		if err == nil || !strings.Contains(err.Error(), "unknown debt") {
			t.Errorf("expected unknown kind/category error for %+v, got %v", p, err)
		}
	}
}

func TestRunExplain_KindFilter(t *testing.T) {
	src := sampleSource(t)
	src.overrides = overrides{minScore: floatPtr(0), showT4: boolPtr(true)}

	var stdout bytes.Buffer
	if err := runExplain(explainParams{source: src, kind: "DeadCode", count: 10, stdout: &stdout}); err != nil {
		t.Fatalf("runExplain() returned error: %v", err)
	}
	output := stdout.String()
	if !strings.Contains(output, "unusedHelper") {
		t.Errorf("expected the unused helper to be explained, got:\n%s", output)
	}
	if strings.Contains(output, "Testing Gap") {
		t.Errorf("kind filter let a testing gap through, got:\n%s", output)
	}
}

// ---------------------------------------------------------------------------
// schema command tests
// ---------------------------------------------------------------------------

func TestSchemaCmd_OutputsValidJSON(t *testing.T) {
	cmd := newSchemaCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("schema command failed: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Errorf("schema output is not valid JSON: %v", err)
	}
}

func TestSchemaCmd_ContainsSchemaFields(t *testing.T) {
	cmd := newSchemaCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	for _, field := range []string{
		`"$schema"`, `"title"`, `"Item"`, `"Score"`, `"Stats"`, `"Category"`,
	} {
		if !strings.Contains(output, field) {
			t.Errorf("schema output missing %s", field)
		}
	}
}

// ---------------------------------------------------------------------------
// init command tests
// ---------------------------------------------------------------------------

func TestInitCmd_WritesConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module test\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cmd := newInitCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--format", "toml"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	if !strings.Contains(buf.String(), "created: .debtmap.toml") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
	cfg, path, err := config.Resolve("", dir)
	if err != nil {
		t.Fatalf("resolving written config: %v", err)
	}
	if filepath.Base(path) != ".debtmap.toml" {
		t.Errorf("discovered %q, want .debtmap.toml", path)
	}
	if cfg.Tiers.Profile != "balanced" {
		t.Errorf("profile = %q, want balanced", cfg.Tiers.Profile)
	}
}

// sampleItems is shared with the interactive tests.
func sampleItems() priority.Result {
	gap := debt.TestingGap{Coverage: 0.2, Cyclomatic: 12, Cognitive: 15}
	fn := &priority.UnifiedDebtItem{
		Location:       priority.Location{File: "internal/app/calc.go", Function: "(*Engine).Run", Line: 42},
		Debt:           gap,
		Score:          score.UnifiedScore{CoverageFactor: 8, ComplexityFactor: 6, DependencyFactor: 2, RoleMultiplier: 1, BaseScore: 14, ExponentialFactor: 1.1, RiskBoost: 1.2, FinalScore: 30.2},
		Role:           role.PureLogic,
		Recommendation: priority.Recommend(gap, role.PureLogic),
		Cyclomatic:     12,
		Cognitive:      15,
		Tier:           tier.T2ComplexUntested,
	}
	items := []priority.Item{priority.FunctionItem(fn)}
	return priority.Result{
		Items:             items,
		TotalDebtScore:    30.2,
		FunctionsAnalyzed: 9,
		FilesAnalyzed:     2,
		HasCoverage:       true,
		TierCounts:        map[tier.Tier]int{tier.T2ComplexUntested: 1},
	}
}

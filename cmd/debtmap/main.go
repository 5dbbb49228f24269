package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/unbound-force/debtmap/internal/collect"
	"github.com/unbound-force/debtmap/internal/config"
	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/priority"
	"github.com/unbound-force/debtmap/internal/report"
	"github.com/unbound-force/debtmap/internal/scaffold"
	"github.com/unbound-force/debtmap/internal/tier"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// Set by build flags.
var version = "dev"

func main() {
	var verbose bool
	root := &cobra.Command{
		Use:   "debtmap",
		Short: "debtmap ranks technical debt in Go modules",
		Long: `debtmap measures the functions and files of a Go module, combines
complexity, test coverage, and call graph position into one score, and
reports the debt worth fixing first.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(charmlog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newExplainCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newInitCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// overrides holds flag values that replace config file settings. Nil
// pointers and empty strings leave the config untouched.
type overrides struct {
	top               *int
	minScore          *float64
	showT4            *bool
	tierProfile       string
	aggregationMethod string
	noAggregation     bool
}

func (o overrides) apply(cfg *config.Config) {
	if o.top != nil {
		cfg.Top = *o.top
	}
	if o.minScore != nil {
		cfg.Filter.MinScore = *o.minScore
	}
	if o.showT4 != nil {
		cfg.Filter.ShowT4 = *o.showT4
	}
	if o.tierProfile != "" {
		cfg.Tiers.Profile = o.tierProfile
	}
	if o.aggregationMethod != "" {
		cfg.Scoring.AggregationMethod = o.aggregationMethod
	}
	if o.noAggregation {
		cfg.Scoring.Aggregation = false
	}
}

// sourceParams describes what to measure and how to score it. It is
// shared by the analyze and explain commands.
type sourceParams struct {
	patterns     []string
	dir          string
	configPath   string
	coverProfile string
	lcov         string
	runTests     bool
	includeTests bool
	timeout      time.Duration
	overrides    overrides
}

// analyzeSource resolves the configuration, collects the module, and
// runs the engine.
func analyzeSource(p sourceParams) (priority.Result, error) {
	dir := p.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return priority.Result{}, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}

	cfg, path, err := config.Resolve(p.configPath, dir)
	if err != nil {
		return priority.Result{}, err
	}
	if path != "" {
		logger.Debug("loaded config", "path", path)
	}
	p.overrides.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return priority.Result{}, fmt.Errorf("invalid configuration: %w", err)
	}
	settings, err := cfg.Settings()
	if err != nil {
		return priority.Result{}, err
	}

	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	logger.Info("analyzing", "patterns", p.patterns)
	snap, err := collect.Collect(ctx, p.patterns, collect.Options{
		Dir:          dir,
		IncludeTests: p.includeTests,
		Ignore:       cfg.Ignore,
		CoverProfile: p.coverProfile,
		LCOV:         p.lcov,
		RunTests:     p.runTests,
		Logger:       logger,
	})
	if err != nil {
		return priority.Result{}, err
	}

	res := priority.Analyze(snap, settings)
	logger.Info("analysis complete",
		"functions", res.FunctionsAnalyzed, "items", len(res.Items))
	return res, nil
}

// sourceFlags binds the flags behind sourceParams.
type sourceFlags struct {
	configPath        string
	coverProfile      string
	lcov              string
	runTests          bool
	includeTests      bool
	timeout           time.Duration
	top               int
	minScore          float64
	showT4            bool
	tierProfile       string
	aggregationMethod string
	noAggregation     bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "",
		"config file (default: discover .debtmap.yaml or .debtmap.toml)")
	fs.StringVar(&f.coverProfile, "coverprofile", "",
		"path to a Go coverage profile")
	fs.StringVar(&f.lcov, "lcov", "",
		"path to an LCOV tracefile")
	fs.BoolVar(&f.runTests, "run-tests", false,
		"generate coverage with go test when no profile is given")
	fs.BoolVar(&f.includeTests, "include-tests", false,
		"also measure _test.go files")
	fs.DurationVar(&f.timeout, "timeout", 0,
		"abort collection after this long (0 = no limit)")
	fs.IntVar(&f.top, "top", 0,
		"report at most this many items (0 = all)")
	fs.Float64Var(&f.minScore, "min-score", priority.DefaultMinScore,
		"hide items scoring below this")
	fs.BoolVar(&f.showT4, "show-t4", false,
		"include T4 maintenance items")
	fs.StringVar(&f.tierProfile, "tier-profile", "",
		"tier thresholds: strict, balanced, or lenient")
	fs.StringVar(&f.aggregationMethod, "aggregation-method", "",
		"file aggregation: sum, weighted_sum, logarithmic_sum, or max_plus_average")
	fs.BoolVar(&f.noAggregation, "no-aggregation", false,
		"disable aggregated file items")
}

// params converts the bound flags. Only flags set on the command line
// override the config file.
func (f *sourceFlags) params(cmd *cobra.Command, args []string) (sourceParams, error) {
	o := overrides{
		tierProfile:       f.tierProfile,
		aggregationMethod: f.aggregationMethod,
		noAggregation:     f.noAggregation,
	}
	changed := cmd.Flags().Changed
	if changed("top") {
		o.top = &f.top
	}
	if changed("min-score") {
		o.minScore = &f.minScore
	}
	if changed("show-t4") {
		o.showT4 = &f.showT4
	}
	dir, err := os.Getwd()
	if err != nil {
		return sourceParams{}, fmt.Errorf("getting working directory: %w", err)
	}
	return sourceParams{
		patterns:     args,
		dir:          dir,
		configPath:   f.configPath,
		coverProfile: f.coverProfile,
		lcov:         f.lcov,
		runTests:     f.runTests,
		includeTests: f.includeTests,
		timeout:      f.timeout,
		overrides:    o,
	}, nil
}

// analyzeParams holds the parsed flags for the analyze command.
type analyzeParams struct {
	source      sourceParams
	format      string
	explain     bool
	validate    bool
	interactive bool
	maxCritical int
	stdout      io.Writer
	stderr      io.Writer
}

// runAnalyze is the extracted, testable body of the analyze command.
func runAnalyze(p analyzeParams) error {
	if p.format != "text" && p.format != "json" && p.format != "markdown" {
		return fmt.Errorf("invalid format %q: must be 'text', 'json', or 'markdown'", p.format)
	}
	if p.validate && p.format != "json" {
		return fmt.Errorf("--validate requires --format=json")
	}

	res, err := analyzeSource(p.source)
	if err != nil {
		return err
	}

	if p.interactive {
		if err := runInteractiveAnalyze(res); err != nil {
			return err
		}
	} else if err := writeReport(p, res); err != nil {
		return err
	}

	printCISummary(p.stderr, res, p.maxCritical, report.DefaultStyles())

	return checkCIThresholds(res, p.maxCritical)
}

// writeReport outputs the result in the requested format.
func writeReport(p analyzeParams, res priority.Result) error {
	switch p.format {
	case "json":
		if !p.validate {
			return report.WriteJSON(p.stdout, res, version)
		}
		var buf bytes.Buffer
		if err := report.WriteJSON(&buf, res, version); err != nil {
			return err
		}
		if err := report.ValidateJSON(buf.Bytes()); err != nil {
			return err
		}
		_, err := p.stdout.Write(buf.Bytes())
		return err
	case "markdown":
		return report.WriteMarkdown(p.stdout, res)
	default:
		return report.WriteTextOptions(p.stdout, res, report.TextOptions{Verbose: p.explain})
	}
}

// printCISummary prints a one-line CI summary to stderr when the
// threshold flag is set.
func printCISummary(w io.Writer, res priority.Result, maxCritical int, styles report.Styles) {
	if maxCritical <= 0 {
		return
	}
	critical := res.TierCounts[tier.T1CriticalArchitecture]
	status := styles.Pass.Render("PASS")
	if critical > maxCritical {
		status = styles.Fail.Render("FAIL")
	}
	fmt.Fprintf(w, "Critical (T1): %d/%d (%s) | Total debt score: %.1f\n",
		critical, maxCritical, status, res.TotalDebtScore)
}

// checkCIThresholds returns an error if the T1 count exceeds the
// threshold.
func checkCIThresholds(res priority.Result, maxCritical int) error {
	if critical := res.TierCounts[tier.T1CriticalArchitecture]; maxCritical > 0 && critical > maxCritical {
		return fmt.Errorf("%d critical (T1) item(s) exceed maximum %d", critical, maxCritical)
	}
	return nil
}

func newAnalyzeCmd() *cobra.Command {
	var (
		src         sourceFlags
		format      string
		explain     bool
		validate    bool
		interactive bool
		maxCritical int
	)

	cmd := &cobra.Command{
		Use:   "analyze [packages...]",
		Short: "Rank technical debt in Go packages",
		Long: `Measure the given packages (default ./...) and report debt items
ranked by unified score. Scores combine complexity, coverage gaps, and
call graph position, then scale up for god objects, hotspots, and
untested code.

Coverage is read from --coverprofile or --lcov, or generated with
--run-tests. Without coverage data no testing gaps are reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := src.params(cmd, args)
			if err != nil {
				return err
			}
			return runAnalyze(analyzeParams{
				source:      source,
				format:      format,
				explain:     explain,
				validate:    validate,
				interactive: interactive,
				maxCritical: maxCritical,
				stdout:      os.Stdout,
				stderr:      os.Stderr,
			})
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text",
		"output format: text, json, or markdown")
	cmd.Flags().BoolVar(&explain, "explain", false,
		"print a score breakdown for every item (text format)")
	cmd.Flags().BoolVar(&validate, "validate", false,
		"check JSON output against the report schema before writing it")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"launch interactive TUI for browsing results")
	cmd.Flags().IntVar(&maxCritical, "max-critical", 0,
		"fail if more T1 items than this are found (0 = no limit)")

	return cmd
}

// explainParams holds the parsed flags for the explain command.
type explainParams struct {
	source   sourceParams
	location string
	kind     string
	category string
	count    int
	stdout   io.Writer
}

// runExplain prints the score breakdown of the items at location, or
// of the top count items when no location is given. kind and category
// narrow either selection.
func runExplain(p explainParams) error {
	match, err := debtFilter(p.kind, p.category)
	if err != nil {
		return err
	}
	if p.location != "" || match != nil {
		// Every item is a candidate, not only the reported ones.
		zero := 0
		p.source.overrides.top = &zero
	}
	res, err := analyzeSource(p.source)
	if err != nil {
		return err
	}

	file, line, fn := parseLocation(p.location)
	var items []priority.Item
	for _, it := range res.Items {
		if p.location != "" && !matchesLocation(it.Location(), file, line, fn) {
			continue
		}
		if match != nil && !match(it) {
			continue
		}
		items = append(items, it)
	}
	if p.location == "" {
		items = priority.Limit(items, p.count)
	} else if len(items) == 0 {
		return fmt.Errorf("no debt item at %q above the reporting threshold", p.location)
	}

	if len(items) == 0 {
		fmt.Fprintln(p.stdout, "No debt items above the reporting threshold.")
		return nil
	}
	for i, it := range items {
		if i > 0 {
			fmt.Fprintln(p.stdout)
		}
		fmt.Fprintf(p.stdout, "#%d  score %.1f\n", i+1, it.Score())
		fmt.Fprint(p.stdout, priority.Explain(it))
	}
	return nil
}

// debtFilter builds the --kind and --category predicate. It returns
// nil when neither is set.
func debtFilter(kind, category string) (func(priority.Item) bool, error) {
	var preds []func(priority.Item) bool
	if kind != "" {
		k, err := debt.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		preds = append(preds, func(it priority.Item) bool { return it.Kind() == k })
	}
	if category != "" {
		c, err := debt.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		preds = append(preds, func(it priority.Item) bool {
			d := it.Debt()
			return d != nil && debt.CategoryOf(d) == c
		})
	}
	if len(preds) == 0 {
		return nil, nil
	}
	return func(it priority.Item) bool {
		for _, pred := range preds {
			if !pred(it) {
				return false
			}
		}
		return true
	}, nil
}

// parseLocation splits "file.go:42" or "file.go" into its parts. Any
// other text is taken as a function name.
func parseLocation(s string) (file string, line int, fn string) {
	if before, after, found := strings.Cut(s, ":"); found {
		if n, err := strconv.Atoi(after); err == nil {
			return before, n, ""
		}
	}
	if strings.HasSuffix(s, ".go") {
		return s, 0, ""
	}
	return "", 0, s
}

func matchesLocation(loc priority.Location, file string, line int, fn string) bool {
	if fn != "" {
		return loc.Function == fn || strings.HasSuffix(loc.Function, "."+fn)
	}
	if loc.File != file && !strings.HasSuffix(loc.File, "/"+file) {
		return false
	}
	return line == 0 || loc.Line == line
}

func newExplainCmd() *cobra.Command {
	var (
		src      sourceFlags
		location string
		kind     string
		category string
		count    int
	)

	cmd := &cobra.Command{
		Use:   "explain [packages...]",
		Short: "Show how debt scores were computed",
		Long: `Print the factor breakdown behind each debt score: complexity,
coverage, and dependency factors, the role multiplier, exponential
scaling, and risk boosts.

--at selects items by file (internal/app/calc.go), file and line
(calc.go:42), or function name ((*Engine).Run). Without --at the
top --count items are explained. --kind (TestingGap, GodObject, ...)
and --category (architecture, testing, performance, code-quality)
narrow the selection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := src.params(cmd, args)
			if err != nil {
				return err
			}
			return runExplain(explainParams{
				source:   source,
				location: location,
				kind:     kind,
				category: category,
				count:    count,
				stdout:   os.Stdout,
			})
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&location, "at", "",
		"explain the items at this file, file:line, or function")
	cmd.Flags().StringVar(&kind, "kind", "",
		"only explain items of this debt kind")
	cmd.Flags().StringVar(&category, "category", "",
		"only explain items in this debt category")
	cmd.Flags().IntVar(&count, "count", 5,
		"number of top items to explain when --at is not given")

	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for debtmap report output",
		Long: `Print the JSON Schema (Draft 2020-12) that documents the
structure of debtmap analyze --format=json output. Useful for
validating output or generating client types.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Schema)
			return err
		},
	}
}

func newInitCmd() *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default debtmap config file",
		Long: `Write .debtmap.yaml (or .debtmap.toml with --format toml) holding
every setting at its default value. An existing file is left alone
unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := scaffold.Run(scaffold.Options{
				Format:  format,
				Force:   force,
				Version: version,
				Stdout:  cmd.OutOrStdout(),
			})
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml",
		"config format: yaml or toml")
	cmd.Flags().BoolVar(&force, "force", false,
		"overwrite an existing config file")

	return cmd
}

// Package config loads debtmap configuration from .debtmap.yaml or
// .debtmap.toml files and turns it into engine settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/unbound-force/debtmap/internal/coverage"
	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/priority"
	"github.com/unbound-force/debtmap/internal/role"
	"github.com/unbound-force/debtmap/internal/scaling"
	"github.com/unbound-force/debtmap/internal/score"
	"github.com/unbound-force/debtmap/internal/tier"
)

// ErrUnknownProfile is returned for an unrecognised tier profile.
var ErrUnknownProfile = tier.ErrUnknownProfile

// ErrUnknownFormat is returned for a config file that is neither YAML
// nor TOML.
var ErrUnknownFormat = errors.New("unknown config format")

// FileNames are the config file names Discover looks for, in order.
var FileNames = []string{".debtmap.yaml", ".debtmap.yml", ".debtmap.toml"}

// Config is the on-disk configuration.
type Config struct {
	Tiers      Tiers                 `yaml:"tiers" toml:"tiers"`
	Filter     priority.FilterConfig `yaml:"filter" toml:"filter"`
	Scaling    scaling.Config        `yaml:"scaling" toml:"scaling"`
	Roles      role.Multipliers      `yaml:"roles" toml:"roles"`
	Scoring    Scoring               `yaml:"scoring" toml:"scoring"`
	Thresholds debt.Thresholds       `yaml:"thresholds" toml:"thresholds"`
	Coverage   Coverage              `yaml:"coverage" toml:"coverage"`

	// Ignore lists path globs excluded from analysis.
	Ignore []string `yaml:"ignore" toml:"ignore"`

	// Top limits the number of reported items; 0 means no limit.
	Top int `yaml:"top" toml:"top"`
}

// Tiers selects a tier profile and optionally overrides its values.
type Tiers struct {
	Profile      string `yaml:"profile" toml:"profile"`
	T2Complexity *int   `yaml:"t2_complexity,omitempty" toml:"t2_complexity,omitempty"`
	T2Dependency *int   `yaml:"t2_dependency,omitempty" toml:"t2_dependency,omitempty"`
	T3Complexity *int   `yaml:"t3_complexity,omitempty" toml:"t3_complexity,omitempty"`
}

// Coverage configures how coverage records are matched to functions.
type Coverage struct {
	// LineTolerance is how many lines a record's start line may be off
	// by and still match a function; 0 disables the fuzzy match.
	LineTolerance int `yaml:"line_tolerance" toml:"line_tolerance"`
}

// Scoring configures factor weights and file aggregation.
type Scoring struct {
	Weights           score.Weights `yaml:"weights" toml:"weights"`
	Aggregation       bool          `yaml:"aggregation" toml:"aggregation"`
	AggregationMethod string        `yaml:"aggregation_method" toml:"aggregation_method"`
	MinFunctions      int           `yaml:"min_functions" toml:"min_functions"`
}

// Default returns the built-in configuration.
func Default() *Config {
	agg := score.DefaultAggregation()
	return &Config{
		Tiers:      Tiers{Profile: "balanced"},
		Filter:     priority.DefaultFilterConfig(),
		Scaling:    scaling.DefaultConfig(),
		Roles:      role.DefaultMultipliers(),
		Thresholds: debt.DefaultThresholds(),
		Coverage:   Coverage{LineTolerance: coverage.DefaultLineTolerance},
		Scoring: Scoring{
			Weights:           score.DefaultWeights(),
			Aggregation:       agg.Enabled,
			AggregationMethod: string(agg.Method),
			MinFunctions:      agg.MinFunctions,
		},
	}
}

// Load reads the config file at path on top of the defaults. Keys that
// the file leaves out keep their default values; unknown keys are an
// error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF and keeps the defaults.
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("parsing %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Discover walks from dir up to the filesystem root and returns the
// first config file found, or "" when there is none.
func Discover(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	for {
		for _, name := range FileNames {
			p := filepath.Join(abs, name)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, nil
			}
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", nil
		}
		abs = parent
	}
}

// Resolve loads explicit when it is set, otherwise the file discovered
// from dir, otherwise the defaults. It returns the path that was
// loaded, or "" for the defaults.
func Resolve(explicit, dir string) (*Config, string, error) {
	path := explicit
	if path == "" {
		found, err := Discover(dir)
		if err != nil {
			return nil, "", err
		}
		path = found
	}
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// TierConfig resolves the profile and applies the overrides.
func (c *Config) TierConfig() (tier.Config, error) {
	tc, err := tier.ProfileByName(c.Tiers.Profile)
	if err != nil {
		return tier.Config{}, err
	}
	if c.Tiers.T2Complexity != nil {
		tc.T2Complexity = *c.Tiers.T2Complexity
	}
	if c.Tiers.T2Dependency != nil {
		tc.T2Dependency = *c.Tiers.T2Dependency
	}
	if c.Tiers.T3Complexity != nil {
		tc.T3Complexity = *c.Tiers.T3Complexity
	}
	return tc, nil
}

// Validate reports every out-of-range value at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	if _, err := c.TierConfig(); err != nil {
		errs = append(errs, err)
	}
	if _, err := score.ParseAggregation(c.Scoring.AggregationMethod); err != nil {
		errs = append(errs, err)
	}

	w := c.Scoring.Weights
	check(w.Coverage >= 0 && w.Complexity >= 0 && w.Dependency >= 0, "scoring.weights must be non-negative")
	check(math.Abs(w.Sum()-1) < 1e-6, "scoring.weights must sum to 1, got %.3f", w.Sum())
	check(c.Scoring.MinFunctions >= 1, "scoring.min_functions must be at least 1, got %d", c.Scoring.MinFunctions)

	check(c.Filter.MinScore >= 0 && c.Filter.MinScore <= score.DefaultCeiling,
		"filter.min_score must be within [0, %.0f], got %v", score.DefaultCeiling, c.Filter.MinScore)
	check(c.Filter.MinCyclomatic >= 0, "filter.min_cyclomatic must be non-negative")

	s := c.Scaling
	for _, e := range []struct {
		name string
		v    float64
	}{
		{"god_object_exponent", s.GodObjectExponent},
		{"god_module_exponent", s.GodModuleExponent},
		{"hotspot_severe_exponent", s.HotspotSevereExponent},
		{"hotspot_high_exponent", s.HotspotHighExponent},
		{"testing_gap_exponent", s.TestingGapExponent},
		{"high_dependency_boost", s.HighDependencyBoost},
		{"entry_point_boost", s.EntryPointBoost},
		{"complex_untested_boost", s.ComplexUntestedBoost},
	} {
		check(e.v >= 1, "scaling.%s must be at least 1, got %v", e.name, e.v)
	}
	check(s.Ceiling > 0, "scaling.ceiling must be positive")

	for _, r := range role.AllRoles {
		check(c.Roles.For(r) >= 0, "roles multiplier for %s must be non-negative", r)
	}
	check(c.Thresholds.TestingGapCoverage >= 0 && c.Thresholds.TestingGapCoverage <= 1,
		"thresholds.testing_gap_coverage must be within [0, 1]")
	check(c.Coverage.LineTolerance >= 0,
		"coverage.line_tolerance must be non-negative, got %d", c.Coverage.LineTolerance)

	for _, g := range c.Ignore {
		if _, err := filepath.Match(g, ""); err != nil {
			errs = append(errs, fmt.Errorf("ignore pattern %q: %w", g, err))
		}
	}
	return errors.Join(errs...)
}

// Settings converts the configuration into engine settings.
func (c *Config) Settings() (priority.Settings, error) {
	tc, err := c.TierConfig()
	if err != nil {
		return priority.Settings{}, err
	}
	method, err := score.ParseAggregation(c.Scoring.AggregationMethod)
	if err != nil {
		return priority.Settings{}, err
	}
	return priority.Settings{
		Score: score.Config{
			Weights:     c.Scoring.Weights,
			Multipliers: c.Roles,
			Scaling:     c.Scaling,
		},
		Aggregation: score.Aggregation{
			Enabled:      c.Scoring.Aggregation,
			Method:       method,
			MinFunctions: c.Scoring.MinFunctions,
		},
		Tiers:         tc,
		Filter:        c.Filter,
		Thresholds:    c.Thresholds,
		LineTolerance: c.Coverage.LineTolerance,
		Limit:         c.Top,
	}, nil
}

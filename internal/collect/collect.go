// Package collect loads Go packages and measures them into a
// snapshot.Snapshot: per-function metrics and code signals, per-file
// and per-type aggregates, a call graph, and optional test coverage.
package collect

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/unbound-force/debtmap/internal/callgraph"
	"github.com/unbound-force/debtmap/internal/coverage"
	"github.com/unbound-force/debtmap/internal/snapshot"
)

// ErrNoPackages is returned when the patterns match no analyzable
// source.
var ErrNoPackages = errors.New("no packages matched")

// Options configures a collection run.
type Options struct {
	// Dir is the directory patterns are resolved from. Empty means the
	// working directory. Paths in the snapshot are relative to the
	// enclosing module root.
	Dir string

	// IncludeTests also measures _test.go files.
	IncludeTests bool

	// IncludeGenerated keeps files with a "Code generated ... DO NOT
	// EDIT." header.
	IncludeGenerated bool

	// Ignore lists path globs, relative to the module root, to skip. A
	// trailing "/**" matches a whole directory.
	Ignore []string

	// CoverProfile is a Go coverage profile to load.
	CoverProfile string

	// LCOV is an LCOV tracefile to load.
	LCOV string

	// RunTests generates a coverage profile with go test when no
	// CoverProfile is given.
	RunTests bool

	// Workers bounds concurrent file analysis. Zero means GOMAXPROCS.
	Workers int

	// Logger receives progress messages. Nil discards them.
	Logger *log.Logger
}

// Collect loads the packages matching patterns and measures them.
func Collect(ctx context.Context, patterns []string, opts Options) (*snapshot.Snapshot, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", opts.Dir, err)
	}
	root := moduleRoot(dir)

	logger.Debug("loading packages", "dir", dir, "patterns", patterns, "tests", opts.IncludeTests)
	pkgs, err := loadPackages(ctx, dir, patterns, opts.IncludeTests)
	if err != nil {
		return nil, err
	}

	files, variants := selectFiles(pkgs, root, opts, logger)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: every file in %q was skipped", ErrNoPackages, patterns)
	}
	logger.Debug("analyzing files", "packages", len(pkgs), "files", len(files))

	results := make([]fileResult, len(files))
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = analyzeFile(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing files: %w", err)
	}

	funcs, fileMetrics, in := merge(files, results)
	analyzed := make(map[string]bool, len(files))
	for _, f := range files {
		analyzed[f.rel] = true
	}
	for _, v := range variants {
		if !analyzed[v.rel] {
			continue
		}
		eachFunc(v.file, func(n fnNode) {
			line := v.pkg.Fset.Position(n.node().Pos()).Line
			in.decls[n.ssaPos()] = callgraph.FunctionID{File: v.rel, Name: n.name, Line: line}
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("building call graph", "functions", len(funcs))
	graph := buildGraph(pkgs, in)

	idx, err := loadCoverage(ctx, root, patterns, opts, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("collected", "functions", len(funcs), "files", len(fileMetrics), "coverage", idx != nil)
	return snapshot.New(graph, funcs, fileMetrics, idx), nil
}

// selectFiles picks each source file once. A file that also appears
// in a test variant of its package is returned in variants so that its
// SSA functions can still be mapped.
func selectFiles(pkgs []*packages.Package, root string, opts Options, logger *log.Logger) (files, variants []sourceFile) {
	seen := make(map[string]bool)
	for _, pkg := range pkgs {
		for _, f := range pkg.Syntax {
			tf := pkg.Fset.File(f.Pos())
			if tf == nil || !strings.HasSuffix(tf.Name(), ".go") {
				continue
			}
			rel := relPath(root, tf.Name())
			src := sourceFile{
				pkg:  pkg,
				file: f,
				rel:  rel,
				test: strings.HasSuffix(rel, "_test.go"),
			}
			if seen[rel] {
				variants = append(variants, src)
				continue
			}
			seen[rel] = true

			switch {
			case src.test && !opts.IncludeTests:
				continue
			case !opts.IncludeGenerated && ast.IsGenerated(f):
				logger.Debug("skipping generated file", "file", rel)
				continue
			case ignored(rel, opts.Ignore):
				logger.Debug("skipping ignored file", "file", rel)
				continue
			}
			files = append(files, src)
		}
	}
	return files, variants
}

// merge combines per-file results, counts methods per type across the
// files of a package, and marks duplicated function bodies.
func merge(files []sourceFile, results []fileResult) ([]snapshot.FunctionMetrics, []snapshot.FileMetrics, graphInput) {
	in := graphInput{
		decls:    make(map[token.Pos]callgraph.FunctionID),
		forwards: make(map[callgraph.FunctionID]callgraph.CallKind),
	}
	methods := make(map[string]map[string][]string)
	shapes := make(map[uint64][]callgraph.FunctionID)

	for i, r := range results {
		in.funcs = append(in.funcs, r.funcs...)
		for pos, id := range r.decls {
			in.decls[pos] = id
		}
		for id, k := range r.forwards {
			in.forwards[id] = k
		}
		pkgPath := files[i].pkg.PkgPath
		if methods[pkgPath] == nil {
			methods[pkgPath] = make(map[string][]string)
		}
		for typ, names := range r.methods {
			methods[pkgPath][typ] = append(methods[pkgPath][typ], names...)
		}
		for id, h := range r.shapes {
			shapes[h] = append(shapes[h], id)
		}
	}

	fileMetrics := make([]snapshot.FileMetrics, len(results))
	for i, r := range results {
		fm := r.metrics
		pkgMethods := methods[files[i].pkg.PkgPath]
		for j := range fm.Types {
			names := pkgMethods[fm.Types[j].Name]
			fm.Types[j].Methods = len(names)
			fm.Types[j].Responsibilities = responsibilities(names)
		}
		fileMetrics[i] = fm
	}

	byID := make(map[callgraph.FunctionID]int, len(in.funcs))
	for i, m := range in.funcs {
		byID[m.ID] = i
	}
	for _, ids := range shapes {
		if len(ids) < 2 {
			continue
		}
		total := 0
		for _, id := range ids {
			total += in.funcs[byID[id]].Length
		}
		for _, id := range ids {
			in.funcs[byID[id]].Signals.Duplicate = &snapshot.DuplicateSignal{Instances: len(ids), TotalLines: total}
		}
	}
	return in.funcs, fileMetrics, in
}

func loadCoverage(ctx context.Context, root string, patterns []string, opts Options, logger *log.Logger) (*coverage.Index, error) {
	profile := opts.CoverProfile
	if profile == "" && opts.RunTests {
		logger.Info("running tests for coverage", "patterns", patterns)
		generated, err := GenerateCoverProfile(ctx, root, patterns)
		if err != nil {
			return nil, fmt.Errorf("generating coverage: %w", err)
		}
		defer os.Remove(generated)
		profile = generated
	}
	if profile == "" && opts.LCOV == "" {
		return nil, nil
	}

	var records []coverage.FuncCoverage
	if profile != "" {
		profile = filepath.Clean(profile)
		info, err := os.Stat(profile)
		if err != nil {
			return nil, fmt.Errorf("cover profile %q: %w", profile, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("cover profile %q is a directory, not a file", profile)
		}
		recs, err := ParseCoverProfile(profile, root)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	if opts.LCOV != "" {
		recs, err := ParseLCOVFile(opts.LCOV, root)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	logger.Debug("coverage loaded", "functions", len(records))
	return coverage.NewIndex(records), nil
}

// moduleRoot returns the nearest directory at or above dir holding a
// go.mod, or dir itself.
func moduleRoot(dir string) string {
	for d := dir; ; {
		if _, err := os.Stat(filepath.Join(d, "go.mod")); err == nil {
			return d
		}
		parent := filepath.Dir(d)
		if parent == d {
			return dir
		}
		d = parent
	}
}

// ignored reports whether rel matches one of globs, either as a whole
// path, by base name, or as a directory prefix ending in "/**".
func ignored(rel string, globs []string) bool {
	for _, g := range globs {
		g = filepath.ToSlash(g)
		if ok, _ := path.Match(g, rel); ok {
			return true
		}
		if ok, _ := path.Match(g, path.Base(rel)); ok {
			return true
		}
		if prefix, found := strings.CutSuffix(g, "/**"); found && (rel == prefix || strings.HasPrefix(rel, prefix+"/")) {
			return true
		}
	}
	return false
}

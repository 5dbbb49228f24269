package collect

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadMode is the minimum set of flags needed for SSA-ready analysis.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedTypesSizes

// loadPackages loads the packages matching patterns from dir. It fails
// when nothing matches or when any package has errors, since metrics
// from a package that does not type-check are unreliable.
func loadPackages(ctx context.Context, dir string, patterns []string, tests bool) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    LoadMode,
		Tests:   tests,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages %q: %w", patterns, err)
	}

	var kept []*packages.Package
	var errs []string
	for _, pkg := range pkgs {
		// The generated test main has no source of its own.
		if strings.HasSuffix(pkg.ID, ".test") {
			continue
		}
		for _, e := range pkg.Errors {
			errs = append(errs, e.Error())
		}
		kept = append(kept, pkg)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("packages %q have errors:\n  %s",
			patterns, strings.Join(errs, "\n  "))
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoPackages, patterns)
	}
	return kept, nil
}

package collect

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/cover"

	"github.com/unbound-force/debtmap/internal/coverage"
)

// ParseCoverProfile reads a Go coverage profile and computes
// per-function coverage. File names in the profile are import-path
// relative; they are resolved through the module path declared in
// moduleDir/go.mod and reported relative to moduleDir.
func ParseCoverProfile(profilePath, moduleDir string) ([]coverage.FuncCoverage, error) {
	profiles, err := cover.ParseProfiles(profilePath)
	if err != nil {
		return nil, fmt.Errorf("parsing cover profile %s: %w", profilePath, err)
	}
	modulePath, err := readModulePath(moduleDir)
	if err != nil {
		return nil, err
	}

	var results []coverage.FuncCoverage
	for _, profile := range profiles {
		abs := resolveFilePath(profile.FileName, modulePath, moduleDir)
		if abs == "" {
			continue
		}
		funcs, err := findFunctions(abs)
		if err != nil {
			continue
		}
		rel := relPath(moduleDir, abs)

		for _, fn := range funcs {
			covered, total := funcCoverage(fn, profile)
			pct := 0.0
			if total > 0 {
				pct = 100.0 * float64(covered) / float64(total)
			}
			results = append(results, coverage.FuncCoverage{
				File:         rel,
				FuncName:     fn.name,
				StartLine:    fn.start.line,
				EndLine:      fn.end.line,
				CoveredStmts: covered,
				TotalStmts:   total,
				Percentage:   pct,
			})
		}
	}
	return results, nil
}

// srcPos is a line and column in a source file.
type srcPos struct {
	line, col int
}

func (p srcPos) before(q srcPos) bool {
	return p.line < q.line || (p.line == q.line && p.col < q.col)
}

// funcExtent is the source span of one function.
type funcExtent struct {
	name       string
	start, end srcPos
}

// findFunctions parses a Go source file and returns the extent of
// each function, literals included, named the way the collector names
// them.
func findFunctions(path string) ([]funcExtent, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, err
	}

	var funcs []funcExtent
	eachFunc(f, func(n fnNode) {
		start := fset.Position(n.node().Pos())
		end := fset.Position(n.node().End())
		funcs = append(funcs, funcExtent{
			name:  n.name,
			start: srcPos{start.Line, start.Column},
			end:   srcPos{end.Line, end.Column},
		})
	})
	return funcs, nil
}

// funcCoverage sums the statements of the profile blocks that overlap
// fn. Blocks are in source order, so the scan ends at the first block
// that starts at or after the end of fn.
func funcCoverage(fn funcExtent, profile *cover.Profile) (covered, total int64) {
	for _, b := range profile.Blocks {
		if !(srcPos{b.StartLine, b.StartCol}).before(fn.end) {
			break
		}
		if !fn.start.before(srcPos{b.EndLine, b.EndCol}) {
			continue
		}
		total += int64(b.NumStmt)
		if b.Count > 0 {
			covered += int64(b.NumStmt)
		}
	}
	return covered, total
}

// resolveFilePath maps a profile file name such as
// "example.com/app/internal/x/file.go" to a file on disk.
func resolveFilePath(profileName, modulePath, moduleDir string) string {
	if filepath.IsAbs(profileName) {
		if _, err := os.Stat(profileName); err == nil {
			return profileName
		}
	}
	if modulePath == "" || !strings.HasPrefix(profileName, modulePath+"/") {
		return ""
	}
	rel := strings.TrimPrefix(profileName, modulePath+"/")
	abs := filepath.Join(moduleDir, filepath.FromSlash(rel))
	if _, err := os.Stat(abs); err != nil {
		return ""
	}
	return abs
}

// readModulePath returns the module path declared in dir/go.mod.
func readModulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("reading go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("no module directive in %s", filepath.Join(dir, "go.mod"))
	}
	return path, nil
}

// relPath returns target relative to base with forward slashes, or
// target itself when it lies outside base.
func relPath(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

package collect

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/unbound-force/debtmap/internal/coverage"
)

// ParseLCOVFile reads an LCOV tracefile from path.
func ParseLCOVFile(path, moduleDir string) ([]coverage.FuncCoverage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening lcov file: %w", err)
	}
	defer f.Close()
	return ParseLCOV(f, moduleDir)
}

// lcovFunc is one FN record with its hit count and line data.
type lcovFunc struct {
	name  string
	line  int
	hits  int64
	lines map[int]int64
}

// ParseLCOV reads SF, FN, FNDA, DA and end_of_record lines. Each
// function's coverage is the share of DA lines hit between its FN line
// and the next function. Functions without DA lines are fully covered
// when FNDA reports a hit and uncovered otherwise. Source paths under
// moduleDir are reported relative to it.
func ParseLCOV(r io.Reader, moduleDir string) ([]coverage.FuncCoverage, error) {
	var (
		results []coverage.FuncCoverage
		file    string
		funcs   map[string]*lcovFunc
		lines   map[int]int64
	)
	reset := func() {
		file = ""
		funcs = make(map[string]*lcovFunc)
		lines = make(map[int]int64)
	}
	flush := func() {
		if file != "" {
			results = append(results, lcovRecords(file, funcs, lines)...)
		}
		reset()
	}
	reset()

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := strings.TrimSpace(sc.Text())
		tag, val, _ := strings.Cut(text, ":")

		switch tag {
		case "SF":
			flush()
			file = val
			if filepath.IsAbs(file) && moduleDir != "" {
				file = relPath(moduleDir, file)
			}
			file = filepath.ToSlash(file)
		case "FN":
			ln, name, err := lcovPair(val)
			if err != nil {
				return nil, fmt.Errorf("lcov line %d: %w", lineNo, err)
			}
			funcs[name] = &lcovFunc{name: name, line: int(ln)}
		case "FNDA":
			hits, name, err := lcovPair(val)
			if err != nil {
				return nil, fmt.Errorf("lcov line %d: %w", lineNo, err)
			}
			if fn, ok := funcs[name]; ok {
				fn.hits = hits
			}
		case "DA":
			parts := strings.Split(val, ",")
			if len(parts) < 2 {
				return nil, fmt.Errorf("lcov line %d: malformed DA record %q", lineNo, val)
			}
			ln, err1 := strconv.Atoi(parts[0])
			hits, err2 := strconv.ParseInt(parts[1], 10, 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("lcov line %d: malformed DA record %q", lineNo, val)
			}
			lines[ln] = hits
		case "end_of_record":
			flush()
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading lcov: %w", err)
	}
	flush()
	return results, nil
}

// lcovPair parses "<number>,<name>".
func lcovPair(val string) (int64, string, error) {
	num, name, ok := strings.Cut(val, ",")
	if !ok {
		return 0, "", fmt.Errorf("malformed record %q", val)
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed record %q: %w", val, err)
	}
	return n, name, nil
}

func lcovRecords(file string, funcs map[string]*lcovFunc, lines map[int]int64) []coverage.FuncCoverage {
	ordered := make([]*lcovFunc, 0, len(funcs))
	for _, fn := range funcs {
		ordered = append(ordered, fn)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].line < ordered[j].line })

	out := make([]coverage.FuncCoverage, 0, len(ordered))
	for i, fn := range ordered {
		end := int(^uint(0) >> 1)
		if i+1 < len(ordered) {
			end = ordered[i+1].line - 1
		}
		var covered, total int64
		lastLine := fn.line
		for ln, hits := range lines {
			if ln < fn.line || ln > end {
				continue
			}
			total++
			if hits > 0 {
				covered++
			}
			lastLine = max(lastLine, ln)
		}

		pct := 0.0
		switch {
		case total > 0:
			pct = 100 * float64(covered) / float64(total)
		case fn.hits > 0:
			pct = 100
		}
		out = append(out, coverage.FuncCoverage{
			File:         file,
			FuncName:     fn.name,
			StartLine:    fn.line,
			EndLine:      lastLine,
			CoveredStmts: covered,
			TotalStmts:   total,
			Percentage:   pct,
		})
	}
	return out
}

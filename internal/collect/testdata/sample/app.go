package sample

import (
	"os"
	"strings"
	"time"
)

// Process totals values, routing each through classify.
func Process(values []int) int {
	total := 0
	for _, v := range values {
		total += classify(v)
	}
	return total
}

func classify(v int) int {
	if v < 0 && v > -10 {
		return -1
	} else if v == 0 {
		return 0
	}
	switch {
	case v > 100:
		return 3
	case v > 10:
		return 2
	}
	return 1
}

// Forward hands its input to Process.
func Forward(values []int) int {
	return Process(values)
}

func unusedHelper() string {
	return "legacy"
}

// Join concatenates parts.
func Join(parts []string) string {
	out := ""
	for _, p := range parts {
		out += p
	}
	return out
}

// Poll waits n milliseconds, one at a time.
func Poll(n int) {
	for i := 0; i < n; i++ {
		time.Sleep(time.Millisecond)
	}
}

// Leak opens path and never closes it.
func Leak(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	_ = f.Name()
	return nil
}

// Swallow removes path and ignores the outcome.
func Swallow(path string) {
	_ = os.Remove(path) // TODO: report removal failures
}

// Spawn upper-cases items in the background.
func Spawn(items []string) {
	for _, it := range items {
		go strings.ToUpper(it)
	}
}

// Sorted sorts xs in place.
func Sorted(xs []int) {
	sortWith(xs, func(a, b int) bool { return a < b })
}

func sortWith(xs []int, less func(a, b int) bool) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && less(xs[j], xs[j-1]); j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

// LoadAll is a no-op loader.
func (s *Store) LoadAll() {}

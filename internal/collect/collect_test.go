package collect

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/unbound-force/debtmap/internal/callgraph"
	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/snapshot"
)

// sampleDir returns the absolute path of the fixture module.
func sampleDir() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "testdata", "sample")
}

func collectSample(t *testing.T, opts Options) *snapshot.Snapshot {
	t.Helper()
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}
	opts.Dir = sampleDir()
	snap, err := Collect(context.Background(), []string{"./..."}, opts)
	if err != nil {
		t.Fatalf("Collect() failed: %v", err)
	}
	return snap
}

func mustFunc(t *testing.T, snap *snapshot.Snapshot, name string) snapshot.FunctionMetrics {
	t.Helper()
	for _, f := range snap.Functions {
		if f.ID.Name == name {
			return f
		}
	}
	t.Fatalf("function %q not collected", name)
	return snapshot.FunctionMetrics{}
}

func hasFunc(snap *snapshot.Snapshot, name string) bool {
	for _, f := range snap.Functions {
		if f.ID.Name == name {
			return true
		}
	}
	return false
}

func TestCollect_Metrics(t *testing.T) {
	snap := collectSample(t, Options{})

	tests := []struct {
		name       string
		cyclomatic int
		cognitive  int
		nesting    int
		length     int
		visibility snapshot.Visibility
	}{
		{"classify", 6, 4, 1, 14, snapshot.Unexported},
		{"Process", 2, 1, 1, 7, snapshot.Exported},
		{"sortWith", 4, 4, 2, 7, snapshot.Unexported},
		{"Forward", 1, 0, 0, 3, snapshot.Exported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustFunc(t, snap, tt.name)
			if m.Cyclomatic != tt.cyclomatic {
				t.Errorf("cyclomatic = %d, want %d", m.Cyclomatic, tt.cyclomatic)
			}
			if m.Cognitive != tt.cognitive {
				t.Errorf("cognitive = %d, want %d", m.Cognitive, tt.cognitive)
			}
			if m.Nesting != tt.nesting {
				t.Errorf("nesting = %d, want %d", m.Nesting, tt.nesting)
			}
			if m.Length != tt.length {
				t.Errorf("length = %d, want %d", m.Length, tt.length)
			}
			if m.Visibility != tt.visibility {
				t.Errorf("visibility = %s, want %s", m.Visibility, tt.visibility)
			}
			if m.ID.File != "app.go" {
				t.Errorf("file = %q, want app.go", m.ID.File)
			}
			if m.Package != "sample" {
				t.Errorf("package = %q, want sample", m.Package)
			}
		})
	}
}

func TestCollect_Signals(t *testing.T) {
	snap := collectSample(t, Options{})

	if got := mustFunc(t, snap, "Join").Signals.StringConcatLoops; got != 1 {
		t.Errorf("Join string concatenations = %d, want 1", got)
	}
	if hits := mustFunc(t, snap, "Poll").Signals.BlockingInLoop; len(hits) != 1 || hits[0].Pattern != "time.Sleep" {
		t.Errorf("Poll blocking calls = %+v, want one time.Sleep", hits)
	}
	if hits := mustFunc(t, snap, "Leak").Signals.UnclosedResources; len(hits) != 1 || hits[0].Pattern != "os.Open" {
		t.Errorf("Leak resources = %+v, want one os.Open", hits)
	}
	if hits := mustFunc(t, snap, "Spawn").Signals.UnsyncedGoroutine; len(hits) != 1 {
		t.Errorf("Spawn goroutines = %+v, want one", hits)
	}
	if depth := mustFunc(t, snap, "sortWith").Signals.MaxLoopDepth; depth != 2 {
		t.Errorf("sortWith loop depth = %d, want 2", depth)
	}

	swallow := mustFunc(t, snap, "Swallow").Signals
	if len(swallow.SwallowedErrors) != 1 {
		t.Fatalf("Swallow errors = %+v, want one", swallow.SwallowedErrors)
	}
	if hit := swallow.SwallowedErrors[0]; hit.Pattern != "discarded error" || hit.Context != "os.Remove()" {
		t.Errorf("Swallow hit = %+v", hit)
	}
	if len(swallow.Markers) != 1 || swallow.Markers[0].Kind != snapshot.MarkerTodo ||
		swallow.Markers[0].Text != "report removal failures" {
		t.Errorf("Swallow markers = %+v", swallow.Markers)
	}

	if found := debt.ClassifyOrthogonal(mustFunc(t, snap, "Process"), debt.DefaultThresholds()); len(found) != 0 {
		t.Errorf("Process findings = %+v, want none", found)
	}
}

func TestCollect_Duplicates(t *testing.T) {
	snap := collectSample(t, Options{})

	for _, name := range []string{"sumAbove", "totalOver"} {
		d := mustFunc(t, snap, name).Signals.Duplicate
		if d == nil {
			t.Fatalf("%s: expected duplicate signal", name)
		}
		if d.Instances != 2 || d.TotalLines != 18 {
			t.Errorf("%s: duplicate = %+v, want 2 instances over 18 lines", name, *d)
		}
	}
}

func TestCollect_FilesAndTypes(t *testing.T) {
	snap := collectSample(t, Options{})

	var store *snapshot.FileMetrics
	for i, f := range snap.Files {
		switch f.Path {
		case "gen.go":
			t.Error("generated file should be skipped")
		case "app_test.go":
			t.Error("test file should be skipped without IncludeTests")
		case "store.go":
			store = &snap.Files[i]
		}
	}
	if store == nil {
		t.Fatal("store.go not collected")
	}
	if store.Functions != 3 {
		t.Errorf("store.go functions = %d, want 3", store.Functions)
	}
	if len(store.Types) != 1 {
		t.Fatalf("store.go types = %+v, want one", store.Types)
	}
	ty := store.Types[0]
	if ty.Name != "Store" || ty.Methods != 4 || ty.Responsibilities != 3 {
		t.Errorf("Store = %+v, want 4 methods and 3 responsibilities", ty)
	}
	if ty.Fields == nil || *ty.Fields != 3 {
		t.Errorf("Store fields = %v, want 3", ty.Fields)
	}
	if hasFunc(snap, "generated") {
		t.Error("function from generated file collected")
	}
}

func TestCollect_CallGraph(t *testing.T) {
	snap := collectSample(t, Options{})
	g := snap.Graph

	process := mustFunc(t, snap, "Process").ID
	classify := mustFunc(t, snap, "classify").ID
	forward := mustFunc(t, snap, "Forward").ID
	sorted := mustFunc(t, snap, "Sorted").ID
	sortWith := mustFunc(t, snap, "sortWith").ID
	literal := mustFunc(t, snap, "Sorted$1")

	if !literal.IsClosure {
		t.Error("Sorted$1 should be a closure")
	}
	if callers := g.CallersOf(classify); len(callers) != 1 || callers[0] != process {
		t.Errorf("callers of classify = %v, want [Process]", callers)
	}
	if edges := g.EdgesFrom(forward); len(edges) != 1 || edges[0].Callee != process || edges[0].Kind != callgraph.Delegate {
		t.Errorf("edges from Forward = %+v, want one delegate edge to Process", edges)
	}
	if n := len(g.CallersOf(mustFunc(t, snap, "unusedHelper").ID)); n != 0 {
		t.Errorf("unusedHelper has %d callers, want 0", n)
	}

	kinds := make(map[callgraph.FunctionID]callgraph.CallKind)
	for _, e := range g.EdgesFrom(sorted) {
		kinds[e.Callee] = e.Kind
	}
	if k, ok := kinds[sortWith]; !ok || k != callgraph.Delegate {
		t.Errorf("Sorted -> sortWith = %v (present %v), want delegate", k, ok)
	}
	if k, ok := kinds[literal.ID]; !ok || k != callgraph.Callback {
		t.Errorf("Sorted -> Sorted$1 = %v (present %v), want callback", k, ok)
	}
}

func TestCollect_MethodValues(t *testing.T) {
	snap := collectSample(t, Options{})
	g := snap.Graph

	tests := []struct {
		method string
		caller string
	}{
		{"(*Ranking).less", "(*Ranking).Order"},
		{"(Ranking).weight", "Weighted"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			m := mustFunc(t, snap, tt.method)
			want := mustFunc(t, snap, tt.caller).ID

			callers := g.CallersOf(m.ID)
			found := false
			for _, c := range callers {
				if c == want {
					found = true
				}
			}
			if !found {
				t.Fatalf("callers of %s = %v, want %s among them", tt.method, callers, tt.caller)
			}
			for _, e := range g.EdgesFrom(want) {
				if e.Callee == m.ID && e.Kind != callgraph.Callback {
					t.Errorf("%s -> %s kind = %v, want callback", tt.caller, tt.method, e.Kind)
				}
			}

			facts := debt.Facts{Upstream: len(callers), Downstream: len(g.CalleesOf(m.ID))}
			if d := debt.ClassifyFunction(m, nil, facts, debt.DefaultThresholds()); d.Kind() == debt.KindDeadCode {
				t.Errorf("%s passed as a method value was classified as dead code", tt.method)
			}
		})
	}
}

func TestCollect_IncludeTests(t *testing.T) {
	snap := collectSample(t, Options{IncludeTests: true})

	test := mustFunc(t, snap, "TestProcess")
	if !test.IsTest {
		t.Error("TestProcess should be marked as a test")
	}
	if !snap.Graph.IsEntryPoint(test.ID) {
		t.Error("TestProcess should be an entry point")
	}
	found := false
	for _, c := range snap.Graph.CallersOf(mustFunc(t, snap, "Process").ID) {
		if c == test.ID {
			found = true
		}
	}
	if !found {
		t.Error("TestProcess should call Process")
	}
}

func TestCollect_Ignore(t *testing.T) {
	snap := collectSample(t, Options{Ignore: []string{"util.go"}})
	if hasFunc(snap, "sumAbove") {
		t.Error("ignored file was collected")
	}
	if !hasFunc(snap, "Process") {
		t.Error("Process missing")
	}
}

func TestCollect_AllIgnored(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}
	_, err := Collect(context.Background(), []string{"./..."}, Options{Dir: sampleDir(), Ignore: []string{"*.go"}})
	if !errors.Is(err, ErrNoPackages) {
		t.Fatalf("err = %v, want ErrNoPackages", err)
	}
}

func TestCollect_CoverProfile(t *testing.T) {
	snap := collectSample(t, Options{CoverProfile: filepath.Join(sampleDir(), "cover.out")})
	if snap.Coverage == nil {
		t.Fatal("expected coverage index")
	}

	tests := []struct {
		name string
		line int
		want float64
	}{
		{"Process", 10, 1},
		{"classify", 18, 5.0 / 7.0},
		{"Forward", 34, 0},
	}
	for _, tt := range tests {
		got, ok := snap.Coverage.Lookup("app.go", tt.name, tt.line)
		if !ok {
			t.Errorf("%s: no coverage", tt.name)
			continue
		}
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: coverage = %f, want %f", tt.name, got, tt.want)
		}
	}
}

func TestCollect_CoverProfileIsDirectory(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}
	_, err := Collect(context.Background(), nil, Options{Dir: sampleDir(), CoverProfile: t.TempDir()})
	if err == nil {
		t.Fatal("expected error for directory cover profile")
	}
}

func TestCollect_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Collect(ctx, nil, Options{Dir: sampleDir()}); err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestIgnored(t *testing.T) {
	tests := []struct {
		rel   string
		globs []string
		want  bool
	}{
		{"util.go", []string{"util.go"}, true},
		{"pkg/util.go", []string{"util.go"}, true},
		{"vendor/x/y.go", []string{"vendor/**"}, true},
		{"vendorx/y.go", []string{"vendor/**"}, false},
		{"pkg/a_gen.go", []string{"*_gen.go"}, true},
		{"pkg/a.go", []string{"pkg/*.go"}, true},
		{"pkg/a.go", nil, false},
	}
	for _, tt := range tests {
		if got := ignored(tt.rel, tt.globs); got != tt.want {
			t.Errorf("ignored(%q, %v) = %v, want %v", tt.rel, tt.globs, got, tt.want)
		}
	}
}

func TestIsEntryPoint(t *testing.T) {
	tests := []struct {
		m    snapshot.FunctionMetrics
		want bool
	}{
		{snapshot.FunctionMetrics{ID: callgraph.FunctionID{Name: "main"}, Package: "main"}, true},
		{snapshot.FunctionMetrics{ID: callgraph.FunctionID{Name: "main"}, Package: "lib"}, false},
		{snapshot.FunctionMetrics{ID: callgraph.FunctionID{Name: "init"}, Package: "lib"}, true},
		{snapshot.FunctionMetrics{ID: callgraph.FunctionID{Name: "TestX"}, IsTest: true}, true},
		{snapshot.FunctionMetrics{ID: callgraph.FunctionID{Name: "TestX"}}, false},
		{snapshot.FunctionMetrics{ID: callgraph.FunctionID{Name: "TestX$1"}, IsTest: true, IsClosure: true}, false},
		{snapshot.FunctionMetrics{ID: callgraph.FunctionID{Name: "helper"}, IsTest: true}, false},
	}
	for _, tt := range tests {
		if got := isEntryPoint(tt.m); got != tt.want {
			t.Errorf("isEntryPoint(%+v) = %v, want %v", tt.m.ID, got, tt.want)
		}
	}
}

package role

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unbound-force/debtmap/internal/callgraph"
	"github.com/unbound-force/debtmap/internal/snapshot"
)

func metrics(name string, cyc, cog, length int) snapshot.FunctionMetrics {
	return snapshot.FunctionMetrics{
		ID:         callgraph.FunctionID{File: "svc.go", Name: name, Line: 1},
		Cyclomatic: cyc,
		Cognitive:  cog,
		Length:     length,
	}
}

func TestClassify_Cascade(t *testing.T) {
	empty := callgraph.NewBuilder().Build()

	tests := []struct {
		name string
		m    snapshot.FunctionMetrics
		want FunctionRole
	}{
		{"main is entry", metrics("main", 5, 8, 50), EntryPoint},
		{"ServeHTTP is entry", metrics("(*Server).ServeHTTP", 4, 4, 30), EntryPoint},
		{"coordinator name, simple", metrics("coordinateTasks", 2, 3, 15), Orchestrator},
		{"conditional name", metrics("generateReportIfRequested", 2, 1, 6), Orchestrator},
		{"coordinator name, too complex", metrics("coordinateTasks", 9, 12, 80), PureLogic},
		{"formatter is not orchestration", metrics("formatRecommendationHeader", 1, 0, 9), PureLogic},
		{"short io wrapper", metrics("readFile", 1, 2, 10), IOWrapper},
		{"long io function", metrics("readFile", 6, 9, 45), PureLogic},
		{"business logic", metrics("calculateRisk", 8, 12, 60), PureLogic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.m, empty))
		})
	}
}

func TestClassify_GraphEntryPointWins(t *testing.T) {
	m := metrics("calculateRisk", 8, 12, 60)
	g := callgraph.NewBuilder().AddFunction(callgraph.Node{ID: m.ID, IsEntryPoint: true}).Build()

	assert.Equal(t, EntryPoint, Classify(m, g))
}

func TestClassify_DelegationShape(t *testing.T) {
	m := metrics("assemble", 1, 1, 8)
	b := callgraph.NewBuilder()
	b.AddCall(m.ID, callgraph.FunctionID{File: "svc.go", Name: "a", Line: 20}, callgraph.Delegate)
	b.AddCall(m.ID, callgraph.FunctionID{File: "svc.go", Name: "b", Line: 30}, callgraph.Pipeline)
	b.AddCall(m.ID, callgraph.FunctionID{File: "svc.go", Name: "c", Line: 40}, callgraph.Delegate)
	b.AddCall(m.ID, callgraph.FunctionID{File: "svc.go", Name: "d", Line: 50}, callgraph.Delegate)
	b.AddCall(m.ID, callgraph.FunctionID{File: "svc.go", Name: "e", Line: 60}, callgraph.Direct)

	assert.Equal(t, Orchestrator, Classify(m, b.Build()))
}

func TestClassify_MostlyDirectCallsStayPureLogic(t *testing.T) {
	m := metrics("assemble", 1, 1, 8)
	b := callgraph.NewBuilder()
	b.AddCall(m.ID, callgraph.FunctionID{File: "svc.go", Name: "a", Line: 20}, callgraph.Delegate)
	b.AddCall(m.ID, callgraph.FunctionID{File: "svc.go", Name: "b", Line: 30}, callgraph.Direct)

	assert.Equal(t, PureLogic, Classify(m, b.Build()))
}

func TestMultipliers(t *testing.T) {
	m := DefaultMultipliers()

	assert.Equal(t, 1.5, m.For(PureLogic))
	assert.Equal(t, 0.2, m.For(Orchestrator))
	assert.Equal(t, 0.1, m.For(IOWrapper))
	assert.Equal(t, 0.8, m.For(EntryPoint))
	assert.Equal(t, 1.0, m.For(Unknown))
	assert.Equal(t, 1.0, m.For(FunctionRole("bogus")))
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"ServeHTTP":         "serve_http",
		"tryConnect":        "try_connect",
		"(*Store).SaveItem": "save_item",
		"already_snake":     "already_snake",
		"parseJSONPayload":  "parse_json_payload",
		"main":              "main",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalize(in), in)
	}
}

func TestClassifyAll(t *testing.T) {
	funcs := []snapshot.FunctionMetrics{metrics("main", 1, 1, 3), metrics("compute", 7, 9, 40)}
	funcs[1].ID.Line = 20

	roles := ClassifyAll(funcs, nil)

	assert.Equal(t, EntryPoint, roles[funcs[0].ID])
	assert.Equal(t, PureLogic, roles[funcs[1].ID])
}

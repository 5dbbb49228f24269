// Package role assigns each function a structural role from its call
// graph position, name, and metrics. The role becomes a scoring weight.
package role

import (
	"strings"
	"unicode"

	"github.com/unbound-force/debtmap/internal/callgraph"
	"github.com/unbound-force/debtmap/internal/snapshot"
)

// FunctionRole is the structural role of a function.
type FunctionRole string

// Role constants.
const (
	PureLogic    FunctionRole = "PureLogic"
	Orchestrator FunctionRole = "Orchestrator"
	IOWrapper    FunctionRole = "IOWrapper"
	EntryPoint   FunctionRole = "EntryPoint"
	Unknown      FunctionRole = "Unknown"
)

// AllRoles lists every role in display order.
var AllRoles = []FunctionRole{PureLogic, Orchestrator, IOWrapper, EntryPoint, Unknown}

// Multipliers maps each role to its score weight.
type Multipliers struct {
	PureLogic    float64 `yaml:"pure_logic" toml:"pure_logic" json:"pure_logic"`
	Orchestrator float64 `yaml:"orchestrator" toml:"orchestrator" json:"orchestrator"`
	IOWrapper    float64 `yaml:"io_wrapper" toml:"io_wrapper" json:"io_wrapper"`
	EntryPoint   float64 `yaml:"entry_point" toml:"entry_point" json:"entry_point"`
	Unknown      float64 `yaml:"unknown" toml:"unknown" json:"unknown"`
}

// DefaultMultipliers weights untested business logic well above thin
// glue code.
func DefaultMultipliers() Multipliers {
	return Multipliers{
		PureLogic:    1.5,
		Orchestrator: 0.2,
		IOWrapper:    0.1,
		EntryPoint:   0.8,
		Unknown:      1.0,
	}
}

// For returns the multiplier of r. Unrecognised roles use Unknown.
func (m Multipliers) For(r FunctionRole) float64 {
	switch r {
	case PureLogic:
		return m.PureLogic
	case Orchestrator:
		return m.Orchestrator
	case IOWrapper:
		return m.IOWrapper
	case EntryPoint:
		return m.EntryPoint
	default:
		return m.Unknown
	}
}

// Thresholds used by the cascade.
const (
	orchestratorNameMaxCyclomatic = 3
	delegationMaxCyclomatic       = 2
	delegationMaxCognitive        = 3
	delegationMinRatio            = 0.8
	ioWrapperMaxLength            = 20
)

// Classify applies the role rules in order; the first match wins.
func Classify(m snapshot.FunctionMetrics, g *callgraph.Graph) FunctionRole {
	name := normalize(m.ID.Name)

	if g.IsEntryPoint(m.ID) || matchesEntryName(name) {
		return EntryPoint
	}
	if matchesOrchestratorName(name) && m.Cyclomatic <= orchestratorNameMaxCyclomatic {
		return Orchestrator
	}
	if m.Cyclomatic <= delegationMaxCyclomatic &&
		m.Cognitive <= delegationMaxCognitive &&
		len(g.EdgesFrom(m.ID)) > 0 &&
		g.DelegationRatio(m.ID) >= delegationMinRatio {
		return Orchestrator
	}
	if matchesIOName(name) && m.Length < ioWrapperMaxLength {
		return IOWrapper
	}
	return PureLogic
}

// ClassifyAll classifies every function in funcs.
func ClassifyAll(funcs []snapshot.FunctionMetrics, g *callgraph.Graph) map[callgraph.FunctionID]FunctionRole {
	out := make(map[callgraph.FunctionID]FunctionRole, len(funcs))
	for _, f := range funcs {
		out[f.ID] = Classify(f, g)
	}
	return out
}

// normalize lowercases a Go identifier and turns CamelCase boundaries
// into underscores. Receiver prefixes such as "(*Store)." are dropped.
func normalize(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	var sb strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' &&
				(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

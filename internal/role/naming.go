package role

import "strings"

// entryWords are whole name segments that mark program entry points.
var entryWords = []string{
	"main", "run", "start", "init", "handle", "process", "execute", "serve", "listen",
}

// orchestratorPatterns are substrings that mark coordination code.
var orchestratorPatterns = []string{
	"orchestrate", "coordinate", "manage", "dispatch", "route",
	"_if_", "_when_", "if_requested", "if_needed", "if_enabled",
	"maybe", "_try_", "_attempt_", "delegate", "forward",
}

// orchestratorPrefixes override the exclusion list below.
var orchestratorPrefixes = []string{
	"workflow_", "pipeline_", "orchestrate_", "coordinate_", "execute_flow_",
}

// notOrchestratorPrefixes are verbs of functions that do the work
// themselves, even when their name also contains a coordination word.
var notOrchestratorPrefixes = []string{
	"print", "format", "create", "build", "extract", "parse", "new",
	"from", "to_", "into", "write", "read", "display", "render", "emit",
	"convert", "transform", "get", "set", "find", "search", "check", "validate",
}

// ioWords are substrings that indicate I/O work.
var ioWords = []string{
	"read", "write", "file", "socket", "http", "request", "response",
	"stream", "buffer", "stdin", "stdout", "stderr", "print", "input",
	"output", "display", "json", "serialize", "deserialize", "emit",
	"render", "save", "load", "export", "import", "log", "flush", "dial",
}

func matchesEntryName(name string) bool {
	for _, seg := range strings.Split(name, "_") {
		for _, w := range entryWords {
			if seg == w {
				return true
			}
		}
	}
	return false
}

func matchesOrchestratorName(name string) bool {
	for _, p := range orchestratorPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	for _, p := range notOrchestratorPrefixes {
		if strings.HasPrefix(name, p) {
			return false
		}
	}
	// Pad so "_if_" also matches at the edges of a segment list.
	padded := "_" + name + "_"
	for _, p := range orchestratorPatterns {
		if strings.Contains(padded, p) {
			return true
		}
	}
	return false
}

func matchesIOName(name string) bool {
	for _, w := range ioWords {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

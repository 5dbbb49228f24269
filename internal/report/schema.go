package report

// Schema is the JSON Schema (Draft 2020-12) for the debtmap JSON
// output. It documents the structure returned by WriteJSON.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/debtmap/report.schema.json",
  "title": "debtmap Report",
  "description": "Output schema for debtmap analyze --format=json",
  "type": "object",
  "required": ["version", "tool_version", "summary", "items", "stats", "categories", "dependencies"],
  "properties": {
    "version": {
      "type": "string",
      "description": "Schema version (semver)"
    },
    "tool_version": {
      "type": "string",
      "description": "debtmap build version"
    },
    "summary": { "$ref": "#/$defs/Summary" },
    "items": {
      "type": "array",
      "description": "Ranked debt items, highest score first",
      "items": { "$ref": "#/$defs/Item" }
    },
    "stats": { "$ref": "#/$defs/Stats" },
    "categories": {
      "type": "array",
      "items": { "$ref": "#/$defs/Category" }
    },
    "dependencies": {
      "type": "array",
      "items": { "$ref": "#/$defs/Dependency" }
    }
  },
  "$defs": {
    "Summary": {
      "type": "object",
      "required": ["functions_analyzed", "files_analyzed", "has_coverage", "total_debt_score", "items_reported", "tier_counts", "reported_tier_counts"],
      "properties": {
        "functions_analyzed": { "type": "integer", "minimum": 0 },
        "files_analyzed": { "type": "integer", "minimum": 0 },
        "has_coverage": { "type": "boolean" },
        "total_debt_score": {
          "type": "number",
          "minimum": 0,
          "description": "Sum of final scores of all items that passed filtering, before the limit"
        },
        "items_reported": { "type": "integer", "minimum": 0 },
        "tier_counts": {
          "type": "object",
          "description": "Items per tier among all items that passed filtering, before the limit",
          "propertyNames": { "$ref": "#/$defs/Tier" },
          "additionalProperties": { "type": "integer", "minimum": 0 }
        },
        "reported_tier_counts": {
          "type": "object",
          "description": "Items per tier among the reported items, after the limit",
          "propertyNames": { "$ref": "#/$defs/Tier" },
          "additionalProperties": { "type": "integer", "minimum": 0 }
        }
      }
    },
    "Tier": {
      "type": "string",
      "enum": ["T1", "T2", "T3", "T4"],
      "description": "Recommendation tier, T1 most urgent"
    },
    "Location": {
      "type": "object",
      "required": ["file", "line"],
      "properties": {
        "file": {
          "type": "string",
          "description": "Path relative to the module root"
        },
        "function": { "type": "string" },
        "line": { "type": "integer", "minimum": 0 }
      }
    },
    "Score": {
      "type": "object",
      "required": [
        "complexity_factor", "coverage_factor", "dependency_factor",
        "role_multiplier", "base_score", "exponential_factor",
        "risk_boost", "final_score"
      ],
      "properties": {
        "complexity_factor": { "type": "number", "minimum": 0 },
        "coverage_factor": { "type": "number", "minimum": 0 },
        "dependency_factor": { "type": "number", "minimum": 0 },
        "role_multiplier": { "type": "number", "minimum": 0 },
        "base_score": { "type": "number", "minimum": 0 },
        "exponential_factor": { "type": "number", "minimum": 0 },
        "risk_boost": { "type": "number", "minimum": 0 },
        "final_score": { "type": "number", "minimum": 0, "maximum": 100 }
      }
    },
    "Item": {
      "type": "object",
      "required": [
        "type", "kind", "display_name", "category", "tier", "severity",
        "location", "score", "debt", "recommendation"
      ],
      "properties": {
        "type": { "type": "string", "enum": ["function", "file"] },
        "kind": {
          "type": "string",
          "enum": [
            "Todo", "Fixme", "CodeSmell", "Complexity", "Dependency",
            "ResourceManagement", "CodeOrganization", "TestComplexity",
            "TestQuality", "TestingGap", "ComplexityHotspot", "DeadCode",
            "Duplication", "Risk", "TestComplexityHotspot", "TestTodo",
            "TestDuplication", "ErrorSwallowing", "AllocationInefficiency",
            "StringConcatenation", "NestedLoops", "BlockingIO",
            "SuboptimalDataStructure", "GodObject", "GodModule",
            "FeatureEnvy", "PrimitiveObsession", "MagicValues",
            "AssertionComplexity", "FlakyTestPattern", "AsyncMisuse",
            "ResourceLeak", "CollectionInefficiency", "ScatteredType",
            "OrphanedFunctions", "UtilitiesSprawl"
          ]
        },
        "display_name": { "type": "string" },
        "category": {
          "type": "string",
          "enum": ["Architecture", "Testing", "Performance", "CodeQuality"]
        },
        "tier": { "$ref": "#/$defs/Tier" },
        "severity": {
          "type": "string",
          "enum": ["Critical", "High", "Moderate", "Low"]
        },
        "location": { "$ref": "#/$defs/Location" },
        "score": { "$ref": "#/$defs/Score" },
        "debt": {
          "type": "object",
          "description": "Evidence specific to the debt kind"
        },
        "recommendation": { "$ref": "#/$defs/Recommendation" },
        "function": { "$ref": "#/$defs/Function" },
        "file": { "$ref": "#/$defs/File" }
      }
    },
    "Recommendation": {
      "type": "object",
      "required": ["primary_action", "rationale"],
      "properties": {
        "primary_action": { "type": "string" },
        "rationale": { "type": "string" },
        "steps": { "type": "array", "items": { "type": "string" } }
      }
    },
    "Function": {
      "type": "object",
      "required": [
        "role", "cyclomatic", "cognitive", "nesting", "length",
        "upstream_dependencies", "downstream_dependencies",
        "upstream_callers", "downstream_callees", "criticality"
      ],
      "properties": {
        "role": {
          "type": "string",
          "enum": ["PureLogic", "Orchestrator", "IOWrapper", "EntryPoint", "Unknown"]
        },
        "cyclomatic": { "type": "integer", "minimum": 0 },
        "cognitive": { "type": "integer", "minimum": 0 },
        "nesting": { "type": "integer", "minimum": 0 },
        "length": { "type": "integer", "minimum": 0 },
        "upstream_dependencies": { "type": "integer", "minimum": 0 },
        "downstream_dependencies": { "type": "integer", "minimum": 0 },
        "upstream_callers": { "type": "array", "items": { "type": "string" } },
        "downstream_callees": { "type": "array", "items": { "type": "string" } },
        "criticality": { "type": "number", "minimum": 0 },
        "coverage": { "$ref": "#/$defs/Coverage" }
      }
    },
    "Coverage": {
      "type": "object",
      "required": ["direct", "transitive"],
      "properties": {
        "direct": { "type": "number", "minimum": 0, "maximum": 1 },
        "transitive": { "type": "number", "minimum": 0, "maximum": 1 },
        "propagated_from": {
          "oneOf": [
            { "type": "array", "items": { "$ref": "#/$defs/FunctionID" } },
            { "type": "null" }
          ]
        }
      }
    },
    "FunctionID": {
      "type": "object",
      "required": ["file", "name", "line"],
      "properties": {
        "file": { "type": "string" },
        "name": { "type": "string" },
        "line": { "type": "integer" }
      }
    },
    "File": {
      "type": "object",
      "required": ["lines", "functions", "aggregated_functions"],
      "properties": {
        "lines": { "type": "integer", "minimum": 0 },
        "functions": { "type": "integer", "minimum": 0 },
        "aggregated_functions": { "type": "integer", "minimum": 0 }
      }
    },
    "Stats": {
      "type": "object",
      "required": [
        "total_items_processed", "filtered_by_score", "filtered_by_tier",
        "filtered_by_complexity", "filtered_as_duplicate", "items_added",
        "total_filtered", "acceptance_rate"
      ],
      "properties": {
        "total_items_processed": { "type": "integer", "minimum": 0 },
        "filtered_by_score": { "type": "integer", "minimum": 0 },
        "filtered_by_tier": { "type": "integer", "minimum": 0 },
        "filtered_by_complexity": { "type": "integer", "minimum": 0 },
        "filtered_as_duplicate": { "type": "integer", "minimum": 0 },
        "items_added": { "type": "integer", "minimum": 0 },
        "total_filtered": { "type": "integer", "minimum": 0 },
        "acceptance_rate": { "type": "number", "minimum": 0, "maximum": 100 }
      }
    },
    "Category": {
      "type": "object",
      "required": ["category", "total_score", "item_count", "average_severity", "estimated_effort_hours", "guidance", "top_items"],
      "properties": {
        "category": {
          "type": "string",
          "enum": ["Architecture", "Testing", "Performance", "CodeQuality"]
        },
        "total_score": { "type": "number", "minimum": 0 },
        "item_count": { "type": "integer", "minimum": 1 },
        "average_severity": { "type": "number", "minimum": 0 },
        "estimated_effort_hours": { "type": "integer", "minimum": 0 },
        "guidance": { "type": "string" },
        "top_items": {
          "type": "array",
          "items": { "$ref": "#/$defs/Location" }
        }
      }
    },
    "Dependency": {
      "type": "object",
      "required": ["source", "target", "impact", "description"],
      "properties": {
        "source": { "type": "string" },
        "target": { "type": "string" },
        "impact": { "type": "string", "enum": ["High", "Medium", "Low"] },
        "description": { "type": "string" }
      }
    }
  }
}`

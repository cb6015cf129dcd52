// Package testutil provides fixtures shared by atlas tests: well-formed
// records, reference registries, dataset directories on disk, and
// deterministic clocks and id generators.
package testutil

import (
	"fmt"
	"testing"

	"github.com/goccy/go-json"

	"github.com/roach88/atlas/internal/model"
	"github.com/roach88/atlas/internal/registry"
)

// Fields is a record under construction, keyed by JSON name.
type Fields map[string]any

// Mod edits a record under construction.
type Mod func(Fields)

// With sets key to value.
func With(key string, value any) Mod {
	return func(f Fields) { f[key] = value }
}

// Without removes key.
func Without(keys ...string) Mod {
	return func(f Fields) {
		for _, k := range keys {
			delete(f, k)
		}
	}
}

// Sources builds an evidence_sources value with one entry per credibility.
func Sources(credibility ...string) []any {
	out := make([]any, len(credibility))
	for i, c := range credibility {
		out[i] = map[string]any{
			"url":         fmt.Sprintf("https://example.com/source-%d", i+1),
			"title":       fmt.Sprintf("Source %d", i+1),
			"type":        "press-release",
			"credibility": c,
		}
	}
	return out
}

// EventFields returns an event that scores 10/10 against Registries: high
// impact, exact date, two primary sources and a 50-character description.
func EventFields() Fields {
	return Fields{
		"id":               "evt-001",
		"title":            "OpenAI releases GPT-4",
		"entity_id":        "openai",
		"date":             "2023-03-14",
		"date_precision":   "exact",
		"action_type":      "product-launch",
		"stack_layers":     []any{"models", "applications"},
		"impact_level":     "high",
		"description":      "GPT-4 multimodal model released to paid API users.",
		"confidence":       "confirmed",
		"evidence_sources": Sources("primary", "primary"),
		"tags":             []any{"llm", "frontier"},
	}
}

// PatternFields returns a pattern that scores 12/12 when evt-001..evt-005 exist.
func PatternFields() Fields {
	return Fields{
		"id":           "pat-001",
		"title":        "Labs integrate vertically into compute",
		"pattern_type": "consolidation-motif",
		"thesis": "Evidence suggests that frontier labs are integrating vertically into compute, " +
			"securing long-term GPU supply through cloud partnerships and custom silicon programs, " +
			"which appears to reduce their dependence on a single hardware vendor.",
		"confidence": "medium",
		"confidence_reasoning": "Five independent primary sources across three labs show the same move " +
			"within eighteen months, but disclosure is uneven.",
		"supporting_events": []any{"evt-001", "evt-002", "evt-003", "evt-004", "evt-005"},
		"counter_signals":   []any{"Open-weight models lower compute needs", "Chip export controls"},
		"time_range":        map[string]any{"start": "2023-01", "end": "2024-12"},
	}
}

// Build applies mods to a copy of base and returns the JSON line.
func Build(base Fields, mods ...Mod) string {
	f := make(Fields, len(base))
	for k, v := range base {
		f[k] = v
	}
	for _, m := range mods {
		m(f)
	}
	b, err := json.Marshal(f)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal fixture: %v", err))
	}
	return string(b)
}

// EventJSON returns the JSON line of EventFields with mods applied.
func EventJSON(mods ...Mod) string { return Build(EventFields(), mods...) }

// PatternJSON returns the JSON line of PatternFields with mods applied.
func PatternJSON(mods ...Mod) string { return Build(PatternFields(), mods...) }

// Event decodes EventJSON(mods...).
func Event(t testing.TB, mods ...Mod) *model.Event {
	t.Helper()
	var e model.Event
	if err := json.Unmarshal([]byte(EventJSON(mods...)), &e); err != nil {
		t.Fatalf("decode event fixture: %v", err)
	}
	return &e
}

// Pattern decodes PatternJSON(mods...).
func Pattern(t testing.TB, mods ...Mod) *model.Pattern {
	t.Helper()
	var p model.Pattern
	if err := json.Unmarshal([]byte(PatternJSON(mods...)), &p); err != nil {
		t.Fatalf("decode pattern fixture: %v", err)
	}
	return &p
}

// Reference collections used by Registries and WriteDataDir.
var (
	Entities = []model.Entity{
		{ID: "openai", Name: "OpenAI", EntityClass: "lab"},
		{ID: "anthropic", Name: "Anthropic", EntityClass: "lab"},
		{ID: "nvidia", Name: "NVIDIA", DisplayName: "Nvidia", EntityClass: "big-tech"},
		{ID: "microsoft", Name: "Microsoft", EntityClass: "big-tech"},
	}
	StackLayers = []model.StackLayer{
		{ID: "compute", Name: "Compute", SortOrder: 1, Examples: []string{"GPUs", "TPUs"}},
		{ID: "infrastructure", Name: "Cloud Infrastructure", SortOrder: 2},
		{ID: "models", Name: "Foundation Models", SortOrder: 3},
		{ID: "applications", Name: "Applications", SortOrder: 4},
	}
	ActionTypes = []model.ActionType{
		{ID: "product-launch", Name: "Product Launch"},
		{ID: "partnership", Name: "Partnership"},
		{ID: "investment", Name: "Investment"},
		{ID: "acquisition", Name: "Acquisition"},
	}
	EntityClasses = []model.EntityClass{
		{ID: "lab", Name: "AI Lab", Color: "#7c3aed"},
		{ID: "big-tech", Name: "Big Tech", Color: "#2563eb"},
	}
)

// Registries indexes the fixture reference collections.
func Registries() *registry.Set {
	return registry.NewSet(Entities, StackLayers, ActionTypes, EntityClasses)
}

// EventIDs returns a lookup holding the given event ids.
func EventIDs(ids ...string) registry.Lookup {
	events := make([]model.Event, len(ids))
	for i, id := range ids {
		events[i] = model.Event{ID: model.NewText(id)}
	}
	return registry.NewIndex(registry.NameEvents, events)
}

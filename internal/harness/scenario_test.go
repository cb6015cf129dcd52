package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atlas/internal/audit"
	"github.com/roach88/atlas/internal/dataset"
	"github.com/roach88/atlas/internal/validate"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
years: { min: 2020, max: 2030 }
strict: true
dataset:
  entities: [ { id: openai, name: OpenAI } ]
  events:
    - { id: evt-001, title: Launch }
    - '{"id": "evt-002"'
assertions:
  - { type: verdict, record: evt-001, verdict: passed }
  - { type: score, record: evt-001, score: 0 }
  - { type: outcome, ok: false }
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, &Years{Min: 2020, Max: 2030}, scenario.Years)
	assert.True(t, scenario.Strict)
	require.Len(t, scenario.Dataset.Events, 2)
	assert.Equal(t, map[string]any{"id": "evt-001", "title": "Launch"}, scenario.Dataset.Events[0])
	assert.Equal(t, `{"id": "evt-002"`, scenario.Dataset.Events[1])
	assert.Nil(t, scenario.Dataset.Patterns)

	require.Len(t, scenario.Assertions, 3)
	assert.Equal(t, validate.Passed, scenario.Assertions[0].Verdict)
	require.NotNil(t, scenario.Assertions[1].Score)
	assert.Equal(t, 0, *scenario.Assertions[1].Score)
	require.NotNil(t, scenario.Assertions[2].OK)
	assert.False(t, *scenario.Assertions[2].OK)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, "name: [unclosed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_UnknownFieldsRejected(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: "misspelled assertions key"
assertion:
  - { type: outcome, ok: true }
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
	assert.Contains(t, err.Error(), "assertion")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: `{description: d, assertions: [{type: outcome, ok: true}]}`,
			want: "name is required",
		},
		{
			name: "name with separator",
			yaml: `{name: a/b, description: d, assertions: [{type: outcome, ok: true}]}`,
			want: "must not contain path separators",
		},
		{
			name: "missing description",
			yaml: `{name: n, assertions: [{type: outcome, ok: true}]}`,
			want: "description is required",
		},
		{
			name: "no assertions",
			yaml: `{name: n, description: d}`,
			want: "assertions list is required",
		},
		{
			name: "inverted years",
			yaml: `{name: n, description: d, years: {min: 2025, max: 2023}, assertions: [{type: outcome, ok: true}]}`,
			want: "years: min 2025 is after max 2023",
		},
		{
			name: "record that is neither mapping nor string",
			yaml: `{name: n, description: d, dataset: {events: [[1, 2]]}, assertions: [{type: outcome, ok: true}]}`,
			want: "dataset.events[0]: record must be a mapping or a raw JSON line",
		},
		{
			name: "missing type",
			yaml: `{name: n, description: d, assertions: [{record: evt-001}]}`,
			want: "assertions[0]: type is required",
		},
		{
			name: "unknown type",
			yaml: `{name: n, description: d, assertions: [{type: trace_contains}]}`,
			want: `assertions[0]: unknown assertion type "trace_contains"`,
		},
		{
			name: "verdict without record",
			yaml: `{name: n, description: d, assertions: [{type: verdict, verdict: passed}]}`,
			want: "assertions[0]: record is required for verdict",
		},
		{
			name: "unknown verdict",
			yaml: `{name: n, description: d, assertions: [{type: verdict, record: evt-001, verdict: approved}]}`,
			want: `unknown verdict "approved"`,
		},
		{
			name: "score without value",
			yaml: `{name: n, description: d, assertions: [{type: score, record: evt-001}]}`,
			want: "score is required for score",
		},
		{
			name: "finding with bad severity",
			yaml: `{name: n, description: d, assertions: [{type: finding, record: evt-001, severity: info, contains: x}]}`,
			want: `severity must be error or warning, got "info"`,
		},
		{
			name: "finding without text",
			yaml: `{name: n, description: d, assertions: [{type: finding, record: evt-001, severity: error}]}`,
			want: "contains is required for finding",
		},
		{
			name: "summary with unknown collection",
			yaml: `{name: n, description: d, assertions: [{type: summary, collection: entities, total: 1}]}`,
			want: `collection must be events or patterns, got "entities"`,
		},
		{
			name: "summary without counts",
			yaml: `{name: n, description: d, assertions: [{type: summary, collection: events}]}`,
			want: "summary needs at least one count",
		},
		{
			name: "problem with unknown kind",
			yaml: `{name: n, description: d, assertions: [{type: problem, kind: fatal, file: x}]}`,
			want: `unknown problem kind "fatal"`,
		},
		{
			name: "problem without file",
			yaml: `{name: n, description: d, assertions: [{type: problem, kind: parse}]}`,
			want: "file is required for problem",
		},
		{
			name: "outcome without ok",
			yaml: `{name: n, description: d, assertions: [{type: outcome}]}`,
			want: "ok is required for outcome",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDatasetWriteTo(t *testing.T) {
	dir := t.TempDir()
	d := Dataset{
		Entities: []any{map[string]any{"id": "openai", "name": "OpenAI"}},
		Events: []any{
			map[string]any{"id": "evt-001", "impact_level": "high"},
			`{"id": "evt-002"`,
		},
		Patterns: []any{},
	}
	require.NoError(t, d.WriteTo(dir))

	entities, err := os.ReadFile(filepath.Join(dir, audit.EntitiesFile))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"openai","name":"OpenAI"}]`, string(entities))

	events, err := os.ReadFile(filepath.Join(dir, audit.EventsFile))
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":\"evt-001\",\"impact_level\":\"high\"}\n{\"id\": \"evt-002\"\n", string(events))

	patterns, err := os.ReadFile(filepath.Join(dir, audit.PatternsFile))
	require.NoError(t, err)
	assert.Empty(t, patterns)

	for _, rel := range []string{audit.StackLayersFile, audit.ActionTypesFile, audit.EntityClassesFile} {
		_, err := os.Stat(filepath.Join(dir, rel))
		assert.True(t, os.IsNotExist(err), rel)
	}
}

func TestAssertionConstants(t *testing.T) {
	assert.Equal(t, "verdict", AssertVerdict)
	assert.Equal(t, "score", AssertScore)
	assert.Equal(t, "finding", AssertFinding)
	assert.Equal(t, "no_findings", AssertNoFindings)
	assert.Equal(t, "summary", AssertSummary)
	assert.Equal(t, "problem", AssertProblem)
	assert.Equal(t, "outcome", AssertOutcome)
	assert.Equal(t, dataset.ProblemKind("parse"), dataset.ProblemParse)
}

func TestLoadExampleScenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			scenario, err := LoadScenario(f)
			require.NoError(t, err)
			assert.NotEmpty(t, scenario.Assertions)
		})
	}
}

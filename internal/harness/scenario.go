package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/roach88/atlas/internal/audit"
	"github.com/roach88/atlas/internal/dataset"
	"github.com/roach88/atlas/internal/validate"
)

// Scenario defines a rubric conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Years overrides the accepted event year range. Nil keeps the default.
	Years *Years `yaml:"years,omitempty"`

	// Strict turns load problems into a failed run.
	Strict bool `yaml:"strict,omitempty"`

	// Dataset is the input written to disk before the run.
	Dataset Dataset `yaml:"dataset"`

	// Assertions validate the resulting report.
	Assertions []Assertion `yaml:"assertions"`
}

// Years is an inclusive year range.
type Years struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Dataset is the inline input of a scenario. Nil collections are not written.
type Dataset struct {
	Entities      any   `yaml:"entities,omitempty"`
	StackLayers   any   `yaml:"stack_layers,omitempty"`
	ActionTypes   any   `yaml:"action_types,omitempty"`
	EntityClasses any   `yaml:"entity_classes,omitempty"`
	Events        []any `yaml:"events,omitempty"`
	Patterns      []any `yaml:"patterns,omitempty"`
}

// Assertion validates one aspect of the report.
type Assertion struct {
	// Type selects the check; see the Assert* constants.
	Type string `yaml:"type"`

	// Record is the id of the record under test (verdict, score, finding, no_findings).
	Record string `yaml:"record,omitempty"`

	// Verdict is the expected verdict (verdict).
	Verdict validate.Verdict `yaml:"verdict,omitempty"`

	// Score is the expected score (score).
	Score *int `yaml:"score,omitempty"`

	// Severity is "error" or "warning" (finding, no_findings).
	Severity validate.Severity `yaml:"severity,omitempty"`

	// Contains is a substring of the expected message (finding, problem).
	Contains string `yaml:"contains,omitempty"`

	// Collection is "events" or "patterns" (summary).
	Collection string `yaml:"collection,omitempty"`

	// Expected counts (summary). Nil counts are not checked.
	Passed        *int `yaml:"passed,omitempty"`
	NeedsRevision *int `yaml:"needs_revision,omitempty"`
	Rejected      *int `yaml:"rejected,omitempty"`
	Total         *int `yaml:"total,omitempty"`

	// Kind is the expected problem kind (problem).
	Kind dataset.ProblemKind `yaml:"kind,omitempty"`

	// File is the data-dir relative path the problem concerns (problem).
	File string `yaml:"file,omitempty"`

	// OK is the expected overall outcome (outcome).
	OK *bool `yaml:"ok,omitempty"`
}

// Assertion type constants.
const (
	AssertVerdict    = "verdict"
	AssertScore      = "score"
	AssertFinding    = "finding"
	AssertNoFindings = "no_findings"
	AssertSummary    = "summary"
	AssertProblem    = "problem"
	AssertOutcome    = "outcome"
)

// Collection names accepted by summary assertions.
const (
	CollectionEvents   = "events"
	CollectionPatterns = "patterns"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(s.Name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", s.Name)
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Years != nil && s.Years.Min > s.Years.Max {
		return fmt.Errorf("years: min %d is after max %d", s.Years.Min, s.Years.Max)
	}

	for i, item := range s.Dataset.Events {
		if err := validateRecord(item); err != nil {
			return fmt.Errorf("dataset.events[%d]: %w", i, err)
		}
	}
	for i, item := range s.Dataset.Patterns {
		if err := validateRecord(item); err != nil {
			return fmt.Errorf("dataset.patterns[%d]: %w", i, err)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateRecord(item any) error {
	switch item.(type) {
	case string, map[string]any:
		return nil
	default:
		return fmt.Errorf("record must be a mapping or a raw JSON line, got %T", item)
	}
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	needRecord := func() error {
		if a.Record == "" {
			return fmt.Errorf("assertions[%d]: record is required for %s", index, a.Type)
		}
		return nil
	}
	needSeverity := func() error {
		if a.Severity != validate.SeverityError && a.Severity != validate.SeverityWarning {
			return fmt.Errorf("assertions[%d]: severity must be error or warning, got %q", index, a.Severity)
		}
		return nil
	}

	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)

	case AssertVerdict:
		if err := needRecord(); err != nil {
			return err
		}
		switch a.Verdict {
		case validate.Passed, validate.NeedsRevision, validate.Rejected:
		default:
			return fmt.Errorf("assertions[%d]: unknown verdict %q", index, a.Verdict)
		}

	case AssertScore:
		if err := needRecord(); err != nil {
			return err
		}
		if a.Score == nil {
			return fmt.Errorf("assertions[%d]: score is required for score", index)
		}

	case AssertFinding:
		if err := needRecord(); err != nil {
			return err
		}
		if err := needSeverity(); err != nil {
			return err
		}
		if a.Contains == "" {
			return fmt.Errorf("assertions[%d]: contains is required for finding", index)
		}

	case AssertNoFindings:
		if err := needRecord(); err != nil {
			return err
		}
		if err := needSeverity(); err != nil {
			return err
		}

	case AssertSummary:
		if a.Collection != CollectionEvents && a.Collection != CollectionPatterns {
			return fmt.Errorf("assertions[%d]: collection must be events or patterns, got %q", index, a.Collection)
		}
		if a.Passed == nil && a.NeedsRevision == nil && a.Rejected == nil && a.Total == nil {
			return fmt.Errorf("assertions[%d]: summary needs at least one count", index)
		}

	case AssertProblem:
		switch a.Kind {
		case dataset.ProblemMissing, dataset.ProblemRead, dataset.ProblemParse, dataset.ProblemIntegrity:
		default:
			return fmt.Errorf("assertions[%d]: unknown problem kind %q", index, a.Kind)
		}
		if a.File == "" {
			return fmt.Errorf("assertions[%d]: file is required for problem", index)
		}

	case AssertOutcome:
		if a.OK == nil {
			return fmt.Errorf("assertions[%d]: ok is required for outcome", index)
		}

	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// WriteTo lays the dataset out under dir in the standard file layout.
func (d Dataset) WriteTo(dir string) error {
	docs := []struct {
		rel string
		v   any
	}{
		{audit.EntitiesFile, d.Entities},
		{audit.StackLayersFile, d.StackLayers},
		{audit.ActionTypesFile, d.ActionTypes},
		{audit.EntityClassesFile, d.EntityClasses},
	}
	for _, doc := range docs {
		if doc.v == nil {
			continue
		}
		data, err := json.Marshal(doc.v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", doc.rel, err)
		}
		if err := writeFile(dir, doc.rel, data); err != nil {
			return err
		}
	}

	lines := []struct {
		rel   string
		items []any
	}{
		{audit.EventsFile, d.Events},
		{audit.PatternsFile, d.Patterns},
	}
	for _, l := range lines {
		if l.items == nil {
			continue
		}
		var buf bytes.Buffer
		for _, item := range l.items {
			if raw, ok := item.(string); ok {
				buf.WriteString(raw)
			} else {
				data, err := json.Marshal(item)
				if err != nil {
					return fmt.Errorf("encode %s: %w", l.rel, err)
				}
				buf.Write(data)
			}
			buf.WriteByte('\n')
		}
		if err := writeFile(dir, l.rel, buf.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

func writeFile(dir, rel string, data []byte) error {
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(rel), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

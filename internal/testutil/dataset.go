package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

// Standard file layout under a data directory.
const (
	EntitiesFile      = "canonical/entities.json"
	StackLayersFile   = "canonical/stack_layers.json"
	ActionTypesFile   = "canonical/action_types.json"
	EntityClassesFile = "canonical/entity_classes.json"
	EventsFile        = "events/v0_seed_40.jsonl"
	PatternsFile      = "patterns/v0_seed_5.jsonl"
)

// Files describes a dataset to write. Nil slices and empty strings leave the
// corresponding file absent.
type Files struct {
	Entities      string
	StackLayers   string
	ActionTypes   string
	EntityClasses string
	Events        []string
	Patterns      []string
}

// DefaultFiles returns the fixture reference data, five passing events
// (evt-001..evt-005) and one passing pattern.
func DefaultFiles() Files {
	events := make([]string, 5)
	for i := range events {
		events[i] = EventJSON(With("id", fmt.Sprintf("evt-%03d", i+1)))
	}
	return Files{
		Entities:      MustJSON(Entities),
		StackLayers:   MustJSON(StackLayers),
		ActionTypes:   MustJSON(ActionTypes),
		EntityClasses: MustJSON(EntityClasses),
		Events:        events,
		Patterns:      []string{PatternJSON()},
	}
}

// MustJSON marshals v or panics.
func MustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// WriteDataDir writes f under a fresh temporary directory and returns it.
func WriteDataDir(t testing.TB, f Files) string {
	t.Helper()
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	if f.Entities != "" {
		write(EntitiesFile, f.Entities)
	}
	if f.StackLayers != "" {
		write(StackLayersFile, f.StackLayers)
	}
	if f.ActionTypes != "" {
		write(ActionTypesFile, f.ActionTypes)
	}
	if f.EntityClasses != "" {
		write(EntityClassesFile, f.EntityClasses)
	}
	if f.Events != nil {
		write(EventsFile, strings.Join(f.Events, "\n")+"\n")
	}
	if f.Patterns != nil {
		write(PatternsFile, strings.Join(f.Patterns, "\n")+"\n")
	}
	return dir
}

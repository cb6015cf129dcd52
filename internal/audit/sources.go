package audit

import "path/filepath"

// Default file layout below a data directory.
const (
	EntitiesFile      = "canonical/entities.json"
	StackLayersFile   = "canonical/stack_layers.json"
	ActionTypesFile   = "canonical/action_types.json"
	EntityClassesFile = "canonical/entity_classes.json"
	EventsFile        = "events/v0_seed_40.jsonl"
	PatternsFile      = "patterns/v0_seed_5.jsonl"
)

// Sources are the input files of a run.
type Sources struct {
	Entities    string `json:"entities"`
	StackLayers string `json:"stack_layers"`
	ActionTypes string `json:"action_types"`
	// EntityClasses is optional. An empty path or a missing file disables
	// the entity class check.
	EntityClasses string `json:"entity_classes,omitempty"`
	Events        string `json:"events"`
	Patterns      string `json:"patterns"`
}

// SourcesIn returns the default layout rooted at dir.
func SourcesIn(dir string) Sources {
	return Sources{
		Entities:      filepath.Join(dir, EntitiesFile),
		StackLayers:   filepath.Join(dir, StackLayersFile),
		ActionTypes:   filepath.Join(dir, ActionTypesFile),
		EntityClasses: filepath.Join(dir, EntityClassesFile),
		Events:        filepath.Join(dir, EventsFile),
		Patterns:      filepath.Join(dir, PatternsFile),
	}
}

// Paths lists every configured input file.
func (s Sources) Paths() []string {
	var out []string
	for _, p := range []string{s.Entities, s.StackLayers, s.ActionTypes, s.EntityClasses, s.Events, s.Patterns} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

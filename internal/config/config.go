// Package config loads atlas settings.
//
// Settings are layered, lowest priority first:
//
//  1. built-in defaults
//  2. a configuration file (.yaml, .yml, .json or .cue)
//  3. environment variables (ATLAS_DATA_DIR, ATLAS_STRICT, ATLAS_HISTORY_DB)
//  4. command-line flags, applied by the caller
//
// Validate must run after the last layer.
package config

import (
	"path/filepath"

	"github.com/roach88/atlas/internal/audit"
	"github.com/roach88/atlas/internal/validate"
)

// DefaultFile is the configuration file looked up in the working directory
// when none is named explicitly.
const DefaultFile = "atlas.yaml"

// DefaultDataDir is the dataset root used when nothing else is configured.
const DefaultDataDir = "data"

// Config is the resolved configuration of one invocation.
type Config struct {
	DataDir     string `json:"data_dir" yaml:"data_dir" validate:"required"`
	Files       Files  `json:"files" yaml:"files"`
	Years       Years  `json:"years" yaml:"years"`
	Strict      bool   `json:"strict" yaml:"strict"`
	MetricsFile string `json:"metrics_file" yaml:"metrics_file"`
	HistoryDB   string `json:"history_db" yaml:"history_db"`

	// LoadedFrom lists the layers that contributed, in order.
	LoadedFrom []string `json:"-" yaml:"-"`
}

// Files overrides individual input paths. An empty entry uses the default
// layout below DataDir; a set entry is used as given.
type Files struct {
	Entities      string `json:"entities" yaml:"entities"`
	StackLayers   string `json:"stack_layers" yaml:"stack_layers"`
	ActionTypes   string `json:"action_types" yaml:"action_types"`
	EntityClasses string `json:"entity_classes" yaml:"entity_classes"`
	Events        string `json:"events" yaml:"events"`
	Patterns      string `json:"patterns" yaml:"patterns"`
}

// Years is the inclusive range of event years.
type Years struct {
	Min int `json:"min" yaml:"min" validate:"gte=1900,lte=2100"`
	Max int `json:"max" yaml:"max" validate:"gte=1900,lte=2100,gtefield=Min"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:    DefaultDataDir,
		Years:      Years{Min: validate.DefaultYears.Min, Max: validate.DefaultYears.Max},
		LoadedFrom: []string{"defaults"},
	}
}

// YearRange returns the configured years for the event validator.
func (c *Config) YearRange() validate.YearRange {
	return validate.YearRange{Min: c.Years.Min, Max: c.Years.Max}
}

// Sources resolves the input files of a run.
func (c *Config) Sources() audit.Sources {
	src := audit.SourcesIn(c.DataDir)
	override := func(dst *string, v string) {
		if v != "" {
			*dst = filepath.Clean(v)
		}
	}
	override(&src.Entities, c.Files.Entities)
	override(&src.StackLayers, c.Files.StackLayers)
	override(&src.ActionTypes, c.Files.ActionTypes)
	override(&src.EntityClasses, c.Files.EntityClasses)
	override(&src.Events, c.Files.Events)
	override(&src.Patterns, c.Files.Patterns)
	return src
}

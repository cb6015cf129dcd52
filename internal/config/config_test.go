package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atlas/internal/audit"
	"github.com/roach88/atlas/internal/validate"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, validate.DefaultYears, cfg.YearRange())
	assert.False(t, cfg.Strict)
	assert.Equal(t, []string{"defaults"}, cfg.LoadedFrom)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, audit.SourcesIn("data"), cfg.Sources())
}

func TestLoadFileFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "atlas.yaml", "data_dir: dataset\nstrict: true\nyears:\n  min: 2022\n  max: 2024\nfiles:\n  events: extra/events.jsonl\n"},
		{"yml", "atlas.yml", "data_dir: dataset\nstrict: true\nyears: {min: 2022, max: 2024}\nfiles: {events: extra/events.jsonl}\n"},
		{"json", "atlas.json", `{"data_dir": "dataset", "strict": true, "years": {"min": 2022, "max": 2024}, "files": {"events": "extra/events.jsonl"}}`},
		{"cue", "atlas.cue", "data_dir: \"dataset\"\nstrict: true\nyears: {min: 2022, max: 2024}\nfiles: events: \"extra/events.jsonl\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.content)
			cfg := Default()

			require.NoError(t, LoadFile(cfg, path))

			assert.Equal(t, "dataset", cfg.DataDir)
			assert.True(t, cfg.Strict)
			assert.Equal(t, Years{Min: 2022, Max: 2024}, cfg.Years)
			assert.Equal(t, filepath.Join("extra", "events.jsonl"), cfg.Sources().Events)
			assert.Equal(t, filepath.Join("dataset", audit.PatternsFile), cfg.Sources().Patterns)
			assert.Equal(t, []string{"defaults", path}, cfg.LoadedFrom)
		})
	}
}

func TestLoadFileKeepsUnsetDefaults(t *testing.T) {
	for _, name := range []string{"atlas.yaml", "atlas.json", "atlas.cue"} {
		t.Run(name, func(t *testing.T) {
			content := "history_db: \"runs.db\"\n"
			if filepath.Ext(name) == ".json" {
				content = `{"history_db": "runs.db"}`
			}
			cfg := Default()

			require.NoError(t, LoadFile(cfg, writeConfig(t, name, content)))

			assert.Equal(t, "runs.db", cfg.HistoryDB)
			assert.Equal(t, DefaultDataDir, cfg.DataDir)
			assert.Equal(t, Years{Min: 2023, Max: 2025}, cfg.Years)
		})
	}
}

func TestLoadFileEmptyYAML(t *testing.T) {
	cfg := Default()
	require.NoError(t, LoadFile(cfg, writeConfig(t, "atlas.yaml", "")))
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		contains string
	}{
		{"unknown yaml key", "atlas.yaml", "data_directory: x\n", "data_directory"},
		{"unknown json key", "atlas.json", `{"data_directory": "x"}`, "data_directory"},
		{"malformed json", "atlas.json", `{"data_dir": `, "atlas.json"},
		{"unsupported format", "atlas.toml", `data_dir = "x"`, `unsupported format ".toml"`},
		{"cue unknown field", "atlas.cue", "data_directory: \"x\"\n", "data_directory"},
		{"cue year out of bounds", "atlas.cue", "years: min: 1800\n", "years.min"},
		{"cue wrong type", "atlas.cue", "strict: \"yes\"\n", "strict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := LoadFile(Default(), writeConfig(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	err := LoadFile(Default(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestApplyEnvOverridesFile(t *testing.T) {
	cfg := Default()
	require.NoError(t, LoadFile(cfg, writeConfig(t, "atlas.yaml", "data_dir: from-file\nstrict: false\nhistory_db: file.db\n")))

	require.NoError(t, ApplyEnv(cfg, envMap(map[string]string{
		EnvDataDir:   "from-env",
		EnvStrict:    "true",
		EnvHistoryDB: "env.db",
	})))

	assert.Equal(t, "from-env", cfg.DataDir)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "env.db", cfg.HistoryDB)
	assert.Equal(t, "environment", cfg.LoadedFrom[len(cfg.LoadedFrom)-1])
}

func TestApplyEnvEmptyValuesIgnored(t *testing.T) {
	cfg := Default()
	require.NoError(t, ApplyEnv(cfg, envMap(map[string]string{EnvDataDir: ""})))
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, []string{"defaults"}, cfg.LoadedFrom)

	require.NoError(t, ApplyEnv(cfg, noEnv))
}

func TestApplyEnvBadBool(t *testing.T) {
	err := ApplyEnv(Default(), envMap(map[string]string{EnvStrict: "sometimes"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvStrict)
}

func TestLoadUsesEnvironment(t *testing.T) {
	t.Setenv(EnvDataDir, "env-data")
	path := writeConfig(t, "atlas.yaml", "data_dir: file-data\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-data", cfg.DataDir)
	assert.Equal(t, []string{"defaults", path, "environment"}, cfg.LoadedFrom)
}

func TestLoadDiscoversDefaultFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFile), []byte("data_dir: discovered\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "discovered", cfg.DataDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		contains string
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data_dir is required"},
		{"min too low", func(c *Config) { c.Years.Min = 1899 }, "years.min must be >= 1900"},
		{"max too high", func(c *Config) { c.Years.Max = 2101 }, "years.max must be <= 2100"},
		{"max before min", func(c *Config) { c.Years = Years{Min: 2025, Max: 2023} }, "years.max must not be before years.min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

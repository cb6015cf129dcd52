package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE []byte

// Environment variables read by ApplyEnv.
const (
	EnvDataDir   = "ATLAS_DATA_DIR"
	EnvStrict    = "ATLAS_STRICT"
	EnvHistoryDB = "ATLAS_HISTORY_DB"
)

// Load returns the defaults overlaid with the file at path and the process
// environment. An empty path falls back to DefaultFile in the working
// directory when it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the configuration file at path onto cfg. Keys absent
// from the file leave cfg unchanged; unknown keys are an error.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config file not found: %s", path)
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	case ".json":
		err = decodeJSON(data, cfg)
	case ".cue":
		err = decodeCUE(path, data, cfg)
	default:
		return fmt.Errorf("config %s: unsupported format %q (want .yaml, .yml, .json or .cue)", path, ext)
	}
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	cfg.LoadedFrom = append(cfg.LoadedFrom, path)
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeJSON(data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// decodeCUE unifies the file with the embedded #Config schema before
// decoding, so constraint violations are reported with CUE positions.
func decodeCUE(path string, data []byte, cfg *Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return err
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return unified.Decode(cfg)
}

// ApplyEnv overlays environment variables onto cfg. lookup is usually
// os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	applied := false
	if v, ok := lookup(EnvDataDir); ok && v != "" {
		cfg.DataDir = v
		applied = true
	}
	if v, ok := lookup(EnvStrict); ok && v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean", EnvStrict, v)
		}
		cfg.Strict = strict
		applied = true
	}
	if v, ok := lookup(EnvHistoryDB); ok && v != "" {
		cfg.HistoryDB = v
		applied = true
	}
	if applied {
		cfg.LoadedFrom = append(cfg.LoadedFrom, "environment")
	}
	return nil
}

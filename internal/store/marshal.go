package store

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/roach88/atlas/internal/model"
	"github.com/roach88/atlas/internal/validate"
)

// marshalFindings converts findings to canonical JSON TEXT for storage.
func marshalFindings(findings []validate.Finding) (string, error) {
	if findings == nil {
		findings = []validate.Finding{}
	}
	raw, err := json.Marshal(findings)
	if err != nil {
		return "", fmt.Errorf("marshal findings: %w", err)
	}
	canonical, err := model.Canonicalize(raw)
	if err != nil {
		return "", fmt.Errorf("marshal findings: %w", err)
	}
	return string(canonical), nil
}

// unmarshalFindings parses stored findings. Returns an empty slice, not nil.
func unmarshalFindings(data string) ([]validate.Finding, error) {
	findings := []validate.Finding{}
	if data == "" || data == "[]" {
		return findings, nil
	}
	if err := json.Unmarshal([]byte(data), &findings); err != nil {
		return nil, fmt.Errorf("unmarshal findings: %w", err)
	}
	return findings, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

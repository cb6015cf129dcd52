package store

import (
	"time"

	"github.com/roach88/atlas/internal/validate"
)

// Counts are the verdict totals of one collection in a run.
type Counts struct {
	Total         int `json:"total"`
	Passed        int `json:"passed"`
	NeedsRevision int `json:"needs_revision"`
	Rejected      int `json:"rejected"`
}

// Run is a stored run summary.
type Run struct {
	ID        string             `json:"id"`
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"duration_ns"`
	OK        bool               `json:"ok"`
	Strict    bool               `json:"strict"`
	Years     validate.YearRange `json:"years"`
	Events    Counts             `json:"events"`
	Patterns  Counts             `json:"patterns"`
	Problems  int                `json:"problems"`
}

// RecordRow is one stored record outcome.
type RecordRow struct {
	RunID    string             `json:"run_id"`
	Kind     string             `json:"kind"`
	Index    int                `json:"index"`
	RecordID string             `json:"record_id"`
	Digest   string             `json:"digest"`
	Score    int                `json:"score"`
	MaxScore int                `json:"max_score"`
	Verdict  validate.Verdict   `json:"verdict"`
	Findings []validate.Finding `json:"findings"`
}

// ChangeStatus describes a record relative to the previous run.
type ChangeStatus string

const (
	ChangeNew       ChangeStatus = "new"
	ChangeModified  ChangeStatus = "modified"
	ChangeUnchanged ChangeStatus = "unchanged"
)

// Change pairs a stored record with its status against the previous run.
type Change struct {
	RecordRow
	Status          ChangeStatus     `json:"status"`
	PreviousVerdict validate.Verdict `json:"previous_verdict,omitempty"`
}

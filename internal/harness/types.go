package harness

import (
	"github.com/roach88/atlas/internal/audit"
	"github.com/roach88/atlas/internal/validate"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Snapshot is the stable view of the report used for golden comparison.
	Snapshot Snapshot `json:"snapshot"`

	// Report is the full audit report.
	Report *audit.Report `json:"-"`
}

// NewResult creates a new passing result.
func NewResult(rep *audit.Report, snap Snapshot) *Result {
	return &Result{
		Pass:     true,
		Errors:   []string{},
		Snapshot: snap,
		Report:   rep,
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Snapshot is the part of a report that depends only on the scenario input.
// Paths are relative to the scenario data directory and timing is omitted.
type Snapshot struct {
	Scenario string           `json:"scenario"`
	OK       bool             `json:"ok"`
	Problems []string         `json:"problems"`
	Events   []RecordSnapshot `json:"events"`
	Patterns []RecordSnapshot `json:"patterns"`
}

// RecordSnapshot is the verdict of one record.
type RecordSnapshot struct {
	ID       string           `json:"id"`
	Verdict  validate.Verdict `json:"verdict"`
	Score    int              `json:"score"`
	Errors   []string         `json:"errors,omitempty"`
	Warnings []string         `json:"warnings,omitempty"`
}

func snapshotRecords(s audit.Summary) []RecordSnapshot {
	out := make([]RecordSnapshot, 0, len(s.Results))
	for _, r := range s.Results {
		snap := RecordSnapshot{
			ID:      r.ID,
			Verdict: r.Result.Verdict,
			Score:   r.Result.Score,
		}
		if errs := r.Result.Errors(); len(errs) > 0 {
			snap.Errors = errs
		}
		if warns := r.Result.Warnings(); len(warns) > 0 {
			snap.Warnings = warns
		}
		out = append(out, snap)
	}
	return out
}

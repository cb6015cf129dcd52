package audit

import (
	"fmt"
	"time"

	"github.com/roach88/atlas/internal/dataset"
	"github.com/roach88/atlas/internal/validate"
)

// RuleUnique names the bucket that carries duplicate-id errors.
const RuleUnique = "unique"

// RecordResult is the outcome for one record.
type RecordResult struct {
	// Index is the 1-based position of the record among the loaded records.
	Index  int             `json:"index"`
	ID     string          `json:"id"`
	Digest string          `json:"digest,omitempty"`
	Result validate.Result `json:"result"`
}

// Summary is the outcome for one collection.
type Summary struct {
	Kind          string              `json:"kind"`
	Total         int                 `json:"total"`
	Passed        int                 `json:"passed"`
	NeedsRevision int                 `json:"needs_revision"`
	Rejected      int                 `json:"rejected"`
	MaxScore      int                 `json:"max_score"`
	Thresholds    validate.Thresholds `json:"thresholds"`
	Results       []RecordResult      `json:"results"`
}

func newSummary(kind string, maxScore int, th validate.Thresholds) Summary {
	return Summary{Kind: kind, MaxScore: maxScore, Thresholds: th, Results: []RecordResult{}}
}

func (s *Summary) add(r RecordResult) {
	s.Total++
	switch r.Result.Verdict {
	case validate.Passed:
		s.Passed++
	case validate.NeedsRevision:
		s.NeedsRevision++
	case validate.Rejected:
		s.Rejected++
	}
	s.Results = append(s.Results, r)
}

// Count returns the number of records with verdict v.
func (s Summary) Count(v validate.Verdict) int {
	switch v {
	case validate.Passed:
		return s.Passed
	case validate.NeedsRevision:
		return s.NeedsRevision
	case validate.Rejected:
		return s.Rejected
	default:
		return 0
	}
}

// Band renders the score range of verdict v, e.g. "7-10/10".
func (s Summary) Band(v validate.Verdict) string {
	var lo, hi int
	switch v {
	case validate.Passed:
		lo, hi = s.Thresholds.Pass, s.MaxScore
	case validate.NeedsRevision:
		lo, hi = s.Thresholds.Revise, s.Thresholds.Pass-1
	default:
		lo, hi = 0, s.Thresholds.Revise-1
	}
	return fmt.Sprintf("%d-%d/%d", lo, hi, s.MaxScore)
}

// RegistryCounts records how many reference entries were loaded.
type RegistryCounts struct {
	Entities      int `json:"entities"`
	StackLayers   int `json:"stack_layers"`
	ActionTypes   int `json:"action_types"`
	EntityClasses int `json:"entity_classes"`
}

// Report is the outcome of one run.
type Report struct {
	RunID      string             `json:"run_id"`
	StartedAt  time.Time          `json:"started_at"`
	Duration   time.Duration      `json:"duration_ns"`
	Strict     bool               `json:"strict"`
	Years      validate.YearRange `json:"years"`
	Sources    Sources            `json:"sources"`
	Registries RegistryCounts     `json:"registries"`
	Problems   []dataset.Problem  `json:"problems"`
	Events     Summary            `json:"events"`
	Patterns   Summary            `json:"patterns"`
}

// Rejected is the number of rejected records across both collections.
func (r *Report) Rejected() int {
	return r.Events.Rejected + r.Patterns.Rejected
}

// LoadFailures returns the problems that concern unreadable or malformed
// input. Registry integrity problems are excluded.
func (r *Report) LoadFailures() []dataset.Problem {
	var out []dataset.Problem
	for _, p := range r.Problems {
		if p.Kind != dataset.ProblemIntegrity {
			out = append(out, p)
		}
	}
	return out
}

// OK reports whether the run succeeded: nothing was rejected and, in strict
// mode, every input loaded cleanly.
func (r *Report) OK() bool {
	if r.Rejected() > 0 {
		return false
	}
	if r.Strict && len(r.LoadFailures()) > 0 {
		return false
	}
	return true
}

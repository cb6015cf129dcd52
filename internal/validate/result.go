package validate

import "fmt"

// Severity distinguishes hard failures from quality signals.
type Severity string

const (
	// SeverityError marks a record as non-compliant; it is always Rejected.
	SeverityError Severity = "error"
	// SeverityWarning is advisory and never changes the verdict.
	SeverityWarning Severity = "warning"
)

// Finding is a single message raised by a rule.
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Bucket is the outcome of one rule.
type Bucket struct {
	Rule     string    `json:"rule"`
	Points   int       `json:"points"`
	Max      int       `json:"max"`
	Findings []Finding `json:"findings,omitempty"`
}

func (b *Bucket) errorf(format string, args ...any) {
	b.Findings = append(b.Findings, Finding{Severity: SeverityError, Message: fmt.Sprintf(format, args...)})
}

func (b *Bucket) warnf(format string, args ...any) {
	b.Findings = append(b.Findings, Finding{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)})
}

// Verdict is the review bucket a record lands in.
type Verdict string

const (
	Passed        Verdict = "passed"
	NeedsRevision Verdict = "needs_revision"
	Rejected      Verdict = "rejected"
)

// Verdicts lists every verdict in report order.
var Verdicts = []Verdict{Passed, NeedsRevision, Rejected}

// Label returns the human-readable name of the verdict.
func (v Verdict) Label() string {
	switch v {
	case Passed:
		return "Passed"
	case NeedsRevision:
		return "Needs Revision"
	case Rejected:
		return "Rejected"
	default:
		return string(v)
	}
}

// Thresholds are the score cut-offs of a rubric.
type Thresholds struct {
	// Pass is the minimum score for Passed.
	Pass int `json:"pass"`
	// Revise is the lower bound of the Needs-Revision band shown in reports.
	// Error-free records scoring below it are still Needs-Revision.
	Revise int `json:"revise"`
}

// Classify maps an error flag and a score to a verdict.
func (t Thresholds) Classify(hasErrors bool, score int) Verdict {
	switch {
	case hasErrors:
		return Rejected
	case score >= t.Pass:
		return Passed
	default:
		return NeedsRevision
	}
}

// Result is the outcome of validating one record.
type Result struct {
	Score    int      `json:"score"`
	MaxScore int      `json:"max_score"`
	Verdict  Verdict  `json:"verdict"`
	Buckets  []Bucket `json:"buckets"`
}

// Findings returns every finding in rule order.
func (r Result) Findings() []Finding {
	var out []Finding
	for _, b := range r.Buckets {
		out = append(out, b.Findings...)
	}
	return out
}

// Errors returns the error messages in rule order.
func (r Result) Errors() []string {
	return r.messages(SeverityError)
}

// Warnings returns the warning messages in rule order.
func (r Result) Warnings() []string {
	return r.messages(SeverityWarning)
}

// HasErrors reports whether any rule raised an error.
func (r Result) HasErrors() bool {
	for _, b := range r.Buckets {
		for _, f := range b.Findings {
			if f.Severity == SeverityError {
				return true
			}
		}
	}
	return false
}

// Points returns the points awarded by the named rule, or 0 if it did not run.
func (r Result) Points(rule string) int {
	for _, b := range r.Buckets {
		if b.Rule == rule {
			return b.Points
		}
	}
	return 0
}

func (r Result) messages(sev Severity) []string {
	out := []string{}
	for _, f := range r.Findings() {
		if f.Severity == sev {
			out = append(out, f.Message)
		}
	}
	return out
}

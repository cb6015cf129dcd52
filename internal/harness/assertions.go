package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/atlas/internal/audit"
	"github.com/roach88/atlas/internal/dataset"
	"github.com/roach88/atlas/internal/validate"
)

// AssertionError is returned when an assertion fails.
// It includes the record findings to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Subject  string   // Record id, collection or file under test
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Findings []string // Findings of the record, if any
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Subject != "" {
		fmt.Fprintf(&buf, " (%s)", e.Subject)
	}
	buf.WriteByte('\n')
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Findings) > 0 {
		buf.WriteString("  Findings:\n")
		for _, f := range e.Findings {
			fmt.Fprintf(&buf, "    %s\n", f)
		}
	}

	return buf.String()
}

// findRecord returns the first record with id, searching events then patterns.
func findRecord(rep *audit.Report, id string) (audit.RecordResult, bool) {
	for _, s := range []audit.Summary{rep.Events, rep.Patterns} {
		for _, r := range s.Results {
			if r.ID == id {
				return r, true
			}
		}
	}
	return audit.RecordResult{}, false
}

func describeFindings(res validate.Result) []string {
	var out []string
	for _, f := range res.Findings() {
		out = append(out, fmt.Sprintf("%s: %s", f.Severity, f.Message))
	}
	return out
}

func assertVerdict(rep *audit.Report, a Assertion) error {
	rec, ok := findRecord(rep, a.Record)
	if !ok {
		return missingRecord(a)
	}
	if rec.Result.Verdict != a.Verdict {
		return &AssertionError{
			Type:     a.Type,
			Subject:  a.Record,
			Expected: a.Verdict.Label(),
			Actual:   fmt.Sprintf("%s (score %d/%d)", rec.Result.Verdict.Label(), rec.Result.Score, rec.Result.MaxScore),
			Findings: describeFindings(rec.Result),
		}
	}
	return nil
}

func assertScore(rep *audit.Report, a Assertion) error {
	rec, ok := findRecord(rep, a.Record)
	if !ok {
		return missingRecord(a)
	}
	if rec.Result.Score != *a.Score {
		return &AssertionError{
			Type:     a.Type,
			Subject:  a.Record,
			Expected: fmt.Sprintf("%d/%d", *a.Score, rec.Result.MaxScore),
			Actual:   fmt.Sprintf("%d/%d", rec.Result.Score, rec.Result.MaxScore),
			Findings: describeFindings(rec.Result),
		}
	}
	return nil
}

func assertFinding(rep *audit.Report, a Assertion) error {
	rec, ok := findRecord(rep, a.Record)
	if !ok {
		return missingRecord(a)
	}
	for _, f := range rec.Result.Findings() {
		if f.Severity == a.Severity && strings.Contains(f.Message, a.Contains) {
			return nil
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Subject:  a.Record,
		Expected: fmt.Sprintf("%s containing %q", a.Severity, a.Contains),
		Actual:   "no matching finding",
		Findings: describeFindings(rec.Result),
	}
}

func assertNoFindings(rep *audit.Report, a Assertion) error {
	rec, ok := findRecord(rep, a.Record)
	if !ok {
		return missingRecord(a)
	}
	var found []string
	for _, f := range rec.Result.Findings() {
		if f.Severity == a.Severity {
			found = append(found, f.Message)
		}
	}
	if len(found) > 0 {
		return &AssertionError{
			Type:     a.Type,
			Subject:  a.Record,
			Expected: fmt.Sprintf("no %s findings", a.Severity),
			Actual:   fmt.Sprintf("%d %s finding(s)", len(found), a.Severity),
			Findings: describeFindings(rec.Result),
		}
	}
	return nil
}

func assertSummary(rep *audit.Report, a Assertion) error {
	s := rep.Events
	if a.Collection == CollectionPatterns {
		s = rep.Patterns
	}

	checks := []struct {
		name string
		want *int
		got  int
	}{
		{"passed", a.Passed, s.Passed},
		{"needs_revision", a.NeedsRevision, s.NeedsRevision},
		{"rejected", a.Rejected, s.Rejected},
		{"total", a.Total, s.Total},
	}
	var expected, actual []string
	for _, c := range checks {
		if c.want == nil {
			continue
		}
		if *c.want != c.got {
			expected = append(expected, fmt.Sprintf("%s=%d", c.name, *c.want))
			actual = append(actual, fmt.Sprintf("%s=%d", c.name, c.got))
		}
	}
	if len(expected) > 0 {
		return &AssertionError{
			Type:     a.Type,
			Subject:  a.Collection,
			Expected: strings.Join(expected, " "),
			Actual:   strings.Join(actual, " "),
		}
	}
	return nil
}

func assertProblem(problems []dataset.Problem, a Assertion) error {
	for _, p := range problems {
		if p.Kind == a.Kind && p.Path == a.File && strings.Contains(p.Message, a.Contains) {
			return nil
		}
	}

	actual := "no problems"
	if len(problems) > 0 {
		lines := make([]string, len(problems))
		for i, p := range problems {
			lines[i] = p.String()
		}
		actual = strings.Join(lines, "; ")
	}
	expected := fmt.Sprintf("%s problem", a.Kind)
	if a.Contains != "" {
		expected += fmt.Sprintf(" containing %q", a.Contains)
	}
	return &AssertionError{
		Type:     a.Type,
		Subject:  a.File,
		Expected: expected,
		Actual:   actual,
	}
}

func assertOutcome(rep *audit.Report, a Assertion) error {
	if rep.OK() != *a.OK {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("ok=%t", *a.OK),
			Actual:   fmt.Sprintf("ok=%t (%d rejected, %d load problem(s))", rep.OK(), rep.Rejected(), len(rep.LoadFailures())),
		}
	}
	return nil
}

func missingRecord(a Assertion) error {
	return &AssertionError{
		Type:     a.Type,
		Subject:  a.Record,
		Expected: fmt.Sprintf("record %q in the report", a.Record),
		Actual:   "record not found",
	}
}

// EvaluateAssertions runs every assertion against the report and returns the
// failure messages in assertion order. problems must carry paths relative to
// the scenario data directory.
func EvaluateAssertions(rep *audit.Report, problems []dataset.Problem, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertVerdict:
			err = assertVerdict(rep, a)
		case AssertScore:
			err = assertScore(rep, a)
		case AssertFinding:
			err = assertFinding(rep, a)
		case AssertNoFindings:
			err = assertNoFindings(rep, a)
		case AssertSummary:
			err = assertSummary(rep, a)
		case AssertProblem:
			err = assertProblem(problems, a)
		case AssertOutcome:
			err = assertOutcome(rep, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/atlas/internal/audit"
	"github.com/roach88/atlas/internal/validate"
)

// Report symbols, one per verdict.
const (
	markPassed   = "✓"
	markRevision = "⚠️ "
	markRejected = "❌"
)

// reportWriter renders an audit report as console text.
type reportWriter struct {
	w     io.Writer
	quiet bool
}

func (r reportWriter) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

// write prints the full report, or only the summary and outcome when quiet.
func (r reportWriter) write(rep *audit.Report) {
	if !r.quiet {
		r.printf("=== AI Strategic Actions Atlas - Data Validation ===\n\n")
		r.registries(rep.Registries)
		r.collection("Event", "events", rep.Events)
		r.collection("Pattern", "patterns", rep.Patterns)
		r.problems(rep)
	}
	r.summary(rep)
	r.outcome(rep)
}

func (r reportWriter) registries(c audit.RegistryCounts) {
	r.printf("Loading canonical data...\n")
	r.printf("%s Loaded %d entities\n", markPassed, c.Entities)
	r.printf("%s Loaded %d stack layers\n", markPassed, c.StackLayers)
	r.printf("%s Loaded %d action types\n", markPassed, c.ActionTypes)
	if c.EntityClasses > 0 {
		r.printf("%s Loaded %d entity classes\n", markPassed, c.EntityClasses)
	}
	r.printf("\n")
}

func (r reportWriter) collection(label, plural string, s audit.Summary) {
	r.printf("Validating %s...\n", plural)
	r.printf("%s Loaded %d %s\n\n", markPassed, s.Total, plural)

	for _, rec := range s.Results {
		res := rec.Result
		line := fmt.Sprintf("%s %d: %q (Score: %d/%d)", label, rec.Index, rec.ID, res.Score, res.MaxScore)
		switch res.Verdict {
		case validate.Rejected:
			r.printf("%s %s\n", markRejected, line)
			for _, msg := range res.Errors() {
				r.printf("   Error: %s\n", msg)
			}
		case validate.NeedsRevision:
			r.printf("%s %s - NEEDS REVISION\n", markRevision, line)
		default:
			r.printf("%s %s\n", markPassed, line)
		}
		for _, msg := range res.Warnings() {
			r.printf("   Warning: %s\n", msg)
		}
	}
	if len(s.Results) > 0 {
		r.printf("\n")
	}
}

func (r reportWriter) problems(rep *audit.Report) {
	if len(rep.Problems) == 0 {
		return
	}
	r.printf("Load problems:\n")
	for _, p := range rep.Problems {
		r.printf("%s %s\n", markRevision, p)
	}
	r.printf("\n")
}

func (r reportWriter) summary(rep *audit.Report) {
	r.printf("=== Validation Summary ===\n\n")
	for _, part := range []struct {
		title string
		sum   audit.Summary
	}{
		{"Events", rep.Events},
		{"Patterns", rep.Patterns},
	} {
		r.printf("%s:\n", part.title)
		r.printf("  %s Passed (%s): %d\n", markPassed, part.sum.Band(validate.Passed), part.sum.Passed)
		r.printf("  %s Needs Revision (%s): %d\n", markRevision, part.sum.Band(validate.NeedsRevision), part.sum.NeedsRevision)
		r.printf("  %s Rejected (%s): %d\n", markRejected, part.sum.Band(validate.Rejected), part.sum.Rejected)
		r.printf("  Total: %d\n\n", part.sum.Total)
	}
	if n := len(rep.Problems); n > 0 {
		r.printf("Load problems: %d\n\n", n)
	}
}

func (r reportWriter) outcome(rep *audit.Report) {
	switch {
	case rep.OK():
		r.printf("%s All validation checks passed! Dataset is ready for UI implementation.\n", markPassed)
	case rep.Rejected() > 0:
		r.printf("%s Validation failed. Fix errors before proceeding to UI implementation.\n", markRejected)
	default:
		r.printf("%s Validation failed. Fix load problems before proceeding (strict mode).\n", markRejected)
	}
}

// failureMessage summarises why a report is not OK.
func failureMessage(rep *audit.Report) (code, message string) {
	if n := rep.Rejected(); n > 0 {
		return ErrCodeRejected, fmt.Sprintf("validation failed: %d rejected record(s)", n)
	}
	failures := rep.LoadFailures()
	paths := make([]string, 0, len(failures))
	for _, p := range failures {
		paths = append(paths, p.Path)
	}
	return ErrCodeLoadFailed, fmt.Sprintf("validation failed: %d load problem(s) in strict mode (%s)",
		len(failures), strings.Join(paths, ", "))
}

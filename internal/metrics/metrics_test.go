package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atlas/internal/audit"
	"github.com/roach88/atlas/internal/dataset"
	"github.com/roach88/atlas/internal/validate"
)

func result(score int, verdict validate.Verdict, findings ...validate.Finding) audit.RecordResult {
	return audit.RecordResult{Result: validate.Result{
		Score:   score,
		Verdict: verdict,
		Buckets: []validate.Bucket{{Rule: "r", Findings: findings}},
	}}
}

func sampleReport() *audit.Report {
	warn := validate.Finding{Severity: validate.SeverityWarning, Message: "w"}
	fail := validate.Finding{Severity: validate.SeverityError, Message: "e"}
	return &audit.Report{
		StartedAt: time.Unix(1_750_000_000, 0).UTC(),
		Duration:  1500 * time.Millisecond,
		Problems: []dataset.Problem{
			{Kind: dataset.ProblemParse}, {Kind: dataset.ProblemParse}, {Kind: dataset.ProblemMissing},
		},
		Events: audit.Summary{
			Kind: "event", Total: 3, Passed: 2, Rejected: 1,
			Results: []audit.RecordResult{
				result(10, validate.Passed),
				result(8, validate.Passed, warn),
				result(9, validate.Rejected, fail, warn),
			},
		},
		Patterns: audit.Summary{
			Kind: "pattern", Total: 1, NeedsRevision: 1,
			Results: []audit.RecordResult{result(7, validate.NeedsRevision, warn)},
		},
	}
}

func TestObserve(t *testing.T) {
	r := New()
	r.Observe(sampleReport())

	assert.Equal(t, 2.0, testutil.ToFloat64(r.records.WithLabelValues("event", "passed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.records.WithLabelValues("event", "needs_revision")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.records.WithLabelValues("event", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.records.WithLabelValues("pattern", "needs_revision")))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.findings.WithLabelValues("event", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.findings.WithLabelValues("event", "warning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.findings.WithLabelValues("pattern", "warning")))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.problems.WithLabelValues("parse")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.problems.WithLabelValues("missing")))

	assert.Equal(t, 1.5, testutil.ToFloat64(r.duration))
	assert.Equal(t, 1_750_000_000.0, testutil.ToFloat64(r.lastRun))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.ok))

	assert.Equal(t, 2, testutil.CollectAndCount(r.score))
}

func TestObserveOK(t *testing.T) {
	rep := sampleReport()
	rep.Events.Rejected = 0

	r := New()
	r.Observe(rep)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.ok))
}

func TestScoreHistogram(t *testing.T) {
	rep := sampleReport()
	rep.Events = audit.Summary{Kind: "event"}

	r := New()
	r.Observe(rep)

	expected := `
# HELP atlas_record_score Distribution of record scores by kind
# TYPE atlas_record_score histogram
atlas_record_score_bucket{kind="pattern",le="0"} 0
atlas_record_score_bucket{kind="pattern",le="1"} 0
atlas_record_score_bucket{kind="pattern",le="2"} 0
atlas_record_score_bucket{kind="pattern",le="3"} 0
atlas_record_score_bucket{kind="pattern",le="4"} 0
atlas_record_score_bucket{kind="pattern",le="5"} 0
atlas_record_score_bucket{kind="pattern",le="6"} 0
atlas_record_score_bucket{kind="pattern",le="7"} 1
atlas_record_score_bucket{kind="pattern",le="8"} 1
atlas_record_score_bucket{kind="pattern",le="9"} 1
atlas_record_score_bucket{kind="pattern",le="10"} 1
atlas_record_score_bucket{kind="pattern",le="11"} 1
atlas_record_score_bucket{kind="pattern",le="12"} 1
atlas_record_score_bucket{kind="pattern",le="+Inf"} 1
atlas_record_score_sum{kind="pattern"} 7
atlas_record_score_count{kind="pattern"} 1
`
	err := testutil.CollectAndCompare(r.score, strings.NewReader(expected), "atlas_record_score")
	require.NoError(t, err)
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.Observe(sampleReport())
	path := filepath.Join(t.TempDir(), "atlas.prom")

	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `atlas_records{kind="event",verdict="passed"} 2`)
	assert.Contains(t, text, "atlas_run_ok 0")
	assert.Contains(t, text, `atlas_load_problems{kind="parse"} 2`)
}

func TestWriteTextfileBadPath(t *testing.T) {
	err := New().WriteTextfile(filepath.Join(t.TempDir(), "missing", "atlas.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write metrics")
}

// Package metrics exports the outcome of an audit run as Prometheus metrics.
//
// The tool is a one-shot CLI, so metrics are written to a node_exporter
// textfile instead of being served.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/atlas/internal/audit"
	"github.com/roach88/atlas/internal/validate"
)

const namespace = "atlas"

// Recorder holds the metrics of one run on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	records  *prometheus.GaugeVec
	findings *prometheus.GaugeVec
	problems *prometheus.GaugeVec
	score    *prometheus.HistogramVec
	duration prometheus.Gauge
	lastRun  prometheus.Gauge
	ok       prometheus.Gauge
}

// New creates a Recorder with every metric registered.
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.records = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "records",
		Help:      "Records validated in the last run by kind and verdict",
	}, []string{"kind", "verdict"})
	r.findings = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "findings",
		Help:      "Findings raised in the last run by kind and severity",
	}, []string{"kind", "severity"})
	r.problems = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "load_problems",
		Help:      "Load problems reported in the last run by problem kind",
	}, []string{"kind"})
	r.score = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "record_score",
		Help:      "Distribution of record scores by kind",
		Buckets:   prometheus.LinearBuckets(0, 1, 13),
	}, []string{"kind"})
	r.duration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of the last run",
	})
	r.lastRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the last run",
	})
	r.ok = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_ok",
		Help:      "1 when the last run passed, 0 otherwise",
	})

	r.registry.MustRegister(r.records, r.findings, r.problems, r.score, r.duration, r.lastRun, r.ok)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe records rep.
func (r *Recorder) Observe(rep *audit.Report) {
	for _, s := range []audit.Summary{rep.Events, rep.Patterns} {
		for _, v := range validate.Verdicts {
			r.records.WithLabelValues(s.Kind, string(v)).Set(float64(s.Count(v)))
		}
		var errs, warns int
		for _, res := range s.Results {
			r.score.WithLabelValues(s.Kind).Observe(float64(res.Result.Score))
			errs += len(res.Result.Errors())
			warns += len(res.Result.Warnings())
		}
		r.findings.WithLabelValues(s.Kind, string(validate.SeverityError)).Set(float64(errs))
		r.findings.WithLabelValues(s.Kind, string(validate.SeverityWarning)).Set(float64(warns))
	}

	counts := make(map[string]int)
	for _, p := range rep.Problems {
		counts[string(p.Kind)]++
	}
	for kind, n := range counts {
		r.problems.WithLabelValues(kind).Set(float64(n))
	}

	r.duration.Set(rep.Duration.Seconds())
	r.lastRun.Set(float64(rep.StartedAt.Unix()))
	if rep.OK() {
		r.ok.Set(1)
	} else {
		r.ok.Set(0)
	}
}

// WriteTextfile writes the metrics in the text exposition format. The file is
// replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/atlas/internal/audit"
	"github.com/roach88/atlas/internal/dataset"
	"github.com/roach88/atlas/internal/validate"
)

// Epoch is the frozen start time of every scenario run.
var Epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

type frozenClock struct{}

func (frozenClock) Now() time.Time { return Epoch }

type scenarioID string

func (id scenarioID) Generate() string { return string(id) }

// Run executes a scenario: it writes the dataset to a temporary directory,
// audits it and evaluates the assertions against the report.
//
// A non-nil error means the scenario could not be executed. Failed
// assertions are reported on the Result.
func Run(ctx context.Context, scenario *Scenario, log *zap.Logger) (res *Result, err error) {
	if log == nil {
		log = zap.NewNop()
	}

	dir, err := os.MkdirTemp("", "atlas-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			err = errors.Join(err, fmt.Errorf("remove data directory: %w", rmErr))
		}
	}()

	if err := scenario.Dataset.WriteTo(dir); err != nil {
		return nil, fmt.Errorf("write dataset: %w", err)
	}

	opts := audit.Options{
		Strict: scenario.Strict,
		Logger: log.With(zap.String("scenario", scenario.Name)),
		Clock:  frozenClock{},
		IDs:    scenarioID("scenario-" + scenario.Name),
	}
	if scenario.Years != nil {
		opts.Years = validate.YearRange{Min: scenario.Years.Min, Max: scenario.Years.Max}
	}

	rep, err := audit.Run(ctx, audit.SourcesIn(dir), opts)
	if err != nil {
		return nil, err
	}

	rel := relativeProblems(dir, rep.Problems)
	snap := Snapshot{
		Scenario: scenario.Name,
		OK:       rep.OK(),
		Problems: make([]string, len(rel)),
		Events:   snapshotRecords(rep.Events),
		Patterns: snapshotRecords(rep.Patterns),
	}
	for i, p := range rel {
		snap.Problems[i] = p.String()
	}

	result := NewResult(rep, snap)
	for _, msg := range EvaluateAssertions(rep, rel, scenario.Assertions) {
		result.AddError(msg)
	}
	log.Debug("scenario finished",
		zap.String("scenario", scenario.Name),
		zap.Bool("pass", result.Pass),
		zap.Int("failures", len(result.Errors)))

	return result, nil
}

// relativeProblems rewrites problem paths relative to dir with forward slashes.
func relativeProblems(dir string, problems []dataset.Problem) []dataset.Problem {
	out := make([]dataset.Problem, len(problems))
	for i, p := range problems {
		if rel, err := filepath.Rel(dir, p.Path); err == nil {
			p.Path = filepath.ToSlash(rel)
		}
		out[i] = p
	}
	return out
}

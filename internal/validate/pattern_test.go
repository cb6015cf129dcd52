package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/atlas/internal/testutil"
)

func patternCtx() PatternContext {
	return PatternContext{Events: testutil.EventIDs("evt-001", "evt-002", "evt-003", "evt-004", "evt-005")}
}

func TestValidatePatternPerfectScore(t *testing.T) {
	res := ValidatePattern(testutil.Pattern(t), patternCtx())

	assert.Empty(t, res.Errors())
	assert.Empty(t, res.Warnings())
	assert.Equal(t, 12, res.Score)
	assert.Equal(t, 12, res.MaxScore)
	assert.Equal(t, Passed, res.Verdict)
}

func TestValidatePatternMissingRequiredFields(t *testing.T) {
	for _, field := range []string{"id", "title", "pattern_type", "thesis", "confidence", "confidence_reasoning"} {
		t.Run(field, func(t *testing.T) {
			res := ValidatePattern(testutil.Pattern(t, testutil.Without(field)), patternCtx())

			assert.Equal(t, []string{"Missing required field: " + field}, res.Errors())
			assert.Equal(t, Rejected, res.Verdict)
		})
	}
}

func TestValidatePatternWrongFieldTypes(t *testing.T) {
	res := ValidatePattern(testutil.Pattern(t, testutil.With("confidence", 0.8)), patternCtx())

	assert.Equal(t, []string{"Invalid type for field: confidence (expected string)"}, res.Errors())
	assert.Equal(t, Rejected, res.Verdict)
}

func TestValidatePatternIdempotent(t *testing.T) {
	p := testutil.Pattern(t, testutil.With("supporting_events", []any{"evt-001", "evt-404", "evt-003"}))
	ctx := patternCtx()

	assert.Equal(t, ValidatePattern(p, ctx), ValidatePattern(p, ctx))
}

// =============================================================================
// Hypothesis framing
// =============================================================================

func TestHypothesisFraming(t *testing.T) {
	tests := []struct {
		name    string
		thesis  string
		points  int
		error   string
		warning string
	}{
		{
			name:   "hedged",
			thesis: "Labs appear to integrate vertically; the data suggests a shift.",
			points: 3,
		},
		{
			name:    "hedged but causal",
			thesis:  "Evidence suggests the cuts happened because of export controls.",
			points:  2,
			warning: "Thesis has hypothesis language but also contains causal words",
		},
		{
			name:    "neither",
			thesis:  "Labs are building their own chips.",
			points:  1,
			warning: `Thesis lacks explicit hypothesis language ("appears to", "suggests", etc.)`,
		},
		{
			name:   "causal without hedging",
			thesis: "Export controls caused the labs to build custom chips.",
			points: 0,
			error:  "Thesis contains causal claims without hypothesis language",
		},
		{
			name:   "hedging is case-insensitive",
			thesis: "The Record SUGGESTS consolidation.",
			points: 3,
		},
		{
			name:   "causal words are case-insensitive",
			thesis: "This PROVES consolidation.",
			points: 0,
			error:  "Thesis contains causal claims without hypothesis language",
		},
		{
			name:   "causal words match whole words only",
			thesis: "The shift appears to be driven by what improves margins.",
			points: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidatePattern(testutil.Pattern(t, testutil.With("thesis", tt.thesis)), patternCtx())

			assert.Equal(t, tt.points, res.Points("hypothesis"))
			if tt.error != "" {
				assert.Equal(t, []string{tt.error}, res.Errors())
				assert.Equal(t, Rejected, res.Verdict)
			} else {
				assert.Empty(t, res.Errors())
			}
			if tt.warning != "" {
				assert.Contains(t, res.Warnings(), tt.warning)
			}
		})
	}
}

// =============================================================================
// Support, counter-signals, justification
// =============================================================================

func TestSupportScoring(t *testing.T) {
	tests := []struct {
		events []any
		points int
	}{
		{[]any{"evt-001", "evt-002", "evt-003", "evt-004", "evt-005"}, 3},
		{[]any{"evt-001", "evt-002", "evt-003", "evt-004"}, 2},
		{[]any{"evt-001", "evt-002", "evt-003"}, 1},
	}

	for _, tt := range tests {
		res := ValidatePattern(testutil.Pattern(t, testutil.With("supporting_events", tt.events)), patternCtx())
		assert.Equal(t, tt.points, res.Points("support"), "%d events", len(tt.events))
		assert.Empty(t, res.Errors())
	}
}

func TestSupportThreeEventsNoCounterSignals(t *testing.T) {
	res := ValidatePattern(testutil.Pattern(t,
		testutil.With("supporting_events", []any{"evt-001", "evt-002", "evt-003"}),
		testutil.Without("counter_signals"),
	), patternCtx())

	assert.Equal(t, 1, res.Points("support"))
	assert.Equal(t, 0, res.Points("counter_signals"))
	assert.Equal(t, []string{"No counter-signals listed - ensure epistemic discipline"}, res.Warnings())
	assert.Equal(t, 8, res.Score)
	assert.Equal(t, NeedsRevision, res.Verdict)
}

func TestSupportInsufficient(t *testing.T) {
	res := ValidatePattern(testutil.Pattern(t, testutil.With("supporting_events", []any{"evt-001", "evt-002"})), patternCtx())

	assert.Equal(t, []string{"Insufficient supporting events (2, minimum 3 required)"}, res.Errors())
	assert.Equal(t, 0, res.Points("support"))
	assert.Equal(t, Rejected, res.Verdict)
}

func TestSupportMissingArray(t *testing.T) {
	for name, mod := range map[string]testutil.Mod{
		"absent": testutil.Without("supporting_events"),
		"string": testutil.With("supporting_events", "evt-001"),
	} {
		t.Run(name, func(t *testing.T) {
			res := ValidatePattern(testutil.Pattern(t, mod), patternCtx())
			assert.Equal(t, []string{"Missing or invalid supporting_events array"}, res.Errors())
		})
	}
}

func TestSupportDanglingReferencesAreWarnings(t *testing.T) {
	res := ValidatePattern(testutil.Pattern(t,
		testutil.With("supporting_events", []any{"evt-001", "evt-404", "evt-003", "evt-500"}),
	), patternCtx())

	assert.Empty(t, res.Errors())
	assert.Equal(t, []string{
		`supporting_event "evt-404" not found in events dataset`,
		`supporting_event "evt-500" not found in events dataset`,
	}, res.Warnings())
	assert.Equal(t, 2, res.Points("support"))
	assert.Equal(t, Passed, res.Verdict)
}

func TestCounterSignals(t *testing.T) {
	tests := []struct {
		name    string
		mod     testutil.Mod
		points  int
		warning bool
	}{
		{"two", testutil.With("counter_signals", []any{"a", "b"}), 2, false},
		{"structured entries", testutil.With("counter_signals", []any{map[string]any{"note": "a"}, 3, "c"}), 2, false},
		{"one", testutil.With("counter_signals", []any{"a"}), 1, false},
		{"empty", testutil.With("counter_signals", []any{}), 0, true},
		{"absent", testutil.Without("counter_signals"), 0, true},
		{"not an array", testutil.With("counter_signals", "a"), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidatePattern(testutil.Pattern(t, tt.mod), patternCtx())

			assert.Equal(t, tt.points, res.Points("counter_signals"))
			assert.Empty(t, res.Errors())
			assert.Equal(t, tt.warning, len(res.Warnings()) == 1)
		})
	}
}

func TestJustification(t *testing.T) {
	res := ValidatePattern(testutil.Pattern(t, testutil.With("confidence_reasoning", "Two sources.")), patternCtx())
	assert.Equal(t, 1, res.Points("justification"))
	assert.Equal(t, []string{"Confidence reasoning is brief - provide more detail"}, res.Warnings())

	res = ValidatePattern(testutil.Pattern(t, testutil.With("confidence_reasoning", strings.Repeat("x", 100))), patternCtx())
	assert.Equal(t, 2, res.Points("justification"))

	res = ValidatePattern(testutil.Pattern(t, testutil.With("confidence_reasoning", "")), patternCtx())
	assert.Equal(t, 0, res.Points("justification"))
	assert.Equal(t, []string{"Missing required field: confidence_reasoning"}, res.Errors())
}

// =============================================================================
// Time bounds, insight, enums
// =============================================================================

func TestTimeBounds(t *testing.T) {
	for name, mod := range map[string]testutil.Mod{
		"absent":     testutil.Without("time_range"),
		"start only": testutil.With("time_range", map[string]any{"start": "2023-01"}),
		"empty end":  testutil.With("time_range", map[string]any{"start": "2023-01", "end": ""}),
		"not object": testutil.With("time_range", "2023-2024"),
	} {
		t.Run(name, func(t *testing.T) {
			res := ValidatePattern(testutil.Pattern(t, mod), patternCtx())

			assert.Equal(t, 0, res.Points("time_bounds"))
			assert.Equal(t, []string{"Pattern lacks explicit time_range (start/end dates)"}, res.Warnings())
			assert.Equal(t, 11, res.Score)
			assert.Equal(t, Passed, res.Verdict)
		})
	}
}

func TestInsight(t *testing.T) {
	thesis := "Evidence suggests " + strings.Repeat("x", 182)
	res := ValidatePattern(testutil.Pattern(t, testutil.With("thesis", thesis)), patternCtx())
	assert.Equal(t, 1, res.Points("insight"))

	res = ValidatePattern(testutil.Pattern(t, testutil.With("thesis", thesis[:199])), patternCtx())
	assert.Equal(t, 0, res.Points("insight"))
	assert.Equal(t, []string{"Thesis may be too brief to provide strategic insight"}, res.Warnings())
}

func TestPatternEnums(t *testing.T) {
	res := ValidatePattern(testutil.Pattern(t,
		testutil.With("pattern_type", "trend"),
		testutil.With("confidence", "certain"),
	), patternCtx())

	assert.Equal(t, []string{
		`Invalid pattern_type: "trend"`,
		`Invalid confidence: "certain" (must be high/medium/low)`,
	}, res.Errors())
	assert.Equal(t, Rejected, res.Verdict)
}

func TestPatternVerdictBands(t *testing.T) {
	// 1 + 2 + 1 + 1 + 0 + 1 = 6
	res := ValidatePattern(testutil.Pattern(t,
		testutil.With("thesis", "Labs are building their own chips to control supply. "+strings.Repeat("y", 160)),
		testutil.With("supporting_events", []any{"evt-001", "evt-002", "evt-003", "evt-004"}),
		testutil.With("counter_signals", []any{"a"}),
		testutil.With("confidence_reasoning", "Thin."),
		testutil.Without("time_range"),
	), patternCtx())

	assert.Empty(t, res.Errors())
	assert.Equal(t, 6, res.Score)
	assert.Equal(t, NeedsRevision, res.Verdict)
}

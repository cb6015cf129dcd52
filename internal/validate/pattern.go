package validate

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/atlas/internal/model"
	"github.com/roach88/atlas/internal/registry"
)

// PatternContext is the read-only data pattern rules consult.
type PatternContext struct {
	// Events resolves supporting event ids. Misses are warnings only.
	Events registry.Lookup
}

// Pattern rubric constants.
const (
	PatternPassScore       = 9
	PatternReviseScore     = 6
	MinSupportingEvents    = 3
	MinReasoningLength     = 100
	MinInsightThesisLength = 200
)

// HedgingPhrases mark a thesis as a hypothesis rather than a finding.
var HedgingPhrases = []string{
	"appears to",
	"suggests",
	"may indicate",
	"evidence shows",
	"seems to",
	"indicates",
}

// causalLanguage matches whole-word causal claims.
var causalLanguage = regexp.MustCompile(`(?i)\b(caused|because|proves)\b`)

// PatternSchema is the pattern rubric.
var PatternSchema = Schema[model.Pattern, PatternContext]{
	Kind:       "pattern",
	Thresholds: Thresholds{Pass: PatternPassScore, Revise: PatternReviseScore},
	Rules: []Rule[model.Pattern, PatternContext]{
		{Name: "required", Max: 0, Description: "required fields are present and strings", Check: checkPatternRequired},
		{Name: "hypothesis", Max: 3, Description: "3: hedged thesis; 2: hedged but causal; 1: neither; causal without hedging is an error", Check: checkHypothesis},
		{Name: "support", Max: 3, Description: "3: 5+ supporting events; 2: 4; 1: 3; fewer is an error", Check: checkSupport},
		{Name: "counter_signals", Max: 2, Description: "2: 2+ counter-signals; 1: one", Check: checkCounterSignals},
		{Name: "justification", Max: 2, Description: "2: confidence reasoning of 100+ characters; 1: shorter; absent is an error", Check: checkJustification},
		{Name: "time_bounds", Max: 1, Description: "time_range has start and end", Check: checkTimeBounds},
		{Name: "insight", Max: 1, Description: "thesis of 200+ characters", Check: checkInsight},
		{Name: "enums", Max: 0, Description: "pattern_type and confidence use known values", Check: checkPatternEnums},
	},
}

// ValidatePattern scores one pattern.
func ValidatePattern(p *model.Pattern, ctx PatternContext) Result {
	return PatternSchema.Validate(p, ctx)
}

func checkPatternRequired(p *model.Pattern, _ PatternContext) Bucket {
	var b Bucket
	for _, f := range []model.NamedText{
		{Name: "id", Text: p.ID},
		{Name: "title", Text: p.Title},
		{Name: "pattern_type", Text: p.PatternType},
		{Name: "thesis", Text: p.Thesis},
		{Name: "confidence", Text: p.Confidence},
	} {
		requireText(&b, f)
	}
	checkTypes(&b, p.TextFields())
	return b
}

// hasHedging reports whether thesis contains a hedging phrase, ignoring case.
func hasHedging(thesis string) bool {
	folded := cases.Fold().String(thesis)
	for _, phrase := range HedgingPhrases {
		if strings.Contains(folded, phrase) {
			return true
		}
	}
	return false
}

func checkHypothesis(p *model.Pattern, _ PatternContext) Bucket {
	var b Bucket
	if p.Thesis.Missing() {
		return b
	}
	thesis := p.Thesis.String()
	hedged := hasHedging(thesis)
	causal := causalLanguage.MatchString(thesis)

	switch {
	case hedged && !causal:
		b.Points = 3
	case hedged:
		b.Points = 2
		b.warnf("Thesis has hypothesis language but also contains causal words")
	case !causal:
		b.Points = 1
		b.warnf(`Thesis lacks explicit hypothesis language ("appears to", "suggests", etc.)`)
	default:
		b.errorf("Thesis contains causal claims without hypothesis language")
	}
	return b
}

func checkSupport(p *model.Pattern, ctx PatternContext) Bucket {
	var b Bucket
	if !p.SupportingEvents.IsArray() {
		b.errorf("Missing or invalid supporting_events array")
		return b
	}

	count := p.SupportingEvents.Len()
	switch {
	case count >= 5:
		b.Points = 3
	case count == 4:
		b.Points = 2
	case count == MinSupportingEvents:
		b.Points = 1
	default:
		b.errorf("Insufficient supporting events (%d, minimum %d required)", count, MinSupportingEvents)
	}

	for _, id := range p.SupportingEvents.Items {
		if !ctx.Events.Has(id) {
			b.warnf("supporting_event %q not found in events dataset", id)
		}
	}
	return b
}

func checkCounterSignals(p *model.Pattern, _ PatternContext) Bucket {
	var b Bucket
	n := 0
	if p.CounterSignals.IsArray() {
		n = p.CounterSignals.Len()
	}
	switch {
	case n >= 2:
		b.Points = 2
	case n == 1:
		b.Points = 1
	default:
		b.warnf("No counter-signals listed - ensure epistemic discipline")
	}
	return b
}

func checkJustification(p *model.Pattern, _ PatternContext) Bucket {
	var b Bucket
	if p.ConfidenceReasoning.Missing() {
		b.errorf("Missing required field: confidence_reasoning")
		return b
	}
	if model.NormalizedLength(p.ConfidenceReasoning.String()) >= MinReasoningLength {
		b.Points = 2
		return b
	}
	b.Points = 1
	b.warnf("Confidence reasoning is brief - provide more detail")
	return b
}

func checkTimeBounds(p *model.Pattern, _ PatternContext) Bucket {
	var b Bucket
	if p.TimeRange.Bounded() {
		b.Points = 1
		return b
	}
	b.warnf("Pattern lacks explicit time_range (start/end dates)")
	return b
}

func checkInsight(p *model.Pattern, _ PatternContext) Bucket {
	var b Bucket
	if model.NormalizedLength(p.Thesis.String()) >= MinInsightThesisLength {
		b.Points = 1
		return b
	}
	b.warnf("Thesis may be too brief to provide strategic insight")
	return b
}

func checkPatternEnums(p *model.Pattern, _ PatternContext) Bucket {
	var b Bucket
	if v := p.PatternType; !v.Missing() && !v.Invalid && !model.PatternType(v.Value).Valid() {
		b.errorf("Invalid pattern_type: %q", v.Value)
	}
	if v := p.Confidence; !v.Missing() && !v.Invalid && !model.PatternConfidence(v.Value).Valid() {
		b.errorf("Invalid confidence: %q (must be %s)", v.Value, model.JoinValues(model.PatternConfidences))
	}
	return b
}

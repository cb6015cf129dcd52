package validate

import (
	"fmt"
	"strconv"

	"github.com/roach88/atlas/internal/model"
	"github.com/roach88/atlas/internal/registry"
)

// YearRange is the inclusive span of calendar years events may fall in.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// DefaultYears is the project range of the atlas.
var DefaultYears = YearRange{Min: 2023, Max: 2025}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.Min && year <= r.Max
}

func (r YearRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// EventContext is the read-only reference data event rules consult.
type EventContext struct {
	Entities    registry.Lookup
	StackLayers registry.Lookup
	ActionTypes registry.Lookup
	Years       YearRange
}

// NewEventContext builds a context from a registry set.
func NewEventContext(set *registry.Set, years YearRange) EventContext {
	return EventContext{
		Entities:    set.Entities,
		StackLayers: set.StackLayers,
		ActionTypes: set.ActionTypes,
		Years:       years,
	}
}

// Event rubric constants.
const (
	EventPassScore       = 7
	EventReviseScore     = 5
	MaxDescriptionLength = 500
)

// EventSchema is the event rubric.
var EventSchema = Schema[model.Event, EventContext]{
	Kind:       "event",
	Thresholds: Thresholds{Pass: EventPassScore, Revise: EventReviseScore},
	Rules: []Rule[model.Event, EventContext]{
		{Name: "required", Max: 0, Description: "required fields are present and strings", Check: checkEventRequired},
		{Name: "evidence", Max: 3, Description: "3: primary source and 2+ sources; 2: primary or 2+ credible-secondary; 1: one credible-secondary", Check: checkEvidence},
		{Name: "timestamp", Max: 2, Description: "2: exact date; 1: month or quarter; date year within the allowed range", Check: checkTimestamp},
		{Name: "classification", Max: 2, Description: "entity_id, action_type and every stack layer resolve (all or nothing)", Check: checkClassification},
		{Name: "relevance", Max: 2, Description: "2: high impact; 1: medium impact", Check: checkRelevance},
		{Name: "clarity", Max: 1, Description: fmt.Sprintf("description is at most %d characters", MaxDescriptionLength), Check: checkClarity},
		{Name: "enums", Max: 0, Description: "impact_level, confidence and date_precision use known values", Check: checkEventEnums},
	},
}

// ValidateEvent scores one event.
func ValidateEvent(e *model.Event, ctx EventContext) Result {
	return EventSchema.Validate(e, ctx)
}

func checkEventRequired(e *model.Event, _ EventContext) Bucket {
	var b Bucket
	for _, f := range []model.NamedText{
		{Name: "id", Text: e.ID},
		{Name: "title", Text: e.Title},
		{Name: "entity_id", Text: e.EntityID},
		{Name: "date", Text: e.Date},
		{Name: "action_type", Text: e.ActionType},
	} {
		requireText(&b, f)
	}
	switch {
	case !e.StackLayers.IsArray():
		b.errorf("Missing or invalid stack_layers (must be array)")
	case e.StackLayers.Len() == 0:
		b.errorf("stack_layers must not be empty")
	}
	for _, f := range []model.NamedText{
		{Name: "impact_level", Text: e.ImpactLevel},
		{Name: "description", Text: e.Description},
		{Name: "confidence", Text: e.Confidence},
	} {
		requireText(&b, f)
	}
	checkTypes(&b, e.TextFields())
	return b
}

func checkEvidence(e *model.Event, _ EventContext) Bucket {
	var b Bucket
	if !e.EvidenceSources.IsArray() {
		b.errorf("Missing or invalid evidence_sources array")
		return b
	}

	primary, credible := 0, 0
	for _, s := range e.EvidenceSources.Items {
		switch s.Tier() {
		case model.CredibilityPrimary:
			primary++
		case model.CredibilityCredibleSecondary:
			credible++
		}
	}

	switch {
	case primary >= 1 && e.EvidenceSources.Len() >= 2:
		b.Points = 3
	case primary >= 1 || credible >= 2:
		b.Points = 2
	case credible >= 1:
		b.Points = 1
	}
	if b.Points <= 1 {
		b.warnf("Evidence quality is low (unverified sources only)")
	}
	return b
}

func checkTimestamp(e *model.Event, ctx EventContext) Bucket {
	var b Bucket
	if e.Date.Missing() {
		return b
	}

	switch model.DatePrecision(e.DatePrecision.String()) {
	case model.PrecisionExact:
		b.Points = 2
	case model.PrecisionMonth, model.PrecisionQuarter:
		b.Points = 1
	default:
		b.warnf(`Date precision is not specified or is "year" (low precision)`)
	}

	if e.Date.Invalid {
		return b
	}
	date := e.Date.Value
	year, ok := yearPrefix(date)
	if !ok {
		b.errorf("Date %s does not start with a 4-digit year", date)
		return b
	}
	if !ctx.Years.Contains(year) {
		b.errorf("Date %s is outside project range (%s)", date, ctx.Years)
	}
	return b
}

// yearPrefix parses the leading 4-digit year of an ISO date ("2024",
// "2024-06", "2024-06-01").
func yearPrefix(date string) (int, bool) {
	if len(date) < 4 {
		return 0, false
	}
	if len(date) > 4 && date[4] != '-' {
		return 0, false
	}
	for _, c := range date[:4] {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

func checkClassification(e *model.Event, ctx EventContext) Bucket {
	var b Bucket
	resolved := true

	if e.EntityID.Missing() {
		resolved = false
	} else if !ctx.Entities.Has(e.EntityID.Value) {
		b.errorf("entity_id %q not found in %s", e.EntityID.Value, ctx.Entities.Name())
		resolved = false
	}

	if e.ActionType.Missing() {
		resolved = false
	} else if !ctx.ActionTypes.Has(e.ActionType.Value) {
		b.errorf("action_type %q not found in %s", e.ActionType.Value, ctx.ActionTypes.Name())
		resolved = false
	}

	if !e.StackLayers.IsArray() || e.StackLayers.Len() == 0 {
		resolved = false
	}
	for _, layer := range e.StackLayers.Items {
		if !ctx.StackLayers.Has(layer) {
			b.errorf("stack_layer %q not found in %s", layer, ctx.StackLayers.Name())
			resolved = false
		}
	}

	if resolved {
		b.Points = 2
	}
	return b
}

func checkRelevance(e *model.Event, _ EventContext) Bucket {
	var b Bucket
	switch model.ImpactLevel(e.ImpactLevel.String()) {
	case model.ImpactHigh:
		b.Points = 2
	case model.ImpactMedium:
		b.Points = 1
		b.warnf(`Impact level is "medium" - ensure event is strategically significant`)
	case model.ImpactLow:
		b.warnf(`Impact level is "low" - consider if this event belongs in the atlas`)
	}
	return b
}

func checkClarity(e *model.Event, _ EventContext) Bucket {
	var b Bucket
	if e.Description.Missing() {
		return b
	}
	n := model.NormalizedLength(e.Description.String())
	switch {
	case n > MaxDescriptionLength:
		b.warnf("Description is too long (%d chars, max %d)", n, MaxDescriptionLength)
	case n > 0:
		b.Points = 1
	}
	return b
}

func checkEventEnums(e *model.Event, _ EventContext) Bucket {
	var b Bucket
	if v := e.ImpactLevel; !v.Missing() && !v.Invalid && !model.ImpactLevel(v.Value).Valid() {
		b.errorf("Invalid impact_level: %q (must be %s)", v.Value, model.JoinValues(model.ImpactLevels))
	}
	if v := e.Confidence; !v.Missing() && !v.Invalid && !model.EventConfidence(v.Value).Valid() {
		b.errorf("Invalid confidence: %q (must be %s)", v.Value, model.JoinValues(model.EventConfidences))
	}
	if v := e.DatePrecision; !v.Missing() && !v.Invalid && !model.DatePrecision(v.Value).Valid() {
		b.errorf("Invalid date_precision: %q", v.Value)
	}
	return b
}

// requireText raises the missing-field error for f.
func requireText(b *Bucket, f model.NamedText) {
	if f.Text.Missing() {
		b.errorf("Missing required field: %s", f.Name)
	}
}

// checkTypes raises one error per present field that is not a JSON string.
func checkTypes(b *Bucket, fields []model.NamedText) {
	for _, f := range fields {
		if f.Text.Invalid {
			b.errorf("Invalid type for field: %s (expected string)", f.Name)
		}
	}
}

package model

import (
	"github.com/goccy/go-json"
)

// Entity is a company or organisation that events are attributed to.
type Entity struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	DisplayName string `json:"display_name,omitempty"`
	EntityClass string `json:"entity_class"`
}

// StackLayer is one tier of the technology stack.
// SortOrder matters for display only.
type StackLayer struct {
	ID        string   `json:"id" validate:"required"`
	Name      string   `json:"name" validate:"required"`
	SortOrder int      `json:"sort_order"`
	Examples  []string `json:"examples,omitempty"`
}

// ActionType tags the kind of strategic action an event records.
type ActionType struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// EntityClass groups entities (e.g. "Big Tech", "Startup") with a display color.
type EntityClass struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Color string `json:"color,omitempty"`
}

// Identifiable is implemented by every record that carries an id.
type Identifiable interface {
	Key() string
}

// Key implements Identifiable.
func (e Entity) Key() string { return e.ID }

// Key implements Identifiable.
func (l StackLayer) Key() string { return l.ID }

// Key implements Identifiable.
func (a ActionType) Key() string { return a.ID }

// Key implements Identifiable.
func (c EntityClass) Key() string { return c.ID }

// EvidenceSource is one citation backing an event.
type EvidenceSource struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Type        string `json:"type,omitempty"`
	Credibility string `json:"credibility"`
}

// Tier classifies the source. Unknown or missing credibility is CredibilityOther.
func (s EvidenceSource) Tier() Credibility {
	if c, ok := ParseCredibility(s.Credibility); ok {
		return c
	}
	return CredibilityOther
}

// TimeRange bounds the period a pattern claims to describe.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Bounded reports whether both ends are set.
func (r *TimeRange) Bounded() bool {
	return r != nil && r.Start != "" && r.End != ""
}

// Event is a single dated strategic action by an entity.
type Event struct {
	ID                    Text
	Title                 Text
	EntityID              Text
	Date                  Text
	DatePrecision         Text
	ActionType            Text
	StackLayers           List[string]
	ImpactLevel           Text
	Description           Text
	Confidence            Text
	EvidenceSources       List[EvidenceSource]
	StrategicSignificance Text
	Tags                  List[string]

	// Raw is the JSON object the event was decoded from.
	Raw json.RawMessage
}

// Key implements Identifiable.
func (e Event) Key() string { return e.ID.Value }

// UnmarshalJSON decodes an event leniently. It fails only when data is not a
// JSON object.
func (e *Event) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return err
	}
	*e = Event{
		ID:                    f.text("id"),
		Title:                 f.text("title"),
		EntityID:              f.text("entity_id"),
		Date:                  f.text("date"),
		DatePrecision:         f.text("date_precision"),
		ActionType:            f.text("action_type"),
		StackLayers:           listOf(f, "stack_layers", elementText),
		ImpactLevel:           f.text("impact_level"),
		Description:           f.text("description"),
		Confidence:            f.text("confidence"),
		EvidenceSources:       listOf(f, "evidence_sources", elementSource),
		StrategicSignificance: f.text("strategic_significance"),
		Tags:                  listOf(f, "tags", elementText),
		Raw:                   append(json.RawMessage(nil), data...),
	}
	return nil
}

// TextFields returns the scalar fields in schema order, keyed by JSON name.
func (e *Event) TextFields() []NamedText {
	return []NamedText{
		{"id", e.ID},
		{"title", e.Title},
		{"entity_id", e.EntityID},
		{"date", e.Date},
		{"date_precision", e.DatePrecision},
		{"action_type", e.ActionType},
		{"impact_level", e.ImpactLevel},
		{"description", e.Description},
		{"confidence", e.Confidence},
		{"strategic_significance", e.StrategicSignificance},
	}
}

// Pattern is a hypothesis-framed insight derived from several events.
type Pattern struct {
	ID                  Text
	Title               Text
	PatternType         Text
	Thesis              Text
	Confidence          Text
	ConfidenceReasoning Text
	SupportingEvents    List[string]
	CounterSignals      List[json.RawMessage]
	TimeRange           *TimeRange

	Raw json.RawMessage
}

// Key implements Identifiable.
func (p Pattern) Key() string { return p.ID.Value }

// UnmarshalJSON decodes a pattern leniently. It fails only when data is not a
// JSON object.
func (p *Pattern) UnmarshalJSON(data []byte) error {
	f, err := objectFields(data)
	if err != nil {
		return err
	}
	*p = Pattern{
		ID:                  f.text("id"),
		Title:               f.text("title"),
		PatternType:         f.text("pattern_type"),
		Thesis:              f.text("thesis"),
		Confidence:          f.text("confidence"),
		ConfidenceReasoning: f.text("confidence_reasoning"),
		SupportingEvents:    listOf(f, "supporting_events", elementText),
		CounterSignals:      listOf(f, "counter_signals", elementRaw),
		TimeRange:           f.timeRange("time_range"),
		Raw:                 append(json.RawMessage(nil), data...),
	}
	return nil
}

// TextFields returns the scalar fields in schema order, keyed by JSON name.
func (p *Pattern) TextFields() []NamedText {
	return []NamedText{
		{"id", p.ID},
		{"title", p.Title},
		{"pattern_type", p.PatternType},
		{"thesis", p.Thesis},
		{"confidence", p.Confidence},
		{"confidence_reasoning", p.ConfidenceReasoning},
	}
}

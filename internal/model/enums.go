package model

import "slices"

// ImpactLevel is the strategic weight assigned to an event.
type ImpactLevel string

const (
	ImpactHigh   ImpactLevel = "high"
	ImpactMedium ImpactLevel = "medium"
	ImpactLow    ImpactLevel = "low"
)

// ImpactLevels lists every valid ImpactLevel.
var ImpactLevels = []ImpactLevel{ImpactHigh, ImpactMedium, ImpactLow}

// Valid reports whether l is a known impact level.
func (l ImpactLevel) Valid() bool { return slices.Contains(ImpactLevels, l) }

// ParseImpactLevel parses s into an ImpactLevel.
func ParseImpactLevel(s string) (ImpactLevel, bool) { return parseEnum(s, ImpactLevels) }

// EventConfidence is the epistemic label on an event.
type EventConfidence string

const (
	EventConfirmed EventConfidence = "confirmed"
	EventLikely    EventConfidence = "likely"
	EventRumored   EventConfidence = "rumored"
)

// EventConfidences lists every valid EventConfidence.
var EventConfidences = []EventConfidence{EventConfirmed, EventLikely, EventRumored}

// Valid reports whether c is a known event confidence.
func (c EventConfidence) Valid() bool { return slices.Contains(EventConfidences, c) }

// ParseEventConfidence parses s into an EventConfidence.
func ParseEventConfidence(s string) (EventConfidence, bool) { return parseEnum(s, EventConfidences) }

// DatePrecision says how precisely an event date is known.
type DatePrecision string

const (
	PrecisionExact   DatePrecision = "exact"
	PrecisionMonth   DatePrecision = "month"
	PrecisionQuarter DatePrecision = "quarter"
	PrecisionYear    DatePrecision = "year"
)

// DatePrecisions lists every valid DatePrecision.
var DatePrecisions = []DatePrecision{PrecisionExact, PrecisionMonth, PrecisionQuarter, PrecisionYear}

// Valid reports whether p is a known date precision.
func (p DatePrecision) Valid() bool { return slices.Contains(DatePrecisions, p) }

// ParseDatePrecision parses s into a DatePrecision.
func ParseDatePrecision(s string) (DatePrecision, bool) { return parseEnum(s, DatePrecisions) }

// Credibility is the evidentiary strength of a source.
type Credibility string

const (
	CredibilityPrimary           Credibility = "primary"
	CredibilityCredibleSecondary Credibility = "credible-secondary"
	CredibilityOther             Credibility = "other"
)

// Credibilities lists every Credibility tier.
var Credibilities = []Credibility{CredibilityPrimary, CredibilityCredibleSecondary, CredibilityOther}

// ParseCredibility parses s into a Credibility.
func ParseCredibility(s string) (Credibility, bool) { return parseEnum(s, Credibilities) }

// PatternType categorises a pattern.
type PatternType string

const (
	PatternConsolidationMotif PatternType = "consolidation-motif"
	PatternStrategicPivot     PatternType = "strategic-pivot"
	PatternTechStackShift     PatternType = "tech-stack-shift"
	PatternPressureField      PatternType = "pressure-field"
	PatternOther              PatternType = "other"
)

// PatternTypes lists every valid PatternType.
var PatternTypes = []PatternType{
	PatternConsolidationMotif,
	PatternStrategicPivot,
	PatternTechStackShift,
	PatternPressureField,
	PatternOther,
}

// Valid reports whether t is a known pattern type.
func (t PatternType) Valid() bool { return slices.Contains(PatternTypes, t) }

// ParsePatternType parses s into a PatternType.
func ParsePatternType(s string) (PatternType, bool) { return parseEnum(s, PatternTypes) }

// PatternConfidence is the epistemic label on a pattern.
type PatternConfidence string

const (
	PatternHigh   PatternConfidence = "high"
	PatternMedium PatternConfidence = "medium"
	PatternLow    PatternConfidence = "low"
)

// PatternConfidences lists every valid PatternConfidence.
var PatternConfidences = []PatternConfidence{PatternHigh, PatternMedium, PatternLow}

// Valid reports whether c is a known pattern confidence.
func (c PatternConfidence) Valid() bool { return slices.Contains(PatternConfidences, c) }

// ParsePatternConfidence parses s into a PatternConfidence.
func ParsePatternConfidence(s string) (PatternConfidence, bool) {
	return parseEnum(s, PatternConfidences)
}

// JoinValues renders an enum set as "a/b/c".
func JoinValues[T ~string](values []T) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += "/"
		}
		out += string(v)
	}
	return out
}

func parseEnum[T ~string](s string, values []T) (T, bool) {
	v := T(s)
	if slices.Contains(values, v) {
		return v, true
	}
	return "", false
}

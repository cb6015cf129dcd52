package model

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Text is a scalar string field that remembers how it appeared in the source.
type Text struct {
	Value string
	// Present is true when the key exists with a non-null value.
	Present bool
	// Invalid is true when the value was present but not a JSON string.
	// Value then holds the raw JSON text.
	Invalid bool
}

// NewText returns a present, well-typed Text.
func NewText(v string) Text {
	return Text{Value: v, Present: true}
}

// Missing reports whether the field is absent, null or an empty string.
func (t Text) Missing() bool {
	return !t.Present || (!t.Invalid && t.Value == "")
}

// String returns the string value, or "" when the field is not a string.
func (t Text) String() string {
	if t.Invalid {
		return ""
	}
	return t.Value
}

// NamedText pairs a field with its JSON key.
type NamedText struct {
	Name string
	Text Text
}

// List is an array field that remembers how it appeared in the source.
type List[T any] struct {
	Items []T
	// Present is true when the key exists with a non-null value.
	Present bool
	// Invalid is true when the value was present but not a JSON array.
	Invalid bool
}

// NewList returns a present, well-formed List.
func NewList[T any](items ...T) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Items: items, Present: true}
}

// IsArray reports whether the field held a JSON array.
func (l List[T]) IsArray() bool {
	return l.Present && !l.Invalid
}

// Len returns the number of items.
func (l List[T]) Len() int {
	return len(l.Items)
}

// fields is a decoded JSON object with its values left raw.
type fields map[string]json.RawMessage

func objectFields(data []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("record is not a JSON object: %w", err)
	}
	if f == nil {
		return nil, fmt.Errorf("record is null")
	}
	return f, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (f fields) raw(key string) (json.RawMessage, bool) {
	raw, ok := f[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	return raw, true
}

func (f fields) text(key string) Text {
	raw, ok := f.raw(key)
	if !ok {
		return Text{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return Text{Value: string(bytes.TrimSpace(raw)), Present: true, Invalid: true}
	}
	return NewText(s)
}

func (f fields) timeRange(key string) *TimeRange {
	raw, ok := f.raw(key)
	if !ok {
		return nil
	}
	var r TimeRange
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil
	}
	return &r
}

// listOf decodes f[key] as an array, converting each element with elem.
// Elements never fail: elem maps odd shapes to a best-effort value.
func listOf[T any](f fields, key string, elem func(json.RawMessage) T) List[T] {
	raw, ok := f.raw(key)
	if !ok {
		return List[T]{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return List[T]{Present: true, Invalid: true}
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = elem(item)
	}
	return List[T]{Items: out, Present: true}
}

// elementText returns a string element, or the raw JSON text of any other value
// so that it still shows up in "not found" messages.
func elementText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(bytes.TrimSpace(raw))
	}
	return s
}

func elementSource(raw json.RawMessage) EvidenceSource {
	f, err := objectFields(raw)
	if err != nil {
		return EvidenceSource{}
	}
	return EvidenceSource{
		URL:         f.text("url").String(),
		Title:       f.text("title").String(),
		Type:        f.text("type").String(),
		Credibility: f.text("credibility").String(),
	}
}

func elementRaw(raw json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), raw...)
}

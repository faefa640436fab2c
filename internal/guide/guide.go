// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package guide defines the StudyGuide data model and the normalization step
// that turns a recovered JSON object into it.
//
// Normalization classifies every section item exactly once as either nested
// (a topic grouping timestamped details) or flat (a timestamped field
// object). Both renderers consume the resulting tagged union and never
// re-derive the shape themselves. See docs/ARCHITECTURE § Study Guide Model.
package guide

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Schema names the top-level keys a study guide is allowed to carry. Keys
// outside the schema are ignored during normalization. Injected rather than
// ambient so tests can substitute alternate schemas.
type Schema struct {
	// MainKey is the key holding the guide's display subject.
	MainKey string

	// SectionKeys lists the section keys in render order.
	SectionKeys []string
}

// DefaultSchema returns the seven-key contract the model is prompted to emit.
func DefaultSchema() Schema {
	return Schema{
		MainKey: "main_subject",
		SectionKeys: []string{
			"topic_breakdown",
			"key_vocabulary",
			"formulas_and_principles",
			"teacher_insights",
			"exam_focus_points",
			"common_mistakes_explained",
		},
	}
}

// Detail is one timestamped fact under a nested topic.
type Detail struct {
	Text string `json:"detail" yaml:"detail"`
	Time int    `json:"time" yaml:"time"`
}

// Nested is a topic grouping several timestamped details.
type Nested struct {
	Topic   string   `json:"topic" yaml:"topic"`
	Details []Detail `json:"details" yaml:"details"`
}

// Field is one named value of a flat item, in render order.
type Field struct {
	Key   string
	Value string
}

// Flat is a timestamped field object with no sub-grouping.
type Flat struct {
	Fields []Field
	Time   int
}

// Item is a tagged union: exactly one of Nested or Flat is non-nil.
type Item struct {
	Nested *Nested
	Flat   *Flat
}

// MarshalYAML emits the active variant so inspect/dump output mirrors the
// model's JSON shape.
func (it Item) MarshalYAML() (any, error) {
	return it.variant(), nil
}

// MarshalJSON emits the active variant.
func (it Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(it.variant())
}

func (it Item) variant() any {
	if it.Nested != nil {
		return it.Nested
	}
	m := map[string]any{"time": it.Flat.Time}
	for _, f := range it.Flat.Fields {
		m[f.Key] = f.Value
	}
	return m
}

// Section is one non-empty top-level section of a study guide.
type Section struct {
	Key   string `json:"key" yaml:"key"`
	Items []Item `json:"items" yaml:"items"`
}

// StudyGuide is the parsed result of one model call. It is read-only after
// Normalize; renderers never mutate it.
type StudyGuide struct {
	MainSubject string    `json:"main_subject" yaml:"main_subject"`
	Sections    []Section `json:"sections" yaml:"sections"`
}

// Normalize validates a recovered JSON object against the schema and builds
// the typed StudyGuide. Sections that are missing, empty, or outside the
// schema contribute nothing. Items missing a usable non-negative time are a
// validation error.
func Normalize(obj map[string]json.RawMessage, schema Schema) (*StudyGuide, error) {
	g := &StudyGuide{}

	if raw, ok := obj[schema.MainKey]; ok {
		if err := json.Unmarshal(raw, &g.MainSubject); err != nil {
			return nil, fmt.Errorf("%s: expected a string", schema.MainKey)
		}
	}

	for _, key := range schema.SectionKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}

		var rawItems []json.RawMessage
		if err := json.Unmarshal(raw, &rawItems); err != nil {
			return nil, fmt.Errorf("section %s: expected a list: %w", key, err)
		}
		if len(rawItems) == 0 {
			continue
		}

		sec := Section{Key: key}
		for i, rawItem := range rawItems {
			item, err := normalizeItem(rawItem)
			if err != nil {
				return nil, fmt.Errorf("section %s item %d: %w", key, i, err)
			}
			sec.Items = append(sec.Items, item)
		}
		g.Sections = append(g.Sections, sec)
	}

	return g, nil
}

// normalizeItem classifies one section item: nested if any field value is a
// JSON array, flat otherwise.
func normalizeItem(raw json.RawMessage) (Item, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Item{}, fmt.Errorf("expected an object: %w", err)
	}

	for _, key := range sortedKeys(fields) {
		if isArray(fields[key]) {
			n, err := normalizeNested(fields, fields[key])
			if err != nil {
				return Item{}, err
			}
			return Item{Nested: n}, nil
		}
	}

	f, err := normalizeFlat(fields)
	if err != nil {
		return Item{}, err
	}
	return Item{Flat: f}, nil
}

func normalizeNested(fields map[string]json.RawMessage, detailsRaw json.RawMessage) (*Nested, error) {
	n := &Nested{}
	if raw, ok := fields["topic"]; ok {
		if err := json.Unmarshal(raw, &n.Topic); err != nil {
			return nil, fmt.Errorf("topic: expected a string")
		}
	}

	var rawDetails []map[string]json.RawMessage
	if err := json.Unmarshal(detailsRaw, &rawDetails); err != nil {
		return nil, fmt.Errorf("details: expected a list of objects: %w", err)
	}

	for i, d := range rawDetails {
		t, err := decodeTime(d["time"])
		if err != nil {
			return nil, fmt.Errorf("detail %d: %w", i, err)
		}
		n.Details = append(n.Details, Detail{
			Text: detailText(d),
			Time: t,
		})
	}
	return n, nil
}

// detailText prefers the conventional "detail" key and falls back to the
// first non-time string field.
func detailText(d map[string]json.RawMessage) string {
	if raw, ok := d["detail"]; ok {
		return stringValue(raw)
	}
	for _, key := range sortedKeys(d) {
		if key == "time" {
			continue
		}
		return stringValue(d[key])
	}
	return ""
}

func normalizeFlat(fields map[string]json.RawMessage) (*Flat, error) {
	t, err := decodeTime(fields["time"])
	if err != nil {
		return nil, err
	}

	f := &Flat{Time: t}
	for _, key := range sortedKeys(fields) {
		if key == "time" {
			continue
		}
		f.Fields = append(f.Fields, Field{Key: key, Value: stringValue(fields[key])})
	}
	return f, nil
}

// decodeTime parses a mandatory non-negative elapsed-seconds value.
// Fractional values truncate toward zero.
func decodeTime(raw json.RawMessage) (int, error) {
	if raw == nil {
		return 0, fmt.Errorf("missing time")
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("time: expected a number")
	}
	if f < 0 {
		return 0, fmt.Errorf("time: negative value %v", f)
	}
	return int(f), nil
}

// stringValue renders a JSON scalar as display text. Non-string scalars keep
// their JSON spelling.
func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return string(raw)
}

// isArray reports whether the raw value's first significant byte opens a
// JSON array.
func isArray(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

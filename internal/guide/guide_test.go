// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package guide

import (
	"encoding/json"
	"strings"
	"testing"
)

func parseObject(t *testing.T, src string) map[string]json.RawMessage {
	t.Helper()
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(src), &obj); err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return obj
}

func TestNormalizeFull(t *testing.T) {
	obj := parseObject(t, `{
		"main_subject": "Calculus",
		"topic_breakdown": [
			{"topic": "Derivatives", "details": [
				{"detail": "A derivative is a <hl>rate of change</hl>.", "time": 90},
				{"detail": "Notation dy/dx.", "time": 150}
			]}
		],
		"key_vocabulary": [
			{"term": "Limit", "definition": "The value a function <hl>approaches</hl>.", "time": 30}
		]
	}`)

	g, err := Normalize(obj, DefaultSchema())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if g.MainSubject != "Calculus" {
		t.Errorf("MainSubject = %q", g.MainSubject)
	}
	if len(g.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(g.Sections))
	}

	// Sections come out in schema order.
	if g.Sections[0].Key != "topic_breakdown" || g.Sections[1].Key != "key_vocabulary" {
		t.Fatalf("section order = %s, %s", g.Sections[0].Key, g.Sections[1].Key)
	}

	nested := g.Sections[0].Items[0].Nested
	if nested == nil {
		t.Fatal("topic_breakdown item not classified as nested")
	}
	if nested.Topic != "Derivatives" || len(nested.Details) != 2 {
		t.Errorf("nested = %+v", nested)
	}
	if nested.Details[0].Time != 90 {
		t.Errorf("detail time = %d, want 90", nested.Details[0].Time)
	}

	flat := g.Sections[1].Items[0].Flat
	if flat == nil {
		t.Fatal("key_vocabulary item not classified as flat")
	}
	if flat.Time != 30 {
		t.Errorf("flat time = %d, want 30", flat.Time)
	}
	// Flat fields come out in sorted key order, time extracted.
	if len(flat.Fields) != 2 || flat.Fields[0].Key != "definition" || flat.Fields[1].Key != "term" {
		t.Errorf("flat fields = %+v", flat.Fields)
	}
}

func TestNormalizeSparse(t *testing.T) {
	obj := parseObject(t, `{
		"main_subject": "Physics",
		"topic_breakdown": [],
		"exam_focus_points": [{"point": "Know Newton's laws.", "time": 10}],
		"unexpected_section": [{"x": 1, "time": 0}]
	}`)

	g, err := Normalize(obj, DefaultSchema())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	// Empty, missing, and out-of-schema sections contribute nothing.
	if len(g.Sections) != 1 {
		t.Fatalf("len(Sections) = %d, want 1", len(g.Sections))
	}
	if g.Sections[0].Key != "exam_focus_points" {
		t.Errorf("section = %s", g.Sections[0].Key)
	}
}

func TestNormalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "missing time on flat item",
			src:     `{"teacher_insights": [{"insight": "x"}]}`,
			wantErr: "missing time",
		},
		{
			name:    "negative time",
			src:     `{"teacher_insights": [{"insight": "x", "time": -4}]}`,
			wantErr: "negative",
		},
		{
			name:    "non-numeric time",
			src:     `{"teacher_insights": [{"insight": "x", "time": "soon"}]}`,
			wantErr: "expected a number",
		},
		{
			name:    "section not a list",
			src:     `{"teacher_insights": {"insight": "x"}}`,
			wantErr: "expected a list",
		},
		{
			name:    "item not an object",
			src:     `{"teacher_insights": ["just a string"]}`,
			wantErr: "expected an object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(parseObject(t, tt.src), DefaultSchema())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Normalize err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeFractionalTimeTruncates(t *testing.T) {
	obj := parseObject(t, `{"teacher_insights": [{"insight": "x", "time": 12.9}]}`)
	g, err := Normalize(obj, DefaultSchema())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := g.Sections[0].Items[0].Flat.Time; got != 12 {
		t.Errorf("time = %d, want 12", got)
	}
}

func TestNormalizeCustomSchema(t *testing.T) {
	schema := Schema{MainKey: "title", SectionKeys: []string{"notes"}}
	obj := parseObject(t, `{"title": "T", "notes": [{"note": "n", "time": 1}]}`)

	g, err := Normalize(obj, schema)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if g.MainSubject != "T" || len(g.Sections) != 1 || g.Sections[0].Key != "notes" {
		t.Errorf("guide = %+v", g)
	}
}

func TestHumanizeKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"topic_breakdown", "Topic Breakdown"},
		{"common_mistakes_explained", "Common Mistakes Explained"},
		{"term", "Term"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := HumanizeKey(tt.key); got != tt.want {
			t.Errorf("HumanizeKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestSplitHighlights(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Span
	}{
		{
			name: "single span",
			text: "A <hl>B</hl> C",
			want: []Span{{Text: "A "}, {Text: "B", Highlight: true}, {Text: " C"}},
		},
		{
			name: "no tags",
			text: "A B",
			want: []Span{{Text: "A B"}},
		},
		{
			name: "multiple spans",
			text: "<hl>x</hl> and <hl>y</hl>",
			want: []Span{{Text: "x", Highlight: true}, {Text: " and "}, {Text: "y", Highlight: true}},
		},
		{
			name: "unmatched opening tag stays literal",
			text: "A <hl>B",
			want: []Span{{Text: "A <hl>B"}},
		},
		{
			name: "unmatched closing tag stays literal",
			text: "A</hl> B",
			want: []Span{{Text: "A</hl> B"}},
		},
		{
			name: "empty string",
			text: "",
			want: []Span{{Text: ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitHighlights(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitHighlights(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("span %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStripHighlights(t *testing.T) {
	got := StripHighlights("A derivative is a <hl>rate of change</hl>.")
	want := "A derivative is a rate of change."
	if got != want {
		t.Errorf("StripHighlights = %q, want %q", got, want)
	}
}

func TestItemMarshalRoundTrip(t *testing.T) {
	item := Item{Flat: &Flat{
		Fields: []Field{{Key: "term", Value: "Limit"}},
		Time:   30,
	}}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m["term"] != "Limit" || m["time"] != float64(30) {
		t.Errorf("marshaled item = %v", m)
	}
}

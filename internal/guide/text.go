// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package guide

import (
	"regexp"
	"strings"
	"unicode"
)

// highlightPattern matches a single non-nested <hl>…</hl> span.
var highlightPattern = regexp.MustCompile(`<hl>(.*?)</hl>`)

// Span is one run of display text, highlighted or literal.
type Span struct {
	Text      string
	Highlight bool
}

// SplitHighlights splits text on <hl>…</hl> delimiters into ordered spans.
// Spans do not nest; an unmatched or malformed tag stays literal text.
func SplitHighlights(text string) []Span {
	var spans []Span
	last := 0
	for _, m := range highlightPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			spans = append(spans, Span{Text: text[last:m[0]]})
		}
		spans = append(spans, Span{Text: text[m[2]:m[3]], Highlight: true})
		last = m[1]
	}
	if last < len(text) || len(spans) == 0 {
		spans = append(spans, Span{Text: text[last:]})
	}
	return spans
}

// StripHighlights removes highlight markup, keeping the marked text.
func StripHighlights(text string) string {
	return highlightPattern.ReplaceAllString(text, "$1")
}

// HumanizeKey turns a snake_case schema key into display form, e.g.
// "topic_breakdown" into "Topic Breakdown". Both renderers use this same
// function so document headings and sheet columns agree.
func HumanizeKey(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recovery extracts the JSON object embedded in raw model output and
// repairs common truncation artifacts before parsing.
//
// The repair pass is deliberately narrow: it drops a trailing partial object,
// strips a trailing comma, and closes brackets left open by the truncation.
// It is not a lenient JSON parser; anything beyond those cases is reported as
// unparsable. See docs/ARCHITECTURE § Response Recovery.
package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnparsable reports that no parseable JSON object could be recovered
// from the model output.
var ErrUnparsable = errors.New("no parseable JSON object in model output")

// ErrDiscardLimit reports that truncation repair would have dropped more
// trailing content than the configured policy allows.
var ErrDiscardLimit = errors.New("truncation repair exceeded discard limit")

// fencedBlock matches a ```json code fence and captures its interior object.
var fencedBlock = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// trailingComma matches a comma (and trailing whitespace) immediately before
// the final closing brace.
var trailingComma = regexp.MustCompile(`,\s*}$`)

// Options configures a Recoverer.
type Options struct {
	// MaxDiscardBytes bounds how many trailing bytes the repair pass may
	// silently drop from a truncated response. Negative means unlimited.
	// Zero forbids any silent loss.
	MaxDiscardBytes int
}

// Recoverer turns raw model output into a parsed top-level JSON object.
type Recoverer struct {
	opts Options
}

// New returns a Recoverer with the given options.
func New(opts Options) *Recoverer {
	return &Recoverer{opts: opts}
}

// Result is the outcome of a successful recovery.
type Result struct {
	// Object holds the top-level keys of the recovered JSON object with
	// their raw values.
	Object map[string]json.RawMessage

	// Repaired reports whether the repair pass changed the candidate text.
	Repaired bool

	// Discarded is the number of trailing bytes dropped by the repair pass.
	// Callers surface this as a degradation warning; it is not an error.
	Discarded int
}

// Recover locates the JSON object in raw model output, repairs truncation
// artifacts, and parses it. A candidate that still fails to parse yields
// ErrUnparsable; a repair that drops more than MaxDiscardBytes yields
// ErrDiscardLimit.
func (r *Recoverer) Recover(raw string) (Result, error) {
	candidate := extractCandidate(raw)
	repaired, discarded := repair(candidate)

	if r.opts.MaxDiscardBytes >= 0 && discarded > r.opts.MaxDiscardBytes {
		return Result{}, fmt.Errorf("%w: dropped %d bytes (limit %d)",
			ErrDiscardLimit, discarded, r.opts.MaxDiscardBytes)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	return Result{
		Object:    obj,
		Repaired:  repaired != candidate,
		Discarded: discarded,
	}, nil
}

// extractCandidate picks the most plausible JSON substring: the interior of
// a ```json fence if one is present, otherwise the greedy span from the
// first '{' to the last '}', otherwise the trimmed whole input.
func extractCandidate(raw string) string {
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		return m[1]
	}

	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return strings.TrimSpace(raw)
	}
	if end := strings.LastIndexByte(raw, '}'); end > start {
		return raw[start : end+1]
	}
	// Truncated before any object closed; hand the tail to the repair pass.
	return raw[start:]
}

// repair fixes the truncation artifacts this package knows about and reports
// how many trailing bytes were dropped in the process.
func repair(candidate string) (string, int) {
	s := strings.TrimSpace(candidate)
	discarded := 0

	if !strings.HasSuffix(s, "}") {
		if i := strings.LastIndexByte(s, '}'); i >= 0 {
			// Drop the trailing partial object, keeping the last complete one.
			discarded = len(s) - (i + 1)
			s = s[:i+1]
		} else {
			// Nothing ever closed. Drop a dangling comma and let the
			// bracket-closing step below finish the object.
			cut := strings.TrimRight(strings.TrimRight(s, " \t\r\n"), ",")
			discarded = len(s) - len(cut)
			s = cut
		}
	}

	s = trailingComma.ReplaceAllString(s, "}")
	s += missingClosers(s)
	return s, discarded
}

// missingClosers returns the closing brackets needed to balance braces and
// square brackets left open in s, ignoring bracket characters inside JSON
// strings. An unterminated string cannot be balanced; the caller's parse
// will reject it.
func missingClosers(s string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if n := len(stack); n > 0 && stack[n-1] == c {
				stack = stack[:n-1]
			}
		}
	}

	if inString {
		return ""
	}

	out := make([]byte, len(stack))
	for i := range stack {
		out[i] = stack[len(stack)-1-i]
	}
	return string(out)
}

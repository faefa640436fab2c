// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize runs the one-shot analysis pipeline: a blocking model
// call, response recovery, and normalization into a StudyGuide.
// See docs/ARCHITECTURE § Analysis.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/pdiddy/studyguide-engine/internal/guide"
	"github.com/pdiddy/studyguide-engine/internal/recovery"
)

// ErrNoResult reports that analysis produced no usable study guide. Remote
// call failures and recovery failures both collapse into it; the caller
// cannot and should not tell them apart. Diagnostics go to the log at the
// catch point.
var ErrNoResult = errors.New("no result available")

// logSnippetLen bounds how much offending model output lands in the log.
const logSnippetLen = 500

// AIBackend abstracts the generative model call so tests can supply a mock.
// Implementations take the raw transcript and return the model's free text.
type AIBackend interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// GeminiBackend calls the Gemini API with the study-guide prompt.
type GeminiBackend struct {
	APIKey string
	Model  string
}

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-pro-latest"

// Summarize sends the prompt plus transcript and returns the first
// candidate's concatenated text parts. One blocking call, no retry; a failed
// call is reported once and the caller decides what to do.
func (b *GeminiBackend) Summarize(ctx context.Context, transcript string) (string, error) {
	prompt, err := renderPrompt(transcript)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(b.APIKey))
	if err != nil {
		return "", fmt.Errorf("creating Gemini client: %w", err)
	}
	defer client.Close()

	name := b.Model
	if name == "" {
		name = DefaultModel
	}

	resp, err := client.GenerativeModel(name).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}

	text := candidateText(resp)
	if text == "" {
		return "", fmt.Errorf("Gemini API returned no text content")
	}
	return text, nil
}

// candidateText joins the text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		break
	}
	return sb.String()
}

// Analyzer wires a backend, a recoverer, and a schema into the full
// transcript-to-StudyGuide pipeline.
type Analyzer struct {
	Backend   AIBackend
	Recoverer *recovery.Recoverer
	Schema    guide.Schema
	Log       zerolog.Logger
}

// Analyze runs one analysis pass. Every failure class is logged once here
// and surfaces to the caller as ErrNoResult; a truncation repair that
// dropped content is a logged degradation, not an error.
func (a *Analyzer) Analyze(ctx context.Context, transcript string) (*guide.StudyGuide, error) {
	raw, err := a.Backend.Summarize(ctx, transcript)
	if err != nil {
		a.Log.Error().Err(err).Msg("model call failed")
		return nil, ErrNoResult
	}

	res, err := a.Recoverer.Recover(raw)
	if err != nil {
		a.Log.Error().Err(err).Str("output", snippet(raw)).Msg("response recovery failed")
		return nil, ErrNoResult
	}
	if res.Discarded > 0 {
		a.Log.Warn().Int("discarded_bytes", res.Discarded).
			Msg("truncated model output repaired; trailing content dropped")
	}

	g, err := guide.Normalize(res.Object, a.Schema)
	if err != nil {
		a.Log.Error().Err(err).Msg("model output failed schema validation")
		return nil, ErrNoResult
	}
	return g, nil
}

// snippet truncates raw model output for diagnostics.
func snippet(s string) string {
	if len(s) <= logSnippetLen {
		return s
	}
	return s[:logSnippetLen] + "…"
}

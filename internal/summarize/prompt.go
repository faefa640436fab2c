// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"text/template"
)

// systemPromptTmpl is the prompt sent to the model for each transcript. It
// pins the seven-key response schema, integer-second timestamps, and the
// <hl> highlight convention the renderers rely on. The wording is the
// external model contract; change it and the recovery and rendering layers
// must be revalidated against real responses.
var systemPromptTmpl = template.Must(template.New("studyguide").Parse(`You are an expert educational content analyst. Read the following video transcript and produce a structured study guide. The transcript carries inline timestamps in [MM:SS] or (MM:SS) form; for every fact you extract, record the nearest timestamp preceding it, converted to integer seconds from the start of the video.

Respond with a single JSON object and nothing else: no prose, no markdown fences. The object must have exactly these keys:

- "main_subject": a short title for the video's subject.
- "topic_breakdown": an array of {"topic": string, "details": [{"detail": string, "time": integer seconds}]}.
- "key_vocabulary": an array of {"term": string, "definition": string, "time": integer seconds}.
- "formulas_and_principles": an array of {"name": string, "explanation": string, "time": integer seconds}.
- "teacher_insights": an array of {"insight": string, "time": integer seconds}.
- "exam_focus_points": an array of {"point": string, "time": integer seconds}.
- "common_mistakes_explained": an array of {"mistake": string, "correction": string, "time": integer seconds}.

Wrap the single most important phrase of each detail, definition, explanation, insight, point, and correction in literal <hl> and </hl> tags. Highlight at most one phrase per string and never nest the tags. A section with nothing to report must be an empty array.

Transcript:
---
{{.Transcript}}
`))

// renderPrompt executes the prompt template with the given transcript.
func renderPrompt(transcript string) (string, error) {
	var buf bytes.Buffer
	if err := systemPromptTmpl.Execute(&buf, struct{ Transcript string }{Transcript: transcript}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the configuration structs shared between the CLI and
// the pipeline stages.
package types

// AIConfig holds settings for the Gemini call.
type AIConfig struct {
	// Model is the Gemini model identifier (e.g. "gemini-pro-latest").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the Gemini API. Usually supplied
	// via .secrets/gemini-api-key rather than the config file.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// RecoveryConfig holds the response-recovery policy.
type RecoveryConfig struct {
	// MaxDiscardBytes bounds how many trailing bytes truncation repair may
	// silently drop from a model response. Negative means unlimited; zero
	// turns any silent loss into a hard failure.
	MaxDiscardBytes int `json:"max_discard_bytes" yaml:"max_discard_bytes"`
}

// RenderConfig holds settings for the two output renderers.
type RenderConfig struct {
	// FontDir is the directory holding NotoSans-Regular.ttf and
	// NotoSans-Bold.ttf for PDF embedding.
	FontDir string `json:"font_dir" yaml:"font_dir"`

	// PDFPath is the output path for the document. Empty skips the PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// XLSXPath is the output path for the data sheet. Empty skips the sheet.
	XLSXPath string `json:"xlsx_path" yaml:"xlsx_path"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	AI       AIConfig       `json:"ai" yaml:"ai"`
	Recovery RecoveryConfig `json:"recovery" yaml:"recovery"`
	Render   RenderConfig   `json:"render" yaml:"render"`
}

// DefaultPipelineConfig returns the defaults the CLI starts from before
// config-file and flag overrides.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		AI: AIConfig{Model: "gemini-pro-latest"},
		Recovery: RecoveryConfig{
			MaxDiscardBytes: -1,
		},
		Render: RenderConfig{
			FontDir:  "fonts",
			PDFPath:  "study_guide.pdf",
			XLSXPath: "study_guide.xlsx",
		},
	}
}

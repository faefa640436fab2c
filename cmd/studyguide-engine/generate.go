// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/studyguide-engine/internal/guide"
	"github.com/pdiddy/studyguide-engine/internal/pdfdoc"
	"github.com/pdiddy/studyguide-engine/internal/recovery"
	"github.com/pdiddy/studyguide-engine/internal/secrets"
	"github.com/pdiddy/studyguide-engine/internal/sheet"
	"github.com/pdiddy/studyguide-engine/internal/summarize"
	"github.com/pdiddy/studyguide-engine/internal/video"
	"github.com/pdiddy/studyguide-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a study guide from a transcript",
	Long: `Generate sends a timestamped transcript to Gemini, recovers the structured
study guide from the response, and renders it as a hyperlinked PDF and an
XLSX data sheet. Timestamp links open the source video at the matching
offset, so the video URL is required.

The API key comes from --api-key, .secrets/gemini-api-key, or the
STUDYGUIDE_ENGINE_API_KEY environment variable.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("url", "", "YouTube URL of the source video (required)")
	generateCmd.Flags().String("transcript", "", "transcript file with inline timestamps, or - for stdin (required)")
	generateCmd.Flags().String("api-key", "", "Gemini API key")
	generateCmd.Flags().String("model", "", "Gemini model identifier")
	generateCmd.Flags().String("pdf", "", "output path for the PDF document (empty skips it)")
	generateCmd.Flags().String("xlsx", "", "output path for the XLSX data sheet (empty skips it)")
	generateCmd.Flags().String("dump", "", "also write the parsed guide as YAML to this path")
	generateCmd.Flags().String("font-dir", "", "directory with NotoSans-Regular.ttf and NotoSans-Bold.ttf")
	generateCmd.Flags().Int("max-discard", -1, "max bytes truncation repair may silently drop (-1 = unlimited)")

	viper.SetDefault("ai.model", summarize.DefaultModel)
	viper.SetDefault("recovery.max_discard_bytes", -1)
	viper.SetDefault("render.font_dir", "fonts")
	viper.SetDefault("render.pdf_path", "study_guide.pdf")
	viper.SetDefault("render.xlsx_path", "study_guide.xlsx")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := generateConfig(cmd)

	// Input validation happens before any remote call; no partial work.
	apiKey := secretDefault(secrets.GeminiAPIKey, cfg.AI.APIKey)
	if apiKey == "" {
		return fmt.Errorf("a Gemini API key is required (--api-key, .secrets/%s, or STUDYGUIDE_ENGINE_API_KEY)", secrets.GeminiAPIKey)
	}

	url, _ := cmd.Flags().GetString("url")
	videoID, ok := video.ExtractVideoID(url)
	if !ok {
		return fmt.Errorf("could not find a video ID in %q; a valid YouTube URL is required", url)
	}

	transcript, err := readTranscript(cmd)
	if err != nil {
		return err
	}

	if cfg.Render.PDFPath == "" && cfg.Render.XLSXPath == "" {
		return fmt.Errorf("nothing to do: both --pdf and --xlsx are empty")
	}

	// Load renderer resources before spending a model call.
	var docRenderer *pdfdoc.Renderer
	if cfg.Render.PDFPath != "" {
		fonts, err := loadFonts(cfg.Render.FontDir)
		if err != nil {
			return err
		}
		docRenderer, err = pdfdoc.NewRenderer(pdfdoc.Config{
			Palette: pdfdoc.DefaultPalette(),
			Fonts:   fonts,
		})
		if err != nil {
			return err
		}
	}

	analyzer := &summarize.Analyzer{
		Backend:   &summarize.GeminiBackend{APIKey: apiKey, Model: cfg.AI.Model},
		Recoverer: recovery.New(recovery.Options{MaxDiscardBytes: cfg.Recovery.MaxDiscardBytes}),
		Schema:    guide.DefaultSchema(),
		Log:       logger,
	}

	logger.Info().Str("model", cfg.AI.Model).Msg("analyzing transcript")
	g, err := analyzer.Analyze(cmd.Context(), transcript)
	if err != nil {
		// Remote and recovery failures are deliberately indistinguishable
		// here; diagnostics are already in the log.
		return fmt.Errorf("analysis produced no result; check the log for details")
	}
	logger.Info().Str("subject", g.MainSubject).Int("sections", len(g.Sections)).Msg("analysis complete")

	if dump, _ := cmd.Flags().GetString("dump"); dump != "" {
		if err := dumpGuide(g, dump); err != nil {
			return err
		}
		logger.Info().Str("path", dump).Msg("wrote guide dump")
	}

	if docRenderer != nil {
		if err := docRenderer.RenderFile(g, videoID, cfg.Render.PDFPath); err != nil {
			return fmt.Errorf("generating document: %w", err)
		}
		logger.Info().Str("path", cfg.Render.PDFPath).Msg("wrote document")
	}

	if cfg.Render.XLSXPath != "" {
		if err := (sheet.Renderer{}).RenderFile(g, cfg.Render.XLSXPath); err != nil {
			return fmt.Errorf("generating data sheet: %w", err)
		}
		logger.Info().Str("path", cfg.Render.XLSXPath).Msg("wrote data sheet")
	}

	return nil
}

// generateConfig merges viper config with explicitly-set flags.
func generateConfig(cmd *cobra.Command) types.PipelineConfig {
	cfg := types.PipelineConfig{
		AI: types.AIConfig{
			Model:  viper.GetString("ai.model"),
			APIKey: viper.GetString("api_key"),
		},
		Recovery: types.RecoveryConfig{
			MaxDiscardBytes: viper.GetInt("recovery.max_discard_bytes"),
		},
		Render: types.RenderConfig{
			FontDir:  viper.GetString("render.font_dir"),
			PDFPath:  viper.GetString("render.pdf_path"),
			XLSXPath: viper.GetString("render.xlsx_path"),
		},
	}

	if v, _ := cmd.Flags().GetString("api-key"); v != "" {
		cfg.AI.APIKey = v
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.AI.Model = v
	}
	if cmd.Flags().Changed("pdf") {
		cfg.Render.PDFPath, _ = cmd.Flags().GetString("pdf")
	}
	if cmd.Flags().Changed("xlsx") {
		cfg.Render.XLSXPath, _ = cmd.Flags().GetString("xlsx")
	}
	if v, _ := cmd.Flags().GetString("font-dir"); v != "" {
		cfg.Render.FontDir = v
	}
	if cmd.Flags().Changed("max-discard") {
		cfg.Recovery.MaxDiscardBytes, _ = cmd.Flags().GetInt("max-discard")
	}
	return cfg
}

// readTranscript reads the transcript from the --transcript file or stdin.
func readTranscript(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("transcript")
	if path == "" {
		return "", fmt.Errorf("a transcript is required (--transcript FILE, or - for stdin)")
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading transcript: %w", err)
	}

	transcript := strings.TrimSpace(string(data))
	if transcript == "" {
		return "", fmt.Errorf("the transcript is empty")
	}
	return transcript, nil
}

// loadFonts reads the two required TTF faces from dir.
func loadFonts(dir string) (pdfdoc.Fonts, error) {
	regular, err := os.ReadFile(filepath.Join(dir, "NotoSans-Regular.ttf"))
	if err != nil {
		return pdfdoc.Fonts{}, fmt.Errorf("loading regular font (run 'mage fonts'): %w", err)
	}
	bold, err := os.ReadFile(filepath.Join(dir, "NotoSans-Bold.ttf"))
	if err != nil {
		return pdfdoc.Fonts{}, fmt.Errorf("loading bold font (run 'mage fonts'): %w", err)
	}
	return pdfdoc.Fonts{Regular: regular, Bold: bold}, nil
}

// dumpGuide writes the normalized guide as YAML for inspection.
func dumpGuide(g *guide.StudyGuide, path string) error {
	data, err := yaml.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshaling guide: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing guide dump: %w", err)
	}
	return nil
}

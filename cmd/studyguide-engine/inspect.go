// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/studyguide-engine/internal/guide"
	"github.com/pdiddy/studyguide-engine/internal/recovery"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Replay recovery and validation on a saved model response",
	Long: `Inspect runs the response-recovery and normalization steps on a raw model
response saved to a file and prints the resulting guide as YAML. Useful for
diagnosing malformed or truncated responses without spending another model
call.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxDiscard, _ := cmd.Flags().GetInt("max-discard")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		res, err := recovery.New(recovery.Options{MaxDiscardBytes: maxDiscard}).Recover(string(data))
		if err != nil {
			return fmt.Errorf("recovery failed: %w", err)
		}
		if res.Repaired {
			logger.Warn().Int("discarded_bytes", res.Discarded).Msg("response needed repair")
		}

		g, err := guide.Normalize(res.Object, guide.DefaultSchema())
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out, err := yaml.Marshal(g)
		if err != nil {
			return fmt.Errorf("marshaling guide: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	inspectCmd.Flags().Int("max-discard", -1, "max bytes truncation repair may silently drop (-1 = unlimited)")

	rootCmd.AddCommand(inspectCmd)
}

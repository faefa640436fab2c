// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the studyguide-engine CLI.
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/studyguide-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured in rootCmd's PersistentPreRunE.
var logger zerolog.Logger

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, otherwise the secret value
// for key if one was loaded.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return loadedSecrets[key]
}

// rootCmd is the base command for the studyguide-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "studyguide-engine",
	Short: "Turn a timestamped transcript into a hyperlinked study guide",
	Long: `studyguide-engine converts a timestamped video transcript into structured
study notes. A Gemini call extracts topics, vocabulary, formulas, insights,
and mistakes, each tagged with a source timestamp; the result renders as a
hyperlinked PDF document and an XLSX data sheet.

The generate subcommand runs the whole pipeline. inspect replays recovery
and validation on a saved raw model response for debugging.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).With().Timestamp().Logger()

		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			logger.Debug().Int("count", len(s)).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./studyguide-engine.yaml or ~/.config/studyguide-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	// A .env in the working directory may carry GEMINI_API_KEY and friends.
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment from .env")
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("studyguide-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "studyguide-engine"))
		}
	}

	viper.SetEnvPrefix("STUDYGUIDE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

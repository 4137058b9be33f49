// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the explainer CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/explainer/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from the secrets directory at startup.
var loadedSecrets map[string]string

// logger carries debug diagnostics; it is silent unless --verbose is set.
var logger = slog.New(slog.DiscardHandler)

// errReported marks errors whose diagnostic was already printed.
var errReported = errors.New("already reported")

// rootCmd is the base command for the explainer CLI.
var rootCmd = &cobra.Command{
	Use:   "explainer",
	Short: "Explain a topic in programming terms, with an illustration",
	Long: `explainer asks a generative service to explain a topic in Python terms
(functions, classes, loops, variables) and to draw an illustration of the
topic's parts and its ties with outer systems. Both are saved to a folder
named after the topic: <topic>_illustration.jpg, explanation.html, and code.py.

The API key is looked up in order: --api-key (or api_key in the config file,
or EXPLAINER_API_KEY), --key-file, OPENAI_API_KEY (a .env file is honoured),
and .secrets/openai-api-key. Interactive runs prompt for a key file last.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		if viper.GetBool("verbose") {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}

		s, err := secrets.Load(viper.GetString("secrets_dir"))
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", slog.Any("keys", keys))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./explainer.yaml or ~/.config/explainer/explainer.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log requests and decoding details to stderr")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of secret files (filename = key name)")
	rootCmd.PersistentFlags().String("history-dir", ".explainer", "directory holding the run history database")

	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"verbose":     "verbose",
		"secrets-dir": "secrets_dir",
		"history-dir": "history.dir",
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("explainer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "explainer"))
		}
	}

	viper.SetEnvPrefix("EXPLAINER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("user_agent", "explainer/"+version)
	viper.SetDefault("history.max_results", 20)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/explainer/internal/artifact"
	"github.com/pdiddy/explainer/internal/explain"
	"github.com/pdiddy/explainer/internal/generate"
	"github.com/pdiddy/explainer/internal/history"
	"github.com/pdiddy/explainer/internal/input"
	"github.com/pdiddy/explainer/internal/secrets"
	"github.com/pdiddy/explainer/pkg/types"
)

var explainCmd = &cobra.Command{
	Use:   "explain [topic...]",
	Short: "Explain a topic and save the explanation page and illustration",
	Long: `Explain requests a textual explanation and an illustration of a topic and
writes them to <output-dir>/<topic with spaces as underscores>/.

With no arguments the topic and context are asked for interactively. A
context of "n" or "no" (any case) means no context. Files from an earlier
run with the same topic are overwritten. Nothing is written unless both the
explanation and the illustration were obtained.`,
	Example: `  explainer explain gravity
  explainer explain black hole --context "game physics"
  explainer explain --key-file keys/openai.json`,
	RunE: runExplain,
}

func init() {
	f := explainCmd.Flags()
	f.String("context", "", "optional context that narrows the explanation")
	f.String("api-key", "", "API key for the generative service")
	f.String("key-file", "", "JSON or YAML file with an openai_api_key field")
	f.String("model", generate.DefaultModel, "chat model for the explanation")
	f.String("image-model", generate.DefaultImageModel, "image model for the illustration")
	f.String("image-size", generate.DefaultImageSize, "illustration resolution")
	f.Int("max-tokens", generate.DefaultMaxTokens, "maximum length of the explanation in tokens")
	f.String("base-url", "", "base URL of an OpenAI-compatible API")
	f.Duration("timeout", 0, "HTTP request timeout (0 = transport default)")
	f.String("output-dir", ".", "directory under which topic folders are created")
	f.Bool("no-history", false, "do not record the run in the history database")

	bindFlags(f, map[string]string{
		"api-key":     "api_key",
		"key-file":    "key_file",
		"model":       "model",
		"image-model": "image_model",
		"image-size":  "image_size",
		"max-tokens":  "max_tokens",
		"base-url":    "base_url",
		"timeout":     "timeout",
		"output-dir":  "output_dir",
		"no-history":  "no_history",
	})

	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	contextFlag, _ := cmd.Flags().GetString("context")

	req := types.Request{
		Topic:   strings.Join(args, " "),
		Context: contextFlag,
	}

	var collector *input.Collector
	if len(args) == 0 {
		collector = input.NewCollector(cmd.InOrStdin(), out)
		topic, err := collector.Topic()
		if err != nil {
			return err
		}
		req.Topic = topic
		if !cmd.Flags().Changed("context") {
			if req.Context, err = collector.Context(); err != nil {
				return err
			}
		}
	}

	req, err := explain.Normalize(req)
	if err != nil {
		return err
	}

	apiKey, err := resolveAPIKey(collector)
	if err != nil {
		return err
	}

	cfg := explainConfig(apiKey)
	client := generate.NewOpenAIClient(cfg, &http.Client{Timeout: cfg.Timeout}, logger)

	p := &explain.Pipeline{
		Explainer:   client,
		Illustrator: client,
		Writer:      artifact.Writer{Root: cfg.OutputDir},
		Model:       cfg.Model,
		ImageModel:  cfg.ImageModel,
		Out:         out,
		Logger:      logger,
	}

	if !viper.GetBool("no_history") {
		store, err := history.NewStore(historyConfig())
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
		} else {
			defer store.Close()
			p.History = store
		}
	}

	if _, err := p.Run(cmd.Context(), req); err != nil {
		if errors.Is(err, types.ErrGeneration) || errors.Is(err, types.ErrIllustration) {
			return fmt.Errorf("%w: %w", errReported, err)
		}
		return err
	}
	return nil
}

// resolveAPIKey applies the credential lookup order. When nothing is
// configured and the run is interactive, it asks for a key file.
func resolveAPIKey(collector *input.Collector) (string, error) {
	key, err := secrets.Resolve(secrets.Sources{
		APIKey:  viper.GetString("api_key"),
		KeyFile: viper.GetString("key_file"),
		Secrets: loadedSecrets,
	})
	if err == nil || collector == nil || !secrets.IsMissing(err) {
		return key, err
	}

	path, err := collector.KeyFile()
	if err != nil {
		return "", fmt.Errorf("%w: %w", types.ErrConfiguration, err)
	}
	return secrets.LoadKeyFile(path)
}

// explainConfig assembles the run configuration from flags, config file,
// and environment.
func explainConfig(apiKey string) types.ExplainConfig {
	return types.ExplainConfig{
		AIConfig: types.AIConfig{
			Model:      viper.GetString("model"),
			ImageModel: viper.GetString("image_model"),
			ImageSize:  viper.GetString("image_size"),
			MaxTokens:  viper.GetInt("max_tokens"),
			BaseURL:    viper.GetString("base_url"),
			APIKey:     apiKey,
		},
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: viper.GetString("user_agent"),
		},
		OutputDir: viper.GetString("output_dir"),
	}
}

func historyConfig() types.HistoryConfig {
	return types.HistoryConfig{
		Dir:        viper.GetString("history.dir"),
		MaxResults: viper.GetInt("history.max_results"),
	}
}

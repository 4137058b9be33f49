// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/explainer/internal/explain"
	"github.com/pdiddy/explainer/internal/generate"
	"github.com/pdiddy/explainer/pkg/types"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts topic...",
	Short: "Print the prompts an explain run would send",
	Long: `Prompts renders the explanation and illustration prompts for a topic and
context without contacting the generative service.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPrompts,
}

func init() {
	promptsCmd.Flags().String("context", "", "optional context that narrows the explanation")
	rootCmd.AddCommand(promptsCmd)
}

func runPrompts(cmd *cobra.Command, args []string) error {
	contextFlag, _ := cmd.Flags().GetString("context")
	req, err := explain.Normalize(types.Request{
		Topic:   strings.Join(args, " "),
		Context: contextFlag,
	})
	if err != nil {
		return err
	}

	text, err := generate.ExplanationPrompt(req)
	if err != nil {
		return err
	}
	image, err := generate.IllustrationPrompt(req.Topic)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "explanation:\n%s\n\nillustration:\n%s\n", text, image)
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/proposal-engine/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Send a prompt to the LLM providers",
	Long: `Ask sends a prompt to the configured providers and prints the first answer.
With --provider auto (the default) providers are tried in priority order and
the whole list is retried on failure. Naming a provider calls only that
provider, once. The prompt is read from stdin when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		providerFlag, _ := cmd.Flags().GetString("provider")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		prompt := ""
		if len(args) == 1 {
			prompt = args[0]
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading prompt: %w", err)
			}
			prompt = string(data)
		}
		if strings.TrimSpace(prompt) == "" {
			return fmt.Errorf("empty prompt")
		}

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		provider, _ := types.ParseProviderName(providerFlag)
		text, err := a.invoker.Generate(cmd.Context(), types.GenerationRequest{
			Prompt:   prompt,
			Provider: provider,
			Timeout:  timeout,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	askCmd.Flags().String("provider", "auto", "provider to call: auto, gemini, openai, siliconflow, qwen, claude")
	askCmd.Flags().Duration("timeout", 0, "per-call timeout (default llm.timeout)")

	rootCmd.AddCommand(askCmd)
}

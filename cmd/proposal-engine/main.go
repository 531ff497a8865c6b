// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the proposal-engine CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/proposal-engine/internal/config"
	"github.com/pdiddy/proposal-engine/internal/logging"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg and logger are populated by the root PersistentPreRunE.
	cfg    *types.Config
	logger *zap.Logger
)

// rootCmd is the base command for the proposal-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "proposal-engine",
	Short: "Generate research proposals and experiment designs with LLM fallback",
	Long: `proposal-engine drafts a research proposal (开题报告) and an experiment
design for a thesis title. It gathers web research and arXiv papers, then asks
the first LLM provider that answers, falling back across gemini, openai,
siliconflow, qwen, and claude.

Each stage is also a subcommand: research, papers, and ask run one stage in
isolation; generate runs the whole workflow; serve exposes it over HTTP;
history reads the run archive.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		file, _ := flags.GetString("config")
		secretsDir, _ := flags.GetString("secrets-dir")

		opts := config.Options{File: file, SecretsDir: secretsDir}
		v := config.New(opts)
		if f := flags.Lookup("dev"); f != nil {
			if err := v.BindPFlag("log.development", f); err != nil {
				return err
			}
		}

		loaded, err := config.Load(v, opts)
		if err != nil {
			return err
		}
		cfg = loaded

		logger, err = logging.New(cfg.Log.Development)
		if err != nil {
			return err
		}
		if used := v.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./proposal-engine.yaml or ~/.config/proposal-engine/proposal-engine.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of API key files")
	rootCmd.PersistentFlags().Bool("dev", false, "human-readable development logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

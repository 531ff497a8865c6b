// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/proposal-engine/internal/archive"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect archived proposal runs",
	Long: `History reads the run archive (archive.path). Runs are recorded only when
archive.enabled is set; the archive is never used as a cache.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if asJSON {
			return writeOutput(cmd.OutOrStdout(), runs, true)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tRESEARCH\tPAPERS\tTITLE")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
				r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.ResearchCount, r.PaperCount, r.Title)
		}
		return tw.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		store, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		return store.Export(cmd.Context(), args[0], format, cmd.OutOrStdout())
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <id> <file>",
	Short: "Write one run to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		store, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		return exportRun(cmd, store, args[0], args[1], format)
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum number of runs")
	historyListCmd.Flags().Bool("json", false, "output as JSON")
	historyShowCmd.Flags().String("format", "yaml", "output format: yaml or json")
	historyExportCmd.Flags().String("format", "yaml", "output format: yaml or json")

	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func exportRun(cmd *cobra.Command, store *archive.Store, id, path, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := store.Export(cmd.Context(), id, format, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported %s to %s\n", id, path)
	return nil
}

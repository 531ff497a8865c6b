// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var researchCmd = &cobra.Command{
	Use:   "research [keyword...]",
	Short: "Search the web for keywords and scrape the top pages",
	Long: `Research runs each keyword through Tavily web search, scrapes every returned
link, and prints one record per page that passed validation. Failed searches
and scrapes are retried, then skipped; they never abort the run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		records := a.pipeline.Run(cmd.Context(), args, limit)
		logger.Info("research finished", zap.Int("keywords", len(args)), zap.Int("records", len(records)))
		if err := writeOutputFile(cmd.OutOrStdout(), output, records, asJSON); err != nil {
			return err
		}
		return cmd.Context().Err()
	},
}

func init() {
	researchCmd.Flags().Int("limit", 3, "maximum links per keyword")
	researchCmd.Flags().Bool("json", false, "output records as JSON instead of YAML")
	researchCmd.Flags().StringP("output", "o", "", "write records to a file instead of stdout")

	rootCmd.AddCommand(researchCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var papersCmd = &cobra.Command{
	Use:   "papers [keyword...]",
	Short: "Search arXiv for papers matching every keyword",
	Long: `Papers queries the arXiv API with the keywords as one group: each keyword is
matched as an exact phrase across all fields and the phrases are combined.
Results are sorted by relevance.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxResults, _ := cmd.Flags().GetInt("max-results")
		asJSON, _ := cmd.Flags().GetBool("json")
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		if maxResults > 0 {
			a.arxiv.MaxResults = maxResults
		}

		res, err := a.arxiv.SearchPapers(cmd.Context(), args)
		if err != nil {
			return err
		}
		logger.Info("arxiv search finished",
			zap.Strings("keywords", args),
			zap.Int("total", res.TotalResults),
			zap.Int("returned", len(res.Entries)))
		return writeOutputFile(cmd.OutOrStdout(), output, res, asJSON)
	},
}

func init() {
	papersCmd.Flags().Int("max-results", 0, "page size (default arxiv.max_results)")
	papersCmd.Flags().Bool("json", false, "output results as JSON instead of YAML")
	papersCmd.Flags().StringP("output", "o", "", "write results to a file instead of stdout")

	rootCmd.AddCommand(papersCmd)
}

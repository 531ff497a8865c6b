// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/proposal-engine/internal/proposal"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a research proposal and experiment design",
	Long: `Generate runs the full workflow for a thesis title and/or research details:
web research, arXiv paper search, the proposal, and the experiment design.

Material files (.md, .markdown, .txt) refine the output: an existing proposal
is polished instead of drafted, an existing experiment design is optimised,
and reference papers replace the arXiv search. --material infers the kind
from the file name; the typed flags set it explicitly.

With --output-dir the proposal, experiment design, and full result are
written as proposal.md, experiment_design.md, and result.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		title, _ := flags.GetString("title")
		details, _ := flags.GetString("details")
		level, _ := flags.GetString("level")
		country, _ := flags.GetString("country")
		outDir, _ := flags.GetString("output-dir")
		asJSON, _ := flags.GetBool("json")

		req, err := proposal.Normalize(types.ProposalRequest{
			Title:         title,
			Details:       details,
			AcademicLevel: types.AcademicLevel(level),
			Country:       types.Country(country),
		})
		if err != nil {
			return err
		}

		files, err := materialFlags(cmd)
		if err != nil {
			return err
		}
		if req.Materials, err = proposal.LoadMaterials(files, logger); err != nil {
			return err
		}

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		res, genErr := a.generator.Generate(cmd.Context(), req)
		if genErr != nil && res.Proposal == "" {
			return genErr
		}

		if outDir == "" {
			return errors.Join(genErr, writeOutput(cmd.OutOrStdout(), res, asJSON))
		}
		if err := writeRun(outDir, res); err != nil {
			return errors.Join(genErr, err)
		}
		logger.Info("run written", zap.String("dir", outDir))
		return genErr
	},
}

// materialFlags collects the material file flags in a stable order.
func materialFlags(cmd *cobra.Command) ([]proposal.MaterialFile, error) {
	var files []proposal.MaterialFile
	for _, f := range []struct {
		flag string
		kind types.MaterialKind
	}{
		{"material", 0},
		{"proposal-material", types.MaterialProposal},
		{"experiment-material", types.MaterialExperiment},
		{"paper-material", types.MaterialPaper},
	} {
		paths, err := cmd.Flags().GetStringSlice(f.flag)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			files = append(files, proposal.MaterialFile{Path: p, Kind: f.kind})
		}
	}
	return files, nil
}

// writeRun writes the proposal, the experiment design, and the full result
// under dir.
func writeRun(dir string, res types.ProposalResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "proposal.md"), []byte(res.Proposal), 0o644); err != nil {
		return err
	}
	if res.ExperimentDesign != "" {
		if err := os.WriteFile(filepath.Join(dir, "experiment_design.md"), []byte(res.ExperimentDesign), 0o644); err != nil {
			return err
		}
	}
	return writeOutputFile(nil, filepath.Join(dir, "result.yaml"), res, false)
}

func init() {
	generateCmd.Flags().String("title", "", "thesis title")
	generateCmd.Flags().String("details", "", "research details")
	generateCmd.Flags().String("level", "硕士", "academic level: 本科, 硕士, 博士 (or bachelor, master, phd)")
	generateCmd.Flags().String("country", "中国", "study country: 中国, 美国, 英国, 澳大利亚, 加拿大, 日本, 欧洲")
	generateCmd.Flags().StringSlice("material", nil, "material file, kind inferred from the name (repeatable)")
	generateCmd.Flags().StringSlice("proposal-material", nil, "existing proposal to polish (repeatable)")
	generateCmd.Flags().StringSlice("experiment-material", nil, "existing experiment design to optimise (repeatable)")
	generateCmd.Flags().StringSlice("paper-material", nil, "reference paper used instead of arXiv (repeatable)")
	generateCmd.Flags().String("output-dir", "", "write proposal.md, experiment_design.md, and result.yaml here")
	generateCmd.Flags().Bool("json", false, "print the result as JSON instead of YAML")

	rootCmd.AddCommand(generateCmd)
}

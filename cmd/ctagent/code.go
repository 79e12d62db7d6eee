package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/coding"
	"github.com/spf13/cobra"
)

func codeCmd() *cobra.Command {
	var termsPath string
	var dictionariesDir string
	cmd := &cobra.Command{
		Use:          "code",
		Short:        "Suggest medical codes for uncoded verbatim terms",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			storeDB, repoRoot, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()
			cfg, err := loadConfig(repoRoot)
			if err != nil {
				return err
			}

			started := time.Now()
			now := started.UTC()

			terms := coding.ParseUncodedTerms(termsPath, now)
			if len(terms) == 0 {
				log.Warn().Str("terms", termsPath).Msg("no uncoded terms found, skipping run")
				return nil
			}
			dictionaries := coding.LoadDictionaries(dictionariesDir)

			client := newCollaborator(cfg)
			suggestions := coding.ProcessTerms(cmd.Context(), client, terms, dictionaries, now)
			report := coding.BuildReport(suggestions, now)
			path, err := coding.WriteReport(report, cfg.Paths.OutputDir, now)
			if err != nil {
				return err
			}
			if _, err := coding.ExportForReview(suggestions, cfg.Paths.OutputDir, now); err != nil {
				return err
			}

			summary := fmt.Sprintf("Coded %d terms (%d require manual review)",
				report.Summary.TotalTerms, report.Summary.UncodedTerms)
			completeRun(cmd.Context(), cfg, storeDB, agentCoding, "code", summary, path, started)
			log.Info().Str("path", path).Msg("medical coding report written")
			return nil
		},
	}
	cmd.Flags().StringVar(&termsPath, "terms", filepath.Join("data", "uncoded_terms.json"), "uncoded term feed")
	cmd.Flags().StringVar(&dictionariesDir, "dictionaries", filepath.Join("config", "dictionaries"), "dictionary directory")
	return cmd
}

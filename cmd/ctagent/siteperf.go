package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/risk"
	"github.com/spf13/cobra"
)

func siteperfCmd() *cobra.Command {
	var internalDB string
	var publicDB string
	var populationReport string
	cmd := &cobra.Command{
		Use:          "siteperf",
		Short:        "Rank trial sites by composite performance score",
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

			metrics := risk.LoadSiteMetricsCSV(internalDB)
			if len(metrics) == 0 {
				log.Warn().Str("internal_db", internalDB).Msg("no site metrics to rank, skipping run")
				return nil
			}
			geographies := risk.LoadSiteGeographies(publicDB)
			counts := risk.LoadPopulationCounts(populationReport)

			ranked := risk.RankSitePerformance(metrics, geographies, counts)
			client := newCollaborator(cfg)
			summary := risk.SummarizePerformance(cmd.Context(), client, ranked)
			path, err := risk.WritePerformanceReport(ranked, summary, cfg.Paths.OutputDir)
			if err != nil {
				return err
			}

			runSummary := fmt.Sprintf("Ranked %d sites by composite performance", len(ranked))
			completeRun(cmd.Context(), cfg, storeDB, agentSitePerf, "siteperf", runSummary, path, started)
			log.Info().Str("path", path).Msg("ranked site report written")
			return nil
		},
	}
	cmd.Flags().StringVar(&internalDB, "internal-db", filepath.Join("data", "site_performance.csv"), "internal site performance CSV")
	cmd.Flags().StringVar(&publicDB, "public-db", filepath.Join("data", "site_directory.csv"), "public site database CSV")
	cmd.Flags().StringVar(&populationReport, "population-report", filepath.Join("data", "patient_population.json"), "patient population report JSON")
	return cmd
}

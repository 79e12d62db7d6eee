package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/risk"
	"github.com/spf13/cobra"
)

func monitorCmd() *cobra.Command {
	var kriPath string
	var sitesPath string
	cmd := &cobra.Command{
		Use:          "monitor",
		Short:        "Score site risk from KRIs and prioritize monitoring visits",
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

			kris := risk.LoadKRIConfig(kriPath)
			sites := risk.LoadSites(sitesPath, now)
			if len(kris) == 0 || len(sites) == 0 {
				log.Warn().Str("kri_config", kriPath).Str("sites", sitesPath).Msg("nothing to assess, skipping run")
				return nil
			}

			client := newCollaborator(cfg)
			assessments := risk.AssessSites(cmd.Context(), client, sites, kris, now)
			dashboard := risk.BuildDashboard(assessments, kris, now)
			path, err := risk.WriteDashboard(dashboard, cfg.Paths.OutputDir, now)
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("Assessed %d sites against %d KRIs", len(assessments), len(kris))
			completeRun(cmd.Context(), cfg, storeDB, agentMonitor, "monitor", summary, path, started)
			log.Info().Str("path", path).Msg("site risk dashboard written")
			return nil
		},
	}
	cmd.Flags().StringVar(&kriPath, "kri-config", filepath.Join("config", "kri_config.json"), "KRI configuration file")
	cmd.Flags().StringVar(&sitesPath, "sites", filepath.Join("data", "site_metrics.json"), "site metrics feed")
	return cmd
}

package main

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/tracker"
	"github.com/spf13/cobra"
)

func progressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "progress",
		Short:        "Consume new progress logs and rewrite the progress report",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			repoRoot, err := os.Getwd()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(repoRoot)
			if err != nil {
				return err
			}

			count, err := tracker.UpdateProgressReport(
				cfg.Paths.Checklist,
				cfg.Paths.ProgressLogsNew,
				cfg.Paths.ProgressLogsDone,
				cfg.Paths.ProgressReport,
				time.Now(),
			)
			if err != nil {
				return err
			}
			log.Info().Int("consumed", count).Msg("progress report refreshed")
			return nil
		},
	}
	return cmd
}

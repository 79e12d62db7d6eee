package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/tracker"
	"github.com/spf13/cobra"
)

func proposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "propose",
		Short:        "Propose the next available tasks from the checklist",
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

			count, err := tracker.WriteNextActions(cfg.Paths.Checklist, cfg.Paths.ActionItems, cfg.Paths.NextActionsReport)
			if err != nil {
				return err
			}
			log.Info().Int("proposed", count).Str("path", cfg.Paths.NextActionsReport).Msg("next actions written")
			return nil
		},
	}
	return cmd
}

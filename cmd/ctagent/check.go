package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/tracker"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "check",
		Short:        "Exit non-zero when action items are awaiting human review",
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

			items := tracker.CheckActionItems(cfg.Paths.ActionItems)
			if len(items) == 0 {
				log.Info().Msg("no action items pending")
				return nil
			}
			for _, item := range items {
				fmt.Fprintln(cmd.OutOrStdout(), item)
			}
			return fmt.Errorf("%d action items awaiting human review", len(items))
		},
	}
	return cmd
}

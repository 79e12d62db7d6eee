package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/docs"
	"github.com/spf13/cobra"
)

func recruitCmd() *cobra.Command {
	var protocolPath string
	cmd := &cobra.Command{
		Use:          "recruit",
		Short:        "Generate patient recruitment material drafts",
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

			info := docs.LoadProtocolInfo(protocolPath)
			if info == nil {
				log.Warn().Str("protocol", protocolPath).Msg("no protocol info available, skipping run")
				return nil
			}

			client := newCollaborator(cfg)
			text := docs.GenerateRecruitmentMaterial(cmd.Context(), client, *info)
			path, err := docs.WriteRecruitmentMaterial(text, cfg.Paths.OutputDir)
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("Generated recruitment material for %s", info.Title)
			completeRun(cmd.Context(), cfg, storeDB, agentRecruit, "recruit", summary, path, started)
			log.Info().Str("path", path).Msg("recruitment material written")
			return nil
		},
	}
	cmd.Flags().StringVar(&protocolPath, "protocol", filepath.Join("config", "protocol_info.json"), "protocol information file")
	return cmd
}

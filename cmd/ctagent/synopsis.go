package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/docs"
	"github.com/spf13/cobra"
)

func synopsisCmd() *cobra.Command {
	var protocolPath string
	cmd := &cobra.Command{
		Use:          "synopsis",
		Short:        "Generate the protocol synopsis document",
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

			info := docs.LoadProtocolInfo(protocolPath)
			if info == nil {
				log.Warn().Str("protocol", protocolPath).Msg("no protocol info available, skipping run")
				return nil
			}

			client := newCollaborator(cfg)
			text := docs.GenerateSynopsis(cmd.Context(), client, *info)
			path, err := docs.WriteSynopsis(text, *info, cfg.Paths.OutputDir, now)
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("Generated protocol synopsis for %s", info.Title)
			completeRun(cmd.Context(), cfg, storeDB, agentSynopsis, "synopsis", summary, path, started)
			log.Info().Str("path", path).Msg("protocol synopsis written")
			return nil
		},
	}
	cmd.Flags().StringVar(&protocolPath, "protocol", filepath.Join("config", "protocol_info.json"), "protocol information file")
	return cmd
}

package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/csr"
	"github.com/spf13/cobra"
)

func csrCmd() *cobra.Command {
	var protocolPath string
	var tlfDir string
	var boilerplatePath string
	cmd := &cobra.Command{
		Use:          "csr",
		Short:        "Generate a draft clinical study report",
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

			info := csr.LoadStudyInfo(protocolPath)
			tlfs := csr.LoadTLFItems(tlfDir)
			library := csr.DefaultBoilerplate()
			if boilerplatePath != "" {
				library = csr.LoadBoilerplate(boilerplatePath)
			}

			client := newCollaborator(cfg)
			doc := csr.GenerateDocument(cmd.Context(), client, info, tlfs, library, now)
			path, err := csr.WriteDocument(doc, cfg.Paths.OutputDir, now)
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("CSR generation completed: %d sections generated with %d TLF references",
				len(doc.Sections), len(tlfs))
			completeRun(cmd.Context(), cfg, storeDB, agentCSR, "csr", summary, path, started)
			log.Info().Str("path", path).Str("protocol", info.ProtocolTitle).Msg("clinical study report written")
			return nil
		},
	}
	cmd.Flags().StringVar(&protocolPath, "protocol", filepath.Join("config", "csr_protocol.json"), "protocol information file")
	cmd.Flags().StringVar(&tlfDir, "tlf-dir", "tlf_outputs", "directory containing tables, figures and listings")
	cmd.Flags().StringVar(&boilerplatePath, "boilerplate", "", "boilerplate text library (built-in defaults when unset)")
	return cmd
}

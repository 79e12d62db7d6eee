package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/web"
	"github.com/spf13/cobra"
)

func boardCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:          "board",
		Short:        "Serve the task board web UI",
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

			srv, err := web.NewServer(cfg.Paths.Checklist)
			if err != nil {
				return err
			}
			addr := fmt.Sprintf(":%d", port)
			log.Info().Str("addr", addr).Msg("task board listening")
			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.Routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			return httpSrv.ListenAndServe()
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	return cmd
}

package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/validation"
	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	var planPath string
	var dataPath string
	cmd := &cobra.Command{
		Use:          "validate",
		Short:        "Validate incoming EDC data against the validation plan",
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

			rules := validation.LoadPlan(planPath)
			points := validation.ParseEDCData(dataPath, now)
			if len(rules) == 0 || len(points) == 0 {
				log.Warn().Str("plan", planPath).Str("data", dataPath).Msg("nothing to validate, skipping run")
				return nil
			}

			client := newCollaborator(cfg)
			issues := validation.RunChecks(cmd.Context(), client, points, rules, now)
			queries, err := validation.CreateDataQueries(issues, cfg.Paths.OutputDir, now)
			if err != nil {
				return err
			}
			path, err := validation.WriteReport(points, issues, cfg.Paths.OutputDir, now)
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("Validated %d data points, raised %d issues and %d queries",
				len(points), len(issues), len(queries))
			completeRun(cmd.Context(), cfg, storeDB, agentValidate, "validate", summary, path, started)
			log.Info().Str("path", path).Msg("validation report written")
			return nil
		},
	}
	cmd.Flags().StringVar(&planPath, "plan", filepath.Join("config", "validation_plan.json"), "validation plan")
	cmd.Flags().StringVar(&dataPath, "data", filepath.Join("data", "edc_export.json"), "EDC data export")
	return cmd
}

package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/readiness"
	"github.com/spf13/cobra"
)

func dblockCmd() *cobra.Command {
	var activitiesPath string
	var queriesPath string
	var safetyPath string
	var monitoringPath string
	cmd := &cobra.Command{
		Use:          "dblock",
		Short:        "Assess database lock readiness from closeout activity feeds",
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

			activities := readiness.LoadActivities(activitiesPath, now)
			if len(activities) == 0 {
				log.Warn().Str("activities", activitiesPath).Msg("no closeout activities to assess, skipping run")
				return nil
			}

			var status readiness.StatusData
			if queries, err := readiness.AnalyzeQueries(queriesPath); err != nil {
				log.Warn().Err(err).Str("path", queriesPath).Msg("query feed unavailable")
			} else {
				status.Queries = &queries
			}
			if safety, err := readiness.AnalyzeSafetyEvents(safetyPath); err != nil {
				log.Warn().Err(err).Str("path", safetyPath).Msg("safety feed unavailable")
			} else {
				status.Safety = &safety
			}
			if monitoring, err := readiness.AnalyzeMonitoringVisits(monitoringPath); err != nil {
				log.Warn().Err(err).Str("path", monitoringPath).Msg("monitoring feed unavailable")
			} else {
				status.Monitoring = &monitoring
			}

			activities = readiness.UpdateActivityStatus(activities, status, now)
			client := newCollaborator(cfg)
			assessment := readiness.Assess(cmd.Context(), client, activities, status, now)
			dashboard := readiness.BuildDashboard(assessment, activities, status, now)
			path, err := readiness.WriteDashboard(dashboard, cfg.Paths.OutputDir, now)
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("Database lock readiness %.1f%% with %d critical blockers",
				assessment.OverallReadiness, len(assessment.CriticalBlockers))
			completeRun(cmd.Context(), cfg, storeDB, agentReadiness, "dblock", summary, path, started)
			log.Info().Str("path", path).Msg("database lock readiness dashboard written")
			return nil
		},
	}
	cmd.Flags().StringVar(&activitiesPath, "activities", filepath.Join("data", "closeout_activities.json"), "closeout activity definitions")
	cmd.Flags().StringVar(&queriesPath, "queries", filepath.Join("data", "data_queries.json"), "data query feed")
	cmd.Flags().StringVar(&safetyPath, "safety", filepath.Join("data", "safety_events.json"), "safety event reconciliation feed")
	cmd.Flags().StringVar(&monitoringPath, "monitoring", filepath.Join("data", "monitoring_visits.json"), "monitoring visit feed")
	return cmd
}

package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
	"github.com/sagearbor/clinicalTrials-s2f/internal/safety"
	"github.com/spf13/cobra"
)

func safetyCmd() *cobra.Command {
	var rulesPath string
	var alertConfigPath string
	var edcPath string
	var patientAppPath string
	var callCenterPath string
	cmd := &cobra.Command{
		Use:          "safety",
		Short:        "Scan incoming data streams for potential safety events",
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

			rules := safety.LoadRules(rulesPath)
			if len(rules) == 0 {
				log.Warn().Str("rules", rulesPath).Msg("no detection rules loaded, skipping run")
				return nil
			}
			entries := safety.ParseDataStreams(map[model.DataSource]string{
				model.SourceEDC:        edcPath,
				model.SourcePatientApp: patientAppPath,
				model.SourceCallCenter: callCenterPath,
			}, now)
			if len(entries) == 0 {
				log.Warn().Msg("no data entries to scan, skipping run")
				return nil
			}

			events := safety.DetectEvents(entries, rules)
			eventsPath, err := safety.SaveEvents(events, cfg.Paths.OutputDir, now)
			if err != nil {
				return err
			}

			client := newCollaborator(cfg)
			alertCfg := safety.LoadAlertConfig(alertConfigPath)
			alerts := safety.CreateAlerts(cmd.Context(), client, events, alertCfg, now)
			results := safety.DispatchAlerts(alerts)
			if _, err := safety.SaveAlerts(alerts, cfg.Paths.OutputDir, now); err != nil {
				return err
			}

			summary := fmt.Sprintf("Detected %d safety events, dispatched %d email and %d SMS alerts (%d failed)",
				len(events), results.Email, results.SMS, results.Failed)
			completeRun(cmd.Context(), cfg, storeDB, agentSafety, "safety", summary, eventsPath, started)
			log.Info().Int("events", len(events)).Int("alerts", len(alerts)).Msg("safety scan complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&rulesPath, "rules", filepath.Join("config", "safety_rules.json"), "detection rule configuration")
	cmd.Flags().StringVar(&alertConfigPath, "alert-config", filepath.Join("config", "alert_config.json"), "alert routing configuration")
	cmd.Flags().StringVar(&edcPath, "edc", filepath.Join("data", "edc_stream.json"), "EDC data stream")
	cmd.Flags().StringVar(&patientAppPath, "patient-app", filepath.Join("data", "patient_app_stream.json"), "patient app data stream")
	cmd.Flags().StringVar(&callCenterPath, "call-center", filepath.Join("data", "call_center_stream.json"), "call center data stream")
	return cmd
}

package safety

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/llm"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// SafetyAlert is one outbound notification for a detected event.
type SafetyAlert struct {
	AlertID         string              `json:"alert_id"`
	EventID         string              `json:"event_id"`
	SubjectID       string              `json:"subject_id"`
	AlertType       string              `json:"alert_type"`
	Severity        model.AlertSeverity `json:"severity"`
	Narrative       string              `json:"narrative"`
	Recipients      []string            `json:"recipients"`
	DeliveryMethods []string            `json:"delivery_methods"`
	Timestamp       string              `json:"timestamp"`
}

// AlertConfig routes alerts to recipients and delivery channels by severity.
type AlertConfig struct {
	Recipients      map[model.AlertSeverity][]string `json:"recipients"`
	DeliveryMethods map[model.AlertSeverity][]string `json:"delivery_methods"`
}

// DefaultAlertConfig is used when no alert configuration file is supplied.
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		Recipients: map[model.AlertSeverity][]string{
			model.SeverityCritical: {"safety@example.com", "cro@example.com"},
			model.SeverityHigh:     {"safety@example.com"},
			model.SeverityMedium:   {"safety@example.com"},
			model.SeverityLow:      {"safety@example.com"},
		},
		DeliveryMethods: map[model.AlertSeverity][]string{
			model.SeverityCritical: {"email", "sms"},
			model.SeverityHigh:     {"email"},
			model.SeverityMedium:   {"email"},
			model.SeverityLow:      {"email"},
		},
	}
}

// LoadAlertConfig reads the alert routing configuration, falling back to the
// built-in defaults when the file is missing or malformed.
func LoadAlertConfig(path string) AlertConfig {
	if path == "" {
		return DefaultAlertConfig()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("alert config not found, using defaults")
		return DefaultAlertConfig()
	}
	var cfg AlertConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("alert config is not valid JSON, using defaults")
		return DefaultAlertConfig()
	}
	return cfg
}

const narrativePrompt = `You are a clinical safety specialist. Generate a professional safety event narrative based on the following information:

Event Details:
- Event ID: %s
- Subject ID: %s
- Event Type: %s
- Severity: %s
- Source: %s
- Timestamp: %s
- Confidence: %.2f
- Raw Data: %s

Context Data: %s

Generate a concise but comprehensive safety narrative that includes:
1. Event description
2. Clinical significance
3. Recommended actions
4. Urgency level

Keep the narrative professional and factual, suitable for regulatory reporting.`

// GenerateNarrative produces the regulatory-style narrative for one event.
// Collaborator failure falls back to a deterministic sentence.
func GenerateNarrative(ctx context.Context, client llm.Client, event SafetyEvent) string {
	if client == nil {
		log.Warn().Str("event_id", event.EventID).Msg("collaborator not configured, using basic narrative")
		return fmt.Sprintf("Potential safety event detected: %s for subject %s", event.Description, event.SubjectID)
	}

	contextData, _ := json.MarshalIndent(map[string]any{
		"subject_id": event.SubjectID,
		"event_type": event.EventType,
		"source":     event.Source,
		"severity":   event.Severity,
	}, "", "  ")

	prompt := fmt.Sprintf(narrativePrompt,
		event.EventID, event.SubjectID, event.EventType, event.Severity,
		event.Source, event.Timestamp, event.Confidence, event.RawData, contextData)

	narrative, err := client.Complete(ctx, prompt)
	if err != nil || strings.TrimSpace(narrative) == "" {
		log.Error().Err(err).Str("event_id", event.EventID).Msg("failed to generate safety narrative")
		return fmt.Sprintf("Safety event requiring immediate attention: %s for subject %s. Source: %s. Severity: %s.",
			event.Description, event.SubjectID, event.Source, event.Severity)
	}
	log.Info().Str("event_id", event.EventID).Msg("generated safety narrative")
	return strings.TrimSpace(narrative)
}

// CreateAlerts builds one alert per detected event, routing recipients and
// delivery methods by severity. Severities missing from the recipient map
// get an empty recipient list; missing delivery methods default to email.
func CreateAlerts(ctx context.Context, client llm.Client, events []SafetyEvent, cfg AlertConfig, now time.Time) []SafetyAlert {
	alerts := make([]SafetyAlert, 0, len(events))
	for _, event := range events {
		narrative := GenerateNarrative(ctx, client, event)

		recipients := cfg.Recipients[event.Severity]
		if recipients == nil {
			recipients = []string{}
		}
		methods := cfg.DeliveryMethods[event.Severity]
		if len(methods) == 0 {
			methods = []string{"email"}
		}

		alert := SafetyAlert{
			AlertID:         "ALERT_" + event.EventID,
			EventID:         event.EventID,
			SubjectID:       event.SubjectID,
			AlertType:       "Safety Alert - " + event.EventType,
			Severity:        event.Severity,
			Narrative:       narrative,
			Recipients:      recipients,
			DeliveryMethods: methods,
			Timestamp:       now.UTC().Format(time.RFC3339),
		}
		alerts = append(alerts, alert)
		log.Info().Str("alert_id", alert.AlertID).Msg("created safety alert")
	}
	return alerts
}

// DispatchResults tallies the outcome of an alert dispatch run.
type DispatchResults struct {
	Email  int `json:"email"`
	SMS    int `json:"sms"`
	Failed int `json:"failed"`
}

// DispatchAlerts sends every alert over its configured delivery methods.
// Delivery is a mock implementation that logs the payload; a real deployment
// would plug an SMTP or SMS gateway in here.
func DispatchAlerts(alerts []SafetyAlert) DispatchResults {
	var results DispatchResults
	for _, alert := range alerts {
		ok := true
		for _, method := range alert.DeliveryMethods {
			switch method {
			case "email":
				if sendAlertEmail(alert) {
					results.Email++
				} else {
					ok = false
				}
			case "sms":
				if sendAlertSMS(alert) {
					results.SMS++
				} else {
					ok = false
				}
			}
		}
		if !ok {
			results.Failed++
		}
	}
	log.Info().Int("email", results.Email).Int("sms", results.SMS).Int("failed", results.Failed).Msg("alert dispatch complete")
	return results
}

func sendAlertEmail(alert SafetyAlert) bool {
	payload := map[string]any{
		"to":      alert.Recipients,
		"subject": fmt.Sprintf("URGENT: %s - Subject %s", alert.AlertType, alert.SubjectID),
		"body": fmt.Sprintf("Safety Alert - %s Priority\n\nAlert ID: %s\nSubject ID: %s\nEvent Type: %s\nTimestamp: %s\n\nNARRATIVE:\n%s\n\nPlease review this safety event immediately and take appropriate action.",
			strings.ToUpper(string(alert.Severity)), alert.AlertID, alert.SubjectID, alert.AlertType, alert.Timestamp, alert.Narrative),
	}
	body, _ := json.Marshal(payload)
	log.Info().Str("alert_id", alert.AlertID).Strs("recipients", alert.Recipients).Msg("sending email alert")
	log.Debug().RawJSON("payload", body).Msg("email payload")
	return true
}

func sendAlertSMS(alert SafetyAlert) bool {
	message := fmt.Sprintf("URGENT SAFETY ALERT: %s for Subject %s. Alert ID: %s. Please check email for details.",
		alert.AlertType, alert.SubjectID, alert.AlertID)
	payload, _ := json.Marshal(map[string]any{"to": alert.Recipients, "message": message})
	log.Info().Str("alert_id", alert.AlertID).Strs("recipients", alert.Recipients).Msg("sending SMS alert")
	log.Debug().RawJSON("payload", payload).Msg("sms payload")
	return true
}

// SaveEvents writes detected events to a timestamped JSON file under
// outputDir and returns the file path.
func SaveEvents(events []SafetyEvent, outputDir string, now time.Time) (string, error) {
	return saveJSON(events, outputDir, "safety_events", now)
}

// SaveAlerts writes created alerts to a timestamped JSON file under
// outputDir and returns the file path.
func SaveAlerts(alerts []SafetyAlert, outputDir string, now time.Time) (string, error) {
	return saveJSON(alerts, outputDir, "safety_alerts", now)
}

func saveJSON(v any, outputDir, prefix string, now time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s.json", prefix, now.UTC().Format("20060102150405"))
	path := filepath.Join(outputDir, name)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", prefix, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", prefix, err)
	}
	log.Info().Str("path", path).Msg("safety output saved")
	return path, nil
}

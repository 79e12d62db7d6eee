package safety

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// detectionThreshold is the minimum match confidence for an entry/rule pair
// to become a safety event.
const detectionThreshold = 0.3

// SafetyEvent is one detected potential safety event.
type SafetyEvent struct {
	EventID     string              `json:"event_id"`
	RuleID      string              `json:"rule_id"`
	SubjectID   string              `json:"subject_id"`
	EventType   string              `json:"event_type"`
	Description string              `json:"description"`
	Severity    model.AlertSeverity `json:"severity"`
	Source      model.DataSource    `json:"source"`
	Timestamp   string              `json:"timestamp"`
	Confidence  float64             `json:"confidence"`
	RawData     string              `json:"raw_data"`
}

// DetectEvents runs every rule against every entry. Confidence is the
// fraction of a rule's keywords plus patterns that matched, capped at 1.0;
// an event is emitted when it reaches the detection threshold.
func DetectEvents(entries []DataEntry, rules []SafetyRule) []SafetyEvent {
	var events []SafetyEvent

	for _, entry := range entries {
		content := strings.ToLower(entry.Content)

		for _, rule := range rules {
			matches := 0
			for _, keyword := range rule.Keywords {
				if strings.Contains(content, strings.ToLower(keyword)) {
					matches++
				}
			}
			for _, re := range rule.compiled {
				if re.MatchString(content) {
					matches++
				}
			}

			totalCriteria := len(rule.Keywords) + len(rule.Patterns)
			if matches == 0 || totalCriteria == 0 {
				continue
			}
			confidence := min(float64(matches)/float64(totalCriteria), 1.0)
			if confidence < detectionThreshold {
				continue
			}

			event := SafetyEvent{
				EventID:     fmt.Sprintf("SE_%s_%s", entry.EntryID, rule.RuleID),
				RuleID:      rule.RuleID,
				SubjectID:   entry.SubjectID,
				EventType:   rule.Name,
				Description: fmt.Sprintf("Potential %s detected", rule.Name),
				Severity:    rule.Severity,
				Source:      entry.Source,
				Timestamp:   entry.Timestamp,
				Confidence:  confidence,
				RawData:     entry.Content,
			}
			events = append(events, event)
			log.Info().Str("event_id", event.EventID).Float64("confidence", confidence).Msg("safety event detected")
		}
	}
	return events
}

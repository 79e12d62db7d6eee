// Package readiness implements the database-lock closeout roll-up: activity
// status recomputation from live query/safety/monitoring feeds, the overall
// readiness score and the projected lock date.
package readiness

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// CloseoutActivity is one tracked database-lock activity.
type CloseoutActivity struct {
	ActivityID           string                 `json:"activity_id"`
	Name                 string                 `json:"name"`
	Description          string                 `json:"description"`
	Category             model.ActivityCategory `json:"category"`
	Status               model.ActivityStatus   `json:"status"`
	CompletionPercentage float64                `json:"completion_percentage"`
	EstimatedDaysLeft    int                    `json:"estimated_days_remaining"`
	Dependencies         []string               `json:"dependencies"`
	AssignedTo           string                 `json:"assigned_to"`
	Priority             string                 `json:"priority"`
	LastUpdated          string                 `json:"last_updated"`
	Notes                string                 `json:"notes"`
}

type activitiesFile struct {
	CloseoutActivities []CloseoutActivity `json:"closeout_activities"`
}

// LoadActivities reads closeout activities from a JSON configuration file.
// Missing or malformed files are logged and yield an empty slice.
func LoadActivities(path string, now time.Time) []CloseoutActivity {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("activities file not found")
		return nil
	}
	var file activitiesFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Error().Err(err).Str("path", path).Msg("activities file is not valid JSON")
		return nil
	}

	for i := range file.CloseoutActivities {
		a := &file.CloseoutActivities[i]
		if a.Status == "" {
			a.Status = model.StatusNotStarted
		}
		if a.Priority == "" {
			a.Priority = "medium"
		}
		if a.LastUpdated == "" {
			a.LastUpdated = now.UTC().Format(time.RFC3339)
		}
	}
	log.Info().Int("count", len(file.CloseoutActivities)).Str("path", path).Msg("loaded closeout activities")
	return file.CloseoutActivities
}

package readiness

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// Dashboard is the database-lock readiness report document.
type Dashboard struct {
	Assessment        ReadinessAssessment                         `json:"readiness_assessment"`
	ActivitySummary   ActivitySummary                             `json:"activity_summary"`
	CategoryBreakdown map[model.ActivityCategory]CategorySnapshot `json:"category_breakdown"`
	Activities        []CloseoutActivity                          `json:"closeout_activities"`
	StatusDetails     StatusData                                  `json:"status_details"`
	GeneratedAt       string                                      `json:"generated_at"`
}

// ActivitySummary holds fleet-level activity counts.
type ActivitySummary struct {
	TotalActivities int `json:"total_activities"`
	Completed       int `json:"completed"`
	InProgress      int `json:"in_progress"`
	Blocked         int `json:"blocked"`
	NotStarted      int `json:"not_started"`
}

// CategorySnapshot aggregates the activities of one closeout category.
type CategorySnapshot struct {
	Activities    int     `json:"activities"`
	AvgCompletion float64 `json:"avg_completion_percentage"`
	MaxDaysLeft   int     `json:"max_estimated_days_remaining"`
}

// BuildDashboard assembles the readiness report from the rolled-up
// activities, the feed summaries and the global assessment.
func BuildDashboard(assessment ReadinessAssessment, activities []CloseoutActivity, status StatusData, now time.Time) Dashboard {
	summary := ActivitySummary{TotalActivities: len(activities)}
	breakdown := map[model.ActivityCategory]CategorySnapshot{}

	for _, a := range activities {
		switch a.Status {
		case model.StatusCompleted:
			summary.Completed++
		case model.StatusInProgress:
			summary.InProgress++
		case model.StatusBlocked:
			summary.Blocked++
		case model.StatusNotStarted:
			summary.NotStarted++
		}

		snap := breakdown[a.Category]
		snap.Activities++
		snap.AvgCompletion += a.CompletionPercentage
		if a.EstimatedDaysLeft > snap.MaxDaysLeft {
			snap.MaxDaysLeft = a.EstimatedDaysLeft
		}
		breakdown[a.Category] = snap
	}
	for category, snap := range breakdown {
		snap.AvgCompletion /= float64(snap.Activities)
		breakdown[category] = snap
	}

	return Dashboard{
		Assessment:        assessment,
		ActivitySummary:   summary,
		CategoryBreakdown: breakdown,
		Activities:        activities,
		StatusDetails:     status,
		GeneratedAt:       now.UTC().Format(time.RFC3339),
	}
}

// WriteDashboard serializes the dashboard into a timestamped JSON file under
// outputDir and returns the file path.
func WriteDashboard(dashboard Dashboard, outputDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := fmt.Sprintf("database_lock_readiness_dashboard_%s.json", now.UTC().Format("20060102150405"))
	path := filepath.Join(outputDir, name)

	data, err := json.MarshalIndent(dashboard, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal dashboard: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write dashboard: %w", err)
	}
	log.Info().Str("path", path).Msg("database lock readiness dashboard saved")
	return path, nil
}

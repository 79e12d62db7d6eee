package readiness

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/llm"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// ReadinessAssessment is the global database-lock readiness roll-up.
type ReadinessAssessment struct {
	OverallReadiness   float64  `json:"overall_readiness_percentage"`
	EstimatedLockDate  string   `json:"estimated_lock_date"`
	CriticalBlockers   []string `json:"critical_blockers"`
	RiskFactors        []string `json:"risk_factors"`
	RecommendedActions []string `json:"recommended_actions"`
	ConfidenceLevel    string   `json:"confidence_level"`
	AssessmentDate     string   `json:"assessment_date"`
}

const readinessPrompt = `You are a clinical data management specialist. Based on the database lock readiness data below, provide specific, actionable recommendations to accelerate database lock.

Context: %s

Provide 3-5 specific recommendations in JSON format:
{
    "recommendations": [
        "Specific actionable recommendation 1",
        "Specific actionable recommendation 2"
    ]
}

Focus on:
1. Resolving critical blockers
2. Query resolution acceleration
3. Safety event reconciliation
4. Monitoring visit completion
5. Resource allocation`

// Assess rolls the tracked activities up into a single readiness picture:
// overall percentage, blockers, projected lock date and a confidence band.
func Assess(ctx context.Context, client llm.Client, activities []CloseoutActivity, status StatusData, now time.Time) ReadinessAssessment {
	assessment := ReadinessAssessment{
		CriticalBlockers: []string{},
		RiskFactors:      []string{},
		AssessmentDate:   now.UTC().Format(time.RFC3339),
	}

	var completionSum float64
	maxDays := 0
	for _, a := range activities {
		completionSum += a.CompletionPercentage
		if a.EstimatedDaysLeft > maxDays {
			maxDays = a.EstimatedDaysLeft
		}
		if a.Status == model.StatusBlocked && a.Priority == "critical" {
			assessment.CriticalBlockers = append(assessment.CriticalBlockers, fmt.Sprintf("%s: %s", a.Name, a.Notes))
		}
	}
	if len(activities) > 0 {
		assessment.OverallReadiness = completionSum / float64(len(activities))
	}
	assessment.EstimatedLockDate = now.AddDate(0, 0, maxDays).Format("2006-01-02")

	assessment.RiskFactors = riskFactors(status)
	assessment.ConfidenceLevel = confidenceLevel(assessment.OverallReadiness, len(assessment.CriticalBlockers))
	assessment.RecommendedActions = generateReadinessRecommendations(ctx, client, assessment, activities)

	log.Info().
		Float64("readiness_pct", assessment.OverallReadiness).
		Int("blockers", len(assessment.CriticalBlockers)).
		Str("confidence", assessment.ConfidenceLevel).
		Msg("completed readiness assessment")
	return assessment
}

// riskFactors flags feed-level conditions that threaten the lock timeline.
func riskFactors(status StatusData) []string {
	factors := []string{}
	if q := status.Queries; q != nil {
		if q.OverdueQueries > 0 {
			factors = append(factors, fmt.Sprintf("%d overdue data queries", q.OverdueQueries))
		}
		if q.CriticalQueries > 0 {
			factors = append(factors, fmt.Sprintf("%d critical queries requiring escalation", q.CriticalQueries))
		}
	}
	if s := status.Safety; s != nil {
		if s.PendingEvents > 0 {
			factors = append(factors, fmt.Sprintf("%d safety events pending reconciliation", s.PendingEvents))
		}
		if s.SeriousEvents > 0 {
			factors = append(factors, fmt.Sprintf("%d serious adverse events in scope", s.SeriousEvents))
		}
	}
	if m := status.Monitoring; m != nil {
		if m.OverdueVisits > 0 {
			factors = append(factors, fmt.Sprintf("%d overdue monitoring visits", m.OverdueVisits))
		}
		if m.CriticalFindings > 0 {
			factors = append(factors, fmt.Sprintf("%d sites with critical monitoring findings", m.CriticalFindings))
		}
	}
	return factors
}

func confidenceLevel(readiness float64, blockers int) string {
	switch {
	case readiness >= 90 && blockers == 0:
		return "high"
	case readiness >= 70 && blockers <= 2:
		return "medium"
	default:
		return "low"
	}
}

func generateReadinessRecommendations(ctx context.Context, client llm.Client, assessment ReadinessAssessment, activities []CloseoutActivity) []string {
	if client == nil {
		log.Warn().Msg("collaborator not configured, using fallback readiness recommendations")
		return fallbackReadinessRecommendations(assessment)
	}

	promptContext := map[string]any{
		"overall_readiness_percentage": assessment.OverallReadiness,
		"estimated_lock_date":          assessment.EstimatedLockDate,
		"critical_blockers":            assessment.CriticalBlockers,
		"risk_factors":                 assessment.RiskFactors,
		"activities":                   activitySummaries(activities),
	}
	contextJSON, err := json.MarshalIndent(promptContext, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("marshal readiness context")
		return fallbackReadinessRecommendations(assessment)
	}

	response, err := client.Complete(ctx, fmt.Sprintf(readinessPrompt, contextJSON))
	if err != nil {
		log.Error().Err(err).Msg("failed to generate readiness recommendations")
		return fallbackReadinessRecommendations(assessment)
	}
	recs, err := llm.ParseRecommendations(response)
	if err != nil {
		log.Error().Err(err).Msg("unparsable readiness recommendation response")
		return fallbackReadinessRecommendations(assessment)
	}
	return recs
}

func activitySummaries(activities []CloseoutActivity) []map[string]any {
	summaries := make([]map[string]any, 0, len(activities))
	for _, a := range activities {
		summaries = append(summaries, map[string]any{
			"name":                     a.Name,
			"status":                   a.Status,
			"completion_percentage":    a.CompletionPercentage,
			"estimated_days_remaining": a.EstimatedDaysLeft,
		})
	}
	return summaries
}

// fallbackReadinessRecommendations grades the deterministic list by how far
// from lock the study is and whether anything is blocked.
func fallbackReadinessRecommendations(assessment ReadinessAssessment) []string {
	if len(assessment.CriticalBlockers) > 0 {
		return []string{
			"Escalate critical blockers to study leadership immediately",
			"Convene daily data review meetings until blockers clear",
			"Assign dedicated resources to critical query resolution",
			"Re-baseline the database lock timeline",
		}
	}
	if assessment.OverallReadiness < 70 {
		return []string{
			"Accelerate open query resolution with site follow-up calls",
			"Prioritize safety event reconciliation",
			"Complete outstanding close-out monitoring visits",
			"Review resource allocation across cleaning activities",
		}
	}
	return []string{
		"Maintain current query resolution pace",
		"Schedule final data review meeting",
		"Prepare database lock checklist sign-offs",
		"Confirm final monitoring visit reports are filed",
	}
}

package risk

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/llm"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// SiteRiskAssessment is the aggregate scoring output for one site.
type SiteRiskAssessment struct {
	SiteID               string          `json:"site_id"`
	SiteName             string          `json:"site_name"`
	Country              string          `json:"country"`
	OverallRiskScore     float64         `json:"overall_risk_score"`
	RiskLevel            model.RiskLevel `json:"risk_level"`
	KRIScores            []KRIScore      `json:"kri_scores"`
	PriorityRank         int             `json:"priority_rank"`
	RecommendedActions   []string        `json:"recommended_actions"`
	NextVisitRecommended string          `json:"next_visit_recommended"`
	VisitUrgency         string          `json:"visit_urgency"`
	AssessmentTimestamp  string          `json:"assessment_timestamp"`
}

// AssessSites scores every site against the KRI set, generates
// recommendations and visit dates, then ranks the results by overall score
// descending. Priority ranks are assigned fresh on every call.
func AssessSites(ctx context.Context, client llm.Client, sites []SiteData, kris []KeyRiskIndicator, now time.Time) []SiteRiskAssessment {
	assessments := make([]SiteRiskAssessment, 0, len(sites))

	for _, site := range sites {
		scores := ScoreSite(site, kris)
		overall := OverallScore(scores)
		level := Classify(overall)

		recommendations := GenerateRecommendations(ctx, client, site, scores, level)
		nextVisit, urgency := NextVisit(level, site.DaysSinceLastVisit, now)

		assessments = append(assessments, SiteRiskAssessment{
			SiteID:               site.SiteID,
			SiteName:             site.SiteName,
			Country:              site.Country,
			OverallRiskScore:     overall,
			RiskLevel:            level,
			KRIScores:            scores,
			RecommendedActions:   recommendations,
			NextVisitRecommended: nextVisit,
			VisitUrgency:         urgency,
			AssessmentTimestamp:  now.UTC().Format(time.RFC3339),
		})
	}

	Rank(assessments)
	log.Info().Int("sites", len(assessments)).Msg("completed site risk assessment")
	return assessments
}

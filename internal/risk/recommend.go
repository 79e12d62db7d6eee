package risk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/llm"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

type recommendationContext struct {
	SiteInfo struct {
		SiteID             string `json:"site_id"`
		SiteName           string `json:"site_name"`
		Country            string `json:"country"`
		EnrollmentTarget   int    `json:"enrollment_target"`
		EnrollmentActual   int    `json:"enrollment_actual"`
		DaysSinceLastVisit int    `json:"days_since_last_visit"`
	} `json:"site_info"`
	RiskAssessment struct {
		OverallRiskLevel model.RiskLevel `json:"overall_risk_level"`
		HighRiskKRIs     []offendingKRI  `json:"high_risk_kris"`
	} `json:"risk_assessment"`
}

type offendingKRI struct {
	Name      string          `json:"name"`
	Value     float64         `json:"value"`
	RiskLevel model.RiskLevel `json:"risk_level"`
}

const recommendationPrompt = `You are a clinical trial monitoring specialist. Based on the site risk assessment data below, provide specific, actionable recommendations for monitoring activities.

Context: %s

Provide 3-5 specific recommendations in JSON format:
{
    "recommendations": [
        "Specific actionable recommendation 1",
        "Specific actionable recommendation 2"
    ]
}

Focus on:
1. Risk mitigation strategies
2. Data quality improvements
3. Protocol compliance enhancement
4. Operational efficiency
5. Timeline and resource optimization`

// GenerateRecommendations asks the collaborator for monitoring
// recommendations, supplying the site profile and its HIGH/CRITICAL KRIs as
// context. Any collaborator failure falls back to the deterministic list for
// the risk level; this function never returns an empty slice.
func GenerateRecommendations(ctx context.Context, client llm.Client, site SiteData, scores []KRIScore, level model.RiskLevel) []string {
	if client == nil {
		log.Warn().Msg("collaborator not configured, using fallback recommendations")
		return fallbackRecommendations(level)
	}

	var rc recommendationContext
	rc.SiteInfo.SiteID = site.SiteID
	rc.SiteInfo.SiteName = site.SiteName
	rc.SiteInfo.Country = site.Country
	rc.SiteInfo.EnrollmentTarget = site.EnrollmentTarget
	rc.SiteInfo.EnrollmentActual = site.EnrollmentActual
	rc.SiteInfo.DaysSinceLastVisit = site.DaysSinceLastVisit
	rc.RiskAssessment.OverallRiskLevel = level
	rc.RiskAssessment.HighRiskKRIs = []offendingKRI{}
	for _, s := range scores {
		if s.RiskLevel == model.RiskHigh || s.RiskLevel == model.RiskCritical {
			rc.RiskAssessment.HighRiskKRIs = append(rc.RiskAssessment.HighRiskKRIs, offendingKRI{
				Name:      s.KRIName,
				Value:     s.RawValue,
				RiskLevel: s.RiskLevel,
			})
		}
	}

	contextJSON, err := json.MarshalIndent(rc, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("marshal recommendation context")
		return fallbackRecommendations(level)
	}

	response, err := client.Complete(ctx, fmt.Sprintf(recommendationPrompt, contextJSON))
	if err != nil {
		log.Error().Err(err).Str("site_id", site.SiteID).Msg("failed to generate recommendations")
		return fallbackRecommendations(level)
	}
	recs, err := llm.ParseRecommendations(response)
	if err != nil {
		log.Error().Err(err).Str("site_id", site.SiteID).Msg("unparsable recommendation response")
		return fallbackRecommendations(level)
	}
	return recs
}

// fallbackRecommendations is a pure function of risk level. The wording is
// graded: CRITICAL escalates to an immediate unscheduled visit, HIGH to a
// priority visit within two weeks, everything else to routine guidance.
func fallbackRecommendations(level model.RiskLevel) []string {
	switch level {
	case model.RiskCritical:
		return []string{
			"Schedule immediate unscheduled monitoring visit",
			"Conduct comprehensive site assessment",
			"Review and retrain site staff",
			"Implement enhanced monitoring procedures",
		}
	case model.RiskHigh:
		return []string{
			"Schedule priority monitoring visit within 2 weeks",
			"Focus on data quality and protocol compliance",
			"Provide targeted site training",
			"Increase monitoring frequency",
		}
	default:
		return []string{
			"Continue routine monitoring schedule",
			"Monitor KRI trends",
			"Provide preventive guidance",
			"Optimize visit efficiency",
		}
	}
}

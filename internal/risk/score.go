package risk

import (
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// KRIScore is the per-(site, KRI) scoring result. Recomputed fully on every
// run and never persisted on its own.
type KRIScore struct {
	KRIID             string          `json:"kri_id"`
	KRIName           string          `json:"kri_name"`
	RawValue          float64         `json:"raw_value"`
	NormalizedScore   float64         `json:"normalized_score"`
	RiskLevel         model.RiskLevel `json:"risk_level"`
	Weight            float64         `json:"weight"`
	WeightedScore     float64         `json:"weighted_score"`
	ThresholdExceeded bool            `json:"threshold_exceeded"`
}

// Normalize maps a raw metric value into the fixed {0, 0.33, 0.66, 1.0} band
// for the KRI's direction and computes the weighted contribution. The
// threshold_exceeded flag is evaluated against the medium threshold with a
// strict comparison, independent of the band label; at exact band boundaries
// the two can disagree, and that disagreement is part of the contract.
func Normalize(kri KeyRiskIndicator, rawValue float64) KRIScore {
	var normalized float64
	var level model.RiskLevel

	if kri.Direction == model.HigherIsWorse {
		switch {
		case rawValue <= kri.ThresholdLow:
			normalized, level = 0.0, model.RiskLow
		case rawValue <= kri.ThresholdMedium:
			normalized, level = 0.33, model.RiskMedium
		case rawValue <= kri.ThresholdHigh:
			normalized, level = 0.66, model.RiskHigh
		default:
			normalized, level = 1.0, model.RiskCritical
		}
	} else {
		switch {
		case rawValue >= kri.ThresholdHigh:
			normalized, level = 0.0, model.RiskLow
		case rawValue >= kri.ThresholdMedium:
			normalized, level = 0.33, model.RiskMedium
		case rawValue >= kri.ThresholdLow:
			normalized, level = 0.66, model.RiskHigh
		default:
			normalized, level = 1.0, model.RiskCritical
		}
	}

	exceeded := (kri.Direction == model.HigherIsWorse && rawValue > kri.ThresholdMedium) ||
		(kri.Direction == model.LowerIsWorse && rawValue < kri.ThresholdMedium)

	return KRIScore{
		KRIID:             kri.ID,
		KRIName:           kri.Name,
		RawValue:          rawValue,
		NormalizedScore:   normalized,
		RiskLevel:         level,
		Weight:            kri.Weight,
		WeightedScore:     normalized * kri.Weight,
		ThresholdExceeded: exceeded,
	}
}

// ScoreSite computes one KRIScore per configured KRI. A metric the site does
// not report defaults to the safe value 0.0; that choice can mask missing
// data as low risk, so each miss is logged.
func ScoreSite(site SiteData, kris []KeyRiskIndicator) []KRIScore {
	values := site.MetricValues()
	scores := make([]KRIScore, 0, len(kris))
	for _, kri := range kris {
		raw, ok := values[kri.ID]
		if !ok {
			log.Warn().
				Str("site_id", site.SiteID).
				Str("kri_id", kri.ID).
				Msg("metric missing, scoring as 0.0")
			raw = 0.0
		}
		scores = append(scores, Normalize(kri, raw))
	}
	return scores
}

// OverallScore is the weighted mean of normalized KRI scores, 0.0 for an
// empty or zero-weight set.
func OverallScore(scores []KRIScore) float64 {
	if len(scores) == 0 {
		return 0.0
	}
	var totalWeighted, totalWeight float64
	for _, s := range scores {
		totalWeighted += s.WeightedScore
		totalWeight += s.Weight
	}
	if totalWeight <= 0 {
		return 0.0
	}
	return totalWeighted / totalWeight
}

// Classify applies the global entity-level cutoffs to an overall score.
func Classify(overall float64) model.RiskLevel {
	switch {
	case overall >= 0.75:
		return model.RiskCritical
	case overall >= 0.5:
		return model.RiskHigh
	case overall >= 0.25:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// Rank orders assessments by overall score descending and assigns dense
// priority ranks 1..N. The sort is stable so equal scores keep input order.
func Rank(assessments []SiteRiskAssessment) {
	sort.SliceStable(assessments, func(i, j int) bool {
		return assessments[i].OverallRiskScore > assessments[j].OverallRiskScore
	})
	for i := range assessments {
		assessments[i].PriorityRank = i + 1
	}
}

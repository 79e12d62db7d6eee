package risk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// Dashboard is the monitoring prioritization report document.
type Dashboard struct {
	Summary         DashboardSummary          `json:"dashboard_summary"`
	PriorityRanking []RankedSite              `json:"priority_ranking"`
	KRIAnalysis     KRIAnalysis               `json:"kri_analysis"`
	VisitScheduling []VisitSchedule           `json:"visit_scheduling"`
	RegionalCounts  map[string]map[string]int `json:"regional_analysis"`
}

// DashboardSummary holds fleet-level counts.
type DashboardSummary struct {
	TotalSites          int     `json:"total_sites"`
	CriticalRiskSites   int     `json:"critical_risk_sites"`
	HighRiskSites       int     `json:"high_risk_sites"`
	MediumRiskSites     int     `json:"medium_risk_sites"`
	LowRiskSites        int     `json:"low_risk_sites"`
	SitesRequiringVisit int     `json:"sites_requiring_immediate_visits"`
	AvgRiskScore        float64 `json:"avg_risk_score"`
	DashboardTimestamp  string  `json:"dashboard_timestamp"`
}

// RankedSite is one priority-ranking row.
type RankedSite struct {
	PriorityRank         int             `json:"priority_rank"`
	SiteID               string          `json:"site_id"`
	SiteName             string          `json:"site_name"`
	OverallRiskScore     float64         `json:"overall_risk_score"`
	RiskLevel            model.RiskLevel `json:"risk_level"`
	NextVisitRecommended string          `json:"next_visit_recommended"`
	VisitUrgency         string          `json:"visit_urgency"`
	TopRiskIndicators    []TopIndicator  `json:"top_risk_indicators"`
	RecommendedActions   []string        `json:"recommended_actions"`
}

// TopIndicator is one of the three worst KRIs for a site.
type TopIndicator struct {
	KRIName   string          `json:"kri_name"`
	RiskLevel model.RiskLevel `json:"risk_level"`
	RawValue  float64         `json:"raw_value"`
}

// KRIAnalysis carries definitions plus cross-site aggregate stats per KRI.
type KRIAnalysis struct {
	Definitions []KRIDefinition           `json:"kri_definitions"`
	Performance map[string]KRIPerformance `json:"kri_performance"`
}

// KRIDefinition echoes the configured KRI metadata.
type KRIDefinition struct {
	KRIID    string            `json:"kri_id"`
	Name     string            `json:"name"`
	Category model.KRICategory `json:"category"`
	Weight   float64           `json:"weight"`
	Unit     string            `json:"unit"`
}

// KRIPerformance aggregates one KRI's raw values across all sites.
type KRIPerformance struct {
	Name                    string  `json:"name"`
	AvgValue                float64 `json:"avg_value"`
	MinValue                float64 `json:"min_value"`
	MaxValue                float64 `json:"max_value"`
	SitesExceedingThreshold int     `json:"sites_exceeding_threshold"`
}

// VisitSchedule is one row of the visit calendar, ordered by date.
type VisitSchedule struct {
	SiteID        string          `json:"site_id"`
	SiteName      string          `json:"site_name"`
	NextVisitDate string          `json:"next_visit_date"`
	Urgency       string          `json:"urgency"`
	RiskLevel     model.RiskLevel `json:"risk_level"`
}

// BuildDashboard assembles the report document from ranked assessments.
func BuildDashboard(assessments []SiteRiskAssessment, kris []KeyRiskIndicator, now time.Time) Dashboard {
	summary := DashboardSummary{
		TotalSites:         len(assessments),
		DashboardTimestamp: now.UTC().Format(time.RFC3339),
	}
	var scoreSum float64
	for _, a := range assessments {
		scoreSum += a.OverallRiskScore
		switch a.RiskLevel {
		case model.RiskCritical:
			summary.CriticalRiskSites++
		case model.RiskHigh:
			summary.HighRiskSites++
		case model.RiskMedium:
			summary.MediumRiskSites++
		default:
			summary.LowRiskSites++
		}
		if a.VisitUrgency == UrgencyImmediate || a.VisitUrgency == UrgencyUrgent {
			summary.SitesRequiringVisit++
		}
	}
	if len(assessments) > 0 {
		summary.AvgRiskScore = scoreSum / float64(len(assessments))
	}

	ranking := make([]RankedSite, 0, len(assessments))
	regional := map[string]map[string]int{}
	for _, a := range assessments {
		country := a.Country
		if country == "" {
			country = "unknown"
		}
		if regional[country] == nil {
			regional[country] = map[string]int{}
		}
		regional[country]["total_sites"]++
		regional[country][string(a.RiskLevel)+"_risk_sites"]++

		ranking = append(ranking, RankedSite{
			PriorityRank:         a.PriorityRank,
			SiteID:               a.SiteID,
			SiteName:             a.SiteName,
			OverallRiskScore:     a.OverallRiskScore,
			RiskLevel:            a.RiskLevel,
			NextVisitRecommended: a.NextVisitRecommended,
			VisitUrgency:         a.VisitUrgency,
			TopRiskIndicators:    topIndicators(a.KRIScores, 3),
			RecommendedActions:   a.RecommendedActions,
		})
	}

	schedule := make([]VisitSchedule, 0, len(assessments))
	for _, a := range assessments {
		schedule = append(schedule, VisitSchedule{
			SiteID:        a.SiteID,
			SiteName:      a.SiteName,
			NextVisitDate: a.NextVisitRecommended,
			Urgency:       a.VisitUrgency,
			RiskLevel:     a.RiskLevel,
		})
	}
	sort.SliceStable(schedule, func(i, j int) bool {
		return schedule[i].NextVisitDate < schedule[j].NextVisitDate
	})

	analysis := KRIAnalysis{Performance: map[string]KRIPerformance{}}
	for _, kri := range kris {
		analysis.Definitions = append(analysis.Definitions, KRIDefinition{
			KRIID:    kri.ID,
			Name:     kri.Name,
			Category: kri.Category,
			Weight:   kri.Weight,
			Unit:     kri.Unit,
		})

		var values []float64
		for _, a := range assessments {
			for _, s := range a.KRIScores {
				if s.KRIID == kri.ID {
					values = append(values, s.RawValue)
					break
				}
			}
		}
		if len(values) == 0 {
			continue
		}
		perf := KRIPerformance{Name: kri.Name, MinValue: values[0], MaxValue: values[0]}
		var sum float64
		for _, v := range values {
			sum += v
			if v < perf.MinValue {
				perf.MinValue = v
			}
			if v > perf.MaxValue {
				perf.MaxValue = v
			}
			exceeded := (kri.Direction == model.HigherIsWorse && v > kri.ThresholdMedium) ||
				(kri.Direction == model.LowerIsWorse && v < kri.ThresholdMedium)
			if exceeded {
				perf.SitesExceedingThreshold++
			}
		}
		perf.AvgValue = sum / float64(len(values))
		analysis.Performance[kri.ID] = perf
	}

	return Dashboard{
		Summary:         summary,
		PriorityRanking: ranking,
		KRIAnalysis:     analysis,
		VisitScheduling: schedule,
		RegionalCounts:  regional,
	}
}

func topIndicators(scores []KRIScore, n int) []TopIndicator {
	ordered := make([]KRIScore, len(scores))
	copy(ordered, scores)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].NormalizedScore > ordered[j].NormalizedScore
	})
	if len(ordered) > n {
		ordered = ordered[:n]
	}
	top := make([]TopIndicator, 0, len(ordered))
	for _, s := range ordered {
		top = append(top, TopIndicator{KRIName: s.KRIName, RiskLevel: s.RiskLevel, RawValue: s.RawValue})
	}
	return top
}

// WriteDashboard serializes the dashboard into a timestamped JSON file under
// outputDir and returns the file path.
func WriteDashboard(dashboard Dashboard, outputDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := fmt.Sprintf("monitoring_prioritization_dashboard_%s.json", now.UTC().Format("20060102150405"))
	path := filepath.Join(outputDir, name)

	data, err := json.MarshalIndent(dashboard, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal dashboard: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write dashboard: %w", err)
	}
	log.Info().Str("path", path).Msg("monitoring prioritization dashboard saved")
	return path, nil
}

// Package risk implements the KRI-based site monitoring prioritization
// engine: per-metric normalization, weighted aggregation, risk banding,
// ranking and visit scheduling.
package risk

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// KeyRiskIndicator is an immutable KRI definition loaded once per run.
type KeyRiskIndicator struct {
	ID              string            `json:"kri_id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Category        model.KRICategory `json:"category"`
	Weight          float64           `json:"weight"`
	ThresholdLow    float64           `json:"threshold_low"`
	ThresholdMedium float64           `json:"threshold_medium"`
	ThresholdHigh   float64           `json:"threshold_high"`
	Unit            string            `json:"unit"`
	Direction       model.Direction   `json:"direction"`
}

// SiteData is a point-in-time snapshot of one clinical site.
type SiteData struct {
	SiteID                 string  `json:"site_id"`
	SiteName               string  `json:"site_name"`
	PrincipalInvestigator  string  `json:"principal_investigator"`
	Country                string  `json:"country"`
	Region                 string  `json:"region"`
	EnrollmentTarget       int     `json:"enrollment_target"`
	EnrollmentActual       int     `json:"enrollment_actual"`
	EnrollmentRate         float64 `json:"enrollment_rate"`
	DataQueryRate          float64 `json:"data_query_rate"`
	ProtocolDeviations     int     `json:"protocol_deviations"`
	SeriousAERate          float64 `json:"serious_ae_rate"`
	LastMonitoringVisit    string  `json:"last_monitoring_visit"`
	DaysSinceLastVisit     int     `json:"days_since_last_visit"`
	DataQualityScore       float64 `json:"data_quality_score"`
	SourceDataVerification float64 `json:"source_data_verification_rate"`
}

type kriConfigFile struct {
	KeyRiskIndicators []kriWire `json:"key_risk_indicators"`
}

type kriWire struct {
	KRIID           string            `json:"kri_id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Category        model.KRICategory `json:"category"`
	Weight          *float64          `json:"weight"`
	ThresholdLow    *float64          `json:"threshold_low"`
	ThresholdMedium *float64          `json:"threshold_medium"`
	ThresholdHigh   *float64          `json:"threshold_high"`
	Unit            string            `json:"unit"`
	Direction       *model.Direction  `json:"direction"`
}

// LoadKRIConfig reads KRI definitions from a JSON configuration file. A
// missing or malformed file is logged and yields an empty slice; callers
// skip the run when nothing loads.
func LoadKRIConfig(path string) []KeyRiskIndicator {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("KRI configuration file not found")
		return nil
	}
	var file kriConfigFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Error().Err(err).Str("path", path).Msg("KRI configuration is not valid JSON")
		return nil
	}

	kris := make([]KeyRiskIndicator, 0, len(file.KeyRiskIndicators))
	for _, item := range file.KeyRiskIndicators {
		kri := KeyRiskIndicator{
			ID:              item.KRIID,
			Name:            item.Name,
			Description:     item.Description,
			Category:        item.Category,
			Weight:          valueOr(item.Weight, 1.0),
			ThresholdLow:    valueOr(item.ThresholdLow, 0.3),
			ThresholdMedium: valueOr(item.ThresholdMedium, 0.6),
			ThresholdHigh:   valueOr(item.ThresholdHigh, 0.8),
			Unit:            item.Unit,
			Direction:       model.HigherIsWorse,
		}
		if item.Direction != nil {
			kri.Direction = *item.Direction
		}
		kris = append(kris, kri)
	}
	log.Info().Int("count", len(kris)).Msg("loaded KRI configurations")
	return kris
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

type siteFeedFile struct {
	Sites []SiteData `json:"sites"`
}

// LoadSites reads the site performance feed. DaysSinceLastVisit is derived
// from the last monitoring visit date against the supplied clock; an
// unparsable date is logged and leaves the derived value at zero.
func LoadSites(path string, now time.Time) []SiteData {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("site data file not found")
		return nil
	}
	var file siteFeedFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Error().Err(err).Str("path", path).Msg("site data is not valid JSON")
		return nil
	}

	for i := range file.Sites {
		site := &file.Sites[i]
		if site.LastMonitoringVisit == "" {
			continue
		}
		visited, err := parseVisitDate(site.LastMonitoringVisit)
		if err != nil {
			log.Warn().
				Str("site_id", site.SiteID).
				Str("value", site.LastMonitoringVisit).
				Msg("invalid last monitoring visit date")
			continue
		}
		site.DaysSinceLastVisit = int(now.Sub(visited).Hours() / 24)
	}
	log.Info().Int("count", len(file.Sites)).Msg("parsed site performance data")
	return file.Sites
}

func parseVisitDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format %q", value)
}

// MetricValues maps KRI identifiers to the site's raw metric values,
// including the two derived rates.
func (s SiteData) MetricValues() map[string]float64 {
	return map[string]float64{
		"enrollment_rate":               s.EnrollmentRate,
		"data_query_rate":               s.DataQueryRate,
		"protocol_deviation_rate":       float64(s.ProtocolDeviations) / float64(max(s.EnrollmentActual, 1)),
		"serious_ae_rate":               s.SeriousAERate,
		"days_since_last_visit":         float64(s.DaysSinceLastVisit),
		"data_quality_score":            s.DataQualityScore,
		"source_data_verification_rate": s.SourceDataVerification,
		"enrollment_percentage":         float64(s.EnrollmentActual) / float64(max(s.EnrollmentTarget, 1)) * 100,
	}
}

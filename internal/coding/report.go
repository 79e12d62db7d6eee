package coding

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

// Report is the medical coding report document.
type Report struct {
	Summary     ReportSummary      `json:"coding_summary"`
	Suggestions []CodingSuggestion `json:"coding_suggestions"`
	Statistics  ReportStatistics   `json:"statistics"`
}

// ReportSummary buckets the primary suggestions by confidence band.
type ReportSummary struct {
	TotalTerms            int    `json:"total_terms"`
	HighConfidenceCodes   int    `json:"high_confidence_codes"`
	MediumConfidenceCodes int    `json:"medium_confidence_codes"`
	LowConfidenceCodes    int    `json:"low_confidence_codes"`
	UncodedTerms          int    `json:"uncoded_terms"`
	ReportTimestamp       string `json:"report_timestamp"`
}

// ReportStatistics carries cross-term aggregates.
type ReportStatistics struct {
	CodingSystemsUsed  []model.CodingSystem `json:"coding_systems_used"`
	AvgConfidenceScore float64              `json:"avg_confidence_score"`
}

// BuildReport assembles the report document. Confidence bands: high ≥ 0.8,
// medium ≥ 0.5, low below that; UNCODED placeholders counted separately.
func BuildReport(suggestions []CodingSuggestion, now time.Time) Report {
	summary := ReportSummary{
		TotalTerms:      len(suggestions),
		ReportTimestamp: now.UTC().Format(time.RFC3339),
	}
	systems := map[model.CodingSystem]bool{}
	var confidenceSum float64

	for _, s := range suggestions {
		confidence := s.PrimarySuggestion.ConfidenceScore
		confidenceSum += confidence
		switch {
		case confidence >= 0.8:
			summary.HighConfidenceCodes++
		case confidence >= 0.5:
			summary.MediumConfidenceCodes++
		default:
			summary.LowConfidenceCodes++
		}
		if s.PrimarySuggestion.Code == "UNCODED" {
			summary.UncodedTerms++
		}
		systems[s.PrimarySuggestion.CodingSystem] = true
	}

	stats := ReportStatistics{CodingSystemsUsed: []model.CodingSystem{}}
	for system := range systems {
		stats.CodingSystemsUsed = append(stats.CodingSystemsUsed, system)
	}
	sort.Slice(stats.CodingSystemsUsed, func(i, j int) bool {
		return stats.CodingSystemsUsed[i] < stats.CodingSystemsUsed[j]
	})
	if len(suggestions) > 0 {
		stats.AvgConfidenceScore = confidenceSum / float64(len(suggestions))
	}

	return Report{Summary: summary, Suggestions: suggestions, Statistics: stats}
}

// WriteReport serializes the coding report into a timestamped JSON file
// under outputDir and returns the file path.
func WriteReport(report Report, outputDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := fmt.Sprintf("medical_coding_report_%s.json", now.UTC().Format("20060102150405"))
	path := filepath.Join(outputDir, name)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal coding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write coding report: %w", err)
	}
	log.Info().Str("path", path).Msg("medical coding report saved")
	return path, nil
}

// ReviewItem is one row of the human review queue.
type ReviewItem struct {
	TermID           string             `json:"term_id"`
	OriginalText     string             `json:"original_text"`
	SuggestedCode    string             `json:"suggested_code"`
	SuggestedTerm    string             `json:"suggested_term"`
	Confidence       float64            `json:"confidence"`
	SystemOrganClass string             `json:"system_organ_class"`
	CodingSystem     model.CodingSystem `json:"coding_system"`
	Reasoning        string             `json:"reasoning"`
	ReviewStatus     string             `json:"review_status"`
	ReviewerComments string             `json:"reviewer_comments"`
	FinalCode        string             `json:"final_code"`
	FinalTerm        string             `json:"final_term"`
}

// ExportForReview writes the primary suggestions as a pending review queue
// and returns the file path.
func ExportForReview(suggestions []CodingSuggestion, outputDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	items := make([]ReviewItem, 0, len(suggestions))
	for _, s := range suggestions {
		items = append(items, ReviewItem{
			TermID:           s.TermID,
			OriginalText:     s.OriginalText,
			SuggestedCode:    s.PrimarySuggestion.Code,
			SuggestedTerm:    s.PrimarySuggestion.PreferredTerm,
			Confidence:       s.PrimarySuggestion.ConfidenceScore,
			SystemOrganClass: s.PrimarySuggestion.SystemOrganClass,
			CodingSystem:     s.PrimarySuggestion.CodingSystem,
			Reasoning:        s.PrimarySuggestion.Reasoning,
			ReviewStatus:     "pending",
		})
	}

	name := fmt.Sprintf("coding_review_queue_%s.json", now.UTC().Format("20060102150405"))
	path := filepath.Join(outputDir, name)
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal review queue: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write review queue: %w", err)
	}
	log.Info().Str("path", path).Int("items", len(items)).Msg("coding review queue exported")
	return path, nil
}

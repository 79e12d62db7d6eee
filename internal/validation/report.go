package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// DataQuery is one automated query raised against the EDC for a finding.
type DataQuery struct {
	QueryID             string              `json:"query_id"`
	SubjectID           string              `json:"subject_id"`
	FieldName           string              `json:"field_name"`
	QueryType           string              `json:"query_type"`
	Priority            model.IssueSeverity `json:"priority"`
	QueryText           string              `json:"query_text"`
	SuggestedResolution string              `json:"suggested_resolution"`
	CreatedTimestamp    string              `json:"created_timestamp"`
	Status              string              `json:"status"`
}

// CreateDataQueries turns findings into open EDC queries and writes them to
// a timestamped JSON file under outputDir.
func CreateDataQueries(issues []ValidationIssue, outputDir string, now time.Time) ([]DataQuery, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	queries := make([]DataQuery, 0, len(issues))
	for _, issue := range issues {
		queries = append(queries, DataQuery{
			QueryID:             "DQ_" + issue.IssueID,
			SubjectID:           issue.SubjectID,
			FieldName:           issue.FieldName,
			QueryType:           "data_validation",
			Priority:            issue.Severity,
			QueryText:           "Data Validation Issue: " + issue.IssueDescription,
			SuggestedResolution: issue.SuggestedAction,
			CreatedTimestamp:    issue.Timestamp,
			Status:              "open",
		})
	}

	name := fmt.Sprintf("data_queries_%s.json", now.UTC().Format("20060102150405"))
	path := filepath.Join(outputDir, name)
	data, err := json.MarshalIndent(queries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal data queries: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write data queries: %w", err)
	}
	log.Info().Int("queries", len(queries)).Str("path", path).Msg("data queries created")
	return queries, nil
}

// Report is the validation run report document.
type Report struct {
	Summary ReportSummary     `json:"validation_summary"`
	Issues  []ValidationIssue `json:"issues"`
}

// ReportSummary counts findings per severity.
type ReportSummary struct {
	TotalDataPoints     int    `json:"total_data_points"`
	TotalIssues         int    `json:"total_issues"`
	CriticalIssues      int    `json:"critical_issues"`
	MajorIssues         int    `json:"major_issues"`
	MinorIssues         int    `json:"minor_issues"`
	ValidationTimestamp string `json:"validation_timestamp"`
}

// WriteReport serializes the validation report into a timestamped JSON file
// under outputDir and returns the file path.
func WriteReport(points []DataPoint, issues []ValidationIssue, outputDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	summary := ReportSummary{
		TotalDataPoints:     len(points),
		TotalIssues:         len(issues),
		ValidationTimestamp: now.UTC().Format(time.RFC3339),
	}
	for _, issue := range issues {
		switch issue.Severity {
		case model.IssueCritical:
			summary.CriticalIssues++
		case model.IssueMajor:
			summary.MajorIssues++
		case model.IssueMinor:
			summary.MinorIssues++
		}
	}

	name := fmt.Sprintf("validation_report_%s.json", now.UTC().Format("20060102150405"))
	path := filepath.Join(outputDir, name)
	data, err := json.MarshalIndent(Report{Summary: summary, Issues: issues}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal validation report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write validation report: %w", err)
	}
	log.Info().Str("path", path).Msg("validation report saved")
	return path, nil
}

package validation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIssues() []ValidationIssue {
	return []ValidationIssue{
		{IssueID: "VR001_SUBJ-01_20260401000000", RuleID: "VR001", SubjectID: "SUBJ-01", FieldName: "systolic_bp",
			IssueDescription: "Value 300 is above maximum threshold 250", Severity: model.IssueCritical,
			SuggestedAction: "Verify systolic_bp value for subject SUBJ-01", Timestamp: "2026-04-01T00:00:00Z"},
		{IssueID: "VR002_SUBJ-02_20260401000000", RuleID: "VR002", SubjectID: "SUBJ-02", FieldName: "consent_date",
			IssueDescription: "Required field 'consent_date' is missing or empty", Severity: model.IssueMajor,
			Timestamp: "2026-04-01T00:00:00Z"},
	}
}

func TestCreateDataQueries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	queries, err := CreateDataQueries(sampleIssues(), dir, testNow)
	require.NoError(t, err)
	require.Len(t, queries, 2)

	assert.Equal(t, "DQ_VR001_SUBJ-01_20260401000000", queries[0].QueryID)
	assert.Equal(t, "open", queries[0].Status)
	assert.Equal(t, model.IssueCritical, queries[0].Priority)
	assert.Contains(t, queries[0].QueryText, "Data Validation Issue:")

	matches, err := filepath.Glob(filepath.Join(dir, "data_queries_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
}

func TestWriteReport_SeverityCounts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	points := make([]DataPoint, 5)
	path, err := WriteReport(points, sampleIssues(), dir, testNow)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var report Report
	require.NoError(t, json.Unmarshal(data, &report))

	assert.Equal(t, 5, report.Summary.TotalDataPoints)
	assert.Equal(t, 2, report.Summary.TotalIssues)
	assert.Equal(t, 1, report.Summary.CriticalIssues)
	assert.Equal(t, 1, report.Summary.MajorIssues)
	assert.Equal(t, 0, report.Summary.MinorIssues)
	require.Len(t, report.Issues, 2)
}

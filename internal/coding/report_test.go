package coding

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDictionaries_MissingFilesYieldEmptyDictionaries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "meddra_dictionary.json", `{
		"terms": [{"code": "10019211", "preferred_term": "Headache"}]
	}`)

	dicts := LoadDictionaries(dir)
	require.Len(t, dicts, 4)
	assert.Len(t, dicts[model.SystemMedDRA].Terms, 1)
	assert.Empty(t, dicts[model.SystemICD10].Terms)
	assert.Empty(t, dicts[model.SystemWHODD].Terms)
	assert.Empty(t, dicts[model.SystemSNOMED].Terms)
}

func TestParseUncodedTerms_Defaults(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	path := writeFile(t, t.TempDir(), "terms.json", `{
		"uncoded_terms": [
			{"original_text": "severe headache", "subject_id": "SUBJ-01"}
		]
	}`)

	terms := ParseUncodedTerms(path, now)
	require.Len(t, terms, 1)
	assert.Equal(t, "TERM_20260401000000", terms[0].TermID)
	assert.Equal(t, model.TermAdverseEvent, terms[0].TermType)
	assert.Equal(t, "severe headache", terms[0].VerbatimTerm)
	assert.Equal(t, "2026-04-01T00:00:00Z", terms[0].Timestamp)

	assert.Empty(t, ParseUncodedTerms(filepath.Join(t.TempDir(), "nope.json"), now))
}

func TestBuildReport_ConfidenceBands(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	suggestions := []CodingSuggestion{
		{TermID: "T1", PrimarySuggestion: MedicalCode{Code: "A", ConfidenceScore: 0.95, CodingSystem: model.SystemMedDRA}},
		{TermID: "T2", PrimarySuggestion: MedicalCode{Code: "B", ConfidenceScore: 0.6, CodingSystem: model.SystemICD10}},
		{TermID: "T3", PrimarySuggestion: MedicalCode{Code: "UNCODED", ConfidenceScore: 0.0, CodingSystem: model.SystemMedDRA}},
	}

	report := BuildReport(suggestions, now)

	assert.Equal(t, 3, report.Summary.TotalTerms)
	assert.Equal(t, 1, report.Summary.HighConfidenceCodes)
	assert.Equal(t, 1, report.Summary.MediumConfidenceCodes)
	assert.Equal(t, 1, report.Summary.LowConfidenceCodes)
	assert.Equal(t, 1, report.Summary.UncodedTerms)
	assert.InDelta(t, (0.95+0.6)/3, report.Statistics.AvgConfidenceScore, 1e-9)
	assert.ElementsMatch(t, []model.CodingSystem{model.SystemMedDRA, model.SystemICD10}, report.Statistics.CodingSystemsUsed)
}

func TestBuildReport_Empty(t *testing.T) {
	t.Parallel()

	report := BuildReport(nil, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	assert.Zero(t, report.Summary.TotalTerms)
	assert.Zero(t, report.Statistics.AvgConfidenceScore)
}

func TestWriteReportAndReviewQueue(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	suggestions := []CodingSuggestion{
		{TermID: "T1", OriginalText: "headache", PrimarySuggestion: MedicalCode{Code: "10019211", PreferredTerm: "Headache", ConfidenceScore: 0.95}},
	}

	reportPath, err := WriteReport(BuildReport(suggestions, now), dir, now)
	require.NoError(t, err)
	assert.Contains(t, reportPath, "medical_coding_report_")

	reviewPath, err := ExportForReview(suggestions, dir, now)
	require.NoError(t, err)

	data, err := os.ReadFile(reviewPath)
	require.NoError(t, err)
	var items []ReviewItem
	require.NoError(t, json.Unmarshal(data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "pending", items[0].ReviewStatus)
	assert.Equal(t, "10019211", items[0].SuggestedCode)
}

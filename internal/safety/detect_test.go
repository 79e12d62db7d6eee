package safety

import (
	"os"
	"path/filepath"
	"regexp"
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

func saeRule() SafetyRule {
	return SafetyRule{
		RuleID:         "SR001",
		Name:           "Serious Adverse Event",
		Keywords:       []string{"hospitalization", "death", "life-threatening"},
		Severity:       model.SeverityCritical,
		Description:    "Detects serious adverse events",
		ImmediateAlert: true,
	}
}

func TestLoadRules(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "rules.json", `{
		"safety_rules": [
			{
				"rule_id": "SR001",
				"name": "Serious Adverse Event",
				"keywords": ["hospitalization", "death"],
				"patterns": ["emergency\\s+room"],
				"severity": "critical",
				"description": "SAE detection",
				"immediate_alert": true
			},
			{"rule_id": "SR002", "name": "Mild Reaction", "keywords": ["rash"], "description": "skin"}
		]
	}`)

	rules := LoadRules(path)
	require.Len(t, rules, 2)
	assert.Equal(t, model.SeverityCritical, rules[0].Severity)
	assert.True(t, rules[0].ImmediateAlert)
	assert.Len(t, rules[0].compiled, 1)
	assert.Equal(t, model.SeverityMedium, rules[1].Severity)
}

func TestLoadRules_InvalidPatternIsSkippedButStillCounted(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "rules.json", `{
		"safety_rules": [
			{"rule_id": "SR001", "name": "X", "keywords": ["fever"], "patterns": ["[unclosed"], "description": ""}
		]
	}`)

	rules := LoadRules(path)
	require.Len(t, rules, 1)
	assert.Empty(t, rules[0].compiled)
	require.Len(t, rules[0].Patterns, 1)

	// The broken pattern still dilutes confidence: one keyword hit out of
	// two criteria.
	entries := []DataEntry{{EntryID: "E1", SubjectID: "SUBJ-01", Content: "patient reports fever"}}
	events := DetectEvents(entries, rules)
	require.Len(t, events, 1)
	assert.InDelta(t, 0.5, events[0].Confidence, 1e-9)
}

func TestLoadRules_MissingOrMalformedFile(t *testing.T) {
	t.Parallel()

	assert.Empty(t, LoadRules(filepath.Join(t.TempDir(), "nope.json")))

	path := writeFile(t, t.TempDir(), "bad.json", "{not json")
	assert.Empty(t, LoadRules(path))
}

func TestDetectEvents_KeywordAndPatternMatching(t *testing.T) {
	t.Parallel()

	rule := saeRule()
	rule.Patterns = []string{`emergency\s+room`}
	rule.compiled = []*regexp.Regexp{regexp.MustCompile(`(?i)emergency\s+room`)}

	entries := []DataEntry{
		{EntryID: "E1", SubjectID: "SUBJ-01", Source: model.SourceEDC, Timestamp: "2026-04-01T00:00:00Z",
			Content: "Subject required Hospitalization after an emergency  room visit"},
		{EntryID: "E2", SubjectID: "SUBJ-02", Source: model.SourcePatientApp,
			Content: "mild headache resolved without intervention"},
	}

	events := DetectEvents(entries, []SafetyRule{rule})
	require.Len(t, events, 1)
	assert.Equal(t, "SE_E1_SR001", events[0].EventID)
	assert.Equal(t, "SUBJ-01", events[0].SubjectID)
	assert.Equal(t, model.SeverityCritical, events[0].Severity)
	assert.Equal(t, model.SourceEDC, events[0].Source)
	// 1 keyword + 1 pattern out of 4 criteria.
	assert.InDelta(t, 0.5, events[0].Confidence, 1e-9)
	assert.Equal(t, "Potential Serious Adverse Event detected", events[0].Description)
}

func TestDetectEvents_BelowThresholdIsDropped(t *testing.T) {
	t.Parallel()

	rule := SafetyRule{
		RuleID:   "SR003",
		Name:     "Broad Rule",
		Keywords: []string{"death", "stroke", "seizure", "anaphylaxis"},
		Severity: model.SeverityHigh,
	}

	// 1 of 4 criteria = 0.25, under the 0.3 gate.
	entries := []DataEntry{{EntryID: "E1", Content: "possible seizure observed"}}
	assert.Empty(t, DetectEvents(entries, []SafetyRule{rule}))
}

func TestDetectEvents_ConfidenceCappedAtOne(t *testing.T) {
	t.Parallel()

	rule := SafetyRule{RuleID: "SR004", Name: "Single", Keywords: []string{"death"}, Severity: model.SeverityCritical}
	entries := []DataEntry{{EntryID: "E1", Content: "death reported, death confirmed"}}

	events := DetectEvents(entries, []SafetyRule{rule})
	require.Len(t, events, 1)
	assert.Equal(t, 1.0, events[0].Confidence)
}

func TestParseDataStreams(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	dir := t.TempDir()
	edc := writeFile(t, dir, "edc.json", `{
		"records": [
			{"entry_id": "E1", "subject_id": "SUBJ-01", "timestamp": "2026-03-30T00:00:00Z", "content": "hospitalization"},
			{"subject_id": "SUBJ-02", "content": "no id or timestamp"}
		]
	}`)

	entries := ParseDataStreams(map[model.DataSource]string{model.SourceEDC: edc}, now)
	require.Len(t, entries, 2)
	assert.Equal(t, "E1", entries[0].EntryID)
	assert.Equal(t, model.SourceEDC, entries[0].Source)
	assert.Equal(t, "edc_20260401000000", entries[1].EntryID)
	assert.Equal(t, "2026-04-01T00:00:00Z", entries[1].Timestamp)
}

func TestParseDataStreams_MissingFileIsSkipped(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	entries := ParseDataStreams(map[model.DataSource]string{
		model.SourceCallCenter: filepath.Join(t.TempDir(), "nope.json"),
	}, now)
	assert.Empty(t, entries)
}

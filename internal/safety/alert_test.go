package safety

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	response string
	err      error
	prompts  []string
}

func (s *stubClient) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func sampleEvent() SafetyEvent {
	return SafetyEvent{
		EventID:     "SE_E1_SR001",
		RuleID:      "SR001",
		SubjectID:   "SUBJ-01",
		EventType:   "Serious Adverse Event",
		Description: "Potential Serious Adverse Event detected",
		Severity:    model.SeverityCritical,
		Source:      model.SourceEDC,
		Timestamp:   "2026-04-01T00:00:00Z",
		Confidence:  0.5,
		RawData:     "hospitalization reported",
	}
}

func TestGenerateNarrative_UsesCollaborator(t *testing.T) {
	t.Parallel()

	client := &stubClient{response: "  Subject SUBJ-01 was hospitalized following a suspected SAE.  "}
	got := GenerateNarrative(context.Background(), client, sampleEvent())

	assert.Equal(t, "Subject SUBJ-01 was hospitalized following a suspected SAE.", got)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "SE_E1_SR001")
	assert.Contains(t, client.prompts[0], "hospitalization reported")
}

func TestGenerateNarrative_FallbackOnErrorOrNilClient(t *testing.T) {
	t.Parallel()

	got := GenerateNarrative(context.Background(), &stubClient{err: errors.New("upstream unavailable")}, sampleEvent())
	assert.Contains(t, got, "requiring immediate attention")
	assert.Contains(t, got, "SUBJ-01")

	got = GenerateNarrative(context.Background(), nil, sampleEvent())
	assert.Contains(t, got, "Potential safety event detected")
}

func TestCreateAlerts_SeverityRouting(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	critical := sampleEvent()
	low := sampleEvent()
	low.EventID = "SE_E2_SR002"
	low.Severity = model.SeverityLow

	alerts := CreateAlerts(context.Background(), nil, []SafetyEvent{critical, low}, DefaultAlertConfig(), now)
	require.Len(t, alerts, 2)

	assert.Equal(t, "ALERT_SE_E1_SR001", alerts[0].AlertID)
	assert.Equal(t, "Safety Alert - Serious Adverse Event", alerts[0].AlertType)
	assert.Equal(t, []string{"safety@example.com", "cro@example.com"}, alerts[0].Recipients)
	assert.Equal(t, []string{"email", "sms"}, alerts[0].DeliveryMethods)

	assert.Equal(t, []string{"safety@example.com"}, alerts[1].Recipients)
	assert.Equal(t, []string{"email"}, alerts[1].DeliveryMethods)
	assert.Equal(t, "2026-04-01T00:00:00Z", alerts[1].Timestamp)
}

func TestCreateAlerts_UnknownSeverityDefaultsToEmail(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	event := sampleEvent()
	alerts := CreateAlerts(context.Background(), nil, []SafetyEvent{event}, AlertConfig{}, now)

	require.Len(t, alerts, 1)
	assert.Empty(t, alerts[0].Recipients)
	assert.Equal(t, []string{"email"}, alerts[0].DeliveryMethods)
}

func TestLoadAlertConfig_FallsBackToDefaults(t *testing.T) {
	t.Parallel()

	cfg := LoadAlertConfig("")
	assert.Equal(t, DefaultAlertConfig(), cfg)

	cfg = LoadAlertConfig("/does/not/exist.json")
	assert.Equal(t, DefaultAlertConfig(), cfg)

	path := writeFile(t, t.TempDir(), "alerts.json", `{
		"recipients": {"critical": ["pv-lead@example.com"]},
		"delivery_methods": {"critical": ["sms"]}
	}`)
	cfg = LoadAlertConfig(path)
	assert.Equal(t, []string{"pv-lead@example.com"}, cfg.Recipients[model.SeverityCritical])
	assert.Equal(t, []string{"sms"}, cfg.DeliveryMethods[model.SeverityCritical])
}

func TestDispatchAlerts_Tally(t *testing.T) {
	t.Parallel()

	alerts := []SafetyAlert{
		{AlertID: "A1", DeliveryMethods: []string{"email", "sms"}},
		{AlertID: "A2", DeliveryMethods: []string{"email"}},
		{AlertID: "A3", DeliveryMethods: []string{"pager"}},
	}

	results := DispatchAlerts(alerts)
	assert.Equal(t, 2, results.Email)
	assert.Equal(t, 1, results.SMS)
	assert.Equal(t, 0, results.Failed)
}

func TestSaveEventsAndAlerts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	eventsPath, err := SaveEvents([]SafetyEvent{sampleEvent()}, dir, now)
	require.NoError(t, err)
	assert.Contains(t, eventsPath, "safety_events_20260401000000.json")

	alertsPath, err := SaveAlerts([]SafetyAlert{{AlertID: "A1"}}, dir, now)
	require.NoError(t, err)

	data, err := os.ReadFile(alertsPath)
	require.NoError(t, err)
	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "A1", parsed[0]["alert_id"])
}

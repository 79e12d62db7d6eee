package risk

import (
	"context"
	"errors"
	"testing"

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

func TestGenerateRecommendations_ParsesEmbeddedJSON(t *testing.T) {
	t.Parallel()

	client := &stubClient{
		response: "Here you go:\n{\"recommendations\": [\"Retrain coordinators\", \"Audit query workflow\"]}\nThanks!",
	}
	site := SiteData{SiteID: "S1", SiteName: "City Hospital", Country: "US"}
	scores := []KRIScore{{KRIName: "Data Query Rate", RawValue: 9.0, RiskLevel: model.RiskCritical}}

	got := GenerateRecommendations(context.Background(), client, site, scores, model.RiskCritical)

	require.Equal(t, []string{"Retrain coordinators", "Audit query workflow"}, got)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Data Query Rate")
	assert.Contains(t, client.prompts[0], "\"site_id\": \"S1\"")
}

func TestGenerateRecommendations_FallbackOnError(t *testing.T) {
	t.Parallel()

	client := &stubClient{err: errors.New("upstream unavailable")}

	got := GenerateRecommendations(context.Background(), client, SiteData{}, nil, model.RiskCritical)
	require.NotEmpty(t, got)
	assert.Contains(t, got[0], "immediate unscheduled")

	got = GenerateRecommendations(context.Background(), client, SiteData{}, nil, model.RiskHigh)
	require.NotEmpty(t, got)
	assert.Contains(t, got[0], "within 2 weeks")

	got = GenerateRecommendations(context.Background(), client, SiteData{}, nil, model.RiskLow)
	require.NotEmpty(t, got)
	assert.Contains(t, got[0], "routine")
}

func TestGenerateRecommendations_FallbackOnUnparsableResponse(t *testing.T) {
	t.Parallel()

	client := &stubClient{response: "no json here"}
	got := GenerateRecommendations(context.Background(), client, SiteData{}, nil, model.RiskMedium)
	require.NotEmpty(t, got)
}

func TestGenerateRecommendations_NilClientUsesFallback(t *testing.T) {
	t.Parallel()

	got := GenerateRecommendations(context.Background(), nil, SiteData{}, nil, model.RiskHigh)
	require.NotEmpty(t, got)
	assert.Contains(t, got[0], "priority monitoring visit")
}

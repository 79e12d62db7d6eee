package risk

import (
	"testing"

	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func higherIsWorseKRI() KeyRiskIndicator {
	return KeyRiskIndicator{
		ID:              "data_query_rate",
		Name:            "Data Query Rate",
		Category:        model.CategoryDataQuality,
		Weight:          1.0,
		ThresholdLow:    2.0,
		ThresholdMedium: 5.0,
		ThresholdHigh:   8.0,
		Direction:       model.HigherIsWorse,
	}
}

func lowerIsWorseKRI() KeyRiskIndicator {
	return KeyRiskIndicator{
		ID:              "enrollment_rate",
		Name:            "Enrollment Rate",
		Category:        model.CategoryEnrollment,
		Weight:          2.0,
		ThresholdLow:    5.0,
		ThresholdMedium: 10.0,
		ThresholdHigh:   15.0,
		Direction:       model.LowerIsWorse,
	}
}

func TestNormalize_HigherIsWorseBands(t *testing.T) {
	t.Parallel()

	kri := higherIsWorseKRI()
	cases := []struct {
		value float64
		score float64
		level model.RiskLevel
	}{
		{1.0, 0.0, model.RiskLow},
		{2.0, 0.0, model.RiskLow},
		{3.5, 0.33, model.RiskMedium},
		{5.0, 0.33, model.RiskMedium},
		{6.0, 0.66, model.RiskHigh},
		{8.0, 0.66, model.RiskHigh},
		{8.1, 1.0, model.RiskCritical},
	}
	for _, tc := range cases {
		got := Normalize(kri, tc.value)
		assert.InDelta(t, tc.score, got.NormalizedScore, 1e-9, "value %v", tc.value)
		assert.Equal(t, tc.level, got.RiskLevel, "value %v", tc.value)
		assert.Contains(t, []float64{0.0, 0.33, 0.66, 1.0}, got.NormalizedScore)
	}
}

func TestNormalize_LowerIsWorseBands(t *testing.T) {
	t.Parallel()

	kri := lowerIsWorseKRI()
	cases := []struct {
		value float64
		score float64
		level model.RiskLevel
	}{
		{20.0, 0.0, model.RiskLow},
		{15.0, 0.0, model.RiskLow},
		{12.0, 0.33, model.RiskMedium},
		{10.0, 0.33, model.RiskMedium},
		{7.0, 0.66, model.RiskHigh},
		{5.0, 0.66, model.RiskHigh},
		{4.9, 1.0, model.RiskCritical},
	}
	for _, tc := range cases {
		got := Normalize(kri, tc.value)
		assert.InDelta(t, tc.score, got.NormalizedScore, 1e-9, "value %v", tc.value)
		assert.Equal(t, tc.level, got.RiskLevel, "value %v", tc.value)
	}
}

func TestNormalize_EnrollmentCriticalScenario(t *testing.T) {
	t.Parallel()

	got := Normalize(lowerIsWorseKRI(), 3.0)
	assert.Equal(t, 1.0, got.NormalizedScore)
	assert.Equal(t, model.RiskCritical, got.RiskLevel)
	assert.True(t, got.ThresholdExceeded)
}

func TestNormalize_QueryRateHighScenario(t *testing.T) {
	t.Parallel()

	got := Normalize(higherIsWorseKRI(), 6.0)
	assert.Equal(t, 0.66, got.NormalizedScore)
	assert.Equal(t, model.RiskHigh, got.RiskLevel)
	assert.True(t, got.ThresholdExceeded)
	assert.InDelta(t, 0.66, got.WeightedScore, 1e-9)
}

func TestNormalize_ThresholdFlagIndependentOfBand(t *testing.T) {
	t.Parallel()

	// Exactly at the high threshold the band label is HIGH but the flag,
	// which uses a strict comparison against the medium threshold, stays
	// true; exactly at the medium threshold the band is MEDIUM and the flag
	// is false. The flag and the band are computed independently.
	kri := higherIsWorseKRI()

	atMedium := Normalize(kri, 5.0)
	assert.Equal(t, model.RiskMedium, atMedium.RiskLevel)
	assert.False(t, atMedium.ThresholdExceeded)

	atHigh := Normalize(kri, 8.0)
	assert.Equal(t, model.RiskHigh, atHigh.RiskLevel)
	assert.True(t, atHigh.ThresholdExceeded)
}

func TestOverallScore_WeightedMean(t *testing.T) {
	t.Parallel()

	scores := []KRIScore{
		{WeightedScore: 1.6, Weight: 2.0},
		{WeightedScore: 0.4, Weight: 1.0},
		{WeightedScore: 0.3, Weight: 1.5},
	}
	got := OverallScore(scores)
	require.InDelta(t, 2.3/4.5, got, 1e-9)
	assert.Equal(t, model.RiskHigh, Classify(got))
}

func TestOverallScore_Bounds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, OverallScore(nil))
	assert.Equal(t, 0.0, OverallScore([]KRIScore{}))

	all := []KRIScore{{WeightedScore: 3.0, Weight: 3.0}, {WeightedScore: 0.5, Weight: 0.5}}
	got := OverallScore(all)
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)
}

func TestClassify_GlobalCutoffs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.RiskLow, Classify(0.0))
	assert.Equal(t, model.RiskLow, Classify(0.249))
	assert.Equal(t, model.RiskMedium, Classify(0.25))
	assert.Equal(t, model.RiskMedium, Classify(0.499))
	assert.Equal(t, model.RiskHigh, Classify(0.5))
	assert.Equal(t, model.RiskHigh, Classify(0.749))
	assert.Equal(t, model.RiskCritical, Classify(0.75))
	assert.Equal(t, model.RiskCritical, Classify(1.0))
}

func TestRank_StableAndDense(t *testing.T) {
	t.Parallel()

	assessments := []SiteRiskAssessment{
		{SiteID: "S1", OverallRiskScore: 0.5},
		{SiteID: "S2", OverallRiskScore: 0.9},
		{SiteID: "S3", OverallRiskScore: 0.5},
		{SiteID: "S4", OverallRiskScore: 0.1},
	}

	Rank(assessments)

	require.Len(t, assessments, 4)
	assert.Equal(t, "S2", assessments[0].SiteID)
	assert.Equal(t, 1, assessments[0].PriorityRank)
	// Tie between S1 and S3 keeps input order.
	assert.Equal(t, "S1", assessments[1].SiteID)
	assert.Equal(t, 2, assessments[1].PriorityRank)
	assert.Equal(t, "S3", assessments[2].SiteID)
	assert.Equal(t, 3, assessments[2].PriorityRank)
	assert.Equal(t, "S4", assessments[3].SiteID)
	assert.Equal(t, 4, assessments[3].PriorityRank)

	// Re-running yields identical assignments.
	before := make([]int, len(assessments))
	for i, a := range assessments {
		before[i] = a.PriorityRank
	}
	Rank(assessments)
	for i, a := range assessments {
		assert.Equal(t, before[i], a.PriorityRank)
	}
}

func TestScoreSite_MissingMetricDefaultsToZero(t *testing.T) {
	t.Parallel()

	kri := KeyRiskIndicator{
		ID:              "not_a_site_metric",
		Name:            "Unknown Metric",
		Weight:          1.0,
		ThresholdLow:    0.3,
		ThresholdMedium: 0.6,
		ThresholdHigh:   0.8,
		Direction:       model.HigherIsWorse,
	}
	scores := ScoreSite(SiteData{SiteID: "S1"}, []KeyRiskIndicator{kri})
	require.Len(t, scores, 1)
	assert.Equal(t, 0.0, scores[0].RawValue)
	assert.Equal(t, model.RiskLow, scores[0].RiskLevel)
}

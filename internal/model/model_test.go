package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumUnmarshal_AcceptsKnownTags(t *testing.T) {
	t.Parallel()

	var level RiskLevel
	require.NoError(t, json.Unmarshal([]byte(`"critical"`), &level))
	assert.Equal(t, RiskCritical, level)

	var direction Direction
	require.NoError(t, json.Unmarshal([]byte(`"lower_is_worse"`), &direction))
	assert.Equal(t, LowerIsWorse, direction)

	var source DataSource
	require.NoError(t, json.Unmarshal([]byte(`"patient_app"`), &source))
	assert.Equal(t, SourcePatientApp, source)
}

func TestEnumUnmarshal_RejectsUnknownTags(t *testing.T) {
	t.Parallel()

	var level RiskLevel
	err := json.Unmarshal([]byte(`"severe"`), &level)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown risk level "severe"`)

	var category KRICategory
	require.Error(t, json.Unmarshal([]byte(`"finance"`), &category))

	var status ActivityStatus
	require.Error(t, json.Unmarshal([]byte(`"paused"`), &status))

	var system CodingSystem
	require.Error(t, json.Unmarshal([]byte(`"loinc"`), &system))
}

func TestEnumUnmarshal_RejectsNonString(t *testing.T) {
	t.Parallel()

	var severity AlertSeverity
	require.Error(t, json.Unmarshal([]byte(`3`), &severity))
}

func TestStableOrders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []CodingSystem{SystemMedDRA, SystemICD10, SystemWHODD, SystemSNOMED}, CodingSystems())
	assert.Len(t, ActivityCategories(), 6)
}

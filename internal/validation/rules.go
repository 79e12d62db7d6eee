// Package validation runs the data validation plan against incoming EDC
// records: range, required and format checks plus LLM-evaluated logical
// rules, producing findings and automated data queries.
package validation

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// Rule types understood by the check runner.
const (
	RuleRange    = "range"
	RuleRequired = "required"
	RuleFormat   = "format"
	RuleLogical  = "logical"
)

// ValidationRule is one entry of the data validation plan. A field name of
// "*" applies the rule to every field.
type ValidationRule struct {
	RuleID      string              `json:"rule_id"`
	RuleType    string              `json:"rule_type"`
	FieldName   string              `json:"field_name"`
	Description string              `json:"description"`
	Parameters  map[string]any      `json:"parameters"`
	Severity    model.IssueSeverity `json:"severity"`
}

type planFile struct {
	ValidationRules []ValidationRule `json:"validation_rules"`
}

// LoadPlan reads validation rules from the data validation plan file.
// Missing or malformed files are logged and yield an empty slice.
func LoadPlan(path string) []ValidationRule {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("validation plan not found")
		return nil
	}
	var plan planFile
	if err := json.Unmarshal(data, &plan); err != nil {
		log.Error().Err(err).Str("path", path).Msg("validation plan is not valid JSON")
		return nil
	}

	for i := range plan.ValidationRules {
		if plan.ValidationRules[i].Severity == "" {
			plan.ValidationRules[i].Severity = model.IssueMajor
		}
	}
	log.Info().Int("count", len(plan.ValidationRules)).Str("path", path).Msg("loaded validation rules")
	return plan.ValidationRules
}

// DataPoint is one field value of one EDC record.
type DataPoint struct {
	SubjectID string `json:"subject_id"`
	VisitName string `json:"visit_name"`
	FormName  string `json:"form_name"`
	FieldName string `json:"field_name"`
	Value     any    `json:"value"`
	Timestamp string `json:"timestamp"`
	DataType  string `json:"data_type"`
}

type edcFeed struct {
	Records []struct {
		SubjectID string            `json:"subject_id"`
		VisitName string            `json:"visit_name"`
		FormName  string            `json:"form_name"`
		Timestamp string            `json:"timestamp"`
		Fields    map[string]any    `json:"fields"`
		DataTypes map[string]string `json:"data_types"`
	} `json:"records"`
}

// ParseEDCData flattens the EDC feed into one data point per record field.
// Missing or malformed feeds are logged and yield an empty slice.
func ParseEDCData(path string, now time.Time) []DataPoint {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("EDC data feed not found")
		return nil
	}
	var feed edcFeed
	if err := json.Unmarshal(data, &feed); err != nil {
		log.Error().Err(err).Str("path", path).Msg("EDC data feed is not valid JSON")
		return nil
	}

	var points []DataPoint
	for _, record := range feed.Records {
		timestamp := record.Timestamp
		if timestamp == "" {
			timestamp = now.UTC().Format(time.RFC3339)
		}
		fieldNames := make([]string, 0, len(record.Fields))
		for fieldName := range record.Fields {
			fieldNames = append(fieldNames, fieldName)
		}
		sort.Strings(fieldNames)
		for _, fieldName := range fieldNames {
			dataType := record.DataTypes[fieldName]
			if dataType == "" {
				dataType = "string"
			}
			points = append(points, DataPoint{
				SubjectID: record.SubjectID,
				VisitName: record.VisitName,
				FormName:  record.FormName,
				FieldName: fieldName,
				Value:     record.Fields[fieldName],
				Timestamp: timestamp,
				DataType:  dataType,
			})
		}
	}
	log.Info().Int("count", len(points)).Msg("parsed EDC data points")
	return points
}

// Package model defines the closed domain vocabulary shared by the agents.
// Every enum unmarshals from its wire string and rejects unknown tags so bad
// input data fails at parse time instead of defaulting silently.
package model

import (
	"encoding/json"
	"fmt"
)

// RiskLevel is the discrete risk band assigned to a KRI or an entity.
type RiskLevel string

// Risk bands, lowest to highest.
const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// KRICategory groups key risk indicators by monitoring concern.
type KRICategory string

// KRI categories.
const (
	CategoryEnrollment         KRICategory = "enrollment"
	CategoryDataQuality        KRICategory = "data_quality"
	CategoryProtocolCompliance KRICategory = "protocol_compliance"
	CategorySafety             KRICategory = "safety"
	CategoryOperational        KRICategory = "operational"
)

// Direction states whether a rising metric value means rising risk.
type Direction string

// Metric directions.
const (
	HigherIsWorse Direction = "higher_is_worse"
	LowerIsWorse  Direction = "lower_is_worse"
)

// ActivityStatus is the lifecycle state of a closeout activity.
type ActivityStatus string

// Closeout activity states.
const (
	StatusNotStarted    ActivityStatus = "not_started"
	StatusInProgress    ActivityStatus = "in_progress"
	StatusCompleted     ActivityStatus = "completed"
	StatusBlocked       ActivityStatus = "blocked"
	StatusNotApplicable ActivityStatus = "not_applicable"
)

// ActivityCategory groups database-lock closeout activities.
type ActivityCategory string

// Closeout activity categories.
const (
	ActivityDataQueries      ActivityCategory = "data_queries"
	ActivitySafetyEvents     ActivityCategory = "safety_events"
	ActivityMonitoringVisits ActivityCategory = "monitoring_visits"
	ActivityDataCleaning     ActivityCategory = "data_cleaning"
	ActivityRegulatory       ActivityCategory = "regulatory"
	ActivityStatistical      ActivityCategory = "statistical"
)

// AlertSeverity grades safety alerts.
type AlertSeverity string

// Alert severities.
const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// DataSource identifies where a monitored data entry came from.
type DataSource string

// Data sources feeding safety surveillance.
const (
	SourceEDC        DataSource = "edc"
	SourcePatientApp DataSource = "patient_app"
	SourceCallCenter DataSource = "call_center"
)

// CodingSystem is a supported medical coding dictionary.
type CodingSystem string

// Coding systems.
const (
	SystemMedDRA CodingSystem = "meddra"
	SystemICD10  CodingSystem = "icd10"
	SystemWHODD  CodingSystem = "whodd"
	SystemSNOMED CodingSystem = "snomed"
)

// TermType classifies an uncoded verbatim term.
type TermType string

// Term types.
const (
	TermAdverseEvent   TermType = "adverse_event"
	TermMedication     TermType = "medication"
	TermMedicalHistory TermType = "medical_history"
	TermIndication     TermType = "indication"
)

// IssueSeverity grades data validation findings.
type IssueSeverity string

// Validation finding severities.
const (
	IssueCritical IssueSeverity = "critical"
	IssueMajor    IssueSeverity = "major"
	IssueMinor    IssueSeverity = "minor"
)

var (
	riskLevels = enumSet(RiskLow, RiskMedium, RiskHigh, RiskCritical)
	categories = enumSet(CategoryEnrollment, CategoryDataQuality,
		CategoryProtocolCompliance, CategorySafety, CategoryOperational)
	directions = enumSet(HigherIsWorse, LowerIsWorse)
	actStates  = enumSet(StatusNotStarted, StatusInProgress, StatusCompleted,
		StatusBlocked, StatusNotApplicable)
	actCategories = enumSet(ActivityDataQueries, ActivitySafetyEvents,
		ActivityMonitoringVisits, ActivityDataCleaning, ActivityRegulatory,
		ActivityStatistical)
	severities    = enumSet(SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical)
	sources       = enumSet(SourceEDC, SourcePatientApp, SourceCallCenter)
	codingSystems = enumSet(SystemMedDRA, SystemICD10, SystemWHODD, SystemSNOMED)
	termTypes     = enumSet(TermAdverseEvent, TermMedication, TermMedicalHistory, TermIndication)
	issueLevels   = enumSet(IssueCritical, IssueMajor, IssueMinor)
)

func enumSet[T ~string](values ...T) map[T]bool {
	set := make(map[T]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func unmarshalEnum[T ~string](data []byte, kind string, valid map[T]bool, out *T) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", kind, err)
	}
	v := T(raw)
	if !valid[v] {
		return fmt.Errorf("unknown %s %q", kind, raw)
	}
	*out = v
	return nil
}

// UnmarshalJSON validates the wire tag.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "risk level", riskLevels, r)
}

// UnmarshalJSON validates the wire tag.
func (c *KRICategory) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "kri category", categories, c)
}

// UnmarshalJSON validates the wire tag.
func (d *Direction) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "direction", directions, d)
}

// UnmarshalJSON validates the wire tag.
func (s *ActivityStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "activity status", actStates, s)
}

// UnmarshalJSON validates the wire tag.
func (c *ActivityCategory) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "activity category", actCategories, c)
}

// UnmarshalJSON validates the wire tag.
func (s *AlertSeverity) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "alert severity", severities, s)
}

// UnmarshalJSON validates the wire tag.
func (s *DataSource) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "data source", sources, s)
}

// UnmarshalJSON validates the wire tag.
func (c *CodingSystem) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "coding system", codingSystems, c)
}

// UnmarshalJSON validates the wire tag.
func (t *TermType) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "term type", termTypes, t)
}

// UnmarshalJSON validates the wire tag.
func (s *IssueSeverity) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, "issue severity", issueLevels, s)
}

// CodingSystems lists the supported dictionaries in a stable order.
func CodingSystems() []CodingSystem {
	return []CodingSystem{SystemMedDRA, SystemICD10, SystemWHODD, SystemSNOMED}
}

// ActivityCategories lists all closeout categories in a stable order.
func ActivityCategories() []ActivityCategory {
	return []ActivityCategory{
		ActivityDataQueries, ActivitySafetyEvents, ActivityMonitoringVisits,
		ActivityDataCleaning, ActivityRegulatory, ActivityStatistical,
	}
}

package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/llm"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// ValidationIssue is one finding produced by a check.
type ValidationIssue struct {
	IssueID          string              `json:"issue_id"`
	RuleID           string              `json:"rule_id"`
	SubjectID        string              `json:"subject_id"`
	FieldName        string              `json:"field_name"`
	IssueDescription string              `json:"issue_description"`
	Severity         model.IssueSeverity `json:"severity"`
	SuggestedAction  string              `json:"suggested_action"`
	Timestamp        string              `json:"timestamp"`
}

func newIssue(rule ValidationRule, point DataPoint, description, action string, now time.Time) *ValidationIssue {
	return &ValidationIssue{
		IssueID:          fmt.Sprintf("%s_%s_%s", rule.RuleID, point.SubjectID, now.UTC().Format("20060102150405")),
		RuleID:           rule.RuleID,
		SubjectID:        point.SubjectID,
		FieldName:        point.FieldName,
		IssueDescription: description,
		Severity:         rule.Severity,
		SuggestedAction:  action,
		Timestamp:        now.UTC().Format(time.RFC3339),
	}
}

// numericValue coerces a JSON value to float64. Strings are parsed; anything
// else numeric-incompatible reports ok=false.
func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// RangeCheck flags values outside the rule's min/max parameters. A value
// that cannot be read as a number is itself a finding, not a crash.
func RangeCheck(point DataPoint, rule ValidationRule, now time.Time) *ValidationIssue {
	if rule.RuleType != RuleRange || point.Value == nil {
		return nil
	}

	value, ok := numericValue(point.Value)
	if !ok {
		return newIssue(rule, point,
			fmt.Sprintf("Non-numeric value '%v' in numeric field", point.Value),
			fmt.Sprintf("Correct data type for %s", point.FieldName), now)
	}

	action := fmt.Sprintf("Verify %s value for subject %s", point.FieldName, point.SubjectID)
	if minVal, ok := numericValue(rule.Parameters["min"]); ok && value < minVal {
		return newIssue(rule, point,
			fmt.Sprintf("Value %v is below minimum threshold %v", value, minVal), action, now)
	}
	if maxVal, ok := numericValue(rule.Parameters["max"]); ok && value > maxVal {
		return newIssue(rule, point,
			fmt.Sprintf("Value %v is above maximum threshold %v", value, maxVal), action, now)
	}
	return nil
}

// RequiredCheck flags nil, empty-string and empty-list values.
func RequiredCheck(point DataPoint, rule ValidationRule, now time.Time) *ValidationIssue {
	if rule.RuleType != RuleRequired {
		return nil
	}

	empty := point.Value == nil || point.Value == ""
	if list, ok := point.Value.([]any); ok && len(list) == 0 {
		empty = true
	}
	if !empty {
		return nil
	}
	return newIssue(rule, point,
		fmt.Sprintf("Required field '%s' is missing or empty", point.FieldName),
		fmt.Sprintf("Provide value for required field %s", point.FieldName), now)
}

// FormatCheck flags values that do not match the rule's regex pattern,
// anchored at the start of the value. Missing or invalid patterns are
// logged and produce no finding.
func FormatCheck(point DataPoint, rule ValidationRule, now time.Time) *ValidationIssue {
	if rule.RuleType != RuleFormat {
		return nil
	}
	pattern, _ := rule.Parameters["pattern"].(string)
	if pattern == "" {
		return nil
	}

	re, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		log.Error().Str("rule_id", rule.RuleID).Msg("invalid regex pattern in validation rule")
		return nil
	}
	if re.MatchString(fmt.Sprintf("%v", point.Value)) {
		return nil
	}
	return newIssue(rule, point,
		fmt.Sprintf("Value '%v' does not match required format pattern", point.Value),
		fmt.Sprintf("Correct format for %s", point.FieldName), now)
}

const logicalPrompt = `You are a clinical data validation expert. Review the following data point against the logical validation rule:

Context: %s

Determine if this data point violates the logical rule. Consider:
1. Business logic consistency
2. Cross-field dependencies
3. Clinical feasibility

Response format (JSON):
{
    "violation_found": true/false,
    "issue_description": "description of the issue if found",
    "suggested_action": "recommended corrective action",
    "confidence": 0.0-1.0
}`

type logicalVerdict struct {
	ViolationFound   bool    `json:"violation_found"`
	IssueDescription string  `json:"issue_description"`
	SuggestedAction  string  `json:"suggested_action"`
	Confidence       float64 `json:"confidence"`
}

// LogicalCheck evaluates a business rule against the subject's full field
// set via the collaborator. A verdict only becomes a finding when the
// collaborator is more than 70% confident; any failure skips the rule.
func LogicalCheck(ctx context.Context, client llm.Client, point DataPoint, rule ValidationRule, allPoints []DataPoint, now time.Time) *ValidationIssue {
	if rule.RuleType != RuleLogical {
		return nil
	}
	if client == nil {
		log.Warn().Str("rule_id", rule.RuleID).Msg("collaborator not configured, skipping logical validation")
		return nil
	}

	subjectData := map[string]any{}
	for _, dp := range allPoints {
		if dp.SubjectID == point.SubjectID {
			subjectData[dp.FieldName] = dp.Value
		}
	}
	promptContext, err := json.MarshalIndent(map[string]any{
		"current_field":    point.FieldName,
		"current_value":    point.Value,
		"subject_data":     subjectData,
		"rule_description": rule.Description,
		"rule_parameters":  rule.Parameters,
	}, "", "  ")
	if err != nil {
		log.Error().Err(err).Str("rule_id", rule.RuleID).Msg("marshal logical validation context")
		return nil
	}

	response, err := client.Complete(ctx, fmt.Sprintf(logicalPrompt, promptContext))
	if err != nil {
		log.Error().Err(err).Str("rule_id", rule.RuleID).Msg("logical validation failed")
		return nil
	}
	raw, ok := llm.ExtractJSON(response)
	if !ok {
		log.Error().Str("rule_id", rule.RuleID).Msg("no JSON object in logical validation response")
		return nil
	}
	var verdict logicalVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		log.Error().Err(err).Str("rule_id", rule.RuleID).Msg("unparsable logical validation response")
		return nil
	}

	if !verdict.ViolationFound || verdict.Confidence <= 0.7 {
		return nil
	}
	description := verdict.IssueDescription
	if description == "" {
		description = "Logical validation failed"
	}
	action := verdict.SuggestedAction
	if action == "" {
		action = "Review data for logical consistency"
	}
	return newIssue(rule, point, description, action, now)
}

// RunChecks applies every applicable rule to every data point.
func RunChecks(ctx context.Context, client llm.Client, points []DataPoint, rules []ValidationRule, now time.Time) []ValidationIssue {
	var issues []ValidationIssue

	for _, point := range points {
		for _, rule := range rules {
			if rule.FieldName != point.FieldName && rule.FieldName != "*" {
				continue
			}

			var issue *ValidationIssue
			switch rule.RuleType {
			case RuleRange:
				issue = RangeCheck(point, rule, now)
			case RuleRequired:
				issue = RequiredCheck(point, rule, now)
			case RuleFormat:
				issue = FormatCheck(point, rule, now)
			case RuleLogical:
				issue = LogicalCheck(ctx, client, point, rule, points, now)
			}
			if issue != nil {
				issues = append(issues, *issue)
			}
		}
	}
	log.Info().Int("issues", len(issues)).Msg("validation checks complete")
	return issues
}

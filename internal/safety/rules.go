// Package safety implements pharmacovigilance event detection over incoming
// data streams: keyword/regex rule matching with confidence scoring,
// LLM-assisted narratives and severity-routed alerting.
package safety

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// SafetyRule is one configured detection rule. Invalid regex patterns are
// reported at load time and never match, but they still count toward the
// rule's match-confidence denominator.
type SafetyRule struct {
	RuleID         string              `json:"rule_id"`
	Name           string              `json:"name"`
	Keywords       []string            `json:"keywords"`
	Patterns       []string            `json:"patterns"`
	Severity       model.AlertSeverity `json:"severity"`
	Description    string              `json:"description"`
	ImmediateAlert bool                `json:"immediate_alert"`

	compiled []*regexp.Regexp
}

type rulesFile struct {
	SafetyRules []SafetyRule `json:"safety_rules"`
}

// LoadRules reads safety monitoring rules from a JSON configuration file.
// Missing or malformed files are logged and yield an empty slice.
func LoadRules(path string) []SafetyRule {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("safety rules file not found")
		return nil
	}
	var file rulesFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Error().Err(err).Str("path", path).Msg("safety rules file is not valid JSON")
		return nil
	}

	for i := range file.SafetyRules {
		rule := &file.SafetyRules[i]
		if rule.Severity == "" {
			rule.Severity = model.SeverityMedium
		}
		for _, pattern := range rule.Patterns {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				log.Warn().Str("rule_id", rule.RuleID).Str("pattern", pattern).Msg("invalid regex pattern in safety rule")
				continue
			}
			rule.compiled = append(rule.compiled, re)
		}
	}
	log.Info().Int("count", len(file.SafetyRules)).Str("path", path).Msg("loaded safety rules")
	return file.SafetyRules
}

// DataEntry is one record from an incoming data stream.
type DataEntry struct {
	EntryID   string           `json:"entry_id"`
	Source    model.DataSource `json:"source"`
	SubjectID string           `json:"subject_id"`
	Timestamp string           `json:"timestamp"`
	Content   string           `json:"content"`
	Metadata  map[string]any   `json:"metadata"`
}

type streamFile struct {
	Records []struct {
		EntryID   string         `json:"entry_id"`
		SubjectID string         `json:"subject_id"`
		Timestamp string         `json:"timestamp"`
		Content   string         `json:"content"`
		Metadata  map[string]any `json:"metadata"`
	} `json:"records"`
}

// ParseDataStreams reads the per-source feed files into a flat entry list.
// Records missing an entry_id or timestamp get generated ones based on now.
func ParseDataStreams(sources map[model.DataSource]string, now time.Time) []DataEntry {
	var entries []DataEntry
	for source, path := range sources {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error().Err(err).Str("source", string(source)).Str("path", path).Msg("data stream file not found")
			continue
		}
		var file streamFile
		if err := json.Unmarshal(data, &file); err != nil {
			log.Error().Err(err).Str("source", string(source)).Str("path", path).Msg("data stream file is not valid JSON")
			continue
		}

		for _, record := range file.Records {
			entry := DataEntry{
				EntryID:   record.EntryID,
				Source:    source,
				SubjectID: record.SubjectID,
				Timestamp: record.Timestamp,
				Content:   record.Content,
				Metadata:  record.Metadata,
			}
			if entry.EntryID == "" {
				entry.EntryID = fmt.Sprintf("%s_%s", source, now.UTC().Format("20060102150405"))
			}
			if entry.Timestamp == "" {
				entry.Timestamp = now.UTC().Format(time.RFC3339)
			}
			entries = append(entries, entry)
		}
	}
	log.Info().Int("entries", len(entries)).Int("sources", len(sources)).Msg("parsed data stream entries")
	return entries
}

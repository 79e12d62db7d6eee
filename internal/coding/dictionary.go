// Package coding suggests standardized medical codes for verbatim terms
// captured in the EDC, combining dictionary lookup with LLM suggestions.
package coding

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// DictionaryTerm is one entry of a coding dictionary.
type DictionaryTerm struct {
	Code             string   `json:"code"`
	PreferredTerm    string   `json:"preferred_term"`
	SystemOrganClass string   `json:"system_organ_class"`
	Level            string   `json:"level"`
	Synonyms         []string `json:"synonyms"`
}

// Dictionary holds all terms of one coding system.
type Dictionary struct {
	Terms []DictionaryTerm `json:"terms"`
}

// LoadDictionaries reads one `<system>_dictionary.json` per coding system
// from dir. A missing or malformed file yields an empty dictionary for that
// system with a warning, never an error.
func LoadDictionaries(dir string) map[model.CodingSystem]Dictionary {
	dictionaries := make(map[model.CodingSystem]Dictionary, len(model.CodingSystems()))

	for _, system := range model.CodingSystems() {
		path := filepath.Join(dir, fmt.Sprintf("%s_dictionary.json", system))
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Str("path", path).Msg("dictionary file not found")
			dictionaries[system] = Dictionary{}
			continue
		}
		var dict Dictionary
		if err := json.Unmarshal(data, &dict); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("dictionary file is not valid JSON")
			dictionaries[system] = Dictionary{}
			continue
		}
		dictionaries[system] = dict
		log.Info().Str("system", string(system)).Int("terms", len(dict.Terms)).Msg("loaded coding dictionary")
	}
	return dictionaries
}

// UncodedTerm is one verbatim term awaiting coding.
type UncodedTerm struct {
	TermID       string         `json:"term_id"`
	OriginalText string         `json:"original_text"`
	TermType     model.TermType `json:"term_type"`
	SubjectID    string         `json:"subject_id"`
	VisitName    string         `json:"visit_name"`
	FormName     string         `json:"form_name"`
	FieldName    string         `json:"field_name"`
	VerbatimTerm string         `json:"verbatim_term"`
	Context      string         `json:"context"`
	Timestamp    string         `json:"timestamp"`
}

type termsFile struct {
	UncodedTerms []UncodedTerm `json:"uncoded_terms"`
}

// ParseUncodedTerms reads the uncoded-terms feed. Terms missing an id,
// verbatim text, type or timestamp get defaults derived from the record.
func ParseUncodedTerms(path string, now time.Time) []UncodedTerm {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("uncoded terms file not found")
		return nil
	}
	var file termsFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Error().Err(err).Str("path", path).Msg("uncoded terms file is not valid JSON")
		return nil
	}

	for i := range file.UncodedTerms {
		term := &file.UncodedTerms[i]
		if term.TermID == "" {
			term.TermID = "TERM_" + now.UTC().Format("20060102150405")
		}
		if term.TermType == "" {
			term.TermType = model.TermAdverseEvent
		}
		if term.VerbatimTerm == "" {
			term.VerbatimTerm = term.OriginalText
		}
		if term.Timestamp == "" {
			term.Timestamp = now.UTC().Format(time.RFC3339)
		}
	}
	log.Info().Int("count", len(file.UncodedTerms)).Msg("parsed uncoded terms")
	return file.UncodedTerms
}

package coding

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/llm"
	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

const (
	exactMatchConfidence   = 0.95
	partialMatchConfidence = 0.75
	maxDictionaryMatches   = 10
	maxAlternatives        = 4
)

// MedicalCode is one code suggestion for a term.
type MedicalCode struct {
	Code             string             `json:"code"`
	PreferredTerm    string             `json:"preferred_term"`
	SystemOrganClass string             `json:"system_organ_class"`
	CodingSystem     model.CodingSystem `json:"coding_system"`
	Level            string             `json:"level"`
	ConfidenceScore  float64            `json:"confidence_score"`
	Reasoning        string             `json:"reasoning"`
}

// DictionaryLookup matches the term's verbatim text against every loaded
// dictionary. Exact matches on the preferred term or a synonym score 0.95,
// containment matches 0.75. Returns at most the top 10 by confidence;
// systems are consulted in a fixed order so results are deterministic.
func DictionaryLookup(term UncodedTerm, dictionaries map[model.CodingSystem]Dictionary) []MedicalCode {
	var matches []MedicalCode
	searchText := strings.TrimSpace(strings.ToLower(term.VerbatimTerm))

	for _, system := range model.CodingSystems() {
		for _, dictTerm := range dictionaries[system].Terms {
			preferred := strings.ToLower(dictTerm.PreferredTerm)

			exact := searchText == preferred
			partial := strings.Contains(preferred, searchText)
			for _, synonym := range dictTerm.Synonyms {
				lower := strings.ToLower(synonym)
				if searchText == lower {
					exact = true
				} else if strings.Contains(lower, searchText) {
					partial = true
				}
			}

			level := dictTerm.Level
			if level == "" {
				level = "PT"
			}
			switch {
			case exact:
				matches = append(matches, MedicalCode{
					Code:             dictTerm.Code,
					PreferredTerm:    dictTerm.PreferredTerm,
					SystemOrganClass: dictTerm.SystemOrganClass,
					CodingSystem:     system,
					Level:            level,
					ConfidenceScore:  exactMatchConfidence,
					Reasoning:        "Exact dictionary match",
				})
			case partial:
				matches = append(matches, MedicalCode{
					Code:             dictTerm.Code,
					PreferredTerm:    dictTerm.PreferredTerm,
					SystemOrganClass: dictTerm.SystemOrganClass,
					CodingSystem:     system,
					Level:            level,
					ConfidenceScore:  partialMatchConfidence,
					Reasoning:        "Partial dictionary match",
				})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].ConfidenceScore > matches[j].ConfidenceScore
	})
	if len(matches) > maxDictionaryMatches {
		matches = matches[:maxDictionaryMatches]
	}
	return matches
}

const codingPrompt = `You are a medical coding specialist. Your task is to suggest appropriate %s codes for the given medical term.

Term Details:
- Original Text: %s
- Verbatim Term: %s
- Term Type: %s
- Context: %s
- Subject ID: %s
- Visit: %s
- Form: %s

Please provide up to 3 most appropriate %s codes in JSON format:
{
    "suggestions": [
        {
            "code": "10012345",
            "preferred_term": "Headache",
            "system_organ_class": "Nervous system disorders",
            "level": "PT",
            "confidence_score": 0.90,
            "reasoning": "Direct match for common adverse event"
        }
    ]
}

Consider:
1. Clinical context and terminology
2. Severity and specificity
3. Anatomical location if applicable
4. Standard medical terminology
5. Regulatory requirements for clinical trials`

type llmSuggestion struct {
	Code             string   `json:"code"`
	PreferredTerm    string   `json:"preferred_term"`
	SystemOrganClass string   `json:"system_organ_class"`
	Level            string   `json:"level"`
	ConfidenceScore  *float64 `json:"confidence_score"`
	Reasoning        string   `json:"reasoning"`
}

type llmSuggestionEnvelope struct {
	Suggestions []llmSuggestion `json:"suggestions"`
}

// LLMCoding asks the collaborator for code suggestions in the given system.
// Any failure is logged and yields an empty slice; callers proceed with
// dictionary matches alone.
func LLMCoding(ctx context.Context, client llm.Client, term UncodedTerm, system model.CodingSystem) []MedicalCode {
	if client == nil {
		log.Warn().Msg("collaborator not configured, skipping LLM coding")
		return nil
	}

	upper := strings.ToUpper(string(system))
	prompt := fmt.Sprintf(codingPrompt, upper,
		term.OriginalText, term.VerbatimTerm, term.TermType, term.Context,
		term.SubjectID, term.VisitName, term.FormName, upper)

	response, err := client.Complete(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Str("term_id", term.TermID).Msg("LLM coding failed")
		return nil
	}
	raw, ok := llm.ExtractJSON(response)
	if !ok {
		log.Error().Str("term_id", term.TermID).Msg("no JSON object in LLM coding response")
		return nil
	}
	var envelope llmSuggestionEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		log.Error().Err(err).Str("term_id", term.TermID).Msg("unparsable LLM coding response")
		return nil
	}

	codes := make([]MedicalCode, 0, len(envelope.Suggestions))
	for _, s := range envelope.Suggestions {
		confidence := 0.5
		if s.ConfidenceScore != nil {
			confidence = *s.ConfidenceScore
		}
		level := s.Level
		if level == "" {
			level = "PT"
		}
		reasoning := s.Reasoning
		if reasoning == "" {
			reasoning = "LLM suggestion"
		}
		codes = append(codes, MedicalCode{
			Code:             s.Code,
			PreferredTerm:    s.PreferredTerm,
			SystemOrganClass: s.SystemOrganClass,
			CodingSystem:     system,
			Level:            level,
			ConfidenceScore:  confidence,
			Reasoning:        reasoning,
		})
	}
	log.Info().Int("count", len(codes)).Str("term", term.VerbatimTerm).Msg("LLM generated coding suggestions")
	return codes
}

// CombineSuggestions merges the two suggestion sources, dedupes by code
// (first occurrence wins) and sorts by confidence descending.
func CombineSuggestions(dictMatches, llmMatches []MedicalCode) []MedicalCode {
	seen := map[string]bool{}
	var unique []MedicalCode
	for _, suggestion := range append(append([]MedicalCode{}, dictMatches...), llmMatches...) {
		if seen[suggestion.Code] {
			continue
		}
		seen[suggestion.Code] = true
		unique = append(unique, suggestion)
	}
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].ConfidenceScore > unique[j].ConfidenceScore
	})
	return unique
}

// CodingSuggestion is the per-term coding result.
type CodingSuggestion struct {
	TermID                 string        `json:"term_id"`
	OriginalText           string        `json:"original_text"`
	SuggestedCodes         []MedicalCode `json:"suggested_codes"`
	PrimarySuggestion      MedicalCode   `json:"primary_suggestion"`
	AlternativeSuggestions []MedicalCode `json:"alternative_suggestions"`
	CodingTimestamp        string        `json:"coding_timestamp"`
	ReviewerNotes          string        `json:"reviewer_notes"`
}

// NewSuggestion picks the best code as primary and the next four as
// alternatives. An empty code list yields the UNCODED placeholder flagged
// for manual review.
func NewSuggestion(term UncodedTerm, codes []MedicalCode, now time.Time) CodingSuggestion {
	if len(codes) == 0 {
		codes = []MedicalCode{{
			Code:             "UNCODED",
			PreferredTerm:    term.VerbatimTerm,
			SystemOrganClass: "Unspecified",
			CodingSystem:     model.SystemMedDRA,
			Level:            "PT",
			ConfidenceScore:  0.0,
			Reasoning:        "No suitable code found - requires manual review",
		}}
	}

	alternatives := codes[1:min(len(codes), 1+maxAlternatives)]
	return CodingSuggestion{
		TermID:                 term.TermID,
		OriginalText:           term.OriginalText,
		SuggestedCodes:         codes,
		PrimarySuggestion:      codes[0],
		AlternativeSuggestions: alternatives,
		CodingTimestamp:        now.UTC().Format(time.RFC3339),
	}
}

// ProcessTerms codes every uncoded term: dictionary lookup, optional LLM
// suggestions, merge, then pick primary and alternatives.
func ProcessTerms(ctx context.Context, client llm.Client, terms []UncodedTerm, dictionaries map[model.CodingSystem]Dictionary, now time.Time) []CodingSuggestion {
	suggestions := make([]CodingSuggestion, 0, len(terms))
	for _, term := range terms {
		log.Info().Str("term", term.VerbatimTerm).Str("type", string(term.TermType)).Msg("processing term")

		dictMatches := DictionaryLookup(term, dictionaries)
		llmMatches := LLMCoding(ctx, client, term, model.SystemMedDRA)
		codes := CombineSuggestions(dictMatches, llmMatches)

		suggestions = append(suggestions, NewSuggestion(term, codes, now))
	}
	return suggestions
}

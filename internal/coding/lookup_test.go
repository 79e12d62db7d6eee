package coding

import (
	"context"
	"errors"
	"fmt"
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

func meddraDictionary() map[model.CodingSystem]Dictionary {
	return map[model.CodingSystem]Dictionary{
		model.SystemMedDRA: {Terms: []DictionaryTerm{
			{Code: "10019211", PreferredTerm: "Headache", SystemOrganClass: "Nervous system disorders", Level: "PT", Synonyms: []string{"cephalgia", "head pain"}},
			{Code: "10028813", PreferredTerm: "Nausea", SystemOrganClass: "Gastrointestinal disorders", Level: "PT"},
		}},
	}
}

func headacheTerm() UncodedTerm {
	return UncodedTerm{TermID: "T1", OriginalText: "headache", VerbatimTerm: "headache", TermType: model.TermAdverseEvent}
}

func TestDictionaryLookup_ExactAndSynonymMatch(t *testing.T) {
	t.Parallel()

	matches := DictionaryLookup(headacheTerm(), meddraDictionary())
	require.Len(t, matches, 1)
	assert.Equal(t, "10019211", matches[0].Code)
	assert.Equal(t, 0.95, matches[0].ConfidenceScore)
	assert.Equal(t, "Exact dictionary match", matches[0].Reasoning)

	term := headacheTerm()
	term.VerbatimTerm = "Cephalgia"
	matches = DictionaryLookup(term, meddraDictionary())
	require.Len(t, matches, 1)
	assert.Equal(t, 0.95, matches[0].ConfidenceScore)
}

func TestDictionaryLookup_PartialMatch(t *testing.T) {
	t.Parallel()

	term := headacheTerm()
	term.VerbatimTerm = "head"
	matches := DictionaryLookup(term, meddraDictionary())
	require.Len(t, matches, 1)
	assert.Equal(t, 0.75, matches[0].ConfidenceScore)
	assert.Equal(t, "Partial dictionary match", matches[0].Reasoning)
}

func TestDictionaryLookup_CapsAtTenMatches(t *testing.T) {
	t.Parallel()

	var terms []DictionaryTerm
	for i := 0; i < 15; i++ {
		terms = append(terms, DictionaryTerm{Code: fmt.Sprintf("C%02d", i), PreferredTerm: fmt.Sprintf("headache variant %d", i)})
	}
	dicts := map[model.CodingSystem]Dictionary{model.SystemMedDRA: {Terms: terms}}

	matches := DictionaryLookup(headacheTerm(), dicts)
	assert.Len(t, matches, 10)
}

func TestDictionaryLookup_NoMatch(t *testing.T) {
	t.Parallel()

	term := headacheTerm()
	term.VerbatimTerm = "spontaneous combustion"
	assert.Empty(t, DictionaryLookup(term, meddraDictionary()))
}

func TestLLMCoding_ParsesEmbeddedSuggestions(t *testing.T) {
	t.Parallel()

	client := &stubClient{response: `Sure:
{"suggestions": [
	{"code": "10019211", "preferred_term": "Headache", "system_organ_class": "Nervous system disorders", "level": "PT", "confidence_score": 0.9, "reasoning": "Direct match"},
	{"code": "10027599", "preferred_term": "Migraine"}
]}`}

	codes := LLMCoding(context.Background(), client, headacheTerm(), model.SystemMedDRA)
	require.Len(t, codes, 2)
	assert.Equal(t, 0.9, codes[0].ConfidenceScore)
	assert.Equal(t, model.SystemMedDRA, codes[0].CodingSystem)
	// Defaults for omitted fields.
	assert.Equal(t, 0.5, codes[1].ConfidenceScore)
	assert.Equal(t, "PT", codes[1].Level)
	assert.Equal(t, "LLM suggestion", codes[1].Reasoning)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "MEDDRA")
	assert.Contains(t, client.prompts[0], "headache")
}

func TestLLMCoding_FailuresYieldNoCodes(t *testing.T) {
	t.Parallel()

	assert.Empty(t, LLMCoding(context.Background(), nil, headacheTerm(), model.SystemMedDRA))
	assert.Empty(t, LLMCoding(context.Background(), &stubClient{err: errors.New("boom")}, headacheTerm(), model.SystemMedDRA))
	assert.Empty(t, LLMCoding(context.Background(), &stubClient{response: "no json"}, headacheTerm(), model.SystemMedDRA))
}

func TestCombineSuggestions_DedupesByCodeAndSorts(t *testing.T) {
	t.Parallel()

	dict := []MedicalCode{
		{Code: "A", ConfidenceScore: 0.75},
		{Code: "B", ConfidenceScore: 0.95},
	}
	llmCodes := []MedicalCode{
		{Code: "A", ConfidenceScore: 0.9, Reasoning: "dup, dropped"},
		{Code: "C", ConfidenceScore: 0.8},
	}

	combined := CombineSuggestions(dict, llmCodes)
	require.Len(t, combined, 3)
	assert.Equal(t, "B", combined[0].Code)
	assert.Equal(t, "C", combined[1].Code)
	assert.Equal(t, "A", combined[2].Code)
	assert.Equal(t, 0.75, combined[2].ConfidenceScore)
}

func TestNewSuggestion_PrimaryAndAlternatives(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	var codes []MedicalCode
	for i := 0; i < 7; i++ {
		codes = append(codes, MedicalCode{Code: fmt.Sprintf("C%d", i)})
	}

	suggestion := NewSuggestion(headacheTerm(), codes, now)
	assert.Equal(t, "C0", suggestion.PrimarySuggestion.Code)
	require.Len(t, suggestion.AlternativeSuggestions, 4)
	assert.Equal(t, "C1", suggestion.AlternativeSuggestions[0].Code)
	assert.Equal(t, "2026-04-01T00:00:00Z", suggestion.CodingTimestamp)
}

func TestNewSuggestion_UncodedPlaceholder(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	suggestion := NewSuggestion(headacheTerm(), nil, now)

	assert.Equal(t, "UNCODED", suggestion.PrimarySuggestion.Code)
	assert.Equal(t, "headache", suggestion.PrimarySuggestion.PreferredTerm)
	assert.Equal(t, 0.0, suggestion.PrimarySuggestion.ConfidenceScore)
	assert.Contains(t, suggestion.PrimarySuggestion.Reasoning, "manual review")
	assert.Empty(t, suggestion.AlternativeSuggestions)
}

func TestProcessTerms_EndToEnd(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	terms := []UncodedTerm{headacheTerm(), {TermID: "T2", OriginalText: "weird symptom", VerbatimTerm: "weird symptom"}}

	suggestions := ProcessTerms(context.Background(), nil, terms, meddraDictionary(), now)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "10019211", suggestions[0].PrimarySuggestion.Code)
	assert.Equal(t, "UNCODED", suggestions[1].PrimarySuggestion.Code)
}

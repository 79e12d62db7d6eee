// Package csr assembles draft Clinical Study Reports: ICH E3 section
// content from boilerplate templates and study info, LLM-enhanced when a
// collaborator is configured, with table/figure/listing references resolved
// from a TLF catalog.
package csr

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
)

// StudyInfo is the protocol-level input to report generation.
type StudyInfo struct {
	ProtocolNumber      string   `json:"protocol_number"`
	ProtocolTitle       string   `json:"protocol_title"`
	Sponsor             string   `json:"sponsor"`
	Indication          string   `json:"indication"`
	StudyPhase          string   `json:"study_phase"`
	StudyDesign         string   `json:"study_design"`
	PrimaryObjectives   []string `json:"primary_objectives"`
	SecondaryObjectives []string `json:"secondary_objectives"`
	PrimaryEndpoints    []string `json:"primary_endpoints"`
	SecondaryEndpoints  []string `json:"secondary_endpoints"`
	StudyPopulation     string   `json:"study_population"`
	SampleSize          int      `json:"sample_size"`
	StudyDuration       string   `json:"study_duration"`
}

// DefaultStudyInfo is the placeholder protocol used when no input file is
// available, so a draft skeleton can still be produced.
func DefaultStudyInfo() StudyInfo {
	return StudyInfo{
		ProtocolNumber:      "PROTO-001",
		ProtocolTitle:       "Clinical Trial Protocol",
		Sponsor:             "Sponsor Name",
		Indication:          "Medical Condition",
		StudyPhase:          "Phase II",
		StudyDesign:         "Randomized, Double-blind, Placebo-controlled",
		PrimaryObjectives:   []string{"To evaluate efficacy"},
		SecondaryObjectives: []string{"To evaluate safety"},
		PrimaryEndpoints:    []string{"Primary endpoint"},
		SecondaryEndpoints:  []string{"Secondary endpoint"},
		StudyPopulation:     "Adult patients",
		SampleSize:          100,
		StudyDuration:       "12 months",
	}
}

// LoadStudyInfo reads the protocol JSON, filling unset fields from the
// defaults. Missing or malformed files are logged and yield the default
// protocol rather than aborting the draft.
func LoadStudyInfo(path string) StudyInfo {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("protocol file not found, using defaults")
		return DefaultStudyInfo()
	}

	info := DefaultStudyInfo()
	if err := json.Unmarshal(data, &info); err != nil {
		log.Error().Err(err).Str("path", path).Msg("protocol file is not valid JSON, using defaults")
		return DefaultStudyInfo()
	}
	log.Info().Str("protocol", info.ProtocolNumber).Msg("loaded protocol info")
	return info
}

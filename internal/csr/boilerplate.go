package csr

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
)

// Section names the ICH E3 report sections.
type Section string

// Report sections.
const (
	SectionTitlePage             Section = "title_page"
	SectionSynopsis              Section = "synopsis"
	SectionTableOfContents       Section = "table_of_contents"
	SectionListOfAbbreviations   Section = "list_of_abbreviations"
	SectionEthics                Section = "ethics"
	SectionInvestigatorsSites    Section = "investigators_sites"
	SectionIntroduction          Section = "introduction"
	SectionStudyObjectives       Section = "study_objectives"
	SectionInvestigationalPlan   Section = "investigational_plan"
	SectionStudySubjects         Section = "study_subjects"
	SectionEfficacyEvaluation    Section = "efficacy_evaluation"
	SectionSafetyEvaluation      Section = "safety_evaluation"
	SectionDiscussionConclusions Section = "discussion_conclusions"
	SectionTablesFiguresListings Section = "tables_figures_listings"
	SectionAppendices            Section = "appendices"
)

var knownSections = map[Section]bool{
	SectionTitlePage: true, SectionSynopsis: true, SectionTableOfContents: true,
	SectionListOfAbbreviations: true, SectionEthics: true, SectionInvestigatorsSites: true,
	SectionIntroduction: true, SectionStudyObjectives: true, SectionInvestigationalPlan: true,
	SectionStudySubjects: true, SectionEfficacyEvaluation: true, SectionSafetyEvaluation: true,
	SectionDiscussionConclusions: true, SectionTablesFiguresListings: true, SectionAppendices: true,
}

// sectionOrder is the body order of a generated report.
var sectionOrder = []Section{
	SectionSynopsis,
	SectionIntroduction,
	SectionStudyObjectives,
	SectionInvestigationalPlan,
	SectionStudySubjects,
	SectionEfficacyEvaluation,
	SectionSafetyEvaluation,
	SectionDiscussionConclusions,
}

// Boilerplate is the template text for one section. Placeholders in the
// content use `{field_name}` markers substituted from StudyInfo.
type Boilerplate struct {
	Content      string   `json:"content"`
	Placeholders []string `json:"placeholders"`
	IsTemplate   bool     `json:"is_template"`
}

// LoadBoilerplate reads the section template library. Missing or malformed
// files fall back to the built-in defaults; unknown section keys are logged
// and skipped.
func LoadBoilerplate(path string) map[Section]Boilerplate {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("boilerplate library not found, using defaults")
		return DefaultBoilerplate()
	}

	var raw map[string]Boilerplate
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Error().Err(err).Str("path", path).Msg("boilerplate library is not valid JSON, using defaults")
		return DefaultBoilerplate()
	}

	library := make(map[Section]Boilerplate, len(raw))
	for name, text := range raw {
		section := Section(name)
		if !knownSections[section] {
			log.Warn().Str("section", name).Msg("unknown section in boilerplate library")
			continue
		}
		library[section] = text
	}
	log.Info().Int("sections", len(library)).Msg("loaded boilerplate library")
	return library
}

// DefaultBoilerplate is the built-in section template library.
func DefaultBoilerplate() map[Section]Boilerplate {
	return map[Section]Boilerplate{
		SectionSynopsis: {
			Content: `SYNOPSIS

Protocol Number: {protocol_number}
Protocol Title: {protocol_title}

Study Objectives:
{primary_objectives}

Study Design: {study_design}
Study Population: {study_population}
Sample Size: {sample_size}
Study Duration: {study_duration}

This clinical study was conducted to evaluate {indication} in {study_population}.`,
			Placeholders: []string{"protocol_number", "protocol_title", "primary_objectives",
				"study_design", "study_population", "sample_size", "study_duration", "indication"},
			IsTemplate: true,
		},
		SectionIntroduction: {
			Content: `1. INTRODUCTION

1.1 Background and Rationale
This clinical study was designed to investigate {indication}. The study followed
a {study_design} design to evaluate the safety and efficacy of the investigational product.

1.2 Study Rationale
The rationale for this study was based on previous clinical and non-clinical data
supporting the therapeutic potential of the investigational product in {indication}.`,
			Placeholders: []string{"indication", "study_design"},
			IsTemplate:   true,
		},
		SectionStudyObjectives: {
			Content: `2. STUDY OBJECTIVES

2.1 Primary Objectives
{primary_objectives}

2.2 Secondary Objectives
{secondary_objectives}

2.3 Endpoints

2.3.1 Primary Endpoints
{primary_endpoints}

2.3.2 Secondary Endpoints
{secondary_endpoints}`,
			Placeholders: []string{"primary_objectives", "secondary_objectives",
				"primary_endpoints", "secondary_endpoints"},
			IsTemplate: true,
		},
		SectionStudySubjects: {
			Content: `9. STUDY SUBJECTS

9.1 Disposition of Subjects
A total of {sample_size} subjects were planned for enrollment in this study.

[TABLE: Subject Disposition]

9.2 Demographics and Baseline Characteristics
Demographics and baseline characteristics are summarized in the tables below.

[TABLE: Demographics and Baseline Characteristics]`,
			Placeholders: []string{"sample_size"},
			IsTemplate:   true,
		},
		SectionEfficacyEvaluation: {
			Content: `10. EFFICACY EVALUATION

10.1 Primary Efficacy Analysis
The primary efficacy analysis was conducted on the Full Analysis Set (FAS).

[TABLE: Primary Efficacy Results]

10.2 Secondary Efficacy Analyses
Secondary efficacy analyses were performed to support the primary findings.

[TABLE: Secondary Efficacy Results]`,
			IsTemplate: true,
		},
		SectionSafetyEvaluation: {
			Content: `11. SAFETY EVALUATION

11.1 Extent of Exposure
The safety analysis was conducted on the Safety Set.

[TABLE: Extent of Exposure]

11.2 Adverse Events
Adverse events were coded using MedDRA terminology.

[TABLE: Adverse Events Summary]
[TABLE: Adverse Events by System Organ Class]

11.3 Serious Adverse Events
[TABLE: Serious Adverse Events]

11.4 Laboratory Safety
[TABLE: Laboratory Parameters]`,
			IsTemplate: true,
		},
		SectionDiscussionConclusions: {
			Content: `12. DISCUSSION AND CONCLUSIONS

12.1 Summary of Study Results
This study was conducted to evaluate {indication}. The study met its primary objectives.

12.2 Efficacy Discussion
The primary efficacy analysis demonstrated [insert findings].

12.3 Safety Discussion
The safety profile was consistent with previous studies.

12.4 Study Limitations
[Describe any study limitations]

12.5 Conclusions
Based on the results of this study, [insert conclusions].`,
			Placeholders: []string{"indication"},
			IsTemplate:   true,
		},
	}
}

package csr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/llm"
)

const sectionPrompt = `You are a regulatory affairs specialist creating a Clinical Study Report (CSR) compliant with ICH E3 guidelines.

Generate content for the %s section of the CSR.

Protocol Information:
- Protocol Number: %s
- Protocol Title: %s
- Sponsor: %s
- Indication: %s
- Study Phase: %s
- Study Design: %s
- Primary Objectives: %s
- Secondary Objectives: %s
- Study Population: %s
- Sample Size: %d

Boilerplate Template:
%s

Relevant Tables/Figures/Listings:
%s

Requirements:
1. Follow ICH E3 guidelines for CSR structure and content
2. Use professional medical writing style
3. Include appropriate placeholders for tables/figures (e.g., [TABLE: Title])
4. Ensure regulatory compliance
5. Be concise but comprehensive
6. Use the boilerplate as a foundation but enhance with specific details

Generate the section content maintaining professional CSR formatting:`

// GenerateSection drafts one report section. Without a collaborator, or on
// any collaborator failure, the boilerplate template is used directly; all
// paths run placeholder substitution on the result.
func GenerateSection(ctx context.Context, client llm.Client, section Section, info StudyInfo, boilerplate Boilerplate, tlfs []TLFItem) string {
	if client == nil {
		log.Warn().Str("section", string(section)).Msg("collaborator not configured, using template substitution")
		return substitutePlaceholders(boilerplate.Content, info)
	}

	var relevant []string
	for _, tlf := range tlfs {
		if tlf.SectionRef == section {
			relevant = append(relevant, fmt.Sprintf("%s: %s", tlf.ID, tlf.Title))
		}
	}

	prompt := fmt.Sprintf(sectionPrompt,
		titleCase(string(section)),
		info.ProtocolNumber, info.ProtocolTitle, info.Sponsor, info.Indication,
		info.StudyPhase, info.StudyDesign,
		strings.Join(info.PrimaryObjectives, "; "), strings.Join(info.SecondaryObjectives, "; "),
		info.StudyPopulation, info.SampleSize,
		boilerplate.Content,
		strings.Join(relevant, "\n"))

	text, err := client.Complete(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		log.Error().Err(err).Str("section", string(section)).Msg("failed to generate section content")
		return substitutePlaceholders(boilerplate.Content, info)
	}
	return substitutePlaceholders(strings.TrimSpace(text), info)
}

func substitutePlaceholders(content string, info StudyInfo) string {
	substitutions := map[string]string{
		"protocol_number":      info.ProtocolNumber,
		"protocol_title":       info.ProtocolTitle,
		"sponsor":              info.Sponsor,
		"indication":           info.Indication,
		"study_phase":          info.StudyPhase,
		"study_design":         info.StudyDesign,
		"primary_objectives":   bulletList(info.PrimaryObjectives),
		"secondary_objectives": bulletList(info.SecondaryObjectives),
		"primary_endpoints":    bulletList(info.PrimaryEndpoints),
		"secondary_endpoints":  bulletList(info.SecondaryEndpoints),
		"study_population":     info.StudyPopulation,
		"sample_size":          strconv.Itoa(info.SampleSize),
		"study_duration":       info.StudyDuration,
	}
	for placeholder, value := range substitutions {
		content = strings.ReplaceAll(content, "{"+placeholder+"}", value)
	}
	return content
}

func bulletList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

// insertTLFReferences resolves `[TABLE: Title]` style markers into numbered
// references. Numbering is per type in catalog order.
func insertTLFReferences(content string, tlfs []TLFItem) string {
	counters := map[TLFType]int{}
	labels := map[TLFType]string{TLFTable: "Table", TLFFigure: "Figure", TLFListing: "Listing"}
	for _, tlf := range tlfs {
		counters[tlf.Type]++
		label := labels[tlf.Type]
		marker := fmt.Sprintf("[%s: %s]", strings.ToUpper(label), tlf.Title)
		if strings.Contains(content, marker) {
			content = strings.ReplaceAll(content, marker,
				fmt.Sprintf("%s %d: %s", label, counters[tlf.Type], tlf.Title))
		}
	}
	return content
}

// SectionContent pairs a section with its drafted text, kept in body order.
type SectionContent struct {
	Section Section `json:"section"`
	Content string  `json:"content"`
}

// Metadata describes a generated report.
type Metadata struct {
	GenerationDate  string `json:"generation_date"`
	TotalSections   int    `json:"total_sections"`
	TotalTLFs       int    `json:"total_tlfs"`
	ICHE3Compliant  bool   `json:"ich_e3_compliant"`
	DocumentVersion string `json:"document_version"`
}

// Document is a complete generated report.
type Document struct {
	Info        StudyInfo        `json:"protocol_info"`
	Sections    []SectionContent `json:"sections"`
	TLFItems    []TLFItem        `json:"tlf_items"`
	Metadata    Metadata         `json:"metadata"`
	GeneratedAt string           `json:"generation_timestamp"`
}

// GenerateDocument drafts every report section that has boilerplate, in body
// order, resolving TLF markers in each.
func GenerateDocument(ctx context.Context, client llm.Client, info StudyInfo, tlfs []TLFItem, library map[Section]Boilerplate, now time.Time) Document {
	var sections []SectionContent
	for _, section := range sectionOrder {
		boilerplate, ok := library[section]
		if !ok {
			log.Warn().Str("section", string(section)).Msg("no boilerplate for section")
			continue
		}
		log.Info().Str("section", string(section)).Msg("generating section content")
		content := GenerateSection(ctx, client, section, info, boilerplate, tlfs)
		sections = append(sections, SectionContent{
			Section: section,
			Content: insertTLFReferences(content, tlfs),
		})
	}

	stamp := now.UTC().Format(time.RFC3339)
	return Document{
		Info:     info,
		Sections: sections,
		TLFItems: tlfs,
		Metadata: Metadata{
			GenerationDate:  stamp,
			TotalSections:   len(sections),
			TotalTLFs:       len(tlfs),
			ICHE3Compliant:  true,
			DocumentVersion: "Draft 1.0",
		},
		GeneratedAt: stamp,
	}
}

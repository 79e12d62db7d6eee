package csr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// WriteDocument saves the report text plus a JSON metadata sidecar under
// outputDir and returns the report path.
func WriteDocument(doc Document, outputDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CLINICAL STUDY REPORT\n\n")
	fmt.Fprintf(&b, "Protocol Number: %s\n", doc.Info.ProtocolNumber)
	fmt.Fprintf(&b, "Protocol Title: %s\n", doc.Info.ProtocolTitle)
	fmt.Fprintf(&b, "Sponsor: %s\n\n", doc.Info.Sponsor)
	fmt.Fprintf(&b, "Generated: %s\n", doc.GeneratedAt)
	fmt.Fprintf(&b, "Document Version: %s\n\n", doc.Metadata.DocumentVersion)
	b.WriteString(strings.Repeat("=", 80) + "\n")

	for _, section := range doc.Sections {
		b.WriteString("\n\n" + section.Content + "\n\n")
		b.WriteString(strings.Repeat("-", 80) + "\n")
	}

	b.WriteString("\n\nAPPENDIX: TABLES, FIGURES, AND LISTINGS\n\n")
	for i, tlf := range doc.TLFItems {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, tlf.Title, titleCase(string(tlf.Type)))
		fmt.Fprintf(&b, "   File: %s\n", tlf.FilePath)
		fmt.Fprintf(&b, "   Description: %s\n\n", tlf.Description)
	}

	stamp := now.UTC().Format("20060102150405")
	reportPath := filepath.Join(outputDir, fmt.Sprintf("clinical_study_report_%s_%s.txt", doc.Info.ProtocolNumber, stamp))
	if err := os.WriteFile(reportPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report metadata: %w", err)
	}
	metaPath := filepath.Join(outputDir, fmt.Sprintf("csr_metadata_%s.json", stamp))
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write report metadata: %w", err)
	}

	log.Info().Str("path", reportPath).Int("sections", len(doc.Sections)).Msg("clinical study report saved")
	return reportPath, nil
}

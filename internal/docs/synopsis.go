package docs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/llm"
)

const synopsisPrompt = `Create a draft protocol synopsis with the following sections: Rationale, Study Design, Endpoints, and Statistical Methods.
Title: %s
Therapeutic Area: %s
Product Name: %s
Study Phase: %s
Indication: %s
Primary Objective: %s
Population: %s
Arms: %s
Endpoints: %s`

// GenerateSynopsis produces the protocol synopsis text. Collaborator
// failure falls back to a deterministic section template built from the
// protocol info.
func GenerateSynopsis(ctx context.Context, client llm.Client, info ProtocolInfo) string {
	if client == nil {
		log.Warn().Msg("collaborator not configured, using synopsis template")
		return synopsisTemplate(info)
	}

	prompt := fmt.Sprintf(synopsisPrompt,
		info.Title, info.TherapeuticArea, info.ProductName, info.StudyPhase,
		info.Indication, info.PrimaryObjective, info.Population,
		strings.Join(info.Arms, "; "), strings.Join(info.Endpoints, "; "))

	text, err := client.Complete(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		log.Error().Err(err).Msg("failed to generate synopsis")
		return synopsisTemplate(info)
	}
	return strings.TrimSpace(text)
}

func synopsisTemplate(info ProtocolInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Protocol Synopsis\n\n")
	fmt.Fprintf(&b, "**Title:** %s\n\n", info.Title)
	fmt.Fprintf(&b, "**Product:** %s | **Phase:** %s | **Therapeutic Area:** %s\n\n",
		info.ProductName, info.StudyPhase, info.TherapeuticArea)
	fmt.Fprintf(&b, "## Rationale\n\nThis study evaluates %s in %s.\n\n", info.ProductName, info.Indication)
	fmt.Fprintf(&b, "## Study Design\n\nPopulation: %s\n\n", info.Population)
	for _, arm := range info.Arms {
		fmt.Fprintf(&b, "- %s\n", arm)
	}
	fmt.Fprintf(&b, "\n## Endpoints\n\nPrimary objective: %s\n\n", info.PrimaryObjective)
	for _, endpoint := range info.Endpoints {
		fmt.Fprintf(&b, "- %s\n", endpoint)
	}
	fmt.Fprintf(&b, "\n## Statistical Methods\n\nTo be completed by the study statistician.\n")
	return b.String()
}

// SynopsisMetadata accompanies the generated markdown.
type SynopsisMetadata struct {
	Title       string `json:"title"`
	StudyPhase  string `json:"study_phase"`
	GeneratedAt string `json:"generated_at"`
	OutputFile  string `json:"output_file"`
}

// WriteSynopsis saves the synopsis markdown plus a JSON metadata sidecar
// under outputDir and returns the markdown path.
func WriteSynopsis(text string, info ProtocolInfo, outputDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	mdPath := filepath.Join(outputDir, "protocol_synopsis.md")
	if err := os.WriteFile(mdPath, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write synopsis: %w", err)
	}

	meta := SynopsisMetadata{
		Title:       info.Title,
		StudyPhase:  info.StudyPhase,
		GeneratedAt: now.UTC().Format(time.RFC3339),
		OutputFile:  mdPath,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal synopsis metadata: %w", err)
	}
	metaPath := filepath.Join(outputDir, "protocol_synopsis.json")
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write synopsis metadata: %w", err)
	}
	log.Info().Str("path", mdPath).Msg("protocol synopsis saved")
	return mdPath, nil
}

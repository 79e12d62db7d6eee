package docs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/llm"
)

const recruitmentPrompt = `Using the following protocol information, draft IRB-compliant recruitment materials including ad copy, flyer text, and short social media posts. Use simple language at roughly an 8th grade reading level.

Title: %s
Indication: %s
Study Phase: %s
Population: %s
Contact: %s`

// GenerateRecruitmentMaterial produces plain-language recruitment text.
// Collaborator failure falls back to a deterministic flyer template.
func GenerateRecruitmentMaterial(ctx context.Context, client llm.Client, info ProtocolInfo) string {
	if client == nil {
		log.Warn().Msg("collaborator not configured, using recruitment template")
		return recruitmentTemplate(info)
	}

	prompt := fmt.Sprintf(recruitmentPrompt,
		info.Title, info.Indication, info.StudyPhase, info.Population, contactOrPlaceholder(info))

	text, err := client.Complete(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		log.Error().Err(err).Msg("failed to generate recruitment material")
		return recruitmentTemplate(info)
	}
	return strings.TrimSpace(text)
}

func contactOrPlaceholder(info ProtocolInfo) string {
	if info.ContactEmail != "" {
		return info.ContactEmail
	}
	return "[study contact]"
}

func recruitmentTemplate(info ProtocolInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Research Study Opportunity\n\n")
	fmt.Fprintf(&b, "Do you or someone you know have %s?\n\n", info.Indication)
	fmt.Fprintf(&b, "A clinical research study is looking for volunteers. Participation is voluntary and you can leave the study at any time.\n\n")
	if info.Population != "" {
		fmt.Fprintf(&b, "Who may qualify: %s\n\n", info.Population)
	}
	fmt.Fprintf(&b, "To learn more, contact %s.\n", contactOrPlaceholder(info))
	return b.String()
}

// WriteRecruitmentMaterial saves the material as markdown and a simple HTML
// rendition under outputDir and returns the markdown path.
func WriteRecruitmentMaterial(text, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	mdPath := filepath.Join(outputDir, "recruitment_materials.md")
	if err := os.WriteFile(mdPath, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write recruitment material: %w", err)
	}

	html := "<html><body>" + strings.Join(strings.Split(text, "\n"), "<br>") + "</body></html>"
	htmlPath := filepath.Join(outputDir, "recruitment_materials.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("write recruitment HTML: %w", err)
	}
	log.Info().Str("path", mdPath).Msg("recruitment materials saved")
	return mdPath, nil
}

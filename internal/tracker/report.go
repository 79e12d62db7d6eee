package tracker

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// OverallProgress is the unweighted mean of all checklist statuses.
func OverallProgress(tasks []Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	total := 0
	for _, task := range tasks {
		total += task.Status
	}
	return float64(total) / float64(len(tasks))
}

// BuildProgressReport renders the PROGRESS report from the checklist and the
// freshly consumed log records.
func BuildProgressReport(tasks []Task, updates []ProgressLog, now time.Time) string {
	var b strings.Builder
	b.WriteString("# Project Progress Report\n\n")
	fmt.Fprintf(&b, "*Last updated: %s*\n\n---\n\n", now.UTC().Format(time.RFC3339))
	b.WriteString("## Overall Status\n\n")
	fmt.Fprintf(&b, "-   **Approximate Completion:** %.1f%%\n", OverallProgress(tasks))
	fmt.Fprintf(&b, "-   **Tasks Tracked:** %d\n\n---\n\n", len(tasks))
	b.WriteString("## Recent Updates\n\n")
	for _, update := range updates {
		fmt.Fprintf(&b, "- **Agent %s**: %s *(Completed: %s)*\n", update.AgentID, update.Summary, update.Timestamp)
	}
	return b.String()
}

// UpdateProgressReport consumes new progress logs, moves them to the
// processed directory and rewrites the progress report. Returns the number
// of consumed records.
func UpdateProgressReport(checklistPath, newDir, processedDir, reportPath string, now time.Time) (int, error) {
	updates, err := ConsumeNewLogs(newDir, processedDir)
	if err != nil {
		return 0, err
	}
	if len(updates) == 0 {
		log.Info().Msg("no new progress logs to process")
		return 0, nil
	}

	tasks, err := LoadChecklist(checklistPath)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(reportPath, []byte(BuildProgressReport(tasks, updates, now)), 0o644); err != nil {
		return 0, fmt.Errorf("write progress report: %w", err)
	}
	log.Info().Int("updates", len(updates)).Str("path", reportPath).Msg("progress report updated")
	return len(updates), nil
}

// CheckActionItems returns the markdown action items awaiting human
// attention. A missing directory means nothing to check.
func CheckActionItems(actionItemsDir string) []string {
	entries, err := os.ReadDir(actionItemsDir)
	if err != nil {
		return nil
	}
	var items []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
			items = append(items, entry.Name())
		}
	}
	return items
}

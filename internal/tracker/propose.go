package tracker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type actionItemFrontMatter struct {
	Blocker bool `yaml:"blocker"`
}

// CheckBlockers scans the action-items directory for markdown files whose
// front matter sets `blocker: true`. A missing directory means no blockers.
func CheckBlockers(actionItemsDir string) []string {
	entries, err := os.ReadDir(actionItemsDir)
	if err != nil {
		return nil
	}

	var blockers []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		path := filepath.Join(actionItemsDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("could not read action item")
			continue
		}
		fm, ok := frontMatter(string(data))
		if !ok {
			continue
		}
		var meta actionItemFrontMatter
		if err := yaml.Unmarshal([]byte(fm), &meta); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("could not parse action item front matter")
			continue
		}
		if meta.Blocker {
			blockers = append(blockers, entry.Name())
		}
	}
	sort.Strings(blockers)
	return blockers
}

// frontMatter extracts the YAML block between the leading "---" fences.
func frontMatter(content string) (string, bool) {
	trimmed := strings.TrimPrefix(content, "\ufeff")
	if !strings.HasPrefix(trimmed, "---") {
		return "", false
	}
	rest := strings.TrimPrefix(trimmed, "---")
	rest = strings.TrimPrefix(rest, "\n")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// AvailableTasks filters the checklist down to tasks that are not complete
// and whose dependencies are all at 100, ordered critical-path entries
// first and by agent id within each group.
func AvailableTasks(tasks []Task) []Task {
	statusByID := make(map[string]int, len(tasks))
	for _, task := range tasks {
		statusByID[task.AgentID] = task.Status
	}

	var available []Task
	for _, task := range tasks {
		if task.Status == 100 {
			continue
		}
		ready := true
		for _, dep := range task.Dependencies {
			if statusByID[dep] != 100 {
				ready = false
				break
			}
		}
		if ready {
			available = append(available, task)
		}
	}

	sort.SliceStable(available, func(i, j int) bool {
		if available[i].CriticalPath != available[j].CriticalPath {
			return available[i].CriticalPath
		}
		return available[i].AgentID < available[j].AgentID
	})
	return available
}

func taskPrompt(task Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Task: Execute Agent %s - %s\n\n", task.AgentID, task.Name)
	b.WriteString("**Objective:**\n")
	fmt.Fprintf(&b, "Produce the artifacts that fulfill the objective for Agent %s. Refer to `config/agents.md` for the detailed business logic, inputs, and outputs.\n\n", task.AgentID)
	b.WriteString("**Mandatory Project Standards:**\n")
	b.WriteString("1.  **Configuration:** Read settings from `.ctagent/config.json` and environment variables.\n")
	b.WriteString("2.  **Logging:** Emit structured logs for every load, transform, and write step.\n")
	b.WriteString("3.  **LLM Calls:** Route completions through the configured provider; always handle the fallback path.\n")
	b.WriteString("4.  **Tests:** Cover the new logic with package-level tests that stub all external calls.\n\n")
	b.WriteString("**CRITICAL - COMPLETION PROTOCOL:**\n")
	b.WriteString("After the agent's artifacts are produced, you **must** perform the following two final actions:\n")
	fmt.Fprintf(&b, "1.  **Update Checklist:** Set the `status` for `agentId: %s` in `config/checklist.yml` to `100` (or a partial percentage if not fully complete).\n", task.AgentID)
	fmt.Fprintf(&b, "2.  **Write Log File:** Create a `%s-<status>-<timestamp>.json` record in `PROGRESS_LOGS/new/` summarizing the work completed.", task.AgentID)
	return b.String()
}

// BuildNextActions renders the NEXT_ACTIONS report: a blocked notice when
// blockers exist, otherwise one ready-to-run prompt per available task.
func BuildNextActions(tasks []Task, blockers []string) string {
	var b strings.Builder

	if len(blockers) > 0 {
		b.WriteString("## WORKFLOW BLOCKED\n\n")
		b.WriteString("**The workflow is halted pending human intervention. The following blocking issues must be resolved:**\n\n")
		for _, issue := range blockers {
			fmt.Fprintf(&b, "- `%s`\n", issue)
		}
		return b.String()
	}

	available := AvailableTasks(tasks)

	b.WriteString("## Next Available Actions\n\n")
	b.WriteString("*This report is auto-generated. Run the propose command to regenerate.*\n\n")
	if len(available) == 0 {
		b.WriteString("**No actions available. All tasks are either complete or waiting on dependencies.**")
		return b.String()
	}

	b.WriteString("Copy the full text for a task below and provide it to the executing agent.\n\n---\n\n")
	for _, task := range available {
		marker := "Standard Task"
		if task.CriticalPath {
			marker = "CRITICAL PATH"
		}
		fmt.Fprintf(&b, "### Task ID: `%s` (%s)\n", task.AgentID, marker)
		b.WriteString("```markdown\n")
		b.WriteString(taskPrompt(task))
		b.WriteString("\n```\n\n---\n\n")
	}
	return b.String()
}

// WriteNextActions renders and writes the NEXT_ACTIONS report, returning the
// number of proposed tasks (0 when blocked).
func WriteNextActions(checklistPath, actionItemsDir, outputPath string) (int, error) {
	blockers := CheckBlockers(actionItemsDir)
	if len(blockers) > 0 {
		if err := os.WriteFile(outputPath, []byte(BuildNextActions(nil, blockers)), 0o644); err != nil {
			return 0, fmt.Errorf("write next actions: %w", err)
		}
		log.Warn().Int("blockers", len(blockers)).Str("path", outputPath).Msg("workflow blocked")
		return 0, nil
	}

	tasks, err := LoadChecklist(checklistPath)
	if err != nil {
		return 0, err
	}
	available := AvailableTasks(tasks)
	if err := os.WriteFile(outputPath, []byte(BuildNextActions(tasks, nil)), 0o644); err != nil {
		return 0, fmt.Errorf("write next actions: %w", err)
	}
	log.Info().Int("available", len(available)).Str("path", outputPath).Msg("next actions proposed")
	return len(available), nil
}

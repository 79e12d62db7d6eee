// Package tracker maintains the shared task board: the checklist.yml agent
// list, progress-log records, next-task proposal and the progress report.
package tracker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Task is one agent entry of the checklist.
type Task struct {
	AgentID      string   `yaml:"agentId"`
	Name         string   `yaml:"name"`
	Status       int      `yaml:"status"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	CriticalPath bool     `yaml:"critical_path,omitempty"`
}

// LoadChecklist reads the flat task list from the checklist file.
func LoadChecklist(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checklist: %w", err)
	}
	var tasks []Task
	if err := yaml.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse checklist: %w", err)
	}
	return tasks, nil
}

// SaveChecklist writes the task list back to the checklist file.
func SaveChecklist(path string, tasks []Task) error {
	data, err := yaml.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshal checklist: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write checklist: %w", err)
	}
	return nil
}

// SetStatus updates one agent's status in the checklist under an exclusive
// lock held in the checklist's directory. Unknown agent ids are logged and
// leave the file unchanged.
func SetStatus(path, agentID string, status int) error {
	lock, err := AcquireBoardLock(filepath.Dir(path))
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn().Err(err).Msg("release board lock")
		}
	}()

	tasks, err := LoadChecklist(path)
	if err != nil {
		return err
	}

	found := false
	for i := range tasks {
		if tasks[i].AgentID == agentID {
			tasks[i].Status = status
			found = true
			break
		}
	}
	if !found {
		log.Warn().Str("agent_id", agentID).Msg("agent not found in checklist")
		return nil
	}
	if err := SaveChecklist(path, tasks); err != nil {
		return err
	}
	log.Info().Str("agent_id", agentID).Int("status", status).Msg("checklist updated")
	return nil
}

package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ProgressLog is one timestamped work record for an agent.
type ProgressLog struct {
	AgentID   string `json:"agentId"`
	Status    int    `json:"status"`
	Summary   string `json:"summary"`
	Timestamp string `json:"timestamp"`
}

// WriteProgressLog appends a `<agentId>-<status>-<timestamp>.json` record to
// logDir and returns the file path.
func WriteProgressLog(logDir, agentID string, status int, summary string, now time.Time) (string, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", fmt.Errorf("create progress log dir: %w", err)
	}

	timestamp := now.UTC().Format("20060102150405")
	record := ProgressLog{
		AgentID:   agentID,
		Status:    status,
		Summary:   summary,
		Timestamp: timestamp,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal progress log: %w", err)
	}

	path := filepath.Join(logDir, fmt.Sprintf("%s-%d-%s.json", agentID, status, timestamp))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write progress log: %w", err)
	}
	log.Info().Str("path", path).Msg("progress log written")
	return path, nil
}

// ConsumeNewLogs reads every JSON record in newDir in filename order (which
// sorts by timestamp), moves each processed file into processedDir and
// returns the parsed records. Unparsable files are logged and left in place.
func ConsumeNewLogs(newDir, processedDir string) ([]ProgressLog, error) {
	entries, err := os.ReadDir(newDir)
	if err != nil {
		return nil, fmt.Errorf("read progress log dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if len(names) > 0 {
		if err := os.MkdirAll(processedDir, 0o755); err != nil {
			return nil, fmt.Errorf("create processed dir: %w", err)
		}
	}

	var records []ProgressLog
	for _, name := range names {
		path := filepath.Join(newDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("read progress log")
			continue
		}
		var record ProgressLog
		if err := json.Unmarshal(data, &record); err != nil {
			log.Error().Err(err).Str("path", path).Msg("unparsable progress log")
			continue
		}
		if err := os.Rename(path, filepath.Join(processedDir, name)); err != nil {
			log.Error().Err(err).Str("path", path).Msg("move processed log")
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

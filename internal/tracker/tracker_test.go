package tracker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleChecklist = `- agentId: "1.100"
  name: Protocol Synopsis
  status: 100
  critical_path: true
- agentId: "2.200"
  name: Recruitment Materials
  status: 0
  dependencies: ["1.100"]
- agentId: "3.100"
  name: Data Validation
  status: 40
  critical_path: true
  dependencies: ["1.100"]
- agentId: "3.300"
  name: Pharmacovigilance
  status: 0
  dependencies: ["3.100"]
`

func writeChecklist(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checklist.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleChecklist), 0o644))
	return path
}

func TestSetStatus(t *testing.T) {
	t.Parallel()

	path := writeChecklist(t)
	require.NoError(t, SetStatus(path, "2.200", 100))

	tasks, err := LoadChecklist(path)
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	assert.Equal(t, 100, tasks[1].Status)
	// Other rows untouched.
	assert.Equal(t, 40, tasks[2].Status)
}

func TestSetStatus_UnknownAgentLeavesFileUnchanged(t *testing.T) {
	t.Parallel()

	path := writeChecklist(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, SetStatus(path, "9.999", 100))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestLoadChecklist_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadChecklist(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte(":\tnot yaml"), 0o644))
	_, err = LoadChecklist(bad)
	require.Error(t, err)
}

func TestAvailableTasks_DependencyGatingAndOrdering(t *testing.T) {
	t.Parallel()

	tasks, err := LoadChecklist(writeChecklist(t))
	require.NoError(t, err)

	available := AvailableTasks(tasks)
	require.Len(t, available, 2)
	// Critical path first, then by agent id; 3.300 is gated on 3.100 (40).
	assert.Equal(t, "3.100", available[0].AgentID)
	assert.Equal(t, "2.200", available[1].AgentID)
}

func TestAvailableTasks_AllCompleteOrGated(t *testing.T) {
	t.Parallel()

	tasks := []Task{
		{AgentID: "1.100", Status: 100},
		{AgentID: "2.200", Status: 50, Dependencies: []string{"9.999"}},
	}
	assert.Empty(t, AvailableTasks(tasks))
}

func TestWriteProgressLogAndConsume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	newDir := filepath.Join(dir, "new")
	processedDir := filepath.Join(dir, "processed")
	now := time.Date(2026, 4, 1, 12, 30, 0, 0, time.UTC)

	path, err := WriteProgressLog(newDir, "3.100", 100, "Data validation completed", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(newDir, "3.100-100-20260401123000.json"), path)

	records, err := ConsumeNewLogs(newDir, processedDir)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "3.100", records[0].AgentID)
	assert.Equal(t, "20260401123000", records[0].Timestamp)

	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(processedDir, "3.100-100-20260401123000.json"))

	// Second pass: nothing left to consume.
	records, err = ConsumeNewLogs(newDir, processedDir)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCheckBlockers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "issue-1.md"), []byte("---\nblocker: true\n---\nEDC export failed\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "issue-2.md"), []byte("---\nblocker: false\n---\nFYI only\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.md"), []byte("no front matter\n"), 0o644))

	blockers := CheckBlockers(dir)
	assert.Equal(t, []string{"issue-1.md"}, blockers)

	assert.Empty(t, CheckBlockers(filepath.Join(dir, "missing")))
}

func TestWriteNextActions_Blocked(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	actionDir := filepath.Join(dir, "ACTION_ITEMS")
	require.NoError(t, os.MkdirAll(actionDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(actionDir, "halt.md"), []byte("---\nblocker: true\n---\n"), 0o644))
	output := filepath.Join(dir, "NEXT_ACTIONS.md")

	count, err := WriteNextActions(writeChecklist(t), actionDir, output)
	require.NoError(t, err)
	assert.Zero(t, count)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "WORKFLOW BLOCKED")
	assert.Contains(t, string(content), "halt.md")
}

func TestWriteNextActions_ProposesPrompts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := filepath.Join(dir, "NEXT_ACTIONS.md")

	count, err := WriteNextActions(writeChecklist(t), filepath.Join(dir, "no-action-items"), output)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "### Task ID: `3.100` (CRITICAL PATH)")
	assert.Contains(t, text, "### Task ID: `2.200` (Standard Task)")
	assert.Contains(t, text, "COMPLETION PROTOCOL")
}

func TestOverallProgressAndReport(t *testing.T) {
	t.Parallel()

	tasks, err := LoadChecklist(writeChecklist(t))
	require.NoError(t, err)
	assert.InDelta(t, 35.0, OverallProgress(tasks), 1e-9)
	assert.Zero(t, OverallProgress(nil))

	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	report := BuildProgressReport(tasks, []ProgressLog{
		{AgentID: "3.100", Summary: "Data validation completed", Timestamp: "20260401000000"},
	}, now)
	assert.Contains(t, report, "**Approximate Completion:** 35.0%")
	assert.Contains(t, report, "**Tasks Tracked:** 4")
	assert.Contains(t, report, "**Agent 3.100**: Data validation completed")
}

func TestUpdateProgressReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	newDir := filepath.Join(dir, "new")
	processedDir := filepath.Join(dir, "processed")
	reportPath := filepath.Join(dir, "PROGRESS.md")
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	_, err := WriteProgressLog(newDir, "1.100", 100, "Synopsis generated", now)
	require.NoError(t, err)

	count, err := UpdateProgressReport(writeChecklist(t), newDir, processedDir, reportPath, now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.FileExists(t, reportPath)

	// Nothing new: report untouched, zero consumed.
	count, err = UpdateProgressReport(writeChecklist(t), newDir, processedDir, reportPath, now)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCheckActionItems(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.Empty(t, CheckActionItems(filepath.Join(dir, "missing")))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "todo.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("x"), 0o644))
	assert.Equal(t, []string{"todo.md"}, CheckActionItems(dir))
}

func TestBoardLock_AcquireAndRelease(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lock, err := AcquireBoardLock(dir)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
	assert.FileExists(t, filepath.Join(dir, "locks", "board.lock"))

	var nilLock *BoardLock
	assert.NoError(t, nilLock.Release())
}

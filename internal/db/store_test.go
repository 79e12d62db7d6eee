package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Store {
	t.Helper()
	handle, err := Open(filepath.Join(t.TempDir(), "ctagent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = handle.Close() })
	return NewStore(handle)
}

func TestRecordAndListRuns(t *testing.T) {
	t.Parallel()

	store := openTestDB(t)
	ctx := context.Background()
	started := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	id, err := store.RecordRun(ctx, Run{
		AgentID:   "3.100",
		Command:   "validate",
		Status:    100,
		Summary:   "Data validation completed",
		Artifact:  "output/validation_report_20260401100000.json",
		StartedAt: started,
		EndedAt:   started.Add(30 * time.Second),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = store.RecordRun(ctx, Run{
		AgentID:   "3.300",
		Command:   "safety",
		Status:    100,
		Summary:   "No safety events detected",
		StartedAt: started.Add(time.Minute),
		EndedAt:   started.Add(2 * time.Minute),
	})
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "3.300", runs[0].AgentID)
	assert.Empty(t, runs[0].Artifact)
	assert.Equal(t, "3.100", runs[1].AgentID)
	assert.Equal(t, "output/validation_report_20260401100000.json", runs[1].Artifact)
	assert.True(t, runs[1].StartedAt.Equal(started))

	limited, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "3.300", limited[0].AgentID)
}

func TestListRuns_Empty(t *testing.T) {
	t.Parallel()

	store := openTestDB(t)
	runs, err := store.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpen_Reentrant(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ctagent.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Migrations are idempotent on a second open.
	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

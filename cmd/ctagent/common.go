package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sagearbor/clinicalTrials-s2f/internal/config"
	"github.com/sagearbor/clinicalTrials-s2f/internal/db"
	"github.com/sagearbor/clinicalTrials-s2f/internal/llm"
	"github.com/sagearbor/clinicalTrials-s2f/internal/tracker"
)

// Workflow checklist identifiers, one per agent command.
const (
	agentSynopsis  = "1.100"
	agentSitePerf  = "1.300"
	agentRecruit   = "2.200"
	agentValidate  = "3.100"
	agentCoding    = "3.200"
	agentSafety    = "3.300"
	agentMonitor   = "4.100"
	agentReadiness = "4.200"
	agentCSR       = "4.300"
)

func openDB() (*sql.DB, string, func(), error) {
	repoRoot, err := os.Getwd()
	if err != nil {
		return nil, "", func() {}, err
	}
	stateDir := filepath.Join(repoRoot, ".ctagent")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, "", func() {}, err
	}
	dbPath := filepath.Join(stateDir, "ctagent.db")
	storeDB, err := db.Open(dbPath)
	if err != nil {
		return nil, "", func() {}, err
	}
	return storeDB, repoRoot, func() { _ = storeDB.Close() }, nil
}

// newCollaborator builds the optional completion client. Construction
// failures degrade to the deterministic fallback paths rather than aborting
// the run.
func newCollaborator(cfg config.Config) llm.Client {
	client, err := llm.New(cfg.LLM)
	if err != nil {
		log.Warn().Err(err).Msg("collaborator unavailable, using fallbacks")
		return nil
	}
	return client
}

// completeRun records a finished agent run on the shared workflow state:
// checklist status, progress log, and the run ledger. Bookkeeping failures
// are logged, never fatal, so a produced artifact is not lost to them.
func completeRun(ctx context.Context, cfg config.Config, storeDB *sql.DB, agentID, command, summary, artifact string, started time.Time) {
	if err := tracker.SetStatus(cfg.Paths.Checklist, agentID, 100); err != nil {
		log.Warn().Err(err).Str("agent_id", agentID).Msg("could not update checklist")
	}
	if _, err := tracker.WriteProgressLog(cfg.Paths.ProgressLogsNew, agentID, 100, summary, time.Now()); err != nil {
		log.Warn().Err(err).Str("agent_id", agentID).Msg("could not write progress log")
	}
	if _, err := db.NewStore(storeDB).RecordRun(ctx, db.Run{
		AgentID:   agentID,
		Command:   command,
		Status:    100,
		Summary:   summary,
		Artifact:  artifact,
		StartedAt: started,
		EndedAt:   time.Now(),
	}); err != nil {
		log.Warn().Err(err).Str("agent_id", agentID).Msg("could not record run")
	}
}

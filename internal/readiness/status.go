package readiness

import (
	"encoding/json"
	"fmt"
	"os"
)

// QueryStatus summarizes the data-query feed.
type QueryStatus struct {
	TotalQueries      int     `json:"total_queries"`
	OpenQueries       int     `json:"open_queries"`
	ClosedQueries     int     `json:"closed_queries"`
	OverdueQueries    int     `json:"overdue_queries"`
	AvgResolutionDays float64 `json:"avg_resolution_days"`
	CriticalQueries   int     `json:"critical_queries"`
}

// SafetyEventStatus summarizes the safety-event reconciliation feed.
type SafetyEventStatus struct {
	TotalEvents       int     `json:"total_events"`
	ReconciledEvents  int     `json:"reconciled_events"`
	PendingEvents     int     `json:"pending_events"`
	SeriousEvents     int     `json:"serious_events"`
	ResolvedEvents    int     `json:"resolved_events"`
	AvgResolutionDays float64 `json:"avg_resolution_days"`
}

// MonitoringVisitStatus summarizes the monitoring-visit feed.
type MonitoringVisitStatus struct {
	TotalSites       int     `json:"total_sites"`
	CompletedVisits  int     `json:"completed_visits"`
	PendingVisits    int     `json:"pending_visits"`
	OverdueVisits    int     `json:"overdue_visits"`
	AvgVisitDuration float64 `json:"avg_visit_duration"`
	CriticalFindings int     `json:"critical_findings"`
}

// StatusData bundles the optional feed summaries for one run.
type StatusData struct {
	Queries    *QueryStatus           `json:"query_status,omitempty"`
	Safety     *SafetyEventStatus     `json:"safety_status,omitempty"`
	Monitoring *MonitoringVisitStatus `json:"monitoring_status,omitempty"`
}

type queryFeed struct {
	Queries []struct {
		Status         string  `json:"status"`
		Overdue        bool    `json:"overdue"`
		Priority       string  `json:"priority"`
		ResolutionDays float64 `json:"resolution_days"`
	} `json:"queries"`
}

// AnalyzeQueries summarizes a data-query feed file.
func AnalyzeQueries(path string) (QueryStatus, error) {
	var feed queryFeed
	if err := readJSON(path, &feed); err != nil {
		return QueryStatus{}, err
	}

	status := QueryStatus{TotalQueries: len(feed.Queries)}
	var resolvedDays float64
	var resolvedCount int
	for _, q := range feed.Queries {
		switch q.Status {
		case "open":
			status.OpenQueries++
		case "closed":
			status.ClosedQueries++
			if q.ResolutionDays > 0 {
				resolvedDays += q.ResolutionDays
				resolvedCount++
			}
		}
		if q.Overdue {
			status.OverdueQueries++
		}
		if q.Priority == "critical" {
			status.CriticalQueries++
		}
	}
	if resolvedCount > 0 {
		status.AvgResolutionDays = resolvedDays / float64(resolvedCount)
	}
	return status, nil
}

type safetyFeed struct {
	SafetyEvents []struct {
		Status         string  `json:"status"`
		Reconciled     bool    `json:"reconciled"`
		Serious        bool    `json:"serious"`
		ResolutionDays float64 `json:"resolution_days"`
	} `json:"safety_events"`
}

// AnalyzeSafetyEvents summarizes a safety reconciliation feed file.
func AnalyzeSafetyEvents(path string) (SafetyEventStatus, error) {
	var feed safetyFeed
	if err := readJSON(path, &feed); err != nil {
		return SafetyEventStatus{}, err
	}

	status := SafetyEventStatus{TotalEvents: len(feed.SafetyEvents)}
	var resolvedDays float64
	var resolvedCount int
	for _, e := range feed.SafetyEvents {
		if e.Reconciled {
			status.ReconciledEvents++
		}
		if e.Serious {
			status.SeriousEvents++
		}
		switch e.Status {
		case "pending":
			status.PendingEvents++
		case "resolved":
			status.ResolvedEvents++
			if e.ResolutionDays > 0 {
				resolvedDays += e.ResolutionDays
				resolvedCount++
			}
		}
	}
	if resolvedCount > 0 {
		status.AvgResolutionDays = resolvedDays / float64(resolvedCount)
	}
	return status, nil
}

type monitoringFeed struct {
	Sites []json.RawMessage `json:"sites"`
	Ops   []struct {
		Status           string  `json:"status"`
		Overdue          bool    `json:"overdue"`
		CriticalFindings int     `json:"critical_findings"`
		DurationDays     float64 `json:"duration_days"`
	} `json:"monitoring_visits"`
}

// AnalyzeMonitoringVisits summarizes a monitoring-visit feed file.
func AnalyzeMonitoringVisits(path string) (MonitoringVisitStatus, error) {
	var feed monitoringFeed
	if err := readJSON(path, &feed); err != nil {
		return MonitoringVisitStatus{}, err
	}

	status := MonitoringVisitStatus{TotalSites: len(feed.Sites)}
	var completedDays float64
	var completedCount int
	for _, v := range feed.Ops {
		switch v.Status {
		case "completed":
			status.CompletedVisits++
			if v.DurationDays > 0 {
				completedDays += v.DurationDays
				completedCount++
			}
		case "pending":
			status.PendingVisits++
		}
		if v.Overdue {
			status.OverdueVisits++
		}
		if v.CriticalFindings > 0 {
			status.CriticalFindings++
		}
	}
	if completedCount > 0 {
		status.AvgVisitDuration = completedDays / float64(completedCount)
	}
	return status, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

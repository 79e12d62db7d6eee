package readiness

import (
	"time"

	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// blockedFloorDays keeps the blocked estimate from collapsing to a near-zero
// number that would hide a real blocker.
const blockedFloorDays = 5

// UpdateActivityStatus recomputes status, completion percentage and the
// remaining-days estimate for every activity whose category has a fresh feed
// summary. Activities in categories without a summary keep their loaded
// values; every touched activity gets a new last_updated stamp.
func UpdateActivityStatus(activities []CloseoutActivity, status StatusData, now time.Time) []CloseoutActivity {
	stamp := now.UTC().Format(time.RFC3339)

	for i := range activities {
		activity := &activities[i]

		switch {
		case activity.Category == model.ActivityDataQueries && status.Queries != nil:
			q := status.Queries
			switch {
			case q.OpenQueries == 0:
				markCompleted(activity)
			case q.CriticalQueries > 0:
				activity.Status = model.StatusBlocked
				activity.EstimatedDaysLeft = int(max(q.AvgResolutionDays*float64(q.CriticalQueries), blockedFloorDays))
			default:
				activity.Status = model.StatusInProgress
				activity.CompletionPercentage = float64(q.ClosedQueries) / float64(q.TotalQueries) * 100
				activity.EstimatedDaysLeft = int(q.AvgResolutionDays * float64(q.OpenQueries))
			}

		case activity.Category == model.ActivitySafetyEvents && status.Safety != nil:
			s := status.Safety
			if s.PendingEvents == 0 {
				markCompleted(activity)
			} else {
				activity.Status = model.StatusInProgress
				activity.CompletionPercentage = float64(s.ResolvedEvents) / float64(s.TotalEvents) * 100
				activity.EstimatedDaysLeft = int(s.AvgResolutionDays * float64(s.PendingEvents))
			}

		case activity.Category == model.ActivityMonitoringVisits && status.Monitoring != nil:
			m := status.Monitoring
			if m.PendingVisits == 0 {
				markCompleted(activity)
			} else {
				activity.Status = model.StatusInProgress
				activity.CompletionPercentage = float64(m.CompletedVisits) / float64(m.TotalSites) * 100
				activity.EstimatedDaysLeft = int(m.AvgVisitDuration * float64(m.PendingVisits))
			}
		}

		activity.LastUpdated = stamp
	}

	return activities
}

func markCompleted(activity *CloseoutActivity) {
	activity.Status = model.StatusCompleted
	activity.CompletionPercentage = 100.0
	activity.EstimatedDaysLeft = 0
}

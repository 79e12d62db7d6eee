package risk

import (
	"time"

	"github.com/sagearbor/clinicalTrials-s2f/internal/model"
)

// Visit urgency labels.
const (
	UrgencyImmediate = "immediate"
	UrgencyUrgent    = "urgent"
	UrgencyPriority  = "priority"
	UrgencyRoutine   = "routine"
	UrgencyOverdue   = "overdue"
)

// NextVisit maps a risk level to a recommended follow-up date and urgency
// label. A site not contacted for more than 90 days overrides the table:
// the visit is forced to +14 days with the "overdue" label regardless of
// computed risk.
func NextVisit(level model.RiskLevel, daysSinceLastVisit int, now time.Time) (string, string) {
	var offsetDays int
	var urgency string

	switch level {
	case model.RiskCritical:
		offsetDays, urgency = 7, UrgencyImmediate
	case model.RiskHigh:
		offsetDays, urgency = 14, UrgencyUrgent
	case model.RiskMedium:
		offsetDays, urgency = 30, UrgencyPriority
	default:
		offsetDays, urgency = 60, UrgencyRoutine
	}

	if daysSinceLastVisit > 90 {
		offsetDays, urgency = 14, UrgencyOverdue
	}

	return now.AddDate(0, 0, offsetDays).Format("2006-01-02"), urgency
}

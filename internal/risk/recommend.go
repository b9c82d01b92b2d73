package risk

const (
	RecDelayUrgent  = "Reprioritize late phases and reinforce the teams"
	RecDelayReview  = "Analyze the causes of delay and adjust the schedule"
	RecBudgetUrgent = "Urgent budget revision and cost control"
	RecBudgetWatch  = "Monitor budget evolution closely"
	RecAlerts       = "Handle critical alerts first"
	RecBlocking     = "Unblock critical phases immediately"
	RecProgress     = "Accelerate phase completion"
	RecUnderControl = "Operation under control, keep monitoring"
)

const (
	urgentSubscore   = 75
	watchingSubscore = 50
)

// Recommend evaluates each factor in order delay, budget, alerts, blocking,
// progress. Several may fire; with none, a single under-control message is returned.
func Recommend(s Subscores) []string {
	var out []string

	switch {
	case s.Delay >= urgentSubscore:
		out = append(out, RecDelayUrgent)
	case s.Delay >= watchingSubscore:
		out = append(out, RecDelayReview)
	}

	switch {
	case s.Budget >= urgentSubscore:
		out = append(out, RecBudgetUrgent)
	case s.Budget >= watchingSubscore:
		out = append(out, RecBudgetWatch)
	}

	if s.Alerts >= urgentSubscore {
		out = append(out, RecAlerts)
	}
	if s.Blocking >= urgentSubscore {
		out = append(out, RecBlocking)
	}
	if s.Progress >= urgentSubscore {
		out = append(out, RecProgress)
	}

	if len(out) == 0 {
		out = append(out, RecUnderControl)
	}
	return out
}

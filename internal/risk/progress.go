package risk

import "github.com/alexanderramin/spic/internal/domain"

const primaryWeight = 1.5

// ProgressSummary is the display view of an operation's progress. It is
// distinct from ProgressScore, which uses the unweighted mean.
type ProgressSummary struct {
	WeightedPct   float64
	Total         int
	Done          int
	InProgress    int
	Late          int
	PlannedDays   int
	ActualDays    int
	EfficiencyPct float64
}

// GlobalProgress weights primary phases 1.5x when averaging progress.
func GlobalProgress(phases []*domain.Phase, clock Clock) ProgressSummary {
	s := ProgressSummary{Total: len(phases)}
	if len(phases) == 0 {
		return s
	}
	today := domain.DateOnly(clock.Now())

	var weighted, weights float64
	for _, p := range phases {
		w := 1.0
		if p.IsPrimary {
			w = primaryWeight
		}
		weighted += float64(clampPct(p.ProgressPct)) * w
		weights += w

		switch p.Status {
		case domain.PhaseDone:
			s.Done++
		case domain.PhaseInProgress:
			s.InProgress++
		}
		if _, late := p.DaysOverdue(today); late {
			s.Late++
		}
		s.PlannedDays += p.PlannedDays
		s.ActualDays += domain.IntFromPtrWithDefault(0, p.ActualDays)
	}
	s.WeightedPct = round1(weighted / weights)
	s.EfficiencyPct = 100
	if s.ActualDays > 0 {
		s.EfficiencyPct = round1(float64(s.PlannedDays) / float64(s.ActualDays) * 100)
	}
	return s
}

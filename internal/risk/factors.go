package risk

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alexanderramin/spic/internal/domain"
)

type DelayedPhase struct {
	Name     string
	Order    int
	DaysLate int
}

type DelayDetail struct {
	Count    int
	MeanDays float64
	Phases   []DelayedPhase
}

// DelayScore scores phases past their planned end and not done, bucketed on
// the mean delay of those phases only.
func DelayScore(phases []*domain.Phase, today time.Time, c Criterion) (int, DelayDetail) {
	var d DelayDetail
	total := 0
	for _, p := range phases {
		days, late := p.DaysOverdue(today)
		if !late {
			continue
		}
		d.Phases = append(d.Phases, DelayedPhase{Name: p.Name, Order: p.Order, DaysLate: days})
		total += days
	}
	d.Count = len(d.Phases)
	if d.Count == 0 {
		return 0, d
	}
	mean := float64(total) / float64(d.Count)
	d.MeanDays = round1(mean)
	return c.bucket(mean), d
}

type BudgetDetail struct {
	// Assessable is false when the initial budget is undefined or not
	// positive. The subscore is then 0 but means "cannot assess".
	Assessable bool
	Note       string
	OverrunPct float64
	Initial    decimal.Decimal
	Effective  decimal.Decimal
	Delta      decimal.Decimal
}

const NoteBudgetUndefined = "initial budget undefined, overrun cannot be assessed"

// BudgetScore scores the overrun of the effective budget over the initial one.
func BudgetScore(op *domain.Operation, c Criterion) (int, BudgetDetail) {
	pct, delta, ok := op.Overrun()
	if !ok {
		return 0, BudgetDetail{Note: NoteBudgetUndefined, Initial: op.Initial(), Effective: op.EffectiveBudget()}
	}
	overrun := pct.InexactFloat64()
	return c.bucketWithFloor(overrun), BudgetDetail{
		Assessable: true,
		OverrunPct: round1(overrun),
		Initial:    op.Initial(),
		Effective:  op.EffectiveBudget(),
		Delta:      delta,
	}
}

type AlertsDetail struct {
	Count      int
	BySeverity map[domain.Severity]int
	Weighted   int
}

// AlertsScore sums severity weights over active alerts, capped at 100.
// Alerts compound, so there is no bucketing here.
func AlertsScore(alerts []*domain.Alert, w SeverityWeights) (int, AlertsDetail) {
	d := AlertsDetail{BySeverity: map[domain.Severity]int{}}
	for _, s := range domain.Severities {
		d.BySeverity[s] = 0
	}
	for _, a := range alerts {
		if !a.Active {
			continue
		}
		d.Count++
		d.BySeverity[a.Severity]++
		d.Weighted += w.For(a.Severity)
	}
	return min(100, d.Weighted), d
}

type BlockedPhase struct {
	Name  string
	Order int
}

type BlockingDetail struct {
	Count  int
	Phases []BlockedPhase
}

// BlockingScore scores the number of phases whose stored status is blocked.
func BlockingScore(phases []*domain.Phase, c Criterion) (int, BlockingDetail) {
	var d BlockingDetail
	for _, p := range phases {
		if p.Status == domain.PhaseBlocked {
			d.Phases = append(d.Phases, BlockedPhase{Name: p.Name, Order: p.Order})
		}
	}
	d.Count = len(d.Phases)
	return c.bucketWithFloor(float64(d.Count)), d
}

type ProgressDetail struct {
	MeanPct float64
	Total   int
	Done    int
}

// ProgressScore scores the unweighted mean progress. Low progress is high
// risk. No phases scores 0.
func ProgressScore(phases []*domain.Phase, c Criterion) (int, ProgressDetail) {
	d := ProgressDetail{Total: len(phases)}
	if len(phases) == 0 {
		return 0, d
	}
	sum := 0
	for _, p := range phases {
		sum += clampPct(p.ProgressPct)
		if p.Status == domain.PhaseDone {
			d.Done++
		}
	}
	mean := float64(sum) / float64(len(phases))
	d.MeanPct = round1(mean)
	return c.bucketBelow(mean), d
}

func clampPct(v int) int {
	return max(0, min(100, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

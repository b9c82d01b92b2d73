package risk

import (
	"math"
	"time"

	"github.com/alexanderramin/spic/internal/domain"
)

type Subscores struct {
	Delay    int
	Budget   int
	Alerts   int
	Blocking int
	Progress int
}

type Details struct {
	Delay    DelayDetail
	Budget   BudgetDetail
	Alerts   AlertsDetail
	Blocking BlockingDetail
	Progress ProgressDetail
}

// Analysis is the full result of scoring one operation.
type Analysis struct {
	OperationID     string
	ScoreTotal      int
	Level           domain.RiskLevel
	Subscores       Subscores
	Details         Details
	Recommendations []string
	ComputedAt      time.Time
}

// Scorer computes composite risk analyses against a validated table.
type Scorer struct {
	th Thresholds
}

// NewScorer validates th and returns a scorer bound to it.
func NewScorer(th Thresholds) (*Scorer, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{th: th}, nil
}

func (s *Scorer) Thresholds() Thresholds { return s.th }

// Compute scores an operation from its phases and alerts. It is pure: the
// only notion of time comes from clock.
func (s *Scorer) Compute(op *domain.Operation, phases []*domain.Phase, alerts []*domain.Alert, clock Clock) *Analysis {
	now := clock.Now()
	today := domain.DateOnly(now)
	c := s.th.Criteria

	a := &Analysis{OperationID: op.ID, ComputedAt: now}
	a.Subscores.Delay, a.Details.Delay = DelayScore(phases, today, c.Delay)
	a.Subscores.Budget, a.Details.Budget = BudgetScore(op, c.Budget)
	a.Subscores.Alerts, a.Details.Alerts = AlertsScore(alerts, s.th.Severity)
	a.Subscores.Blocking, a.Details.Blocking = BlockingScore(phases, c.Blocking)
	a.Subscores.Progress, a.Details.Progress = ProgressScore(phases, c.Progress)

	a.ScoreTotal = Combine(a.Subscores, c)
	a.Level = s.th.Levels.LevelFor(a.ScoreTotal)
	a.Recommendations = Recommend(a.Subscores)
	return a
}

// Combine returns round(sum(subscore * weight) / 100) clamped to [0,100].
func Combine(s Subscores, c Criteria) int {
	weighted := s.Delay*c.Delay.Weight +
		s.Budget*c.Budget.Weight +
		s.Alerts*c.Alerts.Weight +
		s.Blocking*c.Blocking.Weight +
		s.Progress*c.Progress.Weight
	total := int(math.Round(float64(weighted) / 100))
	return max(0, min(100, total))
}

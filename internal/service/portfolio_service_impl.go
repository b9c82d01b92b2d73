package service

import (
	"context"

	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/repository"
	"github.com/alexanderramin/spic/internal/risk"
	"github.com/shopspring/decimal"
)

// trendWindow is how many snapshots a trend reads.
const trendWindow = 5

type portfolioService struct {
	operations repository.OperationRepo
	phases     repository.PhaseRepo
	alerts     repository.AlertRepo
	snapshots  repository.RiskSnapshotRepo
	bands      risk.Bands
	clock      risk.Clock
}

func NewPortfolioService(
	operations repository.OperationRepo,
	phases repository.PhaseRepo,
	alerts repository.AlertRepo,
	snapshots repository.RiskSnapshotRepo,
	bands risk.Bands,
	clock risk.Clock,
) PortfolioService {
	if clock == nil {
		clock = risk.SystemClock{}
	}
	return &portfolioService{
		operations: operations,
		phases:     phases,
		alerts:     alerts,
		snapshots:  snapshots,
		bands:      bands,
		clock:      clock,
	}
}

func (s *portfolioService) TopRisks(ctx context.Context, limit int) ([]repository.RiskRow, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.operations.TopRisks(ctx, limit)
}

func (s *portfolioService) Dashboard(ctx context.Context) (*Dashboard, error) {
	ops, err := s.operations.List(ctx, repository.OperationFilter{})
	if err != nil {
		return nil, err
	}
	alerts, err := s.alerts.CountActiveBySeverity(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Operations:    len(ops),
		ByStatus:      make(map[domain.OperationStatus]int, len(domain.OperationStatuses)),
		ByType:        make(map[domain.OperationType]int, len(domain.OperationTypes)),
		ByRiskLevel:   make(map[domain.RiskLevel]int, len(domain.RiskLevels)),
		AlertsByLevel: alerts,
		BudgetInitial: decimal.Zero,
		BudgetCurrent: decimal.Zero,
	}
	for _, st := range domain.OperationStatuses {
		d.ByStatus[st] = 0
	}
	for _, lv := range domain.RiskLevels {
		d.ByRiskLevel[lv] = 0
	}

	var scoreSum int
	for _, op := range ops {
		d.ByStatus[op.Status]++
		d.ByType[op.Type]++
		d.ByRiskLevel[s.bands.LevelFor(op.RiskScore)]++
		d.BudgetInitial = d.BudgetInitial.Add(op.Initial())
		d.BudgetCurrent = d.BudgetCurrent.Add(op.EffectiveBudget())
		scoreSum += op.RiskScore
	}
	if len(ops) > 0 {
		d.AverageRisk = float64(scoreSum) / float64(len(ops))
	}
	return d, nil
}

// Trend reads the operation's recent risk history.
func (s *portfolioService) Trend(ctx context.Context, operationID string) (risk.Trend, error) {
	if _, err := s.operations.GetByID(ctx, operationID); err != nil {
		return risk.Trend{}, err
	}
	snaps, err := s.snapshots.ListByOperation(ctx, operationID, trendWindow)
	if err != nil {
		return risk.Trend{}, err
	}
	history := make([]int, len(snaps))
	for i, snap := range snaps {
		history[i] = snap.Score
	}
	return risk.ComputeTrend(history), nil
}

func (s *portfolioService) Progress(ctx context.Context, operationID string) (risk.ProgressSummary, error) {
	if _, err := s.operations.GetByID(ctx, operationID); err != nil {
		return risk.ProgressSummary{}, err
	}
	phases, err := s.phases.ListByOperation(ctx, operationID)
	if err != nil {
		return risk.ProgressSummary{}, err
	}
	return risk.GlobalProgress(phases, s.clock), nil
}

package service

import (
	"context"
	"time"

	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/repository"
	"github.com/alexanderramin/spic/internal/risk"
	"github.com/shopspring/decimal"
)

// BatchResult reports a per-operation loop. A failing operation never aborts the batch.
type BatchResult struct {
	Count    int
	Failures []string
}

// GenerateResult lists the alerts a generation pass created.
type GenerateResult struct {
	Created  []domain.AlertRef
	Failures []string
}

// RiskEngine scores operations, derives their status and raises rule alerts.
type RiskEngine interface {
	// ComputeRiskScore scores the given state without touching the store.
	ComputeRiskScore(op *domain.Operation, phases []*domain.Phase, alerts []*domain.Alert, clock risk.Clock) *risk.Analysis
	// Analyze loads an operation and scores it without persisting anything.
	Analyze(ctx context.Context, operationID string) (*risk.Analysis, error)
	PersistRiskScore(ctx context.Context, operationID string) (int, error)
	DeriveAndSaveStatus(ctx context.Context, operationID string) (domain.OperationStatus, error)
	// GenerateAlerts evaluates one operation, or every operation when operationID is empty.
	GenerateAlerts(ctx context.Context, operationID string) (*GenerateResult, error)
	RecalculateAllScores(ctx context.Context) (*BatchResult, error)
	UpdateAllStatuses(ctx context.Context) (*BatchResult, error)
}

// Analyzer is the read-only scoring entry point, optionally memoized.
type Analyzer interface {
	Analyze(ctx context.Context, operationID string) (*risk.Analysis, error)
}

// CreateOperationRequest carries the user-supplied fields of a new operation.
type CreateOperationRequest struct {
	Name           string
	Type           domain.OperationType
	Address        string
	Owner          string
	BudgetInitial  *string
	StartDate      *time.Time
	PlannedEndDate *time.Time
}

type OperationService interface {
	Create(ctx context.Context, req CreateOperationRequest) (*domain.Operation, error)
	GetByID(ctx context.Context, id string) (*domain.Operation, error)
	List(ctx context.Context, f repository.OperationFilter) ([]*domain.Operation, error)
	Delete(ctx context.Context, id string) error
	// SetStatus is the only path to on_hold and cancelled.
	SetStatus(ctx context.Context, id string, status domain.OperationStatus) error
}

// PhaseChange is the outcome of a phase write and the recomputation it triggered.
type PhaseChange struct {
	Phase     *domain.Phase
	Status    domain.OperationStatus
	RiskScore int
	// Rescored is false when recompute-on-write is disabled.
	Rescored bool
}

type PhaseService interface {
	ListByOperation(ctx context.Context, operationID string) ([]*domain.Phase, error)
	Update(ctx context.Context, phaseID string, u domain.PhaseUpdate) (*PhaseChange, error)
	Plan(ctx context.Context, phaseID string, start time.Time, end *time.Time) (*domain.Phase, error)
}

// REMView is a REM entry classified against the configured budget-share thresholds.
type REMView struct {
	Entry *domain.REMEntry
	Level domain.Severity
}

type BudgetService interface {
	Record(ctx context.Context, e *domain.BudgetEntry) (*domain.Operation, error)
	History(ctx context.Context, operationID string) ([]*domain.BudgetEntry, error)
	AddREM(ctx context.Context, e *domain.REMEntry) (*REMView, error)
	ListREM(ctx context.Context, operationID string) ([]REMView, error)
}

type AlertService interface {
	ListActive(ctx context.Context, operationID string) ([]*domain.Alert, error)
	Raise(ctx context.Context, a *domain.Alert) error
	Resolve(ctx context.Context, alertID, resolvedBy string) error
	ResolveBySeverity(ctx context.Context, sev domain.Severity, resolvedBy string) (int, error)
	CleanupResolved(ctx context.Context, olderThanDays int) (int64, error)
}

// Dashboard aggregates the portfolio.
type Dashboard struct {
	Operations    int
	ByStatus      map[domain.OperationStatus]int
	ByType        map[domain.OperationType]int
	ByRiskLevel   map[domain.RiskLevel]int
	AlertsByLevel map[domain.Severity]int
	AverageRisk   float64
	BudgetInitial decimal.Decimal
	BudgetCurrent decimal.Decimal
}

type PortfolioService interface {
	TopRisks(ctx context.Context, limit int) ([]repository.RiskRow, error)
	Dashboard(ctx context.Context) (*Dashboard, error)
	Trend(ctx context.Context, operationID string) (risk.Trend, error)
	Progress(ctx context.Context, operationID string) (risk.ProgressSummary, error)
}

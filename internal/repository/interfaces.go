package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/spic/internal/domain"
)

// OperationFilter narrows List. Zero values match everything.
type OperationFilter struct {
	Status domain.OperationStatus
	Type   domain.OperationType
}

// RiskRow is an operation ranked by risk with its active alert count.
type RiskRow struct {
	Operation    *domain.Operation
	ActiveAlerts int
}

type OperationRepo interface {
	Create(ctx context.Context, o *domain.Operation) error
	GetByID(ctx context.Context, id string) (*domain.Operation, error)
	List(ctx context.Context, f OperationFilter) ([]*domain.Operation, error)
	ListIDs(ctx context.Context) ([]string, error)
	Update(ctx context.Context, o *domain.Operation) error
	UpdateRiskScore(ctx context.Context, id string, score int, at time.Time) error
	UpdateStatus(ctx context.Context, id string, status domain.OperationStatus, at time.Time) error
	Delete(ctx context.Context, id string) error
	TopRisks(ctx context.Context, limit int) ([]RiskRow, error)
}

type PhaseRepo interface {
	Create(ctx context.Context, p *domain.Phase) error
	GetByID(ctx context.Context, id string) (*domain.Phase, error)
	ListByOperation(ctx context.Context, operationID string) ([]*domain.Phase, error)
	Update(ctx context.Context, p *domain.Phase) error
}

type AlertRepo interface {
	Create(ctx context.Context, a *domain.Alert) error
	GetByID(ctx context.Context, id string) (*domain.Alert, error)
	// ListActive lists active alerts of one operation, or of all when operationID is empty.
	ListActive(ctx context.Context, operationID string) ([]*domain.Alert, error)
	ListActiveBySeverity(ctx context.Context, sev domain.Severity) ([]*domain.Alert, error)
	// FindActive returns the active alert of the given type, or nil when none exists.
	FindActive(ctx context.Context, operationID string, t domain.AlertType) (*domain.Alert, error)
	Resolve(ctx context.Context, id, resolvedBy string, at time.Time) error
	CountActiveBySeverity(ctx context.Context) (map[domain.Severity]int, error)
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type BudgetRepo interface {
	Create(ctx context.Context, b *domain.BudgetEntry) error
	ListByOperation(ctx context.Context, operationID string) ([]*domain.BudgetEntry, error)
}

type REMRepo interface {
	Create(ctx context.Context, r *domain.REMEntry) error
	ListByOperation(ctx context.Context, operationID string) ([]*domain.REMEntry, error)
}

type RiskSnapshotRepo interface {
	Create(ctx context.Context, s *domain.RiskSnapshot) error
	// ListByOperation returns up to limit most recent snapshots, oldest first.
	ListByOperation(ctx context.Context, operationID string, limit int) ([]*domain.RiskSnapshot, error)
}

type PhaseTransitionRepo interface {
	Create(ctx context.Context, t *domain.PhaseTransition) error
	// ListByOperation returns an operation's transitions, oldest first.
	ListByOperation(ctx context.Context, operationID string) ([]*domain.PhaseTransition, error)
}

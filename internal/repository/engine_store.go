package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
)

// EngineStore is everything the risk engine reads and writes for a single
// operation. Implementations are scoped to one transaction.
type EngineStore interface {
	LoadOperation(ctx context.Context, id string) (*domain.Operation, error)
	LoadPhases(ctx context.Context, operationID string) ([]*domain.Phase, error)
	LoadActiveAlerts(ctx context.Context, operationID string) ([]*domain.Alert, error)
	SaveRiskScore(ctx context.Context, s *domain.RiskSnapshot) error
	SaveStatus(ctx context.Context, operationID string, status domain.OperationStatus, at time.Time) error
	FindActiveAlert(ctx context.Context, operationID string, t domain.AlertType) (*domain.Alert, error)
	InsertAlert(ctx context.Context, a *domain.Alert) error
	ResolveAlert(ctx context.Context, alertID, resolvedBy string, at time.Time) error
}

// SQLiteEngineStore implements EngineStore over the SQLite repositories.
type SQLiteEngineStore struct {
	operations *SQLiteOperationRepo
	phases     *SQLitePhaseRepo
	alerts     *SQLiteAlertRepo
	snapshots  *SQLiteRiskSnapshotRepo
}

func NewSQLiteEngineStore(conn db.DBTX) *SQLiteEngineStore {
	return &SQLiteEngineStore{
		operations: NewSQLiteOperationRepo(conn),
		phases:     NewSQLitePhaseRepo(conn),
		alerts:     NewSQLiteAlertRepo(conn),
		snapshots:  NewSQLiteRiskSnapshotRepo(conn),
	}
}

func (s *SQLiteEngineStore) LoadOperation(ctx context.Context, id string) (*domain.Operation, error) {
	return s.operations.GetByID(ctx, id)
}

func (s *SQLiteEngineStore) LoadPhases(ctx context.Context, operationID string) ([]*domain.Phase, error) {
	return s.phases.ListByOperation(ctx, operationID)
}

func (s *SQLiteEngineStore) LoadActiveAlerts(ctx context.Context, operationID string) ([]*domain.Alert, error) {
	return s.alerts.ListActive(ctx, operationID)
}

// SaveRiskScore writes the score onto the operation and appends it to the
// operation's risk history.
func (s *SQLiteEngineStore) SaveRiskScore(ctx context.Context, snap *domain.RiskSnapshot) error {
	if err := s.operations.UpdateRiskScore(ctx, snap.OperationID, snap.Score, snap.ComputedAt); err != nil {
		return err
	}
	return s.snapshots.Create(ctx, snap)
}

func (s *SQLiteEngineStore) SaveStatus(ctx context.Context, operationID string, status domain.OperationStatus, at time.Time) error {
	return s.operations.UpdateStatus(ctx, operationID, status, at)
}

func (s *SQLiteEngineStore) FindActiveAlert(ctx context.Context, operationID string, t domain.AlertType) (*domain.Alert, error) {
	return s.alerts.FindActive(ctx, operationID, t)
}

func (s *SQLiteEngineStore) InsertAlert(ctx context.Context, a *domain.Alert) error {
	return s.alerts.Create(ctx, a)
}

func (s *SQLiteEngineStore) ResolveAlert(ctx context.Context, alertID, resolvedBy string, at time.Time) error {
	return s.alerts.Resolve(ctx, alertID, resolvedBy, at)
}

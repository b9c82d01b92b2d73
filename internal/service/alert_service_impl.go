package service

import (
	"context"
	"time"

	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/repository"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultCleanupDays is how long resolved alerts are kept by default.
const DefaultCleanupDays = 90

type alertService struct {
	alerts   repository.AlertRepo
	engine   *Engine
	observer UseCaseObserver
}

func NewAlertService(alerts repository.AlertRepo, engine *Engine, observers ...UseCaseObserver) AlertService {
	return &alertService{alerts: alerts, engine: engine, observer: useCaseObserverOrNoop(observers)}
}

func (s *alertService) ListActive(ctx context.Context, operationID string) ([]*domain.Alert, error) {
	return s.alerts.ListActive(ctx, operationID)
}

// Raise records a manual alert against an operation.
func (s *alertService) Raise(ctx context.Context, a *domain.Alert) (err error) {
	done := trackUseCase(ctx, s.observer, "raise-alert",
		map[string]any{"operation_id": a.OperationID, "type": string(a.Type)})
	defer func() { done(err) }()

	if err := a.Validate(); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.Source = domain.SourceManual
	a.Active = true
	a.CreatedAt = s.engine.cfg.Clock.Now()
	a.ResolvedAt = nil
	a.ResolvedBy = ""

	_, err = s.engine.writeThrough(ctx, a.OperationID, func(ctx context.Context, tx db.DBTX) error {
		if _, err := repository.NewSQLiteOperationRepo(tx).GetByID(ctx, a.OperationID); err != nil {
			return err
		}
		return repository.NewSQLiteEngineStore(tx).InsertAlert(ctx, a)
	})
	return err
}

// Resolve deactivates an alert. Resolving an already resolved alert is an InvalidState error.
func (s *alertService) Resolve(ctx context.Context, alertID, resolvedBy string) (err error) {
	done := trackUseCase(ctx, s.observer, "resolve-alert", map[string]any{"alert_id": alertID})
	defer func() { done(err) }()

	current, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return err
	}

	_, err = s.engine.writeThrough(ctx, current.OperationID, func(ctx context.Context, tx db.DBTX) error {
		a, err := repository.NewSQLiteAlertRepo(tx).GetByID(ctx, alertID)
		if err != nil {
			return err
		}
		now := s.engine.cfg.Clock.Now()
		if err := a.Resolve(resolvedBy, now); err != nil {
			return err
		}
		return repository.NewSQLiteEngineStore(tx).ResolveAlert(ctx, alertID, resolvedBy, now)
	})
	return err
}

// ResolveBySeverity resolves every active alert of the given severity and
// returns how many were resolved.
func (s *alertService) ResolveBySeverity(ctx context.Context, sev domain.Severity, resolvedBy string) (n int, err error) {
	done := trackUseCase(ctx, s.observer, "resolve-alerts-by-severity", map[string]any{"severity": string(sev)})
	defer func() { done(err) }()

	if !sev.Valid() {
		return 0, eris.Wrapf(domain.ErrInvalidInput, "severity %q is not recognised", sev)
	}
	active, err := s.alerts.ListActiveBySeverity(ctx, sev)
	if err != nil {
		return 0, err
	}
	for _, a := range active {
		if err := s.Resolve(ctx, a.ID, resolvedBy); err != nil {
			return n, eris.Wrapf(err, "resolving alert %s", a.ID)
		}
		n++
	}
	return n, nil
}

// CleanupResolved deletes alerts resolved more than olderThanDays days ago.
func (s *alertService) CleanupResolved(ctx context.Context, olderThanDays int) (n int64, err error) {
	done := trackUseCase(ctx, s.observer, "cleanup-resolved-alerts", map[string]any{"days": olderThanDays})
	defer func() { done(err) }()

	if olderThanDays < 0 {
		return 0, eris.Wrapf(domain.ErrInvalidInput, "retention of %d days", olderThanDays)
	}
	cutoff := s.engine.cfg.Clock.Now().Add(-time.Duration(olderThanDays) * 24 * time.Hour)
	n, err = s.alerts.DeleteResolvedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.engine.logger.Info("resolved alerts cleaned up", zap.Int64("deleted", n), zap.Int("days", olderThanDays))
	return n, nil
}

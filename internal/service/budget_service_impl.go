package service

import (
	"context"

	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/repository"
	"github.com/google/uuid"
)

// REMThresholds classify a REM entry by its share of the initial budget.
type REMThresholds struct {
	AlertPct    float64
	CriticalPct float64
}

// Classify returns critical above CriticalPct, high above AlertPct, low otherwise.
func (t REMThresholds) Classify(e *domain.REMEntry) domain.Severity {
	pct := e.BudgetPct.InexactFloat64()
	switch {
	case pct > t.CriticalPct:
		return domain.SeverityCritical
	case pct > t.AlertPct:
		return domain.SeverityHigh
	}
	return domain.SeverityLow
}

type budgetService struct {
	budgets  repository.BudgetRepo
	rems     repository.REMRepo
	uow      db.UnitOfWork
	engine   *Engine
	rem      REMThresholds
	observer UseCaseObserver
}

func NewBudgetService(
	budgets repository.BudgetRepo,
	rems repository.REMRepo,
	uow db.UnitOfWork,
	engine *Engine,
	rem REMThresholds,
	observers ...UseCaseObserver,
) BudgetService {
	return &budgetService{
		budgets:  budgets,
		rems:     rems,
		uow:      uow,
		engine:   engine,
		rem:      rem,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Record appends e to the budget history and sets the matching budget on the
// operation. The operation is recomputed in the same transaction.
func (s *budgetService) Record(ctx context.Context, e *domain.BudgetEntry) (op *domain.Operation, err error) {
	done := trackUseCase(ctx, s.observer, "record-budget",
		map[string]any{"operation_id": e.OperationID, "kind": string(e.Kind)})
	defer func() { done(err) }()

	if err := e.Validate(); err != nil {
		return nil, err
	}
	now := s.engine.cfg.Clock.Now()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Date.IsZero() {
		e.Date = domain.DateOnly(now)
	}
	e.CreatedAt = now

	_, err = s.engine.writeThrough(ctx, e.OperationID, func(ctx context.Context, tx db.DBTX) error {
		ops := repository.NewSQLiteOperationRepo(tx)
		o, err := ops.GetByID(ctx, e.OperationID)
		if err != nil {
			return err
		}
		if err := o.ApplyBudget(e.Kind, e.Amount); err != nil {
			return err
		}
		o.UpdatedAt = now
		if err := ops.Update(ctx, o); err != nil {
			return err
		}
		return repository.NewSQLiteBudgetRepo(tx).Create(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return s.engine.operations.GetByID(ctx, e.OperationID)
}

func (s *budgetService) History(ctx context.Context, operationID string) ([]*domain.BudgetEntry, error) {
	return s.budgets.ListByOperation(ctx, operationID)
}

// AddREM stores e with its share of the operation's initial budget.
func (s *budgetService) AddREM(ctx context.Context, e *domain.REMEntry) (view *REMView, err error) {
	done := trackUseCase(ctx, s.observer, "add-rem", map[string]any{"operation_id": e.OperationID})
	defer func() { done(err) }()

	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = s.engine.cfg.Clock.Now()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		op, err := repository.NewSQLiteOperationRepo(tx).GetByID(ctx, e.OperationID)
		if err != nil {
			return err
		}
		e.ComputeBudgetPct(op.Initial())
		return repository.NewSQLiteREMRepo(tx).Create(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return &REMView{Entry: e, Level: s.rem.Classify(e)}, nil
}

func (s *budgetService) ListREM(ctx context.Context, operationID string) ([]REMView, error) {
	entries, err := s.rems.ListByOperation(ctx, operationID)
	if err != nil {
		return nil, err
	}
	views := make([]REMView, len(entries))
	for i, e := range entries {
		views[i] = REMView{Entry: e, Level: s.rem.Classify(e)}
	}
	return views, nil
}

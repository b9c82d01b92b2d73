package service

import (
	"context"
	"strings"

	"github.com/alexanderramin/spic/internal/catalog"
	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/repository"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

type operationService struct {
	operations repository.OperationRepo
	catalog    *catalog.Catalog
	uow        db.UnitOfWork
	engine     *Engine
	observer   UseCaseObserver
}

func NewOperationService(
	operations repository.OperationRepo,
	cat *catalog.Catalog,
	uow db.UnitOfWork,
	engine *Engine,
	observers ...UseCaseObserver,
) OperationService {
	return &operationService{
		operations: operations,
		catalog:    cat,
		uow:        uow,
		engine:     engine,
		observer:   useCaseObserverOrNoop(observers),
	}
}

// Create stores a new operation in the preparing state together with its
// catalog phases, in one transaction.
func (s *operationService) Create(ctx context.Context, req CreateOperationRequest) (op *domain.Operation, err error) {
	fields := map[string]any{"type": string(req.Type)}
	done := trackUseCase(ctx, s.observer, "create-operation", fields)
	defer func() { done(err) }()

	now := s.engine.cfg.Clock.Now()
	op = &domain.Operation{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(req.Name),
		Type:           req.Type,
		Address:        req.Address,
		Owner:          req.Owner,
		StartDate:      req.StartDate,
		PlannedEndDate: req.PlannedEndDate,
		Status:         domain.StatusPreparing,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.BudgetInitial != nil {
		amount, err := ParseAmount(*req.BudgetInitial)
		if err != nil {
			return nil, err
		}
		op.BudgetInitial = &amount
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}

	templates, err := s.catalog.For(op.Type)
	if err != nil {
		return nil, err
	}
	fields["phase_count"] = len(templates)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteOperationRepo(tx).Create(ctx, op); err != nil {
			return err
		}
		phases := repository.NewSQLitePhaseRepo(tx)
		for _, tpl := range templates {
			p := &domain.Phase{
				ID:          uuid.New().String(),
				OperationID: op.ID,
				CatalogID:   tpl.ID,
				Name:        tpl.Name,
				Order:       tpl.Order,
				IsPrimary:   tpl.Primary,
				PlannedDays: tpl.MaxDays,
				Status:      domain.PhaseNotStarted,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := phases.Create(ctx, p); err != nil {
				return eris.Wrapf(err, "creating phase %d", tpl.Order)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return op, nil
}

func (s *operationService) GetByID(ctx context.Context, id string) (*domain.Operation, error) {
	return s.operations.GetByID(ctx, id)
}

func (s *operationService) List(ctx context.Context, f repository.OperationFilter) ([]*domain.Operation, error) {
	return s.operations.List(ctx, f)
}

func (s *operationService) Delete(ctx context.Context, id string) (err error) {
	done := trackUseCase(ctx, s.observer, "delete-operation", map[string]any{"operation_id": id})
	defer func() { done(err) }()

	unlock := s.engine.locks.lock(id)
	defer unlock()

	if err = s.operations.Delete(ctx, id); err != nil {
		return err
	}
	s.engine.changed(id)
	return nil
}

func (s *operationService) SetStatus(ctx context.Context, id string, st domain.OperationStatus) (err error) {
	done := trackUseCase(ctx, s.observer, "set-operation-status",
		map[string]any{"operation_id": id, "status": string(st)})
	defer func() { done(err) }()

	if !st.Valid() {
		return eris.Wrapf(domain.ErrInvalidInput, "operation status %q is not recognised", st)
	}

	unlock := s.engine.locks.lock(id)
	defer unlock()

	if err = s.operations.UpdateStatus(ctx, id, st, s.engine.cfg.Clock.Now()); err != nil {
		return err
	}
	s.engine.changed(id)
	return nil
}

package service

import (
	"context"
	"time"

	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/repository"
	"github.com/google/uuid"
)

type phaseService struct {
	phases   repository.PhaseRepo
	engine   *Engine
	observer UseCaseObserver
}

func NewPhaseService(phases repository.PhaseRepo, engine *Engine, observers ...UseCaseObserver) PhaseService {
	return &phaseService{phases: phases, engine: engine, observer: useCaseObserverOrNoop(observers)}
}

func (s *phaseService) ListByOperation(ctx context.Context, operationID string) ([]*domain.Phase, error) {
	return s.phases.ListByOperation(ctx, operationID)
}

// Update applies u to a phase, then re-derives the operation's status and,
// under recompute-on-write, its risk score in the same transaction. A status
// change is journaled as a phase transition.
func (s *phaseService) Update(ctx context.Context, phaseID string, u domain.PhaseUpdate) (change *PhaseChange, err error) {
	fields := map[string]any{"phase_id": phaseID}
	done := trackUseCase(ctx, s.observer, "update-phase", fields)
	defer func() { done(err) }()

	current, err := s.phases.GetByID(ctx, phaseID)
	if err != nil {
		return nil, err
	}
	fields["operation_id"] = current.OperationID

	var updated *domain.Phase
	res, err := s.engine.writeThrough(ctx, current.OperationID, func(ctx context.Context, tx db.DBTX) error {
		phases := repository.NewSQLitePhaseRepo(tx)
		p, err := phases.GetByID(ctx, phaseID)
		if err != nil {
			return err
		}
		now := s.engine.cfg.Clock.Now()
		from := p.Status
		if err := p.Apply(u, now); err != nil {
			return err
		}
		if err := phases.Update(ctx, p); err != nil {
			return err
		}
		if p.Status != from {
			err := repository.NewSQLitePhaseTransitionRepo(tx).Create(ctx, &domain.PhaseTransition{
				ID:          uuid.New().String(),
				OperationID: p.OperationID,
				PhaseID:     p.ID,
				From:        from,
				To:          p.Status,
				ChangedAt:   now,
			})
			if err != nil {
				return err
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &PhaseChange{Phase: updated, Status: res.status, RiskScore: res.score, Rescored: res.rescored}, nil
}

// Plan sets a phase's planned window. A nil end spans the phase's planned duration.
func (s *phaseService) Plan(ctx context.Context, phaseID string, start time.Time, end *time.Time) (planned *domain.Phase, err error) {
	done := trackUseCase(ctx, s.observer, "plan-phase", map[string]any{"phase_id": phaseID})
	defer func() { done(err) }()

	current, err := s.phases.GetByID(ctx, phaseID)
	if err != nil {
		return nil, err
	}

	_, err = s.engine.writeThrough(ctx, current.OperationID, func(ctx context.Context, tx db.DBTX) error {
		phases := repository.NewSQLitePhaseRepo(tx)
		p, err := phases.GetByID(ctx, phaseID)
		if err != nil {
			return err
		}
		if err := p.Plan(start, end, s.engine.cfg.Clock.Now()); err != nil {
			return err
		}
		planned = p
		return phases.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return planned, nil
}

package service

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/alexanderramin/spic/internal/alerting"
	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/repository"
	"github.com/alexanderramin/spic/internal/risk"
	"github.com/alexanderramin/spic/internal/status"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EngineConfig binds the engine to its tables and policies.
type EngineConfig struct {
	Scorer           *risk.Scorer
	Alerts           alerting.Thresholds
	ProtectManual    bool
	RecomputeOnWrite bool
	BatchConcurrency int
	Clock            risk.Clock
	// OnChange is called after a commit that changed an operation's scoring inputs or outputs.
	OnChange func(operationID string)
}

var _ RiskEngine = (*Engine)(nil)

// Engine implements RiskEngine. Write services share it so their
// recomputation runs under the same per-operation locks.
type Engine struct {
	operations repository.OperationRepo
	uow        db.UnitOfWork
	cfg        EngineConfig
	locks      *opLocks
	logger     *zap.Logger
	observer   UseCaseObserver
}

func NewRiskEngine(
	operations repository.OperationRepo,
	uow db.UnitOfWork,
	cfg EngineConfig,
	logger *zap.Logger,
	observers ...UseCaseObserver,
) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = risk.SystemClock{}
	}
	if cfg.BatchConcurrency < 1 {
		cfg.BatchConcurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		operations: operations,
		uow:        uow,
		cfg:        cfg,
		locks:      newOpLocks(),
		logger:     logger,
		observer:   useCaseObserverOrNoop(observers),
	}
}

func (e *Engine) ComputeRiskScore(op *domain.Operation, phases []*domain.Phase, alerts []*domain.Alert, clock risk.Clock) *risk.Analysis {
	return e.cfg.Scorer.Compute(op, phases, alerts, clock)
}

func (e *Engine) Analyze(ctx context.Context, operationID string) (analysis *risk.Analysis, err error) {
	done := e.track(ctx, "analyze", operationID)
	defer func() { done(err) }()

	err = e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		analysis, err = e.analyzeIn(ctx, repository.NewSQLiteEngineStore(tx), operationID)
		return err
	})
	return analysis, err
}

func (e *Engine) PersistRiskScore(ctx context.Context, operationID string) (score int, err error) {
	done := e.track(ctx, "persist-risk-score", operationID)
	defer func() { done(err) }()

	unlock := e.locks.lock(operationID)
	defer unlock()

	err = e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		a, err := e.rescoreIn(ctx, repository.NewSQLiteEngineStore(tx), operationID)
		if err != nil {
			return err
		}
		score = a.ScoreTotal
		return nil
	})
	if err != nil {
		return 0, err
	}
	e.changed(operationID)
	return score, nil
}

func (e *Engine) DeriveAndSaveStatus(ctx context.Context, operationID string) (next domain.OperationStatus, err error) {
	done := e.track(ctx, "derive-status", operationID)
	defer func() { done(err) }()

	unlock := e.locks.lock(operationID)
	defer unlock()

	var d status.Decision
	err = e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		d, err = e.deriveIn(ctx, repository.NewSQLiteEngineStore(tx), operationID)
		return err
	})
	if err != nil {
		return "", err
	}
	if d.Changed() {
		e.changed(operationID)
	}
	return d.Next, nil
}

func (e *Engine) GenerateAlerts(ctx context.Context, operationID string) (res *GenerateResult, err error) {
	done := e.track(ctx, "generate-alerts", operationID)
	defer func() { done(err) }()

	if operationID != "" {
		created, err := e.generateOne(ctx, operationID)
		if err != nil {
			return nil, err
		}
		return &GenerateResult{Created: created}, nil
	}

	var mu sync.Mutex
	res = &GenerateResult{}
	batch, err := e.forEachOperation(ctx, "generate-alerts", func(ctx context.Context, id string) error {
		created, err := e.generateOne(ctx, id)
		if err != nil {
			return err
		}
		mu.Lock()
		res.Created = append(res.Created, created...)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Failures = batch.Failures
	slices.SortStableFunc(res.Created, func(a, b domain.AlertRef) int {
		return strings.Compare(a.OperationID, b.OperationID)
	})
	return res, nil
}

func (e *Engine) RecalculateAllScores(ctx context.Context) (res *BatchResult, err error) {
	done := e.track(ctx, "recalculate-all-scores", "")
	defer func() { done(err) }()

	return e.forEachOperation(ctx, "recalculate-all-scores", func(ctx context.Context, id string) error {
		_, err := e.PersistRiskScore(ctx, id)
		return err
	})
}

func (e *Engine) UpdateAllStatuses(ctx context.Context) (res *BatchResult, err error) {
	done := e.track(ctx, "update-all-statuses", "")
	defer func() { done(err) }()

	return e.forEachOperation(ctx, "update-all-statuses", func(ctx context.Context, id string) error {
		_, err := e.DeriveAndSaveStatus(ctx, id)
		return err
	})
}

func (e *Engine) generateOne(ctx context.Context, operationID string) ([]domain.AlertRef, error) {
	unlock := e.locks.lock(operationID)
	defer unlock()

	var created []domain.AlertRef
	err := e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		created, err = e.generateIn(ctx, repository.NewSQLiteEngineStore(tx), operationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(created) > 0 {
		e.changed(operationID)
	}
	return created, nil
}

// forEachOperation runs fn for every operation with bounded parallelism.
// Failures are logged and collected; only listing the operations can fail the batch.
func (e *Engine) forEachOperation(ctx context.Context, name string, fn func(ctx context.Context, id string) error) (*BatchResult, error) {
	ids, err := e.operations.ListIDs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, name)
	}

	var (
		mu  sync.Mutex
		res = &BatchResult{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.BatchConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			err := fn(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.logger.Warn("batch item failed",
					zap.String("batch", name),
					zap.String("operation_id", id),
					zap.Error(err))
				res.Failures = append(res.Failures, id)
				return nil
			}
			res.Count++
			return nil
		})
	}
	_ = g.Wait()

	slices.Sort(res.Failures)
	e.logger.Info("batch finished",
		zap.String("batch", name),
		zap.Int("count", res.Count),
		zap.Int("failures", len(res.Failures)))
	return res, nil
}

// analyzeIn loads an operation through store and scores it.
func (e *Engine) analyzeIn(ctx context.Context, store repository.EngineStore, operationID string) (*risk.Analysis, error) {
	op, err := store.LoadOperation(ctx, operationID)
	if err != nil {
		return nil, err
	}
	phases, err := store.LoadPhases(ctx, operationID)
	if err != nil {
		return nil, err
	}
	alerts, err := store.LoadActiveAlerts(ctx, operationID)
	if err != nil {
		return nil, err
	}
	return e.cfg.Scorer.Compute(op, phases, alerts, e.cfg.Clock), nil
}

// rescoreIn scores an operation and writes the score and a history snapshot.
func (e *Engine) rescoreIn(ctx context.Context, store repository.EngineStore, operationID string) (*risk.Analysis, error) {
	a, err := e.analyzeIn(ctx, store, operationID)
	if err != nil {
		return nil, err
	}
	snap := &domain.RiskSnapshot{
		ID:          uuid.New().String(),
		OperationID: operationID,
		Score:       a.ScoreTotal,
		Level:       a.Level,
		ComputedAt:  a.ComputedAt,
	}
	if err := store.SaveRiskScore(ctx, snap); err != nil {
		return nil, err
	}
	return a, nil
}

// deriveIn decides the operation's status from its phases and saves it when it changed.
func (e *Engine) deriveIn(ctx context.Context, store repository.EngineStore, operationID string) (status.Decision, error) {
	op, err := store.LoadOperation(ctx, operationID)
	if err != nil {
		return status.Decision{}, err
	}
	phases, err := store.LoadPhases(ctx, operationID)
	if err != nil {
		return status.Decision{}, err
	}

	counts := domain.CountPhases(phases, e.cfg.Clock.Now())
	d := status.Decide(op.Status, counts, e.cfg.ProtectManual)
	for _, msg := range d.Anomalies {
		e.logger.Warn("inconsistent phase aggregate",
			zap.String("operation_id", operationID),
			zap.String("anomaly", msg))
	}
	if d.Protected && d.Derived != d.Current {
		e.logger.Info("manual status kept",
			zap.String("operation_id", operationID),
			zap.String("status", string(d.Current)),
			zap.String("derived", string(d.Derived)))
	}
	if !d.Changed() {
		return d, nil
	}
	if err := store.SaveStatus(ctx, operationID, d.Next, e.cfg.Clock.Now()); err != nil {
		return status.Decision{}, err
	}
	return d, nil
}

// generateIn creates the rule alerts whose (operation, type) slot is free.
// Alerts whose condition cleared are left active.
func (e *Engine) generateIn(ctx context.Context, store repository.EngineStore, operationID string) ([]domain.AlertRef, error) {
	op, err := store.LoadOperation(ctx, operationID)
	if err != nil {
		return nil, err
	}
	phases, err := store.LoadPhases(ctx, operationID)
	if err != nil {
		return nil, err
	}

	now := e.cfg.Clock.Now()
	snap := alerting.SnapshotOf(op, domain.CountPhases(phases, now))

	var created []domain.AlertRef
	for _, c := range alerting.Evaluate(snap, e.cfg.Alerts) {
		existing, err := store.FindActiveAlert(ctx, operationID, c.Type)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}
		a := &domain.Alert{
			ID:          uuid.New().String(),
			OperationID: operationID,
			Type:        c.Type,
			Severity:    c.Severity,
			Title:       c.Title,
			Description: c.Description,
			Params:      c.Params,
			Source:      domain.SourceRule,
			Active:      true,
			CreatedAt:   now,
		}
		if err := store.InsertAlert(ctx, a); err != nil {
			return nil, err
		}
		e.logger.Info("alert raised",
			zap.String("operation_id", operationID),
			zap.String("key", alerting.DedupKey(operationID, c.Type)),
			zap.String("severity", string(c.Severity)))
		created = append(created, a.Ref())
	}
	return created, nil
}

// refreshIn runs the recompute-on-write policy inside the caller's transaction.
func (e *Engine) refreshIn(ctx context.Context, store repository.EngineStore, operationID string) (domain.OperationStatus, int, bool, error) {
	d, err := e.deriveIn(ctx, store, operationID)
	if err != nil {
		return "", 0, false, err
	}
	if !e.cfg.RecomputeOnWrite {
		op, err := store.LoadOperation(ctx, operationID)
		if err != nil {
			return "", 0, false, err
		}
		return d.Next, op.RiskScore, false, nil
	}
	a, err := e.rescoreIn(ctx, store, operationID)
	if err != nil {
		return "", 0, false, err
	}
	return d.Next, a.ScoreTotal, true, nil
}

func (e *Engine) changed(operationID string) {
	if e.cfg.OnChange != nil {
		e.cfg.OnChange(operationID)
	}
}

// track starts a use-case event and returns the func that reports it.
func (e *Engine) track(ctx context.Context, name, operationID string) func(error) {
	return trackUseCase(ctx, e.observer, name, map[string]any{"operation_id": operationID})
}

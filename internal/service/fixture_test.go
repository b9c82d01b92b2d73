package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/alexanderramin/spic/internal/alerting"
	"github.com/alexanderramin/spic/internal/catalog"
	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/repository"
	"github.com/alexanderramin/spic/internal/risk"
	"github.com/alexanderramin/spic/internal/testutil"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db        *sql.DB
	uow       db.UnitOfWork
	ops       *repository.SQLiteOperationRepo
	phases    *repository.SQLitePhaseRepo
	alerts    *repository.SQLiteAlertRepo
	budgets   *repository.SQLiteBudgetRepo
	rems      *repository.SQLiteREMRepo
	snapshots *repository.SQLiteRiskSnapshotRepo
	engine    *Engine
	cfg       EngineConfig

	mu      sync.Mutex
	changed []string
}

func newFixture(t *testing.T, tweaks ...func(*EngineConfig)) *fixture {
	t.Helper()
	return newFixtureOn(t, testutil.NewTestDB(t), tweaks...)
}

func newFixtureOn(t *testing.T, database *sql.DB, tweaks ...func(*EngineConfig)) *fixture {
	t.Helper()
	scorer, err := risk.NewScorer(risk.DefaultThresholds())
	require.NoError(t, err)

	f := &fixture{
		db:        database,
		uow:       testutil.NewTestUoW(database),
		ops:       repository.NewSQLiteOperationRepo(database),
		phases:    repository.NewSQLitePhaseRepo(database),
		alerts:    repository.NewSQLiteAlertRepo(database),
		budgets:   repository.NewSQLiteBudgetRepo(database),
		rems:      repository.NewSQLiteREMRepo(database),
		snapshots: repository.NewSQLiteRiskSnapshotRepo(database),
	}
	cfg := EngineConfig{
		Scorer:           scorer,
		Alerts:           alerting.DefaultThresholds(),
		ProtectManual:    true,
		RecomputeOnWrite: true,
		BatchConcurrency: 4,
		Clock:            risk.FixedClock(testutil.Now),
		OnChange: func(id string) {
			f.mu.Lock()
			f.changed = append(f.changed, id)
			f.mu.Unlock()
		},
	}
	for _, tw := range tweaks {
		tw(&cfg)
	}
	f.cfg = cfg
	f.engine = NewRiskEngine(f.ops, f.uow, cfg, nil)
	return f
}

// withUoW rebuilds the engine over uow, keeping the configuration.
func (f *fixture) withUoW(uow db.UnitOfWork) {
	f.uow = uow
	f.engine = NewRiskEngine(f.ops, uow, f.cfg, nil)
}

func (f *fixture) catalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return cat
}

func (f *fixture) changedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.changed...)
}

// seed stores an operation with the given phases and returns it.
func (f *fixture) seed(t *testing.T, op *domain.Operation, phases ...*domain.Phase) *domain.Operation {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.ops.Create(ctx, op))
	for _, p := range phases {
		p.OperationID = op.ID
		require.NoError(t, f.phases.Create(ctx, p))
	}
	return op
}

// troubled is an operation that trips all three alert rules: two late
// phases, a 25% overrun and one blocked phase.
func (f *fixture) troubled(t *testing.T, name string) *domain.Operation {
	t.Helper()
	op := testutil.NewTestOperation(name, testutil.WithBudget("100000", "", "125000"))
	return f.seed(t, op,
		testutil.NewTestPhase("", 1, testutil.WithPhaseStatus(domain.PhaseDone), testutil.WithProgress(100),
			testutil.WithPlannedEnd(testutil.DaysFromNow(-40))),
		testutil.NewTestPhase("", 2, testutil.WithPhaseStatus(domain.PhaseInProgress), testutil.WithProgress(50),
			testutil.WithPlannedEnd(testutil.DaysFromNow(-10))),
		testutil.NewTestPhase("", 3, testutil.WithPlannedEnd(testutil.DaysFromNow(-3))),
		testutil.NewTestPhase("", 4, testutil.WithPhaseStatus(domain.PhaseBlocked)),
	)
}

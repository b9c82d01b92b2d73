package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCascadeDelete_OperationRemovesDependents verifies that deleting an
// operation removes its phases and everything recorded against it.
func TestCascadeDelete_OperationRemovesDependents(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	ops := NewSQLiteOperationRepo(database)
	phases := NewSQLitePhaseRepo(database)
	alerts := NewSQLiteAlertRepo(database)
	budgets := NewSQLiteBudgetRepo(database)
	rems := NewSQLiteREMRepo(database)
	snaps := NewSQLiteRiskSnapshotRepo(database)
	transitions := NewSQLitePhaseTransitionRepo(database)

	op := seedOperation(t, ops, "Cascade")
	p := testutil.NewTestPhase(op.ID, 1)
	require.NoError(t, phases.Create(ctx, p))
	a := testutil.NewTestAlert(op.ID, domain.SeverityLow)
	require.NoError(t, alerts.Create(ctx, a))
	require.NoError(t, budgets.Create(ctx, &domain.BudgetEntry{
		ID: "b", OperationID: op.ID, Kind: domain.BudgetInitial, Amount: *testutil.Amount("1"),
		Date: testutil.Now, CreatedAt: testutil.Now,
	}))
	require.NoError(t, rems.Create(ctx, &domain.REMEntry{
		ID: "r", OperationID: op.ID, Period: domain.PeriodHalf, Year: 2025, Index: 1,
		Amount: *testutil.Amount("1"), CreatedAt: testutil.Now,
	}))
	require.NoError(t, snaps.Create(ctx, &domain.RiskSnapshot{
		ID: "s", OperationID: op.ID, Score: 1, Level: domain.RiskLow, ComputedAt: testutil.Now,
	}))

	require.NoError(t, transitions.Create(ctx, &domain.PhaseTransition{
		ID: "tr", OperationID: op.ID, PhaseID: p.ID,
		From: domain.PhaseNotStarted, To: domain.PhaseInProgress, ChangedAt: testutil.Now,
	}))

	require.NoError(t, ops.Delete(ctx, op.ID))

	_, err := phases.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = alerts.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	b, err := budgets.ListByOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.Empty(t, b)
	r, err := rems.ListByOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.Empty(t, r)
	s, err := snaps.ListByOperation(ctx, op.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, s)
	tr, err := transitions.ListByOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.Empty(t, tr)
}

// TestCascadeDelete_PhaseDetachesAlert verifies alerts survive their phase with a null phase reference.
func TestCascadeDelete_PhaseDetachesAlert(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	op := seedOperation(t, NewSQLiteOperationRepo(database), "Detach")
	p := testutil.NewTestPhase(op.ID, 1)
	require.NoError(t, NewSQLitePhaseRepo(database).Create(ctx, p))

	alerts := NewSQLiteAlertRepo(database)
	a := testutil.NewTestAlert(op.ID, domain.SeverityLow)
	a.PhaseID = &p.ID
	require.NoError(t, alerts.Create(ctx, a))

	_, err := database.ExecContext(ctx, `DELETE FROM phases WHERE id = ?`, p.ID)
	require.NoError(t, err)

	fetched, err := alerts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.PhaseID)
}

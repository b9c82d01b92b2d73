package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationRepo_CreateAndGetByID(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteOperationRepo(db)
	ctx := context.Background()

	start := testutil.Day(2025, 1, 6)
	op := testutil.NewTestOperation("Rue des Lilas",
		testutil.WithType(domain.OperationVEFA),
		testutil.WithBudget("1250000.50", "", "1400000"),
	)
	op.Address = "12 rue des Lilas"
	op.StartDate = &start
	require.NoError(t, repo.Create(ctx, op))

	fetched, err := repo.GetByID(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rue des Lilas", fetched.Name)
	assert.Equal(t, domain.OperationVEFA, fetched.Type)
	assert.Equal(t, "12 rue des Lilas", fetched.Address)
	assert.Equal(t, domain.StatusPreparing, fetched.Status)
	require.NotNil(t, fetched.BudgetInitial)
	assert.Equal(t, "1250000.5", fetched.BudgetInitial.String())
	assert.Nil(t, fetched.BudgetRevised)
	require.NotNil(t, fetched.BudgetFinal)
	assert.True(t, fetched.BudgetFinal.Equal(*testutil.Amount("1400000")))
	require.NotNil(t, fetched.StartDate)
	assert.Equal(t, "2025-01-06", fetched.StartDate.Format("2006-01-02"))
	assert.Nil(t, fetched.PlannedEndDate)
	assert.True(t, fetched.CreatedAt.Equal(testutil.Now))
}

func TestOperationRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteOperationRepo(db)

	_, err := repo.GetByID(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestOperationRepo_List_Filters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteOperationRepo(db)
	ctx := context.Background()

	a := testutil.NewTestOperation("A", testutil.WithCreatedAt(testutil.Now.Add(-2*time.Hour)))
	b := testutil.NewTestOperation("B", testutil.WithType(domain.OperationAMO),
		testutil.WithStatus(domain.StatusActive), testutil.WithCreatedAt(testutil.Now.Add(-time.Hour)))
	c := testutil.NewTestOperation("C", testutil.WithStatus(domain.StatusActive))
	for _, op := range []*domain.Operation{c, a, b} {
		require.NoError(t, repo.Create(ctx, op))
	}

	all, err := repo.List(ctx, OperationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{all[0].Name, all[1].Name, all[2].Name})

	active, err := repo.List(ctx, OperationFilter{Status: domain.StatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	amo, err := repo.List(ctx, OperationFilter{Status: domain.StatusActive, Type: domain.OperationAMO})
	require.NoError(t, err)
	require.Len(t, amo, 1)
	assert.Equal(t, b.ID, amo[0].ID)

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids)
}

func TestOperationRepo_Update(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteOperationRepo(db)
	ctx := context.Background()

	op := testutil.NewTestOperation("Before", testutil.WithBudget("100000", "", ""))
	require.NoError(t, repo.Create(ctx, op))

	op.Name = "After"
	op.BudgetRevised = testutil.Amount("110000")
	op.UpdatedAt = testutil.Now.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, op))

	fetched, err := repo.GetByID(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", fetched.Name)
	require.NotNil(t, fetched.BudgetRevised)
	assert.Equal(t, "110000", fetched.BudgetRevised.String())
	assert.True(t, fetched.UpdatedAt.Equal(testutil.Now.Add(time.Hour)))

	ghost := testutil.NewTestOperation("Ghost")
	assert.ErrorIs(t, repo.Update(ctx, ghost), domain.ErrNotFound)
}

func TestOperationRepo_UpdateRiskScoreAndStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteOperationRepo(db)
	ctx := context.Background()

	op := testutil.NewTestOperation("Scored")
	require.NoError(t, repo.Create(ctx, op))

	at := testutil.Now.Add(time.Minute)
	require.NoError(t, repo.UpdateRiskScore(ctx, op.ID, 64, at))
	require.NoError(t, repo.UpdateStatus(ctx, op.ID, domain.StatusBlocked, at))

	fetched, err := repo.GetByID(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, 64, fetched.RiskScore)
	assert.Equal(t, domain.StatusBlocked, fetched.Status)

	assert.ErrorIs(t, repo.UpdateRiskScore(ctx, "missing", 10, at), domain.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "missing", domain.StatusDone, at), domain.ErrNotFound)
}

func TestOperationRepo_RiskScoreOutOfRange_IsPersistenceError(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteOperationRepo(db)
	ctx := context.Background()

	op := testutil.NewTestOperation("Bounded")
	require.NoError(t, repo.Create(ctx, op))

	err := repo.UpdateRiskScore(ctx, op.ID, 101, testutil.Now)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func TestOperationRepo_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteOperationRepo(db)
	ctx := context.Background()

	op := testutil.NewTestOperation("Gone")
	require.NoError(t, repo.Create(ctx, op))
	require.NoError(t, repo.Delete(ctx, op.ID))

	_, err := repo.GetByID(ctx, op.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, op.ID), domain.ErrNotFound)
}

func TestOperationRepo_TopRisks_OrdersByScoreThenAlerts(t *testing.T) {
	db := testutil.NewTestDB(t)
	ops := NewSQLiteOperationRepo(db)
	alerts := NewSQLiteAlertRepo(db)
	ctx := context.Background()

	low := testutil.NewTestOperation("Low", testutil.WithRiskScore(10))
	tieQuiet := testutil.NewTestOperation("Tie quiet", testutil.WithRiskScore(60))
	tieNoisy := testutil.NewTestOperation("Tie noisy", testutil.WithRiskScore(60))
	top := testutil.NewTestOperation("Top", testutil.WithRiskScore(90))
	for _, op := range []*domain.Operation{low, tieQuiet, tieNoisy, top} {
		require.NoError(t, ops.Create(ctx, op))
	}
	require.NoError(t, alerts.Create(ctx, testutil.NewTestAlert(tieNoisy.ID, domain.SeverityHigh)))
	require.NoError(t, alerts.Create(ctx, testutil.NewTestAlert(tieNoisy.ID, domain.SeverityLow)))

	resolved := testutil.NewTestAlert(tieQuiet.ID, domain.SeverityCritical)
	require.NoError(t, alerts.Create(ctx, resolved))
	require.NoError(t, alerts.Resolve(ctx, resolved.ID, "pm", testutil.Now))

	rows, err := ops.TopRisks(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, top.ID, rows[0].Operation.ID)
	assert.Equal(t, tieNoisy.ID, rows[1].Operation.ID)
	assert.Equal(t, 2, rows[1].ActiveAlerts)
	assert.Equal(t, tieQuiet.ID, rows[2].Operation.ID)
	assert.Equal(t, 0, rows[2].ActiveAlerts)
}

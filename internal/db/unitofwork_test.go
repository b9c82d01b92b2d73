package db_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/repository"
	"github.com/alexanderramin/spic/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*sql.DB, *db.SQLiteUnitOfWork) {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, db.NewSQLiteUnitOfWork(database)
}

func TestWithinTx_CommitsOperationWithPhases(t *testing.T) {
	database, uow := openStore(t)
	ctx := context.Background()
	op := testutil.NewTestOperation("Quai Sud")

	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteOperationRepo(tx).Create(ctx, op); err != nil {
			return err
		}
		phases := repository.NewSQLitePhaseRepo(tx)
		for order := 1; order <= 2; order++ {
			if err := phases.Create(ctx, testutil.NewTestPhase(op.ID, order)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	_, err = repository.NewSQLiteOperationRepo(database).GetByID(ctx, op.ID)
	require.NoError(t, err)
	phases, err := repository.NewSQLitePhaseRepo(database).ListByOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.Len(t, phases, 2)
}

func TestWithinTx_PersistenceFailureRollsBack(t *testing.T) {
	database, uow := openStore(t)
	ctx := context.Background()
	op := testutil.NewTestOperation("Quai Nord")

	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteOperationRepo(tx).Create(ctx, op); err != nil {
			return err
		}
		phases := repository.NewSQLitePhaseRepo(tx)
		if err := phases.Create(ctx, testutil.NewTestPhase(op.ID, 1)); err != nil {
			return err
		}
		// Same order twice violates UNIQUE(operation_id, order_index).
		return phases.Create(ctx, testutil.NewTestPhase(op.ID, 1))
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence, "repository errors keep their kind through the rollback")

	_, err = repository.NewSQLiteOperationRepo(database).GetByID(ctx, op.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "the operation insert is rolled back with the phase")
}

func TestWithinTx_DomainErrorPassesThrough(t *testing.T) {
	database, uow := openStore(t)
	ctx := context.Background()
	op := testutil.NewTestOperation("Parc Est")

	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteOperationRepo(tx).Create(ctx, op); err != nil {
			return err
		}
		return domain.ErrInvalidState
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.NotErrorIs(t, err, domain.ErrPersistence)

	_, err = repository.NewSQLiteOperationRepo(database).GetByID(ctx, op.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	database, uow := openStore(t)
	ctx := context.Background()
	op := testutil.NewTestOperation("Parc Ouest")

	assert.Panics(t, func() {
		_ = uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			_ = repository.NewSQLiteOperationRepo(tx).Create(ctx, op)
			panic("boom")
		})
	})

	_, err := repository.NewSQLiteOperationRepo(database).GetByID(ctx, op.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWithinTx_BeginFailureIsPersistenceError(t *testing.T) {
	database, uow := openStore(t)
	require.NoError(t, database.Close())

	called := false
	err := uow.WithinTx(context.Background(), func(context.Context, db.DBTX) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.False(t, called)
}

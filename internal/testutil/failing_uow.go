package testutil

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/rotisserie/eris"
)

// FailingWriteUoW runs transactions whose FailAt-th write (counted from 1,
// per transaction) is rejected with ErrPersistence wrapping Err, the way a
// repository reports a driver failure. Reads are never counted.
type FailingWriteUoW struct {
	DB     *sql.DB
	FailAt int
	Err    error

	mu     sync.Mutex
	failed string
}

func (u *FailingWriteUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrapf(domain.ErrPersistence, "beginning transaction: %v", err)
	}

	if err := fn(ctx, &failingWrites{DBTX: tx, uow: u}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return eris.Wrapf(domain.ErrPersistence, "committing transaction: %v", err)
	}
	return nil
}

// FailedStatement returns the first line of the rejected write, or "" when
// no write was rejected.
func (u *FailingWriteUoW) FailedStatement() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.failed
}

type failingWrites struct {
	db.DBTX
	uow    *FailingWriteUoW
	writes int
}

func (f *failingWrites) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.writes++
	if f.writes != f.uow.FailAt {
		return f.DBTX.ExecContext(ctx, query, args...)
	}

	stmt, _, _ := strings.Cut(strings.TrimSpace(query), "\n")
	f.uow.mu.Lock()
	f.uow.failed = stmt
	f.uow.mu.Unlock()

	cause := f.uow.Err
	if cause == nil {
		cause = eris.New("injected write failure")
	}
	return nil, eris.Wrapf(domain.ErrPersistence, "%v", cause)
}

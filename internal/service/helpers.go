package service

import (
	"context"
	"strings"

	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/repository"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
)

// ParseAmount parses a non-negative monetary amount, accepting spaces as
// thousands separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, eris.Wrapf(domain.ErrInvalidInput, "amount %q: %v", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, eris.Wrapf(domain.ErrInvalidInput, "amount %q cannot be negative", s)
	}
	return d, nil
}

// writeResult is what a write path reports after recomputing its operation.
type writeResult struct {
	status   domain.OperationStatus
	score    int
	rescored bool
}

// writeThrough runs fn and the recompute-on-write policy for operationID in
// one transaction under the operation's lock.
func (e *Engine) writeThrough(ctx context.Context, operationID string, fn func(ctx context.Context, tx db.DBTX) error) (writeResult, error) {
	unlock := e.locks.lock(operationID)
	defer unlock()

	var res writeResult
	err := e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		var err error
		res.status, res.score, res.rescored, err = e.refreshIn(ctx, repository.NewSQLiteEngineStore(tx), operationID)
		return err
	})
	if err != nil {
		return writeResult{}, err
	}
	e.changed(operationID)
	return res, nil
}

package repository

import (
	"context"

	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/shopspring/decimal"
)

const budgetColumns = `id, operation_id, kind, amount, entry_date, justification, created_at`

// SQLiteBudgetRepo implements BudgetRepo using a SQLite database.
type SQLiteBudgetRepo struct {
	db db.DBTX
}

func NewSQLiteBudgetRepo(conn db.DBTX) *SQLiteBudgetRepo {
	return &SQLiteBudgetRepo{db: conn}
}

func (r *SQLiteBudgetRepo) Create(ctx context.Context, b *domain.BudgetEntry) error {
	query := `INSERT INTO budget_entries (` + budgetColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		b.ID,
		b.OperationID,
		string(b.Kind),
		b.Amount.String(),
		b.Date.UTC().Format(dateLayout),
		b.Justification,
		formatTimestamp(b.CreatedAt),
	)
	if err != nil {
		return persistErr(err, "inserting budget entry")
	}
	return nil
}

// ListByOperation returns the budget history in recording order.
func (r *SQLiteBudgetRepo) ListByOperation(ctx context.Context, operationID string) ([]*domain.BudgetEntry, error) {
	query := `SELECT ` + budgetColumns + ` FROM budget_entries WHERE operation_id = ?
		ORDER BY entry_date, created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, operationID)
	if err != nil {
		return nil, persistErr(err, "listing budget entries")
	}
	defer rows.Close()

	var entries []*domain.BudgetEntry
	for rows.Next() {
		var b domain.BudgetEntry
		var kind, amount, date, createdAt string
		if err := rows.Scan(&b.ID, &b.OperationID, &kind, &amount, &date, &b.Justification, &createdAt); err != nil {
			return nil, persistErr(err, "scanning budget entry")
		}
		b.Kind = domain.BudgetKind(kind)
		if b.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, persistErr(err, "parsing budget amount")
		}
		if b.Date, err = parseDate(date); err != nil {
			return nil, persistErr(err, "parsing budget date")
		}
		if b.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, persistErr(err, "parsing budget timestamp")
		}
		entries = append(entries, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr(err, "iterating budget entries")
	}
	return entries, nil
}

const remColumns = `id, operation_id, period, year, period_index, amount, budget_pct, kind, comment, created_at`

// SQLiteREMRepo implements REMRepo using a SQLite database.
type SQLiteREMRepo struct {
	db db.DBTX
}

func NewSQLiteREMRepo(conn db.DBTX) *SQLiteREMRepo {
	return &SQLiteREMRepo{db: conn}
}

func (r *SQLiteREMRepo) Create(ctx context.Context, e *domain.REMEntry) error {
	query := `INSERT INTO rem_entries (` + remColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.OperationID,
		string(e.Period),
		e.Year,
		e.Index,
		e.Amount.String(),
		e.BudgetPct.String(),
		e.Kind,
		e.Comment,
		formatTimestamp(e.CreatedAt),
	)
	if err != nil {
		return persistErr(err, "inserting REM entry")
	}
	return nil
}

// ListByOperation returns REM entries in chronological period order.
func (r *SQLiteREMRepo) ListByOperation(ctx context.Context, operationID string) ([]*domain.REMEntry, error) {
	query := `SELECT ` + remColumns + ` FROM rem_entries WHERE operation_id = ?
		ORDER BY year, period, period_index, rowid`
	rows, err := r.db.QueryContext(ctx, query, operationID)
	if err != nil {
		return nil, persistErr(err, "listing REM entries")
	}
	defer rows.Close()

	var entries []*domain.REMEntry
	for rows.Next() {
		var e domain.REMEntry
		var period, amount, pct, createdAt string
		err := rows.Scan(&e.ID, &e.OperationID, &period, &e.Year, &e.Index, &amount, &pct, &e.Kind, &e.Comment, &createdAt)
		if err != nil {
			return nil, persistErr(err, "scanning REM entry")
		}
		e.Period = domain.REMPeriod(period)
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, persistErr(err, "parsing REM amount")
		}
		if e.BudgetPct, err = decimal.NewFromString(pct); err != nil {
			return nil, persistErr(err, "parsing REM budget share")
		}
		if e.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, persistErr(err, "parsing REM timestamp")
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr(err, "iterating REM entries")
	}
	return entries, nil
}

package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
)

const operationColumns = `id, name, type, address, owner, budget_initial, budget_revised, budget_final,
	start_date, planned_end_date, status, risk_score, created_at, updated_at`

// SQLiteOperationRepo implements OperationRepo using a SQLite database.
type SQLiteOperationRepo struct {
	db db.DBTX
}

// NewSQLiteOperationRepo creates a new SQLiteOperationRepo.
func NewSQLiteOperationRepo(conn db.DBTX) *SQLiteOperationRepo {
	return &SQLiteOperationRepo{db: conn}
}

func (r *SQLiteOperationRepo) Create(ctx context.Context, o *domain.Operation) error {
	query := `INSERT INTO operations (` + operationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		o.ID,
		o.Name,
		string(o.Type),
		o.Address,
		o.Owner,
		nullableDecimal(o.BudgetInitial),
		nullableDecimal(o.BudgetRevised),
		nullableDecimal(o.BudgetFinal),
		nullableTimeToString(o.StartDate, dateLayout),
		nullableTimeToString(o.PlannedEndDate, dateLayout),
		string(o.Status),
		o.RiskScore,
		formatTimestamp(o.CreatedAt),
		formatTimestamp(o.UpdatedAt),
	)
	if err != nil {
		return persistErr(err, "inserting operation")
	}
	return nil
}

func (r *SQLiteOperationRepo) GetByID(ctx context.Context, id string) (*domain.Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE id = ?`
	o, err := scanOperation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, scanErr(err, "operation", id)
	}
	return o, nil
}

func (r *SQLiteOperationRepo) List(ctx context.Context, f OperationFilter) ([]*domain.Operation, error) {
	var where []string
	var args []any
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	query := `SELECT ` + operationColumns + ` FROM operations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr(err, "listing operations")
	}
	defer rows.Close()

	var ops []*domain.Operation
	for rows.Next() {
		o, err := scanOperation(rows)
		if err != nil {
			return nil, persistErr(err, "scanning operation")
		}
		ops = append(ops, o)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr(err, "iterating operations")
	}
	return ops, nil
}

func (r *SQLiteOperationRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM operations ORDER BY created_at, id`)
	if err != nil {
		return nil, persistErr(err, "listing operation ids")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, persistErr(err, "scanning operation id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr(err, "iterating operation ids")
	}
	return ids, nil
}

func (r *SQLiteOperationRepo) Update(ctx context.Context, o *domain.Operation) error {
	query := `UPDATE operations SET name = ?, type = ?, address = ?, owner = ?,
		budget_initial = ?, budget_revised = ?, budget_final = ?,
		start_date = ?, planned_end_date = ?, status = ?, risk_score = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		o.Name,
		string(o.Type),
		o.Address,
		o.Owner,
		nullableDecimal(o.BudgetInitial),
		nullableDecimal(o.BudgetRevised),
		nullableDecimal(o.BudgetFinal),
		nullableTimeToString(o.StartDate, dateLayout),
		nullableTimeToString(o.PlannedEndDate, dateLayout),
		string(o.Status),
		o.RiskScore,
		formatTimestamp(o.UpdatedAt),
		o.ID,
	)
	if err != nil {
		return persistErr(err, "updating operation")
	}
	return expectOne(res, "operation", o.ID)
}

func (r *SQLiteOperationRepo) UpdateRiskScore(ctx context.Context, id string, score int, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE operations SET risk_score = ?, updated_at = ? WHERE id = ?`,
		score, formatTimestamp(at), id)
	if err != nil {
		return persistErr(err, "saving risk score")
	}
	return expectOne(res, "operation", id)
}

func (r *SQLiteOperationRepo) UpdateStatus(ctx context.Context, id string, status domain.OperationStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE operations SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), formatTimestamp(at), id)
	if err != nil {
		return persistErr(err, "saving operation status")
	}
	return expectOne(res, "operation", id)
}

func (r *SQLiteOperationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM operations WHERE id = ?`, id)
	if err != nil {
		return persistErr(err, "deleting operation")
	}
	return expectOne(res, "operation", id)
}

// TopRisks ranks operations by risk score, then by active alert count.
func (r *SQLiteOperationRepo) TopRisks(ctx context.Context, limit int) ([]RiskRow, error) {
	query := `SELECT ` + prefixed("o.", operationColumns) + `,
			(SELECT COUNT(*) FROM alerts a WHERE a.operation_id = o.id AND a.active = 1) AS active_alerts
		FROM operations o
		ORDER BY o.risk_score DESC, active_alerts DESC, o.name
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, persistErr(err, "ranking operations by risk")
	}
	defer rows.Close()

	var out []RiskRow
	for rows.Next() {
		var count int
		o, err := scanOperation(rows, &count)
		if err != nil {
			return nil, persistErr(err, "scanning risk row")
		}
		out = append(out, RiskRow{Operation: o, ActiveAlerts: count})
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr(err, "iterating risk rows")
	}
	return out, nil
}

// scanOperation scans the operationColumns, followed by any extra destinations.
func scanOperation(s rowScanner, extra ...any) (*domain.Operation, error) {
	var o domain.Operation
	var typ, status, createdAt, updatedAt string
	var initial, revised, final, startDate, plannedEnd sql.NullString

	dest := []any{
		&o.ID, &o.Name, &typ, &o.Address, &o.Owner,
		&initial, &revised, &final,
		&startDate, &plannedEnd,
		&status, &o.RiskScore,
		&createdAt, &updatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	var err error
	o.Type = domain.OperationType(typ)
	o.Status = domain.OperationStatus(status)
	if o.BudgetInitial, err = parseNullableDecimal(initial); err != nil {
		return nil, err
	}
	if o.BudgetRevised, err = parseNullableDecimal(revised); err != nil {
		return nil, err
	}
	if o.BudgetFinal, err = parseNullableDecimal(final); err != nil {
		return nil, err
	}
	o.StartDate = parseNullableTime(startDate, dateLayout)
	o.PlannedEndDate = parseNullableTime(plannedEnd, dateLayout)
	if o.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// prefixed qualifies each comma-separated column with p.
func prefixed(p, columns string) string {
	parts := strings.Split(columns, ",")
	for i, c := range parts {
		parts[i] = p + strings.TrimSpace(c)
	}
	return strings.Join(parts, ", ")
}

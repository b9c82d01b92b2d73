package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
)

const alertColumns = `id, operation_id, phase_id, type, severity, title, description, params_json,
	source, active, created_at, resolved_at, resolved_by`

// SQLiteAlertRepo implements AlertRepo using a SQLite database.
type SQLiteAlertRepo struct {
	db db.DBTX
}

func NewSQLiteAlertRepo(conn db.DBTX) *SQLiteAlertRepo {
	return &SQLiteAlertRepo{db: conn}
}

func (r *SQLiteAlertRepo) Create(ctx context.Context, a *domain.Alert) error {
	var params any
	if len(a.Params) > 0 {
		raw, err := json.Marshal(a.Params)
		if err != nil {
			return persistErr(err, "encoding alert params")
		}
		params = string(raw)
	}
	var phaseID any
	if a.PhaseID != nil {
		phaseID = *a.PhaseID
	}

	query := `INSERT INTO alerts (` + alertColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.OperationID,
		phaseID,
		string(a.Type),
		string(a.Severity),
		a.Title,
		a.Description,
		params,
		string(a.Source),
		boolToInt(a.Active),
		formatTimestamp(a.CreatedAt),
		nullableTimeToString(a.ResolvedAt, time.RFC3339),
		a.ResolvedBy,
	)
	if err != nil {
		return persistErr(err, "inserting alert")
	}
	return nil
}

func (r *SQLiteAlertRepo) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = ?`
	a, err := scanAlert(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, scanErr(err, "alert", id)
	}
	return a, nil
}

func (r *SQLiteAlertRepo) ListActive(ctx context.Context, operationID string) ([]*domain.Alert, error) {
	if operationID == "" {
		return r.list(ctx, `SELECT `+alertColumns+` FROM alerts WHERE active = 1
			ORDER BY created_at DESC, rowid DESC`)
	}
	return r.list(ctx, `SELECT `+alertColumns+` FROM alerts WHERE active = 1 AND operation_id = ?
		ORDER BY created_at DESC, rowid DESC`, operationID)
}

func (r *SQLiteAlertRepo) ListActiveBySeverity(ctx context.Context, sev domain.Severity) ([]*domain.Alert, error) {
	return r.list(ctx, `SELECT `+alertColumns+` FROM alerts WHERE active = 1 AND severity = ?
		ORDER BY created_at, rowid`, string(sev))
}

func (r *SQLiteAlertRepo) FindActive(ctx context.Context, operationID string, t domain.AlertType) (*domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts
		WHERE operation_id = ? AND type = ? AND active = 1
		ORDER BY created_at, rowid LIMIT 1`
	a, err := scanAlert(r.db.QueryRowContext(ctx, query, operationID, string(t)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistErr(err, "finding active alert")
	}
	return a, nil
}

func (r *SQLiteAlertRepo) Resolve(ctx context.Context, id, resolvedBy string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET active = 0, resolved_at = ?, resolved_by = ? WHERE id = ? AND active = 1`,
		formatTimestamp(at), resolvedBy, id)
	if err != nil {
		return persistErr(err, "resolving alert")
	}
	return expectOne(res, "active alert", id)
}

func (r *SQLiteAlertRepo) CountActiveBySeverity(ctx context.Context) (map[domain.Severity]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT severity, COUNT(*) FROM alerts WHERE active = 1 GROUP BY severity`)
	if err != nil {
		return nil, persistErr(err, "counting active alerts")
	}
	defer rows.Close()

	counts := map[domain.Severity]int{}
	for _, s := range domain.Severities {
		counts[s] = 0
	}
	for rows.Next() {
		var sev string
		var n int
		if err := rows.Scan(&sev, &n); err != nil {
			return nil, persistErr(err, "scanning alert count")
		}
		counts[domain.Severity(sev)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr(err, "iterating alert counts")
	}
	return counts, nil
}

func (r *SQLiteAlertRepo) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM alerts WHERE active = 0 AND resolved_at IS NOT NULL AND resolved_at < ?`,
		formatTimestamp(cutoff))
	if err != nil {
		return 0, persistErr(err, "deleting resolved alerts")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, persistErr(err, "reading affected rows")
	}
	return n, nil
}

func (r *SQLiteAlertRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Alert, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, persistErr(err, "listing alerts")
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, persistErr(err, "scanning alert")
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr(err, "iterating alerts")
	}
	return alerts, nil
}

func scanAlert(s rowScanner) (*domain.Alert, error) {
	var a domain.Alert
	var typ, sev, source, createdAt string
	var active int
	var phaseID, params, resolvedAt sql.NullString

	err := s.Scan(
		&a.ID, &a.OperationID, &phaseID, &typ, &sev, &a.Title, &a.Description, &params,
		&source, &active, &createdAt, &resolvedAt, &a.ResolvedBy,
	)
	if err != nil {
		return nil, err
	}

	if phaseID.Valid {
		id := phaseID.String
		a.PhaseID = &id
	}
	if params.Valid && params.String != "" {
		if err := json.Unmarshal([]byte(params.String), &a.Params); err != nil {
			return nil, err
		}
	}
	a.Type = domain.AlertType(typ)
	a.Severity = domain.Severity(sev)
	a.Source = domain.AlertSource(source)
	a.Active = intToBool(active)
	a.ResolvedAt = parseNullableTime(resolvedAt, time.RFC3339)
	if a.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}

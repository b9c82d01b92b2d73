package repository

import (
	"context"
	"database/sql"

	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
)

const phaseColumns = `id, operation_id, catalog_id, name, order_index, is_primary, planned_days,
	planned_start, planned_end, actual_start, actual_end, actual_days,
	status, progress_pct, comment, created_at, updated_at`

// SQLitePhaseRepo implements PhaseRepo using a SQLite database.
type SQLitePhaseRepo struct {
	db db.DBTX
}

func NewSQLitePhaseRepo(conn db.DBTX) *SQLitePhaseRepo {
	return &SQLitePhaseRepo{db: conn}
}

func (r *SQLitePhaseRepo) Create(ctx context.Context, p *domain.Phase) error {
	query := `INSERT INTO phases (` + phaseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.OperationID,
		p.CatalogID,
		p.Name,
		p.Order,
		boolToInt(p.IsPrimary),
		p.PlannedDays,
		nullableTimeToString(p.PlannedStart, dateLayout),
		nullableTimeToString(p.PlannedEnd, dateLayout),
		nullableTimeToString(p.ActualStart, dateLayout),
		nullableTimeToString(p.ActualEnd, dateLayout),
		nullableIntToValue(p.ActualDays),
		string(p.Status),
		p.ProgressPct,
		p.Comment,
		formatTimestamp(p.CreatedAt),
		formatTimestamp(p.UpdatedAt),
	)
	if err != nil {
		return persistErr(err, "inserting phase")
	}
	return nil
}

func (r *SQLitePhaseRepo) GetByID(ctx context.Context, id string) (*domain.Phase, error) {
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE id = ?`
	p, err := scanPhase(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, scanErr(err, "phase", id)
	}
	return p, nil
}

func (r *SQLitePhaseRepo) ListByOperation(ctx context.Context, operationID string) ([]*domain.Phase, error) {
	query := `SELECT ` + phaseColumns + ` FROM phases WHERE operation_id = ? ORDER BY order_index`
	rows, err := r.db.QueryContext(ctx, query, operationID)
	if err != nil {
		return nil, persistErr(err, "listing phases")
	}
	defer rows.Close()

	var phases []*domain.Phase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, persistErr(err, "scanning phase")
		}
		phases = append(phases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr(err, "iterating phases")
	}
	return phases, nil
}

// Update writes the mutable planning and execution fields. Catalog identity
// and order never change after creation.
func (r *SQLitePhaseRepo) Update(ctx context.Context, p *domain.Phase) error {
	query := `UPDATE phases SET planned_days = ?, planned_start = ?, planned_end = ?,
		actual_start = ?, actual_end = ?, actual_days = ?,
		status = ?, progress_pct = ?, comment = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.PlannedDays,
		nullableTimeToString(p.PlannedStart, dateLayout),
		nullableTimeToString(p.PlannedEnd, dateLayout),
		nullableTimeToString(p.ActualStart, dateLayout),
		nullableTimeToString(p.ActualEnd, dateLayout),
		nullableIntToValue(p.ActualDays),
		string(p.Status),
		p.ProgressPct,
		p.Comment,
		formatTimestamp(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return persistErr(err, "updating phase")
	}
	return expectOne(res, "phase", p.ID)
}

func scanPhase(s rowScanner) (*domain.Phase, error) {
	var p domain.Phase
	var isPrimary int
	var status, createdAt, updatedAt string
	var plannedStart, plannedEnd, actualStart, actualEnd sql.NullString
	var actualDays sql.NullInt64

	err := s.Scan(
		&p.ID, &p.OperationID, &p.CatalogID, &p.Name, &p.Order, &isPrimary, &p.PlannedDays,
		&plannedStart, &plannedEnd, &actualStart, &actualEnd, &actualDays,
		&status, &p.ProgressPct, &p.Comment, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.IsPrimary = intToBool(isPrimary)
	p.Status = domain.PhaseStatus(status)
	p.PlannedStart = parseNullableTime(plannedStart, dateLayout)
	p.PlannedEnd = parseNullableTime(plannedEnd, dateLayout)
	p.ActualStart = parseNullableTime(actualStart, dateLayout)
	p.ActualEnd = parseNullableTime(actualEnd, dateLayout)
	if actualDays.Valid {
		d := int(actualDays.Int64)
		p.ActualDays = &d
	}
	if p.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

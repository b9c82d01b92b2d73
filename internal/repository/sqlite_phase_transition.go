package repository

import (
	"context"

	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
)

// SQLitePhaseTransitionRepo implements PhaseTransitionRepo using a SQLite database.
type SQLitePhaseTransitionRepo struct {
	db db.DBTX
}

func NewSQLitePhaseTransitionRepo(conn db.DBTX) *SQLitePhaseTransitionRepo {
	return &SQLitePhaseTransitionRepo{db: conn}
}

func (r *SQLitePhaseTransitionRepo) Create(ctx context.Context, t *domain.PhaseTransition) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO phase_transitions (id, operation_id, phase_id, from_status, to_status, changed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.OperationID, t.PhaseID, string(t.From), string(t.To), formatTimestamp(t.ChangedAt))
	if err != nil {
		return persistErr(err, "inserting phase transition")
	}
	return nil
}

func (r *SQLitePhaseTransitionRepo) ListByOperation(ctx context.Context, operationID string) ([]*domain.PhaseTransition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, operation_id, phase_id, from_status, to_status, changed_at FROM phase_transitions
		WHERE operation_id = ? ORDER BY changed_at, rowid`, operationID)
	if err != nil {
		return nil, persistErr(err, "listing phase transitions")
	}
	defer rows.Close()

	var out []*domain.PhaseTransition
	for rows.Next() {
		var t domain.PhaseTransition
		var from, to, changedAt string
		if err := rows.Scan(&t.ID, &t.OperationID, &t.PhaseID, &from, &to, &changedAt); err != nil {
			return nil, persistErr(err, "scanning phase transition")
		}
		t.From = domain.PhaseStatus(from)
		t.To = domain.PhaseStatus(to)
		if t.ChangedAt, err = parseTimestamp(changedAt); err != nil {
			return nil, persistErr(err, "parsing transition timestamp")
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr(err, "iterating phase transitions")
	}
	return out, nil
}

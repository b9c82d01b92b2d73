package repository

import (
	"context"
	"slices"

	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/domain"
)

// SQLiteRiskSnapshotRepo implements RiskSnapshotRepo using a SQLite database.
type SQLiteRiskSnapshotRepo struct {
	db db.DBTX
}

func NewSQLiteRiskSnapshotRepo(conn db.DBTX) *SQLiteRiskSnapshotRepo {
	return &SQLiteRiskSnapshotRepo{db: conn}
}

func (r *SQLiteRiskSnapshotRepo) Create(ctx context.Context, s *domain.RiskSnapshot) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO risk_snapshots (id, operation_id, score, level, computed_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.OperationID, s.Score, string(s.Level), formatTimestamp(s.ComputedAt))
	if err != nil {
		return persistErr(err, "inserting risk snapshot")
	}
	return nil
}

func (r *SQLiteRiskSnapshotRepo) ListByOperation(ctx context.Context, operationID string, limit int) ([]*domain.RiskSnapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, operation_id, score, level, computed_at FROM risk_snapshots
		WHERE operation_id = ? ORDER BY computed_at DESC, rowid DESC LIMIT ?`,
		operationID, limit)
	if err != nil {
		return nil, persistErr(err, "listing risk snapshots")
	}
	defer rows.Close()

	var snaps []*domain.RiskSnapshot
	for rows.Next() {
		var s domain.RiskSnapshot
		var level, computedAt string
		if err := rows.Scan(&s.ID, &s.OperationID, &s.Score, &level, &computedAt); err != nil {
			return nil, persistErr(err, "scanning risk snapshot")
		}
		s.Level = domain.RiskLevel(level)
		if s.ComputedAt, err = parseTimestamp(computedAt); err != nil {
			return nil, persistErr(err, "parsing snapshot timestamp")
		}
		snaps = append(snaps, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr(err, "iterating risk snapshots")
	}
	slices.Reverse(snaps)
	return snaps, nil
}

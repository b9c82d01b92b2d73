package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent so the
// full list is replayed on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS operations (
		id               TEXT PRIMARY KEY,
		name             TEXT NOT NULL,
		type             TEXT NOT NULL CHECK(type IN ('OPP','VEFA','AMO','MANDAT')),
		address          TEXT NOT NULL DEFAULT '',
		owner            TEXT NOT NULL DEFAULT '',
		budget_initial   TEXT,
		budget_revised   TEXT,
		budget_final     TEXT,
		start_date       TEXT,
		planned_end_date TEXT,
		status           TEXT NOT NULL DEFAULT 'preparing'
		                 CHECK(status IN ('preparing','active','on_hold','blocked','done','cancelled')),
		risk_score       INTEGER NOT NULL DEFAULT 0 CHECK(risk_score BETWEEN 0 AND 100),
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS phases (
		id            TEXT PRIMARY KEY,
		operation_id  TEXT NOT NULL REFERENCES operations(id) ON DELETE CASCADE,
		catalog_id    INTEGER NOT NULL,
		name          TEXT NOT NULL,
		order_index   INTEGER NOT NULL,
		is_primary    INTEGER NOT NULL DEFAULT 0,
		planned_days  INTEGER NOT NULL DEFAULT 0,
		planned_start TEXT,
		planned_end   TEXT,
		actual_start  TEXT,
		actual_end    TEXT,
		actual_days   INTEGER,
		status        TEXT NOT NULL DEFAULT 'not_started'
		              CHECK(status IN ('not_started','in_progress','done','late','blocked')),
		progress_pct  INTEGER NOT NULL DEFAULT 0 CHECK(progress_pct BETWEEN 0 AND 100),
		comment       TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		UNIQUE(operation_id, order_index)
	)`,

	`CREATE TABLE IF NOT EXISTS alerts (
		id           TEXT PRIMARY KEY,
		operation_id TEXT NOT NULL REFERENCES operations(id) ON DELETE CASCADE,
		phase_id     TEXT REFERENCES phases(id) ON DELETE SET NULL,
		type         TEXT NOT NULL
		             CHECK(type IN ('delay','budget','technical','administrative','commercial','legal')),
		severity     TEXT NOT NULL CHECK(severity IN ('low','medium','high','critical')),
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		params_json  TEXT,
		source       TEXT NOT NULL DEFAULT 'rule' CHECK(source IN ('rule','manual')),
		active       INTEGER NOT NULL DEFAULT 1,
		created_at   TEXT NOT NULL,
		resolved_at  TEXT,
		resolved_by  TEXT NOT NULL DEFAULT ''
	)`,

	// One active rule alert per (operation, type).
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_rule_active
		ON alerts(operation_id, type) WHERE active = 1 AND source = 'rule'`,

	`CREATE TABLE IF NOT EXISTS budget_entries (
		id            TEXT PRIMARY KEY,
		operation_id  TEXT NOT NULL REFERENCES operations(id) ON DELETE CASCADE,
		kind          TEXT NOT NULL CHECK(kind IN ('initial','revised','final')),
		amount        TEXT NOT NULL,
		entry_date    TEXT NOT NULL,
		justification TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS rem_entries (
		id           TEXT PRIMARY KEY,
		operation_id TEXT NOT NULL REFERENCES operations(id) ON DELETE CASCADE,
		period       TEXT NOT NULL CHECK(period IN ('quarter','half')),
		year         INTEGER NOT NULL,
		period_index INTEGER NOT NULL,
		amount       TEXT NOT NULL,
		budget_pct   TEXT NOT NULL DEFAULT '0',
		kind         TEXT NOT NULL DEFAULT '',
		comment      TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS risk_snapshots (
		id           TEXT PRIMARY KEY,
		operation_id TEXT NOT NULL REFERENCES operations(id) ON DELETE CASCADE,
		score        INTEGER NOT NULL CHECK(score BETWEEN 0 AND 100),
		level        TEXT NOT NULL,
		computed_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS phase_transitions (
		id           TEXT PRIMARY KEY,
		operation_id TEXT NOT NULL REFERENCES operations(id) ON DELETE CASCADE,
		phase_id     TEXT NOT NULL REFERENCES phases(id) ON DELETE CASCADE,
		from_status  TEXT NOT NULL,
		to_status    TEXT NOT NULL,
		changed_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_phases_operation ON phases(operation_id, order_index)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_operation_active ON alerts(operation_id, active)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_resolved ON alerts(active, resolved_at)`,
	`CREATE INDEX IF NOT EXISTS idx_budget_entries_operation ON budget_entries(operation_id, entry_date)`,
	`CREATE INDEX IF NOT EXISTS idx_rem_entries_operation ON rem_entries(operation_id, year, period_index)`,
	`CREATE INDEX IF NOT EXISTS idx_risk_snapshots_operation ON risk_snapshots(operation_id, computed_at)`,
	`CREATE INDEX IF NOT EXISTS idx_phase_transitions_phase ON phase_transitions(phase_id, changed_at)`,
	`CREATE INDEX IF NOT EXISTS idx_operations_risk ON operations(risk_score DESC)`,
}

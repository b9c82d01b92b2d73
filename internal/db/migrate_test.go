package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

const insertOp = `INSERT INTO operations (id, name, type, created_at, updated_at)
	VALUES (?, 'Op', 'OPP', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`

func insertAlert(db *sql.DB, id, opID, typ, source string, active int) error {
	_, err := db.Exec(`INSERT INTO alerts (id, operation_id, type, severity, title, source, active, created_at)
		VALUES (?, ?, ?, 'high', 't', ?, ?, '2025-01-01T00:00:00Z')`, id, opID, typ, source, active)
	return err
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Run migrations a second time; it should succeed.
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"operations", "phases", "alerts", "budget_entries", "rem_entries", "risk_snapshots", "phase_transitions"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_alerts_rule_active",
		"idx_phases_operation",
		"idx_alerts_operation_active",
		"idx_alerts_resolved",
		"idx_budget_entries_operation",
		"idx_rem_entries_operation",
		"idx_risk_snapshots_operation",
		"idx_phase_transitions_phase",
		"idx_operations_risk",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	require.NoError(t, db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestOpenDB_FileUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "spic.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout))
	assert.Equal(t, busyTimeoutMS, timeout)
}

func TestMigrate_OperationCheckConstraints(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO operations (id, name, type, created_at, updated_at)
		VALUES ('o1', 'Op', 'HOUSING', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "unknown type should be rejected")

	_, err = db.Exec(insertOp, "o2")
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE operations SET risk_score = 101 WHERE id = 'o2'`)
	assert.Error(t, err, "risk score above 100 should be rejected")
	_, err = db.Exec(`UPDATE operations SET status = 'paused' WHERE id = 'o2'`)
	assert.Error(t, err, "unknown status should be rejected")
}

func TestMigrate_ActiveRuleAlertUniquePerType(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(insertOp, "o1")
	require.NoError(t, err)

	require.NoError(t, insertAlert(db, "a1", "o1", "delay", "rule", 1))
	assert.Error(t, insertAlert(db, "a2", "o1", "delay", "rule", 1), "second active rule alert of same type")

	// Other types, resolved alerts and manual alerts are not constrained.
	require.NoError(t, insertAlert(db, "a3", "o1", "budget", "rule", 1))
	require.NoError(t, insertAlert(db, "a4", "o1", "delay", "rule", 0))
	require.NoError(t, insertAlert(db, "a5", "o1", "delay", "manual", 1))
	require.NoError(t, insertAlert(db, "a6", "o1", "delay", "manual", 1))
}

func TestMigrate_DeleteOperationCascades(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(insertOp, "o1")
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO phases (id, operation_id, catalog_id, name, order_index, created_at, updated_at)
		VALUES ('p1', 'o1', 1, 'Studies', 1, '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	require.NoError(t, insertAlert(db, "a1", "o1", "delay", "rule", 1))

	_, err = db.Exec(`DELETE FROM operations WHERE id = 'o1'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM phases`).Scan(&n))
	assert.Equal(t, 0, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM alerts`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestMigrate_PhaseProgressBounds(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(insertOp, "o1")
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO phases (id, operation_id, catalog_id, name, order_index, progress_pct, created_at, updated_at)
		VALUES ('p1', 'o1', 1, 'Studies', 1, 120, '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err)
}

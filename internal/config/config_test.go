package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/spic/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Status.ProtectManual)
	assert.True(t, cfg.Engine.RecomputeOnWrite)
	assert.Equal(t, 4, cfg.Engine.BatchConcurrency)
	assert.Equal(t, 30*time.Second, cfg.Engine.CacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.Watch.Interval)
	assert.Equal(t, 100, cfg.Risk.Criteria.WeightSum())
	assert.Equal(t, 30, cfg.Risk.Criteria.Budget.Weight)
	assert.InDelta(t, 25.0, cfg.Risk.Criteria.Budget.Critical, 0.001)
	assert.Equal(t, 76, cfg.Risk.Levels.Critical.Min)
	assert.InDelta(t, 10.0, cfg.Alerts.BudgetAlertPct, 0.001)
	assert.InDelta(t, 15.0, cfg.REM.AlertPct, 0.001)
	assert.Contains(t, cfg.Store.Path, "spic.db")
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  path: /tmp/ops.db
log:
  level: debug
  format: json
status:
  protect_manual: false
engine:
  batch_concurrency: 8
  cache_ttl: 2m
risk:
  criteria:
    delay: {weight: 30}
    progress: {weight: 5}
alerts:
  budget_alert_pct: 12
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spic.yaml"), []byte(yaml), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ops.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Status.ProtectManual)
	assert.Equal(t, 8, cfg.Engine.BatchConcurrency)
	assert.Equal(t, 2*time.Minute, cfg.Engine.CacheTTL)
	assert.Equal(t, 30, cfg.Risk.Criteria.Delay.Weight)
	assert.InDelta(t, 45.0, cfg.Risk.Criteria.Delay.Critical, 0.001, "unspecified cutoffs keep defaults")
	assert.Equal(t, 5, cfg.Risk.Criteria.Progress.Weight)
	assert.InDelta(t, 12.0, cfg.Alerts.BudgetAlertPct, 0.001)
	assert.InDelta(t, 20.0, cfg.Alerts.BudgetCriticalPct, 0.001)
}

func TestLoad_WeightsMustSumTo100(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
risk:
  criteria:
    budget: {weight: 40}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spic.yaml"), []byte(yaml), 0o644))

	_, err := Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "sum to 110")
}

func TestLoad_BandsMustBeContiguous(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
risk:
  levels:
    high: {min: 52, max: 75}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spic.yaml"), []byte(yaml), 0o644))

	_, err := Load("")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SPIC_STORE_PATH", "/data/spic.db")
	t.Setenv("SPIC_ENGINE_RECOMPUTE_ON_WRITE", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/data/spic.db", cfg.Store.Path)
	assert.False(t, cfg.Engine.RecomputeOnWrite)
}

func TestLoad_EnvOverridesRiskTable(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SPIC_RISK_CRITERIA_DELAY_WEIGHT", "35")
	t.Setenv("SPIC_RISK_CRITERIA_BUDGET_WEIGHT", "20")
	t.Setenv("SPIC_RISK_CRITERIA_BUDGET_CRITICAL", "30")
	t.Setenv("SPIC_RISK_SEVERITY_WEIGHTS_CRITICAL", "40")
	t.Setenv("SPIC_ALERTS_BUDGET_ALERT_PCT", "12")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 35, cfg.Risk.Criteria.Delay.Weight)
	assert.Equal(t, 20, cfg.Risk.Criteria.Budget.Weight)
	assert.InDelta(t, 30.0, cfg.Risk.Criteria.Budget.Critical, 0.001)
	assert.InDelta(t, 15.0, cfg.Risk.Criteria.Budget.High, 0.001)
	assert.Equal(t, 40, cfg.Risk.Severity.Critical)
	assert.Equal(t, 76, cfg.Risk.Levels.Critical.Min)
	assert.InDelta(t, 12.0, cfg.Alerts.BudgetAlertPct, 0.001)
}

func TestLoad_EnvRiskTableIsValidated(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SPIC_RISK_CRITERIA_DELAY_WEIGHT", "40")

	_, err := Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "sum to 115")

	t.Setenv("SPIC_RISK_CRITERIA_DELAY_WEIGHT", "25")
	t.Setenv("SPIC_RISK_LEVELS_HIGH_MIN", "60")
	_, err = Load("")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	dir := chdirTemp(t)
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_Settings(t *testing.T) {
	cfg := Default()
	cfg.Engine.BatchConcurrency = 0
	cfg.REM.CriticalPct = 1
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "batch_concurrency")
	assert.Contains(t, err.Error(), "rem.critical_pct")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/spic/internal/alerting"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/risk"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig         `yaml:"store" mapstructure:"store"`
	Log    LogConfig           `yaml:"log" mapstructure:"log"`
	Risk   risk.Thresholds     `yaml:"risk" mapstructure:"risk"`
	Alerts alerting.Thresholds `yaml:"alerts" mapstructure:"alerts"`
	Status StatusConfig        `yaml:"status" mapstructure:"status"`
	Engine EngineConfig        `yaml:"engine" mapstructure:"engine"`
	Watch  WatchConfig         `yaml:"watch" mapstructure:"watch"`
	REM    REMConfig           `yaml:"rem" mapstructure:"rem"`
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// StatusConfig controls automatic status derivation.
type StatusConfig struct {
	// ProtectManual keeps on_hold and cancelled operations out of derivation.
	ProtectManual bool `yaml:"protect_manual" mapstructure:"protect_manual"`
}

// EngineConfig controls when and how scores are recomputed.
type EngineConfig struct {
	RecomputeOnWrite bool          `yaml:"recompute_on_write" mapstructure:"recompute_on_write"`
	BatchConcurrency int           `yaml:"batch_concurrency" mapstructure:"batch_concurrency"`
	CacheTTL         time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// WatchConfig configures the periodic recompute loop.
type WatchConfig struct {
	Interval    time.Duration `yaml:"interval" mapstructure:"interval"`
	MetricsAddr string        `yaml:"metrics_addr" mapstructure:"metrics_addr"`
}

// REMConfig holds the share-of-budget thresholds used to classify REM entries.
type REMConfig struct {
	AlertPct    float64 `yaml:"alert_pct" mapstructure:"alert_pct"`
	CriticalPct float64 `yaml:"critical_pct" mapstructure:"critical_pct"`
}

// DefaultDBPath returns ~/.spic/spic.db, or spic.db when the home directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "spic.db"
	}
	return filepath.Join(home, ".spic", "spic.db")
}

// Default returns the built-in configuration. The risk tables carry the
// reference weights and cutoffs.
func Default() Config {
	return Config{
		Store:  StoreConfig{Path: DefaultDBPath()},
		Log:    LogConfig{Level: "info", Format: "console"},
		Risk:   risk.DefaultThresholds(),
		Alerts: alerting.DefaultThresholds(),
		Status: StatusConfig{ProtectManual: true},
		Engine: EngineConfig{RecomputeOnWrite: true, BatchConcurrency: 4, CacheTTL: 30 * time.Second},
		Watch:  WatchConfig{Interval: 15 * time.Minute, MetricsAddr: ":9090"},
		REM:    REMConfig{AlertPct: 15, CriticalPct: 25},
	}
}

// Load reads configuration from defaults, an optional spic.yaml and SPIC_*
// environment variables, in increasing priority. An explicit file path must
// exist; the default search path is optional. The result is validated.
func Load(file string) (*Config, error) {
	v := viper.New()

	// Config file
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("spic")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".spic"))
		}
	}

	// Environment
	v.SetEnvPrefix("SPIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	d := Default()
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("status.protect_manual", d.Status.ProtectManual)
	v.SetDefault("engine.recompute_on_write", d.Engine.RecomputeOnWrite)
	v.SetDefault("engine.batch_concurrency", d.Engine.BatchConcurrency)
	v.SetDefault("engine.cache_ttl", d.Engine.CacheTTL)
	v.SetDefault("watch.interval", d.Watch.Interval)
	v.SetDefault("watch.metrics_addr", d.Watch.MetricsAddr)
	v.SetDefault("alerts.budget_alert_pct", d.Alerts.BudgetAlertPct)
	v.SetDefault("alerts.budget_critical_pct", d.Alerts.BudgetCriticalPct)
	v.SetDefault("alerts.late_phases_critical", d.Alerts.LatePhasesCritical)
	v.SetDefault("alerts.blocked_phases_critical", d.Alerts.BlockedPhasesCritical)
	v.SetDefault("rem.alert_pct", d.REM.AlertPct)
	v.SetDefault("rem.critical_pct", d.REM.CriticalPct)
	setRiskDefaults(v, d.Risk)

	// Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	cfg := d
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setRiskDefaults registers every risk table leaf so AutomaticEnv can
// override it, e.g. SPIC_RISK_CRITERIA_DELAY_WEIGHT.
func setRiskDefaults(v *viper.Viper, t risk.Thresholds) {
	criteria := map[string]risk.Criterion{
		"delay":    t.Criteria.Delay,
		"budget":   t.Criteria.Budget,
		"alerts":   t.Criteria.Alerts,
		"blocking": t.Criteria.Blocking,
		"progress": t.Criteria.Progress,
	}
	for name, c := range criteria {
		key := "risk.criteria." + name
		v.SetDefault(key+".weight", c.Weight)
		v.SetDefault(key+".low", c.Low)
		v.SetDefault(key+".medium", c.Medium)
		v.SetDefault(key+".high", c.High)
		v.SetDefault(key+".critical", c.Critical)
	}

	bands := map[string]risk.Band{
		"low":      t.Levels.Low,
		"medium":   t.Levels.Medium,
		"high":     t.Levels.High,
		"critical": t.Levels.Critical,
	}
	for name, b := range bands {
		v.SetDefault("risk.levels."+name+".min", b.Min)
		v.SetDefault("risk.levels."+name+".max", b.Max)
	}

	v.SetDefault("risk.severity_weights.low", t.Severity.Low)
	v.SetDefault("risk.severity_weights.medium", t.Severity.Medium)
	v.SetDefault("risk.severity_weights.high", t.Severity.High)
	v.SetDefault("risk.severity_weights.critical", t.Severity.Critical)
}

// Validate checks every table and setting, failing fast on the first load.
func (c *Config) Validate() error {
	if err := c.Risk.Validate(); err != nil {
		return err
	}
	if err := c.Alerts.Validate(); err != nil {
		return err
	}
	var errs []error
	if c.Store.Path == "" {
		errs = append(errs, fmt.Errorf("store.path is required"))
	}
	if c.Engine.BatchConcurrency < 1 {
		errs = append(errs, fmt.Errorf("engine.batch_concurrency must be at least 1, got %d", c.Engine.BatchConcurrency))
	}
	if c.Engine.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("engine.cache_ttl must not be negative"))
	}
	if c.Watch.Interval < time.Second {
		errs = append(errs, fmt.Errorf("watch.interval must be at least 1s, got %s", c.Watch.Interval))
	}
	if c.REM.CriticalPct < c.REM.AlertPct {
		errs = append(errs, fmt.Errorf("rem.critical_pct %v is below rem.alert_pct %v", c.REM.CriticalPct, c.REM.AlertPct))
	}
	if len(errs) > 0 {
		return eris.Wrapf(domain.ErrConfiguration, "config: %v", errors.Join(errs...))
	}
	return nil
}

// NewLogger builds a zap logger: production JSON unless format is console.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)
	zapCfg.OutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "config: build logger")
	}
	return logger, nil
}

// InitLogger builds the logger and installs it as the zap global.
func InitLogger(cfg LogConfig) (*zap.Logger, error) {
	logger, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/spic/internal/cache"
	"github.com/alexanderramin/spic/internal/catalog"
	"github.com/alexanderramin/spic/internal/cli"
	"github.com/alexanderramin/spic/internal/config"
	"github.com/alexanderramin/spic/internal/db"
	"github.com/alexanderramin/spic/internal/repository"
	"github.com/alexanderramin/spic/internal/risk"
	"github.com/alexanderramin/spic/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Configuration: defaults, then spic.yaml (or $SPIC_CONFIG), then SPIC_* env vars.
	cfg, err := config.Load(os.Getenv("SPIC_CONFIG"))
	if err != nil {
		return err
	}
	logger, err := config.InitLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Open database
	database, err := db.OpenDB(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	cat, err := catalog.Default()
	if err != nil {
		return err
	}
	scorer, err := risk.NewScorer(cfg.Risk)
	if err != nil {
		return err
	}

	// Metrics and use-case logging
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsObs, err := service.NewMetricsUseCaseObserver(reg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	observer := service.MultiUseCaseObserver{service.NewLogUseCaseObserver(logger), metricsObs}

	// Wire repositories
	operationRepo := repository.NewSQLiteOperationRepo(database)
	phaseRepo := repository.NewSQLitePhaseRepo(database)
	alertRepo := repository.NewSQLiteAlertRepo(database)
	budgetRepo := repository.NewSQLiteBudgetRepo(database)
	remRepo := repository.NewSQLiteREMRepo(database)
	snapshotRepo := repository.NewSQLiteRiskSnapshotRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)
	clock := risk.SystemClock{}

	var analyzer *cache.Analyzer
	engine := service.NewRiskEngine(operationRepo, uow, service.EngineConfig{
		Scorer:           scorer,
		Alerts:           cfg.Alerts,
		ProtectManual:    cfg.Status.ProtectManual,
		RecomputeOnWrite: cfg.Engine.RecomputeOnWrite,
		BatchConcurrency: cfg.Engine.BatchConcurrency,
		Clock:            clock,
		OnChange:         func(id string) { analyzer.Invalidate(id) },
	}, logger.Named("engine"), observer)
	analyzer = cache.NewAnalyzer(engine, cfg.Engine.CacheTTL, clock)

	app := &cli.App{
		Operations: service.NewOperationService(operationRepo, cat, uow, engine, observer),
		Phases:     service.NewPhaseService(phaseRepo, engine, observer),
		Engine:     engine,
		Analyzer:   analyzer,
		Budget: service.NewBudgetService(budgetRepo, remRepo, uow, engine,
			service.REMThresholds{AlertPct: cfg.REM.AlertPct, CriticalPct: cfg.REM.CriticalPct}, observer),
		Alerts:     service.NewAlertService(alertRepo, engine, observer),
		Portfolio:  service.NewPortfolioService(operationRepo, phaseRepo, alertRepo, snapshotRepo, cfg.Risk.Levels, clock),
		Catalog:    cat,
		Thresholds: cfg.Risk,
		Clock:      clock,

		Registry: reg,
		Store:    database,
		Logger:   logger.Named("watch"),
		Watch:    cfg.Watch,
	}

	// Detect interactive terminal for confirmation prompts.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	logger.Debug("spic ready", zap.String("db", cfg.Store.Path), zap.Int("catalog_phases", cat.Size()))

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}

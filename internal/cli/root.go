package cli

import (
	"github.com/alexanderramin/spic/internal/catalog"
	"github.com/alexanderramin/spic/internal/config"
	"github.com/alexanderramin/spic/internal/risk"
	"github.com/alexanderramin/spic/internal/service"
	"github.com/alexanderramin/spic/internal/watch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Operations service.OperationService
	Phases     service.PhaseService
	Engine     service.RiskEngine
	Analyzer   service.Analyzer
	Budget     service.BudgetService
	Alerts     service.AlertService
	Portfolio  service.PortfolioService
	Catalog    *catalog.Catalog
	Thresholds risk.Thresholds
	Clock      risk.Clock

	// Watch wiring. Registry gathers both the use-case and the watch metrics.
	Registry *prometheus.Registry
	Store    watch.Pinger
	Logger   *zap.Logger
	Watch    config.WatchConfig

	// IsInteractive reports whether prompts can be shown. Nil means never.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Nil falls back to a huh form.
	Confirm func(title string) (bool, error)
}

// NewRootCmd creates the top-level "spic" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "spic",
		Short:         "Risk scoring and alerting for construction operations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newOperationCmd(app),
		newPhaseCmd(app),
		newRiskCmd(app),
		newStatusCmd(app),
		newAlertCmd(app),
		newBudgetCmd(app),
		newREMCmd(app),
		newDashboardCmd(app),
		newCatalogCmd(app),
		newWatchCmd(app),
	)

	return root
}

func (a *App) clock() risk.Clock {
	if a.Clock == nil {
		return risk.SystemClock{}
	}
	return a.Clock
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

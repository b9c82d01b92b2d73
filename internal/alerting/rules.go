// Package alerting decides which rule-based alerts an operation should carry.
// It never resolves alerts: a raised alert stays active until a user resolves it.
package alerting

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/spic/internal/domain"
)

// Thresholds configures the three generation rules.
type Thresholds struct {
	BudgetAlertPct        float64 `mapstructure:"budget_alert_pct" yaml:"budget_alert_pct"`
	BudgetCriticalPct     float64 `mapstructure:"budget_critical_pct" yaml:"budget_critical_pct"`
	LatePhasesCritical    int     `mapstructure:"late_phases_critical" yaml:"late_phases_critical"`
	BlockedPhasesCritical int     `mapstructure:"blocked_phases_critical" yaml:"blocked_phases_critical"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		BudgetAlertPct:        10,
		BudgetCriticalPct:     20,
		LatePhasesCritical:    3,
		BlockedPhasesCritical: 2,
	}
}

func (t Thresholds) Validate() error {
	var errs []error
	if t.BudgetAlertPct < 0 {
		errs = append(errs, fmt.Errorf("budget_alert_pct %v is negative", t.BudgetAlertPct))
	}
	if t.BudgetCriticalPct < t.BudgetAlertPct {
		errs = append(errs, fmt.Errorf("budget_critical_pct %v is below budget_alert_pct %v", t.BudgetCriticalPct, t.BudgetAlertPct))
	}
	if t.LatePhasesCritical < 0 || t.BlockedPhasesCritical < 0 {
		errs = append(errs, fmt.Errorf("phase count thresholds must not be negative"))
	}
	if len(errs) > 0 {
		return eris.Wrapf(domain.ErrConfiguration, "alert thresholds: %v", errors.Join(errs...))
	}
	return nil
}

// Snapshot is the aggregate the rules evaluate for one operation.
type Snapshot struct {
	OperationID   string
	OperationName string
	LatePhases    int
	BlockedPhases int
	// OverrunPct is only meaningful when BudgetAssessable is true.
	OverrunPct       decimal.Decimal
	BudgetAssessable bool
}

// Candidate is an alert a rule wants to exist.
type Candidate struct {
	Type        domain.AlertType
	Severity    domain.Severity
	Title       string
	Description string
	Params      map[string]any
}

// Evaluate runs the delay, budget and blocking rules in that order.
func Evaluate(s Snapshot, th Thresholds) []Candidate {
	var out []Candidate

	if s.LatePhases > 0 {
		out = append(out, Candidate{
			Type:        domain.AlertDelay,
			Severity:    severityAbove(s.LatePhases > th.LatePhasesCritical),
			Title:       fmt.Sprintf("Delays detected - %s", s.OperationName),
			Description: fmt.Sprintf("%d phase(s) late", s.LatePhases),
			Params:      map[string]any{"late_phases": s.LatePhases},
		})
	}

	if s.BudgetAssessable {
		pct := s.OverrunPct.InexactFloat64()
		if pct > th.BudgetAlertPct {
			out = append(out, Candidate{
				Type:        domain.AlertBudget,
				Severity:    severityAbove(pct > th.BudgetCriticalPct),
				Title:       fmt.Sprintf("Budget overrun - %s", s.OperationName),
				Description: fmt.Sprintf("Overrun of %s%%", s.OverrunPct.StringFixed(1)),
				Params:      map[string]any{"overrun_pct": s.OverrunPct.Round(1).InexactFloat64()},
			})
		}
	}

	if s.BlockedPhases > 0 {
		out = append(out, Candidate{
			Type:        domain.AlertTechnical,
			Severity:    severityAbove(s.BlockedPhases > th.BlockedPhasesCritical),
			Title:       fmt.Sprintf("Blocked phases - %s", s.OperationName),
			Description: fmt.Sprintf("%d phase(s) blocked", s.BlockedPhases),
			Params:      map[string]any{"blocked_phases": s.BlockedPhases},
		})
	}

	return out
}

func severityAbove(critical bool) domain.Severity {
	if critical {
		return domain.SeverityCritical
	}
	return domain.SeverityHigh
}

// DedupKey identifies the alert slot a rule fills. At most one active rule
// alert exists per key. The key does not include the phase, so several
// failing phases share one alert.
func DedupKey(operationID string, t domain.AlertType) string {
	return operationID + "/" + string(t)
}

// SnapshotOf builds the rule input from an operation and its phases.
func SnapshotOf(op *domain.Operation, counts domain.PhaseCounts) Snapshot {
	pct, _, ok := op.Overrun()
	return Snapshot{
		OperationID:      op.ID,
		OperationName:    op.Name,
		LatePhases:       counts.Late,
		BlockedPhases:    counts.Blocked,
		OverrunPct:       pct,
		BudgetAssessable: ok,
	}
}

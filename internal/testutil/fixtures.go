package testutil

import (
	"fmt"
	"time"

	"github.com/alexanderramin/spic/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Now is the reference instant fixtures and fixed clocks use.
var Now = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

// Day returns midnight UTC on the given date.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysFromNow returns the calendar day n days after Now.
func DaysFromNow(n int) time.Time {
	return domain.DateOnly(Now).AddDate(0, 0, n)
}

// Amount parses a decimal literal, panicking on malformed input.
func Amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// Operation options
type OperationOption func(*domain.Operation)

func WithType(t domain.OperationType) OperationOption {
	return func(o *domain.Operation) {
		o.Type = t
	}
}

func WithStatus(s domain.OperationStatus) OperationOption {
	return func(o *domain.Operation) {
		o.Status = s
	}
}

// WithBudget sets the initial, revised and final budgets. Empty strings leave a field undefined.
func WithBudget(initial, revised, final string) OperationOption {
	return func(o *domain.Operation) {
		set := func(dst **decimal.Decimal, v string) {
			if v != "" {
				*dst = Amount(v)
			}
		}
		set(&o.BudgetInitial, initial)
		set(&o.BudgetRevised, revised)
		set(&o.BudgetFinal, final)
	}
}

func WithRiskScore(score int) OperationOption {
	return func(o *domain.Operation) {
		o.RiskScore = score
	}
}

func WithCreatedAt(t time.Time) OperationOption {
	return func(o *domain.Operation) {
		o.CreatedAt = t
		o.UpdatedAt = t
	}
}

func NewTestOperation(name string, opts ...OperationOption) *domain.Operation {
	o := &domain.Operation{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      domain.OperationOPP,
		Status:    domain.StatusPreparing,
		CreatedAt: Now,
		UpdatedAt: Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Phase options
type PhaseOption func(*domain.Phase)

func WithPhaseStatus(s domain.PhaseStatus) PhaseOption {
	return func(p *domain.Phase) {
		p.Status = s
	}
}

func WithProgress(pct int) PhaseOption {
	return func(p *domain.Phase) {
		p.ProgressPct = pct
	}
}

func WithPlannedEnd(d time.Time) PhaseOption {
	return func(p *domain.Phase) {
		p.PlannedEnd = &d
	}
}

func WithPrimary() PhaseOption {
	return func(p *domain.Phase) {
		p.IsPrimary = true
	}
}

// NewTestPhase creates a not-started phase at the given position.
func NewTestPhase(operationID string, order int, opts ...PhaseOption) *domain.Phase {
	p := &domain.Phase{
		ID:          uuid.New().String(),
		OperationID: operationID,
		CatalogID:   order,
		Name:        fmt.Sprintf("Phase %d", order),
		Order:       order,
		PlannedDays: 30,
		Status:      domain.PhaseNotStarted,
		CreatedAt:   Now,
		UpdatedAt:   Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Alert options
type AlertOption func(*domain.Alert)

func WithAlertType(t domain.AlertType) AlertOption {
	return func(a *domain.Alert) {
		a.Type = t
	}
}

func WithSource(s domain.AlertSource) AlertOption {
	return func(a *domain.Alert) {
		a.Source = s
	}
}

// NewTestAlert creates an active manual alert of type technical.
func NewTestAlert(operationID string, sev domain.Severity, opts ...AlertOption) *domain.Alert {
	a := &domain.Alert{
		ID:          uuid.New().String(),
		OperationID: operationID,
		Type:        domain.AlertTechnical,
		Severity:    sev,
		Title:       "Test alert",
		Source:      domain.SourceManual,
		Active:      true,
		CreatedAt:   Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

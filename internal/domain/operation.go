package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Operation struct {
	ID             string
	Name           string
	Type           OperationType
	Address        string
	Owner          string
	BudgetInitial  *decimal.Decimal
	BudgetRevised  *decimal.Decimal
	BudgetFinal    *decimal.Decimal
	StartDate      *time.Time
	PlannedEndDate *time.Time
	Status         OperationStatus
	RiskScore      int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks the fields a caller must supply on creation.
func (o *Operation) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return fmt.Errorf("operation name is required: %w", ErrInvalidInput)
	}
	if !o.Type.Valid() {
		return fmt.Errorf("operation type %q must be one of OPP, VEFA, AMO, MANDAT: %w", o.Type, ErrInvalidInput)
	}
	if o.BudgetInitial != nil && o.BudgetInitial.IsNegative() {
		return fmt.Errorf("initial budget cannot be negative: %w", ErrInvalidInput)
	}
	if o.StartDate != nil && o.PlannedEndDate != nil && o.PlannedEndDate.Before(*o.StartDate) {
		return fmt.Errorf("planned end date precedes start date: %w", ErrInvalidInput)
	}
	return nil
}

// Initial returns the initial budget, zero when undefined.
func (o *Operation) Initial() decimal.Decimal {
	return CoalesceDecimal(o.BudgetInitial)
}

// EffectiveBudget returns final, else revised, else initial.
func (o *Operation) EffectiveBudget() decimal.Decimal {
	return CoalesceDecimal(o.BudgetFinal, o.BudgetRevised, o.BudgetInitial)
}

// Overrun returns the overrun of the effective budget over the initial one,
// as a percentage and as an amount. ok is false when the initial budget is
// undefined or not positive, in which case nothing can be assessed.
func (o *Operation) Overrun() (pct decimal.Decimal, delta decimal.Decimal, ok bool) {
	initial := o.Initial()
	if !initial.IsPositive() {
		return decimal.Zero, decimal.Zero, false
	}
	delta = o.EffectiveBudget().Sub(initial)
	return delta.Div(initial).Mul(hundred), delta, true
}

// ApplyBudget records amount as the budget of the given kind.
func (o *Operation) ApplyBudget(kind BudgetKind, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("budget amount cannot be negative: %w", ErrInvalidInput)
	}
	a := amount
	switch kind {
	case BudgetInitial:
		o.BudgetInitial = &a
	case BudgetRevised:
		o.BudgetRevised = &a
	case BudgetFinal:
		o.BudgetFinal = &a
	default:
		return fmt.Errorf("budget kind %q must be initial, revised or final: %w", kind, ErrInvalidInput)
	}
	return nil
}

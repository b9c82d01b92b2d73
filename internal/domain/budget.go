package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type BudgetEntry struct {
	ID            string
	OperationID   string
	Kind          BudgetKind
	Amount        decimal.Decimal
	Date          time.Time
	Justification string
	CreatedAt     time.Time
}

func (b *BudgetEntry) Validate() error {
	if !b.Kind.Valid() {
		return fmt.Errorf("budget kind %q must be initial, revised or final: %w", b.Kind, ErrInvalidInput)
	}
	if b.Amount.IsNegative() {
		return fmt.Errorf("budget amount cannot be negative: %w", ErrInvalidInput)
	}
	return nil
}

// REMEntry is a periodic supplementary financial amount recorded against an operation.
type REMEntry struct {
	ID          string
	OperationID string
	Period      REMPeriod
	Year        int
	Index       int // quarter 1-4 or half 1-2
	Amount      decimal.Decimal
	BudgetPct   decimal.Decimal
	Kind        string
	Comment     string
	CreatedAt   time.Time
}

func (r *REMEntry) Validate() error {
	limit := r.Period.MaxIndex()
	if limit == 0 {
		return fmt.Errorf("REM period %q must be quarter or half: %w", r.Period, ErrInvalidInput)
	}
	if r.Index < 1 || r.Index > limit {
		return fmt.Errorf("REM %s index %d must be between 1 and %d: %w", r.Period, r.Index, limit, ErrInvalidInput)
	}
	if r.Year < 1900 || r.Year > 2200 {
		return fmt.Errorf("REM year %d is out of range: %w", r.Year, ErrInvalidInput)
	}
	if r.Amount.IsNegative() {
		return fmt.Errorf("REM amount cannot be negative: %w", ErrInvalidInput)
	}
	return nil
}

// ComputeBudgetPct sets BudgetPct to the amount as a share of initial.
// An undefined initial budget yields zero.
func (r *REMEntry) ComputeBudgetPct(initial decimal.Decimal) {
	if !initial.IsPositive() {
		r.BudgetPct = decimal.Zero
		return
	}
	r.BudgetPct = r.Amount.Div(initial).Mul(hundred).Round(2)
}

// Label renders the period as e.g. "2025 Q3" or "2025 H1".
func (r *REMEntry) Label() string {
	if r.Period == PeriodHalf {
		return fmt.Sprintf("%d H%d", r.Year, r.Index)
	}
	return fmt.Sprintf("%d Q%d", r.Year, r.Index)
}

// RiskSnapshot is one persisted risk score computation.
type RiskSnapshot struct {
	ID          string
	OperationID string
	Score       int
	Level       RiskLevel
	ComputedAt  time.Time
}

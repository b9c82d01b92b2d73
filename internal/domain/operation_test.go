package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestOperationValidate(t *testing.T) {
	ok := &Operation{Name: "Residence Les Palmiers", Type: OperationOPP}
	assert.NoError(t, ok.Validate())

	noName := &Operation{Name: "  ", Type: OperationOPP}
	assert.ErrorIs(t, noName.Validate(), ErrInvalidInput)

	badType := &Operation{Name: "X", Type: "HOUSING"}
	err := badType.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "HOUSING")

	negative := &Operation{Name: "X", Type: OperationVEFA, BudgetInitial: dec(-1)}
	assert.ErrorIs(t, negative.Validate(), ErrInvalidInput)
}

func TestEffectiveBudget_Priority(t *testing.T) {
	op := &Operation{BudgetInitial: dec(100)}
	assert.True(t, op.EffectiveBudget().Equal(decimal.NewFromInt(100)))

	op.BudgetRevised = dec(120)
	assert.True(t, op.EffectiveBudget().Equal(decimal.NewFromInt(120)))

	op.BudgetFinal = dec(110)
	assert.True(t, op.EffectiveBudget().Equal(decimal.NewFromInt(110)))
}

func TestOverrun(t *testing.T) {
	op := &Operation{BudgetInitial: dec(100000), BudgetFinal: dec(130000)}
	pct, delta, ok := op.Overrun()
	require.True(t, ok)
	assert.True(t, pct.Equal(decimal.NewFromInt(30)), "pct=%s", pct)
	assert.True(t, delta.Equal(decimal.NewFromInt(30000)))

	undefined := &Operation{}
	_, _, ok = undefined.Overrun()
	assert.False(t, ok)

	zero := &Operation{BudgetInitial: dec(0), BudgetRevised: dec(50)}
	_, _, ok = zero.Overrun()
	assert.False(t, ok)
}

func TestApplyBudget(t *testing.T) {
	op := &Operation{}
	require.NoError(t, op.ApplyBudget(BudgetRevised, decimal.NewFromInt(5)))
	require.NotNil(t, op.BudgetRevised)
	assert.Nil(t, op.BudgetInitial)

	assert.ErrorIs(t, op.ApplyBudget("bogus", decimal.NewFromInt(5)), ErrInvalidInput)
	assert.ErrorIs(t, op.ApplyBudget(BudgetFinal, decimal.NewFromInt(-5)), ErrInvalidInput)
}

func TestOperationStatus_IsManual(t *testing.T) {
	assert.True(t, StatusOnHold.IsManual())
	assert.True(t, StatusCancelled.IsManual())
	assert.False(t, StatusActive.IsManual())
	assert.False(t, StatusBlocked.IsManual())
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
	assert.Equal(t, 0, Severity("urgent").Rank())
	assert.False(t, Severity("urgent").Valid())
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2025, 3, 4, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), DateOnly(in))
}

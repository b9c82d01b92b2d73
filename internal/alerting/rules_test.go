package alerting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/spic/internal/domain"
)

func snap(late, blocked int, overrun string) Snapshot {
	s := Snapshot{OperationID: "op-1", OperationName: "Les Jardins", LatePhases: late, BlockedPhases: blocked}
	if overrun != "" {
		s.OverrunPct = decimal.RequireFromString(overrun)
		s.BudgetAssessable = true
	}
	return s
}

func TestEvaluate_NothingFires(t *testing.T) {
	assert.Empty(t, Evaluate(snap(0, 0, "10"), DefaultThresholds()))
	assert.Empty(t, Evaluate(snap(0, 0, ""), DefaultThresholds()))
}

func TestEvaluate_DelayRule(t *testing.T) {
	th := DefaultThresholds()

	c := Evaluate(snap(3, 0, ""), th)
	require.Len(t, c, 1)
	assert.Equal(t, domain.AlertDelay, c[0].Type)
	assert.Equal(t, domain.SeverityHigh, c[0].Severity)
	assert.Equal(t, "Delays detected - Les Jardins", c[0].Title)
	assert.Equal(t, "3 phase(s) late", c[0].Description)

	c = Evaluate(snap(4, 0, ""), th)
	require.Len(t, c, 1)
	assert.Equal(t, domain.SeverityCritical, c[0].Severity)
}

func TestEvaluate_BudgetRule(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		overrun string
		fires   bool
		sev     domain.Severity
	}{
		{"10", false, ""},
		{"10.01", true, domain.SeverityHigh},
		{"20", true, domain.SeverityHigh},
		{"20.5", true, domain.SeverityCritical},
	}
	for _, tc := range cases {
		c := Evaluate(snap(0, 0, tc.overrun), th)
		if !tc.fires {
			assert.Empty(t, c, "overrun=%s", tc.overrun)
			continue
		}
		require.Len(t, c, 1, "overrun=%s", tc.overrun)
		assert.Equal(t, domain.AlertBudget, c[0].Type)
		assert.Equal(t, tc.sev, c[0].Severity, "overrun=%s", tc.overrun)
	}

	c := Evaluate(snap(0, 0, "30"), th)
	assert.Equal(t, "Overrun of 30.0%", c[0].Description)
}

func TestEvaluate_BlockingRule(t *testing.T) {
	th := DefaultThresholds()

	c := Evaluate(snap(0, 2, ""), th)
	require.Len(t, c, 1)
	assert.Equal(t, domain.AlertTechnical, c[0].Type)
	assert.Equal(t, domain.SeverityHigh, c[0].Severity)

	c = Evaluate(snap(0, 3, ""), th)
	assert.Equal(t, domain.SeverityCritical, c[0].Severity)
}

func TestEvaluate_AllRulesInOrder(t *testing.T) {
	c := Evaluate(snap(1, 1, "50"), DefaultThresholds())
	require.Len(t, c, 3)
	assert.Equal(t, domain.AlertDelay, c[0].Type)
	assert.Equal(t, domain.AlertBudget, c[1].Type)
	assert.Equal(t, domain.AlertTechnical, c[2].Type)
}

func TestSnapshotOf(t *testing.T) {
	initial := decimal.NewFromInt(1000)
	final := decimal.NewFromInt(1150)
	op := &domain.Operation{ID: "op-9", Name: "Quai Ouest", BudgetInitial: &initial, BudgetFinal: &final}
	s := SnapshotOf(op, domain.PhaseCounts{Total: 5, Late: 2, Blocked: 1})

	assert.True(t, s.BudgetAssessable)
	assert.True(t, s.OverrunPct.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, 2, s.LatePhases)
	assert.Equal(t, 1, s.BlockedPhases)

	s = SnapshotOf(&domain.Operation{ID: "op-0"}, domain.PhaseCounts{})
	assert.False(t, s.BudgetAssessable)
}

func TestDedupKey(t *testing.T) {
	assert.Equal(t, "op-1/delay", DedupKey("op-1", domain.AlertDelay))
	assert.NotEqual(t, DedupKey("op-1", domain.AlertDelay), DedupKey("op-1", domain.AlertBudget))
}

func TestThresholdsValidate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())

	th := DefaultThresholds()
	th.BudgetCriticalPct = 5
	err := th.Validate()
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "below budget_alert_pct")
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestDaysOverdue(t *testing.T) {
	cases := []struct {
		name    string
		phase   Phase
		days    int
		overdue bool
	}{
		{"no planned end", Phase{Status: PhaseInProgress}, 0, false},
		{"done never overdue", Phase{Status: PhaseDone, PlannedEnd: day(2025, 1, 1)}, 0, false},
		{"due today", Phase{Status: PhaseInProgress, PlannedEnd: day(2025, 6, 15)}, 0, false},
		{"one day late", Phase{Status: PhaseNotStarted, PlannedEnd: day(2025, 6, 14)}, 1, true},
		{"thirty days late", Phase{Status: PhaseBlocked, PlannedEnd: day(2025, 5, 16)}, 30, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, late := tc.phase.DaysOverdue(testNow)
			assert.Equal(t, tc.overdue, late)
			assert.Equal(t, tc.days, d)
		})
	}
}

func TestPhaseApply_DerivesActualDays(t *testing.T) {
	p := &Phase{Status: PhaseNotStarted, ActualStart: day(2025, 1, 1)}
	done := PhaseDone
	pct := 100
	require.NoError(t, p.Apply(PhaseUpdate{Status: &done, ProgressPct: &pct, ActualEnd: day(2025, 1, 31)}, testNow))

	require.NotNil(t, p.ActualDays)
	assert.Equal(t, 30, *p.ActualDays)
	assert.Equal(t, PhaseDone, p.Status)
	assert.Equal(t, testNow, p.UpdatedAt)
}

func TestPhaseApply_Rejects(t *testing.T) {
	p := &Phase{Status: PhaseNotStarted, ProgressPct: 10}

	over := 101
	assert.ErrorIs(t, p.Apply(PhaseUpdate{ProgressPct: &over}, testNow), ErrInvalidInput)

	bogus := PhaseStatus("paused")
	assert.ErrorIs(t, p.Apply(PhaseUpdate{Status: &bogus}, testNow), ErrInvalidInput)

	assert.ErrorIs(t, p.Apply(PhaseUpdate{ActualStart: day(2025, 2, 1), ActualEnd: day(2025, 1, 1)}, testNow), ErrInvalidInput)

	assert.Equal(t, PhaseNotStarted, p.Status)
	assert.Equal(t, 10, p.ProgressPct)
	assert.Nil(t, p.ActualStart)
}

func TestPhasePlan_DefaultsEndFromDuration(t *testing.T) {
	p := &Phase{PlannedDays: 30}
	require.NoError(t, p.Plan(*day(2025, 1, 1), nil, testNow))
	assert.Equal(t, *day(2025, 1, 31), *p.PlannedEnd)

	assert.ErrorIs(t, p.Plan(*day(2025, 1, 10), day(2025, 1, 1), testNow), ErrInvalidInput)
}

func TestCountPhases(t *testing.T) {
	phases := []*Phase{
		{Status: PhaseDone, PlannedEnd: day(2025, 1, 1)},
		{Status: PhaseInProgress, PlannedEnd: day(2025, 6, 1)},
		{Status: PhaseLate},
		{Status: PhaseBlocked, PlannedEnd: day(2025, 7, 1)},
		{Status: PhaseNotStarted},
	}
	c := CountPhases(phases, testNow)
	assert.Equal(t, PhaseCounts{Total: 5, Done: 1, InProgress: 2, Blocked: 1, Late: 1}, c)
}

func TestAlertResolve(t *testing.T) {
	a := &Alert{ID: "a1", Active: true}
	require.NoError(t, a.Resolve("jdupont", testNow))
	assert.False(t, a.Active)
	assert.Equal(t, "jdupont", a.ResolvedBy)
	require.NotNil(t, a.ResolvedAt)

	assert.ErrorIs(t, a.Resolve("jdupont", testNow), ErrInvalidState)
}

func TestREMEntry(t *testing.T) {
	r := &REMEntry{Period: PeriodQuarter, Year: 2025, Index: 5}
	assert.ErrorIs(t, r.Validate(), ErrInvalidInput)

	r.Index = 3
	require.NoError(t, r.Validate())
	assert.Equal(t, "2025 Q3", r.Label())

	h := &REMEntry{Period: PeriodHalf, Year: 2025, Index: 3}
	assert.ErrorIs(t, h.Validate(), ErrInvalidInput)
}

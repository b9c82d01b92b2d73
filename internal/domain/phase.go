package domain

import (
	"fmt"
	"time"
)

type Phase struct {
	ID          string
	OperationID string
	CatalogID   int
	Name        string
	Order       int
	IsPrimary   bool

	// Planning
	PlannedDays  int
	PlannedStart *time.Time
	PlannedEnd   *time.Time

	// Execution
	ActualStart *time.Time
	ActualEnd   *time.Time
	ActualDays  *int
	Status      PhaseStatus
	ProgressPct int
	Comment     string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DaysOverdue returns how many whole days past its planned end the phase is,
// measured against today. Phases that are done or have no planned end are
// never overdue.
func (p *Phase) DaysOverdue(today time.Time) (int, bool) {
	if p.PlannedEnd == nil || p.Status == PhaseDone {
		return 0, false
	}
	end := DateOnly(*p.PlannedEnd)
	day := DateOnly(today)
	if !end.Before(day) {
		return 0, false
	}
	return int(day.Sub(end).Hours() / 24), true
}

// PhaseUpdate carries the mutable execution fields of a phase. Nil fields are left unchanged.
type PhaseUpdate struct {
	Status      *PhaseStatus
	ProgressPct *int
	ActualStart *time.Time
	ActualEnd   *time.Time
	Comment     *string
}

// Apply validates u and applies it to the phase.
func (p *Phase) Apply(u PhaseUpdate, now time.Time) error {
	if u.Status != nil && !u.Status.Valid() {
		return fmt.Errorf("phase status %q is not recognised: %w", *u.Status, ErrInvalidInput)
	}
	if u.ProgressPct != nil && (*u.ProgressPct < 0 || *u.ProgressPct > 100) {
		return fmt.Errorf("progress %d must be between 0 and 100: %w", *u.ProgressPct, ErrInvalidInput)
	}
	start := p.ActualStart
	if u.ActualStart != nil {
		start = u.ActualStart
	}
	end := p.ActualEnd
	if u.ActualEnd != nil {
		end = u.ActualEnd
	}
	if start != nil && end != nil && DateOnly(*end).Before(DateOnly(*start)) {
		return fmt.Errorf("actual end precedes actual start: %w", ErrInvalidInput)
	}

	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.ProgressPct != nil {
		p.ProgressPct = *u.ProgressPct
	}
	if u.Comment != nil {
		p.Comment = *u.Comment
	}
	p.ActualStart = start
	p.ActualEnd = end
	if start != nil && end != nil {
		days := int(DateOnly(*end).Sub(DateOnly(*start)).Hours() / 24)
		p.ActualDays = &days
	}
	p.UpdatedAt = now
	return nil
}

// Plan sets the planned window. A nil end is derived from start plus PlannedDays.
func (p *Phase) Plan(start time.Time, end *time.Time, now time.Time) error {
	s := DateOnly(start)
	var e time.Time
	if end != nil {
		e = DateOnly(*end)
		if e.Before(s) {
			return fmt.Errorf("planned end precedes planned start: %w", ErrInvalidInput)
		}
	} else {
		e = s.AddDate(0, 0, p.PlannedDays)
	}
	p.PlannedStart = &s
	p.PlannedEnd = &e
	p.UpdatedAt = now
	return nil
}

// PhaseCounts aggregates phase statuses for one operation.
type PhaseCounts struct {
	Total      int
	Done       int
	InProgress int
	Blocked    int
	Late       int
}

// CountPhases aggregates stored statuses. Late counts phases past their
// planned end as of today, independent of stored status.
func CountPhases(phases []*Phase, today time.Time) PhaseCounts {
	var c PhaseCounts
	for _, p := range phases {
		c.Total++
		switch p.Status {
		case PhaseDone:
			c.Done++
		case PhaseInProgress, PhaseLate:
			c.InProgress++
		case PhaseBlocked:
			c.Blocked++
		}
		if _, late := p.DaysOverdue(today); late {
			c.Late++
		}
	}
	return c
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PhaseTransition records one change of a phase's status.
type PhaseTransition struct {
	ID          string
	OperationID string
	PhaseID     string
	From        PhaseStatus
	To          PhaseStatus
	ChangedAt   time.Time
}

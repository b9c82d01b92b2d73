package domain

import (
	"fmt"
	"time"
)

type Alert struct {
	ID          string
	OperationID string
	PhaseID     *string
	Type        AlertType
	Severity    Severity
	Title       string
	Description string
	Params      map[string]any
	Source      AlertSource
	Active      bool
	CreatedAt   time.Time
	ResolvedAt  *time.Time
	ResolvedBy  string
}

// Validate checks a manually raised alert before it is stored.
func (a *Alert) Validate() error {
	if a.OperationID == "" {
		return fmt.Errorf("alert operation is required: %w", ErrInvalidInput)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("alert type %q is not recognised: %w", a.Type, ErrInvalidInput)
	}
	if !a.Severity.Valid() {
		return fmt.Errorf("alert severity %q is not recognised: %w", a.Severity, ErrInvalidInput)
	}
	if a.Title == "" {
		return fmt.Errorf("alert title is required: %w", ErrInvalidInput)
	}
	return nil
}

// Resolve deactivates the alert, stamping who resolved it and when.
func (a *Alert) Resolve(by string, now time.Time) error {
	if !a.Active {
		return fmt.Errorf("alert %s is already resolved: %w", a.ID, ErrInvalidState)
	}
	if by == "" {
		return fmt.Errorf("resolver is required: %w", ErrInvalidInput)
	}
	a.Active = false
	a.ResolvedAt = &now
	a.ResolvedBy = by
	return nil
}

// Ref returns the lightweight reference reported to callers.
func (a *Alert) Ref() AlertRef {
	return AlertRef{ID: a.ID, OperationID: a.OperationID, Type: a.Type, Severity: a.Severity}
}

type AlertRef struct {
	ID          string
	OperationID string
	Type        AlertType
	Severity    Severity
}

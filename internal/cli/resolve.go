package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/repository"
)

const dateLayout = "2006-01-02"

// resolveOperationID resolves an operation identifier which can be:
//   - A full UUID
//   - A unique UUID prefix
//   - An exact operation name (case-insensitive)
func resolveOperationID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("operation ID is required")
	}

	ops, err := app.Operations.List(ctx, repository.OperationFilter{})
	if err != nil {
		return "", err
	}

	// 1. Exact UUID match
	for _, o := range ops {
		if o.ID == input {
			return o.ID, nil
		}
	}

	// 2. UUID prefix match
	var matches []string
	for _, o := range ops {
		if strings.HasPrefix(o.ID, input) {
			matches = append(matches, o.ID)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
	default:
		return "", fmt.Errorf("operation ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}

	// 3. Name match
	for _, o := range ops {
		if strings.EqualFold(o.Name, input) {
			return o.ID, nil
		}
	}
	return "", fmt.Errorf("operation not found: %q", input)
}

// resolvePhase finds a phase of an operation by its catalog order.
func resolvePhase(ctx context.Context, app *App, opInput, orderInput string) (*domain.Phase, error) {
	opID, err := resolveOperationID(ctx, app, opInput)
	if err != nil {
		return nil, err
	}
	order, err := strconv.Atoi(orderInput)
	if err != nil || order < 1 {
		return nil, fmt.Errorf("invalid phase order %q: must be a positive number", orderInput)
	}
	phases, err := app.Phases.ListByOperation(ctx, opID)
	if err != nil {
		return nil, err
	}
	for _, p := range phases {
		if p.Order == order {
			return p, nil
		}
	}
	return nil, fmt.Errorf("operation has no phase #%d (%d phases)", order, len(phases))
}

// resolveAlertID matches a full alert ID or a unique prefix among active alerts.
func resolveAlertID(ctx context.Context, app *App, input string) (string, error) {
	alerts, err := app.Alerts.ListActive(ctx, "")
	if err != nil {
		return "", err
	}
	var matches []string
	for _, a := range alerts {
		if a.ID == input {
			return a.ID, nil
		}
		if strings.HasPrefix(a.ID, input) {
			matches = append(matches, a.ID)
		}
	}
	switch len(matches) {
	case 0:
		// Resolved alerts are not listed; let the service report the state.
		return input, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("alert ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: use YYYY-MM-DD format", s)
	}
	return &t, nil
}

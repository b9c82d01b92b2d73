// Package status derives an operation's status from its phase aggregate.
package status

import (
	"fmt"

	"github.com/alexanderramin/spic/internal/domain"
)

// Derive maps phase counts to blocked, done, active or preparing. First match
// wins. on_hold and cancelled are never derived.
func Derive(c domain.PhaseCounts) domain.OperationStatus {
	switch {
	case c.Blocked > 0:
		return domain.StatusBlocked
	case c.Total > 0 && c.Done == c.Total:
		return domain.StatusDone
	case c.InProgress > 0 || c.Done > 0:
		return domain.StatusActive
	}
	return domain.StatusPreparing
}

// Normalize clamps counts that violate 0 <= done, inProgress, blocked <= total.
// It returns the clamped counts and one message per correction.
func Normalize(c domain.PhaseCounts) (domain.PhaseCounts, []string) {
	var anomalies []string
	fix := func(name string, v *int, upper int) {
		if *v < 0 {
			anomalies = append(anomalies, fmt.Sprintf("%s count %d is negative", name, *v))
			*v = 0
		}
		if *v > upper {
			anomalies = append(anomalies, fmt.Sprintf("%s count %d exceeds total %d", name, *v, upper))
			*v = upper
		}
	}
	out := c
	if out.Total < 0 {
		anomalies = append(anomalies, fmt.Sprintf("total count %d is negative", out.Total))
		out.Total = 0
	}
	fix("done", &out.Done, out.Total)
	fix("in-progress", &out.InProgress, out.Total)
	fix("blocked", &out.Blocked, out.Total)
	fix("late", &out.Late, out.Total)
	return out, anomalies
}

// Decision is the outcome of deciding an operation's next status.
type Decision struct {
	Current   domain.OperationStatus
	Next      domain.OperationStatus
	Derived   domain.OperationStatus
	Protected bool
	Anomalies []string
}

func (d Decision) Changed() bool { return d.Next != d.Current }

// Decide derives a status for current. With protectManual set, on_hold and
// cancelled are kept as they are; without it the derived status overwrites them.
func Decide(current domain.OperationStatus, counts domain.PhaseCounts, protectManual bool) Decision {
	clean, anomalies := Normalize(counts)
	derived := Derive(clean)
	d := Decision{Current: current, Next: derived, Derived: derived, Anomalies: anomalies}
	if protectManual && current.IsManual() {
		d.Next = current
		d.Protected = true
	}
	return d
}

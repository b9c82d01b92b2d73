package formatter

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/spic/internal/domain"
)

const dateLayout = "2006-01-02"

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// Date renders a date as YYYY-MM-DD, or a dim "--" when unset.
func Date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return Dim("--")
	}
	return t.Format(dateLayout)
}

// Money renders an amount with space-grouped thousands and two decimals,
// e.g. "1 250 000.00 €".
func Money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac + " €"
}

// OptionalMoney renders a nullable amount, or a dim "--".
func OptionalMoney(d *decimal.Decimal) string {
	if d == nil {
		return Dim("--")
	}
	return Money(*d)
}

// StatusPill returns a colored indicator for an operation status.
func StatusPill(status domain.OperationStatus) string {
	switch status {
	case domain.StatusPreparing:
		return StyleBlue.Render("○ Preparing")
	case domain.StatusActive:
		return StyleGreen.Render("● Active")
	case domain.StatusOnHold:
		return StyleYellow.Render("‖ On hold")
	case domain.StatusBlocked:
		return StyleRed.Render("■ Blocked")
	case domain.StatusDone:
		return StyleDim.Render("✔ Done")
	case domain.StatusCancelled:
		return StyleDim.Render("✖ Cancelled")
	default:
		return StyleDim.Render(string(status))
	}
}

// PhaseStatusPill returns a colored indicator for a phase status.
func PhaseStatusPill(status domain.PhaseStatus) string {
	switch status {
	case domain.PhaseNotStarted:
		return StyleDim.Render("○ Not started")
	case domain.PhaseInProgress:
		return StyleGreen.Render("● In progress")
	case domain.PhaseDone:
		return StyleDim.Render("✔ Done")
	case domain.PhaseLate:
		return StyleOrange.Render("◷ Late")
	case domain.PhaseBlocked:
		return StyleRed.Render("■ Blocked")
	default:
		return StyleDim.Render(string(status))
	}
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

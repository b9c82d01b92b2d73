package formatter

import (
	"strings"

	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/service"
)

// FormatBudgetHistory renders budget entries in recorded order.
func FormatBudgetHistory(entries []*domain.BudgetEntry) string {
	headers := []string{"DATE", "KIND", "AMOUNT", "JUSTIFICATION"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		just := e.Justification
		if just == "" {
			just = Dim("--")
		}
		rows = append(rows, []string{
			e.Date.Format(dateLayout),
			string(e.Kind),
			Money(e.Amount),
			just,
		})
	}
	return RenderTable(headers, rows)
}

// FormatREMList renders REM entries with their share of the initial budget.
func FormatREMList(views []service.REMView) string {
	headers := []string{"PERIOD", "AMOUNT", "SHARE", "LEVEL", "KIND", "COMMENT"}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			v.Entry.Label(),
			Money(v.Entry.Amount),
			SeverityColor(v.Level).Render(v.Entry.BudgetPct.StringFixed(2) + "%"),
			SeverityBadge(v.Level),
			orDash(v.Entry.Kind),
			orDash(strings.TrimSpace(v.Entry.Comment)),
		})
	}
	return RenderTable(headers, rows)
}

func orDash(s string) string {
	if s == "" {
		return Dim("--")
	}
	return s
}

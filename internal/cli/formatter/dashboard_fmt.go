package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/service"
)

// FormatDashboard renders portfolio counts, risk distribution and budgets.
func FormatDashboard(d *service.Dashboard) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s operation(s), average risk %s\n\n",
		Bold(fmt.Sprintf("%d", d.Operations)), Bold(fmt.Sprintf("%.1f", d.AverageRisk))))

	b.WriteString(Header("By status") + "\n")
	for _, st := range domain.OperationStatuses {
		b.WriteString(fmt.Sprintf("  %-16s %d\n", StatusPill(st), d.ByStatus[st]))
	}

	b.WriteString("\n" + Header("By type") + "\n")
	for _, t := range domain.OperationTypes {
		b.WriteString(fmt.Sprintf("  %-8s %d\n", StylePurple.Render(string(t)), d.ByType[t]))
	}

	b.WriteString("\n" + Header("Risk levels") + "\n")
	for _, lv := range domain.RiskLevels {
		b.WriteString(fmt.Sprintf("  %-14s %d\n", RiskIndicator(lv), d.ByRiskLevel[lv]))
	}

	b.WriteString("\n" + Header("Active alerts") + "\n")
	for _, sev := range domain.Severities {
		b.WriteString(fmt.Sprintf("  %-14s %d\n", SeverityBadge(sev), d.AlertsByLevel[sev]))
	}

	b.WriteString("\n" + Header("Budget") + "\n")
	b.WriteString(fmt.Sprintf("  %s %s\n", Dim("initial"), Money(d.BudgetInitial)))
	b.WriteString(fmt.Sprintf("  %s %s\n", Dim("current"), Money(d.BudgetCurrent)))
	if delta := d.BudgetCurrent.Sub(d.BudgetInitial); !delta.IsZero() {
		style := StyleGreen
		if delta.IsPositive() {
			style = StyleRed
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", Dim("delta  "), style.Render(Money(delta))))
	}

	return RenderBox("Dashboard", b.String())
}

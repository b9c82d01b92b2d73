package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/risk"
)

const scoreBarWidth = 10

// FormatOperationList renders operations as a table with their risk level.
func FormatOperationList(ops []*domain.Operation, bands risk.Bands) string {
	headers := []string{"ID", "NAME", "TYPE", "STATUS", "RISK", "LEVEL", "BUDGET"}
	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		level := bands.LevelFor(op.RiskScore)
		rows = append(rows, []string{
			TruncID(op.ID),
			Bold(op.Name),
			StylePurple.Render(string(op.Type)),
			StatusPill(op.Status),
			Score(op.RiskScore, level),
			RiskIndicator(level),
			Money(op.EffectiveBudget()),
		})
	}
	return RenderTable(headers, rows)
}

// OperationDetail is everything `operation show` renders.
type OperationDetail struct {
	Operation *domain.Operation
	Level     domain.RiskLevel
	Phases    []*domain.Phase
	Progress  risk.ProgressSummary
	Alerts    []*domain.Alert
	Today     time.Time
}

// FormatOperationDetail renders an operation card followed by its phases.
func FormatOperationDetail(d OperationDetail) string {
	op := d.Operation
	var b strings.Builder

	field := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s %s\n", Dim(fmt.Sprintf("%-14s", label)), value))
	}
	field("ID", op.ID)
	field("Type", string(op.Type))
	field("Status", StatusPill(op.Status))
	field("Risk", RenderRiskBar(op.RiskScore, d.Level, scoreBarWidth)+" "+RiskIndicator(d.Level))
	if op.Owner != "" {
		field("Owner", op.Owner)
	}
	if op.Address != "" {
		field("Address", op.Address)
	}
	field("Start", Date(op.StartDate))
	field("Planned end", Date(op.PlannedEndDate))
	field("Budget", fmt.Sprintf("%s initial, %s revised, %s final",
		OptionalMoney(op.BudgetInitial), OptionalMoney(op.BudgetRevised), OptionalMoney(op.BudgetFinal)))
	if pct, delta, ok := op.Overrun(); ok && !delta.IsZero() {
		style := StyleGreen
		if delta.IsPositive() {
			style = StyleRed
		}
		field("Overrun", style.Render(fmt.Sprintf("%s%% (%s)", pct.StringFixed(1), Money(delta))))
	}

	p := d.Progress
	field("Progress", fmt.Sprintf("%s  %d/%d done, %d in progress, %d late",
		RenderProgress(p.WeightedPct/100, scoreBarWidth), p.Done, p.Total, p.InProgress, p.Late))
	if len(d.Alerts) > 0 {
		field("Active alerts", StyleRed.Render(fmt.Sprintf("%d", len(d.Alerts))))
	}

	if len(d.Phases) > 0 {
		b.WriteString("\n")
		b.WriteString(Header("Phases") + "\n")
		b.WriteString(FormatPhaseList(d.Phases, d.Today))
	}

	return RenderBox(op.Name, b.String())
}

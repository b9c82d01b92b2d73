package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/spic/internal/repository"
	"github.com/alexanderramin/spic/internal/risk"
)

// FormatAnalysis renders a full risk breakdown with its recommendations.
func FormatAnalysis(name string, a *risk.Analysis, c risk.Criteria) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s\n\n", RenderRiskBar(a.ScoreTotal, a.Level, scoreBarWidth), RiskIndicator(a.Level)))

	d := a.Details
	budget := fmt.Sprintf("overrun %.1f%%", d.Budget.OverrunPct)
	if !d.Budget.Assessable {
		budget = StyleYellow.Render(d.Budget.Note)
	}
	headers := []string{"FACTOR", "WEIGHT", "SCORE", "DETAIL"}
	rows := [][]string{
		{"Delays", weight(c.Delay), sub(a.Subscores.Delay),
			fmt.Sprintf("%d phase(s) late, mean %.1f day(s)", d.Delay.Count, d.Delay.MeanDays)},
		{"Budget", weight(c.Budget), sub(a.Subscores.Budget), budget},
		{"Alerts", weight(c.Alerts), sub(a.Subscores.Alerts),
			fmt.Sprintf("%d active, weighted %d", d.Alerts.Count, d.Alerts.Weighted)},
		{"Blocking", weight(c.Blocking), sub(a.Subscores.Blocking),
			fmt.Sprintf("%d phase(s) blocked", d.Blocking.Count)},
		{"Progress", weight(c.Progress), sub(a.Subscores.Progress),
			fmt.Sprintf("mean %.1f%%, %d/%d done", d.Progress.MeanPct, d.Progress.Done, d.Progress.Total)},
	}
	b.WriteString(RenderTable(headers, rows))

	if len(d.Delay.Phases) > 0 {
		b.WriteString("\n" + Header("Late phases") + "\n")
		for _, p := range d.Delay.Phases {
			b.WriteString(fmt.Sprintf("  %d. %s %s\n", p.Order, p.Name, StyleRed.Render(fmt.Sprintf("+%dd", p.DaysLate))))
		}
	}

	if len(a.Recommendations) > 0 {
		b.WriteString("\n" + Header("Recommendations") + "\n")
		for _, r := range a.Recommendations {
			b.WriteString("  • " + r + "\n")
		}
	}

	return RenderBox("Risk - "+name, b.String())
}

func weight(c risk.Criterion) string { return fmt.Sprintf("%d%%", c.Weight) }

func sub(v int) string {
	switch {
	case v >= 75:
		return StyleRed.Render(fmt.Sprintf("%3d", v))
	case v >= 50:
		return StyleOrange.Render(fmt.Sprintf("%3d", v))
	case v > 0:
		return StyleYellow.Render(fmt.Sprintf("%3d", v))
	}
	return Dim(fmt.Sprintf("%3d", v))
}

// FormatTrend renders the direction and recent scores of an operation.
func FormatTrend(name string, t risk.Trend) string {
	var dir string
	switch t.Direction {
	case risk.TrendDegrading:
		dir = StyleRed.Render("↗ degrading")
	case risk.TrendImproving:
		dir = StyleGreen.Render("↘ improving")
	default:
		dir = StyleDim.Render("→ stable")
	}

	scores := make([]string, len(t.Scores))
	for i, s := range t.Scores {
		scores[i] = fmt.Sprintf("%d", s)
	}
	history := Dim("not enough history")
	if len(scores) > 0 {
		history = strings.Join(scores, " → ")
	}
	return fmt.Sprintf("%s  %s (%+d)\n%s %s\n", Bold(name), dir, t.Evolution, Dim("scores:"), history)
}

// FormatTopRisks renders the riskiest operations.
func FormatTopRisks(rows []repository.RiskRow, bands risk.Bands) string {
	headers := []string{"#", "NAME", "TYPE", "STATUS", "RISK", "ALERTS"}
	out := make([][]string, 0, len(rows))
	for i, r := range rows {
		level := bands.LevelFor(r.Operation.RiskScore)
		out = append(out, []string{
			fmt.Sprintf("%d", i+1),
			Bold(r.Operation.Name),
			StylePurple.Render(string(r.Operation.Type)),
			StatusPill(r.Operation.Status),
			RenderRiskBar(r.Operation.RiskScore, level, scoreBarWidth),
			fmt.Sprintf("%d", r.ActiveAlerts),
		})
	}
	return RenderTable(headers, out)
}

package formatter

import (
	"fmt"
	"time"

	"github.com/alexanderramin/spic/internal/domain"
)

const phaseBarWidth = 8

// FormatPhaseList renders phases in catalog order. Phases past their planned
// end on today are flagged with the days overdue.
func FormatPhaseList(phases []*domain.Phase, today time.Time) string {
	headers := []string{"#", "PHASE", "STATUS", "PROGRESS", "PLANNED END", "ID"}
	rows := make([][]string, 0, len(phases))
	for _, p := range phases {
		name := p.Name
		if p.IsPrimary {
			name = Bold(name) + StylePurple.Render(" ★")
		}
		end := Date(p.PlannedEnd)
		if days, late := p.DaysOverdue(today); late {
			end += StyleRed.Render(fmt.Sprintf(" (+%dd)", days))
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.Order),
			name,
			PhaseStatusPill(p.Status),
			RenderPercent(p.ProgressPct, phaseBarWidth),
			end,
			TruncID(p.ID),
		})
	}
	return RenderTable(headers, rows)
}

package formatter

import (
	"fmt"

	"github.com/alexanderramin/spic/internal/catalog"
)

// FormatCatalog renders the phase templates of one operation type.
func FormatCatalog(templates []catalog.PhaseTemplate) string {
	headers := []string{"#", "PHASE", "STAGE", "DAYS", "PRIMARY"}
	rows := make([][]string, 0, len(templates))
	for _, t := range templates {
		primary := ""
		if t.Primary {
			primary = StylePurple.Render("★")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", t.Order),
			t.Name,
			Dim(t.Stage),
			fmt.Sprintf("%d-%d", t.MinDays, t.MaxDays),
			primary,
		})
	}
	return RenderTable(headers, rows)
}

package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/service"
)

// FormatAlertList renders active alerts, newest first as given.
func FormatAlertList(alerts []*domain.Alert) string {
	headers := []string{"ID", "SEVERITY", "TYPE", "TITLE", "SOURCE", "RAISED"}
	rows := make([][]string, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, []string{
			TruncID(a.ID),
			SeverityBadge(a.Severity),
			string(a.Type),
			a.Title,
			Dim(string(a.Source)),
			a.CreatedAt.Format(dateLayout),
		})
	}
	return RenderTable(headers, rows)
}

// FormatGenerateResult summarizes an alert generation run.
func FormatGenerateResult(res *service.GenerateResult) string {
	var b strings.Builder
	if len(res.Created) == 0 {
		b.WriteString(Dim("No new alerts.") + "\n")
	} else {
		b.WriteString(fmt.Sprintf("Created %d alert(s):\n", len(res.Created)))
		for _, ref := range res.Created {
			b.WriteString(fmt.Sprintf("  %s %s %s on %s\n",
				SeverityBadge(ref.Severity), ref.Type, TruncID(ref.ID), TruncID(ref.OperationID)))
		}
	}
	b.WriteString(formatFailures(res.Failures))
	return b.String()
}

// FormatBatchResult summarizes a batch run over all operations.
func FormatBatchResult(label string, res *service.BatchResult) string {
	return fmt.Sprintf("%s: %d operation(s) processed\n", label, res.Count) + formatFailures(res.Failures)
}

func formatFailures(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(StyleYellow.Render(fmt.Sprintf("%d operation(s) failed:", len(ids))) + "\n")
	for _, id := range ids {
		b.WriteString("  " + TruncID(id) + "\n")
	}
	return b.String()
}

package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/spic/internal/watch"
)

// FormatCycleReport summarizes one watch cycle.
func FormatCycleReport(rep watch.Report) string {
	var b strings.Builder
	state := StyleGreen.Render("ok")
	if !rep.OK() {
		state = StyleYellow.Render("partial")
	}
	if rep.Err != nil {
		state = StyleRed.Render("error")
	}
	b.WriteString(fmt.Sprintf("Cycle %s in %s\n", state, rep.Duration.Round(time.Millisecond)))
	b.WriteString(fmt.Sprintf("  statuses updated  %d\n", rep.Statuses))
	b.WriteString(fmt.Sprintf("  alerts created    %d\n", rep.AlertsCreated))
	b.WriteString(fmt.Sprintf("  scores persisted  %d\n", rep.Scores))
	if rep.Err != nil {
		b.WriteString(StyleRed.Render("  "+rep.Err.Error()) + "\n")
	}
	b.WriteString(formatFailures(rep.Failures))
	return b.String()
}

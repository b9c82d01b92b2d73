package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/spic/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorOrange = lipgloss.Color("#fe8019")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = ColorOrange
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleOrange = lipgloss.NewStyle().Foreground(ColorOrange)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// RiskColor returns the style for a risk level.
func RiskColor(level domain.RiskLevel) lipgloss.Style {
	switch level {
	case domain.RiskCritical:
		return StyleRed
	case domain.RiskHigh:
		return StyleOrange
	case domain.RiskMedium:
		return StyleYellow
	case domain.RiskLow:
		return StyleGreen
	default:
		return StyleDim
	}
}

// RiskIndicator renders a colored level such as "● HIGH".
func RiskIndicator(level domain.RiskLevel) string {
	if level == "" {
		return StyleDim.Render("● UNKNOWN")
	}
	return RiskColor(level).Render("● " + strings.ToUpper(string(level)))
}

// SeverityColor returns the style for an alert or REM severity.
func SeverityColor(sev domain.Severity) lipgloss.Style {
	switch sev {
	case domain.SeverityCritical:
		return StyleRed
	case domain.SeverityHigh:
		return StyleOrange
	case domain.SeverityMedium:
		return StyleYellow
	case domain.SeverityLow:
		return StyleGreen
	default:
		return StyleDim
	}
}

// SeverityBadge renders a severity as "▲ CRITICAL".
func SeverityBadge(sev domain.Severity) string {
	return SeverityColor(sev).Render("▲ " + strings.ToUpper(string(sev)))
}

// Score renders a score out of 100 in its level's color.
func Score(score int, level domain.RiskLevel) string {
	return RiskColor(level).Render(fmt.Sprintf("%3d", score))
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

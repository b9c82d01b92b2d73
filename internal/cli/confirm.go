package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/spic/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var errAborted = errors.New("aborted")

// spicHuhTheme returns a huh theme using the formatter palette.
func spicHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	return t
}

func huhConfirm(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(spicHuhTheme()).WithShowHelp(false).Run()
	return ok, err
}

// confirmDestructive gates irreversible commands. --yes skips the prompt;
// without a terminal the command refuses to run.
func confirmDestructive(app *App, yes bool, title string) error {
	if yes {
		return nil
	}
	if !app.interactive() {
		return fmt.Errorf("refusing to continue without confirmation: pass --yes")
	}
	ask := app.Confirm
	if ask == nil {
		ask = huhConfirm
	}
	ok, err := ask(title)
	if err != nil {
		return err
	}
	if !ok {
		return errAborted
	}
	return nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/spic/internal/cli/formatter"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/spf13/cobra"
)

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summarize the portfolio by status, type, risk and alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.Portfolio.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDashboard(d))
			return nil
		},
	}
}

func newCatalogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the phase catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [type]",
		Short: "Show the phases instantiated for an operation type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			types := domain.OperationTypes
			if len(args) == 1 {
				types = []domain.OperationType{domain.OperationType(strings.ToUpper(args[0]))}
			}
			out := cmd.OutOrStdout()
			for i, t := range types {
				templates, err := app.Catalog.For(t)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s (%d phases)\n", formatter.Header(string(t)), len(templates))
				fmt.Fprint(out, formatter.FormatCatalog(templates))
			}
			return nil
		},
	})

	return cmd
}

package cli

import (
	"fmt"

	"github.com/alexanderramin/spic/internal/cli/formatter"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/service"
	"github.com/spf13/cobra"
)

func newBudgetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Record operation budgets",
	}

	cmd.AddCommand(
		newBudgetAddCmd(app),
		newBudgetHistoryCmd(app),
	)

	return cmd
}

func newBudgetAddCmd(app *App) *cobra.Command {
	var kind, amount, date, justification string

	cmd := &cobra.Command{
		Use:   "add <operation>",
		Short: "Record an initial, revised or final budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveOperationID(ctx, app, args[0])
			if err != nil {
				return err
			}
			value, err := service.ParseAmount(amount)
			if err != nil {
				return err
			}
			e := &domain.BudgetEntry{
				OperationID:   id,
				Kind:          domain.BudgetKind(kind),
				Amount:        value,
				Justification: justification,
			}
			d, err := parseDate(date)
			if err != nil {
				return err
			}
			if d != nil {
				e.Date = *d
			}

			op, err := app.Budget.Record(ctx, e)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Recorded %s budget %s\n", e.Kind, formatter.Money(e.Amount))
			if pct, delta, ok := op.Overrun(); ok {
				fmt.Fprintf(out, "Overrun %s%% (%s), risk %s\n", pct.StringFixed(1), formatter.Money(delta),
					formatter.Score(op.RiskScore, app.Thresholds.Levels.LevelFor(op.RiskScore)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "initial, revised or final (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. \"1 250 000\" (required)")
	cmd.Flags().StringVar(&date, "date", "", "effective date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&justification, "justification", "", "reason for the change")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newBudgetHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <operation>",
		Short: "Show the budget history of an operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveOperationID(ctx, app, args[0])
			if err != nil {
				return err
			}
			entries, err := app.Budget.History(ctx, id)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No budget entries."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBudgetHistory(entries))
			return nil
		},
	}
}

func newREMCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rem",
		Short: "Record periodic supplementary amounts",
	}

	cmd.AddCommand(
		newREMAddCmd(app),
		newREMListCmd(app),
	)

	return cmd
}

func newREMAddCmd(app *App) *cobra.Command {
	var period, amount, kind, comment string
	var year, index int

	cmd := &cobra.Command{
		Use:   "add <operation>",
		Short: "Record a REM amount for a quarter or half-year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveOperationID(ctx, app, args[0])
			if err != nil {
				return err
			}
			value, err := service.ParseAmount(amount)
			if err != nil {
				return err
			}
			if year == 0 {
				year = app.clock().Now().Year()
			}

			view, err := app.Budget.AddREM(ctx, &domain.REMEntry{
				OperationID: id,
				Period:      domain.REMPeriod(period),
				Year:        year,
				Index:       index,
				Amount:      value,
				Kind:        kind,
				Comment:     comment,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded REM %s %s (%s%% of budget) %s\n",
				view.Entry.Label(), formatter.Money(view.Entry.Amount),
				view.Entry.BudgetPct.StringFixed(1), formatter.SeverityBadge(view.Level))
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", string(domain.PeriodQuarter), "quarter or half")
	cmd.Flags().IntVar(&year, "year", 0, "year (default current year)")
	cmd.Flags().IntVar(&index, "index", 0, "quarter 1-4 or half 1-2 (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount (required)")
	cmd.Flags().StringVar(&kind, "kind", "", "free-text REM kind")
	cmd.Flags().StringVar(&comment, "comment", "", "comment")
	_ = cmd.MarkFlagRequired("index")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newREMListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <operation>",
		Short: "List REM entries with their share of the initial budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveOperationID(ctx, app, args[0])
			if err != nil {
				return err
			}
			views, err := app.Budget.ListREM(ctx, id)
			if err != nil {
				return err
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No REM entries."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatREMList(views))
			return nil
		},
	}
}

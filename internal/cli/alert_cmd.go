package cli

import (
	"fmt"

	"github.com/alexanderramin/spic/internal/cli/formatter"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/spf13/cobra"
)

func newAlertCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alert",
		Short: "Raise, generate and resolve alerts",
	}

	cmd.AddCommand(
		newAlertListCmd(app),
		newAlertGenerateCmd(app),
		newAlertRaiseCmd(app),
		newAlertResolveCmd(app),
		newAlertResolveLevelCmd(app),
		newAlertCleanupCmd(app),
	)

	return cmd
}

func newAlertListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list [operation]",
		Short: "List active alerts, for one operation or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var id string
			if len(args) == 1 {
				var err error
				if id, err = resolveOperationID(ctx, app, args[0]); err != nil {
					return err
				}
			}
			alerts, err := app.Alerts.ListActive(ctx, id)
			if err != nil {
				return err
			}
			if len(alerts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No active alerts."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAlertList(alerts))
			return nil
		},
	}
}

func newAlertGenerateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [operation]",
		Short: "Run the alert rules, for one operation or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var id string
			if len(args) == 1 {
				var err error
				if id, err = resolveOperationID(ctx, app, args[0]); err != nil {
					return err
				}
			}
			res, err := app.Engine.GenerateAlerts(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGenerateResult(res))
			return nil
		},
	}
}

func newAlertRaiseCmd(app *App) *cobra.Command {
	var typ, severity, title, description string

	cmd := &cobra.Command{
		Use:   "raise <operation>",
		Short: "Raise a manual alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveOperationID(ctx, app, args[0])
			if err != nil {
				return err
			}
			a := &domain.Alert{
				OperationID: id,
				Type:        domain.AlertType(typ),
				Severity:    domain.Severity(severity),
				Title:       title,
				Description: description,
			}
			if err := app.Alerts.Raise(ctx, a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Raised %s alert %s\n", formatter.SeverityBadge(a.Severity), formatter.TruncID(a.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "delay, budget, technical, administrative, commercial or legal (required)")
	cmd.Flags().StringVar(&severity, "severity", "medium", "low, medium, high or critical")
	cmd.Flags().StringVar(&title, "title", "", "alert title (required)")
	cmd.Flags().StringVar(&description, "description", "", "alert description")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newAlertResolveCmd(app *App) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "resolve <alert>",
		Short: "Resolve an active alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveAlertID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Alerts.Resolve(ctx, id, by); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resolved alert %s\n", formatter.TruncID(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "who resolved the alert")

	return cmd
}

func newAlertResolveLevelCmd(app *App) *cobra.Command {
	var by string
	var yes bool

	cmd := &cobra.Command{
		Use:   "resolve-level <severity>",
		Short: "Resolve every active alert of a severity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sev := domain.Severity(args[0])
			if !sev.Valid() {
				return fmt.Errorf("unknown severity %q", args[0])
			}
			if err := confirmDestructive(app, yes, fmt.Sprintf("Resolve every active %s alert?", sev)); err != nil {
				return err
			}
			n, err := app.Alerts.ResolveBySeverity(cmd.Context(), sev, by)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resolved %d %s alert(s)\n", n, sev)
			return nil
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "who resolved the alerts")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func newAlertCleanupCmd(app *App) *cobra.Command {
	var days int
	var yes bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete alerts resolved more than --days ago",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			if err := confirmDestructive(app, yes, fmt.Sprintf("Delete alerts resolved more than %d days ago?", days)); err != nil {
				return err
			}
			n, err := app.Alerts.CleanupResolved(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d resolved alert(s)\n", n)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 90, "age threshold in days")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

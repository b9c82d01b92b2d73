package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/spic/internal/cli/formatter"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/alexanderramin/spic/internal/repository"
	"github.com/alexanderramin/spic/internal/service"
	"github.com/spf13/cobra"
)

func newOperationCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "operation",
		Aliases: []string{"op"},
		Short:   "Manage operations",
	}

	cmd.AddCommand(
		newOperationCreateCmd(app),
		newOperationListCmd(app),
		newOperationShowCmd(app),
		newOperationSetStatusCmd(app),
		newOperationDeleteCmd(app),
	)

	return cmd
}

func newOperationCreateCmd(app *App) *cobra.Command {
	var name, typ, owner, address, budget, start, end string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an operation and instantiate its phase catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.CreateOperationRequest{
				Name:    name,
				Type:    domain.OperationType(strings.ToUpper(typ)),
				Owner:   owner,
				Address: address,
			}
			if budget != "" {
				req.BudgetInitial = &budget
			}
			var err error
			if req.StartDate, err = parseDate(start); err != nil {
				return err
			}
			if req.PlannedEndDate, err = parseDate(end); err != nil {
				return err
			}

			op, err := app.Operations.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s operation %s (%s)\n",
				op.Type, formatter.Bold(op.Name), formatter.TruncID(op.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "operation name (required)")
	cmd.Flags().StringVar(&typ, "type", "", "operation type: OPP, VEFA, AMO or MANDAT (required)")
	cmd.Flags().StringVar(&owner, "owner", "", "operation owner")
	cmd.Flags().StringVar(&address, "address", "", "site address")
	cmd.Flags().StringVar(&budget, "budget", "", "initial budget, e.g. \"2 500 000\"")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "planned end date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func newOperationListCmd(app *App) *cobra.Command {
	var status, typ string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List operations by descending risk",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := repository.OperationFilter{
				Status: domain.OperationStatus(status),
				Type:   domain.OperationType(strings.ToUpper(typ)),
			}
			if f.Status != "" && !f.Status.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			if f.Type != "" && !f.Type.Valid() {
				return fmt.Errorf("unknown operation type %q", typ)
			}
			ops, err := app.Operations.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			if len(ops) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No operations."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOperationList(ops, app.Thresholds.Levels))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&typ, "type", "", "filter by operation type")

	return cmd
}

func newOperationShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <operation>",
		Short: "Show an operation with its phases and active alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveOperationID(ctx, app, args[0])
			if err != nil {
				return err
			}
			op, err := app.Operations.GetByID(ctx, id)
			if err != nil {
				return err
			}
			phases, err := app.Phases.ListByOperation(ctx, id)
			if err != nil {
				return err
			}
			alerts, err := app.Alerts.ListActive(ctx, id)
			if err != nil {
				return err
			}
			progress, err := app.Portfolio.Progress(ctx, id)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOperationDetail(formatter.OperationDetail{
				Operation: op,
				Level:     app.Thresholds.Levels.LevelFor(op.RiskScore),
				Phases:    phases,
				Progress:  progress,
				Alerts:    alerts,
				Today:     domain.DateOnly(app.clock().Now()),
			}))
			return nil
		},
	}
}

func newOperationSetStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <operation> <status>",
		Short: "Set an operation status by hand (the only way to put it on hold or cancel it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveOperationID(ctx, app, args[0])
			if err != nil {
				return err
			}
			status := domain.OperationStatus(args[1])
			if err := app.Operations.SetStatus(ctx, id, status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Status set to %s\n", formatter.StatusPill(status))
			return nil
		},
	}
}

func newOperationDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <operation>",
		Short: "Delete an operation and everything attached to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveOperationID(ctx, app, args[0])
			if err != nil {
				return err
			}
			op, err := app.Operations.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := confirmDestructive(app, yes, fmt.Sprintf("Delete operation %q with its phases, alerts and budget history?", op.Name)); err != nil {
				return err
			}
			if err := app.Operations.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted operation %s\n", formatter.Bold(op.Name))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

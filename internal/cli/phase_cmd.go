package cli

import (
	"fmt"

	"github.com/alexanderramin/spic/internal/cli/formatter"
	"github.com/alexanderramin/spic/internal/domain"
	"github.com/spf13/cobra"
)

func newPhaseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Track operation phases",
	}

	cmd.AddCommand(
		newPhaseListCmd(app),
		newPhaseUpdateCmd(app),
		newPhasePlanCmd(app),
	)

	return cmd
}

func newPhaseListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <operation>",
		Short: "List the phases of an operation in catalog order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveOperationID(ctx, app, args[0])
			if err != nil {
				return err
			}
			phases, err := app.Phases.ListByOperation(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPhaseList(phases, domain.DateOnly(app.clock().Now())))
			return nil
		},
	}
}

func newPhaseUpdateCmd(app *App) *cobra.Command {
	var status, start, end, comment string
	var progress int

	cmd := &cobra.Command{
		Use:   "update <operation> <order>",
		Short: "Update a phase and recompute the operation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolvePhase(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}

			var u domain.PhaseUpdate
			if cmd.Flags().Changed("status") {
				s := domain.PhaseStatus(status)
				u.Status = &s
			}
			if cmd.Flags().Changed("progress") {
				u.ProgressPct = &progress
			}
			if cmd.Flags().Changed("comment") {
				u.Comment = &comment
			}
			if u.ActualStart, err = parseDate(start); err != nil {
				return err
			}
			if u.ActualEnd, err = parseDate(end); err != nil {
				return err
			}

			change, err := app.Phases.Update(ctx, p.ID, u)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Phase %d %s: %s %d%%\n", change.Phase.Order, formatter.Bold(change.Phase.Name),
				formatter.PhaseStatusPill(change.Phase.Status), change.Phase.ProgressPct)
			if change.Rescored {
				level := app.Thresholds.Levels.LevelFor(change.RiskScore)
				fmt.Fprintf(out, "Operation %s, risk %s\n", formatter.StatusPill(change.Status), formatter.Score(change.RiskScore, level))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "not_started, in_progress, done, late or blocked")
	cmd.Flags().IntVar(&progress, "progress", 0, "progress percentage (0-100)")
	cmd.Flags().StringVar(&start, "start", "", "actual start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "actual end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&comment, "comment", "", "free-text comment")

	return cmd
}

func newPhasePlanCmd(app *App) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "plan <operation> <order>",
		Short: "Set the planned window of a phase",
		Long:  "Set the planned window of a phase. Without --end the window spans the phase's planned duration.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolvePhase(ctx, app, args[0], args[1])
			if err != nil {
				return err
			}
			s, err := parseDate(start)
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("--start is required")
			}
			e, err := parseDate(end)
			if err != nil {
				return err
			}

			planned, err := app.Phases.Plan(ctx, p.ID, *s, e)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Phase %d %s planned %s → %s\n", planned.Order, formatter.Bold(planned.Name),
				formatter.Date(planned.PlannedStart), formatter.Date(planned.PlannedEnd))
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "planned start date (YYYY-MM-DD, required)")
	cmd.Flags().StringVar(&end, "end", "", "planned end date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

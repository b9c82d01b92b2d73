package cli

import (
	"fmt"

	"github.com/alexanderramin/spic/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newRiskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Score operations",
	}

	cmd.AddCommand(
		newRiskAnalyzeCmd(app),
		newRiskRecalcCmd(app),
		newRiskTrendCmd(app),
		newRiskTopCmd(app),
	)

	return cmd
}

func newRiskAnalyzeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <operation>",
		Short: "Show the risk breakdown of an operation without saving it",
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
			analysis, err := app.Analyzer.Analyze(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAnalysis(op.Name, analysis, app.Thresholds.Criteria))
			return nil
		},
	}
}

func newRiskRecalcCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recalc [operation]",
		Short: "Recompute and save risk scores, for one operation or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				res, err := app.Engine.RecalculateAllScores(ctx)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatBatchResult("Recalculated", res))
				return nil
			}

			id, err := resolveOperationID(ctx, app, args[0])
			if err != nil {
				return err
			}
			score, err := app.Engine.PersistRiskScore(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Risk score: %s\n", formatter.Score(score, app.Thresholds.Levels.LevelFor(score)))
			return nil
		},
	}
}

func newRiskTrendCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "trend <operation>",
		Short: "Show how the saved risk scores moved recently",
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
			trend, err := app.Portfolio.Trend(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTrend(op.Name, trend))
			return nil
		},
	}
}

func newRiskTopCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank operations by risk score, closed ones included",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}
			rows, err := app.Portfolio.TopRisks(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No operations."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTopRisks(rows, app.Thresholds.Levels))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of operations to show")

	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Derive operation statuses from their phases",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "derive [operation]",
		Short: "Derive and save the status of one operation, or of all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				res, err := app.Engine.UpdateAllStatuses(ctx)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatBatchResult("Updated", res))
				return nil
			}

			id, err := resolveOperationID(ctx, app, args[0])
			if err != nil {
				return err
			}
			status, err := app.Engine.DeriveAndSaveStatus(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Status: %s\n", formatter.StatusPill(status))
			return nil
		},
	})

	return cmd
}

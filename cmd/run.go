/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"foodinspect/internal/bootstrap"
	"foodinspect/internal/bootstrap/logging"
	"foodinspect/internal/errs"
	"foodinspect/internal/metrics"
	"foodinspect/internal/usecase/pipeline"
)

// runCmd executes the full extraction-to-load pipeline.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full ETL pipeline",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start pipeline run")

		if addr := app.Config.Metrics.Addr; addr != "" {
			go func() {
				if err := metrics.Serve(ctx, addr); err != nil {
					logging.Warn(ctx, "metrics listener failed", slog.Any("err", errs.Loggable(err)))
				}
			}()
		}

		report, err := svc.Run(ctx)
		if err != nil {
			return errs.Wrap(err, "run pipeline")
		}

		out := cmd.OutOrStdout()
		if _, err := fmt.Fprintf(out,
			"fetched=%d rejected=%d cities_fixed=%d\nrestaurants persisted=%d skipped=%d\ninspections persisted=%d skipped=%d\nviolations persisted=%d skipped=%d\n",
			report.RowsFetched, report.RowsRejected, report.CitiesFixed,
			report.Restaurants.Persisted, report.Restaurants.Skipped,
			report.Inspections.Persisted, report.Inspections.Skipped,
			report.Violations.Persisted, report.Violations.Skipped,
		); err != nil {
			return errs.Wrap(err, "write run output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(runCmd)
}

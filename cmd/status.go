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
	"foodinspect/internal/usecase/pipeline"
)

// statusCmd reports the downstream readiness contract: the dataset is ready
// only when all three tables are non-empty.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report table counts and dataset readiness",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		status, err := svc.Status(ctx)
		if err != nil {
			return errs.Wrap(err, "read status")
		}

		verdict := "not ready"
		if status.Ready {
			verdict = "ready"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(),
			"restaurants=%d inspections=%d violations=%d => %s\n",
			status.Counts.Restaurants, status.Counts.Inspections, status.Counts.Violations, verdict,
		); err != nil {
			return errs.Wrap(err, "write status output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

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

// fetchCmd runs extraction only, leaving raw records in the checkpoint file.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch raw dataset pages into the checkpoint file",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start fetch")

		total, err := svc.Fetch(ctx)
		if err != nil {
			return errs.Wrap(err, "fetch dataset")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "fetched %d records into %s\n", total, app.Config.Source.Checkpoint); err != nil {
			return errs.Wrap(err, "write fetch output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

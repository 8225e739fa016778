package cmds

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/portfoliobuilder/intake/internal/migrations"
)

var migrateDownTo int64

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, span := tracer.Start(cmd.Context(), "migrateUpCmd")
		defer span.End()

		db, closeDB, err := openDB(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to open database")
			return err
		}
		defer closeDB()

		if err := migrations.Up(ctx, db); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to migrate up")
			return err
		}

		version, err := migrations.Version(ctx, db)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to read version")
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", version)
		span.SetStatus(codes.Ok, "migrated up")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll the schema back to --to",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, span := tracer.Start(cmd.Context(), "migrateDownCmd")
		defer span.End()

		span.SetAttributes(attribute.Int64("to", migrateDownTo))

		db, closeDB, err := openDB(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to open database")
			return err
		}
		defer closeDB()

		if err := migrations.Down(ctx, db, migrateDownTo); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to migrate down")
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", migrateDownTo)
		span.SetStatus(codes.Ok, "migrated down")
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, span := tracer.Start(cmd.Context(), "migrateVersionCmd")
		defer span.End()

		db, closeDB, err := openDB(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to open database")
			return err
		}
		defer closeDB()

		version, err := migrations.Version(ctx, db)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to read version")
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), version)
		span.SetStatus(codes.Ok, "read version")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)

	migrateDownCmd.Flags().Int64Var(&migrateDownTo, "to", 0, "Target schema version")
}

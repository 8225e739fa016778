package cmds

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/portfoliobuilder/intake/internal/models"
)

var submissionCmd = &cobra.Command{
	Use:   "submission",
	Short: "Inspect committed submissions",
}

var submissionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submissions, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, span := tracer.Start(cmd.Context(), "submissionListCmd")
		defer span.End()

		db, closeDB, err := openDB(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to open database")
			return err
		}
		defer closeDB()

		submissions, err := models.ListSubmissions(ctx, db)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to list submissions")
			return err
		}

		span.SetStatus(codes.Ok, "listed submissions")
		return writeSubmissionTable(cmd.OutOrStdout(), submissions, time.Now().UTC())
	},
}

var submissionShowCmd = &cobra.Command{
	Use:   "show <public-id>",
	Short: "Print one submission as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, span := tracer.Start(cmd.Context(), "submissionShowCmd")
		defer span.End()

		span.SetAttributes(attribute.String("publicID", args[0]))

		db, closeDB, err := openDB(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to open database")
			return err
		}
		defer closeDB()

		submission, err := models.ByPublicID[models.Submission](ctx, db, args[0])
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Ok, "not found")
			return fmt.Errorf("no submission with public id %q", args[0])
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch submission")
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		span.SetStatus(codes.Ok, "showed submission")
		return enc.Encode(submission)
	},
}

func writeSubmissionTable(out io.Writer, submissions []models.Submission, today time.Time) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PUBLIC ID\tSUBMITTED\tNAME\tEMAIL\tDEADLINE\t")
	for _, s := range submissions {
		deadline := "-"
		if s.Deadline.Valid {
			deadline = s.Deadline.V.Format(time.DateOnly)
			if s.DeadlinePassed(today) {
				deadline += " (overdue)"
			}
		}

		fmt.Fprintf(
			w,
			"%s\t%s\t%s\t%s\t%s\t\n",
			s.PublicID,
			s.SubmittedAt.UTC().Format(time.DateTime),
			s.FullName,
			s.Email,
			deadline,
		)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(submissionCmd)
	submissionCmd.AddCommand(submissionListCmd, submissionShowCmd)
}

package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/portfoliobuilder/intake/internal/migrations")

func Up(ctx context.Context, db *gorm.DB) error {
	ctx, span := tracer.Start(ctx, "Up")
	defer span.End()

	rawDB, err := db.DB()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get raw db handle")
		return err
	}

	if err := goose.UpContext(ctx, rawDB, "."); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to bring migrations up")
		return err
	}

	span.AddEvent("migrated_up")
	span.SetStatus(codes.Ok, "brought migrations up")
	return nil
}

// Down rolls back to version (0 drops everything).
func Down(ctx context.Context, db *gorm.DB, version int64) error {
	ctx, span := tracer.Start(ctx, "Down")
	defer span.End()

	span.SetAttributes(attribute.Int64("version", version))

	rawDB, err := db.DB()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get raw db handle")
		return err
	}

	if err := goose.DownToContext(ctx, rawDB, ".", version); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to bring migrations down")
		return err
	}

	span.AddEvent("migrated_down")
	span.SetStatus(codes.Ok, "brought migrations down")
	return nil
}

// Version reports the currently applied migration.
func Version(ctx context.Context, db *gorm.DB) (int64, error) {
	rawDB, err := db.DB()
	if err != nil {
		return 0, err
	}

	return goose.GetDBVersionContext(ctx, rawDB)
}

type statement struct {
	query string
	args  []any
}

func execStatements(ctx context.Context, tx *sql.Tx, statements ...statement) error {
	for _, statement := range statements {
		_, err := tx.ExecContext(ctx, statement.query, statement.args...)
		if err != nil {
			return err
		}
	}

	return nil
}

package models

import (
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const name string = "github.com/portfoliobuilder/intake/internal/models"

var tracer = otel.Tracer(name)

// Derived from gorm.Model. Rows are written once so there is no UpdatedAt.
type Model struct {
	CreatedAt time.Time
	ID        uuid.UUID `gorm:"primaryKey;default:gen_random_uuid()"`
}

type PublicModel interface {
	GetPublicID() string
}

// gets an object by its public id from the db
func ByPublicID[T PublicModel](ctx context.Context, db *gorm.DB, publicID string) (*T, error) {
	var data T

	ctx, span := tracer.Start(ctx, "ByPublicID")
	defer span.End()

	span.SetAttributes(
		attribute.String("publicID", publicID),
		attribute.String("type", reflect.TypeOf(data).String()),
	)

	span.AddEvent("getting object by public id")
	err := db.WithContext(ctx).Where("public_id = ?", publicID).First(&data).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get object by public id")
		return nil, err
	}

	span.SetStatus(codes.Ok, "found object")
	return &data, nil
}

// Transmutes a pointer into a [datatypes.Null]
func NewNull[T any](d *T) datatypes.Null[T] {
	if d != nil {
		return datatypes.NewNull(*d)
	}

	return datatypes.Null[T]{}
}

// Maps a [datatypes.Null] back into a pointer
func PtrFromNull[T any](d datatypes.Null[T]) *T {
	if !d.Valid {
		return nil
	}

	return &d.V
}

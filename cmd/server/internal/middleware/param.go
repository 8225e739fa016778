package middleware

import (
	"errors"
	"reflect"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/portfoliobuilder/intake/cmd/server/internal/response"
	"github.com/portfoliobuilder/intake/internal/models"
)

// Retrieves object from the db based on the public id in `paramName`
func PopulateFromPublicID[T models.PublicModel](
	h *Handler,
	paramName string,
	contextName string,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, span := tracer.Start(c.Request().Context(), "PopulateFromPublicID")
			defer span.End()

			span.SetAttributes(
				attribute.String("paramName", paramName),
				attribute.String("contextName", contextName),
				attribute.String("type", reflect.TypeOf((*T)(nil)).Elem().String()),
			)

			publicID := c.Param(paramName)
			span.SetAttributes(attribute.String("publicID", publicID))

			// public ids are always 8 characters, skip the query for anything else
			if len(publicID) != 8 {
				span.SetStatus(codes.Ok, "malformed public id")
				return response.NotFoundError
			}

			span.AddEvent("fetching object by public id")
			data, err := models.ByPublicID[T](ctx, h.DB, publicID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					span.SetStatus(codes.Ok, "object not found")
					return response.NotFoundError
				}

				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to fetch object from db by public id")
				return response.InternalServerError
			}

			c.Set(contextName, data)

			span.SetStatus(codes.Ok, "fetched object by public id")
			return next(c)
		}
	}
}

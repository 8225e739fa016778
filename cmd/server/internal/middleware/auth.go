package middleware

import (
	"context"
	"crypto/subtle"
	"os"

	"github.com/alexedwards/argon2id"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/portfoliobuilder/intake/cmd/server/internal/response"
	"github.com/portfoliobuilder/intake/internal/logger"
)

const AdminRealm = "Admin Dashboard"

// Used when doing a fake compare in the error case of BasicAuthValidator
var defaultHashForError string

func init() {
	var err error

	defaultHashForError, err = argon2id.CreateHash(
		"Qm9yZWQgb2YgYWxsIHRoZSBmb3Jtcz8gVGhpcyBvbmUgaXMgYSBkZWNveS4=",
		argon2id.DefaultParams,
	)
	if err != nil {
		logger.Logger.Error("error creating default hash", "error", err)
		os.Exit(1)
	}
}

// Does a fake hash and compare so unknown usernames cost as much as known ones.
func fakePasswordHash(ctx context.Context) {
	_, span := tracer.Start(ctx, "fakePasswordHash")
	defer span.End()

	_, err := argon2id.ComparePasswordAndHash("i am a very real password", defaultHashForError)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to compare fake password with default hash for error")
		return
	}

	span.AddEvent("compared fake password and default hash for error")
}

// Validates basic auth credentials against the configured admin account
func (h *Handler) BasicAuthValidator(username, password string, c echo.Context) (bool, error) {
	ctx, span := tracer.Start(c.Request().Context(), "BasicAuthValidator")
	defer span.End()

	span.SetAttributes(attribute.String("username", username))

	if subtle.ConstantTimeCompare([]byte(username), []byte(h.adminUsername)) != 1 {
		fakePasswordHash(ctx)
		span.SetStatus(codes.Ok, "unknown username")
		return false, nil
	}

	span.AddEvent("checking hash")
	match, err := argon2id.ComparePasswordAndHash(password, h.adminHash)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check password")
		return false, response.InternalServerError
	}

	if match {
		span.AddEvent("successful login attempt")
		c.Set("admin", username)
	} else {
		span.AddEvent("failed login attempt")
	}

	span.SetStatus(codes.Ok, "checked credentials")
	return match, nil
}

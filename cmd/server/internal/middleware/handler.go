package middleware

import (
	"strings"

	"github.com/alexedwards/argon2id"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/portfoliobuilder/intake/internal/config"
)

const name string = "github.com/portfoliobuilder/intake/cmd/server/internal/middleware"

var tracer = otel.Tracer(name)

type Handler struct {
	DB *gorm.DB

	adminUsername string
	adminHash     string
}

// NewHandler accepts the admin password either in the clear or as an
// argon2id hash produced by `intakectl hash-password`.
func NewHandler(db *gorm.DB, admin *config.AdminConfig) (*Handler, error) {
	hash := admin.Password
	if !strings.HasPrefix(hash, "$argon2id$") {
		var err error
		hash, err = argon2id.CreateHash(admin.Password, argon2id.DefaultParams)
		if err != nil {
			return nil, err
		}
	}

	return &Handler{
		DB:            db,
		adminUsername: admin.Username,
		adminHash:     hash,
	}, nil
}

package public

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/portfoliobuilder/intake/cmd/server/internal/attachments"
	"github.com/portfoliobuilder/intake/cmd/server/internal/intake"
	servermiddleware "github.com/portfoliobuilder/intake/cmd/server/internal/middleware"
	"github.com/portfoliobuilder/intake/cmd/server/internal/session"
	"github.com/portfoliobuilder/intake/internal/models"
)

const name = "github.com/portfoliobuilder/intake/cmd/server/internal/routes/public"

var tracer = otel.Tracer(name)

// Limits are applied to the two endpoints that accept untrusted input.
type Limits struct {
	Submit echo.MiddlewareFunc
	Verify echo.MiddlewareFunc
}

type Handler struct {
	flow        *intake.Flow
	attachments *attachments.Store
	sessions    *session.Manager
	timeKey     string
}

func NewHandler(
	flow *intake.Flow,
	store *attachments.Store,
	sessions *session.Manager,
	timeKey string,
) *Handler {
	return &Handler{
		flow:        flow,
		attachments: store,
		sessions:    sessions,
		timeKey:     timeKey,
	}
}

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func (h *Handler) AddRoutes(e *echo.Echo, mh *servermiddleware.Handler, limits Limits) {
	if limits.Submit == nil {
		limits.Submit = passthrough
	}
	if limits.Verify == nil {
		limits.Verify = passthrough
	}

	g := e.Group("", servermiddleware.Session(h.sessions))

	g.GET("/", h.IntakeForm)
	g.POST("/submit/", h.Submit, limits.Submit)
	g.GET("/verify-email/", h.VerifyEmailPage)
	g.POST("/verify-email/", h.VerifyEmail, limits.Verify)
	g.POST("/verify-email/retry/", h.RetryCommit, limits.Verify)
	g.POST("/verify-email/abandon/", h.Abandon)
	g.GET("/thank-you/:public_id/", h.ThankYou)

	e.GET(
		"/intake-pdf/:public_id/",
		h.Report,
		servermiddleware.PopulateFromPublicID[models.Submission](mh, "public_id", "submission"),
	)
}

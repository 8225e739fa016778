package admin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	srverr "github.com/portfoliobuilder/intake/cmd/server/internal/error"
	servermiddleware "github.com/portfoliobuilder/intake/cmd/server/internal/middleware"
	"github.com/portfoliobuilder/intake/cmd/server/internal/response"
	"github.com/portfoliobuilder/intake/cmd/server/internal/views"
	"github.com/portfoliobuilder/intake/internal/models"
	"github.com/portfoliobuilder/intake/internal/upload"
)

const name = "github.com/portfoliobuilder/intake/cmd/server/internal/routes/admin"

var tracer = otel.Tracer(name)

type Handler struct {
	DB         *gorm.DB
	files      upload.Uploader
	presignTTL time.Duration
	timeKey    string
}

func NewHandler(db *gorm.DB, files upload.Uploader, presignTTL time.Duration, timeKey string) *Handler {
	return &Handler{DB: db, files: files, presignTTL: presignTTL, timeKey: timeKey}
}

func (h *Handler) AddRoutes(e *echo.Echo, mh *servermiddleware.Handler) {
	g := e.Group("/admin", middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Validator: mh.BasicAuthValidator,
		Realm:     servermiddleware.AdminRealm,
	}))

	populate := servermiddleware.PopulateFromPublicID[models.Submission](mh, "public_id", "submission")

	g.GET("/submissions/", h.List)
	g.GET("/submission/:public_id/", h.Detail, populate)
	g.GET("/submission/:public_id/files/:name/", h.File, populate)
}

func (h *Handler) List(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "List")
	defer span.End()

	submissions, err := models.ListSubmissions(ctx, h.DB)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list submissions")
		return response.InternalServerError
	}

	now := servermiddleware.RequestTime(c, h.timeKey)
	y, m, d := now.Date()

	span.SetAttributes(attribute.Int("count", len(submissions)))
	span.SetStatus(codes.Ok, "listed submissions")
	return c.Render(http.StatusOK, views.AdminList, views.AdminListData{
		Today:       time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Submissions: submissions,
	})
}

func submissionFrom(c echo.Context) (*models.Submission, error) {
	submission, ok := c.Get("submission").(*models.Submission)
	if !ok {
		return nil, fmt.Errorf("submission: %w", srverr.ErrTypeAssertMismatch)
	}
	return submission, nil
}

func (h *Handler) Detail(c echo.Context) error {
	_, span := tracer.Start(c.Request().Context(), "Detail")
	defer span.End()

	submission, err := submissionFrom(c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return response.InternalServerError
	}

	span.SetStatus(codes.Ok, "rendering submission")
	return c.Render(http.StatusOK, views.AdminDetail, views.AdminDetailData{Submission: submission})
}

// File redirects to a short lived download link for one of the submission's
// attachments.
func (h *Handler) File(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "File")
	defer span.End()

	submission, err := submissionFrom(c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return response.InternalServerError
	}

	fileName := c.Param("name")
	span.SetAttributes(attribute.String("file", fileName))

	if !submission.HasFile(fileName) {
		span.SetStatus(codes.Ok, "file not on submission")
		return response.NotFoundError
	}

	url, err := h.files.PresignedReadURL(ctx, fileName, h.presignTTL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to presign attachment")
		return response.InternalServerError
	}

	span.SetStatus(codes.Ok, "redirecting to attachment")
	return c.Redirect(http.StatusFound, url)
}

package routes

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	servermiddleware "github.com/portfoliobuilder/intake/cmd/server/internal/middleware"
	"github.com/portfoliobuilder/intake/cmd/server/internal/views"
	"github.com/portfoliobuilder/intake/internal/validator"
)

const TimeKey = "time"

type Options struct {
	Now func() time.Time
	// multipart bodies above this are rejected before parsing
	MaxBodyBytes int64
}

func BuildEcho(logger *slog.Logger, opts Options) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	validate := validator.Create()
	e.Validator = &validate

	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/static/")
		},
	}))

	e.Use(
		otelecho.Middleware("intake"),
		slogecho.NewWithConfig(logger, slogecho.Config{}),
		servermiddleware.Time(TimeKey, opts.Now),
	)

	if opts.MaxBodyBytes > 0 {
		e.Use(middleware.BodyLimit(strconv.FormatInt(opts.MaxBodyBytes, 10)))
	}

	e.StaticFS("/static", views.Static())

	e.GET("/health/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	return e, nil
}

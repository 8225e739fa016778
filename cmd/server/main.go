package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	otellib "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/portfoliobuilder/intake/cmd/server/internal/attachments"
	"github.com/portfoliobuilder/intake/cmd/server/internal/drafts"
	"github.com/portfoliobuilder/intake/cmd/server/internal/intake"
	servermiddleware "github.com/portfoliobuilder/intake/cmd/server/internal/middleware"
	"github.com/portfoliobuilder/intake/cmd/server/internal/notify"
	"github.com/portfoliobuilder/intake/cmd/server/internal/ratelimit"
	"github.com/portfoliobuilder/intake/cmd/server/internal/routes"
	"github.com/portfoliobuilder/intake/cmd/server/internal/routes/admin"
	"github.com/portfoliobuilder/intake/cmd/server/internal/routes/public"
	"github.com/portfoliobuilder/intake/cmd/server/internal/session"
	"github.com/portfoliobuilder/intake/internal/config"
	"github.com/portfoliobuilder/intake/internal/database"
	"github.com/portfoliobuilder/intake/internal/logger"
	"github.com/portfoliobuilder/intake/internal/migrations"
	"github.com/portfoliobuilder/intake/internal/otel"
	"github.com/portfoliobuilder/intake/internal/upload"
)

const name string = "github.com/portfoliobuilder/intake/cmd/server"

var tracer = otellib.Tracer(name)

type server struct {
	router       *echo.Echo
	config       *config.Config
	db           *gorm.DB
	redis        *redis.Client
	otelShutdown func(context.Context) error
}

func initServer(ctx context.Context) (*server, error) {
	server := new(server)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize server config: %w", err)
	}
	server.config = cfg

	shutdownOTel, err := otel.SetupOTelSDK(ctx, otel.Options{
		ServiceName: "intake",
		UseOTLP:     cfg.Logging.UseOTLP,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OTEL SDK: %w", err)
	}
	defer func() {
		// Something failed to initialize, make sure everything gets flushed to the server
		if server.otelShutdown == nil {
			otelShutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				time.Second*time.Duration(cfg.GracefulShutdownSecs),
			)
			defer cancel()

			if err = shutdownOTel(otelShutdownCtx); err != nil {
				logger.Logger.Error("failed to flush otel data", "error", err)
			}
		}
	}()

	ctx, span := tracer.Start(ctx, "initServer")
	defer span.End()

	logger.LogLevel.Set(slog.Level(cfg.Logging.App.Level))

	db, err := database.Open(ctx, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open database")
		return nil, err
	}

	err = migrations.Up(ctx, db)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to preform database migrations")
		return nil, fmt.Errorf("failed to perform database migrations: %w", err)
	}

	span.AddEvent("migrated database to latest version")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	draftStore, err := drafts.New(cfg.Drafts, rdb)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create draft store")
		return nil, fmt.Errorf("failed to create draft store: %w", err)
	}

	span.AddEvent("initialized draft store")

	files, err := upload.New(ctx, cfg.Storage)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to construct attachment storage")
		return nil, fmt.Errorf("failed to construct attachment storage: %w", err)
	}

	span.AddEvent("initialized attachment storage")

	flow, err := intake.NewFlow(
		intake.NewRandomIssuer(),
		draftStore,
		notify.NewMailer(cfg.Mail, cfg.Verification.CodeTTL),
		intake.GormStore{DB: db},
		intake.Options{
			CodeTTL:            cfg.Verification.CodeTTL,
			PublicIDAttempts:   cfg.Verification.PublicIDAttempts,
			StrictNotification: cfg.StrictNotification(),
		},
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create intake flow")
		return nil, fmt.Errorf("failed to create intake flow: %w", err)
	}

	middlewareHandler, err := servermiddleware.NewHandler(db, cfg.Admin)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create middleware handler")
		return nil, fmt.Errorf("failed to create middleware handler: %w", err)
	}

	e, err := routes.BuildEcho(logger.Logger, routes.Options{
		MaxBodyBytes: cfg.Storage.MaxUploadBytes,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "error building router")
		return nil, fmt.Errorf("error building router: %w", err)
	}

	span.AddEvent("created echo router")

	limits := public.Limits{}
	if cfg.RateLimit != nil {
		limits.Submit = ratelimit.Middleware(ratelimit.NewRedisLimitStore(ratelimit.RedisLimiterConfig{
			RedisClient: rdb,
			LimiterKey:  "submit",
			PerMinute:   cfg.RateLimit.SubmitPerMinute,
			FailOpen:    cfg.RateLimit.FailOpen,
		}))
		limits.Verify = ratelimit.Middleware(ratelimit.NewRedisLimitStore(ratelimit.RedisLimiterConfig{
			RedisClient: rdb,
			LimiterKey:  "verify",
			PerMinute:   cfg.RateLimit.VerifyPerMinute,
			FailOpen:    cfg.RateLimit.FailOpen,
		}))
	}

	publicHandler := public.NewHandler(
		flow,
		attachments.NewStore(files, nil),
		session.NewManager(cfg.Session),
		routes.TimeKey,
	)
	adminHandler := admin.NewHandler(db, files, cfg.Storage.PresignTTL, routes.TimeKey)

	publicHandler.AddRoutes(e, middlewareHandler, limits)
	adminHandler.AddRoutes(e, middlewareHandler)

	server.otelShutdown = shutdownOTel
	server.router = e
	server.db = db
	server.redis = rdb

	span.SetStatus(codes.Ok, "initialized server")
	return server, nil
}

func (s *server) Start() error {
	logger.Logger.Info("Starting services...", "address", s.config.ListenAddress)

	err := s.router.Start(s.config.ListenAddress)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *server) Shutdown() error {
	var errs error

	ctx, cancelTimeout := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(s.config.GracefulShutdownSecs),
	)
	defer cancelTimeout()

	if err := s.router.Shutdown(ctx); err != nil {
		errs = errors.Join(errs, err)
	}

	if err := s.redis.Close(); err != nil {
		errs = errors.Join(errs, fmt.Errorf("failed to close redis client: %w", err))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		errs = errors.Join(errs, sqlDB.Close())
	}

	if s.otelShutdown != nil {
		errs = errors.Join(errs, s.otelShutdown(ctx))
	}

	return errs
}

func main() {
	ctx, cancelSignal := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)

	logger.InitSlog(slog.LevelInfo)

	server, err := initServer(ctx)
	if err != nil {
		logger.Logger.Error(err.Error())
		cancelSignal()
		os.Exit(1)
	}

	errch := make(chan error, 1)
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Got shutdown signal!")
		errch <- server.Shutdown()
		close(errch)
	}()

	if err := server.Start(); err != nil {
		logger.Logger.Error(err.Error())
		cancelSignal()
		os.Exit(1)
	}

	if err := <-errch; err != nil {
		logger.Logger.Error("Error shutting down server", "error", err)
	}

	cancelSignal()
}

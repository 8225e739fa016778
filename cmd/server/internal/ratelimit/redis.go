package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/portfoliobuilder/intake/internal/logger"
	"github.com/portfoliobuilder/intake/internal/types"
)

// RedisLimiterStore implements a fixed one-minute window per identifier.
// It satisfies echo's middleware.RateLimiterStore.
type RedisLimiterStore struct {
	db         redis.Cmdable
	now        func() time.Time
	limiterKey string
	perMinute  int64
	failOpen   bool
}

type RedisLimiterConfig struct {
	RedisClient redis.Cmdable
	Now         func() time.Time
	LimiterKey  string
	PerMinute   int64
	// let requests through when redis is unavailable
	FailOpen bool
}

func NewRedisLimitStore(config RedisLimiterConfig) *RedisLimiterStore {
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &RedisLimiterStore{
		db:         config.RedisClient,
		now:        now,
		limiterKey: config.LimiterKey,
		perMinute:  config.PerMinute,
		failOpen:   config.FailOpen,
	}
}

func (store *RedisLimiterStore) key(identifier string) string {
	window := store.now().Unix() / 60
	return fmt.Sprintf("intake:ratelimit:%s:%s:%d", store.limiterKey, identifier, window)
}

func (store *RedisLimiterStore) Allow(identifier string) (bool, error) {
	ctx := context.Background()
	key := store.key(identifier)

	// INCR and EXPIRE go out together so a key never outlives its window
	pipe := store.db.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Logger.Warn(
			"rate limiter unavailable",
			"limiter", store.limiterKey,
			"failOpen", store.failOpen,
			"error", err,
		)
		return store.failOpen, err
	}

	return count.Val() <= store.perMinute, nil
}

// Middleware limits requests per client IP. A non-positive perMinute disables
// limiting.
func Middleware(store *RedisLimiterStore) echo.MiddlewareFunc {
	if store.perMinute <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(echo.Context, error) error {
			return echo.NewHTTPError(http.StatusForbidden, types.StringError("could not identify client"))
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(
				http.StatusTooManyRequests,
				types.StringError("too many requests, please wait a minute and try again"),
			)
		},
	})
}

package drafts

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/portfoliobuilder/intake/cmd/server/internal/intake"
)

var tracer = otel.Tracer("github.com/portfoliobuilder/intake/cmd/server/internal/drafts")

const keyPrefix = "intake:draft:"

// Ensure Redis implements intake.DraftStore interface.
var _ intake.DraftStore = (*Redis)(nil)

// Redis stores each draft as a JSON string that expires after ttl.
type Redis struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedis(client redis.Cmdable, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (r *Redis) Put(ctx context.Context, sessionID string, draft *intake.PendingDraft) error {
	ctx, span := tracer.Start(ctx, "Redis.Put")
	defer span.End()

	data, err := encode(draft)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode draft")
		return err
	}

	if err := r.client.Set(ctx, key(sessionID), data, r.ttl).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to store draft")
		return err
	}

	span.SetStatus(codes.Ok, "stored draft")
	return nil
}

func (r *Redis) Get(ctx context.Context, sessionID string) (*intake.PendingDraft, error) {
	ctx, span := tracer.Start(ctx, "Redis.Get")
	defer span.End()

	data, err := r.client.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetStatus(codes.Ok, "no draft")
		return nil, intake.ErrNoPendingDraft
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load draft")
		return nil, err
	}

	draft, err := decode(data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode draft")
		return nil, err
	}

	span.SetStatus(codes.Ok, "loaded draft")
	return draft, nil
}

func (r *Redis) Clear(ctx context.Context, sessionID string) error {
	ctx, span := tracer.Start(ctx, "Redis.Clear")
	defer span.End()

	if err := r.client.Del(ctx, key(sessionID)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to clear draft")
		return err
	}

	span.SetStatus(codes.Ok, "cleared draft")
	return nil
}

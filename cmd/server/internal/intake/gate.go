package intake

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/portfoliobuilder/intake/internal/logger"
)

// Gate decides whether a session may leave the awaiting-code state.
type Gate struct {
	drafts DraftStore
	now    func() time.Time
	// zero disables expiry
	ttl time.Duration
}

func NewGate(drafts DraftStore, ttl time.Duration, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{drafts: drafts, ttl: ttl, now: now}
}

func (g *Gate) expired(d *PendingDraft) bool {
	return g.ttl > 0 && d.VerifiedAt == nil && g.now().Sub(d.IssuedAt) > g.ttl
}

// Pending returns the session's draft if it can still be verified. An expired
// or incomplete draft is cleared before the error is returned.
func (g *Gate) Pending(ctx context.Context, sessionID string) (*PendingDraft, error) {
	ctx, span := tracer.Start(ctx, "Gate.Pending")
	defer span.End()

	draft, err := g.drafts.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrNoPendingDraft) && !errors.Is(err, ErrExpiredSessionState) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to load draft")
			return nil, err
		}
		if errors.Is(err, ErrExpiredSessionState) {
			g.discard(ctx, sessionID)
		}
		span.SetStatus(codes.Ok, "no usable draft")
		return nil, err
	}

	if !draft.complete() {
		g.discard(ctx, sessionID)
		span.SetStatus(codes.Ok, "draft incomplete")
		return nil, ErrExpiredSessionState
	}

	if g.expired(draft) {
		g.discard(ctx, sessionID)
		span.SetStatus(codes.Ok, "code expired")
		return nil, ErrCodeExpired
	}

	span.SetStatus(codes.Ok, "draft pending")
	return draft, nil
}

// Check compares entered against the issued code byte for byte. On mismatch
// the draft is left untouched so the visitor can try again. On match the
// draft is marked verified and stored back.
func (g *Gate) Check(ctx context.Context, sessionID, entered string) (*PendingDraft, error) {
	ctx, span := tracer.Start(ctx, "Gate.Check", trace.WithAttributes(
		attribute.Int("enteredLength", len(entered)),
	))
	defer span.End()

	draft, err := g.Pending(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(entered), []byte(draft.VerificationCode)) != 1 {
		span.AddEvent("code_mismatch")
		span.SetStatus(codes.Ok, "code rejected")
		return nil, ErrCodeMismatch
	}

	verifiedAt := g.now().UTC()
	draft.VerifiedAt = &verifiedAt
	if err := g.drafts.Put(ctx, sessionID, draft); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to mark draft verified")
		return nil, err
	}

	span.SetStatus(codes.Ok, "code accepted")
	return draft, nil
}

func (g *Gate) discard(ctx context.Context, sessionID string) {
	if err := g.drafts.Clear(ctx, sessionID); err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		logger.Logger.WarnContext(ctx, "failed to clear unusable draft", "error", err)
	}
}

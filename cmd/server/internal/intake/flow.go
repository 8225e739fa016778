package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/portfoliobuilder/intake/internal/audit"
	"github.com/portfoliobuilder/intake/internal/logger"
	"github.com/portfoliobuilder/intake/internal/validator"
)

// Notifier delivers a verification code to the address the visitor claimed.
type Notifier interface {
	SendCode(ctx context.Context, code, recipient string) error
}

type Options struct {
	Now              func() time.Time
	CodeTTL          time.Duration
	PublicIDAttempts int
	// abort the submission when the code cannot be delivered
	StrictNotification bool
}

// BeginResult reports how a freshly issued code reached the visitor.
type BeginResult struct {
	// Only set when delivery failed and the flow carried on regardless. The
	// caller is expected to show it to the visitor.
	FallbackCode string
	Delivered    bool
}

// Flow drives a session from form post through email confirmation to a
// committed submission.
type Flow struct {
	issuer    Issuer
	drafts    DraftStore
	notifier  Notifier
	gate      *Gate
	committer *Committer
	counters  *counters
	now       func() time.Time
	validate  validator.CustomValidator
	strict    bool
}

func NewFlow(
	issuer Issuer,
	drafts DraftStore,
	notifier Notifier,
	store SubmissionStore,
	opts Options,
) (*Flow, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	committer, err := NewCommitter(store, drafts, issuer, opts.PublicIDAttempts, opts.Now)
	if err != nil {
		return nil, err
	}

	c, err := newCounters()
	if err != nil {
		return nil, err
	}

	return &Flow{
		issuer:    issuer,
		drafts:    drafts,
		notifier:  notifier,
		gate:      NewGate(drafts, opts.CodeTTL, opts.Now),
		committer: committer,
		counters:  c,
		now:       opts.Now,
		validate:  validator.Create(),
		strict:    opts.StrictNotification,
	}, nil
}

// Begin issues a code for payload, sends it, and parks the payload as the
// session's draft. Any earlier draft for the session is replaced.
//
// In strict mode a delivery failure returns [ErrNotificationFailed] and leaves
// the session with no draft at all.
func (f *Flow) Begin(ctx context.Context, sessionID string, payload Payload) (*BeginResult, error) {
	ctx, span := tracer.Start(ctx, "Flow.Begin")
	defer span.End()

	auditCtx := audit.Context{SessionID: sessionID}

	payload.Email = strings.TrimSpace(payload.Email)
	if err := f.validate.Validate(&payload); err != nil {
		span.SetStatus(codes.Error, "invalid payload")
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	code, err := f.issuer.Code()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to issue code")
		return nil, err
	}
	f.counters.codesIssued.Add(ctx, 1)

	result := &BeginResult{Delivered: true}
	if err := f.notifier.SendCode(ctx, code, payload.Email); err != nil {
		span.RecordError(err)
		f.counters.notifyFailures.Add(ctx, 1)
		audit.LogNotificationFailed(auditCtx, payload.Email, f.strict, err)
		logger.Logger.WarnContext(
			ctx,
			"failed to deliver verification code",
			"strict", f.strict,
			"error", err,
		)

		if f.strict {
			if clearErr := f.drafts.Clear(ctx, sessionID); clearErr != nil {
				span.RecordError(clearErr)
			}
			span.SetStatus(codes.Error, "notification failed")
			return nil, fmt.Errorf("%w: %w", ErrNotificationFailed, err)
		}

		result.Delivered = false
		result.FallbackCode = code
	}

	draft := &PendingDraft{
		Payload:          payload,
		VerificationCode: code,
		ClaimedEmail:     payload.Email,
		IssuedAt:         f.now().UTC(),
	}
	if err := f.drafts.Put(ctx, sessionID, draft); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to store draft")
		return nil, err
	}

	audit.LogVerificationCodeIssued(auditCtx, payload.Email, result.Delivered)

	span.SetStatus(codes.Ok, "issued code")
	return result, nil
}

// Pending returns the draft awaiting verification, if any.
func (f *Flow) Pending(ctx context.Context, sessionID string) (*PendingDraft, error) {
	return f.gate.Pending(ctx, sessionID)
}

func rejectionReason(err error) (audit.RejectionReason, bool) {
	switch {
	case errors.Is(err, ErrNoPendingDraft):
		return audit.ReasonNoPendingDraft, true
	case errors.Is(err, ErrExpiredSessionState):
		return audit.ReasonExpiredState, true
	case errors.Is(err, ErrCodeExpired):
		return audit.ReasonCodeExpired, true
	case errors.Is(err, ErrCodeMismatch):
		return audit.ReasonCodeMismatch, true
	default:
		return "", false
	}
}

// Verify checks entered against the session's code and, on a match, commits
// the submission.
func (f *Flow) Verify(ctx context.Context, sessionID, entered string) (*Receipt, error) {
	ctx, span := tracer.Start(ctx, "Flow.Verify")
	defer span.End()

	draft, err := f.gate.Check(ctx, sessionID, entered)
	if err != nil {
		if reason, ok := rejectionReason(err); ok {
			f.counters.verifyRejections.Add(ctx, 1)
			audit.LogVerificationRejected(audit.Context{SessionID: sessionID}, reason)
			span.SetStatus(codes.Ok, "verification rejected")
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check code")
		return nil, err
	}

	return f.commit(ctx, sessionID, draft)
}

// Retry commits a draft that already passed verification but whose earlier
// commit failed.
func (f *Flow) Retry(ctx context.Context, sessionID string) (*Receipt, error) {
	ctx, span := tracer.Start(ctx, "Flow.Retry")
	defer span.End()

	draft, err := f.gate.Pending(ctx, sessionID)
	if err != nil {
		span.SetStatus(codes.Ok, "no draft to retry")
		return nil, err
	}
	if draft.VerifiedAt == nil {
		span.SetStatus(codes.Ok, "draft not verified")
		return nil, ErrNotVerified
	}

	return f.commit(ctx, sessionID, draft)
}

func (f *Flow) commit(ctx context.Context, sessionID string, draft *PendingDraft) (*Receipt, error) {
	receipt, err := f.committer.Commit(ctx, sessionID, draft)
	if err != nil {
		audit.LogCommitFailed(audit.Context{SessionID: sessionID}, err)
		return nil, err
	}

	publicID := receipt.Submission.PublicID
	audit.LogSubmissionCommitted(
		audit.Context{SessionID: sessionID, PublicID: &publicID},
		receipt.Submission.Email,
		receipt.Attempts,
		len(receipt.Submission.Projects),
		len(receipt.Submission.Files),
	)

	return receipt, nil
}

// Abandon discards the session's draft. It is not an error if there is none.
func (f *Flow) Abandon(ctx context.Context, sessionID string) error {
	ctx, span := tracer.Start(ctx, "Flow.Abandon")
	defer span.End()

	if err := f.drafts.Clear(ctx, sessionID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to clear draft")
		return err
	}

	span.SetStatus(codes.Ok, "cleared draft")
	return nil
}

package intake

import (
	"context"
	"time"
)

// PendingDraft is a submission parked between form post and email
// confirmation. At most one exists per session.
type PendingDraft struct {
	IssuedAt         time.Time  `json:"issued_at"`
	VerifiedAt       *time.Time `json:"verified_at,omitempty"`
	VerificationCode string     `json:"verification_code"`
	ClaimedEmail     string     `json:"claimed_email"`
	Payload          Payload    `json:"payload"`
}

// A draft missing its code or email cannot be verified and is treated as
// expired state.
func (d *PendingDraft) complete() bool {
	return d.VerificationCode != "" && d.ClaimedEmail != ""
}

//go:generate mockgen -destination ./mock/mock.go -package mock . DraftStore,Notifier,SubmissionStore

// DraftStore keeps one PendingDraft per session. Get returns
// [ErrNoPendingDraft] when nothing is stored and [ErrExpiredSessionState]
// when the stored value cannot be decoded. Put replaces any existing draft
// wholesale.
type DraftStore interface {
	Put(ctx context.Context, sessionID string, draft *PendingDraft) error
	Get(ctx context.Context, sessionID string) (*PendingDraft, error)
	Clear(ctx context.Context, sessionID string) error
}

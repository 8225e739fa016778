package intake

import "errors"

var (
	ErrNoPendingDraft      = errors.New("no pending submission to verify")
	ErrExpiredSessionState = errors.New("verification session expired")
	ErrCodeExpired         = errors.New("verification code expired")
	ErrCodeMismatch        = errors.New("invalid verification code")
	ErrNotificationFailed  = errors.New("failed to send verification email")
	ErrMalformedDeadline   = errors.New("malformed deadline")
	ErrPublicIDExhausted   = errors.New("could not allocate a unique public id")
	ErrCommitFailed        = errors.New("failed to commit submission")
	ErrNotVerified         = errors.New("pending submission has not been verified")
	ErrInvalidPayload      = errors.New("invalid submission payload")
)

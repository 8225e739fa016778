package audit

var schemaVersion = "0.1.0"
var logContext = "audit"

type Disposition string

const (
	DispositionNeutral Disposition = "neutral"
	DispositionGood    Disposition = "good"
	DispositionBad     Disposition = "bad"
)

type EventType string

const (
	EvtVerificationCodeIssued EventType = "verification_code_issued"
	EvtNotificationFailed     EventType = "notification_failed"
	EvtVerificationRejected   EventType = "verification_rejected"
	EvtSubmissionCommitted    EventType = "submission_committed"
	EvtCommitFailed           EventType = "commit_failed"
	EvtAttachmentStored       EventType = "attachment_stored"
)

type RejectionReason string

const (
	ReasonNoPendingDraft RejectionReason = "no_pending_draft"
	ReasonExpiredState   RejectionReason = "expired_session_state"
	ReasonCodeExpired    RejectionReason = "code_expired"
	ReasonCodeMismatch   RejectionReason = "code_mismatch"
)

type Message struct {
	PublicID      *string     `json:"public_id"`
	LogContext    string      `json:"log_context" validate:"required"`
	SchemaVersion string      `json:"version"     validate:"required"`
	SessionID     string      `json:"session_id"  validate:"required"`
	Disposition   Disposition `json:"disposition" validate:"required"`
	Type          EventType   `json:"event_type"  validate:"required"`

	// unix milliseconds
	Timestamp int64 `json:"timestamp" validate:"required"`
}

type VerificationCodeIssuedEvent struct {
	ClaimedEmail string `json:"claimed_email" validate:"required"`
	Delivered    bool   `json:"delivered"`
}

type VerificationCodeIssued struct {
	Event VerificationCodeIssuedEvent `json:"event" validate:"required"`
	Message
}

type NotificationFailedEvent struct {
	ClaimedEmail string `json:"claimed_email" validate:"required"`
	Error        string `json:"error"         validate:"required"`
	Strict       bool   `json:"strict"`
}

type NotificationFailed struct {
	Event NotificationFailedEvent `json:"event" validate:"required"`
	Message
}

type VerificationRejectedEvent struct {
	Reason RejectionReason `json:"reason" validate:"required"`
}

type VerificationRejected struct {
	Event VerificationRejectedEvent `json:"event" validate:"required"`
	Message
}

type SubmissionCommittedEvent struct {
	ClaimedEmail string `json:"claimed_email" validate:"required"`
	Attempts     int    `json:"attempts"      validate:"required"`
	Projects     int    `json:"projects"`
	Files        int    `json:"files"`
}

type SubmissionCommitted struct {
	Event SubmissionCommittedEvent `json:"event" validate:"required"`
	Message
}

type CommitFailedEvent struct {
	Error string `json:"error" validate:"required"`
}

type CommitFailed struct {
	Event CommitFailedEvent `json:"event" validate:"required"`
	Message
}

type AttachmentStoredEvent struct {
	StoreName  string `json:"store_name"  validate:"required"`
	ObjectName string `json:"object_name" validate:"required"`
	Original   string `json:"original"`
	Size       int64  `json:"size"`
}

type AttachmentStored struct {
	Event AttachmentStoredEvent `json:"event" validate:"required"`
	Message
}

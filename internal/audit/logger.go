package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/portfoliobuilder/intake/internal/logger"
)

// Context identifies the visitor an event belongs to. PublicID is only known
// once a submission has been committed.
type Context struct {
	PublicID  *string
	SessionID string
}

var (
	outputMu sync.Mutex
	output   io.Writer = os.Stdout
)

// SetOutput redirects audit events and returns a function restoring the
// previous writer.
func SetOutput(w io.Writer) func() {
	outputMu.Lock()
	defer outputMu.Unlock()

	prev := output
	output = w
	return func() {
		outputMu.Lock()
		defer outputMu.Unlock()
		output = prev
	}
}

func newMessage(c Context, evt EventType, disp Disposition) Message {
	return Message{
		PublicID:      c.PublicID,
		LogContext:    logContext,
		SchemaVersion: schemaVersion,
		SessionID:     c.SessionID,
		Disposition:   disp,
		Type:          evt,
		Timestamp:     time.Now().UTC().UnixMilli(),
	}
}

func emit(evt EventType, event any) {
	evtStr, err := json.Marshal(event)
	if err != nil {
		logger.Logger.Error("could not serialize audit event", "eventType", evt, "error", err)
		return
	}

	outputMu.Lock()
	defer outputMu.Unlock()
	fmt.Fprintln(output, string(evtStr))
}

func LogVerificationCodeIssued(c Context, claimedEmail string, delivered bool) {
	event := VerificationCodeIssued{}
	event.Message = newMessage(c, EvtVerificationCodeIssued, DispositionNeutral)
	event.Event.ClaimedEmail = claimedEmail
	event.Event.Delivered = delivered

	emit(EvtVerificationCodeIssued, event)
}

func LogNotificationFailed(c Context, claimedEmail string, strict bool, cause error) {
	event := NotificationFailed{}
	event.Message = newMessage(c, EvtNotificationFailed, DispositionBad)
	event.Event.ClaimedEmail = claimedEmail
	event.Event.Strict = strict
	if cause != nil {
		event.Event.Error = cause.Error()
	}

	emit(EvtNotificationFailed, event)
}

func LogVerificationRejected(c Context, reason RejectionReason) {
	event := VerificationRejected{}
	event.Message = newMessage(c, EvtVerificationRejected, DispositionBad)
	event.Event.Reason = reason

	emit(EvtVerificationRejected, event)
}

func LogSubmissionCommitted(
	c Context,
	claimedEmail string,
	attempts int,
	projects int,
	files int,
) {
	event := SubmissionCommitted{}
	event.Message = newMessage(c, EvtSubmissionCommitted, DispositionGood)
	event.Event.ClaimedEmail = claimedEmail
	event.Event.Attempts = attempts
	event.Event.Projects = projects
	event.Event.Files = files

	emit(EvtSubmissionCommitted, event)
}

func LogCommitFailed(c Context, cause error) {
	event := CommitFailed{}
	event.Message = newMessage(c, EvtCommitFailed, DispositionBad)
	if cause != nil {
		event.Event.Error = cause.Error()
	}

	emit(EvtCommitFailed, event)
}

func LogAttachmentStored(c Context, storeName, objectName, original string, size int64) {
	event := AttachmentStored{}
	event.Message = newMessage(c, EvtAttachmentStored, DispositionNeutral)
	event.Event.StoreName = storeName
	event.Event.ObjectName = objectName
	event.Event.Original = original
	event.Event.Size = size

	emit(EvtAttachmentStored, event)
}

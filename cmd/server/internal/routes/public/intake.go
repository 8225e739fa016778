package public

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	srverr "github.com/portfoliobuilder/intake/cmd/server/internal/error"
	"github.com/portfoliobuilder/intake/cmd/server/internal/intake"
	servermiddleware "github.com/portfoliobuilder/intake/cmd/server/internal/middleware"
	"github.com/portfoliobuilder/intake/cmd/server/internal/response"
	"github.com/portfoliobuilder/intake/cmd/server/internal/session"
	"github.com/portfoliobuilder/intake/cmd/server/internal/views"
	"github.com/portfoliobuilder/intake/internal/audit"
	"github.com/portfoliobuilder/intake/internal/logger"
	"github.com/portfoliobuilder/intake/internal/models"
	"github.com/portfoliobuilder/intake/internal/types"
)

const (
	msgCodeSent          = "Verification code sent to your email. Please check your inbox."
	msgDebugCode         = "DEBUG: Your verification code is: %s"
	msgDebugProceeding   = "Email sending failed, but proceeding with verification for testing."
	msgSendFailed        = "Failed to send verification email. Please try again."
	msgInvalidEmail      = "Please enter a valid email address."
	msgUploadFailed      = "Failed to store your files. Please try again."
	msgNoPending         = "No pending submission to verify."
	msgSessionExpired    = "Verification session expired. Please submit the form again."
	msgCodeExpired       = "Your verification code has expired. Please submit the form again."
	msgInvalidCode       = "Invalid verification code. Please try again."
	msgVerified          = "Email verified and form submitted successfully!"
	msgSaveFailed        = "Error saving submission. Your email is verified, please try saving again."
	msgMalformedDeadline = "The deadline %q is not a valid date. Please submit the form again."
	msgNotVerified       = "Please enter your verification code first."
	msgAbandoned         = "Your pending submission was discarded."
	msgSomethingWrong    = "Something went wrong. Please try again."
)

const (
	pathForm   = "/"
	pathVerify = "/verify-email/"
)

func state(c echo.Context) (*session.State, error) {
	st, ok := session.From(c)
	if !ok {
		return nil, srverr.ErrTypeAssertMismatch
	}
	return st, nil
}

func redirect(c echo.Context, st *session.State, kind session.Kind, msg, to string) error {
	st.AddFlash(kind, msg)
	return c.Redirect(http.StatusSeeOther, to)
}

func (h *Handler) IntakeForm(c echo.Context) error {
	return c.Render(http.StatusOK, views.IntakeForm, nil)
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get(echo.HeaderContentType))
	return err == nil && mediaType == echo.MIMEMultipartForm
}

func (h *Handler) Submit(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Submit")
	defer span.End()

	st, err := state(c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "missing session")
		return response.InternalServerError
	}
	sessionID := st.ID()

	var values url.Values
	if isMultipart(c.Request()) {
		span.AddEvent("parsing multipart form")
		form, err := c.MultipartForm()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Ok, "failed to parse form")
			return redirect(c, st, session.KindDanger, msgSomethingWrong, pathForm)
		}
		values = url.Values(form.Value)

		payload := PayloadFromForm(values)
		if strings.TrimSpace(payload.Email) == "" {
			span.SetStatus(codes.Ok, "missing email")
			return redirect(c, st, session.KindDanger, msgInvalidEmail, pathForm)
		}

		span.AddEvent("storing attachments")
		stored, err := h.attachments.SaveAll(ctx, audit.Context{SessionID: sessionID}, form)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to store attachments")
			logger.Logger.ErrorContext(ctx, "failed to store attachments", "error", err)
			return redirect(c, st, session.KindDanger, msgUploadFailed, pathForm)
		}
		payload.UploadedFiles = stored

		return h.begin(c, st, payload)
	}

	values, err = c.FormParams()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "failed to parse form")
		return redirect(c, st, session.KindDanger, msgSomethingWrong, pathForm)
	}

	span.SetStatus(codes.Ok, "parsed form")
	return h.begin(c, st, PayloadFromForm(values))
}

func (h *Handler) begin(c echo.Context, st *session.State, payload intake.Payload) error {
	ctx, span := tracer.Start(c.Request().Context(), "begin")
	defer span.End()

	result, err := h.flow.Begin(ctx, st.ID(), payload)
	switch {
	case errors.Is(err, intake.ErrInvalidPayload):
		span.SetAttributes(attribute.String("validation", types.ValidationError(err).Summary()))
		span.SetStatus(codes.Ok, "invalid payload")
		return redirect(c, st, session.KindDanger, msgInvalidEmail, pathForm)
	case errors.Is(err, intake.ErrNotificationFailed):
		span.SetStatus(codes.Ok, "notification failed")
		return redirect(c, st, session.KindDanger, msgSendFailed, pathForm)
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to begin verification")
		logger.Logger.ErrorContext(ctx, "failed to begin verification", "error", err)
		return redirect(c, st, session.KindDanger, msgSomethingWrong, pathForm)
	}

	if !result.Delivered {
		st.AddFlash(session.KindWarning, fmt.Sprintf(msgDebugCode, result.FallbackCode))
		span.SetStatus(codes.Ok, "proceeding without delivery")
		return redirect(c, st, session.KindInfo, msgDebugProceeding, pathVerify)
	}

	span.SetStatus(codes.Ok, "code sent")
	return redirect(c, st, session.KindInfo, msgCodeSent, pathVerify)
}

// failure maps a core error onto a flash notice and a redirect to a safe page.
func (h *Handler) failure(c echo.Context, st *session.State, draft *intake.PendingDraft, err error) error {
	switch {
	case errors.Is(err, intake.ErrNoPendingDraft):
		return redirect(c, st, session.KindWarning, msgNoPending, pathForm)
	case errors.Is(err, intake.ErrExpiredSessionState):
		return redirect(c, st, session.KindWarning, msgSessionExpired, pathForm)
	case errors.Is(err, intake.ErrCodeExpired):
		return redirect(c, st, session.KindWarning, msgCodeExpired, pathForm)
	case errors.Is(err, intake.ErrNotVerified):
		return redirect(c, st, session.KindWarning, msgNotVerified, pathVerify)
	case errors.Is(err, intake.ErrMalformedDeadline):
		raw := ""
		if draft != nil {
			raw = draft.Payload.DeadlineRaw
		}
		return redirect(c, st, session.KindDanger, fmt.Sprintf(msgMalformedDeadline, raw), pathForm)
	case errors.Is(err, intake.ErrCommitFailed), errors.Is(err, intake.ErrPublicIDExhausted):
		logger.Logger.ErrorContext(c.Request().Context(), "failed to commit submission", "error", err)
		return redirect(c, st, session.KindDanger, msgSaveFailed, pathVerify)
	default:
		logger.Logger.ErrorContext(c.Request().Context(), "verification failed", "error", err)
		return redirect(c, st, session.KindDanger, msgSomethingWrong, pathForm)
	}
}

func (h *Handler) VerifyEmailPage(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "VerifyEmailPage")
	defer span.End()

	st, err := state(c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "missing session")
		return response.InternalServerError
	}

	draft, err := h.flow.Pending(ctx, st.ID())
	if err != nil {
		span.SetStatus(codes.Ok, "no pending draft")
		return h.failure(c, st, nil, err)
	}

	span.SetStatus(codes.Ok, "rendering verify page")
	return c.Render(http.StatusOK, views.VerifyEmail, views.VerifyEmailData{
		Email:    draft.ClaimedEmail,
		CanRetry: draft.VerifiedAt != nil,
	})
}

func (h *Handler) VerifyEmail(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "VerifyEmail")
	defer span.End()

	st, err := state(c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "missing session")
		return response.InternalServerError
	}
	sessionID := st.ID()

	entered := strings.TrimSpace(c.FormValue("otp"))

	receipt, err := h.flow.Verify(ctx, sessionID, entered)
	if errors.Is(err, intake.ErrCodeMismatch) {
		span.SetStatus(codes.Ok, "code mismatch")

		draft, pendingErr := h.flow.Pending(ctx, sessionID)
		if pendingErr != nil {
			return h.failure(c, st, nil, pendingErr)
		}

		st.AddFlash(session.KindDanger, msgInvalidCode)
		return c.Render(http.StatusOK, views.VerifyEmail, views.VerifyEmailData{
			Email: draft.ClaimedEmail,
		})
	}
	if err != nil {
		span.SetStatus(codes.Ok, "verification failed")
		var draft *intake.PendingDraft
		if errors.Is(err, intake.ErrMalformedDeadline) {
			draft, _ = h.flow.Pending(ctx, sessionID)
		}
		return h.failure(c, st, draft, err)
	}

	publicID := receipt.Submission.PublicID
	span.SetAttributes(attribute.String("publicID", publicID))
	span.SetStatus(codes.Ok, "verified and committed")
	return redirect(c, st, session.KindSuccess, msgVerified, "/thank-you/"+publicID+"/")
}

func (h *Handler) RetryCommit(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "RetryCommit")
	defer span.End()

	st, err := state(c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "missing session")
		return response.InternalServerError
	}

	receipt, err := h.flow.Retry(ctx, st.ID())
	if err != nil {
		span.SetStatus(codes.Ok, "retry failed")
		var draft *intake.PendingDraft
		if errors.Is(err, intake.ErrMalformedDeadline) {
			draft, _ = h.flow.Pending(ctx, st.ID())
		}
		return h.failure(c, st, draft, err)
	}

	publicID := receipt.Submission.PublicID
	span.SetAttributes(attribute.String("publicID", publicID))
	span.SetStatus(codes.Ok, "committed on retry")
	return redirect(c, st, session.KindSuccess, msgVerified, "/thank-you/"+publicID+"/")
}

func (h *Handler) Abandon(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Abandon")
	defer span.End()

	st, err := state(c)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "missing session")
		return response.InternalServerError
	}

	if err := h.flow.Abandon(ctx, st.ID()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to abandon draft")
		logger.Logger.ErrorContext(ctx, "failed to abandon draft", "error", err)
		return redirect(c, st, session.KindDanger, msgSomethingWrong, pathForm)
	}

	span.SetStatus(codes.Ok, "abandoned draft")
	return redirect(c, st, session.KindInfo, msgAbandoned, pathForm)
}

func (h *Handler) ThankYou(c echo.Context) error {
	return c.Render(http.StatusOK, views.ThankYou, views.ThankYouData{
		PublicID: c.Param("public_id"),
	})
}

func (h *Handler) Report(c echo.Context) error {
	_, span := tracer.Start(c.Request().Context(), "Report")
	defer span.End()

	submission, ok := c.Get("submission").(*models.Submission)
	if !ok {
		span.RecordError(srverr.ErrTypeAssertMismatch)
		span.SetStatus(codes.Error, fmt.Sprintf("submission: %s", srverr.ErrTypeAssertMismatch))
		return response.InternalServerError
	}

	generatedOn := servermiddleware.RequestTime(c, h.timeKey)

	span.SetStatus(codes.Ok, "rendering report")
	return c.Render(http.StatusOK, views.Report, views.ReportData{
		Submission:  submission,
		GeneratedOn: generatedOn.Format("2006-01-02 15:04:05"),
	})
}

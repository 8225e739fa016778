package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/portfoliobuilder/intake/internal/logger"
	"github.com/portfoliobuilder/intake/internal/models"
)

const DeadlineLayout = "2006-01-02"

// SubmissionStore persists committed submissions. A public id collision must
// be reported as [gorm.ErrDuplicatedKey].
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, submission *models.Submission) error
}

// Receipt describes a successful commit.
type Receipt struct {
	Submission *models.Submission
	Attempts   int
}

type Committer struct {
	store    SubmissionStore
	drafts   DraftStore
	issuer   Issuer
	now      func() time.Time
	counters *counters
	attempts uint64
}

func NewCommitter(
	store SubmissionStore,
	drafts DraftStore,
	issuer Issuer,
	attempts int,
	now func() time.Time,
) (*Committer, error) {
	if attempts < 1 {
		return nil, fmt.Errorf("public id attempts must be positive, got %d", attempts)
	}
	if now == nil {
		now = time.Now
	}

	c, err := newCounters()
	if err != nil {
		return nil, err
	}

	return &Committer{
		store:    store,
		drafts:   drafts,
		issuer:   issuer,
		now:      now,
		counters: c,
		attempts: uint64(attempts),
	}, nil
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// BuildProjects zips the project columns by title. Rows whose title is blank
// are dropped; the title is trimmed and every other field kept verbatim,
// missing entries becoming empty strings.
func BuildProjects(rows ProjectRows) []models.Project {
	projects := make([]models.Project, 0, len(rows.Titles))
	for i, raw := range rows.Titles {
		title := strings.TrimSpace(raw)
		if title == "" {
			continue
		}

		projects = append(projects, models.Project{
			Title:       title,
			Role:        at(rows.Roles, i),
			Description: at(rows.Descriptions, i),
			Tech:        at(rows.Tech, i),
			Results:     at(rows.Results, i),
			URL:         at(rows.URLs, i),
		})
	}

	return projects
}

// ParseDeadline reads a YYYY-MM-DD date. Blank input means no deadline.
func ParseDeadline(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	deadline, err := time.Parse(DeadlineLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDeadline, err)
	}

	return &deadline, nil
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (c *Committer) buildSubmission(
	draft *PendingDraft,
	projects []models.Project,
	deadline *time.Time,
) *models.Submission {
	p := draft.Payload
	return &models.Submission{
		SubmittedAt: c.now().UTC(),
		Deadline:    models.NewNull(deadline),

		FullName:      p.FullName,
		PreferredName: p.PreferredName,
		Profession:    p.Profession,
		Tagline:       p.Tagline,
		Email:         draft.ClaimedEmail,
		Phone:         p.Phone,
		WhatsApp:      p.WhatsApp,
		Location:      p.Location,
		TimeZone:      p.TimeZone,

		BioLong:        p.BioLong,
		BioShort:       p.BioShort,
		Company:        p.Company,
		Industry:       p.Industry,
		WebsitePurpose: p.WebsitePurpose,
		TargetAudience: p.TargetAudience,

		ToneStyle:     p.ToneStyle,
		BrandKeywords: p.BrandKeywords,
		ColorPrefs:    p.ColorPrefs,
		DontUseColors: p.DontUseColors,
		Inspiration:   p.Inspiration,

		ExistingWebsite:  p.ExistingWebsite,
		LikesExisting:    p.LikesExisting,
		DislikesExisting: p.DislikesExisting,

		Experience:      p.Experience,
		Education:       p.Education,
		Skills:          p.Skills,
		ServicesOffered: p.ServicesOffered,
		Achievements:    p.Achievements,

		PrimaryCTA:       p.PrimaryCTA,
		SecondaryCTA:     p.SecondaryCTA,
		PreferredContact: p.PreferredContact,

		BudgetRange:  p.BudgetRange,
		ContentReady: p.ContentReady,
		OtherNotes:   p.OtherNotes,

		SocialLinks:    p.SocialLinks,
		TechnicalPrefs: p.TechnicalPrefs,
		Projects:       projects,
		Pages:          orEmpty(p.Pages),
		Features:       orEmpty(p.Features),
		Files:          orEmpty(p.UploadedFiles),
	}
}

// Commit writes a verified draft as a new submission and clears the draft.
// Any failure leaves the draft in place so the commit can be retried.
func (c *Committer) Commit(
	ctx context.Context,
	sessionID string,
	draft *PendingDraft,
) (*Receipt, error) {
	ctx, span := tracer.Start(ctx, "Committer.Commit")
	defer span.End()

	projects := BuildProjects(draft.Payload.ProjectsRaw)
	deadline, err := ParseDeadline(draft.Payload.DeadlineRaw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed deadline")
		return nil, err
	}

	submission := c.buildSubmission(draft, projects, deadline)

	attempts := 0
	backoff := retry.WithMaxRetries(c.attempts-1, retry.NewConstant(time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++

		publicID, err := c.issuer.PublicID()
		if err != nil {
			return err
		}
		submission.PublicID = publicID

		err = c.store.CreateSubmission(ctx, submission)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			span.AddEvent("public_id_conflict", trace.WithAttributes(
				attribute.String("publicID", publicID),
			))
			c.counters.publicIDConflicts.Add(ctx, 1)
			return retry.RetryableError(err)
		}
		return err
	})
	span.SetAttributes(attribute.Int("attempts", attempts))
	if err != nil {
		c.counters.commitFailures.Add(ctx, 1)
		span.RecordError(err)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			span.SetStatus(codes.Error, "public ids exhausted")
			return nil, fmt.Errorf("%w after %d attempts", ErrPublicIDExhausted, attempts)
		}
		span.SetStatus(codes.Error, "failed to store submission")
		return nil, fmt.Errorf("%w: %w", ErrCommitFailed, err)
	}

	c.counters.commits.Add(ctx, 1)
	span.SetAttributes(attribute.String("publicID", submission.PublicID))

	if err := c.drafts.Clear(ctx, sessionID); err != nil {
		span.RecordError(err)
		logger.Logger.ErrorContext(
			ctx,
			"failed to clear committed draft",
			"publicID", submission.PublicID,
			"error", err,
		)
	}

	span.SetStatus(codes.Ok, "committed submission")
	return &Receipt{Submission: submission, Attempts: attempts}, nil
}

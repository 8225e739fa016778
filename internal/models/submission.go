package models

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SocialLinks struct {
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Behance   string `json:"behance"`
	Dribbble  string `json:"dribbble"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
	Other     string `json:"other"`
}

type Project struct {
	Title       string `json:"title"`
	Role        string `json:"role"`
	Description string `json:"description"`
	Tech        string `json:"tech"`
	Results     string `json:"results"`
	URL         string `json:"url"`
}

type TechnicalPrefs struct {
	CMS            string `json:"cms"`
	Blog           string `json:"blog"`
	OngoingSupport string `json:"ongoing_support"`
	SEO            string `json:"seo"`
	Analytics      string `json:"analytics"`
}

// Submission is a committed, verified intake. Rows are immutable once
// written.
type Submission struct {
	SubmittedAt time.Time
	Deadline    datatypes.Null[time.Time] `gorm:"type:date"`

	PublicID string `gorm:"uniqueIndex;size:8;not null"`

	FullName      string
	PreferredName string
	Profession    string
	Tagline       string
	Email         string `gorm:"not null"`
	Phone         string
	WhatsApp      string `gorm:"column:whatsapp"`
	Location      string
	TimeZone      string

	BioLong        string
	BioShort       string
	Company        string
	Industry       string
	WebsitePurpose string
	TargetAudience string

	ToneStyle     string
	BrandKeywords string
	ColorPrefs    string
	DontUseColors string
	Inspiration   string

	ExistingWebsite  string
	LikesExisting    string
	DislikesExisting string

	Experience      string
	Education       string
	Skills          string
	ServicesOffered string
	Achievements    string

	PrimaryCTA       string `gorm:"column:primary_cta"`
	SecondaryCTA     string `gorm:"column:secondary_cta"`
	PreferredContact string

	BudgetRange  string
	ContentReady string
	OtherNotes   string

	SocialLinks    SocialLinks    `gorm:"type:jsonb;serializer:json"`
	TechnicalPrefs TechnicalPrefs `gorm:"type:jsonb;serializer:json"`
	Projects       []Project      `gorm:"type:jsonb;serializer:json"`
	Pages          []string       `gorm:"type:jsonb;serializer:json"`
	Features       []string       `gorm:"type:jsonb;serializer:json"`
	Files          []string       `gorm:"type:jsonb;serializer:json"`

	Model
}

func (Submission) TableName() string {
	return "submission"
}

func (s Submission) GetPublicID() string {
	return s.PublicID
}

// HasFile reports whether name is one of the attachments stored with s.
func (s Submission) HasFile(name string) bool {
	return slices.Contains(s.Files, name)
}

// DeadlinePassed compares dates only, so a deadline of today has not passed.
func (s Submission) DeadlinePassed(today time.Time) bool {
	if !s.Deadline.Valid {
		return false
	}

	y, m, d := today.Date()
	return s.Deadline.V.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// Inserts s inside its own transaction. A unique violation on public_id
// surfaces as [gorm.ErrDuplicatedKey] when the connection was opened with
// TranslateError.
func CreateSubmission(ctx context.Context, db *gorm.DB, s *Submission) error {
	ctx, span := tracer.Start(ctx, "CreateSubmission")
	defer span.End()

	span.SetAttributes(attribute.String("publicID", s.PublicID))

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(s).Error
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create submission")
		return err
	}

	span.AddEvent("created_submission")
	span.SetStatus(codes.Ok, "created submission")
	return nil
}

// newest first
func ListSubmissions(ctx context.Context, db *gorm.DB) ([]Submission, error) {
	ctx, span := tracer.Start(ctx, "ListSubmissions")
	defer span.End()

	var submissions []Submission
	err := db.WithContext(ctx).Order("submitted_at DESC").Find(&submissions).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list submissions")
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(submissions)))
	span.SetStatus(codes.Ok, "listed submissions")
	return submissions, nil
}

package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(Up0001, Down0001)
}

func Up0001(ctx context.Context, tx *sql.Tx) error {
	return execStatements(ctx, tx, statement{query: `
CREATE TABLE submission (
  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  submitted_at TIMESTAMPTZ NOT NULL,
  public_id VARCHAR(8) NOT NULL,

  full_name TEXT,
  preferred_name TEXT,
  profession TEXT,
  tagline TEXT,
  email TEXT NOT NULL,
  phone TEXT,
  whatsapp TEXT,
  location TEXT,
  time_zone TEXT,

  bio_long TEXT,
  bio_short TEXT,
  company TEXT,
  industry TEXT,
  website_purpose TEXT,
  target_audience TEXT,

  tone_style TEXT,
  brand_keywords TEXT,
  color_prefs TEXT,
  dont_use_colors TEXT,
  inspiration TEXT,

  existing_website TEXT,
  likes_existing TEXT,
  dislikes_existing TEXT,

  experience TEXT,
  education TEXT,
  skills TEXT,
  services_offered TEXT,
  achievements TEXT,

  primary_cta TEXT,
  secondary_cta TEXT,
  preferred_contact TEXT,

  deadline DATE,
  budget_range TEXT,
  content_ready TEXT,
  other_notes TEXT,

  social_links JSONB NOT NULL DEFAULT '{}'::jsonb,
  technical_prefs JSONB NOT NULL DEFAULT '{}'::jsonb,
  projects JSONB NOT NULL DEFAULT '[]'::jsonb,
  pages JSONB NOT NULL DEFAULT '[]'::jsonb,
  features JSONB NOT NULL DEFAULT '[]'::jsonb,
  files JSONB NOT NULL DEFAULT '[]'::jsonb
);
`}, statement{
		query: `CREATE UNIQUE INDEX idx_submission_public_id ON submission (public_id);`,
	})
}

func Down0001(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE submission;`)
	return err
}

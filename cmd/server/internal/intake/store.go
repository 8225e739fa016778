package intake

import (
	"context"

	"gorm.io/gorm"

	"github.com/portfoliobuilder/intake/internal/models"
)

// Ensure GormStore implements SubmissionStore interface.
var _ SubmissionStore = (*GormStore)(nil)

// GormStore writes submissions to postgres. The connection must be opened
// with TranslateError so collisions come back as [gorm.ErrDuplicatedKey].
type GormStore struct {
	DB *gorm.DB
}

func (s GormStore) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	return models.CreateSubmission(ctx, s.DB, submission)
}

package intake_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/portfoliobuilder/intake/cmd/server/internal/drafts"
	"github.com/portfoliobuilder/intake/cmd/server/internal/intake"
	mockintake "github.com/portfoliobuilder/intake/cmd/server/internal/intake/mock"
	"github.com/portfoliobuilder/intake/internal/models"
)

type flowFixture struct {
	flow     *intake.Flow
	notifier *mockintake.MockNotifier
	store    *mockintake.MockSubmissionStore
	drafts   *drafts.Memory
	clock    *clock
}

func newFlowFixture(t *testing.T, strict bool, codes ...string) *flowFixture {
	t.Helper()

	if len(codes) == 0 {
		codes = []string{"042617"}
	}

	ctrl := gomock.NewController(t)
	notifier := mockintake.NewMockNotifier(ctrl)
	store := mockintake.NewMockSubmissionStore(ctrl)
	draftStore := drafts.NewMemory(time.Hour)
	c := newClock()

	flow, err := intake.NewFlow(
		&seqIssuer{codes: codes, ids: []string{"AB12CD34"}},
		draftStore,
		notifier,
		store,
		intake.Options{
			Now:                c.Now,
			CodeTTL:            10 * time.Minute,
			PublicIDAttempts:   5,
			StrictNotification: strict,
		},
	)
	require.NoError(t, err)

	return &flowFixture{
		flow:     flow,
		notifier: notifier,
		store:    store,
		drafts:   draftStore,
		clock:    c,
	}
}

func TestBegin(t *testing.T) {
	ctx := context.Background()

	t.Run("Delivered", func(t *testing.T) {
		f := newFlowFixture(t, true)
		f.notifier.EXPECT().SendCode(gomock.Any(), "042617", "ada@example.com").Return(nil)

		result, err := f.flow.Begin(ctx, "session", samplePayload())
		require.NoError(t, err)
		assert.True(t, result.Delivered)
		assert.Empty(t, result.FallbackCode, "code must not leak when delivery worked")

		draft, err := f.drafts.Get(ctx, "session")
		require.NoError(t, err)
		assert.Equal(t, "042617", draft.VerificationCode)
		assert.Equal(t, "ada@example.com", draft.ClaimedEmail)
		assert.Equal(t, f.clock.Now(), draft.IssuedAt)
		assert.Nil(t, draft.VerifiedAt)
		assert.Equal(t, samplePayload(), draft.Payload)
	})

	t.Run("TrimsEmail", func(t *testing.T) {
		f := newFlowFixture(t, true)
		f.notifier.EXPECT().SendCode(gomock.Any(), "042617", "ada@example.com").Return(nil)

		payload := samplePayload()
		payload.Email = "  ada@example.com "
		_, err := f.flow.Begin(ctx, "session", payload)
		require.NoError(t, err)

		draft, err := f.drafts.Get(ctx, "session")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", draft.ClaimedEmail)
	})

	t.Run("InvalidEmail", func(t *testing.T) {
		f := newFlowFixture(t, true)
		f.notifier.EXPECT().SendCode(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		payload := samplePayload()
		payload.Email = "not-an-email"
		_, err := f.flow.Begin(ctx, "session", payload)
		require.ErrorIs(t, err, intake.ErrInvalidPayload)

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs, "field errors should be reachable")
		assert.Equal(t, "email", verrs[0].Field())

		assert.Equal(t, 0, f.drafts.Len())
	})

	t.Run("StrictNotificationFailure", func(t *testing.T) {
		f := newFlowFixture(t, true)
		cause := errors.New("smtp: 421 service not available")
		f.notifier.EXPECT().SendCode(gomock.Any(), gomock.Any(), gomock.Any()).Return(cause)

		_, err := f.flow.Begin(ctx, "session", samplePayload())
		require.ErrorIs(t, err, intake.ErrNotificationFailed)
		require.ErrorIs(t, err, cause)

		_, err = f.drafts.Get(ctx, "session")
		require.ErrorIs(t, err, intake.ErrNoPendingDraft, "no draft may be retained")
	})

	t.Run("StrictFailureDropsEarlierDraft", func(t *testing.T) {
		f := newFlowFixture(t, true, "111111", "222222")
		gomock.InOrder(
			f.notifier.EXPECT().SendCode(gomock.Any(), "111111", gomock.Any()).Return(nil),
			f.notifier.EXPECT().
				SendCode(gomock.Any(), "222222", gomock.Any()).
				Return(errors.New("down")),
		)

		_, err := f.flow.Begin(ctx, "session", samplePayload())
		require.NoError(t, err)
		_, err = f.flow.Begin(ctx, "session", samplePayload())
		require.ErrorIs(t, err, intake.ErrNotificationFailed)

		assert.Equal(t, 0, f.drafts.Len())
	})

	t.Run("PermissiveNotificationFailure", func(t *testing.T) {
		f := newFlowFixture(t, false)
		f.notifier.EXPECT().
			SendCode(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("dial tcp: connection refused"))

		result, err := f.flow.Begin(ctx, "session", samplePayload())
		require.NoError(t, err)
		assert.False(t, result.Delivered)
		assert.Equal(t, "042617", result.FallbackCode)

		draft, err := f.drafts.Get(ctx, "session")
		require.NoError(t, err, "permissive mode keeps the draft")
		assert.Equal(t, "042617", draft.VerificationCode)
	})

	t.Run("ResubmitReplacesDraft", func(t *testing.T) {
		f := newFlowFixture(t, true, "111111", "222222")
		f.notifier.EXPECT().SendCode(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

		_, err := f.flow.Begin(ctx, "session", samplePayload())
		require.NoError(t, err)

		second := samplePayload()
		second.FullName = "Grace Hopper"
		second.Email = "grace@example.com"
		_, err = f.flow.Begin(ctx, "session", second)
		require.NoError(t, err)

		draft, err := f.drafts.Get(ctx, "session")
		require.NoError(t, err)
		assert.Equal(t, "222222", draft.VerificationCode)
		assert.Equal(t, "grace@example.com", draft.ClaimedEmail)
		assert.Equal(t, "Grace Hopper", draft.Payload.FullName)

		_, err = f.flow.Verify(ctx, "session", "111111")
		require.ErrorIs(t, err, intake.ErrCodeMismatch, "old code must be invalidated")
	})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	begin := func(t *testing.T, f *flowFixture) {
		t.Helper()
		f.notifier.EXPECT().SendCode(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		_, err := f.flow.Begin(ctx, "session", samplePayload())
		require.NoError(t, err)
	}

	t.Run("CommitsOnMatch", func(t *testing.T) {
		f := newFlowFixture(t, true)
		begin(t, f)
		f.store.EXPECT().CreateSubmission(gomock.Any(), gomock.Any()).Return(nil)

		receipt, err := f.flow.Verify(ctx, "session", "042617")
		require.NoError(t, err)
		assert.Equal(t, "AB12CD34", receipt.Submission.PublicID)
		assert.Equal(t, "ada@example.com", receipt.Submission.Email)

		_, err = f.flow.Verify(ctx, "session", "042617")
		require.ErrorIs(t, err, intake.ErrNoPendingDraft, "a draft commits at most once")
	})

	t.Run("MismatchThenMatch", func(t *testing.T) {
		f := newFlowFixture(t, true)
		begin(t, f)

		_, err := f.flow.Verify(ctx, "session", "42617")
		require.ErrorIs(t, err, intake.ErrCodeMismatch)

		f.store.EXPECT().CreateSubmission(gomock.Any(), gomock.Any()).Return(nil)
		_, err = f.flow.Verify(ctx, "session", "042617")
		require.NoError(t, err)
	})

	t.Run("NoDraft", func(t *testing.T) {
		f := newFlowFixture(t, true)

		_, err := f.flow.Verify(ctx, "session", "042617")
		require.ErrorIs(t, err, intake.ErrNoPendingDraft)
	})

	t.Run("CodeExpired", func(t *testing.T) {
		f := newFlowFixture(t, true)
		begin(t, f)
		f.clock.Advance(11 * time.Minute)

		_, err := f.flow.Verify(ctx, "session", "042617")
		require.ErrorIs(t, err, intake.ErrCodeExpired)
	})

	t.Run("OtherSessionsCode", func(t *testing.T) {
		f := newFlowFixture(t, true)
		begin(t, f)

		_, err := f.flow.Verify(ctx, "other-session", "042617")
		require.ErrorIs(t, err, intake.ErrNoPendingDraft)
	})
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("AfterCommitFailure", func(t *testing.T) {
		f := newFlowFixture(t, true)
		f.notifier.EXPECT().SendCode(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		_, err := f.flow.Begin(ctx, "session", samplePayload())
		require.NoError(t, err)

		gomock.InOrder(
			f.store.EXPECT().
				CreateSubmission(gomock.Any(), gomock.Any()).
				Return(errors.New("database is down")),
			f.store.EXPECT().
				CreateSubmission(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, s *models.Submission) error {
					assert.Equal(t, "Ada Lovelace", s.FullName, "retry must commit the same payload")
					return nil
				}),
		)

		_, err = f.flow.Verify(ctx, "session", "042617")
		require.ErrorIs(t, err, intake.ErrCommitFailed)

		// well past the code ttl: a verified draft no longer needs its code
		f.clock.Advance(time.Hour)

		receipt, err := f.flow.Retry(ctx, "session")
		require.NoError(t, err)
		assert.Equal(t, "AB12CD34", receipt.Submission.PublicID)
		assert.Equal(t, 0, f.drafts.Len())
	})

	t.Run("NotVerified", func(t *testing.T) {
		f := newFlowFixture(t, true)
		f.notifier.EXPECT().SendCode(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		_, err := f.flow.Begin(ctx, "session", samplePayload())
		require.NoError(t, err)

		_, err = f.flow.Retry(ctx, "session")
		require.ErrorIs(t, err, intake.ErrNotVerified)
	})

	t.Run("NoDraft", func(t *testing.T) {
		f := newFlowFixture(t, true)

		_, err := f.flow.Retry(ctx, "session")
		require.ErrorIs(t, err, intake.ErrNoPendingDraft)
	})
}

func TestAbandon(t *testing.T) {
	ctx := context.Background()
	f := newFlowFixture(t, true)
	f.notifier.EXPECT().SendCode(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err := f.flow.Begin(ctx, "session", samplePayload())
	require.NoError(t, err)

	require.NoError(t, f.flow.Abandon(ctx, "session"))
	_, err = f.flow.Pending(ctx, "session")
	require.ErrorIs(t, err, intake.ErrNoPendingDraft)

	require.NoError(t, f.flow.Abandon(ctx, "session"), "abandoning twice is harmless")
}

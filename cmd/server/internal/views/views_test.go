package views_test

import (
	"bytes"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/portfoliobuilder/intake/cmd/server/internal/session"
	"github.com/portfoliobuilder/intake/cmd/server/internal/views"
	"github.com/portfoliobuilder/intake/internal/config"
	"github.com/portfoliobuilder/intake/internal/models"
)

func sampleSubmission() *models.Submission {
	return &models.Submission{
		PublicID:    "AB12CD34",
		FullName:    "Ada Lovelace",
		Email:       "ada@example.com",
		Profession:  "Analyst",
		Deadline:    datatypes.NewNull(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)),
		SubmittedAt: time.Date(2025, time.February, 1, 9, 30, 0, 0, time.UTC),
		Pages:       []string{"Home", "About"},
		Projects: []models.Project{
			{Title: "Engine <notes>", Role: "Author"},
		},
		Files: []string{"20250201_093000_cv.pdf"},
	}
}

func render(t *testing.T, r *views.Renderer, name string, data any, c echo.Context) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, name, data, c))
	return buf.String()
}

func TestRenderer(t *testing.T) {
	r, err := views.NewRenderer()
	require.NoError(t, err)

	t.Run("IntakeForm", func(t *testing.T) {
		out := render(t, r, views.IntakeForm, nil, nil)
		assert.Contains(t, out, `name="email"`)
		assert.Contains(t, out, `name="projectTitle[]"`)
		assert.Contains(t, out, `value="Testimonials"`)
		assert.Contains(t, out, `/static/form.js`)
	})

	t.Run("FlashesAreDrained", func(t *testing.T) {
		m := session.NewManager(&config.SessionConfig{
			Name:   "intake_session",
			Secret: "0123456789abcdef0123",
			MaxAge: time.Hour,
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := echo.New().NewContext(req, httptest.NewRecorder())
		st := m.Load(req)
		st.AddFlash(session.KindWarning, "No pending submission to verify.")
		session.Set(c, st)

		out := render(t, r, views.IntakeForm, nil, c)
		assert.Contains(t, out, `class="flash flash-warning"`)
		assert.Contains(t, out, "No pending submission to verify.")
		assert.Empty(t, st.Flashes())
	})

	t.Run("VerifyEmail", func(t *testing.T) {
		out := render(t, r, views.VerifyEmail, views.VerifyEmailData{Email: "ada@example.com"}, nil)
		assert.Contains(t, out, "ada@example.com")
		assert.Contains(t, out, `name="otp"`)
		assert.Contains(t, out, "10 minutes")
		assert.NotContains(t, out, "/verify-email/retry/")

		out = render(t, r, views.VerifyEmail, views.VerifyEmailData{Email: "ada@example.com", CanRetry: true}, nil)
		assert.Contains(t, out, "/verify-email/retry/")
		assert.NotContains(t, out, `name="otp"`)
	})

	t.Run("ThankYou", func(t *testing.T) {
		out := render(t, r, views.ThankYou, views.ThankYouData{PublicID: "AB12CD34"}, nil)
		assert.Contains(t, out, "AB12CD34")
		assert.Contains(t, out, "/intake-pdf/AB12CD34/")
	})

	t.Run("AdminListMarksOverdue", func(t *testing.T) {
		s := sampleSubmission()
		out := render(t, r, views.AdminList, views.AdminListData{
			Today:       time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC),
			Submissions: []models.Submission{*s},
		}, nil)
		assert.Contains(t, out, `class="overdue"`)
		assert.Contains(t, out, "2025-03-01")

		out = render(t, r, views.AdminList, views.AdminListData{
			Today:       time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			Submissions: []models.Submission{*s},
		}, nil)
		assert.NotContains(t, out, `class="overdue"`)
	})

	t.Run("AdminDetailEscapes", func(t *testing.T) {
		out := render(t, r, views.AdminDetail, views.AdminDetailData{Submission: sampleSubmission()}, nil)
		assert.Contains(t, out, "Engine &lt;notes&gt;")
		assert.Contains(t, out, "/admin/submission/AB12CD34/files/20250201_093000_cv.pdf/")
		assert.Contains(t, out, "Home, About")
	})

	t.Run("Report", func(t *testing.T) {
		out := render(t, r, views.Report, views.ReportData{
			Submission:  sampleSubmission(),
			GeneratedOn: "2025-03-01 10:00:00",
		}, nil)
		assert.Contains(t, out, "Generated on 2025-03-01 10:00:00")
		assert.Contains(t, out, "Ada Lovelace")
		assert.NotContains(t, out, "site-header")
	})

	t.Run("Unknown", func(t *testing.T) {
		var buf bytes.Buffer
		require.Error(t, r.Render(&buf, "missing.html", nil, nil))
	})
}

func TestStatic(t *testing.T) {
	for _, name := range []string{"style.css", "form.js"} {
		_, err := fs.Stat(views.Static(), name)
		assert.NoError(t, err, name)
	}
}

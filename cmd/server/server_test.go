package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/mock/gomock"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/portfoliobuilder/intake/cmd/server/internal/attachments"
	"github.com/portfoliobuilder/intake/cmd/server/internal/drafts"
	"github.com/portfoliobuilder/intake/cmd/server/internal/intake"
	intakemock "github.com/portfoliobuilder/intake/cmd/server/internal/intake/mock"
	"github.com/portfoliobuilder/intake/cmd/server/internal/middleware"
	"github.com/portfoliobuilder/intake/cmd/server/internal/routes"
	"github.com/portfoliobuilder/intake/cmd/server/internal/routes/admin"
	"github.com/portfoliobuilder/intake/cmd/server/internal/routes/public"
	"github.com/portfoliobuilder/intake/cmd/server/internal/session"
	"github.com/portfoliobuilder/intake/internal/audit"
	"github.com/portfoliobuilder/intake/internal/config"
	"github.com/portfoliobuilder/intake/internal/logger"
	"github.com/portfoliobuilder/intake/internal/migrations"
	"github.com/portfoliobuilder/intake/internal/models"
	"github.com/portfoliobuilder/intake/internal/otel"
	mockuploader "github.com/portfoliobuilder/intake/internal/upload/mock"
)

const (
	adminUser     = "admin"
	adminPassword = "i am a very secure password"
	presignTTL    = 15 * time.Minute
)

var debugCodeRe = regexp.MustCompile(`DEBUG: Your verification code is: (\d{6})`)

// flakyStore fails the first `failures` commits before delegating.
type flakyStore struct {
	next     intake.SubmissionStore
	failures int
}

func (f *flakyStore) CreateSubmission(ctx context.Context, s *models.Submission) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("connection reset by peer")
	}
	return f.next.CreateSubmission(ctx, s)
}

type ServerTestSuite struct {
	suite.Suite

	uploader *mockuploader.MockUploader
	notifier *intakemock.MockNotifier

	postgres     *postgres.PostgresContainer
	db           *gorm.DB
	tx           *gorm.DB
	otelShutdown func(context.Context) error
	restoreAudit func()
	server       *httptest.Server
	client       *http.Client
	sentCodes    []string
}

func (s *ServerTestSuite) SetupSuite() {
	logger.InitSlog(slog.LevelWarn)
	s.restoreAudit = audit.SetOutput(io.Discard)

	postgresContainer, err := postgres.Run(
		s.T().Context(),
		"postgres:16.4-alpine",
		postgres.WithDatabase("intake"),
		postgres.WithUsername("intake"),
		postgres.WithPassword("intake"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	s.Require().NoError(err, "failed to start postgres container")
	s.postgres = postgresContainer

	dsn, err := s.postgres.ConnectionString(s.T().Context())
	s.Require().NoError(err, "failed to get connection string to container")

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{TranslateError: true})
	s.Require().NoError(err, "failed to connect to the database")
	s.db = db

	err = migrations.Up(s.T().Context(), db)
	s.Require().NoError(err, "failed to run up migrations")

	shutdownOTel, err := otel.SetupOTelSDK(s.T().Context(), otel.Options{Writer: io.Discard})
	s.Require().NoError(err, "could not setup otel")
	s.otelShutdown = shutdownOTel
}

func (s *ServerTestSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.uploader = mockuploader.NewMockUploader(ctrl)
	s.notifier = intakemock.NewMockNotifier(ctrl)
	s.sentCodes = nil

	s.uploader.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()
	s.uploader.EXPECT().StoreIdentifier(gomock.Any()).Return("minio/intake", nil).AnyTimes()
	s.uploader.EXPECT().Upload(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	s.tx = s.db.Begin()
	s.start(true, intake.GormStore{DB: s.tx})
}

// start (re)builds the router. Every call gets a fresh cookie jar.
func (s *ServerTestSuite) start(strict bool, store intake.SubmissionStore) {
	if s.server != nil {
		s.server.Close()
	}

	flow, err := intake.NewFlow(
		intake.NewRandomIssuer(),
		drafts.NewMemory(time.Hour),
		s.notifier,
		store,
		intake.Options{
			CodeTTL:            10 * time.Minute,
			PublicIDAttempts:   5,
			StrictNotification: strict,
		},
	)
	s.Require().NoError(err, "failed to construct flow")

	middlewareHandler, err := middleware.NewHandler(s.tx, &config.AdminConfig{
		Username: adminUser,
		Password: adminPassword,
	})
	s.Require().NoError(err, "failed to construct middleware handler")

	e, err := routes.BuildEcho(logger.Logger, routes.Options{MaxBodyBytes: 1 << 20})
	s.Require().NoError(err, "failed to construct router")

	sessions := session.NewManager(&config.SessionConfig{
		Name:   "intake_session",
		Secret: "a test secret that is long enough",
		MaxAge: time.Hour,
	})

	public.NewHandler(flow, attachments.NewStore(s.uploader, nil), sessions, routes.TimeKey).
		AddRoutes(e, middlewareHandler, public.Limits{})
	admin.NewHandler(s.tx, s.uploader, presignTTL, routes.TimeKey).
		AddRoutes(e, middlewareHandler)

	s.server = httptest.NewServer(e)

	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	s.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *ServerTestSuite) TearDownTest() {
	s.Require().NoError(s.tx.Rollback().Error)
	s.server.Close()
	s.server = nil
}

func (s *ServerTestSuite) TearDownSuite() {
	s.Require().NoError(testcontainers.TerminateContainer(s.postgres))
	s.Require().NoError(s.otelShutdown(s.T().Context()))
	s.restoreAudit()
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

// expectDelivery records every code the notifier is asked to send.
func (s *ServerTestSuite) expectDelivery(err error) {
	s.notifier.EXPECT().
		SendCode(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, code, _ string) error {
			s.sentCodes = append(s.sentCodes, code)
			return err
		}).
		AnyTimes()
}

func (s *ServerTestSuite) lastCode() string {
	s.Require().NotEmpty(s.sentCodes, "no code was sent")
	return s.sentCodes[len(s.sentCodes)-1]
}

type response struct {
	status   int
	location string
	body     string
}

func (s *ServerTestSuite) do(req *http.Request) response {
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	return response{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		body:     string(body),
	}
}

func (s *ServerTestSuite) get(path string) response {
	req, err := http.NewRequestWithContext(s.T().Context(), http.MethodGet, s.server.URL+path, nil)
	s.Require().NoError(err)
	return s.do(req)
}

func (s *ServerTestSuite) postForm(path string, values url.Values) response {
	req, err := http.NewRequestWithContext(
		s.T().Context(),
		http.MethodPost,
		s.server.URL+path,
		strings.NewReader(values.Encode()),
	)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *ServerTestSuite) postMultipart(path string, values url.Values, files map[string]string) response {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range values {
		for _, v := range vs {
			s.Require().NoError(w.WriteField(k, v))
		}
	}
	for name, content := range files {
		fw, err := w.CreateFormFile("assets", name)
		s.Require().NoError(err)
		_, err = fw.Write([]byte(content))
		s.Require().NoError(err)
	}
	s.Require().NoError(w.Close())

	req, err := http.NewRequestWithContext(s.T().Context(), http.MethodPost, s.server.URL+path, &buf)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.do(req)
}

func intakeValues(email string) url.Values {
	return url.Values{
		"fullName":         {"Ada Lovelace"},
		"email":            {email},
		"profession":       {"Analyst"},
		"deadline":         {"2025-03-01"},
		"linkedin":         {"https://linkedin.example/ada"},
		"cmsPreference":    {"none"},
		"projectTitle[]":   {"Site Redesign", "  "},
		"projectRole[]":    {"Lead", "Helper"},
		"projectDesc[]":    {"Rebuilt the site", "ignored"},
		"projectTech[]":    {"Go", ""},
		"projectResults[]": {"", ""},
		"projectUrl[]":     {"https://example.com", ""},
		"pages[]":          {"Home", "Contact"},
	}
}

func (s *ServerTestSuite) insertSubmission(publicID string, submittedAt time.Time, deadline *time.Time) {
	submission := &models.Submission{
		SubmittedAt: submittedAt,
		Deadline:    models.NewNull(deadline),
		PublicID:    publicID,
		FullName:    "Seeded " + publicID,
		Email:       publicID + "@example.com",
		Projects:    []models.Project{},
		Pages:       []string{},
		Features:    []string{},
		Files:       []string{"20250101_120000_brief.pdf"},
	}
	s.Require().NoError(s.tx.Create(submission).Error)
}

func (s *ServerTestSuite) adminGet(path, username, password string) response {
	req, err := http.NewRequestWithContext(s.T().Context(), http.MethodGet, s.server.URL+path, nil)
	s.Require().NoError(err)
	req.SetBasicAuth(username, password)
	return s.do(req)
}

func (s *ServerTestSuite) TestHealth() {
	resp := s.get("/health/")
	s.Equal(http.StatusOK, resp.status)
}

func (s *ServerTestSuite) TestIntakeForm() {
	resp := s.get("/")
	s.Equal(http.StatusOK, resp.status)
	s.Contains(resp.body, `action="/submit/"`)
	s.Contains(resp.body, `name="projectTitle[]"`)
}

func (s *ServerTestSuite) TestFullFlow() {
	s.expectDelivery(nil)

	resp := s.postMultipart(
		"/submit/",
		intakeValues("  ada@example.com "),
		map[string]string{"brief.pdf": "%PDF-1.4 brief"},
	)
	s.Require().Equal(http.StatusSeeOther, resp.status)
	s.Equal("/verify-email/", resp.location)
	s.Require().Len(s.sentCodes, 1)

	resp = s.get("/verify-email/")
	s.Require().Equal(http.StatusOK, resp.status)
	s.Contains(resp.body, "Verification code sent to your email. Please check your inbox.")
	s.Contains(resp.body, "ada@example.com")

	wrong := "000000"
	if s.lastCode() == wrong {
		wrong = "999999"
	}
	resp = s.postForm("/verify-email/", url.Values{"otp": {wrong}})
	s.Equal(http.StatusOK, resp.status)
	s.Contains(resp.body, "Invalid verification code. Please try again.")

	var count int64
	s.Require().NoError(s.tx.Model(&models.Submission{}).Count(&count).Error)
	s.Zero(count, "nothing is committed before the code matches")

	resp = s.postForm("/verify-email/", url.Values{"otp": {" " + s.lastCode() + " "}})
	s.Require().Equal(http.StatusSeeOther, resp.status)
	s.Require().True(strings.HasPrefix(resp.location, "/thank-you/"), resp.location)

	publicID := strings.TrimSuffix(strings.TrimPrefix(resp.location, "/thank-you/"), "/")
	s.Len(publicID, 8)

	resp = s.get("/thank-you/" + publicID + "/")
	s.Equal(http.StatusOK, resp.status)
	s.Contains(resp.body, publicID)
	s.Contains(resp.body, "Email verified and form submitted successfully!")

	submission, err := models.ByPublicID[models.Submission](s.T().Context(), s.tx, publicID)
	s.Require().NoError(err)
	s.Equal("ada@example.com", submission.Email)
	s.Equal("Ada Lovelace", submission.FullName)
	s.Equal("https://linkedin.example/ada", submission.SocialLinks.LinkedIn)
	s.Equal("none", submission.TechnicalPrefs.CMS)
	s.Equal([]string{"Home", "Contact"}, submission.Pages)
	s.Equal([]string{}, submission.Features)
	s.Equal([]models.Project{{
		Title:       "Site Redesign",
		Role:        "Lead",
		Description: "Rebuilt the site",
		Tech:        "Go",
		URL:         "https://example.com",
	}}, submission.Projects)
	s.Require().True(submission.Deadline.Valid)
	s.Equal("2025-03-01", submission.Deadline.V.Format(intake.DeadlineLayout))
	s.Require().Len(submission.Files, 1)
	s.Regexp(`^\d{8}_\d{6}_brief\.pdf$`, submission.Files[0])

	resp = s.get("/intake-pdf/" + publicID + "/")
	s.Equal(http.StatusOK, resp.status)
	s.Contains(resp.body, "Ada Lovelace")
	s.Contains(resp.body, "Reference "+publicID)
	s.Contains(resp.body, "Site Redesign")

	resp = s.get("/verify-email/")
	s.Equal(http.StatusSeeOther, resp.status, "the draft is gone after a commit")
	s.Equal("/", resp.location)

	resp = s.get("/")
	s.Contains(resp.body, "No pending submission to verify.")
}

func (s *ServerTestSuite) TestUrlEncodedSubmit() {
	s.expectDelivery(nil)

	values := intakeValues("grace@example.com")
	values.Del("deadline")
	resp := s.postForm("/submit/", values)
	s.Require().Equal(http.StatusSeeOther, resp.status)
	s.Equal("/verify-email/", resp.location)

	resp = s.postForm("/verify-email/", url.Values{"otp": {s.lastCode()}})
	s.Require().Equal(http.StatusSeeOther, resp.status)

	publicID := strings.TrimSuffix(strings.TrimPrefix(resp.location, "/thank-you/"), "/")
	submission, err := models.ByPublicID[models.Submission](s.T().Context(), s.tx, publicID)
	s.Require().NoError(err)
	s.False(submission.Deadline.Valid)
	s.Equal([]string{}, submission.Files)
}

func (s *ServerTestSuite) TestResubmitReplacesDraft() {
	s.expectDelivery(nil)

	s.Require().Equal(http.StatusSeeOther, s.postForm("/submit/", intakeValues("first@example.com")).status)
	first := s.lastCode()
	s.Require().Equal(http.StatusSeeOther, s.postForm("/submit/", intakeValues("second@example.com")).status)
	second := s.lastCode()

	resp := s.get("/verify-email/")
	s.Contains(resp.body, "second@example.com")
	s.NotContains(resp.body, "first@example.com")

	if first != second {
		resp = s.postForm("/verify-email/", url.Values{"otp": {first}})
		s.Equal(http.StatusOK, resp.status)
		s.Contains(resp.body, "Invalid verification code. Please try again.")
	}

	resp = s.postForm("/verify-email/", url.Values{"otp": {second}})
	s.Require().Equal(http.StatusSeeOther, resp.status)
	s.True(strings.HasPrefix(resp.location, "/thank-you/"))
}

func (s *ServerTestSuite) TestStrictNotificationFailure() {
	s.expectDelivery(errors.New("smtp: connection refused"))

	resp := s.postForm("/submit/", intakeValues("ada@example.com"))
	s.Require().Equal(http.StatusSeeOther, resp.status)
	s.Equal("/", resp.location)

	resp = s.get("/")
	s.Contains(resp.body, "Failed to send verification email. Please try again.")
	s.NotContains(resp.body, "DEBUG: Your verification code is")

	resp = s.get("/verify-email/")
	s.Equal(http.StatusSeeOther, resp.status, "no draft survives a strict failure")
	s.Equal("/", resp.location)
}

func (s *ServerTestSuite) TestPermissiveNotificationFailure() {
	s.start(false, intake.GormStore{DB: s.tx})
	s.expectDelivery(errors.New("smtp: connection refused"))

	resp := s.postForm("/submit/", intakeValues("ada@example.com"))
	s.Require().Equal(http.StatusSeeOther, resp.status)
	s.Equal("/verify-email/", resp.location)

	resp = s.get("/verify-email/")
	s.Require().Equal(http.StatusOK, resp.status)
	s.Contains(resp.body, "Email sending failed, but proceeding with verification for testing.")

	match := debugCodeRe.FindStringSubmatch(resp.body)
	s.Require().Len(match, 2, "the fallback code is shown to the visitor")
	s.Equal(s.lastCode(), match[1])

	resp = s.postForm("/verify-email/", url.Values{"otp": {match[1]}})
	s.Require().Equal(http.StatusSeeOther, resp.status)
	s.True(strings.HasPrefix(resp.location, "/thank-you/"))
}

func (s *ServerTestSuite) TestInvalidEmail() {
	for _, email := range []string{"", "   ", "not-an-email"} {
		resp := s.postForm("/submit/", intakeValues(email))
		s.Equal(http.StatusSeeOther, resp.status, email)
		s.Equal("/", resp.location, email)

		resp = s.get("/")
		s.Contains(resp.body, "Please enter a valid email address.", email)
	}

	resp := s.postMultipart("/submit/", intakeValues(""), map[string]string{"brief.pdf": "x"})
	s.Equal(http.StatusSeeOther, resp.status)
	s.Equal("/", resp.location)

	s.Empty(s.sentCodes)
}

func (s *ServerTestSuite) TestVerifyWithoutDraft() {
	resp := s.postForm("/verify-email/", url.Values{"otp": {"123456"}})
	s.Equal(http.StatusSeeOther, resp.status)
	s.Equal("/", resp.location)

	resp = s.get("/")
	s.Contains(resp.body, "No pending submission to verify.")
}

func (s *ServerTestSuite) TestAbandon() {
	s.expectDelivery(nil)

	s.Require().Equal(http.StatusSeeOther, s.postForm("/submit/", intakeValues("ada@example.com")).status)

	resp := s.postForm("/verify-email/abandon/", url.Values{})
	s.Equal(http.StatusSeeOther, resp.status)
	s.Equal("/", resp.location)

	resp = s.get("/")
	s.Contains(resp.body, "Your pending submission was discarded.")

	resp = s.postForm("/verify-email/", url.Values{"otp": {s.lastCode()}})
	s.Equal(http.StatusSeeOther, resp.status)
	s.Equal("/", resp.location)
}

func (s *ServerTestSuite) TestCommitFailureThenRetry() {
	s.start(true, &flakyStore{next: intake.GormStore{DB: s.tx}, failures: 1})
	s.expectDelivery(nil)

	s.Require().Equal(http.StatusSeeOther, s.postForm("/submit/", intakeValues("ada@example.com")).status)

	resp := s.postForm("/verify-email/", url.Values{"otp": {s.lastCode()}})
	s.Require().Equal(http.StatusSeeOther, resp.status)
	s.Equal("/verify-email/", resp.location)

	resp = s.get("/verify-email/")
	s.Require().Equal(http.StatusOK, resp.status)
	s.Contains(resp.body, "Error saving submission. Your email is verified, please try saving again.")
	s.Contains(resp.body, `action="/verify-email/retry/"`)

	resp = s.postForm("/verify-email/retry/", url.Values{})
	s.Require().Equal(http.StatusSeeOther, resp.status)
	s.True(strings.HasPrefix(resp.location, "/thank-you/"), resp.location)

	var count int64
	s.Require().NoError(s.tx.Model(&models.Submission{}).Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *ServerTestSuite) TestRetryBeforeVerify() {
	s.expectDelivery(nil)

	s.Require().Equal(http.StatusSeeOther, s.postForm("/submit/", intakeValues("ada@example.com")).status)

	resp := s.postForm("/verify-email/retry/", url.Values{})
	s.Equal(http.StatusSeeOther, resp.status)
	s.Equal("/verify-email/", resp.location)

	resp = s.get("/verify-email/")
	s.Contains(resp.body, "Please enter your verification code first.")
}

func (s *ServerTestSuite) TestMalformedDeadline() {
	s.expectDelivery(nil)

	values := intakeValues("ada@example.com")
	values.Set("deadline", "next tuesday")
	s.Require().Equal(http.StatusSeeOther, s.postForm("/submit/", values).status)

	resp := s.postForm("/verify-email/", url.Values{"otp": {s.lastCode()}})
	s.Equal(http.StatusSeeOther, resp.status)
	s.Equal("/", resp.location)

	resp = s.get("/")
	s.Contains(resp.body, "is not a valid date")

	var count int64
	s.Require().NoError(s.tx.Model(&models.Submission{}).Count(&count).Error)
	s.Zero(count)
}

func (s *ServerTestSuite) TestReportNotFound() {
	for _, publicID := range []string{"ABCDEFGH", "short"} {
		resp := s.get("/intake-pdf/" + publicID + "/")
		s.Equal(http.StatusNotFound, resp.status, publicID)
	}
}

func (s *ServerTestSuite) TestAdminRequiresAuth() {
	resp := s.get("/admin/submissions/")
	s.Equal(http.StatusUnauthorized, resp.status)

	req, err := http.NewRequestWithContext(s.T().Context(), http.MethodGet, s.server.URL+"/admin/submissions/", nil)
	s.Require().NoError(err)
	httpResp, err := s.client.Do(req)
	s.Require().NoError(err)
	httpResp.Body.Close()
	s.Equal(`basic realm="Admin Dashboard"`, httpResp.Header.Get("WWW-Authenticate"))

	resp = s.adminGet("/admin/submissions/", adminUser, "wrong password")
	s.Equal(http.StatusUnauthorized, resp.status)

	resp = s.adminGet("/admin/submissions/", "root", adminPassword)
	s.Equal(http.StatusUnauthorized, resp.status)
}

func (s *ServerTestSuite) TestAdminList() {
	now := time.Now().UTC()
	past := now.AddDate(0, 0, -3)
	future := now.AddDate(0, 0, 30)
	s.insertSubmission("OLDER001", now.Add(-2*time.Hour), &past)
	s.insertSubmission("NEWER001", now.Add(-1*time.Hour), &future)

	resp := s.adminGet("/admin/submissions/", adminUser, adminPassword)
	s.Require().Equal(http.StatusOK, resp.status)

	newer := strings.Index(resp.body, "NEWER001")
	older := strings.Index(resp.body, "OLDER001")
	s.Require().NotEqual(-1, newer)
	s.Require().NotEqual(-1, older)
	s.Less(newer, older, "newest submission is listed first")
	s.Equal(1, strings.Count(resp.body, `class="overdue"`))
}

func (s *ServerTestSuite) TestAdminDetail() {
	s.insertSubmission("DETAIL01", time.Now().UTC(), nil)

	resp := s.adminGet("/admin/submission/DETAIL01/", adminUser, adminPassword)
	s.Require().Equal(http.StatusOK, resp.status)
	s.Contains(resp.body, "Seeded DETAIL01")
	s.Contains(resp.body, "/admin/submission/DETAIL01/files/20250101_120000_brief.pdf/")

	resp = s.adminGet("/admin/submission/MISSING1/", adminUser, adminPassword)
	s.Equal(http.StatusNotFound, resp.status)
}

func (s *ServerTestSuite) TestAdminFile() {
	s.insertSubmission("FILES001", time.Now().UTC(), nil)

	s.uploader.EXPECT().
		PresignedReadURL(gomock.Any(), "20250101_120000_brief.pdf", presignTTL).
		Return("https://files.example.com/brief.pdf?sig=abc", nil)

	resp := s.adminGet("/admin/submission/FILES001/files/20250101_120000_brief.pdf/", adminUser, adminPassword)
	s.Equal(http.StatusFound, resp.status)
	s.Equal("https://files.example.com/brief.pdf?sig=abc", resp.location)

	resp = s.adminGet("/admin/submission/FILES001/files/other.pdf/", adminUser, adminPassword)
	s.Equal(http.StatusNotFound, resp.status)
}

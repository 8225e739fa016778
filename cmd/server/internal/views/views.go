package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"

	"github.com/portfoliobuilder/intake/cmd/server/internal/session"
	"github.com/portfoliobuilder/intake/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Template names
const (
	IntakeForm  = "intake_form.html"
	VerifyEmail = "verify_email.html"
	ThankYou    = "thank_you.html"
	AdminList   = "admin_submissions.html"
	AdminDetail = "admin_submission_detail.html"
	Report      = "intake_report.html"
)

const layout = "layout.html"

// pages rendered inside layout.html; the report is a standalone document
var layoutPages = []string{IntakeForm, VerifyEmail, ThankYou, AdminList, AdminDetail}

var PageOptions = []string{
	"Home", "About", "Portfolio", "Services", "Resume", "Blog", "Testimonials", "Contact",
}

var FeatureOptions = []string{
	"Contact form", "Booking / calendar", "Newsletter signup", "Downloadable CV",
	"Case studies", "Client login", "Online payments", "Multi-language",
}

type VerifyEmailData struct {
	Email string
	// the code was accepted but saving failed, offer a retry instead of a new code
	CanRetry bool
}

type ThankYouData struct {
	PublicID string
}

type AdminListData struct {
	Today       time.Time
	Submissions []models.Submission
}

type AdminDetailData struct {
	Submission *models.Submission
}

type ReportData struct {
	Submission  *models.Submission
	GeneratedOn string
}

// Page is what every template receives.
type Page struct {
	Data    any
	Flashes []session.Flash
}

var funcs = template.FuncMap{
	"date": func(d datatypes.Null[time.Time]) string {
		if !d.Valid {
			return ""
		}
		return d.V.Format("2006-01-02")
	},
	"join":     strings.Join,
	"contains": slices.Contains[[]string, string],
	"pageOptions": func() []string {
		return PageOptions
	},
	"featureOptions": func() []string {
		return FeatureOptions
	},
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	base, err := template.New(layout).Funcs(funcs).ParseFS(templateFS, "templates/"+layout)
	if err != nil {
		return nil, err
	}

	r := &Renderer{templates: make(map[string]*template.Template)}
	for _, name := range layoutPages {
		t, err := template.Must(base.Clone()).ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		r.templates[name] = t
	}

	report, err := template.New(Report).Funcs(funcs).ParseFS(templateFS, "templates/"+Report)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", Report, err)
	}
	r.templates[Report] = report

	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	page := Page{Data: data}
	if c != nil {
		if st, ok := session.From(c); ok {
			page.Flashes = st.Flashes()
		}
	}

	// render fully first so a template error does not leave half a page
	var buf bytes.Buffer
	entry := layout
	if name == Report {
		entry = Report
	}
	if err := t.ExecuteTemplate(&buf, entry, page); err != nil {
		return err
	}

	_, err := buf.WriteTo(w)
	return err
}

// Static holds the stylesheet and form script served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

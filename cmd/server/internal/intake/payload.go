package intake

import (
	"github.com/portfoliobuilder/intake/internal/models"
)

// ProjectRows holds the project columns exactly as the form posted them. The
// lists are parallel but may differ in length.
type ProjectRows struct {
	Titles       []string `json:"titles"`
	Roles        []string `json:"roles"`
	Descriptions []string `json:"descriptions"`
	Tech         []string `json:"tech"`
	Results      []string `json:"results"`
	URLs         []string `json:"urls"`
}

// Payload is everything the intake form captured, held unvalidated in the
// draft until the email is confirmed.
type Payload struct {
	FullName      string `json:"full_name"`
	PreferredName string `json:"preferred_name"`
	Profession    string `json:"profession"`
	Tagline       string `json:"tagline"`
	Email         string `json:"email"          form:"email" validate:"required,email"`
	Phone         string `json:"phone"`
	WhatsApp      string `json:"whatsapp"`
	Location      string `json:"location"`
	TimeZone      string `json:"time_zone"`

	BioLong        string `json:"bio_long"`
	BioShort       string `json:"bio_short"`
	Company        string `json:"company"`
	Industry       string `json:"industry"`
	WebsitePurpose string `json:"website_purpose"`
	TargetAudience string `json:"target_audience"`

	ToneStyle     string `json:"tone_style"`
	BrandKeywords string `json:"brand_keywords"`
	ColorPrefs    string `json:"color_prefs"`
	DontUseColors string `json:"dont_use_colors"`
	Inspiration   string `json:"inspiration"`

	ExistingWebsite  string `json:"existing_website"`
	LikesExisting    string `json:"likes_existing"`
	DislikesExisting string `json:"dislikes_existing"`

	Experience      string `json:"experience"`
	Education       string `json:"education"`
	Skills          string `json:"skills"`
	ServicesOffered string `json:"services_offered"`
	Achievements    string `json:"achievements"`

	PrimaryCTA       string `json:"primary_cta"`
	SecondaryCTA     string `json:"secondary_cta"`
	PreferredContact string `json:"preferred_contact"`

	DeadlineRaw  string `json:"deadline_raw"`
	BudgetRange  string `json:"budget_range"`
	ContentReady string `json:"content_ready"`
	OtherNotes   string `json:"other_notes"`

	SocialLinks    models.SocialLinks    `json:"social_links"`
	TechnicalPrefs models.TechnicalPrefs `json:"technical_prefs"`
	ProjectsRaw    ProjectRows           `json:"projects_raw"`
	Pages          []string              `json:"pages"`
	Features       []string              `json:"features"`
	UploadedFiles  []string              `json:"uploaded_files"`
}

package public

import (
	"net/url"

	"github.com/portfoliobuilder/intake/cmd/server/internal/intake"
	"github.com/portfoliobuilder/intake/internal/models"
)

// PayloadFromForm maps the intake form's field names onto a Payload. Missing
// fields come through as empty strings or nil lists.
func PayloadFromForm(form url.Values) intake.Payload {
	return intake.Payload{
		FullName:      form.Get("fullName"),
		PreferredName: form.Get("preferredName"),
		Profession:    form.Get("profession"),
		Tagline:       form.Get("tagline"),
		Email:         form.Get("email"),
		Phone:         form.Get("phone"),
		WhatsApp:      form.Get("whatsapp"),
		Location:      form.Get("location"),
		TimeZone:      form.Get("timeZone"),

		BioLong:        form.Get("bioLong"),
		BioShort:       form.Get("bioShort"),
		Company:        form.Get("company"),
		Industry:       form.Get("industry"),
		WebsitePurpose: form.Get("websitePurpose"),
		TargetAudience: form.Get("targetAudience"),

		ToneStyle:     form.Get("toneStyle"),
		BrandKeywords: form.Get("brandKeywords"),
		ColorPrefs:    form.Get("colorPrefs"),
		DontUseColors: form.Get("dontUseColors"),
		Inspiration:   form.Get("inspiration"),

		ExistingWebsite:  form.Get("existingWebsite"),
		LikesExisting:    form.Get("likesExisting"),
		DislikesExisting: form.Get("dislikesExisting"),

		Experience:      form.Get("experience"),
		Education:       form.Get("education"),
		Skills:          form.Get("skills"),
		ServicesOffered: form.Get("servicesOffered"),
		Achievements:    form.Get("achievements"),

		PrimaryCTA:       form.Get("primaryCta"),
		SecondaryCTA:     form.Get("secondaryCta"),
		PreferredContact: form.Get("preferredContact"),

		DeadlineRaw:  form.Get("deadline"),
		BudgetRange:  form.Get("budgetRange"),
		ContentReady: form.Get("contentReady"),
		OtherNotes:   form.Get("otherNotes"),

		SocialLinks: models.SocialLinks{
			LinkedIn:  form.Get("linkedin"),
			GitHub:    form.Get("github"),
			Behance:   form.Get("behance"),
			Dribbble:  form.Get("dribbble"),
			Instagram: form.Get("instagram"),
			Twitter:   form.Get("twitter"),
			Other:     form.Get("otherSocial"),
		},
		TechnicalPrefs: models.TechnicalPrefs{
			CMS:            form.Get("cmsPreference"),
			Blog:           form.Get("blogPreference"),
			OngoingSupport: form.Get("ongoingSupport"),
			SEO:            form.Get("seoLevel"),
			Analytics:      form.Get("analytics"),
		},
		ProjectsRaw: intake.ProjectRows{
			Titles:       form["projectTitle[]"],
			Roles:        form["projectRole[]"],
			Descriptions: form["projectDesc[]"],
			Tech:         form["projectTech[]"],
			Results:      form["projectResults[]"],
			URLs:         form["projectUrl[]"],
		},
		Pages:    form["pages[]"],
		Features: form["features[]"],
	}
}

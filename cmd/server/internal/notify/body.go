package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
	"time"
)

const Subject = "Portfolio Intake – Email Verification"

type codeMessage struct {
	Code     string
	ValidFor string
}

var plainBody = template.Must(template.New("plain").Parse(`Hello,

Your verification code for the portfolio intake form is: {{ .Code }}
{{ if .ValidFor }}
This code is valid for {{ .ValidFor }}.
{{ end }}
If you did not request this, you can ignore this email.
`))

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; line-height: 1.5;">
    <p>Hello,</p>
    <p>Your verification code for the portfolio intake form is:</p>
    <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">{{ .Code }}</p>
    {{ if .ValidFor }}<p>This code is valid for {{ .ValidFor }}.</p>{{ end }}
    <p style="color: #666;">If you did not request this, you can ignore this email.</p>
  </body>
</html>
`))

// humanize renders whole minutes the way people say them.
func humanize(d time.Duration) string {
	if d <= 0 {
		return ""
	}

	minutes := int(d.Round(time.Minute) / time.Minute)
	switch {
	case minutes <= 1:
		return "1 minute"
	case minutes%60 == 0 && minutes > 60:
		return fmt.Sprintf("%d hours", minutes/60)
	case minutes == 60:
		return "1 hour"
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}

// Render returns the plain text and html bodies carrying code.
func Render(code string, validFor time.Duration) (string, string, error) {
	msg := codeMessage{Code: code, ValidFor: humanize(validFor)}

	var plain bytes.Buffer
	if err := plainBody.Execute(&plain, msg); err != nil {
		return "", "", err
	}

	var html bytes.Buffer
	if err := htmlBody.Execute(&html, msg); err != nil {
		return "", "", err
	}

	return plain.String(), html.String(), nil
}

// File path: internal/delivery/contact.go
package delivery

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/forgewise/intake/internal/common"
	"github.com/forgewise/intake/internal/common/telemetry"
	"github.com/forgewise/intake/internal/mailer"
	"github.com/forgewise/intake/internal/store"
)

// Human-readable labels for the contact form's enumerated codes. Unrecognized
// codes pass through verbatim rather than failing the submission.
var projectTypeLabels = map[string]string{
	"website":     "Website Development",
	"web-app":     "Web Application",
	"mobile-app":  "Mobile Application",
	"ecommerce":   "E-commerce Store",
	"mvp":         "MVP Development",
	"maintenance": "Maintenance and Support",
	"other":       "Other",
}

var budgetLabels = map[string]string{
	"under-5k": "Under $5,000",
	"5k-10k":   "$5,000 - $10,000",
	"10k-25k":  "$10,000 - $25,000",
	"25k-50k":  "$25,000 - $50,000",
	"over-50k": "Over $50,000",
}

// ProjectTypeLabel maps a contact-form project type code to its display label.
func ProjectTypeLabel(code string) string {
	if label, ok := projectTypeLabels[code]; ok {
		return label
	}
	return code
}

// BudgetLabel maps a contact-form budget code to its display label.
func BudgetLabel(code string) string {
	if label, ok := budgetLabels[code]; ok {
		return label
	}
	return code
}

var contactBodyTmpl = template.Must(template.New("contact").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #212529;">
	<h2 style="color: #1e2942;">New Contact Form Submission</h2>
	<p><strong>Name:</strong> {{.Name}}</p>
	<p><strong>Email:</strong> {{.Email}}</p>
	{{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>{{end}}
	<p><strong>Project Type:</strong> {{.ProjectType}}</p>
	{{if .Budget}}<p><strong>Budget:</strong> {{.Budget}}</p>{{end}}
	<h3>Message</h3>
	{{range .Paragraphs}}<p>{{.}}</p>
	{{end}}
</body>
</html>`))

type contactBodyData struct {
	Name        string
	Email       string
	Phone       string
	ProjectType string
	Budget      string
	Paragraphs  []string
}

// Validate reports the first missing required field.
func (c ContactSubmission) Validate() error {
	for _, field := range []struct{ name, value string }{
		{"name", c.Name},
		{"email", c.Email},
		{"projectType", c.ProjectType},
		{"message", c.Message},
	} {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("missing required field: %s", field.name)
		}
	}
	return nil
}

// SendContactFormEmail formats and dispatches a contact-form notification to
// the admin address. Field presence is validated by the caller; this method
// only formats and sends.
func (p *Pipeline) SendContactFormEmail(ctx context.Context, sub ContactSubmission) (Result, error) {
	if err := p.ready(); err != nil {
		return Result{}, err
	}
	logger := common.Logger()
	start := p.now()

	body, err := renderContactBody(sub)
	if err != nil {
		return Result{}, fmt.Errorf("contact delivery: %w", err)
	}

	email := mailer.Email{
		To:      []string{p.mailer.AdminEmail()},
		Subject: "New Contact Form Submission from " + strings.TrimSpace(sub.Name),
		HTML:    body,
	}
	id, err := p.mailer.Send(ctx, email)
	telemetry.RecordDispatch("contact", time.Since(start), err)
	if err != nil {
		logger.Error("delivery: contact dispatch failed", "error", err)
		return Result{}, fmt.Errorf("contact delivery: %w", err)
	}

	result := Result{MessageID: id, Timestamp: p.now().UTC()}
	logger.Info("delivery: contact form sent", "message_id", id, "project_type", sub.ProjectType)
	p.recordAudit(ctx, store.DispatchRecord{
		Kind:       "contact",
		MessageID:  id,
		Subject:    email.Subject,
		Recipients: 1,
		CreatedAt:  result.Timestamp,
	})
	return result, nil
}

func renderContactBody(sub ContactSubmission) (string, error) {
	var buf bytes.Buffer
	err := contactBodyTmpl.Execute(&buf, contactBodyData{
		Name:        sub.Name,
		Email:       sub.Email,
		Phone:       sub.Phone,
		ProjectType: ProjectTypeLabel(sub.ProjectType),
		Budget:      BudgetLabel(sub.Budget),
		Paragraphs:  splitParagraphs(sub.Message),
	})
	if err != nil {
		return "", fmt.Errorf("render email body: %w", err)
	}
	return buf.String(), nil
}

// File path: internal/delivery/requirements.go
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
	"github.com/forgewise/intake/internal/document"
	"github.com/forgewise/intake/internal/mailer"
	"github.com/forgewise/intake/internal/store"
)

var requirementsBodyTmpl = template.Must(template.New("requirements").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #212529;">
	<h2 style="color: #1e2942;">New Project Requirements</h2>
	<p><strong>Project Stage:</strong> {{.Stage}}</p>
	{{if .UserEmail}}<p><strong>Client Contact:</strong> {{.UserEmail}}</p>{{end}}
	<h3>Requirements Summary</h3>
	{{range .Paragraphs}}<p>{{.}}</p>
	{{end}}
	<p style="color: #787e88;">The full requirements document, including the complete conversation transcript, is attached as a PDF.</p>
</body>
</html>`))

type requirementsBodyData struct {
	Stage      string
	UserEmail  string
	Paragraphs []string
}

// SendRequirementsEmail renders the requirements document and dispatches it
// to the admin address, and to the submitting user when one was provided.
// Any failure propagates as a single wrapped error; nothing is reported sent
// unless the whole pipeline succeeded.
func (p *Pipeline) SendRequirementsEmail(ctx context.Context, sub RequirementsSubmission) (Result, error) {
	if err := p.ready(); err != nil {
		return Result{}, err
	}
	logger := common.Logger()
	start := p.now()

	stage := strings.TrimSpace(sub.SelectedStage)
	if stage == "" {
		stage = DefaultStage
	}
	userEmail := strings.TrimSpace(sub.UserEmail)
	if userEmail == NotProvidedSentinel {
		userEmail = ""
	}

	pdf, err := document.RenderRequirements(sub.RequirementsSummary, sub.ConversationHistory, userEmail, stage)
	if err != nil {
		telemetry.RecordDispatch("requirements", time.Since(start), err)
		return Result{}, fmt.Errorf("requirements delivery: %w", err)
	}

	admin := p.mailer.AdminEmail()
	to := []string{admin}
	if userEmail != "" && !strings.EqualFold(userEmail, admin) {
		to = append(to, userEmail)
	}

	body, err := renderRequirementsBody(stage, userEmail, sub.RequirementsSummary)
	if err != nil {
		return Result{}, fmt.Errorf("requirements delivery: %w", err)
	}

	email := mailer.Email{
		To:      to,
		Subject: "New Project Requirements: " + stage,
		HTML:    body,
		Attachments: []mailer.Attachment{{
			Filename:    fmt.Sprintf("Requirements_%d.pdf", start.UnixMilli()),
			ContentType: "application/pdf",
			Content:     pdf,
		}},
	}

	id, err := p.mailer.Send(ctx, email)
	telemetry.RecordDispatch("requirements", time.Since(start), err)
	if err != nil {
		logger.Error("delivery: requirements dispatch failed", "recipients", len(to), "error", err)
		return Result{}, fmt.Errorf("requirements delivery: %w", err)
	}

	result := Result{
		MessageID:      id,
		Timestamp:      p.now().UTC(),
		RecipientCount: len(to),
		AdminEmail:     admin,
		UserEmail:      userEmail,
	}
	logger.Info("delivery: requirements sent", "message_id", id, "recipients", len(to), "stage", stage)
	p.recordAudit(ctx, store.DispatchRecord{
		Kind:       "requirements",
		MessageID:  id,
		Subject:    email.Subject,
		Recipients: len(to),
		CreatedAt:  result.Timestamp,
	})
	return result, nil
}

func renderRequirementsBody(stage, userEmail, summary string) (string, error) {
	paragraphs := splitParagraphs(summary)
	if len(paragraphs) == 0 {
		paragraphs = []string{"No summary provided"}
	}
	var buf bytes.Buffer
	err := requirementsBodyTmpl.Execute(&buf, requirementsBodyData{
		Stage:      stage,
		UserEmail:  userEmail,
		Paragraphs: paragraphs,
	})
	if err != nil {
		return "", fmt.Errorf("render email body: %w", err)
	}
	return buf.String(), nil
}

func splitParagraphs(text string) []string {
	var out []string
	for _, part := range strings.Split(text, "\n\n") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// File path: internal/delivery/delivery.go
package delivery

import (
	"context"
	"time"

	"github.com/forgewise/intake/internal/common"
	"github.com/forgewise/intake/internal/conversation"
	"github.com/forgewise/intake/internal/mailer"
	"github.com/forgewise/intake/internal/store"
)

// NotProvidedSentinel is the placeholder the intake UI submits when the user
// declined to leave an email address.
const NotProvidedSentinel = "Not provided"

// DefaultStage is used when a submission carries no stage label.
const DefaultStage = "Custom Project"

// Dispatcher is the slice of the mailer client the pipeline depends on.
type Dispatcher interface {
	Ready() error
	Send(ctx context.Context, email mailer.Email) (string, error)
	AdminEmail() string
}

// RequirementsSubmission is a finalized conversation handed to the pipeline.
// It is constructed once, consumed once and never persisted.
type RequirementsSubmission struct {
	RequirementsSummary string               `json:"requirementsSummary"`
	ConversationHistory conversation.History `json:"conversationHistory"`
	UserEmail           string               `json:"userEmail,omitempty"`
	SelectedStage       string               `json:"selectedStage,omitempty"`
}

// ContactSubmission is a plain contact-form submission. No document is
// generated for it.
type ContactSubmission struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	ProjectType string `json:"projectType"`
	Budget      string `json:"budget,omitempty"`
	Message     string `json:"message"`
}

// Result reports one successful dispatch.
type Result struct {
	MessageID      string    `json:"messageId"`
	Timestamp      time.Time `json:"timestamp"`
	RecipientCount int       `json:"recipientCount,omitempty"`
	AdminEmail     string    `json:"adminEmail,omitempty"`
	UserEmail      string    `json:"userEmail,omitempty"`
}

// Pipeline renders and dispatches intake emails. The audit store is optional;
// when absent, dispatches simply are not logged.
type Pipeline struct {
	mailer Dispatcher
	audit  *store.Store
	now    func() time.Time
}

func NewPipeline(dispatcher Dispatcher, audit *store.Store) *Pipeline {
	return &Pipeline{mailer: dispatcher, audit: audit, now: time.Now}
}

func (p *Pipeline) ready() error {
	if p == nil || p.mailer == nil {
		return common.MissingConfig("MAILER_ENDPOINT")
	}
	return p.mailer.Ready()
}

func (p *Pipeline) recordAudit(ctx context.Context, rec store.DispatchRecord) {
	if p.audit == nil {
		return
	}
	if err := p.audit.RecordDispatch(ctx, rec); err != nil {
		common.Logger().Warn("delivery: audit record failed", "kind", rec.Kind, "message_id", rec.MessageID, "error", err)
	}
}

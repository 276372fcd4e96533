// File path: internal/conversation/orchestrator.go
package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/forgewise/intake/internal/common"
	"github.com/forgewise/intake/internal/common/telemetry"
	"github.com/forgewise/intake/internal/llm"
)

// systemPrompt is fixed and non-configurable: the assistant gathers software
// project requirements and nothing else.
const systemPrompt = "You are the requirements-intake assistant for a software development agency. " +
	"Your only job is to gather structured requirements for a software project: goals, target users, " +
	"key features, integrations, platforms, timeline and budget expectations. " +
	"If the user raises anything unrelated to a software project, reply exactly: " +
	"\"I can only help with gathering requirements for your software project. Let's get back to that.\" " +
	"Ask one focused question at a time and require at least 5 to 6 substantive question and answer " +
	"exchanges before concluding. When you have enough detail, write a final structured requirements " +
	"summary and append the marker " + CompletionSentinel + " after it. " +
	"End every response with a single line containing exactly {\"suggestions\": [\"...\"]} holding 3 to 5 " +
	"short reply options for the user (at most 60 characters each); once the summary is complete, emit " +
	"{\"suggestions\": []}."

// Orchestrator drives one chat turn: it assembles the outbound message list,
// invokes the model and extracts the structured result.
type Orchestrator struct {
	provider llm.Provider
}

func NewOrchestrator(provider llm.Provider) *Orchestrator {
	return &Orchestrator{provider: provider}
}

// SubmitTurn appends userMessage to the prior history, invokes the model and
// returns the structured turn result. The caller guarantees userMessage is
// non-empty after trimming; history may be empty on the first turn.
//
// Provider failures are wrapped and returned without retrying; retry policy
// belongs to the caller.
func (o *Orchestrator) SubmitTurn(ctx context.Context, userMessage string, history History) (TurnResult, error) {
	if o == nil || o.provider == nil {
		return TurnResult{}, common.MissingConfig("OPENAI_API_KEY")
	}
	logger := common.Logger()

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: RoleUser, Content: userMessage})

	start := time.Now()
	completion, err := o.provider.Chat(ctx, messages)
	telemetry.RecordChatTurn(time.Since(start), err)
	if err != nil {
		logger.Error("conversation: model call failed", "provider", o.provider.Name(), "error", err)
		return TurnResult{}, fmt.Errorf("model call failed: %w", err)
	}

	ext := Extract(completion.Content)
	result := TurnResult{
		Message:     ext.Message,
		IsComplete:  ext.IsComplete,
		Suggestions: ext.Suggestions,
		Usage:       completion.Usage,
	}
	// A complete turn never surfaces follow-up suggestions, whatever the
	// model embedded alongside the sentinel.
	if result.IsComplete {
		result.Suggestions = []string{}
	}
	logger.Info(
		"conversation: turn completed",
		"history_turns", len(history),
		"complete", result.IsComplete,
		"suggestions", len(result.Suggestions),
		"total_tokens", result.Usage.TotalTokens,
	)
	return result, nil
}

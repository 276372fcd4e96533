// File path: internal/conversation/types.go
package conversation

import "github.com/forgewise/intake/internal/llm"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CompletionSentinel is the literal marker the model appends once the
// requirements summary is final. The system prompt and the extractor share
// this constant so they cannot drift apart.
const CompletionSentinel = "REQUIREMENTS_COMPLETE"

const (
	maxSuggestions      = 5
	maxSuggestionLength = 60
)

// Turn is one message in a requirements conversation. Assistant content is
// always cleaned: the completion sentinel and the trailing suggestions JSON
// are never present.
type Turn struct {
	Role        string   `json:"role"`
	Content     string   `json:"content"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// History is the chronological, append-only record of one conversation. It is
// owned by the session driving the chat and is never persisted.
type History []Turn

// UserTurn builds a user turn.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn builds an assistant turn from an orchestrated result.
func AssistantTurn(result TurnResult) Turn {
	return Turn{Role: RoleAssistant, Content: result.Message, Suggestions: result.Suggestions}
}

// TurnResult is the outcome of one orchestrated chat turn.
type TurnResult struct {
	Message     string    `json:"message"`
	IsComplete  bool      `json:"isComplete"`
	Suggestions []string  `json:"suggestions"`
	Usage       llm.Usage `json:"usage"`
}

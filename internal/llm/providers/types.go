// File path: internal/llm/providers/types.go
package providers

import "context"

type Message struct {
	Role    string
	Content string
}

// Usage is the provider's token accounting, passed through to callers
// uninterpreted.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Completion is one model response plus its usage metadata.
type Completion struct {
	Content string
	Usage   Usage
}

type Provider interface {
	Chat(ctx context.Context, messages []Message) (Completion, error)
	Name() string
}

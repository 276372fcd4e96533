// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"fmt"
	"strings"
)

// LocalProvider is an offline echo provider used for development runs and
// tests. It never contacts a network.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Chat(ctx context.Context, messages []Message) (Completion, error) {
	if len(messages) == 0 {
		return Completion{}, fmt.Errorf("no messages provided")
	}
	last := messages[len(messages)-1].Content
	return Completion{Content: "[local-stub] " + strings.TrimSpace(last)}, nil
}

func (l *LocalProvider) Name() string {
	return "local"
}

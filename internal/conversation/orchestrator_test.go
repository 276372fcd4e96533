// File path: internal/conversation/orchestrator_test.go
package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/forgewise/intake/internal/common"
	"github.com/forgewise/intake/internal/llm"
)

type mockProvider struct {
	response     string
	err          error
	chatCalls    int
	lastMessages []llm.Message
}

func (m *mockProvider) Chat(ctx context.Context, messages []llm.Message) (llm.Completion, error) {
	m.chatCalls++
	m.lastMessages = append([]llm.Message(nil), messages...)
	if m.err != nil {
		return llm.Completion{}, m.err
	}
	return llm.Completion{Content: m.response, Usage: llm.Usage{TotalTokens: 42}}, nil
}

func (m *mockProvider) Name() string { return "mock" }

func TestSubmitTurnBuildsMessageList(t *testing.T) {
	provider := &mockProvider{response: "What is the project about?\n{\"suggestions\":[\"A website\",\"A mobile app\"]}"}
	orch := NewOrchestrator(provider)
	history := History{
		UserTurn("hi"),
		{Role: RoleAssistant, Content: "Hello! What are you building?"},
	}
	result, err := orch.SubmitTurn(context.Background(), "an online store", history)
	if err != nil {
		t.Fatalf("submit turn: %v", err)
	}
	if provider.chatCalls != 1 {
		t.Fatalf("expected one provider call, got %d", provider.chatCalls)
	}
	msgs := provider.lastMessages
	if len(msgs) != 4 {
		t.Fatalf("expected system + 2 history + user, got %d messages", len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Fatalf("expected system message first, got %q", msgs[0].Role)
	}
	if msgs[3].Role != RoleUser || msgs[3].Content != "an online store" {
		t.Fatalf("expected trailing user turn, got %+v", msgs[3])
	}
	if result.IsComplete {
		t.Fatal("expected incomplete turn")
	}
	if len(result.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %v", result.Suggestions)
	}
	if result.Usage.TotalTokens != 42 {
		t.Fatalf("expected usage passed through, got %+v", result.Usage)
	}
}

func TestSubmitTurnCompletionForcesEmptySuggestions(t *testing.T) {
	provider := &mockProvider{
		response: "Final summary here.\n" + CompletionSentinel + "\n{\"suggestions\":[\"More features\",\"Change budget\"]}",
	}
	orch := NewOrchestrator(provider)
	result, err := orch.SubmitTurn(context.Background(), "that covers it", nil)
	if err != nil {
		t.Fatalf("submit turn: %v", err)
	}
	if !result.IsComplete {
		t.Fatal("expected complete turn")
	}
	if len(result.Suggestions) != 0 {
		t.Fatalf("expected suggestions forced empty on completion, got %v", result.Suggestions)
	}
	if result.Message != "Final summary here." {
		t.Fatalf("expected cleaned summary, got %q", result.Message)
	}
}

func TestSubmitTurnMissingProvider(t *testing.T) {
	orch := NewOrchestrator(nil)
	_, err := orch.SubmitTurn(context.Background(), "hello", nil)
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !common.IsConfigError(err) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestSubmitTurnWrapsProviderFailure(t *testing.T) {
	cause := errors.New("rate limited")
	provider := &mockProvider{err: cause}
	orch := NewOrchestrator(provider)
	_, err := orch.SubmitTurn(context.Background(), "hello", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected original failure preserved, got %v", err)
	}
	if provider.chatCalls != 1 {
		t.Fatalf("expected no retry, got %d calls", provider.chatCalls)
	}
}

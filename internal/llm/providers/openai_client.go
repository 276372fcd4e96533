// File path: internal/llm/providers/openai_client.go
package providers

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	openai "github.com/openai/openai-go/v2"

	"github.com/forgewise/intake/internal/common"
)

const defaultMaxOutputTokens = 1024

type OpenAIProvider struct {
	client    openai.Client
	chatModel string
	maxTokens int64
}

func NewOpenAIProvider(client openai.Client) *OpenAIProvider {
	chatModel := os.Getenv("OPENAI_CHAT_MODEL")
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	maxTokens := int64(defaultMaxOutputTokens)
	if raw := strings.TrimSpace(os.Getenv("OPENAI_MAX_OUTPUT_TOKENS")); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			maxTokens = parsed
		}
	}
	logger := common.Logger()
	logger.Info("llm: OpenAI provider configured", "chat_model", chatModel, "max_output_tokens", maxTokens)
	return &OpenAIProvider{client: client, chatModel: chatModel, maxTokens: maxTokens}
}

func (o *OpenAIProvider) Chat(ctx context.Context, messages []Message) (Completion, error) {
	if o == nil {
		return Completion{}, fmt.Errorf("openai provider not configured")
	}
	logger := common.Logger()
	logger.Debug("llm: sending chat completion request", "model", o.chatModel, "messages", len(messages))
	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(o.chatModel),
		MaxTokens: openai.Int(o.maxTokens),
	}
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		}
	}
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("llm: chat completion failed", "error", err)
		return Completion{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("chat completion: no choices returned")
	}
	logger.Debug("llm: chat completion succeeded", "total_tokens", resp.Usage.TotalTokens)
	return Completion{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}

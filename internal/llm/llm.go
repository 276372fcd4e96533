// File path: internal/llm/llm.go
package llm

import (
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/forgewise/intake/internal/common"
	"github.com/forgewise/intake/internal/llm/providers"
)

type Message = providers.Message

type Usage = providers.Usage

type Completion = providers.Completion

type Provider = providers.Provider

// NewProvider builds the OpenAI-backed provider from the environment. A
// missing OPENAI_API_KEY is a fatal configuration error: no network call is
// attempted and the caller receives a common.ConfigError.
func NewProvider() (Provider, error) {
	logger := common.Logger()
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, common.MissingConfig("OPENAI_API_KEY")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if timeoutStr := strings.TrimSpace(os.Getenv("OPENAI_HTTP_TIMEOUT")); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			logger.Warn("llm: invalid OPENAI_HTTP_TIMEOUT, using default", "value", timeoutStr, "error", err)
		} else {
			logger.Info("llm: configuring OpenAI client with custom HTTP timeout", "timeout", timeout)
			opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: timeout}))
		}
	}
	if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
		logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", endpoint)
		opts = append(opts, option.WithBaseURL(endpoint))
	}
	client := openai.NewClient(opts...)
	logger.Info("llm: OpenAI provider selected")
	return providers.NewOpenAIProvider(client), nil
}

// NewLocalProvider returns the offline echo provider.
func NewLocalProvider() Provider {
	return providers.NewLocalProvider()
}

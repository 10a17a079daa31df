package clients

import (
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const OPENAI_REQUEST_TIMEOUT = 60 * time.Second

type OpenAIClient struct {
	Client *openai.Client
}

// NewOpenAIClient builds a chat client. baseURL is optional and points the
// client at a compatible server.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *OpenAIClient {
	if timeout <= 0 {
		timeout = OPENAI_REQUEST_TIMEOUT
	}
	config := openai.DefaultConfig(apiKey)
	config.HTTPClient = &http.Client{Timeout: timeout}
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	slog.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout",
		slog.Duration("timeout", timeout))
	return &OpenAIClient{Client: openai.NewClientWithConfig(config)}
}

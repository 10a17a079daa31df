package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/spacesedan/sentiboard/internal/models"
)

const polaritySystemMessage = `You rate the sentiment of Reddit posts.
Reply with a JSON object of the form {"polarity": <number>} where the number is
between -1 (very negative) and 1 (very positive) and 0 means neutral.
Reply with the JSON object only.`

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIScorer asks a chat model for a polarity in JSON mode.
type OpenAIScorer struct {
	client chatCompleter
	model  string
}

func NewOpenAIScorer(client chatCompleter, model string) *OpenAIScorer {
	return &OpenAIScorer{client: client, model: model}
}

func (o *OpenAIScorer) Name() models.SentimentSource { return models.SourceOpenAI }

func (o *OpenAIScorer) Score(ctx context.Context, text string) (float64, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: polaritySystemMessage},
			{Role: openai.ChatMessageRoleUser, Content: truncateRunes(text, maxRemoteInputRunes)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("[OpenAIScorer] completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return 0, fmt.Errorf("[OpenAIScorer] completion returned no choices")
	}

	var parsed models.OpenAIPolarityResponse
	if err := json.Unmarshal([]byte(cleanOpenAIResponse(resp.Choices[0].Message.Content)), &parsed); err != nil {
		return 0, fmt.Errorf("[OpenAIScorer] failed to unmarshal polarity: %w", err)
	}
	return parsed.Polarity, nil
}

// cleanOpenAIResponse strips markdown code fences some models wrap JSON in.
func cleanOpenAIResponse(response string) string {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

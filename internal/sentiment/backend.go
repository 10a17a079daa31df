package sentiment

import (
	"fmt"
	"log/slog"

	"github.com/spacesedan/sentiboard/config"
	"github.com/spacesedan/sentiboard/internal/clients"
)

// NewLabeler builds the labeler selected by cfg.Backend.
func NewLabeler(cfg config.SentimentConfig) (Labeler, error) {
	var scorer Scorer
	switch cfg.Backend {
	case "", "vader":
		scorer = NewVaderScorer()
	case "huggingface":
		scorer = NewHuggingFaceScorer(clients.NewHuggingFaceClient(cfg.HuggingFaceEndpoint, cfg.HuggingFaceToken, cfg.RemoteTimeout))
	case "openai":
		client := clients.NewOpenAIClient(cfg.OpenAIKey, "", cfg.RemoteTimeout)
		scorer = NewOpenAIScorer(client.Client, cfg.OpenAIModel)
	default:
		return nil, fmt.Errorf("[Labeler] unknown sentiment backend %q", cfg.Backend)
	}
	slog.Info("[Labeler] Using sentiment backend", slog.String("backend", string(scorer.Name())))
	return NewScoreLabeler(scorer), nil
}

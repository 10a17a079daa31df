package sentiment

import (
	"context"
	"fmt"
	"strings"

	"github.com/spacesedan/sentiboard/internal/models"
)

// Inference endpoints reject long inputs; longer texts are cut at this many runes.
const maxRemoteInputRunes = 2000

type textClassifier interface {
	Classify(ctx context.Context, text string) ([]models.HuggingFaceLabelScore, error)
}

// HuggingFaceScorer turns a text-classification response into a polarity:
// the positive probability minus the negative probability.
type HuggingFaceScorer struct {
	client textClassifier
}

func NewHuggingFaceScorer(client textClassifier) *HuggingFaceScorer {
	return &HuggingFaceScorer{client: client}
}

func (h *HuggingFaceScorer) Name() models.SentimentSource { return models.SourceHuggingFace }

func (h *HuggingFaceScorer) Score(ctx context.Context, text string) (float64, error) {
	scores, err := h.client.Classify(ctx, truncateRunes(text, maxRemoteInputRunes))
	if err != nil {
		return 0, err
	}
	return polarityFromLabels(scores)
}

func polarityFromLabels(scores []models.HuggingFaceLabelScore) (float64, error) {
	var positive, negative float64
	recognized := false
	for _, s := range scores {
		switch strings.ToLower(s.Label) {
		case "positive", "pos", "label_2":
			positive = s.Score
			recognized = true
		case "negative", "neg", "label_0":
			negative = s.Score
			recognized = true
		case "neutral", "neu", "label_1":
			recognized = true
		}
	}
	if !recognized {
		return 0, fmt.Errorf("[HuggingFaceScorer] no sentiment labels in response (%d entries)", len(scores))
	}
	return positive - negative, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

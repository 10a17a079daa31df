// Package sentiment assigns a label and polarity score to post text.
package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/spacesedan/sentiboard/internal/apperrors"
	"github.com/spacesedan/sentiboard/internal/models"
)

// Polarity at or above PositiveThreshold is Positive, at or below
// NegativeThreshold is Negative, anything between is Neutral.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// Labeler produces exactly one SentimentResult for any input. It never fails:
// problems are logged and the result degrades to Neutral.
type Labeler interface {
	Label(ctx context.Context, text string) models.SentimentResult
}

// Scorer returns a polarity in [-1, 1] for already cleaned text.
type Scorer interface {
	Name() models.SentimentSource
	Score(ctx context.Context, text string) (float64, error)
}

// Classify maps a polarity to its label.
func Classify(score float64) models.Label {
	switch {
	case score >= PositiveThreshold:
		return models.LabelPositive
	case score <= NegativeThreshold:
		return models.LabelNegative
	default:
		return models.LabelNeutral
	}
}

// ScoreLabeler labels text with a Scorer and the fixed thresholds.
type ScoreLabeler struct {
	scorer Scorer
}

func NewScoreLabeler(scorer Scorer) *ScoreLabeler {
	return &ScoreLabeler{scorer: scorer}
}

func (l *ScoreLabeler) Label(ctx context.Context, text string) models.SentimentResult {
	plain := ConvertMarkdownToText(text)
	if strings.TrimSpace(plain) == "" {
		return models.SentimentResult{Label: models.LabelNeutral, Score: 0, Source: l.scorer.Name()}
	}

	score, err := l.scorer.Score(ctx, plain)
	if err == nil && (math.IsNaN(score) || score < -1 || score > 1) {
		err = fmt.Errorf("polarity %v outside [-1, 1]", score)
	}
	if err != nil {
		labelErr := apperrors.Labeling("Labeler", "scoring failed, falling back to Neutral", err)
		slog.Warn("[Labeler] Falling back to Neutral",
			slog.String("scorer", string(l.scorer.Name())),
			slog.String("error", labelErr.Error()))
		return models.SentimentResult{Label: models.LabelNeutral, Score: 0, Source: models.SourceFallback}
	}

	return models.SentimentResult{Label: Classify(score), Score: score, Source: l.scorer.Name()}
}

// LabelPosts labels every post in ingestion order.
func LabelPosts(ctx context.Context, labeler Labeler, posts []models.Post) []models.LabeledPost {
	labeled := make([]models.LabeledPost, 0, len(posts))
	for _, p := range posts {
		labeled = append(labeled, models.LabeledPost{
			Post:      p,
			Sentiment: labeler.Label(ctx, p.Text()),
		})
	}
	slog.Info("[Labeler] Labeled posts", slog.Int("count", len(labeled)))
	return labeled
}

// FromScore builds a result for a score supplied with the data, such as an
// uploaded sentiment column.
func FromScore(score float64) (models.SentimentResult, error) {
	if math.IsNaN(score) || score < -1 || score > 1 {
		return models.SentimentResult{}, fmt.Errorf("polarity %v outside [-1, 1]", score)
	}
	return models.SentimentResult{Label: Classify(score), Score: score, Source: models.SourceUpload}, nil
}

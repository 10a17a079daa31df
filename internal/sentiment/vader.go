package sentiment

import (
	"context"

	"github.com/jonreiter/govader"

	"github.com/spacesedan/sentiboard/internal/models"
)

// VaderScorer uses the VADER compound score.
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderScorer) Name() models.SentimentSource { return models.SourceVADER }

func (v *VaderScorer) Score(_ context.Context, text string) (float64, error) {
	return v.analyzer.PolarityScores(text).Compound, nil
}

package aggregation

import (
	"github.com/spacesedan/sentiboard/internal/models"
)

const DefaultHistogramBins = 20

// Histogram counts polarity scores in equal-width bins over [-1, 1]. A score
// of exactly 1 falls in the last bin.
func Histogram(posts []models.LabeledPost, bins int) []models.HistogramBin {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	width := 2.0 / float64(bins)

	out := make([]models.HistogramBin, bins)
	for i := range out {
		out[i].Lower = -1 + float64(i)*width
		out[i].Upper = -1 + float64(i+1)*width
	}
	for _, p := range posts {
		i := int((p.Sentiment.Score + 1) / width)
		if i < 0 {
			i = 0
		}
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

package aggregation

import (
	"github.com/spacesedan/sentiboard/internal/models"
)

// Summarize computes the headline numbers shown above charts and in reports.
func Summarize(view models.AggregateView, keyword string) models.Summary {
	s := models.Summary{
		Keyword:       keyword,
		Total:         len(view.Posts),
		CollectionLen: view.Total,
	}

	counts := make(map[models.Label]int, len(models.Labels))
	var polaritySum float64
	var scoreSum int
	for i, p := range view.Posts {
		counts[p.Sentiment.Label]++
		polaritySum += p.Sentiment.Score
		scoreSum += p.Score
		if i == 0 || p.CreatedAt.Before(s.Earliest) {
			s.Earliest = p.CreatedAt
		}
		if i == 0 || p.CreatedAt.After(s.Latest) {
			s.Latest = p.CreatedAt
		}
	}

	for _, l := range models.Labels {
		lc := models.LabelCount{Label: l, Count: counts[l]}
		if s.Total > 0 {
			lc.Percent = float64(counts[l]) / float64(s.Total) * 100
		}
		s.Labels = append(s.Labels, lc)
	}
	if s.Total > 0 {
		s.MeanPolarity = polaritySum / float64(s.Total)
		s.MeanScore = float64(scoreSum) / float64(s.Total)
	}
	return s
}

// Recommendations turns a summary into the short advice block printed in
// reports.
func Recommendations(s models.Summary) []string {
	if s.Total == 0 {
		return []string{"No posts matched the current filters. Broaden the date range or lower the minimum score."}
	}

	var recs []string
	positive := s.Count(models.LabelPositive)
	negative := s.Count(models.LabelNegative)
	switch {
	case negative > positive:
		recs = append(recs, "Negative posts outnumber positive ones. Review the most negative posts for recurring complaints.")
	case positive > negative:
		recs = append(recs, "Positive posts outnumber negative ones. Highlight the most upvoted positive posts.")
	default:
		recs = append(recs, "Sentiment is evenly split. Track the trend over the next collection.")
	}
	if s.Count(models.LabelNeutral)*2 > s.Total {
		recs = append(recs, "Most posts are neutral. Narrow the keyword or apply a sector filter for sharper signal.")
	}
	if s.Total < 20 {
		recs = append(recs, "Fewer than 20 posts are in view, so percentages may shift noticeably with new data.")
	}
	return recs
}

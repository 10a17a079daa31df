package aggregation

import (
	"sort"
	"time"

	"github.com/spacesedan/sentiboard/internal/models"
)

// Trend buckets posts by UTC day or ISO week (weeks start on Monday) and
// returns the buckets in ascending order. Empty buckets are not emitted.
func Trend(posts []models.LabeledPost, granularity models.Granularity) []models.TrendBucket {
	type acc struct {
		count int
		sum   float64
	}
	overall := make(map[time.Time]*acc)
	byLabel := make(map[time.Time]map[models.Label]*acc)

	for _, p := range posts {
		key := bucketStart(p.CreatedAt, granularity)
		if overall[key] == nil {
			overall[key] = &acc{}
			byLabel[key] = make(map[models.Label]*acc)
		}
		overall[key].count++
		overall[key].sum += p.Sentiment.Score

		l := byLabel[key][p.Sentiment.Label]
		if l == nil {
			l = &acc{}
			byLabel[key][p.Sentiment.Label] = l
		}
		l.count++
		l.sum += p.Sentiment.Score
	}

	buckets := make([]models.TrendBucket, 0, len(overall))
	for start, a := range overall {
		bucket := models.TrendBucket{
			Start:   start,
			Overall: models.PolarityStat{Count: a.count, MeanPolarity: a.sum / float64(a.count)},
			ByLabel: make(map[models.Label]models.PolarityStat, len(byLabel[start])),
		}
		for label, la := range byLabel[start] {
			bucket.ByLabel[label] = models.PolarityStat{Count: la.count, MeanPolarity: la.sum / float64(la.count)}
		}
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})
	return buckets
}

func bucketStart(t time.Time, granularity models.Granularity) time.Time {
	day := dayStart(t)
	if granularity != models.GranularityWeek {
		return day
	}
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

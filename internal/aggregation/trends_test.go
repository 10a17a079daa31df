package aggregation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiboard/internal/models"
)

func TestTrendDaily(t *testing.T) {
	posts := []models.LabeledPost{
		labeled("a", 1, day(2024, 1, 2).Add(5*time.Hour), "x", 0.5),
		labeled("b", 1, day(2024, 1, 1).Add(time.Hour), "x", -0.5),
		labeled("c", 1, day(2024, 1, 2).Add(20*time.Hour), "x", 0.1),
		labeled("d", 1, day(2024, 1, 2), "x", 0),
	}

	buckets := Trend(posts, models.GranularityDay)
	require.Len(t, buckets, 2)

	assert.Equal(t, day(2024, 1, 1), buckets[0].Start)
	assert.Equal(t, 1, buckets[0].Overall.Count)
	assert.InDelta(t, -0.5, buckets[0].Overall.MeanPolarity, 1e-9)

	second := buckets[1]
	assert.Equal(t, day(2024, 1, 2), second.Start)
	assert.Equal(t, 3, second.Overall.Count)
	assert.InDelta(t, 0.2, second.Overall.MeanPolarity, 1e-9)
	assert.Equal(t, 2, second.ByLabel[models.LabelPositive].Count)
	assert.InDelta(t, 0.3, second.ByLabel[models.LabelPositive].MeanPolarity, 1e-9)
	assert.Equal(t, 1, second.ByLabel[models.LabelNeutral].Count)
	_, hasNegative := second.ByLabel[models.LabelNegative]
	assert.False(t, hasNegative)
}

func TestTrendWeekly(t *testing.T) {
	posts := []models.LabeledPost{
		labeled("sun", 1, day(2024, 1, 7), "x", 0.2),
		labeled("mon", 1, day(2024, 1, 8), "x", 0.4),
		labeled("wed", 1, day(2024, 1, 10), "x", 0.6),
	}

	buckets := Trend(posts, models.GranularityWeek)
	require.Len(t, buckets, 2)
	assert.Equal(t, day(2024, 1, 1), buckets[0].Start)
	assert.Equal(t, day(2024, 1, 8), buckets[1].Start)
	assert.Equal(t, 2, buckets[1].Overall.Count)
	assert.InDelta(t, 0.5, buckets[1].Overall.MeanPolarity, 1e-9)
}
